// Package testutil provides the shared harness for integration tests: it
// materializes an in-memory manifest tree on disk, runs the application
// against it and hands back the report together with the captured logs.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/wasmbuildgo/internal/app"
	"github.com/vk/wasmbuildgo/internal/executor"
	"github.com/vk/wasmbuildgo/internal/hclcfg"
	"github.com/vk/wasmbuildgo/internal/manifest"
	"github.com/vk/wasmbuildgo/internal/yamlcfg"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Report    *executor.Report
	Err       error
	App       *app.App
	Dir       string
}

// Options tweaks a harness run away from its defaults.
type Options struct {
	Command string
	Profile string
	Force   bool
	Workers int
}

// RunBuildTest materializes the given files under a fresh temp directory and
// runs the application's build command against it using a default background
// context. File paths in the map are relative to the manifest root.
func RunBuildTest(t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()
	return RunTestWithOptions(context.Background(), t, files, Options{})
}

// RunTestWithOptions is the full-control variant of RunBuildTest.
func RunTestWithOptions(ctx context.Context, t *testing.T, files map[string]string, opts Options) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	WriteFiles(t, dir, files)
	return RunTestWithOptionsInDir(ctx, t, dir, opts)
}

// RunBuildTestInDir runs the build command against an already materialized
// manifest directory, so repeat invocations can observe incremental state.
func RunBuildTestInDir(t *testing.T, dir string) *HarnessResult {
	t.Helper()
	return RunTestWithOptionsInDir(context.Background(), t, dir, Options{})
}

// RunTestWithOptionsInDir is the full-control, existing-directory variant.
func RunTestWithOptionsInDir(ctx context.Context, t *testing.T, dir string, opts Options) *HarnessResult {
	t.Helper()

	workers := opts.Workers
	if workers == 0 {
		workers = executor.DefaultWorkerCount
	}
	appConfig, err := app.NewConfig(app.Config{
		ManifestPath: dir,
		Command:      opts.Command,
		Profile:      opts.Profile,
		ForceBuild:   opts.Force,
		LogLevel:     "debug",
		LogFormat:    "text",
		WorkerCount:  workers,
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, appConfig, loaderFor(dir))
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
			Dir:       dir,
		}
	}

	report, runErr := testApp.Run(ctx, appConfig)
	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Report:    report,
		Err:       runErr,
		App:       testApp,
		Dir:       dir,
	}
}

// WriteFiles writes the relative path -> content map under dir, creating
// intermediate directories as needed. A key ending in "/" creates an empty
// directory instead of a file.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if strings.HasSuffix(name, "/") {
			require.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// loaderFor selects the loader matching the manifest syntax the test wrote.
func loaderFor(dir string) manifest.Loader {
	if _, err := os.Stat(filepath.Join(dir, yamlcfg.RootFileName)); err == nil {
		return yamlcfg.NewLoader()
	}
	if _, err := os.Stat(filepath.Join(dir, hclcfg.RootFileName)); err == nil {
		return hclcfg.NewLoader()
	}
	return yamlcfg.NewLoader()
}
