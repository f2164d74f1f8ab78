package plan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vk/wasmbuildgo/internal/manifest"
)

// writeFileAt creates a file with the given modification time.
func writeFileAt(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func conditionalCommand(dir string, sources, targets []string) *manifest.Command {
	return &manifest.Command{
		Command: "make",
		Source:  dir,
		Sources: sources,
		Targets: targets,
	}
}

func TestEvaluateStale_Unconditional(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	cmd := &manifest.Command{Command: "make", Source: t.TempDir()}

	// --- Act ---
	verdict, err := EvaluateStale(context.Background(), cmd)

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, verdict.Stale)
	require.Equal(t, "unconditional", verdict.Reason)
}

func TestEvaluateStale_MissingTarget(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeFileAt(t, filepath.Join(dir, "src", "main.go"), time.Now().Add(-time.Hour))
	cmd := conditionalCommand(dir, []string{"src/main.go"}, []string{"out/app.wasm"})

	// --- Act ---
	verdict, err := EvaluateStale(context.Background(), cmd)

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, verdict.Stale)
	require.Contains(t, verdict.Reason, "missing")
}

func TestEvaluateStale_SourceNewerThanTarget(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	now := time.Now()
	writeFileAt(t, filepath.Join(dir, "out", "app.wasm"), now.Add(-time.Hour))
	writeFileAt(t, filepath.Join(dir, "src", "main.go"), now)
	cmd := conditionalCommand(dir, []string{"src/main.go"}, []string{"out/app.wasm"})

	// --- Act ---
	verdict, err := EvaluateStale(context.Background(), cmd)

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, verdict.Stale)
	require.Contains(t, verdict.Reason, "newer than targets")
}

func TestEvaluateStale_TargetsUpToDate(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	now := time.Now()
	writeFileAt(t, filepath.Join(dir, "src", "main.go"), now.Add(-time.Hour))
	writeFileAt(t, filepath.Join(dir, "out", "app.wasm"), now)
	cmd := conditionalCommand(dir, []string{"src/main.go"}, []string{"out/app.wasm"})

	// --- Act ---
	verdict, err := EvaluateStale(context.Background(), cmd)

	// --- Assert ---
	require.NoError(t, err)
	require.False(t, verdict.Stale)
	require.Equal(t, "targets are up to date", verdict.Reason)
}

func TestEvaluateStale_ExtremalTimesDecide(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Two sources and two targets; the newest source is newer than the
	// oldest target even though the other pairing is fresh.
	dir := t.TempDir()
	now := time.Now()
	writeFileAt(t, filepath.Join(dir, "src", "old.go"), now.Add(-3*time.Hour))
	writeFileAt(t, filepath.Join(dir, "src", "new.go"), now)
	writeFileAt(t, filepath.Join(dir, "out", "old.wasm"), now.Add(-time.Hour))
	writeFileAt(t, filepath.Join(dir, "out", "new.wasm"), now.Add(time.Hour))
	cmd := conditionalCommand(dir,
		[]string{"src/old.go", "src/new.go"},
		[]string{"out/old.wasm", "out/new.wasm"})

	// --- Act ---
	verdict, err := EvaluateStale(context.Background(), cmd)

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, verdict.Stale)
}

func TestEvaluateStale_GlobSources(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	now := time.Now()
	writeFileAt(t, filepath.Join(dir, "src", "a", "one.go"), now)
	writeFileAt(t, filepath.Join(dir, "src", "b", "two.go"), now.Add(-2*time.Hour))
	writeFileAt(t, filepath.Join(dir, "out", "app.wasm"), now.Add(-time.Hour))
	cmd := conditionalCommand(dir, []string{"src/**/*.go"}, []string{"out/app.wasm"})

	// --- Act ---
	verdict, err := EvaluateStale(context.Background(), cmd)

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, verdict.Stale)
}

func TestEvaluateStale_MissingSourceIsError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeFileAt(t, filepath.Join(dir, "out", "app.wasm"), time.Now())
	cmd := conditionalCommand(dir, []string{"src/*.go"}, []string{"out/app.wasm"})

	// --- Act ---
	_, err := EvaluateStale(context.Background(), cmd)

	// --- Assert ---
	require.Error(t, err)
	var staleErr *StaleCheckError
	require.ErrorAs(t, err, &staleErr)
	require.Equal(t, "src/*.go", staleErr.Pattern)
	require.Contains(t, err.Error(), "matched no files")
}

func TestEvaluateStale_MissingSourceWithMissingTargetIsStillStale(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The missing-target rule is checked first: the step must run and may
	// itself generate what the source pattern describes.
	dir := t.TempDir()
	cmd := conditionalCommand(dir, []string{"src/*.go"}, []string{"out/app.wasm"})

	// --- Act ---
	verdict, err := EvaluateStale(context.Background(), cmd)

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, verdict.Stale)
}
