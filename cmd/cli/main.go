package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/wasmbuildgo/internal/app"
	"github.com/vk/wasmbuildgo/internal/cli"
	"github.com/vk/wasmbuildgo/internal/hclcfg"
	"github.com/vk/wasmbuildgo/internal/manifest"
	"github.com/vk/wasmbuildgo/internal/yamlcfg"
)

// main is the entrypoint for the wasmbuildgo application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical manifest errors, so we recover here to
	// provide a clean exit message to the user.
	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				runErr = fmt.Errorf("a critical startup error occurred: %v", r)
			}
		}()

		buildApp := app.NewApp(outW, appConfig, chooseLoader(appConfig.ManifestPath))

		report, err := buildApp.Run(context.Background(), appConfig)
		if err != nil {
			runErr = err
			return
		}
		if report != nil {
			cli.WriteReport(outW, report)
			if !report.OK() {
				runErr = &cli.ExitError{Code: 1, Message: "build failed"}
			}
		}
	}()
	return runErr
}

// chooseLoader picks the concrete manifest loader from the path's syntax:
// .hcl files (or a directory carrying golem.hcl but no golem.yaml) use the
// HCL loader, everything else the YAML loader.
func chooseLoader(path string) manifest.Loader {
	if strings.HasSuffix(path, ".hcl") {
		return hclcfg.NewLoader()
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if _, err := os.Stat(filepath.Join(path, yamlcfg.RootFileName)); err == nil {
			return yamlcfg.NewLoader()
		}
		if _, err := os.Stat(filepath.Join(path, hclcfg.RootFileName)); err == nil {
			return hclcfg.NewLoader()
		}
	}
	return yamlcfg.NewLoader()
}
