package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/wasmbuildgo/internal/resolver"
)

// Clean removes every component's generated artifacts (generated WIT,
// component wasm, linked wasm, the declared extra clean paths) and finally
// the shared temp directory. Absent paths are tolerated; no commands run.
func (a *App) Clean(ctx context.Context, appConfig *Config) error {
	components, err := resolver.Resolve(a.manifest, resolver.Options{Profile: appConfig.Profile})
	if err != nil {
		return fmt.Errorf("failed to resolve components: %w", err)
	}

	for _, comp := range components {
		props := comp.Properties
		paths := []string{props.GeneratedWit, props.ComponentWasm, props.LinkedWasm}
		paths = append(paths, props.Clean...)
		for _, path := range paths {
			if path == "" {
				continue
			}
			full := path
			if !filepath.IsAbs(full) {
				full = filepath.Join(props.Source, path)
			}
			a.logger.Info("🧹 Removing.", "component", comp.Name, "path", full)
			if err := os.RemoveAll(full); err != nil {
				return fmt.Errorf("failed to clean %s: %w", full, err)
			}
		}
	}

	a.logger.Info("🧹 Removing temp directory.", "path", a.manifest.TempDir)
	if err := os.RemoveAll(a.manifest.TempDir); err != nil {
		return fmt.Errorf("failed to clean %s: %w", a.manifest.TempDir, err)
	}
	return nil
}
