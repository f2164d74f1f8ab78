package app

import "errors"

// Command names understood natively by the application; any other command
// name is looked up among the manifest's custom commands.
const (
	CommandBuild = "build"
	CommandClean = "clean"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ManifestPath is a manifest file or a directory containing one.
	ManifestPath string

	// Command is "build", "clean" or a custom command name.
	Command string

	// Profile is the requested build profile; empty selects each
	// component's default.
	Profile string

	LogFormat   string
	LogLevel    string
	WorkerCount int

	// ForceBuild makes every conditional step stale without consulting the
	// filesystem.
	ForceBuild bool
}

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}
	if cfg.Command == "" {
		cfg.Command = CommandBuild
	}
	return &cfg, nil
}
