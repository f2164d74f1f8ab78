// This file defines Command, the atomic unit of executable work in a build
// sequence.
//
// The presence of sources+targets switches a command into the
// staleness-checked variant; both must be given together. A command without
// them is unconditional and always runs.
package manifest

import (
	"errors"
	"path/filepath"
)

// Command is one external command invocation, either unconditional or
// conditional-incremental.
type Command struct {
	// Command is the shell-style invocation string. It is split on
	// whitespace with quote handling before execution, not passed to a
	// shell.
	Command string

	// Dir is the working directory. Empty means the directory of the
	// declaring manifest document.
	Dir string

	// Rmdirs are removed (recursively, tolerating absence) before Mkdirs
	// are created; both happen immediately before Command runs, as one
	// uninterruptible unit with it.
	Rmdirs []string
	Mkdirs []string

	// Sources and Targets are path/glob sets driving staleness evaluation.
	// Setting either requires the other.
	Sources []string
	Targets []string

	// Source is the directory of the declaring document, the base for all
	// relative paths above.
	Source string
}

// Conditional reports whether the command is the staleness-checked variant.
func (c *Command) Conditional() bool {
	return len(c.Sources) > 0 || len(c.Targets) > 0
}

// WorkDir returns the effective working directory for the command. A
// relative Dir is anchored to the declaring document's directory, like
// every other relative path in a manifest, so the choice of process
// working directory never changes where a command runs.
func (c *Command) WorkDir() string {
	if c.Dir == "" {
		return c.Source
	}
	if filepath.IsAbs(c.Dir) {
		return c.Dir
	}
	return filepath.Join(c.Source, c.Dir)
}

func (c *Command) validate() error {
	if c.Command == "" {
		return errors.New("command string must not be empty")
	}
	if (len(c.Sources) > 0) != (len(c.Targets) > 0) {
		return errors.New("sources and targets must be declared together")
	}
	return nil
}
