// This file decides whether a conditional command must re-run.
//
// The policy, in order:
//
//  1. an unconditional command is always stale;
//  2. a missing target (or a target glob matching nothing) makes the
//     command stale: its outputs do not exist yet;
//  3. a missing source (or a source glob matching nothing) is a
//     configuration error, not a silent verdict: staleness cannot be
//     evaluated against inputs that are not there;
//  4. otherwise the command is stale iff the newest source is strictly
//     newer than the oldest target.
//
// Only the extremal modification times matter, so glob expansion order
// cannot change the verdict; expansion is still deterministic (sorted) for
// reporting.
package plan

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vk/wasmbuildgo/internal/ctxlog"
	"github.com/vk/wasmbuildgo/internal/fsutil"
	"github.com/vk/wasmbuildgo/internal/manifest"
)

// Verdict is a per-step staleness decision.
type Verdict struct {
	Stale  bool
	Reason string
}

// StaleCheckError is a component-scoped configuration error raised when a
// declared source cannot be found. It fails the owning component's step but
// must not abort sibling components.
type StaleCheckError struct {
	Pattern string
	Err     error
}

func (e *StaleCheckError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot evaluate staleness: source %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("cannot evaluate staleness: source %q matched no files", e.Pattern)
}

func (e *StaleCheckError) Unwrap() error { return e.Err }

// EvaluateStale decides whether one command must run.
func EvaluateStale(ctx context.Context, cmd *manifest.Command) (Verdict, error) {
	if !cmd.Conditional() {
		return Verdict{Stale: true, Reason: "unconditional"}, nil
	}

	logger := ctxlog.FromContext(ctx)
	baseDir := cmd.WorkDir()

	oldestTarget, missing, err := oldestTargetTime(baseDir, cmd.Targets)
	if err != nil {
		return Verdict{}, err
	}
	if missing != "" {
		return Verdict{Stale: true, Reason: fmt.Sprintf("target %s is missing", missing)}, nil
	}

	newestSource, newestPath, err := newestSourceTime(baseDir, cmd.Sources)
	if err != nil {
		return Verdict{}, err
	}

	if newestSource.After(oldestTarget) {
		logger.Debug("Step is stale.", "source", newestPath)
		return Verdict{Stale: true, Reason: fmt.Sprintf("source %s is newer than targets", newestPath)}, nil
	}
	return Verdict{Stale: false, Reason: "targets are up to date"}, nil
}

// oldestTargetTime returns the earliest modification time among all matched
// targets, or the first missing path/pattern.
func oldestTargetTime(baseDir string, patterns []string) (oldest time.Time, missing string, err error) {
	first := true
	for _, pattern := range patterns {
		paths, err := fsutil.Expand(baseDir, pattern)
		if err != nil {
			return time.Time{}, "", err
		}
		if len(paths) == 0 {
			return time.Time{}, pattern, nil
		}
		for _, path := range paths {
			info, err := os.Stat(path)
			if os.IsNotExist(err) {
				return time.Time{}, path, nil
			}
			if err != nil {
				return time.Time{}, "", err
			}
			if first || info.ModTime().Before(oldest) {
				oldest = info.ModTime()
				first = false
			}
		}
	}
	return oldest, "", nil
}

// newestSourceTime returns the latest modification time among all matched
// sources; a source that matches nothing is a StaleCheckError.
func newestSourceTime(baseDir string, patterns []string) (newest time.Time, newestPath string, err error) {
	for _, pattern := range patterns {
		paths, err := fsutil.Expand(baseDir, pattern)
		if err != nil {
			return time.Time{}, "", &StaleCheckError{Pattern: pattern, Err: err}
		}
		if len(paths) == 0 {
			return time.Time{}, "", &StaleCheckError{Pattern: pattern}
		}
		for _, path := range paths {
			info, err := os.Stat(path)
			if err != nil {
				return time.Time{}, "", &StaleCheckError{Pattern: pattern, Err: err}
			}
			if info.ModTime().After(newest) {
				newest = info.ModTime()
				newestPath = path
			}
		}
	}
	return newest, newestPath, nil
}
