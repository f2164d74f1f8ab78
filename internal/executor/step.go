// This file runs one component's build sequence: staleness check, directory
// lifecycle, external command invocation and per-step reporting.
package executor

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/vk/wasmbuildgo/internal/ctxlog"
	"github.com/vk/wasmbuildgo/internal/manifest"
	"github.com/vk/wasmbuildgo/internal/plan"
)

// runComponent executes a component's steps in declaration order,
// fail-fast: a failing step halts the component's remaining sequence.
func (e *Executor) runComponent(ctx context.Context, comp *plan.ComponentPlan, result *ComponentResult) {
	logger := ctxlog.FromContext(ctx).With("component", comp.Name)
	if len(comp.Deps) > 0 {
		logger = logger.With("rpcDeps", comp.Deps)
	}
	logger.Info("▶️ Building component.", "steps", len(comp.Steps))

	for _, cmd := range comp.Steps {
		verdict, err := e.verdict(ctx, cmd)
		if err != nil {
			// Staleness-evaluation errors are component-scoped: they stop
			// this component but never abort sibling components.
			logger.Error("Staleness check failed.", "command", cmd.Command, "error", err)
			result.Err = err
			return
		}

		if !verdict.Stale {
			logger.Info("⏭️ Step is up to date, skipping.", "command", cmd.Command)
			result.Steps = append(result.Steps, &StepResult{
				Command: cmd.Command,
				Status:  StepSkippedFresh,
				Reason:  verdict.Reason,
			})
			continue
		}

		step := e.runStep(ctx, cmd, verdict.Reason)
		result.Steps = append(result.Steps, step)
		if step.Status == StepRanFailed {
			logger.Error("Step failed, halting component.", "command", cmd.Command, "exitCode", step.ExitCode)
			e.failed.Store(true)
			return
		}
	}
	logger.Info("✅ Component finished.")
}

func (e *Executor) verdict(ctx context.Context, cmd *manifest.Command) (plan.Verdict, error) {
	if e.force && cmd.Conditional() {
		return plan.Verdict{Stale: true, Reason: "forced"}, nil
	}
	return plan.EvaluateStale(ctx, cmd)
}

// runStep performs the declared directory lifecycle and the external
// command as one unit: rmdirs, then mkdirs, then the process itself. No
// other step observes the cleared-but-not-yet-rebuilt directories because
// steps of one component are serial and the paths belong to it.
func (e *Executor) runStep(ctx context.Context, cmd *manifest.Command, reason string) *StepResult {
	logger := ctxlog.FromContext(ctx)
	workDir := cmd.WorkDir()

	step := &StepResult{Command: cmd.Command, Reason: reason}

	for _, dir := range cmd.Rmdirs {
		if err := os.RemoveAll(resolvePath(workDir, dir)); err != nil {
			step.Status = StepRanFailed
			step.ExitCode = -1
			step.Output = "rmdir " + dir + ": " + err.Error()
			return step
		}
	}
	for _, dir := range cmd.Mkdirs {
		if err := os.MkdirAll(resolvePath(workDir, dir), 0755); err != nil {
			step.Status = StepRanFailed
			step.ExitCode = -1
			step.Output = "mkdir " + dir + ": " + err.Error()
			return step
		}
	}

	argv, err := splitCommand(cmd.Command)
	if err != nil {
		step.Status = StepRanFailed
		step.ExitCode = -1
		step.Output = err.Error()
		return step
	}

	logger.Info("🚀 Running command.", "command", cmd.Command, "dir", workDir)
	proc := exec.CommandContext(ctx, argv[0], argv[1:]...)
	proc.Dir = workDir
	var output bytes.Buffer
	proc.Stdout = &output
	proc.Stderr = &output

	runErr := proc.Run()
	step.Output = output.String()
	if runErr != nil {
		step.Status = StepRanFailed
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			step.ExitCode = exitErr.ExitCode()
		} else {
			step.ExitCode = -1
			step.Output = runErr.Error()
		}
		return step
	}

	step.Status = StepRanOK
	return step
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
