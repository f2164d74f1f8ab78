package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/wasmbuildgo/internal/executor"
)

// AssertStepStatus checks that the named component's step at the given index
// finished with the expected status.
func AssertStepStatus(t *testing.T, result *HarnessResult, component string, step int, want executor.StepStatus) {
	t.Helper()

	require.NoError(t, result.Err)
	require.NotNil(t, result.Report)

	cr := result.Report.Component(component)
	require.NotNil(t, cr, "component %q missing from report", component)
	require.Greater(t, len(cr.Steps), step, "component %q has fewer than %d steps", component, step+1)
	require.Equal(t, want, cr.Steps[step].Status,
		"component %q step %d: want %s, got %s (output: %s)",
		component, step, want, cr.Steps[step].Status, cr.Steps[step].Output)
}

// AssertComponentOK checks that every step of the named component ran or was
// skipped as fresh, with no component-level error.
func AssertComponentOK(t *testing.T, result *HarnessResult, component string) {
	t.Helper()

	require.NoError(t, result.Err)
	require.NotNil(t, result.Report)

	cr := result.Report.Component(component)
	require.NotNil(t, cr, "component %q missing from report", component)
	require.NoError(t, cr.Err, "component %q reported an error", component)
	require.False(t, cr.Skipped, "component %q was skipped", component)
	for i, step := range cr.Steps {
		require.NotEqual(t, executor.StepRanFailed, step.Status,
			"component %q step %d failed: %s", component, i, step.Output)
	}
}
