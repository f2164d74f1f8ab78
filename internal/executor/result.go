package executor

// StepStatus is the terminal state of one planned step.
type StepStatus int

const (
	// StepSkippedFresh means the staleness check found the step's targets
	// up to date and the command was not run.
	StepSkippedFresh StepStatus = iota
	// StepRanOK means the command ran and exited zero.
	StepRanOK
	// StepRanFailed means the command ran and exited non-zero, or could
	// not be started.
	StepRanFailed
)

func (s StepStatus) String() string {
	switch s {
	case StepSkippedFresh:
		return "skipped-fresh"
	case StepRanOK:
		return "ran-ok"
	case StepRanFailed:
		return "ran-failed"
	default:
		return "unknown"
	}
}

// StepResult is the outcome of one step of one component.
type StepResult struct {
	Command string
	Status  StepStatus

	// Reason is the staleness verdict that led to running or skipping.
	Reason string

	// ExitCode is the process exit code for StepRanFailed; -1 when the
	// process could not be started at all.
	ExitCode int

	// Output is the combined stdout and stderr of the command.
	Output string
}

// ComponentResult is the outcome of one component's sequence.
type ComponentResult struct {
	Name    string
	Profile string

	// Steps covers every evaluated step, in order. A failed step is the
	// last entry; the remaining sequence was not evaluated.
	Steps []*StepResult

	// Err is the component-scoped configuration error (a failed staleness
	// evaluation) that stopped the sequence, if any.
	Err error

	// Skipped marks a component never dispatched because an earlier
	// component had already failed.
	Skipped bool
}

// Failed reports whether the component ended in any non-success state.
func (r *ComponentResult) Failed() bool {
	if r.Skipped || r.Err != nil {
		return true
	}
	for _, step := range r.Steps {
		if step.Status == StepRanFailed {
			return true
		}
	}
	return false
}

// Report is the full outcome of one plan execution, covering every planned
// component.
type Report struct {
	Components []*ComponentResult
}

// OK reports whether every component succeeded.
func (r *Report) OK() bool {
	for _, comp := range r.Components {
		if comp.Failed() {
			return false
		}
	}
	return true
}

// Component returns the result for the named component, or nil.
func (r *Report) Component(name string) *ComponentResult {
	for _, comp := range r.Components {
		if comp.Name == name {
			return comp
		}
	}
	return nil
}
