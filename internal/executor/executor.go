// Package executor runs a build plan on a bounded worker pool.
//
// Concurrency is only across components; the steps of one component run
// strictly in declaration order on a single worker, because later steps
// commonly consume earlier steps' targets. On the first component failure
// already-dispatched components are allowed to finish, because killing an
// external compiler mid-write would leave partially-applied filesystem
// state, but no new component work is dispatched.
package executor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vk/wasmbuildgo/internal/ctxlog"
	"github.com/vk/wasmbuildgo/internal/plan"
)

// DefaultWorkerCount bounds component-level parallelism when the caller
// does not choose one.
const DefaultWorkerCount = 4

// Executor executes one BuildPlan and produces its Report.
type Executor struct {
	plan    *plan.BuildPlan
	workers int

	// force marks every conditional step stale without consulting the
	// filesystem.
	force bool

	failed atomic.Bool
}

// New returns an executor over the given plan with the given worker bound.
func New(p *plan.BuildPlan, workers int, force bool) *Executor {
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	return &Executor{plan: p, workers: workers, force: force}
}

// Run executes the plan and returns the per-component, per-step report.
// The report always covers every planned component, including those never
// dispatched after a failure.
func (e *Executor) Run(ctx context.Context) *Report {
	logger := ctxlog.FromContext(ctx)

	report := &Report{Components: make([]*ComponentResult, len(e.plan.Components))}
	for i, comp := range e.plan.Components {
		report.Components[i] = &ComponentResult{Name: comp.Name, Profile: comp.Profile}
	}

	type job struct {
		component *plan.ComponentPlan
		result    *ComponentResult
	}

	jobs := make(chan job)
	var wg sync.WaitGroup

	logger.Debug("Starting worker pool.", "workers", e.workers)
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			workerLogger := logger.With("workerID", workerID)
			for j := range jobs {
				// A send may already have been pending when the failure
				// flag flipped; re-check before doing any work.
				if e.failed.Load() || ctx.Err() != nil {
					j.result.Skipped = true
					workerLogger.Warn("Component skipped due to earlier failure.", "component", j.component.Name)
					continue
				}
				workerLogger.Debug("Worker picked up component.", "component", j.component.Name)
				e.runComponent(ctx, j.component, j.result)
			}
		}(i)
	}

	// Dispatch in plan order; stop handing out new components once one has
	// failed, but let everything already dispatched run to completion.
	for i, comp := range e.plan.Components {
		if e.failed.Load() || ctx.Err() != nil {
			report.Components[i].Skipped = true
			logger.Warn("Component not dispatched due to earlier failure.", "component", comp.Name)
			continue
		}
		jobs <- job{component: comp, result: report.Components[i]}
	}
	close(jobs)
	wg.Wait()

	if report.OK() {
		logger.Info("🏁 Execution finished.", "components", len(report.Components))
	} else {
		logger.Error("🏁 Execution finished with failures.", "components", len(report.Components))
	}
	return report
}
