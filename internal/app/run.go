package app

import (
	"context"
	"fmt"

	"github.com/vk/wasmbuildgo/internal/ctxlog"
	"github.com/vk/wasmbuildgo/internal/depgraph"
	"github.com/vk/wasmbuildgo/internal/executor"
	"github.com/vk/wasmbuildgo/internal/plan"
	"github.com/vk/wasmbuildgo/internal/resolver"
)

// Run executes the configured command. Build and custom commands return the
// execution report; clean returns a nil report.
func (a *App) Run(ctx context.Context, appConfig *Config) (*executor.Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", appConfig.Command)

	switch appConfig.Command {
	case CommandBuild:
		return a.Build(ctx, appConfig)
	case CommandClean:
		return nil, a.Clean(ctx, appConfig)
	default:
		return a.CustomCommand(ctx, appConfig, appConfig.Command)
	}
}

// Build resolves the manifest, constructs the dependency graph, plans the
// build and executes it.
func (a *App) Build(ctx context.Context, appConfig *Config) (*executor.Report, error) {
	buildPlan, err := a.assemble(ctx, appConfig, func(ctx context.Context, components []*resolver.Component, g *depgraph.Graph) (*plan.BuildPlan, error) {
		return plan.New(ctx, components, g), nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("🚀 Starting build.", "components", len(buildPlan.Components), "workers", appConfig.WorkerCount)
	exec := executor.New(buildPlan, appConfig.WorkerCount, appConfig.ForceBuild)
	return exec.Run(ctx), nil
}

// CustomCommand runs a named command sequence across every component that
// defines it.
func (a *App) CustomCommand(ctx context.Context, appConfig *Config, name string) (*executor.Report, error) {
	buildPlan, err := a.assemble(ctx, appConfig, func(ctx context.Context, components []*resolver.Component, g *depgraph.Graph) (*plan.BuildPlan, error) {
		return plan.NewCustom(ctx, components, g, name)
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("🚀 Starting custom command.", "command", name, "components", len(buildPlan.Components))
	exec := executor.New(buildPlan, appConfig.WorkerCount, appConfig.ForceBuild)
	return exec.Run(ctx), nil
}

// assemble is the shared resolve -> graph -> plan pipeline. Configuration
// and planning errors abort here, before any side effect occurs.
func (a *App) assemble(ctx context.Context, appConfig *Config, makePlan func(context.Context, []*resolver.Component, *depgraph.Graph) (*plan.BuildPlan, error)) (*plan.BuildPlan, error) {
	components, err := resolver.Resolve(a.manifest, resolver.Options{Profile: appConfig.Profile})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve components: %w", err)
	}
	a.logger.Debug("Components resolved.", "count", len(components))

	graph, err := depgraph.Build(ctx, components)
	if err != nil {
		return nil, fmt.Errorf("failed to build dependency graph: %w", err)
	}

	return makePlan(ctx, components, graph)
}
