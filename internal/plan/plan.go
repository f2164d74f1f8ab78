// Package plan turns resolved components and their dependency graph into an
// ordered build plan, and decides per step whether work is stale.
//
// A BuildPlan is an ordered sequence of per-component command sequences.
// Steps inside one component are strictly ordered (later steps commonly
// consume earlier steps' targets); the components themselves follow the
// graph's deterministic order and may execute concurrently because wasm-rpc
// edges impose no binary-ordering constraint (see depgraph).
package plan

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/wasmbuildgo/internal/ctxlog"
	"github.com/vk/wasmbuildgo/internal/depgraph"
	"github.com/vk/wasmbuildgo/internal/manifest"
	"github.com/vk/wasmbuildgo/internal/resolver"
)

// ComponentPlan is the ordered command sequence of one component.
type ComponentPlan struct {
	Name    string
	Profile string

	// Deps are the component's wasm-rpc edge targets, carried along for
	// execution logging. They impose no ordering (see depgraph).
	Deps []string

	Steps []*manifest.Command
}

// BuildPlan is the full, dependency-ordered plan for one invocation. It is
// constructed fresh per run and discarded afterwards.
type BuildPlan struct {
	Components []*ComponentPlan
}

// New assembles the build plan: every component's build sequence, ordered by
// the dependency graph's deterministic component order.
func New(ctx context.Context, components []*resolver.Component, g *depgraph.Graph) *BuildPlan {
	logger := ctxlog.FromContext(ctx)

	byName := make(map[string]*resolver.Component, len(components))
	for _, comp := range components {
		byName[comp.Name] = comp
	}

	p := &BuildPlan{}
	steps := 0
	for _, name := range g.Order() {
		comp := byName[name]
		p.Components = append(p.Components, &ComponentPlan{
			Name:    comp.Name,
			Profile: comp.Profile,
			Deps:    g.Dependencies(comp.Name),
			Steps:   comp.Properties.Build,
		})
		steps += len(comp.Properties.Build)
	}

	logger.Debug("Build plan assembled.", "components", len(p.Components), "steps", steps)
	return p
}

// NewCustom assembles a plan for a named custom command: every component
// that defines the name contributes its sequence, in graph order. An
// unknown name is a configuration error listing what is available.
func NewCustom(ctx context.Context, components []*resolver.Component, g *depgraph.Graph, name string) (*BuildPlan, error) {
	byName := make(map[string]*resolver.Component, len(components))
	available := map[string]bool{}
	for _, comp := range components {
		byName[comp.Name] = comp
		for cmdName := range comp.Properties.CustomCommands {
			available[cmdName] = true
		}
	}

	p := &BuildPlan{}
	for _, compName := range g.Order() {
		comp := byName[compName]
		cmds, ok := comp.Properties.CustomCommands[name]
		if !ok {
			continue
		}
		p.Components = append(p.Components, &ComponentPlan{
			Name:    comp.Name,
			Profile: comp.Profile,
			Deps:    g.Dependencies(compName),
			Steps:   cmds,
		})
	}
	if len(p.Components) == 0 {
		names := make([]string, 0, len(available))
		for cmdName := range available {
			names = append(names, cmdName)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown custom command %q (available: %s)", name, strings.Join(names, ", "))
	}

	ctxlog.FromContext(ctx).Debug("Custom command plan assembled.", "command", name, "components", len(p.Components))
	return p, nil
}
