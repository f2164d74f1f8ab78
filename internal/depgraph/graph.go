// Package depgraph builds the directed graph of inter-component wasm-rpc
// dependencies and validates it.
//
// Why are cycles allowed here?
//
// A wasm-rpc edge A -> B means A links a generated client stub for B. Stub
// generation needs only B's WIT interface description, which is available
// from its source or generated WIT independent of whether B's binary has
// been built. Interface availability is therefore not binary availability:
// self-edges and mutual dependency cycles are valid component sets, and the
// graph used for build ordering is a relaxation that drops edges satisfied
// by interface extraction alone. Turning this into a strict-DAG check would
// reject valid self-referential and mutually-dependent applications.
package depgraph

import (
	"context"
	"fmt"

	"github.com/vk/wasmbuildgo/internal/ctxlog"
	"github.com/vk/wasmbuildgo/internal/resolver"
)

// Graph is the component dependency graph for one invocation. It is built
// fresh from the resolved components and never persisted.
type Graph struct {
	nodes map[string]*node
	order []string
}

type node struct {
	name string
	deps []string
}

// DanglingTargetError reports a dependency edge whose target is not among
// the resolved components. It is fatal before any execution begins.
type DanglingTargetError struct {
	Component string
	Target    string
}

func (e *DanglingTargetError) Error() string {
	return fmt.Sprintf("component %q depends on unknown component %q", e.Component, e.Target)
}

// Build constructs the graph with one node per resolved component and one
// edge per wasm-rpc dependency, validating every edge target.
func Build(ctx context.Context, components []*resolver.Component) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)

	g := &Graph{nodes: make(map[string]*node, len(components))}
	for _, comp := range components {
		g.nodes[comp.Name] = &node{name: comp.Name}
		g.order = append(g.order, comp.Name)
	}

	edgeCount := 0
	for _, comp := range components {
		n := g.nodes[comp.Name]
		for _, dep := range comp.Dependencies {
			if _, ok := g.nodes[dep.Target]; !ok {
				return nil, &DanglingTargetError{Component: comp.Name, Target: dep.Target}
			}
			n.deps = append(n.deps, dep.Target)
			edgeCount++
		}
	}

	logger.Debug("Dependency graph built.", "nodes", len(g.nodes), "edges", edgeCount)
	return g, nil
}

// Order returns the build order over components. Because every wasm-rpc
// edge is satisfied by interface extraction alone, components carry no
// binary-ordering constraints against each other; the deterministic
// tie-breaker is manifest declaration order.
func (g *Graph) Order() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Dependencies returns the edge targets of a component in declaration order.
func (g *Graph) Dependencies(name string) []string {
	n, ok := g.nodes[name]
	if !ok {
		return nil
	}
	return n.deps
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}
