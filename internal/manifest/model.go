// Package manifest defines the unified, format-agnostic representation of an
// application build manifest: component templates with reusable profiles,
// concrete components, and the typed RPC dependencies that link them.
//
// Why a format-agnostic model?
//
// Users write manifests in a concrete syntax (YAML documents of the golem.yaml
// family, or HCL), but everything downstream of loading (template
// resolution, graph construction, planning, execution) should neither know
// nor care which syntax produced the configuration. Loaders translate into
// this package's types; the rest of the system consumes only these types.
package manifest

import (
	"context"
)

// DefaultTempDir is the working directory used for intermediate build
// artifacts when a manifest does not set tempDir.
const DefaultTempDir = "golem-temp"

// Manifest is the root of the loaded configuration, aggregated across the
// root document and every document pulled in by its includes.
type Manifest struct {
	// TempDir is resolved relative to the root document's directory.
	TempDir string
	// WitDeps lists directories holding shared WIT interface dependencies.
	WitDeps []string

	Templates  map[string]*Template
	Components map[string]*Component

	// Dependencies maps a component name to its declared outgoing edges.
	Dependencies map[string][]*Dependency

	// ComponentOrder preserves declaration order across all documents; it is
	// the deterministic tie-breaker for build ordering.
	ComponentOrder []string

	// Source is the directory of the root manifest document.
	Source string
}

// Component is a concrete buildable unit. Exactly one of the three template
// shapes applies (see Template); a component may additionally name a Template
// to inherit defaults from.
type Component struct {
	// TemplateRef names a Template whose resolved properties become the
	// default layer under this component's own settings.
	TemplateRef string

	Properties     *Properties
	Profiles       map[string]*Properties
	ProfileOrder   []string
	DefaultProfile string

	// Source is the directory of the document that declared the component.
	Source string
}

// Loader is the interface for a format-specific manifest loader. Load reads
// the document at path (following root-level includes), translates it into
// the format-agnostic model and validates every declared shape.
type Loader interface {
	Load(ctx context.Context, path string) (*Manifest, error)
}

// DependencyType discriminates the kinds of inter-component dependencies.
type DependencyType string

// DependencyWasmRPC is currently the only dependency kind: the owning
// component calls the target over RPC and needs a generated client stub for
// it before its own build can link.
const DependencyWasmRPC DependencyType = "wasm-rpc"

// Dependency is one directed edge from the owning component to Target.
type Dependency struct {
	Type   DependencyType
	Target string
}

// FilePermissions is the access mode of a seeded runtime file.
type FilePermissions string

const (
	FileReadOnly  FilePermissions = "read-only"
	FileReadWrite FilePermissions = "read-write"
)

// InitialFile describes one file seeded into a component's runtime
// filesystem. It is validated as part of the schema but consumed by the
// runtime provisioning subsystem, not by the build orchestrator.
type InitialFile struct {
	SourcePath  string
	TargetPath  string
	Permissions FilePermissions
}

// Shape validation entry point for a fully loaded manifest. Loaders call
// this after translation; it rejects ambiguous template shapes, profiles
// blocks without a valid defaultProfile, and malformed commands, so that
// every later stage can assume well-formed input.
func (m *Manifest) Validate() error {
	for name, tpl := range m.Templates {
		if err := tpl.validateShape(); err != nil {
			return &ValidationError{Kind: "template", Name: name, Err: err}
		}
	}
	for name, comp := range m.Components {
		if err := comp.validateShape(); err != nil {
			return &ValidationError{Kind: "component", Name: name, Err: err}
		}
	}
	for owner, deps := range m.Dependencies {
		for _, dep := range deps {
			if dep.Type != DependencyWasmRPC {
				return &ValidationError{
					Kind: "dependency", Name: owner,
					Err: errUnknownDependencyType(dep.Type),
				}
			}
		}
	}
	return nil
}
