// Package resolver turns the raw manifest (templates + profiles +
// components) into one fully merged configuration per component.
//
// Resolution is a pure function of the loaded manifest: template reference
// chains are chased (and rejected on cycles), a profile is selected where a
// profiles shape appears, and the component's own properties are layered
// over the template's with a documented per-field policy (scalar: override
// wins; sequence: wholesale replace). No filesystem access happens here.
package resolver

import (
	"fmt"

	"github.com/vk/wasmbuildgo/internal/manifest"
)

// Component is one fully resolved component: no template or profile
// indirection remains.
type Component struct {
	Name string

	// Profile is the selected profile name, empty when neither the
	// component nor its template uses profiles.
	Profile string

	Properties   *manifest.Properties
	Dependencies []*manifest.Dependency
}

// Options controls resolution for one invocation.
type Options struct {
	// Profile is the explicitly requested profile name. Components whose
	// profiles map lacks it fall back to their defaultProfile; components
	// without profiles ignore it.
	Profile string
}

// Resolve produces one resolved component per manifest component, in
// declaration order.
func Resolve(m *manifest.Manifest, opts Options) ([]*Component, error) {
	for owner := range m.Dependencies {
		if _, ok := m.Components[owner]; !ok {
			return nil, &manifest.ValidationError{
				Kind: "dependency", Name: owner,
				Err: fmt.Errorf("dependencies declared for unknown component"),
			}
		}
	}

	resolved := make([]*Component, 0, len(m.ComponentOrder))
	for _, name := range m.ComponentOrder {
		comp, err := resolveComponent(m, name, m.Components[name], opts)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, comp)
	}
	return resolved, nil
}

func resolveComponent(m *manifest.Manifest, name string, c *manifest.Component, opts Options) (*Component, error) {
	var base *manifest.Properties
	var baseProfile string

	if c.TemplateRef != "" {
		tpl, err := resolveTemplate(m, c.TemplateRef, nil)
		if err != nil {
			return nil, &manifest.ValidationError{Kind: "component", Name: name, Err: err}
		}
		base, baseProfile = selectLayer(tpl.Properties, tpl.Profiles, tpl.DefaultProfile, opts.Profile)
	}

	over, overProfile := selectLayer(c.Properties, c.Profiles, c.DefaultProfile, opts.Profile)

	profile := baseProfile
	if overProfile != "" {
		profile = overProfile
	}

	return &Component{
		Name:         name,
		Profile:      profile,
		Properties:   mergeProperties(base, over),
		Dependencies: m.Dependencies[name],
	}, nil
}

// resolveTemplate chases a template reference chain to its terminal
// template. The stack carries the names already visited; revisiting one is a
// reference cycle and a fatal configuration error.
func resolveTemplate(m *manifest.Manifest, name string, stack []string) (*manifest.Template, error) {
	for _, seen := range stack {
		if seen == name {
			return nil, fmt.Errorf("template reference cycle: %s -> %s", joinChain(stack), name)
		}
	}

	tpl, ok := m.Templates[name]
	if !ok {
		return nil, fmt.Errorf("references unknown template %q", name)
	}
	if tpl.Ref != "" {
		return resolveTemplate(m, tpl.Ref, append(stack, name))
	}
	return tpl, nil
}

// selectLayer picks the concrete properties of one side (template or
// component). For the profiles shape the requested profile wins when
// present; otherwise defaultProfile applies. Validation already guaranteed
// that defaultProfile is a member of the map.
func selectLayer(props *manifest.Properties, profiles map[string]*manifest.Properties, defaultProfile, requested string) (*manifest.Properties, string) {
	if len(profiles) == 0 {
		return props, ""
	}
	if requested != "" {
		if selected, ok := profiles[requested]; ok {
			return selected, requested
		}
	}
	return profiles[defaultProfile], defaultProfile
}

func joinChain(stack []string) string {
	out := ""
	for i, name := range stack {
		if i > 0 {
			out += " -> "
		}
		out += name
	}
	return out
}
