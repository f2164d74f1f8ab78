package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/wasmbuildgo/internal/manifest"
)

func TestResolve_TemplateInheritance(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	m := &manifest.Manifest{
		Templates: map[string]*manifest.Template{
			"rust": {Properties: &manifest.Properties{
				SourceWit:     "wit",
				ComponentWasm: "target/component.wasm",
				Build:         []*manifest.Command{{Command: "cargo component build"}},
			}},
		},
		Components: map[string]*manifest.Component{
			"cart": {
				TemplateRef: "rust",
				Properties:  &manifest.Properties{ComponentWasm: "custom/cart.wasm"},
			},
		},
		ComponentOrder: []string{"cart"},
	}

	// --- Act ---
	components, err := Resolve(m, Options{})

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, components, 1)
	cart := components[0]
	require.Equal(t, "cart", cart.Name)
	// Override wins for the scalar it sets; the rest is inherited.
	require.Equal(t, "custom/cart.wasm", cart.Properties.ComponentWasm)
	require.Equal(t, "wit", cart.Properties.SourceWit)
	require.Len(t, cart.Properties.Build, 1)
}

func TestResolve_ComponentWithoutTemplateIsIdentity(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	props := &manifest.Properties{
		SourceWit: "wit",
		Build:     []*manifest.Command{{Command: "make"}},
	}
	m := &manifest.Manifest{
		Components:     map[string]*manifest.Component{"app": {Properties: props}},
		ComponentOrder: []string{"app"},
	}

	// --- Act ---
	components, err := Resolve(m, Options{})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, props.SourceWit, components[0].Properties.SourceWit)
	require.Equal(t, props.Build, components[0].Properties.Build)
	require.Empty(t, components[0].Profile)
}

func TestResolve_TemplateReferenceChain(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	m := &manifest.Manifest{
		Templates: map[string]*manifest.Template{
			"alias": {Ref: "base"},
			"base":  {Properties: &manifest.Properties{SourceWit: "wit"}},
		},
		Components:     map[string]*manifest.Component{"app": {TemplateRef: "alias"}},
		ComponentOrder: []string{"app"},
	}

	// --- Act ---
	components, err := Resolve(m, Options{})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "wit", components[0].Properties.SourceWit)
}

func TestResolve_TemplateCycle(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	m := &manifest.Manifest{
		Templates: map[string]*manifest.Template{
			"a": {Ref: "b"},
			"b": {Ref: "a"},
		},
		Components:     map[string]*manifest.Component{"app": {TemplateRef: "a"}},
		ComponentOrder: []string{"app"},
	}

	// --- Act ---
	_, err := Resolve(m, Options{})

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "template reference cycle: a -> b -> a")
}

func TestResolve_UnknownTemplate(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	m := &manifest.Manifest{
		Components:     map[string]*manifest.Component{"app": {TemplateRef: "nope"}},
		ComponentOrder: []string{"app"},
	}

	// --- Act ---
	_, err := Resolve(m, Options{})

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), `invalid component "app"`)
	require.Contains(t, err.Error(), `references unknown template "nope"`)
}

func TestResolve_ProfileSelection(t *testing.T) {
	t.Parallel()

	m := &manifest.Manifest{
		Components: map[string]*manifest.Component{
			"app": {
				DefaultProfile: "debug",
				Profiles: map[string]*manifest.Properties{
					"debug":   {Build: []*manifest.Command{{Command: "cargo build"}}},
					"release": {Build: []*manifest.Command{{Command: "cargo build --release"}}},
				},
				ProfileOrder: []string{"debug", "release"},
			},
			"plain": {Properties: &manifest.Properties{Build: []*manifest.Command{{Command: "make"}}}},
		},
		ComponentOrder: []string{"app", "plain"},
	}

	t.Run("explicit profile selected", func(t *testing.T) {
		t.Parallel()

		components, err := Resolve(m, Options{Profile: "release"})

		require.NoError(t, err)
		require.Equal(t, "release", components[0].Profile)
		require.Equal(t, "cargo build --release", components[0].Properties.Build[0].Command)
		// A component without profiles ignores the request.
		require.Empty(t, components[1].Profile)
	})

	t.Run("default profile without request", func(t *testing.T) {
		t.Parallel()

		components, err := Resolve(m, Options{})

		require.NoError(t, err)
		require.Equal(t, "debug", components[0].Profile)
		require.Equal(t, "cargo build", components[0].Properties.Build[0].Command)
	})

	t.Run("unknown requested profile falls back to default", func(t *testing.T) {
		t.Parallel()

		components, err := Resolve(m, Options{Profile: "bench"})

		require.NoError(t, err)
		require.Equal(t, "debug", components[0].Profile)
	})
}

func TestResolve_DependenciesForUnknownComponent(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	m := &manifest.Manifest{
		Components:     map[string]*manifest.Component{"app": {}},
		ComponentOrder: []string{"app"},
		Dependencies: map[string][]*manifest.Dependency{
			"ghost": {{Type: manifest.DependencyWasmRPC, Target: "app"}},
		},
	}

	// --- Act ---
	_, err := Resolve(m, Options{})

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), `invalid dependency "ghost"`)
	require.Contains(t, err.Error(), "unknown component")
}

func TestResolve_DeclarationOrderPreserved(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	m := &manifest.Manifest{
		Components: map[string]*manifest.Component{
			"c": {}, "a": {}, "b": {},
		},
		ComponentOrder: []string{"c", "a", "b"},
	}

	// --- Act ---
	components, err := Resolve(m, Options{})

	// --- Assert ---
	require.NoError(t, err)
	names := make([]string, len(components))
	for i, c := range components {
		names[i] = c.Name
	}
	require.Equal(t, []string{"c", "a", "b"}, names)
}
