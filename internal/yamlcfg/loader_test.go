package yamlcfg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/wasmbuildgo/internal/manifest"
)

// writeFiles materializes a relative path -> content map under dir.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func load(t *testing.T, files map[string]string) (*manifest.Manifest, error) {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, files)
	return NewLoader().Load(context.Background(), dir)
}

func TestLoad_FullDocument(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"golem.yaml": `
tempDir: build-temp
witDeps:
  - wit/deps
templates:
  rust:
    sourceWit: wit
    generatedWit: wit-generated
    componentWasm: target/component.wasm
    linkedWasm: ../golem-temp/linked.wasm
    build:
      - command: cargo component build
        sources:
          - src
        targets:
          - target/component.wasm
components:
  shopping-cart:
    template: rust
  checkout:
    sourceWit: wit
    build:
      - command: make build
dependencies:
  shopping-cart:
    - type: wasm-rpc
      target: checkout
`,
	}

	// --- Act ---
	m, err := load(t, files)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, m.Templates, 1)
	require.Len(t, m.Components, 2)
	require.Equal(t, []string{"shopping-cart", "checkout"}, m.ComponentOrder)
	require.Equal(t, filepath.Join(m.Source, "build-temp"), m.TempDir)
	require.Equal(t, []string{filepath.Join(m.Source, "wit/deps")}, m.WitDeps)

	tpl := m.Templates["rust"]
	require.Equal(t, manifest.KindProperties, tpl.Kind())
	require.Equal(t, "wit", tpl.Properties.SourceWit)
	require.Len(t, tpl.Properties.Build, 1)
	require.True(t, tpl.Properties.Build[0].Conditional())

	require.Equal(t, "rust", m.Components["shopping-cart"].TemplateRef)
	require.Len(t, m.Dependencies["shopping-cart"], 1)
	require.Equal(t, manifest.DependencyWasmRPC, m.Dependencies["shopping-cart"][0].Type)
}

func TestLoad_DefaultTempDir(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"golem.yaml": `
components:
  app:
    build:
      - command: make
`,
	}

	// --- Act ---
	m, err := load(t, files)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, filepath.Join(m.Source, manifest.DefaultTempDir), m.TempDir)
}

func TestLoad_ProfileOrderPreserved(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"golem.yaml": `
components:
  app:
    defaultProfile: debug
    profiles:
      release:
        build:
          - command: cargo build --release
      debug:
        build:
          - command: cargo build
`,
	}

	// --- Act ---
	m, err := load(t, files)

	// --- Assert ---
	require.NoError(t, err)
	comp := m.Components["app"]
	require.Equal(t, []string{"release", "debug"}, comp.ProfileOrder)
	require.Equal(t, "debug", comp.DefaultProfile)
}

func TestLoad_Includes(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"golem.yaml": `
includes:
  - components-*/golem.yaml
components:
  root-comp:
    build:
      - command: make
`,
		"components-extra/golem.yaml": `
components:
  extra-comp:
    build:
      - command: make
`,
	}

	// --- Act ---
	m, err := load(t, files)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, []string{"root-comp", "extra-comp"}, m.ComponentOrder)
	// Paths in an included document anchor to its own directory.
	require.Equal(t,
		filepath.Join(m.Source, "components-extra"),
		m.Components["extra-comp"].Source)
}

func TestLoad_IncludedDocumentCannotInclude(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	manifests := map[string]string{
		"golem.yaml": `
includes:
  - sub/golem.yaml
`,
		"sub/golem.yaml": `
includes:
  - deeper/golem.yaml
`,
	}

	// --- Act ---
	_, err := load(t, manifests)

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "includes are only allowed in the root manifest")
}

func TestLoad_UnknownField(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		yaml        string
		errContains string
	}{
		{
			name: "root level",
			yaml: `
component:
  app: {}
`,
			errContains: `unknown field "component"`,
		},
		{
			name: "component level",
			yaml: `
components:
  app:
    buidl:
      - command: make
`,
			errContains: `unknown field "buidl"`,
		},
		{
			name: "command level",
			yaml: `
components:
  app:
    build:
      - command: make
        source:
          - src
`,
			errContains: `unknown field "source"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := load(t, map[string]string{"golem.yaml": tc.yaml})

			require.Error(t, err)
			require.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestLoad_DuplicateComponentAcrossIncludes(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"golem.yaml": `
includes:
  - sub/golem.yaml
components:
  app:
    build:
      - command: make
`,
		"sub/golem.yaml": `
components:
  app:
    build:
      - command: make
`,
	}

	// --- Act ---
	_, err := load(t, files)

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "declared more than once")
}

func TestLoad_FilePathAccepted(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"app.yaml": `
components:
  app:
    build:
      - command: make
`,
	})

	// --- Act ---
	m, err := NewLoader().Load(context.Background(), filepath.Join(dir, "app.yaml"))

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, m.Components, 1)
}

func TestLoad_MissingManifest(t *testing.T) {
	t.Parallel()

	// --- Act ---
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope"))

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "manifest path")
}
