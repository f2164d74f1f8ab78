package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/wasmbuildgo/internal/manifest"
)

func TestMergeProperties_NilSides(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	props := &manifest.Properties{SourceWit: "wit"}

	// --- Act / Assert ---
	require.NotNil(t, mergeProperties(nil, nil))
	require.Equal(t, "wit", mergeProperties(props, nil).SourceWit)
	require.Equal(t, "wit", mergeProperties(nil, props).SourceWit)
}

func TestMergeProperties_ScalarOverrideWins(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	base := &manifest.Properties{
		SourceWit:     "wit",
		GeneratedWit:  "wit-generated",
		ComponentWasm: "base.wasm",
	}
	over := &manifest.Properties{ComponentWasm: "over.wasm"}

	// --- Act ---
	merged := mergeProperties(base, over)

	// --- Assert ---
	require.Equal(t, "over.wasm", merged.ComponentWasm)
	require.Equal(t, "wit", merged.SourceWit)
	require.Equal(t, "wit-generated", merged.GeneratedWit)
}

func TestMergeProperties_SequencesReplaceWholesale(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	base := &manifest.Properties{
		Build: []*manifest.Command{{Command: "base-one"}, {Command: "base-two"}},
		Clean: []string{"base-dir"},
	}
	over := &manifest.Properties{
		Build: []*manifest.Command{{Command: "over-only"}},
	}

	// --- Act ---
	merged := mergeProperties(base, over)

	// --- Assert ---
	// The override's sequence replaces the base's entirely; an unset
	// sequence is inherited.
	require.Len(t, merged.Build, 1)
	require.Equal(t, "over-only", merged.Build[0].Command)
	require.Equal(t, []string{"base-dir"}, merged.Clean)
}

func TestMergeProperties_CustomCommandsMergePerName(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	base := &manifest.Properties{
		CustomCommands: map[string][]*manifest.Command{
			"lint":   {{Command: "base-lint"}},
			"deploy": {{Command: "base-deploy"}},
		},
	}
	over := &manifest.Properties{
		CustomCommands: map[string][]*manifest.Command{
			"lint": {{Command: "over-lint"}},
		},
	}

	// --- Act ---
	merged := mergeProperties(base, over)

	// --- Assert ---
	require.Equal(t, "over-lint", merged.CustomCommands["lint"][0].Command)
	require.Equal(t, "base-deploy", merged.CustomCommands["deploy"][0].Command)
}

func TestMergeProperties_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	base := &manifest.Properties{
		CustomCommands: map[string][]*manifest.Command{"lint": {{Command: "base-lint"}}},
	}
	over := &manifest.Properties{
		CustomCommands: map[string][]*manifest.Command{"lint": {{Command: "over-lint"}}},
	}

	// --- Act ---
	_ = mergeProperties(base, over)

	// --- Assert ---
	require.Equal(t, "base-lint", base.CustomCommands["lint"][0].Command)
}
