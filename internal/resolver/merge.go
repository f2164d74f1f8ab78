// This file implements the layered "base + overrides -> resolved" merge.
//
// The per-field policy is deliberately explicit, with no recursive
// deep-merge magic:
//
//   - scalar paths (sourceWit, generatedWit, componentWasm, linkedWasm):
//     the override wins when set, otherwise the base value is inherited;
//   - sequence fields (build, clean, files) are replaced wholesale by
//     whichever side set them, never merged element-wise;
//   - customCommands merges per entry name, each named sequence replaced
//     wholesale.
package resolver

import "github.com/vk/wasmbuildgo/internal/manifest"

func mergeProperties(base, over *manifest.Properties) *manifest.Properties {
	if base == nil && over == nil {
		return &manifest.Properties{}
	}
	if base == nil {
		return copyProperties(over)
	}
	if over == nil {
		return copyProperties(base)
	}

	merged := copyProperties(base)
	merged.Source = over.Source

	if over.SourceWit != "" {
		merged.SourceWit = over.SourceWit
	}
	if over.GeneratedWit != "" {
		merged.GeneratedWit = over.GeneratedWit
	}
	if over.ComponentWasm != "" {
		merged.ComponentWasm = over.ComponentWasm
	}
	if over.LinkedWasm != "" {
		merged.LinkedWasm = over.LinkedWasm
	}
	if over.Build != nil {
		merged.Build = over.Build
	}
	if over.Clean != nil {
		merged.Clean = over.Clean
	}
	if over.Files != nil {
		merged.Files = over.Files
	}
	if over.CustomCommands != nil {
		if merged.CustomCommands == nil {
			merged.CustomCommands = map[string][]*manifest.Command{}
		}
		for name, cmds := range over.CustomCommands {
			merged.CustomCommands[name] = cmds
		}
	}
	return merged
}

// copyProperties clones the top level of a Properties value so that merging
// never mutates the immutable loaded manifest. Commands themselves are
// shared; they are read-only after loading.
func copyProperties(p *manifest.Properties) *manifest.Properties {
	clone := *p
	if p.CustomCommands != nil {
		clone.CustomCommands = make(map[string][]*manifest.Command, len(p.CustomCommands))
		for name, cmds := range p.CustomCommands {
			clone.CustomCommands[name] = cmds
		}
	}
	return &clone
}
