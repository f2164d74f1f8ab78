// This file walks yaml.Node trees into the manifest model. Decoding is
// deliberately strict: every mapping is checked against the schema's allowed
// key set before its values are bound, so a typoed field name fails loading
// instead of being silently dropped.
package yamlcfg

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vk/wasmbuildgo/internal/manifest"
)

var rootKeys = keySet("includes", "tempDir", "witDeps", "templates", "components", "dependencies")

// propertyKeys are the flat ComponentProperties fields; their presence marks
// the properties shape at template and component level.
var propertyKeys = keySet("sourceWit", "generatedWit", "componentWasm", "linkedWasm", "build", "customCommands", "clean", "files")

var (
	templateKeys   = union(propertyKeys, keySet("template", "profiles", "defaultProfile"))
	commandKeys    = keySet("command", "dir", "rmdirs", "mkdirs", "sources", "targets")
	dependencyKeys = keySet("type", "target")
	fileKeys       = keySet("sourcePath", "targetPath", "permissions")
)

func decodeDocument(root *yaml.Node, path string) (*manifest.Document, error) {
	mapping, err := mappingNode(root)
	if err != nil {
		return nil, err
	}
	if err := checkKeys(mapping, rootKeys); err != nil {
		return nil, err
	}

	doc := manifest.NewDocument(path)
	sourceDir := filepath.Dir(path)

	for key, value := range pairs(mapping) {
		var err error
		switch key {
		case "includes":
			err = value.Decode(&doc.Includes)
		case "tempDir":
			err = value.Decode(&doc.TempDir)
		case "witDeps":
			err = value.Decode(&doc.WitDeps)
		case "templates":
			err = decodeNamed(value, func(name string, n *yaml.Node) error {
				tpl, err := decodeTemplate(n, sourceDir)
				if err != nil {
					return fmt.Errorf("template %q: %w", name, err)
				}
				doc.Templates[name] = tpl
				doc.TemplateOrder = append(doc.TemplateOrder, name)
				return nil
			})
		case "components":
			err = decodeNamed(value, func(name string, n *yaml.Node) error {
				comp, err := decodeComponent(n, sourceDir)
				if err != nil {
					return fmt.Errorf("component %q: %w", name, err)
				}
				doc.Components[name] = comp
				doc.ComponentOrder = append(doc.ComponentOrder, name)
				return nil
			})
		case "dependencies":
			err = decodeNamed(value, func(owner string, n *yaml.Node) error {
				deps, err := decodeDependencies(n)
				if err != nil {
					return fmt.Errorf("dependencies of %q: %w", owner, err)
				}
				doc.Dependencies[owner] = deps
				doc.DependencyOrder = append(doc.DependencyOrder, owner)
				return nil
			})
		}
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func decodeTemplate(n *yaml.Node, sourceDir string) (*manifest.Template, error) {
	mapping, err := mappingNode(n)
	if err != nil {
		return nil, err
	}
	if err := checkKeys(mapping, templateKeys); err != nil {
		return nil, err
	}

	tpl := &manifest.Template{Source: sourceDir}
	if ref, ok := lookup(mapping, "template"); ok {
		if err := ref.Decode(&tpl.Ref); err != nil {
			return nil, err
		}
	}
	if hasAnyKey(mapping, propertyKeys) {
		props, err := decodeProperties(mapping, sourceDir)
		if err != nil {
			return nil, err
		}
		tpl.Properties = props
	}
	if err := decodeProfileShape(mapping, sourceDir, &tpl.Profiles, &tpl.ProfileOrder, &tpl.DefaultProfile); err != nil {
		return nil, err
	}
	return tpl, nil
}

func decodeComponent(n *yaml.Node, sourceDir string) (*manifest.Component, error) {
	mapping, err := mappingNode(n)
	if err != nil {
		return nil, err
	}
	if err := checkKeys(mapping, templateKeys); err != nil {
		return nil, err
	}

	comp := &manifest.Component{Source: sourceDir}
	if ref, ok := lookup(mapping, "template"); ok {
		if err := ref.Decode(&comp.TemplateRef); err != nil {
			return nil, err
		}
	}
	if hasAnyKey(mapping, propertyKeys) {
		props, err := decodeProperties(mapping, sourceDir)
		if err != nil {
			return nil, err
		}
		comp.Properties = props
	}
	if err := decodeProfileShape(mapping, sourceDir, &comp.Profiles, &comp.ProfileOrder, &comp.DefaultProfile); err != nil {
		return nil, err
	}
	return comp, nil
}

// decodeProfileShape binds the profiles map and defaultProfile key shared by
// templates and components.
func decodeProfileShape(mapping *yaml.Node, sourceDir string, profiles *map[string]*manifest.Properties, order *[]string, defaultProfile *string) error {
	if node, ok := lookup(mapping, "defaultProfile"); ok {
		if err := node.Decode(defaultProfile); err != nil {
			return err
		}
	}
	node, ok := lookup(mapping, "profiles")
	if !ok {
		return nil
	}
	*profiles = map[string]*manifest.Properties{}
	return decodeNamed(node, func(name string, n *yaml.Node) error {
		profileMapping, err := mappingNode(n)
		if err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
		if err := checkKeys(profileMapping, propertyKeys); err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
		props, err := decodeProperties(profileMapping, sourceDir)
		if err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
		(*profiles)[name] = props
		*order = append(*order, name)
		return nil
	})
}

// decodeProperties binds the flat property keys of an already key-checked
// mapping; non-property keys (template, profiles, ...) are skipped.
func decodeProperties(mapping *yaml.Node, sourceDir string) (*manifest.Properties, error) {
	props := &manifest.Properties{Source: sourceDir}
	for key, value := range pairs(mapping) {
		var err error
		switch key {
		case "sourceWit":
			err = value.Decode(&props.SourceWit)
		case "generatedWit":
			err = value.Decode(&props.GeneratedWit)
		case "componentWasm":
			err = value.Decode(&props.ComponentWasm)
		case "linkedWasm":
			err = value.Decode(&props.LinkedWasm)
		case "clean":
			err = value.Decode(&props.Clean)
		case "build":
			props.Build, err = decodeCommands(value, sourceDir)
		case "customCommands":
			props.CustomCommands = map[string][]*manifest.Command{}
			err = decodeNamed(value, func(name string, n *yaml.Node) error {
				cmds, err := decodeCommands(n, sourceDir)
				if err != nil {
					return fmt.Errorf("custom command %q: %w", name, err)
				}
				props.CustomCommands[name] = cmds
				return nil
			})
		case "files":
			props.Files, err = decodeFiles(value)
		}
		if err != nil {
			return nil, err
		}
	}
	return props, nil
}

func decodeCommands(n *yaml.Node, sourceDir string) ([]*manifest.Command, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a sequence of commands", n.Line)
	}
	cmds := make([]*manifest.Command, 0, len(n.Content))
	for _, item := range n.Content {
		mapping, err := mappingNode(item)
		if err != nil {
			return nil, err
		}
		if err := checkKeys(mapping, commandKeys); err != nil {
			return nil, err
		}
		var raw struct {
			Command string   `yaml:"command"`
			Dir     string   `yaml:"dir"`
			Rmdirs  []string `yaml:"rmdirs"`
			Mkdirs  []string `yaml:"mkdirs"`
			Sources []string `yaml:"sources"`
			Targets []string `yaml:"targets"`
		}
		if err := mapping.Decode(&raw); err != nil {
			return nil, err
		}
		cmds = append(cmds, &manifest.Command{
			Command: raw.Command,
			Dir:     raw.Dir,
			Rmdirs:  raw.Rmdirs,
			Mkdirs:  raw.Mkdirs,
			Sources: raw.Sources,
			Targets: raw.Targets,
			Source:  sourceDir,
		})
	}
	return cmds, nil
}

func decodeFiles(n *yaml.Node) ([]*manifest.InitialFile, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a sequence of file entries", n.Line)
	}
	files := make([]*manifest.InitialFile, 0, len(n.Content))
	for _, item := range n.Content {
		mapping, err := mappingNode(item)
		if err != nil {
			return nil, err
		}
		if err := checkKeys(mapping, fileKeys); err != nil {
			return nil, err
		}
		var raw struct {
			SourcePath  string `yaml:"sourcePath"`
			TargetPath  string `yaml:"targetPath"`
			Permissions string `yaml:"permissions"`
		}
		if err := mapping.Decode(&raw); err != nil {
			return nil, err
		}
		files = append(files, &manifest.InitialFile{
			SourcePath:  raw.SourcePath,
			TargetPath:  raw.TargetPath,
			Permissions: manifest.FilePermissions(raw.Permissions),
		})
	}
	return files, nil
}

func decodeDependencies(n *yaml.Node) ([]*manifest.Dependency, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a sequence of dependencies", n.Line)
	}
	deps := make([]*manifest.Dependency, 0, len(n.Content))
	for _, item := range n.Content {
		mapping, err := mappingNode(item)
		if err != nil {
			return nil, err
		}
		if err := checkKeys(mapping, dependencyKeys); err != nil {
			return nil, err
		}
		var raw struct {
			Type   string `yaml:"type"`
			Target string `yaml:"target"`
		}
		if err := mapping.Decode(&raw); err != nil {
			return nil, err
		}
		if raw.Type == "" || raw.Target == "" {
			return nil, fmt.Errorf("line %d: dependency requires type and target", item.Line)
		}
		deps = append(deps, &manifest.Dependency{
			Type:   manifest.DependencyType(raw.Type),
			Target: raw.Target,
		})
	}
	return deps, nil
}

// --- yaml.Node helpers ---

func mappingNode(n *yaml.Node) (*yaml.Node, error) {
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	return n, nil
}

// pairs iterates a mapping node's key/value pairs in document order.
func pairs(mapping *yaml.Node) func(yield func(string, *yaml.Node) bool) {
	return func(yield func(string, *yaml.Node) bool) {
		for i := 0; i+1 < len(mapping.Content); i += 2 {
			if !yield(mapping.Content[i].Value, mapping.Content[i+1]) {
				return
			}
		}
	}
}

// lookup returns the value node of a mapping key, if present.
func lookup(mapping *yaml.Node, key string) (*yaml.Node, bool) {
	for name, value := range pairs(mapping) {
		if name == key {
			return value, true
		}
	}
	return nil, false
}

// decodeNamed iterates a mapping of name -> value, preserving order.
func decodeNamed(n *yaml.Node, decode func(name string, value *yaml.Node) error) error {
	mapping, err := mappingNode(n)
	if err != nil {
		return err
	}
	for name, value := range pairs(mapping) {
		if err := decode(name, value); err != nil {
			return err
		}
	}
	return nil
}

// checkKeys rejects any key of the mapping not present in allowed; the
// schema forbids additional properties everywhere.
func checkKeys(mapping *yaml.Node, allowed map[string]bool) error {
	for key := range pairs(mapping) {
		if !allowed[key] {
			return fmt.Errorf("line %d: unknown field %q (allowed: %s)", mapping.Line, key, strings.Join(sortedKeys(allowed), ", "))
		}
	}
	return nil
}

func keySet(keys ...string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, key := range keys {
		set[key] = true
	}
	return set
}

func union(sets ...map[string]bool) map[string]bool {
	out := map[string]bool{}
	for _, set := range sets {
		for key := range set {
			out[key] = true
		}
	}
	return out
}

func hasAnyKey(mapping *yaml.Node, keys map[string]bool) bool {
	for key := range pairs(mapping) {
		if keys[key] {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
