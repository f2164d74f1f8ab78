// This file translates HCL bodies into the manifest model. Attribute values
// go through cty conversion so that list attributes accept tuples of any
// stringable element, matching how HCL tooling normally binds configuration.
package hclcfg

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/wasmbuildgo/internal/manifest"
)

// hclProperties is the flat property surface shared by templates, components
// and profiles. Pointer and slice fields keep presence knowable, which
// drives shape detection.
type hclProperties struct {
	SourceWit      *string             `hcl:"source_wit,optional"`
	GeneratedWit   *string             `hcl:"generated_wit,optional"`
	ComponentWasm  *string             `hcl:"component_wasm,optional"`
	LinkedWasm     *string             `hcl:"linked_wasm,optional"`
	Clean          []string            `hcl:"clean,optional"`
	Build          []*hclCommand       `hcl:"build,block"`
	CustomCommands []*hclNamedCommands `hcl:"custom_command,block"`
	Files          []*hclFile          `hcl:"file,block"`
}

type hclCommand struct {
	Command string   `hcl:"command"`
	Dir     *string  `hcl:"dir,optional"`
	Rmdirs  []string `hcl:"rmdirs,optional"`
	Mkdirs  []string `hcl:"mkdirs,optional"`
	Sources []string `hcl:"sources,optional"`
	Targets []string `hcl:"targets,optional"`
}

type hclNamedCommands struct {
	Name     string        `hcl:"name,label"`
	Commands []*hclCommand `hcl:"command,block"`
}

type hclFile struct {
	SourcePath  string  `hcl:"source_path"`
	TargetPath  string  `hcl:"target_path"`
	Permissions *string `hcl:"permissions,optional"`
}

type hclProfile struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// hclTemplate covers all three template shapes plus the component's sibling
// template reference; shape exclusivity is enforced by manifest validation.
// The property fields repeat hclProperties because gohcl does not flatten
// embedded structs.
type hclTemplate struct {
	Template       *string       `hcl:"template,optional"`
	DefaultProfile *string       `hcl:"default_profile,optional"`
	Profiles       []*hclProfile `hcl:"profile,block"`

	SourceWit      *string             `hcl:"source_wit,optional"`
	GeneratedWit   *string             `hcl:"generated_wit,optional"`
	ComponentWasm  *string             `hcl:"component_wasm,optional"`
	LinkedWasm     *string             `hcl:"linked_wasm,optional"`
	Clean          []string            `hcl:"clean,optional"`
	Build          []*hclCommand       `hcl:"build,block"`
	CustomCommands []*hclNamedCommands `hcl:"custom_command,block"`
	Files          []*hclFile          `hcl:"file,block"`
}

// properties regroups the template's flat property fields for shared
// translation with profile bodies.
func (t *hclTemplate) properties() *hclProperties {
	return &hclProperties{
		SourceWit:      t.SourceWit,
		GeneratedWit:   t.GeneratedWit,
		ComponentWasm:  t.ComponentWasm,
		LinkedWasm:     t.LinkedWasm,
		Clean:          t.Clean,
		Build:          t.Build,
		CustomCommands: t.CustomCommands,
		Files:          t.Files,
	}
}

type hclWasmRPC struct {
	Target string `hcl:"target"`
}

type hclDependencies struct {
	WasmRPC []*hclWasmRPC `hcl:"wasm_rpc,block"`
}

func decodeDocument(body hcl.Body, path string) (*manifest.Document, error) {
	content, diags := body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	doc := manifest.NewDocument(path)
	sourceDir := filepath.Dir(path)

	for name, attr := range content.Attributes {
		var err error
		switch name {
		case "includes":
			doc.Includes, err = stringList(attr)
		case "temp_dir":
			doc.TempDir, err = stringValue(attr)
		case "wit_deps":
			doc.WitDeps, err = stringList(attr)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, block := range content.Blocks {
		switch block.Type {
		case "template":
			name := block.Labels[0]
			if _, exists := doc.Templates[name]; exists {
				return nil, fmt.Errorf("template %q declared more than once", name)
			}
			tpl, err := decodeTemplate(block.Body, sourceDir)
			if err != nil {
				return nil, fmt.Errorf("template %q: %w", name, err)
			}
			doc.Templates[name] = tpl
			doc.TemplateOrder = append(doc.TemplateOrder, name)
		case "component":
			name := block.Labels[0]
			if _, exists := doc.Components[name]; exists {
				return nil, fmt.Errorf("component %q declared more than once", name)
			}
			comp, err := decodeComponent(block.Body, sourceDir)
			if err != nil {
				return nil, fmt.Errorf("component %q: %w", name, err)
			}
			doc.Components[name] = comp
			doc.ComponentOrder = append(doc.ComponentOrder, name)
		case "dependencies":
			owner := block.Labels[0]
			deps, err := decodeDependencies(block.Body)
			if err != nil {
				return nil, fmt.Errorf("dependencies of %q: %w", owner, err)
			}
			if _, exists := doc.Dependencies[owner]; !exists {
				doc.DependencyOrder = append(doc.DependencyOrder, owner)
			}
			doc.Dependencies[owner] = append(doc.Dependencies[owner], deps...)
		}
	}
	return doc, nil
}

func decodeTemplate(body hcl.Body, sourceDir string) (*manifest.Template, error) {
	var raw hclTemplate
	if diags := gohcl.DecodeBody(body, nil, &raw); diags.HasErrors() {
		return nil, diags
	}

	tpl := &manifest.Template{Source: sourceDir}
	if raw.Template != nil {
		tpl.Ref = *raw.Template
	}
	if raw.properties().present() {
		tpl.Properties = translateProperties(raw.properties(), sourceDir)
	}
	var err error
	tpl.Profiles, tpl.ProfileOrder, tpl.DefaultProfile, err = translateProfiles(raw.Profiles, raw.DefaultProfile, sourceDir)
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

func decodeComponent(body hcl.Body, sourceDir string) (*manifest.Component, error) {
	var raw hclTemplate
	if diags := gohcl.DecodeBody(body, nil, &raw); diags.HasErrors() {
		return nil, diags
	}

	comp := &manifest.Component{Source: sourceDir}
	if raw.Template != nil {
		comp.TemplateRef = *raw.Template
	}
	if raw.properties().present() {
		comp.Properties = translateProperties(raw.properties(), sourceDir)
	}
	var err error
	comp.Profiles, comp.ProfileOrder, comp.DefaultProfile, err = translateProfiles(raw.Profiles, raw.DefaultProfile, sourceDir)
	if err != nil {
		return nil, err
	}
	return comp, nil
}

func decodeDependencies(body hcl.Body) ([]*manifest.Dependency, error) {
	var raw hclDependencies
	if diags := gohcl.DecodeBody(body, nil, &raw); diags.HasErrors() {
		return nil, diags
	}
	deps := make([]*manifest.Dependency, 0, len(raw.WasmRPC))
	for _, rpc := range raw.WasmRPC {
		deps = append(deps, &manifest.Dependency{
			Type:   manifest.DependencyWasmRPC,
			Target: rpc.Target,
		})
	}
	return deps, nil
}

func translateProfiles(profiles []*hclProfile, defaultProfile *string, sourceDir string) (map[string]*manifest.Properties, []string, string, error) {
	if len(profiles) == 0 && defaultProfile == nil {
		return nil, nil, "", nil
	}
	out := map[string]*manifest.Properties{}
	var order []string
	for _, profile := range profiles {
		if _, exists := out[profile.Name]; exists {
			return nil, nil, "", fmt.Errorf("profile %q declared more than once", profile.Name)
		}
		var raw hclProperties
		if diags := gohcl.DecodeBody(profile.Body, nil, &raw); diags.HasErrors() {
			return nil, nil, "", diags
		}
		out[profile.Name] = translateProperties(&raw, sourceDir)
		order = append(order, profile.Name)
	}
	def := ""
	if defaultProfile != nil {
		def = *defaultProfile
	}
	return out, order, def, nil
}

func (p *hclProperties) present() bool {
	return p.SourceWit != nil || p.GeneratedWit != nil || p.ComponentWasm != nil ||
		p.LinkedWasm != nil || len(p.Clean) > 0 || len(p.Build) > 0 ||
		len(p.CustomCommands) > 0 || len(p.Files) > 0
}

func translateProperties(raw *hclProperties, sourceDir string) *manifest.Properties {
	props := &manifest.Properties{Source: sourceDir, Clean: raw.Clean}
	if raw.SourceWit != nil {
		props.SourceWit = *raw.SourceWit
	}
	if raw.GeneratedWit != nil {
		props.GeneratedWit = *raw.GeneratedWit
	}
	if raw.ComponentWasm != nil {
		props.ComponentWasm = *raw.ComponentWasm
	}
	if raw.LinkedWasm != nil {
		props.LinkedWasm = *raw.LinkedWasm
	}
	for _, cmd := range raw.Build {
		props.Build = append(props.Build, translateCommand(cmd, sourceDir))
	}
	if len(raw.CustomCommands) > 0 {
		props.CustomCommands = map[string][]*manifest.Command{}
		for _, named := range raw.CustomCommands {
			for _, cmd := range named.Commands {
				props.CustomCommands[named.Name] = append(props.CustomCommands[named.Name], translateCommand(cmd, sourceDir))
			}
		}
	}
	for _, f := range raw.Files {
		file := &manifest.InitialFile{SourcePath: f.SourcePath, TargetPath: f.TargetPath}
		if f.Permissions != nil {
			file.Permissions = manifest.FilePermissions(*f.Permissions)
		}
		props.Files = append(props.Files, file)
	}
	return props
}

func translateCommand(raw *hclCommand, sourceDir string) *manifest.Command {
	cmd := &manifest.Command{
		Command: raw.Command,
		Rmdirs:  raw.Rmdirs,
		Mkdirs:  raw.Mkdirs,
		Sources: raw.Sources,
		Targets: raw.Targets,
		Source:  sourceDir,
	}
	if raw.Dir != nil {
		cmd.Dir = *raw.Dir
	}
	return cmd
}

// stringValue evaluates a literal attribute as a string.
func stringValue(attr *hcl.Attribute) (string, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}
	val, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("attribute %q: %w", attr.Name, err)
	}
	return val.AsString(), nil
}

// stringList evaluates a literal attribute as a list of strings, accepting
// any tuple whose elements convert to string.
func stringList(attr *hcl.Attribute) ([]string, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	val, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", attr.Name, err)
	}
	var out []string
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		out = append(out, elem.AsString())
	}
	return out, nil
}
