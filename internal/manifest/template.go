// This file defines the Template union and the concrete Properties payload.
//
// Why an explicit tagged union?
//
// A template in a manifest document takes exactly one of three shapes: a
// reference to another template, a flat properties object, or a map of named
// profiles with a default. Probing fields dynamically at resolution time
// would turn an ambiguous document into a runtime surprise; modelling the
// shapes as a tagged union with a Kind() accessor and a construction-time
// validateShape() turns the same mistake into an immediate configuration
// error that names the offending entry.
package manifest

import (
	"errors"
	"fmt"
)

// TemplateKind identifies which of the three shapes a Template instance is.
type TemplateKind int

const (
	// KindRef is a `{template: name}` reference to another template.
	KindRef TemplateKind = iota
	// KindProperties is a flat, concrete build configuration.
	KindProperties
	// KindProfiles is a map of named property variants plus a default.
	KindProfiles
)

// Template is one entry of the manifest's templates mapping. Exactly one
// shape must be populated; validateShape enforces that.
type Template struct {
	// Ref is set for the template-reference shape.
	Ref string

	// Properties is set for the flat shape.
	Properties *Properties

	// Profiles, ProfileOrder and DefaultProfile are set for the profiles
	// shape. ProfileOrder preserves document declaration order.
	Profiles       map[string]*Properties
	ProfileOrder   []string
	DefaultProfile string

	// Source is the directory of the document that declared the template.
	Source string
}

// Kind reports the shape of a validated template.
func (t *Template) Kind() TemplateKind {
	switch {
	case t.Ref != "":
		return KindRef
	case len(t.Profiles) > 0 || t.DefaultProfile != "":
		return KindProfiles
	default:
		return KindProperties
	}
}

func (t *Template) validateShape() error {
	set := 0
	if t.Ref != "" {
		set++
	}
	if t.Properties != nil {
		set++
	}
	if len(t.Profiles) > 0 || t.DefaultProfile != "" {
		set++
	}
	if set > 1 {
		return errAmbiguousShape
	}
	if set == 0 {
		return errEmptyShape
	}
	if t.Kind() == KindProfiles {
		if err := validateProfiles(t.Profiles, t.DefaultProfile); err != nil {
			return err
		}
	}
	if t.Properties != nil {
		return t.Properties.validate()
	}
	for _, props := range t.Profiles {
		if err := props.validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateShape for components: the sibling template reference may coexist
// with either the properties or the profiles shape (it supplies defaults),
// but properties and profiles remain mutually exclusive.
func (c *Component) validateShape() error {
	hasProperties := c.Properties != nil
	hasProfiles := len(c.Profiles) > 0 || c.DefaultProfile != ""
	if hasProperties && hasProfiles {
		return errAmbiguousShape
	}
	if hasProfiles {
		if err := validateProfiles(c.Profiles, c.DefaultProfile); err != nil {
			return err
		}
	}
	if c.Properties != nil {
		return c.Properties.validate()
	}
	for _, props := range c.Profiles {
		if err := props.validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateProfiles(profiles map[string]*Properties, defaultProfile string) error {
	if len(profiles) == 0 {
		return errors.New("profiles map is empty")
	}
	if defaultProfile == "" {
		return errors.New("profiles shape requires defaultProfile")
	}
	if _, ok := profiles[defaultProfile]; !ok {
		return fmt.Errorf("defaultProfile %q is not present in the profiles map", defaultProfile)
	}
	return nil
}

// Properties is a concrete build configuration for one component or one
// profile of a component.
type Properties struct {
	SourceWit     string
	GeneratedWit  string
	ComponentWasm string
	LinkedWasm    string

	// Build is the primary, strictly ordered build step sequence.
	Build []*Command

	// CustomCommands holds ad-hoc named operations outside the build/clean
	// lifecycle, each an ordered command sequence.
	CustomCommands map[string][]*Command

	// Clean lists extra paths removed by the clean operation, in addition to
	// the generated and build artifacts.
	Clean []string

	// Files seeds a component's runtime filesystem; schema-validated here,
	// consumed by the runtime provisioning subsystem.
	Files []*InitialFile

	// Source is the directory of the document that declared these
	// properties; it is the default working directory for commands.
	Source string
}

func (p *Properties) validate() error {
	for _, cmd := range p.Build {
		if err := cmd.validate(); err != nil {
			return err
		}
	}
	for name, cmds := range p.CustomCommands {
		for _, cmd := range cmds {
			if err := cmd.validate(); err != nil {
				return fmt.Errorf("custom command %q: %w", name, err)
			}
		}
	}
	for _, f := range p.Files {
		if err := f.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *InitialFile) validate() error {
	if f.SourcePath == "" || f.TargetPath == "" {
		return errors.New("file entry requires sourcePath and targetPath")
	}
	switch f.Permissions {
	case "", FileReadOnly, FileReadWrite:
		return nil
	default:
		return fmt.Errorf("invalid file permissions %q", f.Permissions)
	}
}
