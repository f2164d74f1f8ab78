// This file aggregates parsed manifest documents into one Manifest. The
// loaders (YAML, HCL) only translate syntax into Documents; everything that
// is common across syntaxes (root-only fields, include restrictions,
// duplicate detection, path anchoring, shape validation) lives here.
package manifest

import (
	"fmt"
	"path/filepath"
)

// Document is one parsed manifest file before aggregation. Order slices
// preserve declaration order within the file.
type Document struct {
	Path     string
	Includes []string
	TempDir  string
	WitDeps  []string

	Templates     map[string]*Template
	TemplateOrder []string

	Components     map[string]*Component
	ComponentOrder []string

	Dependencies    map[string][]*Dependency
	DependencyOrder []string
}

// NewDocument returns an empty document with initialized maps.
func NewDocument(path string) *Document {
	return &Document{
		Path:         path,
		Templates:    map[string]*Template{},
		Components:   map[string]*Component{},
		Dependencies: map[string][]*Dependency{},
	}
}

// Aggregate folds the root document and every included document into a
// validated Manifest. Component and template names must be unique across all
// documents; dependency lists for the same owner concatenate in document
// order. Includes and tempDir are root-only.
func Aggregate(root *Document, included []*Document) (*Manifest, error) {
	rootDir := filepath.Dir(root.Path)

	m := &Manifest{
		TempDir:      DefaultTempDir,
		Templates:    map[string]*Template{},
		Components:   map[string]*Component{},
		Dependencies: map[string][]*Dependency{},
		Source:       rootDir,
	}
	if root.TempDir != "" {
		m.TempDir = root.TempDir
	}
	if !filepath.IsAbs(m.TempDir) {
		m.TempDir = filepath.Join(rootDir, m.TempDir)
	}

	docs := append([]*Document{root}, included...)
	for _, doc := range docs {
		if doc != root {
			if len(doc.Includes) > 0 {
				return nil, fmt.Errorf("%s: includes are only allowed in the root manifest", doc.Path)
			}
			if doc.TempDir != "" {
				return nil, fmt.Errorf("%s: tempDir is only allowed in the root manifest", doc.Path)
			}
		}
		docDir := filepath.Dir(doc.Path)
		for _, dep := range doc.WitDeps {
			m.WitDeps = append(m.WitDeps, filepath.Join(docDir, dep))
		}
		if err := m.merge(doc); err != nil {
			return nil, err
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) merge(doc *Document) error {
	for _, name := range doc.TemplateOrder {
		if _, exists := m.Templates[name]; exists {
			return &ValidationError{
				Kind: "template", Name: name,
				Err: fmt.Errorf("declared more than once (also in %s)", doc.Path),
			}
		}
		m.Templates[name] = doc.Templates[name]
	}
	for _, name := range doc.ComponentOrder {
		if _, exists := m.Components[name]; exists {
			return &ValidationError{
				Kind: "component", Name: name,
				Err: fmt.Errorf("declared more than once (also in %s)", doc.Path),
			}
		}
		m.Components[name] = doc.Components[name]
		m.ComponentOrder = append(m.ComponentOrder, name)
	}
	for _, owner := range doc.DependencyOrder {
		m.Dependencies[owner] = append(m.Dependencies[owner], doc.Dependencies[owner]...)
	}
	return nil
}
