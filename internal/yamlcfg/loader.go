// Package yamlcfg is the YAML implementation of manifest.Loader for the
// golem.yaml document family. It parses through yaml.Node rather than plain
// structs so that unknown keys can be rejected (the schema forbids
// additional properties) and so that declaration order of components and
// profiles is preserved for deterministic planning.
package yamlcfg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vk/wasmbuildgo/internal/ctxlog"
	"github.com/vk/wasmbuildgo/internal/fsutil"
	"github.com/vk/wasmbuildgo/internal/manifest"
)

// RootFileName is the manifest file looked up when the given path is a
// directory.
const RootFileName = "golem.yaml"

// Loader loads YAML manifest documents into the format-agnostic model.
type Loader struct{}

// NewLoader returns a YAML manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the root document at path (or <path>/golem.yaml when path is a
// directory), expands its includes, and aggregates every document into a
// validated manifest.
func (l *Loader) Load(ctx context.Context, path string) (*manifest.Manifest, error) {
	logger := ctxlog.FromContext(ctx)

	rootPath, err := resolveRootPath(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loading root manifest document.", "path", rootPath)

	rootDoc, err := parseDocument(rootPath)
	if err != nil {
		return nil, err
	}

	includePaths, err := fsutil.ExpandAll(filepath.Dir(rootPath), rootDoc.Includes)
	if err != nil {
		return nil, fmt.Errorf("failed to expand includes: %w", err)
	}
	included := make([]*manifest.Document, 0, len(includePaths))
	for _, includePath := range includePaths {
		logger.Debug("Loading included manifest document.", "path", includePath)
		doc, err := parseDocument(includePath)
		if err != nil {
			return nil, err
		}
		included = append(included, doc)
	}

	m, err := manifest.Aggregate(rootDoc, included)
	if err != nil {
		return nil, err
	}
	logger.Debug("Manifest loaded.",
		"components", len(m.Components),
		"templates", len(m.Templates),
		"documents", 1+len(included))
	return m, nil
}

func resolveRootPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("manifest path %s: %w", path, err)
	}
	if info.IsDir() {
		return filepath.Join(path, RootFileName), nil
	}
	return path, nil
}

// parseDocument reads and decodes one YAML manifest file.
func parseDocument(path string) (*manifest.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	doc, err := decodeDocument(&root, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
