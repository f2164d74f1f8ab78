// Package hclcfg is the HCL implementation of manifest.Loader. It accepts
// the same manifest family as the YAML loader, written as labeled blocks:
//
//	temp_dir = "golem-temp"
//	wit_deps = ["wit/deps"]
//
//	template "base" {
//	  source_wit     = "wit"
//	  component_wasm = "out/component.wasm"
//	  build {
//	    command = "tinygo build -target=wasip2 -o out/component.wasm ./src"
//	    sources = ["src/**/*.go"]
//	    targets = ["out/component.wasm"]
//	  }
//	}
//
//	component "app:a" { template = "base" }
//
//	dependencies "app:a" {
//	  wasm_rpc { target = "app:b" }
//	}
package hclcfg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/wasmbuildgo/internal/ctxlog"
	"github.com/vk/wasmbuildgo/internal/fsutil"
	"github.com/vk/wasmbuildgo/internal/manifest"
)

// RootFileName is the manifest file looked up when the given path is a
// directory.
const RootFileName = "golem.hcl"

// Loader loads HCL manifest documents into the format-agnostic model.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader returns an HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load reads the root document at path (or <path>/golem.hcl when path is a
// directory), expands its includes, and aggregates every document into a
// validated manifest.
func (l *Loader) Load(ctx context.Context, path string) (*manifest.Manifest, error) {
	logger := ctxlog.FromContext(ctx)

	rootPath, err := resolveRootPath(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loading root manifest document.", "path", rootPath)

	rootDoc, err := l.parseDocument(rootPath)
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
		doc, err := l.parseDocument(includePath)
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

// parseDocument parses one HCL manifest file and translates it into the
// format-agnostic document model.
func (l *Loader) parseDocument(path string) (*manifest.Document, error) {
	hclFile, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, diags)
	}

	doc, err := decodeDocument(hclFile.Body, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// rootSchema is the allowed surface of a manifest document; anything else is
// rejected by Body.Content, which mirrors the schema's "additional
// properties forbidden" rule.
var rootSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "includes"},
		{Name: "temp_dir"},
		{Name: "wit_deps"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "template", LabelNames: []string{"name"}},
		{Type: "component", LabelNames: []string{"name"}},
		{Type: "dependencies", LabelNames: []string{"component"}},
	},
}
