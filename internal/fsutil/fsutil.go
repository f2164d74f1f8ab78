// Package fsutil provides the file system helpers shared by the manifest
// loaders and the staleness evaluator: extension-based discovery and
// deterministic glob expansion.
package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files
// ending with the specified extension and returns their full paths in sorted
// order.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Expand resolves a single path-or-glob pattern against baseDir and returns
// the matching paths in sorted order. Three pattern classes are handled:
//
//   - a plain path (no metacharacters) is returned as-is, whether or not it
//     exists, so that callers can distinguish "declared but missing";
//   - a `**/` prefix anywhere in the pattern switches to a recursive walk,
//     matching the remainder against every file below the prefix directory;
//   - anything else goes through filepath.Glob.
//
// Relative patterns are interpreted relative to baseDir.
func Expand(baseDir, pattern string) ([]string, error) {
	full := pattern
	if !filepath.IsAbs(full) {
		full = filepath.Join(baseDir, pattern)
	}

	if !hasGlobMeta(pattern) {
		return []string{full}, nil
	}

	if prefix, suffix, ok := splitRecursive(full); ok {
		return expandRecursive(prefix, suffix)
	}

	matches, err := filepath.Glob(full)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// ExpandAll applies Expand to every pattern and concatenates the results,
// preserving the declared pattern order.
func ExpandAll(baseDir string, patterns []string) ([]string, error) {
	var all []string
	for _, pattern := range patterns {
		matches, err := Expand(baseDir, pattern)
		if err != nil {
			return nil, err
		}
		all = append(all, matches...)
	}
	return all, nil
}

func hasGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// splitRecursive splits a pattern at the first `**` segment. It returns the
// literal directory prefix and the remainder pattern to match against paths
// below it.
func splitRecursive(pattern string) (prefix, suffix string, ok bool) {
	idx := strings.Index(pattern, "**")
	if idx < 0 {
		return "", "", false
	}
	prefix = filepath.Dir(pattern[:idx])
	suffix = strings.TrimPrefix(pattern[idx+2:], string(filepath.Separator))
	return prefix, suffix, true
}

func expandRecursive(root, suffix string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if suffix == "" {
			matches = append(matches, path)
			return nil
		}
		matched, err := matchSuffix(suffix, rel)
		if err != nil {
			return err
		}
		if matched {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(matches)
	return matches, nil
}

// matchSuffix matches the trailing segments of rel against the suffix
// pattern, so that `**/x/*.wit` matches at any depth.
func matchSuffix(suffix, rel string) (bool, error) {
	sufSegments := strings.Split(suffix, string(filepath.Separator))
	relSegments := strings.Split(rel, string(filepath.Separator))
	if len(relSegments) < len(sufSegments) {
		return false, nil
	}
	tail := relSegments[len(relSegments)-len(sufSegments):]
	for i, seg := range sufSegments {
		matched, err := filepath.Match(seg, tail[i])
		if err != nil || !matched {
			return matched, err
		}
	}
	return true, nil
}
