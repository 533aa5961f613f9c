// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"path"
	"strings"
)

// Loader is the contract every loader in this package satisfies. It mirrors
// the bundler's collaborator interface so loaders can be composed (see [Once])
// without importing the bundler.
type Loader interface {
	LoadSource(ctx context.Context, id string) ([]byte, error)
	ResolveReference(ctx context.Context, referrer, raw string) (string, error)
	ExtractDependencyReferences(source []byte) ([]string, error)
}

var (
	_ Loader = (*FS)(nil)
	_ Loader = (*Memory)(nil)
	_ Loader = (*Once)(nil)
)

// isPathReference reports whether raw addresses a location (relative to the
// referrer or to the root) rather than a package name.
func isPathReference(raw string) bool {
	return raw == "." || raw == ".." ||
		strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../") ||
		strings.HasPrefix(raw, "/")
}

// joinReference returns the root-relative location a path reference points
// at. ok is false when the location escapes the root.
func joinReference(referrer, raw string) (string, bool) {
	var joined string
	if strings.HasPrefix(raw, "/") {
		joined = path.Clean(strings.TrimLeft(raw, "/"))
		if joined == "" {
			joined = "."
		}
	} else {
		joined = path.Join(path.Dir(referrer), raw)
	}
	if joined == ".." || strings.HasPrefix(joined, "../") {
		return "", false
	}
	return joined, true
}

// fileCandidates lists the IDs probed for base as a file: base itself, then
// base with each extension appended.
func fileCandidates(base string, exts []string) []string {
	out := make([]string, 0, len(exts)+1)
	if base != "." {
		out = append(out, base)
		for _, ext := range exts {
			out = append(out, base+ext)
		}
	}
	return out
}

// indexCandidates lists the index files probed for dir.
func indexCandidates(dir string, exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		out = append(out, path.Join(dir, "index"+ext))
	}
	return out
}
