// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/modpack/modpack/pkg/cueutil"
)

//go:embed package_schema.cue
var packageSchema []byte

// DefaultExtensions are probed, in order, for references without an exact match.
var DefaultExtensions = []string{".js", ".json"}

// DefaultModuleDirs are searched for bare references.
var DefaultModuleDirs = []string{"node_modules"}

type (
	// FSOptions configures an FS loader. Zero values select the defaults.
	FSOptions struct {
		Extensions []string
		ModuleDirs []string
	}

	// FS resolves and loads CommonJS modules from a directory tree.
	//
	// Resolution follows node's rules: path references are joined with the
	// referrer's directory ("/x" is taken from the root), bare references are
	// searched in each module directory from the referrer's directory up to
	// the root, and a directory resolves through its package.json "main" field
	// and then its index file. JSON modules load as a module.exports
	// assignment.
	FS struct {
		fsys       fs.FS
		extensions []string
		moduleDirs []string
	}

	packageManifest struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Main    string `json:"main"`
	}
)

// NewFS returns a loader rooted at the directory root.
func NewFS(root string, opts FSOptions) *FS {
	return NewFSFrom(os.DirFS(root), opts)
}

// NewFSFrom returns a loader over fsys.
func NewFSFrom(fsys fs.FS, opts FSOptions) *FS {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	dirs := opts.ModuleDirs
	if len(dirs) == 0 {
		dirs = DefaultModuleDirs
	}
	return &FS{
		fsys:       fsys,
		extensions: slices.Clone(exts),
		moduleDirs: slices.Clone(dirs),
	}
}

// LoadSource reads the module id. JSON modules are wrapped so that requiring
// them yields the parsed document.
func (l *FS) LoadSource(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(id) {
		return nil, &NotFoundError{ID: id}
	}

	data, err := fs.ReadFile(l.fsys, id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to read module %s: %w", id, err)
	}

	if path.Ext(id) == ".json" {
		return jsonModule(id, data)
	}
	return data, nil
}

// ResolveReference maps raw, written inside referrer, to a module ID.
func (l *FS) ResolveReference(ctx context.Context, referrer, raw string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := ValidateReference(raw); err != nil {
		return "", err
	}

	var tried []string

	if isPathReference(raw) {
		base, ok := joinReference(referrer, raw)
		if !ok {
			return "", &UnresolvableError{Referrer: referrer, Reference: raw}
		}
		id, err := l.resolveLocation(base, &tried)
		if err != nil || id != "" {
			return id, err
		}
		return "", &UnresolvableError{Referrer: referrer, Reference: raw, Tried: tried}
	}

	for _, dir := range l.moduleDirChain(path.Dir(referrer)) {
		id, err := l.resolveLocation(path.Join(dir, path.Clean(raw)), &tried)
		if err != nil || id != "" {
			return id, err
		}
	}
	return "", &UnresolvableError{Referrer: referrer, Reference: raw, Tried: tried}
}

// ExtractDependencyReferences scans source with [ScanRequires].
func (l *FS) ExtractDependencyReferences(source []byte) ([]string, error) {
	return ScanRequires(source)
}

// moduleDirChain returns the module directories visible from dir, nearest
// first. Module directories nested directly in a module directory are skipped.
func (l *FS) moduleDirChain(dir string) []string {
	var out []string
	for {
		if !slices.Contains(l.moduleDirs, path.Base(dir)) {
			for _, md := range l.moduleDirs {
				out = append(out, path.Join(dir, md))
			}
		}
		if dir == "." || dir == "/" {
			return out
		}
		dir = path.Dir(dir)
	}
}

// resolveLocation resolves base as a file, then as a directory. It returns an
// empty ID when nothing matches.
func (l *FS) resolveLocation(base string, tried *[]string) (string, error) {
	if id := l.firstFile(fileCandidates(base, l.extensions), tried); id != "" {
		return id, nil
	}
	if !l.isDir(base) {
		return "", nil
	}

	manifestPath := path.Join(base, "package.json")
	if l.isFile(manifestPath) {
		manifest, err := l.readManifest(manifestPath)
		if err != nil {
			return "", err
		}
		if manifest.Main != "" {
			main := path.Join(base, manifest.Main)
			candidates := append(fileCandidates(main, l.extensions), indexCandidates(main, l.extensions)...)
			if id := l.firstFile(candidates, tried); id != "" {
				return id, nil
			}
		}
	}

	return l.firstFile(indexCandidates(base, l.extensions), tried), nil
}

func (l *FS) readManifest(p string) (*packageManifest, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	result, err := cueutil.ParseAndDecode[packageManifest](packageSchema, data, "#Package", cueutil.WithFilename(p))
	if err != nil {
		return nil, fmt.Errorf("invalid package manifest: %w", err)
	}
	return result.Value, nil
}

func (l *FS) firstFile(candidates []string, tried *[]string) string {
	for _, c := range candidates {
		*tried = append(*tried, c)
		if l.isFile(c) {
			return c
		}
	}
	return ""
}

func (l *FS) isFile(p string) bool {
	if !fs.ValidPath(p) {
		return false
	}
	info, err := fs.Stat(l.fsys, p)
	return err == nil && info.Mode().IsRegular()
}

func (l *FS) isDir(p string) bool {
	if !fs.ValidPath(p) {
		return false
	}
	info, err := fs.Stat(l.fsys, p)
	return err == nil && info.IsDir()
}

func jsonModule(id string, data []byte) ([]byte, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if !json.Valid(data) {
		return nil, fmt.Errorf("module %s is not valid JSON", id)
	}
	var b strings.Builder
	b.Grow(len(data) + 20)
	b.WriteString("module.exports = ")
	b.Write(data)
	b.WriteString(";\n")
	return []byte(b.String()), nil
}
