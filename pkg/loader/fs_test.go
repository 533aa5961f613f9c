// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func newTestFS() *FS {
	return NewFSFrom(fstest.MapFS{
		"main.js":                             {Data: []byte("require('./lib/util')")},
		"lib/util.js":                         {Data: []byte("")},
		"lib/index.js":                        {Data: []byte("")},
		"config.json":                         {Data: []byte(" {\"debug\": true}\n")},
		"broken.json":                         {Data: []byte("{debug: ")},
		"widgets/index.json":                  {Data: []byte("[]")},
		"node_modules/left-pad/package.json":  {Data: []byte(`{"name": "left-pad", "main": "lib/pad"}`)},
		"node_modules/left-pad/lib/pad.js":    {Data: []byte("")},
		"node_modules/no-main/index.js":       {Data: []byte("")},
		"node_modules/no-main/package.json":   {Data: []byte(`{"name": "no-main", "scripts": {"test": "x"}}`)},
		"node_modules/bad-main/package.json":  {Data: []byte(`{"main": 42}`)},
		"node_modules/bad-main/index.js":      {Data: []byte("")},
		"node_modules/dir-main/package.json":  {Data: []byte(`{"main": "dist"}`)},
		"node_modules/dir-main/dist/index.js": {Data: []byte("")},
		"node_modules/single.js":              {Data: []byte("")},
		"src/node_modules/local/index.js":     {Data: []byte("")},
		"src/app/main.js":                     {Data: []byte("")},
		"node_modules/left-pad/node_modules/inner/index.js": {Data: []byte("")},
	}, FSOptions{})
}

func TestFS_ResolveReference(t *testing.T) {
	t.Parallel()

	l := newTestFS()

	tests := []struct {
		name     string
		referrer string
		raw      string
		want     string
		wantErr  error
	}{
		{name: "entry", referrer: "", raw: "./main.js", want: "main.js"},
		{name: "extension probing", referrer: "main.js", raw: "./lib/util", want: "lib/util.js"},
		{name: "directory index", referrer: "main.js", raw: "./lib", want: "lib/index.js"},
		{name: "json module", referrer: "main.js", raw: "./config", want: "config.json"},
		{name: "json index", referrer: "main.js", raw: "./widgets", want: "widgets/index.json"},
		{name: "root relative", referrer: "src/app/main.js", raw: "/lib/util.js", want: "lib/util.js"},
		{name: "package main", referrer: "main.js", raw: "left-pad", want: "node_modules/left-pad/lib/pad.js"},
		{name: "package without main", referrer: "main.js", raw: "no-main", want: "node_modules/no-main/index.js"},
		{name: "package main directory", referrer: "main.js", raw: "dir-main", want: "node_modules/dir-main/dist/index.js"},
		{name: "package file", referrer: "main.js", raw: "single", want: "node_modules/single.js"},
		{name: "package subpath", referrer: "main.js", raw: "left-pad/lib/pad", want: "node_modules/left-pad/lib/pad.js"},
		{name: "nearest module dir", referrer: "src/app/main.js", raw: "local", want: "src/node_modules/local/index.js"},
		{name: "walks up to root", referrer: "src/app/main.js", raw: "left-pad", want: "node_modules/left-pad/lib/pad.js"},
		{name: "nested package dependency", referrer: "node_modules/left-pad/lib/pad.js", raw: "inner", want: "node_modules/left-pad/node_modules/inner/index.js"},
		{name: "not visible from root", referrer: "main.js", raw: "local", wantErr: ErrUnresolvable},
		{name: "missing relative", referrer: "main.js", raw: "./missing", wantErr: ErrUnresolvable},
		{name: "escapes root", referrer: "main.js", raw: "../outside", wantErr: ErrUnresolvable},
		{name: "malformed", referrer: "main.js", raw: " ", wantErr: ErrMalformedReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := l.ResolveReference(context.Background(), tt.referrer, tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v (resolved %q)", tt.wantErr, err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveReference() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveReference() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFS_ResolveReference_UnresolvableListsCandidates(t *testing.T) {
	t.Parallel()

	_, err := newTestFS().ResolveReference(context.Background(), "main.js", "./missing")
	var uErr *UnresolvableError
	if !errors.As(err, &uErr) {
		t.Fatalf("expected *UnresolvableError, got %v", err)
	}
	want := []string{"missing", "missing.js", "missing.json"}
	if strings.Join(uErr.Tried, ",") != strings.Join(want, ",") {
		t.Errorf("Tried = %v, want %v", uErr.Tried, want)
	}
	if uErr.Referrer != "main.js" || uErr.Reference != "./missing" {
		t.Errorf("unexpected referrer/reference %q/%q", uErr.Referrer, uErr.Reference)
	}
}

func TestFS_ResolveReference_InvalidManifest(t *testing.T) {
	t.Parallel()

	_, err := newTestFS().ResolveReference(context.Background(), "main.js", "bad-main")
	if err == nil {
		t.Fatal("expected error for package.json with non-string main")
	}
	if !strings.Contains(err.Error(), "invalid package manifest") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFS_LoadSource(t *testing.T) {
	t.Parallel()

	l := newTestFS()
	ctx := context.Background()

	src, err := l.LoadSource(ctx, "main.js")
	if err != nil {
		t.Fatalf("LoadSource() error = %v", err)
	}
	if string(src) != "require('./lib/util')" {
		t.Errorf("unexpected source %q", src)
	}

	src, err = l.LoadSource(ctx, "config.json")
	if err != nil {
		t.Fatalf("LoadSource(json) error = %v", err)
	}
	if want := "module.exports = {\"debug\": true};\n"; string(src) != want {
		t.Errorf("json module = %q, want %q", src, want)
	}

	if _, err := l.LoadSource(ctx, "broken.json"); err == nil {
		t.Error("expected error for invalid JSON module")
	}

	for _, id := range []string{"missing.js", "../escape.js", "/abs.js"} {
		_, err := l.LoadSource(ctx, id)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("LoadSource(%q) error = %v, want ErrNotFound", id, err)
		}
	}
}

func TestNewFS_Directory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "src", "entry.js"), []byte("module.exports = 1;"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewFS(root, FSOptions{Extensions: []string{".js"}})

	id, err := l.ResolveReference(context.Background(), "", "./src/entry")
	if err != nil {
		t.Fatalf("ResolveReference() error = %v", err)
	}
	if id != "src/entry.js" {
		t.Errorf("ResolveReference() = %q, want src/entry.js", id)
	}

	src, err := l.LoadSource(context.Background(), id)
	if err != nil {
		t.Fatalf("LoadSource() error = %v", err)
	}
	if string(src) != "module.exports = 1;" {
		t.Errorf("unexpected source %q", src)
	}
}
