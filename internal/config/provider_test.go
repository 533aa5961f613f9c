// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"path/filepath"
	"testing"
)

func TestProvider_Load(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	writeFile(t, filepath.Join(opts.WorkDir, LocalConfigFile), `namespace: "Project"`)

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Namespace != "Project" {
		t.Errorf("Namespace = %q, want Project", cfg.Namespace)
	}
}

func TestProvider_Load_Error(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	opts.ConfigFilePath = filepath.Join(opts.WorkDir, "missing.cue")

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err == nil {
		t.Fatal("Load() should fail for a missing --config file")
	}
	if cfg != nil {
		t.Errorf("Load() returned config %+v alongside error", cfg)
	}
}

func TestProvider_Locate(t *testing.T) {
	t.Parallel()

	p := NewProvider()
	opts := isolated(t)

	path, err := p.Locate(opts)
	if err != nil {
		t.Fatalf("Locate() returned error: %v", err)
	}
	if path != "" {
		t.Errorf("Locate() = %q, want empty when no file exists", path)
	}

	local := filepath.Join(opts.WorkDir, LocalConfigFile)
	writeFile(t, local, `workers: 2`)
	if path, _ := p.Locate(opts); path != local {
		t.Errorf("Locate() = %q, want %q", path, local)
	}

	user := filepath.Join(opts.ConfigDirPath, "config.cue")
	writeFile(t, user, `workers: 3`)
	if path, _ := p.Locate(opts); path != user {
		t.Errorf("Locate() = %q, want %q", path, user)
	}

	opts.ConfigFilePath = filepath.Join(opts.WorkDir, "absent.cue")
	if _, err := p.Locate(opts); err == nil {
		t.Error("Locate() should fail when --config names a missing file")
	}
}
