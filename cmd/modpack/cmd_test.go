// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modpack/modpack/internal/config"
	"github.com/modpack/modpack/internal/issue"
	"github.com/modpack/modpack/pkg/bundler"
	"github.com/modpack/modpack/pkg/loader"
	"github.com/modpack/modpack/pkg/types"
)

type (
	// fakeProvider serves a fixed configuration.
	fakeProvider struct {
		cfg  *config.Config
		path string
		err  error
	}

	// harness runs the command tree in-process against an in-memory module set.
	harness struct {
		modules map[string]string
		cfg     *config.Config
		stdout  bytes.Buffer
		stderr  bytes.Buffer
	}
)

func (p *fakeProvider) Load(_ context.Context, _ config.LoadOptions) (*config.Config, error) {
	if p.err != nil {
		return nil, p.err
	}
	cfg := *p.cfg
	return &cfg, nil
}

func (p *fakeProvider) Locate(_ config.LoadOptions) (string, error) {
	return p.path, p.err
}

func newHarness(modules map[string]string) *harness {
	cfg := config.DefaultConfig()
	cfg.Workers = 1
	return &harness{modules: modules, cfg: cfg}
}

// run executes args and returns the error from the command tree together
// with the exit code it maps to.
func (h *harness) run(t *testing.T, args ...string) (error, types.ExitCode) {
	t.Helper()

	app, err := NewApp(Dependencies{
		Config: &fakeProvider{cfg: h.cfg},
		Loaders: func(_ string, cfg *config.Config) (bundler.Loader, error) {
			return loader.NewMemory(h.modules, cfg.ExtensionStrings()...), nil
		},
		Stdout: &h.stdout,
		Stderr: &h.stderr,
	})
	if err != nil {
		t.Fatalf("NewApp() returned error: %v", err)
	}

	root := NewRootCommand(app)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return err, exitCodeOf(err)
}

var sampleModules = map[string]string{
	"src/index.js": `var a = require("./a");
var b = require("./b");
module.exports = a + b;`,
	"src/a.js": `module.exports = require("./b") + 1;`,
	"src/b.js": `module.exports = 1;`,
}

func TestBundle_WritesArtifact(t *testing.T) {
	t.Parallel()

	h := newHarness(sampleModules)
	out := filepath.Join(t.TempDir(), "bundle.js")

	err, code := h.run(t, "src/index.js", out)
	if err != nil || code != types.ExitSuccess {
		t.Fatalf("run() = %v (exit %d)", err, code)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	code2 := string(data)
	for _, want := range []string{
		"/* src/b.js */",
		"/* src/a.js */",
		"/* src/index.js */",
		`g["Bundle"] = factory();`,
		"return load(2);",
	} {
		if !strings.Contains(code2, want) {
			t.Errorf("bundle should contain %q:\n%s", want, code2)
		}
	}
	if strings.Index(code2, "/* src/b.js */") > strings.Index(code2, "/* src/a.js */") {
		t.Error("dependencies must precede their dependents")
	}
	if h.stdout.Len() != 0 {
		t.Errorf("stdout should stay empty when writing a file, got %q", h.stdout.String())
	}

	entries, _ := os.ReadDir(filepath.Dir(out))
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestBundle_Stdout(t *testing.T) {
	t.Parallel()

	h := newHarness(sampleModules)
	if err, code := h.run(t, "src/index.js", "-"); err != nil || code != types.ExitSuccess {
		t.Fatalf("run() = %v (exit %d)", err, code)
	}
	if !strings.HasPrefix(h.stdout.String(), "(function (root, factory) {") {
		t.Errorf("stdout should carry the bundle, got:\n%s", h.stdout.String())
	}
}

func TestBundle_Standalone(t *testing.T) {
	t.Parallel()

	h := newHarness(sampleModules)
	if err, _ := h.run(t, "--standalone", "acme.tools", "src/index.js", "-"); err != nil {
		t.Fatalf("run() returned error: %v", err)
	}
	for _, want := range []string{
		`g["acme"] = g["acme"] || {};`,
		`g["acme"]["tools"] = factory();`,
	} {
		if !strings.Contains(h.stdout.String(), want) {
			t.Errorf("bundle should contain %q", want)
		}
	}
}

func TestBundle_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"one argument", []string{"src/index.js"}},
		{"three arguments", []string{"src/index.js", "out.js", "extra.js"}},
		{"unknown flag", []string{"--minify", "src/index.js", "out.js"}},
		{"empty namespace", []string{"-s", "", "src/index.js", "-"}},
		{"empty segment", []string{"-s", "acme..tools", "src/index.js", "-"}},
		{"negative workers", []string{"--workers=-1", "src/index.js", "-"}},
		{"blank output", []string{"src/index.js", "  "}},
		{"stdin entry", []string{"-", "out.js"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(sampleModules)
			err, code := h.run(t, tt.args...)
			if code != types.ExitUsage {
				t.Fatalf("exit code = %d (%v), want %d", code, err, types.ExitUsage)
			}
			var usageErr *UsageError
			if !errors.As(err, &usageErr) || usageErr.Message == "" {
				t.Errorf("error = %v, want *UsageError with a message", err)
			}
			if h.stdout.Len() != 0 {
				t.Errorf("no output expected on usage errors, got %q", h.stdout.String())
			}
		})
	}
}

func TestBundle_MissingDependencyLeavesOutputUntouched(t *testing.T) {
	t.Parallel()

	h := newHarness(map[string]string{
		"src/index.js": `require("./missing");`,
	})
	out := filepath.Join(t.TempDir(), "bundle.js")
	if err := os.WriteFile(out, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}

	err, code := h.run(t, "src/index.js", out)
	if code != types.ExitFailure {
		t.Fatalf("exit code = %d, want %d", code, types.ExitFailure)
	}

	var resErr *bundler.ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("error should wrap *bundler.ResolutionError, got %v", err)
	}
	if resErr.Referrer != "src/index.js" || resErr.Reference != "./missing" {
		t.Errorf("ResolutionError = {%q, %q}", resErr.Referrer, resErr.Reference)
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue != issue.ResolutionFailedId {
		t.Errorf("error should link ResolutionFailedId, got %v", err)
	}

	if data, _ := os.ReadFile(out); string(data) != "previous" {
		t.Errorf("output was modified: %q", data)
	}
}

func TestBundle_MissingEntry(t *testing.T) {
	t.Parallel()

	h := newHarness(sampleModules)
	out := filepath.Join(t.TempDir(), "bundle.js")

	err, code := h.run(t, "src/nope.js", out)
	if code != types.ExitFailure {
		t.Fatalf("exit code = %d, want %d", code, types.ExitFailure)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || len(ae.Suggestions) == 0 {
		t.Fatalf("expected actionable error with suggestions, got %v", err)
	}
	if !strings.Contains(ae.Suggestions[0], "input file exists") {
		t.Errorf("Suggestions = %v", ae.Suggestions)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("no output file should be created on failure")
	}
}

func TestBundle_CyclePolicy(t *testing.T) {
	t.Parallel()

	cyclic := map[string]string{
		"src/index.js": `require("./a");`,
		"src/a.js":     `require("./index");`,
	}

	t.Run("warn bundles", func(t *testing.T) {
		t.Parallel()
		h := newHarness(cyclic)
		if err, _ := h.run(t, "src/index.js", "-"); err != nil {
			t.Fatalf("run() returned error: %v", err)
		}
		if !strings.Contains(h.stderr.String(), "dependency cycle") {
			t.Errorf("cycle should be logged as a warning, stderr:\n%s", h.stderr.String())
		}
	})

	t.Run("error fails", func(t *testing.T) {
		t.Parallel()
		h := newHarness(cyclic)
		err, code := h.run(t, "--cycles", "error", "src/index.js", "-")
		if code != types.ExitFailure {
			t.Fatalf("exit code = %d, want %d", code, types.ExitFailure)
		}
		var cycleErr *bundler.CycleError
		if !errors.As(err, &cycleErr) {
			t.Fatalf("error should wrap *bundler.CycleError, got %v", err)
		}
		var ae *issue.ActionableError
		if !errors.As(err, &ae) || ae.Issue != issue.DependencyCycleId {
			t.Errorf("error should link DependencyCycleId, got %v", err)
		}
		if h.stdout.Len() != 0 {
			t.Error("no bundle should be written")
		}
	})
}

func TestBundle_ConfigError(t *testing.T) {
	t.Parallel()

	cause := issue.NewErrorContext().
		WithOperation("load configuration").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(errors.New("workers: invalid value 0")).
		BuildError()

	var stdout, stderr bytes.Buffer
	app, _ := NewApp(Dependencies{
		Config: &fakeProvider{err: cause},
		Stdout: &stdout,
		Stderr: &stderr,
	})
	root := NewRootCommand(app)
	root.SetArgs([]string{"src/index.js", "-"})
	err := root.ExecuteContext(context.Background())

	if exitCodeOf(err) != types.ExitFailure {
		t.Fatalf("exit code = %d, want %d", exitCodeOf(err), types.ExitFailure)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue != issue.ConfigLoadFailedId {
		t.Errorf("config error should pass through, got %v", err)
	}
}

func TestBundle_Canceled(t *testing.T) {
	t.Parallel()

	h := newHarness(sampleModules)
	app, _ := NewApp(Dependencies{
		Config: &fakeProvider{cfg: h.cfg},
		Loaders: func(_ string, cfg *config.Config) (bundler.Loader, error) {
			return loader.NewMemory(h.modules, cfg.ExtensionStrings()...), nil
		},
		Stdout: &h.stdout,
		Stderr: &h.stderr,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := NewRootCommand(app)
	root.SetArgs([]string{"src/index.js", "-"})
	err := root.ExecuteContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if exitCodeOf(err) != types.ExitFailure {
		t.Errorf("exit code = %d", exitCodeOf(err))
	}
}

func TestRun_ExitCodes(t *testing.T) {
	t.Parallel()

	deps := Dependencies{
		Config: &fakeProvider{cfg: config.DefaultConfig()},
		Loaders: func(_ string, cfg *config.Config) (bundler.Loader, error) {
			return loader.NewMemory(sampleModules, cfg.ExtensionStrings()...), nil
		},
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	}

	if code := Run(context.Background(), []string{"src/index.js"}, deps); code != types.ExitUsage {
		t.Errorf("Run(one arg) = %d, want %d", code, types.ExitUsage)
	}
	if code := Run(context.Background(), []string{"src/index.js", "-"}, deps); code != types.ExitSuccess {
		t.Errorf("Run(valid) = %d, want %d", code, types.ExitSuccess)
	}
	if code := Run(context.Background(), []string{"src/missing.js", "-"}, deps); code != types.ExitFailure {
		t.Errorf("Run(missing entry) = %d, want %d", code, types.ExitFailure)
	}
}
