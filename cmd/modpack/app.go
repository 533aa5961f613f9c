// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/modpack/modpack/internal/config"
	"github.com/modpack/modpack/internal/logging"
	"github.com/modpack/modpack/pkg/bundler"
	"github.com/modpack/modpack/pkg/loader"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: all Cobra command handlers receive an App reference and reach
	// configuration and module loading through it.
	App struct {
		Config  ConfigProvider
		Loaders LoaderFactory
		stdout  io.Writer
		stderr  io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config  ConfigProvider
		Loaders LoaderFactory
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
		Locate(opts config.LoadOptions) (string, error)
	}

	// LoaderFactory builds the module loader for one invocation. root is the
	// directory module IDs are relative to.
	LoaderFactory func(root string, cfg *config.Config) (bundler.Loader, error)

	// invocation is everything a bundling command needs after flags, config
	// and the entry path have been reconciled.
	invocation struct {
		cfg    *config.Config
		log    *slog.Logger
		loader bundler.Loader
		entry  string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	app := &App{
		Config:  deps.Config,
		Loaders: deps.Loaders,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Loaders == nil {
		app.Loaders = NewFSLoader
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app, nil
}

// NewFSLoader is the production LoaderFactory: node-style resolution over the
// directory tree at root, each module read at most once.
func NewFSLoader(root string, cfg *config.Config) (bundler.Loader, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	return loader.NewOnce(loader.NewFS(root, loader.FSOptions{
		Extensions: cfg.ExtensionStrings(),
		ModuleDirs: cfg.ModuleDirStrings(),
	})), nil
}

// prepare loads configuration, applies flag overrides and builds the logger
// and loader for a bundling command.
func (a *App) prepare(ctx context.Context, flags *rootFlags, input string) (*invocation, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configFile})
	if err != nil {
		return nil, err
	}
	if err := flags.apply(cfg); err != nil {
		return nil, err
	}

	logOpts := logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Prefix: "modpack",
	}
	if flags.verbose && logOpts.Level != logging.LevelDebug {
		logOpts.Level = logging.LevelInfo
	}
	log, err := logging.New(a.stderr, logOpts)
	if err != nil {
		return nil, err
	}

	root, entry, err := entryReference(input)
	if err != nil {
		return nil, err
	}
	l, err := a.Loaders(root, cfg)
	if err != nil {
		return nil, fmt.Errorf("open module root %s: %w", root, err)
	}

	log.Debug("configuration loaded",
		"root", root,
		"namespace", cfg.Namespace,
		"workers", cfg.Workers,
		"cycles", cfg.Cycles)

	return &invocation{cfg: cfg, log: log, loader: l, entry: entry}, nil
}

// options converts the invocation into bundler options.
func (inv *invocation) options() bundler.Options {
	return bundler.Options{
		Namespace:   inv.cfg.Namespace.String(),
		Workers:     inv.cfg.Workers.Int(),
		CyclePolicy: inv.cfg.Cycles,
		Logger:      inv.log,
	}
}

// entryReference turns the inputFile argument into a loader root directory and
// a root-relative path reference. The working directory is the root unless the
// input lies outside it, in which case the input's own directory is used.
func entryReference(input string) (root, entry string, err error) {
	abs, err := filepath.Abs(input)
	if err != nil {
		return "", "", err
	}
	root, err = os.Getwd()
	if err != nil {
		return "", "", err
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		root = filepath.Dir(abs)
		rel = filepath.Base(abs)
	}
	if rel == "." {
		return "", "", errors.New("input must name a file, not the working directory")
	}
	return root, "./" + filepath.ToSlash(rel), nil
}
