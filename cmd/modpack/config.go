// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/modpack/modpack/internal/config"
	"github.com/modpack/modpack/internal/issue"
	"github.com/modpack/modpack/pkg/types"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `modpack config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage modpack configuration",
		Long: `Manage modpack configuration.

Configuration is read from the first file found among:
  1. the file given with --config
  2. modpack/config.cue in the user configuration directory
     (Linux: ~/.config, macOS: ~/Library/Application Support, Windows: %APPDATA%)
  3. modpack.cue in the current directory

MODPACK_* environment variables override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, flags)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app.stdout, flags, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app, flags)
		},
	})

	var dumpFormat string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE or JSON",
		Args:  exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpConfig(cmd.Context(), app, flags, dumpFormat)
		},
	}
	dumpCmd.Flags().StringVarP(&dumpFormat, "format", "f", "cue", "output format: cue or json")
	cfgCmd.AddCommand(dumpCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Output the CUE schema configuration files are validated against",
		Args:  exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(app.stdout, config.Schema())
			return err
		},
	})

	return cfgCmd
}

func loadOptions(flags *rootFlags) config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: flags.configFile}
}

func loadConfig(ctx context.Context, app *App, flags *rootFlags) (*config.Config, error) {
	cfg, err := app.Config.Load(ctx, loadOptions(flags))
	if err != nil {
		return nil, &ExitError{Code: types.ExitFailure, Err: err}
	}
	return cfg, nil
}

func showConfig(ctx context.Context, app *App, flags *rootFlags) error {
	cfg, err := loadConfig(ctx, app, flags)
	if err != nil {
		return err
	}
	path, _ := app.Config.Locate(loadOptions(flags))

	w := app.stdout
	keyStyle := IDStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("namespace"), valueStyle.Render(cfg.Namespace.String()))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("extensions"), valueStyle.Render(strings.Join(cfg.ExtensionStrings(), ", ")))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("module_dirs"), valueStyle.Render(strings.Join(cfg.ModuleDirStrings(), ", ")))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("workers"), valueStyle.Render(fmt.Sprint(cfg.Workers)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("cycles"), valueStyle.Render(string(cfg.Cycles)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("log"))
	fmt.Fprintf(w, "  level: %s\n", valueStyle.Render(string(cfg.Log.Level)))
	fmt.Fprintf(w, "  format: %s\n", valueStyle.Render(string(cfg.Log.Format)))

	return nil
}

func initConfig(w io.Writer, flags *rootFlags, force bool) error {
	path := flags.configFile
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}

	if err := config.WriteDefault(path, force); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			fmt.Fprintf(w, "Config file already exists at: %s\n", path)
			fmt.Fprintln(w, SubtitleStyle.Render("Use --force to overwrite it."))
			return nil
		}
		return &ExitError{
			Code: types.ExitFailure,
			Err: issue.NewErrorContext().
				WithOperation("create configuration").
				WithResource(path).
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError(),
		}
	}

	fmt.Fprintf(w, "%s Created config file: %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(app *App, flags *rootFlags) error {
	path, err := app.Config.Locate(loadOptions(flags))
	if err != nil {
		return &ExitError{Code: types.ExitFailure, Err: err}
	}
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return err
		}
		fmt.Fprintf(app.stdout, "%s %s\n", defaultPath, SubtitleStyle.Render("(not created, using defaults)"))
		return nil
	}
	fmt.Fprintln(app.stdout, path)
	return nil
}

func dumpConfig(ctx context.Context, app *App, flags *rootFlags, format string) error {
	cfg, err := loadConfig(ctx, app, flags)
	if err != nil {
		return err
	}

	switch format {
	case "cue":
		_, err = io.WriteString(app.stdout, config.GenerateCUE(cfg))
		return err
	case "json":
		enc := json.NewEncoder(app.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	default:
		return &UsageError{Message: fmt.Sprintf("unknown format %q (valid: cue, json)", format)}
	}
}
