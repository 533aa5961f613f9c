// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/modpack/modpack/internal/config"
	"github.com/modpack/modpack/internal/issue"
	"github.com/modpack/modpack/pkg/bundler"
	"github.com/modpack/modpack/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags of one command tree.
type rootFlags struct {
	verbose    bool
	configFile string
	standalone string
	workers    int
	cycles     string

	standaloneSet bool
}

// apply overrides cfg with explicitly set flags and validates the result.
func (f *rootFlags) apply(cfg *config.Config) error {
	if f.standaloneSet {
		cfg.Namespace = config.Namespace(f.standalone)
	}
	if f.workers != 0 {
		cfg.Workers = config.WorkerCount(f.workers)
	}
	if f.cycles != "" {
		cfg.Cycles = bundler.CyclePolicy(f.cycles)
	}
	if valid, errs := cfg.IsValid(); !valid {
		return &UsageError{Message: errs[0].Error()}
	}
	return nil
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the modpack command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}
	return newRootCommand(app, flags)
}

func newRootCommand(app *App, flags *rootFlags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modpack <inputFile> <outputFile>",
		Short: "Bundle a CommonJS module graph into one script",
		Long: TitleStyle.Render("modpack") + SubtitleStyle.Render(" - Bundle a CommonJS module graph into one script") + `

modpack starts at an entry file, follows every require("...") call it finds,
and links all reachable modules into a single UMD script. The script works
with CommonJS, AMD, or as a browser global.

` + SubtitleStyle.Render("Examples:") + `
  modpack src/index.js dist/bundle.js        Bundle to a file
  modpack -s acme.tools src/index.js -       Bundle to stdout as window.acme.tools
  modpack deps src/index.js                  List modules in evaluation order
  modpack config show                        Show current configuration`,
		Args: exactArgs(2, "an input file and an output file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.standaloneSet = cmd.Flags().Changed("standalone")
			return runBundle(cmd.Context(), app, flags, types.FilePath(args[0]), types.FilePath(args[1]))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default is <user config dir>/modpack/config.cue)")
	rootCmd.PersistentFlags().IntVarP(&flags.workers, "workers", "w", 0, "concurrent module loads (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flags.cycles, "cycles", "", `dependency cycle policy: "allow", "warn" or "error" (overrides config)`)
	rootCmd.Flags().StringVarP(&flags.standalone, "standalone", "s", "", `global name for the bundle's exports (default "Bundle")`)

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Message: err.Error()}
	})
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(newDepsCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// exactArgs is cobra.ExactArgs reporting a *UsageError.
func exactArgs(n int, what string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return &UsageError{Message: fmt.Sprintf("expected %s, got %d argument(s)", what, len(args))}
		}
		return nil
	}
}

// Execute runs the CLI with os.Args and exits with its status.
// This is called by main.main().
func Execute() {
	os.Exit(int(Run(context.Background(), os.Args[1:], Dependencies{})))
}

// Run executes the command tree with args and returns the exit code.
func Run(ctx context.Context, args []string, deps Dependencies) types.ExitCode {
	app, err := NewApp(deps)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return types.ExitFailure
	}

	flags := &rootFlags{}
	rootCmd := newRootCommand(app, flags)
	rootCmd.SetArgs(args)

	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	err = fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			renderError(w, err, flags.verbose)
		}),
	)
	return exitCodeOf(err)
}

// renderError writes err for the user. In verbose mode the error chain and,
// when the error links a catalog issue, its rendered guide follow.
func renderError(w io.Writer, err error, verbose bool) {
	fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+formatErrorForDisplay(err, verbose))

	id := issue.Id(0)
	var (
		usageErr *UsageError
		ae       *issue.ActionableError
	)
	switch {
	case errors.As(err, &usageErr):
		fmt.Fprintln(w, SubtitleStyle.Render("Run 'modpack --help' for usage."))
		id = issue.UsageId
	case errors.As(err, &ae):
		id = ae.Issue
	}

	if !verbose || id == 0 {
		return
	}
	if known := issue.Get(id); known != nil {
		if rendered, renderErr := known.Render("dark"); renderErr == nil {
			fmt.Fprint(w, rendered)
		}
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
