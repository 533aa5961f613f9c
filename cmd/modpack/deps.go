// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/modpack/modpack/pkg/bundler"
	"github.com/modpack/modpack/pkg/types"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

const (
	depsFormatText = "text"
	depsFormatJSON = "json"
	depsFormatTOML = "toml"
)

type (
	// depsReport is the machine-readable form of a resolved graph.
	depsReport struct {
		Entry   string       `json:"entry" toml:"entry"`
		Modules []depsModule `json:"modules" toml:"modules"`
		Cycles  [][]string   `json:"cycles,omitempty" toml:"cycles,omitempty"`
	}

	// depsModule is one module in evaluation order. Slot is its index in the
	// bundle's module table.
	depsModule struct {
		ID           string            `json:"id" toml:"id"`
		Slot         int               `json:"slot" toml:"slot"`
		Dependencies map[string]string `json:"dependencies" toml:"dependencies"`
	}
)

func newDepsCommand(app *App, flags *rootFlags) *cobra.Command {
	var format string

	depsCmd := &cobra.Command{
		Use:   "deps <inputFile>",
		Short: "List the modules reachable from an entry file",
		Long: `Resolve the dependency graph of an entry file without emitting a bundle.

Modules are listed in evaluation order, each with the references it requires
and the module IDs they resolved to. Dependency cycles are reported, never
fatal.`,
		Args: exactArgs(1, "an input file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd.Context(), app, flags, types.FilePath(args[0]), format)
		},
	}
	depsCmd.Flags().StringVarP(&format, "format", "f", depsFormatText, "output format: text, json or toml")

	return depsCmd
}

func runDeps(ctx context.Context, app *App, flags *rootFlags, input types.FilePath, format string) error {
	if !slices.Contains([]string{depsFormatText, depsFormatJSON, depsFormatTOML}, format) {
		return &UsageError{Message: fmt.Sprintf("unknown format %q (valid: text, json, toml)", format)}
	}
	if valid, errs := input.IsValid(); !valid {
		return &UsageError{Message: errs[0].Error()}
	}

	inv, err := app.prepare(ctx, flags, input.String())
	if err != nil {
		return prepareFailure(err, input)
	}

	graph, err := bundler.ResolveGraph(ctx, inv.entry, inv.loader, inv.options())
	if err != nil {
		return bundleFailure(err, input)
	}
	order, cycles := bundler.ComputeOrderWithCycles(graph)
	report := newDepsReport(graph, order, cycles)

	switch format {
	case depsFormatJSON:
		enc := json.NewEncoder(app.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case depsFormatTOML:
		return toml.NewEncoder(app.stdout).Encode(report)
	default:
		writeDepsText(app.stdout, report)
		return nil
	}
}

func newDepsReport(g *bundler.Graph, order bundler.Order, cycles []bundler.CycleDetected) depsReport {
	report := depsReport{Entry: g.Entry, Modules: make([]depsModule, 0, len(order))}
	for slot, id := range order {
		m := g.Modules[id]
		deps := maps.Clone(m.Resolved)
		if deps == nil {
			deps = map[string]string{}
		}
		report.Modules = append(report.Modules, depsModule{ID: id, Slot: slot, Dependencies: deps})
	}
	for _, c := range cycles {
		report.Cycles = append(report.Cycles, c.Path)
	}
	return report
}

func writeDepsText(w io.Writer, report depsReport) {
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("entry"), IDStyle.Render(report.Entry))
	for _, m := range report.Modules {
		fmt.Fprintf(w, "%3d %s\n", m.Slot, IDStyle.Render(m.ID))
		for _, raw := range slices.Sorted(maps.Keys(m.Dependencies)) {
			fmt.Fprintf(w, "      %s %s %s\n", raw, SubtitleStyle.Render("->"), m.Dependencies[raw])
		}
	}
	for _, c := range report.Cycles {
		fmt.Fprintln(w, WarningStyle.Render("cycle:")+" "+strings.Join(c, " -> "))
	}
}
