// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"context"
	"slices"
	"strings"
)

type (
	// Loader loads module sources and resolves the references between them.
	// Implementations live in package loader.
	Loader interface {
		// LoadSource returns the source of the module id.
		LoadSource(ctx context.Context, id string) ([]byte, error)
		// ResolveReference maps raw, as written inside referrer, to a module
		// ID. The entry is resolved with an empty referrer.
		ResolveReference(ctx context.Context, referrer, raw string) (string, error)
		// ExtractDependencyReferences lists the raw references a source declares.
		ExtractDependencyReferences(source []byte) ([]string, error)
	}

	// Module is one node of the dependency graph.
	Module struct {
		// ID is the canonical identifier, unique within a graph.
		ID string
		// Source is the module text as returned by the loader.
		Source []byte
		// Dependencies are the raw references the module declares, in order of
		// first use and without duplicates.
		Dependencies []string
		// Resolved maps every entry of Dependencies to a module ID in the graph.
		Resolved map[string]string
	}

	// Graph is the closed set of modules reachable from Entry.
	Graph struct {
		Entry   string
		Modules map[string]*Module
	}

	// Order is an evaluation order: every module of a graph exactly once,
	// dependencies before dependents wherever no cycle prevents it.
	Order []string

	// CycleDetected reports an edge that was skipped during ordering because
	// its target was still being visited. It is informational.
	CycleDetected struct {
		// From requires To, which is an ancestor of From in the traversal.
		From string
		To   string
		// Path runs from To down to From and back to To.
		Path []string
	}
)

// Len returns the number of modules.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Modules)
}

// IDs returns the module IDs in lexical order.
func (g *Graph) IDs() []string {
	if g == nil {
		return nil
	}
	ids := make([]string, 0, len(g.Modules))
	for id := range g.Modules {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// DependencyIDs returns the resolved IDs of m's dependencies in declaration
// order, without duplicates.
func (m *Module) DependencyIDs() []string {
	out := make([]string, 0, len(m.Dependencies))
	for _, raw := range m.Dependencies {
		if id := m.Resolved[raw]; !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// Index returns the position of id in the order, or -1.
func (o Order) Index(id string) int {
	return slices.Index(o, id)
}

// String renders the cycle as "a -> b -> a".
func (c CycleDetected) String() string {
	return strings.Join(c.Path, " -> ")
}
