// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"github.com/modpack/modpack/internal/dag"
)

// ComputeOrder returns the evaluation order of g. See ComputeOrderWithCycles.
func ComputeOrder(g *Graph) Order {
	order, _ := ComputeOrderWithCycles(g)
	return order
}

// ComputeOrderWithCycles linearizes g with a depth-first post-order from the
// entry. Dependencies are visited in declaration order and a module appears
// after all of its dependencies unless a cycle makes that impossible; each
// edge skipped to break a cycle is reported.
//
// The result contains every module exactly once and depends only on the
// graph's content. A nil graph or one without its entry yields nil.
func ComputeOrderWithCycles(g *Graph) (Order, []CycleDetected) {
	if g == nil || g.Modules[g.Entry] == nil {
		return nil, nil
	}

	d := dag.New()
	d.AddNode(g.Entry)
	for _, id := range g.IDs() {
		d.AddNode(id)
		for _, dep := range g.Modules[id].DependencyIDs() {
			d.AddEdge(id, dep)
		}
	}

	nodes, cycles := d.PostOrder(g.Entry)

	var detected []CycleDetected
	for _, c := range cycles {
		detected = append(detected, CycleDetected{From: c.From, To: c.To, Path: c.Path})
	}
	return Order(nodes), detected
}
