// SPDX-License-Identifier: MPL-2.0

// Package dag provides directed graph operations for dependency ordering.
// It is used by the bundler to linearize a module graph into an evaluation
// order in which dependencies precede their dependents, tolerating cycles.
package dag

import (
	"fmt"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle. It is only returned
	// by callers that opt into strict ordering; PostOrder itself never fails.
	CycleError struct {
		// Cycle lists the nodes of the cycle in traversal order, with the first
		// node repeated at the end (e.g. [a b a]).
		Cycle []string
	}

	// Cycle is a back edge found during traversal: From depends on To while To
	// is still on the active traversal stack.
	Cycle struct {
		From string
		To   string
		// Path is the stack slice from To down to From, closed with To.
		Path []string
	}

	// Graph is a directed graph for dependency ordering.
	// Nodes are identified by string keys. An edge from A to B means
	// "A depends on B": B must be ordered before A whenever possible.
	Graph struct {
		// adjacency maps each node to its dependencies in the order they were added.
		adjacency map[string][]string
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes []string
		// nodeSet provides O(1) lookup for node existence.
		nodeSet map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		nodeSet:   make(map[string]bool),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge adds a directed edge from -> to, meaning "from" depends on "to".
// Both nodes are implicitly added if they don't exist. Duplicate edges are kept
// but have no effect on ordering.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
}

// HasNode reports whether name is a node of the graph.
func (g *Graph) HasNode(name string) bool {
	return g.nodeSet[name]
}

// PostOrder returns a depth-first post-order starting at root: every node's
// dependencies are visited, in edge insertion order, before the node itself is
// appended. A node already appended is skipped. An edge to a node that is still
// on the traversal stack closes a cycle; it is recorded and skipped instead of
// being re-entered, so the traversal always terminates.
//
// Nodes unreachable from root are appended afterwards, each as its own
// traversal root in insertion order, so the result is total over the graph.
// PostOrder returns nil if root is not a node.
func (g *Graph) PostOrder(root string) ([]string, []Cycle) {
	if !g.HasNode(root) {
		return nil, nil
	}

	var (
		order  = make([]string, 0, len(g.nodes))
		cycles []Cycle
		done   = make(map[string]bool, len(g.nodes))
		// onStack maps a node to its index in stack while it is being visited.
		onStack = make(map[string]int)
		stack   []string
	)

	// Explicit frames keep deep dependency chains off the goroutine stack.
	type frame struct {
		node string
		next int
	}

	visit := func(start string) {
		frames := []frame{{node: start}}
		onStack[start] = len(stack)
		stack = append(stack, start)

		for len(frames) > 0 {
			top := &frames[len(frames)-1]
			deps := g.adjacency[top.node]

			if top.next < len(deps) {
				dep := deps[top.next]
				top.next++

				if done[dep] {
					continue
				}
				if idx, ok := onStack[dep]; ok {
					path := make([]string, 0, len(stack)-idx+1)
					path = append(path, stack[idx:]...)
					path = append(path, dep)
					cycles = append(cycles, Cycle{From: top.node, To: dep, Path: path})
					continue
				}

				onStack[dep] = len(stack)
				stack = append(stack, dep)
				frames = append(frames, frame{node: dep})
				continue
			}

			done[top.node] = true
			order = append(order, top.node)
			delete(onStack, top.node)
			stack = stack[:len(stack)-1]
			frames = frames[:len(frames)-1]
		}
	}

	visit(root)
	for _, node := range g.nodes {
		if !done[node] {
			visit(node)
		}
	}

	return order, cycles
}
