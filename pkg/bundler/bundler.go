// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/modpack/modpack/internal/logging"
)

const (
	// StateIdle is the state of a Bundler that has not run yet.
	StateIdle State = iota
	// StateResolving is the state while the dependency graph is built.
	StateResolving
	// StateOrdering is the state while the evaluation order is computed.
	StateOrdering
	// StateEmitting is the state while the artifact is produced.
	StateEmitting
	// StateDone is the state after a successful invocation.
	StateDone
	// StateFailed is the state after a failed invocation.
	StateFailed
)

const (
	// CyclesAllow accepts cycles and logs them at debug level.
	CyclesAllow CyclePolicy = "allow"
	// CyclesWarn accepts cycles and logs each one as a warning.
	CyclesWarn CyclePolicy = "warn"
	// CyclesError fails the invocation with a *CycleError on the first cycle.
	CyclesError CyclePolicy = "error"
)

// ErrInvalidCyclePolicy is the sentinel error wrapped by InvalidCyclePolicyError.
var ErrInvalidCyclePolicy = errors.New("invalid cycle policy")

type (
	// State is the phase of a Bundler invocation.
	State int

	// CyclePolicy decides what a Bundler does with dependency cycles.
	CyclePolicy string

	// InvalidCyclePolicyError is returned when a CyclePolicy is not one of
	// the defined values.
	InvalidCyclePolicyError struct {
		Value CyclePolicy
	}

	// Options configures an invocation. The zero value is usable except for
	// Namespace, which Emit requires.
	Options struct {
		// Namespace is the global name of the entry's exports.
		Namespace string
		// Workers bounds concurrent loader calls during resolution. Values
		// below 1 mean 1.
		Workers int
		// CyclePolicy defaults to CyclesWarn.
		CyclePolicy CyclePolicy
		// Logger defaults to a logger that discards everything.
		Logger *slog.Logger
	}

	// Result is the outcome of a successful invocation.
	Result struct {
		Graph    *Graph
		Order    Order
		Cycles   []CycleDetected
		Artifact *Artifact
	}

	// Bundler runs a single bundling invocation over a loader.
	Bundler struct {
		loader Loader
		opts   Options

		mu    sync.Mutex
		state State
	}
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateOrdering:
		return "ordering"
	case StateEmitting:
		return "emitting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Error implements the error interface.
func (e *InvalidCyclePolicyError) Error() string {
	return fmt.Sprintf("invalid cycle policy %q (must be one of: allow, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidCyclePolicy.
func (e *InvalidCyclePolicyError) Unwrap() error { return ErrInvalidCyclePolicy }

// IsValid reports whether p is a defined policy. The empty value is valid and
// selects the default.
func (p CyclePolicy) IsValid() (bool, []error) {
	switch p {
	case "", CyclesAllow, CyclesWarn, CyclesError:
		return true, nil
	default:
		return false, []error{&InvalidCyclePolicyError{Value: p}}
	}
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.CyclePolicy == "" {
		o.CyclePolicy = CyclesWarn
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// New returns a Bundler that reads modules through l.
func New(l Loader, opts Options) *Bundler {
	return &Bundler{loader: l, opts: opts.withDefaults()}
}

// State returns the current phase of the invocation.
func (b *Bundler) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Bundle resolves the graph reachable from entry, orders it and emits the
// artifact. A Bundler runs once; later calls return ErrInvocationReused.
func (b *Bundler) Bundle(ctx context.Context, entry string) (*Result, error) {
	b.mu.Lock()
	if b.state != StateIdle {
		b.mu.Unlock()
		return nil, ErrInvocationReused
	}
	b.state = StateResolving
	b.mu.Unlock()

	if ok, errs := b.opts.CyclePolicy.IsValid(); !ok {
		return nil, b.fail(errs[0])
	}

	log := b.opts.Logger
	log.Debug("resolving dependency graph", "entry", entry, "workers", b.opts.Workers)

	graph, err := ResolveGraph(ctx, entry, b.loader, b.opts)
	if err != nil {
		return nil, b.fail(err)
	}

	log.Debug("dependency graph resolved", "modules", graph.Len())

	b.setState(StateOrdering)
	order, cycles := ComputeOrderWithCycles(graph)
	for _, c := range cycles {
		switch b.opts.CyclePolicy {
		case CyclesError:
			return nil, b.fail(&CycleError{Cycle: c.Path})
		case CyclesWarn:
			log.Warn("dependency cycle", "cycle", c.String())
		default:
			log.Debug("dependency cycle", "cycle", c.String())
		}
	}

	b.setState(StateEmitting)
	artifact, err := Emit(graph, order, b.opts.Namespace)
	if err != nil {
		return nil, b.fail(err)
	}

	b.setState(StateDone)
	log.Info("bundle emitted",
		"entry", graph.Entry,
		"modules", len(order),
		"bytes", len(artifact.Code),
		"sha256", artifact.Digest())

	return &Result{
		Graph:    graph,
		Order:    order,
		Cycles:   cycles,
		Artifact: artifact,
	}, nil
}

func (b *Bundler) setState(s State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = s
}

func (b *Bundler) fail(err error) error {
	b.setState(StateFailed)
	return err
}
