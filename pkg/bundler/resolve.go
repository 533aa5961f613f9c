// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/modpack/modpack/pkg/loader"

	"golang.org/x/sync/errgroup"
)

type (
	// resolver holds the state of one graph traversal. Every field below mu
	// is guarded by it.
	resolver struct {
		loader Loader
		log    *slog.Logger
		// sem bounds concurrent loader work.
		sem chan struct{}

		mu    sync.Mutex
		graph *Graph
		// origin records the first (referrer, reference) pair that led to each
		// scheduled ID; load failures are reported against it.
		origin map[string]edge
	}

	edge struct {
		referrer  string
		reference string
	}
)

// ResolveGraph builds the dependency graph reachable from entryID.
//
// The entry is resolved with an empty referrer. Every module is loaded
// exactly once regardless of how many modules require it. With
// opts.Workers > 1, modules are loaded concurrently. Any loader failure
// aborts the traversal with a *ResolutionError naming the failing reference;
// no partial graph is returned.
func ResolveGraph(ctx context.Context, entryID string, l Loader, opts Options) (*Graph, error) {
	opts = opts.withDefaults()

	if entryID == "" {
		return nil, &ResolutionError{Reference: entryID, Err: errors.New("entry identifier must not be empty")}
	}

	entry, err := l.ResolveReference(ctx, "", entryID)
	if err != nil {
		return nil, wrapResolution(ctx, "", entryID, err)
	}

	r := &resolver{
		loader: l,
		log:    opts.Logger,
		sem:    make(chan struct{}, opts.Workers),
		graph:  &Graph{Entry: entry, Modules: make(map[string]*Module)},
		origin: map[string]edge{entry: {reference: entryID}},
	}

	if opts.Workers == 1 {
		err = r.runSequential(ctx, entry)
	} else {
		err = r.runConcurrent(ctx, entry)
	}
	if err != nil {
		return nil, err
	}

	r.log.Debug("dependency graph resolved", "entry", entry, "modules", len(r.graph.Modules))
	return r.graph, nil
}

func (r *resolver) runSequential(ctx context.Context, entry string) error {
	queue := []string{entry}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		next, err := r.visit(ctx, id)
		if err != nil {
			return err
		}
		queue = append(queue, next...)
	}
	return nil
}

func (r *resolver) runConcurrent(ctx context.Context, entry string) error {
	g, gctx := errgroup.WithContext(ctx)

	var spawn func(id string)
	spawn = func(id string) {
		g.Go(func() error {
			next, err := r.visit(gctx, id)
			if err != nil {
				return err
			}
			for _, n := range next {
				spawn(n)
			}
			return nil
		})
	}
	spawn(entry)

	return g.Wait()
}

// visit loads id, resolves its references and records it in the graph. It
// returns the IDs discovered for the first time, which the caller must visit.
func (r *resolver) visit(ctx context.Context, id string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	module, err := r.load(ctx, id)
	<-r.sem
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.graph.Modules[id] = module

	var next []string
	for _, raw := range module.Dependencies {
		dep := module.Resolved[raw]
		if _, seen := r.origin[dep]; seen {
			continue
		}
		r.origin[dep] = edge{referrer: id, reference: raw}
		next = append(next, dep)
	}

	r.log.Debug("module resolved", "id", id, "dependencies", len(module.Dependencies), "new", len(next))
	return next, nil
}

// load performs the loader calls for id without touching shared state.
func (r *resolver) load(ctx context.Context, id string) (*Module, error) {
	src, err := r.loader.LoadSource(ctx, id)
	if err != nil {
		r.mu.Lock()
		from := r.origin[id]
		r.mu.Unlock()
		return nil, wrapResolution(ctx, from.referrer, from.reference, err)
	}

	refs, err := r.loader.ExtractDependencyReferences(src)
	if err != nil {
		return nil, wrapResolution(ctx, id, referenceOf(err), err)
	}

	module := &Module{
		ID:       id,
		Source:   src,
		Resolved: make(map[string]string, len(refs)),
	}
	for _, raw := range refs {
		if _, dup := module.Resolved[raw]; dup {
			continue
		}
		dep, err := r.loader.ResolveReference(ctx, id, raw)
		if err != nil {
			return nil, wrapResolution(ctx, id, raw, err)
		}
		module.Dependencies = append(module.Dependencies, raw)
		module.Resolved[raw] = dep
	}
	return module, nil
}

// wrapResolution turns a loader failure into a *ResolutionError. Context
// errors pass through unchanged so callers can tell cancellation apart.
func wrapResolution(ctx context.Context, referrer, reference string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return err
	}
	return &ResolutionError{Referrer: referrer, Reference: reference, Err: err}
}

// referenceOf extracts the offending reference from a scan error.
func referenceOf(err error) string {
	var malformed *loader.MalformedReferenceError
	if errors.As(err, &malformed) {
		return malformed.Reference
	}
	return ""
}
