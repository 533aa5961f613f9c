// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

type (
	// Once wraps a loader so that each distinct ID is loaded at most once.
	// Concurrent requests for the same ID share one underlying call, and the
	// result (source or error) is cached for later requests. Cancellation
	// errors are not cached.
	//
	// The returned source slices are shared between callers and must not be
	// modified.
	Once struct {
		inner Loader
		group singleflight.Group

		mu    sync.Mutex
		cache map[string]loadResult
	}

	loadResult struct {
		source []byte
		err    error
	}
)

// NewOnce wraps inner.
func NewOnce(inner Loader) *Once {
	return &Once{
		inner: inner,
		cache: make(map[string]loadResult),
	}
}

// LoadSource loads id through the wrapped loader on first use.
func (o *Once) LoadSource(ctx context.Context, id string) ([]byte, error) {
	if r, ok := o.cached(id); ok {
		return r.source, r.err
	}

	v, err, _ := o.group.Do(id, func() (any, error) {
		if r, ok := o.cached(id); ok {
			return r.source, r.err
		}
		src, err := o.inner.LoadSource(ctx, id)
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			o.mu.Lock()
			o.cache[id] = loadResult{source: src, err: err}
			o.mu.Unlock()
		}
		return src, err
	})
	src, _ := v.([]byte)
	return src, err
}

// ResolveReference delegates to the wrapped loader.
func (o *Once) ResolveReference(ctx context.Context, referrer, raw string) (string, error) {
	return o.inner.ResolveReference(ctx, referrer, raw)
}

// ExtractDependencyReferences delegates to the wrapped loader.
func (o *Once) ExtractDependencyReferences(source []byte) ([]string, error) {
	return o.inner.ExtractDependencyReferences(source)
}

func (o *Once) cached(id string) (loadResult, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	r, ok := o.cache[id]
	return r, ok
}
