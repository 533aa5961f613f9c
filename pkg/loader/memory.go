// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"path"
	"slices"
	"sync"
)

// Memory is a loader over an in-memory module table.
//
// Path references ("./x", "../x", "/x") are joined with the referrer's
// directory and probed like files: the exact ID, then each extension, then
// "<id>/index<ext>". Bare references are looked up as IDs directly, with the
// same probing. Memory is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	modules map[string][]byte
	exts    []string
}

// NewMemory returns a loader serving modules, keyed by ID. exts lists the
// extensions probed when a reference has no exact match.
func NewMemory(modules map[string]string, exts ...string) *Memory {
	m := &Memory{
		modules: make(map[string][]byte, len(modules)),
		exts:    slices.Clone(exts),
	}
	for id, src := range modules {
		m.add(id, src)
	}
	return m
}

// add registers or replaces the source of id.
func (m *Memory) add(id, source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modules[path.Clean(id)] = []byte(source)
}

// LoadSource returns a copy of the source registered for id.
func (m *Memory) LoadSource(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	src, ok := m.modules[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return slices.Clone(src), nil
}

// ResolveReference maps raw, written inside referrer, to a registered ID.
func (m *Memory) ResolveReference(ctx context.Context, referrer, raw string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := ValidateReference(raw); err != nil {
		return "", err
	}

	base := path.Clean(raw)
	if isPathReference(raw) {
		joined, ok := joinReference(referrer, raw)
		if !ok {
			return "", &UnresolvableError{Referrer: referrer, Reference: raw}
		}
		base = joined
	}

	candidates := append(fileCandidates(base, m.exts), indexCandidates(base, m.exts)...)

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range candidates {
		if _, ok := m.modules[id]; ok {
			return id, nil
		}
	}
	return "", &UnresolvableError{Referrer: referrer, Reference: raw, Tried: candidates}
}

// ExtractDependencyReferences scans source with [ScanRequires].
func (m *Memory) ExtractDependencyReferences(source []byte) ([]string, error) {
	return ScanRequires(source)
}
