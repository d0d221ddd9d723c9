// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package registry

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/gtnewhorizons/recipemap/pkg/backend"
	cnserrors "github.com/gtnewhorizons/recipemap/pkg/errors"
)

// Action is deferred work against a backend.
type Action func(*backend.Backend)

// Registry manages registered backends with thread-safe operations.
type Registry struct {
	mu        sync.RWMutex
	handles   map[Key]backend.Handle
	backends  []*backend.Backend // index is handle-1
	keys      []Key              // index is handle-1
	deps      map[Key][]Key
	pending   map[Key][]Action
	lifecycle *backend.Lifecycle
}

// New creates an empty registry with its own lifecycle.
func New() *Registry {
	return &Registry{
		handles:   make(map[Key]backend.Handle),
		deps:      make(map[Key][]Key),
		pending:   make(map[Key][]Action),
		lifecycle: backend.NewLifecycle(),
	}
}

// Register adds b under key and declares deps as dependents of it. Edges
// are symmetric and may name backends that are registered later. Actions
// queued for key run in submission order after the registry lock is
// released.
func (r *Registry) Register(key Key, b *backend.Backend, deps ...Key) (backend.Handle, error) {
	if b == nil {
		return 0, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"backend cannot be nil", map[string]any{"key": key.String()})
	}
	if key.Namespace == "" || key.ID == "" {
		return 0, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"backend key must have a namespace and an id", map[string]any{"key": key.String()})
	}
	if key.Namespace == ReservedNamespace {
		return 0, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"namespace is reserved", map[string]any{"key": key.String()})
	}

	r.mu.Lock()
	if _, exists := r.handles[key]; exists {
		r.mu.Unlock()
		return 0, cnserrors.NewWithContext(cnserrors.ErrCodeConflict,
			"backend already registered", map[string]any{"key": key.String()})
	}

	r.backends = append(r.backends, b)
	r.keys = append(r.keys, key)
	h := backend.Handle(len(r.backends))
	r.handles[key] = h
	for _, d := range deps {
		if d == key {
			continue
		}
		r.link(key, d)
		r.link(d, key)
	}
	queued := r.pending[key]
	delete(r.pending, key)
	r.mu.Unlock()

	b.SetLifecycle(r.lifecycle)
	b.SetResolver(h, r)

	slog.Debug("backend registered", "key", key.String(), "handle", h, "pending", len(queued))
	for _, fn := range queued {
		fn(b)
	}
	return h, nil
}

// MustRegister is a convenience function that panics on registration error.
func (r *Registry) MustRegister(key Key, b *backend.Backend, deps ...Key) backend.Handle {
	h, err := r.Register(key, b, deps...)
	if err != nil {
		panic(err)
	}
	return h
}

func (r *Registry) link(from, to Key) {
	if !slices.Contains(r.deps[from], to) {
		r.deps[from] = append(r.deps[from], to)
	}
}

// RegisterRecipesFor runs fn against the backend under key, now if it is
// registered or on its registration otherwise.
func (r *Registry) RegisterRecipesFor(key Key, fn Action) {
	r.mu.Lock()
	h, ok := r.handles[key]
	if !ok {
		r.pending[key] = append(r.pending[key], fn)
		r.mu.Unlock()
		return
	}
	b := r.backends[h-1]
	r.mu.Unlock()
	fn(b)
}

// Pending returns the number of actions queued for an unregistered key.
func (r *Registry) Pending(key Key) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pending[key])
}

// Get retrieves a backend by key.
func (r *Registry) Get(key Key) (*backend.Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[key]
	if !ok {
		return nil, false
	}
	return r.backends[h-1], true
}

// Handle returns the handle of a registered key.
func (r *Registry) Handle(key Key) (backend.Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[key]
	return h, ok
}

// Resolve implements backend.Resolver.
func (r *Registry) Resolve(h backend.Handle) (*backend.Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h == 0 || int(h) > len(r.backends) {
		return nil, false
	}
	return r.backends[h-1], true
}

// Dependents implements backend.Resolver. Dependencies that are not
// registered yet are skipped.
func (r *Registry) Dependents(h backend.Handle) []*backend.Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h == 0 || int(h) > len(r.keys) {
		return nil
	}
	var out []*backend.Backend
	for _, d := range r.deps[r.keys[h-1]] {
		if dh, ok := r.handles[d]; ok {
			out = append(out, r.backends[dh-1])
		}
	}
	return out
}

// AttachDownstream forwards every request accepted by from to to.
func (r *Registry) AttachDownstream(from, to Key) error {
	r.mu.RLock()
	fh, fok := r.handles[from]
	th, tok := r.handles[to]
	r.mu.RUnlock()

	if !fok || !tok {
		return cnserrors.NewWithContext(cnserrors.ErrCodeNotFound,
			"cannot attach unregistered backend",
			map[string]any{"from": from.String(), "to": to.String()})
	}
	if fh == th {
		return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"backend cannot be its own downstream", map[string]any{"key": from.String()})
	}
	b, _ := r.Resolve(fh)
	b.AttachDownstream(th)
	return nil
}

// Keys returns all registered keys, sorted.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	keys := slices.Clone(r.keys)
	r.mu.RUnlock()
	slices.SortFunc(keys, func(a, b Key) int {
		return strings.Compare(a.String(), b.String())
	})
	return keys
}

// Count returns the number of registered backends.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.backends)
}

// Lifecycle returns the load state shared with every registered backend.
func (r *Registry) Lifecycle() *backend.Lifecycle {
	return r.lifecycle
}

// MarkPostloadFinished flips the shared postload flag.
func (r *Registry) MarkPostloadFinished() {
	r.lifecycle.MarkPostloadFinished()
}

var (
	defaultMu  sync.Mutex
	defaultReg *Registry
)

// Default returns the package-level registry, creating it on first use.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultReg == nil {
		defaultReg = New()
	}
	return defaultReg
}

// Init replaces the package-level registry with an empty one.
func Init() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultReg = New()
	return defaultReg
}

// Teardown drops the package-level registry.
func Teardown() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultReg = nil
}
