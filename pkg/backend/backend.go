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

package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	cnserrors "github.com/gtnewhorizons/recipemap/pkg/errors"
	"github.com/gtnewhorizons/recipemap/pkg/ingredient"
	"github.com/gtnewhorizons/recipemap/pkg/recipe"
)

// Special values derived from builder metadata when none is set explicitly.
const (
	lowGravitySpecialValue = -100
	cleanroomSpecialValue  = -200
)

// ErrConcurrentRegistration is returned by Add when a declared dependent
// backend is registering at the same time.
var ErrConcurrentRegistration = cnserrors.New(cnserrors.ErrCodeConflict,
	"concurrent registration into dependent recipe backends")

// Handle identifies a backend within a Resolver. The zero Handle is
// unregistered.
type Handle uint32

// Resolver maps handles to backends. The registry implements it.
type Resolver interface {
	Resolve(h Handle) (*Backend, bool)
	Dependents(h Handle) []*Backend
}

// Collision describes a candidate recipe rejected because an existing recipe
// already accepts the same inputs.
type Collision struct {
	Backend string
	Inputs  string
	Recipe  *recipe.Recipe
}

// CollisionHandler receives every rejected duplicate.
type CollisionHandler func(Collision)

func logCollision(c Collision) {
	slog.Warn("recipe collision",
		"backend", c.Backend,
		"inputs", c.Inputs,
		"name", c.Recipe.Name)
}

// Backend stores the recipes of one category and answers searches over them.
type Backend struct {
	props          Properties
	configKey      recipe.KeyFunc
	durations      DurationSource
	emitter        recipe.Emitter
	specialHandler recipe.SpecialHandler
	hooks          Hooks
	unifier        *ingredient.Unifier
	onCollision    CollisionHandler
	lifecycle      *Lifecycle

	mu     sync.RWMutex
	idx    *index
	nextID uint64

	registering atomic.Int32

	linkMu      sync.Mutex
	handle      Handle
	resolver    Resolver
	downstreams []Handle

	stats *counters
}

// New creates an empty backend.
func New(name string, opts ...Option) *Backend {
	b := &Backend{
		props: Properties{
			Name:           name,
			CollisionCheck: true,
		},
		emitter:     recipe.BuildOrEmpty,
		onCollision: logCollision,
		lifecycle:   NewLifecycle(),
		idx:         newIndex(),
		stats:       newCounters(name),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Name() string {
	return b.props.Name
}

// Properties returns the settings the backend was created with.
func (b *Backend) Properties() Properties {
	return b.props
}

// Lifecycle returns the load state the backend consults.
func (b *Backend) Lifecycle() *Lifecycle {
	b.linkMu.Lock()
	defer b.linkMu.Unlock()
	return b.lifecycle
}

// SetLifecycle replaces the load state, typically with a registry's shared
// one.
func (b *Backend) SetLifecycle(lc *Lifecycle) {
	if lc == nil {
		return
	}
	b.linkMu.Lock()
	b.lifecycle = lc
	b.linkMu.Unlock()
}

// SetResolver records the handle the backend was registered under and the
// resolver used for downstream and dependent lookups.
func (b *Backend) SetResolver(h Handle, r Resolver) {
	b.linkMu.Lock()
	defer b.linkMu.Unlock()
	b.handle = h
	b.resolver = r
}

// Handle returns the handle assigned on registration.
func (b *Backend) Handle() Handle {
	b.linkMu.Lock()
	defer b.linkMu.Unlock()
	return b.handle
}

// AttachDownstream appends a backend that receives every request this
// backend accepts at least one recipe from. There is no detach.
func (b *Backend) AttachDownstream(h Handle) {
	b.linkMu.Lock()
	defer b.linkMu.Unlock()
	b.downstreams = append(b.downstreams, h)
}

// Downstreams returns the attached handles in attach order.
func (b *Backend) Downstreams() []Handle {
	b.linkMu.Lock()
	defer b.linkMu.Unlock()
	return slices.Clone(b.downstreams)
}

// Stats returns a snapshot of the backend counters.
func (b *Backend) Stats() Stats {
	return b.stats.snapshot()
}

// Registering reports whether an Add is in progress.
func (b *Backend) Registering() bool {
	return b.registering.Load() > 0
}

// Add expands the request, filters and indexes the resulting recipes and
// forwards the request to downstream backends when anything was accepted.
// Dropped candidates are not errors. Downstream failures are joined into the
// returned error; the locally accepted recipes are returned regardless.
//
// A failed duration lookup or a candidate below the minimum input counts
// abandons the rest of the request. Candidates indexed before that point stay
// indexed, but Add returns nothing and the request is not forwarded.
//
// The collision handler runs after the backend lock is released, so it may
// call back into the backend.
func (b *Backend) Add(builder *recipe.Builder) ([]*recipe.Recipe, error) {
	b.registering.Add(1)
	if err := b.checkDependents(); err != nil {
		b.registering.Add(-1)
		return nil, err
	}

	b.mu.Lock()
	accepted, collisions := b.addLocked(builder)
	b.mu.Unlock()
	b.registering.Add(-1)

	for _, c := range collisions {
		b.onCollision(c)
	}

	if len(accepted) == 0 {
		return nil, nil
	}

	builder.ClearInvalid()
	return accepted, b.fanOut(builder)
}

func (b *Backend) checkDependents() error {
	b.linkMu.Lock()
	h, r := b.handle, b.resolver
	b.linkMu.Unlock()
	if r == nil {
		return nil
	}
	for _, dep := range r.Dependents(h) {
		if dep != b && dep.Registering() {
			return cnserrors.WrapWithContext(cnserrors.ErrCodeConflict,
				"registration rejected", ErrConcurrentRegistration,
				map[string]any{"backend": b.props.Name, "dependent": dep.props.Name})
		}
	}
	return nil
}

func (b *Backend) fanOut(builder *recipe.Builder) error {
	b.linkMu.Lock()
	r := b.resolver
	handles := slices.Clone(b.downstreams)
	b.linkMu.Unlock()

	var errs []error
	for _, h := range handles {
		var ds *Backend
		ok := false
		if r != nil {
			ds, ok = r.Resolve(h)
		}
		if !ok {
			errs = append(errs, cnserrors.NewWithContext(cnserrors.ErrCodeNotFound,
				"downstream backend not registered",
				map[string]any{"backend": b.props.Name, "handle": h}))
			continue
		}
		if _, err := ds.Add(builder); err != nil {
			errs = append(errs, fmt.Errorf("downstream %s: %w", ds.props.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (b *Backend) addLocked(builder *recipe.Builder) (accepted []*recipe.Recipe, collisions []Collision) {
	for _, r := range b.emitter(builder) {
		if r == nil {
			continue
		}

		if b.props.ConfigCategory != "" && b.configKey != nil && b.durations != nil {
			if key := b.configKey(r); key != "" {
				d, err := b.durations.Duration(b.props.ConfigCategory, key, r.Duration)
				if err != nil {
					slog.Error("duration override lookup failed, dropping request",
						"backend", b.props.Name,
						"category", b.props.ConfigCategory,
						"key", key,
						"error", err)
					return nil, collisions
				}
				if d <= 0 {
					slog.Debug("recipe disabled by duration override",
						"backend", b.props.Name, "key", key)
					continue
				}
				r.Duration = d
			}
		}

		if ingredient.CountNonEmpty(r.FluidInputs) < b.props.MinFluidInputs &&
			ingredient.CountNonEmpty(r.ItemInputs) < b.props.MinItemInputs {
			slog.Debug("request below minimum inputs, dropping",
				"backend", b.props.Name,
				"name", r.Name)
			return nil, collisions
		}

		if r.SpecialValue == 0 {
			r.SpecialValue = deriveSpecialValue(builder)
		}

		if b.specialHandler != nil {
			if r = b.specialHandler(r); r == nil {
				continue
			}
		}

		if b.props.CollisionCheck && b.collides(r) {
			b.stats.collision()
			collisions = append(collisions, Collision{
				Backend: b.props.Name,
				Inputs:  r.InputNames(),
				Recipe:  r,
			})
			continue
		}

		b.nextID++
		r.ID = b.nextID
		b.idx.insert(r)
		b.stats.accept(len(b.idx.all))
		accepted = append(accepted, r)
	}
	return accepted, collisions
}

func deriveSpecialValue(builder *recipe.Builder) int {
	v := 0
	if recipe.Metadata(builder, recipe.LowGravity, false) {
		v += lowGravitySpecialValue
	}
	if recipe.Metadata(builder, recipe.Cleanroom, false) {
		v += cleanroomSpecialValue
	}
	for _, alias := range recipe.SpecialValueAliases {
		if a, ok := recipe.LookupMetadata(builder, alias); ok {
			return a
		}
	}
	return v
}

func (b *Backend) collides(r *recipe.Recipe) bool {
	found, _ := b.search(&search{
		items:            r.ItemInputs,
		fluids:           r.FluidInputs,
		validator:        acceptAll,
		ignoreStackSizes: true,
		includeDisabled:  true,
		minimumGate:      b.Lifecycle().PostloadFinished(),
	})
	return found != nil
}

// Rebuild re-derives the indexes from the stored recipes after unifying
// their item inputs and outputs. A recipe whose stacks change is replaced by
// a copy carrying the unified slices; slices shared with other recipes are
// never edited. Unchanged recipes keep their identity, so match caches
// holding them stay valid.
func (b *Backend) Rebuild() {
	b.mu.Lock()
	defer b.mu.Unlock()

	old := b.idx.all
	b.idx = newIndex()
	for _, r := range old {
		inputs := b.unifier.UnifyAll(r.ItemInputs)
		outputs := b.unifier.UnifyAll(r.ItemOutputs)
		if slices.Equal(inputs, r.ItemInputs) && slices.Equal(outputs, r.ItemOutputs) {
			b.idx.insert(r)
			continue
		}
		nr := r.ShallowCopy()
		nr.ItemInputs = inputs
		nr.ItemOutputs = outputs
		b.idx.insert(nr)
	}
	slog.Debug("recipe index rebuilt", "backend", b.props.Name, "recipes", len(old))
}

// ContainsItem reports whether any recipe takes the item, by exact or
// wildcard key.
func (b *Backend) ContainsItem(id ingredient.ID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.idx.byItem[id]; ok {
		return true
	}
	_, ok := b.idx.byItem[id.Wildcard()]
	return ok
}

// ContainsFluid reports whether any recipe takes the fluid.
func (b *Backend) ContainsFluid(id ingredient.ID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.idx.byFluid[id]
	return ok
}

// Recipes returns all recipes in registration order.
func (b *Backend) Recipes() []*recipe.Recipe {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.idx.all)
}

func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.idx.all)
}

// Lookup returns the recipe with the given backend-assigned id.
func (b *Backend) Lookup(id uint64) (*recipe.Recipe, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.idx.byID[id]
	return r, ok
}
