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

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"k8s.io/utils/ptr"

	"github.com/gtnewhorizons/recipemap/pkg/backend"
	"github.com/gtnewhorizons/recipemap/pkg/defaults"
	cnserrors "github.com/gtnewhorizons/recipemap/pkg/errors"
	"github.com/gtnewhorizons/recipemap/pkg/header"
	"github.com/gtnewhorizons/recipemap/pkg/ingredient"
	"github.com/gtnewhorizons/recipemap/pkg/recipe"
	"github.com/gtnewhorizons/recipemap/pkg/registry"
)

// Report summarizes what Apply did.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	Aliases    int              `json:"aliases" yaml:"aliases"`
	Backends   []BackendReport  `json:"backends" yaml:"backends"`
	Collisions []CollisionEntry `json:"collisions,omitempty" yaml:"collisions,omitempty"`
	Errors     []string         `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// BackendReport holds per-backend registration counts. Accepted and
// Collisions include recipes forwarded from upstream backends.
type BackendReport struct {
	Key        string `json:"key" yaml:"key"`
	Requests   int    `json:"requests" yaml:"requests"`
	Accepted   uint64 `json:"accepted" yaml:"accepted"`
	Dropped    int    `json:"dropped" yaml:"dropped"`
	Collisions uint64 `json:"collisions" yaml:"collisions"`
	Pending    int    `json:"pending" yaml:"pending"`
	Recipes    int    `json:"recipes" yaml:"recipes"`
}

// CollisionEntry names a rejected duplicate.
type CollisionEntry struct {
	Backend string `json:"backend" yaml:"backend"`
	Inputs  string `json:"inputs" yaml:"inputs"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
}

// HasCollisions reports whether any duplicate was rejected.
func (r *Report) HasCollisions() bool {
	return len(r.Collisions) > 0
}

// ApplyOption configures Apply.
type ApplyOption func(*applyOptions)

type applyOptions struct {
	durations backend.DurationSource
	unifier   *ingredient.Unifier
	postload  bool
	version   string
	cells     *recipe.CellTable
}

// WithDurations sets the duration override store handed to backends that
// declare a config category.
func WithDurations(src backend.DurationSource) ApplyOption {
	return func(o *applyOptions) {
		o.durations = src
	}
}

// WithUnifier sets the unification table; by default Apply creates one.
func WithUnifier(u *ingredient.Unifier) ApplyOption {
	return func(o *applyOptions) {
		if u != nil {
			o.unifier = u
		}
	}
}

// WithVersion records the producing tool version in the report header.
func WithVersion(v string) ApplyOption {
	return func(o *applyOptions) {
		o.version = v
	}
}

// WithPostload controls whether Apply marks the registry postload finished.
// Defaults to true.
func WithPostload(finish bool) ApplyOption {
	return func(o *applyOptions) {
		o.postload = finish
	}
}

type collisionRecorder struct {
	mu      sync.Mutex
	entries []CollisionEntry
}

func (c *collisionRecorder) record(col backend.Collision) {
	slog.Warn("recipe collision",
		"backend", col.Backend,
		"inputs", col.Inputs,
		"name", col.Recipe.Name)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, CollisionEntry{Backend: col.Backend, Inputs: col.Inputs, Name: col.Recipe.Name})
}

type request struct {
	key      registry.Key
	spec     RecipeSpec
	itemIn   []ingredient.Stack
	itemOut  []ingredient.Stack
	fluidIn  []ingredient.Stack
	fluidOut []ingredient.Stack
	special  ingredient.Stack
}

// Apply registers the catalog's backends with reg, wires dependencies and
// downstreams, installs unification aliases and adds the recipes in order.
// Every spec is checked before reg is touched. Registration errors from
// individual recipes are collected into the report and returned joined.
func Apply(ctx context.Context, reg *registry.Registry, cat *Catalog, opts ...ApplyOption) (*Report, error) {
	if reg == nil || cat == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "registry and catalog are required")
	}
	o := &applyOptions{unifier: ingredient.NewUnifier(), postload: true}
	for _, opt := range opts {
		opt(o)
	}

	aliases, err := parseAliases(cat.Unification)
	if err != nil {
		return nil, err
	}
	if o.cells, err = parseCells(cat.Cells); err != nil {
		return nil, err
	}
	rec := &collisionRecorder{}
	plans, err := planBackends(cat.Backends, o, rec)
	if err != nil {
		return nil, err
	}
	requests, err := planRecipes(cat.Recipes)
	if err != nil {
		return nil, err
	}

	for _, p := range plans {
		if _, exists := reg.Get(p.key); exists {
			return nil, cnserrors.NewWithContext(cnserrors.ErrCodeConflict,
				"backend already registered", map[string]any{"key": p.key.String()})
		}
	}

	for _, a := range aliases {
		o.unifier.Alias(a[0], a[1])
	}

	for _, p := range plans {
		if _, err := reg.Register(p.key, p.backend, p.deps...); err != nil {
			return nil, err
		}
	}
	for _, p := range plans {
		for _, ds := range p.downstreams {
			if err := reg.AttachDownstream(p.key, ds); err != nil {
				return nil, err
			}
		}
	}

	keys := trackedKeys(plans, requests)
	before := make(map[registry.Key]backend.Stats, len(keys))
	for _, k := range keys {
		if b, ok := reg.Get(k); ok {
			before[k] = b.Stats()
		}
	}

	report := &Report{Aliases: len(aliases)}
	report.Init(header.KindCatalogReport, defaults.CatalogAPIVersion, o.version)
	counts := make(map[registry.Key]*BackendReport, len(keys))
	for _, k := range keys {
		counts[k] = &BackendReport{Key: k.String()}
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	for i, req := range requests {
		if err := ctx.Err(); err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeTimeout, "catalog apply canceled", err)
		}
		br := counts[req.key]
		br.Requests++
		builder := req.builder(o.unifier)
		reg.RegisterRecipesFor(req.key, func(b *backend.Backend) {
			accepted, err := b.Add(builder)
			mu.Lock()
			defer mu.Unlock()
			if len(accepted) == 0 {
				br.Dropped++
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("recipe %d (%s): %w", i, req.key, err))
			}
		})
	}

	if o.postload {
		reg.MarkPostloadFinished()
	}

	for _, k := range keys {
		br := counts[k]
		br.Pending = reg.Pending(k)
		if b, ok := reg.Get(k); ok {
			after := b.Stats()
			br.Accepted = after.Accepted - before[k].Accepted
			br.Collisions = after.Collisions - before[k].Collisions
			br.Recipes = b.Len()
		}
		report.Backends = append(report.Backends, *br)
	}
	rec.mu.Lock()
	report.Collisions = rec.entries
	rec.mu.Unlock()
	for _, err := range errs {
		report.Errors = append(report.Errors, err.Error())
	}

	slog.Info("catalog applied",
		"backends", len(plans),
		"recipes", len(requests),
		"aliases", len(aliases),
		"collisions", len(report.Collisions),
		"errors", len(errs))
	return report, errors.Join(errs...)
}

type backendPlan struct {
	key         registry.Key
	backend     *backend.Backend
	deps        []registry.Key
	downstreams []registry.Key
}

func planBackends(specs []BackendSpec, o *applyOptions, rec *collisionRecorder) ([]backendPlan, error) {
	plans := make([]backendPlan, 0, len(specs))
	for _, spec := range specs {
		key, err := registry.ParseKey(spec.Key)
		if err != nil {
			return nil, err
		}
		bopts, err := backendOptions(spec, o, rec)
		if err != nil {
			return nil, cnserrors.WrapWithContext(cnserrors.CodeOf(err),
				"invalid backend", err, map[string]any{"key": spec.Key})
		}
		p := backendPlan{key: key, backend: backend.New(key.String(), bopts...)}
		if p.deps, err = parseKeys(spec.Dependencies); err != nil {
			return nil, err
		}
		if p.downstreams, err = parseKeys(spec.Downstreams); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func backendOptions(spec BackendSpec, o *applyOptions, rec *collisionRecorder) ([]backend.Option, error) {
	opts := []backend.Option{
		backend.WithMinItemInputs(spec.MinItemInputs),
		backend.WithMinFluidInputs(spec.MinFluidInputs),
		backend.WithSpecialSlotSensitive(spec.SpecialSlotSensitive),
		backend.WithCollisionCheck(ptr.Deref(spec.CollisionCheck, true)),
		backend.WithCollisionHandler(rec.record),
		backend.WithUnifier(o.unifier),
	}

	if spec.ConfigCategory != "" {
		name := spec.ConfigKey
		if name == "" {
			name = "firstItemInput"
		}
		fn, ok := recipe.KeyFuncs[name]
		if !ok {
			return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
				"unknown config key", map[string]any{"configKey": name})
		}
		opts = append(opts, backend.WithConfigCategory(spec.ConfigCategory, fn))
		if o.durations != nil {
			opts = append(opts, backend.WithDurationConfig(o.durations))
		}
	}

	if spec.Emitter != nil {
		var emit recipe.Emitter
		switch spec.Emitter.Type {
		case EmitterDefault, "":
			emit = recipe.BuildOrEmpty
		case EmitterTiered:
			if len(spec.Emitter.Tiers) == 0 {
				return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "tiered emitter requires at least one tier")
			}
			emit = recipe.PerTier(spec.Emitter.Tiers...)
		case EmitterMultiblock:
			emit = recipe.Multiblock(o.cells, true)
		case EmitterMultiblockNoCircuit:
			emit = recipe.Multiblock(o.cells, false)
		default:
			return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
				"unknown emitter type", map[string]any{"type": spec.Emitter.Type})
		}
		if spec.Emitter.CoilHeat {
			emit = recipe.Prepare(recipe.HandleCoilHeat, emit)
		}
		opts = append(opts, backend.WithEmitter(emit))
	}

	if spec.SpecialHandler != "" {
		h, ok := recipe.SpecialHandlers[spec.SpecialHandler]
		if !ok {
			return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
				"unknown special handler", map[string]any{"specialHandler": spec.SpecialHandler})
		}
		opts = append(opts, backend.WithSpecialHandler(h))
	}
	return opts, nil
}

func parseKeys(raw []string) ([]registry.Key, error) {
	out := make([]registry.Key, 0, len(raw))
	for _, s := range raw {
		k, err := registry.ParseKey(s)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

func parseAliases(raw []Alias) ([][2]ingredient.ID, error) {
	out := make([][2]ingredient.ID, 0, len(raw))
	for _, a := range raw {
		from, err := ingredient.ParseID(ingredient.KindItem, a.From)
		if err != nil {
			return nil, err
		}
		to, err := ingredient.ParseID(ingredient.KindItem, a.To)
		if err != nil {
			return nil, err
		}
		out = append(out, [2]ingredient.ID{from, to})
	}
	return out, nil
}

// planRecipes parses every recipe spec without building anything.
func parseCells(spec *CellsSpec) (*recipe.CellTable, error) {
	cells := recipe.NewCellTable()
	if spec == nil {
		return cells, nil
	}
	for _, f := range spec.Filled {
		cell, err := ingredient.ParseID(ingredient.KindItem, f.Cell)
		if err != nil {
			return nil, err
		}
		fluid, err := ingredient.ParseStack(ingredient.KindFluid, f.Fluid)
		if err != nil {
			return nil, err
		}
		cells.AddFilled(cell, fluid)
	}
	for _, raw := range spec.Empty {
		cell, err := ingredient.ParseID(ingredient.KindItem, raw)
		if err != nil {
			return nil, err
		}
		cells.AddEmpty(cell)
	}
	for _, name := range spec.Circuits {
		cells.AddCircuit(name)
	}
	return cells, nil
}

func planRecipes(specs []RecipeSpec) ([]request, error) {
	out := make([]request, 0, len(specs))
	for i, spec := range specs {
		req, err := parseRecipe(spec)
		if err != nil {
			return nil, cnserrors.WrapWithContext(cnserrors.CodeOf(err),
				"invalid recipe", err, map[string]any{"index": i, "backend": spec.Backend, "name": spec.Name})
		}
		out = append(out, req)
	}
	return out, nil
}

func parseRecipe(spec RecipeSpec) (request, error) {
	req := request{spec: spec}
	var err error
	if req.key, err = registry.ParseKey(spec.Backend); err != nil {
		return req, err
	}
	if req.itemIn, err = parseStacks(ingredient.KindItem, spec.ItemInputs); err != nil {
		return req, err
	}
	if req.itemOut, err = parseStacks(ingredient.KindItem, spec.ItemOutputs); err != nil {
		return req, err
	}
	if req.fluidIn, err = parseStacks(ingredient.KindFluid, spec.FluidInputs); err != nil {
		return req, err
	}
	if req.fluidOut, err = parseStacks(ingredient.KindFluid, spec.FluidOutputs); err != nil {
		return req, err
	}
	if spec.Special != "" {
		if req.special, err = ingredient.ParseStack(ingredient.KindItem, spec.Special); err != nil {
			return req, err
		}
	}
	return req, nil
}

// builder assembles the registration request with item stacks unified by u.
func (req request) builder(u *ingredient.Unifier) *recipe.Builder {
	spec := req.spec
	b := recipe.NewBuilder().
		Name(spec.Name).
		ItemInputs(u.UnifyAll(req.itemIn)...).
		ItemOutputs(u.UnifyAll(req.itemOut)...).
		FluidInputs(req.fluidIn...).
		FluidOutputs(req.fluidOut...).
		Duration(spec.Duration).
		EUt(spec.EUt)

	if !req.special.IsEmpty() {
		b.Special(req.special)
	}
	if spec.SpecialValue != nil {
		b.SpecialValue(*spec.SpecialValue)
	}
	if !ptr.Deref(spec.Enabled, true) {
		b.Disabled()
	}
	if spec.Fake {
		b.Fake()
	}
	if !ptr.Deref(spec.Bufferable, true) {
		b.NoBuffer()
	}
	if m := spec.Metadata; m != nil {
		setBool(b, recipe.LowGravity, m.LowGravity)
		setBool(b, recipe.Cleanroom, m.Cleanroom)
		setInt(b, recipe.CoilHeat, m.CoilHeat)
		setInt(b, recipe.FusionThreshold, m.FusionThreshold)
		setInt(b, recipe.NaniteTier, m.NaniteTier)
	}
	return b
}

func setBool(b *recipe.Builder, k recipe.Key[bool], v *bool) {
	if v != nil {
		recipe.SetMetadata(b, k, *v)
	}
}

func setInt(b *recipe.Builder, k recipe.Key[int], v *int) {
	if v != nil {
		recipe.SetMetadata(b, k, *v)
	}
}

func parseStacks(kind ingredient.Kind, raw []string) ([]ingredient.Stack, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]ingredient.Stack, len(raw))
	for i, s := range raw {
		if s == "" {
			continue
		}
		st, err := ingredient.ParseStack(kind, s)
		if err != nil {
			return nil, err
		}
		out[i] = st
	}
	return out, nil
}

// trackedKeys returns the catalog's backend keys followed by any other
// recipe target, sorted within each group.
func trackedKeys(plans []backendPlan, requests []request) []registry.Key {
	seen := make(map[registry.Key]struct{})
	var declared, other []registry.Key
	for _, p := range plans {
		if _, ok := seen[p.key]; !ok {
			seen[p.key] = struct{}{}
			declared = append(declared, p.key)
		}
	}
	for _, r := range requests {
		if _, ok := seen[r.key]; !ok {
			seen[r.key] = struct{}{}
			other = append(other, r.key)
		}
	}
	less := func(s []registry.Key) func(i, j int) bool {
		return func(i, j int) bool { return s[i].String() < s[j].String() }
	}
	sort.Slice(declared, less(declared))
	sort.Slice(other, less(other))
	return append(declared, other...)
}
