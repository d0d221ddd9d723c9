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
	"github.com/gtnewhorizons/recipemap/pkg/ingredient"
	"github.com/gtnewhorizons/recipemap/pkg/recipe"
)

// Status is the outcome of a search.
type Status int

const (
	StatusNotFound Status = iota
	StatusFound
)

func (s Status) String() string {
	if s == StatusFound {
		return "found"
	}
	return "not_found"
}

// Result is the outcome of a search with the matched recipe when found.
type Result struct {
	Status Status
	Recipe *recipe.Recipe
}

// NotFound is the empty search result.
var NotFound = Result{Status: StatusNotFound}

// Found wraps a matched recipe.
func Found(r *recipe.Recipe) Result {
	return Result{Status: StatusFound, Recipe: r}
}

func (r Result) Found() bool {
	return r.Status == StatusFound && r.Recipe != nil
}

// Query describes the inputs a caller presents to a search. Nil slices are
// treated as empty; a nil Validator accepts every recipe.
type Query struct {
	Items   []ingredient.Stack
	Fluids  []ingredient.Stack
	Special ingredient.Stack

	// Validator is an extra acceptance test run last on each candidate.
	Validator func(*recipe.Recipe) bool

	// Cached is a recipe the caller matched previously. It is returned
	// without scanning when it is still indexed by this backend and still
	// matches.
	Cached *recipe.Recipe

	// NotUnified requests unification of Items before matching.
	NotUnified bool

	IgnoreStackSizes bool
}

// Hooks customize search. Every hook is optional.
type Hooks struct {
	// Override replaces the whole search when set.
	Override func(Query) Result
	// Modify post-processes successful default searches.
	Modify func(Result, Query) Result
	// Fallback answers default searches that found nothing.
	Fallback func(Query) Result
}

// Find searches the backend for a recipe accepting the query inputs.
// Downstream backends are never consulted.
func (b *Backend) Find(q Query) Result {
	if b.hooks.Override != nil {
		return b.hooks.Override(q)
	}

	b.stats.search()
	items := q.Items
	if q.NotUnified {
		items = b.unifier.UnifyAll(items)
	}
	s := &search{
		items:            items,
		fluids:           q.Fluids,
		special:          q.Special,
		validator:        q.Validator,
		cached:           q.Cached,
		ignoreStackSizes: q.IgnoreStackSizes,
		minimumGate:      b.Lifecycle().PostloadFinished(),
	}
	if s.validator == nil {
		s.validator = acceptAll
	}

	b.mu.RLock()
	r, scanned := b.search(s)
	b.mu.RUnlock()
	b.stats.scan(scanned)

	if r != nil {
		res := Found(r)
		if b.hooks.Modify != nil {
			res = b.hooks.Modify(res, q)
		}
		return res
	}
	if b.hooks.Fallback != nil {
		return b.hooks.Fallback(q)
	}
	return NotFound
}

// FindCached runs Find with the cache's remembered recipe as the hint and
// remembers the outcome.
func (b *Backend) FindCached(q Query, c *MatchCache) Result {
	q.Cached = c.Hint()
	res := b.Find(q)
	c.Remember(res)
	return res
}

func acceptAll(*recipe.Recipe) bool { return true }

type search struct {
	items     []ingredient.Stack
	fluids    []ingredient.Stack
	special   ingredient.Stack
	validator func(*recipe.Recipe) bool
	cached    *recipe.Recipe

	ignoreStackSizes bool
	includeDisabled  bool
	minimumGate      bool
}

// search runs the default search. The caller holds at least the read lock.
// It returns the match, or nil, and the number of indexed recipes examined.
func (b *Backend) search(s *search) (*recipe.Recipe, int) {
	if len(b.idx.all) == 0 {
		return nil, 0
	}

	if s.minimumGate {
		if b.props.MinFluidInputs > 0 && ingredient.CountNonEmpty(s.fluids) < b.props.MinFluidInputs {
			return nil, 0
		}
		if b.props.MinItemInputs > 0 && ingredient.CountNonEmpty(s.items) < b.props.MinItemInputs {
			return nil, 0
		}
	}

	if c := s.cached; c != nil && c.Bufferable && b.idx.byID[c.ID] == c && b.accepts(c, s) {
		b.stats.cacheHit()
		return c, 0
	}

	scanned := 0
	scan := func(candidates []*recipe.Recipe) *recipe.Recipe {
		for _, r := range candidates {
			scanned++
			if b.accepts(r, s) {
				return r
			}
		}
		return nil
	}

	if len(b.idx.byItem) > 0 {
		for _, it := range s.items {
			if it.IsEmpty() {
				continue
			}
			if r := scan(b.idx.items(it.ID)); r != nil {
				return r, scanned
			}
			if it.ID.IsWildcard() {
				continue
			}
			if r := scan(b.idx.items(it.ID.Wildcard())); r != nil {
				return r, scanned
			}
		}
	}

	if b.props.MinItemInputs == 0 {
		for _, f := range s.fluids {
			if f.IsEmpty() {
				continue
			}
			if r := scan(b.idx.fluids(f.ID)); r != nil {
				return r, scanned
			}
		}
	}
	return nil, scanned
}

func (b *Backend) accepts(r *recipe.Recipe, s *search) bool {
	if r.Fake || !r.MatchesInputs(s.items, s.fluids, s.ignoreStackSizes) {
		return false
	}
	if b.props.SpecialSlotSensitive && !r.SpecialMatches(s.special) {
		return false
	}
	return (r.Enabled || s.includeDisabled) && s.validator(r)
}

// MatchCache remembers the last recipe one consumer matched. It is owned by
// that consumer and is not safe for concurrent use.
type MatchCache struct {
	recipe *recipe.Recipe
}

// Hint returns the remembered recipe, if any.
func (c *MatchCache) Hint() *recipe.Recipe {
	return c.recipe
}

// Remember keeps a found, bufferable recipe. A found recipe that may not be
// buffered clears the cache; a miss leaves it unchanged.
func (c *MatchCache) Remember(res Result) {
	if !res.Found() {
		return
	}
	if res.Recipe.Bufferable {
		c.recipe = res.Recipe
		return
	}
	c.recipe = nil
}

func (c *MatchCache) Invalidate() {
	c.recipe = nil
}
