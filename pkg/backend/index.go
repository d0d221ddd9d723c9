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

// bucket is an insertion-ordered set of recipes.
type bucket struct {
	recipes []*recipe.Recipe
	seen    map[*recipe.Recipe]struct{}
}

func (bk *bucket) add(r *recipe.Recipe) {
	if _, ok := bk.seen[r]; ok {
		return
	}
	bk.seen[r] = struct{}{}
	bk.recipes = append(bk.recipes, r)
}

type index struct {
	byItem  map[ingredient.ID]*bucket
	byFluid map[ingredient.ID]*bucket
	all     []*recipe.Recipe
	byID    map[uint64]*recipe.Recipe
}

func newIndex() *index {
	return &index{
		byItem:  make(map[ingredient.ID]*bucket),
		byFluid: make(map[ingredient.ID]*bucket),
		byID:    make(map[uint64]*recipe.Recipe),
	}
}

func (ix *index) insert(r *recipe.Recipe) {
	ix.all = append(ix.all, r)
	ix.byID[r.ID] = r
	ix.indexFluids(r)
	ix.indexItems(r)
}

func (ix *index) indexItems(r *recipe.Recipe) {
	for _, s := range r.ItemInputs {
		if !s.IsEmpty() {
			put(ix.byItem, s.ID, r)
		}
	}
}

func (ix *index) indexFluids(r *recipe.Recipe) {
	for _, s := range r.FluidInputs {
		if !s.IsEmpty() {
			put(ix.byFluid, s.ID, r)
		}
	}
}

func put(m map[ingredient.ID]*bucket, id ingredient.ID, r *recipe.Recipe) {
	bk, ok := m[id]
	if !ok {
		bk = &bucket{seen: make(map[*recipe.Recipe]struct{}, 1)}
		m[id] = bk
	}
	bk.add(r)
}

func (ix *index) items(id ingredient.ID) []*recipe.Recipe {
	if bk, ok := ix.byItem[id]; ok {
		return bk.recipes
	}
	return nil
}

func (ix *index) fluids(id ingredient.ID) []*recipe.Recipe {
	if bk, ok := ix.byFluid[id]; ok {
		return bk.recipes
	}
	return nil
}
