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

package recipe

import (
	"github.com/gtnewhorizons/recipemap/pkg/ingredient"
)

// CellTable describes the container items that multiblock emitters unpack
// into fluids. It is filled once before registration starts and read
// concurrently afterwards.
type CellTable struct {
	filled   map[ingredient.ID]ingredient.Stack
	empty    map[ingredient.ID]struct{}
	circuits map[string]struct{}
}

func NewCellTable() *CellTable {
	return &CellTable{
		filled:   make(map[ingredient.ID]ingredient.Stack),
		empty:    make(map[ingredient.ID]struct{}),
		circuits: make(map[string]struct{}),
	}
}

// AddFilled records that one cell item holds fluid.
func (t *CellTable) AddFilled(cell ingredient.ID, fluid ingredient.Stack) *CellTable {
	t.filled[cell] = fluid
	return t
}

// AddEmpty records an empty container item.
func (t *CellTable) AddEmpty(cell ingredient.ID) *CellTable {
	t.empty[cell] = struct{}{}
	return t
}

// AddCircuit records an integrated circuit item name; every metadata value
// of the name counts.
func (t *CellTable) AddCircuit(name string) *CellTable {
	t.circuits[name] = struct{}{}
	return t
}

// FluidFor returns the fluid carried by a stack of filled cells, scaled by
// the stack amount.
func (t *CellTable) FluidFor(s ingredient.Stack) (ingredient.Stack, bool) {
	if t == nil || s.IsEmpty() {
		return ingredient.Stack{}, false
	}
	f, ok := t.filled[s.ID]
	if !ok {
		f, ok = t.filled[s.ID.Wildcard()]
	}
	if !ok {
		return ingredient.Stack{}, false
	}
	f.Amount *= max(s.Amount, 1)
	return f, true
}

func (t *CellTable) isEmptyCell(id ingredient.ID) bool {
	if _, ok := t.empty[id]; ok {
		return true
	}
	_, ok := t.empty[id.Wildcard()]
	return ok
}

func (t *CellTable) isCircuit(id ingredient.ID) bool {
	_, ok := t.circuits[id.Name]
	return ok
}

// unpack moves filled and empty cells out of items. Filled cells become
// fluid inputs, empty cells are dropped, and so are circuits when
// stripCircuits is set. Neither argument is modified.
func (t *CellTable) unpack(items, fluids []ingredient.Stack, stripCircuits bool) ([]ingredient.Stack, []ingredient.Stack) {
	if t == nil {
		return items, fluids
	}
	outItems := make([]ingredient.Stack, 0, len(items))
	outFluids := append([]ingredient.Stack(nil), fluids...)
	for _, it := range items {
		switch {
		case it.IsEmpty():
			outItems = append(outItems, it)
		case stripCircuits && t.isCircuit(it.ID):
		case t.isEmptyCell(it.ID):
		default:
			if f, ok := t.FluidFor(it); ok {
				outFluids = append(outFluids, f)
				continue
			}
			outItems = append(outItems, it)
		}
	}
	return outItems, outFluids
}

// Multiblock builds recipes for multiblock machines, which take fluids from
// hatches rather than cells. Filled cells among the item inputs become fluid
// inputs and empty cells are removed; with stripCircuits integrated
// circuits are removed as well. The builder is updated in place, so
// downstream backends see the unpacked request.
func Multiblock(cells *CellTable, stripCircuits bool) Emitter {
	return func(b *Builder) []*Recipe {
		items, fluids := cells.unpack(b.itemInputs, b.fluidInputs, stripCircuits)
		b.ItemInputs(items...).FluidInputs(fluids...)
		return BuildOrEmpty(b)
	}
}

// HandleCoilHeat copies the CoilHeat metadata into the special value.
func HandleCoilHeat(b *Builder) *Builder {
	return b.SpecialValue(Metadata(b, CoilHeat, 0))
}

// Prepare runs fn on every request before handing it to next.
func Prepare(fn func(*Builder) *Builder, next Emitter) Emitter {
	return func(b *Builder) []*Recipe {
		return next(fn(b))
	}
}
