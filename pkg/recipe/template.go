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
	"slices"

	"github.com/gtnewhorizons/recipemap/pkg/ingredient"
)

// Slot selects one of the four stack slices of a recipe.
type Slot int

const (
	SlotItemInputs Slot = iota
	SlotItemOutputs
	SlotFluidInputs
	SlotFluidOutputs
)

func (s Slot) stacks(r *Recipe) *[]ingredient.Stack {
	switch s {
	case SlotItemInputs:
		return &r.ItemInputs
	case SlotItemOutputs:
		return &r.ItemOutputs
	case SlotFluidInputs:
		return &r.FluidInputs
	default:
		return &r.FluidOutputs
	}
}

// Template is a base recipe that derivatives borrow stack slices from. The
// template recipe must not be modified once derivatives exist.
type Template struct {
	base        *Recipe
	derivatives []*Derivative
}

// AsTemplate wraps r. With includeTemplate the template itself is emitted by
// All as the first recipe, as a borrower like any other derivative.
func AsTemplate(r *Recipe, includeTemplate bool) *Template {
	t := &Template{base: r}
	if includeTemplate {
		t.derivatives = append(t.derivatives, &Derivative{r: r})
	}
	return t
}

// Derive returns a new derivative sharing every stack slice with the
// template.
func (t *Template) Derive() *Derivative {
	d := &Derivative{r: t.base.ShallowCopy()}
	t.derivatives = append(t.derivatives, d)
	return d
}

// All returns the recipes of every derivative in creation order.
func (t *Template) All() []*Recipe {
	out := make([]*Recipe, len(t.derivatives))
	for i, d := range t.derivatives {
		out[i] = d.r
	}
	return out
}

// Derivative is a recipe under construction that copies a borrowed stack
// slice on the first write to it.
type Derivative struct {
	r     *Recipe
	owned [4]bool
}

// Recipe returns the derivative's recipe. Callers must use the mutators
// below rather than writing its slices directly.
func (d *Derivative) Recipe() *Recipe {
	return d.r
}

// Owns reports whether the derivative holds a private copy of the slot.
func (d *Derivative) Owns(s Slot) bool {
	return d.owned[s]
}

func (d *Derivative) writable(s Slot) *[]ingredient.Stack {
	p := s.stacks(d.r)
	if !d.owned[s] {
		*p = slices.Clone(*p)
		d.owned[s] = true
	}
	return p
}

func (d *Derivative) SetName(name string) *Derivative {
	d.r.Name = name
	return d
}

func (d *Derivative) SetDuration(ticks int) *Derivative {
	d.r.Duration = ticks
	return d
}

func (d *Derivative) SetEUt(eut int) *Derivative {
	d.r.EUt = eut
	return d
}

func (d *Derivative) SetSpecialValue(v int) *Derivative {
	d.r.SpecialValue = v
	return d
}

// Set replaces the stack at index i of slot s. Indexes past the end grow
// the slice with empty slots.
func (d *Derivative) Set(s Slot, i int, st ingredient.Stack) *Derivative {
	p := d.writable(s)
	if i >= len(*p) {
		*p = append(*p, make([]ingredient.Stack, i-len(*p)+1)...)
	}
	(*p)[i] = st
	return d
}

func (d *Derivative) SetItemInput(i int, st ingredient.Stack) *Derivative {
	return d.Set(SlotItemInputs, i, st)
}

func (d *Derivative) SetItemOutput(i int, st ingredient.Stack) *Derivative {
	return d.Set(SlotItemOutputs, i, st)
}

func (d *Derivative) SetFluidInput(i int, st ingredient.Stack) *Derivative {
	return d.Set(SlotFluidInputs, i, st)
}

func (d *Derivative) SetFluidOutput(i int, st ingredient.Stack) *Derivative {
	return d.Set(SlotFluidOutputs, i, st)
}

// Mutate applies fn to a private copy of slot s and stores its result.
func (d *Derivative) Mutate(s Slot, fn func([]ingredient.Stack) []ingredient.Stack) *Derivative {
	p := d.writable(s)
	*p = fn(*p)
	return d
}

func (d *Derivative) MutateItemInputs(fn func([]ingredient.Stack) []ingredient.Stack) *Derivative {
	return d.Mutate(SlotItemInputs, fn)
}

func (d *Derivative) MutateItemOutputs(fn func([]ingredient.Stack) []ingredient.Stack) *Derivative {
	return d.Mutate(SlotItemOutputs, fn)
}

func (d *Derivative) MutateFluidInputs(fn func([]ingredient.Stack) []ingredient.Stack) *Derivative {
	return d.Mutate(SlotFluidInputs, fn)
}

func (d *Derivative) MutateFluidOutputs(fn func([]ingredient.Stack) []ingredient.Stack) *Derivative {
	return d.Mutate(SlotFluidOutputs, fn)
}

// ScaleFluidInputs multiplies every fluid input amount by factor.
func (d *Derivative) ScaleFluidInputs(factor int64) *Derivative {
	return d.MutateFluidInputs(scale(factor))
}

// ScaleItemOutputs multiplies every item output amount by factor.
func (d *Derivative) ScaleItemOutputs(factor int64) *Derivative {
	return d.MutateItemOutputs(scale(factor))
}

func scale(factor int64) func([]ingredient.Stack) []ingredient.Stack {
	return func(stacks []ingredient.Stack) []ingredient.Stack {
		for i := range stacks {
			if !stacks[i].IsEmpty() {
				stacks[i].Amount *= factor
			}
		}
		return stacks
	}
}
