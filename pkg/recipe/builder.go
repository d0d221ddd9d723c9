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

// Builder is a registration request. Setters return the builder so requests
// can be written as a chain; a builder may be submitted to several backends
// and every Build produces fresh slices.
type Builder struct {
	name string

	itemInputs   []ingredient.Stack
	itemOutputs  []ingredient.Stack
	fluidInputs  []ingredient.Stack
	fluidOutputs []ingredient.Stack
	special      ingredient.Stack

	duration     int
	eut          int
	specialValue int

	disabled bool
	fake     bool
	noBuffer bool
	invalid  bool

	metadata map[string]any
}

// NewBuilder returns an empty, valid request.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

func (b *Builder) ItemInputs(stacks ...ingredient.Stack) *Builder {
	b.itemInputs = stacks
	return b
}

func (b *Builder) ItemOutputs(stacks ...ingredient.Stack) *Builder {
	b.itemOutputs = stacks
	return b
}

func (b *Builder) FluidInputs(stacks ...ingredient.Stack) *Builder {
	b.fluidInputs = stacks
	return b
}

func (b *Builder) FluidOutputs(stacks ...ingredient.Stack) *Builder {
	b.fluidOutputs = stacks
	return b
}

// Special sets the catalyst slot.
func (b *Builder) Special(s ingredient.Stack) *Builder {
	b.special = s
	return b
}

func (b *Builder) Duration(ticks int) *Builder {
	b.duration = ticks
	return b
}

func (b *Builder) EUt(eut int) *Builder {
	b.eut = eut
	return b
}

// SpecialValue sets an explicit special value. Zero lets the backend derive
// it from metadata.
func (b *Builder) SpecialValue(v int) *Builder {
	b.specialValue = v
	return b
}

// Fake marks the recipe as display-only; searches never return it.
func (b *Builder) Fake() *Builder {
	b.fake = true
	return b
}

func (b *Builder) Disabled() *Builder {
	b.disabled = true
	return b
}

// NoBuffer keeps the recipe out of match caches.
func (b *Builder) NoBuffer() *Builder {
	b.noBuffer = true
	return b
}

// Invalidate makes every following Build fail until ClearInvalid.
func (b *Builder) Invalidate() *Builder {
	b.invalid = true
	return b
}

func (b *Builder) ClearInvalid() *Builder {
	b.invalid = false
	return b
}

func (b *Builder) IsValid() bool {
	return !b.invalid
}

// MetadataNames returns the names of all metadata entries, sorted.
func (b *Builder) MetadataNames() []string {
	names := make([]string, 0, len(b.metadata))
	for k := range b.metadata {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Build produces a recipe from the request. It returns false when the
// request was invalidated or declares neither inputs nor outputs.
func (b *Builder) Build() (*Recipe, bool) {
	if b.invalid {
		return nil, false
	}
	r := &Recipe{
		Name:         b.name,
		ItemInputs:   slices.Clone(b.itemInputs),
		ItemOutputs:  slices.Clone(b.itemOutputs),
		FluidInputs:  slices.Clone(b.fluidInputs),
		FluidOutputs: slices.Clone(b.fluidOutputs),
		SpecialItem:  b.special,
		Duration:     b.duration,
		EUt:          b.eut,
		SpecialValue: b.specialValue,
		Enabled:      !b.disabled,
		Fake:         b.fake,
		Bufferable:   !b.noBuffer,
	}
	if ingredient.CountNonEmpty(r.ItemInputs)+ingredient.CountNonEmpty(r.FluidInputs)+
		ingredient.CountNonEmpty(r.ItemOutputs)+ingredient.CountNonEmpty(r.FluidOutputs) == 0 {
		return nil, false
	}
	return r, true
}
