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

// Emitter expands a registration request into candidate recipes.
type Emitter func(*Builder) []*Recipe

// BuildOrEmpty emits the single built recipe, or nothing when the request
// is invalid.
func BuildOrEmpty(b *Builder) []*Recipe {
	r, ok := b.Build()
	if !ok {
		return nil
	}
	return []*Recipe{r}
}

// Tier describes one voltage tier derived by PerTier.
type Tier struct {
	Name            string `json:"name" yaml:"name"`
	EUtMultiplier   int    `json:"eutMultiplier,omitempty" yaml:"eutMultiplier,omitempty"`
	DurationDivisor int    `json:"durationDivisor,omitempty" yaml:"durationDivisor,omitempty"`
	FluidMultiplier int64  `json:"fluidMultiplier,omitempty" yaml:"fluidMultiplier,omitempty"`
}

// PerTier emits one recipe per tier, all derived from the same built base.
// Zero multipliers and divisors are treated as 1; durations never drop
// below one tick.
func PerTier(tiers ...Tier) Emitter {
	return func(b *Builder) []*Recipe {
		base, ok := b.Build()
		if !ok || len(tiers) == 0 {
			return nil
		}
		t := AsTemplate(base, false)
		for _, tier := range tiers {
			d := t.Derive()
			if base.Name != "" && tier.Name != "" {
				d.SetName(base.Name + "/" + tier.Name)
			}
			d.SetEUt(base.EUt * atLeastOne(tier.EUtMultiplier))
			d.SetDuration(max(1, base.Duration/atLeastOne(tier.DurationDivisor)))
			if tier.FluidMultiplier > 1 {
				d.ScaleFluidInputs(tier.FluidMultiplier)
			}
		}
		return t.All()
	}
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// SpecialHandler may replace a candidate before it is indexed. A nil result
// drops the candidate.
type SpecialHandler func(*Recipe) *Recipe

// AllFake marks every recipe as fake.
func AllFake(r *Recipe) *Recipe {
	r.Fake = true
	return r
}

// KeyFunc derives the duration-override key of a recipe. An empty key means
// the recipe has no override entry.
type KeyFunc func(*Recipe) string

func FirstItemInput(r *Recipe) string   { return firstKey(r.ItemInputs) }
func FirstItemOutput(r *Recipe) string  { return firstKey(r.ItemOutputs) }
func FirstFluidInput(r *Recipe) string  { return firstKey(r.FluidInputs) }
func FirstFluidOutput(r *Recipe) string { return firstKey(r.FluidOutputs) }

// FirstFluidStackInput and FirstFluidStackOutput key on the unlocalized
// fluid stack name ("fluid.<name>") rather than the bare fluid name.
func FirstFluidStackInput(r *Recipe) string  { return fluidStackKey(r.FluidInputs) }
func FirstFluidStackOutput(r *Recipe) string { return fluidStackKey(r.FluidOutputs) }

func FirstItemOrFluidInput(r *Recipe) string {
	if k := FirstItemInput(r); k != "" {
		return k
	}
	return FirstFluidInput(r)
}

func FirstItemOrFluidOutput(r *Recipe) string {
	if k := FirstItemOutput(r); k != "" {
		return k
	}
	return FirstFluidOutput(r)
}

// KeyFuncs maps catalog names to key functions.
var KeyFuncs = map[string]KeyFunc{
	"firstItemInput":         FirstItemInput,
	"firstItemOutput":        FirstItemOutput,
	"firstFluidInput":        FirstFluidInput,
	"firstFluidOutput":       FirstFluidOutput,
	"firstFluidStackInput":   FirstFluidStackInput,
	"firstFluidStackOutput":  FirstFluidStackOutput,
	"firstItemOrFluidInput":  FirstItemOrFluidInput,
	"firstItemOrFluidOutput": FirstItemOrFluidOutput,
}

// SpecialHandlers maps catalog names to special handlers.
var SpecialHandlers = map[string]SpecialHandler{
	"allFake": AllFake,
}

func firstKey(stacks []ingredient.Stack) string {
	for _, s := range stacks {
		if !s.IsEmpty() {
			return s.ID.String()
		}
	}
	return ""
}

func fluidStackKey(stacks []ingredient.Stack) string {
	if k := firstKey(stacks); k != "" {
		return "fluid." + k
	}
	return ""
}
