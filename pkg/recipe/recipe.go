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
	"cmp"
	"encoding/json"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gtnewhorizons/recipemap/pkg/ingredient"
)

// Recipe maps a pattern of input ingredients to outputs plus cost metadata.
// Once accepted by a backend a recipe must be treated as read-only; the
// slices may be shared with other recipes derived from the same template.
type Recipe struct {
	// ID is assigned by the backend that accepted the recipe.
	ID   uint64 `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	ItemInputs   []ingredient.Stack `json:"itemInputs,omitempty" yaml:"itemInputs,omitempty"`
	ItemOutputs  []ingredient.Stack `json:"itemOutputs,omitempty" yaml:"itemOutputs,omitempty"`
	FluidInputs  []ingredient.Stack `json:"fluidInputs,omitempty" yaml:"fluidInputs,omitempty"`
	FluidOutputs []ingredient.Stack `json:"fluidOutputs,omitempty" yaml:"fluidOutputs,omitempty"`
	SpecialItem  ingredient.Stack   `json:"specialItem,omitzero" yaml:"specialItem,omitempty"`

	Duration     int `json:"duration" yaml:"duration"`
	EUt          int `json:"eut" yaml:"eut"`
	SpecialValue int `json:"specialValue" yaml:"specialValue"`

	Enabled    bool `json:"enabled" yaml:"enabled"`
	Fake       bool `json:"fake" yaml:"fake"`
	Bufferable bool `json:"bufferable" yaml:"bufferable"`
}

// UnmarshalJSON decodes a recipe and marks its fluid stacks as fluids, since
// the text form of an id does not carry its kind.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type plain Recipe
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}
	r.markFluids()
	return nil
}

// UnmarshalYAML is the YAML counterpart of UnmarshalJSON.
func (r *Recipe) UnmarshalYAML(node *yaml.Node) error {
	type plain Recipe
	if err := node.Decode((*plain)(r)); err != nil {
		return err
	}
	r.markFluids()
	return nil
}

func (r *Recipe) markFluids() {
	for _, stacks := range [][]ingredient.Stack{r.FluidInputs, r.FluidOutputs} {
		for i := range stacks {
			if !stacks[i].ID.IsZero() {
				stacks[i].ID.Kind = ingredient.KindFluid
			}
		}
	}
}

// ShallowCopy copies the scalar fields and shares the stack slices.
func (r *Recipe) ShallowCopy() *Recipe {
	c := *r
	return &c
}

// MatchesInputs reports whether the presented stacks satisfy every declared
// input of the recipe. Presented stacks may include unrelated extras.
// Required amounts are summed per ingredient. Each requirement consumes
// amounts from the matching presented stacks, exact metadata before
// wildcards, so one presented stack never satisfies two requirements. With
// ignoreStackSizes only presence is checked. An input declared with amount 0
// still has to be present.
func (r *Recipe) MatchesInputs(items, fluids []ingredient.Stack, ignoreStackSizes bool) bool {
	return matchStacks(r.FluidInputs, fluids, ignoreStackSizes) &&
		matchStacks(r.ItemInputs, items, ignoreStackSizes)
}

// SpecialMatches reports whether the presented special slot fits the recipe:
// both empty, or both holding the same ingredient.
func (r *Recipe) SpecialMatches(special ingredient.Stack) bool {
	return ingredient.EqualOrEmpty(r.SpecialItem, special)
}

// InputNames renders the recipe inputs for diagnostics: fluid names first,
// then item names, joined with "+".
func (r *Recipe) InputNames() string {
	names := make([]string, 0, len(r.FluidInputs)+len(r.ItemInputs))
	for _, f := range r.FluidInputs {
		if !f.IsEmpty() {
			names = append(names, ingredient.DisplayName(f))
		}
	}
	for _, it := range r.ItemInputs {
		if !it.IsEmpty() {
			names = append(names, ingredient.DisplayName(it))
		}
	}
	return strings.Join(names, "+")
}

type requirement struct {
	id     ingredient.ID
	amount int64
}

func matchStacks(required, presented []ingredient.Stack, ignoreStackSizes bool) bool {
	var buf [8]requirement
	needs := buf[:0]
next:
	for _, req := range required {
		if req.IsEmpty() {
			continue
		}
		for i := range needs {
			if needs[i].id == req.ID {
				needs[i].amount += req.Amount
				continue next
			}
		}
		needs = append(needs, requirement{id: req.ID, amount: req.Amount})
	}
	if len(needs) == 0 {
		return true
	}

	// Exact requirements consume presented amounts before wildcard ones.
	slices.SortStableFunc(needs, func(a, b requirement) int {
		return cmp.Compare(btoi(a.id.IsWildcard()), btoi(b.id.IsWildcard()))
	})

	var left [8]int64
	remaining := left[:0]
	for _, p := range presented {
		remaining = append(remaining, p.Amount)
	}

	for _, n := range needs {
		want := n.amount
		found := false
		for i, p := range presented {
			if p.IsEmpty() || !n.id.Matches(p.ID) {
				continue
			}
			found = true
			if ignoreStackSizes {
				break
			}
			take := min(want, remaining[i])
			remaining[i] -= take
			want -= take
			if want <= 0 {
				break
			}
		}
		if !found || (!ignoreStackSizes && want > 0) {
			return false
		}
	}
	return true
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
