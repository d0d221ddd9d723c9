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
	"github.com/gtnewhorizons/recipemap/pkg/header"
	"github.com/gtnewhorizons/recipemap/pkg/recipe"
)

// Emitter types.
const (
	EmitterDefault             = "default"
	EmitterTiered              = "tiered"
	EmitterMultiblock          = "multiblock"
	EmitterMultiblockNoCircuit = "multiblockNoCircuit"
)

// Catalog is a declarative set of backends, unification aliases and
// recipes.
type Catalog struct {
	header.Header `json:",inline" yaml:",inline"`

	Unification []Alias       `json:"unification,omitempty" yaml:"unification,omitempty"`
	Cells       *CellsSpec    `json:"cells,omitempty" yaml:"cells,omitempty"`
	Backends    []BackendSpec `json:"backends,omitempty" yaml:"backends,omitempty"`
	Recipes     []RecipeSpec  `json:"recipes,omitempty" yaml:"recipes,omitempty"`
}

// Alias maps an item id onto its canonical form.
type Alias struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// CellsSpec lists the container items multiblock emitters unpack.
type CellsSpec struct {
	Filled   []FilledCell `json:"filled,omitempty" yaml:"filled,omitempty"`
	Empty    []string     `json:"empty,omitempty" yaml:"empty,omitempty"`
	Circuits []string     `json:"circuits,omitempty" yaml:"circuits,omitempty"`
}

// FilledCell maps a cell item to the fluid stack one cell holds.
type FilledCell struct {
	Cell  string `json:"cell" yaml:"cell"`
	Fluid string `json:"fluid" yaml:"fluid"`
}

// BackendSpec declares a backend and its wiring.
type BackendSpec struct {
	Key                  string       `json:"key" yaml:"key"`
	MinItemInputs        int          `json:"minItemInputs,omitempty" yaml:"minItemInputs,omitempty"`
	MinFluidInputs       int          `json:"minFluidInputs,omitempty" yaml:"minFluidInputs,omitempty"`
	SpecialSlotSensitive bool         `json:"specialSlotSensitive,omitempty" yaml:"specialSlotSensitive,omitempty"`
	CollisionCheck       *bool        `json:"collisionCheck,omitempty" yaml:"collisionCheck,omitempty"`
	ConfigCategory       string       `json:"configCategory,omitempty" yaml:"configCategory,omitempty"`
	ConfigKey            string       `json:"configKey,omitempty" yaml:"configKey,omitempty"`
	Emitter              *EmitterSpec `json:"emitter,omitempty" yaml:"emitter,omitempty"`
	SpecialHandler       string       `json:"specialHandler,omitempty" yaml:"specialHandler,omitempty"`
	Dependencies         []string     `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Downstreams          []string     `json:"downstreams,omitempty" yaml:"downstreams,omitempty"`
}

// EmitterSpec selects how a backend expands registration requests.
type EmitterSpec struct {
	Type  string        `json:"type" yaml:"type"`
	Tiers []recipe.Tier `json:"tiers,omitempty" yaml:"tiers,omitempty"`
	// CoilHeat copies the coilHeat metadata into the special value before
	// the emitter runs.
	CoilHeat bool `json:"coilHeat,omitempty" yaml:"coilHeat,omitempty"`
}

// RecipeSpec is a single registration request. Stacks use the
// "name[@meta|@*][*amount]" notation; an empty string is an empty slot.
type RecipeSpec struct {
	Backend      string        `json:"backend" yaml:"backend"`
	Name         string        `json:"name,omitempty" yaml:"name,omitempty"`
	ItemInputs   []string      `json:"itemInputs,omitempty" yaml:"itemInputs,omitempty"`
	ItemOutputs  []string      `json:"itemOutputs,omitempty" yaml:"itemOutputs,omitempty"`
	FluidInputs  []string      `json:"fluidInputs,omitempty" yaml:"fluidInputs,omitempty"`
	FluidOutputs []string      `json:"fluidOutputs,omitempty" yaml:"fluidOutputs,omitempty"`
	Special      string        `json:"special,omitempty" yaml:"special,omitempty"`
	Duration     int           `json:"duration,omitempty" yaml:"duration,omitempty"`
	EUt          int           `json:"eut,omitempty" yaml:"eut,omitempty"`
	SpecialValue *int          `json:"specialValue,omitempty" yaml:"specialValue,omitempty"`
	Enabled      *bool         `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Fake         bool          `json:"fake,omitempty" yaml:"fake,omitempty"`
	Bufferable   *bool         `json:"bufferable,omitempty" yaml:"bufferable,omitempty"`
	Metadata     *MetadataSpec `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// MetadataSpec carries the typed metadata keys a catalog may set.
type MetadataSpec struct {
	LowGravity      *bool `json:"lowGravity,omitempty" yaml:"lowGravity,omitempty"`
	Cleanroom       *bool `json:"cleanroom,omitempty" yaml:"cleanroom,omitempty"`
	CoilHeat        *int  `json:"coilHeat,omitempty" yaml:"coilHeat,omitempty"`
	FusionThreshold *int  `json:"fusionThreshold,omitempty" yaml:"fusionThreshold,omitempty"`
	NaniteTier      *int  `json:"naniteTier,omitempty" yaml:"naniteTier,omitempty"`
}

// merge appends other onto c.
func (c *Catalog) merge(other *Catalog) {
	if c.APIVersion == "" {
		c.APIVersion, c.Kind = other.APIVersion, other.Kind
	}
	for k, v := range other.Metadata {
		if c.Metadata == nil {
			c.Metadata = make(map[string]string)
		}
		c.Metadata[k] = v
	}
	c.Unification = append(c.Unification, other.Unification...)
	if other.Cells != nil {
		if c.Cells == nil {
			c.Cells = &CellsSpec{}
		}
		c.Cells.Filled = append(c.Cells.Filled, other.Cells.Filled...)
		c.Cells.Empty = append(c.Cells.Empty, other.Cells.Empty...)
		c.Cells.Circuits = append(c.Cells.Circuits, other.Cells.Circuits...)
	}
	c.Backends = append(c.Backends, other.Backends...)
	c.Recipes = append(c.Recipes, other.Recipes...)
}
