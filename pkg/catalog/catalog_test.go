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
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtnewhorizons/recipemap/pkg/backend"
	cnserrors "github.com/gtnewhorizons/recipemap/pkg/errors"
	"github.com/gtnewhorizons/recipemap/pkg/header"
	"github.com/gtnewhorizons/recipemap/pkg/ingredient"
	"github.com/gtnewhorizons/recipemap/pkg/registry"
)

const plateCatalog = `apiVersion: recipemap.gtnewhorizons.io/v1
kind: RecipeCatalog
backends:
  - key: gt@compressor
    minItemInputs: 1
recipes:
  - backend: gt@compressor
    name: iron-plate
    itemInputs: ["gregtech:dust.iron*2"]
    itemOutputs: ["gregtech:plate.iron"]
    duration: 200
    eut: 8
`

const fluidCatalog = `{
  "apiVersion": "recipemap.gtnewhorizons.io/v1",
  "kind": "RecipeCatalog",
  "backends": [{"key": "gt@mixer"}],
  "recipes": [{
    "backend": "gt@mixer",
    "fluidInputs": ["water*1000"],
    "fluidOutputs": ["steam*160"],
    "duration": 20
  }]
}`

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedFastest))
	require.NoError(t, err)
	_, err = enc.Write(data)
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		data     string
		catalogs int
		wantErr  bool
	}{
		{name: "yaml", file: "a.yaml", data: plateCatalog, catalogs: 1},
		{name: "json", file: "b.json", data: fluidCatalog, catalogs: 1},
		{name: "multi document", file: "c.yml", data: plateCatalog + "---\n" + fluidCatalog, catalogs: 2},
		{name: "no extension reads yaml", file: "catalog", data: plateCatalog, catalogs: 1},
		{name: "empty", file: "d.yaml", data: "", catalogs: 0},
		{name: "wrong kind", file: "e.yaml", data: "apiVersion: recipemap.gtnewhorizons.io/v1\nkind: Other\n", wantErr: true},
		{name: "unknown field", file: "f.yaml", data: plateCatalog + "extra: 1\n", wantErr: true},
		{name: "bad stack", file: "g.yaml", data: "apiVersion: recipemap.gtnewhorizons.io/v1\nkind: RecipeCatalog\nrecipes:\n  - backend: gt@x\n    itemInputs: [\"a b\"]\n", wantErr: true},
		{name: "bad key", file: "h.yaml", data: "apiVersion: recipemap.gtnewhorizons.io/v1\nkind: RecipeCatalog\nbackends:\n  - key: nokey\n", wantErr: true},
		{name: "malformed json", file: "i.json", data: "{", wantErr: true},
	}

	l := NewLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cats, err := l.Parse(tt.file, []byte(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, cnserrors.HasCode(err, cnserrors.ErrCodeInvalidRequest))
				return
			}
			require.NoError(t, err)
			assert.Len(t, cats, tt.catalogs)
		})
	}
}

func TestParseTypedFields(t *testing.T) {
	doc := `apiVersion: recipemap.gtnewhorizons.io/v1
kind: RecipeCatalog
unification: [{from: "ore:iron@*", to: "gregtech:dust.iron"}]
backends:
  - key: gt@macerator
    collisionCheck: false
    configCategory: macerator
    configKey: firstItemInput
    emitter: {type: tiered, tiers: [{name: LV, eutMultiplier: 1}, {name: MV, eutMultiplier: 4, durationDivisor: 2}]}
    specialHandler: allFake
    dependencies: [gt@pulverizer]
    downstreams: [gt@fake_macerator]
recipes:
  - backend: gt@macerator
    itemInputs: ["", "gregtech:ore.iron*1"]
    special: "gregtech:circuit@1"
    specialValue: 3
    enabled: false
    metadata: {lowGravity: true, coilHeat: 1800}
`
	cats, err := NewLoader().Parse("m.yaml", []byte(doc))
	require.NoError(t, err)
	require.Len(t, cats, 1)
	c := cats[0]

	require.Len(t, c.Backends, 1)
	b := c.Backends[0]
	require.NotNil(t, b.CollisionCheck)
	assert.False(t, *b.CollisionCheck)
	require.NotNil(t, b.Emitter)
	assert.Equal(t, EmitterTiered, b.Emitter.Type)
	require.Len(t, b.Emitter.Tiers, 2)
	assert.Equal(t, 2, b.Emitter.Tiers[1].DurationDivisor)

	require.Len(t, c.Recipes, 1)
	r := c.Recipes[0]
	assert.Equal(t, []string{"", "gregtech:ore.iron*1"}, r.ItemInputs)
	require.NotNil(t, r.SpecialValue)
	assert.Equal(t, 3, *r.SpecialValue)
	require.NotNil(t, r.Enabled)
	assert.False(t, *r.Enabled)
	require.NotNil(t, r.Metadata)
	assert.Equal(t, 1800, *r.Metadata.CoilHeat)
	assert.Nil(t, r.Metadata.Cleanroom)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "01-plate.yaml"), []byte(plateCatalog))
	writeFile(t, filepath.Join(dir, "nested", "02-mixer.json.zst"), compress(t, []byte(fluidCatalog)))
	writeFile(t, filepath.Join(dir, "README.md"), []byte("# not a catalog"))

	cat, err := NewLoader(WithConcurrency(2)).Load(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, cat.Backends, 2)
	assert.Equal(t, "gt@compressor", cat.Backends[0].Key)
	assert.Equal(t, "gt@mixer", cat.Backends[1].Key)
	assert.Len(t, cat.Recipes, 2)
	assert.Equal(t, header.KindRecipeCatalog, cat.Kind)
}

func TestLoadKeepsSourceOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "z.yaml")
	b := filepath.Join(dir, "a.json")
	writeFile(t, a, []byte(plateCatalog))
	writeFile(t, b, []byte(fluidCatalog))

	cat, err := Load(context.Background(), a, b)
	require.NoError(t, err)
	require.Len(t, cat.Backends, 2)
	assert.Equal(t, "gt@compressor", cat.Backends[0].Key)
	assert.Equal(t, "gt@mixer", cat.Backends[1].Key)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	dup := filepath.Join(dir, "dup.yaml")
	writeFile(t, dup, []byte(plateCatalog))
	big := filepath.Join(dir, "big.yaml")
	writeFile(t, big, []byte(plateCatalog))

	tests := []struct {
		name    string
		loader  *Loader
		sources []string
		code    cnserrors.ErrorCode
	}{
		{name: "no sources", loader: NewLoader(), code: cnserrors.ErrCodeInvalidRequest},
		{name: "missing file", loader: NewLoader(), sources: []string{filepath.Join(dir, "nope.yaml")}, code: cnserrors.ErrCodeNotFound},
		{name: "duplicate backend", loader: NewLoader(), sources: []string{dup, dup}, code: cnserrors.ErrCodeConflict},
		{name: "size limit", loader: NewLoader(WithMaxBytes(16)), sources: []string{big}, code: cnserrors.ErrCodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.loader.Load(context.Background(), tt.sources...)
			require.Error(t, err)
			assert.True(t, cnserrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestLoadCompressedLimit(t *testing.T) {
	_, err := NewLoader(WithMaxBytes(32)).Parse("big.yaml.zst", compress(t, []byte(plateCatalog)))
	require.Error(t, err)
	assert.True(t, cnserrors.HasCode(err, cnserrors.ErrCodeInvalidRequest))
}

func TestLoadHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalogs/plate.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(plateCatalog))
	}))
	defer srv.Close()

	cat, err := Load(context.Background(), srv.URL+"/catalogs/plate.yaml")
	require.NoError(t, err)
	assert.Len(t, cat.Recipes, 1)

	_, err = Load(context.Background(), srv.URL+"/catalogs/missing.yaml")
	require.Error(t, err)
	assert.True(t, cnserrors.HasCode(err, cnserrors.ErrCodeNotFound))
}

func TestSchemaIsJSON(t *testing.T) {
	assert.Contains(t, string(Schema()), `"RecipeCatalog"`)
	assert.NoError(t, Validate(map[string]any{
		"apiVersion": "recipemap.gtnewhorizons.io/v1",
		"kind":       "RecipeCatalog",
	}))
	assert.Error(t, Validate(map[string]any{"kind": "RecipeCatalog"}))
}

func mustParse(t *testing.T, doc string) *Catalog {
	t.Helper()
	cats, err := NewLoader().Parse("test.yaml", []byte(doc))
	require.NoError(t, err)
	require.Len(t, cats, 1)
	return cats[0]
}

func TestApplyExampleScenario(t *testing.T) {
	reg := registry.New()
	report, err := Apply(context.Background(), reg, mustParse(t, plateCatalog))
	require.NoError(t, err)

	assert.Equal(t, header.KindCatalogReport, report.Kind)
	assert.NotEmpty(t, report.Metadata["timestamp"])
	require.Len(t, report.Backends, 1)
	br := report.Backends[0]
	assert.Equal(t, "gt@compressor", br.Key)
	assert.Equal(t, 1, br.Requests)
	assert.EqualValues(t, 1, br.Accepted)
	assert.Equal(t, 0, br.Dropped)
	assert.Equal(t, 1, br.Recipes)
	assert.False(t, report.HasCollisions())
	assert.True(t, reg.Lifecycle().PostloadFinished())

	b, ok := reg.Get(registry.MustParseKey("gt@compressor"))
	require.True(t, ok)
	res := b.Find(backend.Query{Items: []ingredient.Stack{ingredient.NewItem("gregtech:dust.iron", 0, 2)}})
	require.True(t, res.Found())
	assert.Equal(t, "iron-plate", res.Recipe.Name)

	res = b.Find(backend.Query{Items: []ingredient.Stack{ingredient.NewItem("gregtech:dust.iron", 0, 1)}})
	assert.False(t, res.Found())
}

func TestApplyCollisionsAndDownstreams(t *testing.T) {
	doc := `apiVersion: recipemap.gtnewhorizons.io/v1
kind: RecipeCatalog
backends:
  - key: gt@macerator
    minItemInputs: 1
    downstreams: [gt@fake_macerator]
  - key: gt@fake_macerator
    specialHandler: allFake
recipes:
  - backend: gt@macerator
    name: first
    itemInputs: ["gregtech:ore.iron"]
    itemOutputs: ["gregtech:dust.iron*2"]
  - backend: gt@macerator
    name: second
    itemInputs: ["gregtech:ore.iron*4"]
    itemOutputs: ["gregtech:dust.iron*9"]
  - backend: gt@macerator
    name: empty
`
	reg := registry.New()
	report, err := Apply(context.Background(), reg, mustParse(t, doc), WithPostload(false))
	require.NoError(t, err)
	assert.False(t, reg.Lifecycle().PostloadFinished())

	byKey := map[string]BackendReport{}
	for _, br := range report.Backends {
		byKey[br.Key] = br
	}

	mac := byKey["gt@macerator"]
	assert.Equal(t, 3, mac.Requests)
	assert.EqualValues(t, 1, mac.Accepted)
	assert.EqualValues(t, 1, mac.Collisions)
	assert.Equal(t, 2, mac.Dropped)
	assert.Equal(t, 1, mac.Recipes)

	fake := byKey["gt@fake_macerator"]
	assert.Equal(t, 0, fake.Requests)
	assert.EqualValues(t, 1, fake.Accepted)
	assert.Equal(t, 1, fake.Recipes)

	require.Len(t, report.Collisions, 1)
	assert.Equal(t, "gt@macerator", report.Collisions[0].Backend)
	assert.Equal(t, "second", report.Collisions[0].Name)
	assert.True(t, report.HasCollisions())
}

func TestApplyUnification(t *testing.T) {
	doc := `apiVersion: recipemap.gtnewhorizons.io/v1
kind: RecipeCatalog
unification: [{from: "ore:iron@*", to: "gregtech:dust.iron"}]
backends:
  - key: gt@compressor
recipes:
  - backend: gt@compressor
    itemInputs: ["ore:iron@3*2"]
    itemOutputs: ["gregtech:plate.iron"]
`
	u := ingredient.NewUnifier()
	reg := registry.New()
	report, err := Apply(context.Background(), reg, mustParse(t, doc), WithUnifier(u))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Aliases)
	assert.Equal(t, 1, u.Len())

	b, _ := reg.Get(registry.MustParseKey("gt@compressor"))
	assert.True(t, b.ContainsItem(ingredient.Item("gregtech:dust.iron", 0)))
	assert.False(t, b.ContainsItem(ingredient.Item("ore:iron", 3)))

	res := b.Find(backend.Query{
		Items:      []ingredient.Stack{ingredient.NewItem("ore:iron", 7, 2)},
		NotUnified: true,
	})
	assert.True(t, res.Found())
}

type fixedDurations map[string]int

func (f fixedDurations) Duration(_, key string, def int) (int, error) {
	if d, ok := f[key]; ok {
		return d, nil
	}
	return def, nil
}

func TestApplyTieredEmitterAndDurations(t *testing.T) {
	doc := `apiVersion: recipemap.gtnewhorizons.io/v1
kind: RecipeCatalog
backends:
  - key: gt@assembler
    collisionCheck: false
    configCategory: assembler
    configKey: firstItemOutput
    emitter: {type: tiered, tiers: [{name: LV, eutMultiplier: 1}, {name: HV, eutMultiplier: 16, durationDivisor: 4}]}
recipes:
  - backend: gt@assembler
    name: circuit
    itemInputs: ["gregtech:plate.iron", "gregtech:wire.copper*2"]
    itemOutputs: ["gregtech:circuit"]
    duration: 400
    eut: 30
`
	reg := registry.New()
	_, err := Apply(context.Background(), reg, mustParse(t, doc),
		WithDurations(fixedDurations{"gregtech:circuit": 800}))
	require.NoError(t, err)

	b, _ := reg.Get(registry.MustParseKey("gt@assembler"))
	recipes := b.Recipes()
	require.Len(t, recipes, 2)
	byName := map[string]int{}
	for _, r := range recipes {
		byName[r.Name] = r.Duration
	}
	assert.Equal(t, 800, byName["circuit/LV"])
	assert.Equal(t, 800, byName["circuit/HV"])
}

func TestApplyPendingBackend(t *testing.T) {
	doc := `apiVersion: recipemap.gtnewhorizons.io/v1
kind: RecipeCatalog
recipes:
  - backend: mod@late
    itemInputs: ["a"]
    itemOutputs: ["b"]
`
	reg := registry.New()
	report, err := Apply(context.Background(), reg, mustParse(t, doc))
	require.NoError(t, err)
	require.Len(t, report.Backends, 1)
	assert.Equal(t, 1, report.Backends[0].Pending)
	assert.Equal(t, 0, report.Backends[0].Recipes)

	late := backend.New("mod@late")
	_, err = reg.Register(registry.MustParseKey("mod@late"), late)
	require.NoError(t, err)
	assert.Equal(t, 1, late.Len())
}

func TestApplyRejectsBeforeRegistering(t *testing.T) {
	tests := []struct {
		name string
		cat  *Catalog
		code cnserrors.ErrorCode
	}{
		{
			name: "bad stack",
			cat:  &Catalog{Backends: []BackendSpec{{Key: "gt@a"}}, Recipes: []RecipeSpec{{Backend: "gt@a", ItemInputs: []string{"x@y"}}}},
			code: cnserrors.ErrCodeInvalidRequest,
		},
		{
			name: "unknown special handler",
			cat:  &Catalog{Backends: []BackendSpec{{Key: "gt@a", SpecialHandler: "nope"}}},
			code: cnserrors.ErrCodeInvalidRequest,
		},
		{
			name: "tiered without tiers",
			cat:  &Catalog{Backends: []BackendSpec{{Key: "gt@a", Emitter: &EmitterSpec{Type: EmitterTiered}}}},
			code: cnserrors.ErrCodeInvalidRequest,
		},
		{
			name: "reserved namespace",
			cat:  &Catalog{Backends: []BackendSpec{{Key: "gregtech@a"}}},
			code: cnserrors.ErrCodeInvalidRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registry.New()
			_, err := Apply(context.Background(), reg, tt.cat)
			require.Error(t, err)
			assert.True(t, cnserrors.HasCode(err, tt.code), "got %v", err)
			assert.Zero(t, reg.Count())
		})
	}
}

func TestApplyConflictWithExistingBackend(t *testing.T) {
	reg := registry.New()
	reg.MustRegister(registry.MustParseKey("gt@compressor"), backend.New("gt@compressor"))

	_, err := Apply(context.Background(), reg, mustParse(t, plateCatalog))
	require.Error(t, err)
	assert.True(t, cnserrors.HasCode(err, cnserrors.ErrCodeConflict))
	assert.Equal(t, 1, reg.Count())
}

func TestApplyMultiblockEmitter(t *testing.T) {
	doc := `apiVersion: recipemap.gtnewhorizons.io/v1
kind: RecipeCatalog
cells:
  filled: [{cell: "gregtech:cell.water", fluid: "water*1000"}]
  empty: ["gregtech:cell.empty"]
  circuits: ["gregtech:circuit.integrated"]
backends:
  - key: gt@blast_furnace
    configCategory: blast_furnace
    configKey: firstFluidStackInput
    emitter: {type: multiblock, coilHeat: true}
recipes:
  - backend: gt@blast_furnace
    name: steel
    itemInputs: ["gregtech:dust.iron", "gregtech:cell.water*2", "gregtech:circuit.integrated@11", "gregtech:cell.empty"]
    itemOutputs: ["gregtech:ingot.steel"]
    duration: 1000
    eut: 120
    metadata: {coilHeat: 1000}
`
	reg := registry.New()
	_, err := Apply(context.Background(), reg, mustParse(t, doc),
		WithDurations(fixedDurations{"fluid.water": 500}))
	require.NoError(t, err)

	b, ok := reg.Get(registry.MustParseKey("gt@blast_furnace"))
	require.True(t, ok)
	recipes := b.Recipes()
	require.Len(t, recipes, 1)
	r := recipes[0]
	assert.Equal(t, []ingredient.Stack{ingredient.NewItem("gregtech:dust.iron", 0, 1)}, r.ItemInputs)
	assert.Equal(t, []ingredient.Stack{ingredient.NewFluid("water", 2000)}, r.FluidInputs)
	assert.Equal(t, 1000, r.SpecialValue)
	assert.Equal(t, 500, r.Duration)

	res := b.Find(backend.Query{
		Items:  []ingredient.Stack{ingredient.NewItem("gregtech:dust.iron", 0, 1)},
		Fluids: []ingredient.Stack{ingredient.NewFluid("water", 2000)},
	})
	assert.True(t, res.Found())
}

func TestApplyRejectsBadCells(t *testing.T) {
	cat := mustParse(t, plateCatalog)
	cat.Cells = &CellsSpec{Filled: []FilledCell{{Cell: "gregtech:cell.water", Fluid: "water@1"}}}
	_, err := Apply(context.Background(), registry.New(), cat)
	require.Error(t, err)
	assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))
}
