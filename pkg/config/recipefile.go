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

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	cnserrors "github.com/gtnewhorizons/recipemap/pkg/errors"
)

// RecipeFile holds per-recipe duration overrides.
type RecipeFile struct {
	mu         sync.Mutex
	categories map[string]map[string]int
	readOnly   bool
	added      int
}

// Option is a functional option for configuring a RecipeFile.
type Option func(*RecipeFile)

// WithReadOnly stops lookups from recording missing keys.
func WithReadOnly() Option {
	return func(f *RecipeFile) {
		f.readOnly = true
	}
}

// NewRecipeFile returns an empty file.
func NewRecipeFile(opts ...Option) *RecipeFile {
	f := &RecipeFile{categories: make(map[string]map[string]int)}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// LoadRecipeFile reads path. A missing file yields an empty RecipeFile.
func LoadRecipeFile(path string, opts ...Option) (*RecipeFile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewRecipeFile(opts...), nil
	}
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to read recipe file", err, map[string]any{"path": path})
	}
	f, err := Parse(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a YAML recipe file.
func Parse(r io.Reader, opts ...Option) (*RecipeFile, error) {
	f := NewRecipeFile(opts...)
	var raw map[string]map[string]int
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "failed to parse recipe file", err)
	}
	for category, entries := range raw {
		if category == "" {
			return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "recipe file has an empty category")
		}
		m := make(map[string]int, len(entries))
		maps.Copy(m, entries)
		f.categories[category] = m
	}
	return f, nil
}

// Duration returns the override for key in category, or def when the file
// has none. Unless read-only, a missing key is recorded with def.
func (f *RecipeFile) Duration(category, key string, def int) (int, error) {
	if category == "" || key == "" {
		return 0, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"duration lookup needs a category and a key",
			map[string]any{"category": category, "key": key})
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, ok := f.categories[category]
	if ok {
		if v, found := entries[key]; found {
			return v, nil
		}
	}
	if f.readOnly {
		return def, nil
	}
	if !ok {
		entries = make(map[string]int)
		f.categories[category] = entries
	}
	entries[key] = def
	f.added++
	return def, nil
}

// Set stores an override.
func (f *RecipeFile) Set(category, key string, duration int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, ok := f.categories[category]
	if !ok {
		entries = make(map[string]int)
		f.categories[category] = entries
	}
	entries[key] = duration
}

// Added returns how many defaults lookups have recorded.
func (f *RecipeFile) Added() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.added
}

// Snapshot returns a deep copy of the file contents.
func (f *RecipeFile) Snapshot() map[string]map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]map[string]int, len(f.categories))
	for c, entries := range f.categories {
		out[c] = maps.Clone(entries)
	}
	return out
}

// WriteTo encodes the file as YAML with sorted keys.
func (f *RecipeFile) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f.Snapshot()); err != nil {
		return 0, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to encode recipe file", err)
	}
	if err := enc.Close(); err != nil {
		return 0, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to encode recipe file", err)
	}
	return buf.WriteTo(w)
}

// Save writes the file to path atomically.
func (f *RecipeFile) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".recipes-*.yaml")
	if err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to create recipe file", err, map[string]any{"path": path})
	}
	defer os.Remove(tmp.Name())

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to write recipe file", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to replace recipe file", err, map[string]any{"path": path})
	}
	return nil
}
