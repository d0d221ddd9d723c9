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

package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gtnewhorizons/recipemap/pkg/backend"
	"github.com/gtnewhorizons/recipemap/pkg/defaults"
	cnserrors "github.com/gtnewhorizons/recipemap/pkg/errors"
	"github.com/gtnewhorizons/recipemap/pkg/ingredient"
	"github.com/gtnewhorizons/recipemap/pkg/recipe"
	"github.com/gtnewhorizons/recipemap/pkg/registry"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// Stack roles stored in recipe_stacks.role.
const (
	RoleItemInput   = "item_input"
	RoleItemOutput  = "item_output"
	RoleFluidInput  = "fluid_input"
	RoleFluidOutput = "fluid_output"
	RoleSpecial     = "special"
)

// Store is a SQLite export of registry contents.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// BackendRow is one row of the backends table.
type BackendRow struct {
	Key            string `json:"key" yaml:"key"`
	MinItemInputs  int    `json:"minItemInputs" yaml:"minItemInputs"`
	MinFluidInputs int    `json:"minFluidInputs" yaml:"minFluidInputs"`
	Recipes        int    `json:"recipes" yaml:"recipes"`
	ExportedAt     string `json:"exportedAt" yaml:"exportedAt"`
}

// Open creates or opens the database at path, applying pragmas and the
// schema. Opening an existing export is safe.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to create database directory", err, map[string]any{"path": path})
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to open database", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	slog.Debug("store opened", "path", path)
	return &Store{db: db, now: time.Now}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", defaults.StoreBusyTimeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
				"failed to apply pragma", err, map[string]any{"pragma": p})
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to read schema version", err)
	}
	if version > schemaVersion {
		return cnserrors.NewWithContext(cnserrors.ErrCodeConflict,
			"database schema is newer than this binary",
			map[string]any{"version": version, "supported": schemaVersion})
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to apply schema", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to set schema version", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// WriteRegistry replaces the stored contents with a snapshot of every
// backend in reg, in one transaction.
func (s *Store) WriteRegistry(ctx context.Context, reg *registry.Registry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to begin export", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM backends"); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to clear backends", err)
	}

	exportedAt := s.now().UTC().Format(time.RFC3339)
	total := 0
	for _, key := range reg.Keys() {
		b, ok := reg.Get(key)
		if !ok {
			continue
		}
		n, err := writeBackend(ctx, tx, key.String(), b, exportedAt)
		if err != nil {
			return err
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to commit export", err)
	}
	slog.Info("registry exported", "backends", reg.Count(), "recipes", total)
	return nil
}

func writeBackend(ctx context.Context, tx *sql.Tx, key string, b *backend.Backend, exportedAt string) (int, error) {
	props := b.Properties()
	recipes := b.Recipes()
	_, err := tx.ExecContext(ctx,
		`INSERT INTO backends (key, min_item_inputs, min_fluid_inputs, special_slot_sensitive,
			collision_check, config_category, recipe_count, exported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		key, props.MinItemInputs, props.MinFluidInputs, props.SpecialSlotSensitive,
		props.CollisionCheck, props.ConfigCategory, len(recipes), exportedAt)
	if err != nil {
		return 0, cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to insert backend", err, map[string]any{"key": key})
	}

	insRecipe, err := tx.PrepareContext(ctx,
		`INSERT INTO recipes (backend_key, id, name, duration, eut, special_value, enabled, fake, bufferable)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to prepare recipe insert", err)
	}
	defer insRecipe.Close()

	insStack, err := tx.PrepareContext(ctx,
		`INSERT INTO recipe_stacks (backend_key, recipe_id, role, slot, kind, name, meta, amount)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to prepare stack insert", err)
	}
	defer insStack.Close()

	for _, r := range recipes {
		if _, err := insRecipe.ExecContext(ctx, key, r.ID, r.Name, r.Duration, r.EUt,
			r.SpecialValue, r.Enabled, r.Fake, r.Bufferable); err != nil {
			return 0, cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
				"failed to insert recipe", err, map[string]any{"key": key, "id": r.ID})
		}
		for role, stacks := range roles(r) {
			for slot, st := range stacks {
				if st.IsEmpty() {
					continue
				}
				if _, err := insStack.ExecContext(ctx, key, r.ID, role, slot,
					st.ID.Kind.String(), st.ID.Name, st.ID.Meta, st.Amount); err != nil {
					return 0, cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
						"failed to insert stack", err, map[string]any{"key": key, "id": r.ID, "role": role})
				}
			}
		}
	}
	return len(recipes), nil
}

func roles(r *recipe.Recipe) map[string][]ingredient.Stack {
	return map[string][]ingredient.Stack{
		RoleItemInput:   r.ItemInputs,
		RoleItemOutput:  r.ItemOutputs,
		RoleFluidInput:  r.FluidInputs,
		RoleFluidOutput: r.FluidOutputs,
		RoleSpecial:     {r.SpecialItem},
	}
}

// CountRecipes returns the number of exported recipes for key.
func (s *Store) CountRecipes(ctx context.Context, key registry.Key) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM recipes WHERE backend_key = ?", key.String()).Scan(&n)
	if err != nil {
		return 0, cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to count recipes", err, map[string]any{"key": key.String()})
	}
	return n, nil
}

// Backends lists the exported backends ordered by key.
func (s *Store) Backends(ctx context.Context) ([]BackendRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, min_item_inputs, min_fluid_inputs, recipe_count, exported_at
		 FROM backends ORDER BY key`)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to list backends", err)
	}
	defer rows.Close()

	var out []BackendRow
	for rows.Next() {
		var row BackendRow
		if err := rows.Scan(&row.Key, &row.MinItemInputs, &row.MinFluidInputs, &row.Recipes, &row.ExportedAt); err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to scan backend", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to list backends", err)
	}
	return out, nil
}

// RecipesUsing returns the ids of recipes in key that take the ingredient
// named name in role.
func (s *Store) RecipesUsing(ctx context.Context, key registry.Key, role, name string) ([]uint64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT recipe_id FROM recipe_stacks
		 WHERE backend_key = ? AND role = ? AND name = ? ORDER BY recipe_id`,
		key.String(), role, name)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to query stacks", err)
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to scan stack", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
