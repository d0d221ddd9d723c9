/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/gtnewhorizons/recipemap/pkg/catalog"
	"github.com/gtnewhorizons/recipemap/pkg/config"
	"github.com/gtnewhorizons/recipemap/pkg/registry"
)

// loaded is a registry built from the --catalog sources.
type loaded struct {
	reg       *registry.Registry
	report    *catalog.Report
	durations *config.RecipeFile
}

// loadRegistry loads every --catalog source and applies the merged catalog
// to a fresh registry. Apply errors are returned alongside the partial
// result so callers can still print the report.
func loadRegistry(ctx context.Context, cmd *cli.Command) (*loaded, error) {
	sources := cmd.StringSlice("catalog")

	var durations *config.RecipeFile
	if path := cmd.String("recipe-config"); path != "" {
		rf, err := config.LoadRecipeFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load recipe config %q: %w", path, err)
		}
		durations = rf
	}

	slog.Info("loading catalogs", "sources", sources)
	cat, err := catalog.Load(ctx, sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogs: %w", err)
	}

	opts := []catalog.ApplyOption{catalog.WithVersion(version)}
	if durations != nil {
		opts = append(opts, catalog.WithDurations(durations))
	}

	reg := registry.New()
	report, err := catalog.Apply(ctx, reg, cat, opts...)
	out := &loaded{reg: reg, report: report, durations: durations}
	if report == nil {
		return nil, fmt.Errorf("failed to apply catalogs: %w", err)
	}

	slog.Debug("catalogs applied",
		"backends", len(report.Backends),
		"aliases", report.Aliases,
		"collisions", len(report.Collisions),
		"errors", len(report.Errors))

	if err != nil {
		return out, fmt.Errorf("catalog contains invalid recipes: %w", err)
	}
	return out, nil
}
