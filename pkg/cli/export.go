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

	"github.com/gtnewhorizons/recipemap/pkg/store"
)

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:                  "export",
		EnableShellCompletion: true,
		Usage:                 "Export the registry built from catalogs to a SQLite database",
		Description: `Load catalogs and write every registered backend and recipe to SQLite.

An existing database is replaced with the new snapshot.

# Examples

  recipectl export -c catalogs/ --db recipes.db`,
		Flags: []cli.Flag{
			catalogFlag(),
			recipeConfigFlag(""),
			&cli.StringFlag{
				Name:  "db",
				Value: "recipemap.db",
				Usage: "Path of the SQLite database to write",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			l, err := loadRegistry(ctx, cmd)
			if err != nil {
				return err
			}

			path := cmd.String("db")
			s, err := store.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open store %q: %w", path, err)
			}
			defer func() {
				if err := s.Close(); err != nil {
					slog.Warn("failed to close store", "error", err)
				}
			}()

			if err := s.WriteRegistry(ctx, l.reg); err != nil {
				return fmt.Errorf("failed to export registry: %w", err)
			}

			rows, err := s.Backends(ctx)
			if err != nil {
				return err
			}
			total := 0
			for _, r := range rows {
				total += r.Recipes
			}
			slog.Info("registry exported", "path", path, "backends", len(rows), "recipes", total)
			return nil
		},
	}
}
