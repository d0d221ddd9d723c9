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
)

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Load and apply recipe catalogs, then print the registration report",
		Description: `Validate one or more recipe catalogs.

Each source is validated against the catalog schema, merged in the order
given and applied to an empty registry. The report lists, per backend, how
many recipes were requested, accepted, dropped and rejected as duplicates.

# Examples

Validate a directory of catalogs:
  recipectl validate --catalog catalogs/

Fail when any recipe collides with an existing one (useful for CI/CD):
  recipectl validate -c base.yaml -c addon.yaml --fail-on-collision

Write the report as JSON:
  recipectl validate -c catalogs/ -t json -o report.json`,
		Flags: []cli.Flag{
			catalogFlag(),
			recipeConfigFlag(""),
			&cli.BoolFlag{
				Name:  "fail-on-collision",
				Usage: "Exit with non-zero status if any recipe collides with an existing one",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			l, loadErr := loadRegistry(ctx, cmd)
			if l == nil {
				return loadErr
			}

			if err := writeOutput(ctx, cmd, outFormat, l.report); err != nil {
				return fmt.Errorf("failed to serialize report: %w", err)
			}
			if loadErr != nil {
				return loadErr
			}

			slog.Info("validation completed",
				"backends", len(l.report.Backends),
				"collisions", len(l.report.Collisions))

			if cmd.Bool("fail-on-collision") && l.report.HasCollisions() {
				return fmt.Errorf("validation failed: %d recipe collision(s)", len(l.report.Collisions))
			}
			return nil
		},
	}
}
