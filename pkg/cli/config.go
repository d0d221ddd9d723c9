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

	"github.com/gtnewhorizons/recipemap/pkg/defaults"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:                  "config",
		EnableShellCompletion: true,
		Usage:                 "Print the effective duration-override file",
		Description: `Apply catalogs against a duration-override file and print the result.

Every backend with a config category looks up each recipe's duration in the
file. Missing entries are recorded with the catalog duration, so the output
lists every overridable recipe. Use --write to save it back.

# Examples

  recipectl config -c catalogs/ --recipe-config recipes.yaml
  recipectl config -c catalogs/ --recipe-config recipes.yaml --write`,
		Flags: []cli.Flag{
			catalogFlag(),
			recipeConfigFlag(defaults.RecipeConfigFile),
			&cli.BoolFlag{
				Name:  "write",
				Usage: "Save the effective file back to --recipe-config",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			l, err := loadRegistry(ctx, cmd)
			if err != nil {
				return err
			}

			path := cmd.String("recipe-config")
			if l.durations == nil {
				return fmt.Errorf("--recipe-config is required")
			}
			slog.Info("recipe config resolved", "path", path, "added", l.durations.Added())
			if cmd.Bool("write") {
				if err := l.durations.Save(path); err != nil {
					return fmt.Errorf("failed to save recipe config: %w", err)
				}
			}
			return writeOutput(ctx, cmd, outFormat, l.durations.Snapshot())
		},
	}
}
