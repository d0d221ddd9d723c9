/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/gtnewhorizons/recipemap/pkg/api"
	"github.com/gtnewhorizons/recipemap/pkg/recipe"
	"github.com/gtnewhorizons/recipemap/pkg/registry"
)

// findResult is the printed outcome of a search.
type findResult struct {
	Backend string         `json:"backend" yaml:"backend"`
	Found   bool           `json:"found" yaml:"found"`
	Recipe  *recipe.Recipe `json:"recipe,omitempty" yaml:"recipe,omitempty"`
}

func findCmd() *cli.Command {
	return &cli.Command{
		Name:                  "find",
		EnableShellCompletion: true,
		Usage:                 "Find the recipe a set of inputs can run",
		Description: `Run a single search against one backend.

Stacks use catalog notation: name[@meta|@*][*amount] for items and
name[*amount] for fluids.

# Examples

  recipectl find -c catalogs/ -b gt@macerator --item gregtech:ore.iron*4
  recipectl find -c catalogs/ -b gt@mixer --item dust.copper*3 --fluid water*1000 -t json`,
		Flags: []cli.Flag{
			catalogFlag(),
			recipeConfigFlag(""),
			&cli.StringFlag{
				Name:     "backend",
				Aliases:  []string{"b"},
				Required: true,
				Usage:    "Backend key (namespace@id)",
			},
			&cli.StringSliceFlag{
				Name:  "item",
				Usage: "Available item stack, may be repeated",
			},
			&cli.StringSliceFlag{
				Name:  "fluid",
				Usage: "Available fluid stack, may be repeated",
			},
			&cli.StringFlag{
				Name:  "special",
				Usage: "Special slot item",
			},
			&cli.BoolFlag{
				Name:  "ignore-stack-sizes",
				Usage: "Match ingredient identity only",
			},
			&cli.BoolFlag{
				Name:  "not-unified",
				Usage: "Inputs are not yet unified",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			req := api.FindRequest{
				Backend:          cmd.String("backend"),
				Items:            cmd.StringSlice("item"),
				Fluids:           cmd.StringSlice("fluid"),
				Special:          cmd.String("special"),
				IgnoreStackSizes: cmd.Bool("ignore-stack-sizes"),
				NotUnified:       cmd.Bool("not-unified"),
			}
			key, err := registry.ParseKey(req.Backend)
			if err != nil {
				return err
			}
			q, err := req.Query()
			if err != nil {
				return fmt.Errorf("invalid search inputs: %w", err)
			}

			l, err := loadRegistry(ctx, cmd)
			if err != nil {
				return err
			}
			b, ok := l.reg.Get(key)
			if !ok {
				return fmt.Errorf("backend %s is not registered", key)
			}

			res := b.Find(q)
			return writeOutput(ctx, cmd, outFormat, findResult{
				Backend: key.String(),
				Found:   res.Found(),
				Recipe:  res.Recipe,
			})
		},
	}
}
