/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/gtnewhorizons/recipemap/pkg/api"
	"github.com/gtnewhorizons/recipemap/pkg/defaults"
	"github.com/gtnewhorizons/recipemap/pkg/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Serve the recipe API over HTTP",
		Description: `Load catalogs and serve the registry until interrupted.

Endpoints:
  GET  /v1/backends   registered backends with recipe counts
  POST /v1/find       search one backend
  GET  /v1/contains   test whether a backend uses an item or fluid
  GET  /health, /ready, /metrics

# Examples

  recipectl serve -c catalogs/ --port 8080`,
		Flags: []cli.Flag{
			catalogFlag(),
			recipeConfigFlag(""),
			&cli.StringFlag{
				Name:  "address",
				Usage: "Listen address (default: all interfaces)",
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   defaults.ServerPort,
				Usage:   "Listen port",
				Sources: cli.EnvVars("PORT"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			l, err := loadRegistry(ctx, cmd)
			if err != nil {
				return err
			}
			return api.Serve(ctx, l.reg,
				server.WithAddress(cmd.String("address"), cmd.Int("port")))
		},
	}
}
