package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/gtnewhorizons/recipemap/pkg/api"
	"github.com/gtnewhorizons/recipemap/pkg/catalog"
	"github.com/gtnewhorizons/recipemap/pkg/config"
	"github.com/gtnewhorizons/recipemap/pkg/logging"
	"github.com/gtnewhorizons/recipemap/pkg/registry"
)

// recipemapd serves the catalogs listed in RECIPEMAP_CATALOGS (comma
// separated sources) with optional duration overrides from
// RECIPEMAP_RECIPE_CONFIG.
func main() {
	logging.SetDefaultStructuredLogger("recipemapd", api.Version())

	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	var sources []string
	for _, s := range strings.Split(os.Getenv("RECIPEMAP_CATALOGS"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			sources = append(sources, s)
		}
	}

	var opts []catalog.ApplyOption
	if path := os.Getenv("RECIPEMAP_RECIPE_CONFIG"); path != "" {
		rf, err := config.LoadRecipeFile(path)
		if err != nil {
			return err
		}
		opts = append(opts, catalog.WithDurations(rf))
	}

	reg := registry.New()
	if len(sources) > 0 {
		cat, err := catalog.Load(ctx, sources...)
		if err != nil {
			return err
		}
		if _, err := catalog.Apply(ctx, reg, cat, opts...); err != nil {
			return err
		}
	} else {
		reg.MarkPostloadFinished()
	}

	return api.Serve(ctx, reg)
}
