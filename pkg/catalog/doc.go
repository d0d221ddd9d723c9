// Package catalog loads declarative recipe catalogs and applies them to a
// registry.
//
// A catalog is a YAML or JSON document (optionally zstd-compressed with a
// .zst suffix) validated against an embedded JSON schema:
//
//	apiVersion: recipemap.gtnewhorizons.io/v1
//	kind: RecipeCatalog
//	unification:
//	  - {from: "ore:iron@*", to: "gregtech:dust.iron"}
//	backends:
//	  - key: gt@macerator
//	    minItemInputs: 1
//	recipes:
//	  - backend: gt@macerator
//	    itemInputs: ["gregtech:ore.iron*1"]
//	    itemOutputs: ["gregtech:dust.iron*2"]
//	    duration: 100
//	    eut: 2
//
// Sources may be files, directories, http(s) URLs or cm://namespace/name
// ConfigMaps. They load concurrently and merge in the order given.
//
//	cat, err := catalog.NewLoader().Load(ctx, "catalogs/")
//	report, err := catalog.Apply(ctx, reg, cat)
package catalog
