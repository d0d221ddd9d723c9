// Package cli implements the recipectl command-line interface.
//
// # Overview
//
// recipectl loads declarative recipe catalogs into an in-memory registry of
// recipe backends and operates on the result: validating catalogs, running
// single searches, exporting registries to SQLite and serving the HTTP API.
//
// # Commands
//
// validate - Load and apply catalogs, print the registration report:
//
//	recipectl validate --catalog catalogs/ [--fail-on-collision]
//
// find - Run one search against a backend:
//
//	recipectl find -c catalogs/ --backend gt@macerator --item gregtech:ore.iron*1
//
// export - Write the registry to a SQLite database:
//
//	recipectl export -c catalogs/ --db recipes.db
//
// serve - Serve the recipe API over HTTP:
//
//	recipectl serve -c catalogs/ --port 8080
//
// config - Print the effective duration-override file:
//
//	recipectl config -c catalogs/ --recipe-config recipes.yaml [--write]
//
// # Global Flags
//
//	--log-level    Log level: debug, info, warn, error (env LOG_LEVEL)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Catalog Sources
//
// --catalog accepts files, directories, http(s) URLs and cm://namespace/name
// ConfigMap URIs, and may be repeated. Sources are merged in the order given.
//
// # Output Formats
//
// Commands that print results accept --format yaml|json|table and --output,
// which takes a file path or a cm://namespace/name URI (default: stdout).
package cli
