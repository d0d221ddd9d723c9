// Package registry keeps the process-wide set of recipe backends.
//
// Backends are registered under a Key written "namespace@id". Registration
// assigns a backend.Handle, shares the registry lifecycle with the backend
// and lets it resolve downstream and dependent backends through the
// registry. Work targeting a backend that is not registered yet can be
// queued with RegisterRecipesFor and runs, in submission order, as soon as
// the backend is registered.
//
// Usage:
//
//	reg := registry.New()
//	h, err := reg.Register(registry.MustParseKey("gt@macerator"), backend.New("macerator"))
//	reg.RegisterRecipesFor(key, func(b *backend.Backend) { ... })
//
// A package-level registry is available through Default, with Init and
// Teardown to reset it between runs and tests.
package registry
