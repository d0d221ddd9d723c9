// Package recipe defines the rules the engine matches: Recipe, the Builder
// value object registration requests are expressed with, and the helpers
// that turn one request into concrete recipes.
//
// # Core Types
//
// Recipe: an immutable-after-registration rule
//
//	type Recipe struct {
//	    ItemInputs, FluidInputs   []ingredient.Stack // sparse, empty stacks are absent slots
//	    ItemOutputs, FluidOutputs []ingredient.Stack
//	    SpecialItem               ingredient.Stack   // catalyst, matched without quantity
//	    Duration, EUt             int
//	    SpecialValue              int                // derived once at registration
//	    Enabled, Fake, Bufferable bool
//	}
//
// Builder: a registration request with typed metadata
//
//	b := recipe.NewBuilder().
//	    ItemInputs(ingredient.NewItem("gregtech:dust.iron", 0, 2)).
//	    ItemOutputs(ingredient.NewItem("gregtech:plate.iron", 0, 1)).
//	    Duration(100).
//	    EUt(30)
//	recipe.SetMetadata(b, recipe.Cleanroom, true)
//
// # Emitters
//
// An Emitter expands one Builder into zero or more recipes. BuildOrEmpty is
// the default; PerTier derives one recipe per voltage tier from a shared
// Template.
//
// # Templates
//
// Derivatives of a Template borrow the template's stack slices and take a
// private copy of a slice on their first write to it, so deriving many
// recipes that only differ in scalars allocates nothing beyond the recipe
// headers.
package recipe
