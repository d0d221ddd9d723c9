// Package backend implements the recipe storage and search engine behind a
// single recipe category.
//
// A Backend owns the recipes registered to it together with two lookup
// indexes: one keyed by item input identifier (wildcard inputs under their
// wildcard key) and one keyed by fluid input identifier. Searches check the
// item index first, in the order the caller presented its items, and fall
// back to the fluid index only for backends that accept fluid-only recipes.
//
// # Registration
//
//	b := backend.New("macerator", backend.WithMinItemInputs(1))
//	accepted, err := b.Add(recipe.NewBuilder().
//	    ItemInputs(ingredient.NewItem("gregtech:ore.iron", 0, 1)).
//	    ItemOutputs(ingredient.NewItem("gregtech:dust.iron", 0, 2)).
//	    Duration(100).EUt(2))
//
// Registration never fails for malformed or colliding requests; those are
// dropped and reported through logs, the collision handler and Stats. The
// only error is a registration racing a declared dependent backend.
//
// # Search
//
//	res := b.Find(backend.Query{Items: items, Fluids: fluids})
//	if res.Found() {
//	    ...
//	}
//
// Searches take a read lock and may run concurrently with each other.
// Callers that repeat similar searches keep a MatchCache and use FindCached
// to skip the index scan while the remembered recipe still matches.
package backend
