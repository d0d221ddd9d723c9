// Package ingredient defines the identifiers and stacks the recipe engine
// matches on.
//
// An ID names one interchangeable resource: an item type plus metadata, or a
// fluid type. Item ids whose Meta is WildcardMeta match every metadata value
// of the same item. A Stack pairs an ID with a quantity; the zero Stack is an
// empty slot and is skipped everywhere.
//
// Ids are written as text in catalogs and on the command line:
//
//	gregtech:dust.iron        item, metadata 0
//	gregtech:circuit@3        item, metadata 3
//	minecraft:planks@*        item, any metadata
//	minecraft:planks@**4      four planks of any metadata (ParseStack)
//	water*1000                fluid stack of 1000 units (ParseStack)
//
// The Unifier maps alias ids to their canonical representative so searches
// and indexes only ever compare canonical ids.
package ingredient
