// Package store exports registry contents to a SQLite database.
//
// The export holds three tables: backends, recipes and recipe_stacks. Each
// WriteRegistry call replaces the previous snapshot in one transaction.
package store
