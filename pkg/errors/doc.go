// Package errors provides structured error types for better observability
// and programmatic error handling across the recipe engine, its loaders and
// its API server.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeConflict,
//	    "backend already registered",
//	    cause,
//	    map[string]any{
//	        "key": "gt@macerator",
//	    },
//	)
//
// Callers branch on the classification with CodeOf or HasCode rather than
// matching message text.
package errors
