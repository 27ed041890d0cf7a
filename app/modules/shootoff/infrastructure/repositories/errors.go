package shootoffdb

import "errors"

// Sentinel errors for the repository layer. These are infrastructure-level
// conditions; business failures live in the application package.
var (
	// ErrNotFound indicates the requested shoot-off does not exist.
	ErrNotFound = errors.New("shoot-off not found")

	// ErrRoundNotFound indicates the requested round does not exist.
	ErrRoundNotFound = errors.New("round not found")

	// ErrNoRowsAffected indicates an UPDATE matched no rows, typically a
	// lost race against a concurrent state change.
	ErrNoRowsAffected = errors.New("no rows affected")
)
