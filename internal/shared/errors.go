package shared

import "errors"

var (
	// ErrValidation indicates malformed or missing required input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a referenced record is absent.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock indicates a dispense or decrement exceeds available quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrUnauthorized indicates an authorization code mismatch.
	ErrUnauthorized = errors.New("authorization code incorrect")
	// ErrSchema indicates an import header does not match the expected schema.
	ErrSchema = errors.New("schema mismatch")
	// ErrFormat indicates a backup or import document is structurally invalid.
	ErrFormat = errors.New("invalid format")
	// ErrStorage indicates an underlying persistence failure.
	ErrStorage = errors.New("storage failure")
)
