package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicate        = errors.New("duplicate entry")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")

	// Input validation
	ErrType           = errors.New("type mismatch")
	ErrShape          = errors.New("invalid shape")
	ErrCardinality    = errors.New("invalid category code")
	ErrLengthMismatch = errors.New("sample count mismatch")

	// Decomposition
	ErrUnsupportedSources = errors.New("unsupported number of sources")
	ErrInvariant          = errors.New("internal invariant violated")
)
