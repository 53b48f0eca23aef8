package catalog

import "errors"

// Sentinel errors for catalog operations
var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicate       = errors.New("duplicate entry")
	ErrInvalidMaterial = errors.New("invalid material")
	ErrInvalidCategory = errors.New("invalid category")
	ErrReadOnly        = errors.New("catalog source is read-only")
)
