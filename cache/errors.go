package cache

import "errors"

var (
	// ErrInvalidConfiguration is returned when the cache geometry cannot be
	// built.
	ErrInvalidConfiguration = errors.New("invalid cache configuration")

	// ErrOutOfRange is returned when a matrix coordinate falls outside the
	// matrix.
	ErrOutOfRange = errors.New("matrix coordinate out of range")
)
