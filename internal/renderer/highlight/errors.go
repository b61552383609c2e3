package highlight

import "errors"

// Errors returned when constructing a Session.
var (
	// ErrMissingAccessor indicates a required capability was not supplied.
	ErrMissingAccessor = errors.New("missing required accessor")

	// ErrInvalidConfig indicates the supplied configuration failed validation.
	ErrInvalidConfig = errors.New("invalid session configuration")
)
