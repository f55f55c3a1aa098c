package crop

import "errors"

var (
	// ErrInvalidArgument indicates empty, duplicate, or missing inputs,
	// checked eagerly before any mutation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidOperation indicates a referenced volume is absent or an
	// operation's precondition is unmet.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrOutOfRange indicates a numeric input outside its valid range.
	ErrOutOfRange = errors.New("out of range")

	// ErrGeometry indicates the geometry kernel rejected an expansion,
	// subtraction, or conversion. Always wrapped with the volume and
	// step that failed.
	ErrGeometry = errors.New("geometry operation failed")
)
