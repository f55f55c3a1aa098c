package contour

import "errors"

var (
	// ErrNotFound indicates a volume is not present in the collection.
	ErrNotFound = errors.New("volume not found")

	// ErrDuplicateName indicates a volume identifier is already taken
	// (identifiers compare case-insensitively).
	ErrDuplicateName = errors.New("duplicate volume name")

	// ErrInvalidName indicates a volume identifier is empty or too long.
	ErrInvalidName = errors.New("invalid volume name")

	// ErrInvalidCategory indicates an unknown anatomical category tag.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrResolutionMismatch indicates a Boolean operation was attempted
	// between shapes stored at different raster resolutions.
	ErrResolutionMismatch = errors.New("resolution mismatch")

	// ErrForeignShape indicates a Shape implementation this kernel
	// cannot operate on.
	ErrForeignShape = errors.New("foreign shape implementation")

	// ErrNegativeMargin indicates a negative margin was requested.
	ErrNegativeMargin = errors.New("negative margin")
)
