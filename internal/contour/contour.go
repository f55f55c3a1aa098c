// Package contour defines the contour-collection data model the planning
// engine operates on: named volumes with an anatomical category, a display
// color, and a voxel-raster shape stored at one of two resolutions.
//
// The engine only ever talks to the Collection and Volume interfaces, which
// mirror the narrow surface exposed by the host planning application. The
// in-memory implementation in this package backs case files and tests; a
// vendor-connected implementation can be substituted without touching the
// engine.
//
// Key contracts:
//   - Volume identifiers are unique under case-insensitive comparison
//   - The Collection owns Volume lifetime; callers hold borrowed references
//   - Boolean shape operations require both operands at the same resolution
package contour

import (
	"github.com/lucasb-eyer/go-colorful"
)

// MaxNameLength is the longest volume identifier the collection accepts.
const MaxNameLength = 16

// Resolution is the raster granularity a shape is stored at.
type Resolution string

const (
	// Coarse is the default raster for newly created volumes.
	Coarse Resolution = "coarse"

	// Fine is the raster required for Boolean operations between volumes.
	Fine Resolution = "fine"
)

// SpacingMM returns the cell edge length in millimeters for the resolution.
// Fine spacing divides coarse spacing exactly, so converting a coarse shape
// to fine is a lossless subdivision.
func (r Resolution) SpacingMM() float64 {
	if r == Fine {
		return 1.25
	}
	return 2.5
}

// Valid reports whether r is one of the two known resolutions.
func (r Resolution) Valid() bool {
	return r == Coarse || r == Fine
}

// Category is the anatomical classification tag carried by a volume.
type Category string

const (
	CategoryGTV       Category = "gtv"
	CategoryCTV       Category = "ctv"
	CategoryPTV       Category = "ptv"
	CategoryOrgan     Category = "organ"
	CategoryAvoidance Category = "avoidance"
	CategoryExternal  Category = "external"
	CategorySupport   Category = "support"
	CategoryControl   Category = "control"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGTV, CategoryCTV, CategoryPTV, CategoryOrgan,
		CategoryAvoidance, CategoryExternal, CategorySupport, CategoryControl:
		return true
	}
	return false
}

// Shape is a volume's geometric payload. The engine treats shapes as opaque
// values: it obtains them from expansion and subtraction operations and
// assigns them back to volumes, never inspecting the geometry itself.
type Shape interface {
	// Resolution returns the raster the shape is stored at.
	Resolution() Resolution

	// Empty reports whether the shape contains no voxels.
	Empty() bool

	// Voxels returns the number of occupied cells.
	Voxels() int
}

// Volume is a named 3-D region owned by a Collection.
type Volume interface {
	// Name returns the volume identifier.
	Name() string

	// Category returns the anatomical classification tag.
	Category() Category

	// Color returns the display color.
	Color() colorful.Color

	// SetColor replaces the display color.
	SetColor(c colorful.Color)

	// Comment returns the free-text comment.
	Comment() string

	// SetComment replaces the free-text comment.
	SetComment(s string)

	// Resolution returns the raster the volume's shape is stored at.
	Resolution() Resolution

	// IsFine reports whether the volume is at fine resolution.
	IsFine() bool

	// ConvertToFine re-rasters the volume at fine resolution.
	// Converting an already-fine volume is a no-op.
	ConvertToFine() error

	// Shape returns the current geometric payload.
	Shape() Shape

	// SetShape replaces the geometric payload with a copy of s. The shape's
	// resolution must match the volume's current resolution.
	SetShape(s Shape) error

	// ExpandedBy returns a new shape equal to the volume's shape expanded
	// outward by marginMM millimeters. The volume itself is not modified.
	ExpandedBy(marginMM float64) (Shape, error)

	// Subtract returns a new shape equal to the volume's shape minus the
	// other volume's shape. Both volumes must be at the same resolution.
	// Neither volume is modified.
	Subtract(other Volume) (Shape, error)
}

// Collection is an unordered set of volumes scoped to one case revision.
// It is the sole owner of Volume lifetime: volumes are created and deleted
// only through the collection, and identifiers are unique under
// case-insensitive comparison.
//
// Collections are not safe for concurrent use. Callers must serialize all
// mutation sessions against one collection instance.
type Collection interface {
	// FindByID returns the volume with the given identifier, matched
	// case-insensitively.
	FindByID(name string) (Volume, bool)

	// Has reports whether a volume with the given identifier exists,
	// matched case-insensitively.
	Has(name string) bool

	// Create adds a new, empty volume at coarse resolution.
	Create(category Category, name string) (Volume, error)

	// Delete removes the volume from the collection.
	Delete(v Volume) error

	// Volumes returns the volumes in creation order.
	Volumes() []Volume

	// Len returns the number of volumes.
	Len() int
}
