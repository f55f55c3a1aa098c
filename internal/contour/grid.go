package contour

import (
	"fmt"
	"math"
)

// Cell addresses one raster cell. Coordinates are grid indices at the
// shape's resolution, so the same physical point has different Cell
// coordinates at coarse and fine spacing.
type Cell struct {
	X, Y, Z int
}

// GridShape is the voxel-grid shape payload: the set of occupied cells at
// one resolution. The zero value is not usable; construct with NewGridShape.
type GridShape struct {
	resolution Resolution
	cells      map[Cell]struct{}
}

// NewGridShape returns an empty shape at the given resolution.
func NewGridShape(r Resolution) *GridShape {
	return &GridShape{
		resolution: r,
		cells:      make(map[Cell]struct{}),
	}
}

// Resolution returns the raster the shape is stored at.
func (s *GridShape) Resolution() Resolution {
	return s.resolution
}

// Empty reports whether the shape contains no occupied cells.
func (s *GridShape) Empty() bool {
	return len(s.cells) == 0
}

// Voxels returns the number of occupied cells.
func (s *GridShape) Voxels() int {
	return len(s.cells)
}

// VolumeCC returns the occupied volume in cubic centimeters.
func (s *GridShape) VolumeCC() float64 {
	spacing := s.resolution.SpacingMM()
	return float64(len(s.cells)) * spacing * spacing * spacing / 1000.0
}

// Add marks a cell as occupied.
func (s *GridShape) Add(c Cell) {
	s.cells[c] = struct{}{}
}

// Contains reports whether a cell is occupied.
func (s *GridShape) Contains(c Cell) bool {
	_, ok := s.cells[c]
	return ok
}

// Clone returns an independent copy of the shape.
func (s *GridShape) Clone() *GridShape {
	out := NewGridShape(s.resolution)
	for c := range s.cells {
		out.cells[c] = struct{}{}
	}
	return out
}

// Equal reports whether two shapes occupy the same cells at the same
// resolution.
func (s *GridShape) Equal(other *GridShape) bool {
	if s.resolution != other.resolution || len(s.cells) != len(other.cells) {
		return false
	}
	for c := range s.cells {
		if _, ok := other.cells[c]; !ok {
			return false
		}
	}
	return true
}

// Refine converts a coarse shape to fine resolution. Fine spacing divides
// coarse spacing exactly (ratio 2), so each coarse cell subdivides into
// eight fine cells and no geometry is lost. Refining an already-fine shape
// returns a plain copy.
func (s *GridShape) Refine() *GridShape {
	if s.resolution == Fine {
		return s.Clone()
	}
	out := NewGridShape(Fine)
	for c := range s.cells {
		for dx := 0; dx < 2; dx++ {
			for dy := 0; dy < 2; dy++ {
				for dz := 0; dz < 2; dz++ {
					out.cells[Cell{2*c.X + dx, 2*c.Y + dy, 2*c.Z + dz}] = struct{}{}
				}
			}
		}
	}
	return out
}

// Dilate returns a new shape expanded outward by marginMM millimeters,
// measured between cell centers (Euclidean ball). A zero margin returns a
// plain copy. The receiver is not modified.
func (s *GridShape) Dilate(marginMM float64) (*GridShape, error) {
	if marginMM < 0 {
		return nil, fmt.Errorf("%w: %.2f mm", ErrNegativeMargin, marginMM)
	}
	out := s.Clone()
	if marginMM == 0 || len(s.cells) == 0 {
		return out, nil
	}

	spacing := s.resolution.SpacingMM()
	radius := marginMM / spacing
	reach := int(math.Floor(radius))
	r2 := radius * radius

	offsets := make([]Cell, 0, (2*reach+1)*(2*reach+1)*(2*reach+1))
	for dx := -reach; dx <= reach; dx++ {
		for dy := -reach; dy <= reach; dy++ {
			for dz := -reach; dz <= reach; dz++ {
				if float64(dx*dx+dy*dy+dz*dz) <= r2 {
					offsets = append(offsets, Cell{dx, dy, dz})
				}
			}
		}
	}

	for c := range s.cells {
		for _, d := range offsets {
			out.cells[Cell{c.X + d.X, c.Y + d.Y, c.Z + d.Z}] = struct{}{}
		}
	}
	return out, nil
}

// Subtract returns a new shape equal to s minus other. Both shapes must be
// stored at the same resolution; this is the exact precondition the
// resolution reconciler exists to guarantee. Neither operand is modified.
func (s *GridShape) Subtract(other *GridShape) (*GridShape, error) {
	if s.resolution != other.resolution {
		return nil, fmt.Errorf("%w: %s vs %s", ErrResolutionMismatch, s.resolution, other.resolution)
	}
	out := NewGridShape(s.resolution)
	for c := range s.cells {
		if _, ok := other.cells[c]; !ok {
			out.cells[c] = struct{}{}
		}
	}
	return out, nil
}

// Union returns a new shape equal to s plus other, under the same
// resolution constraint as Subtract.
func (s *GridShape) Union(other *GridShape) (*GridShape, error) {
	if s.resolution != other.resolution {
		return nil, fmt.Errorf("%w: %s vs %s", ErrResolutionMismatch, s.resolution, other.resolution)
	}
	out := s.Clone()
	for c := range other.cells {
		out.cells[c] = struct{}{}
	}
	return out, nil
}

// asGrid narrows an opaque Shape back to the grid implementation.
func asGrid(s Shape) (*GridShape, error) {
	g, ok := s.(*GridShape)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrForeignShape, s)
	}
	return g, nil
}
