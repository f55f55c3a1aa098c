package contour

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
)

// MemoryCollection is the in-memory Collection implementation used by case
// files and tests. It enforces case-insensitive identifier uniqueness and
// owns the lifetime of every volume it creates.
//
// Not safe for concurrent use; callers serialize mutation sessions.
type MemoryCollection struct {
	byName  map[string]*memVolume // keyed by lowercased name
	ordered []*memVolume
}

// NewMemoryCollection returns an empty collection.
func NewMemoryCollection() *MemoryCollection {
	return &MemoryCollection{
		byName: make(map[string]*memVolume),
	}
}

// FindByID returns the volume with the given identifier, matched
// case-insensitively.
func (m *MemoryCollection) FindByID(name string) (Volume, bool) {
	v, ok := m.byName[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return v, true
}

// Has reports whether a volume with the given identifier exists.
func (m *MemoryCollection) Has(name string) bool {
	_, ok := m.byName[strings.ToLower(name)]
	return ok
}

// Create adds a new volume with an empty coarse shape.
func (m *MemoryCollection) Create(category Category, name string) (Volume, error) {
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	key := strings.ToLower(name)
	if _, ok := m.byName[key]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	v := &memVolume{
		name:     name,
		category: category,
		shape:    NewGridShape(Coarse),
	}
	m.byName[key] = v
	m.ordered = append(m.ordered, v)
	return v, nil
}

// Delete removes the volume from the collection, matched by identifier.
func (m *MemoryCollection) Delete(v Volume) error {
	if v == nil {
		return fmt.Errorf("%w: nil volume", ErrNotFound)
	}
	key := strings.ToLower(v.Name())
	if _, ok := m.byName[key]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, v.Name())
	}
	delete(m.byName, key)
	for i, mv := range m.ordered {
		if strings.ToLower(mv.name) == key {
			m.ordered = append(m.ordered[:i], m.ordered[i+1:]...)
			break
		}
	}
	return nil
}

// Volumes returns the volumes in creation order.
func (m *MemoryCollection) Volumes() []Volume {
	out := make([]Volume, len(m.ordered))
	for i, v := range m.ordered {
		out[i] = v
	}
	return out
}

// Len returns the number of volumes.
func (m *MemoryCollection) Len() int {
	return len(m.ordered)
}

// memVolume is the in-memory Volume implementation.
type memVolume struct {
	name     string
	category Category
	color    colorful.Color
	comment  string
	shape    *GridShape
}

func (v *memVolume) Name() string              { return v.name }
func (v *memVolume) Category() Category        { return v.category }
func (v *memVolume) Color() colorful.Color     { return v.color }
func (v *memVolume) SetColor(c colorful.Color) { v.color = c }
func (v *memVolume) Comment() string           { return v.comment }
func (v *memVolume) SetComment(s string)       { v.comment = s }

func (v *memVolume) Resolution() Resolution {
	return v.shape.Resolution()
}

func (v *memVolume) IsFine() bool {
	return v.shape.Resolution() == Fine
}

// ConvertToFine re-rasters the volume at fine resolution. No-op when the
// volume is already fine.
func (v *memVolume) ConvertToFine() error {
	if v.IsFine() {
		return nil
	}
	v.shape = v.shape.Refine()
	return nil
}

func (v *memVolume) Shape() Shape {
	return v.shape
}

// SetShape replaces the payload with an independent copy of s. The shape's
// resolution must match the volume's current resolution.
func (v *memVolume) SetShape(s Shape) error {
	g, err := asGrid(s)
	if err != nil {
		return err
	}
	if g.Resolution() != v.shape.Resolution() {
		return fmt.Errorf("%w: shape is %s, volume %q is %s",
			ErrResolutionMismatch, g.Resolution(), v.name, v.shape.Resolution())
	}
	v.shape = g.Clone()
	return nil
}

// ExpandedBy returns the volume's shape expanded outward by marginMM.
func (v *memVolume) ExpandedBy(marginMM float64) (Shape, error) {
	return v.shape.Dilate(marginMM)
}

// Subtract returns the volume's shape minus the other volume's shape.
func (v *memVolume) Subtract(other Volume) (Shape, error) {
	g, err := asGrid(other.Shape())
	if err != nil {
		return nil, err
	}
	return v.shape.Subtract(g)
}
