// Package casefile loads clinical case fixtures from YAML and writes run
// reports. The host planning application is out of scope for this tool;
// case files give the CLI and the tests a concrete contour collection to
// operate on.
//
// Loading follows decode, validate, normalize: the YAML payload is decoded
// into plain structs, validated with errors naming the structure and field
// at fault, and normalized (solids rasterized onto each structure's grid)
// into a ready-to-use collection.
package casefile

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jrctsi/AdaptiveStarter/internal/colorutil"
	"github.com/jrctsi/AdaptiveStarter/internal/contour"
	"github.com/jrctsi/AdaptiveStarter/internal/fsops"
)

// Case is a parsed case file: one contour collection's worth of
// structures for a single case revision.
type Case struct {
	// UID identifies the case revision. Generated on save when empty.
	UID string `yaml:"uid,omitempty"`

	// Label is the human-readable case label.
	Label string `yaml:"case"`

	// Structures are the volumes of the case's contour collection.
	Structures []Structure `yaml:"structures"`
}

// Structure describes one volume: identity, display, raster resolution,
// and the solids rasterized into its shape.
type Structure struct {
	Name       string  `yaml:"name"`
	Category   string  `yaml:"category"`
	Color      string  `yaml:"color,omitempty"`
	Resolution string  `yaml:"resolution,omitempty"`
	Comment    string  `yaml:"comment,omitempty"`
	Solids     []Solid `yaml:"solids,omitempty"`
}

// Solid is one geometric primitive, in millimeter coordinates. Exactly one
// of the fields is set.
type Solid struct {
	Sphere *Sphere `yaml:"sphere,omitempty"`
	Box    *Box    `yaml:"box,omitempty"`
}

// Sphere is a ball centered at Center with radius RadiusMM.
type Sphere struct {
	Center   [3]float64 `yaml:"center"`
	RadiusMM float64    `yaml:"radius"`
}

// Box is an axis-aligned box spanning Min to Max.
type Box struct {
	Min [3]float64 `yaml:"min"`
	Max [3]float64 `yaml:"max"`
}

// Parse decodes and validates a case payload.
func Parse(data []byte) (*Case, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("case file is empty")
	}
	var c Case
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode case file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads and parses the case file at path.
func Load(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks the case for structural problems. Errors name the
// structure and field at fault.
func (c *Case) Validate() error {
	if strings.TrimSpace(c.Label) == "" {
		return fmt.Errorf("case: label is required")
	}
	seen := make(map[string]string, len(c.Structures))
	for i, s := range c.Structures {
		where := fmt.Sprintf("structure %d (%s)", i, s.Name)
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("structure %d: name is required", i)
		}
		key := strings.ToLower(s.Name)
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("%s: name collides with %q (identifiers compare case-insensitively)", where, prev)
		}
		seen[key] = s.Name
		if !contour.Category(s.Category).Valid() {
			return fmt.Errorf("%s: unknown category %q", where, s.Category)
		}
		if s.Resolution != "" && !contour.Resolution(s.Resolution).Valid() {
			return fmt.Errorf("%s: unknown resolution %q", where, s.Resolution)
		}
		if s.Color != "" {
			if _, err := colorutil.ParseHex(s.Color); err != nil {
				return fmt.Errorf("%s: bad color: %w", where, err)
			}
		}
		for j, solid := range s.Solids {
			if err := solid.validate(); err != nil {
				return fmt.Errorf("%s: solid %d: %w", where, j, err)
			}
		}
	}
	return nil
}

func (s Solid) validate() error {
	switch {
	case s.Sphere != nil && s.Box != nil:
		return fmt.Errorf("sphere and box are mutually exclusive")
	case s.Sphere != nil:
		if s.Sphere.RadiusMM <= 0 {
			return fmt.Errorf("sphere radius must be positive, got %.2f", s.Sphere.RadiusMM)
		}
	case s.Box != nil:
		for axis := 0; axis < 3; axis++ {
			if s.Box.Min[axis] >= s.Box.Max[axis] {
				return fmt.Errorf("box min must be below max on every axis")
			}
		}
	default:
		return fmt.Errorf("one of sphere or box is required")
	}
	return nil
}

// Save writes the case to path atomically, assigning a fresh UID when the
// case has none.
func (c *Case) Save(fs fsops.FS, path string) error {
	if c.UID == "" {
		c.UID = uuid.NewString()
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode case file: %w", err)
	}
	if err := fs.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write case file: %w", err)
	}
	return nil
}

// Collection builds the in-memory contour collection the case describes:
// each structure is created at its declared resolution with its solids
// rasterized onto the grid.
func (c *Case) Collection() (*contour.MemoryCollection, error) {
	col := contour.NewMemoryCollection()
	for _, s := range c.Structures {
		v, err := col.Create(contour.Category(s.Category), s.Name)
		if err != nil {
			return nil, fmt.Errorf("structure %q: %w", s.Name, err)
		}
		resolution := contour.Coarse
		if s.Resolution != "" {
			resolution = contour.Resolution(s.Resolution)
		}
		shape := contour.NewGridShape(resolution)
		for _, solid := range s.Solids {
			solid.rasterize(shape)
		}
		if resolution == contour.Fine {
			if err := v.ConvertToFine(); err != nil {
				return nil, fmt.Errorf("structure %q: %w", s.Name, err)
			}
		}
		if err := v.SetShape(shape); err != nil {
			return nil, fmt.Errorf("structure %q: %w", s.Name, err)
		}
		if s.Color != "" {
			color, err := colorutil.ParseHex(s.Color)
			if err != nil {
				return nil, fmt.Errorf("structure %q: %w", s.Name, err)
			}
			v.SetColor(color)
		}
		if s.Comment != "" {
			v.SetComment(s.Comment)
		}
	}
	return col, nil
}
