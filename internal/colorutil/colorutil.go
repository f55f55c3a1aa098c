// Package colorutil provides the display-color helpers the cascade builder
// uses to derive colors for cropped volumes.
package colorutil

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrOutOfRange indicates a blend factor outside [0, 1].
var ErrOutOfRange = errors.New("factor out of range")

var white = colorful.Color{R: 1, G: 1, B: 1}

// Lighten blends c linearly toward white. A factor of 0 returns c
// unchanged; a factor of 1 returns white.
func Lighten(c colorful.Color, factor float64) (colorful.Color, error) {
	if factor < 0 || factor > 1 {
		return colorful.Color{}, fmt.Errorf("%w: %.3f not in [0, 1]", ErrOutOfRange, factor)
	}
	return c.BlendRgb(white, factor), nil
}

// ParseHex parses a "#rrggbb" display color.
func ParseHex(s string) (colorful.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("failed to parse color %q: %w", s, err)
	}
	return c, nil
}
