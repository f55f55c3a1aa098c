package crop

import (
	"fmt"
	"strings"

	"github.com/jrctsi/AdaptiveStarter/internal/contour"
)

// Crosswalk maps an original volume identifier to the fine-resolution
// representative actually used in an operation: the volume itself when it
// was already fine, otherwise its scratch substitute. Keys are
// canonicalized to lower case at insertion, so differently-cased lookups
// of the same identifier cannot diverge. Built fresh per operation, never
// persisted.
type Crosswalk struct {
	entries map[string]contour.Volume
}

// NewCrosswalk returns an empty crosswalk.
func NewCrosswalk() *Crosswalk {
	return &Crosswalk{entries: make(map[string]contour.Volume)}
}

// Add records the representative for an original identifier. Recording the
// same identifier twice (under any casing) is an error: each input maps
// exactly once.
func (c *Crosswalk) Add(id string, rep contour.Volume) error {
	key := strings.ToLower(id)
	if _, ok := c.entries[key]; ok {
		return fmt.Errorf("%w: duplicate crosswalk key %q", ErrInvalidArgument, id)
	}
	c.entries[key] = rep
	return nil
}

// Resolve returns the representative for an original identifier, matched
// case-insensitively.
func (c *Crosswalk) Resolve(id string) (contour.Volume, bool) {
	rep, ok := c.entries[strings.ToLower(id)]
	return rep, ok
}

// Len returns the number of mapped identifiers.
func (c *Crosswalk) Len() int {
	return len(c.entries)
}
