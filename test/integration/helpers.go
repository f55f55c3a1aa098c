package integration

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrctsi/AdaptiveStarter/internal/casefile"
	"github.com/jrctsi/AdaptiveStarter/internal/contour"
	"github.com/jrctsi/AdaptiveStarter/internal/crop"
)

// sampleCase is the fixture the end-to-end tests run against: a two-tier
// target pair around the origin plus one organ at risk offset on x.
const sampleCase = `case: head-and-neck demo
structures:
  - name: PTV_70
    category: ptv
    color: "#cc3333"
    resolution: fine
    solids:
      - sphere:
          center: [0, 0, 0]
          radius: 10
  - name: PTV_60
    category: ptv
    color: "#dd8833"
    resolution: coarse
    solids:
      - sphere:
          center: [0, 0, 0]
          radius: 20
  - name: OAR_Cord
    category: organ
    color: "#3366cc"
    resolution: fine
    solids:
      - sphere:
          center: [30, 0, 0]
          radius: 8
`

// writeSampleCase writes the fixture case file into a temp dir and returns
// its path.
func writeSampleCase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "case.yaml")
	if err := os.WriteFile(path, []byte(sampleCase), 0644); err != nil {
		t.Fatalf("failed to write case file: %v", err)
	}
	return path
}

// loadSampleCase loads the fixture and builds its collection.
func loadSampleCase(t *testing.T, path string) (*casefile.Case, *contour.MemoryCollection) {
	t.Helper()
	c, err := casefile.Load(path)
	if err != nil {
		t.Fatalf("failed to load case file: %v", err)
	}
	col, err := c.Collection()
	if err != nil {
		t.Fatalf("failed to build collection: %v", err)
	}
	return c, col
}

// newEngine builds a crop engine with logging discarded.
func newEngine() *crop.Engine {
	return crop.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// gridOf asserts the volume's shape is grid-backed and returns it.
func gridOf(t *testing.T, v contour.Volume) *contour.GridShape {
	t.Helper()
	g, ok := v.Shape().(*contour.GridShape)
	if !ok {
		t.Fatalf("volume %s has non-grid shape %T", v.Name(), v.Shape())
	}
	return g
}
