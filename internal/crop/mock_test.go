package crop

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/jrctsi/AdaptiveStarter/internal/contour"
	"github.com/jrctsi/AdaptiveStarter/internal/idgen"
)

var errInjected = errors.New("injected failure")

func testEngine() *Engine {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// testVolume describes one volume of a test collection.
type testVolume struct {
	name       string
	category   contour.Category
	resolution contour.Resolution
	cells      []contour.Cell
	color      colorful.Color
}

// buildCollection creates an in-memory collection with the given volumes.
func buildCollection(t *testing.T, volumes ...testVolume) *contour.MemoryCollection {
	t.Helper()
	col := contour.NewMemoryCollection()
	for _, tv := range volumes {
		category := tv.category
		if category == "" {
			category = contour.CategoryPTV
		}
		v, err := col.Create(category, tv.name)
		if err != nil {
			t.Fatalf("failed to create %q: %v", tv.name, err)
		}
		shape := contour.NewGridShape(contour.Coarse)
		for _, c := range tv.cells {
			shape.Add(c)
		}
		if err := v.SetShape(shape); err != nil {
			t.Fatalf("failed to set shape of %q: %v", tv.name, err)
		}
		if tv.resolution == contour.Fine {
			if err := v.ConvertToFine(); err != nil {
				t.Fatalf("failed to convert %q: %v", tv.name, err)
			}
		}
		v.SetColor(tv.color)
	}
	return col
}

// cloneGrid snapshots a volume's shape for later comparison.
func cloneGrid(t *testing.T, v contour.Volume) *contour.GridShape {
	t.Helper()
	g, ok := v.Shape().(*contour.GridShape)
	if !ok {
		t.Fatalf("volume %q has a non-grid shape", v.Name())
	}
	return g.Clone()
}

// failCollection wraps a collection and fails the Nth Create call.
type failCollection struct {
	contour.Collection

	createCalls  int
	failCreateAt int // 1-based; 0 disables
}

func (f *failCollection) Create(category contour.Category, name string) (contour.Volume, error) {
	f.createCalls++
	if f.failCreateAt > 0 && f.createCalls == f.failCreateAt {
		return nil, errInjected
	}
	return f.Collection.Create(category, name)
}

// convertFailCollection wraps a collection so that named volumes (or all
// scratch volumes) fail ConvertToFine. Volumes handed out by FindByID and
// Create are wrapped.
type convertFailCollection struct {
	contour.Collection

	failConvert        map[string]bool
	failScratchConvert bool
}

func (f *convertFailCollection) wrap(v contour.Volume) contour.Volume {
	if v == nil {
		return nil
	}
	return &convertFailVolume{Volume: v, col: f}
}

func (f *convertFailCollection) FindByID(name string) (contour.Volume, bool) {
	v, ok := f.Collection.FindByID(name)
	if !ok {
		return nil, false
	}
	return f.wrap(v), true
}

func (f *convertFailCollection) Create(category contour.Category, name string) (contour.Volume, error) {
	v, err := f.Collection.Create(category, name)
	if err != nil {
		return nil, err
	}
	return f.wrap(v), nil
}

// convertFailVolume delegates to the wrapped volume except for
// ConvertToFine, which fails when the collection says so.
type convertFailVolume struct {
	contour.Volume
	col *convertFailCollection
}

func (v *convertFailVolume) ConvertToFine() error {
	if v.col.failConvert[v.Name()] {
		return errInjected
	}
	if v.col.failScratchConvert && idgen.IsScratch(v.Name()) {
		return errInjected
	}
	return v.Volume.ConvertToFine()
}
