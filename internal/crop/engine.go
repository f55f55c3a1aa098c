// Package crop implements the volumetric-contour cropping engine: scratch
// volume allocation, coarse/fine resolution reconciliation, margin-expanded
// Boolean subtraction, and the target-cascade workflow built on top.
//
// The engine mutates a single shared contour collection with no internal
// locking; every operation runs to completion before the next begins, and
// callers serialize all mutation sessions against one collection instance.
// The central correctness property is zero scratch-volume leakage: every
// scratch volume an operation creates is deleted before the operation
// returns, on success and on every failure path.
//
// Key components:
//   - Reconcile: converts coarse operands to temporary fine copies and
//     records the original-to-substitute crosswalk
//   - Crop: margin-expands cutters and subtracts their union from a base
//   - BuildCascade: derives a ladder of cropped targets for dose-tiered
//     planning
package crop

import (
	"log/slog"

	"github.com/jrctsi/AdaptiveStarter/internal/contour"
)

// Engine runs cropping operations against contour collections.
// It holds no collection state of its own; every method receives the
// collection it operates on and holds only borrowed volume references for
// the duration of the call.
type Engine struct {
	log *slog.Logger
}

// New creates an Engine logging through the given logger. A nil logger
// falls back to slog.Default().
func New(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{log: log}
}

// deleteScratch removes the given scratch volumes from the collection.
// Deletion faults are logged and the first one is returned; callers on a
// failure path ignore it so the original error wins.
func (e *Engine) deleteScratch(col contour.Collection, scratch []contour.Volume) error {
	var firstErr error
	for _, v := range scratch {
		if err := col.Delete(v); err != nil {
			e.log.Error("failed to delete scratch volume", "volume", v.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		e.log.Debug("deleted scratch volume", "volume", v.Name())
	}
	return firstErr
}
