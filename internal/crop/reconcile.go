package crop

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrctsi/AdaptiveStarter/internal/contour"
	"github.com/jrctsi/AdaptiveStarter/internal/idgen"
)

// Reconciled is the output of a reconciliation: the operands to use in
// place of the inputs, the scratch volumes created along the way, and the
// original-to-representative crosswalk.
type Reconciled struct {
	// Operands holds the representative for each input identifier, in
	// input order. Every operand is at fine resolution.
	Operands []contour.Volume

	// Scratch holds the scratch volumes created for coarse inputs. The
	// caller owns their cleanup.
	Scratch []contour.Volume

	// Map is the crosswalk from input identifier to representative.
	Map *Crosswalk
}

// Algorithm steps:
//  1. Validate inputs: no duplicates, every id present in the collection
//  2. Fine volumes map to themselves
//  3. Coarse volumes get a scratch fine-resolution copy (shape, color,
//     provenance comment) allocated under a random scratch identifier
//  4. On any failure, delete the scratch volumes created so far and abort
//
// The geometry kernel's Boolean and margin operations require both
// operands at matching fine resolution; forcing the conversion up front
// keeps the substitution explicit and auditable in the crosswalk instead
// of failing deep inside a subtraction.
func (e *Engine) Reconcile(ctx context.Context, col contour.Collection, ids []string) (*Reconciled, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no volume identifiers given", ErrInvalidArgument)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		key := strings.ToLower(id)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate volume identifier %q", ErrInvalidArgument, id)
		}
		seen[key] = struct{}{}
		if !col.Has(id) {
			return nil, fmt.Errorf("%w: volume %q not in collection", ErrInvalidArgument, id)
		}
	}

	rec := &Reconciled{Map: NewCrosswalk()}
	for _, id := range ids {
		src, _ := col.FindByID(id)
		if src.IsFine() {
			if err := rec.Map.Add(id, src); err != nil {
				return nil, e.abortReconcile(col, rec, err)
			}
			rec.Operands = append(rec.Operands, src)
			continue
		}

		scratch, err := e.newScratchCopy(col, src)
		if err != nil {
			return nil, e.abortReconcile(col, rec, err)
		}
		rec.Scratch = append(rec.Scratch, scratch)
		if err := scratch.ConvertToFine(); err != nil {
			return nil, e.abortReconcile(col, rec,
				fmt.Errorf("%w: convert scratch %q for %q to fine: %v", ErrGeometry, scratch.Name(), src.Name(), err))
		}
		if err := rec.Map.Add(id, scratch); err != nil {
			return nil, e.abortReconcile(col, rec, err)
		}
		rec.Operands = append(rec.Operands, scratch)
		e.log.Debug("created scratch volume", "source", src.Name(), "scratch", scratch.Name())
	}
	return rec, nil
}

// newScratchCopy allocates a scratch volume carrying a copy of the
// source's shape and color, tagged with a provenance comment.
func (e *Engine) newScratchCopy(col contour.Collection, src contour.Volume) (contour.Volume, error) {
	name, err := idgen.Random(contour.MaxNameLength, col.Has)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate scratch identifier for %q: %w", src.Name(), err)
	}
	scratch, err := col.Create(contour.CategoryOrgan, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch volume %q for %q: %w", name, src.Name(), err)
	}
	if err := scratch.SetShape(src.Shape()); err != nil {
		// The half-created scratch is already registered in the
		// collection; the caller's abort path removes it.
		_ = col.Delete(scratch)
		return nil, fmt.Errorf("%w: copy shape of %q into scratch %q: %v", ErrGeometry, src.Name(), name, err)
	}
	scratch.SetColor(src.Color())
	scratch.SetComment(fmt.Sprintf("temporary fine-resolution copy of %s", src.Name()))
	return scratch, nil
}

// abortReconcile removes the scratch volumes created so far and returns
// the causing error. No orphaned scratch volumes survive a partial
// failure.
func (e *Engine) abortReconcile(col contour.Collection, rec *Reconciled, cause error) error {
	_ = e.deleteScratch(col, rec.Scratch)
	return cause
}
