package crop

import (
	"context"
	"fmt"

	"github.com/jrctsi/AdaptiveStarter/internal/contour"
	"github.com/jrctsi/AdaptiveStarter/internal/idgen"
)

// CropRequest describes one Boolean crop: subtract the margin-expanded
// union of the cutter volumes from the base volume.
type CropRequest struct {
	// BaseID is the identifier of the volume to crop.
	BaseID string

	// CutterIDs are the identifiers of the volumes to subtract. Cutters
	// missing from the collection are skipped with a warning.
	CutterIDs []string

	// MarginMM is the outward expansion applied to each cutter before
	// subtraction. Must be >= 0.
	MarginMM float64
}

// CropResult reports what a crop actually did.
type CropResult struct {
	// BaseID is the cropped volume's identifier.
	BaseID string

	// Subtracted lists the cutters that were found and subtracted.
	Subtracted []string

	// Missing lists the cutters skipped because they were absent.
	Missing []string

	// BaseConverted reports whether the base volume was converted to
	// fine resolution during the crop.
	BaseConverted bool
}

// Algorithm steps:
//  1. Validate margin; empty cutter list is a no-op success
//  2. Resolve the base volume
//  3. Per cutter: allocate a scratch volume holding the cutter expanded by
//     the margin (skip missing cutters with a warning)
//  4. Reconcile {base} + scratch cutters to uniform fine resolution
//  5. Convert the base itself to fine so the subtraction operands match
//  6. Subtract each cutter's reconciled representative from the base,
//     in cutter order
//  7. Delete every scratch volume from steps 3-4, on success and failure
//
// The margin is applied in the scratch copy, never in place on the source
// cutter. Callers must not assume partial application on failure; the only
// guarantee on a failure path is that no scratch volume survives.
func (e *Engine) Crop(ctx context.Context, col contour.Collection, req *CropRequest) (result *CropResult, err error) {
	if req.MarginMM < 0 {
		return nil, fmt.Errorf("%w: margin %.2f mm is negative", ErrOutOfRange, req.MarginMM)
	}
	result = &CropResult{BaseID: req.BaseID}
	if len(req.CutterIDs) == 0 {
		return result, nil
	}

	base, ok := col.FindByID(req.BaseID)
	if !ok {
		return nil, fmt.Errorf("%w: base volume %q not in collection", ErrInvalidOperation, req.BaseID)
	}

	var scratch []contour.Volume
	defer func() {
		if cleanupErr := e.deleteScratch(col, scratch); cleanupErr != nil && err == nil {
			result = nil
			err = fmt.Errorf("failed to clean up scratch volumes: %w", cleanupErr)
		}
	}()

	// Margin-expanded scratch copies of the cutters. The scratch holds the
	// expanded shape so the source cutter is never modified.
	type cutterOperand struct {
		sourceID  string
		scratchID string
	}
	var operands []cutterOperand
	for _, cutterID := range req.CutterIDs {
		src, found := col.FindByID(cutterID)
		if !found {
			e.log.Warn("cutter not in collection, skipping", "cutter", cutterID, "base", req.BaseID)
			result.Missing = append(result.Missing, cutterID)
			continue
		}

		name, idErr := idgen.Random(contour.MaxNameLength, col.Has)
		if idErr != nil {
			err = fmt.Errorf("failed to allocate scratch identifier for cutter %q: %w", cutterID, idErr)
			return nil, err
		}
		sc, createErr := col.Create(contour.CategoryOrgan, name)
		if createErr != nil {
			err = fmt.Errorf("failed to create scratch volume for cutter %q: %w", cutterID, createErr)
			return nil, err
		}
		scratch = append(scratch, sc)

		if src.IsFine() {
			if convErr := sc.ConvertToFine(); convErr != nil {
				err = fmt.Errorf("%w: convert scratch %q for cutter %q to fine: %v", ErrGeometry, name, cutterID, convErr)
				return nil, err
			}
		}
		expanded, expErr := src.ExpandedBy(req.MarginMM)
		if expErr != nil {
			err = fmt.Errorf("%w: expand cutter %q by %.2f mm: %v", ErrGeometry, cutterID, req.MarginMM, expErr)
			return nil, err
		}
		if setErr := sc.SetShape(expanded); setErr != nil {
			err = fmt.Errorf("%w: set expanded shape of cutter %q on scratch %q: %v", ErrGeometry, cutterID, name, setErr)
			return nil, err
		}
		operands = append(operands, cutterOperand{sourceID: cutterID, scratchID: name})
	}
	if len(operands) == 0 {
		// Every cutter was missing.
		return result, nil
	}

	ids := make([]string, 0, len(operands)+1)
	ids = append(ids, req.BaseID)
	for _, op := range operands {
		ids = append(ids, op.scratchID)
	}
	rec, recErr := e.Reconcile(ctx, col, ids)
	if recErr != nil {
		err = fmt.Errorf("failed to reconcile resolutions for crop of %q: %w", req.BaseID, recErr)
		return nil, err
	}
	scratch = append(scratch, rec.Scratch...)

	// The reconciled operands are all fine; the base must match before
	// the subtraction.
	if anyFine(rec.Operands) && !base.IsFine() {
		if convErr := base.ConvertToFine(); convErr != nil {
			err = fmt.Errorf("%w: convert base %q to fine: %v", ErrGeometry, req.BaseID, convErr)
			return nil, err
		}
		result.BaseConverted = true
	}

	for _, op := range operands {
		rep, found := rec.Map.Resolve(op.scratchID)
		if !found {
			err = fmt.Errorf("%w: no crosswalk entry for cutter %q", ErrInvalidOperation, op.sourceID)
			return nil, err
		}
		shape, subErr := base.Subtract(rep)
		if subErr != nil {
			err = fmt.Errorf("%w: subtract cutter %q from base %q: %v", ErrGeometry, op.sourceID, req.BaseID, subErr)
			return nil, err
		}
		if setErr := base.SetShape(shape); setErr != nil {
			err = fmt.Errorf("%w: assign cropped shape to base %q: %v", ErrGeometry, req.BaseID, setErr)
			return nil, err
		}
		result.Subtracted = append(result.Subtracted, op.sourceID)
	}
	return result, nil
}

func anyFine(volumes []contour.Volume) bool {
	for _, v := range volumes {
		if v.IsFine() {
			return true
		}
	}
	return false
}
