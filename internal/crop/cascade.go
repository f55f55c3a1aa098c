package crop

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrctsi/AdaptiveStarter/internal/colorutil"
	"github.com/jrctsi/AdaptiveStarter/internal/contour"
	"github.com/jrctsi/AdaptiveStarter/internal/idgen"
)

// TargetDose pairs a target volume identifier with its prescription dose.
type TargetDose struct {
	// Target is the target volume identifier.
	Target string

	// DoseGy is the prescription dose in gray.
	DoseGy float64
}

// CascadeRequest describes a target-cascade build: one cropped planning
// volume per target, each cropped against every target with a strictly
// higher dose.
type CascadeRequest struct {
	// Targets are the (identifier, dose) pairs, processed in order.
	Targets []TargetDose

	// MarginMM is the cutter expansion margin passed to each crop.
	MarginMM float64

	// Prefix and Suffix frame the derived identifier of each cropped
	// volume.
	Prefix string
	Suffix string

	// Replace deletes and recreates an existing volume under the derived
	// identifier instead of allocating a fresh one.
	Replace bool

	// LightenFactor blends each cropped volume's color toward white:
	// 0 leaves the source color unchanged, 1 is white.
	LightenFactor float64
}

// Entry records one produced cropped volume. Read-only once produced.
type Entry struct {
	// Target is the original target identifier.
	Target string

	// Cropped is the generated cropped volume identifier.
	Cropped string

	// DoseGy is the target's prescription dose.
	DoseGy float64
}

// SkippedTarget records a target the cascade could not process.
type SkippedTarget struct {
	Target string
	Reason string
}

// CascadeResult is the outcome of a cascade build.
type CascadeResult struct {
	Entries []Entry
	Skipped []SkippedTarget
}

// BuildCascade derives the ladder of cropped target volumes used for
// dose-tiered planning: a lower-dose target's planning volume excludes the
// margin-expanded regions already claimed by every higher-dose target, so
// dose objectives on the tiers cannot conflict.
//
// A single target's failure is logged, recorded in Skipped, and does not
// abort the cascade for the remaining targets. A skipped target's
// partially created volume is deleted.
func (e *Engine) BuildCascade(ctx context.Context, col contour.Collection, req *CascadeRequest) (*CascadeResult, error) {
	if len(req.Targets) == 0 {
		return nil, fmt.Errorf("%w: no targets given", ErrInvalidArgument)
	}
	if req.MarginMM < 0 {
		return nil, fmt.Errorf("%w: margin %.2f mm is negative", ErrOutOfRange, req.MarginMM)
	}
	if req.LightenFactor < 0 || req.LightenFactor > 1 {
		return nil, fmt.Errorf("%w: lighten factor %.3f not in [0, 1]", ErrOutOfRange, req.LightenFactor)
	}
	seen := make(map[string]struct{}, len(req.Targets))
	for _, t := range req.Targets {
		key := strings.ToLower(t.Target)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate target %q", ErrInvalidArgument, t.Target)
		}
		seen[key] = struct{}{}
	}

	result := &CascadeResult{}
	for _, t := range req.Targets {
		entry, err := e.buildCascadeTarget(ctx, col, req, t)
		if err != nil {
			e.log.Error("cascade target failed, skipping", "target", t.Target, "error", err)
			result.Skipped = append(result.Skipped, SkippedTarget{Target: t.Target, Reason: err.Error()})
			continue
		}
		result.Entries = append(result.Entries, entry)
	}
	return result, nil
}

// buildCascadeTarget produces the cropped volume for one target.
func (e *Engine) buildCascadeTarget(ctx context.Context, col contour.Collection, req *CascadeRequest, t TargetDose) (Entry, error) {
	src, ok := col.FindByID(t.Target)
	if !ok {
		return Entry{}, fmt.Errorf("%w: target %q not in collection", ErrInvalidOperation, t.Target)
	}

	name, category, err := e.cascadeName(col, req, t.Target, src.Category())
	if err != nil {
		return Entry{}, err
	}

	cropped, err := col.Create(category, name)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to create cropped volume %q: %w", name, err)
	}
	// From here on a failure must remove the half-built volume.
	if err := e.fillCascadeVolume(ctx, col, req, t, src, cropped); err != nil {
		if delErr := col.Delete(cropped); delErr != nil {
			e.log.Error("failed to delete half-built cascade volume", "volume", name, "error", delErr)
		}
		return Entry{}, err
	}
	return Entry{Target: t.Target, Cropped: name, DoseGy: t.DoseGy}, nil
}

// cascadeName resolves the identifier and category for a target's cropped
// volume. The derived candidate wins unless it is already taken: with
// Replace the existing volume is deleted and its category reused,
// otherwise a fresh unique identifier is allocated.
func (e *Engine) cascadeName(col contour.Collection, req *CascadeRequest, target string, srcCategory contour.Category) (string, contour.Category, error) {
	candidate, err := idgen.Candidate(target, req.Prefix, req.Suffix, idgen.MaxDerivedLength)
	if err != nil {
		return "", "", fmt.Errorf("failed to derive identifier for %q: %w", target, err)
	}
	existing, taken := col.FindByID(candidate)
	if !taken {
		return candidate, srcCategory, nil
	}
	if req.Replace {
		category := existing.Category()
		if err := col.Delete(existing); err != nil {
			return "", "", fmt.Errorf("failed to replace existing volume %q: %w", candidate, err)
		}
		return candidate, category, nil
	}
	name, err := idgen.Derive(target, req.Prefix, req.Suffix, idgen.MaxDerivedLength, col.Has)
	if err != nil {
		return "", "", fmt.Errorf("failed to derive identifier for %q: %w", target, err)
	}
	return name, srcCategory, nil
}

// fillCascadeVolume copies the target into its cropped volume and crops it
// against every strictly higher-dose target.
func (e *Engine) fillCascadeVolume(ctx context.Context, col contour.Collection, req *CascadeRequest, t TargetDose, src, cropped contour.Volume) error {
	if src.IsFine() {
		if err := cropped.ConvertToFine(); err != nil {
			return fmt.Errorf("%w: convert %q to fine: %v", ErrGeometry, cropped.Name(), err)
		}
	}
	if err := cropped.SetShape(src.Shape()); err != nil {
		return fmt.Errorf("%w: copy shape of %q into %q: %v", ErrGeometry, t.Target, cropped.Name(), err)
	}
	lightened, err := colorutil.Lighten(src.Color(), req.LightenFactor)
	if err != nil {
		return fmt.Errorf("failed to derive color for %q: %w", cropped.Name(), err)
	}
	cropped.SetColor(lightened)
	cropped.SetComment(fmt.Sprintf("planning volume derived from %s (%.1f Gy)", t.Target, t.DoseGy))

	var cutters []string
	for _, other := range req.Targets {
		if other.DoseGy > t.DoseGy {
			cutters = append(cutters, other.Target)
		}
	}
	if len(cutters) == 0 {
		return nil
	}
	if _, err := e.Crop(ctx, col, &CropRequest{
		BaseID:    cropped.Name(),
		CutterIDs: cutters,
		MarginMM:  req.MarginMM,
	}); err != nil {
		return fmt.Errorf("failed to crop %q against higher-dose targets: %w", cropped.Name(), err)
	}
	return nil
}
