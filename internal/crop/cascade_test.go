package crop

import (
	"context"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrctsi/AdaptiveStarter/internal/contour"
)

// threeTierCollection builds the classic boost scenario: three nested
// targets at descending dose.
func threeTierCollection(t *testing.T) *contour.MemoryCollection {
	t.Helper()
	return buildCollection(t,
		testVolume{name: "T1", cells: []contour.Cell{{X: 0, Y: 0, Z: 0}}},
		testVolume{name: "T2", cells: []contour.Cell{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}},
		testVolume{name: "T3", cells: []contour.Cell{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 6, Y: 0, Z: 0},
		}},
	)
}

func threeTierRequest() *CascadeRequest {
	return &CascadeRequest{
		Targets: []TargetDose{
			{Target: "T1", DoseGy: 70},
			{Target: "T2", DoseGy: 60},
			{Target: "T3", DoseGy: 50},
		},
		MarginMM:      3,
		Suffix:        "_x",
		LightenFactor: 0.4,
	}
}

func TestBuildCascade_ThreeTiers(t *testing.T) {
	col := threeTierCollection(t)
	eng := testEngine()

	result, err := eng.BuildCascade(context.Background(), col, threeTierRequest())
	require.NoError(t, err)
	require.Len(t, result.Entries, 3)
	assert.Empty(t, result.Skipped)

	assert.Equal(t, Entry{Target: "T1", Cropped: "T1_x", DoseGy: 70}, result.Entries[0])
	assert.Equal(t, Entry{Target: "T2", Cropped: "T2_x", DoseGy: 60}, result.Entries[1])
	assert.Equal(t, Entry{Target: "T3", Cropped: "T3_x", DoseGy: 50}, result.Entries[2])

	// Exactly the three derivatives were added; no scratch leaked.
	assert.Equal(t, 6, col.Len())

	// Highest dose: cropped against nothing, equals the uncropped copy.
	t1, _ := col.FindByID("T1")
	t1x, _ := col.FindByID("T1_x")
	assert.True(t, cloneGrid(t, t1x).Equal(cloneGrid(t, t1)),
		"highest-dose derivative must equal the uncropped copy of its source")

	// Lowest dose: excludes the margin-expanded regions of both higher
	// tiers.
	t3x, _ := col.FindByID("T3_x")
	t3xShape := cloneGrid(t, t3x)
	for _, higher := range []string{"T1", "T2"} {
		src, _ := col.FindByID(higher)
		expanded, err := src.ExpandedBy(3)
		require.NoError(t, err)
		overlap, err := t3xShape.Subtract(expanded.(*contour.GridShape).Refine())
		require.NoError(t, err)
		assert.Equal(t, t3xShape.Voxels(), overlap.Voxels(),
			"T3 derivative must not intersect the expanded %s", higher)
	}
	// The far cell of T3 is outside every expansion and survives.
	assert.Greater(t, t3xShape.Voxels(), 0, "distant region of T3 must survive the crop")
}

func TestBuildCascade_DerivedColorIsLightened(t *testing.T) {
	col := buildCollection(t, testVolume{
		name:  "T1",
		cells: []contour.Cell{{X: 0, Y: 0, Z: 0}},
		color: colorful.Color{R: 0.5, G: 0.0, B: 0.0},
	})
	eng := testEngine()

	result, err := eng.BuildCascade(context.Background(), col, &CascadeRequest{
		Targets:       []TargetDose{{Target: "T1", DoseGy: 70}},
		Suffix:        "_x",
		LightenFactor: 0.5,
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)

	t1x, _ := col.FindByID("T1_x")
	c := t1x.Color()
	assert.InDelta(t, 0.75, c.R, 1e-9)
	assert.InDelta(t, 0.5, c.G, 1e-9)
	assert.InDelta(t, 0.5, c.B, 1e-9)
}

func TestBuildCascade_EagerValidation(t *testing.T) {
	col := threeTierCollection(t)
	eng := testEngine()
	ctx := context.Background()

	t.Run("no targets", func(t *testing.T) {
		_, err := eng.BuildCascade(ctx, col, &CascadeRequest{})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("negative margin", func(t *testing.T) {
		req := threeTierRequest()
		req.MarginMM = -3
		_, err := eng.BuildCascade(ctx, col, req)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("lighten factor out of range", func(t *testing.T) {
		req := threeTierRequest()
		req.LightenFactor = 1.5
		_, err := eng.BuildCascade(ctx, col, req)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("duplicate targets", func(t *testing.T) {
		req := threeTierRequest()
		req.Targets = append(req.Targets, TargetDose{Target: "t1", DoseGy: 40})
		_, err := eng.BuildCascade(ctx, col, req)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("validation happens before any mutation", func(t *testing.T) {
		before := col.Len()
		req := threeTierRequest()
		req.LightenFactor = -1
		_, _ = eng.BuildCascade(ctx, col, req)
		assert.Equal(t, before, col.Len())
	})
}

func TestBuildCascade_MissingTargetIsSkipped(t *testing.T) {
	col := threeTierCollection(t)
	eng := testEngine()

	req := threeTierRequest()
	req.Targets = []TargetDose{
		{Target: "T1", DoseGy: 70},
		{Target: "Ghost", DoseGy: 60},
		{Target: "T3", DoseGy: 50},
	}
	result, err := eng.BuildCascade(context.Background(), col, req)
	require.NoError(t, err, "a single target's failure must not abort the cascade")

	assert.Len(t, result.Entries, 2)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "Ghost", result.Skipped[0].Target)
	assert.True(t, col.Has("T1_x"))
	assert.True(t, col.Has("T3_x"))
}

func TestBuildCascade_ExistingNameWithoutReplace(t *testing.T) {
	col := threeTierCollection(t)
	// Occupy the derived name of T1.
	_, err := col.Create(contour.CategoryControl, "T1_x")
	require.NoError(t, err)
	eng := testEngine()

	result, buildErr := eng.BuildCascade(context.Background(), col, threeTierRequest())
	require.NoError(t, buildErr)
	require.Len(t, result.Entries, 3)

	// A fresh identifier is allocated instead: counter inserted before
	// the suffix.
	assert.Equal(t, "T101_x", result.Entries[0].Cropped)
	// The occupying volume is untouched.
	existing, _ := col.FindByID("T1_x")
	assert.Equal(t, contour.CategoryControl, existing.Category())
}

func TestBuildCascade_ExistingNameWithReplace(t *testing.T) {
	col := threeTierCollection(t)
	prior, err := col.Create(contour.CategoryControl, "T1_x")
	require.NoError(t, err)
	require.NoError(t, prior.SetShape(contour.NewGridShape(contour.Coarse)))
	eng := testEngine()

	req := threeTierRequest()
	req.Replace = true
	result, buildErr := eng.BuildCascade(context.Background(), col, req)
	require.NoError(t, buildErr)

	assert.Equal(t, "T1_x", result.Entries[0].Cropped)
	replaced, _ := col.FindByID("T1_x")
	// Category of the replaced volume is reused.
	assert.Equal(t, contour.CategoryControl, replaced.Category())
	// Shape is the fresh copy of T1, not the prior empty shape.
	t1, _ := col.FindByID("T1")
	assert.True(t, cloneGrid(t, replaced).Equal(cloneGrid(t, t1)))
}

func TestBuildCascade_FailedTargetVolumeIsRemoved(t *testing.T) {
	base := threeTierCollection(t)
	// T2's derivative fails while converting for the crop; its half-built
	// volume must be deleted, and T1/T3 still succeed.
	col := &convertFailCollection{
		Collection:  base,
		failConvert: map[string]bool{"T2_x": true},
	}
	eng := testEngine()

	req := threeTierRequest()
	// Make the sources fine so the derivative conversion path runs.
	for _, name := range []string{"T1", "T2", "T3"} {
		v, _ := base.FindByID(name)
		require.NoError(t, v.ConvertToFine())
	}

	result, err := eng.BuildCascade(context.Background(), col, req)
	require.NoError(t, err)

	assert.Len(t, result.Entries, 2)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "T2", result.Skipped[0].Target)
	assert.False(t, base.Has("T2_x"), "half-built derivative must be deleted")
	assert.True(t, base.Has("T1_x"))
	assert.True(t, base.Has("T3_x"))
}
