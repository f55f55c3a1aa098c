package crop

import (
	"context"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrctsi/AdaptiveStarter/internal/contour"
	"github.com/jrctsi/AdaptiveStarter/internal/idgen"
)

func TestReconcile_FineVolumeSelfMaps(t *testing.T) {
	col := buildCollection(t, testVolume{
		name:       "PTV_70",
		resolution: contour.Fine,
		cells:      []contour.Cell{{X: 0, Y: 0, Z: 0}},
	})
	eng := testEngine()

	rec, err := eng.Reconcile(context.Background(), col, []string{"PTV_70"})
	require.NoError(t, err)

	assert.Empty(t, rec.Scratch, "fine volume should not need a scratch copy")
	require.Len(t, rec.Operands, 1)
	assert.Equal(t, "PTV_70", rec.Operands[0].Name())

	rep, ok := rec.Map.Resolve("PTV_70")
	require.True(t, ok)
	assert.Equal(t, "PTV_70", rep.Name(), "fine volume must map to itself")
	assert.Equal(t, 1, col.Len(), "collection should be unchanged")
}

func TestReconcile_CoarseVolumeGetsScratch(t *testing.T) {
	color := colorful.Color{R: 0.8, G: 0.1, B: 0.1}
	col := buildCollection(t, testVolume{
		name:  "OAR",
		cells: []contour.Cell{{X: 0, Y: 0, Z: 0}},
		color: color,
	})
	eng := testEngine()

	rec, err := eng.Reconcile(context.Background(), col, []string{"OAR"})
	require.NoError(t, err)

	require.Len(t, rec.Scratch, 1)
	scratch := rec.Scratch[0]
	assert.True(t, idgen.IsScratch(scratch.Name()))
	assert.True(t, scratch.IsFine(), "scratch must be converted to fine")
	assert.Equal(t, contour.CategoryOrgan, scratch.Category())
	assert.Equal(t, color, scratch.Color(), "scratch copies the source color")
	assert.Contains(t, scratch.Comment(), "OAR", "scratch comment names the source")
	assert.Equal(t, 8, scratch.Shape().Voxels(), "one coarse cell refines to eight fine cells")

	rep, ok := rec.Map.Resolve("OAR")
	require.True(t, ok)
	assert.Equal(t, scratch.Name(), rep.Name())

	// Source stays coarse and untouched.
	src, _ := col.FindByID("OAR")
	assert.False(t, src.IsFine())
	assert.Equal(t, 1, src.Shape().Voxels())
}

func TestReconcile_CrosswalkCoverage(t *testing.T) {
	col := buildCollection(t,
		testVolume{name: "A", cells: []contour.Cell{{X: 0, Y: 0, Z: 0}}},
		testVolume{name: "B", resolution: contour.Fine, cells: []contour.Cell{{X: 1, Y: 0, Z: 0}}},
		testVolume{name: "C", cells: []contour.Cell{{X: 2, Y: 0, Z: 0}}},
	)
	eng := testEngine()

	ids := []string{"A", "B", "C"}
	rec, err := eng.Reconcile(context.Background(), col, ids)
	require.NoError(t, err)

	assert.Equal(t, len(ids), rec.Map.Len(), "every input id maps exactly once")
	for _, id := range ids {
		rep, ok := rec.Map.Resolve(id)
		require.True(t, ok, "id %s missing from crosswalk", id)
		assert.True(t, rep.IsFine(), "representative of %s must be fine", id)
	}
	assert.Len(t, rec.Operands, len(ids))
	assert.Len(t, rec.Scratch, 2, "only coarse inputs get scratch copies")
}

func TestReconcile_ResolveIsCaseInsensitive(t *testing.T) {
	col := buildCollection(t, testVolume{
		name:       "PTV_70",
		resolution: contour.Fine,
		cells:      []contour.Cell{{X: 0, Y: 0, Z: 0}},
	})
	eng := testEngine()

	rec, err := eng.Reconcile(context.Background(), col, []string{"PTV_70"})
	require.NoError(t, err)

	for _, lookup := range []string{"ptv_70", "PTV_70", "Ptv_70"} {
		rep, ok := rec.Map.Resolve(lookup)
		require.True(t, ok, "lookup %q failed", lookup)
		assert.Equal(t, "PTV_70", rep.Name())
	}
}

func TestReconcile_InvalidInputs(t *testing.T) {
	col := buildCollection(t, testVolume{name: "A", cells: []contour.Cell{{X: 0, Y: 0, Z: 0}}})
	eng := testEngine()
	ctx := context.Background()

	t.Run("empty id list", func(t *testing.T) {
		_, err := eng.Reconcile(ctx, col, nil)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := eng.Reconcile(ctx, col, []string{"A", "Missing"})
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Equal(t, 1, col.Len(), "no scratch volume may be created before validation passes")
	})

	t.Run("duplicate ids under different casing", func(t *testing.T) {
		_, err := eng.Reconcile(ctx, col, []string{"A", "a"})
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Equal(t, 1, col.Len())
	})
}

func TestReconcile_PartialFailureDeletesScratch(t *testing.T) {
	base := buildCollection(t,
		testVolume{name: "A", cells: []contour.Cell{{X: 0, Y: 0, Z: 0}}},
		testVolume{name: "B", cells: []contour.Cell{{X: 1, Y: 0, Z: 0}}},
	)
	// Scratch conversion fails after the scratch volume is already in
	// the collection; the abort path must remove it.
	col := &convertFailCollection{Collection: base, failScratchConvert: true}
	eng := testEngine()

	before := base.Len()
	_, err := eng.Reconcile(context.Background(), col, []string{"A", "B"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeometry)
	assert.Equal(t, before, base.Len(), "partial failure must leave no scratch volumes behind")
}

func TestReconcile_CreateFailureDeletesEarlierScratch(t *testing.T) {
	base := buildCollection(t,
		testVolume{name: "A", cells: []contour.Cell{{X: 0, Y: 0, Z: 0}}},
		testVolume{name: "B", cells: []contour.Cell{{X: 1, Y: 0, Z: 0}}},
	)
	col := &failCollection{Collection: base, failCreateAt: 2}
	eng := testEngine()

	before := base.Len()
	_, err := eng.Reconcile(context.Background(), col, []string{"A", "B"})
	require.ErrorIs(t, err, errInjected)
	assert.Equal(t, before, base.Len(), "scratch created before the failure must be deleted")
}

func TestCrosswalk_DuplicateKeyRejected(t *testing.T) {
	col := buildCollection(t, testVolume{name: "A", resolution: contour.Fine, cells: []contour.Cell{{X: 0, Y: 0, Z: 0}}})
	v, _ := col.FindByID("A")

	xw := NewCrosswalk()
	require.NoError(t, xw.Add("A", v))
	err := xw.Add("a", v)
	assert.ErrorIs(t, err, ErrInvalidArgument, "keys are canonicalized, differently-cased duplicates collide")
}
