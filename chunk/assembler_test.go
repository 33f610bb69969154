package chunk

import (
	"context"
	"testing"

	"github.com/hupe1980/voxelpipe"
	"github.com/hupe1980/voxelpipe/geometry"
	"github.com/hupe1980/voxelpipe/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledVolume(roi geometry.ROI, value float32) *model.Volume {
	arr := model.NewArrayFromROI(roi, 0)
	arr.Fill(value)
	return &model.Volume{
		Data:          arr,
		ROI:           roi.Clone(),
		Resolution:    geometry.NewCoordinate(1),
		Interpolation: model.Linear,
	}
}

func subBatch(id model.EntityID, vol *model.Volume) *model.Batch {
	b := model.NewBatch()
	b.Volumes[id] = vol
	return b
}

func TestAssemblerOverlapPrecedence(t *testing.T) {
	// Two overlapping sub-batches with distinct fill values: whichever
	// merges last owns the overlap region.
	ctx := context.Background()
	outer := model.Request{"raw": roi1d(0, 100)}

	first := subBatch("raw", filledVolume(roi1d(0, 60), 1))
	second := subBatch("raw", filledVolume(roi1d(40, 100-40), 2))

	asm := newAssembler(outer, voxelpipe.NoopLogger())
	require.NoError(t, asm.merge(ctx, first))
	require.NoError(t, asm.merge(ctx, second))

	batch, err := asm.finish()
	require.NoError(t, err)

	out := batch.Volumes["raw"].Data
	assert.Equal(t, float32(1), out.At(39))
	assert.Equal(t, float32(2), out.At(40), "overlap must carry the later merge's value")
	assert.Equal(t, float32(2), out.At(59))
	assert.Equal(t, float32(2), out.At(60))

	// Reversed merge order flips ownership of the overlap.
	asm = newAssembler(outer, voxelpipe.NoopLogger())
	require.NoError(t, asm.merge(ctx, subBatch("raw", filledVolume(roi1d(40, 60), 2))))
	require.NoError(t, asm.merge(ctx, subBatch("raw", filledVolume(roi1d(0, 60), 1))))

	batch, err = asm.finish()
	require.NoError(t, err)
	assert.Equal(t, float32(1), batch.Volumes["raw"].Data.At(59))
	assert.Equal(t, float32(2), batch.Volumes["raw"].Data.At(60))
}

func TestAssemblerDisjointChunksConcatenate(t *testing.T) {
	// Non-overlapping sub-batches that exactly tile the request merge
	// without any overwrite.
	ctx := context.Background()
	outer := model.Request{"raw": roi1d(0, 90)}

	asm := newAssembler(outer, voxelpipe.NoopLogger())
	for i, value := range []float32{3, 5, 7} {
		sub := subBatch("raw", filledVolume(roi1d(int64(i)*30, 30), value))
		require.NoError(t, asm.merge(ctx, sub))
	}

	batch, err := asm.finish()
	require.NoError(t, err)

	out := batch.Volumes["raw"].Data
	for x := int64(0); x < 90; x++ {
		want := []float32{3, 5, 7}[x/30]
		require.Equal(t, want, out.At(x), "element %d", x)
	}
}

func TestAssemblerSkipsNonOverlappingSubBatch(t *testing.T) {
	ctx := context.Background()
	outer := model.Request{"raw": roi1d(0, 50)}

	asm := newAssembler(outer, voxelpipe.NoopLogger())
	require.NoError(t, asm.merge(ctx, subBatch("raw", filledVolume(roi1d(0, 50), 1))))
	// Entirely outside the request: skipped, not an error.
	require.NoError(t, asm.merge(ctx, subBatch("raw", filledVolume(roi1d(100, 50), 9))))

	batch, err := asm.finish()
	require.NoError(t, err)
	for x := int64(0); x < 50; x++ {
		require.Equal(t, float32(1), batch.Volumes["raw"].Data.At(x))
	}
}

func TestAssemblerDropsUnrequestedEntity(t *testing.T) {
	ctx := context.Background()
	outer := model.Request{"raw": roi1d(0, 50)}

	asm := newAssembler(outer, voxelpipe.NoopLogger())
	require.NoError(t, asm.merge(ctx, subBatch("raw", filledVolume(roi1d(0, 50), 1))))
	require.NoError(t, asm.merge(ctx, subBatch("rogue", filledVolume(roi1d(0, 50), 9))))

	batch, err := asm.finish()
	require.NoError(t, err)
	assert.Contains(t, batch.Volumes, model.EntityID("raw"))
	assert.NotContains(t, batch.Volumes, model.EntityID("rogue"))
}

func TestAssemblerMissingOutputIsFatal(t *testing.T) {
	ctx := context.Background()
	outer := model.Request{
		"raw":    roi1d(0, 50),
		"labels": roi1d(0, 50),
	}

	asm := newAssembler(outer, voxelpipe.NoopLogger())
	require.NoError(t, asm.merge(ctx, subBatch("raw", filledVolume(roi1d(0, 50), 1))))

	_, err := asm.finish()
	var missing *ErrMissingOutput
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, model.EntityID("labels"), missing.Entity)
}

func TestAssemblerDeduplicatesPoints(t *testing.T) {
	ctx := context.Background()
	outer := model.Request{"syn": roi1d(0, 100)}

	mkPoints := func(roi geometry.ROI, locs ...int64) *model.Batch {
		pts := &model.Points{ROI: roi, Resolution: geometry.NewCoordinate(1)}
		for _, l := range locs {
			pts.Locations = append(pts.Locations, geometry.NewCoordinate(l))
		}
		b := model.NewBatch()
		b.Points["syn"] = pts
		return b
	}

	asm := newAssembler(outer, voxelpipe.NoopLogger())
	require.NoError(t, asm.merge(ctx, mkPoints(roi1d(0, 60), 10, 45)))
	// Overlapping chunk reports location 45 again, plus one outside the request.
	require.NoError(t, asm.merge(ctx, mkPoints(roi1d(40, 60), 45, 80, 105)))

	batch, err := asm.finish()
	require.NoError(t, err)

	var got []int64
	for _, loc := range batch.Points["syn"].Locations {
		got = append(got, loc[0])
	}
	assert.ElementsMatch(t, []int64{10, 45, 80}, got)
}
