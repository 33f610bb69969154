package filter_test

import (
	"context"
	"testing"

	"github.com/hupe1980/voxelpipe/filter"
	"github.com/hupe1980/voxelpipe/geometry"
	"github.com/hupe1980/voxelpipe/model"
	"github.com/hupe1980/voxelpipe/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroOutConstSections(t *testing.T) {
	ctx := context.Background()

	// Sections along axis 0: section 1 holds the filler value 5
	// everywhere, the others vary.
	extent := geometry.NewROI(geometry.NewCoordinate(0, 0), geometry.NewCoordinate(3, 4))
	arr := model.NewArrayFromROI(extent, 0)
	for y := int64(0); y < 4; y++ {
		arr.Set(float32(y+1), 0, y)
		arr.Set(5, 1, y)
		arr.Set(float32(10+y), 2, y)
	}

	src := source.NewMemorySource()
	src.AddVolume("raw", &model.Volume{
		Data:          arr,
		ROI:           extent,
		Resolution:    geometry.NewCoordinate(1, 1),
		Interpolation: model.Linear,
	})

	stage := filter.NewZeroOutConstSections(src, "raw")

	batch, err := stage.Serve(ctx, model.Request{"raw": extent})
	require.NoError(t, err)

	got := batch.Volumes["raw"].Data
	for y := int64(0); y < 4; y++ {
		assert.Equal(t, float32(y+1), got.At(0, y))
		assert.Equal(t, float32(0), got.At(1, y), "filler section must be zeroed")
		assert.Equal(t, float32(10+y), got.At(2, y))
	}
}

func TestZeroOutConstSectionsLeavesVaryingDataAlone(t *testing.T) {
	ctx := context.Background()

	extent := geometry.NewROI(geometry.NewCoordinate(0, 0), geometry.NewCoordinate(2, 3))
	arr := model.NewArrayFromROI(extent, 0)
	for i := range arr.Data {
		arr.Data[i] = float32(i + 1)
	}

	src := source.NewMemorySource()
	src.AddVolume("raw", &model.Volume{
		Data:          arr.Clone(),
		ROI:           extent,
		Resolution:    geometry.NewCoordinate(1, 1),
	})

	stage := filter.NewZeroOutConstSections(src, "raw")

	batch, err := stage.Serve(ctx, model.Request{"raw": extent})
	require.NoError(t, err)
	assert.Equal(t, arr.Data, batch.Volumes["raw"].Data.Data)
}

func TestZeroOutConstSectionsIgnoresOtherEntities(t *testing.T) {
	ctx := context.Background()
	src := pointSource(roi1d(0, 10), 3)

	stage := filter.NewZeroOutConstSections(src, "raw")

	batch, err := stage.Serve(ctx, model.Request{"syn": roi1d(0, 10)})
	require.NoError(t, err)
	require.NotNil(t, batch.Points["syn"])
}
