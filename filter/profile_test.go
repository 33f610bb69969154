package filter_test

import (
	"context"
	"testing"

	"github.com/hupe1980/voxelpipe"
	"github.com/hupe1980/voxelpipe/filter"
	"github.com/hupe1980/voxelpipe/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRecordsServes(t *testing.T) {
	ctx := context.Background()
	src := pointSource(roi1d(0, 30), 5)
	metrics := &voxelpipe.BasicMetricsCollector{}

	stage := filter.NewProfile(src, "train-pipeline", filter.WithMetrics(metrics))

	batch, err := stage.Serve(ctx, model.Request{"syn": roi1d(0, 10)})
	require.NoError(t, err)

	assert.Equal(t, int64(1), metrics.ServeCount.Load())
	assert.Equal(t, int64(0), metrics.ServeErrors.Load())

	// The stage contributes its own wall time to the batch timings.
	_, ok := batch.Timings["train-pipeline"]
	assert.True(t, ok)
	_, ok = batch.Timings["memory-source"]
	assert.True(t, ok)
}

func TestProfileRecordsFailures(t *testing.T) {
	ctx := context.Background()
	src := pointSource(roi1d(0, 30), 5)
	metrics := &voxelpipe.BasicMetricsCollector{}

	stage := filter.NewProfile(src, "train-pipeline", filter.WithMetrics(metrics))

	_, err := stage.Serve(ctx, model.Request{"unknown": roi1d(0, 10)})
	require.Error(t, err)

	assert.Equal(t, int64(1), metrics.ServeCount.Load())
	assert.Equal(t, int64(1), metrics.ServeErrors.Load())
}

func TestProfileExtentsPassThrough(t *testing.T) {
	ctx := context.Background()
	src := pointSource(roi1d(0, 30), 5)

	stage := filter.NewProfile(src, "train-pipeline")

	extents, err := stage.Extents(ctx)
	require.NoError(t, err)
	assert.Contains(t, extents, model.EntityID("syn"))
}
