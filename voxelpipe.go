package voxelpipe

import (
	"context"

	"github.com/hupe1980/voxelpipe/model"
)

// Provider is one stage of a pipeline. Sources implement it directly;
// filters and the chunker wrap another Provider with the same contract,
// which keeps every stage composable.
type Provider interface {
	// Extents declares the entities this provider offers together with
	// the full ROI it can serve for each and the entity's capability
	// record (resolution, interpolation policy, channels).
	Extents(ctx context.Context) (model.Extents, error)

	// Serve realizes the requested ROI for every requested entity. It
	// fails if an entity is requested that is not offered, or outside
	// its declared extent. The returned batch tags each entity with the
	// ROI the data actually covers, which equals or contains the
	// requested ROI.
	Serve(ctx context.Context, req model.Request) (*model.Batch, error)
}
