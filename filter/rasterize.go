package filter

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/voxelpipe"
	"github.com/hupe1980/voxelpipe/geometry"
	"github.com/hupe1980/voxelpipe/model"
)

// RasterizePoints derives a binary-map volume entity from a point
// entity: voxels within the configured Chebyshev radius of a point
// location read 1, all others 0. Points just outside the requested
// region still mark voxels inside it, so the upstream point request is
// grown by the radius.
type RasterizePoints struct {
	upstream voxelpipe.Provider
	points   model.EntityID
	output   model.EntityID
	opts     options
}

// NewRasterizePoints creates the stage. points names the upstream point
// entity, output the derived binary-map entity.
func NewRasterizePoints(upstream voxelpipe.Provider, points, output model.EntityID, optFns ...Option) *RasterizePoints {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RasterizePoints{
		upstream: upstream,
		points:   points,
		output:   output,
		opts:     opts,
	}
}

// Extents reports the upstream extents plus the derived binary map,
// which covers the same region as the point entity.
func (f *RasterizePoints) Extents(ctx context.Context) (model.Extents, error) {
	extents, err := f.upstream.Extents(ctx)
	if err != nil {
		return nil, err
	}
	info, ok := extents[f.points]
	if !ok {
		return nil, &voxelpipe.ErrEntityNotOffered{Entity: f.points}
	}
	if _, exists := extents[f.output]; exists {
		return nil, fmt.Errorf("derived entity %q already offered upstream", f.output)
	}
	extents[f.output] = model.EntityInfo{
		ROI:           info.ROI.Clone(),
		Resolution:    info.Resolution.Clone(),
		Interpolation: model.Nearest,
	}
	return extents, nil
}

func (f *RasterizePoints) Serve(ctx context.Context, req model.Request) (*model.Batch, error) {
	outROI, wantOut := req[f.output]
	if !wantOut {
		return f.upstream.Serve(ctx, req)
	}

	extents, err := f.upstream.Extents(ctx)
	if err != nil {
		return nil, err
	}
	ptsExtent, ok := extents[f.points]
	if !ok {
		return nil, &voxelpipe.ErrEntityNotOffered{Entity: f.points}
	}

	// Fetch points over the grown region so near-boundary locations
	// contribute their mark.
	grow := uniform(outROI.Dims(), f.opts.radius)
	need := outROI.Grow(grow, grow)
	origPts, wantPts := req[f.points]
	if wantPts {
		need = need.Union(origPts)
	}
	need, ok = need.Intersect(ptsExtent.ROI)
	if !ok {
		return nil, &voxelpipe.ErrOutsideExtent{Entity: f.points, Requested: outROI, Extent: ptsExtent.ROI}
	}

	up := req.Clone()
	delete(up, f.output)
	up[f.points] = need

	batch, err := f.upstream.Serve(ctx, up)
	if err != nil {
		return nil, err
	}

	pts := batch.Points[f.points]
	if pts == nil {
		return nil, &missingUpstreamError{entity: f.points}
	}

	arr, marked := rasterize(outROI, pts.Locations, f.opts.radius)
	f.opts.logger.DebugContext(ctx, "rasterized points",
		"entity", string(f.output),
		"locations", len(pts.Locations),
		"marked_voxels", marked,
	)

	batch.Volumes[f.output] = &model.Volume{
		Data:          arr,
		ROI:           outROI.Clone(),
		Resolution:    pts.Resolution.Clone(),
		Interpolation: model.Nearest,
	}

	if wantPts {
		batch.Points[f.points] = cropPoints(pts, origPts)
	} else {
		delete(batch.Points, f.points)
	}
	return batch, nil
}

var _ voxelpipe.Provider = (*RasterizePoints)(nil)

// rasterize marks the Chebyshev box around each location. The bitmap
// deduplicates overlapping boxes and yields the marked-voxel count.
func rasterize(roi geometry.ROI, locs []geometry.Coordinate, radius int64) (*model.Array, uint64) {
	arr := model.NewArrayFromROI(roi, 0)
	strides := arr.Strides()
	marked := roaring64.New()

	grow := uniform(roi.Dims(), radius)
	for _, loc := range locs {
		box := geometry.NewROI(loc.Clone(), uniform(roi.Dims(), 1)).Grow(grow, grow)
		common, ok := box.Intersect(roi)
		if !ok {
			continue
		}
		markRegion(marked, common, roi, strides)
	}

	it := marked.Iterator()
	for it.HasNext() {
		arr.Data[it.Next()] = 1
	}
	return arr, marked.GetCardinality()
}

// markRegion adds the linearized indices of region (relative to roi) to
// the bitmap.
func markRegion(marked *roaring64.Bitmap, region, roi geometry.ROI, strides []int64) {
	dims := roi.Dims()
	idx := geometry.Zeros(dims)
	for {
		var lin int64
		for d := 0; d < dims; d++ {
			lin += (region.Offset[d] - roi.Offset[d] + idx[d]) * strides[d]
		}
		marked.Add(uint64(lin))

		d := dims - 1
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < region.Shape[d] {
				break
			}
			idx[d] = 0
		}
		if d < 0 {
			break
		}
	}
}
