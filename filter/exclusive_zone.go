package filter

import (
	"context"
	"fmt"

	"github.com/hupe1980/voxelpipe"
	"github.com/hupe1980/voxelpipe/geometry"
	"github.com/hupe1980/voxelpipe/model"
)

// ExclusiveZone derives a mask entity from a binary-map entity: the
// mask reads 0 within the configured Chebyshev radius around any ON
// voxel of the binary map and 1 everywhere else. Training losses use
// it to blank out the uncertain border around marked objects.
type ExclusiveZone struct {
	upstream voxelpipe.Provider
	binary   model.EntityID
	output   model.EntityID
	opts     options
}

// NewExclusiveZone creates the stage. binary names the upstream
// binary-map entity, output the derived mask entity.
func NewExclusiveZone(upstream voxelpipe.Provider, binary, output model.EntityID, optFns ...Option) *ExclusiveZone {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ExclusiveZone{
		upstream: upstream,
		binary:   binary,
		output:   output,
		opts:     opts,
	}
}

// Extents reports the upstream extents plus the derived mask, which
// covers the same region as the binary map.
func (f *ExclusiveZone) Extents(ctx context.Context) (model.Extents, error) {
	extents, err := f.upstream.Extents(ctx)
	if err != nil {
		return nil, err
	}
	info, ok := extents[f.binary]
	if !ok {
		return nil, &voxelpipe.ErrEntityNotOffered{Entity: f.binary}
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

func (f *ExclusiveZone) Serve(ctx context.Context, req model.Request) (*model.Batch, error) {
	outROI, wantOut := req[f.output]
	if !wantOut {
		return f.upstream.Serve(ctx, req)
	}

	extents, err := f.upstream.Extents(ctx)
	if err != nil {
		return nil, err
	}
	binExtent, ok := extents[f.binary]
	if !ok {
		return nil, &voxelpipe.ErrEntityNotOffered{Entity: f.binary}
	}

	// ON voxels just outside the requested region still clear mask
	// voxels inside it, so the binary map is fetched over the grown
	// region.
	grow := uniform(outROI.Dims(), f.opts.radius)
	need := outROI.Grow(grow, grow)
	origBin, wantBin := req[f.binary]
	if wantBin {
		need = need.Union(origBin)
	}
	need, ok = need.Intersect(binExtent.ROI)
	if !ok {
		return nil, &voxelpipe.ErrOutsideExtent{Entity: f.binary, Requested: outROI, Extent: binExtent.ROI}
	}

	up := req.Clone()
	delete(up, f.output)
	up[f.binary] = need

	batch, err := f.upstream.Serve(ctx, up)
	if err != nil {
		return nil, err
	}

	bin := batch.Volumes[f.binary]
	if bin == nil {
		return nil, &missingUpstreamError{entity: f.binary}
	}

	mask := carveMask(outROI, bin, f.opts.radius)
	batch.Volumes[f.output] = &model.Volume{
		Data:          mask,
		ROI:           outROI.Clone(),
		Resolution:    bin.Resolution.Clone(),
		Interpolation: model.Nearest,
	}

	if wantBin {
		cropped, err := cropVolume(bin, origBin)
		if err != nil {
			return nil, err
		}
		batch.Volumes[f.binary] = cropped
	} else {
		delete(batch.Volumes, f.binary)
	}
	return batch, nil
}

var _ voxelpipe.Provider = (*ExclusiveZone)(nil)

// carveMask builds the ones mask over roi and clears the Chebyshev box
// around every ON voxel of the binary map.
func carveMask(roi geometry.ROI, bin *model.Volume, radius int64) *model.Array {
	mask := model.NewArrayFromROI(roi, 0)
	mask.Fill(1)

	dims := roi.Dims()
	grow := uniform(dims, radius)
	strides := mask.Strides()

	idx := geometry.Zeros(dims)
	for {
		if bin.Data.At(idx...) != 0 {
			on := bin.ROI.Offset.Add(idx)
			box := geometry.NewROI(on, uniform(dims, 1)).Grow(grow, grow)
			if common, ok := box.Intersect(roi); ok {
				clearRegion(mask, common, roi, strides)
			}
		}

		d := dims - 1
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < bin.ROI.Shape[d] {
				break
			}
			idx[d] = 0
		}
		if d < 0 {
			break
		}
	}
	return mask
}

func clearRegion(mask *model.Array, region, roi geometry.ROI, strides []int64) {
	dims := roi.Dims()
	idx := geometry.Zeros(dims)
	for {
		var lin int64
		for d := 0; d < dims; d++ {
			lin += (region.Offset[d] - roi.Offset[d] + idx[d]) * strides[d]
		}
		mask.Data[lin] = 0

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
