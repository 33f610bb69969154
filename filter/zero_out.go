package filter

import (
	"context"

	"github.com/hupe1980/voxelpipe"
	"github.com/hupe1980/voxelpipe/model"
)

// ZeroOutConstSections zeroes sections of an intensity volume that hold
// a single constant value along the leading spatial axis. Acquisition
// gaps show up as such sections; zeroing them keeps downstream
// normalization from skewing on filler values.
type ZeroOutConstSections struct {
	upstream voxelpipe.Provider
	entity   model.EntityID
	opts     options
}

// NewZeroOutConstSections creates the stage for the given intensity
// entity.
func NewZeroOutConstSections(upstream voxelpipe.Provider, entity model.EntityID, optFns ...Option) *ZeroOutConstSections {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ZeroOutConstSections{
		upstream: upstream,
		entity:   entity,
		opts:     opts,
	}
}

// Extents passes the upstream extents through unchanged.
func (f *ZeroOutConstSections) Extents(ctx context.Context) (model.Extents, error) {
	return f.upstream.Extents(ctx)
}

func (f *ZeroOutConstSections) Serve(ctx context.Context, req model.Request) (*model.Batch, error) {
	batch, err := f.upstream.Serve(ctx, req)
	if err != nil {
		return nil, err
	}

	vol, ok := batch.Volumes[f.entity]
	if !ok {
		return batch, nil
	}

	zeroed := zeroConstSections(vol)
	if zeroed > 0 {
		f.opts.logger.DebugContext(ctx, "zeroed constant sections",
			"entity", string(f.entity),
			"sections", zeroed,
		)
	}
	return batch, nil
}

var _ voxelpipe.Provider = (*ZeroOutConstSections)(nil)

// zeroConstSections zeroes in place every leading-spatial-axis section
// whose values are all equal, and returns how many it zeroed. Channel
// axes count toward a section, so a section is constant only if all
// channels agree.
func zeroConstSections(vol *model.Volume) int {
	arr := vol.Data
	if arr.Len() == 0 {
		return 0
	}

	lead := arr.NDim() - vol.ROI.Dims()
	axis := lead // first spatial axis in the full shape
	n := arr.Shape[axis]
	stride := arr.Strides()[axis]

	first := make([]float32, n)
	seen := make([]bool, n)
	constant := make([]bool, n)
	for i := range constant {
		constant[i] = true
	}

	for i, v := range arr.Data {
		s := (int64(i) / stride) % n
		if !seen[s] {
			seen[s] = true
			first[s] = v
		} else if v != first[s] {
			constant[s] = false
		}
	}

	zeroed := 0
	for s := int64(0); s < n; s++ {
		if !constant[s] || first[s] == 0 {
			continue
		}
		zeroed++
		for i := range arr.Data {
			if (int64(i)/stride)%n == s {
				arr.Data[i] = 0
			}
		}
	}
	return zeroed
}
