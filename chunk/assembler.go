package chunk

import (
	"context"

	"github.com/hupe1980/voxelpipe"
	"github.com/hupe1980/voxelpipe/geometry"
	"github.com/hupe1980/voxelpipe/model"
)

// assembler merges completed sub-batches into one output batch shaped by
// the outer request. Output arrays are allocated lazily: each entity is
// materialized from the first sub-batch that provides it, inheriting its
// capability record (resolution, interpolation, leading channel axes).
//
// Sub-batches may overlap where a shrink-to-fit step produced a
// smaller-than-steady-state stride. When two sub-batches cover the same
// output element, the last merge wins. Under an unordered worker pool the
// content of overlap regions therefore depends on completion order; the
// single-worker path merges in submission order and is fully
// deterministic.
type assembler struct {
	outer  model.Request
	batch  *model.Batch
	logger *voxelpipe.Logger

	seenPoints map[model.EntityID]map[string]struct{}
}

func newAssembler(outer model.Request, logger *voxelpipe.Logger) *assembler {
	return &assembler{
		outer:      outer,
		batch:      model.NewBatch(),
		logger:     logger,
		seenPoints: make(map[model.EntityID]map[string]struct{}),
	}
}

// merge copies every entity of the sub-batch into the output by ROI
// intersection.
func (a *assembler) merge(ctx context.Context, sub *model.Batch) error {
	for id, vol := range sub.Volumes {
		outROI, ok := a.outer[id]
		if !ok {
			a.logger.WarnContext(ctx, "dropping sub-batch entity that was never requested",
				"entity", string(id), "roi", vol.ROI.String())
			continue
		}

		common, ok := outROI.Intersect(vol.ROI)
		if !ok {
			// Legitimate by construction: while the schedule covers the
			// tail of a larger entity, a smaller entity's chunk can lie
			// entirely outside its own request.
			a.logger.DebugContext(ctx, "sub-batch entity does not overlap the request",
				"entity", string(id), "roi", vol.ROI.String())
			continue
		}

		out := a.batch.Volumes[id]
		if out == nil {
			out = &model.Volume{
				Data:          model.NewArray(outputShape(vol, outROI)...),
				ROI:           outROI.Clone(),
				Resolution:    vol.Resolution.Clone(),
				Interpolation: vol.Interpolation,
			}
			a.batch.Volumes[id] = out
		}

		dstOffset := common.Offset.Sub(outROI.Offset)
		srcOffset := common.Offset.Sub(vol.ROI.Offset)
		if err := model.CopyRegion(out.Data, vol.Data, dstOffset, srcOffset, common.Shape); err != nil {
			return err
		}
	}

	for id, pts := range sub.Points {
		outROI, ok := a.outer[id]
		if !ok {
			a.logger.WarnContext(ctx, "dropping sub-batch entity that was never requested",
				"entity", string(id), "roi", pts.ROI.String())
			continue
		}

		out := a.batch.Points[id]
		if out == nil {
			out = &model.Points{
				ROI:        outROI.Clone(),
				Resolution: pts.Resolution.Clone(),
			}
			a.batch.Points[id] = out
			a.seenPoints[id] = make(map[string]struct{})
		}

		// Overlapping chunks report the same location twice; keep one.
		seen := a.seenPoints[id]
		for _, loc := range pts.Locations {
			if !outROI.ContainsPoint(loc) {
				continue
			}
			key := loc.String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out.Locations = append(out.Locations, loc.Clone())
		}
	}

	a.batch.Timings.Merge(sub.Timings)

	return nil
}

// finish validates that every requested entity was provided by at least
// one sub-batch and returns the assembled output. A missing entity is
// fatal: the engine never silently returns zero-filled data.
func (a *assembler) finish() (*model.Batch, error) {
	for _, id := range a.outer.Entities() {
		if _, ok := a.batch.Volumes[id]; ok {
			continue
		}
		if _, ok := a.batch.Points[id]; ok {
			continue
		}
		return nil, &ErrMissingOutput{Entity: id}
	}
	return a.batch, nil
}

// outputShape derives the output array shape for an entity: the outer
// request's ROI shape, preceded by whatever leading channel axes the
// sub-batch array carries beyond the ROI's dimensionality.
func outputShape(vol *model.Volume, outROI geometry.ROI) []int64 {
	extra := vol.Data.NDim() - outROI.Dims()
	if extra < 0 {
		extra = 0
	}
	shape := make([]int64, 0, extra+outROI.Dims())
	shape = append(shape, vol.Data.Shape[:extra]...)
	shape = append(shape, outROI.Shape...)
	return shape
}
