package chunk

import (
	"math"

	"github.com/hupe1980/voxelpipe"
	"github.com/hupe1980/voxelpipe/geometry"
	"github.com/hupe1980/voxelpipe/model"
)

// Template describes one canonical chunk: the ROI each entity must have
// for a single sub-request. All template ROIs are implicitly centered
// relative to each other, even though their absolute shapes differ.
type Template map[model.EntityID]geometry.ROI

// Dims returns the dimensionality shared by all template ROIs, or an
// error if the template is empty or mixes dimensionalities.
func (t Template) Dims() (int, error) {
	dims := -1
	for _, id := range t.entities() {
		roi := t[id]
		if dims < 0 {
			dims = roi.Dims()
			continue
		}
		if roi.Dims() != dims {
			return 0, voxelpipe.NewDimensionMismatch(id, dims, roi.Dims())
		}
	}
	if dims < 0 {
		return 0, ErrEmptyTemplate
	}
	return dims, nil
}

func (t Template) entities() []model.EntityID {
	return model.Request(t).Entities()
}

// Schedule is the precomputed, ordered list of sub-requests covering an
// outer request. It is built once, consumed exactly once, and immutable
// thereafter.
type Schedule struct {
	// SubRequests holds one request per scheduled chunk, in visitation
	// order. Templated entities carry the shifted template ROI;
	// non-templated entries of the outer request pass through verbatim.
	SubRequests []model.Request

	// Offsets holds the odometer offset each sub-request was derived
	// from, aligned with SubRequests.
	Offsets []geometry.Coordinate
}

// Len returns the number of scheduled sub-requests.
func (s *Schedule) Len() int {
	return len(s.SubRequests)
}

// BuildSchedule computes the full tiling schedule needed to cover the
// outer request with chunks shaped by the template.
//
// The walk advances an offset vector from the most negative shift that
// covers the earliest requested element of every entity to the shift at
// which every chunk's far edge has reached the last requested element,
// using an odometer traversal: axis 0 advances first and carries into
// higher axes on overflow. The per-axis stride is recomputed at every
// step: in steady state it is the minimal template shape; when a full
// step would overshoot the coverage boundary it shrinks so the next chunk
// lands exactly on it.
func BuildSchedule(outer model.Request, tmpl Template) (*Schedule, error) {
	dims, err := tmpl.Dims()
	if err != nil {
		return nil, err
	}

	entities := tmpl.entities()
	for _, id := range entities {
		roi, ok := outer[id]
		if !ok {
			return nil, &ErrEntityNotRequested{Entity: id}
		}
		if roi.Dims() != dims {
			return nil, voxelpipe.NewDimensionMismatch(id, dims, roi.Dims())
		}
	}

	// The smallest template shape per axis. All templates are centered,
	// so no step may exceed the tightest entity's extent.
	minStride := tmpl[entities[0]].Shape.Clone()
	for _, id := range entities[1:] {
		minStride = minStride.Min(tmpl[id].Shape)
	}
	for d, s := range minStride {
		if s <= 0 {
			for _, id := range entities {
				if tmpl[id].Shape[d] <= 0 {
					return nil, &ErrZeroTemplateShape{Entity: id, Axis: d}
				}
			}
		}
	}

	// The most negative shift so the first chunk covers the earliest
	// requested element of every entity.
	begin := outer[entities[0]].Offset.Sub(tmpl[entities[0]].Offset)
	for _, id := range entities[1:] {
		begin = begin.Min(outer[id].Offset.Sub(tmpl[id].Offset))
	}

	// The shift at which every chunk's far edge has reached the last
	// requested element.
	end := outer[entities[0]].End().Sub(tmpl[entities[0]].Shape)
	for _, id := range entities[1:] {
		end = end.Max(outer[id].End().Sub(tmpl[id].Shape))
	}
	end = end.Add(minStride)

	maxSteps := stepBound(begin, end, minStride)

	sched := &Schedule{}
	offset := begin.Clone()

	for steps := int64(0); ; steps++ {
		if steps >= maxSteps {
			return nil, &ErrCoverage{Request: outer.Clone(), Steps: maxSteps}
		}

		sub := outer.Clone()
		for _, id := range entities {
			sub[id] = tmpl[id].Shift(offset)
		}
		sched.SubRequests = append(sched.SubRequests, sub)
		sched.Offsets = append(sched.Offsets, offset.Clone())

		stride := nextStride(outer, tmpl, entities, offset, begin, end, minStride)

		terminated := false
		for d := 0; d < dims; d++ {
			offset[d] += stride[d]
			if offset[d] < end[d] {
				break
			}
			if d == dims-1 {
				terminated = true
				break
			}
			offset[d] = begin[d]
		}
		if terminated {
			break
		}
	}

	return sched, nil
}

// nextStride computes the per-axis stride for the step following offset.
// Per entity: while the chunk's far edge has not reached the request's
// far edge, the candidate is the steady-state step (never below the
// minimal stride), shrunk so the next chunk does not overshoot the
// request; once the entity is covered on that axis, the candidate jumps
// to the walk boundary. The minimum across entities keeps the step safe
// for the tightest entity.
func nextStride(outer model.Request, tmpl Template, entities []model.EntityID,
	offset, begin, end, minStride geometry.Coordinate) geometry.Coordinate {

	dims := len(offset)
	stride := make(geometry.Coordinate, dims)
	for d := range stride {
		stride[d] = math.MaxInt64
	}

	for _, id := range entities {
		req := outer[id]
		chunk := tmpl[id].Shift(offset)
		chunkBegin, chunkEnd := chunk.Offset, chunk.End()
		reqBegin, reqEnd := req.Offset, req.End()

		for d := 0; d < dims; d++ {
			var cand int64
			if chunkEnd[d] < reqEnd[d] {
				cand = max(reqBegin[d]-chunkBegin[d], minStride[d])
				if over := chunkEnd[d] + cand - reqEnd[d]; over > 0 {
					cand -= over // shrink-to-fit: land exactly on the boundary
				}
			} else {
				cand = end[d] - offset[d]
			}
			stride[d] = min(stride[d], cand)
		}
	}

	return stride
}

// stepBound returns a defensive upper bound on the number of odometer
// steps: per axis, one steady-state pass plus at most one shrink step.
func stepBound(begin, end, minStride geometry.Coordinate) int64 {
	const limit = int64(1) << 42
	total := int64(1)
	for d := range begin {
		span := end[d] - begin[d]
		if span < 0 {
			span = 0
		}
		steps := span/max(minStride[d], 1) + 2
		if total > limit/steps {
			return limit
		}
		total *= steps
	}
	return total
}
