package filter

import (
	"github.com/hupe1980/voxelpipe/geometry"
	"github.com/hupe1980/voxelpipe/model"
)

func uniform(dims int, v int64) geometry.Coordinate {
	c := geometry.Zeros(dims)
	for d := range c {
		c[d] = v
	}
	return c
}

// cropVolume cuts roi out of a volume that contains it. Leading channel
// axes are carried over in full.
func cropVolume(vol *model.Volume, roi geometry.ROI) (*model.Volume, error) {
	lead := vol.Data.Shape[:vol.Data.NDim()-roi.Dims()]
	shape := make([]int64, 0, len(lead)+roi.Dims())
	shape = append(shape, lead...)
	shape = append(shape, roi.Shape...)

	out := model.NewArray(shape...)
	if err := model.CopyRegion(out, vol.Data,
		geometry.Zeros(roi.Dims()),
		roi.Offset.Sub(vol.ROI.Offset),
		roi.Shape.Clone()); err != nil {
		return nil, err
	}

	return &model.Volume{
		Data:          out,
		ROI:           roi.Clone(),
		Resolution:    vol.Resolution.Clone(),
		Interpolation: vol.Interpolation,
	}, nil
}

// cropPoints keeps only the locations inside roi.
func cropPoints(pts *model.Points, roi geometry.ROI) *model.Points {
	out := &model.Points{
		ROI:        roi.Clone(),
		Resolution: pts.Resolution.Clone(),
	}
	for _, loc := range pts.Locations {
		if roi.ContainsPoint(loc) {
			out.Locations = append(out.Locations, loc.Clone())
		}
	}
	return out
}
