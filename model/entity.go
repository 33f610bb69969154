package model

import (
	"github.com/hupe1980/voxelpipe/geometry"
)

// EntityID is an opaque tag distinguishing named data streams flowing
// through a pipeline: an image volume, a label volume, a set of point
// annotations. The chunking engine treats every entity uniformly as
// ROI-addressable; whether it is volumetric or point-like only matters to
// the providers that realize it.
type EntityID string

// Interpolation names the resampling policy of a volumetric entity.
type Interpolation int

const (
	// Nearest selects the nearest source element when resampling. The
	// policy for label-like data.
	Nearest Interpolation = iota
	// Linear interpolates linearly between source elements. The policy
	// for intensity-like data.
	Linear
)

// String returns the policy name.
func (i Interpolation) String() string {
	switch i {
	case Nearest:
		return "nearest"
	case Linear:
		return "linear"
	default:
		return "unknown"
	}
}

// EntityInfo is the capability record an upstream provider attaches to an
// entity it offers: the extent it can serve plus the metadata downstream
// stages need to allocate and resample data for it.
type EntityInfo struct {
	// ROI is the full extent the provider can serve for this entity.
	ROI geometry.ROI

	// Resolution is the physical size of one element per axis.
	Resolution geometry.Coordinate

	// Interpolation is the resampling policy for volumetric entities.
	Interpolation Interpolation

	// Channels is the number of leading channel components for
	// multi-channel (vector-field-like) entities, 0 for scalar data.
	Channels int
}

// Extents maps every entity a provider offers to its capability record.
type Extents map[EntityID]EntityInfo

// Clone returns a deep copy of the extents.
func (e Extents) Clone() Extents {
	out := make(Extents, len(e))
	for id, info := range e {
		info.ROI = info.ROI.Clone()
		info.Resolution = info.Resolution.Clone()
		out[id] = info
	}
	return out
}
