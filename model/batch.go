package model

import (
	"sort"
	"time"

	"github.com/hupe1980/voxelpipe/geometry"
)

// Volume is realized volumetric data: an N-D array tagged with the ROI it
// covers, its resolution and its interpolation policy. The array may carry
// extra leading channel axes beyond the ROI's dimensionality.
type Volume struct {
	Data          *Array
	ROI           geometry.ROI
	Resolution    geometry.Coordinate
	Interpolation Interpolation
}

// Clone returns a deep copy of the volume.
func (v *Volume) Clone() *Volume {
	return &Volume{
		Data:          v.Data.Clone(),
		ROI:           v.ROI.Clone(),
		Resolution:    v.Resolution.Clone(),
		Interpolation: v.Interpolation,
	}
}

// Points is realized point-like data: sparse locations within a ROI.
type Points struct {
	Locations  []geometry.Coordinate
	ROI        geometry.ROI
	Resolution geometry.Coordinate
}

// Clone returns a deep copy of the point set.
func (p *Points) Clone() *Points {
	locs := make([]geometry.Coordinate, len(p.Locations))
	for i, l := range p.Locations {
		locs[i] = l.Clone()
	}
	return &Points{
		Locations:  locs,
		ROI:        p.ROI.Clone(),
		Resolution: p.Resolution.Clone(),
	}
}

// Batch is the realized counterpart of a Request: per-entity data tagged
// with the ROI it was produced for. The ROI of each item equals or
// contains the corresponding request ROI.
type Batch struct {
	Volumes map[EntityID]*Volume
	Points  map[EntityID]*Points

	// Timings accumulates per-stage serve durations as the batch travels
	// down the pipeline.
	Timings Timings
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{
		Volumes: make(map[EntityID]*Volume),
		Points:  make(map[EntityID]*Points),
		Timings: make(Timings),
	}
}

// Entities returns all entity identifiers present in the batch, sorted.
func (b *Batch) Entities() []EntityID {
	ids := make([]EntityID, 0, len(b.Volumes)+len(b.Points))
	for id := range b.Volumes {
		ids = append(ids, id)
	}
	for id := range b.Points {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Timings maps a pipeline stage name to the accumulated time spent
// serving in that stage.
type Timings map[string]time.Duration

// Add accumulates d under the given stage name.
func (t Timings) Add(stage string, d time.Duration) {
	if t == nil {
		return
	}
	t[stage] += d
}

// Merge folds the timings of o into t.
func (t Timings) Merge(o Timings) {
	if t == nil {
		return
	}
	for stage, d := range o {
		t[stage] += d
	}
}
