package source

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/voxelpipe"
	"github.com/hupe1980/voxelpipe/geometry"
	"github.com/hupe1980/voxelpipe/model"
)

// MemorySource serves volumes and point sets held in memory. It is
// thread-safe for concurrent Serve calls, so it can back a chunker with
// many workers.
type MemorySource struct {
	mu      sync.RWMutex
	volumes map[model.EntityID]*model.Volume
	points  map[model.EntityID]*model.Points
}

var _ voxelpipe.Provider = (*MemorySource)(nil)

// NewMemorySource creates an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		volumes: make(map[model.EntityID]*model.Volume),
		points:  make(map[model.EntityID]*model.Points),
	}
}

// AddVolume offers a volumetric entity. The volume's ROI becomes the
// extent the source declares for it.
func (s *MemorySource) AddVolume(id model.EntityID, vol *model.Volume) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volumes[id] = vol
}

// AddPoints offers a point-like entity. The point set's ROI becomes the
// extent the source declares for it.
func (s *MemorySource) AddPoints(id model.EntityID, pts *model.Points) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points[id] = pts
}

// Extents declares every offered entity with its capability record.
func (s *MemorySource) Extents(_ context.Context) (model.Extents, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	extents := make(model.Extents, len(s.volumes)+len(s.points))
	for id, vol := range s.volumes {
		extents[id] = model.EntityInfo{
			ROI:           vol.ROI.Clone(),
			Resolution:    vol.Resolution.Clone(),
			Interpolation: vol.Interpolation,
			Channels:      volumeChannels(vol),
		}
	}
	for id, pts := range s.points {
		extents[id] = model.EntityInfo{
			ROI:        pts.ROI.Clone(),
			Resolution: pts.Resolution.Clone(),
		}
	}
	return extents, nil
}

// Serve realizes the requested ROI of every requested entity. It fails
// for entities that are not offered or requested outside their declared
// extent.
func (s *MemorySource) Serve(_ context.Context, req model.Request) (*model.Batch, error) {
	start := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := model.NewBatch()
	for _, id := range req.Entities() {
		roi := req[id]

		if vol, ok := s.volumes[id]; ok {
			out, err := sliceVolume(id, vol, roi)
			if err != nil {
				return nil, err
			}
			batch.Volumes[id] = out
			continue
		}

		if pts, ok := s.points[id]; ok {
			out, err := slicePoints(id, pts, roi)
			if err != nil {
				return nil, err
			}
			batch.Points[id] = out
			continue
		}

		return nil, &voxelpipe.ErrEntityNotOffered{Entity: id}
	}

	batch.Timings.Add("memory-source", time.Since(start))
	return batch, nil
}

func sliceVolume(id model.EntityID, vol *model.Volume, roi geometry.ROI) (*model.Volume, error) {
	if !vol.ROI.Contains(roi) {
		return nil, &voxelpipe.ErrOutsideExtent{Entity: id, Requested: roi, Extent: vol.ROI}
	}

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

func slicePoints(id model.EntityID, pts *model.Points, roi geometry.ROI) (*model.Points, error) {
	if !pts.ROI.Contains(roi) {
		return nil, &voxelpipe.ErrOutsideExtent{Entity: id, Requested: roi, Extent: pts.ROI}
	}

	out := &model.Points{
		ROI:        roi.Clone(),
		Resolution: pts.Resolution.Clone(),
	}
	for _, loc := range pts.Locations {
		if roi.ContainsPoint(loc) {
			out.Locations = append(out.Locations, loc.Clone())
		}
	}
	return out, nil
}

// volumeChannels returns the extent of the volume's single leading
// channel axis, or 0 for scalar data.
func volumeChannels(vol *model.Volume) int {
	if vol.Data.NDim() > vol.ROI.Dims() {
		return int(vol.Data.Shape[0])
	}
	return 0
}
