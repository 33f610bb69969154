package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/voxelpipe"
	"github.com/hupe1980/voxelpipe/blobstore"
	"github.com/hupe1980/voxelpipe/geometry"
	"github.com/hupe1980/voxelpipe/model"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultMaxFetch is the default bound on concurrent brick fetches.
const DefaultMaxFetch = 16

type brickOptions struct {
	brickShape geometry.Coordinate
	codec      Codec
	maxFetch   int64
	logger     *voxelpipe.Logger
}

// BrickOption configures a BrickSource.
type BrickOption func(*brickOptions)

// WithBrickShape sets the spatial shape of one brick. Required.
func WithBrickShape(shape geometry.Coordinate) BrickOption {
	return func(o *brickOptions) {
		o.brickShape = shape.Clone()
	}
}

// WithCodec sets the compression codec used by WriteVolume through
// this source. Reads auto-detect the codec per brick.
func WithCodec(codec Codec) BrickOption {
	return func(o *brickOptions) {
		o.codec = codec
	}
}

// WithMaxFetch bounds the number of concurrent brick fetches per serve.
func WithMaxFetch(n int64) BrickOption {
	return func(o *brickOptions) {
		if n > 0 {
			o.maxFetch = n
		}
	}
}

// WithBrickLogger sets the logger.
func WithBrickLogger(logger *voxelpipe.Logger) BrickOption {
	return func(o *brickOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// BrickSource serves volumes stored as fixed-size compressed bricks in
// a blobstore. The brick grid for an entity is anchored at the
// entity's extent offset; brick keys follow the scheme
// "<entity>/<i>_<j>_..._<k>" with grid indices per axis. Bricks absent
// from the store read as zeros.
type BrickSource struct {
	store   blobstore.BlobStore
	extents model.Extents
	opts    brickOptions
}

// NewBrickSource creates a source reading from store. extents declares
// the entities, their full ROIs, resolutions and channel counts; it is
// the contract between writer and reader of a dataset.
func NewBrickSource(store blobstore.BlobStore, extents model.Extents, optFns ...BrickOption) (*BrickSource, error) {
	opts := brickOptions{
		codec:    CodecZstd,
		maxFetch: DefaultMaxFetch,
		logger:   voxelpipe.NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if len(opts.brickShape) == 0 {
		return nil, errors.New("brick shape is required")
	}
	for d, n := range opts.brickShape {
		if n <= 0 {
			return nil, fmt.Errorf("brick shape axis %d must be positive, got %d", d, n)
		}
	}
	for id, info := range extents {
		if info.ROI.Dims() != len(opts.brickShape) {
			return nil, voxelpipe.NewDimensionMismatch(id, len(opts.brickShape), info.ROI.Dims())
		}
	}

	return &BrickSource{
		store:   store,
		extents: extents.Clone(),
		opts:    opts,
	}, nil
}

// Extents returns the entity capabilities declared at construction.
func (s *BrickSource) Extents(_ context.Context) (model.Extents, error) {
	return s.extents.Clone(), nil
}

// Serve fetches, decodes and assembles all bricks overlapping each
// requested ROI. Fetches run concurrently, bounded by WithMaxFetch.
func (s *BrickSource) Serve(ctx context.Context, req model.Request) (*model.Batch, error) {
	start := time.Now()
	batch := model.NewBatch()

	outputs := make(map[model.EntityID]*model.Array, len(req))
	for _, id := range req.Entities() {
		roi := req[id]

		info, ok := s.extents[id]
		if !ok {
			return nil, &voxelpipe.ErrEntityNotOffered{Entity: id}
		}
		if roi.Dims() != info.ROI.Dims() {
			return nil, voxelpipe.NewDimensionMismatch(id, info.ROI.Dims(), roi.Dims())
		}
		if !info.ROI.Contains(roi) {
			return nil, &voxelpipe.ErrOutsideExtent{Entity: id, Requested: roi, Extent: info.ROI}
		}

		outputs[id] = model.NewArrayFromROI(roi, info.Channels)
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(s.opts.maxFetch)

	for id, out := range outputs {
		id, out := id, out
		roi := req[id]
		info := s.extents[id]

		for _, idx := range brickRange(info.ROI.Offset, s.opts.brickShape, roi) {
			idx := idx
			g.Go(func() error {
				if err := sem.Acquire(gctx, 1); err != nil {
					return err
				}
				defer sem.Release(1)
				return s.fetchBrick(gctx, id, info, idx, roi, out)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for id, out := range outputs {
		info := s.extents[id]
		batch.Volumes[id] = &model.Volume{
			Data:          out,
			ROI:           req[id].Clone(),
			Resolution:    info.Resolution.Clone(),
			Interpolation: info.Interpolation,
		}
	}

	batch.Timings.Add("brick-source", time.Since(start))
	return batch, nil
}

// fetchBrick reads one brick and copies its overlap with roi into out.
// A missing brick leaves the zero fill in place.
func (s *BrickSource) fetchBrick(ctx context.Context, id model.EntityID, info model.EntityInfo, idx geometry.Coordinate, roi geometry.ROI, out *model.Array) error {
	key := brickKey(id, idx)

	blob, err := s.store.Open(ctx, key)
	if errors.Is(err, blobstore.ErrNotFound) {
		s.opts.logger.DebugContext(ctx, "brick not in store, reading as zeros", "key", key)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open brick %q: %w", key, err)
	}
	defer blob.Close()

	raw, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return fmt.Errorf("read brick %q: %w", key, err)
	}

	payload, err := DecodeBrick(raw)
	if err != nil {
		return fmt.Errorf("decode brick %q: %w", key, err)
	}
	vals, err := bytesToFloat32s(payload)
	if err != nil {
		return fmt.Errorf("decode brick %q: %w", key, err)
	}

	shape := brickArrayShape(info.Channels, s.opts.brickShape)
	var want int64 = 1
	for _, n := range shape {
		want *= n
	}
	if int64(len(vals)) != want {
		return fmt.Errorf("brick %q holds %d samples, want %d", key, len(vals), want)
	}

	brick := &model.Array{Data: vals, Shape: shape}

	brickROI := brickROIAt(info.ROI.Offset, s.opts.brickShape, idx)
	common, ok := brickROI.Intersect(roi)
	if !ok {
		return nil
	}

	// Bricks overlapping the same request never overlap each other, so
	// concurrent copies into out stay disjoint.
	return model.CopyRegion(out, brick,
		common.Offset.Sub(roi.Offset),
		common.Offset.Sub(brickROI.Offset),
		common.Shape.Clone())
}

var _ voxelpipe.Provider = (*BrickSource)(nil)

// WriteVolume bricks a volume and uploads it through the source's
// store and codec. The volume ROI must match the entity's declared
// extent so writer and reader agree on the brick grid.
func (s *BrickSource) WriteVolume(ctx context.Context, id model.EntityID, vol *model.Volume) error {
	info, ok := s.extents[id]
	if !ok {
		return &voxelpipe.ErrEntityNotOffered{Entity: id}
	}
	if !vol.ROI.Equals(info.ROI) {
		return &voxelpipe.ErrOutsideExtent{Entity: id, Requested: vol.ROI, Extent: info.ROI}
	}

	lead := vol.Data.Shape[:vol.Data.NDim()-vol.ROI.Dims()]
	shape := brickArrayShape(info.Channels, s.opts.brickShape)
	if len(lead) != len(shape)-len(s.opts.brickShape) {
		return voxelpipe.NewDimensionMismatch(id, len(shape)-len(s.opts.brickShape), len(lead))
	}

	for _, idx := range brickRange(info.ROI.Offset, s.opts.brickShape, vol.ROI) {
		brickROI := brickROIAt(info.ROI.Offset, s.opts.brickShape, idx)
		common, ok := brickROI.Intersect(vol.ROI)
		if !ok {
			continue
		}

		brick := model.NewArray(shape...)
		if err := model.CopyRegion(brick, vol.Data,
			common.Offset.Sub(brickROI.Offset),
			common.Offset.Sub(vol.ROI.Offset),
			common.Shape.Clone()); err != nil {
			return err
		}

		encoded, err := EncodeBrick(s.opts.codec, float32sToBytes(brick.Data))
		if err != nil {
			return err
		}

		key := brickKey(id, idx)
		if err := s.store.Put(ctx, key, encoded); err != nil {
			return fmt.Errorf("put brick %q: %w", key, err)
		}
	}
	return nil
}

func brickKey(id model.EntityID, idx geometry.Coordinate) string {
	parts := make([]string, len(idx))
	for d, i := range idx {
		parts[d] = fmt.Sprintf("%d", i)
	}
	return string(id) + "/" + strings.Join(parts, "_")
}

func brickArrayShape(channels int, brickShape geometry.Coordinate) []int64 {
	shape := make([]int64, 0, len(brickShape)+1)
	if channels > 0 {
		shape = append(shape, int64(channels))
	}
	shape = append(shape, brickShape...)
	return shape
}

// brickROIAt returns the ROI covered by the brick at grid index idx.
func brickROIAt(origin, brickShape, idx geometry.Coordinate) geometry.ROI {
	offset := origin.Clone()
	for d := range offset {
		offset[d] += idx[d] * brickShape[d]
	}
	return geometry.NewROI(offset, brickShape.Clone())
}

// brickRange enumerates the grid indices of all bricks overlapping roi.
func brickRange(origin, brickShape geometry.Coordinate, roi geometry.ROI) []geometry.Coordinate {
	dims := roi.Dims()
	lo := make(geometry.Coordinate, dims)
	hi := make(geometry.Coordinate, dims)
	for d := 0; d < dims; d++ {
		lo[d] = floorDiv(roi.Begin()[d]-origin[d], brickShape[d])
		hi[d] = floorDiv(roi.End()[d]-1-origin[d], brickShape[d])
	}

	var out []geometry.Coordinate
	idx := lo.Clone()
	for {
		out = append(out, idx.Clone())
		d := 0
		for ; d < dims; d++ {
			idx[d]++
			if idx[d] <= hi[d] {
				break
			}
			idx[d] = lo[d]
		}
		if d == dims {
			break
		}
	}
	return out
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
