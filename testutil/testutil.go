package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/voxelpipe/geometry"
	"github.com/hupe1980/voxelpipe/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int63n returns a non-negative pseudo-random int64 in [0,n).
func (r *RNG) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63n(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// UniformVolume generates a volume over roi filled with random
// intensities in [0, 1), with channels leading axes when channels > 0.
func (r *RNG) UniformVolume(roi geometry.ROI, channels int) *model.Volume {
	arr := model.NewArrayFromROI(roi, channels)
	r.FillUniform(arr.Data)
	return &model.Volume{
		Data:          arr,
		ROI:           roi.Clone(),
		Resolution:    Ones(roi.Dims()),
		Interpolation: model.Linear,
	}
}

// GradientVolume generates a volume whose every element encodes its
// global coordinate, which makes misplaced copies visible in tests.
func GradientVolume(roi geometry.ROI) *model.Volume {
	arr := model.NewArrayFromROI(roi, 0)
	idx := geometry.Zeros(roi.Dims())
	for {
		var v float32
		for d, x := range idx {
			v = v*1000 + float32(roi.Offset[d]+x)
		}
		arr.Set(v, idx...)

		d := 0
		for ; d < roi.Dims(); d++ {
			idx[d]++
			if idx[d] < roi.Shape[d] {
				break
			}
			idx[d] = 0
		}
		if d == roi.Dims() {
			break
		}
	}
	return &model.Volume{
		Data:          arr,
		ROI:           roi.Clone(),
		Resolution:    Ones(roi.Dims()),
		Interpolation: model.Linear,
	}
}

// RandomPoints generates num point locations uniformly inside roi.
func (r *RNG) RandomPoints(roi geometry.ROI, num int) *model.Points {
	pts := &model.Points{
		ROI:        roi.Clone(),
		Resolution: Ones(roi.Dims()),
	}
	for i := 0; i < num; i++ {
		loc := geometry.Zeros(roi.Dims())
		for d := range loc {
			loc[d] = roi.Offset[d] + r.Int63n(roi.Shape[d])
		}
		pts.Locations = append(pts.Locations, loc)
	}
	return pts
}

// Ones returns a coordinate of the given dimensionality with every
// component 1, the unit resolution used throughout the tests.
func Ones(dims int) geometry.Coordinate {
	c := geometry.Zeros(dims)
	for d := range c {
		c[d] = 1
	}
	return c
}
