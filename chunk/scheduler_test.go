package chunk

import (
	"testing"

	"github.com/hupe1980/voxelpipe"
	"github.com/hupe1980/voxelpipe/geometry"
	"github.com/hupe1980/voxelpipe/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roi1d(offset, shape int64) geometry.ROI {
	return geometry.NewROI(geometry.NewCoordinate(offset), geometry.NewCoordinate(shape))
}

func TestBuildScheduleOneDimensional(t *testing.T) {
	// Outer request [0, 100) tiled by a template of shape 30: steady
	// strides of 30, then a final stride of 10 so the last chunk lands
	// exactly on 100 instead of overshooting.
	outer := model.Request{"raw": roi1d(0, 100)}
	tmpl := Template{"raw": roi1d(0, 30)}

	sched, err := BuildSchedule(outer, tmpl)
	require.NoError(t, err)
	require.Equal(t, 4, sched.Len())

	wantOffsets := []int64{0, 30, 60, 70}
	for i, want := range wantOffsets {
		assert.Equal(t, geometry.NewCoordinate(want), sched.Offsets[i])
		assert.Equal(t, roi1d(want, 30), sched.SubRequests[i]["raw"])
	}

	// The last chunk's far edge lands exactly on the request boundary.
	last := sched.SubRequests[3]["raw"]
	assert.Equal(t, geometry.NewCoordinate(100), last.End())
}

func TestBuildScheduleMinimalStrideBound(t *testing.T) {
	outer := model.Request{"raw": roi1d(0, 100)}
	tmpl := Template{"raw": roi1d(0, 30)}

	sched, err := BuildSchedule(outer, tmpl)
	require.NoError(t, err)

	// Every stride is at least the minimal stride, except the final
	// shrink-to-fit step.
	for i := 1; i < sched.Len(); i++ {
		stride := sched.Offsets[i][0] - sched.Offsets[i-1][0]
		if i < sched.Len()-1 {
			assert.GreaterOrEqual(t, stride, int64(30))
		} else {
			assert.Equal(t, int64(10), stride)
		}
	}
}

func TestBuildScheduleCenteredTemplates(t *testing.T) {
	// Two entities with template shapes 30 and 50 sharing the same
	// geometric center: the smaller template governs the stride.
	outer := model.Request{
		"raw":    roi1d(-10, 120),
		"labels": roi1d(0, 100),
	}
	tmpl := Template{
		"raw":    roi1d(-10, 50),
		"labels": roi1d(0, 30),
	}

	sched, err := BuildSchedule(outer, tmpl)
	require.NoError(t, err)
	require.Equal(t, 4, sched.Len())

	wantOffsets := []int64{0, 30, 60, 70}
	for i, want := range wantOffsets {
		assert.Equal(t, geometry.NewCoordinate(want), sched.Offsets[i])
		// Both entities shift together, keeping their centers aligned.
		assert.Equal(t, roi1d(want, 30), sched.SubRequests[i]["labels"])
		assert.Equal(t, roi1d(want-10, 50), sched.SubRequests[i]["raw"])
	}
}

func TestBuildScheduleLengthFollowsLargerCoverageNeed(t *testing.T) {
	// The larger entity needs more chunks than the smaller one; the
	// schedule keeps going until it, too, is covered.
	outer := model.Request{
		"raw":    roi1d(-10, 150),
		"labels": roi1d(0, 100),
	}
	tmpl := Template{
		"raw":    roi1d(-10, 50),
		"labels": roi1d(0, 30),
	}

	sched, err := BuildSchedule(outer, tmpl)
	require.NoError(t, err)
	require.Equal(t, 5, sched.Len())

	wantOffsets := []int64{0, 30, 60, 70, 100}
	for i, want := range wantOffsets {
		assert.Equal(t, geometry.NewCoordinate(want), sched.Offsets[i])
	}

	// The final chunk serves only the larger entity; the smaller one's
	// sub-ROI lies fully outside its own request by then.
	lastLabels := sched.SubRequests[4]["labels"]
	_, overlaps := lastLabels.Intersect(outer["labels"])
	assert.False(t, overlaps)
}

func TestBuildScheduleCoverage(t *testing.T) {
	cases := []struct {
		name  string
		outer geometry.ROI
		tmpl  geometry.ROI
	}{
		{
			name:  "1d exact tiling",
			outer: roi1d(0, 90),
			tmpl:  roi1d(0, 30),
		},
		{
			name:  "1d with shrink step",
			outer: roi1d(5, 103),
			tmpl:  roi1d(0, 30),
		},
		{
			name:  "2d",
			outer: geometry.NewROI(geometry.NewCoordinate(0, 0), geometry.NewCoordinate(100, 70)),
			tmpl:  geometry.NewROI(geometry.NewCoordinate(0, 0), geometry.NewCoordinate(30, 20)),
		},
		{
			name:  "2d negative offset",
			outer: geometry.NewROI(geometry.NewCoordinate(-25, 13), geometry.NewCoordinate(77, 41)),
			tmpl:  geometry.NewROI(geometry.NewCoordinate(0, 0), geometry.NewCoordinate(16, 16)),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outer := model.Request{"raw": tc.outer}
			tmpl := Template{"raw": tc.tmpl}

			sched, err := BuildSchedule(outer, tmpl)
			require.NoError(t, err)

			assertCovered(t, tc.outer, sched, "raw")
		})
	}
}

// assertCovered checks that the union of all scheduled sub-ROIs for the
// entity fully contains the outer ROI.
func assertCovered(t *testing.T, outer geometry.ROI, sched *Schedule, id model.EntityID) {
	t.Helper()

	covered := model.NewArrayFromROI(geometry.NewROI(geometry.Zeros(outer.Dims()), outer.Shape), 0)
	for _, sub := range sched.SubRequests {
		common, ok := outer.Intersect(sub[id])
		if !ok {
			continue
		}
		local := common.Shift(outer.Offset.Neg())
		markRegion(covered, local)
	}
	for i, v := range covered.Data {
		require.Equal(t, float32(1), v, "element %d of the outer ROI is not covered", i)
	}
}

func markRegion(a *model.Array, roi geometry.ROI) {
	idx := roi.Offset.Clone()
	for {
		a.Set(1, idx...)
		d := 0
		for ; d < roi.Dims(); d++ {
			idx[d]++
			if idx[d] < roi.Offset[d]+roi.Shape[d] {
				break
			}
			idx[d] = roi.Offset[d]
		}
		if d == roi.Dims() {
			return
		}
	}
}

func TestBuildScheduleTwoDimensionalOdometer(t *testing.T) {
	// Axis 0 advances first and carries into axis 1 on overflow.
	outer := model.Request{"raw": geometry.NewROI(geometry.NewCoordinate(0, 0), geometry.NewCoordinate(60, 40))}
	tmpl := Template{"raw": geometry.NewROI(geometry.NewCoordinate(0, 0), geometry.NewCoordinate(30, 20))}

	sched, err := BuildSchedule(outer, tmpl)
	require.NoError(t, err)
	require.Equal(t, 4, sched.Len())

	want := []geometry.Coordinate{
		geometry.NewCoordinate(0, 0),
		geometry.NewCoordinate(30, 0),
		geometry.NewCoordinate(0, 20),
		geometry.NewCoordinate(30, 20),
	}
	assert.Equal(t, want, sched.Offsets)
}

func TestBuildScheduleSingleChunk(t *testing.T) {
	// A request no larger than one template chunk yields exactly one
	// sub-request.
	outer := model.Request{"raw": roi1d(0, 20)}
	tmpl := Template{"raw": roi1d(0, 30)}

	sched, err := BuildSchedule(outer, tmpl)
	require.NoError(t, err)
	assert.Equal(t, 1, sched.Len())
	assert.Equal(t, roi1d(0, 30), sched.SubRequests[0]["raw"])
}

func TestBuildSchedulePassesNonTemplatedEntriesThrough(t *testing.T) {
	meta := roi1d(42, 7)
	outer := model.Request{
		"raw":  roi1d(0, 100),
		"meta": meta,
	}
	tmpl := Template{"raw": roi1d(0, 30)}

	sched, err := BuildSchedule(outer, tmpl)
	require.NoError(t, err)

	for _, sub := range sched.SubRequests {
		assert.Equal(t, meta, sub["meta"])
	}
}

func TestBuildScheduleErrors(t *testing.T) {
	t.Run("empty template", func(t *testing.T) {
		_, err := BuildSchedule(model.Request{"raw": roi1d(0, 10)}, Template{})
		assert.ErrorIs(t, err, ErrEmptyTemplate)
	})

	t.Run("templated entity absent from request", func(t *testing.T) {
		_, err := BuildSchedule(model.Request{"raw": roi1d(0, 10)}, Template{"labels": roi1d(0, 10)})
		var enr *ErrEntityNotRequested
		require.ErrorAs(t, err, &enr)
		assert.Equal(t, model.EntityID("labels"), enr.Entity)
	})

	t.Run("mixed template dimensionality", func(t *testing.T) {
		_, err := BuildSchedule(
			model.Request{
				"raw":    roi1d(0, 10),
				"labels": roi1d(0, 10),
			},
			Template{
				"raw":    roi1d(0, 10),
				"labels": geometry.NewROI(geometry.NewCoordinate(0, 0), geometry.NewCoordinate(10, 10)),
			})
		var dm *voxelpipe.ErrDimensionMismatch
		assert.ErrorAs(t, err, &dm)
	})

	t.Run("request dimensionality mismatch", func(t *testing.T) {
		_, err := BuildSchedule(
			model.Request{"raw": geometry.NewROI(geometry.NewCoordinate(0, 0), geometry.NewCoordinate(10, 10))},
			Template{"raw": roi1d(0, 10)})
		var dm *voxelpipe.ErrDimensionMismatch
		assert.ErrorAs(t, err, &dm)
	})

	t.Run("zero template shape", func(t *testing.T) {
		_, err := BuildSchedule(model.Request{"raw": roi1d(0, 10)}, Template{"raw": roi1d(0, 0)})
		var zts *ErrZeroTemplateShape
		require.ErrorAs(t, err, &zts)
		assert.Equal(t, model.EntityID("raw"), zts.Entity)
	})
}
