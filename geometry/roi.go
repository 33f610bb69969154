package geometry

import "fmt"

// ROI is an axis-aligned integer box addressing a sub-region of an
// entity's coordinate space. It is described by an offset (the inclusive
// begin corner) and a non-negative shape per axis.
type ROI struct {
	Offset Coordinate
	Shape  Coordinate
}

// NewROI returns a ROI with the given offset and shape.
func NewROI(offset, shape Coordinate) ROI {
	return ROI{Offset: offset.Clone(), Shape: shape.Clone()}
}

// Dims returns the dimensionality of the ROI.
func (r ROI) Dims() int {
	return len(r.Offset)
}

// Begin returns the inclusive begin corner (the offset).
func (r ROI) Begin() Coordinate {
	return r.Offset.Clone()
}

// End returns the exclusive end corner, offset + shape.
func (r ROI) End() Coordinate {
	return r.Offset.Add(r.Shape)
}

// Size returns the number of elements addressed by the ROI.
func (r ROI) Size() int64 {
	if len(r.Shape) == 0 {
		return 0
	}
	size := int64(1)
	for _, s := range r.Shape {
		size *= s
	}
	return size
}

// Empty reports whether the ROI addresses no elements.
func (r ROI) Empty() bool {
	for _, s := range r.Shape {
		if s <= 0 {
			return true
		}
	}
	return len(r.Shape) == 0
}

// Clone returns an independent copy of the ROI.
func (r ROI) Clone() ROI {
	return ROI{Offset: r.Offset.Clone(), Shape: r.Shape.Clone()}
}

// Equals reports whether r and o describe the same box.
func (r ROI) Equals(o ROI) bool {
	return r.Offset.Equals(o.Offset) && r.Shape.Equals(o.Shape)
}

// Contains reports whether o lies fully inside r.
func (r ROI) Contains(o ROI) bool {
	b, e := r.Offset, r.End()
	ob, oe := o.Offset, o.End()
	for d := range b {
		if ob[d] < b[d] || oe[d] > e[d] {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether the point p lies inside r.
func (r ROI) ContainsPoint(p Coordinate) bool {
	e := r.End()
	for d := range r.Offset {
		if p[d] < r.Offset[d] || p[d] >= e[d] {
			return false
		}
	}
	return true
}

// Intersect returns the overlap of r and o. The second return value is
// false when the boxes are disjoint on any axis; in that case the returned
// ROI is the zero value, never a negative-shape box.
func (r ROI) Intersect(o ROI) (ROI, bool) {
	begin := r.Offset.Max(o.Offset)
	end := r.End().Min(o.End())
	shape := make(Coordinate, len(begin))
	for d := range begin {
		if end[d] <= begin[d] {
			return ROI{}, false
		}
		shape[d] = end[d] - begin[d]
	}
	return ROI{Offset: begin, Shape: shape}, true
}

// Shift returns r translated by delta. Shifting by the zero vector is the
// identity.
func (r ROI) Shift(delta Coordinate) ROI {
	return ROI{Offset: r.Offset.Add(delta), Shape: r.Shape.Clone()}
}

// Union returns the bounding box of r and o.
func (r ROI) Union(o ROI) ROI {
	if r.Empty() {
		return o.Clone()
	}
	if o.Empty() {
		return r.Clone()
	}
	begin := r.Offset.Min(o.Offset)
	end := r.End().Max(o.End())
	return ROI{Offset: begin, Shape: end.Sub(begin)}
}

// Grow returns r expanded by neg elements towards the begin corner and
// pos elements towards the end corner, per axis. Nil leaves the
// corresponding side unchanged.
func (r ROI) Grow(neg, pos Coordinate) ROI {
	offset := r.Offset.Clone()
	shape := r.Shape.Clone()
	if neg != nil {
		offset = offset.Sub(neg)
		shape = shape.Add(neg)
	}
	if pos != nil {
		shape = shape.Add(pos)
	}
	return ROI{Offset: offset, Shape: shape}
}

// String returns a representation like "[(0, 0), (10, 20)]" listing the
// offset and shape.
func (r ROI) String() string {
	return fmt.Sprintf("[%s, %s]", r.Offset, r.Shape)
}
