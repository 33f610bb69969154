package geometry

import (
	"fmt"
	"strings"
)

// Coordinate is an N-dimensional integer vector.
//
// Coordinates are treated as immutable: all arithmetic returns a new
// Coordinate and leaves the operands untouched. Elementwise operations
// assume both operands have the same dimensionality.
type Coordinate []int64

// NewCoordinate returns a coordinate with the given components.
func NewCoordinate(components ...int64) Coordinate {
	c := make(Coordinate, len(components))
	copy(c, components)
	return c
}

// Zeros returns the zero vector of dimensionality dims.
func Zeros(dims int) Coordinate {
	return make(Coordinate, dims)
}

// Dims returns the dimensionality of the coordinate.
func (c Coordinate) Dims() int {
	return len(c)
}

// Clone returns an independent copy of the coordinate.
func (c Coordinate) Clone() Coordinate {
	out := make(Coordinate, len(c))
	copy(out, c)
	return out
}

// Add returns the elementwise sum c + o.
func (c Coordinate) Add(o Coordinate) Coordinate {
	out := make(Coordinate, len(c))
	for i := range c {
		out[i] = c[i] + o[i]
	}
	return out
}

// Sub returns the elementwise difference c - o.
func (c Coordinate) Sub(o Coordinate) Coordinate {
	out := make(Coordinate, len(c))
	for i := range c {
		out[i] = c[i] - o[i]
	}
	return out
}

// Neg returns the elementwise negation of c.
func (c Coordinate) Neg() Coordinate {
	out := make(Coordinate, len(c))
	for i := range c {
		out[i] = -c[i]
	}
	return out
}

// Min returns the elementwise minimum of c and o.
func (c Coordinate) Min(o Coordinate) Coordinate {
	out := make(Coordinate, len(c))
	for i := range c {
		out[i] = min(c[i], o[i])
	}
	return out
}

// Max returns the elementwise maximum of c and o.
func (c Coordinate) Max(o Coordinate) Coordinate {
	out := make(Coordinate, len(c))
	for i := range c {
		out[i] = max(c[i], o[i])
	}
	return out
}

// Equals reports whether c and o have identical components.
func (c Coordinate) Equals(o Coordinate) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if c[i] != o[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether every component is zero.
func (c Coordinate) IsZero() bool {
	for _, v := range c {
		if v != 0 {
			return false
		}
	}
	return true
}

// String returns a compact representation like "(10, 20, 30)".
func (c Coordinate) String() string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
