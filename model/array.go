package model

import (
	"fmt"

	"github.com/hupe1980/voxelpipe/geometry"
)

// Array is a dense, row-major float32 N-D array. The innermost axis is
// the last one, so rows along it are contiguous in Data.
type Array struct {
	Shape []int64
	Data  []float32
}

// NewArray allocates a zero-initialized array of the given shape.
func NewArray(shape ...int64) *Array {
	size := int64(1)
	for _, s := range shape {
		size *= s
	}
	return &Array{
		Shape: append([]int64(nil), shape...),
		Data:  make([]float32, size),
	}
}

// NewArrayFromROI allocates a zero-initialized array shaped like the ROI,
// with channels extra leading axes of the given extent prepended when
// channels > 0.
func NewArrayFromROI(roi geometry.ROI, channels int) *Array {
	shape := make([]int64, 0, roi.Dims()+1)
	if channels > 0 {
		shape = append(shape, int64(channels))
	}
	for _, s := range roi.Shape {
		shape = append(shape, s)
	}
	return NewArray(shape...)
}

// NDim returns the number of axes.
func (a *Array) NDim() int {
	return len(a.Shape)
}

// Len returns the total number of elements.
func (a *Array) Len() int {
	return len(a.Data)
}

// Strides returns the row-major stride of each axis in elements.
func (a *Array) Strides() []int64 {
	strides := make([]int64, len(a.Shape))
	stride := int64(1)
	for i := len(a.Shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= a.Shape[i]
	}
	return strides
}

// At returns the element at the given index, one component per axis.
func (a *Array) At(idx ...int64) float32 {
	return a.Data[a.offset(idx)]
}

// Set writes the element at the given index, one component per axis.
func (a *Array) Set(v float32, idx ...int64) {
	a.Data[a.offset(idx)] = v
}

func (a *Array) offset(idx []int64) int64 {
	if len(idx) != len(a.Shape) {
		panic(fmt.Sprintf("array index has %d components, array has %d axes", len(idx), len(a.Shape)))
	}
	var off int64
	for i, stride := range a.Strides() {
		off += idx[i] * stride
	}
	return off
}

// Fill sets every element to v.
func (a *Array) Fill(v float32) {
	for i := range a.Data {
		a.Data[i] = v
	}
}

// Clone returns an independent copy of the array.
func (a *Array) Clone() *Array {
	out := &Array{
		Shape: append([]int64(nil), a.Shape...),
		Data:  make([]float32, len(a.Data)),
	}
	copy(out.Data, a.Data)
	return out
}

// CopyRegion copies a region of src into dst. The offsets and shape have
// one component per trailing axis: they apply to the last len(shape) axes
// of both arrays. Leading axes not covered (for example channel axes) are
// copied in full and must have identical extents in dst and src.
func CopyRegion(dst, src *Array, dstOffset, srcOffset, shape geometry.Coordinate) error {
	k := len(shape)
	if len(dstOffset) != k || len(srcOffset) != k {
		return fmt.Errorf("copy region: offsets and shape disagree on dimensionality (%d, %d, %d)",
			len(dstOffset), len(srcOffset), k)
	}
	lead := dst.NDim() - k
	if lead < 0 || src.NDim()-k != lead {
		return fmt.Errorf("copy region: %d trailing axes requested, arrays have %d and %d axes",
			k, dst.NDim(), src.NDim())
	}
	for i := 0; i < lead; i++ {
		if dst.Shape[i] != src.Shape[i] {
			return fmt.Errorf("copy region: leading axis %d differs (%d != %d)", i, dst.Shape[i], src.Shape[i])
		}
	}
	for i := 0; i < k; i++ {
		if dstOffset[i] < 0 || dstOffset[i]+shape[i] > dst.Shape[lead+i] {
			return fmt.Errorf("copy region: destination range [%d, %d) outside axis %d of extent %d",
				dstOffset[i], dstOffset[i]+shape[i], lead+i, dst.Shape[lead+i])
		}
		if srcOffset[i] < 0 || srcOffset[i]+shape[i] > src.Shape[lead+i] {
			return fmt.Errorf("copy region: source range [%d, %d) outside axis %d of extent %d",
				srcOffset[i], srcOffset[i]+shape[i], lead+i, src.Shape[lead+i])
		}
	}
	if dst.NDim() == 0 {
		return nil
	}

	fullShape := make([]int64, dst.NDim())
	fullDst := make([]int64, dst.NDim())
	fullSrc := make([]int64, dst.NDim())
	for i := 0; i < lead; i++ {
		fullShape[i] = dst.Shape[i]
	}
	for i := 0; i < k; i++ {
		fullShape[lead+i] = shape[i]
		fullDst[lead+i] = dstOffset[i]
		fullSrc[lead+i] = srcOffset[i]
	}

	dstStrides := dst.Strides()
	srcStrides := src.Strides()
	last := dst.NDim() - 1

	var walk func(axis int, dOff, sOff int64)
	walk = func(axis int, dOff, sOff int64) {
		if axis == last {
			d := dOff + fullDst[axis]
			s := sOff + fullSrc[axis]
			copy(dst.Data[d:d+fullShape[axis]], src.Data[s:s+fullShape[axis]])
			return
		}
		for i := int64(0); i < fullShape[axis]; i++ {
			walk(axis+1, dOff+(fullDst[axis]+i)*dstStrides[axis], sOff+(fullSrc[axis]+i)*srcStrides[axis])
		}
	}
	walk(0, 0, 0)

	return nil
}
