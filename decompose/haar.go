package decompose

import (
	"github.com/go-mdr/mdr"
)

// Haar is the reference Decomposer: a separable, node-nested Haar pyramid.
// At each level it halves every axis (pairwise average/difference, odd
// leftover passed through), reorders each axis into a low (average) half and
// a high (difference/detail) half in place, and recurses into the low
// corner. Recompose reverses the process exactly, up to floating point
// rounding in the pairwise sum.
type Haar[T mdr.Float] struct{}

// NewHaar constructs a Haar decomposer for element type T.
func NewHaar[T mdr.Float]() *Haar[T] { return &Haar[T]{} }

func (h *Haar[T]) Decompose(data []T, dims mdr.Dims, targetLevel uint8) error {
	if err := validate(dims, targetLevel, len(data)); err != nil {
		return err
	}
	levelDims := mdr.LevelDims(dims, targetLevel)
	str := strides(dims)
	cur := append(mdr.Dims(nil), dims...)
	for l := int(targetLevel); l >= 1; l-- {
		for axis := range dims {
			transformAxis(data, str, cur, axis, false)
		}
		cur = append(mdr.Dims(nil), levelDims[l-1]...)
	}
	return nil
}

func (h *Haar[T]) Recompose(data []T, dims mdr.Dims, targetLevel uint8) error {
	if err := validate(dims, targetLevel, len(data)); err != nil {
		return err
	}
	levelDims := mdr.LevelDims(dims, targetLevel)
	str := strides(dims)
	for l := 1; l <= int(targetLevel); l++ {
		cur := levelDims[l]
		for axis := len(dims) - 1; axis >= 0; axis-- {
			transformAxis(data, str, cur, axis, true)
		}
	}
	return nil
}

// transformAxis applies, or inverts, one axis of the pairwise Haar transform
// over the active region cur, in place, for every line along axis.
func transformAxis[T mdr.Float](data []T, str []uint64, cur mdr.Dims, axis int, inverse bool) {
	n := int(cur[axis])
	if n <= 1 {
		return
	}
	half := (n + 1) / 2
	diffs := n - half
	lineStride := str[axis]

	otherExtents := append(mdr.Dims(nil), cur...)
	otherExtents[axis] = 1

	line := make([]T, n)
	out := make([]T, n)
	odometer(otherExtents, str, func(base uint64) {
		for i := 0; i < n; i++ {
			line[i] = data[base+uint64(i)*lineStride]
		}
		if !inverse {
			lowIdx, highIdx := 0, half
			i := 0
			for ; i+1 < n; i += 2 {
				a, b := line[i], line[i+1]
				out[lowIdx] = (a + b) / 2
				out[highIdx] = a - b
				lowIdx++
				highIdx++
			}
			if i < n {
				out[lowIdx] = line[i]
			}
		} else {
			low := line[:half]
			high := line[half : half+diffs]
			lowIdx, highIdx := 0, 0
			i := 0
			for ; i+1 < n; i += 2 {
				avg, diff := low[lowIdx], high[highIdx]
				out[i] = avg + diff/2
				out[i+1] = avg - diff/2
				lowIdx++
				highIdx++
			}
			if i < n {
				out[i] = low[lowIdx]
			}
		}
		for i := 0; i < n; i++ {
			data[base+uint64(i)*lineStride] = out[i]
		}
	})
}
