// Package decompose implements the in-place multilevel transform that turns
// a resident N-dimensional array into a pyramid of detail coefficients plus a
// single coarse corner.
//
// The multilevel transform proper is an external collaborator in this
// design; a concrete, fully invertible separable Haar pyramid is shipped
// here as the reference implementation so the rest of the pipeline is
// runnable and testable end to end.
package decompose

import (
	"github.com/go-mdr/mdr"
)

// Decomposer is the contract every multilevel transform must satisfy:
// Decompose runs in place, producing a coefficient pyramid; Recompose
// inverts it exactly.
type Decomposer[T mdr.Float] interface {
	Decompose(data []T, dims mdr.Dims, targetLevel uint8) error
	Recompose(data []T, dims mdr.Dims, targetLevel uint8) error
}

func validate(dims mdr.Dims, targetLevel uint8, dataLen int) error {
	if err := dims.Validate(); err != nil {
		return err
	}
	maxLevel := dims.MaxLevel()
	if maxLevel < 0 || int(targetLevel) > maxLevel {
		return mdr.NewError(mdr.KindInvalidArgument, "decompose", mdr.Error("target level exceeds floor(log2(min(dims)))-1"))
	}
	if uint64(dataLen) != dims.NumElements() {
		return mdr.NewError(mdr.KindInvalidArgument, "decompose", mdr.Error("data length does not match dims"))
	}
	return nil
}

// strides returns the row-major (C order, last axis fastest) strides for
// dims.
func strides(dims mdr.Dims) []uint64 {
	n := len(dims)
	s := make([]uint64, n)
	if n == 0 {
		return s
	}
	s[n-1] = 1
	for i := n - 2; i >= 0; i-- {
		s[i] = s[i+1] * uint64(dims[i+1])
	}
	return s
}

// odometer iterates every multi-index in [0, extents) in row-major order,
// calling fn with the flat base offset (in elements) for that index, per the
// full array's strides.
func odometer(extents mdr.Dims, str []uint64, fn func(base uint64)) {
	n := len(extents)
	if n == 0 {
		return
	}
	idx := make([]uint32, n)
	for {
		var base uint64
		for d := 0; d < n; d++ {
			base += uint64(idx[d]) * str[d]
		}
		fn(base)

		d := n - 1
		for d >= 0 {
			idx[d]++
			if idx[d] < extents[d] {
				break
			}
			idx[d] = 0
			d--
		}
		if d < 0 {
			return
		}
	}
}
