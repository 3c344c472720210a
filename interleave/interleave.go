// Package interleave extracts the coefficients belonging to a single
// resolution level out of the working buffer the Decomposer produced, into a
// contiguous buffer the bit-plane encoder can operate on — and scatters them
// back during reconstruction.
package interleave

import (
	"github.com/go-mdr/mdr"
)

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

// inPrevRegion reports whether idx (coordinates in [0, levelDims)) also
// lies strictly inside prevDims in every axis — i.e. whether this position
// was already claimed by a coarser level.
func inPrevRegion(idx []uint32, prevDims mdr.Dims) bool {
	if len(prevDims) == 0 {
		return false
	}
	for d, v := range idx {
		if v >= prevDims[d] {
			return false
		}
	}
	return true
}

// walkLevel calls fn with the flat offset (into the full dims-shaped buffer)
// of every coordinate that belongs to level l: inside levelDims but outside
// prevDims (levelDims of level l-1, or nil/zero for level 0).
func walkLevel(dims, levelDims, prevDims mdr.Dims, fn func(offset uint64)) {
	str := strides(dims)
	n := len(levelDims)
	if n == 0 {
		return
	}
	idx := make([]uint32, n)
	for {
		if !inPrevRegion(idx, prevDims) {
			var off uint64
			for d := 0; d < n; d++ {
				off += uint64(idx[d]) * str[d]
			}
			fn(off)
		}

		d := n - 1
		for d >= 0 {
			idx[d]++
			if idx[d] < levelDims[d] {
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

// Interleave gathers the E_l coefficients of one level out of data (shaped
// per dims) into out, in row-major order over levelDims with any position
// also covered by prevDims skipped. len(out) must equal the level's element
// count (LevelElements[l] from mdr.LevelElements).
func Interleave[T mdr.Float](data []T, dims, levelDims, prevDims mdr.Dims, out []T) {
	i := 0
	walkLevel(dims, levelDims, prevDims, func(offset uint64) {
		out[i] = data[offset]
		i++
	})
}

// Deinterleave is the inverse of Interleave: it scatters in (one level's
// coefficients) back into data at the positions Interleave would have
// gathered them from.
func Deinterleave[T mdr.Float](data []T, dims, levelDims, prevDims mdr.Dims, in []T) {
	i := 0
	walkLevel(dims, levelDims, prevDims, func(offset uint64) {
		data[offset] = in[i]
		i++
	})
}
