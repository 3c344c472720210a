// Package reconstruct implements the inverse of refactor: given metadata, a
// packed byte stream, and a prefix length k, it rebuilds the best
// approximation of the original array that k chunks support, and selects
// that prefix length from a requested error tolerance.
package reconstruct

import (
	"math"
	"sort"

	"github.com/go-mdr/mdr"
	"github.com/go-mdr/mdr/bitplane"
	"github.com/go-mdr/mdr/decompose"
	"github.com/go-mdr/mdr/interleave"
	"github.com/go-mdr/mdr/lossless"
	"github.com/go-mdr/mdr/refactor"
)

// SelectPrefix returns the smallest k such that errorPerStep[k] <= tolerance,
// or len(errorPerStep)-1 (the full stream) if no such step exists.
// errorPerStep is assumed non-increasing, as Order guarantees.
func SelectPrefix(errorPerStep []float64, tolerance float64) int {
	n := len(errorPerStep)
	if n == 0 {
		return 0
	}
	k := sort.Search(n, func(i int) bool {
		return errorPerStep[i] <= tolerance
	})
	if k == n {
		return n - 1
	}
	return k
}

// Reconstruct rebuilds an array of dims from the first k+1 chunks of packed,
// per meta's chunk order, inverting exactly what Refactor did: per-level
// lossless decompression of the consumed planes, bit-plane decoding with
// unconsumed planes treated as zero, de-interleaving into a working buffer,
// and Decomposer.Recompose.
func Reconstruct[T mdr.Float](meta refactor.Metadata, packed []byte, k int, opts refactor.Options) ([]T, error) {
	if k < 0 {
		k = -1
	}
	if k >= len(meta.ChunkOrder) {
		k = len(meta.ChunkOrder) - 1
	}

	numLevels := len(meta.LevelSizes)
	consumed := make([]int, numLevels)
	for i := 0; i <= k; i++ {
		lev := int(meta.ChunkOrder[i])
		if lev < 0 || lev >= numLevels {
			return nil, mdr.NewError(mdr.KindInternalInvariant, "reconstruct.Reconstruct", mdr.Error("chunk order references unknown level"))
		}
		consumed[lev]++
	}

	streamsPerLevel := make([][][]byte, numLevels)
	offset := 0
	chunkConsumed := make([]int, numLevels)
	for i := range meta.ChunkOrder {
		lev := int(meta.ChunkOrder[i])
		j := chunkConsumed[lev]
		size := int(meta.LevelSizes[lev][j])
		if i <= k {
			if offset+size > len(packed) {
				return nil, mdr.NewError(mdr.KindBackendIO, "reconstruct.Reconstruct", mdr.Error("packed stream truncated"))
			}
			if streamsPerLevel[lev] == nil {
				streamsPerLevel[lev] = make([][]byte, len(meta.LevelSizes[lev]))
			}
			streamsPerLevel[lev][j] = packed[offset : offset+size]
			offset += size
		}
		chunkConsumed[lev]++
	}

	scheme := bitplane.SignMagnitude
	if meta.Negabinary {
		scheme = bitplane.Negabinary
	}
	enc := bitplane.NewEncoder[T](scheme)
	comp := lossless.NewCompressor(opts.Lossless)

	levelDims := mdr.LevelDims(meta.Dims, uint8(numLevels-1))
	levelElems := mdr.LevelElements(levelDims)

	working := make([]T, meta.Dims.NumElements())

	for l := 0; l < numLevels; l++ {
		numPlanes := len(meta.LevelSizes[l])
		streams := streamsPerLevel[l]
		if streams == nil {
			streams = make([][]byte, numPlanes)
		}

		// Only planes actually retrieved (consumed[l] of them, always the
		// lowest-indexed ones since a level's chunks are consumed in order)
		// can be decompressed; the rest are nil and stay that way, which
		// bitplane.Decode already treats as all-zero bits.
		stopIdx := meta.StoppingIndices[l]
		if consumed[l] < int(stopIdx) {
			stopIdx = uint8(consumed[l])
		}

		rawPlaneSize := int(bitsToBytes(levelElems[l]))
		if err := comp.DecompressLevel(streams, stopIdx, rawPlaneSize); err != nil {
			return nil, err
		}

		exp := errorBoundToExp(meta.LevelErrorBounds[l], meta.Negabinary)

		buf, err := enc.Decode(streams, exp, numPlanes, int(levelElems[l]))
		if err != nil {
			return nil, err
		}

		var prevDims mdr.Dims
		if l > 0 {
			prevDims = levelDims[l-1]
		}
		interleave.Deinterleave(working, meta.Dims, levelDims[l], prevDims, buf)
	}

	dec := decompose.NewHaar[T]()
	if err := dec.Recompose(working, meta.Dims, uint8(numLevels-1)); err != nil {
		return nil, err
	}

	return working, nil
}

// bitsToBytes converts an element count into the byte size of a one-bit-per-
// element plane stream (one bit-plane has exactly one bit per coefficient).
func bitsToBytes(numBits uint64) uint64 {
	return (numBits + 7) / 8
}

// errorBoundToExp recovers the exponent Refactor derived via math.Frexp from
// the level's stored error bound, inverting the bound/negabinary
// transformations applied in refactor.Refactor.
func errorBoundToExp(bound float64, negabinary bool) int {
	if bound == 0 {
		return 0
	}
	maxAbs := bound
	if negabinary {
		maxAbs /= 4
	}
	_, e := math.Frexp(maxAbs)
	return e - 1
}
