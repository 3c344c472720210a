// Package refactor implements the Refactor driver (component G) and the
// metadata codec (component H): it orchestrates the decomposer,
// interleaver, bit-plane encoder, and level compressor once per level, asks
// the error estimator for per-level error tables, invokes the chunk
// orderer, and packs the result into a single byte stream.
package refactor

import (
	"math"

	"github.com/go-mdr/mdr"
	"github.com/go-mdr/mdr/bitplane"
	"github.com/go-mdr/mdr/decompose"
	"github.com/go-mdr/mdr/errormetric"
	"github.com/go-mdr/mdr/interleave"
	"github.com/go-mdr/mdr/lossless"
	"github.com/go-mdr/mdr/order"
)

// Refactor turns data (shaped per dims) into metadata plus a packed byte
// stream ordered for progressive retrieval.
func Refactor[T mdr.Float](data []T, dims mdr.Dims, opts Options) (Metadata, []byte, error) {
	log := opts.logger()

	if err := dims.Validate(); err != nil {
		return Metadata{}, nil, err
	}
	maxLevel := dims.MaxLevel()
	if maxLevel < 0 || int(opts.TargetLevel) > maxLevel {
		return Metadata{}, nil, mdr.NewError(mdr.KindInvalidArgument, "refactor.Refactor",
			mdr.Error("target level exceeds floor(log2(min(dims)))-1"))
	}
	if opts.NumPlanes == 0 || opts.NumPlanes > 64 {
		return Metadata{}, nil, mdr.NewError(mdr.KindInvalidArgument, "refactor.Refactor",
			mdr.Error("num_planes must be in [1, 64]"))
	}
	if uint64(len(data)) != dims.NumElements() {
		return Metadata{}, nil, mdr.NewError(mdr.KindInvalidArgument, "refactor.Refactor",
			mdr.Error("data length does not match dims"))
	}
	if opts.Estimator == nil {
		return Metadata{}, nil, mdr.NewError(mdr.KindInvalidArgument, "refactor.Refactor",
			mdr.Error("an error estimator is required"))
	}

	L := int(opts.TargetLevel)
	P := int(opts.NumPlanes)

	working := make([]T, len(data))
	copy(working, data)

	dec := decompose.NewHaar[T]()
	if err := dec.Decompose(working, dims, opts.TargetLevel); err != nil {
		return Metadata{}, nil, err
	}

	levelDims := mdr.LevelDims(dims, opts.TargetLevel)
	levelElems := mdr.LevelElements(levelDims)

	scheme := bitplane.SignMagnitude
	if opts.Negabinary {
		scheme = bitplane.Negabinary
	}
	enc := bitplane.NewEncoder[T](scheme)
	comp := lossless.NewCompressor(opts.Lossless)

	levelErrorBounds := make([]float64, L+1)
	levelSizes := make([][]uint32, L+1)
	stoppingIndices := make([]uint8, L+1)
	levelStreams := make([][][]byte, L+1)
	squaredPlaneErr := make([][]float64, L+1)

	for l := 0; l <= L; l++ {
		var prevDims mdr.Dims
		if l > 0 {
			prevDims = levelDims[l-1]
		}

		buf := make([]T, levelElems[l])
		interleave.Interleave(working, dims, levelDims[l], prevDims, buf)

		maxAbs := maxAbsValue(buf)
		bound := float64(maxAbs)
		if opts.Negabinary {
			bound *= 4
		}
		levelErrorBounds[l] = bound

		exp := 0
		if maxAbs != 0 {
			_, e := math.Frexp(float64(maxAbs))
			exp = e - 1
		}

		res, err := enc.Encode(buf, exp, P)
		if err != nil {
			return Metadata{}, nil, err
		}

		stopIdx, err := comp.CompressLevel(res.Streams, res.Sizes)
		if err != nil {
			return Metadata{}, nil, err
		}

		stoppingIndices[l] = stopIdx
		levelSizes[l] = res.Sizes
		levelStreams[l] = res.Streams
		squaredPlaneErr[l] = res.PlaneErr

		log.WithFields(logFields(l, levelElems[l], maxAbs, stopIdx)).Debug("encoded level")
	}

	var levelErrors [][]float64
	switch opts.Estimator.Family() {
	case errormetric.MaxError:
		mc := errormetric.MaxErrorCollector{}
		levelErrors = make([][]float64, L+1)
		for l := 0; l <= L; l++ {
			levelErrors[l] = mc.CollectLevelError(P, levelErrorBounds[l])
		}
	case errormetric.SquaredError:
		levelErrors = squaredPlaneErr
	default:
		return Metadata{}, nil, mdr.NewError(mdr.KindInvalidArgument, "refactor.Refactor",
			mdr.Error("unsupported error estimator family"))
	}

	chunkOrder, errorPerStep, err := order.Order(levelErrors, levelSizes, opts.Estimator)
	if err != nil {
		return Metadata{}, nil, err
	}

	meta := Metadata{
		Dims:             append(mdr.Dims(nil), dims...),
		LevelErrorBounds: levelErrorBounds,
		LevelSizes:       levelSizes,
		StoppingIndices:  stoppingIndices,
		Negabinary:       opts.Negabinary,
		ChunkOrder:       chunkOrder,
		ErrorPerStep:     errorPerStep,
	}

	consumed := make([]int, L+1)
	var totalSize uint64
	for _, lev := range chunkOrder {
		j := consumed[lev]
		totalSize += uint64(levelSizes[lev][j])
		consumed[lev]++
	}
	if totalSize > 1<<32-1 {
		return Metadata{}, nil, mdr.NewError(mdr.KindResource, "refactor.Refactor",
			mdr.Error("packed stream exceeds 2^32-1 bytes"))
	}

	packed := make([]byte, 0, totalSize)
	for i := range consumed {
		consumed[i] = 0
	}
	for _, lev := range chunkOrder {
		j := consumed[lev]
		packed = append(packed, levelStreams[lev][j]...)
		consumed[lev]++
	}

	log.WithFields(logFields(-1, uint64(len(packed)), T(0), 0)).
		WithField("chunks", len(chunkOrder)).Info("refactor complete")

	return meta, packed, nil
}

// RefactorToBuffer implements the two-phase §6.1 API: it refactors data and
// writes metadata followed by the packed stream into out, returning the
// total size written, or a Resource error if out is too small.
func RefactorToBuffer[T mdr.Float](data []T, dims mdr.Dims, opts Options, elemBytes int, out []byte) (int, error) {
	meta, packed, err := Refactor(data, dims, opts)
	if err != nil {
		return 0, err
	}
	metaBytes, err := meta.MarshalBinary(elemBytes)
	if err != nil {
		return 0, err
	}
	total := len(metaBytes) + len(packed)
	if len(out) < total {
		return 0, mdr.NewError(mdr.KindResource, "refactor.RefactorToBuffer",
			mdr.Error("output buffer too small"))
	}
	n := copy(out, metaBytes)
	n += copy(out[n:], packed)
	return n, nil
}

func maxAbsValue[T mdr.Float](v []T) T {
	var m T
	for _, x := range v {
		a := x
		if a < 0 {
			a = -a
		}
		if a > m {
			m = a
		}
	}
	return m
}

func logFields[T mdr.Float](level int, elements uint64, maxAbs T, stopIdx uint8) map[string]any {
	f := map[string]any{
		"elements": elements,
	}
	if level >= 0 {
		f["level"] = level
		f["max_abs"] = float64(maxAbs)
		f["stopping_index"] = stopIdx
	} else {
		f["packed_size"] = elements
	}
	return f
}
