// Package bitplane implements the BitplaneEncoder contract: encoding a
// level's coefficients into N independently decodable byte streams, one per
// bit-plane, under either of two coding schemes.
package bitplane

import (
	"math"

	"github.com/go-mdr/mdr"
)

// Scheme selects the bit-plane coding scheme.
type Scheme int

const (
	// SignMagnitude dedicates plane 0 to sign bits; remaining planes carry
	// magnitude bits from high to low significance.
	SignMagnitude Scheme = iota
	// Negabinary pre-converts each coefficient to base -2, eliminating the
	// separate sign plane at the cost of up to 4x worst-case magnitude.
	Negabinary
)

// Result is the output of Encode: the per-plane byte streams, their sizes,
// and the squared-error progression an encoder using the internal
// accumulation method (the SquaredError estimator family) reads directly.
type Result struct {
	Streams  [][]byte
	Sizes    []uint32
	PlaneErr []float64 // length numPlanes+1, monotone non-increasing, [numPlanes] == 0
}

// Encoder encodes and decodes one level's coefficients under a fixed
// scheme.
type Encoder[T mdr.Float] struct {
	Scheme Scheme
}

// NewEncoder constructs an Encoder for the given scheme.
func NewEncoder[T mdr.Float](scheme Scheme) *Encoder[T] {
	return &Encoder[T]{Scheme: scheme}
}

// Encode produces numPlanes byte streams for coefs, where exp is chosen such
// that max|coefs| is in [2^exp, 2^(exp+1)) (per the driver's frexp step).
func (e *Encoder[T]) Encode(coefs []T, exp int, numPlanes int) (Result, error) {
	if numPlanes <= 0 || numPlanes > 64 {
		return Result{}, mdr.NewError(mdr.KindInvalidArgument, "bitplane.Encode", mdr.Error("numPlanes out of range"))
	}
	switch e.Scheme {
	case SignMagnitude:
		return encodeSignMagnitude(coefs, exp, numPlanes)
	case Negabinary:
		return encodeNegabinary(coefs, exp, numPlanes)
	default:
		return Result{}, mdr.NewError(mdr.KindInvalidArgument, "bitplane.Encode", mdr.Error("unknown scheme"))
	}
}

// Decode reconstructs numElements coefficients from the first len(streams)
// planes (planes beyond what was retrieved should simply be passed as nil or
// short slices; missing bits read as zero).
func (e *Encoder[T]) Decode(streams [][]byte, exp int, numPlanes int, numElements int) ([]T, error) {
	switch e.Scheme {
	case SignMagnitude:
		return decodeSignMagnitude[T](streams, exp, numPlanes, numElements)
	case Negabinary:
		return decodeNegabinary[T](streams, exp, numPlanes, numElements)
	default:
		return nil, mdr.NewError(mdr.KindInvalidArgument, "bitplane.Decode", mdr.Error("unknown scheme"))
	}
}

func encodeSignMagnitude[T mdr.Float](coefs []T, exp int, numPlanes int) (Result, error) {
	n := len(coefs)
	magBits := numPlanes - 1
	scale := math.Ldexp(1, exp-magBits+2)
	maxMag := uint64(1)<<uint(magBits) - 1

	signs := make([]bool, n)
	mags := make([]uint64, n)
	for i, c := range coefs {
		v := float64(c)
		signs[i] = v < 0
		m := math.Abs(v)
		var im uint64
		if magBits > 0 {
			q := math.Round(m / scale)
			if q < 0 {
				q = 0
			}
			if q > float64(maxMag) {
				q = float64(maxMag)
			}
			im = uint64(q)
		}
		mags[i] = im
	}

	streams := make([][]byte, numPlanes)
	sizes := make([]uint32, numPlanes)

	bw := &bitWriter{}
	for _, s := range signs {
		b := uint8(0)
		if s {
			b = 1
		}
		bw.writeBit(b)
	}
	streams[0] = bw.bytes()
	sizes[0] = uint32(len(streams[0]))

	for j := 1; j < numPlanes; j++ {
		shift := uint(magBits - j)
		bw := &bitWriter{}
		for _, m := range mags {
			bw.writeBit(uint8((m >> shift) & 1))
		}
		streams[j] = bw.bytes()
		sizes[j] = uint32(len(streams[j]))
	}

	planeErr := make([]float64, numPlanes+1)
	for j := 0; j <= numPlanes; j++ {
		if j == numPlanes {
			planeErr[j] = 0
			continue
		}
		k := 0
		if j >= 1 {
			k = j - 1
		}
		var sum float64
		for i, c := range coefs {
			var recon float64
			if j >= 1 {
				if magBits > 0 && k > 0 {
					shift := uint(magBits - k)
					known := (mags[i] >> shift) << shift
					recon = float64(known) * scale
				}
				if signs[i] {
					recon = -recon
				}
			}
			d := float64(c) - recon
			sum += d * d
		}
		planeErr[j] = sum
	}

	return Result{Streams: streams, Sizes: sizes, PlaneErr: planeErr}, nil
}

func decodeSignMagnitude[T mdr.Float](streams [][]byte, exp int, numPlanes int, numElements int) ([]T, error) {
	magBits := numPlanes - 1
	scale := math.Ldexp(1, exp-magBits+2)

	var signStream []byte
	if len(streams) > 0 {
		signStream = streams[0]
	}
	sr := &bitReader{buf: signStream}

	mags := make([]uint64, numElements)
	for j := 1; j < numPlanes; j++ {
		var s []byte
		if j < len(streams) {
			s = streams[j]
		}
		r := &bitReader{buf: s}
		shift := uint(magBits - j)
		for i := 0; i < numElements; i++ {
			bit := uint64(r.readBit())
			mags[i] |= bit << shift
		}
	}

	out := make([]T, numElements)
	for i := 0; i < numElements; i++ {
		v := float64(mags[i]) * scale
		if sr.readBit() == 1 {
			v = -v
		}
		out[i] = T(v)
	}
	return out, nil
}

func encodeNegabinary[T mdr.Float](coefs []T, exp int, numPlanes int) (Result, error) {
	n := len(coefs)
	// Negabinary has no separate sign plane, so all numPlanes digits carry
	// magnitude+sign jointly; reserve two extra bits of headroom for the 4x
	// worst-case growth the scheme incurs.
	scale := math.Ldexp(1, exp-numPlanes+3)

	ints := make([]int64, n)
	digitsAll := make([][]byte, n)
	for i, c := range coefs {
		v := math.Round(float64(c) / scale)
		ints[i] = int64(v)
		digitsAll[i] = toNegabinary(ints[i], numPlanes)
	}

	streams := make([][]byte, numPlanes)
	sizes := make([]uint32, numPlanes)
	for j := 0; j < numPlanes; j++ {
		bw := &bitWriter{}
		for i := 0; i < n; i++ {
			bw.writeBit(digitsAll[i][j])
		}
		streams[j] = bw.bytes()
		sizes[j] = uint32(len(streams[j]))
	}

	planeErr := make([]float64, numPlanes+1)
	for j := 0; j <= numPlanes; j++ {
		if j == numPlanes {
			planeErr[j] = 0
			continue
		}
		var sum float64
		for i, c := range coefs {
			known := fromNegabinaryPrefix(digitsAll[i], j)
			recon := float64(known) * scale
			d := float64(c) - recon
			sum += d * d
		}
		planeErr[j] = sum
	}
	// A truncated negabinary prefix can overshoot, so the raw prefix error is
	// not monotone; report each entry as the largest error over this and all
	// later planes, a non-increasing upper bound.
	for j := numPlanes - 1; j >= 0; j-- {
		if planeErr[j] < planeErr[j+1] {
			planeErr[j] = planeErr[j+1]
		}
	}

	return Result{Streams: streams, Sizes: sizes, PlaneErr: planeErr}, nil
}

func decodeNegabinary[T mdr.Float](streams [][]byte, exp int, numPlanes int, numElements int) ([]T, error) {
	scale := math.Ldexp(1, exp-numPlanes+3)
	digits := make([][]byte, numElements)
	for i := range digits {
		digits[i] = make([]byte, numPlanes)
	}
	for j := 0; j < numPlanes; j++ {
		var s []byte
		if j < len(streams) {
			s = streams[j]
		}
		r := &bitReader{buf: s}
		for i := 0; i < numElements; i++ {
			digits[i][j] = r.readBit()
		}
	}
	out := make([]T, numElements)
	for i := 0; i < numElements; i++ {
		v := fromNegabinaryPrefix(digits[i], numPlanes)
		out[i] = T(float64(v) * scale)
	}
	return out, nil
}

// toNegabinary converts v into nbits base -2 digits, most significant first.
func toNegabinary(v int64, nbits int) []byte {
	digits := make([]byte, 0, nbits+2)
	n := v
	for n != 0 {
		rem := n % -2
		n /= -2
		if rem < 0 {
			rem += 2
			n++
		}
		digits = append(digits, byte(rem))
	}
	out := make([]byte, nbits)
	for i := 0; i < nbits && i < len(digits); i++ {
		out[nbits-1-i] = digits[i]
	}
	return out
}

// fromNegabinaryPrefix reconstructs the integer value of the first k digits
// of a most-significant-first negabinary digit sequence, treating the
// remaining (unknown) digits as zero.
func fromNegabinaryPrefix(digits []byte, k int) int64 {
	var v int64
	n := len(digits)
	for i := 0; i < k; i++ {
		if digits[i] != 0 {
			v += negabinaryWeight(n - 1 - i)
		}
	}
	return v
}

// negabinaryWeight returns (-2)^e.
func negabinaryWeight(e int) int64 {
	w := int64(1)
	for i := 0; i < e; i++ {
		w *= -2
	}
	return w
}
