package mdr

import (
	"golang.org/x/exp/constraints"
)

// Float is the element type every component in this module is generic over:
// single or double precision floating point, per the data model's "Array"
// entity.
type Float = constraints.Float

// Dims is the shape of an N-dimensional array, coarsest-to-finest ordering
// matching the caller's own axis order. n = len(Dims) must be <= 255.
type Dims []uint32

// NumElements returns the total element count, i.e. the product of all
// dimensions. Callers must ensure this fits in 32 bits; NumElements itself
// computes in 64 bits to detect the overflow.
func (d Dims) NumElements() uint64 {
	n := uint64(1)
	for _, v := range d {
		n *= uint64(v)
	}
	return n
}

// Min returns the smallest dimension, used to bound the level count.
func (d Dims) Min() uint32 {
	if len(d) == 0 {
		return 0
	}
	m := d[0]
	for _, v := range d[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// MaxLevel returns floor(log2(min(dims))) - 1, the deepest level index a
// target_level argument may legally name.
func (d Dims) MaxLevel() int {
	m := d.Min()
	if m == 0 {
		return -1
	}
	exp := 0
	for (uint32(1) << uint(exp+1)) <= m {
		exp++
	}
	return exp - 1
}

// Validate checks the structural invariants on Dims: 1 <= n <= 255, every
// dimension positive, and the element count fits in 32 bits.
func (d Dims) Validate() error {
	if len(d) == 0 {
		return newError(KindInvalidArgument, "Dims.Validate", Error("dims must not be empty"))
	}
	if len(d) > 255 {
		return newError(KindInvalidArgument, "Dims.Validate", Error("too many dimensions (max 255)"))
	}
	for _, v := range d {
		if v == 0 {
			return newError(KindInvalidArgument, "Dims.Validate", Error("dimension must be positive"))
		}
	}
	if d.NumElements() > 1<<32-1 {
		return newError(KindResource, "Dims.Validate", Error("element count exceeds 32 bits"))
	}
	return nil
}
