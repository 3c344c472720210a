// Package order implements the global chunk-ordering scheduler: a
// priority-driven greedy pass that maximizes error-decrease-per-byte across
// heterogeneous levels, with a mandatory initial pass that guarantees every
// level contributes at least one chunk before any level contributes a
// second.
package order

import (
	"container/heap"

	"gonum.org/v1/gonum/floats"

	"github.com/go-mdr/mdr"
	"github.com/go-mdr/mdr/errormetric"
)

// Order computes the global chunk order and its accompanying cumulative
// error table. levelErrors[l] must have length numPlanes+1 and be monotone
// non-increasing; sizes[l] must have length numPlanes.
func Order(levelErrors [][]float64, sizes [][]uint32, est errormetric.Estimator) (order []uint8, errorPerStep []float64, err error) {
	numLevels := len(levelErrors)
	if len(sizes) != numLevels {
		return nil, nil, mdr.NewError(mdr.KindInvalidArgument, "order.Order", mdr.Error("levelErrors/sizes length mismatch"))
	}
	for l := 0; l < numLevels; l++ {
		if len(levelErrors[l]) != len(sizes[l])+1 {
			return nil, nil, mdr.NewError(mdr.KindInvalidArgument, "order.Order", mdr.Error("levelErrors[l] must have len(sizes[l])+1 entries"))
		}
	}

	idx := make([]int, numLevels)

	initial := make([]float64, numLevels)
	for l := 0; l < numLevels; l++ {
		initial[l] = est.Estimate(levelErrors[l][0], l)
	}
	total := floats.Sum(initial)
	// current[l] is level l's contribution after the chunks consumed so far.
	// The total is re-summed from it at every step, so it reaches exactly zero
	// once every level's residual is zero instead of carrying rounding residue.
	current := append([]float64(nil), initial...)

	totalChunks := 0
	for _, s := range sizes {
		totalChunks += len(s)
	}
	order = make([]uint8, 0, totalChunks)
	errorPerStep = make([]float64, 0, totalChunks)

	h := &chunkHeap{}
	heap.Init(h)
	seq := 0

	// Initial pass: unconditionally emit chunk (l, 0) for every level, per
	// the bootstrap requirement — every level must contribute before any
	// level is allowed a second chunk.
	for l := 0; l < numLevels; l++ {
		if idx[l] != 0 {
			continue // defensive; idx[l] is always 0 here
		}
		j := idx[l]
		current[l] = est.Estimate(levelErrors[l][j+1], l)
		total = floats.Sum(current)
		idx[l]++
		order = append(order, uint8(l))
		errorPerStep = append(errorPerStep, total)

		if idx[l] != len(sizes[l]) {
			gain := est.EstimateGain(total, levelErrors[l][idx[l]], levelErrors[l][idx[l]+1], l)
			heap.Push(h, chunkItem{key: gain / float64(sizes[l][idx[l]]), level: l, seq: seq})
			seq++
		}
	}

	// Greedy pass: always consume the chunk with the highest error-gain per
	// byte, ties broken in FIFO insertion order for determinism.
	for h.Len() > 0 {
		item := heap.Pop(h).(chunkItem)
		l := item.level
		j := idx[l]
		current[l] = est.Estimate(levelErrors[l][j+1], l)
		total = floats.Sum(current)
		idx[l]++
		order = append(order, uint8(l))
		errorPerStep = append(errorPerStep, total)

		if idx[l] != len(sizes[l]) {
			gain := est.EstimateGain(total, levelErrors[l][idx[l]], levelErrors[l][idx[l]+1], l)
			heap.Push(h, chunkItem{key: gain / float64(sizes[l][idx[l]]), level: l, seq: seq})
			seq++
		}
	}

	return order, errorPerStep, nil
}

type chunkItem struct {
	key   float64
	level int
	seq   int // insertion sequence, breaks exact-key ties FIFO
}

// chunkHeap is a max-heap on key, with lower seq (earlier insertion)
// winning ties.
type chunkHeap []chunkItem

func (h chunkHeap) Len() int { return len(h) }
func (h chunkHeap) Less(i, j int) bool {
	if h[i].key != h[j].key {
		return h[i].key > h[j].key
	}
	return h[i].seq < h[j].seq
}
func (h chunkHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *chunkHeap) Push(x any)   { *h = append(*h, x.(chunkItem)) }
func (h *chunkHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
