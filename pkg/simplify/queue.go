package simplify

import (
	"container/heap"

	"github.com/Sumatoshi-tech/contourfold/pkg/fold"
)

type leafEntry struct {
	leaf        fold.NodeFold
	persistence float64
	seq         int
}

// priority is higher for lower persistence.
func (e leafEntry) priority() float64 {
	return 1 / (e.persistence + 1)
}

// leafQueue is a max-heap on priority; equal priorities pop in push order.
type leafQueue struct {
	entries []leafEntry
	seq     int
}

func (q *leafQueue) Len() int { return len(q.entries) }

func (q *leafQueue) Less(i, j int) bool {
	a, b := q.entries[i], q.entries[j]
	if a.priority() != b.priority() {
		return a.priority() > b.priority()
	}

	return a.seq < b.seq
}

func (q *leafQueue) Swap(i, j int) { q.entries[i], q.entries[j] = q.entries[j], q.entries[i] }

func (q *leafQueue) Push(x any) { q.entries = append(q.entries, x.(leafEntry)) }

func (q *leafQueue) Pop() any {
	n := len(q.entries)
	entry := q.entries[n-1]
	q.entries = q.entries[:n-1]

	return entry
}

func (q *leafQueue) push(leaf fold.NodeFold, persistence float64) {
	heap.Push(q, leafEntry{leaf: leaf, persistence: persistence, seq: q.seq})
	q.seq++
}
