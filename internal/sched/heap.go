package sched

import (
	"github.com/emirpasic/gods/trees/binaryheap"
)

// pq is a priority queue of *Task backed by a gods binary heap, ordered by
// taskComparator (sortIndex, then id). Both the ready queue and the
// pending queue are instances of pq; they differ only in what each task's
// sortIndex means while it resides there (expirationTime vs startTime).
//
// Arbitrary-position removal is intentionally not exposed: cancellation is
// handled by nulling a task's callback and skipping it lazily when it
// reaches the head (see Scheduler.advanceTimers and the work loop).
type pq struct {
	heap *binaryheap.Heap
}

func newPQ(initialCapacity int) *pq {
	h := binaryheap.NewWith(taskComparator)
	_ = initialCapacity // gods' heap grows its backing slice itself; hint kept for config symmetry.
	return &pq{heap: h}
}

func (q *pq) push(t *Task) {
	t.queued = true
	q.heap.Push(t)
}

// peek returns the minimum task under the ordering relation without
// removing it, or nil if the queue is empty.
func (q *pq) peek() *Task {
	v, ok := q.heap.Peek()
	if !ok {
		return nil
	}
	return v.(*Task)
}

// pop removes and returns the minimum task, or nil if the queue is empty.
func (q *pq) pop() *Task {
	v, ok := q.heap.Pop()
	if !ok {
		return nil
	}
	t := v.(*Task)
	t.queued = false
	return t
}

func (q *pq) empty() bool { return q.heap.Empty() }

func (q *pq) size() int { return q.heap.Size() }
