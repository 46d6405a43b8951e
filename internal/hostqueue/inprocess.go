package hostqueue

import (
	"context"
	"sync"

	"github.com/emirpasic/gods/trees/binaryheap"
)

// InProcessQueue is a minimal reference HostTaskQueue: a single dispatcher
// goroutine draining a priority queue ordered by (priority, sequence). It
// exists so the alternate transport is runnable and testable without a
// real browser/host queue behind it; any real host implementation need
// only satisfy HostTaskQueue.
type InProcessQueue struct {
	mu   sync.Mutex
	heap *binaryheap.Heap
	seq  uint64
	wake chan struct{}
	stop chan struct{}
	once sync.Once
}

type inprocEntry struct {
	priority HostPriority
	seq      uint64
	ctx      context.Context
	fn       func(context.Context) error
}

func inprocComparator(x, y any) int {
	a, b := x.(*inprocEntry), y.(*inprocEntry)
	switch {
	case a.priority != b.priority:
		if a.priority < b.priority {
			return -1
		}
		return 1
	case a.seq != b.seq:
		if a.seq < b.seq {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// NewInProcessQueue creates an InProcessQueue and starts its dispatcher
// goroutine.
func NewInProcessQueue() *InProcessQueue {
	q := &InProcessQueue{
		heap: binaryheap.NewWith(inprocComparator),
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *InProcessQueue) run() {
	for {
		select {
		case <-q.wake:
			q.drainOnce()
		case <-q.stop:
			return
		}
	}
}

func (q *InProcessQueue) drainOnce() {
	for {
		q.mu.Lock()
		v, ok := q.heap.Pop()
		q.mu.Unlock()
		if !ok {
			return
		}
		e := v.(*inprocEntry)
		if e.ctx.Err() != nil {
			continue
		}
		_ = e.fn(e.ctx)
	}
}

// PostTask implements HostTaskQueue.
func (q *InProcessQueue) PostTask(ctx context.Context, priority HostPriority, fn func(context.Context) error) {
	q.mu.Lock()
	q.seq++
	e := &inprocEntry{priority: priority, seq: q.seq, ctx: ctx, fn: fn}
	q.heap.Push(e)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Close stops the dispatcher goroutine.
func (q *InProcessQueue) Close() {
	q.once.Do(func() { close(q.stop) })
}
