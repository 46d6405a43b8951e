package hostqueue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProcessQueueRunsPostedTask(t *testing.T) {
	q := NewInProcessQueue()
	defer q.Close()

	done := make(chan struct{})
	q.PostTask(context.Background(), HostUserVisible, func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for posted task to run")
	}
}

func TestInProcessQueueOrdersByPriorityThenSequence(t *testing.T) {
	q := NewInProcessQueue()
	defer q.Close()

	var mu sync.Mutex
	var order []string
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	// Post everything before the dispatcher has a chance to drain, so the
	// ordering is determined purely by the heap, not by post timing.
	q.mu.Lock()
	q.heap.Push(&inprocEntry{priority: HostBackground, seq: 1, ctx: context.Background(), fn: record("bg-1")})
	q.heap.Push(&inprocEntry{priority: HostUserBlocking, seq: 2, ctx: context.Background(), fn: record("ub-2")})
	q.heap.Push(&inprocEntry{priority: HostUserVisible, seq: 3, ctx: context.Background(), fn: record("uv-3")})
	q.heap.Push(&inprocEntry{priority: HostUserBlocking, seq: 4, ctx: context.Background(), fn: record("ub-4")})
	q.seq = 4
	q.mu.Unlock()

	done := make(chan struct{})
	q.PostTask(context.Background(), HostBackground, func(context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for queue to drain")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 4)
	assert.Equal(t, []string{"ub-2", "ub-4", "uv-3", "bg-1"}, order)
}

func TestInProcessQueueSkipsCancelledEntries(t *testing.T) {
	q := NewInProcessQueue()
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	q.mu.Lock()
	q.seq++
	q.heap.Push(&inprocEntry{priority: HostUserVisible, seq: q.seq, ctx: ctx, fn: func(context.Context) error {
		ran = true
		return nil
	}})
	q.mu.Unlock()

	done := make(chan struct{})
	q.PostTask(context.Background(), HostBackground, func(context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for queue to drain")
	}

	assert.False(t, ran, "a task whose context was cancelled before it ran must be skipped")
}

func TestInProcessQueueCloseStopsDispatcher(t *testing.T) {
	q := NewInProcessQueue()
	q.Close()
	assert.NotPanics(t, func() { q.Close() })

	ran := false
	q.PostTask(context.Background(), HostUserVisible, func(context.Context) error {
		ran = true
		return nil
	})
	time.Sleep(20 * time.Millisecond)
	assert.False(t, ran, "dispatcher must not run posted tasks after Close")
}
