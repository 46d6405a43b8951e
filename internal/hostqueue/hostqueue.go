// Package hostqueue implements the "alternative host-integrated
// transport" from the spec: a drop-in scheduler that forwards submissions
// to a host-provided prioritized task queue instead of owning its own
// ready/pending heaps. It deliberately omits the pending queue and the
// full yield-policy refinements; both are delegated to the host, per spec.
package hostqueue

import (
	"context"
	"sync"
	"time"

	"github.com/knightchaser/corosched/internal/sched"
)

// HostPriority is the three-level scheme a real host task queue exposes,
// coarser than the scheduler's own five Priority levels.
type HostPriority int

const (
	HostUserBlocking HostPriority = iota
	HostUserVisible
	HostBackground
)

// HostTaskQueue models a host's own prioritized task API: submit a
// function to run at a given priority, get back a way to cancel it before
// it runs. Implementations need not be FIFO-fair across priorities; they
// only need to run HostUserBlocking work ahead of HostUserVisible ahead of
// HostBackground.
type HostTaskQueue interface {
	PostTask(ctx context.Context, priority HostPriority, fn func(context.Context) error)
}

// translatePriority maps the five scheduler priority levels onto the
// host's three-level scheme.
func translatePriority(p sched.Priority) HostPriority {
	switch p {
	case sched.Immediate, sched.UserBlocking:
		return HostUserBlocking
	case sched.Normal:
		return HostUserVisible
	default: // Low, Idle
		return HostBackground
	}
}

// Scheduler forwards Callback submissions to a HostTaskQueue.
type Scheduler struct {
	queue HostTaskQueue
	clock sched.Clock
}

// New creates a Scheduler backed by queue. clock is used only to compute
// delay offsets and the fixed 5ms yield deadline described in the spec; it
// defaults to the system clock if nil.
func New(queue HostTaskQueue, clock sched.Clock) *Scheduler {
	if clock == nil {
		clock = sched.NewSystemClock()
	}
	return &Scheduler{queue: queue, clock: clock}
}

// Handle tracks the abort controller backing a submission. Each
// continuation re-post swaps in a fresh cancel function tied to the same
// Handle, so a single Cancel call always reaches the currently in-flight
// host task.
type Handle struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

// Cancel aborts the currently in-flight (or not-yet-run) host task for
// this submission, if any.
func (h *Handle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
	}
}

func (h *Handle) swap(cancel context.CancelFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancel = cancel
}

// Schedule submits cb to the host queue at the given priority, optionally
// delayed by delayMS. It returns a Handle that can cancel the submission
// (or, once it starts running, its currently outstanding continuation).
func (s *Scheduler) Schedule(priority sched.Priority, cb sched.Callback, delayMS int64) *Handle {
	h := &Handle{}
	s.post(h, priority, cb, delayMS)
	return h
}

// ShouldYield reports whether a callback running under this transport
// should stop and return a continuation. Unlike the full scheduler, this
// transport uses a single fixed rule: yield once 5ms have elapsed since
// the task itself started.
func (s *Scheduler) ShouldYield(taskStartMS int64) bool {
	return s.clock.NowMS() >= taskStartMS+5
}

func (s *Scheduler) post(h *Handle, priority sched.Priority, cb sched.Callback, delayMS int64) {
	ctx, cancel := context.WithCancel(context.Background())
	h.swap(cancel)

	hp := translatePriority(priority)
	targetStartMS := s.clock.NowMS() + delayMS

	s.queue.PostTask(ctx, hp, func(taskCtx context.Context) error {
		if delayMS > 0 {
			wait := targetStartMS - s.clock.NowMS()
			if wait > 0 {
				select {
				case <-time.After(time.Duration(wait) * time.Millisecond):
				case <-taskCtx.Done():
					return taskCtx.Err()
				}
			}
		}

		taskStartMS := s.clock.NowMS()
		didTimeout := s.ShouldYield(taskStartMS)

		cont := s.safeInvoke(cb, didTimeout)
		if cont != nil {
			s.post(h, priority, cont, 0)
		}
		return nil
	})
}

// safeInvoke runs cb and, if it panics, re-posts the panic inside a fresh
// host task rather than letting it surface as a plain goroutine crash or
// get swallowed into whatever error-handling path PostTask itself has —
// mirroring the core scheduler's own "rethrow, don't swallow" policy.
func (s *Scheduler) safeInvoke(cb sched.Callback, didTimeout bool) (cont sched.Callback) {
	defer func() {
		if r := recover(); r != nil {
			s.queue.PostTask(context.Background(), HostUserBlocking, func(context.Context) error {
				panic(r)
			})
		}
	}()
	return cb(didTimeout)
}
