package sched

import (
	"sync"
	"time"
)

// HostAdapter is the capability the scheduler depends on to bridge its
// "I have more work" signal into the host's own scheduling primitives: a
// zero-delay self-message (macrotask) and a cancellable timer. The
// scheduler never depends on a concrete implementation, only on this
// interface, so alternate hosts can supply their own.
type HostAdapter interface {
	// RequestCallback stores work as the pending continuation and
	// arranges for it to run on a future turn of the host's event loop.
	// At most one request may be outstanding; the caller (Scheduler) is
	// responsible for not calling this while one is already pending.
	RequestCallback(work func(hasTimeRemaining bool, now int64) bool)

	// RequestTimeout arranges for fn to run after delayMS milliseconds.
	// Any previously armed timeout is superseded.
	RequestTimeout(fn func(), delayMS int64)

	// CancelTimeout cancels any outstanding timeout armed via
	// RequestTimeout. It is a no-op if none is outstanding.
	CancelTimeout()

	// Close releases the adapter's background resources. A closed
	// adapter rejects further RequestCallback/RequestTimeout calls.
	Close()
}

// channelHostAdapter is the default HostAdapter, implemented over a single
// dispatcher goroutine and a buffered wake channel. The channel receive is
// the macrotask boundary: every activation of work fully returns control
// to the Go runtime's scheduler before the next one begins, exactly the
// "yields fully to the host between activations" semantics the spec
// requires of the self-message primitive.
type channelHostAdapter struct {
	clock Clock

	mu               sync.Mutex
	work             func(hasTimeRemaining bool, now int64) bool
	timer            *time.Timer
	closed           bool
	onUnhandledError func(any)

	wake    chan struct{}
	closeCh chan struct{}
	once    sync.Once
}

// NewHostAdapter builds the default HostAdapter. onUnhandledError is
// invoked on the dispatcher goroutine whenever a work callback panics, so
// it must not block; pass nil to use the default behavior, which logs
// nothing itself (the scheduler already emits an Errored event) and
// re-raises the panic in a fresh goroutine so it still surfaces as an
// unhandled error rather than being silently swallowed.
func NewHostAdapter(clock Clock, onUnhandledError func(any)) HostAdapter {
	if onUnhandledError == nil {
		onUnhandledError = defaultUnhandledErrorHandler
	}
	a := &channelHostAdapter{
		clock:            clock,
		onUnhandledError: onUnhandledError,
		wake:             make(chan struct{}, 1),
		closeCh:          make(chan struct{}),
	}
	go a.dispatchLoop()
	return a
}

func defaultUnhandledErrorHandler(r any) {
	// Rethrow on a fresh goroutine: the dispatcher loop must survive to
	// process remaining work, but the panic must still surface somewhere
	// an uncaught-panic monitor (or the runtime's default crash path)
	// will see it, mirroring a host's default unhandled-error behavior.
	go func() {
		panic(r)
	}()
}

func (a *channelHostAdapter) dispatchLoop() {
	for {
		select {
		case <-a.wake:
			a.runOnce()
		case <-a.closeCh:
			return
		}
	}
}

func (a *channelHostAdapter) runOnce() {
	a.mu.Lock()
	work := a.work
	a.mu.Unlock()
	if work == nil {
		return
	}

	var more bool
	func() {
		defer func() {
			if r := recover(); r != nil {
				// The adapter still re-arms another self-message so
				// remaining work is not lost, then surfaces the panic.
				a.postWake()
				a.onUnhandledError(r)
			}
		}()
		now := a.clock.NowMS()
		more = work(true, now)
	}()
	if more {
		a.postWake()
	}
}

func (a *channelHostAdapter) postWake() {
	select {
	case a.wake <- struct{}{}:
	default:
		// Already a wake pending; at most one outstanding by design.
	}
}

func (a *channelHostAdapter) RequestCallback(work func(hasTimeRemaining bool, now int64) bool) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.work = work
	a.mu.Unlock()
	a.postWake()
}

func (a *channelHostAdapter) RequestTimeout(fn func(), delayMS int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	if delayMS < 0 {
		delayMS = 0
	}
	a.timer = time.AfterFunc(time.Duration(delayMS)*time.Millisecond, fn)
}

func (a *channelHostAdapter) CancelTimeout() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *channelHostAdapter) Close() {
	a.once.Do(func() {
		a.mu.Lock()
		a.closed = true
		if a.timer != nil {
			a.timer.Stop()
			a.timer = nil
		}
		a.mu.Unlock()
		close(a.closeCh)
	})
}
