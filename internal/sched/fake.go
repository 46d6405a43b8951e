package sched

import "sync"

// FakeHostAdapter is a deterministic, single-threaded HostAdapter
// implementation for tests: instead of posting to a real macrotask queue
// and a real timer, it records the pending callback/timeout and lets the
// test fire them explicitly, in whatever order it chooses. Combined with
// ManualClock, this reproduces the S1-S6 scenarios from the spec exactly,
// without depending on goroutine scheduling or wall-clock timing.
type FakeHostAdapter struct {
	clock Clock

	mu         sync.Mutex
	work       func(hasTimeRemaining bool, now int64) bool
	timerFn    func()
	timerDelay int64
	hasTimer   bool
}

// NewFakeHostAdapter creates a FakeHostAdapter driven by clock.
func NewFakeHostAdapter(clock Clock) *FakeHostAdapter {
	return &FakeHostAdapter{clock: clock}
}

func (a *FakeHostAdapter) RequestCallback(work func(hasTimeRemaining bool, now int64) bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.work = work
}

func (a *FakeHostAdapter) RequestTimeout(fn func(), delayMS int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.timerFn = fn
	a.timerDelay = delayMS
	a.hasTimer = true
}

func (a *FakeHostAdapter) CancelTimeout() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.timerFn = nil
	a.hasTimer = false
}

func (a *FakeHostAdapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.work = nil
	a.timerFn = nil
	a.hasTimer = false
}

// HasPendingCallback reports whether a continuation is currently registered.
func (a *FakeHostAdapter) HasPendingCallback() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.work != nil
}

// PendingTimerDelay reports the delay of the currently armed timer, if any.
func (a *FakeHostAdapter) PendingTimerDelay() (delayMS int64, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timerDelay, a.hasTimer
}

// FireCallback invokes the currently registered continuation once, using
// the fake's clock for "now". It reports whether the scheduler asked to be
// invoked again (i.e. whether it still considers work outstanding).
func (a *FakeHostAdapter) FireCallback() bool {
	a.mu.Lock()
	work := a.work
	a.mu.Unlock()
	if work == nil {
		return false
	}

	now := a.clock.NowMS()
	more := work(true, now)

	a.mu.Lock()
	if !more {
		a.work = nil
	}
	a.mu.Unlock()
	return more
}

// FireTimer invokes the currently armed timer callback once, if any.
func (a *FakeHostAdapter) FireTimer() {
	a.mu.Lock()
	fn := a.timerFn
	a.timerFn = nil
	a.hasTimer = false
	a.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// DrainAll repeatedly fires the pending callback until the scheduler
// reports no more work outstanding.
func (a *FakeHostAdapter) DrainAll() {
	for a.HasPendingCallback() {
		if !a.FireCallback() {
			break
		}
	}
}
