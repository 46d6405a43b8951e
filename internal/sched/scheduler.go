// internal/sched/scheduler.go

package sched

import (
	"sync"

	"github.com/rs/zerolog"
)

// Scheduler is the cooperative, priority-based task scheduler described by
// the core: a ready queue ordered by deadline, a pending queue ordered by
// start time, a work loop that drains the ready queue under a yield
// budget, and a host adapter that turns "more work" into a host-scheduled
// continuation.
type Scheduler struct {
	mu sync.Mutex

	cfg   Config
	clock Clock
	host  HostAdapter

	ready   *pq
	pending *pq

	nextID TaskID

	currentPriority Priority
	performingWork  bool
	paused          bool

	hostCallbackScheduled bool
	hostTimeoutScheduled  bool

	sliceStartMS              int64
	frameIntervalMS           int64
	continuousInputIntervalMS int64
	maxIntervalMS             int64
	paintRequested            bool
	inputPending              InputPendingHint

	logger zerolog.Logger
	sinks  []EventSink

	closed bool
}

// New creates a Scheduler with the given configuration and options. The
// scheduler's host adapter starts its background dispatcher goroutine
// immediately; call Close when done to release it.
func New(cfg Config, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:                       cfg,
		ready:                     newPQ(cfg.HeapInitialCapacity),
		pending:                   newPQ(cfg.HeapInitialCapacity),
		currentPriority:           Normal,
		frameIntervalMS:           cfg.FrameIntervalMS,
		continuousInputIntervalMS: cfg.ContinuousInputIntervalMS,
		maxIntervalMS:             cfg.MaxIntervalMS,
		logger:                    zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.clock == nil {
		s.clock = NewSystemClock()
	}
	if s.host == nil {
		s.host = NewHostAdapter(s.clock, nil)
	}

	return s
}

// Close releases the scheduler's host adapter. The scheduler must not be
// used afterward.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.host.Close()
}

// Now returns the scheduler's current time, in milliseconds.
func (s *Scheduler) Now() int64 { return s.clock.NowMS() }

// CurrentPriorityLevel returns the ambient priority level in effect.
func (s *Scheduler) CurrentPriorityLevel() Priority {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPriority
}

// ScheduleOptions configures a single Schedule call.
type ScheduleOptions struct {
	// DelayMS, if positive, defers the task's start time by that many
	// milliseconds. Any other value (including the zero value) starts the
	// task immediately.
	DelayMS int64
}

// Schedule constructs a Task under the given priority and callback and
// inserts it into the pending queue (if delayed) or the ready queue
// (otherwise), arranging for the host to be notified as needed. It
// returns an opaque handle usable to cancel the task later.
func (s *Scheduler) Schedule(priority Priority, cb Callback, opts ...ScheduleOptions) *TaskHandle {
	priority = normalizePriority(priority)

	var delay int64
	if len(opts) > 0 {
		delay = opts[0].DelayMS
	}
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	now := s.clock.NowMS()
	startTime := now
	if delay > 0 {
		startTime = now + delay
	}

	id := s.nextID
	s.nextID++

	t := &Task{
		id:             id,
		callback:       cb,
		priority:       priority,
		startTime:      startTime,
		expirationTime: startTime + s.cfg.timeoutFor(priority),
	}

	var armDelay int64 = -1
	var needsContinuation bool

	if startTime > now {
		t.sortIndex = startTime
		s.pending.push(t)
		if s.ready.empty() && s.pending.peek() == t {
			armDelay = startTime - now
		}
	} else {
		t.sortIndex = t.expirationTime
		s.ready.push(t)
		if !s.hostCallbackScheduled && !s.performingWork {
			needsContinuation = true
			s.hostCallbackScheduled = true
		}
	}
	s.mu.Unlock()

	if armDelay >= 0 {
		s.armTimer(armDelay)
	}
	if needsContinuation {
		s.host.RequestCallback(s.performWork)
	}

	s.emit(Event{Kind: EventEnqueue, TaskID: id, Priority: priority, NowMS: now})

	return &TaskHandle{task: t, sched: s}
}

// Cancel nulls the task's callback. See TaskHandle.Cancel.
func (s *Scheduler) Cancel(h *TaskHandle) {
	s.mu.Lock()
	h.task.callback = nil
	h.task.queued = false
	s.mu.Unlock()
}

// Pause sets the pause latch. While set, the work loop exits at the top of
// its drain step without consuming any task.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

// Resume clears the pause latch and, if no continuation is outstanding and
// no work is currently running, requests one.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	s.paused = false
	needs := !s.hostCallbackScheduled && !s.performingWork
	if needs {
		s.hostCallbackScheduled = true
	}
	s.mu.Unlock()

	if needs {
		s.host.RequestCallback(s.performWork)
	}
}

// FirstCallbackNode returns a handle to the ready queue's head without
// removing it, or nil if the ready queue is empty.
func (s *Scheduler) FirstCallbackNode() *TaskHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.ready.peek()
	if t == nil {
		return nil
	}
	return &TaskHandle{task: t, sched: s}
}

// requestHostCallback requests a continuation unless one is already
// outstanding.
func (s *Scheduler) requestHostCallback() {
	s.mu.Lock()
	if s.hostCallbackScheduled || s.closed {
		s.mu.Unlock()
		return
	}
	s.hostCallbackScheduled = true
	s.mu.Unlock()
	s.host.RequestCallback(s.performWork)
}

// armTimer arms a host timeout for delayMS, targeting the pending queue's
// current head.
func (s *Scheduler) armTimer(delayMS int64) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.hostTimeoutScheduled = true
	now := s.clock.NowMS()
	s.mu.Unlock()
	s.host.RequestTimeout(s.onTimeout, delayMS)
	s.emit(Event{Kind: EventTimerArmed, DelayMS: delayMS, NowMS: now})
}

func (s *Scheduler) onTimeout() {
	s.mu.Lock()
	s.hostTimeoutScheduled = false
	s.mu.Unlock()
	s.requestHostCallback()
}

// advanceTimers pops cancelled pending tasks and promotes matured ones
// (startTime <= now) into the ready queue, rewriting sortIndex to
// expirationTime exactly once on migration.
func (s *Scheduler) advanceTimers(now int64) {
	s.mu.Lock()
	var started []*Task
	for {
		head := s.pending.peek()
		if head == nil {
			break
		}
		if head.cancelled() {
			s.pending.pop()
			continue
		}
		if head.startTime > now {
			break
		}
		s.pending.pop()
		head.sortIndex = head.expirationTime
		s.ready.push(head)
		started = append(started, head)
	}
	s.mu.Unlock()

	for _, t := range started {
		s.emit(Event{Kind: EventTaskStarted, TaskID: t.id, Priority: t.priority, NowMS: now})
	}
}

// dispatch invokes cb and recovers a panic just long enough to clear the
// task's bookkeeping and emit an Errored event, then re-panics so the
// exception keeps propagating out of the work loop, per the spec's error
// handling design. The host adapter (see hostadapter.go) is what ultimately
// recovers it, re-arms a continuation, and surfaces it as unhandled.
func (s *Scheduler) dispatch(t *Task, cb Callback, didTimeout bool, now int64) Callback {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			t.queued = false
			s.mu.Unlock()
			s.emit(Event{Kind: EventErrored, TaskID: t.id, Priority: t.priority, NowMS: now, Err: r})
			panic(r)
		}
	}()
	return cb(didTimeout)
}

// performWork is the work loop, entered by the host adapter with
// (hasTimeRemaining, initialTime). It promotes matured pending tasks,
// drains the ready queue honoring the yield predicate, handles
// continuations, and reports whether the host should invoke it again.
func (s *Scheduler) performWork(hasTimeRemaining bool, initialTime int64) (hasMoreWork bool) {
	s.mu.Lock()
	s.hostCallbackScheduled = false
	if s.hostTimeoutScheduled {
		s.host.CancelTimeout()
		s.hostTimeoutScheduled = false
	}
	s.performingWork = true
	prevPriority := s.currentPriority
	s.sliceStartMS = initialTime
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.currentPriority = prevPriority
		s.performingWork = false
		s.mu.Unlock()
		s.clearPaintRequested()
	}()

	now := initialTime
	s.advanceTimers(now)

	for {
		s.mu.Lock()
		head := s.ready.peek()
		if head == nil || s.paused {
			s.mu.Unlock()
			break
		}

		if head.cancelled() {
			s.ready.pop()
			s.mu.Unlock()
			now = s.clock.NowMS()
			s.advanceTimers(now)
			continue
		}

		if head.expirationTime > now && (!hasTimeRemaining || s.shouldYieldToHostLocked(now)) {
			s.mu.Unlock()
			break
		}

		// Pop before running cb: a reentrant Schedule/Cancel call made from
		// within cb must see a ready queue that no longer counts this task,
		// so it can't be double-inserted when the continuation is pushed
		// back below.
		s.ready.pop()
		cb := head.callback
		head.callback = nil
		s.currentPriority = head.priority
		didTimeout := head.expirationTime <= now
		s.mu.Unlock()

		s.emit(Event{Kind: EventDispatch, TaskID: head.id, Priority: head.priority, NowMS: now})

		cont := s.dispatch(head, cb, didTimeout, now)

		now = s.clock.NowMS()

		s.mu.Lock()
		if cont != nil {
			head.callback = cont
			s.ready.push(head)
		}
		s.mu.Unlock()

		if cont != nil {
			s.emit(Event{Kind: EventContinuation, TaskID: head.id, Priority: head.priority, NowMS: now})
		} else {
			s.emit(Event{Kind: EventFinish, TaskID: head.id, Priority: head.priority, NowMS: now})
		}

		s.advanceTimers(now)
	}

	s.mu.Lock()
	readyNonEmpty := !s.ready.empty()
	var armDelay int64 = -1
	if !readyNonEmpty {
		if ph := s.pending.peek(); ph != nil {
			armDelay = ph.startTime - now
			if armDelay < 0 {
				armDelay = 0
			}
		}
	}
	s.mu.Unlock()

	if readyNonEmpty {
		return true
	}
	if armDelay >= 0 {
		s.armTimer(armDelay)
	}
	return false
}
