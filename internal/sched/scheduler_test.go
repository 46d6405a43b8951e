package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestScheduler builds a Scheduler driven entirely by test code: a
// ManualClock nothing advances except explicit calls, and a FakeHostAdapter
// whose continuation/timer are only invoked when the test fires them. This
// is what lets the S1-S6 scenarios be expressed as plain, deterministic
// assertions instead of racing real goroutines and timers.
func newTestScheduler(clock *ManualClock) (*Scheduler, *FakeHostAdapter) {
	fake := NewFakeHostAdapter(clock)
	s := New(defaultConfig(), WithClock(clock), WithHostAdapter(fake))
	return s, fake
}

// S1: tasks submitted at equal priority run in FIFO (submission) order.
func TestEqualPriorityFIFOOrdering(t *testing.T) {
	clock := NewManualClock(0)
	s, fake := newTestScheduler(clock)
	defer s.Close()

	var order []string
	record := func(name string) Callback {
		return func(bool) Callback {
			order = append(order, name)
			return nil
		}
	}

	s.Schedule(Normal, record("A"))
	s.Schedule(Normal, record("B"))
	s.Schedule(Normal, record("C"))

	require.True(t, fake.HasPendingCallback())
	fake.DrainAll()

	assert.Equal(t, []string{"A", "B", "C"}, order)
}

// S2: a more urgent task dispatches ahead of a less urgent one already
// sitting in the ready queue, regardless of submission order.
func TestHigherPriorityDispatchesFirst(t *testing.T) {
	clock := NewManualClock(0)
	s, fake := newTestScheduler(clock)
	defer s.Close()

	var order []string
	record := func(name string) Callback {
		return func(bool) Callback {
			order = append(order, name)
			return nil
		}
	}

	s.Schedule(Normal, record("normal"))
	s.Schedule(Immediate, record("immediate"))

	fake.DrainAll()

	assert.Equal(t, []string{"immediate", "normal"}, order)
}

// S3: a delayed task is held in the pending queue and only promoted to the
// ready queue once the host's armed timer actually fires at or after its
// start time.
func TestDeferredTaskPromotedAfterTimerFires(t *testing.T) {
	clock := NewManualClock(0)
	s, fake := newTestScheduler(clock)
	defer s.Close()

	ran := false
	s.Schedule(Normal, func(bool) Callback {
		ran = true
		return nil
	}, ScheduleOptions{DelayMS: 100})

	delay, ok := fake.PendingTimerDelay()
	require.True(t, ok)
	assert.EqualValues(t, 100, delay)
	assert.False(t, fake.HasPendingCallback())
	assert.False(t, ran)

	// Firing the timer before the clock has actually advanced must not
	// promote the task early: the work loop re-checks startTime against
	// the current time and simply re-arms.
	fake.FireTimer()
	fake.DrainAll()
	assert.False(t, ran, "task must not run before its start time matures")
	delay, ok = fake.PendingTimerDelay()
	require.True(t, ok)
	assert.EqualValues(t, 100, delay)

	clock.Advance(100)
	fake.FireTimer()
	fake.DrainAll()
	assert.True(t, ran)
}

// S4: a continuation left in the ready queue is preempted by a newly
// submitted, more urgent task within the same host activation.
func TestContinuationPreemptedByMatureHigherPriorityTask(t *testing.T) {
	clock := NewManualClock(0)
	s, fake := newTestScheduler(clock)
	defer s.Close()

	var order []string
	calls := 0
	s.Schedule(Normal, func(bool) Callback {
		calls++
		order = append(order, "normal-chunk")
		if calls == 1 {
			s.Schedule(Immediate, func(bool) Callback {
				order = append(order, "immediate-interrupt")
				return nil
			})
			return func(bool) Callback {
				calls++
				order = append(order, "normal-chunk")
				return nil
			}
		}
		return nil
	})

	fake.DrainAll()

	assert.Equal(t, []string{"normal-chunk", "immediate-interrupt", "normal-chunk"}, order)
}

// S5: cancelling the task currently at the head of the ready queue removes
// it without running its callback; the next task still runs.
func TestCancelAtHeadSkipsWithoutRunning(t *testing.T) {
	clock := NewManualClock(0)
	s, fake := newTestScheduler(clock)
	defer s.Close()

	var order []string
	cancelledRan := false
	h := s.Schedule(Normal, func(bool) Callback {
		cancelledRan = true
		return nil
	})
	s.Schedule(Normal, func(bool) Callback {
		order = append(order, "second")
		return nil
	})

	h.Cancel()
	fake.DrainAll()

	assert.False(t, cancelledRan)
	assert.Equal(t, []string{"second"}, order)
}

// S6: a callback that consumes more than the frame budget yields a
// continuation and the work loop stops before running it again in the same
// activation; a further activation resumes and finishes it.
func TestYieldsUnderBudgetPressureAndResumesNextActivation(t *testing.T) {
	clock := NewManualClock(0)
	s, fake := newTestScheduler(clock)
	defer s.Close()

	chunks := 0
	var step Callback
	step = func(bool) Callback {
		chunks++
		clock.Advance(6) // exceeds the default 5ms frame budget per chunk
		if chunks >= 3 {
			return nil
		}
		return step
	}
	s.Schedule(Normal, step)

	more := fake.FireCallback()
	assert.True(t, more, "scheduler should report more work once it yields mid-task")
	assert.Equal(t, 1, chunks)

	more = fake.FireCallback()
	assert.True(t, more)
	assert.Equal(t, 2, chunks)

	more = fake.FireCallback()
	assert.False(t, more)
	assert.Equal(t, 3, chunks)
}

func TestScheduleReturnsHandleWithIdentityAndPriority(t *testing.T) {
	clock := NewManualClock(0)
	s, fake := newTestScheduler(clock)
	defer s.Close()

	h1 := s.Schedule(Low, func(bool) Callback { return nil })
	h2 := s.Schedule(Low, func(bool) Callback { return nil })

	assert.NotEqual(t, h1.ID(), h2.ID())
	assert.Equal(t, Low, h1.Priority())

	fake.DrainAll()
}

func TestScheduleNormalizesMalformedPriority(t *testing.T) {
	clock := NewManualClock(0)
	s, fake := newTestScheduler(clock)
	defer s.Close()

	h := s.Schedule(Priority(999), func(bool) Callback { return nil })
	assert.Equal(t, Normal, h.Priority())
	fake.DrainAll()
}

func TestPauseStopsDispatchAndResumeContinues(t *testing.T) {
	clock := NewManualClock(0)
	s, fake := newTestScheduler(clock)
	defer s.Close()

	ran := false
	s.Pause()
	s.Schedule(Normal, func(bool) Callback {
		ran = true
		return nil
	})

	// A paused work loop exits at the top of its drain step every time it
	// is invoked, reporting there is still work outstanding; firing once is
	// enough to observe that without looping forever.
	more := fake.FireCallback()
	assert.True(t, more)
	assert.False(t, ran, "paused scheduler must not dispatch")

	s.Resume()
	fake.DrainAll()
	assert.True(t, ran)
}

func TestFirstCallbackNodePeeksWithoutRemoving(t *testing.T) {
	clock := NewManualClock(0)
	s, fake := newTestScheduler(clock)
	defer s.Close()

	s.Pause()
	h := s.Schedule(Normal, func(bool) Callback { return nil })

	peeked := s.FirstCallbackNode()
	require.NotNil(t, peeked)
	assert.Equal(t, h.ID(), peeked.ID())

	// Peeking must not have consumed it.
	peekedAgain := s.FirstCallbackNode()
	require.NotNil(t, peekedAgain)
	assert.Equal(t, h.ID(), peekedAgain.ID())

	s.Resume()
	fake.DrainAll()
	assert.Nil(t, s.FirstCallbackNode())
}

func TestDidTimeoutReflectsExpiredDeadline(t *testing.T) {
	clock := NewManualClock(0)
	s, fake := newTestScheduler(clock)
	defer s.Close()

	var sawTimeout bool
	s.Schedule(UserBlocking, func(didTimeout bool) Callback {
		sawTimeout = didTimeout
		return nil
	})

	clock.Advance(1000) // past UserBlocking's 250ms timeout
	fake.DrainAll()

	assert.True(t, sawTimeout)
}

func TestPanicPropagatesThroughHostAdapterAsUnhandledError(t *testing.T) {
	clock := NewManualClock(0)
	caught := make(chan any, 1)
	host := NewHostAdapter(clock, func(r any) { caught <- r })
	s := New(defaultConfig(), WithClock(clock), WithHostAdapter(host))
	defer s.Close()

	s.Schedule(Normal, func(bool) Callback {
		panic("task exploded")
	})

	select {
	case r := <-caught:
		assert.Equal(t, "task exploded", r)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for panic to surface through the host adapter")
	}
}
