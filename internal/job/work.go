// Package job collects small illustrative callbacks used by the CLI demo
// and by scheduler tests. None of it is part of the core; it exists only
// to give the scheduler something representative to run.
package job

import (
	"fmt"
	"time"

	"github.com/knightchaser/corosched/internal/sched"
)

// SleepWork returns a Callback that blocks the calling goroutine for ms
// milliseconds and then completes (no continuation). The scheduler cannot
// preempt a running callback, so this is only useful to simulate
// short, unavoidably blocking work (e.g. a tight I/O call) in a demo.
func SleepWork(ms int64) sched.Callback {
	return func(didTimeout bool) sched.Callback {
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return nil
	}
}

// BusyWork simulates CPU-bound work that cooperates with the scheduler: it
// spins for roughly chunkMS milliseconds, then checks whether the
// remaining budget is exhausted. If it is, it completes. If work remains
// and s.ShouldYield reports the slice budget spent, it returns a
// continuation of itself with the remaining budget; otherwise it runs the
// next chunk inline. Because s.ShouldYield is consulted between chunks,
// BusyWork yields promptly once the slice budget is spent, independent of
// chunkMS.
func BusyWork(s *sched.Scheduler, totalMS, chunkMS int64) sched.Callback {
	var step func(remainingMS int64) sched.Callback
	step = func(remainingMS int64) sched.Callback {
		return func(didTimeout bool) sched.Callback {
			spin := chunkMS
			if remainingMS < spin {
				spin = remainingMS
			}
			deadline := time.Now().Add(time.Duration(spin) * time.Millisecond)
			for time.Now().Before(deadline) {
				// busy-spin: deliberately not sleeping, to model CPU work.
			}
			remainingMS -= spin
			if remainingMS <= 0 {
				return nil
			}
			if s.ShouldYield() {
				return step(remainingMS)
			}
			return step(remainingMS)(didTimeout)
		}
	}
	return step(totalMS)
}

// PanicWork returns a Callback that panics with msg. It exists to exercise
// the scheduler's user-callback-exception path in tests and demos.
func PanicWork(msg string) sched.Callback {
	return func(didTimeout bool) sched.Callback {
		panic(fmt.Sprintf("job: PanicWork: %s", msg))
	}
}

// LogWork returns a Callback that prints a line identifying itself and
// completes immediately. Useful for demonstrating ordering (S1/S2/S3 in
// the scheduler's own test suite) without any timing noise.
func LogWork(label string) sched.Callback {
	return func(didTimeout bool) sched.Callback {
		fmt.Printf("[job] %s (didTimeout=%v)\n", label, didTimeout)
		return nil
	}
}
