package sched

// Priority is a coarse scheduling priority level. Lower values are more
// urgent; numeric ordering only matters internally (comparisons, table
// lookups) and is never exposed as a meaningful magnitude to callers.
type Priority int

const (
	// Immediate tasks are expired the instant they are created; they are
	// dispatched ahead of every ready task that has not yet expired.
	Immediate Priority = iota
	// UserBlocking tasks model direct responses to user input.
	UserBlocking
	// Normal is the default priority for ordinary work.
	Normal
	// Low tasks may be deferred well behind other work.
	Low
	// Idle tasks run only when nothing else is ready.
	Idle
)

// timeoutImmediateMS is negative so that Immediate tasks are always already
// expired relative to their start time, regardless of clock resolution.
const (
	timeoutImmediateMS    int64 = -1
	timeoutUserBlockingMS int64 = 250
	timeoutNormalMS       int64 = 5000
	timeoutLowMS          int64 = 10000
	timeoutIdleMS         int64 = 1073741823 // 2^30 - 1, "never"
)

func (p Priority) String() string {
	switch p {
	case Immediate:
		return "Immediate"
	case UserBlocking:
		return "UserBlocking"
	case Normal:
		return "Normal"
	case Low:
		return "Low"
	case Idle:
		return "Idle"
	default:
		return "Normal"
	}
}

// normalizePriority maps any value outside the five known levels to Normal,
// per the "malformed priority is silently normalized" rule.
func normalizePriority(p Priority) Priority {
	switch p {
	case Immediate, UserBlocking, Normal, Low, Idle:
		return p
	default:
		return Normal
	}
}

// defaultTimeoutFor returns the built-in timeout, in milliseconds, added to
// a task's start time to compute its expiration time.
func defaultTimeoutFor(p Priority) int64 {
	switch normalizePriority(p) {
	case Immediate:
		return timeoutImmediateMS
	case UserBlocking:
		return timeoutUserBlockingMS
	case Low:
		return timeoutLowMS
	case Idle:
		return timeoutIdleMS
	default:
		return timeoutNormalMS
	}
}
