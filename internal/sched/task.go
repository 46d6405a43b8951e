package sched

// TaskID uniquely identifies a task for the lifetime of the process. It is
// assigned strictly increasing at submission and used only as an ordering
// tie-break; it must not wrap in practice, hence the 64-bit width.
type TaskID uint64

// Callback is a unit of scheduled work. It receives whether its deadline
// had already passed at dispatch time, and either returns nil ("no
// continuation", the task is complete) or another Callback of the same
// shape ("continuation", resume this task in a later slice). This
// self-referential signature is the Go rendering of the tagged
// NoContinuation/Continuation(fn) variant: the nil-ness of the return value
// carries the tag, and a non-nil return carries the continuation payload.
type Callback func(didTimeout bool) Callback

// Task is the record stored in a queue. Identity fields are fixed at
// construction; callback, sortIndex and queued are mutated as the task
// migrates between queues and is dispatched.
type Task struct {
	id             TaskID
	callback       Callback
	priority       Priority
	startTime      int64
	expirationTime int64
	sortIndex      int64
	queued         bool
}

// ID returns the task's identity.
func (t *Task) ID() TaskID { return t.id }

// Priority returns the task's priority level.
func (t *Task) Priority() Priority { return t.priority }

// cancelled reports whether the task has been cancelled (callback nulled).
func (t *Task) cancelled() bool { return t.callback == nil }

// less implements the strict total order from the spec: primary key is
// sortIndex, secondary (tie-break) key is id, both ascending.
func less(a, b *Task) bool {
	if a.sortIndex != b.sortIndex {
		return a.sortIndex < b.sortIndex
	}
	return a.id < b.id
}

// taskComparator adapts less to the gods utils.Comparator shape used by the
// binary heap backing both the ready and pending queues.
func taskComparator(x, y any) int {
	a, b := x.(*Task), y.(*Task)
	switch {
	case less(a, b):
		return -1
	case less(b, a):
		return 1
	default:
		return 0
	}
}

// TaskHandle is the opaque handle returned by Schedule. It is the only way
// external callers can reference or cancel a submitted task.
type TaskHandle struct {
	task  *Task
	sched *Scheduler
}

// ID returns the identity of the task this handle refers to.
func (h *TaskHandle) ID() TaskID { return h.task.id }

// Priority returns the priority the task was submitted with.
func (h *TaskHandle) Priority() Priority { return h.task.priority }

// Cancel nulls the task's callback. The task is not eagerly removed from
// whichever queue holds it; it is skipped or evicted lazily when it
// reaches the head.
func (h *TaskHandle) Cancel() { h.sched.Cancel(h) }
