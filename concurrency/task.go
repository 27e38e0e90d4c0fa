package concurrency

import "time"

// TaskState is the lifecycle state of a queued task. Transitions are fixed:
// WAITING -> EXECUTING or WAITING -> TIMEDOUT (chosen once at dequeue time),
// then EXECUTING -> COMPLETE.
type TaskState int32

const (
	TaskWaiting TaskState = iota
	TaskExecuting
	TaskTimedOut
	TaskComplete
)

// String returns the state name for logs and tests.
func (s TaskState) String() string {
	switch s {
	case TaskWaiting:
		return "waiting"
	case TaskExecuting:
		return "executing"
	case TaskTimedOut:
		return "timedout"
	case TaskComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// task wraps a runnable with an optional deadline and a lifecycle state.
// Created on Add, owned by the queue, destroyed when a worker completes it or
// the manager drops it on expiration. The state field is only touched under
// the manager lock.
type task struct {
	runnable   Runnable
	state      TaskState
	expireTime time.Time // zero value means the task never expires
}

// newTask wraps runnable. A zero or negative expiration means no deadline; otherwise the
// deadline is now+expiration on the monotonic clock.
func newTask(runnable Runnable, expiration time.Duration) *task {
	t := &task{runnable: runnable, state: TaskWaiting}
	if expiration > 0 {
		t.expireTime = time.Now().Add(expiration)
	}
	return t
}

// expired reports whether the task's deadline, if any, has passed.
func (t *task) expired(now time.Time) bool {
	return !t.expireTime.IsZero() && t.expireTime.Before(now)
}

// run executes the underlying runnable. A no-op unless the task was claimed
// as EXECUTING, so a TIMEDOUT task never runs even if dispatch is attempted.
func (t *task) run() {
	if t.state != TaskExecuting {
		return
	}
	t.runnable.Run()
	t.state = TaskComplete
}
