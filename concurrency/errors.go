package concurrency

import "errors"

// Error kinds surfaced by ThreadManager operations.
// Callers match them with errors.Is; messages may carry additional context.
var (
	// ErrTimeout: Add could not acquire the manager lock within the caller's timeout.
	ErrTimeout = errors.New("threadmanager: lock acquisition timed out")

	// ErrIllegalState: the operation requires a started manager, or Start found
	// no thread factory configured.
	ErrIllegalState = errors.New("threadmanager: illegal manager state")

	// ErrQueueFull: the pending task queue is at capacity and the caller is
	// either a worker of this pool or passed a non-blocking timeout.
	ErrQueueFull = errors.New("threadmanager: pending task queue is full")

	// ErrInvalidArgument: out-of-range worker removal, nil runnable, or a
	// thread factory exchange across mismatched detached dispositions.
	ErrInvalidArgument = errors.New("threadmanager: invalid argument")
)
