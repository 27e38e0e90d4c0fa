// Package threadmanager provides a bounded-capacity, expiration-aware worker
// thread pool for Go.
//
// Callers submit units of work (Runnables) to a ThreadManager; a fixed,
// dynamically-resizable set of worker threads dequeues and executes them in
// FIFO order. The manager enforces an optional upper bound on queued tasks
// (applying backpressure or rejection to producers), optional per-task
// deadlines (tasks that wait past their deadline are dropped and reported via
// a callback), and graceful shutdown that joins or detaches workers according
// to the thread factory's policy.
//
// # Quick Start
//
// Create a simple manager with 4 workers and an unbounded queue:
//
//	manager := threadmanager.NewSimpleThreadManager(4, 0)
//	if err := manager.Start(); err != nil {
//		// handle error
//	}
//	defer manager.Stop()
//
//	manager.Add(threadmanager.RunnableFunc(func() {
//		// Your code here
//	}), 0, 0)
//
// Or use the process-global default manager:
//
//	threadmanager.InitGlobalThreadManager(4, 0)
//	defer threadmanager.ShutdownGlobalThreadManager()
//
// # Key Concepts
//
// Runnable: the opaque unit of work, a single Run() operation. A runnable may
// be re-submitted and may outlive any single submission.
//
// ThreadFactory: creates the threads hosting workers and fixes their
// detached-vs-joinable disposition. Joinable workers are joined at teardown.
//
// Queue bound: when PendingTaskCountMax is non-zero, Add blocks (or fails,
// depending on its timeout) once the bound is reached. A worker submitting to
// its own manager never blocks; it gets ErrQueueFull instead, which prevents
// the pool from deadlocking on itself.
//
// Expiration: a positive expiration on Add is how long the task may wait to
// be dequeued. Tasks past their deadline are dropped and never execute.
// RemoveExpiredTasks (and the sweep Add makes on a full queue) counts every
// drop and reports it through the expire callback if one is set; a worker
// that finds an expired task at dequeue time counts and reports it only when
// an expire callback is set.
//
// # Timeout Convention
//
// Add's timeout selects the lock/capacity wait policy:
//
//	timeout == 0 : wait forever
//	timeout < 0  : try once, fail immediately
//	timeout > 0  : bounded wait
//
// A positive timeout bounds only the lock acquisition. When the queue is full,
// a non-worker caller with timeout >= 0 keeps waiting until room is made; a
// positive timeout only sets how often it re-checks.
//
// # Observability
//
// The concurrency.Metrics interface receives execution metrics; the
// observability/prometheus package adapts it to Prometheus collectors and can
// poll Stats() snapshots into gauges.
package threadmanager
