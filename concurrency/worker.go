package concurrency

import "time"

// worker is the runnable hosted by each fleet thread. It pulls tasks off the
// manager's queue and executes them until it is no longer needed.
type worker struct {
	manager *Manager
	state   ThreadState
	thread  *Thread // non-owning back-reference, set by the factory
}

func newWorker(m *Manager) *worker {
	return &worker{manager: m, state: ThreadUninitialized}
}

// SetThread records the hosting thread (ThreadAware).
func (w *worker) SetThread(t *Thread) {
	w.thread = t
}

// isActiveLocked reports whether the worker should keep running: either it is
// still within the fleet quota, or the manager is draining during shutdown
// and the queue is not yet empty. The caller holds the manager mutex; the
// result must be recomputed after every wait because both workerMaxCount and
// the manager state may have changed.
func (w *worker) isActiveLocked() bool {
	m := w.manager
	return m.workerCount <= m.workerMaxCount ||
		(m.loadState() == ManagerJoining && !m.tasks.empty())
}

// Run is the worker entry point.
//
// The loop has three parts: admitting a task, which happens under the lock;
// executing it with the lock released; and accounting for completion under
// the lock again.
func (w *worker) Run() {
	m := w.manager

	g := NewGuard(m.mutex, 0)
	defer g.Release()

	w.state = ThreadStarted

	// Admission: join the fleet if it is still below target, and tell the
	// manager when the target is reached.
	active := m.workerCount < m.workerMaxCount
	if active {
		m.workerCount++
		if m.workerCount == m.workerMaxCount {
			m.workerMonitor.Notify()
		}
	}

	for active {
		active = w.isActiveLocked()

		// Block for a non-empty queue, re-checking on every wake whether
		// this worker is still needed.
		for active && m.tasks.empty() {
			m.idleCount.Add(1)
			m.taskMonitor.Wait(0)
			active = w.isActiveLocked()
			m.idleCount.Add(-1)
		}

		var t *task
		if active {
			if head, ok := m.tasks.popFront(); ok {
				t = head
				if t.state == TaskWaiting {
					// Claimed exactly once: a task past its deadline goes
					// to TIMEDOUT, everything else to EXECUTING.
					if t.expired(time.Now()) {
						t.state = TaskTimedOut
					} else {
						t.state = TaskExecuting
					}
				}
			}

			// If the queue just dropped below its bound, wake a producer
			// that might be blocked on Add.
			if m.pendingTaskCountMax != 0 && m.tasks.len() <= m.pendingTaskCountMax-1 {
				m.capacityMonitor.Notify()
			}
		}

		if t != nil {
			if t.state == TaskExecuting {
				// Release the lock so the task cannot block the manager.
				m.mutex.Unlock()
				w.execute(t)
				m.mutex.Lock()
			} else if m.expireCallback != nil {
				// The only other claimed state is TIMEDOUT.
				m.invokeExpireCallback(t.runnable)
				m.expiredCount++
				m.metrics.RecordTaskExpired(m.name)
			}
		}
	}

	// Final accounting for a worker that is done: park the thread handle in
	// the dead set for the manager to reap.
	m.deadWorkers[w.thread] = struct{}{}
	w.state = ThreadStopped
	m.workerCount--
	if m.workerCount == m.workerMaxCount {
		m.workerMonitor.Notify()
	}
}

// execute runs the task with panics contained; a failing task must not
// affect the worker's liveness or the manager's state.
func (w *worker) execute(t *task) {
	m := w.manager
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("task panicked",
				F("manager", m.name),
				F("panic", r))
			m.metrics.RecordTaskPanic(m.name, r)
		}
		m.metrics.RecordTaskDuration(m.name, time.Since(start))
	}()
	t.run()
}
