package concurrency

// =============================================================================
// Runnable: the unit of work
// =============================================================================

// Runnable is an opaque unit of work. More or less analogous to
// java.lang.Runnable. A runnable may be submitted more than once and may
// outlive any single submission.
type Runnable interface {
	Run()
}

// RunnableFunc adapts a plain function to the Runnable interface.
type RunnableFunc func()

// Run invokes the function.
func (f RunnableFunc) Run() { f() }

// ThreadAware is implemented by runnables that need a reference to their
// hosting thread. The thread factory wires it up at creation time; the edge
// thread->runnable is owning, the back-edge runnable->thread is not.
type ThreadAware interface {
	SetThread(t *Thread)
}

// =============================================================================
// Thread: one goroutine bound to one Runnable
// =============================================================================

// ThreadState is the lifecycle state of a Thread. Workers reuse the same
// closed set for their private state.
type ThreadState int32

const (
	ThreadUninitialized ThreadState = iota
	ThreadStarting
	ThreadStarted
	ThreadStopping
	ThreadStopped
)

// String returns the state name for logs and tests.
func (s ThreadState) String() string {
	switch s {
	case ThreadUninitialized:
		return "uninitialized"
	case ThreadStarting:
		return "starting"
	case ThreadStarted:
		return "started"
	case ThreadStopping:
		return "stopping"
	case ThreadStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Thread owns one goroutine bound to exactly one Runnable. Returned by a
// ThreadFactory ready to start.
//
// Start performs a handshake: it spawns the goroutine and then blocks until
// the goroutine has transitioned itself to ThreadStarted, which it does just
// before invoking the runnable. This guarantees the goroutine has captured
// everything it needs from the caller's context before Start returns, so a
// detached caller may immediately drop its last reference to the runnable.
type Thread struct {
	runnable Runnable
	detached bool

	monitor *Monitor // guards state and id
	state   ThreadState
	id      uint64 // goroutine id; valid once state >= ThreadStarted

	done chan struct{}
}

func newThread(detached bool, runnable Runnable) *Thread {
	return &Thread{
		runnable: runnable,
		detached: detached,
		monitor:  NewMonitor(),
		done:     make(chan struct{}),
	}
}

// Start spawns the goroutine and waits for the start handshake.
// Idempotent once the thread has left ThreadUninitialized.
func (t *Thread) Start() {
	t.monitor.Lock()
	defer t.monitor.Unlock()

	if t.state != ThreadUninitialized {
		return
	}
	t.state = ThreadStarting

	go t.threadMain()

	// Wait for the goroutine to record its id and flip to started.
	for t.state == ThreadStarting {
		t.monitor.Wait(0)
	}
}

// threadMain is the goroutine body: complete the handshake, run the runnable,
// account for exit.
func (t *Thread) threadMain() {
	t.monitor.Lock()
	t.id = currentGoroutineID()
	t.state = ThreadStarted
	t.monitor.Notify()
	t.monitor.Unlock()

	t.runnable.Run()

	t.monitor.Lock()
	if t.state != ThreadStopping && t.state != ThreadStopped {
		t.state = ThreadStopping
	}
	t.monitor.Unlock()

	close(t.done)
}

// Join blocks until the goroutine exits. A no-op for detached threads and for
// threads that were never started.
func (t *Thread) Join() {
	if t.detached {
		return
	}

	t.monitor.Lock()
	started := t.state != ThreadUninitialized
	t.monitor.Unlock()
	if !started {
		return
	}

	<-t.done

	t.monitor.Lock()
	t.state = ThreadStopped
	t.monitor.Unlock()
}

// State returns the current lifecycle state.
func (t *Thread) State() ThreadState {
	t.monitor.Lock()
	defer t.monitor.Unlock()
	return t.state
}

// ID returns the goroutine id hosting this thread. Zero until the start
// handshake completes.
func (t *Thread) ID() uint64 {
	t.monitor.Lock()
	defer t.monitor.Unlock()
	return t.id
}

// Runnable returns the runnable this thread hosts.
func (t *Thread) Runnable() Runnable {
	return t.runnable
}

// IsDetached reports the detached disposition fixed at creation.
func (t *Thread) IsDetached() bool {
	return t.detached
}
