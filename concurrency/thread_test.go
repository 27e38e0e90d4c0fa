package concurrency

import (
	"sync/atomic"
	"testing"
	"time"
)

// TestThread_StartHandshake verifies the start synchronization
// Given: A joinable thread bound to a runnable
// When: Start returns
// Then: The thread has already reached the started state and has a goroutine id
func TestThread_StartHandshake(t *testing.T) {
	// Arrange
	factory := NewThreadFactory(false)
	block := make(chan struct{})
	thread := factory.NewThread(RunnableFunc(func() {
		<-block
	}))

	if thread.State() != ThreadUninitialized {
		t.Fatalf("state before start = %s, want uninitialized", thread.State())
	}

	// Act
	thread.Start()

	// Assert - the handshake guarantees these before Start returns
	if got := thread.State(); got != ThreadStarted {
		t.Errorf("state after Start = %s, want started", got)
	}
	if thread.ID() == 0 {
		t.Error("thread id = 0 after Start, want the hosting goroutine id")
	}

	close(block)
	thread.Join()

	if got := thread.State(); got != ThreadStopped {
		t.Errorf("state after Join = %s, want stopped", got)
	}
}

// TestThread_StartIdempotent verifies repeated Start spawns one goroutine
// Given: A started thread
// When: Start is called again
// Then: The runnable executes exactly once
func TestThread_StartIdempotent(t *testing.T) {
	var runs atomic.Int32
	factory := NewThreadFactory(false)
	thread := factory.NewThread(RunnableFunc(func() {
		runs.Add(1)
	}))

	thread.Start()
	thread.Start()
	thread.Join()

	if got := runs.Load(); got != 1 {
		t.Errorf("runnable ran %d times, want 1", got)
	}
}

// TestThread_DetachedJoinIsNoOp verifies Join does not block for detached threads
func TestThread_DetachedJoinIsNoOp(t *testing.T) {
	factory := NewThreadFactory(true)
	block := make(chan struct{})
	thread := factory.NewThread(RunnableFunc(func() {
		<-block
	}))
	thread.Start()

	done := make(chan struct{})
	go func() {
		thread.Join()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Join on a detached thread blocked")
	}
	close(block)
}

// TestThread_JoinUnstarted verifies Join on a never-started thread returns
func TestThread_JoinUnstarted(t *testing.T) {
	factory := NewThreadFactory(false)
	thread := factory.NewThread(RunnableFunc(func() {}))

	done := make(chan struct{})
	go func() {
		thread.Join()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Join on an unstarted thread blocked")
	}
}

// threadRecorder records the thread handed to it by the factory.
type threadRecorder struct {
	thread *Thread
	ran    atomic.Bool
}

func (r *threadRecorder) Run()                { r.ran.Store(true) }
func (r *threadRecorder) SetThread(t *Thread) { r.thread = t }

// TestThreadFactory_WiresThreadAware verifies the runnable back-reference
// Given: A ThreadAware runnable
// When: The factory creates its thread
// Then: The runnable holds the same thread the factory returned
func TestThreadFactory_WiresThreadAware(t *testing.T) {
	factory := NewThreadFactory(false)
	rec := &threadRecorder{}

	thread := factory.NewThread(rec)

	if rec.thread != thread {
		t.Error("ThreadAware runnable did not receive its hosting thread")
	}
	if thread.Runnable() != Runnable(rec) {
		t.Error("thread does not host the supplied runnable")
	}

	thread.Start()
	thread.Join()
	if !rec.ran.Load() {
		t.Error("runnable never ran")
	}
}

// TestThreadFactory_Disposition verifies the factory fixes detachedness
func TestThreadFactory_Disposition(t *testing.T) {
	factory := NewThreadFactory(true)
	if !factory.IsDetached() {
		t.Error("IsDetached = false, want true")
	}

	thread := factory.NewThread(RunnableFunc(func() {}))
	if !thread.IsDetached() {
		t.Error("thread from a detached factory is not detached")
	}

	factory.SetDetached(false)
	if factory.IsDetached() {
		t.Error("IsDetached after SetDetached(false) = true")
	}

	if factory.CurrentThreadID() == 0 {
		t.Error("CurrentThreadID = 0, want the caller's goroutine id")
	}
}
