package concurrency

// ThreadFactory creates Thread objects bound to Runnable objects.
//
// The factory fixes a single detached-vs-joinable disposition for every
// thread it produces. Joinable threads are joined when the manager reaps
// them; detached threads are abandoned at start.
type ThreadFactory struct {
	detached bool
}

// NewThreadFactory creates a factory with the given detached disposition.
func NewThreadFactory(detached bool) *ThreadFactory {
	return &ThreadFactory{detached: detached}
}

// IsDetached returns the current detached disposition.
func (f *ThreadFactory) IsDetached() bool {
	return f.detached
}

// SetDetached changes the disposition for threads created after this call.
func (f *ThreadFactory) SetDetached(detached bool) {
	f.detached = detached
}

// NewThread creates a thread bound to runnable. If the runnable is
// ThreadAware it receives the non-owning back-reference to its thread.
func (f *ThreadFactory) NewThread(runnable Runnable) *Thread {
	t := newThread(f.detached, runnable)
	if aware, ok := runnable.(ThreadAware); ok {
		aware.SetThread(t)
	}
	return t
}

// CurrentThreadID returns the caller's goroutine id.
func (f *ThreadFactory) CurrentThreadID() uint64 {
	return currentGoroutineID()
}
