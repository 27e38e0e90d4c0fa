package concurrency

import "time"

// Mutex is a mutual exclusion lock with timed acquisition.
//
// Unlike sync.Mutex it supports TimedLock, which the manager needs to honor
// the caller-supplied timeout on Add. The implementation is a 1-slot channel:
// holding the lock means the slot is occupied.
type Mutex struct {
	slot chan struct{}
}

// NewMutex creates an unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{slot: make(chan struct{}, 1)}
}

// Lock blocks until the mutex is acquired.
func (m *Mutex) Lock() {
	m.slot <- struct{}{}
}

// TryLock attempts to acquire the mutex without blocking.
// Returns true if the lock was acquired.
func (m *Mutex) TryLock() bool {
	select {
	case m.slot <- struct{}{}:
		return true
	default:
		return false
	}
}

// TimedLock attempts to acquire the mutex, giving up after d.
// Returns true if the lock was acquired.
func (m *Mutex) TimedLock(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case m.slot <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

// Unlock releases the mutex. Unlocking an unheld mutex panics.
func (m *Mutex) Unlock() {
	select {
	case <-m.slot:
	default:
		panic("concurrency: unlock of unlocked Mutex")
	}
}

// =============================================================================
// Guard: scoped lock holder
// =============================================================================

// Guard acquires a Mutex on construction and releases it on Release.
// The acquisition mode is selected by the timeout parameter:
//
//	timeout == 0 : block forever
//	timeout < 0  : try once, do not block
//	timeout > 0  : try for that long
//
// If acquisition failed the guard is in the "not held" state and Release is a
// no-op. Callers must check Held before entering the critical section.
type Guard struct {
	mutex *Mutex
	held  bool
}

// NewGuard acquires m according to the timeout convention above.
func NewGuard(m *Mutex, timeout time.Duration) *Guard {
	g := &Guard{mutex: m}
	switch {
	case timeout == 0:
		m.Lock()
		g.held = true
	case timeout < 0:
		g.held = m.TryLock()
	default:
		g.held = m.TimedLock(timeout)
	}
	return g
}

// Held reports whether the guard is holding the mutex.
func (g *Guard) Held() bool {
	return g.held
}

// Release unlocks the mutex if held. Safe to call more than once.
func (g *Guard) Release() {
	if g.held {
		g.held = false
		g.mutex.Unlock()
	}
}
