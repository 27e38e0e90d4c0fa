package concurrency

import (
	"fmt"
	"reflect"
	"sync/atomic"
	"time"
)

// ManagerState is the lifecycle state of a Manager.
type ManagerState int32

const (
	ManagerUninitialized ManagerState = iota
	ManagerStarting
	ManagerStarted
	ManagerJoining
	ManagerStopping
	ManagerStopped
)

// String returns the state name for logs and tests.
func (s ManagerState) String() string {
	switch s {
	case ManagerUninitialized:
		return "uninitialized"
	case ManagerStarting:
		return "starting"
	case ManagerStarted:
		return "started"
	case ManagerJoining:
		return "joining"
	case ManagerStopping:
		return "stopping"
	case ManagerStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ManagerStats is a point-in-time snapshot of a manager, taken under the lock.
type ManagerStats struct {
	Name       string
	State      ManagerState
	Workers    int
	Idle       int
	Pending    int
	PendingMax int
	Total      int
	Expired    int
}

// ThreadManager manages a pool of worker threads executing queued runnables
// in FIFO order, with an optional bound on queued tasks and optional per-task
// deadlines.
type ThreadManager interface {
	// Start verifies a thread factory is configured and begins operation.
	Start() error

	// Stop drains remaining work, shuts down all workers and joins them
	// according to the factory's disposition. Idempotent.
	Stop()

	// State returns the lifecycle state. Read without the lock: best effort.
	State() ManagerState

	// ThreadFactory returns the configured factory, or nil.
	ThreadFactory() *ThreadFactory

	// SetThreadFactory installs a factory. Replacing an existing factory
	// fails unless the detached dispositions match.
	SetThreadFactory(factory *ThreadFactory) error

	// AddWorker grows the fleet by n threads, blocking until all have
	// entered the worker loop.
	AddWorker(n int) error

	// RemoveWorker shrinks the fleet by n threads, blocking until the count
	// is reached; joinable dead workers are joined and reaped.
	RemoveWorker(n int) error

	// Add queues a runnable. timeout selects the lock/capacity wait policy
	// (0 forever, negative try-once, positive bounded for the lock; a
	// capacity wait lasts until room is made); a positive expiration is the
	// time the task may wait before being dropped.
	Add(runnable Runnable, timeout time.Duration, expiration time.Duration) error

	// Remove drops the first pending task wrapping the given runnable.
	// Silent no-op if it is not queued.
	Remove(runnable Runnable) error

	// RemoveNextPending pops and returns the head runnable, or nil if the
	// queue is empty.
	RemoveNextPending() (Runnable, error)

	// RemoveExpiredTasks sweeps the whole queue, dropping every task whose
	// deadline has passed.
	RemoveExpiredTasks()

	// SetExpireCallback installs the callback invoked for dropped tasks.
	SetExpireCallback(callback ExpireCallback)

	IdleWorkerCount() int
	WorkerCount() int
	PendingTaskCount() int
	TotalTaskCount() int
	PendingTaskCountMax() int
	ExpiredTaskCount() int

	// Stats returns a consistent snapshot of all counters.
	Stats() ManagerStats
}

// Manager is the ThreadManager implementation.
//
// One mutex protects the whole manager state; three monitors share it and
// carry distinct channels: taskMonitor ("queue became non-empty, or a worker
// should re-check whether it is still needed"), capacityMonitor ("the queue
// length dropped below the bound") and workerMonitor ("workerCount changed").
// Every wait is guarded by a predicate re-checked on wake; every notify is
// issued while holding the mutex.
type Manager struct {
	name    string
	logger  Logger
	metrics Metrics

	mutex           *Mutex
	taskMonitor     *Monitor
	capacityMonitor *Monitor
	workerMonitor   *Monitor

	// state and idleCount are also read without the lock by State and
	// IdleWorkerCount; both are mutated only while the lock is held.
	state     atomic.Int32
	idleCount atomic.Int32

	workerCount         int
	workerMaxCount      int
	pendingTaskCountMax int
	expiredCount        int

	expireCallback ExpireCallback
	factory        *ThreadFactory

	tasks taskQueue

	workers     map[*Thread]struct{}
	deadWorkers map[*Thread]struct{}
	idMap       map[uint64]*Thread
}

var _ ThreadManager = (*Manager)(nil)

// NewManager creates a manager with the given config (nil for defaults).
// A thread factory must be installed before Start.
func NewManager(config *ManagerConfig) *Manager {
	config = config.withDefaults()

	mutex := NewMutex()
	m := &Manager{
		name:            config.Name,
		logger:          config.Logger,
		metrics:         config.Metrics,
		mutex:           mutex,
		taskMonitor:     NewMonitorWithMutex(mutex),
		capacityMonitor: NewMonitorWithMutex(mutex),
		workerMonitor:   NewMonitorWithMutex(mutex),
		tasks:           newTaskQueue(),
		workers:         make(map[*Thread]struct{}),
		deadWorkers:     make(map[*Thread]struct{}),
		idMap:           make(map[uint64]*Thread),
	}
	m.state.Store(int32(ManagerUninitialized))
	return m
}

// Name returns the manager's name used in logs and metric labels.
func (m *Manager) Name() string {
	return m.name
}

func (m *Manager) loadState() ManagerState {
	return ManagerState(m.state.Load())
}

func (m *Manager) storeState(s ManagerState) {
	m.state.Store(int32(s))
}

// =============================================================================
// Lifecycle
// =============================================================================

// Start transitions the manager to started. Requires a thread factory.
// Calling Start on a stopped manager is a no-op; Start is idempotent.
func (m *Manager) Start() error {
	g := NewGuard(m.mutex, 0)
	defer g.Release()

	switch m.loadState() {
	case ManagerStopped:
		return nil
	case ManagerUninitialized:
		if m.factory == nil {
			return fmt.Errorf("%w: start requires a thread factory", ErrIllegalState)
		}
		m.storeState(ManagerStarted)
		m.taskMonitor.NotifyAll()
		m.logger.Info("thread manager started", F("manager", m.name))
	}

	for m.loadState() == ManagerStarting {
		m.taskMonitor.Wait(0)
	}
	return nil
}

// Stop transitions to joining, shrinks the fleet to zero (workers drain the
// queue first), then transitions to stopped. Idempotent.
func (m *Manager) Stop() {
	g := NewGuard(m.mutex, 0)
	defer g.Release()

	doStop := false
	switch m.loadState() {
	case ManagerStopping, ManagerJoining, ManagerStopped:
	default:
		doStop = true
		m.storeState(ManagerJoining)
	}

	if doStop {
		m.removeWorkersLocked(m.workerCount)
		m.logger.Info("thread manager stopped",
			F("manager", m.name),
			F("expired_tasks", m.expiredCount))
	}

	m.storeState(ManagerStopped)
}

// State returns the lifecycle state without taking the lock; readers must
// tolerate values that were true at some recent moment.
func (m *Manager) State() ManagerState {
	return m.loadState()
}

// =============================================================================
// Thread factory
// =============================================================================

// ThreadFactory returns the configured factory, or nil if none is set.
func (m *Manager) ThreadFactory() *ThreadFactory {
	g := NewGuard(m.mutex, 0)
	defer g.Release()
	return m.factory
}

// SetThreadFactory installs factory. Worker threads outlive this call and
// must be joined (or not) consistently, so replacing an existing factory with
// one of a different detached disposition fails. The first factory set has no
// disposition constraint.
func (m *Manager) SetThreadFactory(factory *ThreadFactory) error {
	if factory == nil {
		return fmt.Errorf("%w: nil thread factory", ErrInvalidArgument)
	}

	g := NewGuard(m.mutex, 0)
	defer g.Release()

	if m.factory != nil && m.factory.IsDetached() != factory.IsDetached() {
		return fmt.Errorf("%w: thread factory detached disposition mismatch", ErrInvalidArgument)
	}
	m.factory = factory
	return nil
}

// =============================================================================
// Worker fleet
// =============================================================================

// AddWorker instantiates n workers, binds each to a new thread via the
// factory, raises the fleet target and blocks until every new worker has
// entered the dispatch loop.
func (m *Manager) AddWorker(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: addWorker(%d)", ErrInvalidArgument, n)
	}

	g := NewGuard(m.mutex, 0)
	defer g.Release()

	if m.factory == nil {
		return fmt.Errorf("%w: addWorker requires a thread factory", ErrIllegalState)
	}

	newThreads := make([]*Thread, 0, n)
	for i := 0; i < n; i++ {
		newThreads = append(newThreads, m.factory.NewThread(newWorker(m)))
	}

	m.workerMaxCount += n

	for _, t := range newThreads {
		m.workers[t] = struct{}{}
		if w, ok := t.Runnable().(*worker); ok {
			w.state = ThreadStarting
		}
		t.Start()
		m.idMap[t.ID()] = t
	}

	// Wait for every new worker to pass admission.
	for m.workerCount != m.workerMaxCount {
		m.workerMonitor.Wait(0)
	}

	m.logger.Debug("workers added",
		F("manager", m.name),
		F("added", n),
		F("worker_count", m.workerCount))
	return nil
}

// RemoveWorker lowers the fleet target by n and blocks until enough workers
// exit. Fails if n exceeds the current target.
func (m *Manager) RemoveWorker(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: removeWorker(%d)", ErrInvalidArgument, n)
	}

	g := NewGuard(m.mutex, 0)
	defer g.Release()
	return m.removeWorkersLocked(n)
}

// removeWorkersLocked lowers the maximum worker count and blocks until enough
// workers complete to reach the new limit, then reaps the dead set. The
// caller holds the mutex.
func (m *Manager) removeWorkersLocked(n int) error {
	if n > m.workerMaxCount {
		return fmt.Errorf("%w: cannot remove %d of %d workers", ErrInvalidArgument, n, m.workerMaxCount)
	}

	m.workerMaxCount -= n

	if int(m.idleCount.Load()) > n {
		// More idle workers than we need to remove: wake just enough of
		// them so they can observe the new cap and terminate.
		for i := 0; i < n; i++ {
			m.taskMonitor.Notify()
		}
	} else {
		m.taskMonitor.NotifyAll()
	}

	for m.workerCount != m.workerMaxCount {
		m.workerMonitor.Wait(0)
	}

	for t := range m.deadWorkers {
		// With a joinable factory the threads are joined as they are reaped.
		if !m.factory.IsDetached() {
			t.Join()
		}
		delete(m.idMap, t.ID())
		delete(m.workers, t)
	}
	m.deadWorkers = make(map[*Thread]struct{})

	m.logger.Debug("workers removed",
		F("manager", m.name),
		F("removed", n),
		F("worker_count", m.workerCount))
	return nil
}

// canSleepLocked reports whether the calling goroutine may block on this
// manager: true unless it is one of the manager's own workers. A worker must
// never block its own pool on a full queue.
func (m *Manager) canSleepLocked() bool {
	_, isWorker := m.idMap[currentGoroutineID()]
	return !isWorker
}

// =============================================================================
// Task submission and removal
// =============================================================================

// Add queues runnable for execution by a worker thread.
//
// timeout selects the guard's acquisition policy and, when the queue is
// bounded and full, the capacity wait granularity: 0 waits forever, a
// negative value tries once, a positive value waits that long for the lock.
// expiration, when positive, is how long the task may wait to be dequeued
// before it is dropped and reported through the expire callback.
func (m *Manager) Add(runnable Runnable, timeout time.Duration, expiration time.Duration) error {
	if runnable == nil {
		return fmt.Errorf("%w: nil runnable", ErrInvalidArgument)
	}

	g := NewGuard(m.mutex, timeout)
	if !g.Held() {
		m.metrics.RecordTaskRejected(m.name, "lock_timeout")
		return fmt.Errorf("%w: could not lock manager within %v", ErrTimeout, timeout)
	}
	defer g.Release()

	if st := m.loadState(); st != ManagerStarted {
		m.metrics.RecordTaskRejected(m.name, "not_started")
		return fmt.Errorf("%w: add requires a started manager (state %s)", ErrIllegalState, st)
	}

	// At the limit: drop one expired task to see if the limit clears.
	if m.pendingTaskCountMax > 0 && m.tasks.len() >= m.pendingTaskCountMax {
		m.removeExpiredLocked(true)
	}

	if m.pendingTaskCountMax > 0 && m.tasks.len() >= m.pendingTaskCountMax {
		if m.canSleepLocked() && timeout >= 0 {
			// The wait is safe because the capacity monitor shares the
			// manager mutex. The predicate loop governs correctness; a
			// positive timeout only bounds each individual wait.
			for m.pendingTaskCountMax > 0 && m.tasks.len() >= m.pendingTaskCountMax {
				m.capacityMonitor.Wait(timeout)
			}
		} else {
			m.metrics.RecordTaskRejected(m.name, "queue_full")
			return fmt.Errorf("%w: %d pending tasks", ErrQueueFull, m.tasks.len())
		}
	}

	m.tasks.push(newTask(runnable, expiration))
	m.metrics.RecordQueueDepth(m.name, m.tasks.len())

	// If an idle worker is available notify it; otherwise all workers are
	// busy and will get to this task in time.
	if m.idleCount.Load() > 0 {
		m.taskMonitor.Notify()
	}
	return nil
}

// Remove drops the first pending task wrapping runnable. A silent no-op when
// no pending task matches.
func (m *Manager) Remove(runnable Runnable) error {
	g := NewGuard(m.mutex, 0)
	defer g.Release()

	if st := m.loadState(); st != ManagerStarted {
		return fmt.Errorf("%w: remove requires a started manager (state %s)", ErrIllegalState, st)
	}

	for i := 0; i < m.tasks.len(); i++ {
		if runnableEqual(m.tasks.at(i).runnable, runnable) {
			m.tasks.removeAt(i)
			return nil
		}
	}
	return nil
}

// RemoveNextPending pops and returns the runnable at the head of the queue,
// or nil when the queue is empty.
func (m *Manager) RemoveNextPending() (Runnable, error) {
	g := NewGuard(m.mutex, 0)
	defer g.Release()

	if st := m.loadState(); st != ManagerStarted {
		return nil, fmt.Errorf("%w: removeNextPending requires a started manager (state %s)", ErrIllegalState, st)
	}

	t, ok := m.tasks.popFront()
	if !ok {
		return nil, nil
	}
	return t.runnable, nil
}

// RemoveExpiredTasks drops every pending task whose deadline has passed.
func (m *Manager) RemoveExpiredTasks() {
	g := NewGuard(m.mutex, 0)
	defer g.Release()
	m.removeExpiredLocked(false)
}

// removeExpiredLocked walks the queue from the head and erases expired tasks,
// invoking the expire callback for each. The sweep does not stop at the first
// non-expired task: submissions carry arbitrary expirations, so a later task
// may expire before an earlier one. The caller holds the mutex.
func (m *Manager) removeExpiredLocked(justOne bool) {
	if m.tasks.empty() {
		return
	}
	now := time.Now()

	for i := 0; i < m.tasks.len(); {
		t := m.tasks.at(i)
		if !t.expired(now) {
			i++
			continue
		}
		if m.expireCallback != nil {
			m.invokeExpireCallback(t.runnable)
		}
		m.tasks.removeAt(i)
		m.expiredCount++
		m.metrics.RecordTaskExpired(m.name)
		if justOne {
			return
		}
	}
}

// invokeExpireCallback calls the expire callback containing panics; a failing
// callback must not affect the manager's state.
func (m *Manager) invokeExpireCallback(runnable Runnable) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("expire callback panicked",
				F("manager", m.name),
				F("panic", r))
		}
	}()
	m.expireCallback(runnable)
}

// SetExpireCallback installs callback; it is invoked with the underlying
// runnable whenever a task is dropped past its deadline.
func (m *Manager) SetExpireCallback(callback ExpireCallback) {
	g := NewGuard(m.mutex, 0)
	defer g.Release()
	m.expireCallback = callback
}

// runnableEqual compares two runnables by interface identity, refusing to
// compare values of a shared non-comparable dynamic type (e.g. two
// RunnableFunc values), which would otherwise panic.
func runnableEqual(a, b Runnable) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == tb && !ta.Comparable() {
		return false
	}
	return a == b
}

// =============================================================================
// Observability queries
// =============================================================================

// IdleWorkerCount returns the number of workers blocked on the task monitor.
// Read without the lock: best effort.
func (m *Manager) IdleWorkerCount() int {
	return int(m.idleCount.Load())
}

// WorkerCount returns the number of threads currently in the worker loop.
func (m *Manager) WorkerCount() int {
	g := NewGuard(m.mutex, 0)
	defer g.Release()
	return m.workerCount
}

// PendingTaskCount returns the number of queued tasks.
func (m *Manager) PendingTaskCount() int {
	g := NewGuard(m.mutex, 0)
	defer g.Release()
	return m.tasks.len()
}

// TotalTaskCount returns the number of pending plus executing tasks.
func (m *Manager) TotalTaskCount() int {
	g := NewGuard(m.mutex, 0)
	defer g.Release()
	return m.tasks.len() + m.workerCount - int(m.idleCount.Load())
}

// PendingTaskCountMax returns the queue bound; 0 means unbounded.
func (m *Manager) PendingTaskCountMax() int {
	g := NewGuard(m.mutex, 0)
	defer g.Release()
	return m.pendingTaskCountMax
}

// SetPendingTaskCountMax sets the queue bound; 0 means unbounded.
// Meant to be called before Start (the simple preset does).
func (m *Manager) SetPendingTaskCountMax(n int) {
	g := NewGuard(m.mutex, 0)
	defer g.Release()
	m.pendingTaskCountMax = n
}

// ExpiredTaskCount returns the number of tasks dropped past their deadline
// since the manager was created. Every drop made by an expiration sweep is
// counted; a task a worker finds expired at dequeue time is counted only when
// an expire callback is set.
func (m *Manager) ExpiredTaskCount() int {
	g := NewGuard(m.mutex, 0)
	defer g.Release()
	return m.expiredCount
}

// Stats returns a consistent snapshot of the manager's counters.
func (m *Manager) Stats() ManagerStats {
	g := NewGuard(m.mutex, 0)
	defer g.Release()

	idle := int(m.idleCount.Load())
	return ManagerStats{
		Name:       m.name,
		State:      m.loadState(),
		Workers:    m.workerCount,
		Idle:       idle,
		Pending:    m.tasks.len(),
		PendingMax: m.pendingTaskCountMax,
		Total:      m.tasks.len() + m.workerCount - idle,
		Expired:    m.expiredCount,
	}
}
