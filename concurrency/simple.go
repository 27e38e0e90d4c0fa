package concurrency

// SimpleThreadManager is a convenience preset: a fixed worker count and an
// optional pending-task bound, both applied on Start. If no thread factory
// has been installed by then, a joinable one is used so Stop can join the
// workers deterministically.
type SimpleThreadManager struct {
	*Manager

	workerCount         int
	pendingTaskCountMax int
}

const defaultSimpleWorkerCount = 4

// NewSimpleManager creates a simple manager with workerCount workers and a
// pendingTaskCountMax bound on queued tasks (0 means no limit).
// A non-positive workerCount falls back to the default of 4.
func NewSimpleManager(workerCount int, pendingTaskCountMax int, config *ManagerConfig) *SimpleThreadManager {
	if workerCount <= 0 {
		workerCount = defaultSimpleWorkerCount
	}
	if pendingTaskCountMax < 0 {
		pendingTaskCountMax = 0
	}
	return &SimpleThreadManager{
		Manager:             NewManager(config),
		workerCount:         workerCount,
		pendingTaskCountMax: pendingTaskCountMax,
	}
}

// Start applies the queue bound, starts the base manager and grows the fleet
// to the configured worker count.
func (s *SimpleThreadManager) Start() error {
	if s.ThreadFactory() == nil {
		if err := s.SetThreadFactory(NewThreadFactory(false)); err != nil {
			return err
		}
	}
	s.SetPendingTaskCountMax(s.pendingTaskCountMax)
	if err := s.Manager.Start(); err != nil {
		return err
	}
	return s.AddWorker(s.workerCount)
}
