package threadmanager

import (
	"sync"
	"time"

	"github.com/concurrency-kit/go-thread-manager/concurrency"
	"github.com/concurrency-kit/go-thread-manager/config"
)

// NewThreadManager creates a fresh manager with default collaborators.
// A thread factory must be installed with SetThreadFactory before Start.
func NewThreadManager() *Manager {
	return concurrency.NewManager(nil)
}

// NewThreadManagerWithConfig creates a fresh manager with the given
// collaborators (nil for defaults).
func NewThreadManagerWithConfig(cfg *ManagerConfig) *Manager {
	return concurrency.NewManager(cfg)
}

// NewSimpleThreadManager creates a manager preset with workerCount workers
// and a pendingTaskCountMax bound on queued tasks (0 means no limit), both
// applied on Start.
func NewSimpleThreadManager(workerCount int, pendingTaskCountMax int) *SimpleThreadManager {
	return concurrency.NewSimpleManager(workerCount, pendingTaskCountMax, nil)
}

// NewSimpleThreadManagerWithConfig is NewSimpleThreadManager with explicit
// collaborators.
func NewSimpleThreadManagerWithConfig(workerCount int, pendingTaskCountMax int, cfg *ManagerConfig) *SimpleThreadManager {
	return concurrency.NewSimpleManager(workerCount, pendingTaskCountMax, cfg)
}

// NewSimpleThreadManagerFromConfig builds a simple manager from a loaded
// configuration file (see the config package).
func NewSimpleThreadManagerFromConfig(cfg *config.Config) *SimpleThreadManager {
	mgrCfg := DefaultManagerConfig()
	if cfg.Name != "" {
		mgrCfg.Name = cfg.Name
	}
	s := concurrency.NewSimpleManager(cfg.Workers, cfg.PendingTaskCountMax, mgrCfg)
	// The error is impossible here: no factory has been installed yet, so
	// the first set carries no disposition constraint.
	_ = s.SetThreadFactory(concurrency.NewThreadFactory(cfg.Detached))
	return s
}

// AddFunc wraps f as a Runnable and submits it to manager.
func AddFunc(manager ThreadManager, f func(), timeout time.Duration, expiration time.Duration) error {
	return manager.Add(RunnableFunc(f), timeout, expiration)
}

// =============================================================================
// Global Thread Manager Helper (Singleton)
// =============================================================================

var (
	globalThreadManager *SimpleThreadManager
	globalMu            sync.Mutex
)

// InitGlobalThreadManager initializes and starts the global thread manager
// with the given worker count and queue bound. A second call is a no-op.
func InitGlobalThreadManager(workerCount int, pendingTaskCountMax int) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalThreadManager != nil {
		return nil // Already initialized
	}

	manager := NewSimpleThreadManager(workerCount, pendingTaskCountMax)
	if err := manager.Start(); err != nil {
		return err
	}
	globalThreadManager = manager
	return nil
}

// GetGlobalThreadManager returns the global thread manager instance.
// It panics if InitGlobalThreadManager has not been called.
func GetGlobalThreadManager() *SimpleThreadManager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalThreadManager == nil {
		panic("GlobalThreadManager not initialized. Call InitGlobalThreadManager() first.")
	}
	return globalThreadManager
}

// ShutdownGlobalThreadManager stops the global thread manager.
func ShutdownGlobalThreadManager() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalThreadManager != nil {
		globalThreadManager.Stop()
		globalThreadManager = nil
	}
}
