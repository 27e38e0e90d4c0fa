package threadmanager

import "github.com/concurrency-kit/go-thread-manager/concurrency"

// Re-export commonly used types from the concurrency package for convenience.
// This allows users to import only the threadmanager package for most use cases.

// Runnable is the opaque unit of work
type Runnable = concurrency.Runnable

// RunnableFunc adapts a plain function to Runnable
type RunnableFunc = concurrency.RunnableFunc

// ThreadManager is the interface for submitting tasks and managing the fleet
type ThreadManager = concurrency.ThreadManager

// Manager is the ThreadManager implementation
type Manager = concurrency.Manager

// SimpleThreadManager is the fixed-size convenience preset
type SimpleThreadManager = concurrency.SimpleThreadManager

// ThreadFactory creates worker threads and fixes their detached disposition
type ThreadFactory = concurrency.ThreadFactory

// ManagerConfig holds optional collaborators (name, logger, metrics)
type ManagerConfig = concurrency.ManagerConfig

// ManagerState is the manager lifecycle state
type ManagerState = concurrency.ManagerState

// ManagerStats is a point-in-time counters snapshot
type ManagerStats = concurrency.ManagerStats

// ExpireCallback receives the runnable of a task dropped past its deadline
type ExpireCallback = concurrency.ExpireCallback

// Logger and Field are the structured logging surface
type (
	Logger = concurrency.Logger
	Field  = concurrency.Field
)

// Metrics receives execution metrics
type Metrics = concurrency.Metrics

// Manager lifecycle states
const (
	ManagerUninitialized = concurrency.ManagerUninitialized
	ManagerStarting      = concurrency.ManagerStarting
	ManagerStarted       = concurrency.ManagerStarted
	ManagerJoining       = concurrency.ManagerJoining
	ManagerStopping      = concurrency.ManagerStopping
	ManagerStopped       = concurrency.ManagerStopped
)

// Error kinds surfaced by manager operations
var (
	ErrTimeout         = concurrency.ErrTimeout
	ErrIllegalState    = concurrency.ErrIllegalState
	ErrQueueFull       = concurrency.ErrQueueFull
	ErrInvalidArgument = concurrency.ErrInvalidArgument
)

// NewThreadFactory creates a factory with the given detached disposition
func NewThreadFactory(detached bool) *ThreadFactory {
	return concurrency.NewThreadFactory(detached)
}

// DefaultManagerConfig returns a config with default collaborators
func DefaultManagerConfig() *ManagerConfig {
	return concurrency.DefaultManagerConfig()
}

// F creates a structured logging field
var F = concurrency.F
