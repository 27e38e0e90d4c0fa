package concurrency

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ExpireCallback: notification for dropped tasks
// =============================================================================

// ExpireCallback is invoked with the underlying runnable when a task is
// dropped because it waited past its deadline.
//
// The callback runs while the manager lock is held: it must be non-blocking
// and must not call back into the manager. Panics are contained and logged.
type ExpireCallback func(runnable Runnable)

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting thread manager metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast to avoid impacting task execution
// performance; several are invoked while the manager lock is held.
type Metrics interface {
	// RecordTaskDuration records how long a task took to execute.
	RecordTaskDuration(manager string, duration time.Duration)

	// RecordTaskPanic records that a task panicked during execution.
	RecordTaskPanic(manager string, panicInfo any)

	// RecordTaskExpired records that a task was dropped past its deadline.
	RecordTaskExpired(manager string)

	// RecordTaskRejected records that Add rejected a task.
	RecordTaskRejected(manager string, reason string)

	// RecordQueueDepth records the current pending task count.
	RecordQueueDepth(manager string, depth int)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordTaskDuration is a no-op.
func (m *NilMetrics) RecordTaskDuration(manager string, duration time.Duration) {}

// RecordTaskPanic is a no-op.
func (m *NilMetrics) RecordTaskPanic(manager string, panicInfo any) {}

// RecordTaskExpired is a no-op.
func (m *NilMetrics) RecordTaskExpired(manager string) {}

// RecordTaskRejected is a no-op.
func (m *NilMetrics) RecordTaskRejected(manager string, reason string) {}

// RecordQueueDepth is a no-op.
func (m *NilMetrics) RecordQueueDepth(manager string, depth int) {}

// =============================================================================
// ManagerConfig: Configuration for Manager
// =============================================================================

// ManagerConfig holds optional collaborators for a Manager.
// All fields are optional; zero values get defaults.
type ManagerConfig struct {
	// Name identifies the manager in logs and metric labels.
	// Defaults to "manager-" plus a short uuid.
	Name string

	// Logger receives lifecycle and failure logs. Defaults to the
	// zerolog-backed logger on stderr.
	Logger Logger

	// Metrics receives execution metrics. Defaults to NilMetrics.
	Metrics Metrics
}

// DefaultManagerConfig returns a config with default collaborators.
func DefaultManagerConfig() *ManagerConfig {
	return &ManagerConfig{
		Name:    defaultManagerName(),
		Logger:  NewDefaultLogger(),
		Metrics: &NilMetrics{},
	}
}

func defaultManagerName() string {
	return fmt.Sprintf("manager-%s", uuid.NewString()[:8])
}

func (c *ManagerConfig) withDefaults() *ManagerConfig {
	out := &ManagerConfig{}
	if c != nil {
		*out = *c
	}
	if out.Name == "" {
		out.Name = defaultManagerName()
	}
	if out.Logger == nil {
		out.Logger = NewDefaultLogger()
	}
	if out.Metrics == nil {
		out.Metrics = &NilMetrics{}
	}
	return out
}
