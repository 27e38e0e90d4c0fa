package prometheus

import (
	"context"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/concurrency-kit/go-thread-manager/concurrency"
)

type staticProvider struct {
	stats concurrency.ManagerStats
}

func (p *staticProvider) Stats() concurrency.ManagerStats { return p.stats }

func TestSnapshotPoller_CollectsManagerStats(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	poller.AddManager("pool-a", &staticProvider{stats: concurrency.ManagerStats{
		Name:    "pool-a",
		State:   concurrency.ManagerStarted,
		Workers: 3,
		Idle:    2,
		Pending: 5,
		Total:   6,
		Expired: 1,
	}})

	poller.Start(context.Background())
	defer poller.Stop()

	// The first collection happens synchronously with the loop start; give
	// it a moment.
	time.Sleep(50 * time.Millisecond)

	if got := testutil.ToFloat64(poller.managerWorkers.WithLabelValues("pool-a")); got != 3 {
		t.Errorf("workers gauge = %v, want 3", got)
	}
	if got := testutil.ToFloat64(poller.managerIdle.WithLabelValues("pool-a")); got != 2 {
		t.Errorf("idle gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(poller.managerPending.WithLabelValues("pool-a")); got != 5 {
		t.Errorf("pending gauge = %v, want 5", got)
	}
	if got := testutil.ToFloat64(poller.managerExpired.WithLabelValues("pool-a")); got != 1 {
		t.Errorf("expired gauge = %v, want 1", got)
	}
	if got := testutil.ToFloat64(poller.managerStarted.WithLabelValues("pool-a")); got != 1 {
		t.Errorf("started gauge = %v, want 1", got)
	}
}

func TestSnapshotPoller_StartStopIdempotent(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, time.Second)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	poller.Start(context.Background())
	poller.Start(context.Background()) // no-op

	poller.Stop()
	poller.Stop() // safe

	// Restart works after a full stop
	poller.Start(context.Background())
	poller.Stop()
}

func TestSnapshotPoller_LiveManager(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	manager := concurrency.NewSimpleManager(2, 0, &concurrency.ManagerConfig{
		Name:   "live",
		Logger: concurrency.NewNoOpLogger(),
	})
	if err := manager.Start(); err != nil {
		t.Fatalf("manager.Start failed: %v", err)
	}
	defer manager.Stop()

	poller.AddManager("live", manager)
	poller.Start(context.Background())
	defer poller.Stop()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if testutil.ToFloat64(poller.managerWorkers.WithLabelValues("live")) == 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("workers gauge never reflected the live manager")
}
