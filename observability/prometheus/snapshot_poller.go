package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/concurrency-kit/go-thread-manager/concurrency"
)

// ManagerSnapshotProvider provides current manager stats snapshots.
type ManagerSnapshotProvider interface {
	Stats() concurrency.ManagerStats
}

// SnapshotPoller periodically exports manager Stats() snapshots into
// Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	managersMu sync.RWMutex
	managers   map[string]ManagerSnapshotProvider

	managerWorkers *prom.GaugeVec
	managerIdle    *prom.GaugeVec
	managerPending *prom.GaugeVec
	managerTotal   *prom.GaugeVec
	managerExpired *prom.GaugeVec
	managerStarted *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	managerWorkers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadmanager",
		Name:      "workers",
		Help:      "Worker count per manager.",
	}, []string{"manager"})
	managerIdle := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadmanager",
		Name:      "idle_workers",
		Help:      "Idle worker count per manager.",
	}, []string{"manager"})
	managerPending := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadmanager",
		Name:      "pending_tasks",
		Help:      "Pending tasks per manager.",
	}, []string{"manager"})
	managerTotal := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadmanager",
		Name:      "total_tasks",
		Help:      "Pending plus executing tasks per manager.",
	}, []string{"manager"})
	managerExpired := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadmanager",
		Name:      "expired_tasks_total",
		Help:      "Expired task count snapshot.",
	}, []string{"manager"})
	managerStarted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadmanager",
		Name:      "started",
		Help:      "Manager started state (1=started, 0=other).",
	}, []string{"manager"})

	var err error
	if managerWorkers, err = registerCollector(reg, managerWorkers); err != nil {
		return nil, err
	}
	if managerIdle, err = registerCollector(reg, managerIdle); err != nil {
		return nil, err
	}
	if managerPending, err = registerCollector(reg, managerPending); err != nil {
		return nil, err
	}
	if managerTotal, err = registerCollector(reg, managerTotal); err != nil {
		return nil, err
	}
	if managerExpired, err = registerCollector(reg, managerExpired); err != nil {
		return nil, err
	}
	if managerStarted, err = registerCollector(reg, managerStarted); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:       interval,
		managers:       make(map[string]ManagerSnapshotProvider),
		managerWorkers: managerWorkers,
		managerIdle:    managerIdle,
		managerPending: managerPending,
		managerTotal:   managerTotal,
		managerExpired: managerExpired,
		managerStarted: managerStarted,
	}, nil
}

// AddManager adds or replaces a manager snapshot provider by name.
func (p *SnapshotPoller) AddManager(name string, provider ManagerSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "manager")
	p.managersMu.Lock()
	p.managers[name] = provider
	p.managersMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.managersMu.RLock()
	defer p.managersMu.RUnlock()

	for name, provider := range p.managers {
		stats := provider.Stats()
		p.managerWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		p.managerIdle.WithLabelValues(name).Set(float64(stats.Idle))
		p.managerPending.WithLabelValues(name).Set(float64(stats.Pending))
		p.managerTotal.WithLabelValues(name).Set(float64(stats.Total))
		p.managerExpired.WithLabelValues(name).Set(float64(stats.Expired))
		if stats.State == concurrency.ManagerStarted {
			p.managerStarted.WithLabelValues(name).Set(1)
		} else {
			p.managerStarted.WithLabelValues(name).Set(0)
		}
	}
}
