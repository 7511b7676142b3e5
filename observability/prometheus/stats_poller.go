package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/utkarsh5026/taskpool/pool"
)

// StatsProvider provides current pool stats snapshots. *pool.ThreadPool implements it.
type StatsProvider interface {
	Stats() pool.Stats
}

// StatsPoller periodically exports pool Stats() snapshots into Prometheus gauges.
// It covers what the event hooks cannot see, such as the number of tasks
// currently running.
type StatsPoller struct {
	interval time.Duration

	poolsMu sync.RWMutex
	pools   map[string]StatsProvider

	active   *prom.GaugeVec
	workers  *prom.GaugeVec
	capacity *prom.GaugeVec
	stopping *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewStatsPoller creates a poller and registers its collectors under namespace.
func NewStatsPoller(namespace string, reg prom.Registerer, interval time.Duration) (*StatsPoller, error) {
	if namespace == "" {
		namespace = "taskpool"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	active := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "active_tasks",
		Help:      "Tasks currently executing per pool.",
	}, []string{"pool"})
	workers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "workers",
		Help:      "Worker count per pool.",
	}, []string{"pool"})
	capacity := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_capacity",
		Help:      "Maximum number of queued tasks per pool.",
	}, []string{"pool"})
	stopping := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "stopping",
		Help:      "Pool shutdown state (1=stopping, 0=accepting).",
	}, []string{"pool"})

	var err error
	if active, err = registerCollector(reg, active); err != nil {
		return nil, err
	}
	if workers, err = registerCollector(reg, workers); err != nil {
		return nil, err
	}
	if capacity, err = registerCollector(reg, capacity); err != nil {
		return nil, err
	}
	if stopping, err = registerCollector(reg, stopping); err != nil {
		return nil, err
	}

	return &StatsPoller{
		interval: interval,
		pools:    make(map[string]StatsProvider),
		active:   active,
		workers:  workers,
		capacity: capacity,
		stopping: stopping,
	}, nil
}

// AddPool adds or replaces a stats provider by name.
func (p *StatsPoller) AddPool(name string, provider StatsProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *StatsPoller) Start(ctx context.Context) {
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

	go p.loop(pollCtx, p.done)
}

// Stop stops periodic polling and takes one last snapshot; repeated calls are safe.
func (p *StatsPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel, done := p.cancel, p.done
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()

	cancel()
	<-done
	p.collectOnce()
}

func (p *StatsPoller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

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

func (p *StatsPoller) collectOnce() {
	p.poolsMu.RLock()
	defer p.poolsMu.RUnlock()

	for name, provider := range p.pools {
		stats := provider.Stats()
		p.active.WithLabelValues(name).Set(float64(stats.Active))
		p.workers.WithLabelValues(name).Set(float64(stats.Workers))
		p.capacity.WithLabelValues(name).Set(float64(stats.QueueCapacity))
		if stats.Stopping {
			p.stopping.WithLabelValues(name).Set(1)
		} else {
			p.stopping.WithLabelValues(name).Set(0)
		}
	}
}
