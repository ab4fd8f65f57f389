// Package connectivity tracks whether the record store is reachable and
// notifies subscribers on every change of that state.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/citybreaks/internal/logging"
)

// Prober reports reachability; a nil error means online.
type Prober interface {
	Ping(ctx context.Context) error
}

// Transition is emitted once per change of the connectivity state.
type Transition struct {
	Online bool
	At     time.Time
}

// Reconnected reports a false→true change.
func (t Transition) Reconnected() bool {
	return t.Online
}

const (
	DefaultInterval     = 3 * time.Second
	DefaultProbeTimeout = 3 * time.Second
)

type Monitor struct {
	prober       Prober
	interval     time.Duration
	probeTimeout time.Duration
	logger       logging.Logger

	// emitMu keeps transitions ordered across concurrent Observe calls.
	emitMu sync.Mutex
	mu     sync.Mutex
	online bool
	subs   []chan Transition
}

func NewMonitor(p Prober, interval time.Duration, l logging.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		prober:       p,
		interval:     interval,
		probeTimeout: DefaultProbeTimeout,
		logger:       l.With("module", "connectivity"),
	}
}

// Online returns the last observed state. The monitor starts offline.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe returns a channel receiving every transition. Subscribers must
// keep draining it: delivery blocks the probe loop, never drops events.
func (m *Monitor) Subscribe() <-chan Transition {
	ch := make(chan Transition, 8)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Run probes immediately and then on every tick until ctx is done. All
// subscriber channels are closed on return.
func (m *Monitor) Run(ctx context.Context) {
	defer m.closeSubscribers()

	m.probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	err := m.prober.Ping(pctx)
	cancel()

	if err != nil && ctx.Err() != nil {
		return
	}
	if err != nil {
		m.logger.Debug(ctx, "probe failed", "error", err)
	}
	m.Observe(ctx, err == nil)
}

// Observe records a reachability sample and emits a transition when it
// differs from the current state.
func (m *Monitor) Observe(ctx context.Context, online bool) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := append([]chan Transition(nil), m.subs...)
	m.mu.Unlock()

	if online {
		m.logger.Info(ctx, "switched to online mode")
	} else {
		m.logger.Warn(ctx, "switched to offline mode")
	}

	t := Transition{Online: online, At: time.Now()}
	for _, ch := range subs {
		select {
		case ch <- t:
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) closeSubscribers() {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		close(ch)
	}
	m.subs = nil
}
