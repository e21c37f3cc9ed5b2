package connectivity

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Manual is a push-notified reachability flag.
// It is the oracle the fetch engine reads; probes and the UI write to it.
type Manual struct {
	notifyMu  sync.Mutex // orders notifications the same as state changes
	mu        sync.RWMutex
	connected bool
	nextID    int
	subs      map[int]func(bool)
}

// NewManual returns an oracle with the given initial reachability
func NewManual(connected bool) *Manual {
	return &Manual{connected: connected, subs: make(map[int]func(bool))}
}

func (m *Manual) Current() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Set updates reachability and notifies subscribers when it changed.
// Concurrent calls deliver notifications in the order the changes were
// applied, so the last notification always matches Current. Subscribers
// must not call Set.
func (m *Manual) Set(connected bool) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	if m.connected == connected {
		m.mu.Unlock()
		return
	}
	m.connected = connected
	subs := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(connected)
	}
}

func (m *Manual) Subscribe(onChange func(connected bool)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = onChange
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// DialFunc opens a connection; matches (*net.Dialer).DialContext
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Prober periodically checks that addr accepts TCP connections and feeds the result into an oracle.
type Prober struct {
	addr     string
	interval time.Duration
	timeout  time.Duration
	target   *Manual
	dial     DialFunc
	logger   *slog.Logger
}

// NewProber creates a prober writing into target
func NewProber(addr string, interval, timeout time.Duration, target *Manual, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	d := &net.Dialer{}
	return &Prober{
		addr:     addr,
		interval: interval,
		timeout:  timeout,
		target:   target,
		dial:     d.DialContext,
		logger:   logger,
	}
}

// Probe performs a single reachability check and publishes the result
func (p *Prober) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dial(ctx, "tcp", p.addr)
	reachable := err == nil
	if conn != nil {
		conn.Close()
	}

	if reachable != p.target.Current() {
		p.logger.Info("connectivity changed", "addr", p.addr, "connected", reachable, "error", err)
	}
	p.target.Set(reachable)
	return reachable
}

// Run probes immediately and then every interval until ctx is cancelled.
func (p *Prober) Run(ctx context.Context) {
	p.Probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}
