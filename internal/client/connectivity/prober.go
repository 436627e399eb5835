package connectivity

import (
	"context"
	"time"

	"github.com/dmitrijs2005/offsync/internal/logging"
)

const (
	DefaultInterval = 3 * time.Second
	DefaultTimeout  = 3 * time.Second
)

// Pinger is satisfied by the remote client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober turns periodic health pings into Monitor transitions.
type Prober struct {
	pinger   Pinger
	monitor  *Monitor
	interval time.Duration
	timeout  time.Duration
	logger   logging.Logger
}

func NewProber(pinger Pinger, monitor *Monitor, interval time.Duration, logger logging.Logger) *Prober {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Prober{
		pinger:   pinger,
		monitor:  monitor,
		interval: interval,
		timeout:  DefaultTimeout,
		logger:   logger,
	}
}

// Probe pings once and feeds the result to the monitor.
func (p *Prober) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	err := p.pinger.Ping(ctx)
	cancel()

	if err != nil {
		p.logger.Debug(ctx, "remote ping failed", "error", err)
	}
	online := err == nil
	p.monitor.Set(online)
	return online
}

// Run probes right away and then on every tick until ctx is done.
func (p *Prober) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Probe(ctx)
	for {
		select {
		case <-ticker.C:
			p.Probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}
