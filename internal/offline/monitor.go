package offline

import (
	"context"
	"log/slog"
	"time"
)

type Connectivity interface {
	SetOnline(online bool)
}

// Monitor probes the database on a fixed interval and reports the result.
type Monitor struct {
	pinger   Pinger
	target   Connectivity
	interval time.Duration
}

func NewMonitor(pinger Pinger, target Connectivity, interval time.Duration) *Monitor {
	return &Monitor{pinger: pinger, target: target, interval: interval}
}

func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	err := m.pinger.Ping(probeCtx)
	if err != nil && ctx.Err() == nil {
		slog.Debug("database probe failed", "error", err)
	}
	if ctx.Err() != nil {
		return
	}
	m.target.SetOnline(err == nil)
}
