package offline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingConnectivity struct {
	mu     sync.Mutex
	states []bool
}

func (r *recordingConnectivity) SetOnline(online bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, online)
}

func (r *recordingConnectivity) last() (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return false, false
	}
	return r.states[len(r.states)-1], true
}

func TestMonitor_ReportsProbeResults(t *testing.T) {
	p := &mockPinger{err: errors.New("timeout")}
	target := &recordingConnectivity{}
	m := NewMonitor(p, target, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	waitUntil(t, time.Second, func() bool {
		online, ok := target.last()
		return ok && !online
	}, "expected monitor to report offline")

	p.setErr(nil)
	waitUntil(t, time.Second, func() bool {
		online, ok := target.last()
		return ok && online
	}, "expected monitor to report online")
}
