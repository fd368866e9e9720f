package workers

import (
	"chat-broadcaster/domain"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type probeStub struct {
	mu     sync.Mutex
	status domain.HealthStatus
}

func (p *probeStub) set(status domain.HealthStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
}

func (p *probeStub) Report(context.Context) domain.HealthReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return domain.HealthReport{Status: p.status}
}

type servingRecorder struct {
	mu      sync.Mutex
	history []bool
}

func (s *servingRecorder) SetServing(serving bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, serving)
}

func (s *servingRecorder) History() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.history...)
}

func TestHealthMonitoringWorker_Check(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	probe := &probeStub{status: domain.HealthStatusOK}
	serving := &servingRecorder{}
	worker := NewHealthMonitoringWorker(log, clockwork.NewFakeClock(), probe, serving, time.Second)

	req.Equal(domain.HealthStatusOK, worker.Check(context.Background()).Status)
	probe.set(domain.HealthStatusDegraded)
	req.Equal(domain.HealthStatusDegraded, worker.Check(context.Background()).Status)

	req.Equal([]bool{true, false}, serving.History())
}

func TestHealthMonitoringWorker_Run(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	clock := clockwork.NewFakeClock()
	probe := &probeStub{status: domain.HealthStatusOK}
	serving := &servingRecorder{}
	worker := NewHealthMonitoringWorker(log, clock, probe, serving, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// Given the first check done at startup
	req.NoError(clock.BlockUntilContext(ctx, 1))
	req.Eventually(func() bool { return len(serving.History()) == 1 }, time.Second, 5*time.Millisecond)

	// When the probe degrades and one period elapses
	probe.set(domain.HealthStatusDegraded)
	clock.Advance(time.Second)
	req.Eventually(func() bool { return len(serving.History()) == 2 }, time.Second, 5*time.Millisecond)

	// Then stopping marks the server as not serving
	cancel()
	req.NoError(<-done)
	req.Equal([]bool{true, false, false}, serving.History())
}
