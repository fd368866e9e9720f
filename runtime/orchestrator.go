// Package runtime owns the live state of the chat channel.
// It orchestrates the system without containing transport or storage details.
package runtime

import (
	"chat-broadcaster/contract"
	"chat-broadcaster/domain"
	"chat-broadcaster/repositories"
	"chat-broadcaster/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type Config struct {
	CommandBufferSize int
	SinkTimeout       time.Duration
	StoreTimeout      time.Duration
	HeartbeatInterval time.Duration
}

// Orchestrator assembles the coordinator, the fanout and the liveness monitor
// and runs them under one supervisor.
type Orchestrator struct {
	mu          sync.Mutex
	log         *slog.Logger
	supervisor  contract.ISupervisor
	coordinator *Coordinator
	fanout      *workers.EventFanout
	liveness    *workers.LivenessMonitor
	started     bool
	cancel      context.CancelFunc
	done        chan struct{}
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, store repositories.IMessageStore,
	clock clockwork.Clock, config Config) *Orchestrator {
	fanout := workers.NewEventFanout(log, config.CommandBufferSize, config.SinkTimeout)
	coordinator := NewCoordinator(log, store, fanout, config.CommandBufferSize, config.StoreTimeout)
	// The fanout outlives the coordinator drain on shutdown
	fanout.WaitFor(coordinator.Stopped(), config.StoreTimeout+config.SinkTimeout)
	liveness := workers.NewLivenessMonitor(log, clock, config.HeartbeatInterval, coordinator)

	return &Orchestrator{
		log:         log,
		supervisor:  supervisor,
		coordinator: coordinator,
		fanout:      fanout,
		liveness:    liveness,
		done:        make(chan struct{}),
	}
}

// Coordinator is the entry point of the transport layer.
func (o *Orchestrator) Coordinator() contract.ICoordinator {
	return o.coordinator
}

// Start registers every worker and runs the supervisor in the background.
// It returns immediately.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return fmt.Errorf("orchestrator already started")
	}
	o.started = true
	ctx, o.cancel = context.WithCancel(ctx)

	o.supervisor.Add(o.coordinator, o.fanout, o.liveness)

	o.log.Info("Starting orchestrator and all supervised workers")
	go func() {
		defer close(o.done)
		o.supervisor.Run(ctx)
	}()
	return nil
}

func (o *Orchestrator) Stats(ctx context.Context) (domain.RuntimeStats, error) {
	coordinatorStats, err := o.coordinator.Stats(ctx)
	if err != nil {
		return domain.RuntimeStats{}, err
	}
	return domain.RuntimeStats{
		Coordinator: coordinatorStats,
		Fanout:      o.fanout.Stats(),
		Evictions:   o.liveness.Evictions(),
		Restarts:    o.supervisor.Restarts(),
	}, nil
}

// Done is closed once every supervised worker has returned.
func (o *Orchestrator) Done() <-chan struct{} {
	return o.done
}

// Stop cancels the supervised workers and waits for them.
// The coordinator drains its queued commands before returning.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()

	o.mu.Lock()
	started, cancel := o.started, o.cancel
	o.mu.Unlock()
	if !started {
		return
	}
	// Run may not have installed its own cancel yet
	cancel()
	<-o.done
	o.log.Debug("Orchestrator stopped")
}
