package workers

import (
	"chat-broadcaster/contract"
	"chat-broadcaster/domain"
	"chat-broadcaster/domain/event"
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

var _ contract.Worker = (*LivenessMonitor)(nil)

// LivenessMonitor probes every subscriber with a heartbeat frame on a fixed period.
// The heartbeat keeps idle push connections open through proxies. A probe that
// cannot be enqueued means the peer vanished or stopped reading: the subscriber
// is evicted through the coordinator like a disconnect reported by the transport.
type LivenessMonitor struct {
	log         *slog.Logger
	clock       clockwork.Clock
	interval    time.Duration
	coordinator contract.ICoordinator
	evictions   atomic.Uint64
}

func NewLivenessMonitor(log *slog.Logger, clock clockwork.Clock, interval time.Duration, coordinator contract.ICoordinator) *LivenessMonitor {
	return &LivenessMonitor{
		log:         log,
		clock:       clock,
		interval:    interval,
		coordinator: coordinator,
	}
}

// Run executes the main loop of the worker, probing subscribers every interval.
func (w *LivenessMonitor) Run(ctx context.Context) error {
	w.log.Info("Starting liveness monitor", "interval", w.interval)
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if _, err := w.Probe(ctx); err != nil {
				w.log.Warn("Liveness probe failed", "error", err)
			}
		}
	}
}

// Probe sends one heartbeat to each registered subscriber and evicts the dead ones.
// It returns the subscribers found dead during this tick.
func (w *LivenessMonitor) Probe(ctx context.Context) ([]*domain.Subscriber, error) {
	subscribers, err := w.coordinator.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var dead []*domain.Subscriber
	for _, s := range subscribers {
		if err := s.Sink.Consume(ctx, event.Heartbeat{}); err != nil {
			w.log.Debug("Subscriber is not alive", "user_id", s.UserID, "subscriber_id", s.ID, "error", err)
			dead = append(dead, s)
		}
	}

	for _, s := range dead {
		if err := w.coordinator.Unsubscribe(ctx, s.UserID, s.Name, s.ID); err != nil {
			w.log.Warn("Eviction not queued", "user_id", s.UserID, "subscriber_id", s.ID, "error", err)
			continue
		}
		w.evictions.Add(1)
		// Ends the stream of a connection that is still open but too slow
		if closer, ok := s.Sink.(interface{ Close() }); ok {
			closer.Close()
		}
	}
	if len(dead) > 0 {
		w.log.Info("Dead subscribers evicted", "count", len(dead), "probed", len(subscribers))
	}
	return dead, nil
}

func (w *LivenessMonitor) Evictions() uint64 {
	return w.evictions.Load()
}
