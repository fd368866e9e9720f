package workers

import (
	"chat-broadcaster/contract"
	"chat-broadcaster/domain"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	_ contract.Worker      = (*EventFanout)(nil)
	_ contract.IDispatcher = (*EventFanout)(nil)
)

type broadcast struct {
	frame   domain.Frame
	targets []*domain.Subscriber
}

// EventFanout pushes frames to every subscriber of a snapshot.
//
// It provides best-effort, at-most-once delivery: no acknowledgement, no retry,
// no replay. A failing sink never aborts delivery to the others and is never
// reported back to the caller; the liveness monitor is in charge of evicting it.
//
// Broadcasts are handled one after the other so that every subscriber observes
// frames in the order the coordinator emitted them. Inside one broadcast,
// targets are served concurrently.
type EventFanout struct {
	log         *slog.Logger
	queue       chan broadcast
	done        chan struct{}
	doneOnce    sync.Once
	sinkTimeout time.Duration
	upstream    <-chan struct{}
	grace       time.Duration
	delivered   atomic.Uint64
	dropped     atomic.Uint64
}

func NewEventFanout(log *slog.Logger, bufferSize int, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:         log,
		queue:       make(chan broadcast, bufferSize),
		done:        make(chan struct{}),
		sinkTimeout: sinkTimeout,
	}
}

// WaitFor makes Run keep delivering after cancellation until upstream is closed,
// so frames emitted by a producer draining its own queue are not lost.
// It gives up once upstream stays silent for grace.
func (w *EventFanout) WaitFor(upstream <-chan struct{}, grace time.Duration) *EventFanout {
	w.upstream = upstream
	w.grace = grace
	return w
}

// Dispatch hands a frame over to the fanout goroutine.
// Once the fanout is stopped, frames are dropped.
func (w *EventFanout) Dispatch(frame domain.Frame, targets []*domain.Subscriber) {
	if len(targets) == 0 {
		return
	}
	select {
	case w.queue <- broadcast{frame: frame, targets: targets}:
	case <-w.done:
		w.log.Debug("Fanout stopped, frame dropped", "kind", frame.Kind(), "targets", len(targets))
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case b := <-w.queue:
			w.Fanout(b.frame, b.targets)
		case <-ctx.Done():
			w.awaitUpstream()
			w.drain()
			w.log.Debug("Context done, stopping fanout")
			return nil
		}
	}
}

func (w *EventFanout) awaitUpstream() {
	if w.upstream == nil {
		return
	}
	timer := time.NewTimer(w.grace)
	defer timer.Stop()
	for {
		select {
		case b := <-w.queue:
			w.Fanout(b.frame, b.targets)
			timer.Reset(w.grace)
		case <-w.upstream:
			return
		case <-timer.C:
			w.log.Warn("Upstream still running after shutdown, stopping fanout", "grace", w.grace)
			return
		}
	}
}

// drain delivers what the coordinator already emitted before stopping.
func (w *EventFanout) drain() {
	for {
		select {
		case b := <-w.queue:
			w.Fanout(b.frame, b.targets)
		default:
			w.doneOnce.Do(func() { close(w.done) })
			return
		}
	}
}

// Fanout One goroutine for each target, bounded by sinkTimeout.
// It returns once every target has been tried.
func (w *EventFanout) Fanout(frame domain.Frame, targets []*domain.Subscriber) {
	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(s *domain.Subscriber) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), w.sinkTimeout)
			defer cancel()

			if err := s.Sink.Consume(ctx, frame); err != nil {
				w.dropped.Add(1)
				w.log.Debug("Frame not delivered",
					"kind", frame.Kind(),
					"user_id", s.UserID,
					"subscriber_id", s.ID,
					"error", err)
				return
			}
			w.delivered.Add(1)
		}(target)
	}
	wg.Wait()
}

func (w *EventFanout) Stats() domain.FanoutStats {
	return domain.FanoutStats{
		Delivered: w.delivered.Load(),
		Dropped:   w.dropped.Load(),
	}
}
