package workers

import (
	"chat-broadcaster/domain"
	"chat-broadcaster/domain/event"
	"chat-broadcaster/errors"
	"chat-broadcaster/mocks"
	"context"
	stderrors "errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestLivenessMonitor_Probe_Evicts_Failing_Sinks(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	coordinator := mocks.NewMockICoordinator(ctrl)

	alive := mocks.NewMockFrameSink(ctrl)
	saturated := mocks.NewMockFrameSink(ctrl)
	aliceTab := domain.NewSubscriber(1, "alice", alive)
	bobTab := domain.NewSubscriber(2, "bob", saturated)

	monitor := NewLivenessMonitor(log, clockwork.NewFakeClock(), 5*time.Second, coordinator)

	// Given two registered subscribers, one of them saturated
	coordinator.EXPECT().Snapshot(gomock.Any()).Return([]*domain.Subscriber{aliceTab, bobTab}, nil)
	alive.EXPECT().Consume(gomock.Any(), event.Heartbeat{}).Return(nil)
	saturated.EXPECT().Consume(gomock.Any(), event.Heartbeat{}).Return(errors.ErrSinkFull)

	// Then only the saturated one goes through the regular unsubscribe path
	coordinator.EXPECT().Unsubscribe(gomock.Any(), domain.UserID(2), "bob", bobTab.ID).Return(nil).Times(1)

	dead, err := monitor.Probe(context.Background())
	req.NoError(err)
	req.Equal([]*domain.Subscriber{bobTab}, dead)
	req.Equal(uint64(1), monitor.Evictions())
}

func TestLivenessMonitor_Probe_Snapshot_Error(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	coordinator := mocks.NewMockICoordinator(ctrl)

	monitor := NewLivenessMonitor(log, clockwork.NewFakeClock(), 5*time.Second, coordinator)
	coordinator.EXPECT().Snapshot(gomock.Any()).Return(nil, errors.ErrCoordinatorStopped)

	_, err := monitor.Probe(context.Background())
	req.ErrorIs(err, errors.ErrCoordinatorStopped)
	req.Zero(monitor.Evictions())
}

func TestLivenessMonitor_Probe_Eviction_Not_Queued(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	coordinator := mocks.NewMockICoordinator(ctrl)
	closed := mocks.NewMockFrameSink(ctrl)
	tab := domain.NewSubscriber(1, "alice", closed)

	monitor := NewLivenessMonitor(log, clockwork.NewFakeClock(), 5*time.Second, coordinator)
	coordinator.EXPECT().Snapshot(gomock.Any()).Return([]*domain.Subscriber{tab}, nil)
	closed.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(errors.ErrSinkClosed)
	coordinator.EXPECT().Unsubscribe(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(stderrors.New("mailbox full"))

	dead, err := monitor.Probe(context.Background())
	req.NoError(err)
	req.Len(dead, 1)
	req.Zero(monitor.Evictions())
}

func TestLivenessMonitor_Run_Probes_On_Each_Tick(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	coordinator := mocks.NewMockICoordinator(ctrl)
	clock := clockwork.NewFakeClock()

	monitor := NewLivenessMonitor(log, clock, 5*time.Second, coordinator)
	probed := make(chan struct{}, 2)
	coordinator.EXPECT().Snapshot(gomock.Any()).
		DoAndReturn(func(ctx context.Context) ([]*domain.Subscriber, error) {
			probed <- struct{}{}
			return nil, nil
		}).
		Times(2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- monitor.Run(ctx) }()

	for i := 0; i < 2; i++ {
		// Wait for the ticker to be registered before moving the clock
		req.NoError(clock.BlockUntilContext(ctx, 1))
		clock.Advance(5 * time.Second)
		select {
		case <-probed:
		case <-time.After(time.Second):
			req.Fail("no probe after tick")
		}
	}

	// Nothing happens before the period elapses
	clock.Advance(4 * time.Second)
	select {
	case <-probed:
		req.Fail("probe before period")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	req.NoError(<-done)
}
