package runtime_test

import (
	"chat-broadcaster/domain"
	"chat-broadcaster/domain/event"
	"chat-broadcaster/mocks"
	"chat-broadcaster/runtime"
	"chat-broadcaster/runtime/workers"
	"chat-broadcaster/sink"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newOrchestrator(t *testing.T, clock clockwork.Clock) (*runtime.Orchestrator, *mocks.MockIMessageStore) {
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	store := mocks.NewMockIMessageStore(ctrl)
	supervisor := workers.NewSupervisor(log, 10*time.Millisecond)
	orchestrator := runtime.NewOrchestrator(log, supervisor, store, clock, runtime.Config{
		CommandBufferSize: 16,
		SinkTimeout:       time.Second,
		StoreTimeout:      time.Second,
		HeartbeatInterval: 5 * time.Second,
	})
	return orchestrator, store
}

func next(t *testing.T, s *sink.StreamSink) domain.Frame {
	t.Helper()
	select {
	case frame := <-s.Frames():
		return frame
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return nil
	}
}

func Test_Orchestrator_Broadcasts_Stored_Message(t *testing.T) {
	req := require.New(t)
	orchestrator, store := newOrchestrator(t, clockwork.NewFakeClock())
	req.NoError(orchestrator.Start(context.Background()))
	defer orchestrator.Stop()

	coordinator := orchestrator.Coordinator()
	ctx := context.Background()
	aliceSink := sink.NewStreamSink(10)
	req.NoError(coordinator.Subscribe(ctx, domain.NewSubscriber(1, "alice", aliceSink)))
	req.Equal(event.Joined{UserID: 1, Name: "alice"}, next(t, aliceSink))

	stored := domain.ChatMessage{ID: 1, UserID: 1, UserName: "alice", Text: "hello", CreatedAt: time.Now().UTC()}
	store.EXPECT().Insert(gomock.Any(), domain.UserID(1), "alice", "hello").Return(stored, nil)

	req.NoError(coordinator.Publish(ctx, "hello", 1, "alice"))
	req.Equal(event.MessageCreated{Message: stored}, next(t, aliceSink))

	stats, err := orchestrator.Stats(ctx)
	req.NoError(err)
	req.Equal(1, stats.Coordinator.Users)
	req.Equal(uint64(1), stats.Coordinator.Published)
	req.Zero(stats.Restarts)
	req.Eventually(func() bool {
		s, err := orchestrator.Stats(ctx)
		return err == nil && s.Fanout.Delivered == 2
	}, time.Second, 5*time.Millisecond)
}

func Test_Orchestrator_Heartbeat_Evicts_Dead_Subscriber(t *testing.T) {
	req := require.New(t)
	clock := clockwork.NewFakeClock()
	orchestrator, _ := newOrchestrator(t, clock)
	req.NoError(orchestrator.Start(context.Background()))
	defer orchestrator.Stop()

	coordinator := orchestrator.Coordinator()
	ctx := context.Background()
	watcherSink := sink.NewStreamSink(10)
	req.NoError(coordinator.Subscribe(ctx, domain.NewSubscriber(1, "watcher", watcherSink)))
	req.Equal(event.Joined{UserID: 1, Name: "watcher"}, next(t, watcherSink))

	// Given a connection whose transport already went away
	goneSink := sink.NewStreamSink(10)
	req.NoError(coordinator.Subscribe(ctx, domain.NewSubscriber(2, "gone", goneSink)))
	req.Equal(event.Joined{UserID: 2, Name: "gone"}, next(t, watcherSink))
	goneSink.Close()

	// When the heartbeat period elapses
	req.NoError(clock.BlockUntilContext(ctx, 1))
	clock.Advance(5 * time.Second)

	// Then the watcher gets a heartbeat and the gone user is announced as left
	req.Equal(event.Heartbeat{}, next(t, watcherSink))
	req.Equal(event.Left{UserID: 2, Name: "gone"}, next(t, watcherSink))

	req.Eventually(func() bool {
		stats, err := orchestrator.Stats(ctx)
		return err == nil && stats.Coordinator.Subscribers == 1 && stats.Evictions == 1
	}, time.Second, 5*time.Millisecond)
}

func Test_Orchestrator_Stop_Refuses_New_Commands(t *testing.T) {
	req := require.New(t)
	orchestrator, _ := newOrchestrator(t, clockwork.NewFakeClock())
	req.NoError(orchestrator.Start(context.Background()))
	req.Error(orchestrator.Start(context.Background()))

	orchestrator.Stop()

	select {
	case <-orchestrator.Done():
	default:
		t.Fatal("orchestrator should be stopped")
	}
	err := orchestrator.Coordinator().Subscribe(context.Background(), domain.NewSubscriber(1, "late", sink.NewStreamSink(1)))
	req.Error(err)
}
