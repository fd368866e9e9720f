package sink

import (
	"chat-broadcaster/domain/event"
	"chat-broadcaster/errors"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamSink_Consume_Until_Full(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewStreamSink(2)

	req.NoError(s.Consume(ctx, event.Heartbeat{}))
	req.NoError(s.Consume(ctx, event.Joined{UserID: 1, Name: "Alice"}))

	// Third frame does not fit and must not block
	req.ErrorIs(s.Consume(ctx, event.Heartbeat{}), errors.ErrSinkFull)
	req.Equal(2, s.Len())

	frame := <-s.Frames()
	req.Equal(event.Heartbeat{}, frame)
	req.NoError(s.Consume(ctx, event.Heartbeat{}))
}

func TestStreamSink_Closed(t *testing.T) {
	req := require.New(t)
	s := NewStreamSink(2)
	req.NoError(s.Consume(context.Background(), event.Heartbeat{}))

	s.Close()
	s.Close()

	req.ErrorIs(s.Consume(context.Background(), event.Heartbeat{}), errors.ErrSinkClosed)

	// Pending frames are still readable, then the channel reports closed
	_, ok := <-s.Frames()
	req.True(ok)
	_, ok = <-s.Frames()
	req.False(ok)
}

func TestStreamSink_Canceled_Context(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewStreamSink(1)
	require.ErrorIs(t, s.Consume(ctx, event.Heartbeat{}), context.Canceled)
}
