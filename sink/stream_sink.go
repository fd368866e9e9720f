package sink

import (
	"chat-broadcaster/domain"
	"chat-broadcaster/errors"
	"context"
	"sync"
)

var _ domain.FrameSink = (*StreamSink)(nil)

// StreamSink is the bounded outbound queue of one push connection.
// The fan-out and the liveness monitor write into it, the transport handler
// drains it through Frames.
type StreamSink struct {
	mu     sync.RWMutex
	closed bool
	frames chan domain.Frame
}

func NewStreamSink(capacity int) *StreamSink {
	return &StreamSink{frames: make(chan domain.Frame, capacity)}
}

// Consume is called by fanout and liveness probes.
// It never blocks: a saturated buffer fails with ErrSinkFull so that one slow
// client cannot stall delivery to the others.
func (s *StreamSink) Consume(ctx context.Context, frame domain.Frame) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return errors.ErrSinkClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.frames <- frame:
		return nil
	default:
		return errors.ErrSinkFull
	}
}

// Frames is closed once Close has been called and pending frames are read.
func (s *StreamSink) Frames() <-chan domain.Frame {
	return s.frames
}

func (s *StreamSink) Len() int {
	return len(s.frames)
}

// Close is idempotent.
func (s *StreamSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.frames)
}
