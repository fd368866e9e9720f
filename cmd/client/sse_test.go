package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, stream string) []Event {
	t.Helper()
	out := make(chan Event, 16)
	require.NoError(t, readEvents(context.Background(), strings.NewReader(stream), out))
	close(out)

	var events []Event
	for e := range out {
		events = append(events, e)
	}
	return events
}

func Test_ReadEvents(t *testing.T) {
	testCases := []struct {
		name     string
		stream   string
		expected []Event
	}{
		{
			name:     "named event",
			stream:   "event: Connection\ndata: {\"user_id\":1,\"name\":\"alice\"}\n\n",
			expected: []Event{{Name: "Connection", Data: `{"user_id":1,"name":"alice"}`}},
		},
		{
			name:     "heartbeat comments are skipped",
			stream:   ": ping\n\nevent: Message\ndata: {}\n\n: ping\n\n",
			expected: []Event{{Name: "Message", Data: "{}"}},
		},
		{
			name:     "multi-line data is joined",
			stream:   "event: Message\ndata: a\ndata: b\n\n",
			expected: []Event{{Name: "Message", Data: "a\nb"}},
		},
		{
			name:     "unnamed event defaults to message",
			stream:   "data:x\n\n",
			expected: []Event{{Name: "message", Data: "x"}},
		},
		{
			name:     "incomplete trailing event is not dispatched",
			stream:   "event: Message\ndata: cut",
			expected: nil,
		},
		{
			name:     "event without data is ignored",
			stream:   "event: Disconnection\n\nevent: Message\ndata: y\n\n",
			expected: []Event{{Name: "Message", Data: "y"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, collect(t, tc.stream))
		})
	}
}

func Test_ReadEvents_Stops_On_Canceled_Context(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Given nobody reading the output channel
	out := make(chan Event)

	// When an event is parsed
	err := readEvents(ctx, strings.NewReader("event: Message\ndata: z\n\n"), out)

	// Then the parser gives up instead of blocking
	req.ErrorIs(err, context.Canceled)
}
