package server

import (
	"chat-broadcaster/domain"
	"chat-broadcaster/domain/event"
	"encoding/json"
	"fmt"
	"io"
)

// writeFrame encodes one frame in the text/event-stream format.
// Heartbeats are comments: conforming clients ignore them.
func writeFrame(w io.Writer, frame domain.Frame) error {
	var payload any
	switch f := frame.(type) {
	case event.Heartbeat:
		_, err := io.WriteString(w, ": ping\n\n")
		return err
	case event.Joined:
		payload = toPresenceDTO(f.UserID, f.Name)
	case event.Left:
		payload = toPresenceDTO(f.UserID, f.Name)
	case event.MessageCreated:
		payload = toMessageDTO(f.Message)
	default:
		return fmt.Errorf("unsupported frame %T", frame)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s frame: %w", frame.Kind(), err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", frame.Kind(), data)
	return err
}
