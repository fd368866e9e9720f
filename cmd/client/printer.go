package main

import (
	"chat-broadcaster/domain"
	"chat-broadcaster/domain/event"
	"chat-broadcaster/infrastructure/http/server"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gookit/color"
)

type Printer struct {
	Colours bool
}

func (p Printer) Event(e Event) (string, error) {
	kind := domain.FrameKind(e.Name)
	switch kind {
	case event.JoinedKind, event.LeftKind:
		var presence server.PresenceDTO
		if err := json.Unmarshal([]byte(e.Data), &presence); err != nil {
			return "", err
		}
		return p.Presence(kind, presence), nil
	case event.MessageCreatedKind:
		var message server.MessageDTO
		if err := json.Unmarshal([]byte(e.Data), &message); err != nil {
			return "", err
		}
		return p.Message(message), nil
	default:
		return "", fmt.Errorf("unknown event %q", e.Name)
	}
}

func (p Printer) Presence(kind domain.FrameKind, presence server.PresenceDTO) string {
	verb, style := "joined", color.New(color.FgGreen)
	if kind == event.LeftKind {
		verb, style = "left", color.New(color.FgRed)
	}
	line := fmt.Sprintf("*** %s (#%d) %s", presence.Name, presence.UserID, verb)
	if p.Colours {
		return style.Render(line)
	}
	return line
}

func (p Printer) Message(m server.MessageDTO) string {
	at := m.CreatedAt.Local().Format(time.TimeOnly)
	name := m.UserName
	if p.Colours {
		name = color.New(color.FgCyan, color.OpBold).Render(name)
	}
	return fmt.Sprintf("[%s] %s: %s", at, name, m.Text)
}
