package event

import (
	"chat-broadcaster/domain"
)

// Frame kinds double as SSE event names on the wire.
const (
	JoinedKind         domain.FrameKind = "Connection"
	LeftKind           domain.FrameKind = "Disconnection"
	MessageCreatedKind domain.FrameKind = "Message"
	HeartbeatKind      domain.FrameKind = "Heartbeat"
)

// Joined is emitted on a user's first live connection only.
type Joined struct {
	UserID domain.UserID
	Name   string
}

func (Joined) Kind() domain.FrameKind { return JoinedKind }

// Left is emitted when a user's last live connection goes away.
type Left struct {
	UserID domain.UserID
	Name   string
}

func (Left) Kind() domain.FrameKind { return LeftKind }

type MessageCreated struct {
	Message domain.ChatMessage
}

func (MessageCreated) Kind() domain.FrameKind { return MessageCreatedKind }

// Heartbeat carries no payload. Clients ignore it.
type Heartbeat struct{}

func (Heartbeat) Kind() domain.FrameKind { return HeartbeatKind }
