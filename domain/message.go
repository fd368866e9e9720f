// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable once persisted.
package domain

import (
	"time"
)

// ChatMessage is a persisted chat line.
// ID and CreatedAt are assigned by the message store, never by the caller.
type ChatMessage struct {
	ID        int64
	UserID    UserID
	UserName  string
	Text      string
	CreatedAt time.Time
}
