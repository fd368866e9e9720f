//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_frame_sink.go -package=mocks

// Package domain contains core concepts of the chat system.
// This file defines Subscriber entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"context"

	"github.com/google/uuid"
)

type UserID int64

// SubscriberID identifies one physical connection. It is generated when the
// connection is accepted and never reused: a reconnecting client gets a new one.
type SubscriberID string

func NewSubscriberID() SubscriberID {
	return SubscriberID(uuid.NewString())
}

// Frame is one outbound notification pushed to a subscriber.
type Frame interface {
	Kind() FrameKind
}

type FrameKind string

// FrameSink enqueues frames for a remote peer.
// Consume must never block: a full or closed sink returns an error immediately.
type FrameSink interface {
	Consume(ctx context.Context, frame Frame) error
}

// Subscriber is one live push connection bound to a user identity.
// A user may hold several subscribers at once (one per tab).
type Subscriber struct {
	ID     SubscriberID
	UserID UserID
	Name   string
	Sink   FrameSink
}

func NewSubscriber(userID UserID, name string, sink FrameSink) *Subscriber {
	return &Subscriber{
		ID:     NewSubscriberID(),
		UserID: userID,
		Name:   name,
		Sink:   sink,
	}
}
