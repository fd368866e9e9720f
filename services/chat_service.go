//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"chat-broadcaster/auth"
	"chat-broadcaster/contract"
	"chat-broadcaster/domain"
	"chat-broadcaster/repositories"
	"context"
	"fmt"
)

type IChatService interface {
	Join(ctx context.Context, identity auth.Identity, sink domain.FrameSink) (*domain.Subscriber, error)
	Leave(ctx context.Context, subscriber *domain.Subscriber) error
	PostMessage(ctx context.Context, identity auth.Identity, text string) error
	GetMessages(ctx context.Context) ([]domain.ChatMessage, error)
}

type ChatService struct {
	coordinator      contract.ICoordinator
	store            repositories.IMessageStore
	maxMessageLength int
}

func NewChatService(coordinator contract.ICoordinator, store repositories.IMessageStore, maxMessageLength int) *ChatService {
	return &ChatService{coordinator: coordinator, store: store, maxMessageLength: maxMessageLength}
}

// Join binds a new connection to the caller and registers it.
func (s *ChatService) Join(ctx context.Context, identity auth.Identity, sink domain.FrameSink) (*domain.Subscriber, error) {
	subscriber := domain.NewSubscriber(identity.UserID, identity.Name, sink)
	if err := s.coordinator.Subscribe(ctx, subscriber); err != nil {
		return nil, err
	}
	return subscriber, nil
}

func (s *ChatService) Leave(ctx context.Context, subscriber *domain.Subscriber) error {
	return s.coordinator.Unsubscribe(ctx, subscriber.UserID, subscriber.Name, subscriber.ID)
}

// PostMessage returns as soon as the coordinator accepted the message.
// Persistence and broadcast happen afterwards.
func (s *ChatService) PostMessage(ctx context.Context, identity auth.Identity, text string) error {
	if err := auth.ValidateMessage(text, s.maxMessageLength); err != nil {
		return err
	}
	return s.coordinator.Publish(ctx, text, identity.UserID, identity.Name)
}

func (s *ChatService) GetMessages(ctx context.Context) ([]domain.ChatMessage, error) {
	messages, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}
