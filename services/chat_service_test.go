package services_test

import (
	"chat-broadcaster/auth"
	"chat-broadcaster/domain"
	"chat-broadcaster/errors"
	"chat-broadcaster/mocks"
	"chat-broadcaster/services"
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestChatService_Join_And_Leave(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	coordinator := mocks.NewMockICoordinator(ctrl)
	sink := mocks.NewMockFrameSink(ctrl)
	svc := services.NewChatService(coordinator, mocks.NewMockIMessageStore(ctrl), 100)
	ctx := context.Background()

	var registered *domain.Subscriber
	coordinator.EXPECT().Subscribe(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, s *domain.Subscriber) error {
			registered = s
			return nil
		})

	subscriber, err := svc.Join(ctx, auth.Identity{UserID: 1, Name: "alice"}, sink)
	req.NoError(err)
	req.Same(registered, subscriber)
	req.Equal(domain.UserID(1), subscriber.UserID)
	req.Equal("alice", subscriber.Name)
	req.NotEmpty(subscriber.ID)

	coordinator.EXPECT().Unsubscribe(ctx, domain.UserID(1), "alice", subscriber.ID).Return(nil)
	req.NoError(svc.Leave(ctx, subscriber))
}

func TestChatService_Join_Coordinator_Stopped(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	coordinator := mocks.NewMockICoordinator(ctrl)
	svc := services.NewChatService(coordinator, mocks.NewMockIMessageStore(ctrl), 100)

	coordinator.EXPECT().Subscribe(gomock.Any(), gomock.Any()).Return(errors.ErrCoordinatorStopped)

	subscriber, err := svc.Join(context.Background(), auth.Identity{UserID: 1, Name: "alice"}, mocks.NewMockFrameSink(ctrl))
	req.ErrorIs(err, errors.ErrCoordinatorStopped)
	req.Nil(subscriber)
}

func TestChatService_PostMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	coordinator := mocks.NewMockICoordinator(ctrl)
	svc := services.NewChatService(coordinator, mocks.NewMockIMessageStore(ctrl), 5)
	identity := auth.Identity{UserID: 2, Name: "bob"}

	t.Run("should publish a valid message", func(t *testing.T) {
		coordinator.EXPECT().Publish(gomock.Any(), "hi", domain.UserID(2), "bob").Return(nil).Times(1)
		require.NoError(t, svc.PostMessage(context.Background(), identity, "hi"))
	})

	t.Run("should reject messages over the limit without publishing", func(t *testing.T) {
		coordinator.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		err := svc.PostMessage(context.Background(), identity, strings.Repeat("a", 6))
		require.ErrorIs(t, err, errors.ErrInvalidMessage)
	})

	t.Run("should reject empty messages", func(t *testing.T) {
		err := svc.PostMessage(context.Background(), identity, "")
		require.ErrorIs(t, err, errors.ErrInvalidMessage)
	})
}

func TestChatService_GetMessages(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIMessageStore(ctrl)
	svc := services.NewChatService(mocks.NewMockICoordinator(ctrl), store, 100)

	history := []domain.ChatMessage{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}
	store.EXPECT().ListAll(gomock.Any()).Return(history, nil)
	messages, err := svc.GetMessages(context.Background())
	req.NoError(err)
	req.Equal(history, messages)

	store.EXPECT().ListAll(gomock.Any()).Return(nil, stderrors.New("io"))
	_, err = svc.GetMessages(context.Background())
	req.Error(err)
}
