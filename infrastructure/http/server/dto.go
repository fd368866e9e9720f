package server

import (
	"chat-broadcaster/domain"
	"time"

	"github.com/samber/lo"
)

// PresenceDTO is the payload of Connection and Disconnection events.
// Subscriber ids stay internal.
type PresenceDTO struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

type MessageDTO struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionDTO struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
}

type ErrorDTO struct {
	Error string `json:"error"`
}

func toMessageDTO(m domain.ChatMessage) MessageDTO {
	return MessageDTO{
		ID:        m.ID,
		UserID:    int64(m.UserID),
		UserName:  m.UserName,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

func toMessageDTOs(messages []domain.ChatMessage) []MessageDTO {
	return lo.Map(messages, func(item domain.ChatMessage, _ int) MessageDTO {
		return toMessageDTO(item)
	})
}

func toPresenceDTO(userID domain.UserID, name string) PresenceDTO {
	return PresenceDTO{UserID: int64(userID), Name: name}
}
