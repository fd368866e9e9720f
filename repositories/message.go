//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-broadcaster/domain"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/jonboulle/clockwork"
)

const (
	MessagePrefix      = "msg:"
	messageSequenceKey = "seq:message"
	sequenceBandwidth  = 100
)

// IMessageStore is the durable append-only chat log.
type IMessageStore interface {
	Insert(ctx context.Context, userID domain.UserID, userName, text string) (domain.ChatMessage, error)
	ListAll(ctx context.Context) ([]domain.ChatMessage, error)
}

type MessageRepository struct {
	db    *badger.DB
	seq   *badger.Sequence
	clock clockwork.Clock
	log   *slog.Logger
}

func NewMessageRepository(db *badger.DB, clock clockwork.Clock, log *slog.Logger) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(messageSequenceKey), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	return &MessageRepository{db: db, seq: seq, clock: clock, log: log}, nil
}

// Insert persists a message and returns it with its store-assigned ID and CreatedAt.
// The key is formatted as "msg:{created_at_padded}:{id_padded}" so that a prefix
// scan returns messages in persistence order (19-digit zero padding keeps the
// lexicographical order equal to the numeric one).
// ctx is checked before and after the id allocation; the Badger write itself
// cannot be interrupted once started.
func (m *MessageRepository) Insert(ctx context.Context, userID domain.UserID, userName, text string) (domain.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return domain.ChatMessage{}, err
	}
	next, err := m.seq.Next()
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("next message id: %w", err)
	}
	// Leasing a new sequence range writes to disk and may have used up the deadline.
	// The id is then lost: ids are unique, not contiguous.
	if err := ctx.Err(); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("message %d not stored: %w", next+1, err)
	}
	message := domain.ChatMessage{
		// Badger sequences start at 0, ids start at 1
		ID:        int64(next) + 1,
		UserID:    userID,
		UserName:  userName,
		Text:      text,
		CreatedAt: m.clock.Now().UTC(),
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(message), encodeMessage(message))
	})
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("store message %d: %w", message.ID, err)
	}
	return message, nil
}

// ListAll returns every persisted message, oldest first.
func (m *MessageRepository) ListAll(ctx context.Context) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(MessagePrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			err := item.Value(func(value []byte) error {
				message, err := DecodeMessage(value)
				if err != nil {
					return fmt.Errorf("decode %s: %w", item.Key(), err)
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.log.Debug("Messages loaded", "count", len(messages))
	return messages, nil
}

// Close returns the unused part of the leased id range to Badger.
func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

func messageKey(message domain.ChatMessage) []byte {
	return []byte(fmt.Sprintf("%s%019d:%019d", MessagePrefix, message.CreatedAt.UnixNano(), message.ID))
}
