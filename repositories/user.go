//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"chat-broadcaster/domain"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const (
	UserPrefix      = "user:"
	userSequenceKey = "seq:user"
)

type IUserRepository interface {
	CreateUser(name string) (domain.UserID, error)
	GetUserName(id domain.UserID) (string, error)
}

type UserRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

func NewUserRepository(db *badger.DB) (*UserRepository, error) {
	seq, err := db.GetSequence([]byte(userSequenceKey), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("user sequence: %w", err)
	}
	return &UserRepository{db: db, seq: seq}, nil
}

// CreateUser allocates the next user id and remembers the display name chosen at signup.
// Names are not unique: two users may sign up with the same one.
func (u *UserRepository) CreateUser(name string) (domain.UserID, error) {
	next, err := u.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("next user id: %w", err)
	}
	id := domain.UserID(next + 1)

	err = u.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(id), []byte(name))
	})
	if err != nil {
		return 0, fmt.Errorf("store user %d: %w", id, err)
	}
	return id, nil
}

func (u *UserRepository) GetUserName(id domain.UserID) (string, error) {
	var name string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			name = string(val)
			return nil
		})
	})
	return name, err
}

func (u *UserRepository) Close() error {
	return u.seq.Release()
}

func userKey(id domain.UserID) []byte {
	return []byte(fmt.Sprintf("%s%019d", UserPrefix, id))
}
