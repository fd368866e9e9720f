package repositories

import (
	"chat-broadcaster/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_CreateUser_Allocates_Increasing_IDs(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository, err := NewUserRepository(db)
	req.NoError(err)
	defer repository.Close()

	alice, err := repository.CreateUser("Alice")
	req.NoError(err)
	bob, err := repository.CreateUser("Alice")
	req.NoError(err)

	req.Equal(domain.UserID(1), alice)
	req.Equal(domain.UserID(2), bob)

	name, err := repository.GetUserName(bob)
	req.NoError(err)
	req.Equal("Alice", name)
}

func Test_GetUserName_Unknown(t *testing.T) {
	db := openTestDB(t)
	repository, err := NewUserRepository(db)
	require.NoError(t, err)
	defer repository.Close()

	_, err = repository.GetUserName(99)
	require.Error(t, err)
}
