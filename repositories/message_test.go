package repositories

import (
	"chat-broadcaster/domain"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Insert_Assigns_ID_And_CreatedAt(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

	repository, err := NewMessageRepository(db, clock, slog.Default())
	req.NoError(err)
	defer repository.Close()

	message, err := repository.Insert(context.Background(), 7, "Alice", "hello")
	req.NoError(err)

	req.Equal(int64(1), message.ID)
	req.Equal(domain.UserID(7), message.UserID)
	req.Equal("Alice", message.UserName)
	req.Equal("hello", message.Text)
	req.Equal(clock.Now().UTC(), message.CreatedAt)
}

func Test_Record_Multiple_Message(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

	repository, err := NewMessageRepository(db, clock, slog.Default())
	req.NoError(err)
	defer repository.Close()

	var inserted []domain.ChatMessage
	for _, author := range []string{"Alice", "Bob", "Clara"} {
		message, err := repository.Insert(context.Background(), 1, author, "this message will self destruct in 5 seconds")
		req.NoError(err)
		inserted = append(inserted, message)
		clock.Advance(time.Minute)
	}

	fetched, err := repository.ListAll(context.Background())
	req.NoError(err)
	req.Equal(inserted, fetched)
	req.Equal([]int64{1, 2, 3}, []int64{fetched[0].ID, fetched[1].ID, fetched[2].ID})
}

func Test_Same_Instant_Keeps_Insertion_Order(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	clock := clockwork.NewFakeClock()

	repository, err := NewMessageRepository(db, clock, slog.Default())
	req.NoError(err)
	defer repository.Close()

	for _, text := range []string{"first", "second", "third"} {
		_, err := repository.Insert(context.Background(), 1, "Alice", text)
		req.NoError(err)
	}

	fetched, err := repository.ListAll(context.Background())
	req.NoError(err)
	req.Len(fetched, 3)
	req.Equal("first", fetched[0].Text)
	req.Equal("third", fetched[2].Text)
}

func Test_ListAll_Empty_Store(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository, err := NewMessageRepository(db, clockwork.NewFakeClock(), slog.Default())
	req.NoError(err)
	defer repository.Close()

	fetched, err := repository.ListAll(context.Background())
	req.NoError(err)
	req.Empty(fetched)
}

func Test_Codec_Round_Trip_Keeps_Negative_User_ID(t *testing.T) {
	req := require.New(t)
	message := domain.ChatMessage{
		ID:        42,
		UserID:    -3,
		UserName:  "Zoé",
		Text:      "ünïcode ✓",
		CreatedAt: time.Unix(0, 1709287200123456789).UTC(),
	}

	decoded, err := DecodeMessage(encodeMessage(message))
	req.NoError(err)
	req.Equal(message, decoded)
}

func Test_Codec_Rejects_Truncated_Record(t *testing.T) {
	b := encodeMessage(domain.ChatMessage{ID: 1, UserName: "Alice", Text: "hello", CreatedAt: time.Now()})
	_, err := DecodeMessage(b[:len(b)-3])
	require.Error(t, err)
}

// expiringContext reports no error on its first check and an expired deadline afterwards.
type expiringContext struct {
	context.Context
	checks int
}

func (c *expiringContext) Err() error {
	c.checks++
	if c.checks > 1 {
		return context.DeadlineExceeded
	}
	return nil
}

func Test_Insert_Expired_Context_Before_Write(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository, err := NewMessageRepository(db, clockwork.NewFakeClock(), slog.Default())
	req.NoError(err)
	defer repository.Close()

	// Given a deadline that expires while the id is allocated
	ctx := &expiringContext{Context: context.Background()}

	// When inserting
	_, err = repository.Insert(ctx, 1, "alice", "too late")

	// Then nothing is written
	req.ErrorIs(err, context.DeadlineExceeded)
	messages, err := repository.ListAll(context.Background())
	req.NoError(err)
	req.Empty(messages)
}

func Test_Insert_Canceled_Context(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository, err := NewMessageRepository(db, clockwork.NewFakeClock(), slog.Default())
	req.NoError(err)
	defer repository.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = repository.Insert(ctx, 1, "alice", "never")
	req.ErrorIs(err, context.Canceled)
}
