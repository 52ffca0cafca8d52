package sqlstore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/models"
	"github.com/parleychat/parley/internal/store"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateUserDuplicate(t *testing.T) {
	s := newTestStore(t)

	err := s.CreateUser(&models.User{ID: "u1", Username: "alice", Password: "hash"})
	require.NoError(t, err)

	err = s.CreateUser(&models.User{ID: "u2", Username: "alice", Password: "hash"})
	require.ErrorIs(t, err, store.ErrUsernameTaken)
}

func TestUserLookups(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateUser(&models.User{ID: "u1", Username: "alice", Password: "hash"}))

	u, err := s.UserByUsername("alice")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.Equal(t, "hash", u.Password)

	u, err = s.UserByID("u1")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)

	_, err = s.UserByUsername("nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetOnline(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateUser(&models.User{ID: "u1", Username: "alice"}))

	require.NoError(t, s.SetOnline("u1", true))
	u, err := s.UserByID("u1")
	require.NoError(t, err)
	require.True(t, u.Online)

	require.ErrorIs(t, s.SetOnline("ghost", true), store.ErrNotFound)
}

func TestUsersSnapshot(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateUser(&models.User{ID: "u1", Username: "alice"}))
	require.NoError(t, s.CreateUser(&models.User{ID: "u2", Username: "bob"}))

	users, err := s.Users()
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestMessagesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateUser(&models.User{ID: "a", Username: "alice"}))
	require.NoError(t, s.CreateUser(&models.User{ID: "b", Username: "bob"}))

	key := store.ConversationKey("a", "b")
	for i := 0; i < 3; i++ {
		msg := models.Message{
			ID:             fmt.Sprintf("m%d", i),
			SenderID:       "a",
			SenderUsername: "alice",
			RecipientID:    "b",
			Body:           fmt.Sprintf("hello %d", i),
			Timestamp:      fmt.Sprintf("2026-08-29T12:00:0%d.000Z", i),
		}
		require.NoError(t, s.Append(key, msg))
	}

	msgs, err := s.Messages(key)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i, m := range msgs {
		require.Equal(t, fmt.Sprintf("m%d", i), m.ID)
		require.Equal(t, "alice", m.SenderUsername)
	}

	// The symmetric key reads the same log.
	same, err := s.Messages(store.ConversationKey("b", "a"))
	require.NoError(t, err)
	require.Equal(t, msgs, same)

	// Unknown conversations are empty, not an error.
	empty, err := s.Messages(store.ConversationKey("a", "c"))
	require.NoError(t, err)
	require.Empty(t, empty)
}
