package memstore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/models"
	"github.com/parleychat/parley/internal/store"
)

func TestCreateUserDuplicate(t *testing.T) {
	s := New()

	err := s.CreateUser(&models.User{ID: "u1", Username: "alice", Password: "hash"})
	require.NoError(t, err)

	err = s.CreateUser(&models.User{ID: "u2", Username: "alice", Password: "hash"})
	require.ErrorIs(t, err, store.ErrUsernameTaken)
}

func TestUserLookups(t *testing.T) {
	s := New()
	require.NoError(t, s.CreateUser(&models.User{ID: "u1", Username: "alice", Password: "hash"}))

	byID, err := s.UserByID("u1")
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)

	byName, err := s.UserByUsername("alice")
	require.NoError(t, err)
	require.Equal(t, "u1", byName.ID)

	_, err = s.UserByID("nope")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.UserByUsername("nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetOnline(t *testing.T) {
	s := New()
	require.NoError(t, s.CreateUser(&models.User{ID: "u1", Username: "alice"}))

	require.NoError(t, s.SetOnline("u1", true))
	u, err := s.UserByID("u1")
	require.NoError(t, err)
	require.True(t, u.Online)

	require.NoError(t, s.SetOnline("u1", false))
	u, err = s.UserByID("u1")
	require.NoError(t, err)
	require.False(t, u.Online)

	require.ErrorIs(t, s.SetOnline("nope", true), store.ErrNotFound)
}

func TestLookupReturnsCopy(t *testing.T) {
	s := New()
	require.NoError(t, s.CreateUser(&models.User{ID: "u1", Username: "alice"}))

	u, err := s.UserByID("u1")
	require.NoError(t, err)
	u.Online = true

	again, err := s.UserByID("u1")
	require.NoError(t, err)
	require.False(t, again.Online, "mutating a lookup result must not touch the store")
}

func TestAppendPreservesOrder(t *testing.T) {
	s := New()
	key := store.ConversationKey("a", "b")

	for i := 0; i < 5; i++ {
		err := s.Append(key, models.Message{ID: fmt.Sprintf("m%d", i), Body: fmt.Sprintf("msg %d", i)})
		require.NoError(t, err)
	}

	msgs, err := s.Messages(key)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	for i, m := range msgs {
		require.Equal(t, fmt.Sprintf("m%d", i), m.ID)
	}
}

func TestMessagesEmptyConversation(t *testing.T) {
	s := New()

	msgs, err := s.Messages(store.ConversationKey("a", "b"))
	require.NoError(t, err)
	require.Empty(t, msgs)
}
