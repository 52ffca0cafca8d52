package store

import (
	"errors"

	"github.com/parleychat/parley/internal/models"
)

var (
	// ErrNotFound is returned by lookups for ids or usernames that do not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrUsernameTaken is returned by CreateUser when the username is already
	// registered (case-sensitive exact match).
	ErrUsernameTaken = errors.New("store: username taken")
)

// UserStore holds account records. CreateUser must enforce username
// uniqueness at insert time, not just at lookup time, so that concurrent
// registrations cannot slip a duplicate through a check-then-insert window.
type UserStore interface {
	CreateUser(user *models.User) error
	UserByID(id string) (*models.User, error)
	UserByUsername(username string) (*models.User, error)
	// Users returns a snapshot of all accounts, in no particular order.
	Users() ([]models.User, error)
	SetOnline(id string, online bool) error
}

// ConversationStore holds append-only message logs keyed by conversation key.
type ConversationStore interface {
	Append(key string, msg models.Message) error
	// Messages returns the full log for key, oldest first. A conversation that
	// has never been written to yields an empty slice, not an error.
	Messages(key string) ([]models.Message, error)
}

// ConversationKey derives the canonical identifier for the conversation
// between two users. The pair is unordered: ConversationKey(a, b) ==
// ConversationKey(b, a).
func ConversationKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "-" + b
}
