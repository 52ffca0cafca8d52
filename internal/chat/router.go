// Package chat routes private messages between users and relays typing
// indicators. The router owns the persistence and delivery policy; the
// presence manager tells it where (and whether) a recipient can be reached.
package chat

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/parleychat/parley/internal/models"
	"github.com/parleychat/parley/internal/presence"
	"github.com/parleychat/parley/internal/store"
)

var (
	// ErrUnknownRecipient is returned by Send when the recipient id does not
	// exist at all. A known-but-offline recipient is not an error; see Send.
	ErrUnknownRecipient = errors.New("chat: unknown recipient")

	// ErrSelfMessage is returned when sender and recipient are the same user.
	ErrSelfMessage = errors.New("chat: cannot message yourself")

	// ErrEmptyMessage is returned for a zero-length body.
	ErrEmptyMessage = errors.New("chat: empty message")
)

// ErrMessageTooLong carries the configured limit for the error surface.
type ErrMessageTooLong struct {
	Limit int
}

func (e ErrMessageTooLong) Error() string {
	return fmt.Sprintf("chat: message exceeds %d bytes", e.Limit)
}

// timestampLayout matches ISO-8601 with millisecond precision, e.g.
// 2026-08-29T14:03:07.512Z.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Router accepts send intents, appends them to the conversation log, and
// delivers them to live connections.
type Router struct {
	presence *presence.Manager
	convs    store.ConversationStore
	users    store.UserStore
	log      *slog.Logger

	maxBody int
	// storeOffline switches on store-always mode: messages to a known but
	// offline recipient are appended to history (no delivery). Off by
	// default: offline recipients drop the message entirely.
	storeOffline bool
}

func NewRouter(p *presence.Manager, convs store.ConversationStore, users store.UserStore, maxBody int, storeOffline bool, log *slog.Logger) *Router {
	return &Router{
		presence:     p,
		convs:        convs,
		users:        users,
		log:          log,
		maxBody:      maxBody,
		storeOffline: storeOffline,
	}
}

// Send stores and delivers a message from sender to recipient. The append
// completes before either delivery, and the identical record is sent to the
// recipient and echoed back to the sender, so both ends render the same
// history entry.
//
// Policy: a message to a recipient who exists but is offline is dropped
// (neither stored nor delivered) and Send returns (nil, nil). In store-always
// mode it is appended but still not delivered.
func (r *Router) Send(senderID, senderUsername, recipientID, body string) (*models.Message, error) {
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if len(body) > r.maxBody {
		return nil, ErrMessageTooLong{Limit: r.maxBody}
	}
	if senderID == recipientID {
		return nil, ErrSelfMessage
	}
	if _, err := r.users.UserByID(recipientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownRecipient
		}
		return nil, err
	}

	conn, online := r.presence.Conn(recipientID)
	if !online && !r.storeOffline {
		r.log.Debug("dropping message to offline recipient",
			"senderId", senderID, "recipientId", recipientID)
		return nil, nil
	}

	msg := models.Message{
		ID:             uuid.New().String(),
		SenderID:       senderID,
		SenderUsername: senderUsername,
		RecipientID:    recipientID,
		Body:           body,
		Timestamp:      time.Now().UTC().Format(timestampLayout),
	}

	key := store.ConversationKey(senderID, recipientID)
	if err := r.convs.Append(key, msg); err != nil {
		return nil, err
	}

	if online {
		conn.Send("privateMessage", msg)
	}
	if sender, ok := r.presence.Conn(senderID); ok {
		sender.Send("privateMessage", msg)
	}
	return &msg, nil
}

// History returns the full conversation log between the two users, oldest
// first. Never-spoken pairs get an empty slice.
func (r *Router) History(userID, otherUserID string) ([]models.Message, error) {
	return r.convs.Messages(store.ConversationKey(userID, otherUserID))
}
