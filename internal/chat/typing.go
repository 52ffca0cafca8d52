package chat

import "github.com/parleychat/parley/internal/presence"

// TypingEvent is the payload forwarded to the recipient of a typing signal.
type TypingEvent struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// Relay forwards ephemeral typing indicators. Nothing is persisted and an
// offline recipient silently drops the signal; clients stop their own
// indicator after an idle interval, so a lost stop event self-heals.
type Relay struct {
	presence *presence.Manager
}

func NewRelay(p *presence.Manager) *Relay {
	return &Relay{presence: p}
}

func (r *Relay) Forward(fromID, fromUsername, toID string, isTyping bool) {
	conn, ok := r.presence.Conn(toID)
	if !ok {
		return
	}
	conn.Send("typing", TypingEvent{
		UserID:   fromID,
		Username: fromUsername,
		IsTyping: isTyping,
	})
}
