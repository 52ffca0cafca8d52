// Package presence tracks which users currently hold a live connection. The
// connection table is owned here, separate from the account records; the
// user's Online flag in the store mirrors this table.
package presence

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/parleychat/parley/internal/models"
	"github.com/parleychat/parley/internal/store"
)

// Conn is a live client connection capable of receiving named events.
// Send is best-effort: a slow or dead connection may drop the event.
type Conn interface {
	Send(event string, payload any)
}

// Broadcast event names, as they appear on the wire.
const (
	EventUserOnline  = "userOnline"
	EventUserOffline = "userOffline"
)

// PresenceEvent is the payload of userOnline / userOffline broadcasts.
type PresenceEvent struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Manager binds authenticated user ids to connection handles and broadcasts
// online/offline transitions. At most one handle per user: a reconnect
// supersedes the previous handle without closing it.
type Manager struct {
	users store.UserStore
	log   *slog.Logger

	mu    sync.RWMutex
	conns map[string]*entry
}

type entry struct {
	username string
	conn     Conn
}

func NewManager(users store.UserStore, log *slog.Logger) *Manager {
	return &Manager{
		users: users,
		log:   log,
		conns: make(map[string]*entry),
	}
}

// Attach registers conn as the user's active handle, marks the user online,
// and broadcasts userOnline to every other connected user. Any previous
// handle for the same user is abandoned for routing purposes.
func (m *Manager) Attach(userID, username string, conn Conn) {
	m.mu.Lock()
	_, reconnect := m.conns[userID]
	m.conns[userID] = &entry{username: username, conn: conn}
	m.mu.Unlock()

	if err := m.users.SetOnline(userID, true); err != nil {
		m.log.Error("set online", "userId", userID, "error", err)
	}
	m.log.Info("user connected", "userId", userID, "username", username, "reconnect", reconnect)

	m.broadcast(EventUserOnline, PresenceEvent{UserID: userID, Username: username}, userID)
}

// Detach unregisters conn. If conn is no longer the user's current handle
// (a reconnect superseded it), the call is a no-op: the stale connection's
// close must not knock the new one offline. Otherwise the user goes offline
// and userOffline is broadcast.
func (m *Manager) Detach(userID string, conn Conn) {
	m.mu.Lock()
	e, ok := m.conns[userID]
	if !ok || e.conn != conn {
		m.mu.Unlock()
		return
	}
	delete(m.conns, userID)
	m.mu.Unlock()

	if err := m.users.SetOnline(userID, false); err != nil {
		m.log.Error("set offline", "userId", userID, "error", err)
	}
	m.log.Info("user disconnected", "userId", userID, "username", e.username)

	m.broadcast(EventUserOffline, PresenceEvent{UserID: userID, Username: e.username}, userID)
}

// Conn returns the user's active connection handle, if any.
func (m *Manager) Conn(userID string) (Conn, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.conns[userID]
	if !ok {
		return nil, false
	}
	return e.conn, true
}

// Online reports whether the user currently holds a live connection.
func (m *Manager) Online(userID string) bool {
	_, ok := m.Conn(userID)
	return ok
}

// Contacts returns a snapshot of all known users except excludeID, sorted by
// username for a stable contact list.
func (m *Manager) Contacts(excludeID string) ([]models.Contact, error) {
	users, err := m.users.Users()
	if err != nil {
		return nil, err
	}

	contacts := make([]models.Contact, 0, len(users))
	for _, u := range users {
		if u.ID == excludeID {
			continue
		}
		contacts = append(contacts, models.Contact{
			ID:       u.ID,
			Username: u.Username,
			Online:   m.Online(u.ID),
		})
	}
	sort.Slice(contacts, func(i, j int) bool {
		return contacts[i].Username < contacts[j].Username
	})
	return contacts, nil
}

// broadcast fires the event at every attached connection except exceptID.
// Best effort only: there is no replay for users who are offline.
func (m *Manager) broadcast(event string, payload any, exceptID string) {
	m.mu.RLock()
	targets := make([]Conn, 0, len(m.conns))
	for id, e := range m.conns {
		if id == exceptID {
			continue
		}
		targets = append(targets, e.conn)
	}
	m.mu.RUnlock()

	for _, c := range targets {
		c.Send(event, payload)
	}
}
