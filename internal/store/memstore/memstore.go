// Package memstore is the in-memory reference implementation of the store
// interfaces. All state is lost on process exit; use sqlstore for a durable
// message log.
package memstore

import (
	"sync"

	"github.com/parleychat/parley/internal/models"
	"github.com/parleychat/parley/internal/store"
)

type MemStore struct {
	mu            sync.RWMutex
	users         map[string]*models.User
	byUsername    map[string]string
	conversations map[string][]models.Message
}

func New() *MemStore {
	return &MemStore{
		users:         make(map[string]*models.User),
		byUsername:    make(map[string]string),
		conversations: make(map[string][]models.Message),
	}
}

// CreateUser inserts the user. The uniqueness check runs under the write
// lock, so two concurrent registrations for the same username cannot both
// succeed.
func (s *MemStore) CreateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[user.Username]; ok {
		return store.ErrUsernameTaken
	}

	u := *user
	s.users[u.ID] = &u
	s.byUsername[u.Username] = u.ID
	return nil
}

func (s *MemStore) UserByID(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemStore) UserByUsername(username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *MemStore) Users() ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	return users, nil
}

func (s *MemStore) SetOnline(id string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Online = online
	return nil
}

func (s *MemStore) Append(key string, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations[key] = append(s.conversations[key], msg)
	return nil
}

func (s *MemStore) Messages(key string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.conversations[key]
	out := make([]models.Message, len(log))
	copy(out, log)
	return out, nil
}
