// Package memory provides an in-memory user repository for tests and
// development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/chatforge/chatforge/pkg/user"
)

// Store implements user.Repository with plain maps. Safe for concurrent
// use; contents vanish on restart.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]*user.User
	byName  map[string]string
	byPhone map[string]string
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		byID:    make(map[string]*user.User),
		byName:  make(map[string]string),
		byPhone: make(map[string]string),
	}
}

func clone(u *user.User) *user.User {
	c := *u
	if u.DeactivatedAt != nil {
		t := *u.DeactivatedAt
		c.DeactivatedAt = &t
	}
	return &c
}

func (s *Store) Create(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[u.Username]; ok {
		return &user.DuplicateError{Field: "username", Value: u.Username}
	}
	if _, ok := s.byPhone[u.Phone]; ok {
		return &user.DuplicateError{Field: "phone", Value: u.Phone}
	}

	s.byID[u.ID] = clone(u)
	s.byName[u.Username] = u.ID
	s.byPhone[u.Phone] = u.ID
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, &user.NotFoundError{Key: id}
	}
	return clone(u), nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getByIndex(s.byName, username)
}

func (s *Store) GetByPhone(ctx context.Context, phone string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getByIndex(s.byPhone, phone)
}

func (s *Store) getByIndex(index map[string]string, lookup string) (*user.User, error) {
	id, ok := index[lookup]
	if !ok {
		return nil, &user.NotFoundError{Key: lookup}
	}
	u, ok := s.byID[id]
	if !ok {
		return nil, &user.NotFoundError{Key: lookup}
	}
	return clone(u), nil
}

func (s *Store) GetByIdentifier(ctx context.Context, identifier string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, err := s.getByIndex(s.byName, identifier); err == nil {
		return u, nil
	}
	return s.getByIndex(s.byPhone, identifier)
}

func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return &user.NotFoundError{Key: id}
	}

	now := time.Now().UTC()
	u.Active = active
	u.UpdatedAt = now
	if active {
		u.DeactivatedAt = nil
	} else {
		u.DeactivatedAt = &now
	}
	return nil
}

func (s *Store) Reactivate(ctx context.Context, id, username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return &user.NotFoundError{Key: id}
	}

	if username != u.Username {
		if _, taken := s.byName[username]; taken {
			return &user.DuplicateError{Field: "username", Value: username}
		}
		delete(s.byName, u.Username)
		s.byName[username] = id
		u.Username = username
	}

	u.PasswordHash = passwordHash
	u.Active = true
	u.DeactivatedAt = nil
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) Close() error {
	return nil
}
