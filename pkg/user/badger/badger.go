// Package badger provides a Badger-backed implementation of the user
// repository with a ristretto read cache on ID lookups.
package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/ristretto/v2"

	"github.com/chatforge/chatforge/pkg/user"
)

// Config holds configuration for the Badger user store.
type Config struct {
	Path       string
	SyncWrites bool
	// CacheSize is the maximum number of users held in the read cache.
	CacheSize int64
}

// Store implements user.Repository using Badger. Records are stored as
// JSON under the ID key; username and phone lookups go through secondary
// index keys holding the ID.
type Store struct {
	db    *badger.DB
	cache *ristretto.Cache[string, *user.User]
}

// New opens the Badger database at config.Path.
func New(config *Config) (*Store, error) {
	opts := badger.DefaultOptions(config.Path)
	opts.SyncWrites = config.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, &user.UnavailableError{Cause: err}
	}

	cacheSize := config.CacheSize
	if cacheSize <= 0 {
		cacheSize = 10_000
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, *user.User]{
		NumCounters: cacheSize * 10,
		MaxCost:     cacheSize,
		BufferItems: 64,
	})
	if err != nil {
		db.Close()
		return nil, &user.UnavailableError{Cause: err}
	}

	return &Store{db: db, cache: cache}, nil
}

func idKey(id string) []byte {
	return []byte(fmt.Sprintf("user:id:%s", id))
}

func nameKey(username string) []byte {
	return []byte(fmt.Sprintf("user:name:%s", username))
}

func phoneKey(phone string) []byte {
	return []byte(fmt.Sprintf("user:phone:%s", phone))
}

func serialize(u *user.User) ([]byte, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("marshal user %s: %w", u.ID, err)
	}
	return data, nil
}

// Create stores a new user. Both index keys are checked and written in the
// same transaction, so uniqueness holds under concurrent registration.
func (s *Store) Create(ctx context.Context, u *user.User) error {
	data, err := serialize(u)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(nameKey(u.Username)); err == nil {
			return &user.DuplicateError{Field: "username", Value: u.Username}
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		if _, err := txn.Get(phoneKey(u.Phone)); err == nil {
			return &user.DuplicateError{Field: "phone", Value: u.Phone}
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		if err := txn.Set(idKey(u.ID), data); err != nil {
			return err
		}
		if err := txn.Set(nameKey(u.Username), []byte(u.ID)); err != nil {
			return err
		}
		return txn.Set(phoneKey(u.Phone), []byte(u.ID))
	})
}

// GetByID retrieves a user, consulting the read cache first.
func (s *Store) GetByID(ctx context.Context, id string) (*user.User, error) {
	if cached, ok := s.cache.Get(id); ok {
		clone := *cached
		return &clone, nil
	}

	var u user.User
	err := s.db.View(func(txn *badger.Txn) error {
		return s.getInTxn(txn, id, &u)
	})
	if err != nil {
		return nil, err
	}

	clone := u
	s.cache.Set(id, &clone, 1)
	return &u, nil
}

func (s *Store) getInTxn(txn *badger.Txn, id string, u *user.User) error {
	item, err := txn.Get(idKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return &user.NotFoundError{Key: id}
		}
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, u)
	})
}

func (s *Store) getByIndex(key []byte, lookup string) (*user.User, error) {
	var u user.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return &user.NotFoundError{Key: lookup}
			}
			return err
		}

		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}
		return s.getInTxn(txn, id, &u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername retrieves a user through the username index.
func (s *Store) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.getByIndex(nameKey(username), username)
}

// GetByPhone retrieves a user through the phone index.
func (s *Store) GetByPhone(ctx context.Context, phone string) (*user.User, error) {
	return s.getByIndex(phoneKey(phone), phone)
}

// GetByIdentifier tries the username index first, then the phone index.
func (s *Store) GetByIdentifier(ctx context.Context, identifier string) (*user.User, error) {
	u, err := s.GetByUsername(ctx, identifier)
	if err == nil {
		return u, nil
	}
	if !user.IsNotFound(err) {
		return nil, err
	}
	return s.GetByPhone(ctx, identifier)
}

// SetActive flips the active flag and invalidates the cache entry.
func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		var u user.User
		if err := s.getInTxn(txn, id, &u); err != nil {
			return err
		}

		now := time.Now().UTC()
		u.Active = active
		u.UpdatedAt = now
		if active {
			u.DeactivatedAt = nil
		} else {
			u.DeactivatedAt = &now
		}

		data, err := serialize(&u)
		if err != nil {
			return err
		}
		return txn.Set(idKey(id), data)
	})
	if err != nil {
		return err
	}

	s.cache.Del(id)
	return nil
}

// Reactivate re-enables a deactivated account under a new username and
// password hash. The old username index entry moves to the new name in the
// same transaction.
func (s *Store) Reactivate(ctx context.Context, id, username, passwordHash string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		var u user.User
		if err := s.getInTxn(txn, id, &u); err != nil {
			return err
		}

		if username != u.Username {
			if _, err := txn.Get(nameKey(username)); err == nil {
				return &user.DuplicateError{Field: "username", Value: username}
			} else if err != badger.ErrKeyNotFound {
				return err
			}
			if err := txn.Delete(nameKey(u.Username)); err != nil {
				return err
			}
			if err := txn.Set(nameKey(username), []byte(id)); err != nil {
				return err
			}
			u.Username = username
		}

		u.PasswordHash = passwordHash
		u.Active = true
		u.DeactivatedAt = nil
		u.UpdatedAt = time.Now().UTC()

		data, err := serialize(&u)
		if err != nil {
			return err
		}
		return txn.Set(idKey(id), data)
	})
	if err != nil {
		return err
	}

	s.cache.Del(id)
	return nil
}

// Close closes the cache and the database.
func (s *Store) Close() error {
	s.cache.Close()
	return s.db.Close()
}
