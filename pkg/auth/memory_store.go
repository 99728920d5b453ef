package auth

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	code      *CodeRecord
	count     int64
	expiresAt time.Time
}

// MemoryStore implements SessionStore with in-process maps. Used in tests
// and single-node development; state vanishes on restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// get drops the entry if expired. Callers hold the lock.
func (s *MemoryStore) get(key string) *memoryEntry {
	entry, ok := s.entries[key]
	if !ok {
		return nil
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return nil
	}
	return entry
}

func (s *MemoryStore) set(key string, entry *memoryEntry, ttl time.Duration) {
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = entry
}

func (s *MemoryStore) StoreRefreshToken(ctx context.Context, userID, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(refreshKey(userID, jti), &memoryEntry{}, ttl)
	return nil
}

func (s *MemoryStore) RefreshTokenExists(ctx context.Context, userID, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(refreshKey(userID, jti)) != nil, nil
}

func (s *MemoryStore) RevokeRefreshToken(ctx context.Context, userID, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := refreshKey(userID, jti)
	existed := s.get(key) != nil
	delete(s.entries, key)
	return existed, nil
}

func (s *MemoryStore) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := refreshKey(userID, "")
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

func (s *MemoryStore) SetCode(ctx context.Context, scene Scene, phone string, record CodeRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(codeKey(scene, phone), &memoryEntry{code: &record}, ttl)
	return nil
}

func (s *MemoryStore) GetCode(ctx context.Context, scene Scene, phone string) (*CodeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.get(codeKey(scene, phone))
	if entry == nil || entry.code == nil {
		return nil, nil
	}
	record := *entry.code
	return &record, nil
}

func (s *MemoryStore) UpdateCode(ctx context.Context, scene Scene, phone string, record CodeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry := s.get(codeKey(scene, phone)); entry != nil {
		entry.code = &record
	}
	return nil
}

func (s *MemoryStore) DeleteCode(ctx context.Context, scene Scene, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, codeKey(scene, phone))
	return nil
}

func (s *MemoryStore) InCooldown(ctx context.Context, scene Scene, phone string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(cooldownKey(scene, phone)) != nil, nil
}

func (s *MemoryStore) SetCooldown(ctx context.Context, scene Scene, phone string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(cooldownKey(scene, phone), &memoryEntry{}, ttl)
	return nil
}

func (s *MemoryStore) IncrDailyCount(ctx context.Context, scene Scene, phone string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	key := dailyKey(scene, phone, now)
	entry := s.get(key)
	if entry == nil {
		midnight := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
		entry = &memoryEntry{}
		s.set(key, entry, midnight.Sub(now))
	}
	entry.count++
	return entry.count, nil
}

func (s *MemoryStore) DailyCount(ctx context.Context, scene Scene, phone string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.get(dailyKey(scene, phone, s.now()))
	if entry == nil {
		return 0, nil
	}
	return entry.count, nil
}

func (s *MemoryStore) StoreTicket(ctx context.Context, scene Scene, phone, ticket string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(ticketKey(scene, phone, ticket), &memoryEntry{}, ttl)
	return nil
}

func (s *MemoryStore) ConsumeTicket(ctx context.Context, scene Scene, phone, ticket string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ticketKey(scene, phone, ticket)
	existed := s.get(key) != nil
	delete(s.entries, key)
	return existed, nil
}
