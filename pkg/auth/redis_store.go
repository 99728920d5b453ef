package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements SessionStore on Redis. Key layout:
//
//	auth:rt:{user}:{jti}                 refresh token registry
//	auth:sms:code:{scene}:{phone}        verification code record (JSON)
//	auth:sms:cooldown:{scene}:{phone}    resend cooldown marker
//	auth:sms:daily:{scene}:{phone}:{day} daily send counter
//	auth:sms:ticket:{scene}:{phone}:{t}  one-time verification ticket
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore creates a session store on the given client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func refreshKey(userID, jti string) string {
	return fmt.Sprintf("auth:rt:%s:%s", userID, jti)
}

func codeKey(scene Scene, phone string) string {
	return fmt.Sprintf("auth:sms:code:%s:%s", scene, phone)
}

func cooldownKey(scene Scene, phone string) string {
	return fmt.Sprintf("auth:sms:cooldown:%s:%s", scene, phone)
}

func dailyKey(scene Scene, phone string, day time.Time) string {
	return fmt.Sprintf("auth:sms:daily:%s:%s:%s", scene, phone, day.UTC().Format("20060102"))
}

func ticketKey(scene Scene, phone, ticket string) string {
	return fmt.Sprintf("auth:sms:ticket:%s:%s:%s", scene, phone, ticket)
}

func (s *RedisStore) StoreRefreshToken(ctx context.Context, userID, jti string, ttl time.Duration) error {
	if ttl < time.Second {
		ttl = time.Second
	}
	return s.client.Set(ctx, refreshKey(userID, jti), "1", ttl).Err()
}

func (s *RedisStore) RefreshTokenExists(ctx context.Context, userID, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, refreshKey(userID, jti)).Result()
	return n > 0, err
}

func (s *RedisStore) RevokeRefreshToken(ctx context.Context, userID, jti string) (bool, error) {
	n, err := s.client.Del(ctx, refreshKey(userID, jti)).Result()
	return n > 0, err
}

func (s *RedisStore) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	iter := s.client.Scan(ctx, 0, refreshKey(userID, "*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *RedisStore) SetCode(ctx context.Context, scene Scene, phone string, record CodeRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, codeKey(scene, phone), data, ttl).Err()
}

func (s *RedisStore) GetCode(ctx context.Context, scene Scene, phone string) (*CodeRecord, error) {
	raw, err := s.client.Get(ctx, codeKey(scene, phone)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record CodeRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		// An unreadable record is treated as absent; it can only be
		// replaced by a new send.
		return nil, nil
	}
	return &record, nil
}

func (s *RedisStore) UpdateCode(ctx context.Context, scene Scene, phone string, record CodeRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, codeKey(scene, phone), data, redis.KeepTTL).Err()
}

func (s *RedisStore) DeleteCode(ctx context.Context, scene Scene, phone string) error {
	return s.client.Del(ctx, codeKey(scene, phone)).Err()
}

func (s *RedisStore) InCooldown(ctx context.Context, scene Scene, phone string) (bool, error) {
	n, err := s.client.Exists(ctx, cooldownKey(scene, phone)).Result()
	return n > 0, err
}

func (s *RedisStore) SetCooldown(ctx context.Context, scene Scene, phone string, ttl time.Duration) error {
	return s.client.Set(ctx, cooldownKey(scene, phone), "1", ttl).Err()
}

func (s *RedisStore) IncrDailyCount(ctx context.Context, scene Scene, phone string) (int64, error) {
	now := s.now().UTC()
	key := dailyKey(scene, phone, now)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		midnight := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
		if err := s.client.Expire(ctx, key, midnight.Sub(now)).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (s *RedisStore) DailyCount(ctx context.Context, scene Scene, phone string) (int64, error) {
	n, err := s.client.Get(ctx, dailyKey(scene, phone, s.now())).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func (s *RedisStore) StoreTicket(ctx context.Context, scene Scene, phone, ticket string, ttl time.Duration) error {
	return s.client.Set(ctx, ticketKey(scene, phone, ticket), "1", ttl).Err()
}

func (s *RedisStore) ConsumeTicket(ctx context.Context, scene Scene, phone, ticket string) (bool, error) {
	n, err := s.client.Del(ctx, ticketKey(scene, phone, ticket)).Result()
	return n > 0, err
}
