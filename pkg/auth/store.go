package auth

import (
	"context"
	"time"
)

// Scene identifies what an SMS verification code is for. Codes, cooldowns,
// daily counters, and tickets are all scoped per scene and phone.
type Scene string

const (
	SceneRegister      Scene = "register"
	SceneLogin         Scene = "login"
	SceneAccountDelete Scene = "account_delete"
)

// Valid reports whether s is a known scene.
func (s Scene) Valid() bool {
	switch s {
	case SceneRegister, SceneLogin, SceneAccountDelete:
		return true
	}
	return false
}

// CodeRecord is a stored SMS verification code with its failed-attempt
// counter.
type CodeRecord struct {
	Code     string `json:"code"`
	Attempts int    `json:"attempts"`
}

// SessionStore holds the short-lived server-side auth state: the refresh
// token registry and SMS verification state. Expiry is enforced by the
// store; a read after the TTL behaves as if the entry never existed.
type SessionStore interface {
	// StoreRefreshToken registers a refresh token jti for the user.
	StoreRefreshToken(ctx context.Context, userID, jti string, ttl time.Duration) error
	// RefreshTokenExists reports whether the jti is still valid.
	RefreshTokenExists(ctx context.Context, userID, jti string) (bool, error)
	// RevokeRefreshToken removes the jti, reporting whether it existed.
	RevokeRefreshToken(ctx context.Context, userID, jti string) (bool, error)
	// RevokeAllRefreshTokens removes every refresh token of the user.
	RevokeAllRefreshTokens(ctx context.Context, userID string) error

	// SetCode stores a verification code, replacing any previous one.
	SetCode(ctx context.Context, scene Scene, phone string, record CodeRecord, ttl time.Duration) error
	// GetCode returns the stored code, or nil when absent or expired.
	GetCode(ctx context.Context, scene Scene, phone string) (*CodeRecord, error)
	// UpdateCode rewrites the record keeping the remaining TTL.
	UpdateCode(ctx context.Context, scene Scene, phone string, record CodeRecord) error
	// DeleteCode removes the code.
	DeleteCode(ctx context.Context, scene Scene, phone string) error

	// InCooldown reports whether a resend cooldown is active.
	InCooldown(ctx context.Context, scene Scene, phone string) (bool, error)
	// SetCooldown starts the resend cooldown.
	SetCooldown(ctx context.Context, scene Scene, phone string, ttl time.Duration) error
	// IncrDailyCount bumps today's send counter and returns the new value.
	// The counter expires at the next UTC midnight.
	IncrDailyCount(ctx context.Context, scene Scene, phone string) (int64, error)
	// DailyCount returns today's send counter.
	DailyCount(ctx context.Context, scene Scene, phone string) (int64, error)

	// StoreTicket registers a one-time verification ticket.
	StoreTicket(ctx context.Context, scene Scene, phone, ticket string, ttl time.Duration) error
	// ConsumeTicket removes the ticket, reporting whether it was present.
	// A ticket can only ever be consumed once.
	ConsumeTicket(ctx context.Context, scene Scene, phone, ticket string) (bool, error)
}
