// Package user defines the user account model and its persistence interface.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// User is a registered account. Username and phone are unique across all
// accounts, active or not. Deactivated accounts keep their row so the
// phone number can be reclaimed through reactivation.
type User struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Phone         string     `json:"phone"`
	PasswordHash  string     `json:"password_hash"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
}

// Repository is the persistence interface for user accounts.
type Repository interface {
	// Create stores a new user. Username and phone uniqueness is enforced
	// atomically; a clash returns *DuplicateError.
	Create(ctx context.Context, u *User) error

	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	// GetByIdentifier resolves a login identifier, trying username first
	// and falling back to phone.
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)

	// SetActive flips the active flag. Deactivation stamps DeactivatedAt;
	// the record is kept.
	SetActive(ctx context.Context, id string, active bool) error
	// Reactivate re-enables a deactivated account under a new username
	// and password hash.
	Reactivate(ctx context.Context, id, username, passwordHash string) error

	Close() error
}

// NotFoundError indicates that no user matches the lookup.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user not found: %s", e.Key)
}

// DuplicateError indicates a username or phone collision on create.
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("user %s already taken: %s", e.Field, e.Value)
}

// UnavailableError indicates that the storage backend is unavailable.
type UnavailableError struct {
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("user storage unavailable: %v", e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err is a user lookup miss.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsDuplicate reports whether err is a uniqueness violation.
func IsDuplicate(err error) bool {
	var dup *DuplicateError
	return errors.As(err, &dup)
}
