package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/chatforge/chatforge/pkg/user"
)

// SMSPolicy bounds verification-code issuance per scene and phone.
type SMSPolicy struct {
	CodeLength     int
	CodeTTL        time.Duration
	TicketTTL      time.Duration
	ResendCooldown time.Duration
	MaxAttempts    int
	DailyLimit     int64
}

// ServiceConfig configures the auth service.
type ServiceConfig struct {
	BcryptCost int
	SMS        SMSPolicy
}

// TokenPair is an access/refresh token pair issued on successful
// authentication.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// VerificationResult is the outcome of an SMS code verification. The login
// scene yields a token pair directly; register and account_delete yield a
// one-time ticket consumed by the follow-up request.
type VerificationResult struct {
	Outcome         string     `json:"outcome"` // "login" or "ticket"
	TokenPair       *TokenPair `json:"token_pair,omitempty"`
	Ticket          string     `json:"verification_ticket,omitempty"`
	TicketExpiresAt *time.Time `json:"ticket_expires_at,omitempty"`
}

// Service implements the authentication workflows: registration, password
// and SMS login, refresh rotation, logout, and account deactivation.
type Service struct {
	users    user.Repository
	tokens   *TokenService
	sessions SessionStore
	sms      Sender
	cfg      ServiceConfig
}

// NewService wires the auth service.
func NewService(users user.Repository, tokens *TokenService, sessions SessionStore, sms Sender, cfg ServiceConfig) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultBcryptCost
	}
	return &Service{users: users, tokens: tokens, sessions: sessions, sms: sms, cfg: cfg}
}

// RegisterRequest carries a phone-verified registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2,max=32"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
	Ticket   string `json:"verification_ticket" validate:"required"`
}

// Register creates an account after phone ownership was proven via an SMS
// ticket. A deactivated account holding the phone is reactivated under the
// new username and password instead of creating a second row.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*TokenPair, error) {
	phoneUser, err := s.phoneHolder(ctx, req.Phone)
	if err != nil {
		return nil, err
	}

	// An inactive account may reclaim its own username.
	existing, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil && !user.IsNotFound(err) {
		return nil, err
	}
	if existing != nil && (phoneUser == nil || existing.ID != phoneUser.ID) {
		return nil, ErrUserExists.WithMessage("username already taken")
	}

	if err := CheckPasswordComplexity(req.Password); err != nil {
		return nil, err
	}

	consumed, err := s.sessions.ConsumeTicket(ctx, SceneRegister, req.Phone, req.Ticket)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrInvalidCode.WithMessage("verification ticket invalid or expired")
	}

	hash, err := HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	if phoneUser != nil {
		if err := s.users.Reactivate(ctx, phoneUser.ID, req.Username, hash); err != nil {
			if user.IsDuplicate(err) {
				return nil, ErrUserExists
			}
			return nil, err
		}
		return s.issueTokenPair(ctx, phoneUser.ID)
	}

	now := time.Now().UTC()
	created := &user.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Phone:        req.Phone,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, created); err != nil {
		if user.IsDuplicate(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	return s.issueTokenPair(ctx, created.ID)
}

// LoginWithPassword authenticates by username or phone plus password.
func (s *Service) LoginWithPassword(ctx context.Context, identifier, password string) (*TokenPair, error) {
	u, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if user.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrInactiveUser
	}

	return s.issueTokenPair(ctx, u.ID)
}

// SendCode issues an SMS verification code for the scene, subject to the
// resend cooldown and the daily per-phone cap.
func (s *Service) SendCode(ctx context.Context, scene Scene, phone string) error {
	if !scene.Valid() {
		return ErrInvalidCode.WithMessage("unknown verification scene")
	}

	if scene == SceneRegister {
		if _, err := s.phoneHolder(ctx, phone); err != nil {
			return err
		}
	} else {
		if _, err := s.activePhoneUser(ctx, phone); err != nil {
			return err
		}
	}

	inCooldown, err := s.sessions.InCooldown(ctx, scene, phone)
	if err != nil {
		return err
	}
	if inCooldown {
		return ErrTooManyRequests.WithMessage("please wait before requesting another code")
	}

	count, err := s.sessions.DailyCount(ctx, scene, phone)
	if err != nil {
		return err
	}
	if count >= s.cfg.SMS.DailyLimit {
		return ErrTooManyRequests.WithMessage("daily verification code limit reached")
	}

	code, err := generateCode(s.cfg.SMS.CodeLength)
	if err != nil {
		return err
	}
	if err := s.sessions.SetCode(ctx, scene, phone, CodeRecord{Code: code}, s.cfg.SMS.CodeTTL); err != nil {
		return err
	}

	if err := s.sms.SendCode(ctx, phone, code); err != nil {
		// A code nobody received must not burn the cooldown.
		_ = s.sessions.DeleteCode(ctx, scene, phone)
		return ErrSMSSendFailed
	}

	if s.cfg.SMS.ResendCooldown > 0 {
		if err := s.sessions.SetCooldown(ctx, scene, phone, s.cfg.SMS.ResendCooldown); err != nil {
			return err
		}
	}
	_, err = s.sessions.IncrDailyCount(ctx, scene, phone)
	return err
}

// VerifyCode checks an SMS code. The login scene returns a token pair; the
// register and account_delete scenes return a one-time ticket for the
// follow-up request. A code is deleted on success and after too many
// failed attempts.
func (s *Service) VerifyCode(ctx context.Context, scene Scene, phone, code string) (*VerificationResult, error) {
	if !scene.Valid() {
		return nil, ErrInvalidCode.WithMessage("unknown verification scene")
	}

	record, err := s.sessions.GetCode(ctx, scene, phone)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrInvalidCode
	}

	if code != record.Code {
		record.Attempts++
		if record.Attempts >= s.cfg.SMS.MaxAttempts {
			_ = s.sessions.DeleteCode(ctx, scene, phone)
		} else {
			_ = s.sessions.UpdateCode(ctx, scene, phone, *record)
		}
		return nil, ErrInvalidCode
	}

	if err := s.sessions.DeleteCode(ctx, scene, phone); err != nil {
		return nil, err
	}

	switch scene {
	case SceneLogin:
		u, err := s.activePhoneUser(ctx, phone)
		if err != nil {
			return nil, err
		}
		pair, err := s.issueTokenPair(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		return &VerificationResult{Outcome: "login", TokenPair: pair}, nil

	case SceneRegister:
		if _, err := s.phoneHolder(ctx, phone); err != nil {
			return nil, err
		}

	case SceneAccountDelete:
		if _, err := s.activePhoneUser(ctx, phone); err != nil {
			return nil, err
		}
	}

	ticket, err := generateTicket()
	if err != nil {
		return nil, err
	}
	if err := s.sessions.StoreTicket(ctx, scene, phone, ticket, s.cfg.SMS.TicketTTL); err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(s.cfg.SMS.TicketTTL)
	return &VerificationResult{Outcome: "ticket", Ticket: ticket, TicketExpiresAt: &expiresAt}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// new pair is issued. A token that was already rotated or revoked fails
// with ErrTokenRevoked, it cannot be replayed.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	payload, err := s.tokens.Decode(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if payload.JTI == "" {
		return nil, ErrInvalidToken.WithMessage("refresh token missing identifier")
	}

	exists, err := s.sessions.RefreshTokenExists(ctx, payload.UserID, payload.JTI)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	if _, err := s.sessions.RevokeRefreshToken(ctx, payload.UserID, payload.JTI); err != nil {
		return nil, err
	}
	return s.issueTokenPair(ctx, payload.UserID)
}

// Logout revokes the presented refresh token. The token must belong to the
// authenticated user.
func (s *Service) Logout(ctx context.Context, refreshToken, currentUserID string) error {
	payload, err := s.tokens.Decode(refreshToken, TokenTypeRefresh)
	if err != nil {
		return err
	}
	if payload.UserID != currentUserID {
		return ErrInvalidToken.WithMessage("refresh token does not belong to current user")
	}
	if payload.JTI == "" {
		return ErrInvalidToken.WithMessage("refresh token missing identifier")
	}

	removed, err := s.sessions.RevokeRefreshToken(ctx, payload.UserID, payload.JTI)
	if err != nil {
		return err
	}
	if !removed {
		return ErrTokenRevoked
	}
	return nil
}

// Me returns the authenticated user's profile.
func (s *Service) Me(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if user.IsNotFound(err) {
			return nil, ErrInvalidCredentials.WithMessage("user does not exist")
		}
		return nil, err
	}
	return u, nil
}

// DeleteAccount deactivates the account after re-authentication by either
// password or an account_delete SMS ticket. All refresh tokens are
// revoked. Deactivating an already-inactive account is a no-op.
func (s *Service) DeleteAccount(ctx context.Context, userID, password, ticket string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if user.IsNotFound(err) {
			return ErrInvalidCredentials.WithMessage("user does not exist")
		}
		return err
	}
	if !u.Active {
		return nil
	}

	switch {
	case password != "":
		if !VerifyPassword(password, u.PasswordHash) {
			return ErrInvalidCredentials.WithMessage("wrong password")
		}
	case ticket != "":
		consumed, err := s.sessions.ConsumeTicket(ctx, SceneAccountDelete, u.Phone, ticket)
		if err != nil {
			return err
		}
		if !consumed {
			return ErrInvalidCode.WithMessage("verification ticket invalid or expired")
		}
	default:
		return ErrInvalidCode
	}

	if err := s.users.SetActive(ctx, u.ID, false); err != nil {
		return err
	}
	return s.sessions.RevokeAllRefreshTokens(ctx, u.ID)
}

// Authenticate validates an access token and returns the user id. Used by
// HTTP middleware and the WebSocket handshake.
func (s *Service) Authenticate(token string) (string, error) {
	payload, err := s.tokens.Decode(token, TokenTypeAccess)
	if err != nil {
		return "", err
	}
	return payload.UserID, nil
}

// phoneHolder ensures the phone is not bound to an active account and
// returns the inactive holder, if any, for reactivation.
func (s *Service) phoneHolder(ctx context.Context, phone string) (*user.User, error) {
	u, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		if user.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if u.Active {
		return nil, ErrUserExists.WithMessage("phone already registered")
	}
	return u, nil
}

// activePhoneUser resolves a phone to an active account.
func (s *Service) activePhoneUser(ctx context.Context, phone string) (*user.User, error) {
	u, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		if user.IsNotFound(err) {
			return nil, ErrInvalidCredentials.WithMessage("phone not registered")
		}
		return nil, err
	}
	if !u.Active {
		return nil, ErrInactiveUser
	}
	return u, nil
}

func (s *Service) issueTokenPair(ctx context.Context, userID string) (*TokenPair, error) {
	access, err := s.tokens.CreateAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.CreateRefreshToken(userID)
	if err != nil {
		return nil, err
	}

	ttl := time.Until(refresh.ExpiresAt)
	if err := s.sessions.StoreRefreshToken(ctx, userID, refresh.JTI, ttl); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

// generateCode produces a zero-padded numeric code.
func generateCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

// generateTicket produces an unguessable one-time ticket.
func generateTicket() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
