package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access tokens from refresh tokens. A token of
// one type is never accepted where the other is expected.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenResult is a freshly minted token plus its metadata.
type TokenResult struct {
	Token     string
	ExpiresAt time.Time
	// JTI is the unique refresh-token identifier; empty on access tokens.
	JTI string
}

// TokenPayload is a decoded, validated token.
type TokenPayload struct {
	UserID    string
	Type      TokenType
	ExpiresAt time.Time
	IssuedAt  time.Time
	JTI       string
}

// TokenConfig configures the token service.
type TokenConfig struct {
	Secret     string
	Algorithm  string // HS256 (default), HS384, HS512
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// StaticTokens maps pre-shared access tokens to user IDs. Meant for
	// test and tooling scenarios; never applied to refresh tokens.
	StaticTokens map[string]string
}

// TokenService mints and validates JWTs.
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	static     map[string]string
	now        func() time.Time
}

// NewTokenService creates a token service. The secret is required; an
// unknown signing algorithm is rejected here rather than at first use.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is not configured")
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = "HS256"
	}
	method := jwt.GetSigningMethod(alg)
	if method == nil {
		return nil, fmt.Errorf("unsupported jwt algorithm: %s", alg)
	}

	return &TokenService{
		secret:     []byte(cfg.Secret),
		method:     method,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		static:     cfg.StaticTokens,
		now:        time.Now,
	}, nil
}

// CreateAccessToken mints an access token for the user.
func (s *TokenService) CreateAccessToken(userID string) (*TokenResult, error) {
	return s.create(userID, TokenTypeAccess, s.accessTTL, "")
}

// CreateRefreshToken mints a refresh token carrying a fresh jti so it can
// be individually revoked.
func (s *TokenService) CreateRefreshToken(userID string) (*TokenResult, error) {
	return s.create(userID, TokenTypeRefresh, s.refreshTTL, uuid.New().String())
}

func (s *TokenService) create(userID string, typ TokenType, ttl time.Duration, jti string) (*TokenResult, error) {
	now := s.now().UTC()
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub":  userID,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
		"type": string(typ),
	}
	if jti != "" {
		claims["jti"] = jti
	}

	token, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign %s token: %w", typ, err)
	}

	return &TokenResult{Token: token, ExpiresAt: expiresAt, JTI: jti}, nil
}

// Decode validates a token's signature, expiry, and type. Static tokens
// pass through for the access type only.
func (s *TokenService) Decode(token string, expected TokenType) (*TokenPayload, error) {
	if expected == TokenTypeAccess {
		if userID, ok := s.static[token]; ok {
			now := s.now().UTC()
			return &TokenPayload{
				UserID:    userID,
				Type:      TokenTypeAccess,
				IssuedAt:  now,
				ExpiresAt: now.Add(24 * time.Hour),
			}, nil
		}
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{s.method.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrInvalidToken.WithMessage("token has expired")
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	typ, _ := claims["type"].(string)
	if TokenType(typ) != expected {
		return nil, ErrInvalidToken.WithMessage("token type mismatch")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken.WithMessage("token payload missing subject")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}
	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, ErrInvalidToken
	}

	jti, _ := claims["jti"].(string)

	return &TokenPayload{
		UserID:    sub,
		Type:      expected,
		ExpiresAt: exp.Time,
		IssuedAt:  iat.Time,
		JTI:       jti,
	}, nil
}
