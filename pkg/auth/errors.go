package auth

import "net/http"

// Error is a domain error with a stable machine-readable code and the HTTP
// status it maps to. Sentinels below compare by code, so a copy carrying a
// more specific message still matches errors.Is against its sentinel.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy with a more specific message.
func (e *Error) WithMessage(message string) *Error {
	clone := *e
	clone.Message = message
	return &clone
}

var (
	ErrUserExists         = &Error{Status: http.StatusBadRequest, Code: "USER_ALREADY_EXISTS", Message: "user already exists"}
	ErrInvalidCredentials = &Error{Status: http.StatusUnauthorized, Code: "INVALID_CREDENTIALS", Message: "invalid username or password"}
	ErrInvalidToken       = &Error{Status: http.StatusUnauthorized, Code: "INVALID_TOKEN", Message: "token invalid or expired"}
	ErrTokenRevoked       = &Error{Status: http.StatusUnauthorized, Code: "TOKEN_REVOKED", Message: "refresh token has been revoked"}
	ErrInactiveUser       = &Error{Status: http.StatusForbidden, Code: "USER_INACTIVE", Message: "user account is inactive"}
	ErrTooManyRequests    = &Error{Status: http.StatusTooManyRequests, Code: "TOO_MANY_REQUESTS", Message: "too many requests"}
	ErrInvalidCode        = &Error{Status: http.StatusBadRequest, Code: "INVALID_VERIFICATION_CODE", Message: "verification code invalid or expired"}
	ErrSMSSendFailed      = &Error{Status: http.StatusBadGateway, Code: "SMS_SEND_FAILED", Message: "failed to send SMS"}
	ErrWeakPassword       = &Error{Status: http.StatusBadRequest, Code: "PASSWORD_TOO_WEAK", Message: "password does not meet complexity requirements"}
)
