package response

import (
	"errors"
	"net/http"

	"github.com/chatforge/chatforge/pkg/auth"
	"github.com/chatforge/chatforge/pkg/memory"
	"github.com/chatforge/chatforge/pkg/user"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id"`
}

// Common error codes
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
)

// StatusAndCode maps an error to an HTTP status and a stable error code.
// Auth errors carry their own status and code; storage and memory errors
// are translated here.
func StatusAndCode(err error) (int, string) {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return authErr.Status, authErr.Code
	}

	var notFound *user.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, ErrCodeNotFound
	}
	var duplicate *user.DuplicateError
	if errors.As(err, &duplicate) {
		return http.StatusConflict, ErrCodeConflict
	}
	var unavailable *user.UnavailableError
	if errors.As(err, &unavailable) {
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	}

	if errors.Is(err, memory.ErrInvalidLimit) {
		return http.StatusBadRequest, ErrCodeValidationFailed
	}
	var backendErr *memory.BackendError
	if errors.As(err, &backendErr) {
		return http.StatusBadGateway, ErrCodeServiceUnavailable
	}

	return http.StatusInternalServerError, ErrCodeInternalServer
}

// ErrorCodeFromStatus returns an error code for the given HTTP status.
func ErrorCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeBadRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusMethodNotAllowed:
		return ErrCodeMethodNotAllowed
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusTooManyRequests:
		return ErrCodeTooManyRequests
	case http.StatusServiceUnavailable:
		return ErrCodeServiceUnavailable
	case http.StatusGatewayTimeout:
		return ErrCodeGatewayTimeout
	default:
		return ErrCodeInternalServer
	}
}

// HandleError maps the error and writes the standard error envelope.
func HandleError(w http.ResponseWriter, err error, requestID string) {
	status, code := StatusAndCode(err)
	Error(w, status, code, err.Error(), requestID)
}
