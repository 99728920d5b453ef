package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatforge/chatforge/pkg/auth"
	"github.com/chatforge/chatforge/pkg/memory"
	"github.com/chatforge/chatforge/pkg/user"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]string{"id": "u-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u-1", body["id"])
}

func TestJSONNilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadRequest, ErrCodeBadRequest, "bad input", "req-1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeBadRequest, body.Error.Code)
	assert.Equal(t, "bad input", body.Error.Message)
	assert.Equal(t, "req-1", body.Error.RequestID)
}

func TestStatusAndCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"auth invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"auth user exists", auth.ErrUserExists, http.StatusBadRequest, "USER_ALREADY_EXISTS"},
		{"auth inactive", auth.ErrInactiveUser, http.StatusForbidden, "USER_INACTIVE"},
		{"auth rate limited", auth.ErrTooManyRequests, http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{"wrapped auth error", fmt.Errorf("login: %w", auth.ErrInvalidToken), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"user not found", &user.NotFoundError{Key: "u-1"}, http.StatusNotFound, ErrCodeNotFound},
		{"user duplicate", &user.DuplicateError{Field: "username", Value: "bob"}, http.StatusConflict, ErrCodeConflict},
		{"memory invalid limit", memory.ErrInvalidLimit, http.StatusBadRequest, ErrCodeValidationFailed},
		{"memory backend down", &memory.BackendError{Op: "search", Err: errors.New("boom")}, http.StatusBadGateway, ErrCodeServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := StatusAndCode(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestHandleError(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, auth.ErrTokenRevoked, "req-2")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "TOKEN_REVOKED", body.Error.Code)
	assert.Equal(t, "req-2", body.Error.RequestID)
}
