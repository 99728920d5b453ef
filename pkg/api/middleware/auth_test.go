package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatforge/chatforge/pkg/auth"
)

type fakeAuthenticator struct {
	userID string
	err    error
	token  string
}

func (f *fakeAuthenticator) Authenticate(token string) (string, error) {
	f.token = token
	if f.err != nil {
		return "", f.err
	}
	return f.userID, nil
}

func TestAuthBearerToken(t *testing.T) {
	authn := &fakeAuthenticator{userID: "u-1"}
	var gotUserID string
	handler := Auth(authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok-123", authn.token)
	assert.Equal(t, "u-1", gotUserID)
}

func TestAuthXAuthTokenHeader(t *testing.T) {
	authn := &fakeAuthenticator{userID: "u-2"}
	handler := Auth(authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Auth-Token", "tok-456")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok-456", authn.token)
}

func TestAuthMissingToken(t *testing.T) {
	handler := Auth(&fakeAuthenticator{userID: "u-1"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthInvalidToken(t *testing.T) {
	handler := Auth(&fakeAuthenticator{err: auth.ErrInvalidToken})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
}

func TestExtractTokenPrefersBearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer primary")
	req.Header.Set("X-Auth-Token", "secondary")
	assert.Equal(t, "primary", ExtractToken(req))
}

func TestExtractTokenIgnoresOtherSchemes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Equal(t, "", ExtractToken(req))
}
