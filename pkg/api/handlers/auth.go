package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chatforge/chatforge/pkg/api/middleware"
	"github.com/chatforge/chatforge/pkg/api/response"
	"github.com/chatforge/chatforge/pkg/auth"
	"github.com/chatforge/chatforge/pkg/logger"
)

// AuthMetrics counts authentication outcomes.
type AuthMetrics interface {
	RecordAuthAttempt(operation, outcome string)
	RecordSMSCodeSent(scene string)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	svc       *auth.Service
	logger    logger.Logger
	validator *validator.Validate
	metrics   AuthMetrics
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(svc *auth.Service, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		svc:       svc,
		logger:    log,
		validator: validator.New(),
	}
}

// SetMetrics attaches a metrics recorder. Optional.
func (h *AuthHandler) SetMetrics(m AuthMetrics) {
	h.metrics = m
}

func (h *AuthHandler) recordAttempt(operation string, err error) {
	if h.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	h.metrics.RecordAuthAttempt(operation, outcome)
}

type loginRequest struct {
	// Identifier is a username or a phone number.
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type smsSendRequest struct {
	Scene string `json:"scene" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

type smsVerifyRequest struct {
	Scene string `json:"scene" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type deleteAccountRequest struct {
	Password string `json:"password,omitempty"`
	Ticket   string `json:"verification_ticket,omitempty"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Phone     string    `json:"phone"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	ctx := r.Context()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", getRequestID(ctx))
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), getRequestID(ctx))
		return false
	}
	return true
}

// Register handles POST /api/v1/auth/register
// @Summary Register a new account
// @Description Create an account for a phone number proven via an SMS verification ticket
// @Tags auth
// @Accept json
// @Produce json
// @Param registration body auth.RegisterRequest true "Registration payload"
// @Success 201 {object} auth.TokenPair "Account created"
// @Failure 400 {object} response.ErrorResponse "Invalid request, weak password or used ticket"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req auth.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	pair, err := h.svc.Register(ctx, req)
	h.recordAttempt("register", err)
	if err != nil {
		h.logger.WarnContext(ctx, "registration rejected", "username", req.Username, "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusCreated, pair)
}

// Login handles POST /api/v1/auth/login
// @Summary Log in with a password
// @Description Authenticate with a username or phone number plus password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Login credentials"
// @Success 200 {object} auth.TokenPair "Authenticated"
// @Failure 401 {object} response.ErrorResponse "Invalid credentials"
// @Failure 403 {object} response.ErrorResponse "Account deactivated"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	pair, err := h.svc.LoginWithPassword(ctx, req.Identifier, req.Password)
	h.recordAttempt("login", err)
	if err != nil {
		h.logger.WarnContext(ctx, "login rejected", "identifier", req.Identifier, "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, pair)
}

// SendCode handles POST /api/v1/auth/sms/send
// @Summary Send an SMS verification code
// @Description Send a one-time code for the given scene, subject to cooldown and daily limits
// @Tags auth
// @Accept json
// @Produce json
// @Param request body smsSendRequest true "Scene and phone"
// @Success 200 {object} map[string]string "Code sent"
// @Failure 429 {object} response.ErrorResponse "Cooldown or daily limit hit"
// @Failure 502 {object} response.ErrorResponse "SMS provider failure"
// @Router /api/v1/auth/sms/send [post]
func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req smsSendRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.SendCode(ctx, auth.Scene(req.Scene), req.Phone); err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}
	if h.metrics != nil {
		h.metrics.RecordSMSCodeSent(req.Scene)
	}

	response.JSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// VerifyCode handles POST /api/v1/auth/sms/verify
// @Summary Verify an SMS code
// @Description Verify a code; the login scene returns tokens, other scenes return a one-time ticket
// @Tags auth
// @Accept json
// @Produce json
// @Param request body smsVerifyRequest true "Scene, phone and code"
// @Success 200 {object} auth.VerificationResult "Verification outcome"
// @Failure 400 {object} response.ErrorResponse "Wrong or expired code"
// @Router /api/v1/auth/sms/verify [post]
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req smsVerifyRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.svc.VerifyCode(ctx, auth.Scene(req.Scene), req.Phone, req.Code)
	h.recordAttempt("sms_verify", err)
	if err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Refresh handles POST /api/v1/auth/refresh
// @Summary Rotate a refresh token
// @Description Exchange a one-time refresh token for a fresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body refreshRequest true "Refresh token"
// @Success 200 {object} auth.TokenPair "New token pair"
// @Failure 401 {object} response.ErrorResponse "Token invalid, expired or already used"
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	pair, err := h.svc.Refresh(ctx, req.RefreshToken)
	h.recordAttempt("refresh", err)
	if err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, pair)
}

// Logout handles POST /api/v1/auth/logout
// @Summary Log out
// @Description Revoke the presented refresh token for the authenticated user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body refreshRequest true "Refresh token to revoke"
// @Success 200 {object} map[string]string "Logged out"
// @Failure 401 {object} response.ErrorResponse "Token already revoked or not owned"
// @Security BearerAuth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.Logout(ctx, req.RefreshToken, middleware.GetUserID(ctx)); err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me handles GET /api/v1/auth/me
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Success 200 {object} profileResponse "Profile"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Security BearerAuth
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	u, err := h.svc.Me(ctx, middleware.GetUserID(ctx))
	if err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, profileResponse{
		ID:        u.ID,
		Username:  u.Username,
		Phone:     u.Phone,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	})
}

// DeleteAccount handles POST /api/v1/auth/account/delete
// @Summary Deactivate the account
// @Description Deactivate the authenticated account after confirming with a password or an SMS ticket
// @Tags auth
// @Accept json
// @Produce json
// @Param confirmation body deleteAccountRequest true "Password or verification ticket"
// @Success 200 {object} map[string]string "Account deactivated"
// @Failure 401 {object} response.ErrorResponse "Confirmation failed"
// @Security BearerAuth
// @Router /api/v1/auth/account/delete [post]
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req deleteAccountRequest
	if !h.decode(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(ctx)
	if err := h.svc.DeleteAccount(ctx, userID, req.Password, req.Ticket); err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	h.logger.InfoContext(ctx, "account deactivated", "user_id", userID)
	response.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
