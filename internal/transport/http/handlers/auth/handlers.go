package authhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"hcm/internal/domain/identity"
	"hcm/internal/requestctx"
	"hcm/internal/transport/http/api"
	"hcm/internal/transport/http/middleware"
	"hcm/internal/transport/http/shared"
)

type Authenticator interface {
	Authenticate(ctx context.Context, email, password, mfaCode string) (identity.LoginResult, error)
	SetupMFA(ctx context.Context, accountID string) (identity.MFASetup, error)
	EnableMFA(ctx context.Context, accountID, code string) error
	DisableMFA(ctx context.Context, accountID, code string) error
}

type Handler struct {
	Identity Authenticator
}

func NewHandler(svc Authenticator) *Handler {
	return &Handler{Identity: svc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, requestID) {
		return
	}

	result, err := h.Identity.Authenticate(r.Context(), payload.Email, payload.Password, payload.MFACode)
	switch {
	case err == nil:
		api.Success(w, result, requestID)
	case errors.Is(err, identity.ErrMFARequired):
		api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", requestID)
	case errors.Is(err, identity.ErrMFAInvalid):
		api.Fail(w, http.StatusUnauthorized, "mfa_invalid", "invalid mfa code", requestID)
	case errors.Is(err, identity.ErrInvalidCredentials):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
	default:
		requestctx.Logger(r.Context()).Error("login failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
	}
}

func (h *Handler) HandleMFASetup(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}
	setup, err := h.Identity.SetupMFA(r.Context(), user.AccountID)
	if err != nil {
		failMFA(w, r, err, "mfa_setup_failed", "failed to generate mfa secret")
		return
	}
	api.Success(w, setup, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleMFAEnable(w http.ResponseWriter, r *http.Request) {
	h.handleMFAToggle(w, r, h.Identity.EnableMFA, "enabled", "mfa_enable_failed")
}

func (h *Handler) HandleMFADisable(w http.ResponseWriter, r *http.Request) {
	h.handleMFAToggle(w, r, h.Identity.DisableMFA, "disabled", "mfa_disable_failed")
}

func (h *Handler) handleMFAToggle(w http.ResponseWriter, r *http.Request, apply func(context.Context, string, string) error, status, failCode string) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}
	var payload mfaCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := apply(r.Context(), user.AccountID, payload.Code); err != nil {
		failMFA(w, r, err, failCode, "failed to update mfa")
		return
	}
	api.Success(w, map[string]string{"status": status}, requestctx.GetRequestID(r.Context()))
}

func failMFA(w http.ResponseWriter, r *http.Request, err error, failCode, failMessage string) {
	requestID := requestctx.GetRequestID(r.Context())
	switch {
	case errors.Is(err, identity.ErrMFAUnavailable):
		api.Fail(w, http.StatusBadRequest, "mfa_unavailable", "mfa requires encryption key", requestID)
	case errors.Is(err, identity.ErrMFANotSetUp):
		api.Fail(w, http.StatusBadRequest, "mfa_missing", "mfa setup required", requestID)
	case errors.Is(err, identity.ErrMFAInvalid):
		api.Fail(w, http.StatusBadRequest, "mfa_invalid", "invalid mfa code", requestID)
	case errors.Is(err, identity.ErrAccountNotFound):
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
	default:
		requestctx.Logger(r.Context()).Error("mfa update failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, failCode, failMessage, requestID)
	}
}
