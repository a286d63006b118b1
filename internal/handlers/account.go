package handlers

import (
	"fmt"
	"html"
	"net/http"

	"seva-health/internal/account"
	"seva-health/internal/logging"
	"seva-health/internal/middleware"

	"go.uber.org/zap"
)

type AccountHandler struct {
	svc     *account.Service
	baseURL string
	log     *zap.Logger
}

func NewAccountHandler(svc *account.Service, baseURL string, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		svc:     svc,
		baseURL: baseURL,
		log:     logging.OrNop(logger).Named("handlers.account"),
	}
}

var accountErrors = map[error]int{
	account.ErrInvalidEmail:       http.StatusBadRequest,
	account.ErrWeakPassword:       http.StatusBadRequest,
	account.ErrNameRequired:       http.StatusBadRequest,
	account.ErrEmailTaken:         http.StatusConflict,
	account.ErrInvalidCredentials: http.StatusUnauthorized,
	account.ErrInvalidSession:     http.StatusUnauthorized,
	account.ErrNotFound:           http.StatusNotFound,
	account.ErrProfileExists:      http.StatusConflict,
	account.ErrProfileMismatch:    http.StatusForbidden,
	account.ErrTooManyRequests:    http.StatusTooManyRequests,
	account.ErrInvalidToken:       http.StatusBadRequest,
	account.ErrTokenExpired:       http.StatusGone,
	account.ErrTokenUsed:          http.StatusConflict,
}

// --- Request types ---

type CreateIdentityRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
	Name     string `json:"name" validate:"required,max=128"`
}

type CredentialsRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RequestRecoveryRequest struct {
	Email string `json:"email" validate:"required"`
}

type CompleteRecoveryRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,max=128"`
}

// --- POST /v1/account ---

func (h *AccountHandler) CreateIdentity(w http.ResponseWriter, r *http.Request) {
	var req CreateIdentityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ident, err := h.svc.CreateIdentity(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, h.log, err, accountErrors)
		return
	}
	writeJSON(w, http.StatusCreated, ident)
}

// --- POST /v1/account/delete ---

func (h *AccountHandler) DeleteIdentity(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.DeleteIdentity(r.Context(), req.Email, req.Password); err != nil {
		writeServiceError(w, h.log, err, accountErrors)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "identity deleted"})
}

// --- POST /v1/account/sessions ---

func (h *AccountHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.svc.CreateSession(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.log, err, accountErrors)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// --- GET /v1/account ---

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ident, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, accountErrors)
		return
	}
	writeJSON(w, http.StatusOK, ident)
}

// --- DELETE /v1/account/sessions/current ---

func (h *AccountHandler) DeleteCurrentSession(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	if sessionID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.svc.DeleteSession(r.Context(), sessionID); err != nil {
		writeServiceError(w, h.log, err, accountErrors)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "session deleted"})
}

// --- POST /v1/account/recovery ---

func (h *AccountHandler) RequestRecovery(w http.ResponseWriter, r *http.Request) {
	var req RequestRecoveryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	link := h.publicBaseURL(r) + "/v1/account/recovery"
	if err := h.svc.RequestRecovery(r.Context(), req.Email, link); err != nil {
		writeServiceError(w, h.log, err, accountErrors)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "if the email is registered, a recovery code has been sent",
	})
}

// --- PUT /v1/account/recovery ---

func (h *AccountHandler) CompleteRecovery(w http.ResponseWriter, r *http.Request) {
	var req CompleteRecoveryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.CompleteRecovery(r.Context(), req.Token, req.Password); err != nil {
		writeServiceError(w, h.log, err, accountErrors)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// --- GET /v1/account/recovery ---
// Opened from the recovery email. Shows the code and how to use it.

func (h *AccountHandler) RecoveryPage(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusBadRequest)
		return
	}
	code := html.EscapeString(token)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<title>Reset your Seva password</title>
	<style>
		body { font-family: -apple-system, sans-serif; display: flex; justify-content: center; align-items: center; min-height: 100vh; margin: 0; background: #f0fdf4; }
		.card { text-align: center; padding: 40px; background: white; border-radius: 16px; box-shadow: 0 4px 24px rgba(0,0,0,0.1); max-width: 440px; }
		h1 { color: #333; font-size: 24px; }
		p { color: #666; font-size: 16px; line-height: 1.5; }
		code { display: block; background: #f3f4f6; padding: 12px; border-radius: 8px; font-size: 15px; word-break: break-all; }
	</style>
</head>
<body>
	<div class="card">
		<h1>Reset your password</h1>
		<p>Your recovery code:</p>
		<code>%s</code>
		<p>Run this in your terminal to choose a new password:</p>
		<code>seva recover --token %s</code>
		<p style="color: #aaa; font-size: 13px;">The code expires 15 minutes after it was sent.</p>
	</div>
</body>
</html>`, code, code)
}

// publicBaseURL prefers BASE_URL and otherwise derives it from the request.
func (h *AccountHandler) publicBaseURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
