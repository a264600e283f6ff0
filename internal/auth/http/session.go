package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/pqauth/internal/auth/domain"
	"github.com/aussiebroadwan/pqauth/internal/auth/service"
	"github.com/aussiebroadwan/pqauth/pkg/authsdk"
	"github.com/aussiebroadwan/pqauth/pkg/httpx"
	"github.com/aussiebroadwan/pqauth/pkg/slogx"
)

// SessionHandler manages browser login sessions outside of the
// authorize flow, so a user can establish a session up front and reuse
// it across clients.
type SessionHandler struct {
	SessionService *service.SessionService
}

// HandleLogin serves POST /v1/session/login with form-encoded
// username/password. On success the session cookie is set and the
// session metadata returned.
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")
	if username == "" || password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	token, session, err := h.SessionService.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			authsdk.ErrInvalidGrant.WriteError(w)
			return
		}
		log.Error("login failed", "error", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	setSessionCookie(w, token, session)
	httpx.WriteJSON(w, http.StatusOK, authsdk.SessionResponse{
		SessionID: session.ID,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt.Unix(),
	})
}

// HandleLogout serves POST /v1/session/logout and clears the cookie.
// Unknown or stale cookies still get a 204.
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.SessionService.Logout(r.Context(), cookie.Value); err != nil {
			slogx.FromContext(r.Context()).Warn("logout failed", "error", err)
		}
	}

	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func setSessionCookie(w http.ResponseWriter, token string, session domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
