package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/pqauth/internal/auth/domain"
	"github.com/aussiebroadwan/pqauth/internal/auth/service"
	"github.com/aussiebroadwan/pqauth/pkg/authsdk"
	"github.com/aussiebroadwan/pqauth/pkg/httpx"
	"github.com/aussiebroadwan/pqauth/pkg/slogx"
)

const sessionCookieName = "pqauth_session"

// AuthorizeHandler processes OIDC authorization requests (authorization
// code flow).
type AuthorizeHandler struct {
	AuthorizeService *service.AuthorizeService
	SessionService   *service.SessionService
	Logger           *slog.Logger
}

// HandleGet serves GET /v1/oauth2/authorize. The browser lands here via
// a redirect from the relying party. With a live session cookie the code
// is minted immediately; without one the response is 401 login_required
// and the client is expected to POST credentials back to the same URL.
func (h *AuthorizeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if h.AuthorizeService == nil {
		authsdk.ErrServerError.WriteError(w)
		return
	}

	authReq := h.buildAuthorizeRequest(nil, r.URL.Query())
	authReq.Session = h.resolveSession(r)
	h.processAuthorize(w, r, authReq)
}

// HandlePost serves POST /v1/oauth2/authorize. The OAuth2 parameters
// come from the query string or form body; username/password in the
// form body authenticate the user inline when no session exists yet.
func (h *AuthorizeHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if h.AuthorizeService == nil {
		authsdk.ErrServerError.WriteError(w)
		return
	}

	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	authReq := h.buildAuthorizeRequest(r.Form, r.URL.Query())
	authReq.Session = h.resolveSession(r)

	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")
	if authReq.Session == nil && username != "" {
		token, session, err := h.SessionService.Login(r.Context(), username, password)
		if err != nil {
			h.handleAuthorizeError(w, r, authReq, err)
			return
		}
		setSessionCookie(w, token, session)
		authReq.Session = &session
	}

	h.processAuthorize(w, r, authReq)
}

func (h *AuthorizeHandler) buildAuthorizeRequest(primary, secondary url.Values) service.AuthorizeRequest {
	pick := func(key string) string {
		if primary != nil {
			if v := strings.TrimSpace(primary.Get(key)); v != "" {
				return v
			}
		}
		if secondary != nil {
			return strings.TrimSpace(secondary.Get(key))
		}
		return ""
	}

	return service.AuthorizeRequest{
		ResponseType: pick("response_type"),
		ClientID:     pick("client_id"),
		RedirectURI:  pick("redirect_uri"),
		Scope:        httpx.ParseSpaceDelimitedFields(pick("scope")),
		State:        pick("state"),
		Nonce:        pick("nonce"),
	}
}

func (h *AuthorizeHandler) processAuthorize(w http.ResponseWriter, r *http.Request, req service.AuthorizeRequest) {
	resp, err := h.AuthorizeService.Authorize(r.Context(), req)
	if err != nil {
		h.handleAuthorizeError(w, r, req, err)
		return
	}

	redirectURL, err := buildAuthorizeRedirect(resp.RedirectURI, resp.Code, resp.State)
	if err != nil {
		h.logger().Error("failed to build redirect URL", "error", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func (h *AuthorizeHandler) handleAuthorizeError(w http.ResponseWriter, r *http.Request, req service.AuthorizeRequest, err error) {
	logger := h.logger()

	// Redirectable errors carry their own destination. The authorize
	// service only hands one back when redirecting is allowed.
	var redirect *service.RedirectError
	if errors.As(err, &redirect) {
		if redirectURL := buildErrorRedirect(redirect); redirectURL != "" {
			http.Redirect(w, r, redirectURL, http.StatusFound)
			logger.Debug("authorize request redirected with error",
				slog.String("client_id", req.ClientID),
				slog.String("error_code", redirect.Code),
			)
			return
		}
		// redirect_uri would not even parse, show the error in place
		authsdk.NewOAuth2Error(http.StatusBadRequest, redirect.Code, redirect.Description).WriteError(w)
		return
	}

	// As per RFC 6749 Section 3.1.2.3, when the redirect_uri does not
	// match a registered URI the user agent MUST NOT be redirected to
	// it. The error is shown in place instead.
	switch {
	case errors.Is(err, service.ErrInvalidRedirectURI):
		authsdk.NewOAuth2Error(
			http.StatusBadRequest,
			authsdk.ErrorCodeInvalidRequest,
			"the redirect_uri is not registered for this client",
		).WriteError(w)
		logger.Debug("authorize request rejected: redirect_uri mismatch",
			slog.String("client_id", req.ClientID),
			slog.String("redirect_uri", req.RedirectURI),
		)
	case errors.Is(err, service.ErrInvalidClient):
		authsdk.ErrInvalidClient.WriteError(w)
	case errors.Is(err, service.ErrInvalidRequest):
		authsdk.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidGrant.WriteError(w)
	case errors.Is(err, service.ErrLoginRequired):
		payload := map[string]any{
			"error":             "login_required",
			"error_description": "user authentication required",
			"response_type":     req.ResponseType,
			"client_id":         req.ClientID,
			"redirect_uri":      req.RedirectURI, // not validated at this point
		}
		if len(req.Scope) > 0 {
			payload["scope"] = strings.Join(req.Scope, " ")
		}
		if req.State != "" {
			payload["state"] = req.State
		}
		httpx.WriteJSON(w, http.StatusUnauthorized, payload)
	default:
		logger.Error("authorize request failed", "error", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// resolveSession looks for a login session in the request cookie. A
// stale or missing cookie is not an error here, it just means the user
// has to log in.
func (h *AuthorizeHandler) resolveSession(r *http.Request) *domain.Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	session, err := h.SessionService.Resolve(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, service.ErrLoginRequired) {
			h.logger().Warn("session lookup failed", "error", err)
		}
		return nil
	}
	return &session
}

func (h *AuthorizeHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slogx.Discard()
}

// buildAuthorizeRedirect constructs the redirect URL for a successful
// authorization.
func buildAuthorizeRedirect(baseURI, code, state string) (string, error) {
	u, err := url.Parse(baseURI)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("code", code)
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// buildErrorRedirect constructs the redirect URL carrying an OAuth2
// error back to the client. Returns "" when the URI does not parse.
func buildErrorRedirect(redirect *service.RedirectError) string {
	u, err := url.Parse(redirect.RedirectURI)
	if err != nil {
		return ""
	}

	q := u.Query()
	q.Set("error", redirect.Code)
	if redirect.Description != "" {
		q.Set("error_description", redirect.Description)
	}
	if redirect.State != "" {
		q.Set("state", redirect.State)
	}
	u.RawQuery = q.Encode()

	return u.String()
}
