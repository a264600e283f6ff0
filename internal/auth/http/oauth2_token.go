package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/pqauth/internal/auth/service"
	"github.com/aussiebroadwan/pqauth/pkg/authsdk"
	"github.com/aussiebroadwan/pqauth/pkg/httpx"
	"github.com/aussiebroadwan/pqauth/pkg/slogx"
)

// TokenHandler serves POST /v1/oauth2/token.
// Accepts application/x-www-form-urlencoded per the RFC 6749 framework.
type TokenHandler struct {
	TokenService *service.TokenService
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// 1. Ensure the right content-type
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}

	// 2. Parse the form body
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	// 3. Client credentials may arrive as HTTP Basic auth or form fields
	clientID, clientSecret := clientCredentials(r)

	req := service.ExchangeRequest{
		GrantType:    r.Form.Get("grant_type"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Code:         strings.TrimSpace(r.Form.Get("code")),
		RedirectURI:  strings.TrimSpace(r.Form.Get("redirect_uri")),
	}
	if req.ClientID == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	bundle, err := h.TokenService.Exchange(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidClient):
			authsdk.ErrInvalidClient.WriteError(w)
		case errors.Is(err, service.ErrUnsupportedGrantType):
			authsdk.ErrUnsupportedGrantType.WriteError(w)
		case errors.Is(err, service.ErrInvalidGrant):
			authsdk.ErrInvalidGrant.WriteError(w)
		case errors.Is(err, service.ErrInvalidRequest):
			authsdk.ErrInvalidRequest.WriteError(w)
		default:
			log.Error("token exchange failed", "error", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, bundle)
}

// clientCredentials reads the client id and secret from the
// Authorization header (Basic) or, failing that, the form body.
func clientCredentials(r *http.Request) (string, string) {
	if id, secret, ok := r.BasicAuth(); ok {
		return id, secret
	}
	return strings.TrimSpace(r.Form.Get("client_id")), r.Form.Get("client_secret")
}
