package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/pqauth/internal/auth/service"
	"github.com/aussiebroadwan/pqauth/pkg/authsdk"
	"github.com/aussiebroadwan/pqauth/pkg/httpx"
	"github.com/aussiebroadwan/pqauth/pkg/slogx"
)

// UserInfoHandler serves GET /v1/userinfo. The response claims mirror
// the ID token: which identity fields appear is decided by the scopes
// the access token carries.
type UserInfoHandler struct {
	TokenService *service.TokenService
}

func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := httpx.TokenFromContext(ctx)
	if token == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	claims, err := h.TokenService.UserInfo(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			authsdk.ErrInvalidToken.WriteError(w)
			return
		}
		log.Warn("userinfo lookup failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, claims)
}
