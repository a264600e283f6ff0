package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/pqauth/internal/auth/service"
	"github.com/aussiebroadwan/pqauth/pkg/authsdk"
	"github.com/aussiebroadwan/pqauth/pkg/httpx"
	"github.com/aussiebroadwan/pqauth/pkg/slogx"
)

// RevokeHandler serves POST /v1/oauth2/revoke following RFC 7009.
// Valid and unknown tokens alike return 200 OK so the endpoint cannot
// be used to probe which tokens exist.
type RevokeHandler struct {
	TokenService *service.TokenService
}

func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	token := r.Form.Get("token")
	if token == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	// ID tokens cannot be revoked and the hint is advisory anyway, so
	// everything is treated as an access token.
	if err := h.TokenService.Revoke(ctx, token); err != nil {
		log.Warn("revoke failed", "err", err)
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{}"))
}
