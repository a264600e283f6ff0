package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/pqauth/pkg/slogx"
)

// TokenResolver resolves an opaque bearer token to its principal. Access
// tokens here are random handles, not JWTs, so every request goes back
// to the issuing store.
type TokenResolver interface {
	ResolveAccessToken(ctx context.Context, token string) (subject string, scopes []string, err error)
}

// AuthnMiddleware authenticates requests carrying a bearer access token.
func AuthnMiddleware(resolver TokenResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			subject, scopes, err := resolver.ResolveAccessToken(ctx, raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("access token rejected", "err", err)
				return
			}

			// Inject into context for downstream handlers.
			ctx = contextWithAuth(ctx, subject, scopes, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, subject string, scopes []string, token string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, subject)
	ctx = context.WithValue(ctx, CtxKeyScopes, scopes)
	ctx = context.WithValue(ctx, CtxKeyToken, token)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
