package httpx

import (
	"context"
	"net/http"
)

// Middleware wraps an http.Handler with cross-cutting behaviour.
type Middleware func(http.Handler) http.Handler

// Chain wraps h in the given middlewares, first listed outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyScopes ctxKey = "scopes"
	CtxKeyToken  ctxKey = "token" // raw bearer token, for handlers that need it
)

func scopesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyScopes).([]string); ok {
		return v
	}
	return nil
}

// UserIDFromContext returns the authenticated subject, empty when the
// request was not authenticated.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// TokenFromContext returns the raw bearer token the request carried.
func TokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyToken).(string); ok {
		return v
	}
	return ""
}

// ScopesFromContext returns the scopes granted to the bearer token.
func ScopesFromContext(ctx context.Context) []string {
	return scopesFromCtx(ctx)
}
