package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/pqauth/internal/auth/service"
	"github.com/aussiebroadwan/pqauth/internal/auth/store"
	"github.com/aussiebroadwan/pqauth/pkg/httpx"
	"github.com/aussiebroadwan/pqauth/pkg/jwtx"
	"github.com/aussiebroadwan/pqauth/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       jwtx.Signer
	issuer       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	TokenService     *service.TokenService
	UserService      *service.UserService
	SessionService   *service.SessionService
	AuthorizeService *service.AuthorizeService
	BootstrapService *service.BootstrapService
}

func NewRouter(
	signer jwtx.Signer,
	issuer, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth2()
	r.registerSessions()
	r.registerWellKnown()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOAuth2() {
	authorizeHandler := &AuthorizeHandler{
		AuthorizeService: r.AuthorizeService,
		SessionService:   r.SessionService,
		Logger:           r.logger,
	}

	// GET /authorize - lenient rate limit (mostly just shows errors or
	// bounces back to the client)
	r.Mux.Handle("GET /v1/oauth2/authorize",
		httpx.Chain(http.HandlerFunc(authorizeHandler.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /authorize - user credentials ride along, strict limit
	r.Mux.Handle("POST /v1/oauth2/authorize",
		httpx.Chain(http.HandlerFunc(authorizeHandler.HandlePost),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)

	// POST /token - client credentials, moderate limit
	r.Mux.Handle("POST /v1/oauth2/token",
		httpx.Chain(&TokenHandler{TokenService: r.TokenService},
			httpx.RateLimitByIPAndFormField(httpx.ModerateLimit, "client_id"),
		),
	)

	// POST /revoke
	r.Mux.Handle("POST /v1/oauth2/revoke",
		httpx.Chain(&RevokeHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /userinfo - bearer token protected
	r.Mux.Handle("GET /v1/userinfo",
		httpx.Chain(&UserInfoHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.LenientLimit),
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RequireAnyScope("openid"),
		),
	)
}

func (r *Router) registerSessions() {
	sessionHandler := &SessionHandler{
		SessionService: r.SessionService,
	}

	r.Mux.Handle("POST /v1/session/login",
		httpx.Chain(http.HandlerFunc(sessionHandler.HandleLogin),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)
	r.Mux.Handle("POST /v1/session/logout",
		httpx.Chain(http.HandlerFunc(sessionHandler.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerWellKnown() {
	r.Mux.Handle("GET /.well-known/openid-configuration",
		httpx.Chain(DiscoveryHandler(r.issuer),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /jwks",
		httpx.Chain(KeysHandler(r.signer),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerSystem() {
	livez := LivezHandler(r.startTime, r.buildVersion)
	r.Mux.Handle("GET /livez", livez)
	r.Mux.Handle("GET /healthz", livez)
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer))
}
