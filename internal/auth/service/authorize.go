package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/pqauth/internal/auth/domain"
	"github.com/aussiebroadwan/pqauth/internal/auth/store"
	"github.com/aussiebroadwan/pqauth/pkg/cryptox"
	"github.com/aussiebroadwan/pqauth/pkg/idx"
	"github.com/aussiebroadwan/pqauth/pkg/slogx"
)

// ScopeOpenID must be present in every authorization request; without it
// the request is plain OAuth2, which this server does not serve.
const ScopeOpenID = "openid"

// AuthorizeService encapsulates the OIDC authorization-code issuance flow.
type AuthorizeService struct {
	Store   store.Store
	CodeTTL time.Duration
}

// AuthorizeRequest captures the inputs to the authorization endpoint.
type AuthorizeRequest struct {
	ResponseType string
	ClientID     string
	RedirectURI  string
	Scope        []string
	State        string
	Nonce        string

	// Session is the resolved login session, nil when the browser has no
	// valid cookie.
	Session *domain.Session
}

// AuthorizeCodeResponse contains the authorization code and redirect
// information for building the success redirect.
type AuthorizeCodeResponse struct {
	Code        string
	RedirectURI string
	State       string
}

// Authorize validates an authorization request and mints a single-use
// code.
//
// Checks run in a fixed order, and where in that order a check sits
// decides how its failure travels:
//
//  1. Unknown client: returned to the caller, never redirected.
//  2. Bad response_type: redirected to the requested redirect_uri.
//  3. Unregistered redirect_uri: returned to the caller, never
//     redirected. An attacker-supplied URI must not receive traffic.
//  4. Scope missing "openid": redirected.
//  5. No login session: ErrLoginRequired, the handler shows the login
//     form.
//
// Note the response_type check intentionally precedes redirect_uri
// validation, so that error does redirect to an unvalidated URI
// carrying only a static error code.
func (s *AuthorizeService) Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeCodeResponse, error) {
	log := slogx.FromContext(ctx)

	if strings.TrimSpace(req.ClientID) == "" || strings.TrimSpace(req.RedirectURI) == "" {
		return nil, ErrInvalidRequest
	}

	client, err := s.Store.Clients().GetClientByID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidClient
		}
		return nil, err
	}

	if req.ResponseType != "code" || !client.AllowsResponseType(req.ResponseType) {
		return nil, &RedirectError{
			RedirectURI: req.RedirectURI,
			Code:        "unsupported_response_type",
			Description: "only response_type=code is supported",
			State:       req.State,
		}
	}

	if !client.AllowsRedirectURI(req.RedirectURI) {
		log.Warn("authorize: redirect_uri not registered",
			"client_id", client.ID, "redirect_uri", req.RedirectURI)
		return nil, ErrInvalidRedirectURI
	}

	scopes := grantedScopes(req.Scope, client.Scopes)
	if !slices.Contains(scopes, ScopeOpenID) {
		return nil, &RedirectError{
			RedirectURI: req.RedirectURI,
			Code:        "invalid_scope",
			Description: "scope must include openid",
			State:       req.State,
		}
	}

	if req.Session == nil {
		return nil, ErrLoginRequired
	}

	return s.issueAuthorizationCode(ctx, client, scopes, req)
}

func (s *AuthorizeService) issueAuthorizationCode(
	ctx context.Context,
	client domain.Client,
	scopes []string,
	req AuthorizeRequest,
) (*AuthorizeCodeResponse, error) {
	code, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, err
	}

	ttl := s.CodeTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	var nonce *string
	if req.Nonce != "" {
		n := req.Nonce
		nonce = &n
	}

	now := time.Now()
	record := domain.AuthorizationCode{
		ID:          idx.New().String(),
		UserID:      req.Session.UserID,
		ClientID:    client.ID,
		CodeHash:    cryptox.FingerprintToken(code),
		RedirectURI: req.RedirectURI,
		Scopes:      scopes,
		Nonce:       nonce,
		SessionID:   req.Session.ID,
		AuthTime:    req.Session.AuthTime,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}

	if err := s.Store.AuthorizationCodes().CreateAuthorizationCode(ctx, record); err != nil {
		return nil, err
	}

	return &AuthorizeCodeResponse{
		Code:        code,
		RedirectURI: req.RedirectURI,
		State:       req.State,
	}, nil
}

// grantedScopes is the intersection of the requested scopes and what the
// client is registered for, preserving request order.
func grantedScopes(requested, clientScopes []string) []string {
	out := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, scope := range requested {
		if _, ok := seen[scope]; ok {
			continue
		}
		seen[scope] = struct{}{}
		if slices.Contains(clientScopes, scope) {
			out = append(out, scope)
		}
	}
	return out
}
