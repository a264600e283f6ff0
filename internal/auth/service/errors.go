package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidClient      = errors.New("invalid_client")
	ErrInvalidRedirectURI = errors.New("invalid_redirect_uri")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrInvalidGrant       = errors.New("invalid_grant")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrLoginRequired      = errors.New("login_required")

	ErrUnsupportedGrantType = errors.New("unsupported_grant_type")
)

// RedirectError is an authorization failure that must be delivered to the
// client's redirect_uri per RFC 6749 section 4.1.2.1 rather than shown to
// the user directly. It only exists for failures discovered after the
// client itself checked out; client and redirect_uri problems never
// redirect.
type RedirectError struct {
	RedirectURI string
	Code        string // OAuth error code, e.g. "invalid_scope"
	Description string
	State       string
}

func (e *RedirectError) Error() string { return e.Code }
