package domain

import (
	"slices"
	"time"
)

type Client struct {
	ID            string
	Name          string
	SecretHash    string
	RedirectURIs  []string
	GrantTypes    []string // e.g. "authorization_code"
	ResponseTypes []string // e.g. "code"
	Scopes        []string
	Protected     bool // If true, client cannot be deleted (e.g., bootstrap client)
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AllowsRedirectURI reports whether uri exactly matches a registered
// redirect URI. No prefix or wildcard matching.
func (c *Client) AllowsRedirectURI(uri string) bool {
	return slices.Contains(c.RedirectURIs, uri)
}

// AllowsResponseType reports whether the client may use the given response_type.
func (c *Client) AllowsResponseType(rt string) bool {
	return slices.Contains(c.ResponseTypes, rt)
}

// AllowsGrantType reports whether the client may use the given grant_type.
func (c *Client) AllowsGrantType(gt string) bool {
	return slices.Contains(c.GrantTypes, gt)
}
