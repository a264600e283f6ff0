package authsdk

import (
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/pqauth/pkg/cryptox"
)

// SDKClient is a relying-party client for the pqauth authorization
// server. It covers the unauthenticated surface: the authorization code
// flow, discovery, key fetching and health probes.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new client for the given server base URL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewState generates a random value suitable for the state or nonce
// parameter of an authorization request.
func NewState() (string, error) {
	return cryptox.GenerateToken(cryptox.TokenSize128)
}
