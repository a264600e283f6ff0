/*
Package authsdk is a relying-party client for the pqauth authorization
server.

# Overview

The SDK drives the OIDC authorization code flow from the relying party
side: building the authorization URL, handling the callback, exchanging
the code for tokens and verifying the post-quantum signed ID token.

	client := authsdk.NewSDKClient("https://auth.example.com")

	state, _ := authsdk.NewState()
	nonce, _ := authsdk.NewState()
	url := client.BuildAuthorizeURL(authsdk.AuthorizeParams{
		ClientID:    "my-client",
		RedirectURI: "https://app.example.com/callback",
		Scopes:      []string{"openid", "profile"},
		State:       state,
		Nonce:       nonce,
	})
	// Redirect the user's browser to url.

On the callback, parse and exchange:

	code, err := authsdk.ParseCallback(r.URL.Query(), state)
	tokens, err := client.ExchangeAuthorizationCode(ctx,
		"my-client", clientSecret, code, "https://app.example.com/callback")

# ID Token Verification

ID tokens are signed with ML-DSA rather than classical JOSE algorithms.
The verification key is published at /jwks and should be
fetched once and pinned:

	verifier, err := client.NewIDTokenVerifier(ctx, "my-client")
	claims, err := verifier.Verify(tokens.IDToken)

The verifier checks the nonce is the caller's job: compare claims.Nonce
against the value sent in the authorize request.

# Error Handling

Server-side failures come back as *OAuth2Error carrying the RFC 6749
error code and the HTTP status, so callers can branch on the code:

	var oauthErr *authsdk.OAuth2Error
	if errors.As(err, &oauthErr) && oauthErr.Code == authsdk.ErrorCodeInvalidGrant {
		// code expired or already used, restart the flow
	}
*/
package authsdk
