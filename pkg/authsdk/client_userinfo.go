package authsdk

import (
	"context"
	"net/http"
)

// UserInfo fetches the OIDC userinfo claims for a bearer access token.
func (c *SDKClient) UserInfo(ctx context.Context, accessToken string) (*UserInfoResponse, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + accessToken,
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/userinfo", nil, headers)
	if err != nil {
		return nil, err
	}

	var info UserInfoResponse
	if err := decodeJSON(resp, &info, http.StatusOK); err != nil {
		return nil, err
	}
	return &info, nil
}
