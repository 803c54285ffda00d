package authsdk

import (
	"context"
	"net/http"
)

// Signup creates a user and their workspace in one call. The request carries
// the complete three-stage payload; nothing is persisted until it succeeds.
func (c *SDKClient) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/signup", req)
	if err != nil {
		return nil, err
	}

	var out SignupResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}
