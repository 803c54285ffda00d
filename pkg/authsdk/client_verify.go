package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ValidateVerificationToken checks an email verification token.
func (c *SDKClient) ValidateVerificationToken(ctx context.Context, token string) (*TokenCheckResponse, error) {
	path := "/v1/verify-email/validate?token=" + url.QueryEscape(token)
	resp, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out TokenCheckResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmEmailVerification consumes a verification token and marks the
// account's email as verified.
func (c *SDKClient) ConfirmEmailVerification(ctx context.Context, token string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/verify-email/confirm", VerifyConfirmRequest{
		Token: token,
	})
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

// ResendVerification sends a fresh verification email. The server enforces a
// cooldown between sends per account; within it the call returns 429.
func (c *SDKClient) ResendVerification(ctx context.Context, email string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/verify-email/resend", ResendRequest{
		Email: email,
	})
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusAccepted)
}
