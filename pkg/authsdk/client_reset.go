package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// RequestPasswordReset asks for a reset email. Always succeeds for
// well-formed requests so callers cannot probe which emails exist.
func (c *SDKClient) RequestPasswordReset(ctx context.Context, email string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/password-reset/request", ResetRequestRequest{
		Email: email,
	})
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusAccepted)
}

// ValidateResetToken checks a reset token before showing the new-password
// form. Distinguishes expired tokens (ErrorCodeTokenExpired) from unknown
// ones (ErrorCodeInvalidToken).
func (c *SDKClient) ValidateResetToken(ctx context.Context, token string) (*TokenCheckResponse, error) {
	path := "/v1/password-reset/validate?token=" + url.QueryEscape(token)
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

// ConfirmPasswordReset consumes a reset token and sets the new password.
// All of the user's refresh tokens are revoked as a side effect.
func (c *SDKClient) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/password-reset/confirm", ResetConfirmRequest{
		Token:       token,
		NewPassword: newPassword,
	})
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}
