package authsdk

import (
	"context"
	"net/http"
)

// Login exchanges email/password for tokens.
//
// If the account has MFA enrolled the server answers 403 with the
// X-2FA-Required and X-User-ID headers and Login returns a
// *MFARequiredError; complete the flow with VerifyMFA.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/login", LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := decodeJSON(resp, &tokens, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// VerifyMFA completes an MFA challenge with a TOTP code or a backup code.
func (c *SDKClient) VerifyMFA(ctx context.Context, userID, code string, isBackupCode bool) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/mfa/verify", MFAVerifyRequest{
		UserID:       userID,
		Code:         code,
		IsBackupCode: isBackupCode,
	})
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := decodeJSON(resp, &tokens, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Refresh rotates a refresh token for a new token pair.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/token/refresh", RefreshRequest{
		RefreshToken: refreshToken,
	})
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := decodeJSON(resp, &tokens, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Logout revokes the given refresh token. Idempotent.
func (c *SDKClient) Logout(ctx context.Context, refreshToken string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/logout", LogoutRequest{
		RefreshToken: refreshToken,
	})
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

// Livez checks service liveness.
func (c *SDKClient) Livez(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/livez", nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// Readyz checks service readiness (database and signer).
func (c *SDKClient) Readyz(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/readyz", nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}
