package authsdk

import (
	"context"
	"net/http"
)

// EnrollTOTP begins TOTP enrollment for the authenticated account.
// The returned secret must be confirmed with ActivateTOTP before
// login starts requiring a code.
func (c *SDKClient) EnrollTOTP(ctx context.Context, accessToken string) (*TOTPEnrollResponse, error) {
	resp, err := c.doJSONAuth(ctx, http.MethodPost, "/v1/mfa/totp/enroll", accessToken, nil)
	if err != nil {
		return nil, err
	}

	var enroll TOTPEnrollResponse
	if err := decodeJSON(resp, &enroll, http.StatusOK); err != nil {
		return nil, err
	}
	return &enroll, nil
}

// ActivateTOTP confirms a pending enrollment with a code from the
// authenticator app and returns the single-use backup codes.
func (c *SDKClient) ActivateTOTP(ctx context.Context, accessToken, code string) (*BackupCodesResponse, error) {
	resp, err := c.doJSONAuth(ctx, http.MethodPost, "/v1/mfa/totp/activate", accessToken, TOTPActivateRequest{
		Code: code,
	})
	if err != nil {
		return nil, err
	}

	var codes BackupCodesResponse
	if err := decodeJSON(resp, &codes, http.StatusOK); err != nil {
		return nil, err
	}
	return &codes, nil
}

// DisableMFA removes TOTP and all backup codes from the account.
func (c *SDKClient) DisableMFA(ctx context.Context, accessToken string) error {
	resp, err := c.doJSONAuth(ctx, http.MethodDelete, "/v1/mfa", accessToken, nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}
