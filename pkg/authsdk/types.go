package authsdk

// ErrorResponse is the service's standard JSON error shape, used internally
// for parsing HTTP error responses. Client code should use APIError instead.
type ErrorResponse struct {
	// Error is the machine-readable error code (e.g. "invalid_credentials")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// LoginRequest is the body of POST /v1/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned on successful login, MFA verification, and
// refresh.
type TokenResponse struct {
	// AccessToken is the JWT used to authenticate API requests
	AccessToken string `json:"access_token"`

	// RefreshToken is the opaque token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`
}

// MFAVerifyRequest is the body of POST /v1/mfa/verify.
type MFAVerifyRequest struct {
	// UserID comes from the X-User-ID header of the 403 login response.
	UserID string `json:"user_id"`

	// Code is either a 6-digit TOTP code or a backup code.
	Code string `json:"code"`

	// IsBackupCode selects backup-code verification instead of TOTP.
	IsBackupCode bool `json:"is_backup_code"`
}

// SignupAccount is the account stage of a signup.
type SignupAccount struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupOrganization is the workspace stage of a signup.
type SignupOrganization struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SignupRequest is the body of POST /v1/signup. It carries all three wizard
// stages in a single submission.
type SignupRequest struct {
	Account      SignupAccount      `json:"account"`
	Organization SignupOrganization `json:"organization"`
	Plan         string             `json:"plan"`
}

// SignupResponse is returned on successful signup.
type SignupResponse struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Slug           string `json:"slug"`
	Plan           string `json:"plan"`
}

// TokenCheckResponse is returned by the reset and verification validate
// endpoints when the token is good.
type TokenCheckResponse struct {
	Valid bool `json:"valid"`

	// Email is the address the token was issued for, masked for display.
	Email string `json:"email,omitempty"`
}

// ResetRequestRequest is the body of POST /v1/password-reset/request.
type ResetRequestRequest struct {
	Email string `json:"email"`
}

// ResetConfirmRequest is the body of POST /v1/password-reset/confirm.
type ResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// VerifyConfirmRequest is the body of POST /v1/verify-email/confirm.
type VerifyConfirmRequest struct {
	Token string `json:"token"`
}

// ResendRequest is the body of POST /v1/verify-email/resend.
type ResendRequest struct {
	Email string `json:"email"`
}

// RefreshRequest is the body of POST /v1/token/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest is the body of POST /v1/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TOTPEnrollResponse is returned by POST /v1/mfa/totp/enroll.
type TOTPEnrollResponse struct {
	// Secret is the base32 TOTP secret for manual entry.
	Secret string `json:"secret"`

	// QRCode is the otpauth:// provisioning URL.
	QRCode string `json:"qr_code"`

	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

// TOTPActivateRequest is the body of POST /v1/mfa/totp/activate.
type TOTPActivateRequest struct {
	Code string `json:"code"`
}

// BackupCodesResponse carries the plaintext backup codes, shown exactly once.
type BackupCodesResponse struct {
	BackupCodes []string `json:"backup_codes"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency readiness.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
