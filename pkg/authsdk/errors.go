package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/meridianapps/meridian/pkg/httpx"
)

// Error codes surfaced in the "error" field of JSON error responses.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeTokenExpired       = "token_expired"
	ErrorCodeMFARequired        = "mfa_required"
	ErrorCodeTooManyAttempts    = "too_many_attempts"
	ErrorCodeAlreadyExists      = "already_exists"
	ErrorCodeRateLimited        = "rate_limited"
	ErrorCodeServerError        = "server_error"
)

// Headers used by the MFA login branch. A login that needs a second factor
// responds 403 with these set instead of a token payload.
const (
	HeaderMFARequired = "X-2FA-Required"
	HeaderUserID      = "X-User-ID"
)

// APIError is the service's standard JSON error shape. It implements the
// error interface and is shared by the server (to write responses) and the
// SDK client (to represent them).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g. "invalid_credentials")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	// ErrInvalidRequest is returned when the request is missing a required
	// parameter, includes an invalid value, or is otherwise malformed.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidCredentials is returned when email/password verification fails.
	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid credentials",
	}

	// ErrInvalidToken is returned when a token (refresh, reset, verification)
	// is unknown, malformed, revoked, or already used.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the token is missing, invalid, or revoked",
	}

	// ErrTokenExpired is returned when a reset or verification token is past
	// its validity window.
	ErrTokenExpired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeTokenExpired,
		Description: "the token has expired",
	}

	// ErrTooManyAttempts is returned when an MFA challenge runs out of
	// allowed verification attempts.
	ErrTooManyAttempts = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeTooManyAttempts,
		Description: "too many failed attempts, sign in again",
	}

	// ErrAlreadyExists is returned when a signup collides with an existing
	// email or workspace slug.
	ErrAlreadyExists = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeAlreadyExists,
		Description: "a resource with that identifier already exists",
	}

	// ErrServerError is returned on unexpected internal failures.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}

	// ErrMethodNotAllowed is returned when the HTTP method is not allowed.
	ErrMethodNotAllowed = &APIError{
		StatusCode:  http.StatusMethodNotAllowed,
		Code:        ErrorCodeInvalidRequest,
		Description: "method not allowed",
	}

	// ErrInvalidJSONBody is returned when the JSON body cannot be parsed.
	ErrInvalidJSONBody = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "invalid JSON body",
	}
)

// NewAPIError creates an APIError with the given status, code, and description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// MFARequiredError is returned by Login when the account has a second factor
// enrolled. The server answers 403 with X-2FA-Required and X-User-ID headers;
// the caller continues the flow with VerifyMFA.
type MFARequiredError struct {
	// UserID identifies the account awaiting verification.
	UserID string `json:"user_id"`
}

// Error implements the error interface.
func (e *MFARequiredError) Error() string {
	return fmt.Sprintf("mfa required for user %s", e.UserID)
}

// WriteError writes the MFA challenge as 403 Forbidden with the branch headers.
func (e *MFARequiredError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(HeaderMFARequired, "true")
	w.Header().Set(HeaderUserID, e.UserID)
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             ErrorCodeMFARequired,
		"error_description": "multi-factor authentication is required to complete sign in",
	})
}

// parseErrorResponse turns a non-2xx HTTP response into a typed error.
// Returns nil for 2xx responses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// MFA branch: a 403 carrying the challenge headers.
	if resp.StatusCode == http.StatusForbidden && resp.Header.Get(HeaderMFARequired) == "true" {
		return &MFARequiredError{UserID: resp.Header.Get(HeaderUserID)}
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
