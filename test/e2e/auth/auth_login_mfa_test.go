package auth_test

import (
	"testing"
	"time"

	"github.com/meridianapps/meridian/pkg/authsdk"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

// mfaTestUser represents a test user with MFA enrollment details.
type mfaTestUser struct {
	Email       string
	Password    string
	TOTPSecret  string
	BackupCodes []string
	UserID      string
}

// TestLoginAndRefresh tests the basic credential flow end to end:
// signup, login, token refresh with rotation, and logout.
func TestLoginAndRefresh(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	signupUser(t, client, "ada@example.com", "acme-inc")

	tokens := performLogin(t, client, "ada@example.com", testPassword)

	// Rotate the refresh token
	refreshed, err := client.Refresh(t.Context(), tokens.RefreshToken)
	require.NoError(t, err)
	assertTokenResponse(t, refreshed)
	require.NotEqual(t, tokens.RefreshToken, refreshed.RefreshToken, "Refresh token should rotate")

	// The old refresh token must be dead after rotation
	_, err = client.Refresh(t.Context(), tokens.RefreshToken)
	require.Error(t, err, "Rotated-out refresh token should be rejected")

	// Logout revokes the current refresh token
	err = client.Logout(t.Context(), refreshed.RefreshToken)
	require.NoError(t, err)

	_, err = client.Refresh(t.Context(), refreshed.RefreshToken)
	require.Error(t, err, "Revoked refresh token should be rejected")

	// Logout is idempotent
	err = client.Logout(t.Context(), refreshed.RefreshToken)
	require.NoError(t, err, "Second logout should still succeed")
}

// TestLoginInvalidCredentials tests credential rejection.
func TestLoginInvalidCredentials(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	signupUser(t, client, "grace@example.com", "grace-co")

	_, err := client.Login(t.Context(), "grace@example.com", "wrong-password")
	assertUnauthorized(t, err, "Wrong password should be rejected")

	_, err = client.Login(t.Context(), "nobody@example.com", testPassword)
	assertUnauthorized(t, err, "Unknown email should be rejected")
}

// TestMFAEnrollmentAndAuthentication tests the complete MFA enrollment
// and authentication flow, including backup code single use.
func TestMFAEnrollmentAndAuthentication(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	user := createAndEnrollMFAUser(t, client, "mfa@example.com", "mfa-corp")
	t.Logf("MFA enrollment completed, received %d backup codes", len(user.BackupCodes))

	backupCode := user.BackupCodes[0]

	// Login now yields an MFA challenge instead of tokens
	challenge := assertMFARequired(t, client, user.Email, user.Password)
	require.Equal(t, user.UserID, challenge.UserID, "Challenge should carry the user id")

	// Complete with a TOTP code
	tokens := completeMFAWithTOTP(t, client, user)
	t.Logf("Successfully authenticated with TOTP")
	assertTokenResponse(t, tokens)

	// Complete with a backup code
	assertMFARequired(t, client, user.Email, user.Password)
	backupTokens, err := client.VerifyMFA(t.Context(), user.UserID, backupCode, true)
	require.NoError(t, err)
	assertTokenResponse(t, backupTokens)
	t.Logf("Successfully authenticated with backup code")

	// Backup codes are single use
	assertMFARequired(t, client, user.Email, user.Password)
	_, err = client.VerifyMFA(t.Context(), user.UserID, backupCode, true)
	require.Error(t, err, "Should not be able to reuse backup code")
	t.Logf("Backup code reuse correctly rejected")
}

// TestMFAAttemptLimiting tests that challenges are invalidated after 5
// failed attempts. This prevents brute force attacks on TOTP codes.
func TestMFAAttemptLimiting(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	user := createAndEnrollMFAUser(t, client, "attempts@example.com", "attempts-inc")

	assertMFARequired(t, client, user.Email, user.Password)

	// Burn through the attempt budget with bad codes
	for i := 1; i <= 5; i++ {
		_, err := client.VerifyMFA(t.Context(), user.UserID, "000000", false)
		require.Error(t, err, "Attempt %d: Should reject invalid TOTP code", i)
	}
	t.Logf("Completed 5 failed attempts")

	// Even a valid code must fail once the challenge is invalidated
	validCode := generateTOTP(t, user.TOTPSecret)
	_, err := client.VerifyMFA(t.Context(), user.UserID, validCode, false)
	require.Error(t, err, "Should reject even valid code after challenge invalidated")

	// A fresh login creates a fresh challenge that works
	assertMFARequired(t, client, user.Email, user.Password)
	tokens := completeMFAWithTOTP(t, client, user)
	assertTokenResponse(t, tokens)
	t.Logf("Fresh MFA challenge works after previous one was invalidated")
}

// TestMFARemoval tests disabling MFA on an account.
func TestMFARemoval(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	user := createAndEnrollMFAUser(t, client, "removal@example.com", "removal-ltd")

	// Complete MFA to get a fresh access token
	assertMFARequired(t, client, user.Email, user.Password)
	tokens := completeMFAWithTOTP(t, client, user)

	err := client.DisableMFA(t.Context(), tokens.AccessToken)
	require.NoError(t, err)
	t.Logf("MFA removed from account")

	// Login now succeeds directly
	direct := performLogin(t, client, user.Email, user.Password)
	assertTokenResponse(t, direct)

	// Old backup codes are gone with the enrollment
	_, err = client.VerifyMFA(t.Context(), user.UserID, user.BackupCodes[1], true)
	require.Error(t, err, "Backup codes should be invalid after MFA removal")
}

// ==============================
// Helper functions for MFA tests
// ==============================

// createAndEnrollMFAUser signs up a fresh user and walks it through the
// full TOTP enrollment. This is the most common setup pattern here.
func createAndEnrollMFAUser(t *testing.T, client *authsdk.SDKClient, email, slug string) *mfaTestUser {
	t.Helper()

	signup := signupUser(t, client, email, slug)
	user := &mfaTestUser{
		Email:    email,
		Password: testPassword,
		UserID:   signup.UserID,
	}

	tokens := performLogin(t, client, email, testPassword)

	enrollResp, err := client.EnrollTOTP(t.Context(), tokens.AccessToken)
	require.NoError(t, err)
	require.NotEmpty(t, enrollResp.Secret, "TOTP secret should be returned")
	require.NotEmpty(t, enrollResp.QRCode, "QR code should be returned")

	user.TOTPSecret = enrollResp.Secret

	totpCode := generateTOTP(t, user.TOTPSecret)
	backupResp, err := client.ActivateTOTP(t.Context(), tokens.AccessToken, totpCode)

	require.NoError(t, err)
	require.Len(t, backupResp.BackupCodes, 10, "Should receive 10 backup codes")

	user.BackupCodes = backupResp.BackupCodes
	return user
}

// generateTOTP generates a TOTP code for the given secret.
func generateTOTP(t *testing.T, secret string) string {
	t.Helper()

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	return code
}

// assertMFARequired verifies that login returns an MFA challenge.
func assertMFARequired(t *testing.T, client *authsdk.SDKClient, email, password string) *authsdk.MFARequiredError {
	t.Helper()

	_, err := client.Login(t.Context(), email, password)
	require.Error(t, err, "Should receive MFA error")

	var mfaErr *authsdk.MFARequiredError
	require.ErrorAs(t, err, &mfaErr, "Error should be MFARequiredError")
	require.NotEmpty(t, mfaErr.UserID, "User id should be present on the challenge")

	return mfaErr
}

// completeMFAWithTOTP completes the active MFA challenge using a TOTP code.
func completeMFAWithTOTP(t *testing.T, client *authsdk.SDKClient, user *mfaTestUser) *authsdk.TokenResponse {
	t.Helper()

	totpCode := generateTOTP(t, user.TOTPSecret)
	tokens, err := client.VerifyMFA(t.Context(), user.UserID, totpCode, false)

	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	return tokens
}
