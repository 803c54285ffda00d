package flow

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/meridianapps/meridian/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// verifyCounter backs an MFA stub that accepts one specific code and
// counts every verify call it receives.
func verifyCounter(t *testing.T, acceptCode string, calls *atomic.Int32) *authsdk.SDKClient {
	t.Helper()

	return newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var req authsdk.MFAVerifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Code == acceptCode {
			writeTokens(w)
			return
		}
		authsdk.ErrInvalidCredentials.WriteError(w)
	}))
}

func TestMFAAutoSubmitFiresOnceOnTyping(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := verifyCounter(t, "123456", &calls)

	v := NewMFAVerification(client, "u-42")
	var got Session
	v.OnSuccess = func(s Session) { got = s }

	for _, ch := range "123456" {
		v.TypeDigit(t.Context(), ch)
	}

	require.Equal(t, int32(1), calls.Load(), "Completing the code fires exactly one verify call")
	require.Equal(t, "access-token", got.AccessToken)
}

func TestMFAAutoSubmitFiresOnceOnPaste(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := verifyCounter(t, "123456", &calls)

	v := NewMFAVerification(client, "u-42")
	v.OnSuccess = func(Session) {}

	v.Paste(t.Context(), "123456")

	require.Equal(t, int32(1), calls.Load())
}

func TestMFAIncompleteCodeFailsLocally(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := verifyCounter(t, "123456", &calls)

	v := NewMFAVerification(client, "u-42")
	v.TypeDigit(t.Context(), '1')
	v.TypeDigit(t.Context(), '2')
	v.Verify(t.Context())

	require.Zero(t, calls.Load(), "Incomplete code must not reach the network")
	require.Equal(t, msgEnterFullCode, v.Err())
}

func TestMFAFailureClearsCellsAndRefocuses(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := verifyCounter(t, "123456", &calls)

	v := NewMFAVerification(client, "u-42")
	v.Paste(t.Context(), "999999")

	require.Equal(t, msgIncorrectCode, v.Err())
	otp := v.OTP()
	require.Equal(t, "", otp.Code(), "Wrong code clears every cell")
	require.Equal(t, 0, otp.Focus(), "Focus returns to the first cell")

	// Entry works again after the reset
	v.Paste(t.Context(), "123456")
	require.Empty(t, v.Err())
	require.Equal(t, int32(2), calls.Load())
}

func TestMFABackupModePreservesTextOnFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := verifyCounter(t, "GOOD-CODE", &calls)

	v := NewMFAVerification(client, "u-42")
	v.ToggleMode()
	v.SetBackupCode("bad-code")
	require.Equal(t, "BAD-CODE", v.BackupCode(), "Backup codes are uppercased on input")

	v.Verify(t.Context())

	require.Equal(t, msgIncorrectBackup, v.Err())
	require.Equal(t, "BAD-CODE", v.BackupCode(), "Failed backup code stays editable in place")

	v.SetBackupCode("good-code")
	v.Verify(t.Context())
	require.Empty(t, v.Err())
}

func TestMFAEmptyBackupCodeFailsLocally(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := verifyCounter(t, "GOOD-CODE", &calls)

	v := NewMFAVerification(client, "u-42")
	v.ToggleMode()
	v.Verify(t.Context())

	require.Zero(t, calls.Load())
	require.Equal(t, msgEnterBackupCode, v.Err())
}

func TestMFAToggleModeClearsState(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := verifyCounter(t, "123456", &calls)

	v := NewMFAVerification(client, "u-42")
	v.Paste(t.Context(), "999999")
	require.NotEmpty(t, v.Err())

	v.ToggleMode()
	require.True(t, v.BackupMode())
	require.Empty(t, v.Err(), "Toggling clears the error")
	require.Empty(t, v.BackupCode())
	require.Equal(t, "", v.OTP().Code())

	v.SetBackupCode("ABCD")
	v.ToggleMode()
	require.False(t, v.BackupMode())
	require.Empty(t, v.BackupCode(), "Toggling clears both buffers")
	require.Equal(t, "", v.OTP().Code())
}

func TestMFAModeGuardsInput(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := verifyCounter(t, "123456", &calls)

	v := NewMFAVerification(client, "u-42")
	v.ToggleMode()

	// OTP input is inert in backup mode, so no auto-submit can fire
	v.Paste(t.Context(), "123456")
	for _, ch := range "123456" {
		v.TypeDigit(t.Context(), ch)
	}
	require.Zero(t, calls.Load())
	require.Equal(t, "", v.OTP().Code())

	// Backup input is inert in OTP mode
	v.ToggleMode()
	v.SetBackupCode("ABCD")
	require.Empty(t, v.BackupCode())
}

func TestMFATransportErrorKeepsInput(t *testing.T) {
	t.Parallel()

	v := NewMFAVerification(deadClient(t), "u-42")
	v.Paste(t.Context(), "123456")

	require.Equal(t, msgVerifyUnavailable, v.Err())
	require.Equal(t, "123456", v.OTP().Code(), "A transport failure is not a wrong code")
}
