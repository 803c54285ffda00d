package flow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/meridianapps/meridian/pkg/authsdk"
)

// Inline messages surfaced by MFA verification.
const (
	msgEnterFullCode     = "Enter the 6-digit code"
	msgEnterBackupCode   = "Enter a backup code"
	msgIncorrectCode     = "That code is incorrect. Try again."
	msgIncorrectBackup   = "That backup code is incorrect. Try again."
	msgVerifyUnavailable = "Unable to verify the code"
)

// MFAVerification collects either a six-digit code or a backup code for
// a pending challenge and exchanges it for a session. Exactly one input
// mode is active at a time; auto-submit fires once when the sixth cell
// fills, guarded against re-entry so rapid typing or paste cannot issue
// duplicate verify calls.
type MFAVerification struct {
	client *authsdk.SDKClient
	userID string

	// OnSuccess receives the session. The machine neither stores the
	// session nor redirects.
	OnSuccess func(Session)

	// OnCancel is invoked when the user abandons the challenge.
	OnCancel func()

	mu           sync.Mutex
	otp          OTPInput
	backupCode   string
	isBackupCode bool
	errMsg       string
	busy         bool
}

// NewMFAVerification builds a verification machine for the given user's
// pending challenge.
func NewMFAVerification(client *authsdk.SDKClient, userID string) *MFAVerification {
	return &MFAVerification{client: client, userID: userID}
}

// Busy reports whether a verify call is in flight. All controls are
// disabled while true.
func (v *MFAVerification) Busy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy
}

// Err returns the current inline error message, if any.
func (v *MFAVerification) Err() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

// BackupMode reports whether backup-code entry is active.
func (v *MFAVerification) BackupMode() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.isBackupCode
}

// BackupCode returns the backup-code buffer.
func (v *MFAVerification) BackupCode() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.backupCode
}

// OTP exposes a snapshot of the code cells for rendering.
func (v *MFAVerification) OTP() OTPInput {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.otp
}

// ToggleMode switches between OTP and backup-code entry. Both buffers
// and any error are cleared so no stale state leaks across modes.
func (v *MFAVerification) ToggleMode() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.busy {
		return
	}
	v.isBackupCode = !v.isBackupCode
	v.otp.Clear()
	v.backupCode = ""
	v.errMsg = ""
}

// TypeDigit enters a digit into the focused cell. Filling the sixth
// cell auto-submits if no verification is already in flight.
func (v *MFAVerification) TypeDigit(ctx context.Context, ch rune) {
	v.mu.Lock()
	if v.busy || v.isBackupCode {
		v.mu.Unlock()
		return
	}
	v.otp.TypeDigit(ch)
	submit := v.otp.Complete()
	v.mu.Unlock()

	if submit {
		v.Verify(ctx)
	}
}

// Backspace forwards backspace to the code cells.
func (v *MFAVerification) Backspace() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.busy || v.isBackupCode {
		return
	}
	v.otp.Backspace()
}

// ArrowLeft moves the cell focus left.
func (v *MFAVerification) ArrowLeft() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.busy || v.isBackupCode {
		return
	}
	v.otp.ArrowLeft()
}

// ArrowRight moves the cell focus right.
func (v *MFAVerification) ArrowRight() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.busy || v.isBackupCode {
		return
	}
	v.otp.ArrowRight()
}

// Paste distributes pasted digits across the cells and auto-submits
// under the same guard as typing.
func (v *MFAVerification) Paste(ctx context.Context, text string) {
	v.mu.Lock()
	if v.busy || v.isBackupCode {
		v.mu.Unlock()
		return
	}
	v.otp.Paste(text)
	submit := v.otp.Complete()
	v.mu.Unlock()

	if submit {
		v.Verify(ctx)
	}
}

// SetBackupCode replaces the backup-code buffer, uppercasing input.
func (v *MFAVerification) SetBackupCode(code string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.busy || !v.isBackupCode {
		return
	}
	v.backupCode = strings.ToUpper(code)
}

// Verify submits the active code. An incomplete OTP or empty backup
// code fails locally without a network call. A verification already in
// flight makes Verify a no-op.
func (v *MFAVerification) Verify(ctx context.Context) {
	v.mu.Lock()
	if v.busy {
		v.mu.Unlock()
		return
	}

	var code string
	isBackup := v.isBackupCode
	if isBackup {
		code = strings.TrimSpace(v.backupCode)
		if code == "" {
			v.errMsg = msgEnterBackupCode
			v.mu.Unlock()
			return
		}
	} else {
		if !v.otp.Complete() {
			v.errMsg = msgEnterFullCode
			v.mu.Unlock()
			return
		}
		code = v.otp.Code()
	}

	v.busy = true
	v.errMsg = ""
	v.mu.Unlock()

	tokens, err := v.client.VerifyMFA(ctx, v.userID, code, isBackup)

	v.mu.Lock()
	v.busy = false

	if err != nil {
		var apiErr *authsdk.APIError
		switch {
		case !errors.As(err, &apiErr):
			// Transport failure, not a wrong code. Keep the input.
			v.errMsg = msgVerifyUnavailable
		case isBackup:
			// Leave the text so the user can edit in place.
			v.errMsg = msgIncorrectBackup
		default:
			v.errMsg = msgIncorrectCode
			v.otp.Clear()
		}
		v.mu.Unlock()
		return
	}

	session, err := NewSession(tokens)
	if err != nil {
		v.errMsg = msgVerifyUnavailable
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()

	if v.OnSuccess != nil {
		v.OnSuccess(session)
	}
}

// Cancel abandons the challenge. Disabled while a verification call is
// in flight.
func (v *MFAVerification) Cancel() {
	v.mu.Lock()
	if v.busy {
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()

	if v.OnCancel != nil {
		v.OnCancel()
	}
}
