package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/meridianapps/meridian/pkg/authsdk"
)

// TokenState enumerates the token-driven flows (password reset, email
// verification).
type TokenState int

const (
	StateValidating TokenState = iota
	StateValid
	StateInvalid
	StateExpired
	StateSubmitting
	StateSuccess
)

// continueDelay is how long a successful flow waits before invoking the
// automatic continue.
const continueDelay = 3 * time.Second

// Inline messages surfaced by the token flows.
const (
	msgPasswordRequirements = "Choose a password that meets the requirements"
	msgResetFailed          = "Unable to reset your password. Please try again."
	msgVerifyFailed         = "Unable to verify your email. Please try again."
	msgResendFailed         = "Unable to resend the email. Please try again."
)

// tokenExpired classifies a confirm failure as an expired link rather
// than a generic invalid one.
func tokenExpired(err error) bool {
	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "expired")
}

// ResetFlow drives the password-reset page: validate the token from the
// URL, collect a new password against the live requirement checklist,
// confirm, then auto-continue after a short delay.
type ResetFlow struct {
	client *authsdk.SDKClient
	sched  Scheduler
	token  string

	// OnContinue fires once after success, either from the scheduled
	// redirect or a manual Continue.
	OnContinue func()

	mu        sync.Mutex
	state     TokenState
	email     string
	password  string
	errMsg    string
	timer     Timer
	closed    bool
	continued bool
}

// NewResetFlow builds a flow for the token extracted from the URL.
func NewResetFlow(client *authsdk.SDKClient, sched Scheduler, token string) *ResetFlow {
	return &ResetFlow{client: client, sched: sched, token: token, state: StateValidating}
}

// State returns the current state.
func (f *ResetFlow) State() TokenState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Email returns the masked account email reported by validation.
func (f *ResetFlow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// Err returns the current inline error message, if any.
func (f *ResetFlow) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

// Password returns the typed password. Preserved across confirm
// failures so the user never retypes it.
func (f *ResetFlow) Password() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.password
}

// Checklist returns the live requirement feedback for the typed
// password.
func (f *ResetFlow) Checklist() []RequirementStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return CheckPassword(f.password)
}

// SetPassword records a keystroke of the new password.
func (f *ResetFlow) SetPassword(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateValid {
		return
	}
	f.password = p
}

// Start validates the token. A missing token is immediately invalid
// with no network call made.
func (f *ResetFlow) Start(ctx context.Context) {
	f.mu.Lock()
	if f.state != StateValidating || f.token == "" {
		if f.token == "" {
			f.state = StateInvalid
		}
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()

	check, err := f.client.ValidateResetToken(ctx, f.token)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}

	switch {
	case err != nil && tokenExpired(err):
		f.state = StateExpired
	case err != nil || !check.Valid:
		f.state = StateInvalid
	default:
		f.state = StateValid
		f.email = check.Email
	}
}

// Confirm submits the new password. A password failing the checklist is
// rejected locally. A failure that indicates expiry moves to
// StateExpired; any other failure returns to StateValid with the typed
// password intact.
func (f *ResetFlow) Confirm(ctx context.Context) {
	f.mu.Lock()
	if f.state != StateValid {
		f.mu.Unlock()
		return
	}
	if !ValidPassword(f.password) {
		f.errMsg = msgPasswordRequirements
		f.mu.Unlock()
		return
	}
	f.state = StateSubmitting
	f.errMsg = ""
	password := f.password
	f.mu.Unlock()

	err := f.client.ConfirmPasswordReset(ctx, f.token, password)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}

	if err != nil {
		if tokenExpired(err) {
			f.state = StateExpired
		} else {
			f.state = StateValid
			f.errMsg = msgResetFailed
		}
		f.mu.Unlock()
		return
	}

	f.state = StateSuccess
	f.timer = f.sched.AfterFunc(continueDelay, f.autoContinue)
	f.mu.Unlock()
}

// Continue skips the redirect delay.
func (f *ResetFlow) Continue() {
	f.fireContinue(true)
}

func (f *ResetFlow) autoContinue() {
	f.fireContinue(false)
}

func (f *ResetFlow) fireContinue(manual bool) {
	f.mu.Lock()
	if f.closed || f.continued || f.state != StateSuccess {
		f.mu.Unlock()
		return
	}
	f.continued = true
	if manual && f.timer != nil {
		f.timer.Stop()
	}
	f.mu.Unlock()

	if f.OnContinue != nil {
		f.OnContinue()
	}
}

// Close tears the flow down. Pending timers are cancelled and late
// callbacks become no-ops.
func (f *ResetFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.timer != nil {
		f.timer.Stop()
	}
}
