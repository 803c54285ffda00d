package flow

import (
	"context"
	"sync"
	"time"

	"github.com/meridianapps/meridian/pkg/authsdk"
)

// ResendCooldownSeconds is the lockout applied after a verification
// email resend.
const ResendCooldownSeconds = 60

// VerifyEmailFlow drives the email-verification page. It shares the
// token machine of ResetFlow (validating, then valid, invalid, or
// expired, then success) and adds the resend path with its one-minute
// cooldown ticking down once per second.
type VerifyEmailFlow struct {
	client *authsdk.SDKClient
	sched  Scheduler
	token  string

	// OnContinue fires once after success, either from the scheduled
	// redirect or a manual Continue.
	OnContinue func()

	mu        sync.Mutex
	state     TokenState
	email     string
	errMsg    string
	cooldown  int
	resending bool
	timer     Timer
	tick      Timer
	closed    bool
	continued bool
}

// NewVerifyEmailFlow builds a flow for the token extracted from the
// URL. An empty token is allowed here: the page then only offers the
// resend action.
func NewVerifyEmailFlow(client *authsdk.SDKClient, sched Scheduler, token string) *VerifyEmailFlow {
	return &VerifyEmailFlow{client: client, sched: sched, token: token, state: StateValidating}
}

// State returns the current state.
func (f *VerifyEmailFlow) State() TokenState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Email returns the masked account email reported by validation.
func (f *VerifyEmailFlow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// Err returns the current inline error message, if any.
func (f *VerifyEmailFlow) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

// Cooldown returns the seconds remaining before resend re-enables.
func (f *VerifyEmailFlow) Cooldown() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cooldown
}

// Start validates the token. A missing token is immediately invalid
// with no network call made.
func (f *VerifyEmailFlow) Start(ctx context.Context) {
	f.mu.Lock()
	if f.state != StateValidating || f.token == "" {
		if f.token == "" {
			f.state = StateInvalid
		}
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()

	check, err := f.client.ValidateVerificationToken(ctx, f.token)

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

// Confirm marks the email verified. A failure that indicates expiry
// moves to StateExpired; any other failure stays valid with an inline
// error so the user can retry.
func (f *VerifyEmailFlow) Confirm(ctx context.Context) {
	f.mu.Lock()
	if f.state != StateValid {
		f.mu.Unlock()
		return
	}
	f.state = StateSubmitting
	f.errMsg = ""
	f.mu.Unlock()

	err := f.client.ConfirmEmailVerification(ctx, f.token)

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
			f.errMsg = msgVerifyFailed
		}
		f.mu.Unlock()
		return
	}

	f.state = StateSuccess
	f.timer = f.sched.AfterFunc(continueDelay, f.autoContinue)
	f.mu.Unlock()
}

// Resend asks for a fresh verification email and starts the cooldown.
// A resend while the cooldown is running, or while an earlier resend is
// still in flight, is a no-op with no network call. A failed resend
// surfaces inline and does not start the cooldown.
func (f *VerifyEmailFlow) Resend(ctx context.Context, email string) {
	f.mu.Lock()
	if f.closed || f.resending || f.cooldown > 0 {
		f.mu.Unlock()
		return
	}
	f.resending = true
	f.mu.Unlock()

	err := f.client.ResendVerification(ctx, email)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.resending = false
	if f.closed {
		return
	}

	if err != nil {
		f.errMsg = msgResendFailed
		return
	}

	f.errMsg = ""
	f.cooldown = ResendCooldownSeconds
	f.tick = f.sched.AfterFunc(time.Second, f.tickCooldown)
}

// tickCooldown decrements the countdown once per second, re-arming
// itself until it reaches zero.
func (f *VerifyEmailFlow) tickCooldown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.cooldown == 0 {
		return
	}
	f.cooldown--
	if f.cooldown > 0 {
		f.tick = f.sched.AfterFunc(time.Second, f.tickCooldown)
	}
}

// Continue skips the redirect delay.
func (f *VerifyEmailFlow) Continue() {
	f.fireContinue(true)
}

func (f *VerifyEmailFlow) autoContinue() {
	f.fireContinue(false)
}

func (f *VerifyEmailFlow) fireContinue(manual bool) {
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
func (f *VerifyEmailFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.timer != nil {
		f.timer.Stop()
	}
	if f.tick != nil {
		f.tick.Stop()
	}
}
