package flow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/meridianapps/meridian/pkg/authsdk"
)

// LoginState enumerates the login state machine.
type LoginState int

const (
	LoginIdle LoginState = iota
	LoginSubmitting
	LoginMFARequired
	LoginAuthenticated
)

// Inline messages surfaced by the login flow.
const (
	msgInvalidCredentials = "Invalid email or password"
	msgUnableToSignIn     = "Unable to sign in"
	msgMFANoUserContext   = "2FA required, but no user context was provided"
)

// LoginFlow drives the credential step: idle, submitting, then either
// authenticated, an MFA branch, or back to idle with an inline error.
// While the MFA branch is pending no further login call is issued.
type LoginFlow struct {
	client *authsdk.SDKClient
	store  SessionStore

	// OnSuccess receives the session once authentication completes,
	// either directly or after the MFA branch resolves.
	OnSuccess func(Session)

	mu            sync.Mutex
	state         LoginState
	errMsg        string
	pendingUserID string
}

// NewLoginFlow builds an idle login flow. store may be nil when the
// caller handles the session entirely through OnSuccess.
func NewLoginFlow(client *authsdk.SDKClient, store SessionStore) *LoginFlow {
	return &LoginFlow{client: client, store: store}
}

// State returns the current state.
func (f *LoginFlow) State() LoginState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the current inline error message, if any.
func (f *LoginFlow) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

// PendingUserID returns the user id of the MFA challenge when the flow
// is in LoginMFARequired.
func (f *LoginFlow) PendingUserID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pendingUserID
}

// Submit exchanges credentials for a session. Empty or malformed input
// fails locally without a network call. A submission already in flight,
// or a pending MFA branch, makes Submit a no-op.
func (f *LoginFlow) Submit(ctx context.Context, email, password string) {
	f.mu.Lock()
	if f.state == LoginSubmitting || f.state == LoginMFARequired || f.state == LoginAuthenticated {
		f.mu.Unlock()
		return
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" || !ValidEmail(email) {
		f.errMsg = msgInvalidCredentials
		f.mu.Unlock()
		return
	}

	f.state = LoginSubmitting
	f.errMsg = ""
	f.mu.Unlock()

	tokens, err := f.client.Login(ctx, email, password)

	f.mu.Lock()

	if err != nil {
		var mfaErr *authsdk.MFARequiredError
		var apiErr *authsdk.APIError
		switch {
		case errors.As(err, &mfaErr):
			if mfaErr.UserID == "" {
				// Malformed challenge from the server. Hard stop
				// rather than entering the MFA state blind.
				f.state = LoginIdle
				f.errMsg = msgMFANoUserContext
				f.mu.Unlock()
				return
			}
			f.state = LoginMFARequired
			f.pendingUserID = mfaErr.UserID
		case errors.As(err, &apiErr):
			f.state = LoginIdle
			f.errMsg = msgInvalidCredentials
		default:
			f.state = LoginIdle
			f.errMsg = msgUnableToSignIn
		}
		f.mu.Unlock()
		return
	}

	session, err := NewSession(tokens)
	if err != nil {
		f.state = LoginIdle
		f.errMsg = msgUnableToSignIn
		f.mu.Unlock()
		return
	}

	f.state = LoginAuthenticated
	f.mu.Unlock()
	f.finish(session)
}

// MFAVerification returns the verification machine for the pending
// challenge, or nil when the flow is not in LoginMFARequired. Its
// success resolves this flow to LoginAuthenticated; its cancel returns
// the flow to idle for a fresh login.
func (f *LoginFlow) MFAVerification() *MFAVerification {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != LoginMFARequired {
		return nil
	}

	v := NewMFAVerification(f.client, f.pendingUserID)
	v.OnSuccess = func(s Session) {
		f.mu.Lock()
		f.state = LoginAuthenticated
		f.pendingUserID = ""
		f.mu.Unlock()
		f.finish(s)
	}
	v.OnCancel = func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.state = LoginIdle
		f.pendingUserID = ""
	}
	return v
}

// finish stores the session and notifies the caller. Called without
// f.mu held so the callback may read the flow.
func (f *LoginFlow) finish(s Session) {
	if f.store != nil {
		f.store.Set(s)
	}
	if f.OnSuccess != nil {
		f.OnSuccess(s)
	}
}
