package flow

import (
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/meridianapps/meridian/pkg/authsdk"
	"github.com/meridianapps/meridian/pkg/httpx"
	"github.com/stretchr/testify/require"
)

// verifyBackend stubs the verification endpoints and counts resends.
func verifyBackend(t *testing.T, resends *atomic.Int32, resendErr *authsdk.APIError) *authsdk.SDKClient {
	t.Helper()

	return newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/verify-email/validate":
			if r.URL.Query().Get("token") == "good-token" {
				httpx.WriteJSON(w, http.StatusOK, authsdk.TokenCheckResponse{Valid: true, Email: "a***@example.com"})
				return
			}
			authsdk.ErrInvalidToken.WriteError(w)
		case "/v1/verify-email/confirm":
			w.WriteHeader(http.StatusNoContent)
		case "/v1/verify-email/resend":
			resends.Add(1)
			if resendErr != nil {
				resendErr.WriteError(w)
				return
			}
			w.WriteHeader(http.StatusAccepted)
		}
	}))
}

func TestVerifyTokenStates(t *testing.T) {
	t.Parallel()

	var resends atomic.Int32
	client := verifyBackend(t, &resends, nil)

	f := NewVerifyEmailFlow(client, &fakeScheduler{}, "good-token")
	f.Start(t.Context())
	require.Equal(t, StateValid, f.State())
	require.Equal(t, "a***@example.com", f.Email())

	f = NewVerifyEmailFlow(client, &fakeScheduler{}, "bad-token")
	f.Start(t.Context())
	require.Equal(t, StateInvalid, f.State())

	f = NewVerifyEmailFlow(client, &fakeScheduler{}, "")
	f.Start(t.Context())
	require.Equal(t, StateInvalid, f.State(), "A missing token is terminal without a network call")
}

func TestVerifyConfirmSuccess(t *testing.T) {
	t.Parallel()

	var resends atomic.Int32
	client := verifyBackend(t, &resends, nil)
	sched := &fakeScheduler{}

	var continued atomic.Int32
	f := NewVerifyEmailFlow(client, sched, "good-token")
	f.OnContinue = func() { continued.Add(1) }

	f.Start(t.Context())
	f.Confirm(t.Context())

	require.Equal(t, StateSuccess, f.State())
	require.True(t, sched.fireNext())
	require.Equal(t, int32(1), continued.Load())
}

func TestVerifyResendCooldown(t *testing.T) {
	t.Parallel()

	var resends atomic.Int32
	client := verifyBackend(t, &resends, nil)
	sched := &fakeScheduler{}

	f := NewVerifyEmailFlow(client, sched, "")
	f.Resend(t.Context(), "ada@example.com")

	require.Equal(t, int32(1), resends.Load())
	require.Equal(t, ResendCooldownSeconds, f.Cooldown())

	// Resend while the cooldown runs is a no-op with no network call
	f.Resend(t.Context(), "ada@example.com")
	require.Equal(t, int32(1), resends.Load())

	// The countdown strictly decreases by one per tick down to zero
	for want := ResendCooldownSeconds - 1; want >= 0; want-- {
		require.True(t, sched.fireNext())
		require.Equal(t, want, f.Cooldown())
	}
	require.False(t, sched.fireNext(), "The tick stops re-arming at zero")

	// The control re-enables once the countdown reaches zero
	f.Resend(t.Context(), "ada@example.com")
	require.Equal(t, int32(2), resends.Load())
}

func TestVerifyResendSingleInFlight(t *testing.T) {
	t.Parallel()

	var resends atomic.Int32
	release := make(chan struct{})
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resends.Add(1)
		<-release
		w.WriteHeader(http.StatusAccepted)
	}))
	sched := &fakeScheduler{}

	f := NewVerifyEmailFlow(client, sched, "")

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.Resend(t.Context(), "ada@example.com")
	}()
	require.Eventually(t, func() bool { return resends.Load() == 1 }, time.Second, 5*time.Millisecond)

	// A second resend while the first is still in flight must not reach
	// the backend
	f.Resend(t.Context(), "ada@example.com")
	require.Equal(t, int32(1), resends.Load())

	close(release)
	<-done

	require.Equal(t, int32(1), resends.Load())
	require.Equal(t, ResendCooldownSeconds, f.Cooldown())
}

func TestVerifyResendFailureDoesNotStartCooldown(t *testing.T) {
	t.Parallel()

	var resends atomic.Int32
	client := verifyBackend(t, &resends, authsdk.ErrServerError)
	sched := &fakeScheduler{}

	f := NewVerifyEmailFlow(client, sched, "")
	f.Resend(t.Context(), "ada@example.com")

	require.Equal(t, int32(1), resends.Load())
	require.Equal(t, msgResendFailed, f.Err())
	require.Zero(t, f.Cooldown())
	require.Zero(t, sched.pending())

	// The user can retry immediately
	f.Resend(t.Context(), "ada@example.com")
	require.Equal(t, int32(2), resends.Load())
}

func TestVerifyCloseStopsCooldownTick(t *testing.T) {
	t.Parallel()

	var resends atomic.Int32
	client := verifyBackend(t, &resends, nil)
	sched := &fakeScheduler{}

	f := NewVerifyEmailFlow(client, sched, "")
	f.Resend(t.Context(), "ada@example.com")
	require.True(t, sched.fireNext())

	f.Close()
	require.Zero(t, sched.pending(), "Teardown cancels the armed tick")

	// A tick that already left the scheduler must be a no-op
	before := f.Cooldown()
	f.tickCooldown()
	require.Equal(t, before, f.Cooldown())
}
