package flow

import (
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/meridianapps/meridian/pkg/authsdk"
	"github.com/meridianapps/meridian/pkg/httpx"
	"github.com/stretchr/testify/require"
)

// resetBackend stubs the reset endpoints: validation answers per token,
// confirm answers with confirmErr (nil for success).
func resetBackend(t *testing.T, calls *atomic.Int32, confirmErr *authsdk.APIError) *authsdk.SDKClient {
	t.Helper()

	return newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/v1/password-reset/validate":
			switch r.URL.Query().Get("token") {
			case "good-token":
				httpx.WriteJSON(w, http.StatusOK, authsdk.TokenCheckResponse{Valid: true, Email: "a***@example.com"})
			case "expired-token":
				authsdk.ErrTokenExpired.WriteError(w)
			default:
				authsdk.ErrInvalidToken.WriteError(w)
			}
		case "/v1/password-reset/confirm":
			if confirmErr != nil {
				confirmErr.WriteError(w)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}
	}))
}

func TestResetMissingTokenIsInvalidWithoutNetwork(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := resetBackend(t, &calls, nil)

	f := NewResetFlow(client, &fakeScheduler{}, "")
	f.Start(t.Context())

	require.Equal(t, StateInvalid, f.State())
	require.Zero(t, calls.Load(), "A missing token never reaches the network")
}

func TestResetTokenTerminalStates(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := resetBackend(t, &calls, nil)

	cases := []struct {
		name  string
		token string
		want  TokenState
	}{
		{name: "valid", token: "good-token", want: StateValid},
		{name: "unknown", token: "bad-token", want: StateInvalid},
		{name: "expired", token: "expired-token", want: StateExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewResetFlow(client, &fakeScheduler{}, tc.token)
			f.Start(t.Context())
			require.Equal(t, tc.want, f.State())
		})
	}
}

func TestResetConfirmSuccessAndAutoContinue(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := resetBackend(t, &calls, nil)
	sched := &fakeScheduler{}

	var continued atomic.Int32
	f := NewResetFlow(client, sched, "good-token")
	f.OnContinue = func() { continued.Add(1) }

	f.Start(t.Context())
	require.Equal(t, StateValid, f.State())
	require.Equal(t, "a***@example.com", f.Email())

	f.SetPassword("Abcdef12")
	require.True(t, f.Checklist()[0].Met)

	f.Confirm(t.Context())
	require.Equal(t, StateSuccess, f.State())
	require.Equal(t, 1, sched.pending(), "Success arms the redirect timer")

	require.True(t, sched.fireNext())
	require.Equal(t, int32(1), continued.Load())

	// A second continue is a no-op
	f.Continue()
	require.Equal(t, int32(1), continued.Load())
}

func TestResetManualContinueCancelsTimer(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := resetBackend(t, &calls, nil)
	sched := &fakeScheduler{}

	var continued atomic.Int32
	f := NewResetFlow(client, sched, "good-token")
	f.OnContinue = func() { continued.Add(1) }

	f.Start(t.Context())
	f.SetPassword("Abcdef12")
	f.Confirm(t.Context())

	f.Continue()
	require.Equal(t, int32(1), continued.Load())
	require.Zero(t, sched.pending(), "Manual continue stops the scheduled redirect")
}

func TestResetWeakPasswordFailsLocally(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := resetBackend(t, &calls, nil)

	f := NewResetFlow(client, &fakeScheduler{}, "good-token")
	f.Start(t.Context())

	before := calls.Load()
	f.SetPassword("short")
	f.Confirm(t.Context())

	require.Equal(t, StateValid, f.State())
	require.Equal(t, msgPasswordRequirements, f.Err())
	require.Equal(t, before, calls.Load(), "Checklist failures never reach the network")
}

func TestResetConfirmExpiredMovesToExpired(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := resetBackend(t, &calls, authsdk.ErrTokenExpired)

	f := NewResetFlow(client, &fakeScheduler{}, "good-token")
	f.Start(t.Context())
	f.SetPassword("Abcdef12")
	f.Confirm(t.Context())

	require.Equal(t, StateExpired, f.State(), "Expiry is distinct from a generic failure")
}

func TestResetConfirmFailurePreservesPassword(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := resetBackend(t, &calls, authsdk.ErrServerError)

	f := NewResetFlow(client, &fakeScheduler{}, "good-token")
	f.Start(t.Context())
	f.SetPassword("Abcdef12")
	f.Confirm(t.Context())

	require.Equal(t, StateValid, f.State())
	require.Equal(t, msgResetFailed, f.Err())
	require.Equal(t, "Abcdef12", f.Password(), "The typed password survives the failure")
}

func TestResetCloseCancelsTimer(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := resetBackend(t, &calls, nil)
	sched := &fakeScheduler{}

	var continued atomic.Int32
	f := NewResetFlow(client, sched, "good-token")
	f.OnContinue = func() { continued.Add(1) }

	f.Start(t.Context())
	f.SetPassword("Abcdef12")
	f.Confirm(t.Context())

	f.Close()
	require.Zero(t, sched.pending())

	// A callback that already left the scheduler must still be a no-op
	f.autoContinue()
	require.Zero(t, continued.Load())
}
