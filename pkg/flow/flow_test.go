package flow

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/meridianapps/meridian/pkg/authsdk"
	"github.com/meridianapps/meridian/pkg/httpx"
)

// newTestClient points an SDK client at a stub backend.
func newTestClient(t *testing.T, handler http.Handler) *authsdk.SDKClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return authsdk.NewSDKClient(server.URL)
}

// deadClient returns a client whose backend is already gone, so every
// call fails at the transport level.
func deadClient(t *testing.T) *authsdk.SDKClient {
	t.Helper()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	return authsdk.NewSDKClient(url)
}

func writeTokens(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		TokenType:    "Bearer",
		ExpiresIn:    900,
	})
}

// fakeScheduler collects timers and fires them on demand so tests step
// through countdowns deterministically.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer := &fakeTimer{d: d, fn: fn}
	s.timers = append(s.timers, timer)
	return timer
}

func (t *fakeTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// fireNext runs the oldest pending timer. Returns false when nothing is
// pending.
func (s *fakeScheduler) fireNext() bool {
	s.mu.Lock()
	var next *fakeTimer
	for _, timer := range s.timers {
		if !timer.fired && !timer.stopped {
			next = timer
			break
		}
	}
	if next == nil {
		s.mu.Unlock()
		return false
	}
	next.fired = true
	fn := next.fn
	s.mu.Unlock()

	fn()
	return true
}

// pending counts timers that are armed and not yet fired.
func (s *fakeScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, timer := range s.timers {
		if !timer.fired && !timer.stopped {
			n++
		}
	}
	return n
}
