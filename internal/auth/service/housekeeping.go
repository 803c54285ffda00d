package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/meridianapps/meridian/internal/auth/store"
)

// HousekeepingService periodically cleans up expired database records so
// refresh tokens, MFA challenges, and one-time token tables don't grow
// without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service with the given
// interval. Zero or negative defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts down the worker, blocking until any in-progress cleanup ends.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup deletes expired records. Each deletion is independent; a failure
// in one table won't stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	s.Logger.Debug("starting housekeeping cleanup")

	sweeps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"refresh_tokens", s.Store.RefreshTokens().DeleteExpiredRefreshTokens},
		{"mfa_challenges", s.Store.MFAChallenges().DeleteExpiredChallenges},
		{"password_reset_tokens", s.Store.ResetTokens().DeleteExpiredResetTokens},
		{"email_verification_tokens", s.Store.VerificationTokens().DeleteExpiredVerificationTokens},
	}

	var succeeded int
	for _, sweep := range sweeps {
		if err := sweep.fn(ctx); err != nil {
			s.Logger.Error("housekeeping sweep failed", "table", sweep.name, "error", err)
			continue
		}
		succeeded++
	}

	s.Logger.Info("housekeeping cleanup completed", "successful_sweeps", succeeded)
}
