package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/meridianapps/meridian/internal/auth/domain"
	"github.com/meridianapps/meridian/internal/auth/store"
	"github.com/meridianapps/meridian/pkg/authsdk"
	"github.com/meridianapps/meridian/pkg/cryptox"
	"github.com/meridianapps/meridian/pkg/idx"
	"github.com/meridianapps/meridian/pkg/jwtx"
	"github.com/meridianapps/meridian/pkg/slogx"
)

// MFAChallengeTTL bounds how long a pending second-factor challenge stays
// valid after the password step.
const MFAChallengeTTL = 5 * time.Minute

// MFARequiredError is an alias to the SDK's MFARequiredError so handlers can
// write the challenge response directly.
type MFARequiredError = authsdk.MFARequiredError

type LoginService struct {
	Store  store.Store
	Tokens *TokenService
}

// Login verifies email/password and issues tokens. Accounts with MFA
// enrolled get a *MFARequiredError instead; the caller finishes the flow
// through MFAService.VerifyChallenge.
func (s *LoginService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a hash anyway so unknown emails cost the same as bad
			// passwords.
			_ = cryptox.VerifyPassword(password, dummyHash())
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("login password verification failed", "user_id", u.ID)
		return nil, ErrInvalidCredentials
	}

	if u.MFAEnabled != nil {
		challenge := domain.MFAChallenge{
			ID:        idx.New().String(),
			UserID:    u.ID,
			Attempts:  0,
			ExpiresAt: now.Add(MFAChallengeTTL),
			CreatedAt: now.UTC(),
		}
		if err := s.Store.MFAChallenges().CreateChallenge(ctx, challenge); err != nil {
			return nil, err
		}
		l.Info("login requires second factor", "user_id", u.ID)
		return nil, &MFARequiredError{UserID: u.ID}
	}

	return s.Tokens.Issue(ctx, u, "", []string{jwtx.AMRPassword}, now)
}

// dummyHash returns an argon2id digest of a throwaway value, used to
// equalize timing between unknown-email and wrong-password failures.
// Computed lazily so the pepper path is configured first.
var dummyHash = sync.OnceValue(func() string {
	h, err := cryptox.HashPassword("meridian-dummy-credential")
	if err != nil {
		return ""
	}
	return h
})
