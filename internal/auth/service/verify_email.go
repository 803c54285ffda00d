package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/meridianapps/meridian/internal/auth/domain"
	"github.com/meridianapps/meridian/internal/auth/store"
	"github.com/meridianapps/meridian/pkg/cryptox"
	"github.com/meridianapps/meridian/pkg/idx"
	"github.com/meridianapps/meridian/pkg/slogx"
)

const (
	// VerificationTokenTTL is how long a verification link stays usable.
	VerificationTokenTTL = 24 * time.Hour

	// ResendCooldown is the minimum gap between verification emails for
	// one account.
	ResendCooldown = 60 * time.Second
)

var (
	ErrInvalidVerifyToken = errors.New("invalid_verification_token")
	ErrExpiredVerifyToken = errors.New("expired_verification_token")
	ErrResendCooldown     = errors.New("resend_cooldown")
	ErrAlreadyVerified    = errors.New("already_verified")
)

type VerificationService struct {
	Store  store.Store
	Mailer Mailer
}

// Send issues a fresh verification token for the user and mails it.
func (s *VerificationService) Send(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()

	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}

	token := domain.EmailVerificationToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(opaque),
		ExpiresAt: now.Add(VerificationTokenTTL),
		CreatedAt: now,
	}
	if err := s.Store.VerificationTokens().CreateVerificationToken(ctx, token); err != nil {
		return err
	}

	return s.Mailer.SendEmailVerification(ctx, u.Email, opaque)
}

// Validate checks a verification token without consuming it.
func (s *VerificationService) Validate(ctx context.Context, opaque string) (domain.User, error) {
	token, u, err := s.lookup(ctx, opaque)
	if err != nil {
		return domain.User{}, err
	}
	if time.Now().After(token.ExpiresAt) {
		return domain.User{}, ErrExpiredVerifyToken
	}
	return u, nil
}

// Confirm consumes the token and stamps the account's email as verified.
func (s *VerificationService) Confirm(ctx context.Context, opaque string) error {
	l := slogx.FromContext(ctx)

	token, u, err := s.lookup(ctx, opaque)
	if err != nil {
		return err
	}
	if time.Now().After(token.ExpiresAt) {
		return ErrExpiredVerifyToken
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.VerificationTokens().MarkVerificationTokenUsed(ctx, token.ID); err != nil {
			return err
		}
		return tx.Users().MarkEmailVerified(ctx, u.ID)
	})
	if err != nil {
		return err
	}

	l.Info("email verified", "user_id", u.ID)
	return nil
}

// Resend sends a fresh verification email, subject to ResendCooldown.
// Unknown emails succeed silently; already-verified accounts get
// ErrAlreadyVerified.
func (s *VerificationService) Resend(ctx context.Context, email string) error {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("verification resend requested for unknown email")
			return nil
		}
		return err
	}

	if u.EmailVerified != nil {
		return ErrAlreadyVerified
	}

	last, err := s.Store.VerificationTokens().LatestVerificationTokenTime(ctx, u.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err == nil && now.Sub(last) < ResendCooldown {
		return ErrResendCooldown
	}

	return s.Send(ctx, u)
}

func (s *VerificationService) lookup(ctx context.Context, opaque string) (domain.EmailVerificationToken, domain.User, error) {
	opaque = strings.TrimSpace(opaque)
	if opaque == "" {
		return domain.EmailVerificationToken{}, domain.User{}, ErrInvalidVerifyToken
	}

	hash := cryptox.FingerprintToken(opaque)
	token, err := s.Store.VerificationTokens().GetVerificationTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.EmailVerificationToken{}, domain.User{}, ErrInvalidVerifyToken
		}
		return domain.EmailVerificationToken{}, domain.User{}, err
	}

	u, err := s.Store.Users().GetUserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.EmailVerificationToken{}, domain.User{}, ErrInvalidVerifyToken
		}
		return domain.EmailVerificationToken{}, domain.User{}, err
	}

	return token, u, nil
}
