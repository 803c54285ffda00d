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

// ResetTokenTTL is how long a password reset link stays usable.
const ResetTokenTTL = 1 * time.Hour

var (
	ErrInvalidResetToken = errors.New("invalid_reset_token")
	ErrExpiredResetToken = errors.New("expired_reset_token")
)

type PasswordResetService struct {
	Store  store.Store
	Tokens *TokenService
	Mailer Mailer
}

// Request issues a reset token and mails it. Unknown emails succeed silently
// so the endpoint cannot be used to enumerate accounts.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}

	token := domain.PasswordResetToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(opaque),
		ExpiresAt: now.Add(ResetTokenTTL),
		CreatedAt: now,
	}
	if err := s.Store.ResetTokens().CreateResetToken(ctx, token); err != nil {
		return err
	}

	return s.Mailer.SendPasswordReset(ctx, u.Email, opaque)
}

// Validate checks a reset token without consuming it, so the UI can decide
// between the new-password form and an error state. Expired tokens are a
// distinct failure from unknown ones.
func (s *PasswordResetService) Validate(ctx context.Context, opaque string) (domain.User, error) {
	token, u, err := s.lookup(ctx, opaque)
	if err != nil {
		return domain.User{}, err
	}
	if time.Now().After(token.ExpiresAt) {
		return domain.User{}, ErrExpiredResetToken
	}
	return u, nil
}

// Confirm consumes the token, sets the new password, and revokes every live
// refresh token for the user.
func (s *PasswordResetService) Confirm(ctx context.Context, opaque, newPassword string) error {
	l := slogx.FromContext(ctx)

	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	token, u, err := s.lookup(ctx, opaque)
	if err != nil {
		return err
	}
	if time.Now().After(token.ExpiresAt) {
		return ErrExpiredResetToken
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.ResetTokens().MarkResetTokenUsed(ctx, token.ID); err != nil {
			return err
		}
		if err := tx.Users().UpdatePasswordHash(ctx, u.ID, hash); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, u.ID)
	})
	if err != nil {
		return err
	}

	l.Info("password reset completed", "user_id", u.ID)
	return nil
}

func (s *PasswordResetService) lookup(ctx context.Context, opaque string) (domain.PasswordResetToken, domain.User, error) {
	opaque = strings.TrimSpace(opaque)
	if opaque == "" {
		return domain.PasswordResetToken{}, domain.User{}, ErrInvalidResetToken
	}

	hash := cryptox.FingerprintToken(opaque)
	token, err := s.Store.ResetTokens().GetResetTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PasswordResetToken{}, domain.User{}, ErrInvalidResetToken
		}
		return domain.PasswordResetToken{}, domain.User{}, err
	}

	u, err := s.Store.Users().GetUserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PasswordResetToken{}, domain.User{}, ErrInvalidResetToken
		}
		return domain.PasswordResetToken{}, domain.User{}, err
	}

	return token, u, nil
}
