package service

import (
	"context"
	"testing"
	"time"

	"github.com/meridianapps/meridian/internal/auth/domain"
	"github.com/meridianapps/meridian/pkg/cryptox"
	"github.com/meridianapps/meridian/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestEmailVerificationRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mailer := &captureMailer{}
	svc := &VerificationService{Store: st, Mailer: mailer}

	u := seedUser(t, st, "ada@example.com", "correct horse battery")

	require.NoError(t, svc.Send(ctx, u))
	opaque := mailer.lastVerify(t)

	got, err := svc.Validate(ctx, opaque)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	require.NoError(t, svc.Confirm(ctx, opaque))

	verified, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, verified.EmailVerified)

	// The token is single-use.
	require.ErrorIs(t, svc.Confirm(ctx, opaque), ErrInvalidVerifyToken)
}

func TestEmailVerificationExpiredToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &VerificationService{Store: st, Mailer: &captureMailer{}}

	u := seedUser(t, st, "ada@example.com", "correct horse battery")

	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.NoError(t, st.VerificationTokens().CreateVerificationToken(ctx, domain.EmailVerificationToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(opaque),
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-25 * time.Hour).UTC(),
	}))

	_, err = svc.Validate(ctx, opaque)
	require.ErrorIs(t, err, ErrExpiredVerifyToken)
	require.ErrorIs(t, svc.Confirm(ctx, opaque), ErrExpiredVerifyToken)
}

func TestResendEnforcesCooldown(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mailer := &captureMailer{}
	svc := &VerificationService{Store: st, Mailer: mailer}

	u := seedUser(t, st, "ada@example.com", "correct horse battery")

	// An old token outside the window doesn't block the first resend.
	old := time.Now().Add(-2 * ResendCooldown).UTC()
	require.NoError(t, st.VerificationTokens().CreateVerificationToken(ctx, domain.EmailVerificationToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken("backdated"),
		ExpiresAt: old.Add(VerificationTokenTTL),
		CreatedAt: old,
	}))
	require.NoError(t, svc.Resend(ctx, "ada@example.com"))

	// An immediate second resend is inside the cooldown.
	require.ErrorIs(t, svc.Resend(ctx, "ada@example.com"), ErrResendCooldown)
}

func TestResendSilentForUnknownAndDoneForVerified(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &VerificationService{Store: st, Mailer: &captureMailer{}}

	require.NoError(t, svc.Resend(ctx, "nobody@example.com"))

	u := seedUser(t, st, "ada@example.com", "correct horse battery")
	require.NoError(t, st.Users().MarkEmailVerified(ctx, u.ID))
	require.ErrorIs(t, svc.Resend(ctx, "ada@example.com"), ErrAlreadyVerified)
}
