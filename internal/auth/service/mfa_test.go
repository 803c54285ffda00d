package service

import (
	"context"
	"testing"
	"time"

	"github.com/meridianapps/meridian/internal/auth/domain"
	"github.com/meridianapps/meridian/pkg/cryptox"
	"github.com/meridianapps/meridian/pkg/idx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func seedChallenge(t *testing.T, svc *MFAService, userID string) domain.MFAChallenge {
	t.Helper()
	now := time.Now().UTC()
	c := domain.MFAChallenge{
		ID:        idx.New().String(),
		UserID:    userID,
		ExpiresAt: now.Add(MFAChallengeTTL),
		CreatedAt: now,
	}
	require.NoError(t, svc.Store.MFAChallenges().CreateChallenge(context.Background(), c))
	return c
}

func TestVerifyChallengeWithTOTP(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &MFAService{Store: st, Tokens: newTokenService(t, st), Issuer: "Meridian"}

	u := seedUser(t, st, "ada@example.com", "correct horse battery")

	enroll, err := svc.EnrollTOTP(ctx, u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, enroll.Secret)
	require.Contains(t, enroll.QRCode, "otpauth://")

	code, err := totp.GenerateCode(enroll.Secret, time.Now())
	require.NoError(t, err)

	backupCodes, err := svc.ActivateTOTP(ctx, u.ID, code)
	require.NoError(t, err)
	require.Len(t, backupCodes, backupCodeCount)

	seedChallenge(t, svc, u.ID)

	code, err = totp.GenerateCode(enroll.Secret, time.Now())
	require.NoError(t, err)

	pair, err := svc.VerifyChallenge(ctx, u.ID, code, false)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)

	// Challenge is consumed on success.
	_, err = svc.VerifyChallenge(ctx, u.ID, code, false)
	require.ErrorIs(t, err, ErrNoActiveChallenge)
}

func TestVerifyChallengeWithBackupCode(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &MFAService{Store: st, Tokens: newTokenService(t, st), Issuer: "Meridian"}

	u := seedUser(t, st, "ada@example.com", "correct horse battery")

	enroll, err := svc.EnrollTOTP(ctx, u.ID)
	require.NoError(t, err)
	code, err := totp.GenerateCode(enroll.Secret, time.Now())
	require.NoError(t, err)
	backupCodes, err := svc.ActivateTOTP(ctx, u.ID, code)
	require.NoError(t, err)

	seedChallenge(t, svc, u.ID)

	pair, err := svc.VerifyChallenge(ctx, u.ID, backupCodes[0], true)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)

	// Backup codes are single-use.
	seedChallenge(t, svc, u.ID)
	_, err = svc.VerifyChallenge(ctx, u.ID, backupCodes[0], true)
	require.ErrorIs(t, err, ErrInvalidMFACode)

	remaining, err := st.BackupCodes().CountUserBackupCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, backupCodeCount-1, remaining)
}

func TestVerifyChallengeAttemptCap(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &MFAService{Store: st, Tokens: newTokenService(t, st), Issuer: "Meridian"}

	u := seedUser(t, st, "ada@example.com", "correct horse battery")
	require.NoError(t, st.Users().UpdateMFASecret(ctx, u.ID, "JBSWY3DPEHPK3PXP"))
	require.NoError(t, st.Users().EnableMFA(ctx, u.ID))

	seedChallenge(t, svc, u.ID)

	for i := 0; i < MaxMFAAttempts-1; i++ {
		_, err := svc.VerifyChallenge(ctx, u.ID, "000000", false)
		require.ErrorIs(t, err, ErrInvalidMFACode)
	}

	// The attempt that reaches the cap destroys the challenge.
	_, err := svc.VerifyChallenge(ctx, u.ID, "000000", false)
	require.ErrorIs(t, err, ErrTooManyAttempts)

	_, err = svc.VerifyChallenge(ctx, u.ID, "000000", false)
	require.ErrorIs(t, err, ErrNoActiveChallenge)
}

func TestDisableMFAClearsState(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &MFAService{Store: st, Tokens: newTokenService(t, st), Issuer: "Meridian"}

	u := seedUser(t, st, "ada@example.com", "correct horse battery")
	require.NoError(t, st.BackupCodes().CreateBackupCode(ctx, u.ID, cryptox.FingerprintToken("CODE")))
	require.NoError(t, st.Users().UpdateMFASecret(ctx, u.ID, "JBSWY3DPEHPK3PXP"))
	require.NoError(t, st.Users().EnableMFA(ctx, u.ID))

	require.NoError(t, svc.DisableMFA(ctx, u.ID))

	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, got.MFAEnabled)
	require.Nil(t, got.MFASecret)

	count, err := st.BackupCodes().CountUserBackupCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}
