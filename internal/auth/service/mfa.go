package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meridianapps/meridian/internal/auth/domain"
	"github.com/meridianapps/meridian/internal/auth/store"
	"github.com/meridianapps/meridian/pkg/cryptox"
	"github.com/meridianapps/meridian/pkg/jwtx"
	"github.com/meridianapps/meridian/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// MaxMFAAttempts is the maximum number of failed verification attempts
	// per challenge.
	MaxMFAAttempts = 5

	backupCodeCount = 10
	backupCodeBytes = cryptox.TokenSize128
)

var (
	ErrInvalidMFACode    = errors.New("invalid_mfa_code")
	ErrNoActiveChallenge = errors.New("no_active_challenge")
	ErrMFANotEnabled     = errors.New("mfa_not_enabled")
	ErrMFAAlreadyEnabled = errors.New("mfa_already_enabled")
)

type MFAService struct {
	Store  store.Store
	Tokens *TokenService
	Issuer string // Issuer name for TOTP apps (e.g. "Meridian")
}

// VerifyChallenge completes the MFA step of a login. code is either a
// 6-digit TOTP code or a backup code depending on isBackupCode. Failures
// count against the challenge; once MaxMFAAttempts is reached the challenge
// is destroyed and the user must sign in again.
func (s *MFAService) VerifyChallenge(
	ctx context.Context,
	userID, code string,
	isBackupCode bool,
) (*domain.TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	challenge, err := s.Store.MFAChallenges().GetActiveChallengeByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoActiveChallenge
		}
		return nil, err
	}

	if challenge.Attempts >= MaxMFAAttempts {
		_ = s.Store.MFAChallenges().DeleteChallenge(ctx, challenge.ID)
		l.Warn("mfa challenge exceeded max attempts", "user_id", userID, "attempts", challenge.Attempts)
		return nil, ErrTooManyAttempts
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var verifyErr error
	if isBackupCode {
		verifyErr = s.consumeBackupCode(ctx, u.ID, code)
	} else {
		if u.MFASecret == nil || *u.MFASecret == "" {
			verifyErr = ErrMFANotEnabled
		} else if !totp.Validate(strings.TrimSpace(code), *u.MFASecret) {
			verifyErr = ErrInvalidMFACode
		}
	}

	if verifyErr != nil {
		updated, incErr := s.Store.MFAChallenges().IncrementChallengeAttempts(ctx, challenge.ID)
		if incErr != nil {
			l.Error("failed to increment mfa attempts", "error", incErr)
			return nil, ErrInvalidMFACode
		}
		if updated.Attempts >= MaxMFAAttempts {
			_ = s.Store.MFAChallenges().DeleteChallenge(ctx, challenge.ID)
			return nil, ErrTooManyAttempts
		}
		l.Info("mfa verification failed", "user_id", userID, "attempts", updated.Attempts)
		return nil, ErrInvalidMFACode
	}

	if err := s.Store.MFAChallenges().DeleteChallenge(ctx, challenge.ID); err != nil {
		return nil, err
	}

	return s.Tokens.Issue(ctx, u, "", []string{jwtx.AMRPassword, jwtx.AMRMFA}, now)
}

// consumeBackupCode checks a backup code and removes it on success; each
// code is single-use. Codes are stored case-insensitively uppercased.
func (s *MFAService) consumeBackupCode(ctx context.Context, userID, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ErrInvalidMFACode
	}

	hash := cryptox.FingerprintToken(code)
	valid, err := s.Store.BackupCodes().VerifyBackupCode(ctx, userID, hash)
	if err != nil {
		return err
	}
	if !valid {
		return ErrInvalidMFACode
	}
	return s.Store.BackupCodes().DeleteBackupCode(ctx, userID, hash)
}

// EnrollTOTP generates a TOTP secret for the user and returns it with the
// provisioning URL. MFA is not enabled until ActivateTOTP confirms a code.
func (s *MFAService) EnrollTOTP(ctx context.Context, userID string) (domain.MFAEnrollment, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.MFAEnrollment{}, err
	}
	if u.MFAEnabled != nil {
		return domain.MFAEnrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: u.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.MFAEnrollment{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	if err := s.Store.Users().UpdateMFASecret(ctx, userID, key.Secret()); err != nil {
		return domain.MFAEnrollment{}, fmt.Errorf("failed to store MFA secret: %w", err)
	}

	return domain.MFAEnrollment{
		Secret:  key.Secret(),
		QRCode:  key.URL(),
		Issuer:  s.Issuer,
		Account: u.Email,
	}, nil
}

// ActivateTOTP verifies a code against the enrolled secret and switches MFA
// on, generating single-use backup codes. The plaintext codes are returned
// exactly once.
func (s *MFAService) ActivateTOTP(ctx context.Context, userID, code string) ([]string, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.MFASecret == nil || *u.MFASecret == "" {
		return nil, ErrMFANotEnabled
	}
	if u.MFAEnabled != nil {
		return nil, ErrMFAAlreadyEnabled
	}

	if !totp.Validate(strings.TrimSpace(code), *u.MFASecret) {
		return nil, ErrInvalidMFACode
	}

	backupCodes := make([]string, backupCodeCount)
	for i := range backupCodeCount {
		c, err := cryptox.GenerateToken(backupCodeBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		backupCodes[i] = strings.ToUpper(c)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, c := range backupCodes {
			hash := cryptox.FingerprintToken(c)
			if err := tx.BackupCodes().CreateBackupCode(ctx, userID, hash); err != nil {
				return fmt.Errorf("failed to store backup code: %w", err)
			}
		}
		return tx.Users().EnableMFA(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	return backupCodes, nil
}

// DisableMFA turns MFA off for a user, clearing the secret and all backup
// codes.
func (s *MFAService) DisableMFA(ctx context.Context, userID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, userID); err != nil {
			return err
		}
		return tx.Users().DisableMFA(ctx, userID)
	})
}
