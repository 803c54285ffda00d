package store

import (
	"context"
	"errors"
	"time"

	"github.com/meridianapps/meridian/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this. Sub-repositories keep concerns tidy and
// make transaction scoping explicit.
type Store interface {
	Users() Users
	Organizations() Organizations
	RefreshTokens() RefreshTokens
	MFAChallenges() MFAChallenges
	BackupCodes() BackupCodes
	ResetTokens() ResetTokens
	VerificationTokens() VerificationTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and
	// rolling back on error. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login, password reset, and resend flows.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// MarkEmailVerified stamps email_verified for a user.
	MarkEmailVerified(ctx context.Context, userID string) error

	// UpdateMFASecret sets the TOTP secret for a user (enrollment, pre-activation).
	UpdateMFASecret(ctx context.Context, userID string, secret string) error

	// EnableMFA stamps mfa_enabled for a user.
	EnableMFA(ctx context.Context, userID string) error

	// DisableMFA clears mfa_enabled and mfa_secret.
	DisableMFA(ctx context.Context, userID string) error

	// DeleteUser cascades to tokens and challenges (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type Organizations interface {
	GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error)

	// GetOrganizationBySlug is used to enforce slug uniqueness at signup.
	GetOrganizationBySlug(ctx context.Context, slug string) (domain.Organization, error)

	CreateOrganization(ctx context.Context, o domain.Organization) error

	UpdateOrganizationPlan(ctx context.Context, orgID string, plan string) error
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the record by token fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked=1, sets updated_at.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeAllUserRefreshTokens bulk revocation for a user (password reset).
	RevokeAllUserRefreshTokens(ctx context.Context, userID string) error

	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type MFAChallenges interface {
	CreateChallenge(ctx context.Context, c domain.MFAChallenge) error

	// GetActiveChallengeByUserID returns the newest unexpired challenge for
	// a user.
	GetActiveChallengeByUserID(ctx context.Context, userID string) (domain.MFAChallenge, error)

	// IncrementChallengeAttempts bumps the failed-attempt counter and
	// returns the updated record.
	IncrementChallengeAttempts(ctx context.Context, id string) (domain.MFAChallenge, error)

	DeleteChallenge(ctx context.Context, id string) error

	DeleteExpiredChallenges(ctx context.Context) error
}

type BackupCodes interface {
	CreateBackupCode(ctx context.Context, userID string, codeHash string) error

	// VerifyBackupCode checks if a backup code hash exists for a user.
	VerifyBackupCode(ctx context.Context, userID string, codeHash string) (bool, error)

	// DeleteBackupCode removes a specific backup code after use.
	DeleteBackupCode(ctx context.Context, userID string, codeHash string) error

	DeleteAllBackupCodes(ctx context.Context, userID string) error

	CountUserBackupCodes(ctx context.Context, userID string) (int, error)
}

type ResetTokens interface {
	CreateResetToken(ctx context.Context, t domain.PasswordResetToken) error

	// GetResetTokenByHash returns an unused token by fingerprint, expired
	// or not; the service distinguishes expiry from absence.
	GetResetTokenByHash(ctx context.Context, hash string) (domain.PasswordResetToken, error)

	MarkResetTokenUsed(ctx context.Context, id string) error

	DeleteExpiredResetTokens(ctx context.Context) error
}

type VerificationTokens interface {
	CreateVerificationToken(ctx context.Context, t domain.EmailVerificationToken) error

	GetVerificationTokenByHash(ctx context.Context, hash string) (domain.EmailVerificationToken, error)

	// LatestVerificationTokenTime returns CreatedAt of the newest token for
	// a user, for resend cooldown enforcement.
	LatestVerificationTokenTime(ctx context.Context, userID string) (time.Time, error)

	MarkVerificationTokenUsed(ctx context.Context, id string) error

	DeleteExpiredVerificationTokens(ctx context.Context) error
}
