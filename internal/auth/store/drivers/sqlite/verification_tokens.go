package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/meridianapps/meridian/internal/auth/domain"
)

type verificationTokensRepo struct {
	db dbtx
}

func (r *verificationTokensRepo) CreateVerificationToken(ctx context.Context, t domain.EmailVerificationToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO email_verification_tokens (id, user_id, token_hash, expires_at, used_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, mapOptionalTime(t.UsedAt), t.CreatedAt)
	return mapConstraint(err)
}

func (r *verificationTokensRepo) GetVerificationTokenByHash(ctx context.Context, hash string) (domain.EmailVerificationToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, used_at, created_at
		 FROM email_verification_tokens
		 WHERE token_hash = ? AND used_at IS NULL`, hash)

	var (
		t      domain.EmailVerificationToken
		usedAt sql.NullTime
	)
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &usedAt, &t.CreatedAt)
	if err != nil {
		return domain.EmailVerificationToken{}, mapNotFound(err)
	}
	t.UsedAt = mapNullTimePtr(usedAt)
	return t, nil
}

func (r *verificationTokensRepo) LatestVerificationTokenTime(ctx context.Context, userID string) (time.Time, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT created_at FROM email_verification_tokens
		 WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT 1`, userID)

	var created time.Time
	if err := row.Scan(&created); err != nil {
		return time.Time{}, mapNotFound(err)
	}
	return created, nil
}

func (r *verificationTokensRepo) MarkVerificationTokenUsed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE email_verification_tokens SET used_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	return err
}

func (r *verificationTokensRepo) DeleteExpiredVerificationTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM email_verification_tokens WHERE expires_at < ?`, time.Now().UTC())
	return err
}
