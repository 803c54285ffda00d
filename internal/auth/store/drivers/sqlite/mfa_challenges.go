package sqlite

import (
	"context"
	"time"

	"github.com/meridianapps/meridian/internal/auth/domain"
)

type mfaChallengesRepo struct {
	db dbtx
}

func (r *mfaChallengesRepo) CreateChallenge(ctx context.Context, c domain.MFAChallenge) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO mfa_challenges (id, user_id, attempts, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Attempts, c.ExpiresAt, c.CreatedAt)
	return err
}

func (r *mfaChallengesRepo) GetActiveChallengeByUserID(ctx context.Context, userID string) (domain.MFAChallenge, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, attempts, expires_at, created_at
		 FROM mfa_challenges
		 WHERE user_id = ? AND expires_at > ?
		 ORDER BY created_at DESC
		 LIMIT 1`, userID, time.Now().UTC())

	var c domain.MFAChallenge
	err := row.Scan(&c.ID, &c.UserID, &c.Attempts, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		return domain.MFAChallenge{}, mapNotFound(err)
	}
	return c, nil
}

func (r *mfaChallengesRepo) IncrementChallengeAttempts(ctx context.Context, id string) (domain.MFAChallenge, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE mfa_challenges SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return domain.MFAChallenge{}, err
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, attempts, expires_at, created_at FROM mfa_challenges WHERE id = ?`, id)

	var c domain.MFAChallenge
	if err := row.Scan(&c.ID, &c.UserID, &c.Attempts, &c.ExpiresAt, &c.CreatedAt); err != nil {
		return domain.MFAChallenge{}, mapNotFound(err)
	}
	return c, nil
}

func (r *mfaChallengesRepo) DeleteChallenge(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM mfa_challenges WHERE id = ?`, id)
	return err
}

func (r *mfaChallengesRepo) DeleteExpiredChallenges(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM mfa_challenges WHERE expires_at < ?`, time.Now().UTC())
	return err
}
