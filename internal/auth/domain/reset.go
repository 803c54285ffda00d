package domain

import "time"

// PasswordResetToken is a single-use credential mailed to a user who asked
// to reset their password. Only the fingerprint is stored.
type PasswordResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
