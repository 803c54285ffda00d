package domain

import "time"

// EmailVerificationToken proves ownership of a signup email address.
// Re-sending issues a fresh token; CreatedAt of the newest token drives the
// server-side resend cooldown.
type EmailVerificationToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
