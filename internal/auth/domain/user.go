package domain

import "time"

type User struct {
	ID             string
	Email          string
	FullName       string
	PasswordHash   string // argon2 encoded
	OrganizationID string // Foreign key to organizations table
	MFAEnabled     *time.Time
	MFASecret      *string // TOTP secret (nullable, base32 encoded)
	EmailVerified  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
