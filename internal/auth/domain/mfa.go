package domain

import "time"

// MFAChallenge is a pending second-factor challenge: the password checked
// out but the user still has to present a TOTP or backup code. The challenge
// is keyed by user so the verify call only needs the user id the login
// response surfaced.
type MFAChallenge struct {
	ID        string // ULID
	UserID    string
	Attempts  int // failed attempts so far (capped to block brute force)
	ExpiresAt time.Time
	CreatedAt time.Time
}

// MFAEnrollment is returned when TOTP enrollment starts. MFA is not active
// until the user verifies a code generated from this secret.
type MFAEnrollment struct {
	Secret  string // Base32 encoded secret for TOTP
	QRCode  string // otpauth:// URL for QR code generation
	Issuer  string
	Account string
}
