package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralSigner("key-001")
	require.NoError(t, err)
	require.True(t, signer.Ready())

	claims := NewAccessClaims(
		"user-1", "sess-1",
		[]string{AMRPassword, AMRMFA},
		time.Minute,
		"meridian-auth",
		"ada@example.com", "Ada Lovelace",
		time.Now(),
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	v := NewVerifier(signer.PublicKey(), "meridian-auth")
	got, err := v.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "sess-1", got.SID)
	require.Equal(t, []string{AMRPassword, AMRMFA}, got.AMR)
	require.Equal(t, "ada@example.com", got.Email)
	require.NotEmpty(t, got.ID, "jti should be populated")
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralSigner("key-001")
	require.NoError(t, err)
	other, err := NewEphemeralSigner("key-002")
	require.NoError(t, err)

	claims := NewAccessClaims("u", "s", nil, time.Minute, "iss", "", "", time.Now())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = NewVerifier(other.PublicKey(), "iss").Verify(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralSigner("key-001")
	require.NoError(t, err)

	claims := NewAccessClaims("u", "s", nil, time.Minute, "iss", "", "", time.Now().Add(-time.Hour))
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = NewVerifier(signer.PublicKey(), "iss").Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsIssuerMismatch(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralSigner("key-001")
	require.NoError(t, err)

	claims := NewAccessClaims("u", "s", nil, time.Minute, "someone-else", "", "", time.Now())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = NewVerifier(signer.PublicKey(), "meridian-auth").Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralSigner("key-001")
	require.NoError(t, err)

	_, err = NewVerifier(signer.PublicKey(), "").Verify("not.a.token")
	require.ErrorIs(t, err, ErrMalformed)
}
