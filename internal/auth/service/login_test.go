package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoginIssuesTokens(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tokens := newTokenService(t, st)
	svc := &LoginService{Store: st, Tokens: tokens}

	u := seedUser(t, st, "ada@example.com", "correct horse battery")

	pair, err := svc.Login(ctx, "ada@example.com", "correct horse battery")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)

	// The refresh token round-trips through rotation.
	rotated, err := tokens.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The old refresh token is dead after rotation.
	_, err = tokens.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)

	_ = u
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &LoginService{Store: st, Tokens: newTokenService(t, st)}

	seedUser(t, st, "ada@example.com", "correct horse battery")

	_, err := svc.Login(ctx, "ada@example.com", "wrong password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "whatever passes")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginBranchesToMFA(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &LoginService{Store: st, Tokens: newTokenService(t, st)}

	u := seedUser(t, st, "ada@example.com", "correct horse battery")
	require.NoError(t, st.Users().UpdateMFASecret(ctx, u.ID, "JBSWY3DPEHPK3PXP"))
	require.NoError(t, st.Users().EnableMFA(ctx, u.ID))

	_, err := svc.Login(ctx, "ada@example.com", "correct horse battery")

	var mfaErr *MFARequiredError
	require.True(t, errors.As(err, &mfaErr))
	require.Equal(t, u.ID, mfaErr.UserID)

	// A challenge now exists for the user.
	challenge, err := st.MFAChallenges().GetActiveChallengeByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 0, challenge.Attempts)
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tokens := newTokenService(t, st)
	svc := &LoginService{Store: st, Tokens: tokens}

	seedUser(t, st, "ada@example.com", "correct horse battery")

	pair, err := svc.Login(ctx, "ada@example.com", "correct horse battery")
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(ctx, pair.RefreshToken))
	require.NoError(t, tokens.Revoke(ctx, pair.RefreshToken))
	require.NoError(t, tokens.Revoke(ctx, "never-issued"))

	_, err = tokens.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}
