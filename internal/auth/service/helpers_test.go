package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/meridianapps/meridian/internal/auth/domain"
	"github.com/meridianapps/meridian/internal/auth/store"
	"github.com/meridianapps/meridian/internal/auth/store/drivers/sqlite"
	"github.com/meridianapps/meridian/pkg/cryptox"
	"github.com/meridianapps/meridian/pkg/idx"
	"github.com/meridianapps/meridian/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTokenService(t *testing.T, st store.Store) *TokenService {
	t.Helper()

	signer, err := jwtx.NewEphemeralSigner("test-key")
	require.NoError(t, err)

	return &TokenService{
		Signer:     signer,
		Store:      st,
		Issuer:     "test-issuer",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
}

// seedUser creates an organization and a user with the given password.
func seedUser(t *testing.T, st store.Store, email, password string) domain.User {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	org := domain.Organization{
		ID:        idx.New().String(),
		Name:      "Test Org",
		Slug:      "test-org-" + idx.New().String(),
		Plan:      domain.PlanFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Organizations().CreateOrganization(ctx, org))

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	u := domain.User{
		ID:             idx.New().String(),
		Email:          email,
		FullName:       "Test User",
		PasswordHash:   hash,
		OrganizationID: org.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, st.Users().CreateUser(ctx, u))
	return u
}
