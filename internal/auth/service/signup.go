package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/meridianapps/meridian/internal/auth/domain"
	"github.com/meridianapps/meridian/internal/auth/store"
	"github.com/meridianapps/meridian/pkg/cryptox"
	"github.com/meridianapps/meridian/pkg/idx"
	"github.com/meridianapps/meridian/pkg/slogx"
)

var (
	ErrEmailTaken     = errors.New("email_taken")
	ErrSlugTaken      = errors.New("slug_taken")
	ErrInvalidSignup  = errors.New("invalid_signup")
	ErrInvalidPlan    = errors.New("invalid_plan")
	ErrWeakPassword   = errors.New("weak_password")
	ErrInvalidEmail   = errors.New("invalid_email")
	ErrInvalidSlug    = errors.New("invalid_slug")
)

// MinPasswordLength mirrors the client-side requirement checklist.
const MinPasswordLength = 8

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	slugRe  = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,48}[a-z0-9])?$`)
)

// SignupInput carries all three wizard stages; nothing is persisted until
// the whole input validates.
type SignupInput struct {
	FullName string
	Email    string
	Password string
	OrgName  string
	Slug     string
	Plan     string
}

// SignupResult identifies the created records.
type SignupResult struct {
	UserID         string
	OrganizationID string
	Slug           string
	Plan           string
}

type SignupService struct {
	Store        store.Store
	Verification *VerificationService
}

// Signup creates the organization and its first user atomically, then queues
// a verification email. A failure anywhere leaves nothing behind.
func (s *SignupService) Signup(ctx context.Context, in SignupInput) (*SignupResult, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.OrgName = strings.TrimSpace(in.OrgName)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Plan == "" {
		in.Plan = domain.DefaultPlan
	}

	switch {
	case in.FullName == "" || in.OrgName == "":
		return nil, ErrInvalidSignup
	case !emailRe.MatchString(in.Email):
		return nil, ErrInvalidEmail
	case len(in.Password) < MinPasswordLength:
		return nil, ErrWeakPassword
	case !slugRe.MatchString(in.Slug):
		return nil, ErrInvalidSlug
	case !domain.ValidPlan(in.Plan):
		return nil, ErrInvalidPlan
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	org := domain.Organization{
		ID:        idx.New().String(),
		Name:      in.OrgName,
		Slug:      in.Slug,
		Plan:      in.Plan,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := domain.User{
		ID:             idx.New().String(),
		Email:          in.Email,
		FullName:       in.FullName,
		PasswordHash:   hash,
		OrganizationID: org.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Organizations().GetOrganizationBySlug(ctx, in.Slug); err == nil {
			return ErrSlugTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if _, err := tx.Users().GetUserByEmail(ctx, in.Email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Organizations().CreateOrganization(ctx, org); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrSlugTaken
			}
			return err
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Best effort: signup already succeeded, the user can resend later.
	if err := s.Verification.Send(ctx, user); err != nil {
		l.Error("failed to send verification email", "error", err, "user_id", user.ID)
	}

	l.Info("workspace created", "organization_id", org.ID, "slug", org.Slug, "plan", org.Plan)

	return &SignupResult{
		UserID:         user.ID,
		OrganizationID: org.ID,
		Slug:           org.Slug,
		Plan:           org.Plan,
	}, nil
}
