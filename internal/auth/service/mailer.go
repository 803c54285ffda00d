package service

import (
	"context"
	"log/slog"

	"github.com/meridianapps/meridian/pkg/slogx"
)

// Mailer delivers transactional email. The token in each call is the opaque
// value the recipient clicks through with; implementations must never log it
// beyond debug environments.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
	SendEmailVerification(ctx context.Context, email, token string) error
}

// LogMailer writes mail to the structured log instead of sending it. Used in
// development and tests.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	slogx.FromContext(ctx).Info("mail: password reset",
		slog.String("to", email),
		slog.String("token", token),
	)
	return nil
}

func (LogMailer) SendEmailVerification(ctx context.Context, email, token string) error {
	slogx.FromContext(ctx).Info("mail: email verification",
		slog.String("to", email),
		slog.String("token", token),
	)
	return nil
}
