package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/meridianapps/meridian/internal/auth/service"
	"github.com/meridianapps/meridian/pkg/authsdk"
	"github.com/meridianapps/meridian/pkg/httpx"
	"github.com/meridianapps/meridian/pkg/slogx"
)

// VerifyEmailHandler handles the email verification endpoints.
type VerifyEmailHandler struct {
	VerificationService *service.VerificationService
}

// HandleValidate handles GET /v1/verify-email/validate
//
//	@Summary		Check a verification token
//	@Description	Validates the token from the emailed link without consuming it.
//	@Description	An expired token fails with error code "token_expired".
//	@Tags			EmailVerification
//	@Produce		json
//	@Param			token	query		string						true	"verification token"
//	@Success		200		{object}	authsdk.TokenCheckResponse	"token is valid"
//	@Failure		401		{object}	authsdk.ErrorResponse		"invalid or expired token"
//	@Router			/v1/verify-email/validate [get].
func (h *VerifyEmailHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	u, err := h.VerificationService.Validate(ctx, r.URL.Query().Get("token"))
	if err != nil {
		writeVerifyTokenError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenCheckResponse{
		Valid: true,
		Email: maskEmail(u.Email),
	})
}

// HandleConfirm handles POST /v1/verify-email/confirm
//
//	@Summary		Confirm an email address
//	@Description	Consumes the verification token and stamps the account as verified.
//	@Tags			EmailVerification
//	@Accept			json
//	@Success		204	"email verified"
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid or expired token"
//	@Router			/v1/verify-email/confirm [post].
func (h *VerifyEmailHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.VerifyConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	if err := h.VerificationService.Confirm(ctx, req.Token); err != nil {
		writeVerifyTokenError(w, log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleResend handles POST /v1/verify-email/resend
//
//	@Summary		Resend the verification email
//	@Description	Sends a fresh verification link, at most once per minute per
//	@Description	account. Unknown emails answer 202 like known ones.
//	@Tags			EmailVerification
//	@Accept			json
//	@Success		202	"verification email queued"
//	@Failure		409	{object}	authsdk.ErrorResponse	"email already verified"
//	@Failure		429	{object}	authsdk.ErrorResponse	"resend cooldown active"
//	@Router			/v1/verify-email/resend [post].
func (h *VerifyEmailHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.ResendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.VerificationService.Resend(ctx, req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrResendCooldown):
			w.Header().Set("Retry-After", "60")
			authsdk.NewAPIError(http.StatusTooManyRequests, authsdk.ErrorCodeRateLimited,
				"please wait before requesting another email").WriteError(w)
		case errors.Is(err, service.ErrAlreadyVerified):
			authsdk.NewAPIError(http.StatusConflict, authsdk.ErrorCodeAlreadyExists,
				"this email is already verified").WriteError(w)
		default:
			log.Error("verification resend failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func writeVerifyTokenError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrExpiredVerifyToken):
		authsdk.NewAPIError(http.StatusUnauthorized, authsdk.ErrorCodeTokenExpired,
			"this verification link has expired").WriteError(w)
	case errors.Is(err, service.ErrInvalidVerifyToken):
		authsdk.ErrInvalidToken.WriteError(w)
	default:
		log.Error("email verification failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}
