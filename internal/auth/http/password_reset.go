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

// PasswordResetHandler handles the password reset endpoints.
type PasswordResetHandler struct {
	ResetService *service.PasswordResetService
}

// HandleRequest handles POST /v1/password-reset/request
//
//	@Summary		Request a password reset email
//	@Description	Always answers 202 for well-formed requests, whether or not the
//	@Description	email belongs to an account.
//	@Tags			PasswordReset
//	@Accept			json
//	@Success		202	"reset email queued if the account exists"
//	@Failure		400	{object}	authsdk.ErrorResponse	"malformed request"
//	@Router			/v1/password-reset/request [post].
func (h *PasswordResetHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.ResetRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.ResetService.Request(ctx, req.Email); err != nil {
		log.Error("password reset request failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// HandleValidate handles GET /v1/password-reset/validate
//
//	@Summary		Check a reset token
//	@Description	Validates the token from the emailed link without consuming it, so
//	@Description	the UI can choose between the new-password form and an error state.
//	@Description	An expired token fails with error code "token_expired".
//	@Tags			PasswordReset
//	@Produce		json
//	@Param			token	query		string						true	"reset token"
//	@Success		200		{object}	authsdk.TokenCheckResponse	"token is valid"
//	@Failure		401		{object}	authsdk.ErrorResponse		"invalid or expired token"
//	@Router			/v1/password-reset/validate [get].
func (h *PasswordResetHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	u, err := h.ResetService.Validate(ctx, r.URL.Query().Get("token"))
	if err != nil {
		writeResetTokenError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenCheckResponse{
		Valid: true,
		Email: maskEmail(u.Email),
	})
}

// HandleConfirm handles POST /v1/password-reset/confirm
//
//	@Summary		Set a new password
//	@Description	Consumes the reset token, updates the password, and revokes every
//	@Description	live session for the account.
//	@Tags			PasswordReset
//	@Accept			json
//	@Success		204	"password updated"
//	@Failure		400	{object}	authsdk.ErrorResponse	"weak password"
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid or expired token"
//	@Router			/v1/password-reset/confirm [post].
func (h *PasswordResetHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.ResetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	if err := h.ResetService.Confirm(ctx, req.Token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrWeakPassword) {
			authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
				"password does not meet the requirements").WriteError(w)
			return
		}
		writeResetTokenError(w, log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeResetTokenError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrExpiredResetToken):
		authsdk.NewAPIError(http.StatusUnauthorized, authsdk.ErrorCodeTokenExpired,
			"this reset link has expired").WriteError(w)
	case errors.Is(err, service.ErrInvalidResetToken):
		authsdk.ErrInvalidToken.WriteError(w)
	default:
		log.Error("password reset failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// maskEmail hides most of the local part, e.g. "ada@example.com" becomes
// "a***@example.com".
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return email
	}
	return email[:1] + "***" + email[at:]
}
