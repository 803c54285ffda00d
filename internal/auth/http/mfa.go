package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meridianapps/meridian/internal/auth/service"
	"github.com/meridianapps/meridian/pkg/authsdk"
	"github.com/meridianapps/meridian/pkg/httpx"
	"github.com/meridianapps/meridian/pkg/slogx"
)

// MFAHandler handles the MFA verification step of a login.
type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleVerify handles POST /v1/mfa/verify
//
//	@Summary		Complete the second factor of a login
//	@Description	Verifies a 6-digit TOTP code or a backup code against the pending
//	@Description	challenge created by the password step. After too many failures the
//	@Description	challenge is destroyed and the user must sign in again.
//	@Tags			MFA
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.MFAVerifyRequest	true	"user id and code"
//	@Success		200		{object}	authsdk.TokenResponse		"access and refresh tokens"
//	@Failure		401		{object}	authsdk.ErrorResponse		"invalid code, too many attempts, or no active challenge"
//	@Router			/v1/mfa/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.MFAVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}
	if req.UserID == "" || req.Code == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.MFAService.VerifyChallenge(ctx, req.UserID, req.Code, req.IsBackupCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTooManyAttempts):
			authsdk.ErrTooManyAttempts.WriteError(w)
		case errors.Is(err, service.ErrInvalidMFACode),
			errors.Is(err, service.ErrNoActiveChallenge),
			errors.Is(err, service.ErrMFANotEnabled):
			authsdk.NewAPIError(http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials,
				"verification code is incorrect").WriteError(w)
		default:
			log.Error("mfa verification failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	writeTokenPair(w, pair)
}

// HandleEnroll handles POST /v1/mfa/totp/enroll
//
//	@Summary		Enroll in TOTP MFA
//	@Description	Generates a TOTP secret for the authenticated user and returns it
//	@Description	with the provisioning URL. MFA stays off until the first code is
//	@Description	confirmed via /v1/mfa/totp/activate.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TOTPEnrollResponse	"TOTP secret and provisioning URL"
//	@Failure		400	{object}	authsdk.ErrorResponse		"MFA already enabled"
//	@Failure		401	{object}	authsdk.ErrorResponse		"invalid or missing access token"
//	@Router			/v1/mfa/totp/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || userID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	enrollment, err := h.MFAService.EnrollTOTP(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrMFAAlreadyEnabled) {
			authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
				"MFA is already enabled for this account").WriteError(w)
			return
		}
		log.Error("totp enrollment failed", "user_id", userID, "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TOTPEnrollResponse{
		Secret:  enrollment.Secret,
		QRCode:  enrollment.QRCode,
		Issuer:  enrollment.Issuer,
		Account: enrollment.Account,
	})
}

// HandleActivate handles POST /v1/mfa/totp/activate
//
//	@Summary		Activate TOTP MFA
//	@Description	Confirms a code from the enrolled authenticator and switches MFA on.
//	@Description	Returns the backup codes, shown exactly once.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TOTPActivateRequest	true	"TOTP code"
//	@Success		200		{object}	authsdk.BackupCodesResponse	"single-use backup codes"
//	@Failure		400		{object}	authsdk.ErrorResponse		"invalid code or not enrolled"
//	@Failure		401		{object}	authsdk.ErrorResponse		"invalid or missing access token"
//	@Router			/v1/mfa/totp/activate [post].
func (h *MFAHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || userID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req authsdk.TOTPActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	backupCodes, err := h.MFAService.ActivateTOTP(ctx, userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMFACode),
			errors.Is(err, service.ErrMFANotEnabled),
			errors.Is(err, service.ErrMFAAlreadyEnabled):
			authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
				err.Error()).WriteError(w)
		default:
			log.Error("totp activation failed", "user_id", userID, "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.BackupCodesResponse{BackupCodes: backupCodes})
}

// HandleDisable handles DELETE /v1/mfa
//
//	@Summary		Disable MFA
//	@Description	Turns MFA off for the authenticated user, clearing the secret and
//	@Description	all backup codes.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Success		204	"MFA disabled"
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid or missing access token"
//	@Router			/v1/mfa [delete].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || userID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.MFAService.DisableMFA(ctx, userID); err != nil {
		log.Error("mfa disable failed", "user_id", userID, "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
