package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meridianapps/meridian/internal/auth/service"
	"github.com/meridianapps/meridian/pkg/authsdk"
	"github.com/meridianapps/meridian/pkg/slogx"
)

// LoginHandler handles POST /v1/login.
type LoginHandler struct {
	LoginService *service.LoginService
}

// ServeHTTP godoc
//
//	@Summary		Sign in with email and password
//	@Description	Exchanges email/password for a token pair. Accounts with a second
//	@Description	factor enrolled get 403 with the X-2FA-Required and X-User-ID
//	@Description	headers; finish via POST /v1/mfa/verify.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"credentials"
//	@Success		200		{object}	authsdk.TokenResponse	"access and refresh tokens"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid credentials"
//	@Failure		403		{object}	authsdk.ErrorResponse	"second factor required"
//	@Router			/v1/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	pair, err := h.LoginService.Login(ctx, req.Email, req.Password)
	if err != nil {
		var mfaErr *service.MFARequiredError
		switch {
		case errors.As(err, &mfaErr):
			mfaErr.WriteError(w)
		case errors.Is(err, service.ErrInvalidCredentials):
			authsdk.ErrInvalidCredentials.WriteError(w)
		default:
			log.Error("login failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	writeTokenPair(w, pair)
}
