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

// SignupHandler handles POST /v1/signup.
type SignupHandler struct {
	SignupService *service.SignupService
}

// ServeHTTP godoc
//
//	@Summary		Create a workspace and its first user
//	@Description	Takes the complete signup payload (account, workspace, plan) in one
//	@Description	call. Creation is atomic; a duplicate email or slug fails the whole
//	@Description	request and persists nothing.
//	@Tags			Signup
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SignupRequest	true	"signup payload"
//	@Success		201		{object}	authsdk.SignupResponse	"created ids"
//	@Failure		400		{object}	authsdk.ErrorResponse	"validation failure"
//	@Failure		409		{object}	authsdk.ErrorResponse	"email or workspace URL taken"
//	@Router			/v1/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	res, err := h.SignupService.Signup(ctx, service.SignupInput{
		FullName: req.Account.FullName,
		Email:    req.Account.Email,
		Password: req.Account.Password,
		OrgName:  req.Organization.Name,
		Slug:     req.Organization.Slug,
		Plan:     req.Plan,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			authsdk.NewAPIError(http.StatusConflict, authsdk.ErrorCodeAlreadyExists,
				"an account with this email already exists").WriteError(w)
		case errors.Is(err, service.ErrSlugTaken):
			authsdk.NewAPIError(http.StatusConflict, authsdk.ErrorCodeAlreadyExists,
				"this workspace URL is already taken").WriteError(w)
		case errors.Is(err, service.ErrInvalidSignup),
			errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrWeakPassword),
			errors.Is(err, service.ErrInvalidSlug),
			errors.Is(err, service.ErrInvalidPlan):
			authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
				err.Error()).WriteError(w)
		default:
			log.Error("signup failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.SignupResponse{
		UserID:         res.UserID,
		OrganizationID: res.OrganizationID,
		Slug:           res.Slug,
		Plan:           res.Plan,
	})
}
