// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/shopii/internal/platform/middleware"
	requestutil "github.com/taibuivan/shopii/internal/platform/request"
	"github.com/taibuivan/shopii/internal/platform/respond"
)

// Handler implements the HTTP layer for self-service account management.
//
// # Security
//
// Every endpoint requires a full session; challenge and setup tokens are refused.
type Handler struct {
	accountService *Service
	verifier       middleware.TokenVerifier
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service, verifier middleware.TokenVerifier) *Handler {
	return &Handler{accountService: service, verifier: verifier}
}

// Attach registers the profile endpoints on an existing router, so they can
// share the /api/auth prefix with the authentication handler.
//
// # Endpoints
//   - GET /profile         : Private profile of the caller.
//   - PUT /profile         : Partial update (fullname, email, avatarURL).
//   - PUT /password        : Change password.
//   - GET /profile/devices : Active trusted devices.
func (handler *Handler) Attach(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(handler.verifier))
		r.Use(middleware.RequireSession)

		r.Get("/profile", handler.getProfile)
		r.Put("/profile", handler.updateProfile)
		r.Put("/password", handler.updatePassword)
		r.Get("/profile/devices", handler.listDevices)
	})
}

/*
GET /api/auth/profile.

Response:
  - 200: {success, data: Account}
  - 401: Authentication required
  - 404: Account vanished
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.GetProfile(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

type updateProfileRequest struct {
	Fullname  *string `json:"fullname"`
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatarURL"`
}

/*
PUT /api/auth/profile.

Response:
  - 200: {success, message, data: Account}
  - 400: Validation failed
  - 409: Email already in use
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.UpdateProfile(request.Context(), claims.UserID, UpdateProfileInput{
		Fullname:  input.Fullname,
		Email:     input.Email,
		AvatarURL: input.AvatarURL,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer, http.StatusOK, respond.Fields{
		"message": MsgProfileUpdated,
		"data":    account,
	})
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// updatePassword handles PUT /api/auth/password.
func (handler *Handler) updatePassword(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updatePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.accountService.UpdatePassword(request.Context(), claims.UserID, UpdatePasswordInput{
		CurrentPassword: input.CurrentPassword,
		NewPassword:     input.NewPassword,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, MsgPasswordUpdated)
}

// listDevices handles GET /api/auth/profile/devices.
func (handler *Handler) listDevices(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	devices, err := handler.accountService.ListTrustedDevices(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, devices)
}
