// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/shopii/internal/platform/constants"
	"github.com/taibuivan/shopii/internal/platform/middleware"
	requestutil "github.com/taibuivan/shopii/internal/platform/request"
	"github.com/taibuivan/shopii/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// Registration, login with the admin step-up gate, 2FA enrollment and
// verification, role changes and password reset callbacks.
type Handler struct {
	authService      *Service
	secureCookies    bool
	trustedDeviceTTL time.Duration
}

// NewHandler constructs a new [Handler]. secureCookies marks the trusted-device
// cookie Secure and should be true in production.
func NewHandler(service *Service, secureCookies bool, trustedDeviceTTL time.Duration) *Handler {
	return &Handler{
		authService:      service,
		secureCookies:    secureCookies,
		trustedDeviceTTL: trustedDeviceTTL,
	}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register           : Creates a buyer or seller account.
//   - POST /login              : Checks credentials and runs the step-up gate.
//   - POST /forgot-password    : Mails a reset link.
//   - POST /reset-password     : Redeems a reset token.
//   - POST /admin/2fa/verify   : Redeems a challenge token (reads the bearer itself).
//   - POST /admin/2fa/setup    : Enrols TOTP (full or setup token).
//   - PUT  /change-role        : Changes the caller's role, or anyone's for admins.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)
	router.Post("/admin/2fa/verify", handler.verifyAdmin2FA)

	// Step-up tokens accepted
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(handler.authService))
		r.Use(middleware.RequireAuth)
		r.Post("/admin/2fa/setup", handler.setupAdmin2FA)
	})

	// Full session required
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(handler.authService))
		r.Use(middleware.RequireSession)
		r.Put("/change-role", handler.changeRole)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Fullname string `json:"fullname"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Token       string `json:"token"`
	TrustDevice bool   `json:"trustDevice"`
}

type changeRoleRequest struct {
	Role   string `json:"role"`
	UserID string `json:"userId"`
}

/*
Register handles the creation of a new account.

POST /api/auth/register

Response:
  - 201: {success, message, user}
  - 400: ValidationError
  - 409: Conflict (email or username taken)
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Fullname: input.Fullname,
		Role:     input.Role,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer, http.StatusCreated, respond.Fields{
		"message": MsgRegistered,
		"user":    account,
	})
}

/*
Login authenticates credentials and applies the admin step-up gate.

POST /api/auth/login

Response:
  - 200: {success, token, user} for a full session
  - 200: {success, requires2FASetup, token} when TOTP must be enrolled
  - 200: {success, requires2FA, token} when a code is required
  - 400: InvalidCredentials
  - 403: Account locked
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var deviceToken string
	if cookie, err := request.Cookie(constants.TrustedDeviceCookieName); err == nil {
		deviceToken = cookie.Value
	}

	result, err := handler.authService.Login(request.Context(), LoginInput{
		Email:       input.Email,
		Password:    input.Password,
		Origin:      requestutil.Origin(request),
		DeviceToken: deviceToken,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	switch result.State {
	case StepUpSetupRequired:
		respond.Success(writer, http.StatusOK, respond.Fields{"requires2FASetup": true, "token": result.Token})
	case StepUpChallengeIssued:
		respond.Success(writer, http.StatusOK, respond.Fields{"requires2FA": true, "token": result.Token})
	default:
		respond.Success(writer, http.StatusOK, respond.Fields{
			"token": result.Token,
			"user":  result.Account.Summary(),
		})
	}
}

// forgotPassword handles POST /api/auth/forgot-password.
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, MsgResetRequested)
}

// resetPassword handles POST /api/auth/reset-password.
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, MsgPasswordReset)
}

/*
SetupAdmin2FA enrols a TOTP authenticator for the calling admin.

POST /api/auth/admin/2fa/setup

Response:
  - 200: {success, otpauth, qr}
  - 403: Caller is not role admin
*/
func (handler *Handler) setupAdmin2FA(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	enrollment, err := handler.authService.SetupAdmin2FA(request.Context(), claims)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer, http.StatusOK, respond.Fields{
		"otpauth": enrollment.URI,
		"qr":      enrollment.QRCode,
	})
}

/*
VerifyAdmin2FA redeems the challenge token sent as bearer with a 6-digit code.

POST /api/auth/admin/2fa/verify

Description: The bearer is read here rather than by the authentication
middleware, so that missing or garbled tokens are a 400 and not a 401.

Response:
  - 200: {success, token} and, with trustDevice, the trusted-device cookie
  - 400: InvalidTokenState or 2FA not set up
  - 401: Invalid code
*/
func (handler *Handler) verifyAdmin2FA(writer http.ResponseWriter, request *http.Request) {
	var input verifyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.VerifyAdmin2FA(request.Context(), VerifyInput{
		ChallengeToken: requestutil.BearerToken(request),
		Code:           input.Token,
		TrustDevice:    input.TrustDevice,
		UserAgent:      request.UserAgent(),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if result.DeviceToken != "" {
		http.SetCookie(writer, &http.Cookie{
			Name:     constants.TrustedDeviceCookieName,
			Value:    result.DeviceToken,
			Path:     constants.TrustedDeviceCookiePath,
			Expires:  result.DeviceExpiresAt,
			MaxAge:   int(handler.trustedDeviceTTL.Seconds()),
			Secure:   handler.secureCookies,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	respond.Success(writer, http.StatusOK, respond.Fields{"token": result.Token})
}

/*
ChangeRole updates the role of the caller or, for admin-tier callers, of userId.

PUT /api/auth/change-role

Response:
  - 200: {success, message, token, user} (token is null unless the caller changed itself)
  - 400: Invalid role
  - 403: Non-admin targeting another account
  - 404: Unknown target
*/
func (handler *Handler) changeRole(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changeRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.ChangeRole(request.Context(), claims, ChangeRoleInput{
		TargetID: input.UserID,
		Role:     input.Role,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	WriteRoleChanged(writer, result)
}

// WriteRoleChanged renders a [ChangeRoleResult]; the admin controllers reuse it.
func WriteRoleChanged(writer http.ResponseWriter, result *ChangeRoleResult) {
	var token any
	if result.Token != "" {
		token = result.Token
	}

	respond.Success(writer, http.StatusOK, respond.Fields{
		"message": fmt.Sprintf("Role updated to %s", result.Account.Role),
		"token":   token,
		"user":    result.Account.Summary(),
	})
}
