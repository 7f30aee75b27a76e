// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/shopii/internal/platform/apperr"
	"github.com/taibuivan/shopii/internal/platform/middleware"
	requestutil "github.com/taibuivan/shopii/internal/platform/request"
	"github.com/taibuivan/shopii/internal/platform/respond"
	"github.com/taibuivan/shopii/internal/platform/sec"
	"github.com/taibuivan/shopii/internal/users/auth"
	"github.com/taibuivan/shopii/pkg/pagination"
	"github.com/taibuivan/shopii/pkg/pointer"
)

// Handler implements the back-office HTTP endpoints.
type Handler struct {
	adminService *Service
	verifier     middleware.TokenVerifier
	exposeIP     bool
}

// NewHandler constructs a new admin [Handler]. exposeIP adds the resolved
// client address to access-guard rejections and should be false in production.
func NewHandler(service *Service, verifier middleware.TokenVerifier, exposeIP bool) *Handler {
	return &Handler{adminService: service, verifier: verifier, exposeIP: exposeIP}
}

// Routes returns a [chi.Router] with every back-office route behind the admin chain.
//
// # Endpoints
//   - GET    /users                 : Directory (manage:users).
//   - GET    /users/{userId}        : Single account (manage:users).
//   - PUT    /users/{userId}        : Edit, lock or unlock (manage:users).
//   - DELETE /users/{userId}        : Remove (manage:users).
//   - PUT    /users/{userId}/role   : Change role (manage:users).
//   - POST   /create-admin-user     : New staff account (manage:users).
//   - GET    /report                : Account figures (view:reports).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.Authenticate(handler.verifier))
	router.Use(middleware.RequireSession)
	router.Use(middleware.RequireAdminTier)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(sec.PermManageUsers))
		r.Use(middleware.AdminAccessGuard(handler.exposeIP))

		r.Get("/users", handler.listUsers)
		r.Get("/users/{userId}", handler.getUser)
		r.Put("/users/{userId}", handler.updateUser)
		r.Delete("/users/{userId}", handler.deleteUser)
		r.Put("/users/{userId}/role", handler.changeRole)
		r.Post("/create-admin-user", handler.createStaffUser)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(sec.PermViewReports))
		r.Use(middleware.AdminAccessGuard(handler.exposeIP))

		r.Get("/report", handler.report)
	})

	return router
}

// # Directory

/*
GET /api/admin/users.

Query:
  - page, limit: pagination
  - role: buyer|seller|monitor|support|finance
  - locked: true|false
  - search: username/email fragment or exact id
  - newUsers: true keeps accounts from the last 14 days

Response:
  - 200: {success, data: []Account, meta}
  - 400: Invalid filter
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	filter, err := filterFromRequest(request, handler.adminService.now())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page := pagination.FromRequest(request)
	accounts, total, err := handler.adminService.ListUsers(request.Context(), filter, page.Limit, page.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, accounts, pagination.NewMeta(page.Page, page.Limit, total))
}

func filterFromRequest(request *http.Request, now time.Time) (Filter, error) {
	query := request.URL.Query()
	filter := Filter{Search: query.Get("search")}

	if raw := query.Get("role"); raw != "" {
		role, ok := sec.ParseRole(raw)
		if !ok {
			return Filter{}, apperr.ValidationError("Invalid role filter", apperr.FieldError{Field: "role", Message: "Unknown role"})
		}
		filter.Role = role
	}

	if raw := query.Get("locked"); raw != "" {
		locked, err := strconv.ParseBool(raw)
		if err != nil {
			return Filter{}, apperr.ValidationError("Invalid locked filter", apperr.FieldError{Field: "locked", Message: "Must be true or false"})
		}
		filter.Locked = pointer.To(locked)
	}

	if newUsers, _ := strconv.ParseBool(query.Get("newUsers")); newUsers {
		filter.CreatedAfter = now.Add(-NewAccountWindow)
	}

	return filter, nil
}

// getUser handles GET /api/admin/users/{userId}.
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	account, err := handler.adminService.GetUser(request.Context(), requestutil.Param(request, "userId"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// # Moderation

type updateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Action   string `json:"action"`
}

/*
PUT /api/admin/users/{userId}.

Request: {username?, email?, action?: "lock"|"unlock"}

Response:
  - 200: {success, data: Account}
  - 400: Validation failed
  - 404: Unknown account
  - 409: Username or email taken
*/
func (handler *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	var input updateUserRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.adminService.UpdateUser(request.Context(), requestutil.Param(request, "userId"), UpdateUserInput{
		Username: input.Username,
		Email:    input.Email,
		Action:   input.Action,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// deleteUser handles DELETE /api/admin/users/{userId}.
func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.adminService.DeleteUser(request.Context(), claims, requestutil.Param(request, "userId")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "User deleted")
}

// # Staffing

type changeRoleRequest struct {
	Role string `json:"role"`
}

// changeRole handles PUT /api/admin/users/{userId}/role.
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

	result, err := handler.adminService.ChangeUserRole(request.Context(), claims, requestutil.Param(request, "userId"), input.Role)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	auth.WriteRoleChanged(writer, result)
}

type createStaffRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Fullname string `json:"fullname"`
	Role     string `json:"role"`
}

/*
POST /api/admin/create-admin-user.

Response:
  - 201: {success, data: {id, username, email, role}}
  - 400: Validation failed or role is not admin-tier
  - 409: Username or email taken
*/
func (handler *Handler) createStaffUser(writer http.ResponseWriter, request *http.Request) {
	var input createStaffRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.adminService.CreateStaffUser(request.Context(), CreateStaffInput{
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

	respond.Created(writer, map[string]string{
		"id":       account.ID,
		"username": account.Username,
		"email":    account.Email,
		"role":     account.Role.String(),
	})
}

// # Reporting

// report handles GET /api/admin/report.
func (handler *Handler) report(writer http.ResponseWriter, request *http.Request) {
	report, err := handler.adminService.Report(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, report)
}
