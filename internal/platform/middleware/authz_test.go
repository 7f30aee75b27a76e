// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopii/internal/platform/middleware"
	"github.com/taibuivan/shopii/internal/platform/network"
	"github.com/taibuivan/shopii/internal/platform/sec"
)

// fakeVerifier maps raw bearer strings to pre-built claims.
type fakeVerifier map[string]*sec.AuthClaims

func (f fakeVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if claims, ok := f[token]; ok {
		return claims, nil
	}
	return nil, errors.New("bad token")
}

var tokens = fakeVerifier{
	"admin-verified":   {UserID: "a1", Role: sec.RoleAdmin, TwoFAVerified: true},
	"admin-unverified": {UserID: "a1", Role: sec.RoleAdmin},
	"admin-challenge":  {UserID: "a1", Role: sec.RoleAdmin, TwoFARequired: true},
	"admin-setup":      {UserID: "a1", Role: sec.RoleAdmin, TwoFASetup: true},
	"monitor-verified": {UserID: "m1", Role: sec.RoleMonitor, TwoFAVerified: true},
	"support-verified": {UserID: "s1", Role: sec.RoleSupport, TwoFAVerified: true},
	"seller":           {UserID: "u1", Role: sec.RoleSeller},
}

// adminRouter mirrors the production admin chain for a single manage:users route.
func adminRouter(t *testing.T, exposeIP bool) http.Handler {
	t.Helper()
	policy, err := network.NewPolicy("")
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(middleware.ResolveOrigin(policy))
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(tokens))
		r.Use(middleware.RequireSession)
		r.Use(middleware.RequireAdminTier)
		r.With(
			middleware.RequirePermission(sec.PermManageUsers),
			middleware.AdminAccessGuard(exposeIP),
		).Get("/api/admin/users", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return router
}

type result struct {
	status int
	body   map[string]any
}

func call(t *testing.T, handler http.Handler, token, forwardedFor string) result {
	t.Helper()
	request := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	request.RemoteAddr = "127.0.0.1:5555"
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	if forwardedFor != "" {
		request.Header.Set("X-Forwarded-For", forwardedFor)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	var body map[string]any
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	}
	return result{status: recorder.Code, body: body}
}

/*
TestAdminChain_StatusMatrix walks the composed chain through each rejection point.
*/
func TestAdminChain_StatusMatrix(t *testing.T) {
	router := adminRouter(t, true)

	tests := []struct {
		name   string
		token  string
		ip     string
		status int
	}{
		{"anonymous", "", "203.0.113.9", http.StatusUnauthorized},
		{"garbage_token", "nope", "203.0.113.9", http.StatusUnauthorized},
		{"challenge_token", "admin-challenge", "10.0.0.2", http.StatusUnauthorized},
		{"setup_token", "admin-setup", "10.0.0.2", http.StatusUnauthorized},
		{"seller_not_admin_tier", "seller", "10.0.0.2", http.StatusForbidden},
		{"monitor_missing_permission", "monitor-verified", "10.0.0.2", http.StatusForbidden},
		{"admin_external_unverified", "admin-unverified", "203.0.113.9", http.StatusUnauthorized},
		{"admin_internal_unverified", "admin-unverified", "192.168.1.4", http.StatusOK},
		{"admin_external_verified", "admin-verified", "203.0.113.9", http.StatusOK},
		{"support_external_verified", "support-verified", "203.0.113.9", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, call(t, router, tt.token, tt.ip).status)
		})
	}
}

/*
TestRequirePermission_MessageNamesPermission checks the 403 wording.
*/
func TestRequirePermission_MessageNamesPermission(t *testing.T) {
	res := call(t, adminRouter(t, true), "monitor-verified", "10.0.0.2")

	require.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "Role (monitor) does not have permission: manage:users", res.body["message"])
	assert.Equal(t, false, res.body["success"])
}

/*
TestAdminAccessGuard_ReportsResolvedIP includes the client address outside production.
*/
func TestAdminAccessGuard_ReportsResolvedIP(t *testing.T) {
	res := call(t, adminRouter(t, true), "admin-unverified", "203.0.113.9")

	require.Equal(t, http.StatusUnauthorized, res.status)
	assert.Equal(t, middleware.GuardMessage, res.body["message"])
	assert.Equal(t, map[string]any{"ip": "203.0.113.9"}, res.body["meta"])
}

/*
TestAdminAccessGuard_HidesIPInProduction omits the diagnostic address.
*/
func TestAdminAccessGuard_HidesIPInProduction(t *testing.T) {
	res := call(t, adminRouter(t, false), "admin-unverified", "203.0.113.9")

	require.Equal(t, http.StatusUnauthorized, res.status)
	assert.NotContains(t, res.body, "meta")
}

/*
TestAdminAccessGuard_FallsBackToPeerAddress classifies requests without ResolveOrigin as external.
*/
func TestAdminAccessGuard_FallsBackToPeerAddress(t *testing.T) {
	handler := middleware.AdminAccessGuard(true)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	res := call(t, handler, "", "")
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.Equal(t, map[string]any{"ip": "127.0.0.1"}, res.body["meta"])
}

/*
TestRequireAuth_AcceptsStepUpTokens lets setup tokens reach enrollment endpoints.
*/
func TestRequireAuth_AcceptsStepUpTokens(t *testing.T) {
	handler := middleware.Authenticate(tokens)(middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	assert.Equal(t, http.StatusNoContent, call(t, handler, "admin-setup", "").status)
	assert.Equal(t, http.StatusUnauthorized, call(t, handler, "", "").status)
}
