// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopii/internal/admin"
	"github.com/taibuivan/shopii/internal/platform/middleware"
	"github.com/taibuivan/shopii/internal/platform/network"
	"github.com/taibuivan/shopii/internal/platform/sec"
)

const externalIP = "203.0.113.9"

func newRouter(t *testing.T, f *fixture) http.Handler {
	t.Helper()
	policy, err := network.NewPolicy("")
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(middleware.ResolveOrigin(policy))
	router.Mount("/api/admin", admin.NewHandler(f.service, f.tokens, true).Routes())
	return router
}

func (f *fixture) session(t *testing.T, userID string, role sec.UserRole, verified bool) string {
	t.Helper()
	token, err := f.tokens.IssueSession(userID, role, verified)
	require.NoError(t, err)
	return token
}

type call struct {
	method string
	path   string
	body   any
	bearer string
	from   string
}

func (c call) do(t *testing.T, handler http.Handler) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var payload bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(c.body))
	}

	request := httptest.NewRequest(c.method, c.path, &payload)
	if c.bearer != "" {
		request.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	if c.from != "" {
		request.Header.Set("X-Forwarded-For", c.from)
	} else {
		request.RemoteAddr = "10.0.0.7:51000"
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body), recorder.Body.String())
	return recorder, body
}

/*
TestHTTP_AdminChain walks each link of the admin middleware chain.
*/
func TestHTTP_AdminChain(t *testing.T) {
	f := newFixture(t)
	router := newRouter(t, f)

	challenge, err := f.tokens.IssueChallenge("a1", sec.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name        string
		call        call
		wantStatus  int
		wantMessage string
	}{
		{
			name:       "anonymous",
			call:       call{method: http.MethodGet, path: "/api/admin/users"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "challenge token",
			call:       call{method: http.MethodGet, path: "/api/admin/users", bearer: challenge},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:        "buyer",
			call:        call{method: http.MethodGet, path: "/api/admin/users", bearer: f.session(t, "b1", sec.RoleBuyer, false)},
			wantStatus:  http.StatusForbidden,
			wantMessage: "Admin access required",
		},
		{
			name:        "monitor lacks manage:users",
			call:        call{method: http.MethodGet, path: "/api/admin/users", bearer: f.session(t, "m1", sec.RoleMonitor, true)},
			wantStatus:  http.StatusForbidden,
			wantMessage: "Role (monitor) does not have permission: manage:users",
		},
		{
			name:        "external without step-up",
			call:        call{method: http.MethodGet, path: "/api/admin/report", bearer: f.session(t, "m1", sec.RoleMonitor, false), from: externalIP},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: middleware.GuardMessage,
		},
		{
			name:       "external with step-up",
			call:       call{method: http.MethodGet, path: "/api/admin/report", bearer: f.session(t, "m1", sec.RoleMonitor, true), from: externalIP},
			wantStatus: http.StatusOK,
		},
		{
			name:       "internal without step-up",
			call:       call{method: http.MethodGet, path: "/api/admin/users", bearer: f.session(t, "p1", sec.RoleSupport, false)},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, body := tt.call.do(t, router)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, body["message"])
			}
		})
	}
}

func TestHTTP_GuardExposesIP(t *testing.T) {
	f := newFixture(t)
	router := newRouter(t, f)

	recorder, body := call{
		method: http.MethodGet,
		path:   "/api/admin/users",
		bearer: f.session(t, "a1", sec.RoleAdmin, false),
		from:   externalIP,
	}.do(t, router)

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, externalIP, body["meta"].(map[string]any)["ip"])
}

func TestHTTP_ListUsers(t *testing.T) {
	f := newFixture(t)
	router := newRouter(t, f)
	bearer := f.session(t, "a1", sec.RoleAdmin, false)

	recorder, body := call{method: http.MethodGet, path: "/api/admin/users?role=buyer&limit=1", bearer: bearer}.do(t, router)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Len(t, body["data"], 1)
	meta := body["meta"].(map[string]any)
	assert.EqualValues(t, 2, meta["total"])
	assert.EqualValues(t, 2, meta["totalPages"])

	recorder, _ = call{method: http.MethodGet, path: "/api/admin/users?locked=maybe", bearer: bearer}.do(t, router)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder, _ = call{method: http.MethodGet, path: "/api/admin/users?role=owner", bearer: bearer}.do(t, router)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHTTP_UserLifecycle(t *testing.T) {
	f := newFixture(t)
	router := newRouter(t, f)
	bearer := f.session(t, "a1", sec.RoleAdmin, false)

	recorder, body := call{
		method: http.MethodPost,
		path:   "/api/admin/create-admin-user",
		bearer: bearer,
		body:   map[string]string{"username": "fin", "email": "fin@shopii.test", "password": "longenough", "role": "finance"},
	}.do(t, router)
	require.Equal(t, http.StatusCreated, recorder.Code, body)
	created := body["data"].(map[string]any)
	assert.Equal(t, "finance", created["role"])
	assert.NotContains(t, created, "passwordHash")
	id := created["id"].(string)

	recorder, body = call{method: http.MethodGet, path: "/api/admin/users/" + id, bearer: bearer}.do(t, router)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "fin", body["data"].(map[string]any)["username"])

	recorder, body = call{method: http.MethodPut, path: "/api/admin/users/" + id, bearer: bearer, body: map[string]string{"action": "lock"}}.do(t, router)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, body["data"].(map[string]any)["locked"])

	recorder, body = call{method: http.MethodPut, path: "/api/admin/users/" + id + "/role", bearer: bearer, body: map[string]string{"role": "support"}}.do(t, router)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Role updated to support", body["message"])
	assert.Nil(t, body["token"])

	recorder, _ = call{method: http.MethodDelete, path: "/api/admin/users/a1", bearer: bearer}.do(t, router)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder, _ = call{method: http.MethodDelete, path: "/api/admin/users/" + id, bearer: bearer}.do(t, router)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, _ = call{method: http.MethodGet, path: "/api/admin/users/" + id, bearer: bearer}.do(t, router)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHTTP_Report(t *testing.T) {
	f := newFixture(t)
	router := newRouter(t, f)

	recorder, body := call{method: http.MethodGet, path: "/api/admin/report", bearer: f.session(t, "m1", sec.RoleMonitor, false)}.do(t, router)
	require.Equal(t, http.StatusOK, recorder.Code)

	data := body["data"].(map[string]any)
	assert.EqualValues(t, 6, data["total"])
	assert.EqualValues(t, 1, data["locked"])
	assert.EqualValues(t, 1, data["byRole"].(map[string]any)["seller"])
}
