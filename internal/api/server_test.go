// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/taibuivan/shopii/internal/admin"
	"github.com/taibuivan/shopii/internal/api"
	"github.com/taibuivan/shopii/internal/platform/config"
	"github.com/taibuivan/shopii/internal/platform/network"
	"github.com/taibuivan/shopii/internal/platform/sec"
	"github.com/taibuivan/shopii/internal/users/account"
	"github.com/taibuivan/shopii/internal/users/auth"
	"github.com/taibuivan/shopii/internal/users/auth/authtest"
)

func newServer(t *testing.T, deps api.HealthDependencies) (http.Handler, *sec.TokenService) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	policy, err := network.NewPolicy("")
	require.NoError(t, err)
	tokens, err := sec.NewTokenService("test-secret", "shopii.app")
	require.NoError(t, err)

	hash, err := sec.HashPassword("secret123")
	require.NoError(t, err)
	accounts := authtest.NewAccounts(
		&auth.Account{ID: "b1", Username: "buyer", Email: "buyer@shopii.test", PasswordHash: hash, Role: sec.RoleBuyer},
	)
	outbox := &authtest.Outbox{}

	authService := auth.NewService(accounts, authtest.NewResetTokens(), tokens, sec.NewTOTP("Shopii Admin"), outbox, auth.Options{
		TrustedDeviceTTL: 30 * 24 * time.Hour,
	})

	liveness, readiness := api.NewHealthHandlers(deps, logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := api.NewServer(ctx, api.Dependencies{
		Config:  &config.Config{ServerPort: "0", ClientURL: "http://localhost:3000"},
		Logger:  logger,
		Policy:  policy,
		Tracing: noop.NewTracerProvider(),
	}, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, false, 30*24*time.Hour),
		Account:   account.NewHandler(account.NewService(accounts, outbox, logger), authService),
		Admin:     admin.NewHandler(admin.NewService(accounts, nil, authService, outbox), authService, true),
	})

	return server.Handler(), tokens
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body), recorder.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		deps       api.HealthDependencies
		wantStatus int
		wantState  string
	}{
		{
			name:       "all healthy",
			deps:       api.HealthDependencies{CheckDatabase: func(context.Context) error { return nil }, CheckCache: func(context.Context) error { return nil }},
			wantStatus: http.StatusOK,
			wantState:  "ready",
		},
		{
			name:       "redis down",
			deps:       api.HealthDependencies{CheckDatabase: func(context.Context) error { return nil }, CheckCache: func(context.Context) error { return errors.New("connection refused") }},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newServer(t, tt.deps)

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantStatus, recorder.Code)
			data := decode(t, recorder)["data"].(map[string]any)
			assert.Equal(t, tt.wantState, data["status"])
			assert.Len(t, data["checks"], 2)

			recorder = httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, recorder.Code)
		})
	}
}

/*
TestRouting checks that the auth and account handlers share the /api/auth
prefix and that the admin surface is mounted behind its chain.
*/
func TestRouting(t *testing.T) {
	handler, tokens := newServer(t, api.HealthDependencies{})

	session, err := tokens.IssueSession("b1", sec.RoleBuyer, false)
	require.NoError(t, err)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		bearer     string
		wantStatus int
	}{
		{name: "login", method: http.MethodPost, path: "/api/auth/login", body: `{"email":"buyer@shopii.test","password":"secret123"}`, wantStatus: http.StatusOK},
		{name: "profile", method: http.MethodGet, path: "/api/auth/profile", bearer: session, wantStatus: http.StatusOK},
		{name: "profile anonymous", method: http.MethodGet, path: "/api/auth/profile", wantStatus: http.StatusUnauthorized},
		{name: "admin as buyer", method: http.MethodGet, path: "/api/admin/users", bearer: session, wantStatus: http.StatusForbidden},
		{name: "unknown route", method: http.MethodGet, path: "/api/nowhere", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			request.RemoteAddr = "127.0.0.1:40000"
			if tt.bearer != "" {
				request.Header.Set("Authorization", "Bearer "+tt.bearer)
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code, recorder.Body.String())
			assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
		})
	}
}
