// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopii/internal/platform/apperr"
	"github.com/taibuivan/shopii/internal/platform/notify"
	"github.com/taibuivan/shopii/internal/platform/sec"
	"github.com/taibuivan/shopii/internal/users/account"
	"github.com/taibuivan/shopii/internal/users/auth"
	"github.com/taibuivan/shopii/internal/users/auth/authtest"
	"github.com/taibuivan/shopii/pkg/pointer"
)

const password = "secret123"

func newService(t *testing.T) (*account.Service, *authtest.Accounts, *authtest.Outbox) {
	t.Helper()
	hash, err := sec.HashPassword(password)
	require.NoError(t, err)

	accounts := authtest.NewAccounts(
		&auth.Account{ID: "b1", Username: "buyer", Email: "buyer@shopii.test", PasswordHash: hash, Role: sec.RoleBuyer, Fullname: "Old Name"},
		&auth.Account{ID: "s1", Username: "seller", Email: "seller@shopii.test", PasswordHash: hash, Role: sec.RoleSeller},
	)
	outbox := &authtest.Outbox{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return account.NewService(accounts, outbox, logger), accounts, outbox
}

func TestUpdateProfile(t *testing.T) {
	tests := []struct {
		name      string
		input     account.UpdateProfileInput
		wantCode  string
		wantEmail string
		wantName  string
	}{
		{name: "fullname only", input: account.UpdateProfileInput{Fullname: pointer.To("New Name")}, wantEmail: "buyer@shopii.test", wantName: "New Name"},
		{name: "email normalised", input: account.UpdateProfileInput{Email: pointer.To("  Fresh@Shopii.TEST ")}, wantEmail: "fresh@shopii.test", wantName: "Old Name"},
		{name: "same email is fine", input: account.UpdateProfileInput{Email: pointer.To("buyer@shopii.test")}, wantEmail: "buyer@shopii.test", wantName: "Old Name"},
		{name: "empty values ignored", input: account.UpdateProfileInput{Email: pointer.To(""), Fullname: pointer.To("")}, wantEmail: "buyer@shopii.test", wantName: "Old Name"},
		{name: "malformed email", input: account.UpdateProfileInput{Email: pointer.To("nope")}, wantCode: apperr.CodeValidation},
		{name: "email taken", input: account.UpdateProfileInput{Email: pointer.To("seller@shopii.test")}, wantCode: apperr.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, accounts, _ := newService(t)

			updated, err := service.UpdateProfile(context.Background(), "b1", tt.input)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperr.IsCode(err, tt.wantCode), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, updated.Email)

			stored, err := accounts.FindByID(context.Background(), "b1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, stored.Email)
			assert.Equal(t, tt.wantName, stored.Fullname)
		})
	}
}

func TestUpdatePassword(t *testing.T) {
	tests := []struct {
		name     string
		input    account.UpdatePasswordInput
		wantCode string
	}{
		{name: "success", input: account.UpdatePasswordInput{CurrentPassword: password, NewPassword: "another-one"}},
		{name: "wrong current", input: account.UpdatePasswordInput{CurrentPassword: "wrong-one", NewPassword: "another-one"}, wantCode: apperr.CodeValidation},
		{name: "too short", input: account.UpdatePasswordInput{CurrentPassword: password, NewPassword: "12345"}, wantCode: apperr.CodeValidation},
		{name: "missing current", input: account.UpdatePasswordInput{NewPassword: "another-one"}, wantCode: apperr.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, accounts, outbox := newService(t)

			err := service.UpdatePassword(context.Background(), "b1", tt.input)

			stored, lookupErr := accounts.FindByID(context.Background(), "b1")
			require.NoError(t, lookupErr)

			if tt.wantCode != "" {
				assert.True(t, apperr.IsCode(err, tt.wantCode))
				assert.True(t, sec.CheckPasswordHash(password, stored.PasswordHash))
				assert.Empty(t, outbox.Messages())
				return
			}
			require.NoError(t, err)
			assert.True(t, sec.CheckPasswordHash(tt.input.NewPassword, stored.PasswordHash))
			assert.Equal(t, []notify.Kind{notify.KindPasswordChanged}, outbox.Kinds())
		})
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	service, _, _ := newService(t)

	_, err := service.GetProfile(context.Background(), "ghost")
	assert.True(t, apperr.IsNotFound(err))
}

// # HTTP

func newRouter(t *testing.T) (http.Handler, *sec.TokenService, *authtest.Accounts) {
	t.Helper()
	service, accounts, _ := newService(t)
	tokens, err := sec.NewTokenService("test-secret", "shopii.app")
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Route("/api/auth", account.NewHandler(service, tokens).Attach)
	return router, tokens, accounts
}

func doJSON(t *testing.T, router http.Handler, method, path, bearer string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	request := httptest.NewRequest(method, path, &payload)
	if bearer != "" {
		request.Header.Set("Authorization", "Bearer "+bearer)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return recorder, decoded
}

func TestHTTP_Profile(t *testing.T) {
	router, tokens, accounts := newRouter(t)

	session, err := tokens.IssueSession("b1", sec.RoleBuyer, false)
	require.NoError(t, err)
	challenge, err := tokens.IssueChallenge("b1", sec.RoleBuyer)
	require.NoError(t, err)

	recorder, body := doJSON(t, router, http.MethodGet, "/api/auth/profile", session, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "buyer", data["username"])
	assert.NotContains(t, data, "passwordHash")
	assert.NotContains(t, data, "twoFASecret")

	recorder, _ = doJSON(t, router, http.MethodGet, "/api/auth/profile", challenge, nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder, _ = doJSON(t, router, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder, body = doJSON(t, router, http.MethodPut, "/api/auth/profile", session, map[string]string{"avatarURL": "https://cdn.shopii.test/a.png"})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, account.MsgProfileUpdated, body["message"])

	recorder, body = doJSON(t, router, http.MethodPut, "/api/auth/password", session,
		map[string]string{"currentPassword": "wrong-one", "newPassword": "another-one"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, false, body["success"])

	accounts.SeedDevice("b1", auth.TrustedDevice{TokenHash: "h", UserAgent: "Safari", ExpiresAt: time.Now().Add(time.Hour)})
	accounts.SeedDevice("b1", auth.TrustedDevice{TokenHash: "old", UserAgent: "IE", ExpiresAt: time.Now().Add(-time.Hour)})

	recorder, body = doJSON(t, router, http.MethodGet, "/api/auth/profile/devices", session, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	devices := body["data"].([]any)
	require.Len(t, devices, 1)
	assert.Equal(t, "Safari", devices[0].(map[string]any)["userAgent"])
	assert.NotContains(t, devices[0], "tokenHash")
}
