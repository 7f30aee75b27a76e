// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"fmt"
	"net/http"

	"github.com/taibuivan/shopii/internal/platform/apperr"
	"github.com/taibuivan/shopii/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/shopii/internal/platform/request"
	"github.com/taibuivan/shopii/internal/platform/respond"
	"github.com/taibuivan/shopii/internal/platform/sec"
)

// GuardMessage is returned when an admin route is reached from outside the
// internal network without a verified second factor.
const GuardMessage = "Outside internal network. 2FA is required to access admin."

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// Defining TokenVerifier here decouples the middleware from the token service
// implementation, allowing tests to inject fakes.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Inject [*sec.AuthClaims] into the request context for downstream use.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if request.Header.Get("Authorization") == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			tokenStr := requestutil.BearerToken(request)
			if tokenStr == "" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyToken(tokenStr)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that carry no token at all.
//
// Step-up tokens pass this check; use it only on endpoints that accept them
// (2FA enrollment). Everything else mounts [RequireSession].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireSession blocks anonymous requests and restricted step-up tokens.
//
// A challenge token (twoFARequired) or setup token (twoFASetup) proves only
// the password; it grants no resource access.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetAuthUser(request.Context())

		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		if claims.IsStepUp() {
			respond.Error(writer, request, apperr.Unauthorized("Two-factor verification is not complete"))
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// RequireAdminTier blocks sessions whose role is not back-office staff.
//
// Must be registered AFTER [RequireSession].
func RequireAdminTier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetAuthUser(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		if !claims.Role.IsAdminTier() {
			respond.Error(writer, request, apperr.Forbidden("Admin access required"))
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// RequirePermission blocks sessions whose role lacks perm in the registry.
// The 403 message names both the role and the missing permission.
func RequirePermission(perm sec.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !sec.HasPermission(claims.Role, perm) {
				respond.Error(writer, request, apperr.Forbidden(
					fmt.Sprintf("Role (%s) does not have permission: %s", claims.Role, perm),
				))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// AdminAccessGuard admits a request when it originates from the internal
// network or its session carries twoFAVerified.
//
// Rejections are 401 with [GuardMessage]. When exposeIP is set, the resolved
// client address is included under meta.ip to help operators maintain the
// allow-list.
func AdminAccessGuard(exposeIP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			origin := requestutil.Origin(request)
			if origin.Internal {
				next.ServeHTTP(writer, request)
				return
			}

			claims := ctxutil.GetAuthUser(request.Context())
			if claims != nil && claims.TwoFAVerified {
				next.ServeHTTP(writer, request)
				return
			}

			denied := apperr.Unauthorized(GuardMessage)
			if exposeIP {
				denied = denied.WithMeta("ip", origin.IP)
			}
			respond.Error(writer, request, denied)
		})
	}
}
