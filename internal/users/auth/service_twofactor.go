// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/shopii/internal/platform/apperr"
	"github.com/taibuivan/shopii/internal/platform/ctxutil"
	"github.com/taibuivan/shopii/internal/platform/sec"
)

// # Second Factor Enrollment

/*
SetupAdmin2FA creates a fresh TOTP secret for the calling admin.

Description: Accepts a full session or a setup token, never a challenge
token. Only role admin may enrol. Running it again replaces the previous
secret, invalidating the old authenticator entry.

Parameters:
  - ctx: context.Context
  - claims: *sec.AuthClaims (caller)

Returns:
  - *sec.Enrollment: Secret, otpauth URI and QR data URL
  - err: Forbidden, InvalidTokenState or storage failures
*/
func (service *Service) SetupAdmin2FA(ctx context.Context, claims *sec.AuthClaims) (*sec.Enrollment, error) {
	if claims.TwoFARequired {
		return nil, apperr.InvalidTokenState("Challenge token cannot be used for 2FA setup")
	}

	account, err := service.accountRepository.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Forbidden(MsgAdminOnlySetup)
		}
		return nil, fmt.Errorf("auth_service_setup_lookup_failed: %w", err)
	}

	// Enrollment is deliberately narrower than the admin tier.
	if account.Role != sec.RoleAdmin {
		return nil, apperr.Forbidden(MsgAdminOnlySetup)
	}

	enrollment, err := service.authenticator.Enroll(account.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_totp_enroll_failed: %w", err)
	}

	if err := service.accountRepository.EnableTwoFA(ctx, account.ID, enrollment.Secret); err != nil {
		return nil, fmt.Errorf("auth_service_totp_persist_failed: %w", err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "twofa_enrolled",
		slog.String("user_id", account.ID),
		slog.Bool("replaced", account.TwoFAEnabled),
	)

	return enrollment, nil
}

// # Second Factor Verification

// VerifyInput carries a challenge redemption.
type VerifyInput struct {
	// ChallengeToken is the bearer token issued by Login.
	ChallengeToken string
	Code           string
	TrustDevice    bool
	UserAgent      string
}

// VerifyResult is a completed step-up.
type VerifyResult struct {
	Token string

	// DeviceToken is the raw cookie value; empty unless the device was trusted.
	DeviceToken     string
	DeviceExpiresAt time.Time
}

/*
VerifyAdmin2FA redeems a challenge token with a TOTP code.

Description: On success a verified session is issued. With TrustDevice, a
random device token is generated, its hash stored, and the raw value
returned for the cookie.

Parameters:
  - ctx: context.Context
  - input: VerifyInput

Returns:
  - *VerifyResult: Session token and optional device token
  - err: InvalidTokenState (400), ValidationError (400), Unauthorized (401) or storage failures
*/
func (service *Service) VerifyAdmin2FA(ctx context.Context, input VerifyInput) (*VerifyResult, error) {
	if input.ChallengeToken == "" {
		return nil, apperr.InvalidTokenState("Missing temporary token")
	}

	claims, err := service.tokens.VerifyToken(input.ChallengeToken)
	if err != nil {
		return nil, apperr.InvalidTokenState("Invalid or expired temporary token")
	}

	if !claims.TwoFARequired {
		return nil, apperr.InvalidTokenState("Token is not a 2FA token")
	}

	account, err := service.accountRepository.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.ValidationError(MsgTwoFANotSetUp)
		}
		return nil, fmt.Errorf("auth_service_verify_lookup_failed: %w", err)
	}

	if !account.TwoFAEnabled || account.TwoFASecret == "" {
		return nil, apperr.ValidationError(MsgTwoFANotSetUp)
	}

	if !service.authenticator.Validate(input.Code, account.TwoFASecret) {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "twofa_code_rejected", slog.String("user_id", account.ID))
		return nil, apperr.Unauthorized(MsgInvalidCode)
	}

	token, err := service.tokens.IssueSession(account.ID, account.Role, true)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	result := &VerifyResult{Token: token}
	if !input.TrustDevice {
		return result, nil
	}

	rawDevice, err := sec.GenerateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("auth_service_device_token_failed: %w", err)
	}

	now := service.now()
	device := TrustedDevice{
		TokenHash: sec.HashToken(rawDevice),
		UserAgent: input.UserAgent,
		ExpiresAt: now.Add(service.options.TrustedDeviceTTL),
	}

	if err := service.accountRepository.AddTrustedDevice(ctx, account.ID, device, now); err != nil {
		return nil, fmt.Errorf("auth_service_trust_device_failed: %w", err)
	}

	result.DeviceToken = rawDevice
	result.DeviceExpiresAt = device.ExpiresAt
	return result, nil
}
