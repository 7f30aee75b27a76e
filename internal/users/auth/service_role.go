// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/shopii/internal/platform/apperr"
	"github.com/taibuivan/shopii/internal/platform/ctxutil"
	"github.com/taibuivan/shopii/internal/platform/sec"
)

// # Role Management

// ChangeRoleInput names the new role and, optionally, a target other than the caller.
type ChangeRoleInput struct {
	TargetID string
	Role     string
}

// ChangeRoleResult is the updated account plus a fresh token when the caller changed itself.
type ChangeRoleResult struct {
	Account *Account
	Token   string
}

/*
ChangeRole assigns a new role to the caller or, for admin-tier callers, to anyone.

Description: Admin-tier callers may assign any role to any account. Everyone
else may only switch their own account between buyer and seller. When the
caller's own role changes, a new session token carrying it is issued.

Parameters:
  - ctx: context.Context
  - caller: *sec.AuthClaims
  - input: ChangeRoleInput

Returns:
  - *ChangeRoleResult: Updated account and optional token
  - err: ValidationError, Forbidden, NotFound or storage failures
*/
func (service *Service) ChangeRole(ctx context.Context, caller *sec.AuthClaims, input ChangeRoleInput) (*ChangeRoleResult, error) {
	if input.Role == "" {
		return nil, apperr.ValidationError("Role is required")
	}

	targetID := input.TargetID
	if targetID == "" {
		targetID = caller.UserID
	}
	self := targetID == caller.UserID

	role, ok := sec.ParseRole(input.Role)

	if caller.Role.IsAdminTier() {
		if !ok {
			return nil, apperr.ValidationError("Invalid role")
		}
	} else {
		if !self {
			return nil, apperr.Forbidden("Only admins can change another user's role")
		}
		if !ok || !role.IsSelfAssignable() {
			return nil, apperr.ValidationError("Invalid role. Only buyer and seller can be selected")
		}
	}

	account, err := service.accountRepository.FindByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_change_role_lookup_failed: %w", err)
	}

	if err := service.accountRepository.UpdateRole(ctx, account.ID, role); err != nil {
		return nil, fmt.Errorf("auth_service_change_role_failed: %w", err)
	}

	previous := account.Role
	account.Role = role

	result := &ChangeRoleResult{Account: account}
	if self {
		token, err := service.tokens.IssueSession(account.ID, role, caller.TwoFAVerified)
		if err != nil {
			return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
		}
		result.Token = token
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "role_changed",
		slog.String("actor_id", caller.UserID),
		slog.String("user_id", account.ID),
		slog.String("from", previous.String()),
		slog.String("to", role.String()),
	)

	return result, nil
}
