// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package account implements self-service profile management: reading and
// editing one's own profile, changing the password and listing the devices
// trusted for admin step-up.
package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/shopii/internal/platform/apperr"
	"github.com/taibuivan/shopii/internal/platform/notify"
	"github.com/taibuivan/shopii/internal/platform/sec"
	"github.com/taibuivan/shopii/internal/platform/validate"
	"github.com/taibuivan/shopii/internal/users/auth"
	"github.com/taibuivan/shopii/pkg/normalize"
	"github.com/taibuivan/shopii/pkg/pointer"
)

// # Service Layer

// Service orchestrates business logic for the caller's own account.
type Service struct {
	store     Store
	publisher notify.Publisher
	logger    *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(store Store, publisher notify.Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, publisher: publisher, logger: logger}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of a user.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - *auth.Account: The hydrated profile (secrets are never serialised)
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(ctx context.Context, userID string) (*auth.Account, error) {
	account, err := service.store.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return account, nil
}

/*
UpdateProfile applies a partial set of changes to the caller's profile.

Description: A changed email is re-validated and must not belong to any
other account. Empty strings leave a field unchanged.

Parameters:
  - ctx: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.Account: The updated profile
  - error: ValidationError, Conflict or storage failures
*/
func (service *Service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*auth.Account, error) {
	account, err := service.store.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	validator := &validate.Validator{}

	if email := normalize.Email(pointer.Val(input.Email)); email != "" {
		validator.Email(auth.FieldEmail, email).MaxLen(auth.FieldEmail, email, auth.MaxEmailLength)
		if validator.HasErrors() {
			return nil, validator.Err()
		}

		if email != account.Email {
			existing, err := service.store.FindByEmail(ctx, email)
			switch {
			case err == nil && existing.ID != account.ID:
				return nil, apperr.Conflict("Email already in use")
			case err != nil && !apperr.IsNotFound(err):
				return nil, fmt.Errorf("account_service_email_lookup_failed: %w", err)
			}
			account.Email = email
		}
	}

	if fullname := normalize.Text(pointer.Val(input.Fullname)); fullname != "" {
		validator.MaxLen(auth.FieldFullname, fullname, auth.MaxFullnameLength)
		account.Fullname = fullname
	}

	if avatarURL := pointer.Val(input.AvatarURL); avatarURL != "" {
		validator.MaxLen("avatarURL", avatarURL, maxAvatarURLLength)
		account.AvatarURL = avatarURL
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.store.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "user_profile_updated", slog.String("user_id", userID))

	return account, nil
}

/*
UpdatePassword replaces the caller's password after re-verifying the current one.

Parameters:
  - ctx: context.Context
  - userID: string
  - input: UpdatePasswordInput

Returns:
  - error: ValidationError (missing, too short or wrong current password) or storage failures
*/
func (service *Service) UpdatePassword(ctx context.Context, userID string, input UpdatePasswordInput) error {
	validator := &validate.Validator{}
	validator.
		Required(auth.FieldCurrentPassword, input.CurrentPassword).
		Required(auth.FieldNewPassword, input.NewPassword).
		Password(auth.FieldNewPassword, input.NewPassword)

	if err := validator.Err(); err != nil {
		return err
	}

	account, err := service.store.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("account_service_password_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(input.CurrentPassword, account.PasswordHash) {
		return validate.RequiredError(auth.FieldCurrentPassword, MsgWrongPassword)
	}

	hashedPassword, err := sec.HashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("account_service_hash_failed: %w", err)
	}

	if err := service.store.UpdatePassword(ctx, account.ID, hashedPassword); err != nil {
		return fmt.Errorf("account_service_update_password_failed: %w", err)
	}

	notify.Deliver(ctx, service.publisher, notify.Message{
		Kind:    notify.KindPasswordChanged,
		To:      account.Email,
		Subject: "Your Shopii password was changed",
	})

	service.logger.InfoContext(ctx, "user_password_updated", slog.String("user_id", userID))

	return nil
}

// # Device Security

// ListTrustedDevices returns the caller's devices that still skip the 2FA challenge.
func (service *Service) ListTrustedDevices(ctx context.Context, userID string) ([]auth.TrustedDevice, error) {
	devices, err := service.store.ListTrustedDevices(ctx, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("account_service_list_devices_failed: %w", err)
	}
	if devices == nil {
		devices = []auth.TrustedDevice{}
	}
	return devices, nil
}
