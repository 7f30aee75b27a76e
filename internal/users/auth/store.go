// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/taibuivan/shopii/internal/platform/sec"
)

// # Account Data Access

// AccountRepository defines the data access contract for accounts and their
// trusted devices. Lookups return apperr.NotFound when no row matches.
type AccountRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - ctx: context.Context
		  - id: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByID(ctx context.Context, id string) (*Account, error)

	/*
		FindByEmail returns the account with the given (normalised) email.

		Parameters:
		  - ctx: context.Context
		  - email: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByEmail(ctx context.Context, email string) (*Account, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - ctx: context.Context
		  - username: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByUsername(ctx context.Context, username string) (*Account, error)

	/*
		Create persists a brand-new account.

		Returns:
		  - error: apperr.Conflict on duplicate username/email, or database failures
	*/
	Create(ctx context.Context, account *Account) error

	/*
		Update persists username, email, fullname, avatar and lock state.

		Returns:
		  - error: apperr.NotFound, apperr.Conflict or database failures
	*/
	Update(ctx context.Context, account *Account) error

	// UpdatePassword replaces only the credential hash.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error

	// UpdateRole replaces only the role.
	UpdateRole(ctx context.Context, id string, role sec.UserRole) error

	// EnableTwoFA stores a TOTP secret and marks second factor as enabled.
	// An existing secret is overwritten.
	EnableTwoFA(ctx context.Context, id string, secret string) error

	// ListTrustedDevices returns the devices of an account that are still active at now.
	ListTrustedDevices(ctx context.Context, accountID string, now time.Time) ([]TrustedDevice, error)

	/*
		AddTrustedDevice prunes the account's expired devices and appends device.

		Description: Both steps run as one unit against a locked account, so
		concurrent verifications for the same account never drop each
		other's entries.

		Parameters:
		  - ctx: context.Context
		  - accountID: string
		  - device: TrustedDevice
		  - now: time.Time (expiry reference for pruning)

		Returns:
		  - error: apperr.NotFound if the account vanished, or database failures
	*/
	AddTrustedDevice(ctx context.Context, accountID string, device TrustedDevice, now time.Time) error
}

// # Reset Token Data Access

// ResetTokenRepository stores short-lived password reset tokens.
type ResetTokenRepository interface {

	// Set stores a reset token hash mapped to an account ID for ttl.
	Set(ctx context.Context, tokenHash string, accountID string, ttl time.Duration) error

	/*
		Consume atomically reads and deletes a token hash.

		Returns:
		  - string: The account ID the token was issued for
		  - error: apperr.NotFound if absent, expired or already used
	*/
	Consume(ctx context.Context, tokenHash string) (string, error)
}
