// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"time"

	"github.com/taibuivan/shopii/internal/users/auth"
)

// # Data Access

// Store is the subset of [auth.AccountRepository] the profile service needs.
type Store interface {
	FindByID(ctx context.Context, id string) (*auth.Account, error)
	FindByEmail(ctx context.Context, email string) (*auth.Account, error)
	Update(ctx context.Context, account *auth.Account) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	ListTrustedDevices(ctx context.Context, accountID string, now time.Time) ([]auth.TrustedDevice, error)
}

// # Inputs

// UpdateProfileInput defines the mutable subset of profile fields. Nil means unchanged.
type UpdateProfileInput struct {
	Fullname  *string
	Email     *string
	AvatarURL *string
}

// UpdatePasswordInput re-proves the current credential before replacing it.
type UpdatePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// # Response Messages

const (
	MsgProfileUpdated  = "Profile updated successfully"
	MsgPasswordUpdated = "Password updated successfully"
	MsgWrongPassword   = "Current password is incorrect"
)

const maxAvatarURLLength = 2048
