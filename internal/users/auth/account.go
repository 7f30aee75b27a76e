// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"time"

	"github.com/taibuivan/shopii/internal/platform/sec"
)

// # Domain Entities

// Account is a marketplace identity: a buyer, a seller or a staff member.
//
// The credential hash and the TOTP secret never leave the server.
type Account struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Fullname     string       `json:"fullname"`
	AvatarURL    string       `json:"avatarURL"`
	Role         sec.UserRole `json:"role"`
	Locked       bool         `json:"locked"`
	TwoFAEnabled bool         `json:"twoFAEnabled"`
	TwoFASecret  string       `json:"-"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Summary returns the short identity block embedded in auth responses.
func (account *Account) Summary() Summary {
	return Summary{ID: account.ID, Username: account.Username, Role: account.Role}
}

// Summary is the {id, username, role} triple returned by login and role changes.
type Summary struct {
	ID       string       `json:"id"`
	Username string       `json:"username"`
	Role     sec.UserRole `json:"role"`
}

// TrustedDevice remembers a browser that completed a second-factor check.
// Only the SHA-256 hash of the cookie value is stored.
type TrustedDevice struct {
	TokenHash string    `json:"-"`
	UserAgent string    `json:"userAgent"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Active reports whether the device is still inside its trust window.
func (device TrustedDevice) Active(now time.Time) bool {
	return device.ExpiresAt.After(now)
}

// # Field Names

const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldFullname        = "fullname"
	FieldRole            = "role"
	FieldToken           = "token"
	FieldCurrentPassword = "currentPassword"
	FieldNewPassword     = "newPassword"
)
