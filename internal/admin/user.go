// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package admin implements the back-office user management surface.

Every route is mounted behind the admin chain: a full session, an admin-tier
role, the route's permission from the registry, and the network access guard.

# Core Responsibility

  - Directory: filtered, paginated listing of marketplace accounts (admins hidden).
  - Moderation: edit, lock/unlock and delete accounts, with best-effort notices.
  - Staffing: create back-office accounts and change roles.
  - Reporting: account counts per role, locked and new accounts.
*/
package admin

import (
	"time"

	"github.com/taibuivan/shopii/internal/platform/sec"
)

// NewAccountWindow is the look-back used for the "new accounts" figures.
const NewAccountWindow = 14 * 24 * time.Hour

// Lock actions accepted by the update endpoint.
const (
	ActionLock   = "lock"
	ActionUnlock = "unlock"
)

// Filter narrows the user directory. Zero values mean "any".
type Filter struct {
	Role   sec.UserRole
	Locked *bool
	Search string
	// CreatedAfter keeps only accounts created at or after this instant.
	CreatedAfter time.Time
}

// Report summarises the account base.
type Report struct {
	Total       int            `json:"total"`
	ByRole      map[string]int `json:"byRole"`
	Locked      int            `json:"locked"`
	NewAccounts int            `json:"newAccounts"`
	Since       time.Time      `json:"since"`
}
