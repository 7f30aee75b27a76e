// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "strings"

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Default role for storefront shoppers
	RoleBuyer UserRole = "buyer"

	// Operates a store: products, orders and sales reports
	RoleSeller UserRole = "seller"

	// Unrestricted system access
	RoleAdmin UserRole = "admin"

	// Read-only staff: dashboard and reports
	RoleMonitor UserRole = "monitor"

	// Customer care: accounts and disputes
	RoleSupport UserRole = "support"

	// Payments and payouts
	RoleFinance UserRole = "finance"
)

// Roles lists every role in declaration order.
var Roles = []UserRole{RoleBuyer, RoleSeller, RoleAdmin, RoleMonitor, RoleSupport, RoleFinance}

// ParseRole converts a raw string into a [UserRole].
// It reports false for anything outside the closed enumeration.
func ParseRole(raw string) (UserRole, bool) {
	role := UserRole(strings.ToLower(strings.TrimSpace(raw)))
	if role.Valid() {
		return role, true
	}
	return "", false
}

// Valid reports whether r is one of the enumerated roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin, RoleMonitor, RoleSupport, RoleFinance:
		return true
	}
	return false
}

// # Role Tiers

// IsAdminTier reports whether r belongs to the back-office staff tier.
//
// Admin-tier sessions opened from outside the internal network must pass
// the step-up (2FA) gate before they can reach admin resources.
func (r UserRole) IsAdminTier() bool {
	switch r {
	case RoleAdmin, RoleMonitor, RoleSupport, RoleFinance:
		return true
	}
	return false
}

// IsSelfAssignable reports whether a non-staff account may switch itself to r.
func (r UserRole) IsSelfAssignable() bool {
	return r == RoleBuyer || r == RoleSeller
}

// String implements [fmt.Stringer].
func (r UserRole) String() string { return string(r) }
