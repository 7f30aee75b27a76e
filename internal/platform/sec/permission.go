// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "math/bits"

// # Permissions

// Permission is a single capability checked by handlers and middleware.
type Permission uint8

const (
	PermViewDashboard Permission = iota
	PermManageProducts
	PermManageUsers
	PermManageOrders
	PermManageVouchers
	PermViewReports
	PermManagePayments
	PermManageDisputes

	// permissionCount must stay last.
	permissionCount
)

var permissionNames = [permissionCount]string{
	PermViewDashboard:  "view:dashboard",
	PermManageProducts: "manage:products",
	PermManageUsers:    "manage:users",
	PermManageOrders:   "manage:orders",
	PermManageVouchers: "manage:vouchers",
	PermViewReports:    "view:reports",
	PermManagePayments: "manage:payments",
	PermManageDisputes: "manage:disputes",
}

// String returns the wire name of the permission (e.g. "manage:users").
func (p Permission) String() string {
	if p >= permissionCount {
		return "unknown"
	}
	return permissionNames[p]
}

// ParsePermission resolves a wire name back to its [Permission].
func ParsePermission(name string) (Permission, bool) {
	for index, candidate := range permissionNames {
		if candidate == name {
			return Permission(index), true
		}
	}
	return 0, false
}

// # Permission Sets

// PermissionSet is a bitmask of permissions.
type PermissionSet uint64

// AllPermissions is the set of every enumerated permission.
const AllPermissions PermissionSet = 1<<permissionCount - 1

// NewPermissionSet builds a set from individual permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	var set PermissionSet
	for _, perm := range perms {
		set |= 1 << perm
	}
	return set
}

// Has reports whether perm is a member of s.
func (s PermissionSet) Has(perm Permission) bool {
	return perm < permissionCount && s&(1<<perm) != 0
}

// Len returns the number of permissions in s.
func (s PermissionSet) Len() int {
	return bits.OnesCount64(uint64(s & AllPermissions))
}

// Names returns the wire names of the permissions in s, in enumeration order.
func (s PermissionSet) Names() []string {
	names := make([]string, 0, s.Len())
	for perm := Permission(0); perm < permissionCount; perm++ {
		if s.Has(perm) {
			names = append(names, perm.String())
		}
	}
	return names
}

// # Registry

// rolePermissions is the static role → capability table. It is written once at
// package init and only read afterwards.
var rolePermissions = map[UserRole]PermissionSet{
	RoleBuyer:   0,
	RoleSeller:  NewPermissionSet(PermManageProducts, PermManageOrders, PermViewReports),
	RoleAdmin:   AllPermissions,
	RoleMonitor: NewPermissionSet(PermViewDashboard, PermViewReports),
	RoleSupport: NewPermissionSet(PermManageUsers, PermManageDisputes, PermViewDashboard),
	RoleFinance: NewPermissionSet(PermManagePayments, PermViewReports),
}

// PermissionsOf returns the permission set granted to role.
// Unknown roles resolve to the empty set.
func PermissionsOf(role UserRole) PermissionSet {
	if role == RoleAdmin {
		return AllPermissions
	}
	return rolePermissions[role]
}

// HasPermission is the single capability check used across the service.
func HasPermission(role UserRole, perm Permission) bool {
	return PermissionsOf(role).Has(perm)
}
