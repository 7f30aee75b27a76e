// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserTrustedDeviceTable represents the 'users.trusted_device' table
type UserTrustedDeviceTable struct {
	Table     string
	ID        string
	AccountID string
	TokenHash string
	UserAgent string
	ExpiresAt string
	CreatedAt string
}

// UserTrustedDevice is the schema definition for users.trusted_device
var UserTrustedDevice = UserTrustedDeviceTable{
	Table:     "users.trusted_device",
	ID:        "id",
	AccountID: "accountid",
	TokenHash: "tokenhash",
	UserAgent: "useragent",
	ExpiresAt: "expiresat",
	CreatedAt: "createdat",
}

// Columns returns all standard column names
func (t UserTrustedDeviceTable) Columns() []string {
	return []string{t.ID, t.AccountID, t.TokenHash, t.UserAgent, t.ExpiresAt, t.CreatedAt}
}
