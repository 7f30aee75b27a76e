// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns of the users schema so that
// hand-written queries do not drift from the migrations.
package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	Password     string
	Fullname     string
	AvatarURL    string
	Role         string
	Locked       string
	TwoFAEnabled string
	TwoFASecret  string
	CreatedAt    string
	UpdatedAt    string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:        "users.account",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	Password:     "passwordhash",
	Fullname:     "fullname",
	AvatarURL:    "avatarurl",
	Role:         "role",
	Locked:       "locked",
	TwoFAEnabled: "twofaenabled",
	TwoFASecret:  "twofasecret",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.Password, t.Fullname, t.AvatarURL, t.Role,
		t.Locked, t.TwoFAEnabled, t.TwoFASecret, t.CreatedAt, t.UpdatedAt,
	}
}
