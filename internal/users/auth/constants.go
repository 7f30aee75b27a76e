// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Authentication Constraints

const (
	// MaxUsernameLength bounds usernames at registration and profile edits.
	MaxUsernameLength = 50

	// MaxFullnameLength bounds the free-form display name.
	MaxFullnameLength = 100

	// MaxEmailLength follows the RFC 5321 path limit.
	MaxEmailLength = 254
)

// # Response Messages

const (
	MsgRegistered     = "Registration successful"
	MsgResetRequested = "If the email is registered, a reset link has been sent"
	MsgPasswordReset  = "Password has been reset"
	MsgInvalidCode    = "Invalid code"
	MsgAdminOnlySetup = "Only admin can setup 2FA"
	MsgTwoFANotSetUp  = "2FA is not set up for this account"
	MsgAccountLocked  = "Account is locked"
)
