// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "github.com/taibuivan/shopii/internal/platform/sec"

// # Step-Up Gate

// StepUpState is the outcome of the second-factor gate evaluated at login.
type StepUpState string

const (
	// StepUpNone issues a full session straight away.
	StepUpNone StepUpState = "NO_CHALLENGE"

	// StepUpSetupRequired issues a setup token; the account must enrol TOTP first.
	StepUpSetupRequired StepUpState = "SETUP_REQUIRED"

	// StepUpChallengeIssued issues a challenge token redeemable at verify-2FA.
	StepUpChallengeIssued StepUpState = "CHALLENGE_ISSUED"

	// StepUpVerified issues a full, verified session (trusted device or valid code).
	StepUpVerified StepUpState = "VERIFIED"
)

// StepUpInput is everything the gate looks at.
type StepUpInput struct {
	Role          sec.UserRole
	Internal      bool
	TwoFAEnabled  bool
	TrustedDevice bool
}

/*
EvaluateStepUp decides which token a successful credential check earns.

Only admin-tier roles signing in from outside the internal network are
challenged. For those, a recognised trusted device short-circuits to
VERIFIED, an account without TOTP must enrol, and everyone else gets a
challenge.
*/
func EvaluateStepUp(input StepUpInput) StepUpState {
	if !input.Role.IsAdminTier() || input.Internal {
		return StepUpNone
	}

	switch {
	case input.TrustedDevice:
		return StepUpVerified
	case !input.TwoFAEnabled:
		return StepUpSetupRequired
	default:
		return StepUpChallengeIssued
	}
}
