// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package normalize canonicalises user-supplied identifiers before they are
// compared or stored.
//
// # Usage
//
// Emails and usernames are unique keys. Two spellings that render the same
// (different Unicode compositions, letter case, stray whitespace) must map to
// the same stored value, otherwise uniqueness checks can be bypassed.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Email trims, NFC-composes and case-folds an email address.
// A Caser is stateful, so one is built per call.
func Email(raw string) string {
	composed := norm.NFC.String(strings.TrimSpace(raw))
	return cases.Fold().String(composed)
}

// Username trims and NFC-composes a username. Case is preserved for display.
func Username(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

// Text trims and NFC-composes free text such as a full name.
func Text(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}
