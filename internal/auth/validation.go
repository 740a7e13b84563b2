// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package auth

import (
	"strings"
	"unicode"

	"github.com/quizhub/quizhub/internal/locale"
)

// Credential length limits, in bytes.
const (
	MinUsernameLength = 5
	MaxUsernameLength = 15
	MinPasswordLength = 8
	MaxPasswordLength = 30
)

// PasswordSymbols are the non-alphanumeric characters a password may contain.
const PasswordSymbols = "!@#$%^&*()_+=-?><"

// ValidateCredentials checks a registration request against every rule and
// returns a *ValidationError listing all violations, or nil.
// The order of the returned keys is stable and is the order users see.
func ValidateCredentials(username, password string) error {
	var keys []locale.Key

	if len(username) < MinUsernameLength {
		keys = append(keys, locale.UsernameShort)
	}
	if len(password) < MinPasswordLength {
		keys = append(keys, locale.PasswordShort)
	}
	if len(password) > MaxPasswordLength {
		keys = append(keys, locale.PasswordLong)
	}
	if len(username) > MaxUsernameLength {
		keys = append(keys, locale.UsernameLong)
	}
	if !allRunes(username, isAlphanumeric) {
		keys = append(keys, locale.UsernameChars)
	}
	if !allRunes(password, isPasswordRune) {
		keys = append(keys, locale.PasswordChars)
	}

	if len(keys) == 0 {
		return nil
	}
	return &ValidationError{Keys: keys}
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isPasswordRune(r rune) bool {
	return isAlphanumeric(r) || strings.ContainsRune(PasswordSymbols, r)
}

func allRunes(s string, ok func(rune) bool) bool {
	for _, r := range s {
		if !ok(r) {
			return false
		}
	}
	return true
}
