// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package auth

import (
	"errors"
	"slices"
	"strings"

	"github.com/quizhub/quizhub/internal/locale"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken is returned when an account with the username already exists.
	ErrUsernameTaken = errors.New("username already registered")

	// ErrNotRegistered is returned by Login for an unknown username.
	ErrNotRegistered = errors.New("username is not registered")

	// ErrWrongCredentials is returned by Login when the password does not match.
	ErrWrongCredentials = errors.New("wrong username or password")

	// ErrInvalidToken is returned for any session token that must not be trusted.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrStoreUnavailable marks failures of the account store itself.
	ErrStoreUnavailable = errors.New("account store unavailable")
)

// ValidationError lists every credential rule a registration attempt broke,
// in the order the rules are checked.
type ValidationError struct {
	Keys []locale.Key
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Keys))
	for _, k := range e.Keys {
		names = append(names, k.String())
	}
	return "invalid credentials: " + strings.Join(names, ", ")
}

// MessageKeys returns the catalog keys to show a user for err.
// Anything that is not a validation or credential problem is reported as a
// generic "try again later".
func MessageKeys(err error) []locale.Key {
	if err == nil {
		return nil
	}

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return slices.Clone(verr.Keys)
	case errors.Is(err, ErrUsernameTaken):
		return []locale.Key{locale.UserRegistered}
	case errors.Is(err, ErrNotRegistered):
		return []locale.Key{locale.UserNotRegistered}
	case errors.Is(err, ErrWrongCredentials):
		return []locale.Key{locale.LoginWrong}
	default:
		return []locale.Key{locale.Sorry}
	}
}
