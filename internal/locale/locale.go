// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

// Package locale holds the supported display languages and the catalog of
// user-facing messages, one translation per language.
package locale

import (
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// ID selects the language variant of user-facing text.
type ID uint8

// Supported locales. The zero value is the default.
const (
	English ID = iota
	Russian

	// Count is the number of supported locales.
	Count = int(Russian) + 1
)

// Default is used when a request carries no session.
const Default = English

var names = [Count]string{
	English: "English",
	Russian: "Русский",
}

// Valid reports whether id is inside the supported range.
func (id ID) Valid() bool {
	return int(id) < Count
}

// Name returns the human-readable language name, or "" for an unknown id.
func (id ID) Name() string {
	if !id.Valid() {
		return ""
	}
	return names[id]
}

// All returns every supported locale in id order.
func All() []ID {
	ids := make([]ID, Count)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

// ParseID parses a locale id submitted by a client.
// Non-numeric and out-of-range values are rejected here so that rendering
// code never sees an unsupported id.
func ParseID(raw string) (ID, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		return 0, oops.Code("LOCALE_INVALID").With("value", raw).Wrap(err)
	}
	id := ID(n)
	if !id.Valid() {
		return 0, oops.Code("LOCALE_INVALID").
			With("value", raw).
			With("max", Count-1).
			Errorf("unsupported locale id %d", n)
	}
	return id, nil
}
