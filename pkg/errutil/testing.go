// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package errutil

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode asserts that err carries the given oops code. The deepest
// code in the chain is the one compared.
func AssertErrorCode(t testing.TB, err error, code string) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T: %v", err, err)
	assert.Equal(t, code, oopsErr.Code(), "error: %v", err)
}

// AssertCodedError asserts both the oops code and the sentinel that err
// wraps, which is how callers on both sides of a package boundary see it.
func AssertCodedError(t testing.TB, err error, code string, sentinel error) {
	t.Helper()
	require.Error(t, err)
	AssertErrorCode(t, err, code)
	assert.True(t, errors.Is(err, sentinel), "expected %v to wrap %v", err, sentinel)
}

// AssertErrorContext asserts that err has key set to value in its oops context.
func AssertErrorContext(t testing.TB, err error, key string, value any) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T: %v", err, err)
	ctx := oopsErr.Context()
	require.Contains(t, ctx, key)
	assert.Equal(t, value, ctx[key])
}
