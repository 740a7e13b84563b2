// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

// Package errutil bridges oops errors and structured logging.
package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error at ERROR level with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code, and context.
// For standard errors, it logs the error string. Extra attrs are appended as-is.
func LogError(logger *slog.Logger, msg string, err error, attrs ...any) {
	logger.Error(msg, append(errorAttrs(err), attrs...)...)
}

// LogErrorContext is LogError with a context, so that handlers which read
// request-scoped values from ctx can add them.
func LogErrorContext(ctx context.Context, logger *slog.Logger, msg string, err error, attrs ...any) {
	logger.ErrorContext(ctx, msg, append(errorAttrs(err), attrs...)...)
}

// LogBestEffort logs a failure that the caller deliberately tolerates,
// at WARN level, tagged with the operation that failed.
func LogBestEffort(logger *slog.Logger, operation string, err error, attrs ...any) {
	all := append([]any{"operation", operation}, errorAttrs(err)...)
	logger.Warn("best-effort operation failed", append(all, attrs...)...)
}

func errorAttrs(err error) []any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err}
	}
	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil {
		attrs = append(attrs, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	return attrs
}
