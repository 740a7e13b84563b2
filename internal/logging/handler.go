// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

// Package logging provides structured logging with OpenTelemetry trace
// context and per-request ids.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/trace"
)

// Log formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Options configures Setup.
type Options struct {
	Service string
	Version string
	// Format is FormatJSON (default) or FormatText.
	Format string
	// Level is debug, info (default), warn or error.
	Level string
	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// contextHandler stamps every record with service identity, trace ids and
// the request id carried by the context.
type contextHandler struct {
	next    slog.Handler
	service string
	version string
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(
		slog.String("service", h.service),
		slog.String("version", h.version),
	)

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.HasTraceID() {
		r.AddAttrs(slog.String("trace_id", spanCtx.TraceID().String()))
	}
	if spanCtx.HasSpanID() {
		r.AddAttrs(slog.String("span_id", spanCtx.SpanID().String()))
	}
	if id := RequestID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}

	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.next.Handle(ctx, r)
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), service: h.service, version: h.version}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), service: h.service, version: h.version}
}

// ParseLevel converts a level name into a slog.Level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	if name == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return 0, oops.Code("LOG_LEVEL_INVALID").With("level", name).Wrap(err)
	}
	return level, nil
}

// Setup builds a logger from opts.
func Setup(opts Options) (*slog.Logger, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	switch opts.Format {
	case "", FormatJSON:
		base = slog.NewJSONHandler(w, handlerOpts)
	case FormatText:
		base = slog.NewTextHandler(w, handlerOpts)
	default:
		return nil, oops.Code("LOG_FORMAT_INVALID").
			With("format", opts.Format).
			Errorf("unknown log format %q", opts.Format)
	}

	return slog.New(&contextHandler{next: base, service: opts.Service, version: opts.Version}), nil
}

// SetDefault builds a logger with Setup and installs it as slog's default.
func SetDefault(opts Options) (*slog.Logger, error) {
	logger, err := Setup(opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}
