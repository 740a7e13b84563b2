// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package quiz

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/samber/oops"

	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/locale"
	"github.com/quizhub/quizhub/pkg/errutil"
)

// ScoreRecorder adds points to an account. auth.AccountRepository satisfies it.
type ScoreRecorder interface {
	IncrementScore(ctx context.Context, username string, subject auth.Subject) error
}

// View is a question rendered for one locale.
type View struct {
	Topic    auth.Subject
	Index    int
	Prompt   string
	Options  []string
	LocaleID locale.ID
}

// Result is the outcome of one answer.
type Result struct {
	Correct bool
	// Scored is true when a point was recorded for the user.
	Scored bool
}

// Service serves questions and scores answers.
type Service struct {
	bank   *Bank
	scores ScoreRecorder
	rng    *rand.Rand
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for best-effort failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithRand makes question picks deterministic. rng is not safe for
// concurrent use, so a Service built with it must not be shared.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// NewService creates a Service.
func NewService(bank *Bank, scores ScoreRecorder, opts ...Option) (*Service, error) {
	if bank == nil {
		return nil, oops.Errorf("question bank is required")
	}
	if scores == nil {
		return nil, oops.Errorf("score recorder is required")
	}
	s := &Service{bank: bank, scores: scores, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return s, nil
}

// Next picks a random question and renders it for id.
func (s *Service) Next(id locale.ID) View {
	topic, idx := s.bank.Pick(s.rng)
	q, _ := s.bank.Question(topic, idx) //nolint:errcheck // Pick only returns existing questions
	return View{
		Topic:    topic,
		Index:    idx,
		Prompt:   q.Prompt(id),
		Options:  q.OptionsFor(id),
		LocaleID: id,
	}
}

// Answer checks answer for question idx of topic. When it is correct and
// username is not empty, one point is added to the topic's score. A failed
// score update is logged and does not fail the answer.
func (s *Service) Answer(ctx context.Context, username string, topic auth.Subject, idx int, answer string) (Result, error) {
	correct, err := s.bank.Check(topic, idx, answer)
	if err != nil {
		return Result{}, err
	}
	if !correct || username == "" {
		return Result{Correct: correct}, nil
	}

	if err := s.scores.IncrementScore(ctx, username, topic); err != nil {
		errutil.LogBestEffort(s.logger, "increment_score", err,
			"username", username,
			"subject", string(topic))
		return Result{Correct: true}, nil
	}
	return Result{Correct: true, Scored: true}, nil
}
