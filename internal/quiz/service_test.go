// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package quiz_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/auth/mocks"
	"github.com/quizhub/quizhub/internal/locale"
	"github.com/quizhub/quizhub/internal/quiz"
)

func TestNewService_RequiresDependencies(t *testing.T) {
	bank := loadSmallBank(t)

	_, err := quiz.NewService(nil, mocks.NewMockAccountRepository(t))
	assert.Error(t, err)

	_, err = quiz.NewService(bank, nil)
	assert.Error(t, err)

	_, err = quiz.NewService(bank, mocks.NewMockAccountRepository(t), quiz.WithLogger(nil))
	assert.Error(t, err)
}

func TestService_Next(t *testing.T) {
	bank := loadSmallBank(t)
	svc, err := quiz.NewService(bank, mocks.NewMockAccountRepository(t),
		quiz.WithRand(rand.New(rand.NewPCG(7, 7))))
	require.NoError(t, err)

	for range 50 {
		view := svc.Next(locale.Russian)
		q, err := bank.Question(view.Topic, view.Index)
		require.NoError(t, err)
		assert.Equal(t, q.Prompt(locale.Russian), view.Prompt)
		assert.Equal(t, q.OptionsFor(locale.Russian), view.Options)
		assert.Equal(t, locale.Russian, view.LocaleID)
	}
}

func TestService_Answer(t *testing.T) {
	ctx := context.Background()

	t.Run("correct answer scores for a signed-in user", func(t *testing.T) {
		scores := mocks.NewMockAccountRepository(t)
		scores.On("IncrementScore", ctx, "alice123", auth.SubjectAlgebra).Return(nil)
		svc, err := quiz.NewService(loadSmallBank(t), scores)
		require.NoError(t, err)

		res, err := svc.Answer(ctx, "alice123", auth.SubjectAlgebra, 0, "2")
		require.NoError(t, err)
		assert.Equal(t, quiz.Result{Correct: true, Scored: true}, res)
	})

	t.Run("anonymous correct answer is not scored", func(t *testing.T) {
		scores := mocks.NewMockAccountRepository(t)
		svc, err := quiz.NewService(loadSmallBank(t), scores)
		require.NoError(t, err)

		res, err := svc.Answer(ctx, "", auth.SubjectAlgebra, 0, "2")
		require.NoError(t, err)
		assert.Equal(t, quiz.Result{Correct: true}, res)
		scores.AssertNotCalled(t, "IncrementScore", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong answer is not scored", func(t *testing.T) {
		scores := mocks.NewMockAccountRepository(t)
		svc, err := quiz.NewService(loadSmallBank(t), scores)
		require.NoError(t, err)

		res, err := svc.Answer(ctx, "alice123", auth.SubjectAlgebra, 0, "5")
		require.NoError(t, err)
		assert.False(t, res.Correct)
		assert.False(t, res.Scored)
	})

	t.Run("unknown question", func(t *testing.T) {
		svc, err := quiz.NewService(loadSmallBank(t), mocks.NewMockAccountRepository(t))
		require.NoError(t, err)

		_, err = svc.Answer(ctx, "alice123", auth.SubjectGeometry, 0, "2")
		assert.ErrorIs(t, err, quiz.ErrUnknownQuestion)
	})

	t.Run("score failure is logged and tolerated", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		scores := mocks.NewMockAccountRepository(t)
		scores.On("IncrementScore", ctx, "alice123", auth.SubjectPhysics).
			Return(errors.New("connection reset"))
		svc, err := quiz.NewService(loadSmallBank(t), scores, quiz.WithLogger(logger))
		require.NoError(t, err)

		res, err := svc.Answer(ctx, "alice123", auth.SubjectPhysics, 1, "6")
		require.NoError(t, err)
		assert.Equal(t, quiz.Result{Correct: true}, res)

		out := buf.String()
		assert.Contains(t, out, `"level":"WARN"`)
		assert.Contains(t, out, `"operation":"increment_score"`)
		assert.Contains(t, out, "connection reset")
	})
}
