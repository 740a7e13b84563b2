// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package quiz_test

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/locale"
	"github.com/quizhub/quizhub/internal/quiz"
	"github.com/quizhub/quizhub/pkg/errutil"
)

const smallBank = `
- topic: algebra
  question: ["1 + 1 = ?", "1 + 1 = ?"]
  answer: ["2"]
- topic: physics
  question: ["Unit of force?", "Единица силы?"]
  options:
    - ["joule", "newton"]
    - ["джоуль", "ньютон"]
  answer: ["newton", "ньютон"]
- topic: physics
  question: ["F = m * a. m = 2, a = 3. F = ?"]
  answer: ["6"]
`

func loadSmallBank(t *testing.T) *quiz.Bank {
	t.Helper()
	bank, err := quiz.LoadBank(strings.NewReader(smallBank))
	require.NoError(t, err)
	return bank
}

func TestDefaultBank(t *testing.T) {
	bank, err := quiz.DefaultBank()
	require.NoError(t, err)
	assert.Equal(t, auth.Subjects(), bank.Topics(), "every subject has questions")
	for _, topic := range bank.Topics() {
		for i := range bank.Len(topic) {
			q, err := bank.Question(topic, i)
			require.NoError(t, err)
			for _, id := range locale.All() {
				assert.NotEmpty(t, q.Prompt(id), "%s/%d in %s", topic, i, id.Name())
			}
		}
	}
}

func TestLoadBank_Indexing(t *testing.T) {
	bank := loadSmallBank(t)

	assert.Equal(t, []auth.Subject{auth.SubjectAlgebra, auth.SubjectPhysics}, bank.Topics())
	assert.Equal(t, 1, bank.Len(auth.SubjectAlgebra))
	assert.Equal(t, 2, bank.Len(auth.SubjectPhysics))
	assert.Zero(t, bank.Len(auth.SubjectChemistry))
}

func TestQuestion_Localization(t *testing.T) {
	bank := loadSmallBank(t)

	translated, err := bank.Question(auth.SubjectPhysics, 0)
	require.NoError(t, err)
	assert.Equal(t, "Unit of force?", translated.Prompt(locale.English))
	assert.Equal(t, "Единица силы?", translated.Prompt(locale.Russian))
	assert.Equal(t, []string{"джоуль", "ньютон"}, translated.OptionsFor(locale.Russian))

	single, err := bank.Question(auth.SubjectPhysics, 1)
	require.NoError(t, err)
	assert.Equal(t, single.Prompt(locale.English), single.Prompt(locale.Russian),
		"a single prompt is shown in every locale")
	assert.Nil(t, single.OptionsFor(locale.English))
}

func TestBank_Check(t *testing.T) {
	bank := loadSmallBank(t)

	tests := []struct {
		name   string
		topic  auth.Subject
		idx    int
		answer string
		want   bool
	}{
		{name: "correct", topic: auth.SubjectAlgebra, idx: 0, answer: "2", want: true},
		{name: "surrounding whitespace ignored", topic: auth.SubjectAlgebra, idx: 0, answer: " 2\n", want: true},
		{name: "wrong", topic: auth.SubjectAlgebra, idx: 0, answer: "3"},
		{name: "any accepted answer", topic: auth.SubjectPhysics, idx: 0, answer: "ньютон", want: true},
		{name: "case matters", topic: auth.SubjectPhysics, idx: 0, answer: "Newton"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bank.Check(tt.topic, tt.idx, tt.answer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBank_Check_UnknownQuestion(t *testing.T) {
	bank := loadSmallBank(t)

	for _, tc := range []struct {
		topic auth.Subject
		idx   int
	}{
		{auth.SubjectAlgebra, 1},
		{auth.SubjectAlgebra, -1},
		{auth.SubjectChemistry, 0},
		{auth.Subject("history"), 0},
	} {
		_, err := bank.Check(tc.topic, tc.idx, "2")
		require.Error(t, err)
		assert.ErrorIs(t, err, quiz.ErrUnknownQuestion)
		errutil.AssertErrorCode(t, err, "QUIZ_UNKNOWN_QUESTION")
	}
}

func TestBank_Pick(t *testing.T) {
	bank := loadSmallBank(t)
	rng := rand.New(rand.NewPCG(1, 2))

	seen := map[auth.Subject]bool{}
	for range 200 {
		topic, idx := bank.Pick(rng)
		_, err := bank.Question(topic, idx)
		require.NoError(t, err)
		seen[topic] = true
	}
	assert.Len(t, seen, 2, "both topics get picked")

	topic, idx := bank.Pick(nil)
	_, err := bank.Question(topic, idx)
	require.NoError(t, err)
}

func TestLoadBank_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "not yaml", yaml: "{{{"},
		{name: "empty list", yaml: "[]"},
		{name: "unknown field", yaml: `[{topic: algebra, question: ["q"], answer: ["a"], hint: "x"}]`},
		{name: "unknown topic", yaml: `[{topic: history, question: ["q"], answer: ["a"]}]`},
		{name: "missing question", yaml: `[{topic: algebra, answer: ["a"]}]`},
		{name: "missing answer", yaml: `[{topic: algebra, question: ["q"]}]`},
		{name: "too many translations", yaml: `[{topic: algebra, question: ["a", "b", "c"], answer: ["a"]}]`},
		{name: "options for too many locales", yaml: `[{topic: algebra, question: ["q"], options: [["1"], ["1"], ["1"]], answer: ["1"]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quiz.LoadBank(strings.NewReader(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestLoadBankFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallBank), 0o600))

	bank, err := quiz.LoadBankFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bank.Len(auth.SubjectPhysics))

	_, err = quiz.LoadBankFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "QUIZ_BANK_INVALID")
}
