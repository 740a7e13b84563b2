// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

// Package quiz holds the question bank and answer scoring.
package quiz

import (
	"bytes"
	_ "embed"
	"errors"
	"io"
	"math/rand/v2"
	"os"
	"slices"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/locale"
)

//go:embed questions.yaml
var defaultBank []byte

// ErrUnknownQuestion is returned for a topic or question index the bank does not have.
var ErrUnknownQuestion = errors.New("unknown question")

// Question is one quiz item. Prompts and Options are indexed by locale.ID;
// a single prompt or option list is used for every locale.
type Question struct {
	Topic   auth.Subject `yaml:"topic"`
	Prompts []string     `yaml:"question"`
	Options [][]string   `yaml:"options,omitempty"`
	Answers []string     `yaml:"answer"`
}

// Prompt returns the question text for id.
func (q *Question) Prompt(id locale.ID) string {
	return pick(q.Prompts, id)
}

// OptionsFor returns the answer options for id, or nil for free-text questions.
func (q *Question) OptionsFor(id locale.ID) []string {
	return pick(q.Options, id)
}

// Accepts reports whether answer is one of the accepted answers.
// Surrounding whitespace is ignored; comparison is otherwise exact.
func (q *Question) Accepts(answer string) bool {
	return slices.Contains(q.Answers, strings.TrimSpace(answer))
}

func pick[T any](perLocale []T, id locale.ID) T {
	var zero T
	switch {
	case len(perLocale) == 0:
		return zero
	case len(perLocale) == 1 || int(id) >= len(perLocale):
		return perLocale[0]
	default:
		return perLocale[id]
	}
}

// Bank groups questions by subject. It is immutable after loading.
type Bank struct {
	byTopic map[auth.Subject][]Question
	topics  []auth.Subject
}

// LoadBank parses a YAML question list.
func LoadBank(r io.Reader) (*Bank, error) {
	var questions []Question
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&questions); err != nil {
		return nil, oops.Code("QUIZ_BANK_INVALID").With("operation", "decode questions").Wrap(err)
	}
	return NewBank(questions)
}

// LoadBankFile reads the bank at path.
func LoadBankFile(path string) (*Bank, error) {
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, oops.Code("QUIZ_BANK_INVALID").With("path", path).Wrap(err)
	}
	defer func() { _ = f.Close() }()

	bank, err := LoadBank(f)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return bank, nil
}

// DefaultBank returns the built-in question bank.
func DefaultBank() (*Bank, error) {
	return LoadBank(bytes.NewReader(defaultBank))
}

// NewBank validates questions and indexes them by topic.
func NewBank(questions []Question) (*Bank, error) {
	b := &Bank{byTopic: make(map[auth.Subject][]Question)}
	for i, q := range questions {
		if err := validateQuestion(q); err != nil {
			return nil, oops.Code("QUIZ_BANK_INVALID").With("index", i).Wrap(err)
		}
		b.byTopic[q.Topic] = append(b.byTopic[q.Topic], q)
	}
	for _, subj := range auth.Subjects() {
		if len(b.byTopic[subj]) > 0 {
			b.topics = append(b.topics, subj)
		}
	}
	if len(b.topics) == 0 {
		return nil, oops.Code("QUIZ_BANK_INVALID").Errorf("question bank is empty")
	}
	return b, nil
}

func validateQuestion(q Question) error {
	if _, err := auth.ParseSubject(string(q.Topic)); err != nil {
		return err //nolint:wrapcheck // coded by ParseSubject
	}
	if len(q.Prompts) == 0 || slices.Contains(q.Prompts, "") {
		return oops.With("topic", string(q.Topic)).Errorf("question text is missing")
	}
	if len(q.Prompts) > 1 && len(q.Prompts) != locale.Count {
		return oops.With("topic", string(q.Topic)).
			Errorf("question has %d translations, want 1 or %d", len(q.Prompts), locale.Count)
	}
	if len(q.Options) > 1 && len(q.Options) != locale.Count {
		return oops.With("topic", string(q.Topic)).
			Errorf("options have %d translations, want 1 or %d", len(q.Options), locale.Count)
	}
	if len(q.Answers) == 0 {
		return oops.With("topic", string(q.Topic)).Errorf("question has no accepted answer")
	}
	return nil
}

// Topics lists the subjects that have at least one question.
func (b *Bank) Topics() []auth.Subject {
	return slices.Clone(b.topics)
}

// Len returns the number of questions for topic.
func (b *Bank) Len(topic auth.Subject) int {
	return len(b.byTopic[topic])
}

// Question returns question idx of topic.
func (b *Bank) Question(topic auth.Subject, idx int) (*Question, error) {
	questions := b.byTopic[topic]
	if idx < 0 || idx >= len(questions) {
		return nil, oops.Code("QUIZ_UNKNOWN_QUESTION").
			With("topic", string(topic)).
			With("question", idx).
			Wrap(ErrUnknownQuestion)
	}
	return &questions[idx], nil
}

// Pick chooses a random topic, then a random question of that topic.
func (b *Bank) Pick(rng *rand.Rand) (auth.Subject, int) {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	topic := b.topics[intN(len(b.topics))]
	return topic, intN(len(b.byTopic[topic]))
}

// Check reports whether answer is correct for question idx of topic.
func (b *Bank) Check(topic auth.Subject, idx int, answer string) (bool, error) {
	q, err := b.Question(topic, idx)
	if err != nil {
		return false, err
	}
	return q.Accepts(answer), nil
}
