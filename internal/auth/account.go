// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package auth

import (
	"context"
	"time"

	"github.com/samber/oops"
)

// Subject is a quiz topic an account collects points in.
type Subject string

// Quiz subjects.
const (
	SubjectAlgebra   Subject = "algebra"
	SubjectChemistry Subject = "chemistry"
	SubjectGeometry  Subject = "geometry"
	SubjectPhysics   Subject = "physics"
)

// Subjects returns all subjects in display order.
func Subjects() []Subject {
	return []Subject{SubjectAlgebra, SubjectChemistry, SubjectGeometry, SubjectPhysics}
}

// ParseSubject converts a topic name into a Subject.
func ParseSubject(s string) (Subject, error) {
	switch subj := Subject(s); subj {
	case SubjectAlgebra, SubjectChemistry, SubjectGeometry, SubjectPhysics:
		return subj, nil
	default:
		return "", oops.Code("AUTH_UNKNOWN_SUBJECT").With("subject", s).Errorf("unknown subject %q", s)
	}
}

// Scores holds the per-subject points of an account. Scores only grow.
type Scores struct {
	Algebra   int
	Chemistry int
	Geometry  int
	Physics   int
}

// Total is the leaderboard ranking key.
func (s Scores) Total() int {
	return s.Algebra + s.Chemistry + s.Geometry + s.Physics
}

// Get returns the score for one subject, or 0 for an unknown subject.
func (s Scores) Get(subj Subject) int {
	switch subj {
	case SubjectAlgebra:
		return s.Algebra
	case SubjectChemistry:
		return s.Chemistry
	case SubjectGeometry:
		return s.Geometry
	case SubjectPhysics:
		return s.Physics
	default:
		return 0
	}
}

// Account is a registered user.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	Scores       Scores
	CreatedAt    time.Time
}

// ScoreEntry is the public view of an account: no password hash.
type ScoreEntry struct {
	Username string
	Scores   Scores
}

// AccountRepository is the only component with access to stored accounts.
type AccountRepository interface {
	// GetByUsername retrieves an account by exact username.
	// Returns ErrNotFound if no account exists.
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// Create inserts a new account and fills in ID and CreatedAt.
	// Returns ErrUsernameTaken if the username is already registered.
	Create(ctx context.Context, account *Account) error

	// IncrementScore adds one point to subject for username.
	// Returns ErrNotFound if no account exists.
	IncrementScore(ctx context.Context, username string, subject Subject) error

	// GetScores returns the public score view of one account.
	// Returns ErrNotFound if no account exists.
	GetScores(ctx context.Context, username string) (*ScoreEntry, error)

	// TopScores returns up to limit accounts ordered by total score, highest first.
	TopScores(ctx context.Context, limit int) ([]ScoreEntry, error)
}
