// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

// Package postgres provides the PostgreSQL implementation of the account store.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/quizhub/quizhub/internal/auth"
)

// DefaultTopLimit and MaxTopLimit bound leaderboard queries.
const (
	DefaultTopLimit = 10
	MaxTopLimit     = 100
)

// poolIface is the subset of *pgxpool.Pool the repository uses.
// pgxmock.PgxPoolIface satisfies it in tests.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository implements auth.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool poolIface
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool poolIface) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// GetByUsername retrieves an account by exact, case-sensitive username.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, password, algebra, chemistry, geometry, physics, created_at
		FROM accounts
		WHERE username = $1
	`, username)

	var a auth.Account
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash,
		&a.Scores.Algebra, &a.Scores.Chemistry, &a.Scores.Geometry, &a.Scores.Physics,
		&a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_FAILED").
			With("operation", "get account by username").
			With("username", username).
			Wrap(err)
	}
	return &a, nil
}

// Create inserts a new account with zero scores and fills in ID and CreatedAt.
// The unique index on username decides concurrent registrations.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (username, password)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, account.Username, account.PasswordHash).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("ACCOUNT_USERNAME_TAKEN").
				With("username", account.Username).
				Wrap(auth.ErrUsernameTaken)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("username", account.Username).
			Wrap(err)
	}
	account.Scores = auth.Scores{}
	return nil
}

// IncrementScore adds one point to subject for username.
func (r *AccountRepository) IncrementScore(ctx context.Context, username string, subject auth.Subject) error {
	column, err := scoreColumn(subject)
	if err != nil {
		return err
	}

	//nolint:gosec // G201: column comes from the closed Subject set
	query := fmt.Sprintf(`UPDATE accounts SET %[1]s = %[1]s + 1 WHERE username = $1`, column)
	tag, err := r.pool.Exec(ctx, query, username)
	if err != nil {
		return oops.Code("ACCOUNT_SCORE_FAILED").
			With("operation", "increment score").
			With("username", username).
			With("subject", string(subject)).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// GetScores returns the public score view of one account.
func (r *AccountRepository) GetScores(ctx context.Context, username string) (*auth.ScoreEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT username, algebra, chemistry, geometry, physics
		FROM accounts
		WHERE username = $1
	`, username)

	var e auth.ScoreEntry
	err := row.Scan(&e.Username, &e.Scores.Algebra, &e.Scores.Chemistry, &e.Scores.Geometry, &e.Scores.Physics)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_FAILED").
			With("operation", "get scores").
			With("username", username).
			Wrap(err)
	}
	return &e, nil
}

// TopScores returns the leaderboard, highest total first, ties broken by username.
// A non-positive limit means DefaultTopLimit; limits above MaxTopLimit are capped.
func (r *AccountRepository) TopScores(ctx context.Context, limit int) ([]auth.ScoreEntry, error) {
	limit = clampLimit(limit)

	rows, err := r.pool.Query(ctx, `
		SELECT username, algebra, chemistry, geometry, physics
		FROM accounts
		ORDER BY (algebra + chemistry + geometry + physics) DESC, username ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, oops.Code("ACCOUNT_TOP_FAILED").
			With("operation", "query top scores").
			Wrap(err)
	}
	defer rows.Close()

	entries := make([]auth.ScoreEntry, 0, limit)
	for rows.Next() {
		var e auth.ScoreEntry
		if err := rows.Scan(&e.Username, &e.Scores.Algebra, &e.Scores.Chemistry, &e.Scores.Geometry, &e.Scores.Physics); err != nil {
			return nil, oops.Code("ACCOUNT_TOP_FAILED").
				With("operation", "scan top score row").
				Wrap(err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ACCOUNT_TOP_FAILED").
			With("operation", "iterate top scores").
			Wrap(err)
	}
	return entries, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultTopLimit
	case limit > MaxTopLimit:
		return MaxTopLimit
	default:
		return limit
	}
}

func scoreColumn(subject auth.Subject) (string, error) {
	switch subject {
	case auth.SubjectAlgebra:
		return "algebra", nil
	case auth.SubjectChemistry:
		return "chemistry", nil
	case auth.SubjectGeometry:
		return "geometry", nil
	case auth.SubjectPhysics:
		return "physics", nil
	default:
		return "", oops.Code("AUTH_UNKNOWN_SUBJECT").
			With("subject", string(subject)).
			Errorf("unknown subject %q", subject)
	}
}

// Compile-time interface check.
var _ auth.AccountRepository = (*AccountRepository)(nil)
