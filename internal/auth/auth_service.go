// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/samber/oops"
	"golang.org/x/sync/semaphore"

	"github.com/quizhub/quizhub/internal/locale"
	"github.com/quizhub/quizhub/pkg/errutil"
)

// TokenEncoder mints session tokens.
type TokenEncoder interface {
	Encode(username string, id locale.ID) (string, error)
}

// ServiceConfig holds the tunables of the login and registration flows.
type ServiceConfig struct {
	// HonorLoginLocale mints login tokens in the caller's locale. When false,
	// every login token starts in locale.Default.
	HonorLoginLocale bool

	// MaxConcurrentHashes bounds in-flight bcrypt computations.
	// Zero means GOMAXPROCS.
	MaxConcurrentHashes int64
}

// Service provides the login and registration flows.
type Service struct {
	accounts         AccountRepository
	hasher           PasswordHasher
	tokens           TokenEncoder
	hashSlots        *semaphore.Weighted
	honorLoginLocale bool
	logger           *slog.Logger
}

// NewAuthService creates a new Service with a no-op logger.
// Returns an error if any required dependency is nil.
func NewAuthService(accounts AccountRepository, hasher PasswordHasher, tokens TokenEncoder, cfg ServiceConfig) (*Service, error) {
	return NewAuthServiceWithLogger(accounts, hasher, tokens, cfg, slog.New(slog.DiscardHandler))
}

// NewAuthServiceWithLogger creates a new Service that reports store and
// integrity failures to logger.
func NewAuthServiceWithLogger(
	accounts AccountRepository,
	hasher PasswordHasher,
	tokens TokenEncoder,
	cfg ServiceConfig,
	logger *slog.Logger,
) (*Service, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token encoder is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	if cfg.MaxConcurrentHashes < 0 {
		return nil, oops.With("max_concurrent_hashes", cfg.MaxConcurrentHashes).
			Errorf("max concurrent hashes must not be negative")
	}

	slots := cfg.MaxConcurrentHashes
	if slots == 0 {
		slots = int64(runtime.GOMAXPROCS(0))
	}

	return &Service{
		accounts:         accounts,
		hasher:           hasher,
		tokens:           tokens,
		hashSlots:        semaphore.NewWeighted(slots),
		honorLoginLocale: cfg.HonorLoginLocale,
		logger:           logger,
	}, nil
}

// dummyPasswordHash is verified when a username is unknown so that both
// paths spend the same bcrypt work. It matches no password.
//
//nolint:gosec // G101: not a credential
const dummyPasswordHash = "$2b$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Login checks username and password and returns a fresh session token.
//
// Errors wrap ErrNotRegistered or ErrWrongCredentials for credential
// problems, and ErrStoreUnavailable when the account store fails.
func (s *Service) Login(ctx context.Context, username, password string, id locale.ID) (string, error) {
	var account *Account
	lookupErr := ErrNotFound
	if storableUsername(username) {
		account, lookupErr = s.accounts.GetByUsername(ctx, username)
	}

	targetHash := dummyPasswordHash
	accountExists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return "", s.storeFailure("get account by username", username, lookupErr)
		}
	} else {
		targetHash = account.PasswordHash
		accountExists = true
	}

	valid, verifyErr := s.verify(ctx, password, targetHash)
	if verifyErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", oops.Code("AUTH_LOGIN_FAILED").With("operation", "verify password").Wrap(ctxErr)
		}
		if accountExists {
			errutil.LogError(s.logger, "stored password hash is unreadable",
				oops.Code("AUTH_INTEGRITY").With("username", username).Wrap(verifyErr))
			return "", oops.Code("AUTH_INTEGRITY").
				With("username", username).
				Wrap(ErrWrongCredentials)
		}
	}

	if !accountExists {
		return "", oops.Code("AUTH_INVALID_CREDENTIALS").
			With("username", username).
			Wrap(ErrNotRegistered)
	}
	if !valid {
		return "", oops.Code("AUTH_INVALID_CREDENTIALS").
			With("username", username).
			Wrap(ErrWrongCredentials)
	}

	tokenLocale := locale.Default
	if s.honorLoginLocale {
		tokenLocale = id
	}

	token, err := s.tokens.Encode(account.Username, tokenLocale)
	if err != nil {
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "encode session token").
			Wrap(err)
	}
	return token, nil
}

// storableUsername reports whether username could have been registered at
// all. Postgres rejects invalid UTF-8 and NUL in text parameters, so such
// names never reach the store.
func storableUsername(username string) bool {
	return utf8.ValidString(username) && !strings.ContainsRune(username, 0)
}

// Register validates the credentials, creates the account and returns a
// ready session token in the caller's locale, so no separate login is needed.
//
// Validation failures wrap a *ValidationError listing every broken rule.
// A duplicate username wraps ErrUsernameTaken, including when two
// registrations race and the store's unique constraint decides.
func (s *Service) Register(ctx context.Context, username, password string, id locale.ID) (string, error) {
	if err := ValidateCredentials(username, password); err != nil {
		return "", oops.Code("AUTH_VALIDATION_FAILED").Wrap(err)
	}

	hash, err := s.hash(ctx, password)
	if err != nil {
		return "", oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	account := &Account{Username: username, PasswordHash: hash}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return "", oops.Code("AUTH_USERNAME_TAKEN").
				With("username", username).
				Wrap(err)
		}
		return "", s.storeFailure("create account", username, err)
	}

	s.logger.InfoContext(ctx, "account registered", "username", username)

	token, err := s.tokens.Encode(username, id)
	if err != nil {
		return "", oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "encode session token").
			Wrap(err)
	}
	return token, nil
}

// ChangeLocale re-mints the session token of an authenticated user.
func (s *Service) ChangeLocale(username string, id locale.ID) (string, error) {
	if !id.Valid() {
		return "", oops.Code("LOCALE_INVALID").
			With("locale", int(id)).
			Errorf("unsupported locale id %d", id)
	}
	token, err := s.tokens.Encode(username, id)
	if err != nil {
		return "", oops.Code("AUTH_LOCALE_CHANGE_FAILED").
			With("operation", "encode session token").
			Wrap(err)
	}
	return token, nil
}

func (s *Service) verify(ctx context.Context, password, hash string) (bool, error) {
	if err := s.hashSlots.Acquire(ctx, 1); err != nil {
		return false, err //nolint:wrapcheck // context error, wrapped by caller
	}
	defer s.hashSlots.Release(1)
	return s.hasher.Verify(password, hash) //nolint:wrapcheck // hasher returns coded errors
}

func (s *Service) hash(ctx context.Context, password string) (string, error) {
	if err := s.hashSlots.Acquire(ctx, 1); err != nil {
		return "", err //nolint:wrapcheck // context error, wrapped by caller
	}
	defer s.hashSlots.Release(1)
	return s.hasher.Hash(password) //nolint:wrapcheck // hasher returns coded errors
}

func (s *Service) storeFailure(operation, username string, err error) error {
	wrapped := oops.Code("AUTH_STORE_UNAVAILABLE").
		With("operation", operation).
		With("username", username).
		Wrap(fmt.Errorf("%w: %w", ErrStoreUnavailable, err))
	errutil.LogError(s.logger, "account store failure", wrapped)
	return wrapped
}
