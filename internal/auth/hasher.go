// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package auth

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/blowfish"
)

// Bcrypt parameters.
const (
	// DefaultBcryptCost matches the cost used by existing account hashes.
	DefaultBcryptCost = 12

	// SaltSize is the number of salt bytes bcrypt consumes.
	SaltSize = 16

	// maxPasswordBytes is the bcrypt key length limit; longer input is silently
	// truncated by every bcrypt implementation, so Hash refuses it instead.
	maxPasswordBytes = 72

	// cipherDataSize is the length of the "OrpheanBeholderScryDoubt" block;
	// only the first 23 bytes are encoded, matching the reference implementation.
	cipherDataSize = 24
	encodedDigest  = 23
)

var (
	// ErrEmptyPassword is returned when attempting to hash an empty password.
	ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

	// ErrPasswordTooLong is returned when a password exceeds the bcrypt key limit.
	ErrPasswordTooLong = oops.Code("AUTH_PASSWORD_TOO_LONG").
				With("max_bytes", maxPasswordBytes).
				Errorf("password exceeds %d bytes", maxPasswordBytes)
)

// bcryptEncoding is the unpadded base64 variant used inside bcrypt strings.
var bcryptEncoding = base64.NewEncoding("./ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789").
	WithPadding(base64.NoPadding)

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a bcrypt hash of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or (false, error)
	// when the stored hash cannot be parsed.
	Verify(password, hash string) (bool, error)
}

// DecodeSalt decodes a bcrypt-base64 salt secret and returns its first SaltSize bytes.
func DecodeSalt(encoded string) ([]byte, error) {
	raw, err := bcryptEncoding.DecodeString(encoded)
	if err != nil {
		return nil, oops.Code("AUTH_INVALID_SALT").Wrap(err)
	}
	if len(raw) < SaltSize {
		return nil, oops.Code("AUTH_INVALID_SALT").
			With("decoded_bytes", len(raw)).
			Errorf("salt must decode to at least %d bytes", SaltSize)
	}
	return raw[:SaltSize], nil
}

// BcryptHasher implements PasswordHasher with a single process-wide salt.
// Equal passwords produce equal hashes within one deployment.
type BcryptHasher struct {
	salt        [SaltSize]byte
	encodedSalt string
	cost        int
}

// BcryptOption configures a BcryptHasher.
type BcryptOption func(*BcryptHasher)

// WithCost overrides DefaultBcryptCost.
func WithCost(cost int) BcryptOption {
	return func(h *BcryptHasher) {
		h.cost = cost
	}
}

// NewBcryptHasher creates a hasher from raw salt bytes (see DecodeSalt).
func NewBcryptHasher(salt []byte, opts ...BcryptOption) (*BcryptHasher, error) {
	if len(salt) != SaltSize {
		return nil, oops.Code("AUTH_INVALID_SALT").
			With("length", len(salt)).
			Errorf("salt must be exactly %d bytes", SaltSize)
	}

	h := &BcryptHasher{cost: DefaultBcryptCost}
	copy(h.salt[:], salt)
	for _, opt := range opts {
		opt(h)
	}

	if h.cost < bcrypt.MinCost || h.cost > bcrypt.MaxCost {
		return nil, oops.Code("AUTH_INVALID_COST").
			With("cost", h.cost).
			Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	h.encodedSalt = bcryptEncoding.EncodeToString(h.salt[:])
	return h, nil
}

// Cost returns the work factor new hashes are created with.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash produces a "$2b$" bcrypt hash using the configured salt.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	// The key includes the trailing NUL, as C bcrypt does.
	key := append([]byte(password), 0)
	c, err := blowfish.NewSaltedCipher(key, h.salt[:])
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}

	rounds := uint64(1) << uint(h.cost)
	for i := uint64(0); i < rounds; i++ {
		blowfish.ExpandKey(key, c)
		blowfish.ExpandKey(h.salt[:], c)
	}

	digest := []byte("OrpheanBeholderScryDoubt")
	for i := 0; i < cipherDataSize; i += 8 {
		for j := 0; j < 64; j++ {
			c.Encrypt(digest[i:i+8], digest[i:i+8])
		}
	}

	return fmt.Sprintf("$2b$%02d$%s%s", h.cost, h.encodedSalt, bcryptEncoding.EncodeToString(digest[:encodedDigest])), nil
}

// Verify checks password against any well-formed bcrypt hash, whatever its
// salt or cost. A malformed hash fails closed with AUTH_INVALID_HASH.
func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	if len(password) > maxPasswordBytes {
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
}

var _ PasswordHasher = (*BcryptHasher)(nil)
