// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"github.com/quizhub/quizhub/internal/locale"
)

// TokenTTL is how long a session token stays valid after issuance.
const TokenTTL = time.Hour

// SessionClaims is the trusted content of a verified session token.
type SessionClaims struct {
	Username  string
	Locale    locale.ID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// tokenClaims is the signed JWT payload.
type tokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"usrnm"`
	LangID   uint8  `json:"lang_id"`
}

// TokenCodec signs and verifies HS256 session tokens.
type TokenCodec struct {
	key    []byte
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption configures a TokenCodec.
type TokenOption func(*TokenCodec)

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// NewTokenCodec creates a codec signing with key. The key is copied.
func NewTokenCodec(key []byte, opts ...TokenOption) (*TokenCodec, error) {
	if len(key) == 0 {
		return nil, oops.Code("AUTH_INVALID_SIGNING_KEY").Errorf("token signing key is required")
	}

	c := &TokenCodec{
		key: append([]byte(nil), key...),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

// Encode mints a token for username in the given display locale.
func (c *TokenCodec) Encode(username string, id locale.ID) (string, error) {
	if username == "" {
		return "", oops.Code("AUTH_TOKEN_ENCODE_FAILED").Errorf("username is required")
	}
	if !id.Valid() {
		return "", oops.Code("AUTH_TOKEN_ENCODE_FAILED").
			With("locale", int(id)).
			Errorf("unsupported locale id %d", id)
	}

	now := c.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		Username: username,
		LangID:   uint8(id),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_ENCODE_FAILED").Wrap(err)
	}
	return signed, nil
}

// Decode verifies token and returns its claims. Every failure, whether a
// malformed token, a bad signature, or an expired one, wraps ErrInvalidToken.
func (c *TokenCodec) Decode(token string) (*SessionClaims, error) {
	var claims tokenClaims
	_, err := c.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return nil, oops.Code("AUTH_INVALID_TOKEN").Wrapf(ErrInvalidToken, "%v", err)
	}

	id := locale.ID(claims.LangID)
	if claims.Username == "" || !id.Valid() {
		return nil, oops.Code("AUTH_INVALID_TOKEN").
			With("locale", int(claims.LangID)).
			Wrapf(ErrInvalidToken, "token claims out of range")
	}

	out := &SessionClaims{
		Username: claims.Username,
		Locale:   id,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
