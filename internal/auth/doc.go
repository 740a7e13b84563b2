// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

// Package auth provides account authentication for QuizHub.
//
// # Domain Types
//
//   - Account - a registered user with a bcrypt password hash and per-subject scores
//   - SessionClaims - the decoded contents of a session token
//   - ValidationError - every credential rule a registration attempt violated
//
// # Components
//
//   - BcryptHasher - deterministic-salt bcrypt hashing and fail-closed verification
//   - TokenCodec - signed session tokens carrying the username and display locale
//   - AccountRepository - the storage contract, implemented in auth/postgres
//   - Service - the login and registration flows
//
// Services are created with New*Service constructors that validate dependencies.
// Errors carry oops codes and wrap the sentinels in errors.go; MessageKeys maps
// any of them to the localized messages a user should see.
package auth
