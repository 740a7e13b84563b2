// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/locale"
)

type flowFixture struct {
	svc      *auth.Service
	codec    *auth.TokenCodec
	accounts *memoryAccounts
}

func newFlowFixture(t *testing.T, cfg auth.ServiceConfig) flowFixture {
	t.Helper()
	accounts := newMemoryAccounts()
	codec := newTestCodec(t, &fakeClock{now: time.Now()})
	svc, err := auth.NewAuthService(accounts, newTestHasher(t), codec, cfg)
	require.NoError(t, err)
	return flowFixture{svc: svc, codec: codec, accounts: accounts}
}

func TestFlow_RegisterThenLogin(t *testing.T) {
	f := newFlowFixture(t, auth.ServiceConfig{HonorLoginLocale: true})
	ctx := context.Background()

	regToken, err := f.svc.Register(ctx, "alice123", "Secret1!", locale.Russian)
	require.NoError(t, err)

	claims, err := f.codec.Decode(regToken)
	require.NoError(t, err)
	assert.Equal(t, "alice123", claims.Username)
	assert.Equal(t, locale.Russian, claims.Locale)

	stored, err := f.accounts.GetByUsername(ctx, "alice123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1!", stored.PasswordHash)
	assert.Equal(t, auth.Scores{}, stored.Scores)

	loginToken, err := f.svc.Login(ctx, "alice123", "Secret1!", locale.English)
	require.NoError(t, err)
	claims, err = f.codec.Decode(loginToken)
	require.NoError(t, err)
	assert.Equal(t, "alice123", claims.Username)
	assert.Equal(t, locale.English, claims.Locale)
}

func TestFlow_WrongPassword(t *testing.T) {
	f := newFlowFixture(t, auth.ServiceConfig{})
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "alice123", "Secret1!", locale.English)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "alice123", "Secret2!", locale.English)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrWrongCredentials)
	assert.Equal(t, []string{"Wrong username of password"},
		locale.Texts(auth.MessageKeys(err), locale.English))
}

func TestFlow_UnknownUser(t *testing.T) {
	f := newFlowFixture(t, auth.ServiceConfig{})

	_, err := f.svc.Login(context.Background(), "ghost123", "Secret1!", locale.English)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrNotRegistered)
}

func TestFlow_DuplicateRegistration(t *testing.T) {
	f := newFlowFixture(t, auth.ServiceConfig{})
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "alice123", "Secret1!", locale.English)
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, "alice123", "Another1!", locale.English)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)

	_, err = f.svc.Login(ctx, "alice123", "Secret1!", locale.English)
	require.NoError(t, err, "original password still works")
}

func TestFlow_ConcurrentRegistrationOfSameName(t *testing.T) {
	f := newFlowFixture(t, auth.ServiceConfig{MaxConcurrentHashes: 2})
	ctx := context.Background()

	const racers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		taken     int
	)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Register(ctx, "racer123", "Secret1!", locale.English)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, auth.ErrUsernameTaken):
				taken++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, racers-1, taken)
	assert.Equal(t, 1, f.accounts.creates)
}

func TestFlow_ChangeLocaleKeepsUser(t *testing.T) {
	f := newFlowFixture(t, auth.ServiceConfig{})

	token, err := f.svc.ChangeLocale("alice123", locale.Russian)
	require.NoError(t, err)

	claims, err := f.codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "alice123", claims.Username)
	assert.Equal(t, locale.Russian, claims.Locale)
}
