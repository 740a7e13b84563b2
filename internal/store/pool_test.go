// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizhub/quizhub/pkg/errutil"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWaitReady(t *testing.T) {
	cfg := PoolConfig{ConnectAttempts: 3, ConnectBackoff: time.Millisecond}.withDefaults()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		db := &flakyPinger{failures: 2}
		require.NoError(t, waitReady(context.Background(), db, cfg))
		assert.Equal(t, 3, db.calls)
	})

	t.Run("gives up after the configured retries", func(t *testing.T) {
		db := &flakyPinger{failures: 100}
		err := waitReady(context.Background(), db, cfg)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "DB_CONNECT_FAILED")
		assert.Equal(t, 4, db.calls, "one attempt plus three retries")
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := waitReady(ctx, &flakyPinger{failures: 100}, cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPoolConfig_Defaults(t *testing.T) {
	cfg := PoolConfig{}.withDefaults()
	assert.Equal(t, uint64(DefaultConnectAttempts), cfg.ConnectAttempts)
	assert.Equal(t, DefaultConnectBackoff, cfg.ConnectBackoff)
	assert.NotNil(t, cfg.Logger)
}

func TestOpenPool_InvalidDSN(t *testing.T) {
	_, err := OpenPool(context.Background(), "postgres://%zz", PoolConfig{})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "DB_CONFIG_INVALID")
}
