// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/quizhub/quizhub/internal/store"
)

var _ = Describe("Accounts schema", Ordered, func() {
	var (
		ctx      context.Context
		migrator *store.Migrator
		pool     *pgxpool.Pool
	)

	BeforeAll(func() {
		ctx = context.Background()

		var err error
		migrator, err = store.NewMigrator(suiteDSN)
		Expect(err).NotTo(HaveOccurred())

		pool, err = store.OpenPool(ctx, suiteDSN, store.PoolConfig{ConnectBackoff: 100 * time.Millisecond})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if pool != nil {
			pool.Close()
		}
		if migrator != nil {
			Expect(migrator.Close()).To(Succeed())
		}
	})

	It("starts at version zero with everything pending", func() {
		st, err := migrator.Status()
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Version).To(BeZero())
		Expect(st.Dirty).To(BeFalse())
		Expect(st.Applied).To(BeEmpty())
		Expect(st.Pending).NotTo(BeEmpty())
	})

	It("applies every migration", func() {
		Expect(migrator.Up()).To(Succeed())

		st, err := migrator.Status()
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Pending).To(BeEmpty())
		Expect(st.Dirty).To(BeFalse())
	})

	It("treats a second Up as a no-op", func() {
		Expect(migrator.Up()).To(Succeed())
	})

	It("enforces unique usernames", func() {
		_, err := pool.Exec(ctx, `INSERT INTO accounts (username, password) VALUES ('alice123', 'h')`)
		Expect(err).NotTo(HaveOccurred())
		_, err = pool.Exec(ctx, `INSERT INTO accounts (username, password) VALUES ('alice123', 'h')`)
		Expect(err).To(MatchError(ContainSubstring("accounts_username_key")))
	})

	It("rejects negative scores", func() {
		_, err := pool.Exec(ctx, `UPDATE accounts SET algebra = -1 WHERE username = 'alice123'`)
		Expect(err).To(HaveOccurred())
	})

	It("steps down and back up", func() {
		latest, _, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())

		Expect(migrator.Steps(-1)).To(Succeed())
		version, _, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(latest - 1))

		Expect(migrator.Steps(1)).To(Succeed())
		version, _, err = migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(latest))
	})

	It("rolls everything back with Down", func() {
		Expect(migrator.Down()).To(Succeed())
		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(BeZero())
		Expect(dirty).To(BeFalse())

		var exists bool
		err = pool.QueryRow(ctx, `SELECT to_regclass('public.accounts') IS NOT NULL`).Scan(&exists)
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeFalse())
	})

	It("forces a version without running migrations", func() {
		Expect(migrator.Force(1)).To(Succeed())
		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(1)))
		Expect(dirty).To(BeFalse())
	})
})
