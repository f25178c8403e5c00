// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

// Package store provides database connectivity and schema management.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

const (
	pingBackoffBase = 500 * time.Millisecond
	pingMaxRetries  = 5
)

// Connect opens a pgx connection pool and verifies connectivity with a
// retried ping. Container orchestration often starts the service before the
// database accepts connections, so the ping backs off instead of failing on
// the first refusal.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("STORE_UNAVAILABLE").
			With("operation", "create connection pool").
			Wrap(err)
	}

	backoff := retry.WithMaxRetries(pingMaxRetries, retry.NewExponential(pingBackoffBase))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		pool.Close()
		return nil, oops.Code("STORE_UNAVAILABLE").
			With("operation", "ping database").
			Wrap(err)
	}

	return pool, nil
}
