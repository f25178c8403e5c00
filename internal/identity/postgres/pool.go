// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

// Package postgres provides PostgreSQL implementations of the identity
// repositories.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// poolIface is the subset of pgxpool.Pool the repositories use. It is also
// satisfied by pgxmock.PgxPoolIface, which keeps the repositories testable
// without a live database.
type poolIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
