// Package testentry provides the fixtures shared by repository, service and
// controller tests: a fresh in-memory SQLite database with the full schema.
package testentry

import (
	"context"
	"database/sql"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"runclub.dev/backend/internal/model"
)

// DB opens an isolated in-memory database with every table created. The pool is
// capped at one connection: statements inside a transaction must therefore run
// on the transaction itself, which is what production code does anyway.
func DB(t testing.TB) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+xid.New().String()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, model.CreateSchema(context.Background(), db))

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
