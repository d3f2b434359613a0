package sqldb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	sqlite := &DB{Dialect: SQLite}
	assert.Equal(t, "SELECT a FROM t WHERE x=?1 AND y=?12", sqlite.Rebind("SELECT a FROM t WHERE x=$1 AND y=$12"))
	pg := &DB{Dialect: Postgres}
	assert.Equal(t, "x=$1", pg.Rebind("x=$1"))
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.EnsureSchema(ctx))
	require.NoError(t, db.EnsureSchema(ctx))

	_, err = db.ExecContext(ctx, `INSERT INTO reports (id, user_id, type, period_start, period_end, content, created_at_ms)
VALUES ($1,$2,$3,$4,$5,$6,$7)`, "r1", "u", "DAILY", "2024-01-01", "2024-01-01", "c", 1)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports WHERE user_id=$1`, "u").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpenRejectsEmpty(t *testing.T) {
	_, err := OpenSQLite(" ")
	assert.Error(t, err)
	_, err = OpenPostgres("")
	assert.Error(t, err)
}
