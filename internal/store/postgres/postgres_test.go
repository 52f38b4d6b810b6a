package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/iurnickita/merchantsync/internal/store/executor"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{query: "SELECT 1", want: "SELECT 1"},
		{query: "SELECT * FROM t WHERE a = ? AND b = ?", want: "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{query: "SELECT '?' FROM t WHERE a = ?", want: "SELECT '?' FROM t WHERE a = $1"},
		{query: "INSERT INTO t (a, b, c) VALUES (?, ?, ?)", want: "INSERT INTO t (a, b, c) VALUES ($1, $2, $3)"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Rebind(tt.query))
	}
}

func TestClassify(t *testing.T) {
	err := classify(&pgconn.PgError{Code: "08006", Message: "connection failure"})
	require.ErrorIs(t, err, executor.ErrTransport)

	err = classify(&pgconn.PgError{Code: "28P01", Message: "password authentication failed"})
	require.ErrorIs(t, err, executor.ErrTransport)

	err = classify(&pgconn.PgError{Code: "23514", Message: "check constraint"})
	require.NotErrorIs(t, err, executor.ErrTransport)
	var stmtErr *executor.StatementError
	require.ErrorAs(t, err, &stmtErr)
	require.Equal(t, "23514", stmtErr.Code)

	err = classify(errors.New("dial tcp: connection refused"))
	require.ErrorIs(t, err, executor.ErrTransport)
}

// Интеграционный тест: нужен доступный Postgres.
func TestExecutorQuery(t *testing.T) {
	dsn := os.Getenv("MERCHANTSYNC_TEST_DATABASE_URI")
	if dsn == "" {
		t.Skip("MERCHANTSYNC_TEST_DATABASE_URI is not set")
	}
	ctx := context.Background()

	exec, err := NewExecutor(dsn)
	require.NoError(t, err)
	defer exec.Close()

	rows, err := exec.Query(ctx, "SELECT ? AS a, ? AS b", "x", int64(2))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "x", rows[0]["a"])

	_, err = exec.Query(ctx, "SELECT * FROM merchantsync_no_such_table")
	var stmtErr *executor.StatementError
	require.ErrorAs(t, err, &stmtErr)
}
