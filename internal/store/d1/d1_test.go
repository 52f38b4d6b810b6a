package d1

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iurnickita/merchantsync/internal/store/executor"
)

func newTestExecutor(t *testing.T, h http.HandlerFunc) executor.Executor {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	exec, err := NewExecutor(Options{
		BaseURL:    srv.URL,
		AccountID:  "acct",
		DatabaseID: "db",
		APIToken:   "secret",
	}, zap.NewNop())
	require.NoError(t, err)
	return exec
}

func TestQuery(t *testing.T) {
	var got queryRequest
	exec := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/accounts/acct/d1/database/db/query", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"errors":[],"result":[{"success":true,"results":[` +
			`{"order_id":"A1","gross_amount_minor":150000,"gross_amount_major":1500.5}]}]}`))
	})

	rows, err := exec.Query(context.Background(), "SELECT * FROM transactions WHERE order_id = ?", "A1")
	require.NoError(t, err)

	require.Equal(t, "SELECT * FROM transactions WHERE order_id = ?", got.SQL)
	require.Equal(t, []any{"A1"}, got.Params)

	require.Len(t, rows, 1)
	require.Equal(t, "A1", rows[0]["order_id"])
	require.Equal(t, json.Number("150000"), rows[0]["gross_amount_minor"])
	require.Equal(t, json.Number("1500.5"), rows[0]["gross_amount_major"])
}

func TestQueryEmptyParams(t *testing.T) {
	var raw map[string]any
	exec := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &raw))
		w.Write([]byte(`{"success":true,"result":[{"success":true,"results":[]}]}`))
	})

	rows, err := exec.Query(context.Background(), "SELECT 1")
	require.NoError(t, err)
	require.Empty(t, rows)
	require.Equal(t, []any{}, raw["params"])
}

func TestQueryStatementRejected(t *testing.T) {
	exec := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"errors":[{"code":7500,"message":"CHECK constraint failed"}],"result":[]}`))
	})

	_, err := exec.Query(context.Background(), "INSERT INTO transactions VALUES (?)", 1)
	require.NotErrorIs(t, err, executor.ErrTransport)

	var stmtErr *executor.StatementError
	require.ErrorAs(t, err, &stmtErr)
	require.Equal(t, "7500", stmtErr.Code)
	require.Equal(t, "CHECK constraint failed", stmtErr.Message)
}

func TestQueryTransportFailures(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests, http.StatusBadGateway} {
		exec := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		})
		_, err := exec.Query(context.Background(), "SELECT 1")
		require.ErrorIs(t, err, executor.ErrTransport, "status %d", code)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	exec, err := NewExecutor(Options{BaseURL: url, AccountID: "a", DatabaseID: "d", APIToken: "t"}, zap.NewNop())
	require.NoError(t, err)
	_, err = exec.Query(context.Background(), "SELECT 1")
	require.ErrorIs(t, err, executor.ErrTransport)
}

func TestNewExecutorRequiresCredentials(t *testing.T) {
	_, err := NewExecutor(Options{AccountID: "a"}, zap.NewNop())
	require.ErrorIs(t, err, ErrNotConfigured)
}
