package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/iurnickita/merchantsync/internal/store/executor"
)

// Классы SQLSTATE, после которых повтор запроса имеет смысл: соединение,
// авторизация, ресурсы, вмешательство оператора.
var transportClasses = []string{"08", "28", "53", "57"}

type pgExecutor struct {
	database *sql.DB
}

func NewExecutor(dsn string) (executor.Executor, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, executor.Transport(err)
	}
	return &pgExecutor{database: db}, nil
}

func (e *pgExecutor) Query(ctx context.Context, query string, args ...any) ([]executor.Row, error) {
	rows, err := e.database.QueryContext(ctx, Rebind(query), args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, classify(err)
	}

	var result []executor.Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, classify(err)
		}
		row := make(executor.Row, len(columns))
		for i, column := range columns {
			row[column] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return result, nil
}

func (e *pgExecutor) Close() error {
	return e.database.Close()
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		for _, class := range transportClasses {
			if strings.HasPrefix(pgErr.Code, class) {
				return executor.Transport(err)
			}
		}
		return &executor.StatementError{Code: pgErr.Code, Message: pgErr.Message}
	}
	return executor.Transport(err)
}

// Rebind заменяет плейсхолдеры "?" на "$1", "$2", ... вне строковых литералов.
func Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	quoted := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			quoted = !quoted
			b.WriteByte(c)
		case c == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
