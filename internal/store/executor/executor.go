package executor

import (
	"context"
	"errors"
	"fmt"
)

// Row is one result row keyed by column name. Value types depend on the backend.
type Row map[string]any

// Executor runs a single SQL statement with positional "?" parameters.
type Executor interface {
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
	Close() error
}

// ErrTransport: хранилище недоступно (сеть, авторизация, лимиты).
var ErrTransport = errors.New("storage transport failure")

// StatementError means the storage was reached but rejected the statement.
type StatementError struct {
	Code    string
	Message string
}

func (e *StatementError) Error() string {
	if e.Code == "" {
		return "statement rejected: " + e.Message
	}
	return fmt.Sprintf("statement rejected (%s): %s", e.Code, e.Message)
}

// Transport wraps err so that errors.Is(err, ErrTransport) holds.
func Transport(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}
