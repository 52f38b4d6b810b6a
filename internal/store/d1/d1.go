package d1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/iurnickita/merchantsync/internal/logger"
	"github.com/iurnickita/merchantsync/internal/store/executor"
)

const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

type Options struct {
	BaseURL    string
	AccountID  string
	DatabaseID string
	APIToken   string
}

var ErrNotConfigured = errors.New("d1 account, database and token are required")

// JSON запрос/ответ D1 query API
type queryRequest struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

type queryResponse struct {
	Success bool          `json:"success"`
	Errors  []apiMessage  `json:"errors"`
	Result  []queryResult `json:"result"`
}

type queryResult struct {
	Success bool             `json:"success"`
	Results []map[string]any `json:"results"`
}

type apiMessage struct {
	Code    json.Number `json:"code"`
	Message string      `json:"message"`
}

type d1Executor struct {
	client *resty.Client
	path   string
}

func NewExecutor(opts Options, zaplog *zap.Logger) (executor.Executor, error) {
	if opts.AccountID == "" || opts.DatabaseID == "" || opts.APIToken == "" {
		return nil, ErrNotConfigured
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetAuthToken(opts.APIToken).
		SetHeader("Content-Type", "application/json").
		OnAfterResponse(logger.RestyLogHook(zaplog))

	return &d1Executor{
		client: client,
		path:   fmt.Sprintf("/accounts/%s/d1/database/%s/query", opts.AccountID, opts.DatabaseID),
	}, nil
}

func (e *d1Executor) Query(ctx context.Context, query string, args ...any) ([]executor.Row, error) {
	if args == nil {
		args = []any{}
	}

	req := e.client.R().SetContext(ctx)
	req.Method = http.MethodPost
	req.URL = e.path
	req.SetBody(queryRequest{SQL: query, Params: args})
	resp, err := req.Send()
	if err != nil {
		return nil, executor.Transport(err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized, code == http.StatusForbidden, code == http.StatusTooManyRequests, code >= 500:
		return nil, executor.Transport(fmt.Errorf("d1 query status: %d", code))
	}

	var answer queryResponse
	dec := json.NewDecoder(bytes.NewReader(resp.Body()))
	dec.UseNumber()
	if err := dec.Decode(&answer); err != nil {
		return nil, executor.Transport(fmt.Errorf("d1 query status %d: %w", resp.StatusCode(), err))
	}

	if !answer.Success {
		return nil, statementError(answer.Errors)
	}
	if len(answer.Result) == 0 {
		return nil, nil
	}
	if !answer.Result[0].Success {
		return nil, statementError(answer.Errors)
	}

	rows := make([]executor.Row, 0, len(answer.Result[0].Results))
	for _, result := range answer.Result[0].Results {
		rows = append(rows, executor.Row(result))
	}
	return rows, nil
}

func (e *d1Executor) Close() error {
	return nil
}

func statementError(messages []apiMessage) error {
	if len(messages) == 0 {
		return &executor.StatementError{Message: "unknown d1 error"}
	}
	return &executor.StatementError{
		Code:    messages[0].Code.String(),
		Message: messages[0].Message,
	}
}
