package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iurnickita/merchantsync/internal/model"
	"github.com/iurnickita/merchantsync/internal/store/config"
	"github.com/iurnickita/merchantsync/internal/store/d1"
	"github.com/iurnickita/merchantsync/internal/store/executor"
	"github.com/iurnickita/merchantsync/internal/store/postgres"
)

type Store interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	TransactionUpsert(ctx context.Context, tx model.Transaction) error
	TransactionUpsertBatch(ctx context.Context, txs []model.Transaction) (BatchResult, error)
	TransactionGet(ctx context.Context, orderID string) (model.Transaction, error)
	TransactionGetByDate(ctx context.Context, date string) ([]model.Transaction, error)
	TransactionCount(ctx context.Context) (int64, error)
	TransactionDelete(ctx context.Context, orderID string) error
	SummaryRecompute(ctx context.Context, date string) (model.DailySummary, error)
	SummaryGet(ctx context.Context, date string) (model.DailySummary, error)
	SelfCheck(ctx context.Context) error
	Close() error
}

// BatchResult - итог пакетной записи: сколько строк записано и сколько отклонено.
type BatchResult struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

var (
	ErrNoRows             = errors.New("no rows")
	ErrTransport          = executor.ErrTransport
	ErrInvalidTransaction = errors.New("transaction is not storable")
	ErrUnknownDriver      = errors.New("unknown store driver")
	ErrSelfCheck          = errors.New("store self-check failed")
)

const defaultWorkers = 4

type store struct {
	exec    executor.Executor
	workers int
	now     func() time.Time
	zaplog  *zap.Logger
}

func NewStore(cfg config.Config, zaplog *zap.Logger) (Store, error) {
	var (
		exec executor.Executor
		err  error
	)
	switch cfg.Driver {
	case "", config.DriverPostgres:
		exec, err = postgres.NewExecutor(cfg.DBDsn)
	case config.DriverD1:
		exec, err = d1.NewExecutor(d1.Options{
			BaseURL:    cfg.D1BaseURL,
			AccountID:  cfg.D1AccountID,
			DatabaseID: cfg.D1DatabaseID,
			APIToken:   cfg.D1APIToken,
		}, zaplog)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	return newStore(exec, cfg.Workers, zaplog), nil
}

func newStore(exec executor.Executor, workers int, zaplog *zap.Logger) *store {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &store{
		exec:    exec,
		workers: workers,
		now:     time.Now,
		zaplog:  zaplog,
	}
}

func (store *store) Migrate(ctx context.Context) error {
	for _, statement := range schema {
		if _, err := store.exec.Query(ctx, statement); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (store *store) Ping(ctx context.Context) error {
	_, err := store.exec.Query(ctx, sqlPing)
	return err
}

func (store *store) TransactionUpsert(ctx context.Context, tx model.Transaction) error {
	if tx.OrderID == "" {
		return fmt.Errorf("%w: empty order id", ErrInvalidTransaction)
	}
	if tx.GrossAmountMinor < 0 {
		return fmt.Errorf("%w: negative amount for order %s", ErrInvalidTransaction, tx.OrderID)
	}

	// Запись или перезапись транзакции, created_at не трогаем
	_, err := store.exec.Query(ctx, sqlUpsertTransaction, transactionArgs(tx, store.now())...)
	return err
}

// TransactionUpsertBatch writes every transaction independently: a rejected
// row is counted and logged, a transport failure stops the batch. Rows sharing
// an order id are written one after another in input order.
func (store *store) TransactionUpsertBatch(ctx context.Context, txs []model.Transaction) (BatchResult, error) {
	var (
		mu     sync.Mutex
		result BatchResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(store.workers)

	for _, group := range groupByOrder(txs) {
		g.Go(func() error {
			for _, tx := range group {
				err := store.TransactionUpsert(gctx, tx)
				if errors.Is(err, ErrTransport) {
					return err
				}

				mu.Lock()
				if err != nil {
					result.Failed++
				} else {
					result.Succeeded++
				}
				mu.Unlock()

				if err != nil {
					store.zaplog.Error("transaction upsert failed",
						zap.String("order_id", tx.OrderID),
						zap.Error(err),
					)
				}
			}
			return nil
		})
	}

	err := g.Wait()
	return result, err
}

func groupByOrder(txs []model.Transaction) [][]model.Transaction {
	index := make(map[string]int, len(txs))
	var groups [][]model.Transaction
	for _, tx := range txs {
		i, ok := index[tx.OrderID]
		if !ok {
			i = len(groups)
			index[tx.OrderID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], tx)
	}
	return groups
}

func (store *store) TransactionGet(ctx context.Context, orderID string) (model.Transaction, error) {
	rows, err := store.exec.Query(ctx, sqlSelectTransaction, orderID)
	if err != nil {
		return model.Transaction{}, err
	}
	if len(rows) == 0 {
		return model.Transaction{}, ErrNoRows
	}
	return transactionFromRow(rows[0])
}

func (store *store) TransactionGetByDate(ctx context.Context, date string) ([]model.Transaction, error) {
	rows, err := store.exec.Query(ctx, sqlSelectTransactionsByDate, date)
	if err != nil {
		return nil, err
	}
	var txs []model.Transaction
	for _, row := range rows {
		tx, err := transactionFromRow(row)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (store *store) TransactionCount(ctx context.Context) (int64, error) {
	rows, err := store.exec.Query(ctx, sqlCountTransactions)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rowInt64(rows[0], "count")
}

// TransactionDelete используется только для очистки (self-check).
func (store *store) TransactionDelete(ctx context.Context, orderID string) error {
	_, err := store.exec.Query(ctx, sqlDeleteTransaction, orderID)
	return err
}

// SummaryRecompute derives the day's totals from the stored transactions and
// overwrites the summary row. Days without transactions get a zero summary.
func (store *store) SummaryRecompute(ctx context.Context, date string) (model.DailySummary, error) {
	rows, err := store.exec.Query(ctx, sqlSelectAmountsByDate, date)
	if err != nil {
		return model.DailySummary{}, err
	}

	summary := model.DailySummary{
		Date:        date,
		TotalAmount: decimal.Zero,
		UpdatedAt:   store.now().UTC(),
	}
	for _, row := range rows {
		minor, err := rowInt64(row, "gross_amount_minor")
		if err != nil {
			return model.DailySummary{}, err
		}
		major, err := rowDecimal(row, "gross_amount_major")
		if err != nil {
			return model.DailySummary{}, err
		}
		summary.TotalTransactions++
		summary.TotalAmountCents += minor
		summary.TotalAmount = summary.TotalAmount.Add(major)
	}

	if _, err := store.exec.Query(ctx, sqlUpsertSummary, summaryArgs(summary)...); err != nil {
		return model.DailySummary{}, err
	}
	return summary, nil
}

func (store *store) SummaryGet(ctx context.Context, date string) (model.DailySummary, error) {
	rows, err := store.exec.Query(ctx, sqlSelectSummary, date)
	if err != nil {
		return model.DailySummary{}, err
	}
	if len(rows) == 0 {
		return model.DailySummary{}, ErrNoRows
	}
	return summaryFromRow(rows[0])
}

func (store *store) Close() error {
	return store.exec.Close()
}
