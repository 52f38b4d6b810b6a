// Package storetest provides an in-memory store.Store for tests of the
// packages built on top of the store.
package storetest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/merchantsync/internal/model"
	"github.com/iurnickita/merchantsync/internal/store"
)

type Store struct {
	mu           sync.Mutex
	transactions map[string]model.Transaction
	summaries    map[string]model.DailySummary

	// FailUpsert отклоняет запись заказа с указанной ошибкой.
	FailUpsert map[string]error
	// FailAll, если задан, возвращается всеми операциями.
	FailAll error

	Migrated   int
	Recomputed []string
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		transactions: map[string]model.Transaction{},
		summaries:    map[string]model.DailySummary{},
		FailUpsert:   map[string]error{},
	}
}

func (s *Store) Migrate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll != nil {
		return s.FailAll
	}
	s.Migrated++
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.FailAll
}

func (s *Store) TransactionUpsert(_ context.Context, tx model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll != nil {
		return s.FailAll
	}
	if err, ok := s.FailUpsert[tx.OrderID]; ok {
		return err
	}
	if tx.OrderID == "" || tx.GrossAmountMinor < 0 {
		return store.ErrInvalidTransaction
	}
	s.transactions[tx.OrderID] = tx
	return nil
}

func (s *Store) TransactionUpsertBatch(ctx context.Context, txs []model.Transaction) (store.BatchResult, error) {
	var result store.BatchResult
	for _, tx := range txs {
		err := s.TransactionUpsert(ctx, tx)
		switch {
		case errors.Is(err, store.ErrTransport):
			return result, err
		case err != nil:
			result.Failed++
		default:
			result.Succeeded++
		}
	}
	return result, nil
}

func (s *Store) TransactionGet(_ context.Context, orderID string) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll != nil {
		return model.Transaction{}, s.FailAll
	}
	tx, ok := s.transactions[orderID]
	if !ok {
		return model.Transaction{}, store.ErrNoRows
	}
	return tx, nil
}

func (s *Store) TransactionGetByDate(_ context.Context, date string) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll != nil {
		return nil, s.FailAll
	}
	var txs []model.Transaction
	for _, tx := range s.transactions {
		if tx.OccurredDate == date {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].OccurredAt != txs[j].OccurredAt {
			return txs[i].OccurredAt > txs[j].OccurredAt
		}
		return txs[i].OrderID < txs[j].OrderID
	})
	return txs, nil
}

func (s *Store) TransactionCount(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll != nil {
		return 0, s.FailAll
	}
	return int64(len(s.transactions)), nil
}

func (s *Store) TransactionDelete(_ context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll != nil {
		return s.FailAll
	}
	delete(s.transactions, orderID)
	return nil
}

func (s *Store) SummaryRecompute(_ context.Context, date string) (model.DailySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll != nil {
		return model.DailySummary{}, s.FailAll
	}
	summary := model.DailySummary{Date: date, TotalAmount: decimal.Zero}
	for _, tx := range s.transactions {
		if tx.OccurredDate != date {
			continue
		}
		summary.TotalTransactions++
		summary.TotalAmountCents += tx.GrossAmountMinor
		summary.TotalAmount = summary.TotalAmount.Add(tx.GrossAmountMajor)
	}
	s.summaries[date] = summary
	s.Recomputed = append(s.Recomputed, date)
	return summary, nil
}

func (s *Store) SummaryGet(_ context.Context, date string) (model.DailySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll != nil {
		return model.DailySummary{}, s.FailAll
	}
	summary, ok := s.summaries[date]
	if !ok {
		return model.DailySummary{}, store.ErrNoRows
	}
	return summary, nil
}

func (s *Store) SelfCheck(ctx context.Context) error {
	return s.Ping(ctx)
}

func (s *Store) Close() error {
	return nil
}
