package summary

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iurnickita/merchantsync/internal/model"
	"github.com/iurnickita/merchantsync/internal/store"
)

type Summary interface {
	Recompute(ctx context.Context, dr model.DateRange) ([]model.DailySummary, error)
	RecomputeDays(ctx context.Context, days []string) ([]model.DailySummary, error)
	Get(ctx context.Context, date string) (model.DailySummary, error)
}

type summary struct {
	store  store.Store
	zaplog *zap.Logger
}

func NewSummary(store store.Store, zaplog *zap.Logger) Summary {
	return &summary{store: store, zaplog: zaplog}
}

// Recompute пересчитывает итоги за каждый день диапазона, включая дни без транзакций.
func (summary *summary) Recompute(ctx context.Context, dr model.DateRange) ([]model.DailySummary, error) {
	return summary.RecomputeDays(ctx, dr.Days())
}

func (summary *summary) RecomputeDays(ctx context.Context, days []string) ([]model.DailySummary, error) {
	summaries := make([]model.DailySummary, 0, len(days))
	for _, day := range days {
		daily, err := summary.store.SummaryRecompute(ctx, day)
		if err != nil {
			return summaries, fmt.Errorf("recompute summary %s: %w", day, err)
		}
		summary.zaplog.Info("daily summary recomputed",
			zap.String("date", daily.Date),
			zap.Int64("total_transactions", daily.TotalTransactions),
			zap.String("total_amount", daily.TotalAmount.StringFixed(2)),
			zap.Int64("total_amount_cents", daily.TotalAmountCents),
		)
		summaries = append(summaries, daily)
	}
	return summaries, nil
}

func (summary *summary) Get(ctx context.Context, date string) (model.DailySummary, error) {
	return summary.store.SummaryGet(ctx, date)
}
