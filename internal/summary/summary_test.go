package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iurnickita/merchantsync/internal/model"
	"github.com/iurnickita/merchantsync/internal/store"
	"github.com/iurnickita/merchantsync/internal/store/storetest"
)

func TestRecompute(t *testing.T) {
	ctx := context.Background()
	st := storetest.New()
	for _, tx := range []model.Transaction{
		{OrderID: "A1", OccurredDate: "2024-01-01", GrossAmountMinor: 150000, GrossAmountMajor: decimal.New(150000, -2)},
		{OrderID: "A2", OccurredDate: "2024-01-03", GrossAmountMinor: 100, GrossAmountMajor: decimal.New(100, -2)},
	} {
		require.NoError(t, st.TransactionUpsert(ctx, tx))
	}

	dr, err := model.ParseDateRange("2024-01-01..2024-01-03", time.UTC, time.Now())
	require.NoError(t, err)

	s := NewSummary(st, zap.NewNop())
	summaries, err := s.Recompute(ctx, dr)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	require.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, st.Recomputed)

	require.Equal(t, int64(1), summaries[0].TotalTransactions)
	require.Equal(t, "1500.00", summaries[0].TotalAmount.StringFixed(2))
	require.Zero(t, summaries[1].TotalTransactions)
	require.Equal(t, int64(100), summaries[2].TotalAmountCents)

	got, err := s.Get(ctx, "2024-01-02")
	require.NoError(t, err)
	require.Equal(t, "2024-01-02", got.Date)

	_, err = s.Get(ctx, "2024-02-01")
	require.ErrorIs(t, err, store.ErrNoRows)
}

func TestRecomputeStoreFailure(t *testing.T) {
	st := storetest.New()
	st.FailAll = errors.Join(store.ErrTransport, errors.New("down"))

	dr, err := model.ParseDateRange("2024-01-01", time.UTC, time.Now())
	require.NoError(t, err)

	_, err = NewSummary(st, zap.NewNop()).Recompute(context.Background(), dr)
	require.ErrorIs(t, err, store.ErrTransport)
}
