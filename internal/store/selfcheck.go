package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iurnickita/merchantsync/internal/model"
)

const selfCheckPrefix = "TEST-"

// SelfCheck проверяет хранилище целиком: соединение, запись, чтение и удаление
// тестовой транзакции. Тестовая запись удаляется даже при ошибке проверки.
func (store *store) SelfCheck(ctx context.Context) (err error) {
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrSelfCheck, err)
	}
	count, err := store.TransactionCount(ctx)
	if err != nil {
		return fmt.Errorf("%w: count: %w", ErrSelfCheck, err)
	}
	store.zaplog.Info("store reachable", zap.Int64("transactions", count))

	now := store.now().UTC()
	probe := model.Transaction{
		OrderID:            selfCheckPrefix + strconv.FormatInt(now.UnixMilli(), 10),
		OccurredAt:         now.Format("2006-01-02T15:04:05.000Z"),
		OccurredDate:       now.Format(model.DateLayout),
		OrderType:          "Test",
		PaymentType:        "Test",
		GrossAmountDisplay: "Rp 1.000",
		GrossAmountMinor:   100000,
		GrossAmountMajor:   decimal.New(100000, -2),
		Status:             "Test",
		AmountSource:       model.AmountSourceTest,
		ScrapedAt:          now,
	}

	if err := store.TransactionUpsert(ctx, probe); err != nil {
		return fmt.Errorf("%w: insert: %w", ErrSelfCheck, err)
	}
	defer func() {
		if delErr := store.TransactionDelete(ctx, probe.OrderID); delErr != nil && err == nil {
			err = fmt.Errorf("%w: cleanup: %w", ErrSelfCheck, delErr)
		}
	}()

	got, err := store.TransactionGet(ctx, probe.OrderID)
	if err != nil {
		return fmt.Errorf("%w: read back: %w", ErrSelfCheck, err)
	}
	if got.GrossAmountMinor != probe.GrossAmountMinor ||
		!got.GrossAmountMajor.Equal(probe.GrossAmountMajor) ||
		got.AmountSource != model.AmountSourceTest {
		return fmt.Errorf("%w: read back %s differs from written record", ErrSelfCheck, probe.OrderID)
	}

	store.zaplog.Info("store self-check passed", zap.String("order_id", probe.OrderID))
	return nil
}
