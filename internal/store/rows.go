package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/iurnickita/merchantsync/internal/model"
	"github.com/iurnickita/merchantsync/internal/store/executor"
)

// Типы значений в строке зависят от драйвера: pgx отдает int64 и string (NUMERIC),
// D1 - json.Number.

func rowString(row executor.Row, column string) string {
	value := row[column]
	if value == nil {
		return ""
	}
	return cast.ToString(value)
}

func rowInt64(row executor.Row, column string) (int64, error) {
	switch v := row[column].(type) {
	case nil:
		return 0, nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", column, err)
		}
		return d.IntPart(), nil
	default:
		n, err := cast.ToInt64E(v)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", column, err)
		}
		return n, nil
	}
}

func rowDecimal(row executor.Row, column string) (decimal.Decimal, error) {
	var (
		d   decimal.Decimal
		err error
	)
	switch v := row[column].(type) {
	case nil:
		return decimal.Zero, nil
	case string:
		d, err = decimal.NewFromString(v)
	case []byte:
		d, err = decimal.NewFromString(string(v))
	case json.Number:
		d, err = decimal.NewFromString(v.String())
	case float64:
		d = decimal.NewFromFloat(v)
	case int64:
		d = decimal.NewFromInt(v)
	default:
		var n int64
		n, err = cast.ToInt64E(v)
		d = decimal.NewFromInt(n)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("column %s: %w", column, err)
	}
	return d, nil
}

func rowTime(row executor.Row, column string) (time.Time, error) {
	switch v := row[column].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v.UTC(), nil
	default:
		t, err := time.Parse(time.RFC3339Nano, cast.ToString(v))
		if err != nil {
			return time.Time{}, fmt.Errorf("column %s: %w", column, err)
		}
		return t.UTC(), nil
	}
}

func transactionArgs(tx model.Transaction, now time.Time) []any {
	var preciseTime any
	if tx.PreciseTime != "" {
		preciseTime = tx.PreciseTime
	}
	stamp := now.UTC().Format(time.RFC3339Nano)
	return []any{
		tx.OrderID,
		tx.OccurredAt,
		tx.OccurredDate,
		preciseTime,
		tx.GopayReferenceID,
		tx.OrderType,
		tx.PaymentType,
		tx.GrossAmountDisplay,
		tx.GrossAmountMinor,
		tx.GrossAmountMajor.StringFixed(2),
		tx.Status,
		string(tx.AmountSource),
		tx.ScrapedAt.UTC().Format(time.RFC3339Nano),
		stamp,
		stamp,
	}
}

func transactionFromRow(row executor.Row) (model.Transaction, error) {
	tx := model.Transaction{
		OrderID:            rowString(row, "order_id"),
		OccurredAt:         rowString(row, "occurred_at"),
		OccurredDate:       rowString(row, "occurred_date"),
		PreciseTime:        rowString(row, "precise_time"),
		GopayReferenceID:   rowString(row, "gopay_reference_id"),
		OrderType:          rowString(row, "order_type"),
		PaymentType:        rowString(row, "payment_type"),
		GrossAmountDisplay: rowString(row, "gross_amount_display"),
		Status:             rowString(row, "status"),
		AmountSource:       model.AmountSource(rowString(row, "amount_source")),
	}

	var err error
	if tx.GrossAmountMinor, err = rowInt64(row, "gross_amount_minor"); err != nil {
		return model.Transaction{}, err
	}
	if tx.GrossAmountMajor, err = rowDecimal(row, "gross_amount_major"); err != nil {
		return model.Transaction{}, err
	}
	if tx.ScrapedAt, err = rowTime(row, "scraped_at"); err != nil {
		return model.Transaction{}, err
	}
	return tx, nil
}

func summaryArgs(summary model.DailySummary) []any {
	return []any{
		summary.Date,
		summary.TotalTransactions,
		summary.TotalAmount.StringFixed(2),
		summary.TotalAmountCents,
		summary.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func summaryFromRow(row executor.Row) (model.DailySummary, error) {
	summary := model.DailySummary{Date: rowString(row, "date")}

	var err error
	if summary.TotalTransactions, err = rowInt64(row, "total_transactions"); err != nil {
		return model.DailySummary{}, err
	}
	if summary.TotalAmount, err = rowDecimal(row, "total_amount"); err != nil {
		return model.DailySummary{}, err
	}
	if summary.TotalAmountCents, err = rowInt64(row, "total_amount_cents"); err != nil {
		return model.DailySummary{}, err
	}
	if summary.UpdatedAt, err = rowTime(row, "updated_at"); err != nil {
		return model.DailySummary{}, err
	}
	return summary, nil
}
