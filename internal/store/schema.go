package store

import (
	"slices"
	"strings"
)

// Схема одна для Postgres и D1 (SQLite): время хранится текстом RFC 3339,
// суммы в рупиях - NUMERIC(20,2), в центах - BIGINT.
var schema = []string{
	// Таблица транзакций. Одна строка на заказ, повторная выгрузка перезаписывает строку
	"CREATE TABLE IF NOT EXISTS transactions (" +
		" order_id TEXT PRIMARY KEY," +
		" occurred_at TEXT NOT NULL DEFAULT ''," +
		" occurred_date TEXT NOT NULL," +
		" precise_time TEXT," +
		" gopay_reference_id TEXT NOT NULL DEFAULT ''," +
		" order_type TEXT NOT NULL DEFAULT ''," +
		" payment_type TEXT NOT NULL DEFAULT ''," +
		" gross_amount_display TEXT NOT NULL DEFAULT ''," +
		" gross_amount_minor BIGINT NOT NULL DEFAULT 0 CHECK (gross_amount_minor >= 0)," +
		" gross_amount_major NUMERIC(20,2) NOT NULL DEFAULT 0," +
		" status TEXT NOT NULL DEFAULT ''," +
		" amount_source TEXT NOT NULL DEFAULT 'unknown'," +
		" scraped_at TEXT NOT NULL," +
		" created_at TEXT NOT NULL," +
		" updated_at TEXT NOT NULL" +
		" )",
	"CREATE INDEX IF NOT EXISTS idx_transactions_occurred_date ON transactions (occurred_date)",
	// Дневные итоги, всегда пересчитываются целиком
	"CREATE TABLE IF NOT EXISTS daily_summary (" +
		" date TEXT PRIMARY KEY," +
		" total_transactions BIGINT NOT NULL," +
		" total_amount NUMERIC(20,2) NOT NULL," +
		" total_amount_cents BIGINT NOT NULL," +
		" updated_at TEXT NOT NULL" +
		" )",
}

var transactionColumns = []string{
	"order_id",
	"occurred_at",
	"occurred_date",
	"precise_time",
	"gopay_reference_id",
	"order_type",
	"payment_type",
	"gross_amount_display",
	"gross_amount_minor",
	"gross_amount_major",
	"status",
	"amount_source",
	"scraped_at",
	"created_at",
	"updated_at",
}

var summaryColumns = []string{
	"date",
	"total_transactions",
	"total_amount",
	"total_amount_cents",
	"updated_at",
}

var (
	sqlPing = "SELECT 1 AS ok"

	sqlUpsertTransaction = "INSERT INTO transactions (" + strings.Join(transactionColumns, ", ") + ")" +
		" VALUES (" + placeholders(len(transactionColumns)) + ")" +
		" ON CONFLICT (order_id) DO UPDATE SET " + updateSet(transactionColumns, "order_id", "created_at")

	sqlSelectTransaction = "SELECT " + strings.Join(transactionColumns, ", ") +
		" FROM transactions" +
		" WHERE order_id = ?"

	sqlSelectTransactionsByDate = "SELECT " + strings.Join(transactionColumns, ", ") +
		" FROM transactions" +
		" WHERE occurred_date = ?" +
		" ORDER BY occurred_at DESC, order_id"

	sqlSelectAmountsByDate = "SELECT gross_amount_minor, gross_amount_major" +
		" FROM transactions" +
		" WHERE occurred_date = ?"

	sqlCountTransactions = "SELECT COUNT(*) AS count FROM transactions"

	sqlDeleteTransaction = "DELETE FROM transactions WHERE order_id = ?"

	sqlUpsertSummary = "INSERT INTO daily_summary (" + strings.Join(summaryColumns, ", ") + ")" +
		" VALUES (" + placeholders(len(summaryColumns)) + ")" +
		" ON CONFLICT (date) DO UPDATE SET " + updateSet(summaryColumns, "date")

	sqlSelectSummary = "SELECT " + strings.Join(summaryColumns, ", ") +
		" FROM daily_summary" +
		" WHERE date = ?"
)

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// updateSet builds "col = excluded.col, ..." for every column except keep.
func updateSet(columns []string, keep ...string) string {
	var set []string
	for _, column := range columns {
		if slices.Contains(keep, column) {
			continue
		}
		set = append(set, column+" = excluded."+column)
	}
	return strings.Join(set, ", ")
}
