package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Сырые записи источников

type SourceKind string

const (
	SourceKindDOM SourceKind = "dom"
	SourceKindAPI SourceKind = "api"
)

// RawRecord is one unnormalized record as produced by a source adapter.
// Data keeps whatever shape the upstream exposed (decoded JSON).
type RawRecord struct {
	Kind SourceKind
	Data map[string]any
}

// Транзакции

type AmountSource string

const (
	AmountSourceDOM       AmountSource = "dom"
	AmountSourceAPIDirect AmountSource = "api_direct"
	AmountSourceUnknown   AmountSource = "unknown"
	AmountSourceTest      AmountSource = "test"
)

type Transaction struct {
	OrderID            string          `json:"orderId"`
	OccurredAt         string          `json:"occurredAt"`
	OccurredDate       string          `json:"occurredDate"`
	PreciseTime        string          `json:"preciseTime,omitempty"`
	GopayReferenceID   string          `json:"gopayReferenceId"`
	OrderType          string          `json:"orderType"`
	PaymentType        string          `json:"paymentType"`
	GrossAmountDisplay string          `json:"grossAmountDisplay"`
	GrossAmountMinor   int64           `json:"grossAmountMinor"`
	GrossAmountMajor   decimal.Decimal `json:"grossAmountMajor"`
	Status             string          `json:"status"`
	AmountSource       AmountSource    `json:"amountSource"`
	ScrapedAt          time.Time       `json:"scrapedAt"`
}

// Дневные итоги

type DailySummary struct {
	Date              string          `json:"date"`
	TotalTransactions int64           `json:"totalTransactions"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	TotalAmountCents  int64           `json:"totalAmountCents"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Результат запуска

type Batch struct {
	RunID          string        `json:"runId"`
	CapturedAt     time.Time     `json:"capturedAt"`
	DateRangeLabel string        `json:"dateRange"`
	Method         string        `json:"method"`
	TotalCount     int           `json:"totalCount"`
	Transactions   []Transaction `json:"transactions"`
}
