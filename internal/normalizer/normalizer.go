package normalizer

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iurnickita/merchantsync/internal/model"
)

var ErrIdentifierMissing = errors.New("raw record has no usable order identifier")

type Options struct {
	// Location defines the business day used for OccurredDate.
	Location *time.Location
	// SynthesizeDOMMinor sets grossAmountMinor = parsed * 100 for table amounts.
	SynthesizeDOMMinor bool
	Now                func() time.Time
}

type Normalizer interface {
	Normalize(record model.RawRecord, scrapedAt time.Time) (model.Transaction, error)
	NormalizeAll(records []model.RawRecord) Result
}

// Result of a batch normalization. Excluded records had no identifier.
type Result struct {
	Transactions     []model.Transaction
	Excluded         int
	AmountUnresolved int
}

type normalizer struct {
	opts   Options
	zaplog *zap.Logger
}

func NewNormalizer(opts Options, zaplog *zap.Logger) Normalizer {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &normalizer{opts: opts, zaplog: zaplog}
}

func (n *normalizer) Normalize(record model.RawRecord, scrapedAt time.Time) (model.Transaction, error) {
	data := record.Data

	orderID, orderIDFrom := firstString(data, orderIDChain)
	if orderID == "" {
		return model.Transaction{}, ErrIdentifierMissing
	}

	tx := model.Transaction{
		OrderID:     orderID,
		OrderType:   stringOf(data, orderTypeChain),
		PaymentType: stringOf(data, paymentTypeChain),
		Status:      stringOf(data, statusChain),
		ScrapedAt:   scrapedAt,
	}

	// reference_id не дублируем, если он уже стал идентификатором заказа
	gopayRef, gopayRefFrom := firstString(data, gopayReferenceChain)
	if gopayRefFrom == len(gopayReferenceChain)-1 && orderIDFrom == 1 {
		gopayRef = ""
	}
	tx.GopayReferenceID = gopayRef

	tx.OccurredAt, _ = firstString(data, occurredAtChain)
	tx.PreciseTime, _ = firstString(data, []accessor{preciseTimeField})
	tx.OccurredDate = occurredDate(tx.OccurredAt, n.opts.Location, scrapedAt)

	n.resolveAmount(record, &tx)

	return tx, nil
}

func (n *normalizer) resolveAmount(record model.RawRecord, tx *model.Transaction) {
	tx.GrossAmountMajor = decimal.Zero
	tx.AmountSource = model.AmountSourceUnknown

	switch record.Kind {
	case model.SourceKindAPI:
		value, ok := apiAmountField(record.Data)
		if !ok {
			return
		}
		minor, ok := minorUnits(value)
		if !ok {
			return
		}
		tx.GrossAmountMinor = minor
		tx.GrossAmountMajor = MajorFromMinor(minor)
		tx.GrossAmountDisplay = FormatDisplayAmount(minor)
		tx.AmountSource = model.AmountSourceAPIDirect
	case model.SourceKindDOM:
		value, ok := domAmountField(record.Data)
		if !ok {
			return
		}
		text, ok := asString(value)
		if !ok {
			return
		}
		major, ok := parseDisplayAmount(text)
		if !ok {
			return
		}
		tx.GrossAmountMajor = decimal.NewFromInt(major)
		tx.GrossAmountDisplay = text
		if n.opts.SynthesizeDOMMinor {
			tx.GrossAmountMinor = major * minorPerMajor
		}
		tx.AmountSource = model.AmountSourceDOM
	}
}

func (n *normalizer) NormalizeAll(records []model.RawRecord) Result {
	scrapedAt := n.opts.Now().UTC()
	result := Result{Transactions: make([]model.Transaction, 0, len(records))}

	for i, record := range records {
		tx, err := n.Normalize(record, scrapedAt)
		if err != nil {
			result.Excluded++
			n.zaplog.Warn("raw record excluded",
				zap.Error(err),
				zap.Int("index", i),
				zap.String("kind", string(record.Kind)),
				zap.Strings("keys", keysOf(record.Data)),
			)
			continue
		}
		if tx.AmountSource == model.AmountSourceUnknown {
			result.AmountUnresolved++
			n.zaplog.Info("amount unresolved",
				zap.String("order_id", tx.OrderID),
				zap.String("kind", string(record.Kind)),
			)
		}
		result.Transactions = append(result.Transactions, tx)
	}

	return result
}

func stringOf(data map[string]any, chain []accessor) string {
	value, _ := firstString(data, chain)
	return value
}

func keysOf(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	return keys
}
