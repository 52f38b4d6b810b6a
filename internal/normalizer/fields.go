package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// accessor reads one candidate location of a logical field from a raw record.
type accessor func(data map[string]any) (any, bool)

// path walks nested objects; a missing key or a null value is "absent".
func path(keys ...string) accessor {
	return func(data map[string]any) (any, bool) {
		var cur any = data
		for _, key := range keys {
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			cur, ok = obj[key]
			if !ok || cur == nil {
				return nil, false
			}
		}
		return cur, true
	}
}

// Порядок в цепочках важен: побеждает первый непустой кандидат.
var (
	orderIDChain = []accessor{
		path("order_id"),
		path("reference_id"),
		path("metadata", "transaction", "order_id"),
	}
	preciseTimeField = path("metadata", "transaction", "transaction_time")
	occurredAtChain  = []accessor{
		preciseTimeField,
		path("time"),
		path("created_at"),
	}
	gopayReferenceChain = []accessor{
		path("gopay_reference_id"),
		path("metadata", "gopay", "gopay_transaction_id"),
		path("reference_id"),
	}
	orderTypeChain = []accessor{
		path("order_type"),
		path("metadata", "gopay", "source"),
	}
	paymentTypeChain = []accessor{
		path("payment_type"),
		path("metadata", "transaction", "payment_type"),
	}
	statusChain = []accessor{
		path("status"),
		path("metadata", "transaction", "status"),
	}

	apiAmountField = path("amount")
	domAmountField = path("gross_amount")
)

// firstString returns the first non-empty trimmed string of the chain and the
// position of the accessor that produced it, or -1.
func firstString(data map[string]any, chain []accessor) (string, int) {
	for i, get := range chain {
		value, ok := get(data)
		if !ok {
			continue
		}
		text, ok := asString(value)
		if ok && text != "" {
			return text, i
		}
	}
	return "", -1
}

func asString(value any) (string, bool) {
	switch v := value.(type) {
	case map[string]any, []any:
		return "", false
	case string:
		return strings.TrimSpace(v), true
	}
	text, err := cast.ToStringE(value)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(text), true
}

// minorUnits reads an integral, non-negative amount in minor units.
func minorUnits(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		if v < 0 || v != math.Trunc(v) || v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	case bool:
		return 0, false
	}
	n, err := cast.ToInt64E(value)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
