package normalizer

import (
	"strings"

	"github.com/iurnickita/merchantsync/internal/model"
)

const qrisPrefix = "QRIS-"

// Reconcile merges table rows with journal hits of the same run. A table row
// takes the API amount of its order when one is found; API rows without a table
// counterpart are appended so nothing fetched is lost.
func Reconcile(dom, api []model.Transaction) []model.Transaction {
	byID := make(map[string]int, len(api))
	for i, tx := range api {
		byID[tx.OrderID] = i
	}
	used := make([]bool, len(api))

	merged := make([]model.Transaction, 0, len(dom)+len(api))
	for _, tx := range dom {
		i, ok := byID[tx.OrderID]
		if !ok || used[i] {
			i, ok = findContaining(api, used, strings.TrimPrefix(tx.OrderID, qrisPrefix))
		}
		if ok {
			used[i] = true
			tx = withAPIAmount(tx, api[i])
		}
		merged = append(merged, tx)
	}

	seen := make(map[string]bool, len(merged))
	for _, tx := range merged {
		seen[tx.OrderID] = true
	}
	for i, tx := range api {
		if used[i] || seen[tx.OrderID] {
			continue
		}
		merged = append(merged, tx)
	}
	return merged
}

func findContaining(api []model.Transaction, used []bool, key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	for i, tx := range api {
		if !used[i] && strings.Contains(tx.OrderID, key) {
			return i, true
		}
	}
	return 0, false
}

func withAPIAmount(tx, apiTx model.Transaction) model.Transaction {
	if apiTx.AmountSource == model.AmountSourceAPIDirect {
		tx.GrossAmountMinor = apiTx.GrossAmountMinor
		tx.GrossAmountMajor = apiTx.GrossAmountMajor
		tx.GrossAmountDisplay = apiTx.GrossAmountDisplay
		tx.AmountSource = apiTx.AmountSource
	}
	if tx.PreciseTime == "" {
		tx.PreciseTime = apiTx.PreciseTime
	}
	if tx.GopayReferenceID == "" {
		tx.GopayReferenceID = apiTx.GopayReferenceID
	}
	return tx
}
