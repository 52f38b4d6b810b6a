package domexport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/iurnickita/merchantsync/internal/model"
	"github.com/iurnickita/merchantsync/internal/source"
	"github.com/iurnickita/merchantsync/internal/source/config"
)

var ErrNoExport = errors.New("dom export path is not configured")

// Export - снимок отрисованной таблицы транзакций портала.
type Export struct {
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

// column describes which raw key a table column feeds. Keywords are matched
// against lower-cased header text; earlier keyword groups win.
type column struct {
	key      string
	keywords [][]string
}

var columns = []column{
	{key: "time", keywords: [][]string{{"tanggal", "waktu", "date", "time"}}},
	{key: "order_id", keywords: [][]string{{"id pesanan", "order id"}, {"pesanan"}}},
	{key: "gopay_reference_id", keywords: [][]string{{"referensi", "gopay", "reference"}}},
	{key: "order_type", keywords: [][]string{{"tipe pesanan", "order type", "jenis"}}},
	{key: "payment_type", keywords: [][]string{{"pembayaran", "payment", "metode"}}},
	{key: "gross_amount", keywords: [][]string{{"penjualan", "kotor", "gross"}, {"total", "amount", "jumlah", "nominal"}}},
	{key: "status", keywords: [][]string{{"status"}}},
}

type adapter struct {
	path   string
	zaplog *zap.Logger
}

func NewAdapter(cfg config.Config, zaplog *zap.Logger) source.Adapter {
	return &adapter{path: cfg.DOMExportPath, zaplog: zaplog}
}

// The export is a point-in-time capture; the date range is applied later through occurredDate.
func (a *adapter) FetchRawRecords(_ context.Context, kind model.SourceKind, _ model.DateRange) ([]model.RawRecord, error) {
	if kind != model.SourceKindDOM {
		return nil, fmt.Errorf("%w: dom export serves %q, got %q", source.ErrUnsupportedKind, model.SourceKindDOM, kind)
	}
	if a.path == "" {
		return nil, fmt.Errorf("%w: %w", source.ErrTransport, ErrNoExport)
	}

	data, err := os.ReadFile(a.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrTransport, err)
	}
	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("%w: dom export: %w", source.ErrTransport, err)
	}

	mapping := MapColumns(export.Headers)
	a.zaplog.Debug("dom export column mapping",
		zap.Strings("headers", export.Headers),
		zap.Any("mapping", mapping),
	)
	return Records(export, mapping), nil
}

// MapColumns returns raw key -> column index for the recognised headers.
func MapColumns(headers []string) map[string]int {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	mapping := make(map[string]int, len(columns))
	for _, col := range columns {
		if i, ok := findColumn(lowered, col.keywords); ok {
			mapping[col.key] = i
		}
	}
	return mapping
}

func findColumn(headers []string, groups [][]string) (int, bool) {
	for _, group := range groups {
		for i, h := range headers {
			for _, keyword := range group {
				if strings.Contains(h, keyword) {
					return i, true
				}
			}
		}
	}
	return 0, false
}

// Records turns table rows into dom raw records; empty rows are skipped.
func Records(export Export, mapping map[string]int) []model.RawRecord {
	records := make([]model.RawRecord, 0, len(export.Rows))
	for _, row := range export.Rows {
		if len(row) == 0 {
			continue
		}
		data := make(map[string]any, len(mapping))
		for key, i := range mapping {
			if i >= len(row) || row[i] == nil {
				continue
			}
			data[key] = strings.TrimSpace(cast.ToString(row[i]))
		}
		records = append(records, model.RawRecord{Kind: model.SourceKindDOM, Data: data})
	}
	return records
}
