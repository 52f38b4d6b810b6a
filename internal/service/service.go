package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iurnickita/merchantsync/internal/model"
	"github.com/iurnickita/merchantsync/internal/normalizer"
	"github.com/iurnickita/merchantsync/internal/service/config"
	"github.com/iurnickita/merchantsync/internal/source"
	"github.com/iurnickita/merchantsync/internal/store"
	"github.com/iurnickita/merchantsync/internal/summary"
)

// Method - способ получения транзакций за запуск.
type Method string

const (
	MethodAPI    Method = "api"
	MethodDOM    Method = "dom"
	MethodHybrid Method = "hybrid"
)

type Service interface {
	Run(ctx context.Context, method Method, dr model.DateRange) (Report, error)
	Location() *time.Location
	GetTransactions(ctx context.Context, date string) ([]model.Transaction, error)
	GetSummary(ctx context.Context, date string) (model.DailySummary, error)
}

// Report - итог одного запуска.
type Report struct {
	Batch            model.Batch          `json:"batch"`
	Excluded         int                  `json:"excluded"`
	AmountUnresolved int                  `json:"amountUnresolved"`
	Upsert           store.BatchResult    `json:"upsert"`
	Summaries        []model.DailySummary `json:"summaries"`
	ArtifactPath     string               `json:"artifactPath,omitempty"`
}

var (
	ErrUnknownMethod = errors.New("unknown fetch method")
	ErrNoAdapter     = errors.New("no source adapter for kind")
	ErrBadDate       = errors.New("date must be YYYY-MM-DD")
	ErrNoRows        = errors.New("no rows")
)

// Adapters - адаптеры источников по виду записей.
type Adapters map[model.SourceKind]source.Adapter

type service struct {
	cfg      config.Config
	location *time.Location
	store    store.Store
	summary  summary.Summary
	adapters Adapters
	now      func() time.Time
	zaplog   *zap.Logger
}

func NewService(cfg config.Config, store store.Store, adapters Adapters, zaplog *zap.Logger) (Service, error) {
	location := time.UTC
	if cfg.TimeZone != "" {
		var err error
		location, err = time.LoadLocation(cfg.TimeZone)
		if err != nil {
			return nil, err
		}
	}

	service := service{
		cfg:      cfg,
		location: location,
		store:    store,
		summary:  summary.NewSummary(store, zaplog),
		adapters: adapters,
		now:      time.Now,
		zaplog:   zaplog,
	}

	return &service, nil
}

func (service *service) Location() *time.Location {
	return service.location
}

func kindsOf(method Method) ([]model.SourceKind, error) {
	switch method {
	case MethodAPI:
		return []model.SourceKind{model.SourceKindAPI}, nil
	case MethodDOM:
		return []model.SourceKind{model.SourceKindDOM}, nil
	case MethodHybrid:
		return []model.SourceKind{model.SourceKindDOM, model.SourceKindAPI}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}

// Run выполняет один запуск: получение, нормализация, запись, пересчет итогов.
// Ошибка получения или недоступность хранилища прерывают запуск до пересчета итогов.
func (service *service) Run(ctx context.Context, method Method, dr model.DateRange) (Report, error) {
	kinds, err := kindsOf(method)
	if err != nil {
		return Report{}, err
	}

	capturedAt := service.now().UTC()
	report := Report{Batch: model.Batch{
		RunID:          uuid.NewString(),
		CapturedAt:     capturedAt,
		DateRangeLabel: dr.Label,
		Method:         string(method),
	}}
	runlog := service.zaplog.With(zap.String("run_id", report.Batch.RunID), zap.String("method", string(method)))

	norm := normalizer.NewNormalizer(normalizer.Options{
		Location:           service.location,
		SynthesizeDOMMinor: service.cfg.SynthesizeDOMMinor,
		Now:                func() time.Time { return capturedAt },
	}, runlog)

	// Получение и нормализация по каждому виду
	byKind := make(map[model.SourceKind][]model.Transaction, len(kinds))
	for _, kind := range kinds {
		adapter, ok := service.adapters[kind]
		if !ok {
			return report, fmt.Errorf("%w: %s", ErrNoAdapter, kind)
		}
		records, err := adapter.FetchRawRecords(ctx, kind, dr)
		if err != nil {
			return report, fmt.Errorf("fetch %s records: %w", kind, err)
		}
		runlog.Info("raw records fetched", zap.String("kind", string(kind)), zap.Int("count", len(records)))

		result := norm.NormalizeAll(records)
		report.Excluded += result.Excluded
		byKind[kind] = result.Transactions
	}

	var transactions []model.Transaction
	if method == MethodHybrid {
		transactions = normalizer.Reconcile(byKind[model.SourceKindDOM], byKind[model.SourceKindAPI])
	} else {
		transactions = byKind[kinds[0]]
	}
	for _, tx := range transactions {
		if tx.AmountSource == model.AmountSourceUnknown {
			report.AmountUnresolved++
		}
	}
	report.Batch.Transactions = transactions
	report.Batch.TotalCount = len(transactions)

	// Запись
	report.Upsert, err = service.store.TransactionUpsertBatch(ctx, transactions)
	if err != nil {
		return report, fmt.Errorf("upsert batch: %w", err)
	}

	// Итоги за все дни диапазона и за дни, попавшие в выгрузку
	report.Summaries, err = service.summary.RecomputeDays(ctx, summaryDays(dr, transactions))
	if err != nil {
		return report, err
	}

	if service.cfg.OutputDir != "" {
		report.ArtifactPath, err = service.writeArtifact(report.Batch)
		if err != nil {
			return report, fmt.Errorf("write run artifact: %w", err)
		}
	}

	runlog.Info("run finished",
		zap.Int("transactions", report.Batch.TotalCount),
		zap.Int("excluded", report.Excluded),
		zap.Int("amount_unresolved", report.AmountUnresolved),
		zap.Int("upserted", report.Upsert.Succeeded),
		zap.Int("upsert_failed", report.Upsert.Failed),
		zap.Int("summaries", len(report.Summaries)),
	)
	return report, nil
}

func summaryDays(dr model.DateRange, transactions []model.Transaction) []string {
	seen := make(map[string]bool)
	var days []string
	for _, day := range dr.Days() {
		seen[day] = true
		days = append(days, day)
	}
	for _, tx := range transactions {
		if tx.OccurredDate != "" && !seen[tx.OccurredDate] {
			seen[tx.OccurredDate] = true
			days = append(days, tx.OccurredDate)
		}
	}
	sort.Strings(days)
	return days
}

// writeArtifact сохраняет выгрузку как transactions_<method>_<timestamp>.json.
func (service *service) writeArtifact(batch model.Batch) (string, error) {
	if err := os.MkdirAll(service.cfg.OutputDir, 0o755); err != nil {
		return "", err
	}
	timestamp := strings.NewReplacer(":", "-", ".", "-").Replace(batch.CapturedAt.Format("2006-01-02T15:04:05.000Z"))
	path := filepath.Join(service.cfg.OutputDir, "transactions_"+batch.Method+"_"+timestamp+".json")

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, data, 0o644)
}

func (service *service) parseDate(date string) (string, error) {
	day, err := time.ParseInLocation(model.DateLayout, date, service.location)
	if err != nil {
		return "", ErrBadDate
	}
	return day.Format(model.DateLayout), nil
}

func (service *service) GetTransactions(ctx context.Context, date string) ([]model.Transaction, error) {
	day, err := service.parseDate(date)
	if err != nil {
		return nil, err
	}
	return service.store.TransactionGetByDate(ctx, day)
}

func (service *service) GetSummary(ctx context.Context, date string) (model.DailySummary, error) {
	day, err := service.parseDate(date)
	if err != nil {
		return model.DailySummary{}, err
	}
	daily, err := service.summary.Get(ctx, day)
	if errors.Is(err, store.ErrNoRows) {
		return model.DailySummary{}, ErrNoRows
	}
	return daily, err
}
