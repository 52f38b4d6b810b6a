package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/iurnickita/merchantsync/internal/config"
	"github.com/iurnickita/merchantsync/internal/handler"
	"github.com/iurnickita/merchantsync/internal/logger"
	"github.com/iurnickita/merchantsync/internal/model"
	"github.com/iurnickita/merchantsync/internal/service"
	"github.com/iurnickita/merchantsync/internal/source/domexport"
	"github.com/iurnickita/merchantsync/internal/source/journals"
	"github.com/iurnickita/merchantsync/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	zaplog, err := logger.NewZapLog(cfg.Logger)
	if err != nil {
		return err
	}
	defer zaplog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := store.NewStore(cfg.Store, zaplog)
	if err != nil {
		return err
	}
	defer store.Close()

	switch cfg.Run.Mode {
	case config.ModeMigrate:
		return store.Migrate(ctx)
	case config.ModeCheck:
		return store.SelfCheck(ctx)
	}

	adapters := service.Adapters{
		model.SourceKindAPI: journals.NewAdapter(cfg.Source, zaplog),
		model.SourceKindDOM: domexport.NewAdapter(cfg.Source, zaplog),
	}
	svc, err := service.NewService(cfg.Service, store, adapters, zaplog)
	if err != nil {
		return err
	}

	if cfg.Run.Mode == config.ModeServe {
		return handler.Serve(cfg.Handler, svc, zaplog)
	}

	// Таблицы создаются при каждом запуске, миграция идемпотентна
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	dr, err := model.ParseDateRange(cfg.Run.Range, svc.Location(), time.Now())
	if err != nil {
		return err
	}
	report, err := svc.Run(ctx, service.Method(cfg.Run.Source), dr)
	if err != nil {
		return err
	}

	zaplog.Info("sync complete",
		zap.String("run_id", report.Batch.RunID),
		zap.Int("transactions", report.Batch.TotalCount),
		zap.Int("failed", report.Upsert.Failed),
	)
	return nil
}
