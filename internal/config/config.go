package config

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	handlerConfig "github.com/iurnickita/merchantsync/internal/handler/config"
	loggerConfig "github.com/iurnickita/merchantsync/internal/logger/config"
	serviceConfig "github.com/iurnickita/merchantsync/internal/service/config"
	sourceConfig "github.com/iurnickita/merchantsync/internal/source/config"
	storeConfig "github.com/iurnickita/merchantsync/internal/store/config"
)

// Режимы запуска
const (
	ModeRun     = "run"
	ModeMigrate = "migrate"
	ModeCheck   = "check"
	ModeServe   = "serve"
)

// RunConfig - параметры одного запуска, только из командной строки.
type RunConfig struct {
	Mode   string
	Range  string
	Source string
}

type Config struct {
	Handler handlerConfig.Config
	Service serviceConfig.Config
	Store   storeConfig.Config
	Source  sourceConfig.Config
	Logger  loggerConfig.Config
	Run     RunConfig
}

var ErrMode = errors.New("unknown mode")

// GetConfig читает .env (если есть), флаги командной строки и переменные окружения.
// Переменные окружения приоритетнее флагов.
func GetConfig() (Config, error) {
	// .env необязателен
	_ = godotenv.Load()
	return Parse(os.Args[0], os.Args[1:], os.Getenv)
}

func Parse(name string, args []string, getenv func(string) string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.Logger.LogLevel, "l", "info", "log level")
	fs.StringVar(&cfg.Store.Driver, "s", storeConfig.DriverPostgres, "store driver: postgres or d1")
	fs.StringVar(&cfg.Store.DBDsn, "d", "", "database DSN")
	fs.IntVar(&cfg.Store.Workers, "w", 4, "parallel upserts")
	fs.StringVar(&cfg.Source.JournalsURL, "j", "https://api.gobiz.co.id/journals/search", "journals search endpoint")
	fs.StringVar(&cfg.Source.DOMExportPath, "e", "", "rendered table export file")
	fs.StringVar(&cfg.Service.TimeZone, "z", "Asia/Jakarta", "business day time zone")
	fs.StringVar(&cfg.Service.OutputDir, "o", "", "run artifact directory")
	fs.StringVar(&cfg.Handler.ServerAddr, "a", "localhost:8080", "query API address")
	fs.StringVar(&cfg.Run.Mode, "mode", ModeRun, "run | migrate | check | serve")
	fs.StringVar(&cfg.Run.Range, "range", "today", "today | yesterday | YYYY-MM-DD | YYYY-MM-DD..YYYY-MM-DD")
	fs.StringVar(&cfg.Run.Source, "source", "api", "api | dom | hybrid")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Source.PageSize = 100

	// Переменные окружения
	strs := map[string]*string{
		"LOG_LEVEL":           &cfg.Logger.LogLevel,
		"STORE_DRIVER":        &cfg.Store.Driver,
		"DATABASE_URI":        &cfg.Store.DBDsn,
		"D1_ACCOUNT_ID":       &cfg.Store.D1AccountID,
		"D1_DATABASE_ID":      &cfg.Store.D1DatabaseID,
		"D1_API_TOKEN":        &cfg.Store.D1APIToken,
		"JOURNALS_API_URL":    &cfg.Source.JournalsURL,
		"PORTAL_ACCESS_TOKEN": &cfg.Source.AccessToken,
		"PORTAL_COOKIE":       &cfg.Source.Cookie,
		"DOM_EXPORT_PATH":     &cfg.Source.DOMExportPath,
		"TIMEZONE":            &cfg.Service.TimeZone,
		"OUTPUT_DIR":          &cfg.Service.OutputDir,
		"RUN_ADDRESS":         &cfg.Handler.ServerAddr,
	}
	for key, dst := range strs {
		if value := getenv(key); value != "" {
			*dst = value
		}
	}

	ints := map[string]*int{
		"STORE_WORKERS":      &cfg.Store.Workers,
		"JOURNALS_PAGE_SIZE": &cfg.Source.PageSize,
		"JOURNALS_MAX_PAGES": &cfg.Source.MaxPages,
	}
	for key, dst := range ints {
		value := getenv(key)
		if value == "" {
			continue
		}
		n, err := cast.ToIntE(value)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}

	if value := getenv("SYNTHESIZE_DOM_MINOR"); value != "" {
		b, err := cast.ToBoolE(value)
		if err != nil {
			return Config{}, fmt.Errorf("SYNTHESIZE_DOM_MINOR: %w", err)
		}
		cfg.Service.SynthesizeDOMMinor = b
	}

	switch cfg.Run.Mode {
	case ModeRun, ModeMigrate, ModeCheck, ModeServe:
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrMode, cfg.Run.Mode)
	}

	return cfg, nil
}
