package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	storeConfig "github.com/iurnickita/merchantsync/internal/store/config"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse("merchantsync", nil, envOf(nil))
	require.NoError(t, err)

	require.Equal(t, "info", cfg.Logger.LogLevel)
	require.Equal(t, storeConfig.DriverPostgres, cfg.Store.Driver)
	require.Equal(t, 4, cfg.Store.Workers)
	require.Equal(t, "https://api.gobiz.co.id/journals/search", cfg.Source.JournalsURL)
	require.Equal(t, 100, cfg.Source.PageSize)
	require.Equal(t, "Asia/Jakarta", cfg.Service.TimeZone)
	require.False(t, cfg.Service.SynthesizeDOMMinor)
	require.Empty(t, cfg.Service.OutputDir)
	require.Equal(t, "localhost:8080", cfg.Handler.ServerAddr)
	require.Equal(t, RunConfig{Mode: ModeRun, Range: "today", Source: "api"}, cfg.Run)
}

func TestParseEnvOverridesFlags(t *testing.T) {
	cfg, err := Parse("merchantsync",
		[]string{"-d", "postgres://flag", "-w", "2", "-mode", "serve", "-range", "2024-01-01..2024-01-07", "-source", "hybrid"},
		envOf(map[string]string{
			"DATABASE_URI":         "postgres://env",
			"STORE_DRIVER":         "d1",
			"D1_ACCOUNT_ID":        "acct",
			"PORTAL_ACCESS_TOKEN":  "tok",
			"JOURNALS_PAGE_SIZE":   "50",
			"SYNTHESIZE_DOM_MINOR": "true",
		}))
	require.NoError(t, err)

	require.Equal(t, "postgres://env", cfg.Store.DBDsn)
	require.Equal(t, storeConfig.DriverD1, cfg.Store.Driver)
	require.Equal(t, "acct", cfg.Store.D1AccountID)
	require.Equal(t, 2, cfg.Store.Workers)
	require.Equal(t, "tok", cfg.Source.AccessToken)
	require.Equal(t, 50, cfg.Source.PageSize)
	require.True(t, cfg.Service.SynthesizeDOMMinor)
	require.Equal(t, RunConfig{Mode: ModeServe, Range: "2024-01-01..2024-01-07", Source: "hybrid"}, cfg.Run)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("merchantsync", []string{"-mode", "dance"}, envOf(nil))
	require.ErrorIs(t, err, ErrMode)

	_, err = Parse("merchantsync", nil, envOf(map[string]string{"STORE_WORKERS": "many"}))
	require.Error(t, err)

	_, err = Parse("merchantsync", nil, envOf(map[string]string{"SYNTHESIZE_DOM_MINOR": "perhaps"}))
	require.Error(t, err)
}
