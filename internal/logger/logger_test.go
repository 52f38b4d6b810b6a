package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iurnickita/merchantsync/internal/logger/config"
)

func TestNewZapLog(t *testing.T) {
	zaplog, err := NewZapLog(config.Config{LogLevel: "debug"})
	require.NoError(t, err)
	require.True(t, zaplog.Core().Enabled(zapcore.DebugLevel))

	_, err = NewZapLog(config.Config{LogLevel: "loud"})
	require.Error(t, err)
}

func TestRequestLogMdlw(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	h := RequestLogMdlw(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}, zap.New(core))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/summary?date=2024-01-01", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, 1, logs.FilterMessage("got incoming HTTP request").Len())

	sent := logs.FilterMessage("send HTTP response").All()
	require.Len(t, sent, 1)
	require.Equal(t, "418", sent[0].ContextMap()["code"])
	require.Equal(t, "15", sent[0].ContextMap()["length"])
}

func TestRestyLogHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	core, logs := observer.New(zap.DebugLevel)
	client := resty.New().OnAfterResponse(RestyLogHook(zap.New(core)))

	_, err := client.R().Post(srv.URL + "/query")
	require.NoError(t, err)

	entries := logs.FilterMessage("outgoing HTTP request done").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, http.MethodPost, fields["method"])
	require.Equal(t, int64(http.StatusAccepted), fields["code"])
}
