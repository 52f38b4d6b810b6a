package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/iurnickita/merchantsync/internal/handler/config"
	"github.com/iurnickita/merchantsync/internal/logger"
	"github.com/iurnickita/merchantsync/internal/service"
)

func Serve(cfg config.Config, service service.Service, zaplog *zap.Logger) error {
	h := newHandler(service, zaplog)
	router := h.newRouter()

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	zaplog.Info("serving query API", zap.String("addr", cfg.ServerAddr))
	return srv.ListenAndServe()
}

type handler struct {
	service service.Service
	zaplog  *zap.Logger
}

func newHandler(service service.Service, zaplog *zap.Logger) *handler {
	return &handler{
		service: service,
		zaplog:  zaplog,
	}
}

// Только чтение: запись идет через запуск синхронизации.
func (h *handler) newRouter() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/transactions", logger.RequestLogMdlw(h.GetTransactions, h.zaplog))
	mux.HandleFunc("GET /api/summary", logger.RequestLogMdlw(h.GetSummary, h.zaplog))

	return mux
}

func (h *handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.GetTransactions(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if len(txs) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, txs)
}

func (h *handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	daily, err := h.service.GetSummary(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, daily)
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrBadDate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrNoRows):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.zaplog.Error("query failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *handler) writeJSON(w http.ResponseWriter, v any) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(responseJSON)
}
