package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/cotizador/internal/history"
	"github.com/Simplici0/cotizador/internal/metrics"
	"github.com/Simplici0/cotizador/internal/notify"
	"github.com/Simplici0/cotizador/internal/settings"
)

const (
	maxJSONBytes   = 1 << 20
	maxUploadBytes = 10 << 20
)

type server struct {
	settings   *settings.Repository
	history    *history.Log
	dispatcher *notify.Dispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time

	ws *workspace
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger, s.metrics))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/settings", s.handleSettingsGet)
		r.Put("/settings", s.handleSettingsUpdate)
		r.Get("/catalog", s.handleCatalog)

		r.Get("/workspace", s.handleWorkspaceGet)
		r.Put("/workspace", s.handleWorkspaceUpdate)
		r.Delete("/workspace", s.handleWorkspaceReset)

		r.Get("/measurements", s.handleMeasurementsList)
		r.Post("/measurements", s.handleMeasurementsCreate)
		r.Delete("/measurements/{id}", s.handleMeasurementsDelete)
		r.Get("/measurements/prequote.pdf", s.handlePreQuotePDF)
		r.Get("/measurements/prequote.xlsx", s.handlePreQuoteExcel)

		r.Get("/factory", s.handleFactoryList)
		r.Post("/factory/import", s.handleFactoryImport)

		r.Get("/items", s.handleItemsList)
		r.Post("/items", s.handleItemsAdd)
		r.Patch("/items/{id}", s.handleItemsUpdate)
		r.Delete("/items/{id}", s.handleItemsDelete)

		r.Get("/adjustments", s.handleAdjustmentsGet)
		r.Put("/adjustments", s.handleAdjustmentsUpdate)

		r.Get("/quote", s.handleQuote)
		r.Post("/quote/generate", s.handleQuoteGenerate)
		r.Get("/quote.pdf", s.handleQuotePDF)
		r.Get("/quote.xlsx", s.handleQuoteExcel)

		r.Get("/history", s.handleHistoryList)
		r.Delete("/history", s.handleHistoryClear)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads a single JSON object from the request body, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
