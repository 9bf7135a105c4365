// Package httphandler is the HTTP driving adapter: webhook intake and the
// REST API over the day ledger.
package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/checkledger/internal/application"
	"github.com/ericfisherdev/checkledger/internal/domain/model"
	"github.com/ericfisherdev/checkledger/internal/domain/port/driven"
)

// Handler serves the webhook endpoint and the REST API.
type Handler struct {
	resultStore   driven.ResultStore
	ledgerStore   driven.LedgerStore
	recordSvc     *application.RecordService
	exportSvc     *application.ExportService
	healthSvc     *application.HealthService
	webhookSecret []byte
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. An empty
// webhookSecret disables payload signature validation.
func NewHandler(
	resultStore driven.ResultStore,
	ledgerStore driven.LedgerStore,
	recordSvc *application.RecordService,
	exportSvc *application.ExportService,
	healthSvc *application.HealthService,
	webhookSecret []byte,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		resultStore:   resultStore,
		ledgerStore:   ledgerStore,
		recordSvc:     recordSvc,
		exportSvc:     exportSvc,
		healthSvc:     healthSvc,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /webhook/github", h.GitHubWebhook)
	mux.HandleFunc("GET /api/v1/days/{date}", h.GetDay)
	mux.HandleFunc("GET /api/v1/days/{date}/results", h.ListDayResults)
	mux.HandleFunc("PUT /api/v1/days/{date}/expected", h.SetExpectedTotal)
	mux.HandleFunc("GET /api/v1/days/{date}/export", h.ExportDay)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// dayFromPath parses the {date} path segment. Writes a 400 and returns false
// on malformed input.
func dayFromPath(w http.ResponseWriter, r *http.Request) (model.Day, bool) {
	day, err := model.ParseDay(r.PathValue("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: expected YYYY-MM-DD")
		return "", false
	}
	return day, true
}

// GetDay returns the ledger for a single day.
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	day, ok := dayFromPath(w, r)
	if !ok {
		return
	}

	ledger, err := h.ledgerStore.Get(r.Context(), day)
	if err != nil {
		h.logger.Error("failed to get day ledger", "day", string(day), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toDayResponse(ledger, h.recordSvc.WorksheetTitle(day)))
}

// ListDayResults returns all recorded results for a day.
func (h *Handler) ListDayResults(w http.ResponseWriter, r *http.Request) {
	day, ok := dayFromPath(w, r)
	if !ok {
		return
	}

	results, err := h.resultStore.ListByDay(r.Context(), day)
	if err != nil {
		h.logger.Error("failed to list results", "day", string(day), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]ResultResponse, 0, len(results))
	for _, result := range results {
		resp = append(resp, toResultResponse(result))
	}

	writeJSON(w, http.StatusOK, resp)
}

// SetExpectedTotal records the day's expected run count. Setting a total the
// run counter has already reached completes the day and fires the report
// dispatch.
func (h *Handler) SetExpectedTotal(w http.ResponseWriter, r *http.Request) {
	day, ok := dayFromPath(w, r)
	if !ok {
		return
	}

	var req SetExpectedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ExpectedTotal < 0 {
		writeError(w, http.StatusBadRequest, "expected_total must be non-negative")
		return
	}

	dispatched, err := h.recordSvc.SetExpectedTotal(r.Context(), day, req.ExpectedTotal)
	if err != nil {
		h.logger.Error("failed to set expected total", "day", string(day), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	ledger, err := h.ledgerStore.Get(r.Context(), day)
	if err != nil {
		h.logger.Error("failed to get day ledger", "day", string(day), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := toDayResponse(ledger, h.recordSvc.WorksheetTitle(day))
	resp.Dispatched = resp.Dispatched || dispatched

	writeJSON(w, http.StatusOK, resp)
}

// ExportDay streams the day's worksheet as an xlsx download.
func (h *Handler) ExportDay(w http.ResponseWriter, r *http.Request) {
	day, ok := dayFromPath(w, r)
	if !ok {
		return
	}

	title := h.recordSvc.WorksheetTitle(day)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+title+`.xlsx"`)

	if err := h.exportSvc.ExportDay(r.Context(), day, w); err != nil {
		// Headers are already out; all we can do is log and drop the connection.
		h.logger.Error("failed to export day", "day", string(day), "error", err)
	}
}

// Health reports service liveness and store reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.healthSvc.Check(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Time:   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
