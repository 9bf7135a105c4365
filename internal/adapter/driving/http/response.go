package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/checkledger/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// ResultResponse is the JSON representation of one recorded check result.
type ResultResponse struct {
	Repository  string `json:"repository"`
	PRNumber    int    `json:"pr_number"`
	Conclusion  string `json:"conclusion"`
	Summary     string `json:"summary"`
	SummaryHTML string `json:"summary_html"`
	CheckRunID  int64  `json:"check_run_id"`
	RecordedAt  string `json:"recorded_at"`
}

// DayResponse is the JSON representation of a day's ledger.
type DayResponse struct {
	Day           string `json:"day"`
	Worksheet     string `json:"worksheet"`
	ExpectedTotal int    `json:"expected_total"`
	TestsRun      int    `json:"tests_run"`
	Dispatched    bool   `json:"dispatched"`
	DispatchedAt  string `json:"dispatched_at,omitempty"`
}

// SetExpectedRequest is the JSON body for the set-expected-total endpoint.
type SetExpectedRequest struct {
	ExpectedTotal int `json:"expected_total"`
}

// WebhookResponse is the JSON body returned for a processed webhook delivery.
type WebhookResponse struct {
	Day        string `json:"day"`
	Recorded   int    `json:"recorded"`
	Dispatched bool   `json:"dispatched"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toResultResponse converts a domain Result to its JSON representation.
// The summary is rendered to sanitized HTML; CI apps feed arbitrary markdown
// through check run outputs.
func toResultResponse(result model.Result) ResultResponse {
	return ResultResponse{
		Repository:  result.RepoFullName,
		PRNumber:    result.PRNumber,
		Conclusion:  string(result.Conclusion),
		Summary:     result.Summary,
		SummaryHTML: renderMarkdown(result.Summary),
		CheckRunID:  result.CheckRunID,
		RecordedAt:  result.RecordedAt.UTC().Format(time.RFC3339),
	}
}

// toDayResponse converts a domain DayLedger to its JSON representation.
func toDayResponse(ledger model.DayLedger, worksheet string) DayResponse {
	resp := DayResponse{
		Day:           string(ledger.Day),
		Worksheet:     worksheet,
		ExpectedTotal: ledger.ExpectedTotal,
		TestsRun:      ledger.TestsRun,
		Dispatched:    ledger.Dispatched(),
	}

	if ledger.Dispatched() {
		resp.DispatchedAt = ledger.DispatchedAt.UTC().Format(time.RFC3339)
	}

	return resp
}
