package httphandler

import (
	"net/http"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/checkledger/internal/domain/model"
)

// GitHubWebhook receives GitHub webhook deliveries. Only check_run events are
// processed; everything else is acknowledged and dropped so GitHub does not
// retry them.
func (h *Handler) GitHubWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := gh.ValidatePayload(r, h.webhookSecret)
	if err != nil {
		h.logger.Warn("webhook payload rejected", "error", err)
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	event, err := gh.ParseWebHook(gh.WebHookType(r), payload)
	if err != nil {
		h.logger.Warn("webhook parse failed", "type", gh.WebHookType(r), "error", err)
		writeError(w, http.StatusBadRequest, "unparseable payload")
		return
	}

	checkRunEvent, ok := event.(*gh.CheckRunEvent)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	outcome, err := h.recordSvc.Record(r.Context(), mapCheckRunEvent(checkRunEvent))
	if err != nil {
		// A 5xx makes GitHub redeliver; the dedup constraint absorbs the replay.
		h.logger.Error("failed to record check run",
			"repo", checkRunEvent.GetRepo().GetFullName(),
			"check_run", checkRunEvent.GetCheckRun().GetID(),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, WebhookResponse{
		Day:        string(outcome.Day),
		Recorded:   outcome.Recorded,
		Dispatched: outcome.Dispatched,
	})
}

// mapCheckRunEvent converts a go-github CheckRunEvent to the domain event.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapCheckRunEvent(event *gh.CheckRunEvent) model.CheckRunEvent {
	checkRun := event.GetCheckRun()

	prNumbers := make([]int, 0, len(checkRun.PullRequests))
	for _, pr := range checkRun.PullRequests {
		prNumbers = append(prNumbers, pr.GetNumber())
	}

	return model.CheckRunEvent{
		Action:       event.GetAction(),
		AppID:        checkRun.GetApp().GetID(),
		CheckRunID:   checkRun.GetID(),
		RepoFullName: event.GetRepo().GetFullName(),
		HeadSHA:      checkRun.GetHeadSHA(),
		Conclusion:   model.Conclusion(checkRun.GetConclusion()),
		Summary:      checkRun.GetOutput().GetSummary(),
		PRNumbers:    prNumbers,
	}
}
