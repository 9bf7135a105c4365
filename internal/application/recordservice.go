// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/checkledger/internal/domain/model"
	"github.com/ericfisherdev/checkledger/internal/domain/port/driven"
)

// RecordOutcome summarizes what a single check_run delivery produced.
type RecordOutcome struct {
	Day        model.Day
	Recorded   int  // Rows appended (0 when the event was filtered or a duplicate).
	Dispatched bool // True when this delivery won the day's report dispatch.
}

// RecordService is the core use case: it filters check_run events, appends
// result rows to the day's ledger, and fires the report dispatch exactly once
// when the day's expected total has been reached.
type RecordService struct {
	resultStore driven.ResultStore
	ledgerStore driven.LedgerStore
	ghClient    driven.GitHubClient
	appID       int64
	sheetPrefix string
	location    *time.Location
	now         func() time.Time
}

// NewRecordService creates a RecordService with all required dependencies.
// appID is the GitHub App whose check runs are recorded; events from any
// other app are ignored.
func NewRecordService(
	resultStore driven.ResultStore,
	ledgerStore driven.LedgerStore,
	ghClient driven.GitHubClient,
	appID int64,
	sheetPrefix string,
	location *time.Location,
) *RecordService {
	return &RecordService{
		resultStore: resultStore,
		ledgerStore: ledgerStore,
		ghClient:    ghClient,
		appID:       appID,
		sheetPrefix: sheetPrefix,
		location:    location,
		now:         time.Now,
	}
}

// WorksheetTitle returns the worksheet name for the given day using the
// configured prefix.
func (s *RecordService) WorksheetTitle(day model.Day) string {
	return day.WorksheetTitle(s.sheetPrefix)
}

// Record processes one check_run delivery. Events that fail the trigger
// filter (wrong app, non-recordable conclusion, not completed) are dropped
// without side effects. Store and dispatch errors are returned so the caller
// can surface a 5xx and let GitHub redeliver.
func (s *RecordService) Record(ctx context.Context, event model.CheckRunEvent) (RecordOutcome, error) {
	var outcome RecordOutcome

	if event.Action != "completed" || event.AppID != s.appID || !event.Conclusion.Recordable() {
		slog.Debug("check run event filtered",
			"repo", event.RepoFullName,
			"action", event.Action,
			"app_id", event.AppID,
			"conclusion", string(event.Conclusion),
		)
		return outcome, nil
	}

	day := model.DayOf(s.now(), s.location)
	outcome.Day = day

	prNumbers := event.PRNumbers
	if len(prNumbers) == 0 {
		resolved, err := s.ghClient.PullRequestNumbersForCommit(ctx, event.RepoFullName, event.HeadSHA)
		if err != nil {
			return outcome, err
		}
		prNumbers = resolved
	}

	if len(prNumbers) == 0 {
		slog.Info("check run has no associated pull requests",
			"repo", event.RepoFullName,
			"check_run", event.CheckRunID,
			"sha", event.HeadSHA,
		)
		return outcome, nil
	}

	for _, prNumber := range prNumbers {
		result := model.Result{
			Day:          day,
			RepoFullName: event.RepoFullName,
			PRNumber:     prNumber,
			Conclusion:   event.Conclusion,
			Summary:      event.Summary,
			CheckRunID:   event.CheckRunID,
			RecordedAt:   s.now(),
		}

		inserted, err := s.resultStore.Record(ctx, result)
		if err != nil {
			return outcome, err
		}
		if !inserted {
			slog.Debug("duplicate delivery ignored",
				"repo", event.RepoFullName,
				"check_run", event.CheckRunID,
				"pr", prNumber,
			)
			continue
		}
		outcome.Recorded++
	}

	slog.Info("check run recorded",
		"repo", event.RepoFullName,
		"check_run", event.CheckRunID,
		"conclusion", string(event.Conclusion),
		"rows", outcome.Recorded,
		"day", string(day),
	)

	if outcome.Recorded == 0 {
		return outcome, nil
	}

	dispatched, err := s.maybeDispatch(ctx, day)
	if err != nil {
		return outcome, err
	}
	outcome.Dispatched = dispatched

	return outcome, nil
}

// SetExpectedTotal records the day's expected run count. Lowering the total
// to a value already reached completes the day, so the dispatch is attempted
// here as well.
func (s *RecordService) SetExpectedTotal(ctx context.Context, day model.Day, total int) (bool, error) {
	if err := s.ledgerStore.SetExpectedTotal(ctx, day, total); err != nil {
		return false, err
	}

	slog.Info("expected total set", "day", string(day), "expected_total", total)

	return s.maybeDispatch(ctx, day)
}

// maybeDispatch attempts to claim the day's report dispatch and, on winning
// the claim, fires it. The claim is not rolled back when the dispatch call
// fails: at-most-once delivery is preferred over re-firing on every
// subsequent event.
func (s *RecordService) maybeDispatch(ctx context.Context, day model.Day) (bool, error) {
	claimed, err := s.ledgerStore.ClaimDispatch(ctx, day, s.now())
	if err != nil {
		return false, err
	}
	if !claimed {
		return false, nil
	}

	if err := s.ghClient.SendReportDispatch(ctx, day, s.WorksheetTitle(day)); err != nil {
		slog.Error("report dispatch failed after claim", "day", string(day), "error", err)
		return false, err
	}

	return true, nil
}
