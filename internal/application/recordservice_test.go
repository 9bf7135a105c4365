package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/checkledger/internal/application"
	"github.com/ericfisherdev/checkledger/internal/domain/model"
)

const testAppID int64 = 777

// --- Mock implementations ---

// mockLedgerStore mimics the real ledger semantics: the claim succeeds once,
// and only when the counters are complete.
type mockLedgerStore struct {
	expected   int
	run        int
	claimed    bool
	claimCalls int
	claimErr   error
}

func (m *mockLedgerStore) Get(_ context.Context, day model.Day) (model.DayLedger, error) {
	return model.DayLedger{Day: day, ExpectedTotal: m.expected, TestsRun: m.run}, nil
}

func (m *mockLedgerStore) SetExpectedTotal(_ context.Context, _ model.Day, total int) error {
	m.expected = total
	return nil
}

func (m *mockLedgerStore) ClaimDispatch(_ context.Context, _ model.Day, _ time.Time) (bool, error) {
	m.claimCalls++
	if m.claimErr != nil {
		return false, m.claimErr
	}
	if m.claimed || m.expected == 0 || m.run < m.expected {
		return false, nil
	}
	m.claimed = true
	return true, nil
}

// mockResultStore records appended rows and bumps the linked ledger's run
// counter, the way the real transactional store does.
type mockResultStore struct {
	ledger    *mockLedgerStore
	records   []model.Result
	duplicate bool
	err       error
}

func (m *mockResultStore) Record(_ context.Context, result model.Result) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.duplicate {
		return false, nil
	}
	m.records = append(m.records, result)
	if m.ledger != nil {
		m.ledger.run++
	}
	return true, nil
}

func (m *mockResultStore) ListByDay(_ context.Context, _ model.Day) ([]model.Result, error) {
	return m.records, nil
}

type mockGitHubClient struct {
	prsForCommit func(ctx context.Context, repoFullName, sha string) ([]int, error)
	dispatches   []string
	dispatchErr  error
}

func (m *mockGitHubClient) PullRequestNumbersForCommit(ctx context.Context, repoFullName, sha string) ([]int, error) {
	if m.prsForCommit == nil {
		return nil, nil
	}
	return m.prsForCommit(ctx, repoFullName, sha)
}

func (m *mockGitHubClient) SendReportDispatch(_ context.Context, _ model.Day, worksheet string) error {
	if m.dispatchErr != nil {
		return m.dispatchErr
	}
	m.dispatches = append(m.dispatches, worksheet)
	return nil
}

// --- Helpers ---

func newRecordService(results *mockResultStore, ledger *mockLedgerStore, gh *mockGitHubClient) *application.RecordService {
	return application.NewRecordService(results, ledger, gh, testAppID, "staging-release", time.UTC)
}

func completedEvent(conclusion model.Conclusion, prNumbers ...int) model.CheckRunEvent {
	return model.CheckRunEvent{
		Action:       "completed",
		AppID:        testAppID,
		CheckRunID:   100,
		RepoFullName: "org/repo",
		HeadSHA:      "abc123",
		Conclusion:   conclusion,
		PRNumbers:    prNumbers,
	}
}

// --- Tests ---

func TestRecord_WrongApp_NoSideEffects(t *testing.T) {
	ledger := &mockLedgerStore{expected: 1, run: 1}
	results := &mockResultStore{ledger: ledger}
	gh := &mockGitHubClient{}
	svc := newRecordService(results, ledger, gh)

	event := completedEvent(model.ConclusionSuccess, 42)
	event.AppID = testAppID + 1

	outcome, err := svc.Record(context.Background(), event)

	require.NoError(t, err)
	assert.Zero(t, outcome.Recorded)
	assert.False(t, outcome.Dispatched)
	assert.Empty(t, results.records)
	assert.Zero(t, ledger.claimCalls)
	assert.Empty(t, gh.dispatches)
}

func TestRecord_NonRecordableConclusion_NoSideEffects(t *testing.T) {
	for _, conclusion := range []model.Conclusion{"neutral", "cancelled", "timed_out", "action_required", ""} {
		ledger := &mockLedgerStore{expected: 1, run: 1}
		results := &mockResultStore{ledger: ledger}
		gh := &mockGitHubClient{}
		svc := newRecordService(results, ledger, gh)

		outcome, err := svc.Record(context.Background(), completedEvent(conclusion, 42))

		require.NoError(t, err)
		assert.Zero(t, outcome.Recorded, "conclusion %q", conclusion)
		assert.Empty(t, results.records, "conclusion %q", conclusion)
		assert.Empty(t, gh.dispatches, "conclusion %q", conclusion)
	}
}

func TestRecord_NotCompleted_NoSideEffects(t *testing.T) {
	ledger := &mockLedgerStore{}
	results := &mockResultStore{ledger: ledger}
	gh := &mockGitHubClient{}
	svc := newRecordService(results, ledger, gh)

	event := completedEvent(model.ConclusionSuccess, 42)
	event.Action = "created"

	outcome, err := svc.Record(context.Background(), event)

	require.NoError(t, err)
	assert.Zero(t, outcome.Recorded)
	assert.Empty(t, results.records)
}

func TestRecord_AppendsExactRow(t *testing.T) {
	ledger := &mockLedgerStore{}
	results := &mockResultStore{ledger: ledger}
	gh := &mockGitHubClient{}
	svc := newRecordService(results, ledger, gh)

	event := completedEvent(model.ConclusionSuccess, 42)
	event.Summary = ""

	outcome, err := svc.Record(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Recorded)
	require.Len(t, results.records, 1)

	row := results.records[0]
	assert.Equal(t, "org/repo", row.RepoFullName)
	assert.Equal(t, 42, row.PRNumber)
	assert.Equal(t, model.ConclusionSuccess, row.Conclusion)
	assert.Equal(t, "", row.Summary)
	assert.Equal(t, outcome.Day, row.Day)
	assert.Equal(t, int64(100), row.CheckRunID)
}

func TestRecord_DispatchesWhenExpectedReached(t *testing.T) {
	ledger := &mockLedgerStore{expected: 10, run: 9}
	results := &mockResultStore{ledger: ledger}
	gh := &mockGitHubClient{}
	svc := newRecordService(results, ledger, gh)

	outcome, err := svc.Record(context.Background(), completedEvent(model.ConclusionFailure, 42))

	require.NoError(t, err)
	assert.True(t, outcome.Dispatched)
	require.Len(t, gh.dispatches, 1)
	assert.Equal(t, outcome.Day.WorksheetTitle("staging-release"), gh.dispatches[0])
}

func TestRecord_NoDispatchBelowExpected(t *testing.T) {
	ledger := &mockLedgerStore{expected: 10, run: 8}
	results := &mockResultStore{ledger: ledger}
	gh := &mockGitHubClient{}
	svc := newRecordService(results, ledger, gh)

	outcome, err := svc.Record(context.Background(), completedEvent(model.ConclusionSuccess, 42))

	require.NoError(t, err)
	assert.False(t, outcome.Dispatched)
	assert.Empty(t, gh.dispatches)
}

func TestRecord_DispatchFiresExactlyOnce(t *testing.T) {
	ledger := &mockLedgerStore{expected: 2}
	results := &mockResultStore{ledger: ledger}
	gh := &mockGitHubClient{}
	svc := newRecordService(results, ledger, gh)
	ctx := context.Background()

	_, err := svc.Record(ctx, completedEvent(model.ConclusionSuccess, 42))
	require.NoError(t, err)

	event := completedEvent(model.ConclusionSuccess, 43)
	event.CheckRunID = 101
	outcome, err := svc.Record(ctx, event)
	require.NoError(t, err)
	assert.True(t, outcome.Dispatched)

	// A third qualifying event on the same day must not re-fire.
	event = completedEvent(model.ConclusionSkipped, 44)
	event.CheckRunID = 102
	outcome, err = svc.Record(ctx, event)
	require.NoError(t, err)
	assert.False(t, outcome.Dispatched)

	assert.Len(t, gh.dispatches, 1)
}

func TestRecord_ResolvesPRsWhenEventHasNone(t *testing.T) {
	ledger := &mockLedgerStore{}
	results := &mockResultStore{ledger: ledger}

	var gotRepo, gotSHA string
	gh := &mockGitHubClient{
		prsForCommit: func(_ context.Context, repoFullName, sha string) ([]int, error) {
			gotRepo = repoFullName
			gotSHA = sha
			return []int{7, 8}, nil
		},
	}
	svc := newRecordService(results, ledger, gh)

	outcome, err := svc.Record(context.Background(), completedEvent(model.ConclusionSuccess))

	require.NoError(t, err)
	assert.Equal(t, "org/repo", gotRepo)
	assert.Equal(t, "abc123", gotSHA)
	assert.Equal(t, 2, outcome.Recorded)
	require.Len(t, results.records, 2)
	assert.Equal(t, 7, results.records[0].PRNumber)
	assert.Equal(t, 8, results.records[1].PRNumber)
}

func TestRecord_NoAssociatedPRs(t *testing.T) {
	ledger := &mockLedgerStore{}
	results := &mockResultStore{ledger: ledger}
	gh := &mockGitHubClient{}
	svc := newRecordService(results, ledger, gh)

	outcome, err := svc.Record(context.Background(), completedEvent(model.ConclusionSuccess))

	require.NoError(t, err)
	assert.Zero(t, outcome.Recorded)
	assert.Empty(t, results.records)
}

func TestRecord_DuplicateDelivery_NoDispatchAttempt(t *testing.T) {
	ledger := &mockLedgerStore{expected: 1, run: 1}
	results := &mockResultStore{ledger: ledger, duplicate: true}
	gh := &mockGitHubClient{}
	svc := newRecordService(results, ledger, gh)

	outcome, err := svc.Record(context.Background(), completedEvent(model.ConclusionSuccess, 42))

	require.NoError(t, err)
	assert.Zero(t, outcome.Recorded)
	assert.False(t, outcome.Dispatched)
	assert.Zero(t, ledger.claimCalls)
}

func TestRecord_StoreErrorPropagates(t *testing.T) {
	ledger := &mockLedgerStore{}
	results := &mockResultStore{ledger: ledger, err: errors.New("disk full")}
	gh := &mockGitHubClient{}
	svc := newRecordService(results, ledger, gh)

	_, err := svc.Record(context.Background(), completedEvent(model.ConclusionSuccess, 42))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRecord_DispatchErrorPropagates(t *testing.T) {
	ledger := &mockLedgerStore{expected: 1}
	results := &mockResultStore{ledger: ledger}
	gh := &mockGitHubClient{dispatchErr: errors.New("bad credentials")}
	svc := newRecordService(results, ledger, gh)

	_, err := svc.Record(context.Background(), completedEvent(model.ConclusionSuccess, 42))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad credentials")
}

func TestSetExpectedTotal_DispatchesWhenAlreadyComplete(t *testing.T) {
	ledger := &mockLedgerStore{run: 10}
	results := &mockResultStore{ledger: ledger}
	gh := &mockGitHubClient{}
	svc := newRecordService(results, ledger, gh)

	dispatched, err := svc.SetExpectedTotal(context.Background(), "2024-03-05", 10)

	require.NoError(t, err)
	assert.True(t, dispatched)
	require.Len(t, gh.dispatches, 1)
	assert.Equal(t, "staging-release-2024-03-05", gh.dispatches[0])
}

func TestSetExpectedTotal_NoDispatchWhenIncomplete(t *testing.T) {
	ledger := &mockLedgerStore{run: 3}
	results := &mockResultStore{ledger: ledger}
	gh := &mockGitHubClient{}
	svc := newRecordService(results, ledger, gh)

	dispatched, err := svc.SetExpectedTotal(context.Background(), "2024-03-05", 10)

	require.NoError(t, err)
	assert.False(t, dispatched)
	assert.Empty(t, gh.dispatches)
}
