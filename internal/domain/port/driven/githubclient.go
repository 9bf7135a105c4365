package driven

import (
	"context"

	"github.com/ericfisherdev/checkledger/internal/domain/model"
)

// GitHubClient defines the driven port for the GitHub API calls the recorder
// makes.
type GitHubClient interface {
	// PullRequestNumbersForCommit resolves the pull requests containing the
	// given commit. Used when a check_run delivery carries no pull request
	// list, which GitHub omits for forked-repo PRs.
	PullRequestNumbersForCommit(ctx context.Context, repoFullName, sha string) ([]int, error)
	// SendReportDispatch fires the report-all-test-prs repository dispatch at
	// the reporting repository, carrying the day and worksheet title in the
	// client payload.
	SendReportDispatch(ctx context.Context, day model.Day, worksheet string) error
}
