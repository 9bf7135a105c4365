// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/checkledger/internal/domain/model"
	"github.com/ericfisherdev/checkledger/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// reportDispatchEventType is the repository_dispatch event type the reporting
// workflow listens for.
const reportDispatchEventType = "report-all-test-prs"

// Client implements the driven.GitHubClient port using the go-github library.
type Client struct {
	gh         *gh.Client
	reportRepo string // "owner/repo" that receives the report dispatch.
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token, reportRepo string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{
		gh:         client,
		reportRepo: reportRepo,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, reportRepo string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{
		gh:         client,
		reportRepo: reportRepo,
	}, nil
}

// PullRequestNumbersForCommit resolves the pull requests containing the given
// commit. It handles pagination automatically. Closed unmerged PRs are
// excluded; a check run completing for an abandoned PR has nothing to report.
func (c *Client) PullRequestNumbersForCommit(ctx context.Context, repoFullName, sha string) ([]int, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.ListOptions{PerPage: 100}

	var numbers []int

	for {
		prs, resp, err := c.gh.PullRequests.ListPullRequestsWithCommit(ctx, owner, repo, sha, opts)
		if err != nil {
			return nil, fmt.Errorf("listing pull requests for %s@%s (page %d): %w", repoFullName, sha, opts.Page, err)
		}

		logRateLimit(resp, repoFullName+"/commit-prs", opts.Page, len(prs))

		for _, pr := range prs {
			if pr.GetState() == "closed" && pr.GetMergedAt().IsZero() {
				continue
			}
			numbers = append(numbers, pr.GetNumber())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return numbers, nil
}

// reportPayload is the client_payload carried by the report dispatch.
type reportPayload struct {
	Day       string `json:"day"`
	Worksheet string `json:"worksheet"`
}

// SendReportDispatch fires the report-all-test-prs repository_dispatch event
// at the configured reporting repository.
func (c *Client) SendReportDispatch(ctx context.Context, day model.Day, worksheet string) error {
	owner, repo, err := splitRepo(c.reportRepo)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(reportPayload{Day: string(day), Worksheet: worksheet})
	if err != nil {
		return fmt.Errorf("marshal dispatch payload: %w", err)
	}
	raw := json.RawMessage(payload)

	_, resp, err := c.gh.Repositories.Dispatch(ctx, owner, repo, gh.DispatchRequestOptions{
		EventType:     reportDispatchEventType,
		ClientPayload: &raw,
	})
	if err != nil {
		return fmt.Errorf("dispatching %s to %s: %w", reportDispatchEventType, c.reportRepo, err)
	}

	logRateLimit(resp, c.reportRepo+"/dispatches", 0, 1)
	slog.Info("report dispatch sent", "repo", c.reportRepo, "day", string(day), "worksheet", worksheet)

	return nil
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
