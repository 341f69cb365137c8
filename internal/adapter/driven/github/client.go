// Package github implements the GitHubSource port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/gregjones/httpcache"

	"github.com/StarkFurry64/polaris/internal/domain/model"
	"github.com/StarkFurry64/polaris/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubSource = (*Client)(nil)

// Client implements the driven.GitHubSource port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base
// URL. This constructor is intended for testing, allowing injection of an
// httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// FetchCommits retrieves commits for the repository's default branch since the
// given instant. It handles pagination automatically; commits without a SHA
// are dropped with a logged warning rather than failing the batch.
func (c *Client) FetchCommits(ctx context.Context, repoFullName string, since time.Time) ([]model.Commit, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.CommitsListOptions{
		Since:       since,
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	commits := []model.Commit{}

	for {
		page, resp, err := c.gh.Repositories.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing commits for %s (page %d): %w", repoFullName, opts.Page, err)
		}

		logRateLimit(resp, repoFullName+"/commits", opts.Page, len(page))

		for _, rc := range page {
			commit, ok := mapCommit(rc)
			if !ok {
				slog.Warn("dropping commit without sha", "repo", repoFullName)
				continue
			}
			commits = append(commits, commit)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return commits, nil
}

// FetchPullRequests retrieves pull requests filtered by state ("open",
// "closed", or "all"). It handles pagination automatically; PRs without a
// number are dropped with a logged warning.
func (c *Client) FetchPullRequests(ctx context.Context, repoFullName string, state string) ([]model.PullRequest, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.PullRequestListOptions{
		State:       state,
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	prs := []model.PullRequest{}

	for {
		page, resp, err := c.gh.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing pull requests for %s (page %d): %w", repoFullName, opts.Page, err)
		}

		logRateLimit(resp, repoFullName+"/pulls", opts.Page, len(page))

		for _, rp := range page {
			pr, ok := mapPullRequest(rp, repoFullName)
			if !ok {
				slog.Warn("dropping pull request without number", "repo", repoFullName)
				continue
			}
			prs = append(prs, pr)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return prs, nil
}

// FetchIssues retrieves issues filtered by state, excluding pull requests
// (the Issues API returns both). Issues without a number are dropped with a
// logged warning.
func (c *Client) FetchIssues(ctx context.Context, repoFullName string, state string) ([]model.Issue, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.IssueListByRepoOptions{
		State:       state,
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	issues := []model.Issue{}

	for {
		page, resp, err := c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing issues for %s (page %d): %w", repoFullName, opts.ListOptions.Page, err)
		}

		logRateLimit(resp, repoFullName+"/issues", opts.ListOptions.Page, len(page))

		for _, ri := range page {
			if ri.PullRequestLinks != nil {
				continue
			}
			issue, ok := mapIssue(ri, repoFullName)
			if !ok {
				slog.Warn("dropping issue without number", "repo", repoFullName)
				continue
			}
			issues = append(issues, issue)
		}

		if resp.NextPage == 0 {
			break
		}
		// IssueListByRepoOptions embeds both ListOptions and ListCursorOptions,
		// each with a Page field, so the selector must be qualified.
		opts.ListOptions.Page = resp.NextPage
	}

	return issues, nil
}

// FetchContributors retrieves contributors ordered by contribution count.
// Contributors without a login are dropped with a logged warning.
func (c *Client) FetchContributors(ctx context.Context, repoFullName string) ([]model.Contributor, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.ListContributorsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	contributors := []model.Contributor{}

	for {
		page, resp, err := c.gh.Repositories.ListContributors(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing contributors for %s (page %d): %w", repoFullName, opts.Page, err)
		}

		logRateLimit(resp, repoFullName+"/contributors", opts.Page, len(page))

		for _, rc := range page {
			if rc.GetLogin() == "" {
				slog.Warn("dropping contributor without login", "repo", repoFullName)
				continue
			}
			contributors = append(contributors, model.Contributor{
				Login:         rc.GetLogin(),
				Contributions: rc.GetContributions(),
				AvatarURL:     rc.GetAvatarURL(),
				ProfileURL:    rc.GetHTMLURL(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return contributors, nil
}

// FetchRepository returns the repository summary. Returns nil, nil on 404.
func (c *Client) FetchRepository(ctx context.Context, repoFullName string) (*model.Repository, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	r, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching repository %s: %w", repoFullName, err)
	}

	logRateLimit(resp, repoFullName, 0, 1)

	return &model.Repository{
		FullName:    r.GetFullName(),
		Owner:       r.GetOwner().GetLogin(),
		Name:        r.GetName(),
		Description: r.GetDescription(),
		Language:    r.GetLanguage(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		OpenIssues:  r.GetOpenIssuesCount(),
	}, nil
}

// FetchReviews retrieves all reviews for a pull request.
func (c *Client) FetchReviews(ctx context.Context, repoFullName string, prNumber int) ([]model.Review, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.ListOptions{PerPage: 100}
	reviews := []model.Review{}

	for {
		page, resp, err := c.gh.PullRequests.ListReviews(ctx, owner, repo, prNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("listing reviews for %s#%d (page %d): %w", repoFullName, prNumber, opts.Page, err)
		}

		for _, r := range page {
			reviews = append(reviews, model.Review{
				ID:          r.GetID(),
				Reviewer:    r.GetUser().GetLogin(),
				State:       strings.ToLower(r.GetState()),
				SubmittedAt: r.GetSubmittedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return reviews, nil
}

// mapCommit converts a go-github RepositoryCommit to a domain Commit. The
// second return is false when the commit lacks a SHA. Missing nested fields
// (author name, email, stats) resolve to zero values, never a panic: all
// access goes through GetXxx() helpers.
func mapCommit(rc *gh.RepositoryCommit) (model.Commit, bool) {
	if rc.GetSHA() == "" {
		return model.Commit{}, false
	}

	author := rc.GetCommit().GetAuthor().GetName()
	if author == "" {
		author = rc.GetAuthor().GetLogin()
	}

	return model.Commit{
		SHA:         rc.GetSHA(),
		Author:      author,
		AuthorEmail: rc.GetCommit().GetAuthor().GetEmail(),
		Date:        rc.GetCommit().GetAuthor().GetDate().Time,
		Additions:   rc.GetStats().GetAdditions(),
		Deletions:   rc.GetStats().GetDeletions(),
	}, true
}

// mapPullRequest converts a go-github PullRequest to a domain PullRequest.
// The second return is false when the PR lacks a number.
func mapPullRequest(pr *gh.PullRequest, repoFullName string) (model.PullRequest, bool) {
	if pr.GetNumber() == 0 {
		return model.PullRequest{}, false
	}

	labels := make([]string, 0, len(pr.Labels))
	for _, l := range pr.Labels {
		labels = append(labels, l.GetName())
	}

	var closedAt, mergedAt *time.Time
	if !pr.GetClosedAt().IsZero() {
		t := pr.GetClosedAt().Time
		closedAt = &t
	}
	if !pr.GetMergedAt().IsZero() {
		t := pr.GetMergedAt().Time
		mergedAt = &t
	}

	return model.PullRequest{
		ID:           pr.GetID(),
		Number:       pr.GetNumber(),
		RepoFullName: repoFullName,
		Title:        pr.GetTitle(),
		State:        model.PRState(pr.GetState()),
		Author:       pr.GetUser().GetLogin(),
		CreatedAt:    pr.GetCreatedAt().Time,
		UpdatedAt:    pr.GetUpdatedAt().Time,
		ClosedAt:     closedAt,
		MergedAt:     mergedAt,
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
		ChangedFiles: pr.GetChangedFiles(),
		Labels:       labels,
	}, true
}

// mapIssue converts a go-github Issue to a domain Issue.
// The second return is false when the issue lacks a number.
func mapIssue(issue *gh.Issue, repoFullName string) (model.Issue, bool) {
	if issue.GetNumber() == 0 {
		return model.Issue{}, false
	}

	labels := make([]model.Label, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, model.Label{Name: l.GetName(), Color: l.GetColor()})
	}

	assignees := make([]string, 0, len(issue.Assignees))
	for _, a := range issue.Assignees {
		assignees = append(assignees, a.GetLogin())
	}

	var closedAt *time.Time
	if !issue.GetClosedAt().IsZero() {
		t := issue.GetClosedAt().Time
		closedAt = &t
	}

	return model.Issue{
		ID:            issue.GetID(),
		Number:        issue.GetNumber(),
		RepoFullName:  repoFullName,
		Title:         issue.GetTitle(),
		State:         model.IssueState(issue.GetState()),
		Author:        issue.GetUser().GetLogin(),
		Assignee:      issue.GetAssignee().GetLogin(),
		Assignees:     assignees,
		Labels:        labels,
		CreatedAt:     issue.GetCreatedAt().Time,
		UpdatedAt:     issue.GetUpdatedAt().Time,
		ClosedAt:      closedAt,
		CommentsCount: issue.GetComments(),
	}, true
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
