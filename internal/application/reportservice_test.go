package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StarkFurry64/polaris/internal/domain/model"
	"github.com/StarkFurry64/polaris/internal/domain/port/driven"
)

type fakeGitHub struct {
	commits      []model.Commit
	prs          []model.PullRequest
	issues       []model.Issue
	contributors []model.Contributor
	repo         *model.Repository
	reviews      []model.Review

	commitsErr      error
	prsErr          error
	contributorsErr error
	repoErr         error
}

var _ driven.GitHubSource = (*fakeGitHub)(nil)

func (f *fakeGitHub) FetchCommits(_ context.Context, _ string, _ time.Time) ([]model.Commit, error) {
	return f.commits, f.commitsErr
}

func (f *fakeGitHub) FetchPullRequests(_ context.Context, _ string, _ string) ([]model.PullRequest, error) {
	return f.prs, f.prsErr
}

func (f *fakeGitHub) FetchIssues(_ context.Context, _ string, _ string) ([]model.Issue, error) {
	return f.issues, nil
}

func (f *fakeGitHub) FetchContributors(_ context.Context, _ string) ([]model.Contributor, error) {
	return f.contributors, f.contributorsErr
}

func (f *fakeGitHub) FetchRepository(_ context.Context, _ string) (*model.Repository, error) {
	return f.repo, f.repoErr
}

func (f *fakeGitHub) FetchReviews(_ context.Context, _ string, _ int) ([]model.Review, error) {
	return f.reviews, nil
}

type fakeJira struct {
	issues []model.JiraIssue
	err    error
}

var _ driven.JiraSource = (*fakeJira)(nil)

func (f *fakeJira) SearchIssues(_ context.Context, _ string) ([]model.JiraIssue, error) {
	return f.issues, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestReportService(gh *fakeGitHub, jira driven.JiraSource) *ReportService {
	svc := NewReportService(gh, jira, testLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func manyContributors(n int) []model.Contributor {
	contributors := make([]model.Contributor, 0, n)
	for i := 0; i < n; i++ {
		contributors = append(contributors, model.Contributor{
			Login:         fmt.Sprintf("dev%02d", i),
			Contributions: 100 - i,
		})
	}
	return contributors
}

func TestBuildAnalytics(t *testing.T) {
	gh := &fakeGitHub{
		commits: []model.Commit{
			{SHA: "a", Author: "amy", Date: daysAgo(1)},
			{SHA: "b", Author: "amy", Date: daysAgo(3)},
			{SHA: "c", Author: "bea", Date: daysAgo(5)},
		},
		prs: []model.PullRequest{
			{Number: 1, State: model.PRStateClosed, CreatedAt: daysAgo(5), MergedAt: daysAgoPtr(4)},
			{Number: 2, State: model.PRStateOpen, CreatedAt: daysAgo(2)},
		},
		contributors: manyContributors(12),
	}

	bundle, err := newTestReportService(gh, nil).BuildAnalytics(context.Background(), "acme/polaris")

	require.NoError(t, err)
	assert.Equal(t, 3, bundle.CommitCount)
	assert.Equal(t, 2, bundle.PRCount)
	assert.Equal(t, 1, bundle.PRMetrics.Merged)
	assert.Equal(t, 1, bundle.PRMetrics.Open)
	assert.Equal(t, 3, bundle.DeploymentFrequency.TotalCommits)
	assert.Equal(t, BucketCount{Name: "amy", Count: 2}, bundle.ContributionDistribution[0])
	assert.Len(t, bundle.Contributors, 10) // Truncated from 12.
	assert.Equal(t, "dev00", bundle.Contributors[0].Login)
}

func TestBuildAnalytics_FetchErrorFailsBundle(t *testing.T) {
	fetchErr := errors.New("github: boom")
	gh := &fakeGitHub{prsErr: fetchErr}

	bundle, err := newTestReportService(gh, nil).BuildAnalytics(context.Background(), "acme/polaris")

	assert.Nil(t, bundle)
	require.ErrorIs(t, err, fetchErr)
}

func TestBuildDashboard(t *testing.T) {
	gh := &fakeGitHub{
		repo: &model.Repository{FullName: "acme/polaris", Language: "Go", Stars: 42},
		prs: []model.PullRequest{
			{Number: 1, State: model.PRStateOpen, Author: "amy", CreatedAt: daysAgo(2), UpdatedAt: daysAgo(2)},
			{Number: 2, State: model.PRStateOpen, Author: "amy", CreatedAt: daysAgo(3), UpdatedAt: daysAgo(10)},
			{Number: 3, State: model.PRStateClosed, Author: "bea", CreatedAt: daysAgo(10), MergedAt: daysAgoPtr(9), UpdatedAt: daysAgo(9)},
		},
		contributors: manyContributors(8),
	}

	bundle, err := newTestReportService(gh, nil).BuildDashboard(context.Background(), "acme/polaris")

	require.NoError(t, err)
	require.NotNil(t, bundle.Repository)
	assert.Equal(t, "acme/polaris", bundle.Repository.FullName)
	assert.Equal(t, PRTrends{ThisWeek: 2, LastWeek: 1, Delta: 1}, bundle.Trends)
	assert.Equal(t, BucketCount{Name: "amy", Count: 2}, bundle.AuthorMetrics[0])
	require.Len(t, bundle.BlockedPRs, 1) // Only #2 is open and stale.
	assert.Equal(t, 2, bundle.BlockedPRs[0].Number)
	assert.Len(t, bundle.TopContributors, 5) // Truncated from 8.
}

func TestBuildDashboard_MissingRepoPassesThrough(t *testing.T) {
	gh := &fakeGitHub{repo: nil}

	bundle, err := newTestReportService(gh, nil).BuildDashboard(context.Background(), "acme/ghost")

	require.NoError(t, err)
	assert.Nil(t, bundle.Repository)
}

func TestBuildDashboard_FetchErrorFailsBundle(t *testing.T) {
	fetchErr := errors.New("github: rate limited")
	gh := &fakeGitHub{repoErr: fetchErr}

	bundle, err := newTestReportService(gh, nil).BuildDashboard(context.Background(), "acme/polaris")

	assert.Nil(t, bundle)
	require.ErrorIs(t, err, fetchErr)
}

func TestBuildVelocity(t *testing.T) {
	jira := &fakeJira{
		issues: []model.JiraIssue{
			{Key: "POL-1", Status: "Done", Assignee: "dana", Created: daysAgo(10), Resolved: daysAgoPtr(2), Labels: []string{"backend"}},
			{Key: "POL-2", Status: "To Do", Components: []string{"frontend"}},
		},
	}

	bundle, err := newTestReportService(&fakeGitHub{}, jira).BuildVelocity(context.Background(), "POL")

	require.NoError(t, err)
	assert.Equal(t, 2, bundle.Velocity.TotalIssues)
	assert.Equal(t, 1, bundle.Velocity.Completed)
	assert.Equal(t, 1, bundle.TeamWorkload["dana"].Completed)
	assert.Equal(t, 1, bundle.TeamWorkload[model.UnassignedBucket].Total)
	assert.Len(t, bundle.Skills, 2)
}

func TestBuildVelocity_JiraNotConfigured(t *testing.T) {
	bundle, err := newTestReportService(&fakeGitHub{}, nil).BuildVelocity(context.Background(), "POL")

	assert.Nil(t, bundle)
	require.ErrorIs(t, err, ErrJiraNotConfigured)
}

func TestBuildVelocity_SearchErrorPropagates(t *testing.T) {
	searchErr := errors.New("jira: 401")
	jira := &fakeJira{err: searchErr}

	bundle, err := newTestReportService(&fakeGitHub{}, jira).BuildVelocity(context.Background(), "POL")

	assert.Nil(t, bundle)
	require.ErrorIs(t, err, searchErr)
}

func TestWeekOverWeekPRs_Empty(t *testing.T) {
	assert.Equal(t, PRTrends{}, weekOverWeekPRs(nil, now))
}
