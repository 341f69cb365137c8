package application

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/StarkFurry64/polaris/internal/domain/model"
	"github.com/StarkFurry64/polaris/internal/domain/port/driven"
)

// AnalyticsBundle is the composite view backing the analytics page.
type AnalyticsBundle struct {
	PRMetrics                PRMetrics           `json:"pr_metrics"`
	DeploymentFrequency      DeploymentFrequency `json:"deployment_frequency"`
	ContributionDistribution []BucketCount       `json:"contribution_distribution"`
	Contributors             []model.Contributor `json:"contributors"`
	CommitCount              int                 `json:"commit_count"`
	PRCount                  int                 `json:"pr_count"`
}

// PRTrends is the week-over-week pull request activity delta.
type PRTrends struct {
	ThisWeek int `json:"this_week"`
	LastWeek int `json:"last_week"`
	Delta    int `json:"delta"`
}

// DashboardBundle is the composite view backing the main dashboard.
type DashboardBundle struct {
	Repository      *model.Repository   `json:"repository"`
	Metrics         PRMetrics           `json:"metrics"`
	Trends          PRTrends            `json:"trends"`
	AuthorMetrics   []BucketCount       `json:"author_metrics"`
	BlockedPRs      []BlockedPR         `json:"blocked_prs"`
	TopContributors []model.Contributor `json:"top_contributors"`
}

// VelocityBundle is the composite view backing the Jira velocity page.
type VelocityBundle struct {
	Velocity     Velocity                   `json:"velocity"`
	TeamWorkload map[string]WorkloadSummary `json:"team_workload"`
	Skills       []BucketCount              `json:"skills"`
}

// ReportService composes aggregate results into the bundles the dashboard
// consumes. Source fetches for one bundle run concurrently; if any fetch
// fails the whole bundle fails, since a partial bundle would render
// misleading zeros.
type ReportService struct {
	github driven.GitHubSource
	jira   driven.JiraSource
	logger *slog.Logger
	now    func() time.Time
}

// NewReportService creates a ReportService over the given sources. jira may
// be nil when Jira is not configured; velocity requests then fail.
func NewReportService(github driven.GitHubSource, jira driven.JiraSource, logger *slog.Logger) *ReportService {
	return &ReportService{
		github: github,
		jira:   jira,
		logger: logger,
		now:    time.Now,
	}
}

// BuildAnalytics fetches commits, pull requests, and contributors for the
// repository concurrently and aggregates them into an AnalyticsBundle.
func (s *ReportService) BuildAnalytics(ctx context.Context, repoFullName string) (*AnalyticsBundle, error) {
	now := s.now()

	var (
		commits      []model.Commit
		prs          []model.PullRequest
		contributors []model.Contributor
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		commits, err = s.github.FetchCommits(gctx, repoFullName, now.AddDate(0, 0, -30))
		return err
	})
	g.Go(func() error {
		var err error
		prs, err = s.github.FetchPullRequests(gctx, repoFullName, "all")
		return err
	})
	g.Go(func() error {
		var err error
		contributors, err = s.github.FetchContributors(gctx, repoFullName)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bundle := &AnalyticsBundle{
		PRMetrics:                CalculatePRMetrics(prs, now),
		DeploymentFrequency:      CalculateDeploymentFrequency(commits, 30, now),
		ContributionDistribution: ContributionDistribution(commits),
		Contributors:             topContributors(contributors, 10),
		CommitCount:              len(commits),
		PRCount:                  len(prs),
	}

	s.logger.Info("analytics bundle built",
		"repo", repoFullName,
		"commits", bundle.CommitCount,
		"prs", bundle.PRCount,
	)

	return bundle, nil
}

// BuildDashboard fetches the repository summary, pull requests, and
// contributors concurrently and aggregates them into a DashboardBundle.
func (s *ReportService) BuildDashboard(ctx context.Context, repoFullName string) (*DashboardBundle, error) {
	now := s.now()

	var (
		repo         *model.Repository
		prs          []model.PullRequest
		contributors []model.Contributor
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		repo, err = s.github.FetchRepository(gctx, repoFullName)
		return err
	})
	g.Go(func() error {
		var err error
		prs, err = s.github.FetchPullRequests(gctx, repoFullName, "all")
		return err
	})
	g.Go(func() error {
		var err error
		contributors, err = s.github.FetchContributors(gctx, repoFullName)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bundle := &DashboardBundle{
		Repository:      repo,
		Metrics:         CalculatePRMetrics(prs, now),
		Trends:          weekOverWeekPRs(prs, now),
		AuthorMetrics:   topBuckets(prAuthorDistribution(prs), 10),
		BlockedPRs:      IdentifyBlockedPRs(prs, 7, now),
		TopContributors: topContributors(contributors, 5),
	}

	s.logger.Info("dashboard bundle built", "repo", repoFullName, "prs", len(prs))

	return bundle, nil
}

// BuildVelocity fetches Jira issues for the project and aggregates velocity,
// workload, and skill distributions.
func (s *ReportService) BuildVelocity(ctx context.Context, projectKey string) (*VelocityBundle, error) {
	if s.jira == nil {
		return nil, ErrJiraNotConfigured
	}

	issues, err := s.jira.SearchIssues(ctx, projectKey)
	if err != nil {
		return nil, err
	}

	bundle := &VelocityBundle{
		Velocity:     CalculateVelocity(issues, s.now()),
		TeamWorkload: TeamWorkload(issues),
		Skills:       ExtractSkillRequirements(issues),
	}

	s.logger.Info("velocity bundle built", "project", projectKey, "issues", len(issues))

	return bundle, nil
}

// weekOverWeekPRs computes the PR creation delta between the trailing week
// and the week before it.
func weekOverWeekPRs(prs []model.PullRequest, now time.Time) PRTrends {
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	var trends PRTrends
	for _, pr := range prs {
		switch {
		case !pr.CreatedAt.Before(weekAgo):
			trends.ThisWeek++
		case !pr.CreatedAt.Before(twoWeeksAgo):
			trends.LastWeek++
		}
	}
	trends.Delta = trends.ThisWeek - trends.LastWeek

	return trends
}

// prAuthorDistribution groups pull requests by author, "Unknown" when absent.
func prAuthorDistribution(prs []model.PullRequest) []BucketCount {
	counts := make(map[string]int, len(prs))
	var order []string

	for _, pr := range prs {
		name := pr.Author
		if name == "" {
			name = "Unknown"
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}

	return sortedBuckets(order, counts)
}

func topBuckets(buckets []BucketCount, n int) []BucketCount {
	if len(buckets) > n {
		buckets = buckets[:n]
	}
	return buckets
}

func topContributors(contributors []model.Contributor, n int) []model.Contributor {
	if contributors == nil {
		return []model.Contributor{}
	}
	if len(contributors) > n {
		contributors = contributors[:n]
	}
	return contributors
}
