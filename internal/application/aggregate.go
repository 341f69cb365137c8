// Package application contains the metrics derivation core and the services
// that orchestrate it.
package application

import (
	"math"
	"sort"
	"time"

	"github.com/StarkFurry64/polaris/internal/domain/model"
)

// PRMetrics summarizes a collection of pull requests.
type PRMetrics struct {
	Total             int     `json:"total"`
	Open              int     `json:"open"`
	Merged            int     `json:"merged"`
	Closed            int     `json:"closed"` // Closed without merge.
	AvgMergeTimeHours float64 `json:"avg_merge_time_hours"`
	WeeklyMergeRate   int     `json:"weekly_merge_rate"`
	MergeRate         int     `json:"merge_rate"` // Percent of terminal PRs that merged.
}

// CalculatePRMetrics computes PR counts, the average merge time, and merge
// rates over the given collection. now anchors the trailing 7-day window for
// WeeklyMergeRate. An empty collection yields an all-zero summary.
func CalculatePRMetrics(prs []model.PullRequest, now time.Time) PRMetrics {
	m := PRMetrics{Total: len(prs)}

	weekAgo := now.AddDate(0, 0, -7)
	var mergeHours float64
	var timedMerges int

	for _, pr := range prs {
		switch {
		case pr.IsMerged():
			m.Merged++
			if !pr.MergedAt.Before(weekAgo) {
				m.WeeklyMergeRate++
			}
			if !pr.CreatedAt.IsZero() {
				mergeHours += pr.MergedAt.Sub(pr.CreatedAt).Hours()
				timedMerges++
			}
		case pr.State == model.PRStateClosed:
			m.Closed++
		default:
			m.Open++
		}
	}

	if timedMerges > 0 {
		m.AvgMergeTimeHours = round1(mergeHours / float64(timedMerges))
	}
	if terminal := m.Merged + m.Closed; terminal > 0 {
		m.MergeRate = roundPercent(float64(m.Merged) / float64(terminal) * 100)
	}

	return m
}

// DeploymentFrequency summarizes commit activity over a trailing window.
type DeploymentFrequency struct {
	TotalCommits int     `json:"total_commits"`
	PerDay       float64 `json:"per_day"`
	PerWeek      float64 `json:"per_week"`
}

// CalculateDeploymentFrequency counts commits whose date falls within the
// trailing days-day window ending at now. A non-positive days defaults to 30.
func CalculateDeploymentFrequency(commits []model.Commit, days int, now time.Time) DeploymentFrequency {
	if days <= 0 {
		days = 30
	}

	cutoff := now.AddDate(0, 0, -days)
	var total int
	for _, c := range commits {
		if !c.Date.Before(cutoff) {
			total++
		}
	}

	return DeploymentFrequency{
		TotalCommits: total,
		PerDay:       round1(float64(total) / float64(days)),
		PerWeek:      round1(float64(total) / (float64(days) / 7)),
	}
}

// BucketCount is a named aggregation bucket with its member count.
type BucketCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ContributionDistribution groups commits by author, sorted descending by
// count with ties kept in first-seen order. Commits without an author fall
// into the "Unknown" bucket.
func ContributionDistribution(commits []model.Commit) []BucketCount {
	counts := make(map[string]int, len(commits))
	var order []string

	for _, c := range commits {
		name := c.Author
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

// LanguageDistribution groups repositories by primary language, sorted
// descending by count. Repositories without a language are skipped entirely:
// unlike missing commit authors, they do not create an "Unknown" bucket.
func LanguageDistribution(repos []model.Repository) []BucketCount {
	counts := make(map[string]int, len(repos))
	var order []string

	for _, r := range repos {
		if r.Language == "" {
			continue
		}
		if _, seen := counts[r.Language]; !seen {
			order = append(order, r.Language)
		}
		counts[r.Language]++
	}

	return sortedBuckets(order, counts)
}

// Velocity summarizes Jira issue flow for a project.
type Velocity struct {
	TotalIssues      int     `json:"total_issues"`
	Completed        int     `json:"completed"`
	InProgress       int     `json:"in_progress"`
	Todo             int     `json:"todo"`
	AvgCycleTimeDays float64 `json:"avg_cycle_time_days"`
	WeeklyThroughput int     `json:"weekly_throughput"`
	CompletionRate   int     `json:"completion_rate"`
}

// CalculateVelocity computes issue state counts, the average cycle time in
// days over resolved issues, and the completion rate. Status matching is
// case-insensitive. An empty collection yields an all-zero summary.
func CalculateVelocity(issues []model.JiraIssue, now time.Time) Velocity {
	v := Velocity{TotalIssues: len(issues)}

	weekAgo := now.AddDate(0, 0, -7)
	var cycleDays float64
	var resolved int

	for _, issue := range issues {
		switch {
		case issue.IsCompleted():
			v.Completed++
			if issue.Resolved != nil {
				cycleDays += issue.Resolved.Sub(issue.Created).Hours() / 24
				resolved++
				if !issue.Resolved.Before(weekAgo) {
					v.WeeklyThroughput++
				}
			}
		case issue.IsInProgress():
			v.InProgress++
		default:
			v.Todo++
		}
	}

	if resolved > 0 {
		v.AvgCycleTimeDays = round1(cycleDays / float64(resolved))
	}
	if v.TotalIssues > 0 {
		v.CompletionRate = roundPercent(float64(v.Completed) / float64(v.TotalIssues) * 100)
	}

	return v
}

// WorkloadSummary is the per-assignee slice of a team workload.
type WorkloadSummary struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
}

// TeamWorkload groups Jira issues by assignee. Issues without an assignee
// land in the "Unassigned" bucket, which is a first-class key.
func TeamWorkload(issues []model.JiraIssue) map[string]WorkloadSummary {
	workload := make(map[string]WorkloadSummary, len(issues))

	for _, issue := range issues {
		assignee := issue.Assignee
		if assignee == "" {
			assignee = model.UnassignedBucket
		}

		w := workload[assignee]
		w.Total++
		if issue.IsCompleted() {
			w.Completed++
		} else if issue.IsInProgress() {
			w.InProgress++
		}
		workload[assignee] = w
	}

	return workload
}

// ExtractSkillRequirements counts how many issues mention each label or
// component, sorted descending. A name appearing as both a label and a
// component on the same issue is counted once for that issue.
func ExtractSkillRequirements(issues []model.JiraIssue) []BucketCount {
	counts := make(map[string]int)
	var order []string

	for _, issue := range issues {
		seen := make(map[string]bool, len(issue.Labels)+len(issue.Components))
		for _, name := range issue.Labels {
			seen[name] = true
		}
		for _, name := range issue.Components {
			seen[name] = true
		}
		// Iterate labels then components so first-seen order is deterministic.
		for _, name := range append(append([]string{}, issue.Labels...), issue.Components...) {
			if !seen[name] {
				continue
			}
			seen[name] = false
			if _, known := counts[name]; !known {
				order = append(order, name)
			}
			counts[name]++
		}
	}

	return sortedBuckets(order, counts)
}

// CycleTimeHours returns the hours between PR creation and merge, or nil for
// an unmerged PR. Callers must filter nils before averaging.
func CycleTimeHours(pr model.PullRequest) *float64 {
	if pr.MergedAt == nil {
		return nil
	}
	hours := pr.MergedAt.Sub(pr.CreatedAt).Hours()
	return &hours
}

// PickupTimeHours returns the hours between PR creation and its earliest
// review, or nil when the PR has no reviews.
func PickupTimeHours(pr model.PullRequest, reviews []model.Review) *float64 {
	var first time.Time
	for _, r := range reviews {
		if first.IsZero() || r.SubmittedAt.Before(first) {
			first = r.SubmittedAt
		}
	}
	if first.IsZero() {
		return nil
	}
	hours := first.Sub(pr.CreatedAt).Hours()
	return &hours
}

// CategorizeSize buckets a change by total lines touched. Boundaries are
// inclusive-lower/exclusive-upper: a 10-line change is "small", not "xs".
func CategorizeSize(additions, deletions int) model.SizeCategory {
	total := additions + deletions
	switch {
	case total < 10:
		return model.SizeXS
	case total < 100:
		return model.SizeSmall
	case total < 500:
		return model.SizeMedium
	case total < 1000:
		return model.SizeLarge
	default:
		return model.SizeXL
	}
}

// BlockedPR is a lightweight summary of an open PR with no recent activity.
type BlockedPR struct {
	Number          int    `json:"number"`
	Repo            string `json:"repo"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	DaysSinceUpdate int    `json:"days_since_update"`
}

// IdentifyBlockedPRs returns open PRs whose last update is older than
// staleDays days as of now. A non-positive staleDays defaults to 7.
func IdentifyBlockedPRs(prs []model.PullRequest, staleDays int, now time.Time) []BlockedPR {
	if staleDays <= 0 {
		staleDays = 7
	}

	blocked := []BlockedPR{}
	for _, pr := range prs {
		if pr.State != model.PRStateOpen {
			continue
		}
		days := pr.DaysSinceUpdate(now)
		if days > staleDays {
			blocked = append(blocked, BlockedPR{
				Number:          pr.Number,
				Repo:            pr.RepoFullName,
				Title:           pr.Title,
				Author:          pr.Author,
				DaysSinceUpdate: days,
			})
		}
	}

	return blocked
}

// sortedBuckets orders bucket names descending by count, preserving
// first-seen order among equal counts.
func sortedBuckets(order []string, counts map[string]int) []BucketCount {
	buckets := make([]BucketCount, 0, len(order))
	for _, name := range order {
		buckets = append(buckets, BucketCount{Name: name, Count: counts[name]})
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})

	return buckets
}

// round1 rounds half away from zero to one decimal place.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// roundPercent rounds half away from zero to the nearest whole percent.
func roundPercent(x float64) int {
	return int(math.Round(x))
}
