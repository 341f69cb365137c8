package model

import "time"

// PullRequest is the normalized representation of a GitHub pull request.
type PullRequest struct {
	ID           int64
	Number       int
	RepoFullName string
	Title        string
	State        PRState
	Author       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ClosedAt     *time.Time
	MergedAt     *time.Time // Presence is the sole signal of "merged".
	Additions    int
	Deletions    int
	ChangedFiles int
	Labels       []string
}

// IsMerged reports whether the PR was merged. A closed PR without MergedAt
// is closed-unmerged and returns false here.
func (pr PullRequest) IsMerged() bool {
	return pr.MergedAt != nil
}

// DaysSinceUpdate returns the number of whole days elapsed since the PR was
// last updated, relative to now.
func (pr PullRequest) DaysSinceUpdate(now time.Time) int {
	return int(now.Sub(pr.UpdatedAt).Hours() / 24)
}
