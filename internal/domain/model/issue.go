package model

import (
	"strings"
	"time"
)

// Label is an issue label with its display color.
type Label struct {
	Name  string
	Color string
}

// Issue is the normalized representation of a GitHub issue.
// Classification flags (IsBug, IsEnhancement, IsPriority, IsStale) are
// computed from the label set and timestamps on demand, never stored.
type Issue struct {
	ID            int64
	Number        int
	RepoFullName  string
	Title         string
	State         IssueState
	Author        string
	Assignee      string // Empty when unassigned.
	Assignees     []string
	Labels        []Label
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ClosedAt      *time.Time
	CommentsCount int
}

// staleIssueThreshold is the age after which an issue with no updates is
// considered stale, regardless of its state.
const staleIssueThreshold = 14 * 24 * time.Hour

// IsBug reports whether any label name contains "bug" (case-insensitive).
// Matching is substring-based on purpose: "bugfix-candidate" counts.
func (i Issue) IsBug() bool {
	return i.hasLabelContaining("bug")
}

// IsEnhancement reports whether any label name contains "enhancement" or
// "feature" (case-insensitive).
func (i Issue) IsEnhancement() bool {
	return i.hasLabelContaining("enhancement") || i.hasLabelContaining("feature")
}

// IsPriority reports whether any label name contains "priority", "urgent",
// or "critical" (case-insensitive).
func (i Issue) IsPriority() bool {
	return i.hasLabelContaining("priority") || i.hasLabelContaining("urgent") || i.hasLabelContaining("critical")
}

// IsStale reports whether the issue has gone more than 14 days without an
// update as of now. State is not considered; callers combine with
// State == IssueStateOpen when they want "stale and open".
func (i Issue) IsStale(now time.Time) bool {
	return now.Sub(i.UpdatedAt) > staleIssueThreshold
}

func (i Issue) hasLabelContaining(substr string) bool {
	for _, l := range i.Labels {
		if strings.Contains(strings.ToLower(l.Name), substr) {
			return true
		}
	}
	return false
}
