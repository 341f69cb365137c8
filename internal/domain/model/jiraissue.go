package model

import (
	"strings"
	"time"
)

// UnassignedBucket is the display value used when a Jira issue has no
// assignee. It is a first-class grouping key, not a placeholder for null.
const UnassignedBucket = "Unassigned"

// JiraIssue is the normalized representation of a Jira issue from the
// REST v3 search API.
type JiraIssue struct {
	Key         string // e.g. "POL-123"
	Summary     string
	Status      string // Status name as reported, e.g. "In Progress".
	IssueType   string
	Assignee    string // Defaults to UnassignedBucket when absent.
	Reporter    string
	Created     time.Time
	Updated     time.Time
	Resolved    *time.Time
	StoryPoints *float64
	Labels      []string
	Components  []string
}

// Status matching is case-insensitive throughout. The upstream dashboards
// disagreed on this (exact match in some paths, lowered in others); the
// case-insensitive form is the documented behavior here.

// IsCompleted reports whether the issue status is Done or Closed.
func (j JiraIssue) IsCompleted() bool {
	return strings.EqualFold(j.Status, "Done") || strings.EqualFold(j.Status, "Closed")
}

// IsInProgress reports whether the issue status is In Progress.
func (j JiraIssue) IsInProgress() bool {
	return strings.EqualFold(j.Status, "In Progress")
}

// IsTodo reports whether the issue status is To Do or Open.
func (j JiraIssue) IsTodo() bool {
	return strings.EqualFold(j.Status, "To Do") || strings.EqualFold(j.Status, "Open")
}
