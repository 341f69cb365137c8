package model

// PRState represents the state of a pull request as reported by the provider.
type PRState string

const (
	PRStateOpen   PRState = "open"
	PRStateClosed PRState = "closed"
)

// IssueState represents the state of an issue.
type IssueState string

const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
)

// SizeCategory buckets a change by total lines touched.
type SizeCategory string

const (
	SizeXS     SizeCategory = "xs"     // < 10 lines
	SizeSmall  SizeCategory = "small"  // < 100 lines
	SizeMedium SizeCategory = "medium" // < 500 lines
	SizeLarge  SizeCategory = "large"  // < 1000 lines
	SizeXL     SizeCategory = "xl"
)

// SnapshotKind distinguishes persisted report snapshots by origin.
type SnapshotKind string

const (
	SnapshotKindAnalytics SnapshotKind = "analytics"
	SnapshotKindDashboard SnapshotKind = "dashboard"
	SnapshotKindLLMReport SnapshotKind = "llm_report"
)
