package model

import "time"

// ReportSnapshot is a persisted copy of a generated report. Snapshots are the
// only durable artifact in the system; the records they were computed from are
// discarded after each request.
type ReportSnapshot struct {
	ID        int64
	Repo      string
	Kind      SnapshotKind
	Title     string
	Markdown  string // Raw report body as produced (LLM output or empty).
	HTML      string // Sanitized rendering of Markdown.
	Payload   string // JSON-encoded bundle the report was generated from.
	CreatedAt time.Time
}
