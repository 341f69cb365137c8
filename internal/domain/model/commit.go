package model

import "time"

// Commit is the normalized representation of a repository commit.
// Additions and Deletions are zero when the provider response omits stats
// (the list endpoint does not include them).
type Commit struct {
	SHA         string
	Author      string // Display name; empty when the provider omits it.
	AuthorEmail string
	Date        time.Time
	Additions   int
	Deletions   int
}
