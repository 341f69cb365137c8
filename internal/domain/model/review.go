package model

import "time"

// Review is the normalized representation of a pull request review.
// Only the fields needed for pickup-time computation are carried.
type Review struct {
	ID          int64
	Reviewer    string
	State       string
	SubmittedAt time.Time
}
