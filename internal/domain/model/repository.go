package model

// Repository is the normalized summary of a repository.
// Language is empty when the provider reports none; language distribution
// drops such repositories rather than bucketing them.
type Repository struct {
	FullName    string
	Owner       string
	Name        string
	Description string
	Language    string
	Stars       int
	Forks       int
	OpenIssues  int
}
