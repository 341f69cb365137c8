// Package driven defines the port interfaces implemented by driven adapters.
package driven

import (
	"context"
	"time"

	"github.com/StarkFurry64/polaris/internal/domain/model"
)

// GitHubSource fetches normalized records from the GitHub REST API.
// Implementations handle pagination and drop malformed records; callers
// receive only records with their identifying fields present.
type GitHubSource interface {
	// FetchCommits returns commits on the default branch since the given
	// instant. A zero since means no lower bound.
	FetchCommits(ctx context.Context, repoFullName string, since time.Time) ([]model.Commit, error)

	// FetchPullRequests returns pull requests filtered by state
	// ("open", "closed", or "all").
	FetchPullRequests(ctx context.Context, repoFullName string, state string) ([]model.PullRequest, error)

	// FetchIssues returns issues filtered by state, excluding pull requests.
	FetchIssues(ctx context.Context, repoFullName string, state string) ([]model.Issue, error)

	// FetchContributors returns contributors ordered by contribution count.
	FetchContributors(ctx context.Context, repoFullName string) ([]model.Contributor, error)

	// FetchRepository returns the repository summary. Returns nil, nil when
	// the repository does not exist.
	FetchRepository(ctx context.Context, repoFullName string) (*model.Repository, error)

	// FetchReviews returns all reviews for a pull request.
	FetchReviews(ctx context.Context, repoFullName string, prNumber int) ([]model.Review, error)
}
