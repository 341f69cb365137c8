package driven

import (
	"context"

	"github.com/StarkFurry64/polaris/internal/domain/model"
)

// JiraSource fetches normalized issues from the Jira REST API.
type JiraSource interface {
	// SearchIssues returns all issues for the given project key.
	// Implementations handle pagination and drop records without a key.
	SearchIssues(ctx context.Context, projectKey string) ([]model.JiraIssue, error)
}
