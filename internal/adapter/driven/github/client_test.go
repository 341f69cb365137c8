package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient starts an httptest server for the given mux and returns a
// Client pointed at it.
func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewClientWithHTTPClient(srv.Client(), srv.URL+"/")
	require.NoError(t, err)
	return client
}

func TestFetchCommits(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/polaris/commits", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{
				"sha": "abc123",
				"commit": {"author": {"name": "Amy Ode", "email": "amy@example.com", "date": "2026-03-10T09:00:00Z"}},
				"author": {"login": "amyode"}
			},
			{
				"sha": "def456",
				"commit": {"author": {"email": "ghost@example.com", "date": "2026-03-11T09:00:00Z"}},
				"author": {"login": "ghost"}
			},
			{
				"commit": {"author": {"name": "No Sha"}}
			}
		]`)
	})

	commits, err := newTestClient(t, mux).FetchCommits(context.Background(), "acme/polaris", time.Time{})

	require.NoError(t, err)
	require.Len(t, commits, 2) // The sha-less record is dropped, not fatal.

	assert.Equal(t, "abc123", commits[0].SHA)
	assert.Equal(t, "Amy Ode", commits[0].Author)
	assert.Equal(t, "amy@example.com", commits[0].AuthorEmail)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), commits[0].Date)

	// Commit author name absent: falls back to the GitHub login.
	assert.Equal(t, "ghost", commits[1].Author)
}

func TestFetchCommits_Pagination(t *testing.T) {
	var baseURL string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/polaris/commits", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/acme/polaris/commits?page=2>; rel="next"`, baseURL))
			fmt.Fprint(w, `[{"sha": "page1"}]`)
			return
		}
		fmt.Fprint(w, `[{"sha": "page2"}]`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	baseURL = srv.URL

	client, err := NewClientWithHTTPClient(srv.Client(), srv.URL+"/")
	require.NoError(t, err)

	commits, err := client.FetchCommits(context.Background(), "acme/polaris", time.Time{})

	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "page1", commits[0].SHA)
	assert.Equal(t, "page2", commits[1].SHA)
}

func TestFetchPullRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/polaris/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{
				"id": 1001,
				"number": 42,
				"title": "Add caching layer",
				"state": "closed",
				"user": {"login": "amyode"},
				"created_at": "2026-03-01T10:00:00Z",
				"updated_at": "2026-03-02T10:00:00Z",
				"closed_at": "2026-03-02T10:00:00Z",
				"merged_at": "2026-03-02T10:00:00Z",
				"labels": [{"name": "backend"}]
			},
			{
				"id": 1002,
				"number": 43,
				"title": "WIP",
				"state": "open",
				"user": {"login": "bea"},
				"created_at": "2026-03-05T10:00:00Z",
				"updated_at": "2026-03-05T10:00:00Z"
			}
		]`)
	})

	prs, err := newTestClient(t, mux).FetchPullRequests(context.Background(), "acme/polaris", "all")

	require.NoError(t, err)
	require.Len(t, prs, 2)

	assert.Equal(t, 42, prs[0].Number)
	assert.Equal(t, "acme/polaris", prs[0].RepoFullName)
	assert.Equal(t, "amyode", prs[0].Author)
	assert.True(t, prs[0].IsMerged())
	assert.Equal(t, []string{"backend"}, prs[0].Labels)

	assert.False(t, prs[1].IsMerged())
	assert.Nil(t, prs[1].ClosedAt)
}

func TestFetchIssues_ExcludesPullRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/polaris/issues", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{
				"id": 2001,
				"number": 7,
				"title": "Crash on empty repo",
				"state": "open",
				"user": {"login": "cal"},
				"assignee": {"login": "amyode"},
				"labels": [{"name": "bug", "color": "d73a4a"}],
				"comments": 3,
				"created_at": "2026-02-20T10:00:00Z",
				"updated_at": "2026-03-01T10:00:00Z"
			},
			{
				"id": 2002,
				"number": 8,
				"title": "Actually a PR",
				"state": "open",
				"pull_request": {"url": "https://api.github.com/repos/acme/polaris/pulls/8"}
			}
		]`)
	})

	issues, err := newTestClient(t, mux).FetchIssues(context.Background(), "acme/polaris", "open")

	require.NoError(t, err)
	require.Len(t, issues, 1) // The PR-linked entry is filtered out.

	assert.Equal(t, 7, issues[0].Number)
	assert.Equal(t, "amyode", issues[0].Assignee)
	assert.Equal(t, 3, issues[0].CommentsCount)
	assert.True(t, issues[0].IsBug())
}

func TestFetchIssues_Pagination(t *testing.T) {
	var baseURL string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/polaris/issues", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/acme/polaris/issues?page=2>; rel="next"`, baseURL))
			fmt.Fprint(w, `[{"id": 1, "number": 1, "title": "first", "state": "open"}]`)
			return
		}
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		fmt.Fprint(w, `[{"id": 2, "number": 2, "title": "second", "state": "open"}]`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	baseURL = srv.URL

	client, err := NewClientWithHTTPClient(srv.Client(), srv.URL+"/")
	require.NoError(t, err)

	issues, err := client.FetchIssues(context.Background(), "acme/polaris", "open")

	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, 1, issues[0].Number)
	assert.Equal(t, 2, issues[1].Number)
}

func TestFetchContributors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/polaris/contributors", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"login": "amyode", "contributions": 120, "avatar_url": "https://example.com/a.png", "html_url": "https://github.com/amyode"},
			{"contributions": 5}
		]`)
	})

	contributors, err := newTestClient(t, mux).FetchContributors(context.Background(), "acme/polaris")

	require.NoError(t, err)
	require.Len(t, contributors, 1) // Login-less record dropped.
	assert.Equal(t, "amyode", contributors[0].Login)
	assert.Equal(t, 120, contributors[0].Contributions)
}

func TestFetchRepository(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/polaris", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"full_name": "acme/polaris",
			"owner": {"login": "acme"},
			"name": "polaris",
			"description": "Engineering dashboard",
			"language": "Go",
			"stargazers_count": 42,
			"forks_count": 7,
			"open_issues_count": 3
		}`)
	})

	repo, err := newTestClient(t, mux).FetchRepository(context.Background(), "acme/polaris")

	require.NoError(t, err)
	require.NotNil(t, repo)
	assert.Equal(t, "acme/polaris", repo.FullName)
	assert.Equal(t, "acme", repo.Owner)
	assert.Equal(t, "Go", repo.Language)
	assert.Equal(t, 42, repo.Stars)
}

func TestFetchRepository_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/ghost", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})

	repo, err := newTestClient(t, mux).FetchRepository(context.Background(), "acme/ghost")

	require.NoError(t, err) // 404 is an absence, not a failure.
	assert.Nil(t, repo)
}

func TestFetchReviews(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/polaris/pulls/42/reviews", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"id": 9001, "user": {"login": "bea"}, "state": "APPROVED", "submitted_at": "2026-03-01T12:00:00Z"}
		]`)
	})

	reviews, err := newTestClient(t, mux).FetchReviews(context.Background(), "acme/polaris", 42)

	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "bea", reviews[0].Reviewer)
	assert.Equal(t, "approved", reviews[0].State)
}

func TestFetchCommits_ServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/polaris/commits", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := newTestClient(t, mux).FetchCommits(context.Background(), "acme/polaris", time.Time{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "acme/polaris")
}

func TestSplitRepo(t *testing.T) {
	tests := []struct {
		in        string
		owner     string
		repo      string
		expectErr bool
	}{
		{"acme/polaris", "acme", "polaris", false},
		{"acme/nested/path", "acme", "nested/path", false},
		{"acme", "", "", true},
		{"/polaris", "", "", true},
		{"acme/", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			owner, repo, err := splitRepo(tt.in)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
		})
	}
}
