// Package jira implements the JiraSource port against the Jira Cloud REST v3
// search API.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/StarkFurry64/polaris/internal/domain/model"
	"github.com/StarkFurry64/polaris/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.JiraSource = (*Client)(nil)

// jiraTimeLayout is the timestamp format Jira Cloud uses in issue fields.
const jiraTimeLayout = "2006-01-02T15:04:05.000-0700"

const defaultPageSize = 100

// Client implements the driven.JiraSource port over plain HTTP with basic
// auth (account email + API token).
type Client struct {
	httpClient       *http.Client
	baseURL          string
	email            string
	token            string
	storyPointsField string // Custom field id carrying story points.
}

// NewClient creates a Jira client. baseURL is the site root, e.g.
// "https://example.atlassian.net". storyPointsField names the custom field
// holding story points ("customfield_10016" on most Jira Cloud sites).
func NewClient(baseURL, email, token, storyPointsField string) *Client {
	return &Client{
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		baseURL:          strings.TrimSuffix(baseURL, "/"),
		email:            email,
		token:            token,
		storyPointsField: storyPointsField,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base
// URL, for testing against an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, storyPointsField string) *Client {
	return &Client{
		httpClient:       httpClient,
		baseURL:          strings.TrimSuffix(baseURL, "/"),
		storyPointsField: storyPointsField,
	}
}

// searchResponse is the wire shape of /rest/api/3/search.
type searchResponse struct {
	StartAt    int        `json:"startAt"`
	MaxResults int        `json:"maxResults"`
	Total      int        `json:"total"`
	Issues     []rawIssue `json:"issues"`
}

type rawIssue struct {
	Key    string          `json:"key"`
	Fields json.RawMessage `json:"fields"`
}

// rawFields covers the subset of issue fields the normalizer reads. The
// story-points custom field is extracted separately since its key is
// site-specific.
type rawFields struct {
	Summary string `json:"summary"`
	Status  struct {
		Name string `json:"name"`
	} `json:"status"`
	IssueType struct {
		Name string `json:"name"`
	} `json:"issuetype"`
	Assignee *struct {
		DisplayName string `json:"displayName"`
	} `json:"assignee"`
	Reporter *struct {
		DisplayName string `json:"displayName"`
	} `json:"reporter"`
	Created        string   `json:"created"`
	Updated        string   `json:"updated"`
	ResolutionDate string   `json:"resolutiondate"`
	Labels         []string `json:"labels"`
	Components     []struct {
		Name string `json:"name"`
	} `json:"components"`
}

// SearchIssues returns all issues for the project, following startAt
// pagination. Issues without a key are dropped with a logged warning;
// malformed field blocks degrade to zero values rather than failing the batch.
func (c *Client) SearchIssues(ctx context.Context, projectKey string) ([]model.JiraIssue, error) {
	issues := []model.JiraIssue{}
	startAt := 0

	for {
		page, err := c.searchPage(ctx, projectKey, startAt)
		if err != nil {
			return nil, err
		}

		for _, raw := range page.Issues {
			issue, ok := c.mapIssue(raw)
			if !ok {
				slog.Warn("dropping jira issue without key", "project", projectKey)
				continue
			}
			issues = append(issues, issue)
		}

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			break
		}
	}

	return issues, nil
}

func (c *Client) searchPage(ctx context.Context, projectKey string, startAt int) (*searchResponse, error) {
	q := url.Values{}
	q.Set("jql", fmt.Sprintf("project = %q ORDER BY created DESC", projectKey))
	q.Set("startAt", fmt.Sprintf("%d", startAt))
	q.Set("maxResults", fmt.Sprintf("%d", defaultPageSize))
	q.Set("fields", "summary,status,issuetype,assignee,reporter,created,updated,resolutiondate,labels,components,"+c.storyPointsField)

	reqURL := c.baseURL + "/rest/api/3/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build jira search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.email != "" {
		req.SetBasicAuth(c.email, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jira search for %s: %w", projectKey, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("jira search for %s: status %d: %s", projectKey, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode jira search response: %w", err)
	}

	return &page, nil
}

// mapIssue normalizes one raw search result. The second return is false when
// the issue has no key.
func (c *Client) mapIssue(raw rawIssue) (model.JiraIssue, bool) {
	if raw.Key == "" {
		return model.JiraIssue{}, false
	}

	var fields rawFields
	if err := json.Unmarshal(raw.Fields, &fields); err != nil {
		slog.Warn("jira issue fields not parseable, using defaults", "key", raw.Key, "error", err)
	}

	assignee := model.UnassignedBucket
	if fields.Assignee != nil && fields.Assignee.DisplayName != "" {
		assignee = fields.Assignee.DisplayName
	}

	var reporter string
	if fields.Reporter != nil {
		reporter = fields.Reporter.DisplayName
	}

	components := make([]string, 0, len(fields.Components))
	for _, comp := range fields.Components {
		components = append(components, comp.Name)
	}

	labels := fields.Labels
	if labels == nil {
		labels = []string{}
	}

	return model.JiraIssue{
		Key:         raw.Key,
		Summary:     fields.Summary,
		Status:      fields.Status.Name,
		IssueType:   fields.IssueType.Name,
		Assignee:    assignee,
		Reporter:    reporter,
		Created:     parseJiraTime(fields.Created),
		Updated:     parseJiraTime(fields.Updated),
		Resolved:    parseJiraTimePtr(fields.ResolutionDate),
		StoryPoints: extractStoryPoints(raw.Fields, c.storyPointsField),
		Labels:      labels,
		Components:  components,
	}, true
}

// extractStoryPoints pulls the site-specific story points custom field out of
// the raw fields block. Absent or non-numeric values yield nil.
func extractStoryPoints(fields json.RawMessage, fieldID string) *float64 {
	if fieldID == "" || len(fields) == 0 {
		return nil
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(fields, &generic); err != nil {
		return nil
	}

	raw, ok := generic[fieldID]
	if !ok {
		return nil
	}

	var points float64
	if err := json.Unmarshal(raw, &points); err != nil {
		return nil
	}

	return &points
}

// parseJiraTime parses a Jira timestamp, falling back to RFC 3339. A
// malformed or empty value yields the zero time rather than an error.
func parseJiraTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	if t, err := time.Parse(jiraTimeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}

	slog.Warn("unrecognized jira timestamp", "value", s)
	return time.Time{}
}

func parseJiraTimePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := parseJiraTime(s)
	if t.IsZero() {
		return nil
	}
	return &t
}
