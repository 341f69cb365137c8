// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken string

	JiraBaseURL          string
	JiraEmail            string
	JiraToken            string
	JiraStoryPointsField string

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	ListenAddr string
	DBPath     string
}

// HasJiraCredentials returns true when the Jira base URL, email, and token
// are all set. Used by the composition root to decide whether to wire a Jira
// source at startup.
func (c *Config) HasJiraCredentials() bool {
	return c.JiraBaseURL != "" && c.JiraEmail != "" && c.JiraToken != ""
}

// HasLLMProvider returns true when an LLM base URL is configured. An API key
// is not required: local providers such as Ollama run without one.
func (c *Config) HasLLMProvider() bool {
	return c.LLMBaseURL != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. POLARIS_GITHUB_TOKEN is required. Jira variables
// (POLARIS_JIRA_BASE_URL, POLARIS_JIRA_EMAIL, POLARIS_JIRA_TOKEN) and LLM
// variables (POLARIS_LLM_BASE_URL, POLARIS_LLM_API_KEY) are optional; the
// corresponding endpoints report a configuration failure when unset.
// Optional variables with defaults: POLARIS_JIRA_STORY_POINTS_FIELD
// (customfield_10016), POLARIS_LLM_MODEL (llama-3.3-70b-versatile),
// POLARIS_LISTEN_ADDR (127.0.0.1:8080), POLARIS_DB_PATH (polaris.db).
func Load() (*Config, error) {
	token := os.Getenv("POLARIS_GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("POLARIS_GITHUB_TOKEN is required")
	}

	storyPointsField := "customfield_10016"
	if v, ok := os.LookupEnv("POLARIS_JIRA_STORY_POINTS_FIELD"); ok && v != "" {
		storyPointsField = v
	}

	llmModel := "llama-3.3-70b-versatile"
	if v, ok := os.LookupEnv("POLARIS_LLM_MODEL"); ok && v != "" {
		llmModel = v
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("POLARIS_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "polaris.db"
	if v, ok := os.LookupEnv("POLARIS_DB_PATH"); ok {
		dbPath = v
	}

	return &Config{
		GitHubToken:          token,
		JiraBaseURL:          os.Getenv("POLARIS_JIRA_BASE_URL"),
		JiraEmail:            os.Getenv("POLARIS_JIRA_EMAIL"),
		JiraToken:            os.Getenv("POLARIS_JIRA_TOKEN"),
		JiraStoryPointsField: storyPointsField,
		LLMBaseURL:           os.Getenv("POLARIS_LLM_BASE_URL"),
		LLMAPIKey:            os.Getenv("POLARIS_LLM_API_KEY"),
		LLMModel:             llmModel,
		ListenAddr:           listenAddr,
		DBPath:               dbPath,
	}, nil
}
