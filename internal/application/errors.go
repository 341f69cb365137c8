package application

import "errors"

// Sentinel errors for sources that were not configured at startup. The HTTP
// layer maps these to client-facing failure envelopes.
var (
	ErrJiraNotConfigured = errors.New("jira source not configured")
	ErrLLMNotConfigured  = errors.New("llm provider not configured")
)
