package driven

import "context"

// ChatClient proxies a prompt to a chat-completion LLM provider and returns
// the raw text of the first completion choice.
type ChatClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
