package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/StarkFurry64/polaris/internal/domain/port/driven"
)

// chatSystemPrompt frames the assistant for ask-your-data questions. The
// aggregate bundle is passed verbatim as context JSON.
const chatSystemPrompt = "You are an engineering analytics assistant. " +
	"Answer questions using only the metrics JSON provided. " +
	"Be concise and cite concrete numbers from the data."

// reportSystemPrompt frames the assistant for canned report generation.
const reportSystemPrompt = "You are an engineering analytics assistant. " +
	"Write a short markdown status report from the metrics JSON provided, " +
	"with sections for throughput, review flow, and risks."

// riskSystemPrompt requests a strict JSON risk assessment.
const riskSystemPrompt = "You are an engineering analytics assistant. " +
	"Assess delivery risk from the metrics JSON provided. Respond with only " +
	`a JSON object of the form {"riskScore": <0-100>, "riskLevel": "low|medium|high", "summary": "<one sentence>"}.`

// RiskAssessment is the structured output of an LLM risk analysis.
type RiskAssessment struct {
	RiskScore int    `json:"riskScore"`
	RiskLevel string `json:"riskLevel"`
	Summary   string `json:"summary"`
}

// fallbackRiskAssessment is returned when the provider response cannot be
// parsed as the requested schema. Parsing failure is not an error: the
// dashboard renders the unknown state instead.
func fallbackRiskAssessment() RiskAssessment {
	return RiskAssessment{RiskScore: 0, RiskLevel: "unknown", Summary: ""}
}

// InsightService proxies prompts to an LLM provider with aggregate bundles
// attached as context.
type InsightService struct {
	chat   driven.ChatClient
	logger *slog.Logger
}

// NewInsightService creates an InsightService. chat may be nil when no
// provider is configured; calls then return ErrLLMNotConfigured.
func NewInsightService(chat driven.ChatClient, logger *slog.Logger) *InsightService {
	return &InsightService{chat: chat, logger: logger}
}

// Ask answers a free-form question about the given context data. The data is
// JSON-encoded and appended to the prompt; the provider's text is returned
// unmodified.
func (s *InsightService) Ask(ctx context.Context, question string, contextData any) (string, error) {
	if s.chat == nil {
		return "", ErrLLMNotConfigured
	}

	prompt, err := promptWithContext(question, contextData)
	if err != nil {
		return "", err
	}

	return s.chat.Complete(ctx, chatSystemPrompt, prompt)
}

// GenerateReport produces a markdown status report for the given bundle.
func (s *InsightService) GenerateReport(ctx context.Context, title string, bundle any) (string, error) {
	if s.chat == nil {
		return "", ErrLLMNotConfigured
	}

	prompt, err := promptWithContext(fmt.Sprintf("Generate the report titled %q.", title), bundle)
	if err != nil {
		return "", err
	}

	return s.chat.Complete(ctx, reportSystemPrompt, prompt)
}

// AnalyzeRisk requests a structured risk assessment for the given bundle.
// Provider errors propagate; an unparseable response degrades to the
// fallback object.
func (s *InsightService) AnalyzeRisk(ctx context.Context, bundle any) (RiskAssessment, error) {
	if s.chat == nil {
		return RiskAssessment{}, ErrLLMNotConfigured
	}

	prompt, err := promptWithContext("Assess the delivery risk.", bundle)
	if err != nil {
		return RiskAssessment{}, err
	}

	raw, err := s.chat.Complete(ctx, riskSystemPrompt, prompt)
	if err != nil {
		return RiskAssessment{}, err
	}

	var assessment RiskAssessment
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &assessment); err != nil {
		s.logger.Warn("risk response not parseable, using fallback", "error", err)
		return fallbackRiskAssessment(), nil
	}

	return assessment, nil
}

// promptWithContext appends the JSON-encoded context data to the question.
func promptWithContext(question string, contextData any) (string, error) {
	data, err := json.Marshal(contextData)
	if err != nil {
		return "", fmt.Errorf("encode context data: %w", err)
	}
	return question + "\n\nContext JSON:\n" + string(data), nil
}

// stripCodeFence removes a surrounding markdown code fence, which providers
// commonly wrap JSON responses in despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
