// Package httphandler is the HTTP driving adapter serving the dashboard API.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/StarkFurry64/polaris/internal/application"
	"github.com/StarkFurry64/polaris/internal/domain/model"
	"github.com/StarkFurry64/polaris/internal/domain/port/driven"
)

const defaultSnapshotListLimit = 20

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	reports   *application.ReportService
	insight   *application.InsightService
	snapshots driven.SnapshotStore
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	reports *application.ReportService,
	insight *application.InsightService,
	snapshots driven.SnapshotStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		reports:   reports,
		insight:   insight,
		snapshots: snapshots,
		logger:    logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/analytics", h.GetAnalytics)
	mux.HandleFunc("GET /api/v1/dashboard", h.GetDashboard)
	mux.HandleFunc("GET /api/v1/jira/velocity", h.GetVelocity)
	mux.HandleFunc("GET /api/v1/risk", h.GetRisk)
	mux.HandleFunc("POST /api/v1/chat", h.Chat)
	mux.HandleFunc("POST /api/v1/reports", h.GenerateReport)
	mux.HandleFunc("GET /api/v1/reports", h.ListReports)
	mux.HandleFunc("GET /api/v1/reports/{id}", h.GetReport)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// GetAnalytics returns the analytics bundle for the repo query parameter.
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	repo, ok := repoParam(w, r)
	if !ok {
		return
	}

	bundle, err := h.reports.BuildAnalytics(r.Context(), repo)
	if err != nil {
		h.logger.Error("failed to build analytics bundle", "repo", repo, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to build analytics bundle")
		return
	}

	writeSuccess(w, http.StatusOK, bundle)
}

// GetDashboard returns the dashboard bundle for the repo query parameter.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	repo, ok := repoParam(w, r)
	if !ok {
		return
	}

	bundle, err := h.reports.BuildDashboard(r.Context(), repo)
	if err != nil {
		h.logger.Error("failed to build dashboard bundle", "repo", repo, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to build dashboard bundle")
		return
	}

	if bundle.Repository == nil {
		writeFailure(w, http.StatusNotFound, "repository not found")
		return
	}

	writeSuccess(w, http.StatusOK, bundle)
}

// GetVelocity returns the Jira velocity bundle for the project query parameter.
func (h *Handler) GetVelocity(w http.ResponseWriter, r *http.Request) {
	project := strings.TrimSpace(r.URL.Query().Get("project"))
	if project == "" {
		writeFailure(w, http.StatusBadRequest, "missing required query parameter: project")
		return
	}

	bundle, err := h.reports.BuildVelocity(r.Context(), project)
	if err != nil {
		if errors.Is(err, application.ErrJiraNotConfigured) {
			writeFailure(w, http.StatusInternalServerError, "jira source not configured")
			return
		}
		h.logger.Error("failed to build velocity bundle", "project", project, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to build velocity bundle")
		return
	}

	writeSuccess(w, http.StatusOK, bundle)
}

// GetRisk returns an LLM risk assessment over the repo's dashboard bundle.
// An unparseable provider response yields the defined fallback object, not
// an error.
func (h *Handler) GetRisk(w http.ResponseWriter, r *http.Request) {
	repo, ok := repoParam(w, r)
	if !ok {
		return
	}

	bundle, err := h.reports.BuildDashboard(r.Context(), repo)
	if err != nil {
		h.logger.Error("failed to build risk context", "repo", repo, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to build risk context")
		return
	}

	assessment, err := h.insight.AnalyzeRisk(r.Context(), bundle)
	if err != nil {
		if errors.Is(err, application.ErrLLMNotConfigured) {
			writeFailure(w, http.StatusInternalServerError, "llm provider not configured")
			return
		}
		h.logger.Error("risk analysis failed", "repo", repo, "error", err)
		writeFailure(w, http.StatusInternalServerError, "risk analysis failed")
		return
	}

	writeSuccess(w, http.StatusOK, assessment)
}

// ChatRequest is the JSON body for the chat endpoint.
type ChatRequest struct {
	Repo     string `json:"repo"`
	Question string `json:"question"`
}

// ChatResponse is the JSON data for the chat endpoint.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// Chat answers a free-form question about a repository, with the dashboard
// bundle attached as context.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Repo == "" || req.Question == "" {
		writeFailure(w, http.StatusBadRequest, "missing required fields: repo, question")
		return
	}

	bundle, err := h.reports.BuildDashboard(r.Context(), req.Repo)
	if err != nil {
		h.logger.Error("failed to build chat context", "repo", req.Repo, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to build chat context")
		return
	}

	answer, err := h.insight.Ask(r.Context(), req.Question, bundle)
	if err != nil {
		if errors.Is(err, application.ErrLLMNotConfigured) {
			writeFailure(w, http.StatusInternalServerError, "llm provider not configured")
			return
		}
		h.logger.Error("chat completion failed", "repo", req.Repo, "error", err)
		writeFailure(w, http.StatusInternalServerError, "chat completion failed")
		return
	}

	writeSuccess(w, http.StatusOK, ChatResponse{Answer: answer})
}

// GenerateReportRequest is the JSON body for the report generation endpoint.
type GenerateReportRequest struct {
	Repo  string `json:"repo"`
	Title string `json:"title"`
}

// GenerateReport builds the analytics bundle, asks the LLM for a markdown
// report, renders it to sanitized HTML, and persists the snapshot.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Repo == "" {
		writeFailure(w, http.StatusBadRequest, "missing required field: repo")
		return
	}
	if req.Title == "" {
		req.Title = "Engineering report for " + req.Repo
	}

	bundle, err := h.reports.BuildAnalytics(r.Context(), req.Repo)
	if err != nil {
		h.logger.Error("failed to build report bundle", "repo", req.Repo, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to build report bundle")
		return
	}

	markdown, err := h.insight.GenerateReport(r.Context(), req.Title, bundle)
	if err != nil {
		if errors.Is(err, application.ErrLLMNotConfigured) {
			writeFailure(w, http.StatusInternalServerError, "llm provider not configured")
			return
		}
		h.logger.Error("report generation failed", "repo", req.Repo, "error", err)
		writeFailure(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	payload, err := json.Marshal(bundle)
	if err != nil {
		h.logger.Error("failed to encode report payload", "repo", req.Repo, "error", err)
		writeFailure(w, http.StatusInternalServerError, "internal server error")
		return
	}

	snapshot := model.ReportSnapshot{
		Repo:      req.Repo,
		Kind:      model.SnapshotKindLLMReport,
		Title:     req.Title,
		Markdown:  markdown,
		HTML:      RenderMarkdown(markdown),
		Payload:   string(payload),
		CreatedAt: time.Now().UTC(),
	}

	id, err := h.snapshots.Save(r.Context(), snapshot)
	if err != nil {
		h.logger.Error("failed to save report snapshot", "repo", req.Repo, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to save report snapshot")
		return
	}
	snapshot.ID = id

	writeSuccess(w, http.StatusCreated, toSnapshotResponse(snapshot))
}

// ListReports returns the most recent report snapshots.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	limit := defaultSnapshotListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeFailure(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	snapshots, err := h.snapshots.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list report snapshots", "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to list report snapshots")
		return
	}

	resp := make([]SnapshotResponse, 0, len(snapshots))
	for _, s := range snapshots {
		resp = append(resp, toSnapshotResponse(s))
	}

	writeSuccess(w, http.StatusOK, resp)
}

// GetReport returns a single report snapshot by ID.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid report id")
		return
	}

	snapshot, err := h.snapshots.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, driven.ErrSnapshotNotFound) {
			writeFailure(w, http.StatusNotFound, "report not found")
			return
		}
		h.logger.Error("failed to get report snapshot", "id", id, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to get report snapshot")
		return
	}

	writeSuccess(w, http.StatusOK, toSnapshotResponse(*snapshot))
}

// HealthResponse is the JSON data for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// SnapshotResponse is the JSON representation of a report snapshot.
type SnapshotResponse struct {
	ID        int64  `json:"id"`
	Repo      string `json:"repo"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Markdown  string `json:"markdown"`
	HTML      string `json:"html"`
	CreatedAt string `json:"created_at"`
}

func toSnapshotResponse(s model.ReportSnapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:        s.ID,
		Repo:      s.Repo,
		Kind:      string(s.Kind),
		Title:     s.Title,
		Markdown:  s.Markdown,
		HTML:      s.HTML,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// repoParam extracts and validates the repo query parameter, writing a 400
// failure when absent or malformed.
func repoParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	repo := strings.TrimSpace(r.URL.Query().Get("repo"))
	if repo == "" {
		writeFailure(w, http.StatusBadRequest, "missing required query parameter: repo")
		return "", false
	}
	if !isValidRepoName(repo) {
		writeFailure(w, http.StatusBadRequest, "invalid repository name: expected owner/repo format")
		return "", false
	}
	return repo, true
}

// isValidRepoName validates that name is in owner/repo format where each part
// contains only alphanumeric characters, hyphens, dots, or underscores.
func isValidRepoName(name string) bool {
	parts := strings.SplitN(name, "/", 3)
	if len(parts) != 2 {
		return false
	}

	for _, part := range parts {
		if part == "" {
			return false
		}
		for _, ch := range part {
			if !isValidRepoChar(ch) {
				return false
			}
		}
	}

	return true
}

// isValidRepoChar returns true if the rune is allowed in a repository owner or name.
func isValidRepoChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '.' || ch == '_'
}
