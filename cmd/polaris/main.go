package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/StarkFurry64/polaris/internal/adapter/driven/github"
	jiraadapter "github.com/StarkFurry64/polaris/internal/adapter/driven/jira"
	llmadapter "github.com/StarkFurry64/polaris/internal/adapter/driven/llm"
	sqliteadapter "github.com/StarkFurry64/polaris/internal/adapter/driven/sqlite"
	httphandler "github.com/StarkFurry64/polaris/internal/adapter/driving/http"
	"github.com/StarkFurry64/polaris/internal/application"
	"github.com/StarkFurry64/polaris/internal/config"
	"github.com/StarkFurry64/polaris/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"jira_configured", cfg.HasJiraCredentials(),
		"llm_configured", cfg.HasLLMProvider(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters. Sources are constructed once here and injected;
	// nothing below reaches for credentials or builds clients lazily.
	snapshotStore := sqliteadapter.NewSnapshotRepo(db)
	ghClient := githubadapter.NewClient(cfg.GitHubToken)

	var jiraSource driven.JiraSource
	if cfg.HasJiraCredentials() {
		jiraSource = jiraadapter.NewClient(cfg.JiraBaseURL, cfg.JiraEmail, cfg.JiraToken, cfg.JiraStoryPointsField)
		slog.Info("jira source configured", "base_url", cfg.JiraBaseURL)
	} else {
		slog.Info("no jira credentials configured, velocity endpoints disabled")
	}

	var chatClient driven.ChatClient
	if cfg.HasLLMProvider() {
		chatClient = llmadapter.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
		slog.Info("llm provider configured", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModel)
	} else {
		slog.Info("no llm provider configured, chat and report endpoints disabled")
	}

	// 6. Wire application services.
	reportSvc := application.NewReportService(ghClient, jiraSource, slog.Default())
	insightSvc := application.NewInsightService(chatClient, slog.Default())

	// 7. Create HTTP handler and server.
	apiHandler := httphandler.NewHandler(reportSvc, insightSvc, snapshotStore, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second, // LLM completions can be slow.
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("polaris started", "listen_addr", cfg.ListenAddr)

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
