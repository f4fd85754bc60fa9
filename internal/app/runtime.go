package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"augur/internal/config"
	"augur/internal/connectors"
	"augur/internal/connectors/github"
	"augur/internal/contextmgr"
	"augur/internal/gateway"
	"augur/internal/heartbeat"
	"augur/internal/httpapi"
	"augur/internal/intent"
	"augur/internal/llm/openai"
	"augur/internal/reporting"
	"augur/internal/store"
)

// Runtime wires the whole pipeline together: knowledge store, intent
// resolver, connector fetch stage, context manager, gateway, HTTP surface,
// and the periodic reporter.
type Runtime struct {
	cfg        config.Config
	logger     *slog.Logger
	store      *store.Store
	heartbeat  *heartbeat.Registry
	counters   *reporting.Counters
	reporter   *reporting.Reporter
	events     *httpapi.EventHub
	gateway    *gateway.Service
	httpServer *http.Server
}

func New(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sqlStore := openKnowledgeStore(cfg, logger)

	var (
		excerptSource  contextmgr.ExcerptSource
		templateSource connectors.TemplateSource
	)
	if sqlStore != nil {
		excerptSource = sqlStore
		templateSource = sqlStore
	}

	llmClient := openai.New(openai.Config{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		Timeout: time.Duration(cfg.LLMTimeoutSec) * time.Second,
	}, logger.With("component", "llm"))

	resolver := intent.NewResolver(
		intent.NewRuleAnalyzer(intent.LoadRuleTable(cfg.RuleTablePath, logger)),
		intent.NewLLMAnalyzer(llmClient, time.Duration(cfg.ClassifyTimeoutSec)*time.Second, logger.With("component", "intent")),
	)

	summarizers := map[connectors.ID]connectors.Summarizer{}
	if cfg.GitHubToken != "" {
		summarizers[connectors.IDGitHub] = github.New(github.Config{
			Token:   cfg.GitHubToken,
			BaseURL: cfg.GitHubAPIBaseURL,
			Timeout: time.Duration(cfg.GitHubTimeoutSec) * time.Second,
		}, logger.With("component", "github"))
	}
	fetcher := connectors.NewFetcher(
		summarizers,
		connectors.NewStaticSummarizer(templateSource),
		time.Duration(cfg.FetchTimeoutSec)*time.Second,
		logger.With("component", "fetch"),
	)
	fetcher.SetMaxInFlight(cfg.FetchMaxInFlight)

	contexts := contextmgr.NewManager(excerptSource, logger.With("component", "contextmgr"))
	contexts.SetTriggers(contextmgr.LoadTopicTriggers(cfg.TopicTablePath, logger))

	var registry *heartbeat.Registry
	if cfg.HeartbeatEnabled {
		registry = heartbeat.NewRegistry()
	}

	counters := reporting.NewCounters()
	var reporterRegistry heartbeat.Reporter
	if registry != nil {
		reporterRegistry = registry
	}
	reporter, err := reporting.New(counters, cfg.ReportCronSpec, reporterRegistry, logger.With("component", "reporting"))
	if err != nil {
		return nil, err
	}

	events := httpapi.NewEventHub(cfg.EventBufferSize, logger.With("component", "events"))

	service := gateway.NewService(resolver, fetcher, contexts, llmClient, counters, events, logger.With("component", "gateway"))

	handler := httpapi.NewRouter(httpapi.Dependencies{
		Config:   cfg,
		Gateway:  service,
		Store:    sqlStore,
		Health:   registry,
		Counters: counters,
		Events:   events,
		Logger:   logger.With("component", "httpapi"),
	})

	return &Runtime{
		cfg:       cfg,
		logger:    logger,
		store:     sqlStore,
		heartbeat: registry,
		counters:  counters,
		reporter:  reporter,
		events:    events,
		gateway:   service,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// openKnowledgeStore opens, migrates, and seeds the sqlite knowledge base.
// Any failure degrades to the built-in excerpts and templates rather than
// refusing to start.
func openKnowledgeStore(cfg config.Config, logger *slog.Logger) *store.Store {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logger.Warn("knowledge store unavailable, using built-in defaults", "path", cfg.DBPath, "error", err)
		return nil
	}
	_, statErr := os.Stat(cfg.DBPath)
	firstRun := os.IsNotExist(statErr)

	sqlStore, err := store.New(cfg.DBPath)
	if err != nil {
		logger.Warn("knowledge store unavailable, using built-in defaults", "path", cfg.DBPath, "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlStore.AutoMigrate(ctx); err != nil {
		logger.Warn("knowledge store migration failed, using built-in defaults", "error", err)
		_ = sqlStore.Close()
		return nil
	}
	// Seed only fresh databases so operator edits survive restarts.
	if firstRun {
		if err := sqlStore.Seed(ctx, contextmgr.DefaultExcerpts(), connectors.DefaultSummaryTemplates()); err != nil {
			logger.Warn("knowledge store seed failed", "error", err)
		}
	}
	return sqlStore
}

func (r *Runtime) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}
