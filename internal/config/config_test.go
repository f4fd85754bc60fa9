package config

import (
	"path/filepath"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("AUGUR_DATA_DIR", "")
	t.Setenv("AUGUR_DB_PATH", "")
	t.Setenv("AUGUR_HTTP_ADDR", "")
	t.Setenv("AUGUR_RULE_TABLE_PATH", "")
	t.Setenv("AUGUR_TOPIC_TABLE_PATH", "")
	t.Setenv("AUGUR_FETCH_TIMEOUT_SECONDS", "")
	t.Setenv("AUGUR_FETCH_MAX_IN_FLIGHT", "")
	t.Setenv("AUGUR_CLASSIFY_TIMEOUT_SECONDS", "")
	t.Setenv("AUGUR_LLM_BASE_URL", "")
	t.Setenv("AUGUR_LLM_API_KEY", "")
	t.Setenv("AUGUR_LLM_MODEL", "")
	t.Setenv("AUGUR_LLM_TIMEOUT_SECONDS", "")
	t.Setenv("AUGUR_GITHUB_TOKEN", "")
	t.Setenv("AUGUR_GITHUB_API_BASE", "")
	t.Setenv("AUGUR_REPORT_CRON", "")
	t.Setenv("AUGUR_HEARTBEAT_ENABLED", "")
	t.Setenv("AUGUR_HEARTBEAT_STALE_SECONDS", "")
	t.Setenv("AUGUR_EVENT_BUFFER_SIZE", "")

	cfg := FromEnv()
	if cfg.Environment != "development" {
		t.Fatalf("expected default environment development, got %s", cfg.Environment)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default http addr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.DataDir != "/data" {
		t.Fatalf("expected default data dir /data, got %s", cfg.DataDir)
	}
	if cfg.DBPath != filepath.Join("/data", "augur", "knowledge.sqlite") {
		t.Fatalf("unexpected default db path: %s", cfg.DBPath)
	}
	if cfg.RuleTablePath != "" {
		t.Fatalf("expected default rule table path empty, got %s", cfg.RuleTablePath)
	}
	if cfg.TopicTablePath != "" {
		t.Fatalf("expected default topic table path empty, got %s", cfg.TopicTablePath)
	}
	if cfg.FetchTimeoutSec != 10 {
		t.Fatalf("expected default fetch timeout 10, got %d", cfg.FetchTimeoutSec)
	}
	if cfg.FetchMaxInFlight != 8 {
		t.Fatalf("expected default fetch max in flight 8, got %d", cfg.FetchMaxInFlight)
	}
	if cfg.ClassifyTimeoutSec != 10 {
		t.Fatalf("expected default classify timeout 10, got %d", cfg.ClassifyTimeoutSec)
	}
	if cfg.LLMBaseURL != "https://api.openai.com/v1" {
		t.Fatalf("expected default llm base url, got %s", cfg.LLMBaseURL)
	}
	if cfg.LLMAPIKey != "" {
		t.Fatal("expected default llm api key empty")
	}
	if cfg.LLMModel != "gpt-4o-mini" {
		t.Fatalf("expected default llm model, got %s", cfg.LLMModel)
	}
	if cfg.LLMTimeoutSec != 60 {
		t.Fatalf("expected default llm timeout 60, got %d", cfg.LLMTimeoutSec)
	}
	if cfg.GitHubAPIBaseURL != "https://api.github.com" {
		t.Fatalf("expected default github api base, got %s", cfg.GitHubAPIBaseURL)
	}
	if cfg.ReportCronSpec != "@every 15m" {
		t.Fatalf("expected default report cron spec, got %s", cfg.ReportCronSpec)
	}
	if !cfg.HeartbeatEnabled {
		t.Fatal("expected heartbeat enabled by default")
	}
	if cfg.HeartbeatStale != 120 {
		t.Fatalf("expected default heartbeat stale seconds 120, got %d", cfg.HeartbeatStale)
	}
	if cfg.EventBufferSize != 64 {
		t.Fatalf("expected default event buffer size 64, got %d", cfg.EventBufferSize)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("AUGUR_ENV", "production")
	t.Setenv("AUGUR_HTTP_ADDR", ":9090")
	t.Setenv("AUGUR_DATA_DIR", "/var/augur")
	t.Setenv("AUGUR_DB_PATH", "/var/augur/db.sqlite")
	t.Setenv("AUGUR_RULE_TABLE_PATH", "/etc/augur/rules.json")
	t.Setenv("AUGUR_TOPIC_TABLE_PATH", "/etc/augur/topics.json")
	t.Setenv("AUGUR_FETCH_TIMEOUT_SECONDS", "4")
	t.Setenv("AUGUR_FETCH_MAX_IN_FLIGHT", "3")
	t.Setenv("AUGUR_CLASSIFY_TIMEOUT_SECONDS", "6")
	t.Setenv("AUGUR_LLM_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("AUGUR_LLM_API_KEY", "secret-key")
	t.Setenv("AUGUR_LLM_MODEL", "llama3")
	t.Setenv("AUGUR_LLM_TIMEOUT_SECONDS", "30")
	t.Setenv("AUGUR_GITHUB_TOKEN", "gh-token")
	t.Setenv("AUGUR_GITHUB_API_BASE", "https://github.example.com/api/v3")
	t.Setenv("AUGUR_REPORT_CRON", "@every 5m")
	t.Setenv("AUGUR_HEARTBEAT_ENABLED", "false")
	t.Setenv("AUGUR_HEARTBEAT_STALE_SECONDS", "45")
	t.Setenv("AUGUR_EVENT_BUFFER_SIZE", "16")

	cfg := FromEnv()
	if cfg.Environment != "production" {
		t.Fatalf("expected overridden environment, got %s", cfg.Environment)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected overridden http addr, got %s", cfg.HTTPAddr)
	}
	if cfg.DataDir != "/var/augur" {
		t.Fatalf("expected overridden data dir, got %s", cfg.DataDir)
	}
	if cfg.DBPath != "/var/augur/db.sqlite" {
		t.Fatalf("expected overridden db path, got %s", cfg.DBPath)
	}
	if cfg.RuleTablePath != "/etc/augur/rules.json" {
		t.Fatalf("expected overridden rule table path, got %s", cfg.RuleTablePath)
	}
	if cfg.TopicTablePath != "/etc/augur/topics.json" {
		t.Fatalf("expected overridden topic table path, got %s", cfg.TopicTablePath)
	}
	if cfg.FetchTimeoutSec != 4 {
		t.Fatalf("expected overridden fetch timeout, got %d", cfg.FetchTimeoutSec)
	}
	if cfg.FetchMaxInFlight != 3 {
		t.Fatalf("expected overridden fetch max in flight, got %d", cfg.FetchMaxInFlight)
	}
	if cfg.ClassifyTimeoutSec != 6 {
		t.Fatalf("expected overridden classify timeout, got %d", cfg.ClassifyTimeoutSec)
	}
	if cfg.LLMBaseURL != "http://localhost:11434/v1" {
		t.Fatalf("expected overridden llm base url, got %s", cfg.LLMBaseURL)
	}
	if cfg.LLMAPIKey != "secret-key" {
		t.Fatalf("expected overridden llm api key, got %s", cfg.LLMAPIKey)
	}
	if cfg.LLMModel != "llama3" {
		t.Fatalf("expected overridden llm model, got %s", cfg.LLMModel)
	}
	if cfg.LLMTimeoutSec != 30 {
		t.Fatalf("expected overridden llm timeout, got %d", cfg.LLMTimeoutSec)
	}
	if cfg.GitHubToken != "gh-token" {
		t.Fatalf("expected overridden github token, got %s", cfg.GitHubToken)
	}
	if cfg.GitHubAPIBaseURL != "https://github.example.com/api/v3" {
		t.Fatalf("expected overridden github api base, got %s", cfg.GitHubAPIBaseURL)
	}
	if cfg.ReportCronSpec != "@every 5m" {
		t.Fatalf("expected overridden report cron spec, got %s", cfg.ReportCronSpec)
	}
	if cfg.HeartbeatEnabled {
		t.Fatal("expected heartbeat disabled")
	}
	if cfg.HeartbeatStale != 45 {
		t.Fatalf("expected overridden heartbeat stale seconds, got %d", cfg.HeartbeatStale)
	}
	if cfg.EventBufferSize != 16 {
		t.Fatalf("expected overridden event buffer size, got %d", cfg.EventBufferSize)
	}
}
