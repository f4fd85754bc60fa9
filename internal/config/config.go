package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Environment string
	HTTPAddr    string
	DataDir     string
	DBPath      string

	RuleTablePath  string
	TopicTablePath string

	FetchTimeoutSec    int
	FetchMaxInFlight   int
	ClassifyTimeoutSec int

	LLMProvider   string // openai-compatible chat completions
	LLMBaseURL    string
	LLMAPIKey     string
	LLMModel      string
	LLMTimeoutSec int

	GitHubToken      string
	GitHubAPIBaseURL string
	GitHubTimeoutSec int

	ReportCronSpec   string
	HeartbeatEnabled bool
	HeartbeatStale   int

	EventBufferSize int
}

func FromEnv() Config {
	dataDir := stringOrDefault("AUGUR_DATA_DIR", "/data")
	dbPath := stringOrDefault("AUGUR_DB_PATH", filepath.Join(dataDir, "augur", "knowledge.sqlite"))

	return Config{
		Environment: stringOrDefault("AUGUR_ENV", "development"),
		HTTPAddr:    stringOrDefault("AUGUR_HTTP_ADDR", ":8080"),
		DataDir:     dataDir,
		DBPath:      dbPath,

		RuleTablePath:  strings.TrimSpace(os.Getenv("AUGUR_RULE_TABLE_PATH")),
		TopicTablePath: strings.TrimSpace(os.Getenv("AUGUR_TOPIC_TABLE_PATH")),

		FetchTimeoutSec:    intOrDefault("AUGUR_FETCH_TIMEOUT_SECONDS", 10),
		FetchMaxInFlight:   intOrDefault("AUGUR_FETCH_MAX_IN_FLIGHT", 8),
		ClassifyTimeoutSec: intOrDefault("AUGUR_CLASSIFY_TIMEOUT_SECONDS", 10),

		LLMProvider:   stringOrDefault("AUGUR_LLM_PROVIDER", "openai"),
		LLMBaseURL:    stringOrDefault("AUGUR_LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:     strings.TrimSpace(os.Getenv("AUGUR_LLM_API_KEY")),
		LLMModel:      stringOrDefault("AUGUR_LLM_MODEL", "gpt-4o-mini"),
		LLMTimeoutSec: intOrDefault("AUGUR_LLM_TIMEOUT_SECONDS", 60),

		GitHubToken:      strings.TrimSpace(os.Getenv("AUGUR_GITHUB_TOKEN")),
		GitHubAPIBaseURL: stringOrDefault("AUGUR_GITHUB_API_BASE", "https://api.github.com"),
		GitHubTimeoutSec: intOrDefault("AUGUR_GITHUB_TIMEOUT_SECONDS", 10),

		ReportCronSpec:   stringOrDefault("AUGUR_REPORT_CRON", "@every 15m"),
		HeartbeatEnabled: boolOrDefault("AUGUR_HEARTBEAT_ENABLED", true),
		HeartbeatStale:   intOrDefault("AUGUR_HEARTBEAT_STALE_SECONDS", 120),

		EventBufferSize: intOrDefault("AUGUR_EVENT_BUFFER_SIZE", 64),
	}
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func boolOrDefault(name string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
