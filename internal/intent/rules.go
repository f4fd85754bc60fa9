package intent

import (
	"encoding/json"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"augur/internal/connectors"
)

var nextWeekPattern = regexp.MustCompile(`next\s+week`)

// Result is the outcome of intent resolution for one query. Connectors is
// never empty: the rule analyzer guarantees at least the semantic_search
// fallback member. ClassifierDegraded marks results where the LLM side
// failed and contributed nothing.
type Result struct {
	Connectors         []connectors.ID
	TimeHint           connectors.TimeHint
	ClassifierDegraded bool
}

// RuleTable maps each connector to the trigger strings that select it. Loaded
// once at startup and immutable afterwards; trigger matching is
// case-insensitive substring matching, so a trigger inside a larger word
// still counts.
type RuleTable struct {
	triggers map[connectors.ID][]string
}

func DefaultRuleTable() *RuleTable {
	return &RuleTable{triggers: map[connectors.ID][]string{
		connectors.IDCalendar:   {"meeting", "schedule", "calendar", "appointment", "event"},
		connectors.IDMonitoring: {"alert", "incident", "uptime", "latency", "on-call", "monitoring", "outage"},
		connectors.IDDocs:       {"document", "notes", "wiki", "runbook", "spec"},
		connectors.IDGitHub:     {"pull request", "repo", "commit", "branch", "merge", "github"},
		connectors.IDFinance:    {"budget", "spend", "invoice", "expense", "revenue"},
		connectors.IDFitness:    {"workout", "steps", "run", "exercise", "calories"},
	}}
}

// LoadRuleTable reads a JSON file of connector id -> trigger list. Absent or
// malformed files fall back to the built-in table with a warning; unknown
// connector keys are dropped.
func LoadRuleTable(path string, logger *slog.Logger) *RuleTable {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(path) == "" {
		return DefaultRuleTable()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("rule table unavailable, using built-in defaults", "path", path, "error", err)
		return DefaultRuleTable()
	}
	parsed := map[string][]string{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		logger.Warn("rule table malformed, using built-in defaults", "path", path, "error", err)
		return DefaultRuleTable()
	}
	triggers := map[connectors.ID][]string{}
	for key, values := range parsed {
		id, ok := connectors.Parse(key)
		if !ok {
			logger.Warn("dropping rule table entry with unknown connector", "connector", key)
			continue
		}
		cleaned := make([]string, 0, len(values))
		for _, value := range values {
			if trimmed := strings.ToLower(strings.TrimSpace(value)); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			triggers[id] = cleaned
		}
	}
	if len(triggers) == 0 {
		logger.Warn("rule table empty after validation, using built-in defaults", "path", path)
		return DefaultRuleTable()
	}
	return &RuleTable{triggers: triggers}
}

// RuleAnalyzer is the deterministic half of the hybrid resolver. Pure string
// scanning, no I/O, no failure mode.
type RuleAnalyzer struct {
	table *RuleTable
}

func NewRuleAnalyzer(table *RuleTable) *RuleAnalyzer {
	if table == nil {
		table = DefaultRuleTable()
	}
	return &RuleAnalyzer{table: table}
}

func (a *RuleAnalyzer) Analyze(query string) Result {
	lowered := strings.ToLower(query)

	matched := []connectors.ID{}
	for _, id := range connectors.All() {
		if containsAny(lowered, a.table.triggers[id]) {
			matched = append(matched, id)
		}
	}
	if len(matched) == 0 {
		matched = []connectors.ID{connectors.IDSemanticSearch}
	}
	return Result{
		Connectors: matched,
		TimeHint:   resolveTimeHint(lowered),
	}
}

// resolveTimeHint applies the hint rules in priority order; only the first
// match counts.
func resolveTimeHint(lowered string) connectors.TimeHint {
	switch {
	case strings.Contains(lowered, "today"):
		return connectors.TimeHintToday
	case strings.Contains(lowered, "tomorrow"):
		return connectors.TimeHintTomorrow
	case nextWeekPattern.MatchString(lowered):
		return connectors.TimeHintNextWeek
	default:
		return connectors.TimeHintNone
	}
}

func containsAny(text string, triggers []string) bool {
	for _, trigger := range triggers {
		if strings.Contains(text, trigger) {
			return true
		}
	}
	return false
}
