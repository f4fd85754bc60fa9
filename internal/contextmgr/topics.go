package contextmgr

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"
)

// TopicTrigger pairs a query phrase with the topic label it implies. Scanned
// in order; each hit appends its topic once.
type TopicTrigger struct {
	Phrase string `json:"phrase"`
	Topic  string `json:"topic"`
}

func DefaultTopicTriggers() []TopicTrigger {
	return []TopicTrigger{
		{Phrase: "deploy", Topic: "continuous_deployment"},
		{Phrase: "release", Topic: "continuous_deployment"},
		{Phrase: "pipeline", Topic: "continuous_deployment"},
		{Phrase: "machine learning", Topic: "machine_learning"},
		{Phrase: "model training", Topic: "machine_learning"},
		{Phrase: "ml model", Topic: "machine_learning"},
		{Phrase: "kubernetes", Topic: "kubernetes"},
		{Phrase: "k8s", Topic: "kubernetes"},
		{Phrase: "incident", Topic: "incident_response"},
		{Phrase: "postmortem", Topic: "incident_response"},
		{Phrase: "on-call", Topic: "incident_response"},
	}
}

// LoadTopicTriggers reads an ordered JSON array of {phrase, topic} pairs.
// An empty path, unreadable file, or malformed content falls back to the
// built-in triggers with a warn log; the table is immutable afterwards.
func LoadTopicTriggers(path string, logger *slog.Logger) []TopicTrigger {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(path) == "" {
		return DefaultTopicTriggers()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("topic table unavailable, using built-in defaults", "path", path, "error", err)
		return DefaultTopicTriggers()
	}
	parsed := []TopicTrigger{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		logger.Warn("topic table malformed, using built-in defaults", "path", path, "error", err)
		return DefaultTopicTriggers()
	}
	triggers := make([]TopicTrigger, 0, len(parsed))
	for _, trigger := range parsed {
		phrase := strings.ToLower(strings.TrimSpace(trigger.Phrase))
		topic := strings.ToLower(strings.TrimSpace(trigger.Topic))
		if phrase == "" || topic == "" {
			logger.Warn("dropping incomplete topic trigger", "phrase", trigger.Phrase, "topic", trigger.Topic)
			continue
		}
		triggers = append(triggers, TopicTrigger{Phrase: phrase, Topic: topic})
	}
	if len(triggers) == 0 {
		logger.Warn("topic table empty after validation, using built-in defaults", "path", path)
		return DefaultTopicTriggers()
	}
	return triggers
}

// InferTopics scans the query for the trigger phrases and returns the matched
// topic labels in trigger order, deduplicated.
func InferTopics(query string, triggers []TopicTrigger) []string {
	lowered := strings.ToLower(query)

	seen := map[string]struct{}{}
	topics := []string{}
	for _, trigger := range triggers {
		if !strings.Contains(lowered, trigger.Phrase) {
			continue
		}
		if _, dup := seen[trigger.Topic]; dup {
			continue
		}
		seen[trigger.Topic] = struct{}{}
		topics = append(topics, trigger.Topic)
	}
	return topics
}
