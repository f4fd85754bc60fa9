package intent

import (
	"context"
	"log/slog"
	"time"

	"augur/internal/connectors"
	"augur/internal/llm"
)

const defaultClassifyTimeout = 10 * time.Second

// LLMAnalyzer is the probabilistic half of the hybrid resolver. A single
// classification call with no retry; transport errors, timeouts, and
// non-conforming responses all degrade to an empty contribution so the
// pipeline never fails on this stage.
type LLMAnalyzer struct {
	classifier llm.Classifier
	timeout    time.Duration
	logger     *slog.Logger
}

func NewLLMAnalyzer(classifier llm.Classifier, timeout time.Duration, logger *slog.Logger) *LLMAnalyzer {
	if timeout <= 0 {
		timeout = defaultClassifyTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMAnalyzer{classifier: classifier, timeout: timeout, logger: logger}
}

// Analyze reports degraded=true when the classification call failed and the
// empty result is a fallback rather than a genuine "no connectors apply".
func (a *LLMAnalyzer) Analyze(ctx context.Context, query string) (ids []connectors.ID, degraded bool) {
	if a.classifier == nil {
		return nil, false
	}

	allowed := make([]string, 0, len(connectors.All()))
	for _, id := range connectors.All() {
		allowed = append(allowed, string(id))
	}

	classifyCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	labels, err := a.classifier.Classify(classifyCtx, query, allowed)
	if err != nil {
		a.logger.Warn("llm classification degraded to empty", "error", err)
		return nil, true
	}

	ids = make([]connectors.ID, 0, len(labels))
	for _, label := range labels {
		id, ok := connectors.Parse(label)
		if !ok {
			a.logger.Warn("classifier returned unknown connector", "connector", label)
			continue
		}
		ids = append(ids, id)
	}
	return ids, false
}
