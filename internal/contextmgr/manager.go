package contextmgr

import (
	"context"
	"log/slog"

	"augur/internal/llm"
)

// Manager runs the context-assembly pipeline: topic inference, reference
// retrieval, live-search decision, and prompt rendering. Pure computation
// over immutable tables plus an optional read-only excerpt source; it shares
// no state with the intent resolver and runs in parallel with it.
type Manager struct {
	triggers []TopicTrigger
	source   ExcerptSource
	logger   *slog.Logger
}

func NewManager(source ExcerptSource, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		triggers: DefaultTopicTriggers(),
		source:   source,
		logger:   logger,
	}
}

// SetTriggers replaces the topic trigger table. Intended for startup
// wiring only; the table is immutable once queries flow.
func (m *Manager) SetTriggers(triggers []TopicTrigger) {
	if len(triggers) == 0 {
		return
	}
	m.triggers = triggers
}

// Augment produces the final prompt for one query. With no inferable topic it
// short-circuits: the original query passes through unchanged and live search
// is requested so the downstream model can ground itself.
func (m *Manager) Augment(ctx context.Context, query string) Augmented {
	topics := InferTopics(query, m.triggers)
	if len(topics) == 0 {
		m.logger.Debug("no topic inferred, passing query through", "query_len", len(query))
		return Augmented{
			FinalPrompt: query,
			Tools:       llm.LiveSearchTool(),
		}
	}

	retrieved := m.retrieve(ctx, query, topics)
	augmented := Augmented{
		FinalPrompt: renderPrompt(retrieved.ContextText, query),
		Topics:      topics,
	}
	if retrieved.UseSearchTool {
		augmented.Tools = llm.LiveSearchTool()
	}
	m.logger.Debug("context assembled",
		"topics", topics,
		"context_len", len(retrieved.ContextText),
		"use_search_tool", retrieved.UseSearchTool,
	)
	return augmented
}
