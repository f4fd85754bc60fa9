package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"augur/internal/connectors"
	"augur/internal/contextmgr"
	"augur/internal/intent"
	"augur/internal/llm"
	"augur/internal/reporting"
)

// QueryInput is one user question entering the pipeline.
type QueryInput struct {
	UserID string
	Query  string
}

// QueryOutput is the fully assembled pipeline result: the resolved
// connector set, the fetched summaries, the augmented prompt, and the
// final model answer (empty when the completion backend is down).
type QueryOutput struct {
	RequestID    string               `json:"request_id"`
	Connectors   []connectors.ID      `json:"connectors"`
	TimeHint     connectors.TimeHint  `json:"time_hint,omitempty"`
	Summaries    []connectors.Context `json:"summaries"`
	Topics       []string             `json:"topics,omitempty"`
	FinalPrompt  string               `json:"final_prompt"`
	ToolsEnabled bool                 `json:"tools_enabled"`
	Answer       string               `json:"answer"`
}

// Event is a progress notification emitted while a query moves through
// the pipeline stages.
type Event struct {
	RequestID  string          `json:"request_id"`
	Stage      string          `json:"stage"`
	Connectors []connectors.ID `json:"connectors,omitempty"`
	Detail     string          `json:"detail,omitempty"`
	AtUnix     int64           `json:"at_unix"`
}

// EventSink receives pipeline events. Publish must not block.
type EventSink interface {
	Publish(event Event)
}

type Service struct {
	resolver  *intent.Resolver
	fetcher   *connectors.Fetcher
	contexts  *contextmgr.Manager
	completer llm.Completer
	counters  *reporting.Counters
	events    EventSink
	logger    *slog.Logger
}

func NewService(resolver *intent.Resolver, fetcher *connectors.Fetcher, contexts *contextmgr.Manager, completer llm.Completer, counters *reporting.Counters, events EventSink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if counters == nil {
		counters = reporting.NewCounters()
	}
	return &Service{
		resolver:  resolver,
		fetcher:   fetcher,
		contexts:  contexts,
		completer: completer,
		counters:  counters,
		events:    events,
		logger:    logger,
	}
}

// HandleQuery runs the full pipeline for one query. Intent resolution
// plus connector fetch runs concurrently with context augmentation; the
// completion call happens once both sides are in. External failures
// degrade stage by stage and never surface as an error here.
func (s *Service) HandleQuery(ctx context.Context, input QueryInput) QueryOutput {
	requestID := uuid.NewString()
	s.counters.Request()
	started := time.Now()

	var (
		resolved  intent.Result
		summaries []connectors.Context
		augmented contextmgr.Augmented
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		resolved = s.resolver.Resolve(groupCtx, input.Query)
		s.publish(Event{
			RequestID:  requestID,
			Stage:      "intent_resolved",
			Connectors: resolved.Connectors,
			Detail:     string(resolved.TimeHint),
		})
		summaries = s.fetcher.Fetch(groupCtx, connectors.FetchRequest{
			Connectors: resolved.Connectors,
			Query:      input.Query,
			TimeHint:   resolved.TimeHint,
			Identity:   input.UserID,
		})
		return nil
	})
	group.Go(func() error {
		augmented = s.contexts.Augment(groupCtx, input.Query)
		return nil
	})
	// Every branch degrades internally instead of failing.
	_ = group.Wait()

	s.recordDegradations(resolved, summaries, augmented)
	s.publish(Event{
		RequestID:  requestID,
		Stage:      "context_assembled",
		Connectors: resolved.Connectors,
	})

	answer := s.complete(ctx, llm.CompletionInput{
		Prompt:   augmented.FinalPrompt,
		Tools:    augmented.Tools,
		Identity: input.UserID,
	})

	s.logger.Info("query handled",
		"request_id", requestID,
		"user_id", input.UserID,
		"connectors", len(resolved.Connectors),
		"topics", len(augmented.Topics),
		"elapsed", time.Since(started),
	)

	return QueryOutput{
		RequestID:    requestID,
		Connectors:   resolved.Connectors,
		TimeHint:     resolved.TimeHint,
		Summaries:    summaries,
		Topics:       augmented.Topics,
		FinalPrompt:  augmented.FinalPrompt,
		ToolsEnabled: augmented.Tools != nil,
		Answer:       answer,
	}
}

func (s *Service) complete(ctx context.Context, input llm.CompletionInput) string {
	if s.completer == nil {
		return ""
	}
	answer, err := s.completer.Complete(ctx, input)
	if err != nil {
		s.logger.Warn("completion degraded to empty answer", "error", err)
		return ""
	}
	return answer
}

func (s *Service) recordDegradations(resolved intent.Result, summaries []connectors.Context, augmented contextmgr.Augmented) {
	if resolved.ClassifierDegraded {
		s.counters.ClassifierFallback()
	}
	if len(resolved.Connectors) == 1 && resolved.Connectors[0] == connectors.IDSemanticSearch {
		s.counters.RuleFallback()
	}
	for _, summary := range summaries {
		if summary.Summary == connectors.SentinelSummary {
			s.counters.DegradedFetch()
		}
	}
	if augmented.Tools != nil {
		s.counters.SearchToolRequest()
	}
}

func (s *Service) publish(event Event) {
	if s.events == nil {
		return
	}
	event.AtUnix = time.Now().Unix()
	s.events.Publish(event)
}
