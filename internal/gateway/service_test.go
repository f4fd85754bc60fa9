package gateway

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"augur/internal/connectors"
	"augur/internal/contextmgr"
	"augur/internal/intent"
	"augur/internal/llm"
	"augur/internal/reporting"
)

type stubClassifier struct {
	labels []string
	err    error
}

func (s *stubClassifier) Classify(ctx context.Context, query string, allowed []string) ([]string, error) {
	return s.labels, s.err
}

type stubCompleter struct {
	answer string
	err    error
	input  llm.CompletionInput
}

func (s *stubCompleter) Complete(ctx context.Context, input llm.CompletionInput) (string, error) {
	s.input = input
	return s.answer, s.err
}

type captureSink struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureSink) Publish(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureSink) stages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	stages := make([]string, 0, len(c.events))
	for _, event := range c.events {
		stages = append(stages, event.Stage)
	}
	return stages
}

func newTestService(t *testing.T, classifier llm.Classifier, completer llm.Completer, counters *reporting.Counters, sink EventSink) *Service {
	t.Helper()
	resolver := intent.NewResolver(
		intent.NewRuleAnalyzer(nil),
		intent.NewLLMAnalyzer(classifier, time.Second, nil),
	)
	fetcher := connectors.NewFetcher(nil, connectors.NewStaticSummarizer(nil), time.Second, nil)
	contexts := contextmgr.NewManager(nil, nil)
	return NewService(resolver, fetcher, contexts, completer, counters, sink, nil)
}

func TestHandleQueryAssemblesFullPipeline(t *testing.T) {
	completer := &stubCompleter{answer: "all clear"}
	sink := &captureSink{}
	service := newTestService(t, &stubClassifier{labels: []string{"finance"}}, completer, nil, sink)

	output := service.HandleQuery(context.Background(), QueryInput{
		UserID: "user-1",
		Query:  "what meetings do I have today about the deploy pipeline?",
	})

	if output.RequestID == "" {
		t.Fatal("expected a request id")
	}
	if !containsID(output.Connectors, connectors.IDCalendar) {
		t.Fatalf("expected rule-based calendar hit, got %v", output.Connectors)
	}
	if !containsID(output.Connectors, connectors.IDFinance) {
		t.Fatalf("expected classifier finance contribution, got %v", output.Connectors)
	}
	if output.TimeHint != connectors.TimeHintToday {
		t.Fatalf("expected today hint, got %q", output.TimeHint)
	}
	if len(output.Summaries) != len(output.Connectors) {
		t.Fatalf("expected one summary per connector, got %d for %d connectors", len(output.Summaries), len(output.Connectors))
	}
	if !strings.Contains(output.FinalPrompt, "deploy pipeline") {
		t.Fatalf("expected query inside final prompt, got %q", output.FinalPrompt)
	}
	if output.ToolsEnabled {
		t.Fatal("expected no search tool when topics matched")
	}
	if output.Answer != "all clear" {
		t.Fatalf("expected completer answer, got %q", output.Answer)
	}
	if completer.input.Identity != "user-1" {
		t.Fatalf("expected identity forwarded to completer, got %q", completer.input.Identity)
	}

	stages := sink.stages()
	if len(stages) != 2 || stages[0] != "intent_resolved" || stages[1] != "context_assembled" {
		t.Fatalf("unexpected event stages %v", stages)
	}
}

func TestHandleQuerySurvivesTotalExternalFailure(t *testing.T) {
	counters := reporting.NewCounters()
	service := newTestService(t,
		&stubClassifier{err: errors.New("classifier down")},
		&stubCompleter{err: errors.New("completion down")},
		counters,
		nil,
	)

	output := service.HandleQuery(context.Background(), QueryInput{
		UserID: "user-2",
		Query:  "zorp gleeb vex",
	})

	if len(output.Connectors) != 1 || output.Connectors[0] != connectors.IDSemanticSearch {
		t.Fatalf("expected semantic_search fallback, got %v", output.Connectors)
	}
	if output.FinalPrompt != "zorp gleeb vex" {
		t.Fatalf("expected passthrough prompt, got %q", output.FinalPrompt)
	}
	if !output.ToolsEnabled {
		t.Fatal("expected live search tool on no-topic passthrough")
	}
	if output.Answer != "" {
		t.Fatalf("expected empty answer on completion failure, got %q", output.Answer)
	}

	totals := counters.Totals()
	if totals.ClassifierFallbacks != 1 {
		t.Fatalf("expected classifier fallback counted, got %d", totals.ClassifierFallbacks)
	}
	if totals.RuleFallbacks != 1 {
		t.Fatalf("expected rule fallback counted, got %d", totals.RuleFallbacks)
	}
	if totals.SearchToolRequests != 1 {
		t.Fatalf("expected search tool request counted, got %d", totals.SearchToolRequests)
	}
}

func TestHandleQueryCountsDegradedFetches(t *testing.T) {
	counters := reporting.NewCounters()
	resolver := intent.NewResolver(intent.NewRuleAnalyzer(nil), nil)
	fetcher := connectors.NewFetcher(
		map[connectors.ID]connectors.Summarizer{},
		failingSummarizer{},
		time.Second,
		nil,
	)
	service := NewService(resolver, fetcher, contextmgr.NewManager(nil, nil), nil, counters, nil, nil)

	output := service.HandleQuery(context.Background(), QueryInput{UserID: "user-3", Query: "any alerts?"})

	if len(output.Summaries) == 0 {
		t.Fatal("expected sentinel summaries")
	}
	for _, summary := range output.Summaries {
		if summary.Summary != connectors.SentinelSummary {
			t.Fatalf("expected sentinel summary, got %q", summary.Summary)
		}
	}
	if counters.Totals().DegradedFetches != int64(len(output.Summaries)) {
		t.Fatalf("expected %d degraded fetches, got %d", len(output.Summaries), counters.Totals().DegradedFetches)
	}
}

type failingSummarizer struct{}

func (failingSummarizer) Summarize(ctx context.Context, req connectors.SummaryRequest) (string, error) {
	return "", errors.New("backend down")
}

func containsID(ids []connectors.ID, want connectors.ID) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
