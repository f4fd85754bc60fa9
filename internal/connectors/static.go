package connectors

import (
	"context"
	"strings"
)

// TemplateSource resolves a connector id to its summary template. The sqlite
// knowledge store implements it; a nil source falls back to the built-in
// templates.
type TemplateSource interface {
	SummaryTemplate(ctx context.Context, connector ID) (string, bool, error)
}

func DefaultSummaryTemplates() map[ID]string {
	return map[ID]string{
		IDCalendar:       "Calendar: 3 events scheduled {window}, next is the platform sync at 10:00.",
		IDMonitoring:     "Monitoring: all services reporting healthy {window}, error budget at 98.4%.",
		IDDocs:           "Docs: 2 documents touched recently, most recent update to the runbook index.",
		IDGitHub:         "Repositories: 4 open pull requests awaiting review across tracked repositories.",
		IDFinance:        "Finance: monthly spend tracking 7% under budget, no anomalous transactions.",
		IDFitness:        "Fitness: activity goal 68% complete {window}, last workout logged yesterday.",
		IDSemanticSearch: "Search: no indexed material matched directly, broad context attached.",
	}
}

// StaticSummarizer serves template-backed summaries for connectors that have
// no live collaborator behind them.
type StaticSummarizer struct {
	source TemplateSource
}

func NewStaticSummarizer(source TemplateSource) *StaticSummarizer {
	return &StaticSummarizer{source: source}
}

func (s *StaticSummarizer) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	template := ""
	if s.source != nil {
		stored, ok, err := s.source.SummaryTemplate(ctx, req.Connector)
		if err == nil && ok {
			template = stored
		}
	}
	if template == "" {
		builtin, ok := DefaultSummaryTemplates()[req.Connector]
		if !ok {
			return "", ErrUnknownConnector
		}
		template = builtin
	}
	return renderWindow(template, req.TimeHint), nil
}

func renderWindow(template string, hint TimeHint) string {
	window := "this week"
	switch hint {
	case TimeHintToday:
		window = "today"
	case TimeHintTomorrow:
		window = "tomorrow"
	case TimeHintNextWeek:
		window = "next week"
	}
	return strings.ReplaceAll(template, "{window}", window)
}
