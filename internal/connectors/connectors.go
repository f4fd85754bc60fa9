package connectors

import (
	"context"
	"strings"
)

// ID identifies one connector in the fixed vocabulary. Unknown identifiers are
// tolerated at fetch time and resolve to a sentinel summary, but classifiers
// are filtered against the vocabulary before their output reaches the fetch
// stage.
type ID string

const (
	IDCalendar       ID = "calendar"
	IDMonitoring     ID = "monitoring"
	IDDocs           ID = "docs"
	IDGitHub         ID = "github"
	IDFinance        ID = "finance"
	IDFitness        ID = "fitness"
	IDSemanticSearch ID = "semantic_search"
)

func All() []ID {
	return []ID{IDCalendar, IDMonitoring, IDDocs, IDGitHub, IDFinance, IDFitness, IDSemanticSearch}
}

func Parse(value string) (ID, bool) {
	candidate := ID(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range All() {
		if candidate == known {
			return known, true
		}
	}
	return "", false
}

// TimeHint is the temporal cue extracted from the query by the rule analyzer.
// The empty value means no hint was found.
type TimeHint string

const (
	TimeHintNone     TimeHint = ""
	TimeHintToday    TimeHint = "today"
	TimeHintTomorrow TimeHint = "tomorrow"
	TimeHintNextWeek TimeHint = "next_week"
)

type SummaryRequest struct {
	Connector ID
	Query     string
	TimeHint  TimeHint
	Identity  string
}

// Summarizer produces a short context summary for one connector. Backed either
// by a static template or by an external collaborator API.
type Summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}

// Context is one connector's contribution to the response.
type Context struct {
	Connector ID     `json:"connector"`
	Summary   string `json:"summary"`
}
