package contextmgr

import (
	"context"
	"strings"
)

// ChunkSeparator joins retrieved reference excerpts into one context block.
const ChunkSeparator = "\n\n---\n\n"

// excerptsPerTopic caps how many reference excerpts a single topic may
// contribute.
const excerptsPerTopic = 2

// ExcerptSource resolves a topic label to its reference excerpts. The sqlite
// knowledge store implements it; a nil source falls back to the built-in
// table.
type ExcerptSource interface {
	TopicExcerpts(ctx context.Context, topic string) ([]string, error)
}

func DefaultExcerpts() map[string][]string {
	return map[string][]string{
		"continuous_deployment": {
			"Continuous deployment ships every change that passes the automated pipeline straight to production; a blocked pipeline is usually a failing gate (tests, security scan, or a manual approval step) rather than an infrastructure fault.",
			"Healthy deployment pipelines keep lead time under an hour end to end; when a stage queues for longer, check runner capacity and stuck approvals before re-triggering the run.",
			"Rollbacks should be a first-class pipeline path: redeploying the previous artifact is safer than patching forward under pressure.",
		},
		"machine_learning": {
			"Model training runs should log dataset version, hyperparameters, and evaluation metrics together, otherwise regressions cannot be traced to their cause.",
			"Serving latency budgets matter more than offline accuracy once a model is in production; monitor the p99 of the inference path separately from batch evaluation.",
		},
		"kubernetes": {
			"A pod stuck in CrashLoopBackOff almost always means the container exits on startup; read the previous container's logs before touching the deployment spec.",
			"Resource requests drive scheduling and limits drive throttling; a workload with no requests set can starve the rest of the node.",
		},
		"incident_response": {
			"During an incident, a single coordinator assigns work and communicates status; responders who self-assign in parallel duplicate effort and lose the timeline.",
			"Postmortems should record the detection gap (time from fault to alert) as its own metric, since it is usually the cheapest number to improve.",
		},
	}
}

// Retrieved is the combined reference material for one query plus the
// live-search decision.
type Retrieved struct {
	ContextText   string
	UseSearchTool bool
}

// recencyCues force live-search grounding even when topic retrieval
// succeeded.
var recencyCues = []string{
	"right now",
	"currently",
	"as of now",
	"latest status",
}

// retrieve collects up to excerptsPerTopic excerpts per inferred topic, in
// topic order, and joins them with ChunkSeparator. Lookup is case-insensitive
// on the topic label. Source failures behave as an empty topic.
func (m *Manager) retrieve(ctx context.Context, query string, topics []string) Retrieved {
	chunks := []string{}
	for _, topic := range topics {
		chunks = append(chunks, m.excerptsFor(ctx, strings.ToLower(topic))...)
	}
	return Retrieved{
		ContextText:   strings.Join(chunks, ChunkSeparator),
		UseSearchTool: hasRecencyCue(query),
	}
}

func (m *Manager) excerptsFor(ctx context.Context, topic string) []string {
	excerpts := []string(nil)
	if m.source != nil {
		stored, err := m.source.TopicExcerpts(ctx, topic)
		if err != nil {
			m.logger.Warn("excerpt lookup degraded", "topic", topic, "error", err)
		} else {
			excerpts = stored
		}
	}
	if excerpts == nil {
		excerpts = DefaultExcerpts()[topic]
	}
	if len(excerpts) > excerptsPerTopic {
		excerpts = excerpts[:excerptsPerTopic]
	}
	return excerpts
}

func hasRecencyCue(query string) bool {
	lowered := strings.ToLower(query)
	for _, cue := range recencyCues {
		if strings.Contains(lowered, cue) {
			return true
		}
	}
	return false
}
