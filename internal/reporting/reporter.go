package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"augur/internal/heartbeat"
)

// Counters tracks per-process pipeline activity. Process metrics only;
// classification outcomes themselves are never persisted.
type Counters struct {
	requests            atomic.Int64
	classifierFallbacks atomic.Int64
	ruleFallbacks       atomic.Int64
	searchToolRequests  atomic.Int64
	degradedFetches     atomic.Int64
}

func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) Request()            { c.requests.Add(1) }
func (c *Counters) ClassifierFallback() { c.classifierFallbacks.Add(1) }
func (c *Counters) RuleFallback()       { c.ruleFallbacks.Add(1) }
func (c *Counters) SearchToolRequest()  { c.searchToolRequests.Add(1) }
func (c *Counters) DegradedFetch()      { c.degradedFetches.Add(1) }

type Totals struct {
	Requests            int64 `json:"requests"`
	ClassifierFallbacks int64 `json:"classifier_fallbacks"`
	RuleFallbacks       int64 `json:"rule_fallbacks"`
	SearchToolRequests  int64 `json:"search_tool_requests"`
	DegradedFetches     int64 `json:"degraded_fetches"`
}

func (c *Counters) Totals() Totals {
	return Totals{
		Requests:            c.requests.Load(),
		ClassifierFallbacks: c.classifierFallbacks.Load(),
		RuleFallbacks:       c.ruleFallbacks.Load(),
		SearchToolRequests:  c.searchToolRequests.Load(),
		DegradedFetches:     c.degradedFetches.Load(),
	}
}

// Reporter logs counter totals on a cron schedule.
type Reporter struct {
	counters *Counters
	spec     string
	logger   *slog.Logger
	reporter heartbeat.Reporter
}

func New(counters *Counters, spec string, reporter heartbeat.Reporter, logger *slog.Logger) (*Reporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid reporting schedule %q: %w", spec, err)
	}
	return &Reporter{counters: counters, spec: spec, logger: logger, reporter: reporter}, nil
}

func (r *Reporter) Start(ctx context.Context) error {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(r.spec, func() {
		totals := r.counters.Totals()
		r.logger.Info("pipeline report",
			"requests", totals.Requests,
			"classifier_fallbacks", totals.ClassifierFallbacks,
			"rule_fallbacks", totals.RuleFallbacks,
			"search_tool_requests", totals.SearchToolRequests,
			"degraded_fetches", totals.DegradedFetches,
		)
		if r.reporter != nil {
			r.reporter.Beat("reporting", "report emitted")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule pipeline report: %w", err)
	}

	if r.reporter != nil {
		r.reporter.Beat("reporting", "scheduler running")
	}
	scheduler.Start()
	<-ctx.Done()
	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	if r.reporter != nil {
		r.reporter.Stopped("reporting", "scheduler stopped")
	}
	return nil
}
