package connectors

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

var ErrUnknownConnector = errors.New("unknown connector")

// SentinelSummary is the degraded per-item result for a connector whose fetch
// failed, timed out, or whose id has no registered summarizer.
const SentinelSummary = "no data available for this connector."

const defaultFetchTimeout = 10 * time.Second

type FetchRequest struct {
	Connectors []ID
	Query      string
	TimeHint   TimeHint
	Identity   string
}

// Fetcher fans out one summary lookup per selected connector and collects the
// results once every fetch has finished. One slow or failing connector delays
// or degrades only its own entry, never its siblings.
type Fetcher struct {
	summarizers map[ID]Summarizer
	fallback    Summarizer
	timeout     time.Duration
	maxInFlight int
	logger      *slog.Logger
}

func NewFetcher(summarizers map[ID]Summarizer, fallback Summarizer, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		summarizers: summarizers,
		fallback:    fallback,
		timeout:     timeout,
		maxInFlight: len(All()),
		logger:      logger,
	}
}

// SetMaxInFlight caps concurrent connector fetches. Values below one keep
// the default of one slot per known connector.
func (f *Fetcher) SetMaxInFlight(limit int) {
	if limit < 1 {
		return
	}
	f.maxInFlight = limit
}

// Fetch returns exactly one Context per requested connector, in request order.
func (f *Fetcher) Fetch(ctx context.Context, req FetchRequest) []Context {
	results := make([]Context, len(req.Connectors))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(f.maxInFlight)
	for index, connector := range req.Connectors {
		index, connector := index, connector
		group.Go(func() error {
			results[index] = Context{
				Connector: connector,
				Summary:   f.fetchOne(groupCtx, connector, req),
			}
			return nil
		})
	}
	// Workers only report degraded items, never errors.
	_ = group.Wait()
	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, connector ID, req FetchRequest) string {
	summarizer, ok := f.summarizers[connector]
	if !ok {
		summarizer = f.fallback
	}
	if summarizer == nil {
		f.logger.Warn("no summarizer registered", "connector", connector)
		return SentinelSummary
	}

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	summary, err := summarizer.Summarize(fetchCtx, SummaryRequest{
		Connector: connector,
		Query:     req.Query,
		TimeHint:  req.TimeHint,
		Identity:  req.Identity,
	})
	if err != nil {
		f.logger.Warn("connector fetch degraded", "connector", connector, "error", err)
		return SentinelSummary
	}
	if summary == "" {
		return SentinelSummary
	}
	return summary
}
