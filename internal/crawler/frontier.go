package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sasif-infinite/mcp/internal/metrics"
)

// Frontier drives one breadth-first crawl session. It owns the pending queue
// and visited set for the duration of a run and discards both afterwards.
type Frontier struct {
	fetcher Fetcher
	logger  *zap.Logger
	now     func() time.Time

	// newRobots builds the per-session robots policy; swappable in tests.
	newRobots func(cfg Config) RobotsPolicy
}

// NewFrontier constructs a Frontier around the given fetcher.
func NewFrontier(fetcher Fetcher, logger *zap.Logger) *Frontier {
	return &Frontier{
		fetcher: fetcher,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newRobots: func(cfg Config) RobotsPolicy {
			_, parsed, err := canonicalizeURL(cfg.Origin)
			if err != nil {
				return allowAllPolicy{}
			}
			client := &http.Client{Timeout: cfg.RequestTimeout}
			return NewRobotsSession(parsed, client, cfg.UserAgent, logger)
		},
	}
}

// Run executes one bounded BFS walk from the configured origin. The returned
// index holds pages in the order they were fetched; a session that fetches
// nothing returns an index with zero pages, never an error. Errors are
// reserved for an unusable config and for context cancellation, which aborts
// the session without an index.
func (f *Frontier) Run(ctx context.Context, cfg Config) (*Index, Stats, error) {
	cfg = cfg.Clamped()
	if err := cfg.Validate(); err != nil {
		return nil, Stats{}, err
	}

	start, originURL, err := canonicalizeURL(cfg.Origin)
	if err != nil {
		return nil, Stats{}, errors.New("crawler: origin is not a valid URL")
	}

	robots := f.newRobots(cfg)

	index := &Index{
		Origin:  start,
		BuiltAt: f.now(),
	}
	stats := Stats{}

	queue := []frontierEntry{{url: start, depth: 0}}
	visited := map[string]struct{}{start: {}}

	for len(queue) > 0 && stats.PagesFetched < cfg.MaxPages {
		// An interrupted session must not look like a completed one: a
		// partial index would otherwise replace a full cached index.
		if err := ctx.Err(); err != nil {
			return nil, stats, fmt.Errorf("crawler: session interrupted after %d pages: %w", stats.PagesFetched, err)
		}
		entry := queue[0]
		queue = queue[1:]

		if entry.depth > cfg.MaxDepth {
			stats.DepthSkipped++
			metrics.PageProcessed(metrics.PageDepthSkipped)
			continue
		}
		if !robots.Allowed(ctx, entry.url) {
			stats.RobotsDenied++
			metrics.PageProcessed(metrics.PageRobotsDenied)
			f.logger.Debug("robots denied", zap.String("url", entry.url))
			continue
		}

		page, ferr := f.fetcher.Fetch(ctx, entry.url)
		if ferr != nil {
			stats.FetchFailed++
			metrics.PageProcessed(metrics.PageFailed)
			f.logger.Warn("fetch failed",
				zap.String("url", entry.url),
				zap.Int("depth", entry.depth),
				zap.Error(ferr))
			continue
		}

		extraction := Extract(page, originURL, f.now())
		index.Pages = append(index.Pages, extraction.Record)
		stats.PagesFetched++
		metrics.PageProcessed(metrics.PageFetched)

		for _, link := range extraction.Links {
			if _, ok := visited[link]; ok {
				continue
			}
			if entry.depth+1 > cfg.MaxDepth {
				continue
			}
			visited[link] = struct{}{}
			queue = append(queue, frontierEntry{url: link, depth: entry.depth + 1})
			stats.Discovered++
		}
	}

	f.logger.Info("crawl session finished",
		zap.String("origin", start),
		zap.Int("pages_fetched", stats.PagesFetched),
		zap.Int("fetch_failed", stats.FetchFailed),
		zap.Int("robots_denied", stats.RobotsDenied),
		zap.Int("discovered", stats.Discovered))

	return index, stats, nil
}

// WithRobotsFactory overrides per-session robots policy construction.
func (f *Frontier) WithRobotsFactory(factory func(cfg Config) RobotsPolicy) *Frontier {
	f.newRobots = factory
	return f
}

// WithClock overrides the frontier's time source.
func (f *Frontier) WithClock(now func() time.Time) *Frontier {
	f.now = now
	return f
}
