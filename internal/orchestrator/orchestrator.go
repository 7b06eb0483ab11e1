// Package orchestrator runs crawl sessions end-to-end and answers questions
// from the indexed content.
package orchestrator

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sasif-infinite/mcp/internal/crawler"
	"github.com/sasif-infinite/mcp/internal/index"
	"github.com/sasif-infinite/mcp/internal/metrics"
)

// maxResponseEntries bounds the entry list in a crawl response.
const maxResponseEntries = 10

// CrawlStatus tells the caller which source produced the response entries.
type CrawlStatus string

// Crawl response sources. StatusEmpty means no index exists at all; it is an
// explicit "no data yet" signal, not an error.
const (
	StatusFresh  CrawlStatus = "fresh"
	StatusCached CrawlStatus = "cached"
	StatusEmpty  CrawlStatus = "empty"
)

// Entry is one {url, snippet} pair in a crawl response.
type Entry struct {
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// CrawlResult is the formatted outcome of one crawl request.
type CrawlResult struct {
	Status       CrawlStatus `json:"status"`
	PagesIndexed int         `json:"pages_indexed"`
	PagesFailed  int         `json:"pages_failed"`
	Entries      []Entry     `json:"entries"`
}

// Orchestrator coordinates the frontier and the index store. A mutex
// serializes crawl sessions: concurrent requests queue behind the in-flight
// one rather than interleaving writes to the store.
type Orchestrator struct {
	frontier *crawler.Frontier
	store    *index.Store
	cfg      crawler.Config
	logger   *zap.Logger

	crawlMu sync.Mutex
}

// New constructs an Orchestrator. cfg carries the fixed origin and user
// agent; per-request page and depth limits are clamped per call.
func New(frontier *crawler.Frontier, store *index.Store, cfg crawler.Config, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		frontier: frontier,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

// Crawl runs one crawl session and formats the response. A session with at
// least one page commits its index; an empty session falls back to the last
// good index, and only a total absence of any index yields StatusEmpty.
func (o *Orchestrator) Crawl(ctx context.Context, maxPages, maxDepth int) (CrawlResult, error) {
	o.crawlMu.Lock()
	defer o.crawlMu.Unlock()

	// Absent request limits fall back to the configured session defaults;
	// Clamped then bounds either source by the hard caps.
	cfg := o.cfg
	if maxPages > 0 {
		cfg.MaxPages = maxPages
	}
	if maxDepth > 0 {
		cfg.MaxDepth = maxDepth
	}
	cfg = cfg.Clamped()

	sessionID := uuid.NewString()
	log := o.logger.With(zap.String("session_id", sessionID))
	log.Info("crawl session starting",
		zap.String("origin", cfg.Origin),
		zap.Int("max_pages", cfg.MaxPages),
		zap.Int("max_depth", cfg.MaxDepth))

	idx, stats, err := o.frontier.Run(ctx, cfg)
	if err != nil {
		return CrawlResult{}, err
	}

	if idx.PageCount() > 0 {
		if replaceErr := o.store.Replace(idx); replaceErr != nil {
			log.Warn("index persisted in memory only", zap.Error(replaceErr))
		}
		metrics.SessionFinished(metrics.SessionFresh)
		return CrawlResult{
			Status:       StatusFresh,
			PagesIndexed: idx.PageCount(),
			PagesFailed:  stats.FetchFailed,
			Entries:      formatEntries(idx),
		}, nil
	}

	if cached, ok := o.store.Current(); ok {
		log.Info("crawl yielded nothing; serving cached index",
			zap.Int("cached_pages", cached.PageCount()))
		metrics.SessionFinished(metrics.SessionCached)
		return CrawlResult{
			Status:       StatusCached,
			PagesIndexed: cached.PageCount(),
			PagesFailed:  stats.FetchFailed,
			Entries:      formatEntries(cached),
		}, nil
	}

	log.Info("crawl yielded nothing and no cached index exists")
	metrics.SessionFinished(metrics.SessionEmpty)
	return CrawlResult{
		Status:      StatusEmpty,
		PagesFailed: stats.FetchFailed,
		Entries:     []Entry{},
	}, nil
}

// CrawlThenAnswer runs a crawl session and immediately answers the question
// against whatever index the session left current.
func (o *Orchestrator) CrawlThenAnswer(ctx context.Context, question string, maxPages, maxDepth, topK int) (CrawlResult, AnswerResult, error) {
	crawlRes, err := o.Crawl(ctx, maxPages, maxDepth)
	if err != nil {
		return CrawlResult{}, AnswerResult{}, err
	}
	answerRes := o.Answer(ctx, question, topK)
	return crawlRes, answerRes, nil
}

// formatEntries returns up to maxResponseEntries {url, snippet} pairs in BFS
// visit order, which is stable for identical inputs.
func formatEntries(idx *crawler.Index) []Entry {
	n := idx.PageCount()
	if n > maxResponseEntries {
		n = maxResponseEntries
	}
	entries := make([]Entry, 0, n)
	for _, page := range idx.Pages[:n] {
		entries = append(entries, Entry{URL: page.URL, Snippet: page.Snippet})
	}
	return entries
}
