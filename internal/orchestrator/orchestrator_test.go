package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sasif-infinite/mcp/internal/crawler"
	"github.com/sasif-infinite/mcp/internal/index"
)

// mapFetcher serves canned HTML bodies; URLs without an entry fail.
type mapFetcher map[string]string

func (m mapFetcher) Fetch(_ context.Context, rawURL string) (crawler.RawPage, error) {
	body, ok := m[rawURL]
	if !ok {
		return crawler.RawPage{}, &crawler.FetchError{Kind: crawler.FetchConnectionFailure, URL: rawURL}
	}
	return crawler.RawPage{URL: rawURL, StatusCode: 200, Body: []byte(body)}, nil
}

type allowAll struct{}

func (allowAll) Allowed(context.Context, string) bool { return true }

func testCrawlConfig() crawler.Config {
	return crawler.Config{
		Origin:    "https://site.test/",
		UserAgent: "test-agent",
	}
}

func newTestOrchestrator(t *testing.T, fetcher crawler.Fetcher) (*Orchestrator, *index.Store) {
	t.Helper()
	frontier := crawler.NewFrontier(fetcher, zap.NewNop()).
		WithRobotsFactory(func(crawler.Config) crawler.RobotsPolicy { return allowAll{} })
	store := index.NewStore(filepath.Join(t.TempDir(), "index.json"), zap.NewNop())
	return New(frontier, store, testCrawlConfig(), zap.NewNop()), store
}

func sitePage(text string, links ...string) string {
	page := "<html><head><title>t</title></head><body><p>" + text + "</p>"
	for _, l := range links {
		page += fmt.Sprintf("<a href=%q>x</a>", l)
	}
	return page + "</body></html>"
}

func TestCrawl_FreshIndexCommitted(t *testing.T) {
	t.Parallel()

	orch, store := newTestOrchestrator(t, mapFetcher{
		"https://site.test":   sitePage("root text", "/a"),
		"https://site.test/a": sitePage("a text"),
	})

	result, err := orch.Crawl(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Equal(t, StatusFresh, result.Status)
	require.Equal(t, 2, result.PagesIndexed)
	require.Len(t, result.Entries, 2)
	require.Equal(t, "https://site.test", result.Entries[0].URL)

	current, ok := store.Current()
	require.True(t, ok)
	require.Equal(t, 2, current.PageCount())
}

func TestCrawl_EmptySessionFallsBackToCache(t *testing.T) {
	t.Parallel()

	orch, store := newTestOrchestrator(t, mapFetcher{})

	// Pre-seed the store with a last good index.
	cached := &crawler.Index{
		Origin:  "https://site.test",
		BuiltAt: time.Unix(500, 0).UTC(),
		Pages: []crawler.PageRecord{
			{URL: "https://site.test", Snippet: "cached root"},
			{URL: "https://site.test/old", Snippet: "cached old"},
		},
	}
	require.NoError(t, store.Replace(cached))

	result, err := orch.Crawl(context.Background(), 10, 1)
	require.NoError(t, err)
	require.Equal(t, StatusCached, result.Status)
	require.Equal(t, 2, result.PagesIndexed)
	require.Equal(t, []Entry{
		{URL: "https://site.test", Snippet: "cached root"},
		{URL: "https://site.test/old", Snippet: "cached old"},
	}, result.Entries)

	// The cached index stays current; the empty session never replaced it.
	current, ok := store.Current()
	require.True(t, ok)
	require.Equal(t, cached, current)
}

func TestCrawl_EmptySessionNoCacheIsExplicitEmpty(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(t, mapFetcher{})

	result, err := orch.Crawl(context.Background(), 10, 1)
	require.NoError(t, err)
	require.Equal(t, StatusEmpty, result.Status)
	require.Equal(t, 0, result.PagesIndexed)
	require.NotNil(t, result.Entries)
	require.Empty(t, result.Entries)
}

func TestCrawl_ResponseBoundedToTenEntries(t *testing.T) {
	t.Parallel()

	pages := mapFetcher{}
	links := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		link := fmt.Sprintf("/p%02d", i)
		links = append(links, link)
		pages["https://site.test"+link] = sitePage(fmt.Sprintf("page %d", i))
	}
	pages["https://site.test"] = sitePage("root", links...)

	orch, _ := newTestOrchestrator(t, pages)
	result, err := orch.Crawl(context.Background(), 40, 1)
	require.NoError(t, err)
	require.Equal(t, 16, result.PagesIndexed)
	require.Len(t, result.Entries, 10)
}

func TestCrawl_AbsentLimitsUseConfiguredDefaults(t *testing.T) {
	t.Parallel()

	pages := mapFetcher{}
	links := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		link := fmt.Sprintf("/p%d", i)
		links = append(links, link)
		pages["https://site.test"+link] = sitePage(fmt.Sprintf("page %d", i))
	}
	pages["https://site.test"] = sitePage("root", links...)

	cfg := testCrawlConfig()
	cfg.MaxPages = 2
	cfg.MaxDepth = 1
	frontier := crawler.NewFrontier(pages, zap.NewNop()).
		WithRobotsFactory(func(crawler.Config) crawler.RobotsPolicy { return allowAll{} })
	store := index.NewStore(filepath.Join(t.TempDir(), "index.json"), zap.NewNop())
	orch := New(frontier, store, cfg, zap.NewNop())

	// Zero request limits defer to the configured session defaults.
	result, err := orch.Crawl(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Equal(t, StatusFresh, result.Status)
	require.Equal(t, 2, result.PagesIndexed)
}

func TestCrawl_LimitsClamped(t *testing.T) {
	t.Parallel()

	pages := mapFetcher{"https://site.test": sitePage("root")}
	orch, _ := newTestOrchestrator(t, pages)

	// Absurd caller limits must not break the session.
	result, err := orch.Crawl(context.Background(), 100000, 50)
	require.NoError(t, err)
	require.Equal(t, StatusFresh, result.Status)
	require.Equal(t, 1, result.PagesIndexed)
}

func TestCrawl_CancelledSessionKeepsCachedIndex(t *testing.T) {
	t.Parallel()

	orch, store := newTestOrchestrator(t, mapFetcher{
		"https://site.test": sitePage("fresh root"),
	})

	cached := &crawler.Index{
		Origin:  "https://site.test",
		BuiltAt: time.Unix(500, 0).UTC(),
		Pages:   []crawler.PageRecord{{URL: "https://site.test", Snippet: "cached root"}},
	}
	require.NoError(t, store.Replace(cached))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := orch.Crawl(ctx, 10, 1)
	require.ErrorIs(t, err, context.Canceled)

	// The interrupted session committed nothing.
	current, ok := store.Current()
	require.True(t, ok)
	require.Equal(t, cached, current)
}

func TestCrawlThenAnswer(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(t, mapFetcher{
		"https://site.test": sitePage("the roadmap mentions quantum widgets"),
	})

	crawlRes, answerRes, err := orch.CrawlThenAnswer(context.Background(), "what about quantum widgets?", 0, 0, 3)
	require.NoError(t, err)
	require.Equal(t, StatusFresh, crawlRes.Status)
	require.Equal(t, AnswerOK, answerRes.Status)
	require.Len(t, answerRes.Hits, 1)
	require.Contains(t, answerRes.Hits[0].Snippet, "quantum widgets")
}
