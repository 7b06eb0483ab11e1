// Package crawler implements the bounded same-origin crawl engine: robots
// policy, page fetching, content extraction, and the BFS frontier.
package crawler

import (
	"fmt"
	"time"
)

// Hard limits applied to every crawl session regardless of caller input.
const (
	MaxPagesCap           = 40
	MaxDepthCap           = 2
	DefaultRequestTimeout = 10 * time.Second

	// SnippetMaxLen bounds the snippet stored on each PageRecord.
	SnippetMaxLen = 320

	// maxTextLen bounds the retained page text used for question scoring.
	maxTextLen = 32 * 1024
)

// Config captures the knobs for one crawl session.
type Config struct {
	Origin         string
	UserAgent      string
	MaxPages       int
	MaxDepth       int
	RequestTimeout time.Duration
}

// Clamped returns a copy of the config with every limit forced inside the
// hard caps. Absent, zero, or negative values clamp to the cap itself, never
// to zero, so a malformed request still produces a usable session. A
// configured timeout inside the cap is kept; anything else becomes the
// default.
func (c Config) Clamped() Config {
	out := c
	if out.MaxPages <= 0 || out.MaxPages > MaxPagesCap {
		out.MaxPages = MaxPagesCap
	}
	if out.MaxDepth <= 0 || out.MaxDepth > MaxDepthCap {
		out.MaxDepth = MaxDepthCap
	}
	if out.RequestTimeout <= 0 || out.RequestTimeout > DefaultRequestTimeout {
		out.RequestTimeout = DefaultRequestTimeout
	}
	return out
}

// Validate checks the session config before a frontier run.
func (c Config) Validate() error {
	if c.Origin == "" {
		return fmt.Errorf("crawler: origin must be set")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("crawler: user agent must be set")
	}
	return nil
}

// PageRecord holds the extracted summary of one fetched page. Immutable once
// created by the extractor.
type PageRecord struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Snippet   string    `json:"snippet"`
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Index is the result of one complete crawl session: pages in BFS visit
// order plus session metadata. It is replaced wholesale, never merged.
type Index struct {
	Origin  string       `json:"origin"`
	BuiltAt time.Time    `json:"built_at"`
	Pages   []PageRecord `json:"pages"`
}

// PageCount reports the number of indexed pages.
func (i *Index) PageCount() int {
	if i == nil {
		return 0
	}
	return len(i.Pages)
}

// frontierEntry is a discovered URL awaiting fetch, tagged with its BFS depth.
type frontierEntry struct {
	url   string
	depth int
}

// Stats summarizes what happened during one frontier run.
type Stats struct {
	PagesFetched int
	FetchFailed  int
	RobotsDenied int
	DepthSkipped int
	Discovered   int
}

// RawPage is the unparsed result of a successful fetch.
type RawPage struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
}
