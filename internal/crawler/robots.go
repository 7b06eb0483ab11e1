package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// RobotsPolicy answers allow/deny for candidate URLs.
type RobotsPolicy interface {
	Allowed(ctx context.Context, rawURL string) bool
}

// robotsSession enforces the origin's robots.txt for one crawl session. The
// file is fetched at most once; if the fetch fails or the body does not
// parse, the session defaults to allow-all. Enforcement is best-effort, never
// a hard blocker.
type robotsSession struct {
	origin    *url.URL
	client    *http.Client
	userAgent string
	logger    *zap.Logger

	once  sync.Once
	group *robotstxt.Group
}

// NewRobotsSession builds a session-scoped robots policy for origin.
func NewRobotsSession(origin *url.URL, client *http.Client, userAgent string, logger *zap.Logger) RobotsPolicy {
	return &robotsSession{
		origin:    origin,
		client:    client,
		userAgent: userAgent,
		logger:    logger,
	}
}

// Allowed implements RobotsPolicy.
func (r *robotsSession) Allowed(ctx context.Context, rawURL string) bool {
	r.once.Do(func() { r.group = r.load(ctx) })
	if r.group == nil {
		return true
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := parsed.Path
	if path == "" {
		path = "/"
	}
	return r.group.Test(path)
}

func (r *robotsSession) load(ctx context.Context) *robotstxt.Group {
	robotsURL := *r.origin
	robotsURL.Path = "/robots.txt"
	robotsURL.RawQuery = ""
	robotsURL.Fragment = ""

	data, err := r.fetch(ctx, robotsURL.String())
	if err != nil {
		r.logger.Warn("robots fetch failed; allowing all",
			zap.String("host", r.origin.Host), zap.Error(err))
		return nil
	}
	group := data.FindGroup(r.userAgent)
	if group == nil {
		return nil
	}
	return group
}

func (r *robotsSession) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new robots request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			r.logger.Debug("close robots body", zap.Error(cerr))
		}
	}()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read robots body: %w", err)
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots: %w", err)
	}
	return data, nil
}

// allowAllPolicy skips robots enforcement entirely.
type allowAllPolicy struct{}

func (allowAllPolicy) Allowed(context.Context, string) bool { return true }
