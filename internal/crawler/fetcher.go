package crawler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Fetcher retrieves a single page. Implementations perform exactly one GET
// per call; retry policy, if any, belongs to the caller.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (RawPage, error)
}

// CollyFetcher implements Fetcher using a Colly collector cloned per fetch.
type CollyFetcher struct {
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// NewCollyFetcher constructs a configured Colly-based Fetcher.
func NewCollyFetcher(cfg Config, logger *zap.Logger) (*CollyFetcher, error) {
	base := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
	)
	base.AllowURLRevisit = true
	// Robots enforcement belongs to the session policy, which caches the
	// origin's robots.txt once and defaults to allow on fetch failure.
	base.IgnoreRobotsTxt = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.RequestTimeout,
	})
	base.SetRequestTimeout(cfg.RequestTimeout)
	if err := base.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 1}); err != nil {
		return nil, fmt.Errorf("configure limit rule: %w", err)
	}

	return &CollyFetcher{
		baseCollector: base,
		logger:        logger,
	}, nil
}

// Fetch performs one GET with the configured timeout and classifies any
// failure into the FetchError taxonomy.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (RawPage, error) {
	collector := f.baseCollector.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		contentType := ""
		if r.Headers != nil {
			contentType = r.Headers.Get("Content-Type")
		}
		page := RawPage{
			URL:         rawURL,
			FinalURL:    r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: contentType,
			Body:        append([]byte{}, r.Body...),
		}
		send(fetchResult{page: page})
	})

	collector.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		send(fetchResult{err: classifyFetchError(rawURL, status, err)})
	})

	if err := collector.Visit(rawURL); err != nil {
		return RawPage{}, classifyFetchError(rawURL, 0, err)
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return RawPage{}, classifyFetchError(rawURL, 0, err)
		}
		if res.err != nil {
			return RawPage{}, res.err
		}
		if !isHTMLContent(res.page.ContentType) {
			return RawPage{}, &FetchError{Kind: FetchNonHTML, URL: rawURL}
		}
		return res.page, nil
	default:
		return RawPage{}, &FetchError{
			Kind: FetchConnectionFailure,
			URL:  rawURL,
			Err:  errors.New("fetch produced no result"),
		}
	}
}

type fetchResult struct {
	page RawPage
	err  error
}

func classifyFetchError(rawURL string, status int, err error) *FetchError {
	if status >= 400 {
		return &FetchError{Kind: FetchHTTPStatus, URL: rawURL, StatusCode: status, Err: err}
	}
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return &FetchError{Kind: FetchTimeout, URL: rawURL, Err: err}
		}
	}
	return &FetchError{Kind: FetchConnectionFailure, URL: rawURL, Err: err}
}

// isHTMLContent accepts text/html and application/xhtml responses. An absent
// content type is accepted and left to the extractor to make sense of.
func isHTMLContent(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}
