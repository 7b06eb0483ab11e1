package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFetcher(t *testing.T, timeout time.Duration) *CollyFetcher {
	t.Helper()
	cfg := Config{
		Origin:         "http://example.com",
		UserAgent:      "test-agent",
		RequestTimeout: timeout,
	}
	fetcher, err := NewCollyFetcher(cfg, zap.NewNop())
	require.NoError(t, err)
	return fetcher
}

func TestCollyFetcher_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><title>ok</title></html>")
	}))
	defer srv.Close()

	fetcher := newTestFetcher(t, 2*time.Second)
	page, err := fetcher.Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/page", page.URL)
	require.Equal(t, http.StatusOK, page.StatusCode)
	require.Contains(t, string(page.Body), "<title>ok</title>")
}

func TestCollyFetcher_HTTPStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := newTestFetcher(t, 2*time.Second)
	_, err := fetcher.Fetch(context.Background(), srv.URL+"/missing")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, FetchHTTPStatus, fetchErr.Kind)
	require.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestCollyFetcher_NonHTMLContent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"not": "html"}`)
	}))
	defer srv.Close()

	fetcher := newTestFetcher(t, 2*time.Second)
	_, err := fetcher.Fetch(context.Background(), srv.URL+"/data.json")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, FetchNonHTML, fetchErr.Kind)
}

func TestCollyFetcher_ConnectionFailure(t *testing.T) {
	t.Parallel()

	fetcher := newTestFetcher(t, 2*time.Second)
	_, err := fetcher.Fetch(context.Background(), "http://127.0.0.1:1/unreachable")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, FetchConnectionFailure, fetchErr.Kind)
}

func TestCollyFetcher_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		fmt.Fprint(w, "too late")
	}))
	defer func() {
		close(release)
		srv.Close()
	}()

	fetcher := newTestFetcher(t, 100*time.Millisecond)
	_, err := fetcher.Fetch(context.Background(), srv.URL+"/slow")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, FetchTimeout, fetchErr.Kind)
}

func TestClassifyFetchError(t *testing.T) {
	t.Parallel()

	err := classifyFetchError("http://x", 503, nil)
	require.Equal(t, FetchHTTPStatus, err.Kind)
	require.Equal(t, 503, err.StatusCode)

	err = classifyFetchError("http://x", 0, context.DeadlineExceeded)
	require.Equal(t, FetchTimeout, err.Kind)

	// Plain cancellation is not a timeout.
	err = classifyFetchError("http://x", 0, context.Canceled)
	require.Equal(t, FetchConnectionFailure, err.Kind)

	err = classifyFetchError("http://x", 0, errors.New("connection refused"))
	require.Equal(t, FetchConnectionFailure, err.Kind)
}

func TestCollyFetcher_CancelledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><title>ok</title></html>")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := newTestFetcher(t, 2*time.Second)
	_, err := fetcher.Fetch(ctx, srv.URL+"/page")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, FetchConnectionFailure, fetchErr.Kind)
	require.ErrorIs(t, err, context.Canceled)
}
