package crawler

import "fmt"

// FetchErrorKind classifies why a single page fetch failed.
type FetchErrorKind string

// Fetch failure kinds. Every kind is recovered locally: the URL is dropped
// for the session and the crawl continues.
const (
	FetchTimeout           FetchErrorKind = "timeout"
	FetchConnectionFailure FetchErrorKind = "connection_failure"
	FetchHTTPStatus        FetchErrorKind = "http_status"
	FetchNonHTML           FetchErrorKind = "non_html_content"
)

// FetchError is the typed failure returned by a Fetcher.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchHTTPStatus:
		return fmt.Sprintf("fetch %s: http status %d", e.URL, e.StatusCode)
	case FetchNonHTML:
		return fmt.Sprintf("fetch %s: non-html content", e.URL)
	default:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }
