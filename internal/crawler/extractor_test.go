package crawler

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustOrigin(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestExtract_TitleSnippetAndLinks(t *testing.T) {
	t.Parallel()

	body := `<html><head><title> Infinite Labs </title>
<script>var hidden = "nope";</script>
<style>.x { color: red }</style></head>
<body>
  <h1>Welcome</h1>
  <p>We   build   things.</p>
  <a href="/about">About</a>
  <a href="/about/">About again</a>
  <a href="/about#team">Team anchor</a>
  <a href="https://example.com/careers">Careers</a>
  <a href="https://other.com/external">External</a>
  <a href="mailto:hi@example.com">Mail</a>
</body></html>`

	page := RawPage{URL: "https://example.com", Body: []byte(body)}
	got := Extract(page, mustOrigin(t, "https://example.com"), time.Unix(100, 0).UTC())

	require.Equal(t, "Infinite Labs", got.Record.Title)
	require.Contains(t, got.Record.Snippet, "Welcome We build things.")
	require.NotContains(t, got.Record.Text, "hidden")
	require.NotContains(t, got.Record.Text, "color: red")

	// The three /about variants normalize to one link; the external host
	// and the mailto are dropped.
	require.Equal(t, []string{
		"https://example.com/about",
		"https://example.com/careers",
	}, got.Links)
}

func TestExtract_MalformedMarkupDegrades(t *testing.T) {
	t.Parallel()

	page := RawPage{URL: "https://example.com/broken", Body: []byte("<html><<<>not closed <a href=")}
	got := Extract(page, mustOrigin(t, "https://example.com"), time.Now().UTC())

	require.Equal(t, "https://example.com/broken", got.Record.URL)
	require.Empty(t, got.Links)
}

func TestExtract_SnippetBounded(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("lorem ipsum ", 600)
	page := RawPage{URL: "https://example.com/long", Body: []byte("<html><body><p>" + long + "</p></body></html>")}
	got := Extract(page, mustOrigin(t, "https://example.com"), time.Now().UTC())

	require.LessOrEqual(t, len(got.Record.Snippet), SnippetMaxLen)
	require.NotEmpty(t, got.Record.Snippet)
}

func TestExtract_EmptyBody(t *testing.T) {
	t.Parallel()

	page := RawPage{URL: "https://example.com/empty", Body: nil}
	got := Extract(page, mustOrigin(t, "https://example.com"), time.Now().UTC())

	require.Empty(t, got.Record.Title)
	require.Empty(t, got.Record.Snippet)
	require.Empty(t, got.Links)
}

func TestTruncate_RespectsRuneBoundaries(t *testing.T) {
	t.Parallel()

	s := "héllo wörld"
	for n := 0; n <= len(s); n++ {
		cut := truncate(s, n)
		require.LessOrEqual(t, len(cut), n)
		require.True(t, strings.HasPrefix(s, cut))
	}
}
