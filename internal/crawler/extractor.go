package crawler

import (
	"bytes"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Extraction is the parsed output for one fetched page: its summary record
// and the same-origin links discovered on it.
type Extraction struct {
	Record PageRecord
	Links  []string
}

// Extract parses a raw page into a PageRecord and its outbound same-origin
// links. Malformed markup degrades to an empty-snippet record with no links
// rather than failing the crawl.
func Extract(page RawPage, origin *url.URL, fetchedAt time.Time) Extraction {
	record := PageRecord{
		URL:       page.URL,
		FetchedAt: fetchedAt,
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return Extraction{Record: record}
	}

	record.Title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript").Remove()
	text := truncate(collapseWhitespace(doc.Text()), maxTextLen)
	record.Text = text
	record.Snippet = truncate(text, SnippetMaxLen)

	pageURL, perr := url.Parse(page.URL)
	if perr != nil {
		return Extraction{Record: record}
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		canonical, parsed, ok := resolveLink(pageURL, href)
		if !ok || !sameOrigin(origin, parsed) {
			return
		}
		if _, dup := seen[canonical]; dup {
			return
		}
		seen[canonical] = struct{}{}
		links = append(links, canonical)
	})

	return Extraction{Record: record, Links: links}
}

// collapseWhitespace joins all visible text into single-space-separated form.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	for len(cut) > 0 {
		if r, size := utf8.DecodeLastRuneInString(cut); r != utf8.RuneError || size != 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}
