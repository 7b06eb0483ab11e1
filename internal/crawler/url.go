package crawler

import (
	"net/url"
	"strings"
)

// canonicalizeURL normalizes a URL for visited-set identity: the fragment is
// dropped and a trailing slash is trimmed so /about and /about/ (and
// /about#team) count as one page.
func canonicalizeURL(raw string) (string, *url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", nil, err
	}
	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	return parsed.String(), parsed, nil
}

// sameOrigin reports whether two URLs share scheme, host, and port.
func sameOrigin(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return strings.EqualFold(a.Scheme, b.Scheme) && strings.EqualFold(a.Host, b.Host)
}

// resolveLink resolves href against the page URL and canonicalizes the
// result. Returns ok=false for unparseable or non-http(s) links.
func resolveLink(page *url.URL, href string) (string, *url.URL, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", nil, false
	}
	abs := page.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", nil, false
	}
	canonical, parsed, err := canonicalizeURL(abs.String())
	if err != nil {
		return "", nil, false
	}
	return canonical, parsed, true
}
