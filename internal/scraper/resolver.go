package scraper

import (
	"net/url"
	"strings"
)

// ResolveURL returns candidate untouched when it is already absolute and
// otherwise appends it to baseURL. Malformed input passes through.
func ResolveURL(baseURL, candidate string) string {
	if strings.HasPrefix(candidate, "http") {
		return candidate
	}
	return baseURL + candidate
}

// Origin returns scheme://host of rawURL, or "" if it cannot be parsed.
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
