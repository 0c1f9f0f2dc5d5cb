// Package urlnorm parses, coerces, and validates query strings into
// canonical absolute URLs, and computes the root host used to key the KV
// store (spec §4.A).
package urlnorm

import (
	"net/url"
	"regexp"
	"strings"

	"feedsearch/internal/domain/apperr"
)

// shapeRegexp is a permissive check that the input at least looks like a
// URL: an optional scheme, then label.label with >=2 alphanumerics in each
// label. It deliberately does not attempt full RFC validation — that's what
// url.Parse is for, once a scheme has been prepended.
var shapeRegexp = regexp.MustCompile(`(?i)^(https?://|feed://)?[a-z0-9-]{2,}\.[a-z0-9-]{2,}`)

// leadingFeedLabels are the subdomain labels root_host strips when present
// and the host has enough labels to still be meaningful without them.
var leadingFeedLabels = map[string]bool{
	"feeds": true,
	"feed":  true,
	"www":   true,
	"rss":   true,
	"api":   true,
}

// Normalize parses raw into a canonical absolute URL. When coerceHTTPS is
// true and raw has no scheme (or has http://), the result uses https.
// Otherwise the default scheme is http. Returns a *apperr.Error of
// KindBadRequest on any failure.
func Normalize(raw string, coerceHTTPS bool) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperr.BadRequest("No URL in Request")
	}

	if !shapeRegexp.MatchString(raw) {
		return nil, apperr.BadRequest("No URL in Request")
	}

	candidate := raw
	// Leading ":/" (a truncated "://") is stripped before prepending a
	// scheme, matching inputs like "example.com:/path" pasted from a
	// mangled address bar.
	candidate = strings.TrimPrefix(candidate, ":/")

	switch {
	case strings.HasPrefix(strings.ToLower(candidate), "https://"):
		// already https
	case strings.HasPrefix(strings.ToLower(candidate), "http://"):
		if coerceHTTPS {
			candidate = "https://" + candidate[len("http://"):]
		}
	case strings.HasPrefix(strings.ToLower(candidate), "feed://"):
		scheme := "http://"
		if coerceHTTPS {
			scheme = "https://"
		}
		candidate = scheme + candidate[len("feed://"):]
	default:
		scheme := "http://"
		if coerceHTTPS {
			scheme = "https://"
		}
		candidate = scheme + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Host == "" {
		return nil, apperr.BadRequest("No URL in Request")
	}

	return parsed, nil
}

// HasPath reports whether u's path, stripped of leading/trailing slashes,
// is non-empty. "https://a.com" and "https://a.com/" both report false.
func HasPath(u *url.URL) bool {
	if u == nil {
		return false
	}
	return strings.Trim(u.Path, "/") != ""
}

// RootHost strips a single leading feed-ish label (feeds, feed, www, rss,
// api — matched case-insensitively) from h, provided h has at least three
// dot-labels; otherwise h is returned unchanged.
func RootHost(h string) string {
	h = strings.ToLower(h)
	labels := strings.Split(h, ".")
	if len(labels) < 3 {
		return h
	}
	if leadingFeedLabels[labels[0]] {
		return strings.Join(labels[1:], ".")
	}
	return h
}

// schemeRegexp matches a leading "xx://" to "xxxxx://" scheme prefix.
var schemeRegexp = regexp.MustCompile(`(?i)^[a-z]{2,5}://`)

// RemoveScheme case-insensitively strips a leading scheme (2-5 letters
// followed by "://") from s.
func RemoveScheme(s string) string {
	return schemeRegexp.ReplaceAllString(s, "")
}
