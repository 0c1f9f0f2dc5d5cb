// Package score implements the deterministic feed-quality scoring function
// (spec §4.F). Score is pure: same feed and host always produce the same
// number, with no I/O.
package score

import (
	"math"
	"strings"

	"feedsearch/internal/domain/entity"
)

// keywordBonuses are each applied independently: every keyword present in
// the feed URL adds its bonus (a URL can match several), with higher
// bonuses assigned to the keywords listed earlier, mirroring the spec's
// "higher = earlier in list" rule.
var keywordBonuses = []struct {
	keyword string
	bonus   int
}{
	{"atom", 10},
	{"rss", 8},
	{".xml", 6},
	{"feed", 4},
	{"rdf", 2},
}

// homeLikePaths bump generic landing-page-ish feed URLs.
var homeLikePaths = []string{"/home", "/top", "/most", "/magazine"}

// Score computes and writes feed.Score in place, evaluated against host
// (the query's root host). It does not return a value; callers read
// feed.Score afterward.
func Score(feed *entity.Feed, host string) {
	if feed == nil || feed.URL == nil {
		return
	}

	s := 0
	u := feed.URL
	urlStr := strings.ToLower(u.String())
	title := strings.ToLower(feed.Title)

	if u.Hostname() != "" && !strings.Contains(u.Hostname(), host) {
		s -= 20
	}

	// urlParts mirrors yarl's URL.parts, whose leading element is the root
	// "/" itself, so a path of n real segments counts as n+1 parts.
	urlParts := len(pathSegments(u.Path)) + 1
	if urlParts > 2 {
		s -= 2 * (urlParts - 2)
	}

	if feed.Bozo != 0 {
		s -= 20
	}

	if feed.Description == "" {
		s -= 10
	}

	if strings.Contains(urlStr, "georss") {
		s -= 10
	}

	if strings.Contains(urlStr, "alt") {
		s -= 7
	}

	if strings.Contains(urlStr, "comments") || strings.Contains(title, "comments") {
		s -= 15
	} else {
		s += int(math.Floor(feed.Velocity))
	}

	if strings.Contains(urlStr, "feedburner") {
		s -= 10
	}

	if u.Scheme == "https" {
		s += 10
	}

	if feed.IsPush {
		s += 10
	}

	if strings.Contains(urlStr, "index") {
		s += 30
	}

	for _, p := range homeLikePaths {
		if strings.Contains(urlStr, p) {
			s += 10
			break
		}
	}

	for _, kb := range keywordBonuses {
		if strings.Contains(urlStr, kb.keyword) {
			s += kb.bonus
		}
	}

	feed.Score = s
}

// pathSegments splits a URL path into its non-empty segments.
func pathSegments(p string) []string {
	var segs []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}
