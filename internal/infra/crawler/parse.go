package crawler

import (
	"math"
	"net/url"
	"regexp"
	"time"

	"github.com/mmcdole/gofeed"

	"feedsearch/internal/domain/entity"
)

// hubLinkRegexp finds PubSubHubbub-style <link rel="hub" href="..."> tags
// in raw feed bytes. gofeed's generic link handling does not expose rel
// attributes on Feed.Links, so hub discovery is done directly against the
// document the way the original gateway's feed parser inspected raw link
// elements (original_source/gateway/schema/customfeedinfo.py's hub fields).
var hubLinkRegexp = regexp.MustCompile(`(?i)<link[^>]*rel=["']hub["'][^>]*href=["']([^"']+)["']`)
var hubLinkRegexpReversed = regexp.MustCompile(`(?i)<link[^>]*href=["']([^"']+)["'][^>]*rel=["']hub["']`)

// ParseFeed parses body (already fetched from u) as a syndication document
// and projects it into an entity.Feed. It returns nil if gofeed cannot
// parse the document at all (a genuinely non-feed response slipped through
// the content-sniff check in looksLikeFeed).
func ParseFeed(u *url.URL, body []byte, contentType string) *entity.Feed {
	fp := gofeed.NewParser()
	parsed, err := fp.ParseString(string(body))
	if err != nil || parsed == nil {
		return nil
	}

	feed := &entity.Feed{
		URL:           u,
		SelfURL:       u,
		Title:         parsed.Title,
		Description:   parsed.Description,
		ContentType:   contentType,
		ContentLength: len(body),
		Version:       versionTag(parsed),
		IsPodcast:     parsed.ITunesExt != nil,
		ItemCount:     len(parsed.Items),
		Velocity:      velocity(parsed),
		Hubs:          extractHubs(body),
	}
	feed.IsPush = len(feed.Hubs) > 0

	if parsed.Link != "" {
		if siteURL, err := url.Parse(parsed.Link); err == nil {
			feed.SiteURL = siteURL
		}
	}
	if parsed.Image != nil && parsed.Image.URL != "" {
		if favicon, err := url.Parse(parsed.Image.URL); err == nil {
			feed.Favicon = favicon
		}
	}
	if parsed.UpdatedParsed != nil {
		feed.LastUpdated = *parsed.UpdatedParsed
	} else if parsed.PublishedParsed != nil {
		feed.LastUpdated = *parsed.PublishedParsed
	}

	return feed
}

// versionTag maps gofeed's (FeedType, FeedVersion) pair onto the short tags
// spec §3 names: "rss20", "atom10", "json1".
func versionTag(f *gofeed.Feed) string {
	switch f.FeedType {
	case "rss":
		return "rss" + compactVersion(f.FeedVersion, "20")
	case "atom":
		return "atom" + compactVersion(f.FeedVersion, "10")
	case "json":
		return "json1"
	default:
		return f.FeedType
	}
}

func compactVersion(v, fallback string) string {
	switch v {
	case "2.0":
		return "20"
	case "1.0":
		return "10"
	case "0.91", "0.92", "0.93", "0.94":
		return "09"
	case "":
		return fallback
	default:
		return fallback
	}
}

// velocity estimates posts-per-day from the spread of published timestamps
// across the feed's items, per spec §3's "publishing rate" definition.
func velocity(f *gofeed.Feed) float64 {
	var oldest, newest time.Time
	count := 0
	for _, item := range f.Items {
		var t time.Time
		switch {
		case item.PublishedParsed != nil:
			t = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			t = *item.UpdatedParsed
		default:
			continue
		}
		if oldest.IsZero() || t.Before(oldest) {
			oldest = t
		}
		if newest.IsZero() || t.After(newest) {
			newest = t
		}
		count++
	}
	if count == 0 || oldest.Equal(newest) {
		return float64(count)
	}
	days := math.Max(1, newest.Sub(oldest).Hours()/24)
	return float64(count) / days
}

func extractHubs(body []byte) []string {
	var hubs []string
	seen := make(map[string]bool)
	for _, re := range []*regexp.Regexp{hubLinkRegexp, hubLinkRegexpReversed} {
		for _, m := range re.FindAllSubmatch(body, -1) {
			href := string(m[1])
			if href != "" && !seen[href] {
				seen[href] = true
				hubs = append(hubs, href)
			}
		}
	}
	return hubs
}
