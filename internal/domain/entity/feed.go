package entity

import (
	"net/url"
	"time"
)

// Feed is a discovered syndication document (RSS, Atom, or JSON Feed) at a
// site. Its identity is the pair (host, url); url is unique across the
// entire store, scheme-sensitive.
type Feed struct {
	URL             *url.URL
	SiteURL         *url.URL
	SelfURL         *url.URL
	Title           string
	Description     string
	SiteName        string
	Favicon         *url.URL
	FaviconDataURI  string
	Hubs            []string
	IsPush          bool
	IsPodcast       bool
	ContentType     string
	ContentLength   int
	Version         string // "rss20", "atom10", "json1", ...
	Bozo            int    // 0 = clean parse
	Velocity        float64
	ItemCount       int
	Score           int
	LastUpdated     time.Time
	LastSeen        time.Time
	Host            string // denormalized root host
}

// IsValid reports whether the feed has a usable identity. A feed with an
// empty URL is never persisted or returned.
func (f *Feed) IsValid() bool {
	return f != nil && f.URL != nil && f.URL.String() != ""
}

// Merge conservatively fills missing-to-present fields on f from prior,
// the policy spec.md §4.G step 6 calls for when a crawl rediscovers a feed
// that already exists under the site: favicon, favicon_data_uri (only when
// favicon itself matches prior), site_url and site_name survive even if the
// new crawl didn't populate them.
func (f *Feed) Merge(prior *Feed) {
	if prior == nil {
		return
	}
	if f.Favicon == nil || f.Favicon.String() == "" {
		f.Favicon = prior.Favicon
		if f.FaviconDataURI == "" {
			f.FaviconDataURI = prior.FaviconDataURI
		}
	} else if prior.Favicon != nil && f.Favicon.String() == prior.Favicon.String() {
		if f.FaviconDataURI == "" {
			f.FaviconDataURI = prior.FaviconDataURI
		}
	}
	if f.SiteURL == nil || f.SiteURL.String() == "" {
		f.SiteURL = prior.SiteURL
	}
	if f.SiteName == "" {
		f.SiteName = prior.SiteName
	}
}
