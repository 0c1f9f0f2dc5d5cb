package entity

import "time"

// SiteHost is the per-root-host metadata record. Feeds is populated
// transiently from the store at load time (it is not a separate column);
// SiteHost conceptually owns its Feeds in the sense that they share a
// partition in the KV store.
type SiteHost struct {
	Host     string
	LastSeen time.Time
	Feeds    map[string]*Feed // keyed by feed URL string
}

// NewSiteHost returns an empty SiteHost for host, ready to be populated by
// a store load.
func NewSiteHost(host string) *SiteHost {
	return &SiteHost{Host: host, Feeds: make(map[string]*Feed)}
}

// FeedURLs returns the feed URL strings currently known for the site, in no
// particular order.
func (s *SiteHost) FeedURLs() []string {
	urls := make([]string, 0, len(s.Feeds))
	for u := range s.Feeds {
		urls = append(urls, u)
	}
	return urls
}
