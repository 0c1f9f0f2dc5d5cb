package entity

import "time"

// SitePath memoizes which feeds were found the last time a specific path on
// a host was crawled. Feeds is an ordered sequence of feed-url strings
// referencing Feed records under the same host; the reference is weak (by
// URL string, never an owning pointer) and may dangle briefly if a feed is
// later removed — consumers must tolerate missing lookups.
type SitePath struct {
	Host     string
	Path     string // includes leading slash
	LastSeen time.Time
	Feeds    []string
}

// NewSitePath returns an empty SitePath for (host, path).
func NewSitePath(host, path string) *SitePath {
	return &SitePath{Host: host, Path: path}
}
