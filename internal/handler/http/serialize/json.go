// Package serialize implements the External Serializer (spec §4.H): the
// public JSON/OPML projection of Feed and SiteHost records, kept distinct
// from the KV Store Adapter's own encoding (internal/infra/adapter/kvstore/postgres),
// which uses omitempty and has no field-projection concept.
package serialize

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"feedsearch/internal/domain/entity"
)

// Projection parameterizes which fields a Feed projects to JSON, per the
// `only=`/`exclude=` query params spec §4.H and §6.1 describe.
type Projection struct {
	Only    []string
	Exclude []string
}

// ParseProjection reads "only" and "exclude" from query values. Each accepts
// either a single comma-separated value or repeated params.
func ParseProjection(values url.Values) Projection {
	return Projection{
		Only:    splitAll(values["only"]),
		Exclude: splitAll(values["exclude"]),
	}
}

func splitAll(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// field is one ordered (key, value) pair in a projected object. A plain
// map[string]any would re-sort keys alphabetically on marshal, losing the
// stable field order spec §6.2 fixes.
type field struct {
	key   string
	value interface{}
}

type orderedObject []field

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := json.Marshal(normalize(f.value))
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// normalize applies the "empty string serializes as null" rule spec §4.H
// states. Non-string values pass through unchanged.
func normalize(v interface{}) interface{} {
	if s, ok := v.(string); ok && s == "" {
		return nil
	}
	return v
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}

func timeOrNil(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339)
}

// feedFields builds the full, ordered field list for one feed, matching
// spec §6.2's stable shape exactly.
func feedFields(f *entity.Feed) []field {
	hubs := f.Hubs
	if hubs == nil {
		hubs = []string{}
	}
	return []field{
		{"url", urlString(f.URL)},
		{"site_url", urlString(f.SiteURL)},
		{"self_url", urlString(f.SelfURL)},
		{"title", f.Title},
		{"description", f.Description},
		{"site_name", f.SiteName},
		{"favicon", urlString(f.Favicon)},
		{"favicon_data_uri", f.FaviconDataURI},
		{"hubs", hubs},
		{"is_push", f.IsPush},
		{"is_podcast", f.IsPodcast},
		{"content_type", f.ContentType},
		{"content_length", f.ContentLength},
		{"version", f.Version},
		{"bozo", f.Bozo},
		{"velocity", f.Velocity},
		{"item_count", f.ItemCount},
		{"score", f.Score},
		{"last_updated", timeOrNil(f.LastUpdated)},
		{"last_seen", timeOrNil(f.LastSeen)},
	}
}

// project filters fields per p: Only (if non-empty) keeps just those keys,
// in their original order; Exclude then drops any matching keys.
func project(fields []field, p Projection) orderedObject {
	var only map[string]bool
	if len(p.Only) > 0 {
		only = make(map[string]bool, len(p.Only))
		for _, k := range p.Only {
			only[k] = true
		}
	}
	var exclude map[string]bool
	if len(p.Exclude) > 0 {
		exclude = make(map[string]bool, len(p.Exclude))
		for _, k := range p.Exclude {
			exclude[k] = true
		}
	}

	out := make(orderedObject, 0, len(fields))
	for _, f := range fields {
		if only != nil && !only[f.key] {
			continue
		}
		if exclude != nil && exclude[f.key] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Feed projects a single feed to its ordered object form.
func Feed(f *entity.Feed, p Projection) orderedObject {
	return project(feedFields(f), p)
}

// Feeds marshals a list of feeds as a JSON array, each projected per p.
func Feeds(feeds []*entity.Feed, p Projection) ([]byte, error) {
	objs := make([]orderedObject, len(feeds))
	for i, f := range feeds {
		objs[i] = Feed(f, p)
	}
	return json.Marshal(objs)
}

// Site projects a SiteHost plus its resolved feed list to the nested shape
// spec §4.H describes: {host, last_seen, feeds: [...]}.
func Site(host string, lastSeen time.Time, feeds []*entity.Feed, p Projection) orderedObject {
	feedObjs := make([]orderedObject, len(feeds))
	for i, f := range feeds {
		feedObjs[i] = Feed(f, p)
	}
	return orderedObject{
		{"host", host},
		{"last_seen", timeOrNil(lastSeen)},
		{"feeds", feedObjs},
	}
}

// siteSummary is the {host, last_seen} shape used by the site-list endpoint
// (spec §6.1's `GET /api/v1/sites`).
func siteSummary(s *entity.SiteHost) orderedObject {
	return orderedObject{
		{"host", s.Host},
		{"last_seen", timeOrNil(s.LastSeen)},
	}
}

// SiteList marshals the site-list endpoint's array of {host, last_seen}.
func SiteList(sites []*entity.SiteHost) ([]byte, error) {
	objs := make([]orderedObject, len(sites))
	for i, s := range sites {
		objs[i] = siteSummary(s)
	}
	return json.Marshal(objs)
}

// SearchResponse is the {feeds, search_time_ms, crawl_stats} shape returned
// when the `stats=true` query param is set (spec §6.1).
func SearchResponse(feeds []*entity.Feed, p Projection, searchTimeMs int64, statusCodes map[int]int) ([]byte, error) {
	feedObjs := make([]orderedObject, len(feeds))
	for i, f := range feeds {
		feedObjs[i] = Feed(f, p)
	}
	return json.Marshal(orderedObject{
		{"feeds", feedObjs},
		{"search_time_ms", searchTimeMs},
		{"crawl_stats", orderedObject{{"status_codes", statusCodes}}},
	})
}
