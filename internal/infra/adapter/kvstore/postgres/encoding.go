package postgres

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"feedsearch/internal/domain/entity"
)

// siteHostAttrs is the attrs jsonb payload for a SiteHost item. Feeds are
// not stored here — they are independent Feed items sharing the SiteHost's
// partition key, loaded alongside it by QuerySiteFeeds.
type siteHostAttrs struct {
	Host     string    `json:"host"`
	LastSeen time.Time `json:"last_seen,omitempty"`
}

// feedAttrs is the attrs jsonb payload for a Feed item, field-for-field
// with the stable JSON shape in spec §6.2. Fields that would otherwise
// serialize as the zero value are omitted, per §4.C's "a dump that would
// emit null for a field must omit that field".
type feedAttrs struct {
	URL            string   `json:"url"`
	SiteURL        string   `json:"site_url,omitempty"`
	SelfURL        string   `json:"self_url,omitempty"`
	Title          string   `json:"title,omitempty"`
	Description    string   `json:"description,omitempty"`
	SiteName       string   `json:"site_name,omitempty"`
	Favicon        string   `json:"favicon,omitempty"`
	FaviconDataURI string   `json:"favicon_data_uri,omitempty"`
	Hubs           []string `json:"hubs,omitempty"`
	IsPush         bool     `json:"is_push,omitempty"`
	IsPodcast      bool     `json:"is_podcast,omitempty"`
	ContentType    string   `json:"content_type,omitempty"`
	ContentLength  int      `json:"content_length,omitempty"`
	Version        string   `json:"version,omitempty"`
	Bozo           int      `json:"bozo,omitempty"`
	Velocity       float64  `json:"velocity,omitempty"`
	ItemCount      int      `json:"item_count,omitempty"`
	Score          int      `json:"score,omitempty"`
	LastUpdated    time.Time `json:"last_updated,omitempty"`
	LastSeen       time.Time `json:"last_seen,omitempty"`
	Host           string   `json:"host,omitempty"`
}

// sitePathAttrs is the attrs jsonb payload for a SitePath item.
type sitePathAttrs struct {
	Host     string    `json:"host"`
	Path     string    `json:"path"`
	LastSeen time.Time `json:"last_seen,omitempty"`
	Feeds    []string  `json:"feeds,omitempty"`
}

func encodeSiteHost(s *entity.SiteHost) ([]byte, error) {
	return json.Marshal(siteHostAttrs{Host: s.Host, LastSeen: s.LastSeen})
}

func decodeSiteHost(raw []byte) (*entity.SiteHost, error) {
	var a siteHostAttrs
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode site host: %w", err)
	}
	site := entity.NewSiteHost(a.Host)
	site.LastSeen = a.LastSeen
	return site, nil
}

func encodeFeed(f *entity.Feed) ([]byte, error) {
	a := feedAttrs{
		Title:          f.Title,
		Description:    f.Description,
		SiteName:       f.SiteName,
		FaviconDataURI: f.FaviconDataURI,
		Hubs:           f.Hubs,
		IsPush:         f.IsPush,
		IsPodcast:      f.IsPodcast,
		ContentType:    f.ContentType,
		ContentLength:  f.ContentLength,
		Version:        f.Version,
		Bozo:           f.Bozo,
		Velocity:       f.Velocity,
		ItemCount:      f.ItemCount,
		Score:          f.Score,
		LastUpdated:    f.LastUpdated,
		LastSeen:       f.LastSeen,
		Host:           f.Host,
	}
	if f.URL != nil {
		a.URL = f.URL.String()
	}
	if f.SiteURL != nil {
		a.SiteURL = f.SiteURL.String()
	}
	if f.SelfURL != nil {
		a.SelfURL = f.SelfURL.String()
	}
	if f.Favicon != nil {
		a.Favicon = f.Favicon.String()
	}
	return json.Marshal(a)
}

func decodeFeed(raw []byte) (*entity.Feed, error) {
	var a feedAttrs
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	f := &entity.Feed{
		Title:          a.Title,
		Description:    a.Description,
		SiteName:       a.SiteName,
		FaviconDataURI: a.FaviconDataURI,
		Hubs:           a.Hubs,
		IsPush:         a.IsPush,
		IsPodcast:      a.IsPodcast,
		ContentType:    a.ContentType,
		ContentLength:  a.ContentLength,
		Version:        a.Version,
		Bozo:           a.Bozo,
		Velocity:       a.Velocity,
		ItemCount:      a.ItemCount,
		Score:          a.Score,
		LastUpdated:    a.LastUpdated,
		LastSeen:       a.LastSeen,
		Host:           a.Host,
	}
	var err error
	if f.URL, err = parseOptionalURL(a.URL); err != nil {
		return nil, err
	}
	if f.SiteURL, err = parseOptionalURL(a.SiteURL); err != nil {
		return nil, err
	}
	if f.SelfURL, err = parseOptionalURL(a.SelfURL); err != nil {
		return nil, err
	}
	if f.Favicon, err = parseOptionalURL(a.Favicon); err != nil {
		return nil, err
	}
	return f, nil
}

func parseOptionalURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse stored url %q: %w", raw, err)
	}
	return u, nil
}

func encodeSitePath(sp *entity.SitePath) ([]byte, error) {
	return json.Marshal(sitePathAttrs{Host: sp.Host, Path: sp.Path, LastSeen: sp.LastSeen, Feeds: sp.Feeds})
}

func decodeSitePath(raw []byte) (*entity.SitePath, error) {
	var a sitePathAttrs
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode site path: %w", err)
	}
	return &entity.SitePath{Host: a.Host, Path: a.Path, LastSeen: a.LastSeen, Feeds: a.Feeds}, nil
}
