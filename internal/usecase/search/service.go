// Package search implements the Search Orchestrator (spec §4.G): the
// coordination layer that decides whether a live crawl is warranted,
// fans out to the Directory Client and Crawl Driver, merges results with
// the KV Store Adapter, scores them, persists, and selects a return set.
// Grounded directly on original_source/gateway/search.py::run_search,
// translated into Go's explicit-error-return style per the teacher's
// usecase/source/service.go and usecase/fetch/service.go structure.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"feedsearch/internal/domain/apperr"
	"feedsearch/internal/domain/entity"
	"feedsearch/internal/domain/freshness"
	"feedsearch/internal/domain/score"
	"feedsearch/internal/domain/urlnorm"
	"feedsearch/internal/infra/crawler"
	"feedsearch/internal/infra/directory"
	"feedsearch/internal/observability/metrics"
	"feedsearch/internal/repository"
)

// DirectoryClient is the subset of directory.Client the orchestrator needs,
// kept as an interface so tests can substitute a fake (spec §4.D).
type DirectoryClient interface {
	FetchFeedly(ctx context.Context, query string) ([]*url.URL, error)
}

// CrawlDriver is the subset of crawler.Driver the orchestrator needs (spec
// §4.E).
type CrawlDriver interface {
	Crawl(ctx context.Context, seeds []*url.URL, opts crawler.Options) ([]*entity.Feed, crawler.Stats, error)
}

// Service is the Search Orchestrator. All fields are dependencies injected
// at construction (spec §9's "explicit configuration structs" redesign
// note) — no process-wide singletons.
type Service struct {
	Store     repository.KVStore
	Directory DirectoryClient
	Crawler   CrawlDriver
	UserAgent string
	TTLDays   int // DAYS_CHECKED_RECENTLY, spec §6.4

	// CrawlOptions, when its Concurrency is non-zero, overrides
	// crawler.DefaultOptions(UserAgent) for every search (an operator-tunable
	// overlay loaded by cmd/api from an optional YAML file). Left at its zero
	// value, the spec's fixed §4.E parameters apply.
	CrawlOptions crawler.Options
}

// NewService wires a Service from its dependencies, defaulting TTLDays to
// the spec's 7-day window when zero.
func NewService(store repository.KVStore, dir DirectoryClient, crawlDriver CrawlDriver, userAgent string, ttlDays int) *Service {
	if ttlDays <= 0 {
		ttlDays = 7
	}
	return &Service{Store: store, Directory: dir, Crawler: crawlDriver, UserAgent: userAgent, TTLDays: ttlDays}
}

// Input captures one search request's parameters, mirroring the HTTP API's
// query booleans (spec §6.1).
type Input struct {
	QueryURL    *url.URL
	CheckFeedly bool // "feedly" query param, default true
	Force       bool // "force" query param
	CheckAll    bool // "checkall" query param
	SkipCrawl   bool // "skip_crawl" query param
}

// Result is what the orchestrator hands back to the HTTP layer for
// serialization.
type Result struct {
	Feeds   []*entity.Feed
	Stats   crawler.Stats
	Crawled bool
}

// Search runs the sequence spec §4.G describes: load, decide, crawl,
// merge, score, persist, select.
func (s *Service) Search(ctx context.Context, in Input) (*Result, error) {
	searchingPath := urlnorm.HasPath(in.QueryURL)
	host := urlnorm.RootHost(in.QueryURL.Host)

	site, err := s.Store.QuerySiteFeeds(ctx, host)
	if err != nil {
		// Contract: store reads never error to the caller; treat as empty.
		site = entity.NewSiteHost(host)
	}

	sitePath := entity.NewSitePath(host, in.QueryURL.Path)

	// Step 2: a cache hit on the specific path skips the crawl entirely.
	if searchingPath && len(site.Feeds) > 0 && !in.Force {
		loaded, err := s.Store.QuerySitePath(ctx, host, in.QueryURL.Path)
		if err == nil {
			sitePath = loaded
		}
		if freshness.SeenRecently(sitePath.LastSeen, s.TTLDays) {
			return &Result{Feeds: resolveDangling(sitePath, site)}, nil
		}
	}

	siteCrawledRecently := freshness.SeenRecently(site.LastSeen, s.TTLDays)
	shouldCrawl := shouldRunCrawl(in.Force, in.SkipCrawl, searchingPath, siteCrawledRecently)

	var crawlFeeds []*entity.Feed
	var stats crawler.Stats
	crawled := false

	if shouldCrawl {
		existing := make(map[string]bool, len(site.Feeds))
		for u := range site.Feeds {
			existing[u] = true
		}

		seeds := map[string]*url.URL{in.QueryURL.String(): in.QueryURL}

		if in.CheckFeedly && !siteCrawledRecently {
			dirStart := time.Now()
			candidates, err := s.Directory.FetchFeedly(ctx, in.QueryURL.String())
			metrics.RecordDirectoryFetch(err == nil, time.Since(dirStart))
			if err != nil {
				slog.Warn("search: directory fetch failed, continuing without it", slog.String("host", host), slog.Any("error", err))
			}
			for _, u := range directory.ValidateFeedlyURLs(candidates, existing, host) {
				seeds[u.String()] = u
			}
		}

		if !searchingPath {
			for u, feed := range site.Feeds {
				if !freshness.SeenRecently(feed.LastSeen, s.TTLDays) {
					seeds[u] = feed.URL
				}
			}
		}

		seedList := make([]*url.URL, 0, len(seeds))
		for _, u := range seeds {
			seedList = append(seedList, u)
		}

		opts := s.CrawlOptions
		if opts.Concurrency == 0 {
			opts = crawler.DefaultOptions(s.UserAgent)
		}
		opts.TryAllPaths = in.CheckAll

		crawlStart := time.Now()
		result, crawlStats, err := s.Crawler.Crawl(ctx, seedList, opts)
		if err != nil {
			metrics.RecordFeedCrawlError(host, "crawl_failed")
			return nil, apperr.Crawler("crawl failed", err)
		}
		metrics.RecordFeedCrawl(host, time.Since(crawlStart), len(result))
		crawlFeeds = result
		stats = crawlStats
		crawled = true
	}

	now := time.Now().UTC()

	for _, feed := range crawlFeeds {
		feed.LastSeen = now
		feed.Host = site.Host
		if existing, ok := site.Feeds[feed.URL.String()]; ok {
			feed.Merge(existing)
		}
		if feed.IsValid() {
			site.Feeds[feed.URL.String()] = feed
		}
	}

	allFeeds := make([]*entity.Feed, 0, len(site.Feeds))
	for _, f := range site.Feeds {
		score.Score(f, host)
		if !f.LastUpdated.IsZero() {
			f.LastUpdated = freshness.ForceUTC(f.LastUpdated)
		}
		allFeeds = append(allFeeds, f)
	}

	if crawled && stats.StatusCodes[200] > 0 {
		site.LastSeen = now
		sitePath.LastSeen = now
		sitePath.Feeds = sitePath.Feeds[:0]
		for _, f := range crawlFeeds {
			if f.IsValid() {
				sitePath.Feeds = append(sitePath.Feeds, f.URL.String())
			}
		}
		if err := s.Store.Save(ctx, site, allFeeds, sitePath); err != nil {
			slog.Error("search: persist failed", slog.String("host", host), slog.Any("error", err))
		}
	}

	var selected []*entity.Feed
	if searchingPath {
		selected = crawlFeeds
	} else {
		selected = allFeeds
	}

	if len(selected) == 0 && crawled && len(stats.StatusCodes) == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("No Response from URL: %s", in.QueryURL.String()))
	}

	metrics.RecordSearch(crawled)
	return &Result{Feeds: selected, Stats: stats, Crawled: crawled}, nil
}

// shouldRunCrawl implements spec §4.G step 4 / invariant I5.
func shouldRunCrawl(force, skip, searchingPath, crawledRecently bool) bool {
	switch {
	case force:
		return true
	case skip:
		return false
	case searchingPath:
		return true
	default:
		return !crawledRecently
	}
}

// resolveDangling looks up each feed url referenced by sitePath in site,
// silently dropping any reference that no longer resolves (spec §3's
// SitePath ownership note: "consumers must tolerate missing lookups").
func resolveDangling(sitePath *entity.SitePath, site *entity.SiteHost) []*entity.Feed {
	feeds := make([]*entity.Feed, 0, len(sitePath.Feeds))
	for _, u := range sitePath.Feeds {
		if f, ok := site.Feeds[u]; ok {
			feeds = append(feeds, f)
		}
	}
	return feeds
}
