// Package crawler implements the Crawl Driver (spec §4.E): a bounded-fan-out
// web crawler that starts from a set of seed URLs, follows HTML
// autodiscovery links for a few hops, and parses anything that looks like a
// feed into an entity.Feed. It is the Go-native stand-in for the external
// feedsearch_crawler library the original gateway drives (see
// original_source/gateway/crawl.py) — the orchestrator only sees a single
// blocking Crawl call with a bounded wall clock, per spec §4.E and §9.
package crawler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"feedsearch/internal/domain/entity"
	"feedsearch/internal/domain/urlnorm"
	"feedsearch/internal/resilience/circuitbreaker"
	"feedsearch/internal/resilience/retry"
)

// Options configures one Crawl call. The numeric defaults mirror spec §4.E's
// fixed crawler parameters exactly; they are fields (not constants) so tests
// can shrink the timeouts instead of waiting out the production values.
type Options struct {
	Concurrency    int
	RequestTimeout time.Duration
	TotalTimeout   time.Duration
	MaxRetries     int
	MaxDepth       int
	Delay          time.Duration
	UserAgent      string
	TryAllPaths    bool // spec's "checkall": also probe well-known feed paths
	CrawlHosts     bool // follow discovered same-host links, not just the seed pages
}

// DefaultOptions returns the spec §4.E fixed parameters with userAgent
// plugged in.
func DefaultOptions(userAgent string) Options {
	return Options{
		Concurrency:    20,
		RequestTimeout: 4 * time.Second,
		TotalTimeout:   10 * time.Second,
		MaxRetries:     0,
		MaxDepth:       5,
		Delay:          0,
		UserAgent:      userAgent,
	}
}

// Stats reports what happened during a Crawl call, per spec §4.E: at
// minimum a status-code histogram, with search/dump timing the orchestrator
// fills in around the call.
type Stats struct {
	StatusCodes map[int]int
	SearchTime  time.Duration
	DumpTime    time.Duration
}

// commonFeedPaths are well-known feed locations probed at depth 0 when
// Options.TryAllPaths is set, mirroring the "checkall" behavior of the
// original crawler.
var commonFeedPaths = []string{
	"/feed", "/feed/", "/feeds/posts/default", "/rss", "/rss.xml",
	"/atom.xml", "/feed.xml", "/index.xml", "/feeds/all.atom.xml",
}

// Driver runs a single crawl to completion, bounded by Options.Concurrency
// in-flight fetches and Options.TotalTimeout wall clock. The internal
// parallelism is owned entirely by the driver; callers see one blocking
// call, per spec §5 and §9.
type Driver struct {
	httpClient     *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewDriver returns a Driver. httpClient supplies the transport; a nil
// client falls back to http.DefaultClient.
func NewDriver(httpClient *http.Client) *Driver {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Driver{
		httpClient:     httpClient,
		circuitBreaker: circuitbreaker.New(circuitbreaker.DefaultConfig("crawl-driver")),
		retryConfig:    retry.CrawlerConfig(),
	}
}

// crawlState is the mutable state shared by the fan-out goroutines for one
// Crawl call.
type crawlState struct {
	mu          sync.Mutex
	visited     map[string]bool
	feeds       map[string]*entity.Feed
	statusCodes map[int]int
}

func newCrawlState() *crawlState {
	return &crawlState{
		visited:     make(map[string]bool),
		feeds:       make(map[string]*entity.Feed),
		statusCodes: make(map[int]int),
	}
}

func (s *crawlState) markVisited(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visited[u] {
		return false
	}
	s.visited[u] = true
	return true
}

func (s *crawlState) addStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCodes[code]++
}

func (s *crawlState) addFeed(f *entity.Feed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeds[f.URL.String()] = f
}

// Crawl drives opts.Concurrency concurrent fetches over seeds (and anything
// they link to, up to opts.MaxDepth), bounded overall by opts.TotalTimeout.
// It returns every discovered feed (unordered bag, per spec §4.E — the
// caller sorts for stability) and a stats map containing at least
// status_codes.
func (d *Driver) Crawl(ctx context.Context, seeds []*url.URL, opts Options) ([]*entity.Feed, Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.TotalTimeout)
	defer cancel()

	state := newCrawlState()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	// Politeness limiter: ancillary to the hard concurrency cap above, which
	// remains the authoritative backpressure mechanism. Burst equals the
	// concurrency cap so a fresh crawl isn't throttled below it on the first
	// round of fetches.
	limiter := rate.NewLimiter(rate.Limit(opts.Concurrency), opts.Concurrency)

	seedHosts := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		seedHosts[urlnorm.RootHost(s.Host)] = true
	}

	var enqueue func(u *url.URL, depth int)
	enqueue = func(u *url.URL, depth int) {
		if u == nil || u.String() == "" || depth > opts.MaxDepth {
			return
		}
		if !state.markVisited(u.String()) {
			return
		}
		g.Go(func() error {
			if opts.Delay > 0 {
				select {
				case <-time.After(opts.Delay):
				case <-gctx.Done():
					return nil
				}
			}
			if err := limiter.Wait(gctx); err != nil {
				return nil
			}
			links := d.visit(gctx, u, opts, state)
			if depth < opts.MaxDepth {
				for _, link := range links {
					if !opts.CrawlHosts && urlnorm.RootHost(link.Host) != urlnorm.RootHost(u.Host) {
						continue
					}
					enqueue(link, depth+1)
				}
			}
			return nil
		})
	}

	for _, seed := range seeds {
		enqueue(seed, 0)
		if opts.TryAllPaths {
			for _, p := range commonFeedPaths {
				candidate := *seed
				candidate.Path = p
				candidate.RawQuery = ""
				enqueue(&candidate, 0)
			}
		}
	}

	// errgroup.Wait's error is always nil here: per-fetch failures are
	// recorded in state.statusCodes, never propagated, so a single bad
	// seed can't abort the rest of the crawl.
	_ = g.Wait()

	feeds := make([]*entity.Feed, 0, len(state.feeds))
	for _, f := range state.feeds {
		feeds = append(feeds, f)
	}
	sort.Slice(feeds, func(i, j int) bool { return feeds[i].URL.String() < feeds[j].URL.String() })

	stats := Stats{StatusCodes: state.statusCodes}
	return feeds, stats, nil
}

// visit fetches u once, classifies the response, and returns any candidate
// feed links discovered on the page (empty unless u was HTML).
func (d *Driver) visit(ctx context.Context, u *url.URL, opts Options, state *crawlState) []*url.URL {
	if err := entity.ValidateURL(u.String()); err != nil {
		slog.Debug("crawler: skipping unsafe url", slog.String("url", u.String()), slog.Any("error", err))
		return nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, opts.RequestTimeout)
	defer cancel()

	body, contentType, status, err := d.fetch(reqCtx, u, opts)
	if status > 0 {
		state.addStatus(status)
	}
	if err != nil || status != http.StatusOK {
		return nil
	}

	if looksLikeFeed(contentType, body) {
		if feed := ParseFeed(u, body, contentType); feed != nil {
			state.addFeed(feed)
		}
		return nil
	}

	if strings.Contains(contentType, "html") {
		return DiscoverFeedLinks(u, body)
	}
	return nil
}

func (d *Driver) fetch(ctx context.Context, u *url.URL, opts Options) ([]byte, string, int, error) {
	var body []byte
	var contentType string
	var status int

	err := retry.WithBackoff(ctx, d.retryConfig, func() error {
		result, cbErr := d.circuitBreaker.Execute(func() (interface{}, error) {
			return d.doFetch(ctx, u, opts.UserAgent)
		})
		if cbErr != nil {
			return cbErr
		}
		fr := result.(fetchResult)
		body, contentType, status = fr.body, fr.contentType, fr.status
		return nil
	})
	if err != nil {
		return nil, "", status, err
	}
	return body, contentType, status, nil
}

type fetchResult struct {
	body        []byte
	contentType string
	status      int
}

func (d *Driver) doFetch(ctx context.Context, u *url.URL, userAgent string) (fetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fetchResult{}, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/json, text/html, application/xml;q=0.9, */*;q=0.8")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fetchResult{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	const maxBody = 5 << 20 // 5MB cap, generous for feed/HTML documents
	buf := make([]byte, 0, 64*1024)
	chunk := make([]byte, 64*1024)
	for len(buf) < maxBody {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if readErr != nil {
			break
		}
	}

	return fetchResult{body: buf, contentType: resp.Header.Get("Content-Type"), status: resp.StatusCode}, nil
}

// looksLikeFeed reports whether the response is plausibly a syndication
// document, by content type first and a cheap body sniff second (some
// servers mislabel feeds as text/html or text/plain).
func looksLikeFeed(contentType string, body []byte) bool {
	ct := strings.ToLower(contentType)
	for _, marker := range []string{"rss", "atom", "xml", "json"} {
		if strings.Contains(ct, marker) {
			return true
		}
	}
	head := strings.ToLower(string(body[:min(len(body), 512)]))
	return strings.Contains(head, "<rss") || strings.Contains(head, "<feed") ||
		strings.Contains(head, "<?xml") || strings.Contains(head, `"version":"https://jsonfeed`)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
