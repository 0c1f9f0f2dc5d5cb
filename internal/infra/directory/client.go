// Package directory queries the external feed-directory API (feedly) used to
// seed a crawl with previously-indexed candidate feed URLs (spec §4.D).
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"feedsearch/internal/domain/urlnorm"
	"feedsearch/internal/resilience/circuitbreaker"
	"feedsearch/internal/resilience/retry"
)

const searchEndpoint = "https://cloud.feedly.com/v3/search/feeds"

// staleAfter is the window past which a directory result is considered too
// old to seed a crawl with (12 weeks per spec §4.D).
const staleAfter = 12 * 7 * 24 * time.Hour

// Client queries the feedly search endpoint. Grounded on the teacher's
// internal/infra/scraper/rss.go pattern: an *http.Client wrapped by a single
// process-wide circuit breaker and retry policy, since the directory is one
// well-known host rather than an arbitrary crawl target.
type Client struct {
	httpClient     *http.Client
	userAgent      string
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewClient returns a Client using httpClient for transport and userAgent on
// every outbound request.
func NewClient(httpClient *http.Client, userAgent string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient:     httpClient,
		userAgent:      userAgent,
		circuitBreaker: circuitbreaker.New(circuitbreaker.DirectoryConfig()),
		retryConfig:    retry.DirectoryConfig(),
	}
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	FeedID      string `json:"feedId"`
	LastUpdated int64  `json:"lastUpdated"`
}

// FetchFeedly issues the feedly search query and returns candidate feed URLs
// not older than the 12-week staleness window, in response order. A non-200
// response yields an empty result rather than an error, per spec §4.D.
func (c *Client) FetchFeedly(ctx context.Context, query string) ([]*url.URL, error) {
	var body []byte

	err := retry.WithBackoff(ctx, c.retryConfig, func() error {
		result, cbErr := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doFetch(ctx, query)
		})
		if cbErr != nil {
			if errors.Is(cbErr, gobreaker.ErrOpenState) {
				slog.Warn("directory client circuit breaker open, request rejected",
					slog.String("query", query))
			}
			return cbErr
		}
		body = result.([]byte)
		return nil
	})
	if err != nil {
		slog.Warn("directory fetch failed, returning empty result", slog.String("query", query), slog.Any("error", err))
		return nil, nil
	}
	if body == nil {
		return nil, nil
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		slog.Warn("directory response decode failed", slog.String("query", query), slog.Any("error", err))
		return nil, nil
	}

	cutoff := time.Now().UTC().Add(-staleAfter)
	urls := make([]*url.URL, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.LastUpdated == 0 {
			continue
		}
		updated := time.UnixMilli(normalizeMillis(r.LastUpdated)).UTC()
		if updated.Before(cutoff) {
			continue
		}
		id := strings.TrimPrefix(r.FeedID, "feed/")
		u, err := url.Parse(id)
		if err != nil || u.Host == "" {
			continue
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// normalizeMillis truncates a 13-digit millisecond timestamp to a value
// time.UnixMilli expects; feedly always returns milliseconds, but guards a
// stray 10-digit (seconds) value from some directory mirrors.
func normalizeMillis(v int64) int64 {
	digits := len(strconv.FormatInt(v, 10))
	if digits >= 13 {
		return v
	}
	return v * 1000
}

func (c *Client) doFetch(ctx context.Context, query string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s?query=%s", searchEndpoint, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if readErr != nil {
			break
		}
	}
	return buf, nil
}

// ValidateFeedlyURLs returns the subset of candidates whose root host
// matches host and whose string form is not already present in existing.
// Duplicates within candidates collapse to one entry, per spec §4.D.
func ValidateFeedlyURLs(candidates []*url.URL, existing map[string]bool, host string) []*url.URL {
	seen := make(map[string]bool, len(candidates))
	out := make([]*url.URL, 0, len(candidates))
	for _, u := range candidates {
		if u == nil {
			continue
		}
		if urlnorm.RootHost(u.Host) != host {
			continue
		}
		s := u.String()
		if existing[s] || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, u)
	}
	return out
}
