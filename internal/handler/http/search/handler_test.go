package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsearch/internal/domain/entity"
	"feedsearch/internal/infra/crawler"
	usecase "feedsearch/internal/usecase/search"
)

type memStore struct {
	sites     map[string]*entity.SiteHost
	sitePaths map[string]*entity.SitePath
}

func newMemStore() *memStore {
	return &memStore{sites: map[string]*entity.SiteHost{}, sitePaths: map[string]*entity.SitePath{}}
}

func (m *memStore) QuerySiteFeeds(_ context.Context, host string) (*entity.SiteHost, error) {
	if s, ok := m.sites[host]; ok {
		return s, nil
	}
	return entity.NewSiteHost(host), nil
}

func (m *memStore) QuerySitePath(_ context.Context, host, path string) (*entity.SitePath, error) {
	if sp, ok := m.sitePaths[host+path]; ok {
		return sp, nil
	}
	return entity.NewSitePath(host, path), nil
}

func (m *memStore) ListSites(_ context.Context) ([]*entity.SiteHost, error) {
	var out []*entity.SiteHost
	for _, s := range m.sites {
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) Save(_ context.Context, site *entity.SiteHost, _ []*entity.Feed, sitePath *entity.SitePath) error {
	m.sites[site.Host] = site
	m.sitePaths[sitePath.Host+sitePath.Path] = sitePath
	return nil
}

type fakeDirectory struct{}

func (fakeDirectory) FetchFeedly(_ context.Context, _ string) ([]*url.URL, error) { return nil, nil }

type fakeCrawler struct {
	feeds []*entity.Feed
	stats crawler.Stats
}

func (f fakeCrawler) Crawl(_ context.Context, _ []*url.URL, _ crawler.Options) ([]*entity.Feed, crawler.Stats, error) {
	return f.feeds, f.stats, nil
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestSearchHandler_MissingURL_BadRequest(t *testing.T) {
	// Arrange
	store := newMemStore()
	svc := usecase.NewService(store, fakeDirectory{}, fakeCrawler{}, "feedsearch-bot/1.0", 7)
	h := &SearchHandler{Service: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	rec := httptest.NewRecorder()

	// Act
	h.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandler_Success_ReturnsFeedArray(t *testing.T) {
	// Arrange
	store := newMemStore()
	feed := &entity.Feed{URL: mustParseURL(t, "https://example.com/feed.xml"), Title: "Example"}
	svc := usecase.NewService(store, fakeDirectory{}, fakeCrawler{feeds: []*entity.Feed{feed}, stats: crawler.Stats{StatusCodes: map[int]int{200: 1}}}, "feedsearch-bot/1.0", 7)
	h := &SearchHandler{Service: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?url=example.com", nil)
	rec := httptest.NewRecorder()

	// Act
	h.ServeHTTP(rec, req)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "https://example.com/feed.xml", decoded[0]["url"])
}

func TestSearchHandler_NoResponse_NotFound(t *testing.T) {
	// Arrange
	store := newMemStore()
	svc := usecase.NewService(store, fakeDirectory{}, fakeCrawler{stats: crawler.Stats{StatusCodes: map[int]int{}}}, "feedsearch-bot/1.0", 7)
	h := &SearchHandler{Service: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?url=unreachable.example", nil)
	rec := httptest.NewRecorder()

	// Act
	h.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchHandler_Stats_WrapsSearchTimeAndCrawlStats(t *testing.T) {
	// Arrange
	store := newMemStore()
	feed := &entity.Feed{URL: mustParseURL(t, "https://example.com/feed.xml")}
	svc := usecase.NewService(store, fakeDirectory{}, fakeCrawler{feeds: []*entity.Feed{feed}, stats: crawler.Stats{StatusCodes: map[int]int{200: 1}}}, "feedsearch-bot/1.0", 7)
	h := &SearchHandler{Service: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?url=example.com&stats=true", nil)
	rec := httptest.NewRecorder()

	// Act
	h.ServeHTTP(rec, req)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Contains(t, decoded, "search_time_ms")
	assert.Contains(t, decoded, "crawl_stats")
}

func TestSitesHandler_ReturnsHostSummaries(t *testing.T) {
	// Arrange
	store := newMemStore()
	site := entity.NewSiteHost("example.com")
	store.sites["example.com"] = site
	h := &SitesHandler{Store: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sites", nil)
	rec := httptest.NewRecorder()

	// Act
	h.ServeHTTP(rec, req)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "example.com", decoded[0]["host"])
}

func TestSiteHandler_UnknownHost_PaymentRequired(t *testing.T) {
	// Arrange
	store := newMemStore()
	h := &SiteHandler{Store: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sites/unknown.example", nil)
	rec := httptest.NewRecorder()

	// Act
	h.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestSiteHandler_KnownHost_ReturnsNestedFeeds(t *testing.T) {
	// Arrange
	store := newMemStore()
	site := entity.NewSiteHost("example.com")
	site.Feeds["https://example.com/feed.xml"] = &entity.Feed{URL: mustParseURL(t, "https://example.com/feed.xml"), Title: "Example"}
	store.sites["example.com"] = site
	h := &SiteHandler{Store: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sites/example.com", nil)
	rec := httptest.NewRecorder()

	// Act
	h.ServeHTTP(rec, req)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, "example.com", decoded["host"])
	feeds, ok := decoded["feeds"].([]interface{})
	require.True(t, ok)
	assert.Len(t, feeds, 1)
}
