// Package search implements the HTTP surface over the Search Orchestrator
// (spec §6.1): GET /api/v1/search, GET /api/v1/sites, GET /api/v1/sites/<host>.
package search

import (
	"encoding/json"
	"net/http"
	"time"

	"feedsearch/internal/domain/apperr"
	"feedsearch/internal/domain/entity"
	"feedsearch/internal/domain/urlnorm"
	"feedsearch/internal/handler/http/serialize"
	usecase "feedsearch/internal/usecase/search"
)

// SearchHandler serves GET /api/v1/search.
type SearchHandler struct {
	Service *usecase.Service
}

func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	rawURL := q.Get("url")
	if rawURL == "" {
		respondError(w, apperr.BadRequest("No URL in Request"))
		return
	}

	// coerceHTTPS is always false here: spec §6.1 does not expose an https
	// query param, and the original gateway's coerce_url defaults to http.
	queryURL, err := urlnorm.Normalize(rawURL, false)
	if err != nil {
		respondError(w, err)
		return
	}

	in := usecase.Input{
		QueryURL:    queryURL,
		CheckFeedly: parseBoolDefault(q, "feedly", true),
		Force:       parseBoolDefault(q, "force", false),
		CheckAll:    parseBoolDefault(q, "checkall", false),
		SkipCrawl:   parseBoolDefault(q, "skip_crawl", false),
	}

	start := time.Now()
	result, err := h.Service.Search(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	searchTimeMs := time.Since(start).Milliseconds()

	proj := serialize.Projection{}
	if !parseBoolDefault(q, "favicon", false) {
		proj.Exclude = append(proj.Exclude, "favicon_data_uri")
	}

	if parseBoolDefault(q, "opml", false) {
		body, err := serialize.OPML("feedsearch results", result.Feeds)
		if err != nil {
			respondError(w, apperr.Serialization("failed to render OPML", err))
			return
		}
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write(body)
		return
	}

	var body []byte
	if parseBoolDefault(q, "stats", false) {
		body, err = serialize.SearchResponse(result.Feeds, proj, searchTimeMs, result.Stats.StatusCodes)
	} else if !parseBoolDefault(q, "info", true) {
		body, err = serializeURLsOnly(result.Feeds)
	} else {
		body, err = serialize.Feeds(result.Feeds, proj)
	}
	if err != nil {
		respondError(w, apperr.Serialization("failed to serialize feeds", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// serializeURLsOnly renders the `info=false` shape: a bare array of feed
// url strings, matching the original gateway library's non-info search
// mode (original_source/gateway/application.py passes `info` through to
// the underlying feedsearch library, which returns plain urls when false).
func serializeURLsOnly(feeds []*entity.Feed) ([]byte, error) {
	urls := make([]string, 0, len(feeds))
	for _, f := range feeds {
		if f.IsValid() {
			urls = append(urls, f.URL.String())
		}
	}
	return json.Marshal(urls)
}
