package search

import (
	"encoding/json"
	"net/http"

	"feedsearch/internal/domain/apperr"
	"feedsearch/internal/domain/entity"
	"feedsearch/internal/handler/http/pathutil"
	"feedsearch/internal/handler/http/serialize"
	"feedsearch/internal/repository"
)

// SitesHandler serves GET /api/v1/sites: the full list of known hosts.
type SitesHandler struct {
	Store repository.KVStore
}

func (h *SitesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sites, err := h.Store.ListSites(r.Context())
	if err != nil {
		// KV Store Adapter failures are recovered, not surfaced (spec §7).
		sites = nil
	}

	body, err := serialize.SiteList(sites)
	if err != nil {
		respondError(w, apperr.Serialization("failed to serialize site list", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// SiteHandler serves GET /api/v1/sites/<host>: one host's nested feed list.
type SiteHandler struct {
	Store repository.KVStore
}

func (h *SiteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	host, err := pathutil.ExtractSegment(r.URL.Path, "/api/v1/sites/")
	if err != nil {
		respondError(w, apperr.BadRequest("invalid host"))
		return
	}

	site, err := h.Store.QuerySiteFeeds(r.Context(), host)
	if err != nil || len(site.Feeds) == 0 {
		// spec §6.1 literally specifies 402 for an absent site record.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":"site not found"}`))
		return
	}

	feedList := make([]*entity.Feed, 0, len(site.Feeds))
	for _, f := range site.Feeds {
		feedList = append(feedList, f)
	}

	obj := serialize.Site(site.Host, site.LastSeen, feedList, serialize.Projection{Exclude: []string{"favicon_data_uri"}})
	body, err := json.Marshal(obj)
	if err != nil {
		respondError(w, apperr.Serialization("failed to serialize site", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}
