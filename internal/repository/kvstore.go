// Package repository defines the interfaces the orchestrator depends on for
// persistence, kept separate from any concrete backing store (spec §4.C).
package repository

import (
	"context"

	"feedsearch/internal/domain/entity"
)

// KVStore is the typed read/write interface over the single-table KV store
// described in spec §4.C. Reads never return an error to the caller for
// store-level failures — those are logged and surfaced as an empty result,
// per spec §7's StoreError policy; QuerySiteFeeds and QuerySitePath reflect
// that by returning a zero-value record rather than an error on a failed
// read. Save does return an error so the orchestrator can decide to log it,
// but the spec forbids ever propagating it to the client.
type KVStore interface {
	// QuerySiteFeeds loads the SiteHost metadata item and all Feed items
	// under host in one logical range query, paginating internally. The
	// returned SiteHost.Feeds is populated as a lookup keyed by feed URL
	// string. If the host is unknown, returns an empty SiteHost (not an
	// error).
	QuerySiteFeeds(ctx context.Context, host string) (*entity.SiteHost, error)

	// QuerySitePath performs a point query for a single (host, path). If
	// absent, returns an empty SitePath (not an error).
	QuerySitePath(ctx context.Context, host, path string) (*entity.SitePath, error)

	// ListSites pages through the inverted (sk, pk) index, returning every
	// known SiteHost in host order.
	ListSites(ctx context.Context) ([]*entity.SiteHost, error)

	// Save performs a batch write of one SiteHost item, one SitePath item,
	// and one item per Feed. Feed items carry their denormalized host.
	Save(ctx context.Context, site *entity.SiteHost, feeds []*entity.Feed, sitePath *entity.SitePath) error
}
