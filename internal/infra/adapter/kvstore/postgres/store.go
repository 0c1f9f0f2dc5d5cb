package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"feedsearch/internal/common/pagination"
	"feedsearch/internal/domain/entity"
	"feedsearch/internal/observability/metrics"
	"feedsearch/internal/repository"
	"feedsearch/internal/resilience/circuitbreaker"
)

const defaultTable = "kv_items"

// Store is the Postgres-backed implementation of repository.KVStore. It
// holds every record kind in one physical table (kv_items by default),
// dispatching on PK/SK prefix the way the spec's Design Note calls for —
// one tagged-record model with a per-kind encoder/decoder, no runtime
// class-swapping. Read queries go through a circuit breaker so a struggling
// database fails fast instead of piling up blocked requests (same pattern
// the Directory Client and Crawl Driver use for their outbound calls).
type Store struct {
	db    *sql.DB
	cb    *circuitbreaker.DBCircuitBreaker
	table string
}

// NewStore returns a Store backed by db, operating on the given table name
// (DYNAMODB_TABLE's repurposed meaning — see DESIGN.md). An empty table
// defaults to "kv_items".
func NewStore(db *sql.DB, table string) repository.KVStore {
	if table == "" {
		table = defaultTable
	}
	return &Store{db: db, cb: circuitbreaker.NewDBCircuitBreaker(db), table: table}
}

// Migrate creates the backing table and its inverted index if they do not
// already exist.
func Migrate(ctx context.Context, db *sql.DB, table string) error {
	if table == "" {
		table = defaultTable
	}
	_, err := db.ExecContext(ctx, createTableDDL(table))
	return err
}

// QuerySiteFeeds implements repository.KVStore.
func (s *Store) QuerySiteFeeds(ctx context.Context, host string) (*entity.SiteHost, error) {
	defer func(start time.Time) { metrics.RecordDBQuery("query_site_feeds", time.Since(start)) }(time.Now())

	query := fmt.Sprintf(`
SELECT sk, attrs FROM %s
WHERE pk = $1 AND sk BETWEEN $2 AND $3
ORDER BY sk ASC`, s.table)

	rows, err := s.cb.QueryContext(ctx, query, sitePKFor(host), siteHostSK, "FEED$")
	if err != nil {
		slog.Error("kvstore: query site feeds failed", "host", host, "error", err)
		return entity.NewSiteHost(host), nil
	}
	defer func() { _ = rows.Close() }()

	site := entity.NewSiteHost(host)
	foundMetadata := false
	for rows.Next() {
		var sk string
		var attrs []byte
		if err := rows.Scan(&sk, &attrs); err != nil {
			slog.Error("kvstore: scan site feeds row failed", "host", host, "error", err)
			return entity.NewSiteHost(host), nil
		}
		switch {
		case sk == siteHostSK:
			decoded, err := decodeSiteHost(attrs)
			if err != nil {
				slog.Error("kvstore: decode site host failed", "host", host, "error", err)
				continue
			}
			site.LastSeen = decoded.LastSeen
			foundMetadata = true
		default:
			feed, err := decodeFeed(attrs)
			if err != nil {
				slog.Error("kvstore: decode feed failed", "host", host, "error", err)
				continue
			}
			if feed.IsValid() {
				site.Feeds[feed.URL.String()] = feed
			}
		}
	}
	if err := rows.Err(); err != nil {
		slog.Error("kvstore: iterate site feeds failed", "host", host, "error", err)
		return entity.NewSiteHost(host), nil
	}
	_ = foundMetadata // metadata item is optional; an unknown host yields an empty SiteHost

	return site, nil
}

// QuerySitePath implements repository.KVStore.
func (s *Store) QuerySitePath(ctx context.Context, host, path string) (*entity.SitePath, error) {
	defer func(start time.Time) { metrics.RecordDBQuery("query_site_path", time.Since(start)) }(time.Now())

	query := fmt.Sprintf(`SELECT attrs FROM %s WHERE pk = $1 AND sk = $2`, s.table)
	var attrs []byte
	err := s.cb.QueryRowContext(ctx, query, sitePathPKFor(host), sitePathSK(path)).Scan(&attrs)
	if err == sql.ErrNoRows {
		return entity.NewSitePath(host, path), nil
	}
	if err != nil {
		slog.Error("kvstore: query site path failed", "host", host, "path", path, "error", err)
		return entity.NewSitePath(host, path), nil
	}
	sp, err := decodeSitePath(attrs)
	if err != nil {
		slog.Error("kvstore: decode site path failed", "host", host, "path", path, "error", err)
		return entity.NewSitePath(host, path), nil
	}
	return sp, nil
}

// ListSites implements repository.KVStore, using the (sk, pk) index to
// perform the inverted query the spec describes: "query by SK =
// #METADATA#" across every partition. The scan itself is paginated in
// fixed-size pages (offset/limit, per the teacher's pagination.Config) and
// re-issued until a short page signals the end, matching spec.md §4.C's
// "re-issue with the last evaluated key until absent" description — the
// full result set is still returned to the caller, since KVStore's
// contract has no caller-facing page cursor.
func (s *Store) ListSites(ctx context.Context) ([]*entity.SiteHost, error) {
	defer func(start time.Time) { metrics.RecordDBQuery("list_sites", time.Since(start)) }(time.Now())

	cfg := pagination.DefaultConfig()
	query := fmt.Sprintf(`SELECT attrs FROM %s WHERE sk = $1 ORDER BY pk ASC LIMIT $2 OFFSET $3`, s.table)

	var sites []*entity.SiteHost
	for page := cfg.DefaultPage; ; page++ {
		offset := pagination.CalculateOffset(page, cfg.MaxLimit)
		rows, err := s.cb.QueryContext(ctx, query, siteHostSK, cfg.MaxLimit, offset)
		if err != nil {
			slog.Error("kvstore: list sites failed", "page", page, "error", err)
			return sites, nil
		}

		rowCount := 0
		for rows.Next() {
			rowCount++
			var attrs []byte
			if err := rows.Scan(&attrs); err != nil {
				slog.Error("kvstore: scan site row failed", "error", err)
				continue
			}
			site, err := decodeSiteHost(attrs)
			if err != nil {
				slog.Error("kvstore: decode site failed", "error", err)
				continue
			}
			sites = append(sites, site)
		}
		rowsErr := rows.Err()
		_ = rows.Close()
		if rowsErr != nil {
			slog.Error("kvstore: iterate site rows failed", "error", rowsErr)
			return sites, nil
		}

		if rowCount < cfg.MaxLimit {
			metrics.UpdateSitesKnownTotal(len(sites))
			return sites, nil
		}
	}
}

// Save implements repository.KVStore: a batch write of the SiteHost item,
// the SitePath item, and one item per feed, inside a single transaction.
func (s *Store) Save(ctx context.Context, site *entity.SiteHost, feeds []*entity.Feed, sitePath *entity.SitePath) error {
	defer func(start time.Time) { metrics.RecordDBQuery("save", time.Since(start)) }(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("kvstore save: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := fmt.Sprintf(`
INSERT INTO %s (pk, sk, attrs, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (pk, sk) DO UPDATE SET attrs = EXCLUDED.attrs, updated_at = now()`, s.table)

	siteAttrs, err := encodeSiteHost(site)
	if err != nil {
		return fmt.Errorf("kvstore save: encode site host: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsert, sitePKFor(site.Host), siteHostSK, siteAttrs); err != nil {
		return fmt.Errorf("kvstore save: write site host: %w", err)
	}

	for _, f := range feeds {
		if !f.IsValid() {
			continue
		}
		fAttrs, err := encodeFeed(f)
		if err != nil {
			return fmt.Errorf("kvstore save: encode feed %s: %w", f.URL, err)
		}
		if _, err := tx.ExecContext(ctx, upsert, sitePKFor(site.Host), feedSK(f.URL.String()), fAttrs); err != nil {
			return fmt.Errorf("kvstore save: write feed %s: %w", f.URL, err)
		}
	}

	pathAttrs, err := encodeSitePath(sitePath)
	if err != nil {
		return fmt.Errorf("kvstore save: encode site path: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsert, sitePathPKFor(sitePath.Host), sitePathSK(sitePath.Path), pathAttrs); err != nil {
		return fmt.Errorf("kvstore save: write site path: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("kvstore save: commit: %w", err)
	}
	return nil
}
