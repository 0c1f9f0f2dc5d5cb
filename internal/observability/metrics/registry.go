// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search/crawl metrics track the Search Orchestrator and Crawl Driver.
var (
	// SearchesTotal counts completed searches by whether they triggered a crawl.
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searches_total",
			Help: "Total number of search requests handled, by whether a crawl ran",
		},
		[]string{"crawled"},
	)

	// FeedCrawlDuration measures time to crawl a site's seed set.
	FeedCrawlDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_crawl_duration_seconds",
			Help:    "Time taken to crawl a site's seed URLs",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"host"},
	)

	// FeedCrawlErrors counts errors during feed crawling.
	FeedCrawlErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_crawl_errors_total",
			Help: "Total number of feed crawl errors",
		},
		[]string{"host", "error_type"},
	)

	// FeedsDiscoveredTotal counts feeds newly surfaced by a crawl, per host.
	FeedsDiscoveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feeds_discovered_total",
			Help: "Total number of feeds discovered by crawling",
		},
		[]string{"host"},
	)

	// DirectoryFetchTotal counts Directory Client lookups by outcome.
	DirectoryFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_fetch_total",
			Help: "Total number of feedly directory lookups",
		},
		[]string{"result"}, // result: success, failure
	)

	// DirectoryFetchDuration measures time spent waiting on the directory.
	DirectoryFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "directory_fetch_duration_seconds",
			Help:    "Time taken for a feedly directory lookup",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SitesKnownTotal tracks the number of distinct hosts held by the KV store.
	SitesKnownTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sites_known_total",
			Help: "Total number of distinct hosts recorded in the KV store",
		},
	)
)

// Database metrics track the Postgres-backed KV Store Adapter.
var (
	// DBQueryDuration measures KV store operation duration.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "KV store operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections.
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections.
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
