package metrics

import (
	"strconv"
	"time"
)

// RecordSearch records the outcome of one orchestrator Search call.
func RecordSearch(crawled bool) {
	SearchesTotal.WithLabelValues(strconv.FormatBool(crawled)).Inc()
}

// RecordFeedCrawl records metrics for a completed crawl of one host.
func RecordFeedCrawl(host string, duration time.Duration, feedsDiscovered int) {
	FeedCrawlDuration.WithLabelValues(host).Observe(duration.Seconds())
	if feedsDiscovered > 0 {
		FeedsDiscoveredTotal.WithLabelValues(host).Add(float64(feedsDiscovered))
	}
}

// RecordFeedCrawlError records an error encountered during a host's crawl.
func RecordFeedCrawlError(host, errorType string) {
	FeedCrawlErrors.WithLabelValues(host, errorType).Inc()
}

// RecordDirectoryFetch records the outcome and latency of a feedly directory lookup.
func RecordDirectoryFetch(success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	DirectoryFetchTotal.WithLabelValues(result).Inc()
	DirectoryFetchDuration.Observe(duration.Seconds())
}

// UpdateSitesKnownTotal updates the gauge of distinct hosts held by the KV store.
func UpdateSitesKnownTotal(count int) {
	SitesKnownTotal.Set(float64(count))
}

// RecordDBQuery records the duration of a KV store operation.
// Operation should describe the call (e.g. "query_site_feeds", "save").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
