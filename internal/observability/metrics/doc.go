// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Search/crawl metrics (searches, crawl duration, feeds discovered)
//   - Directory Client metrics
//   - KV store query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "feedsearch/internal/observability/metrics"
//
//	func crawlHost(host string) {
//	    start := time.Now()
//	    // ... crawl ...
//	    found := 10
//
//	    metrics.RecordFeedCrawl(host, time.Since(start), found)
//	}
package metrics
