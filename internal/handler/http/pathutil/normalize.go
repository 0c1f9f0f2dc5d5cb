package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
// Pre-compiled at initialization for optimal performance (<1μs per operation).
var pathPatterns = []*PathPattern{
	// Site-host routes: the host segment is unbounded cardinality, so it
	// always collapses to a single template label.
	{Pattern: regexp.MustCompile(`^/api/v1/sites/.+$`), Template: "/api/v1/sites/:host"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label cardinality explosion.
// It converts paths with IDs (e.g., /articles/123) to template format (e.g., /articles/:id).
// Static paths and search endpoints remain unchanged.
//
// Performance: <1μs per operation (pre-compiled regex patterns)
//
// Examples:
//
//	NormalizePath("/api/v1/sites/example.com")       // "/api/v1/sites/:host"
//	NormalizePath("/api/v1/sites/other.example.org") // "/api/v1/sites/:host"
//	NormalizePath("/api/v1/search")                  // "/api/v1/search" (unchanged)
//	NormalizePath("/api/v1/sites")                   // "/api/v1/sites" (unchanged)
//	NormalizePath("/health")                         // "/health" (unchanged)
//	NormalizePath("/metrics")                        // "/metrics" (unchanged)
//
// Query parameters and trailing slashes are handled:
//
//	NormalizePath("/api/v1/sites/example.com?foo=1") // "/api/v1/sites/:host"
//	NormalizePath("/api/v1/sites/example.com/")      // "/api/v1/sites/:host"
func NormalizePath(path string) string {
	// Strip query parameters if present
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	// Strip trailing slash if present (except for root path)
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	// Try to match against known patterns
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	// No match found, return original path
	// This is safe - static paths like /health, /metrics, /auth/token
	// and search endpoints like /articles/search will pass through unchanged
	return path
}

// GetExpectedCardinality returns the expected number of unique path labels
// after normalization. This is useful for capacity planning and monitoring.
//
// Expected cardinality calculation:
//   - Static endpoints: ~4 (health, ready, live, metrics)
//   - API endpoints: ~3 (search, sites, sites/:host)
//   - Total: ~7 unique path labels
func GetExpectedCardinality() int {
	templateCount := len(pathPatterns)
	staticCount := 4
	return templateCount + staticCount
}
