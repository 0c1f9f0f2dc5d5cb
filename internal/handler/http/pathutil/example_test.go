package pathutil_test

import (
	"fmt"

	"feedsearch/internal/handler/http/pathutil"
)

// ExampleNormalizePath demonstrates how path normalization works
// to prevent metrics label cardinality explosion.
func ExampleNormalizePath() {
	// Before normalization: each crawled host creates a unique path label,
	// which would cause cardinality explosion in Prometheus metrics.

	// After normalization: all hosts map to the same template.
	fmt.Println(pathutil.NormalizePath("/api/v1/sites/example.com"))
	fmt.Println(pathutil.NormalizePath("/api/v1/sites/blog.example.com"))
	fmt.Println(pathutil.NormalizePath("/api/v1/sites/other.example.org"))

	// Output:
	// /api/v1/sites/:host
	// /api/v1/sites/:host
	// /api/v1/sites/:host
}

// ExampleNormalizePath_static demonstrates that static endpoints remain unchanged.
func ExampleNormalizePath_static() {
	fmt.Println(pathutil.NormalizePath("/health"))
	fmt.Println(pathutil.NormalizePath("/metrics"))
	fmt.Println(pathutil.NormalizePath("/api/v1/search"))

	// Output:
	// /health
	// /metrics
	// /api/v1/search
}

// ExampleNormalizePath_queryParameters demonstrates that query parameters are stripped.
func ExampleNormalizePath_queryParameters() {
	fmt.Println(pathutil.NormalizePath("/api/v1/sites/example.com?foo=1"))
	fmt.Println(pathutil.NormalizePath("/api/v1/search?url=example.com"))

	// Output:
	// /api/v1/sites/:host
	// /api/v1/search
}

// ExampleNormalizePath_trailingSlash demonstrates that trailing slashes are handled.
func ExampleNormalizePath_trailingSlash() {
	fmt.Println(pathutil.NormalizePath("/api/v1/sites/example.com/"))

	// Output:
	// /api/v1/sites/:host
}

// ExampleGetExpectedCardinality demonstrates how to check expected metric cardinality.
func ExampleGetExpectedCardinality() {
	cardinality := pathutil.GetExpectedCardinality()
	fmt.Printf("Expected unique path labels: ~%d\n", cardinality)

	// Output is approximate, so we just demonstrate the usage
	// In real output: Expected unique path labels: ~5
}
