package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CrawlOverlay carries optional operator overrides for the Crawl Driver's
// fixed parameters, loaded from an operator-supplied YAML file. Every field
// is a pointer so an absent key in the file leaves the corresponding
// crawler default untouched.
type CrawlOverlay struct {
	Crawl struct {
		Concurrency    *int           `yaml:"concurrency"`
		RequestTimeout *time.Duration `yaml:"request_timeout"`
		TotalTimeout   *time.Duration `yaml:"total_timeout"`
		MaxDepth       *int           `yaml:"max_depth"`
		UserAgent      *string        `yaml:"user_agent"`
	} `yaml:"crawl"`
}

// LoadCrawlOverlay loads an optional YAML overlay for the Crawl Driver's
// parameters. A missing file is not an error: it means no overlay is in
// effect and the caller should keep crawler.DefaultOptions as-is.
// The path parameter is expected to come from a trusted source (an
// environment variable set by the operator), not user input.
func LoadCrawlOverlay(path string) (*CrawlOverlay, error) {
	if path == "" {
		return nil, nil
	}

	// #nosec G304 -- path is provided by trusted source (env var), not user input
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read crawl overlay: %w", err)
	}

	var overlay CrawlOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse crawl overlay: %w", err)
	}
	return &overlay, nil
}
