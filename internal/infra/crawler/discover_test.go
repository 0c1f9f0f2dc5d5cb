package crawler

import (
	"net/url"
	"testing"
)

func mustParseBase(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestDiscoverFeedLinks_FindsAlternateRSS(t *testing.T) {
	base := mustParseBase(t, "https://example.com/")
	body := []byte(`<html><head>
		<link rel="alternate" type="application/rss+xml" href="/feed.xml">
	</head></html>`)

	links := DiscoverFeedLinks(base, body)
	if len(links) != 1 {
		t.Fatalf("len(links) = %d, want 1", len(links))
	}
	if links[0].String() != "https://example.com/feed.xml" {
		t.Errorf("links[0] = %q, want https://example.com/feed.xml", links[0].String())
	}
}

func TestDiscoverFeedLinks_IgnoresNonFeedTypes(t *testing.T) {
	base := mustParseBase(t, "https://example.com/")
	body := []byte(`<html><head>
		<link rel="alternate" type="text/css" href="/style.css">
		<link rel="stylesheet" type="application/rss+xml" href="/not-alternate.xml">
	</head></html>`)

	links := DiscoverFeedLinks(base, body)
	if len(links) != 0 {
		t.Errorf("len(links) = %d, want 0; got %v", len(links), links)
	}
}

func TestDiscoverFeedLinks_ResolvesRelativeAndAbsolute(t *testing.T) {
	base := mustParseBase(t, "https://example.com/blog/")
	body := []byte(`<html><head>
		<link rel="alternate" type="application/atom+xml" href="atom.xml">
		<link rel="alternate" type="application/json" href="https://other.example.com/feed.json">
	</head></html>`)

	links := DiscoverFeedLinks(base, body)
	if len(links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(links))
	}
	if links[0].String() != "https://example.com/blog/atom.xml" {
		t.Errorf("links[0] = %q, want relative resolution against base", links[0].String())
	}
	if links[1].String() != "https://other.example.com/feed.json" {
		t.Errorf("links[1] = %q, want absolute href preserved", links[1].String())
	}
}

func TestDiscoverFeedLinks_MalformedHTMLNoPanic(t *testing.T) {
	base := mustParseBase(t, "https://example.com/")
	DiscoverFeedLinks(base, []byte(`<<<not html at all`))
}

func TestDiscoverFeedLinks_MissingHrefSkipped(t *testing.T) {
	base := mustParseBase(t, "https://example.com/")
	body := []byte(`<html><head><link rel="alternate" type="application/rss+xml"></head></html>`)
	links := DiscoverFeedLinks(base, body)
	if len(links) != 0 {
		t.Errorf("len(links) = %d, want 0", len(links))
	}
}
