package crawler

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// feedLinkTypes are the <link type="..."> values that mark an alternate
// representation as a feed, per the HTML autodiscovery convention feed
// readers have used since RSS autodiscovery was introduced.
var feedLinkTypes = map[string]bool{
	"application/rss+xml":   true,
	"application/atom+xml":  true,
	"application/json":      true,
	"application/feed+json": true,
}

// DiscoverFeedLinks parses an HTML document for <link rel="alternate"> feed
// autodiscovery tags, resolving relative hrefs against base. This is the
// crawler's only use of goquery — the teacher uses it for Webflow/NextJS
// page scraping, here it drives feed-link discovery from a site's HTML.
func DiscoverFeedLinks(base *url.URL, body []byte) []*url.URL {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var links []*url.URL
	doc.Find("link[rel=alternate]").Each(func(_ int, sel *goquery.Selection) {
		typ, _ := sel.Attr("type")
		if !feedLinkTypes[strings.ToLower(typ)] {
			return
		}
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		links = append(links, resolved)
	})
	return links
}
