package serialize

import (
	"encoding/xml"

	"feedsearch/internal/domain/entity"
)

// opmlOutlineXML and opmlDocumentXML mirror entity.OPMLOutline/OPMLDocument
// with the XML tags OPML readers expect, grounded on
// original_source/gateway/utils.py's outline builder (title/xmlUrl/htmlUrl).
type opmlOutlineXML struct {
	XMLName xml.Name `xml:"outline"`
	Text    string   `xml:"text,attr"`
	Title   string   `xml:"title,attr"`
	Type    string   `xml:"type,attr"`
	XMLURL  string   `xml:"xmlUrl,attr"`
	HTMLURL string   `xml:"htmlUrl,attr,omitempty"`
}

type opmlBodyXML struct {
	Outlines []opmlOutlineXML `xml:"outline"`
}

type opmlHeadXML struct {
	Title string `xml:"title"`
}

type opmlDocumentXML struct {
	XMLName xml.Name    `xml:"opml"`
	Version string      `xml:"version,attr"`
	Head    opmlHeadXML `xml:"head"`
	Body    opmlBodyXML `xml:"body"`
}

// OPML renders feeds as an OPML document, the shape `opml=true` returns
// from `GET /api/v1/search` (spec §6.1 expansion).
func OPML(title string, feeds []*entity.Feed) ([]byte, error) {
	doc := entity.NewOPMLDocument(title, feeds)

	out := opmlDocumentXML{
		Version: "2.0",
		Head:    opmlHeadXML{Title: doc.Title},
	}
	for _, o := range doc.Outlines {
		out.Body.Outlines = append(out.Body.Outlines, opmlOutlineXML{
			Text:    o.Title,
			Title:   o.Title,
			Type:    "rss",
			XMLURL:  o.XMLURL,
			HTMLURL: o.HTMLURL,
		})
	}

	body, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
