package entity

// OPMLOutline is one <outline> element in an OPML feed-list export.
type OPMLOutline struct {
	Title   string
	XMLURL  string // feed url
	HTMLURL string // site url
}

// OPMLDocument is the tree the OPML serializer walks. It carries only the
// fields the original export actually used (title, feed url, site url).
type OPMLDocument struct {
	Title    string
	Outlines []OPMLOutline
}

// NewOPMLDocument projects a list of feeds into an OPML document.
func NewOPMLDocument(title string, feeds []*Feed) OPMLDocument {
	doc := OPMLDocument{Title: title}
	for _, f := range feeds {
		if !f.IsValid() {
			continue
		}
		outline := OPMLOutline{Title: f.Title, XMLURL: f.URL.String()}
		if f.SiteURL != nil {
			outline.HTMLURL = f.SiteURL.String()
		}
		doc.Outlines = append(doc.Outlines, outline)
	}
	return doc
}
