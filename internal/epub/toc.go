package epub

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
)

// tocEntries names the reading-order documents present for an article.
func tocEntries(info PackageInfo) []struct{ Label, Href string } {
	entries := []struct{ Label, Href string }{
		{"Synopsis", "synop.xml"},
		{"Article", "main.xml"},
		{"References", "biblio.xml"},
	}

	if info.HasTables {
		entries = append(entries, struct{ Label, Href string }{"Tables", "tables.xml"})
	}

	return entries
}

type ncxDocument struct {
	XMLName xml.Name  `xml:"ncx"`
	Xmlns   string    `xml:"xmlns,attr"`
	Version string    `xml:"version,attr"`
	Head    ncxHead   `xml:"head"`
	Title   ncxText   `xml:"docTitle"`
	NavMap  ncxNavMap `xml:"navMap"`
}

type ncxHead struct {
	Metas []ncxMeta `xml:"meta"`
}

type ncxMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type ncxText struct {
	Text string `xml:"text"`
}

type ncxNavMap struct {
	Points []ncxNavPoint `xml:"navPoint"`
}

type ncxNavPoint struct {
	ID        string     `xml:"id,attr"`
	PlayOrder int        `xml:"playOrder,attr"`
	Label     ncxText    `xml:"navLabel"`
	Content   ncxContent `xml:"content"`
}

type ncxContent struct {
	Src string `xml:"src,attr"`
}

// WriteNCX produces the EPUB2 navigation document OPS/toc.ncx.
func WriteNCX(dir string, info PackageInfo) error {
	doc := ncxDocument{
		Xmlns:   "http://www.daisy.org/z3986/2005/ncx/",
		Version: "2005-1",
		Head: ncxHead{
			Metas: []ncxMeta{
				{Name: "dtb:uid", Content: info.Article.DOI()},
				{Name: "dtb:depth", Content: "1"},
				{Name: "dtb:totalPageCount", Content: "0"},
				{Name: "dtb:maxPageNumber", Content: "0"},
			},
		},
		Title: ncxText{Text: info.Article.Title()},
	}

	for i, entry := range tocEntries(info) {
		doc.NavMap.Points = append(doc.NavMap.Points, ncxNavPoint{
			ID:        fmt.Sprintf("np%d", i+1),
			PlayOrder: i + 1,
			Label:     ncxText{Text: entry.Label},
			Content:   ncxContent{Src: entry.Href},
		})
	}

	return writeXMLDoc(filepath.Join(dir, "OPS", "toc.ncx"), doc)
}

type navDocument struct {
	XMLName xml.Name `xml:"html"`
	Xmlns   string   `xml:"xmlns,attr"`
	XmlnsE  string   `xml:"xmlns:epub,attr"`
	Head    navHead  `xml:"head"`
	Body    navBody  `xml:"body"`
}

type navHead struct {
	Title string `xml:"title"`
}

type navBody struct {
	Nav navNav `xml:"nav"`
}

type navNav struct {
	Type string  `xml:"epub:type,attr"`
	List navList `xml:"ol"`
}

type navList struct {
	Items []navItem `xml:"li"`
}

type navItem struct {
	Anchor navAnchor `xml:"a"`
}

type navAnchor struct {
	Href string `xml:"href,attr"`
	Text string `xml:",chardata"`
}

// WriteNav produces the EPUB3 navigation document OPS/nav.xhtml.
func WriteNav(dir string, info PackageInfo) error {
	doc := navDocument{
		Xmlns:  "http://www.w3.org/1999/xhtml",
		XmlnsE: "http://www.idpf.org/2007/ops",
		Head:   navHead{Title: info.Article.Title()},
		Body: navBody{
			Nav: navNav{Type: "toc"},
		},
	}

	for _, entry := range tocEntries(info) {
		doc.Body.Nav.List.Items = append(doc.Body.Nav.List.Items, navItem{
			Anchor: navAnchor{Href: entry.Href, Text: entry.Label},
		})
	}

	return writeXMLDoc(filepath.Join(dir, "OPS", "nav.xhtml"), doc)
}
