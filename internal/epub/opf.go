package epub

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openaccess-epub/oaepub/internal/jats"
	"github.com/samber/oops"
)

// PackageInfo carries everything the packaging documents need about one
// converted article.
type PackageInfo struct {
	Article   *jats.Article
	Version   int
	HasTables bool
	// Images are OPS-relative paths, e.g. "images/pone.0012345.g001.png".
	Images []string
}

type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Xmlns    string      `xml:"xmlns,attr"`
	UniqueID string      `xml:"unique-identifier,attr"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	XmlnsDC     string        `xml:"xmlns:dc,attr"`
	XmlnsOPF    string        `xml:"xmlns:opf,attr"`
	Title       string        `xml:"dc:title"`
	Creators    []opfCreator  `xml:"dc:creator"`
	Identifier  opfIdentifier `xml:"dc:identifier"`
	Language    string        `xml:"dc:language"`
	Date        string        `xml:"dc:date,omitempty"`
	Publisher   string        `xml:"dc:publisher,omitempty"`
	Rights      string        `xml:"dc:rights,omitempty"`
	Description string        `xml:"dc:description,omitempty"`
	Source      string        `xml:"dc:source,omitempty"`
}

type opfCreator struct {
	Role   string `xml:"opf:role,attr"`
	FileAs string `xml:"opf:file-as,attr,omitempty"`
	Name   string `xml:",chardata"`
}

type opfIdentifier struct {
	ID     string `xml:"id,attr"`
	Scheme string `xml:"opf:scheme,attr,omitempty"`
	Value  string `xml:",chardata"`
}

type opfManifest struct {
	Items []opfItem `xml:"item"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr,omitempty"`
}

type opfSpine struct {
	TOC      string       `xml:"toc,attr,omitempty"`
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr,omitempty"`
}

// WriteOPF produces OPS/content.opf with Dublin Core metadata, the manifest
// of every packaged document, and the reading spine.
func WriteOPF(dir string, info PackageInfo) error {
	article := info.Article

	metadata := opfMetadata{
		XmlnsDC:  "http://purl.org/dc/elements/1.1/",
		XmlnsOPF: "http://www.idpf.org/2007/opf",
		Title:    article.Title(),
		Identifier: opfIdentifier{
			ID:     "PrimaryID",
			Scheme: "DOI",
			Value:  article.DOI(),
		},
		Language:  "en",
		Publisher: article.PublisherName(),
	}

	if metadata.Identifier.Value == "" {
		metadata.Identifier.Scheme = ""
		metadata.Identifier.Value = article.Title()
	}

	for _, author := range article.Authors() {
		name := author.Name.Full()
		if name == "" {
			name = author.Collab
		}

		if name == "" {
			continue
		}

		metadata.Creators = append(metadata.Creators, opfCreator{
			Role:   "aut",
			FileAs: author.Name.FileAs(),
			Name:   name,
		})
	}

	if date, ok := article.PubDate("epub"); ok {
		metadata.Date = formatDate(date)
	} else if date, ok := article.PubDate(""); ok {
		metadata.Date = formatDate(date)
	}

	if perms := article.Front.ArticleMeta.Permissions; perms != nil {
		metadata.Rights = strings.TrimSpace(perms.CopyrightStatement)
	}

	if len(article.Front.ArticleMeta.Abstracts) > 0 {
		metadata.Description = article.Front.ArticleMeta.Abstracts[0].FlatText()
	}

	if journal := article.JournalTitle(); journal != "" {
		metadata.Source = journal
	}

	pkg := opfPackage{
		Xmlns:    "http://www.idpf.org/2007/opf",
		UniqueID: "PrimaryID",
		Version:  opfVersion(info.Version),
		Metadata: metadata,
		Manifest: buildManifest(info),
		Spine:    buildSpine(info),
	}

	return writeXMLDoc(filepath.Join(dir, "OPS", "content.opf"), pkg)
}

func opfVersion(version int) string {
	if version >= 3 {
		return "3.0"
	}

	return "2.0"
}

func formatDate(date jats.PubDate) string {
	if date.Month == 0 {
		return fmt.Sprintf("%04d", date.Year)
	}

	if date.Day == 0 {
		return fmt.Sprintf("%04d-%02d", date.Year, date.Month)
	}

	return fmt.Sprintf("%04d-%02d-%02d", date.Year, date.Month, date.Day)
}

func buildManifest(info PackageInfo) opfManifest {
	items := []opfItem{
		{ID: "css", Href: "css/article.css", MediaType: "text/css"},
		{ID: "synop", Href: "synop.xml", MediaType: "application/xhtml+xml"},
		{ID: "main", Href: "main.xml", MediaType: "application/xhtml+xml"},
		{ID: "biblio", Href: "biblio.xml", MediaType: "application/xhtml+xml"},
	}

	if info.HasTables {
		items = append(items, opfItem{
			ID:        "tables",
			Href:      "tables.xml",
			MediaType: "application/xhtml+xml",
		})
	}

	if info.Version >= 3 {
		items = append(items, opfItem{
			ID:         "nav",
			Href:       "nav.xhtml",
			MediaType:  "application/xhtml+xml",
			Properties: "nav",
		})
	} else {
		items = append(items, opfItem{
			ID:        "ncx",
			Href:      "toc.ncx",
			MediaType: "application/x-dtbncx+xml",
		})
	}

	for i, image := range info.Images {
		items = append(items, opfItem{
			ID:        fmt.Sprintf("img%d", i+1),
			Href:      image,
			MediaType: imageMediaType(image),
		})
	}

	return opfManifest{Items: items}
}

func imageMediaType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

func buildSpine(info PackageInfo) opfSpine {
	spine := opfSpine{
		ItemRefs: []opfItemRef{
			{IDRef: "synop"},
			{IDRef: "main"},
			{IDRef: "biblio"},
		},
	}

	if info.Version < 3 {
		spine.TOC = "ncx"
	}

	if info.HasTables {
		spine.ItemRefs = append(spine.ItemRefs, opfItemRef{IDRef: "tables", Linear: "no"})
	}

	return spine
}

func writeXMLDoc(path string, doc any) error {
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return oops.
			Code("PACKAGE_WRITE_ERROR").
			With("path", path).
			Wrapf(err, "encoding package document")
	}

	content := append([]byte(xml.Header), data...)
	content = append(content, '\n')

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return oops.
			Code("PACKAGE_WRITE_ERROR").
			With("path", path).
			Wrapf(err, "writing package document")
	}

	return nil
}
