package jats

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/samber/oops"
)

// Article is a parsed Journal Publishing Tag Set document. Front metadata is
// fully typed; body and back keep their element trees for the content
// transform.
type Article struct {
	Path        string
	ArticleType string
	DTDVersion  string
	Front       Front
	Body        *Node
	Back        *Node
	SubArticles []*Node
	Responses   []*Node
}

type articleDocument struct {
	XMLName     xml.Name `xml:"article"`
	ArticleType string   `xml:"article-type,attr"`
	DTDVersion  string   `xml:"dtd-version,attr"`
	Front       Front    `xml:"front"`
	Body        *Node    `xml:"body"`
	Back        *Node    `xml:"back"`
	SubArticles []*Node  `xml:"sub-article"`
	Responses   []*Node  `xml:"response"`
}

// Load reads and parses a JATS XML file.
func Load(path string) (*Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.
			Code("ARTICLE_READ_ERROR").
			With("path", path).
			Wrapf(err, "reading article file")
	}

	return Parse(path, data)
}

// Parse decodes JATS XML content. The path is recorded for diagnostics only.
func Parse(path string, data []byte) (*Article, error) {
	data = stripBOM(data)

	doc := &articleDocument{}
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false
	decoder.Entity = xml.HTMLEntity

	if err := decoder.Decode(doc); err != nil {
		return nil, oops.
			Code("ARTICLE_PARSE_ERROR").
			With("path", path).
			Hint("Check that the input is well-formed JATS XML").
			Wrapf(err, "parsing article XML")
	}

	return &Article{
		Path:        path,
		ArticleType: doc.ArticleType,
		DTDVersion:  doc.DTDVersion,
		Front:       doc.Front,
		Body:        doc.Body,
		Back:        doc.Back,
		SubArticles: doc.SubArticles,
		Responses:   doc.Responses,
	}, nil
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}

// DOI returns the article-level DOI, empty when the article has none.
func (a *Article) DOI() string {
	for _, id := range a.Front.ArticleMeta.ArticleIDs {
		if id.PubIDType == "doi" {
			return strings.TrimSpace(id.Value)
		}
	}

	return ""
}

func (a *Article) Title() string {
	return a.Front.ArticleMeta.TitleGroup.ArticleTitle.FlatText()
}

func (a *Article) JournalTitle() string {
	journalMeta := a.Front.JournalMeta
	if journalMeta.TitleGroup != nil && len(journalMeta.TitleGroup.Titles) > 0 {
		return strings.TrimSpace(journalMeta.TitleGroup.Titles[0])
	}

	if len(journalMeta.Titles) > 0 {
		return strings.TrimSpace(journalMeta.Titles[0])
	}

	return ""
}

func (a *Article) PublisherName() string {
	if a.Front.JournalMeta.Publisher == nil {
		return ""
	}

	return strings.TrimSpace(a.Front.JournalMeta.Publisher.Name)
}

func (a *Article) Authors() []Contrib {
	return a.contribsByType("author")
}

func (a *Article) Editors() []Contrib {
	return a.contribsByType("editor")
}

func (a *Article) contribsByType(contribType string) []Contrib {
	var contribs []Contrib
	for _, group := range a.Front.ArticleMeta.ContribGroups {
		for _, contrib := range group.Contribs {
			if contrib.Type == contribType {
				contribs = append(contribs, contrib)
			}
		}
	}

	return contribs
}

// PubDate returns the publication date with the given pub-type. When kind is
// empty the first date wins.
func (a *Article) PubDate(kind string) (PubDate, bool) {
	for _, date := range a.Front.ArticleMeta.PubDates {
		if kind == "" || date.PubType == kind {
			return date, true
		}
	}

	return PubDate{}, false
}

// SelfCitation builds the article's own citation line from its metadata:
// authors (year) title. journal volume(issue): pages. doi:...
func (a *Article) SelfCitation() string {
	var builder strings.Builder

	var names []string

	for _, author := range a.Authors() {
		name := author.Name.Full()
		if name == "" {
			name = author.Collab
		}

		if name != "" {
			names = append(names, name)
		}
	}

	builder.WriteString(strings.Join(names, ", "))

	if date, ok := a.PubDate(""); ok && date.Year != 0 {
		fmt.Fprintf(&builder, " (%d)", date.Year)
	}

	builder.WriteString(" " + a.Title() + ".")

	if journal := a.JournalTitle(); journal != "" {
		builder.WriteString(" " + journal)

		meta := a.Front.ArticleMeta
		if meta.Volume != "" {
			builder.WriteString(" " + meta.Volume)
			if meta.Issue != "" {
				builder.WriteString("(" + meta.Issue + ")")
			}
		}

		switch {
		case meta.ElocationID != "":
			builder.WriteString(": " + meta.ElocationID)
		case meta.PageRange != "":
			builder.WriteString(": " + meta.PageRange)
		case meta.FPage != "":
			builder.WriteString(": " + meta.FPage)
			if meta.LPage != "" {
				builder.WriteString("-" + meta.LPage)
			}
		}

		builder.WriteString(".")
	}

	if doi := a.DOI(); doi != "" {
		builder.WriteString(" doi:" + doi)
	}

	return strings.TrimSpace(builder.String())
}

// AffByID resolves an affiliation node from its id attribute.
func (a *Article) AffByID(id string) *Node {
	for _, aff := range a.Front.ArticleMeta.Affs {
		if aff.Attr("id") == id {
			return aff
		}
	}

	return nil
}

// Validate performs the structural checks DTD validation would catch for the
// elements the conversion depends on.
func (a *Article) Validate() error {
	if len(a.Front.JournalMeta.JournalIDs) == 0 && a.JournalTitle() == "" {
		return oops.
			Code("ARTICLE_INVALID").
			With("path", a.Path).
			With("element", "journal-meta").
			Hint("The article must identify its journal via journal-id or journal-title").
			Errorf("missing journal identification in %q", a.Path)
	}

	if a.Title() == "" {
		return oops.
			Code("ARTICLE_INVALID").
			With("path", a.Path).
			With("element", "title-group").
			Errorf("missing article title in %q", a.Path)
	}

	if len(a.Front.ArticleMeta.PubDates) == 0 {
		return oops.
			Code("ARTICLE_INVALID").
			With("path", a.Path).
			With("element", "pub-date").
			Errorf("missing publication date in %q", a.Path)
	}

	hasContributor := false
	for _, group := range a.Front.ArticleMeta.ContribGroups {
		for _, contrib := range group.Contribs {
			if contrib.Name != nil || contrib.Collab != "" {
				hasContributor = true
			}
		}
	}

	if !hasContributor {
		return oops.
			Code("ARTICLE_INVALID").
			With("path", a.Path).
			With("element", "contrib-group").
			Errorf("missing contributors in %q", a.Path)
	}

	return nil
}
