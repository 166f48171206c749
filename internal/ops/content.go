// Package ops turns a parsed JATS article into the XHTML content documents
// of the EPUB's OPS directory: synop.xml, main.xml, biblio.xml, and, when
// the article has tables, tables.xml.
package ops

import (
	"github.com/openaccess-epub/oaepub/internal/jats"
)

// Result reports what the content generation produced and what the packaging
// steps still need: the figure images to fetch and whether tables.xml exists.
type Result struct {
	HasTables bool
	Images    []ImageRef
}

// Generate writes all OPS content documents for the article under
// dir/OPS. The skeleton must exist already.
func Generate(dir string, article *jats.Article) (*Result, error) {
	t := &transformer{}

	if err := writeSynopsis(dir, article, t); err != nil {
		return nil, err
	}

	if err := writeMain(dir, article, t); err != nil {
		return nil, err
	}

	if err := writeBiblio(dir, article); err != nil {
		return nil, err
	}

	if len(t.tables) > 0 {
		if err := writeTables(dir, article, t); err != nil {
			return nil, err
		}
	}

	return &Result{
		HasTables: len(t.tables) > 0,
		Images:    t.images,
	}, nil
}

// writeMain renders main.xml from the article body.
func writeMain(dir string, article *jats.Article, t *transformer) error {
	html, body := newDocument(article.Title())

	if article.Body != nil {
		body.Kids = t.transformKids(article.Body, 0)
	}

	return writeDocument(dir, "main.xml", html)
}
