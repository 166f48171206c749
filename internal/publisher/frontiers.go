package publisher

import (
	"fmt"

	"github.com/openaccess-epub/oaepub/internal/jats"
)

// frontiers covers the Frontiers journals, which serve article XML from a
// single host keyed by DOI.
type frontiers struct{}

func newFrontiers() *frontiers {
	return &frontiers{}
}

func (f *frontiers) Name() string {
	return "frontiers"
}

func (f *frontiers) DOIPrefix() string {
	return "10.3389"
}

func (f *frontiers) ArticleURL(doi string) (string, error) {
	return fmt.Sprintf("http://journal.frontiersin.org/article/%s/xml/nlm", doi), nil
}

func (f *frontiers) ImageURL(doi, href string) (string, error) {
	return fmt.Sprintf("http://journal.frontiersin.org/file/%s", href), nil
}

func (f *frontiers) AdjustMeta(article *jats.Article) {
	if article.Front.JournalMeta.Publisher == nil {
		article.Front.JournalMeta.Publisher = &jats.Publisher{
			Name: "Frontiers Media S.A.",
			Loc:  "Lausanne, Switzerland",
		}
	}
}
