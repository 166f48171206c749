package publisher

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/openaccess-epub/oaepub/internal/jats"
	"github.com/samber/oops"
)

// plos covers the Public Library of Science journals. Every PLoS DOI embeds
// a subjournal code, e.g. 10.1371/journal.pone.0012345, which selects the
// journal site the content is served from.
type plos struct {
	journalURLs map[string]string
}

func newPLoS() *plos {
	return &plos{
		journalURLs: map[string]string{
			"pgen": "http://www.plosgenetics.org/article/%s",
			"pcbi": "http://www.ploscompbiol.org/article/%s",
			"ppat": "http://www.plospathogens.org/article/%s",
			"pntd": "http://www.plosntds.org/article/%s",
			"pmed": "http://www.plosmedicine.org/article/%s",
			"pbio": "http://www.plosbiology.org/article/%s",
			"pone": "http://www.plosone.org/article/%s",
			"pctr": "http://clinicaltrials.ploshubs.org/article/%s",
		},
	}
}

func (p *plos) Name() string {
	return "plos"
}

func (p *plos) DOIPrefix() string {
	return "10.1371"
}

func (p *plos) baseURL(doi string) (string, error) {
	_, suffix, found := strings.Cut(doi, "/")
	parts := strings.Split(suffix, ".")
	if !found || len(parts) < 2 {
		return "", oops.
			Code("DOI_INVALID").
			With("doi", doi).
			Errorf("PLoS DOI %q does not carry a subjournal code", doi)
	}

	subjournal := parts[1]
	base, ok := p.journalURLs[subjournal]
	if !ok {
		return "", oops.
			Code("PUBLISHER_UNKNOWN").
			With("doi", doi).
			With("subjournal", subjournal).
			Hint("Known PLoS subjournals: pbio, pcbi, pctr, pgen, pmed, pntd, pone, ppat").
			Errorf("unknown PLoS subjournal %q in DOI %q", subjournal, doi)
	}

	return base, nil
}

func (p *plos) ArticleURL(doi string) (string, error) {
	base, err := p.baseURL(doi)
	if err != nil {
		return "", err
	}

	resource := "fetchObjectAttachment.action?uri=" +
		url.QueryEscape("info:doi/"+doi) +
		"&representation=XML"

	return fmt.Sprintf(base, resource), nil
}

func (p *plos) ImageURL(doi, href string) (string, error) {
	base, err := p.baseURL(doi)
	if err != nil {
		return "", err
	}

	resource := "fetchSingleRepresentation.action?uri=" + url.QueryEscape(href)

	return fmt.Sprintf(base, resource), nil
}

func (p *plos) AdjustMeta(article *jats.Article) {
	if article.Front.JournalMeta.Publisher == nil {
		article.Front.JournalMeta.Publisher = &jats.Publisher{
			Name: "Public Library of Science",
			Loc:  "San Francisco, USA",
		}
	}
}
