// Package collect scrapes a PLoS issue's table of contents into a collection
// file of doi: lines that convert accepts as input.
package collect

import (
	"context"
	"net/http"
	neturl "net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/oops"
	"resty.dev/v3"
)

const tocPrefix = "Table of Contents | "

// journalNames maps PLoS site keys to collection file name components.
var journalNames = map[string]string{
	"plosgenetics":  "PLoS_Genetics",
	"plosone":       "PLoS_ONE",
	"plosntds":      "PLoS_Neglected_Tropical_Diseases",
	"plosmedicine":  "PLoS_Medicine",
	"plosbiology":   "PLoS_Biology",
	"ploscompbiol":  "PLoS_Computational_Biology",
	"plospathogens": "PLoS_Pathogens",
}

// Collector fetches issue pages and writes collection files into outDir.
type Collector struct {
	client *resty.Client
	outDir string
}

func New(outDir string) *Collector {
	return &Collector{
		client: resty.New(),
		outDir: outDir,
	}
}

// CollectIssue scrapes the issue page at issueURL and writes one doi: line
// per article. It returns the collection file path and the article count.
func (c *Collector) CollectIssue(ctx context.Context, issueURL string) (string, int, error) {
	journal, err := journalName(issueURL)
	if err != nil {
		return "", 0, err
	}

	response, err := c.client.R().SetContext(ctx).Get(issueURL)
	if err != nil {
		return "", 0, oops.
			Code("COLLECT_FAILED").
			With("url", issueURL).
			Wrapf(err, "fetching issue page")
	}

	if response.StatusCode() < http.StatusOK || response.StatusCode() >= http.StatusMultipleChoices {
		return "", 0, oops.
			Code("COLLECT_FAILED").
			With("url", issueURL).
			With("status", response.StatusCode()).
			Errorf("issue page returned non-success status %d", response.StatusCode())
	}

	// The issue pages are not well-formed XML, hence an HTML parser.
	doc, err := goquery.NewDocumentFromReader(response.Body)
	if err != nil {
		return "", 0, oops.
			Code("COLLECT_FAILED").
			With("url", issueURL).
			Wrapf(err, "parsing issue page")
	}

	date, dois, err := parseIssue(doc)
	if err != nil {
		return "", 0, oops.
			Code("COLLECT_FAILED").
			With("url", issueURL).
			Wrapf(err, "scraping issue page")
	}

	if err := os.MkdirAll(c.outDir, 0o755); err != nil {
		return "", 0, oops.
			Code("WRITE_FAILED").
			With("path", c.outDir).
			Wrapf(err, "creating collections directory")
	}

	collectionPath := filepath.Join(c.outDir, journal+"_"+date+".txt")

	var builder strings.Builder

	for _, doi := range dois {
		builder.WriteString("doi:")
		builder.WriteString(doi)
		builder.WriteString("\n")
	}

	if err := os.WriteFile(collectionPath, []byte(builder.String()), 0o644); err != nil {
		return "", 0, oops.
			Code("WRITE_FAILED").
			With("path", collectionPath).
			Wrapf(err, "writing collection file")
	}

	return collectionPath, len(dois), nil
}

// parseIssue extracts the issue date from the page heading and the article
// DOIs from the open-access links.
func parseIssue(doc *goquery.Document) (string, []string, error) {
	heading := strings.TrimSpace(doc.Find("h1").First().Text())

	rest, found := strings.CutPrefix(heading, tocPrefix)
	if !found || rest == "" {
		return "", nil, oops.
			Code("COLLECT_FAILED").
			With("heading", heading).
			Errorf("page heading does not look like an issue table of contents")
	}

	date := strings.ReplaceAll(rest, " ", "_")

	var dois []string

	seen := make(map[string]struct{})

	doc.Find(`a[title="Read Open Access Article"]`).Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok || !strings.HasPrefix(href, "/article/") {
			return
		}

		id, ok := articleID(href)
		if !ok {
			return
		}

		doi := "10.1371/" + id
		if _, dup := seen[doi]; dup {
			return
		}

		seen[doi] = struct{}{}
		dois = append(dois, doi)
	})

	if len(dois) == 0 {
		return "", nil, oops.
			Code("COLLECT_FAILED").
			Errorf("no open-access article links found on issue page")
	}

	return date, dois, nil
}

// articleID pulls the DOI suffix out of an article link, e.g.
// /article/info%3Adoi%2F10.1371%2Fjournal.pone.0012345;jsessionid=x yields
// journal.pone.0012345.
func articleID(href string) (string, bool) {
	_, after, found := strings.Cut(href, "10.1371%2F")
	if !found {
		return "", false
	}

	id, _, _ := strings.Cut(after, ";")
	if id == "" {
		return "", false
	}

	return id, true
}

func journalName(issueURL string) (string, error) {
	parsed, err := neturl.Parse(issueURL)
	if err != nil {
		return "", oops.
			Code("COLLECT_FAILED").
			With("url", issueURL).
			Wrapf(err, "parsing issue URL")
	}

	key := strings.TrimSuffix(strings.TrimPrefix(parsed.Hostname(), "www."), ".org")

	name, ok := journalNames[key]
	if !ok {
		return "", oops.
			Code("COLLECT_FAILED").
			With("url", issueURL).
			With("site", key).
			Hint("Issue collection supports the PLoS journal sites").
			Errorf("unsupported journal site %q", key)
	}

	return name, nil
}
