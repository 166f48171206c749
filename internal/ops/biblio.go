package ops

import (
	"fmt"
	"strings"

	"github.com/openaccess-epub/oaepub/internal/jats"
)

// writeBiblio renders biblio.xml from the back matter's ref-list. Each
// reference becomes a numbered div carrying the ref's id so in-text
// citations can link to it.
func writeBiblio(dir string, article *jats.Article) error {
	html, body := newDocument("References: " + article.Title())

	heading := element("h1", textNode("References"))
	body.Kids = append(body.Kids, heading)

	for i, ref := range collectRefs(article) {
		div := element("div")
		div.SetAttr("class", "ref")
		if id := ref.Attr("id"); id != "" {
			div.SetAttr("id", id)
		}

		div.Kids = append(div.Kids, textNode(fmt.Sprintf("%d. %s", i+1, citationText(ref))))
		body.Kids = append(body.Kids, div)
	}

	return writeDocument(dir, "biblio.xml", html)
}

func collectRefs(article *jats.Article) []*jats.Node {
	if article.Back == nil {
		return nil
	}

	refList := article.Back.Find("ref-list")
	if refList == nil {
		return nil
	}

	return refList.Children("ref")
}

// citationText flattens a reference's citation element, whichever of the
// tag-set variants it uses.
func citationText(ref *jats.Node) string {
	for _, name := range []string{"citation", "element-citation", "mixed-citation", "nlm-citation"} {
		if citation := ref.Child(name); citation != nil {
			return flattenCitation(citation)
		}
	}

	return flattenCitation(ref)
}

// flattenCitation joins the citation's text runs with single spaces, since
// structured citations keep authors, titles, and years in separate elements.
func flattenCitation(node *jats.Node) string {
	var parts []string
	collectTextRuns(node, &parts)

	return strings.Join(parts, " ")
}

func collectTextRuns(node *jats.Node, parts *[]string) {
	for _, kid := range node.Kids {
		if kid.IsText() {
			if text := strings.TrimSpace(kid.Text); text != "" {
				*parts = append(*parts, text)
			}

			continue
		}

		if kid.Name == "label" {
			continue
		}

		collectTextRuns(kid, parts)
	}
}
