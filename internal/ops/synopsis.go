package ops

import (
	"fmt"
	"strings"

	"github.com/openaccess-epub/oaepub/internal/jats"
)

// writeSynopsis renders synop.xml: title, author line with affiliation and
// correspondence superscripts, affiliations, abstract, and editor line. The
// shared transformer collects any graphics so abstract images reach the
// manifest like body figures do.
func writeSynopsis(dir string, article *jats.Article, t *transformer) error {
	html, body := newDocument("Synopsis: " + article.Title())

	titleHeading := element("h1")
	titleHeading.Kids = t.transformKids(&article.Front.ArticleMeta.TitleGroup.ArticleTitle, 0)
	body.Kids = append(body.Kids, titleHeading)

	affOrder := affiliationOrder(article)
	body.Kids = append(body.Kids, authorLine(article, affOrder))

	if affLine := affiliationLine(article, affOrder); affLine != nil {
		body.Kids = append(body.Kids, affLine)
	}

	if len(article.Front.ArticleMeta.Abstracts) > 0 {
		abstractTitle := element("h2", textNode("Abstract"))
		body.Kids = append(body.Kids, abstractTitle, abstractDiv(article.Front.ArticleMeta.Abstracts[0], t))
	}

	if editorPara := editorLine(article); editorPara != nil {
		body.Kids = append(body.Kids, editorPara)
	}

	citation := element("p", element("b", textNode("Citation: ")), textNode(article.SelfCitation()))
	citation.SetAttr("id", "article-citation")
	body.Kids = append(body.Kids, citation)

	return writeDocument(dir, "synop.xml", html)
}

// affiliationOrder numbers affiliations by first reference in author order,
// so superscripts count up through the author line.
func affiliationOrder(article *jats.Article) map[string]int {
	order := map[string]int{}
	for _, author := range article.Authors() {
		for _, xref := range author.Xrefs {
			if xref.RefType != "aff" {
				continue
			}

			if _, seen := order[xref.RID]; !seen {
				order[xref.RID] = len(order) + 1
			}
		}
	}

	return order
}

func authorLine(article *jats.Article, affOrder map[string]int) *jats.Node {
	line := element("h2")

	first := true
	for _, author := range article.Authors() {
		if !first {
			line.Kids = append(line.Kids, textNode(", "))
		}

		first = false

		name := author.Name.Full()
		if name == "" {
			name = author.Collab
		}

		line.Kids = append(line.Kids, textNode(name))

		for _, xref := range author.Xrefs {
			switch xref.RefType {
			case "aff":
				line.Kids = append(line.Kids, supLink(xref.RID, fmt.Sprint(affOrder[xref.RID])))
			case "corresp":
				line.Kids = append(line.Kids, supLink(xref.RID, "*"))
			}
		}
	}

	return line
}

func supLink(rid, label string) *jats.Node {
	anchor := element("a", textNode(label))
	anchor.SetAttr("href", "synop.xml#"+rid)

	return element("sup", anchor)
}

func affiliationLine(article *jats.Article, affOrder map[string]int) *jats.Node {
	if len(article.Front.ArticleMeta.Affs) == 0 {
		return nil
	}

	line := element("p")
	for _, aff := range article.Front.ArticleMeta.Affs {
		id := aff.Attr("id")

		marker := element("sup")
		marker.SetAttr("id", id)
		if pos, ok := affOrder[id]; ok {
			marker.Kids = append(marker.Kids, textNode(fmt.Sprint(pos)))
		}

		line.Kids = append(line.Kids, marker, textNode(affText(aff)+" "))
	}

	return line
}

func affText(aff *jats.Node) string {
	// Drop the label element; the superscript marker replaces it.
	var parts []string
	for _, kid := range aff.Kids {
		if kid.Name == "label" {
			continue
		}

		if text := kid.FlatText(); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " ")
}

func abstractDiv(abstract *jats.Node, t *transformer) *jats.Node {
	div := element("div")
	div.SetAttr("id", "abstract")
	div.Kids = t.transformKids(abstract, 1)

	return div
}

func editorLine(article *jats.Article) *jats.Node {
	editors := article.Editors()
	if len(editors) == 0 {
		return nil
	}

	para := element("p")
	para.SetAttr("id", "editor")
	para.Kids = append(para.Kids, element("b", textNode("Editor: ")))

	first := true
	for _, editor := range editors {
		if !first {
			para.Kids = append(para.Kids, textNode("; "))
		}

		first = false
		para.Kids = append(para.Kids, textNode(editor.Name.Full()))

		for _, xref := range editor.Xrefs {
			if xref.RefType != "aff" {
				continue
			}

			if aff := article.AffByID(xref.RID); aff != nil {
				para.Kids = append(para.Kids, textNode(", "+affText(aff)))
			}
		}
	}

	return para
}
