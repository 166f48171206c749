package ops

import (
	"github.com/openaccess-epub/oaepub/internal/jats"
)

// writeTables renders tables.xml from the table-wrap elements extracted by
// the body transform. Each table keeps its wrap id as the link target.
func writeTables(dir string, article *jats.Article, t *transformer) error {
	html, body := newDocument("Tables: " + article.Title())

	for _, wrap := range t.tables {
		div := element("div")
		div.SetAttr("class", "table")
		if id := wrap.Attr("id"); id != "" {
			div.SetAttr("id", id)
		}

		heading := element("h3")
		if label := wrap.Child("label"); label != nil {
			heading.Kids = append(heading.Kids, textNode(label.FlatText()))
		}

		if caption := wrap.Child("caption"); caption != nil {
			if len(heading.Kids) > 0 {
				heading.Kids = append(heading.Kids, textNode(". "))
			}

			heading.Kids = append(heading.Kids, textNode(caption.FlatText()))
		}

		if len(heading.Kids) > 0 {
			div.Kids = append(div.Kids, heading)
		}

		if table := wrap.Child("table"); table != nil {
			div.Kids = append(div.Kids, copyTable(t, table))
		}

		if foot := wrap.Child("table-wrap-foot"); foot != nil {
			footPara := element("p", textNode(foot.FlatText()))
			div.Kids = append(div.Kids, footPara)
		}

		body.Kids = append(body.Kids, div)
	}

	return writeDocument(dir, "tables.xml", html)
}

// copyTable keeps the XHTML table elements and runs everything inside the
// cells through the emphasis transform.
func copyTable(t *transformer, node *jats.Node) *jats.Node {
	if node.IsText() {
		return textNode(node.Text)
	}

	switch node.Name {
	case "table", "thead", "tbody", "tfoot", "tr", "th", "td", "col", "colgroup":
		copied := element(node.Name)
		for _, attr := range node.Attrs {
			copied.SetAttr(attr.Name.Local, attr.Value)
		}

		for _, kid := range node.Kids {
			copied.Kids = append(copied.Kids, copyTable(t, kid))
		}

		return copied

	default:
		wrapper := element("span")
		wrapper.Kids = t.transform(node, 0)
		if len(wrapper.Kids) == 1 {
			return wrapper.Kids[0]
		}

		return wrapper
	}
}
