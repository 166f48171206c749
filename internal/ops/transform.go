package ops

import (
	"fmt"
	"strings"

	"github.com/openaccess-epub/oaepub/internal/jats"
)

// spanStyles maps JPTS emphasis elements without a direct XHTML equivalent
// onto styled spans.
var spanStyles = map[string]string{
	"monospace": "font-family:monospace",
	"overline":  "text-decoration:overline",
	"sc":        "font-variant:small-caps",
	"strike":    "text-decoration:line-through",
	"underline": "text-decoration:underline",
}

// ImageRef is a figure graphic encountered during the transform. FileName is
// the name the image is packaged under in OPS/images.
type ImageRef struct {
	SourceHref string
	FileName   string
}

type transformer struct {
	images []ImageRef
	tables []*jats.Node
}

// transform converts a JPTS element into its XHTML replacement nodes. depth
// counts enclosing <sec> elements and drives heading levels.
func (t *transformer) transform(node *jats.Node, depth int) []*jats.Node {
	if node.IsText() {
		return []*jats.Node{textNode(node.Text)}
	}

	switch node.Name {
	case "sec":
		div := element("div")
		if id := node.Attr("id"); id != "" {
			div.SetAttr("id", id)
		}

		div.Kids = t.transformKids(node, depth+1)

		return []*jats.Node{div}

	case "title":
		heading := element("h" + fmt.Sprint(headingLevel(depth)))
		heading.Kids = t.transformKids(node, depth)

		return []*jats.Node{heading}

	case "p":
		para := element("p")
		para.Kids = t.transformKids(node, depth)

		return []*jats.Node{para}

	case "italic":
		return []*jats.Node{t.renamed(node, "i", depth)}

	case "bold":
		return []*jats.Node{t.renamed(node, "b", depth)}

	case "monospace", "overline", "sc", "strike", "underline":
		span := element("span")
		span.SetAttr("style", spanStyles[node.Name])
		span.Kids = t.transformKids(node, depth)

		return []*jats.Node{span}

	case "sup", "sub":
		return []*jats.Node{t.renamed(node, node.Name, depth)}

	case "break":
		return []*jats.Node{element("br")}

	case "xref":
		return []*jats.Node{t.xref(node, depth)}

	case "ext-link", "uri":
		anchor := element("a")
		href := node.Attr("href")
		if href == "" {
			href = node.FlatText()
		}

		anchor.SetAttr("href", href)
		anchor.Kids = t.transformKids(node, depth)

		return []*jats.Node{anchor}

	case "email":
		anchor := element("a")
		anchor.SetAttr("href", "mailto:"+node.FlatText())
		anchor.Kids = t.transformKids(node, depth)

		return []*jats.Node{anchor}

	case "fig":
		return []*jats.Node{t.figure(node, depth)}

	case "graphic", "inline-graphic":
		return []*jats.Node{t.graphic(node)}

	case "table-wrap":
		return []*jats.Node{t.tableWrap(node)}

	case "list":
		listName := "ul"
		if node.Attr("list-type") == "order" {
			listName = "ol"
		}

		list := element(listName)
		for _, item := range node.Children("list-item") {
			li := element("li")
			li.Kids = t.transformKids(item, depth)
			list.Kids = append(list.Kids, li)
		}

		return []*jats.Node{list}

	case "disp-quote":
		quote := element("blockquote")
		quote.Kids = t.transformKids(node, depth)

		return []*jats.Node{quote}

	case "disp-formula":
		formula := element("div")
		formula.SetAttr("class", "formula")
		if id := node.Attr("id"); id != "" {
			formula.SetAttr("id", id)
		}

		formula.Kids = t.transformKids(node, depth)

		return []*jats.Node{formula}

	case "named-content", "styled-content":
		span := element("span")
		span.Kids = t.transformKids(node, depth)

		return []*jats.Node{span}

	default:
		// Unknown structure elements are unwrapped so their content still
		// reaches the reader as valid XHTML.
		return t.transformKids(node, depth)
	}
}

func (t *transformer) transformKids(node *jats.Node, depth int) []*jats.Node {
	var kids []*jats.Node
	for _, kid := range node.Kids {
		kids = append(kids, t.transform(kid, depth)...)
	}

	return kids
}

func (t *transformer) renamed(node *jats.Node, name string, depth int) *jats.Node {
	renamed := element(name)
	renamed.Kids = t.transformKids(node, depth)

	return renamed
}

func headingLevel(depth int) int {
	level := depth + 1
	if level < 2 {
		level = 2
	}

	if level > 6 {
		level = 6
	}

	return level
}

func (t *transformer) xref(node *jats.Node, depth int) *jats.Node {
	anchor := element("a")
	rid := node.Attr("rid")

	switch node.Attr("ref-type") {
	case "bibr":
		anchor.SetAttr("href", "biblio.xml#"+rid)
	case "table":
		anchor.SetAttr("href", "tables.xml#"+rid)
	case "aff", "corresp":
		anchor.SetAttr("href", "synop.xml#"+rid)
	default:
		anchor.SetAttr("href", "#"+rid)
	}

	anchor.Kids = t.transformKids(node, depth)
	if len(anchor.Kids) == 0 {
		anchor.Kids = []*jats.Node{textNode(rid)}
	}

	return anchor
}

func (t *transformer) graphic(node *jats.Node) *jats.Node {
	href := node.Attr("href")
	fileName := imageFileName(href)
	t.images = append(t.images, ImageRef{SourceHref: href, FileName: fileName})

	img := element("img")
	img.SetAttr("src", "images/"+fileName)
	img.SetAttr("alt", fileName)

	return img
}

func (t *transformer) figure(node *jats.Node, depth int) *jats.Node {
	div := element("div")
	div.SetAttr("class", "figure")
	if id := node.Attr("id"); id != "" {
		div.SetAttr("id", id)
	}

	for _, graphic := range node.Children("graphic") {
		div.Kids = append(div.Kids, t.graphic(graphic))
	}

	caption := element("div")
	caption.SetAttr("class", "caption")
	if label := node.Child("label"); label != nil {
		bold := element("b", textNode(label.FlatText()+". "))
		caption.Kids = append(caption.Kids, bold)
	}

	if figCaption := node.Child("caption"); figCaption != nil {
		caption.Kids = append(caption.Kids, t.transformKids(figCaption, depth)...)
	}

	if len(caption.Kids) > 0 {
		div.Kids = append(div.Kids, caption)
	}

	return div
}

// tableWrap pulls the table out to tables.xml and leaves a labeled link
// behind in the main document.
func (t *transformer) tableWrap(node *jats.Node) *jats.Node {
	t.tables = append(t.tables, node)

	div := element("div")
	div.SetAttr("class", "table-link")
	id := node.Attr("id")

	label := "Table"
	if labelNode := node.Child("label"); labelNode != nil {
		label = labelNode.FlatText()
	}

	anchor := element("a", textNode(label))
	anchor.SetAttr("href", "tables.xml#"+id)
	div.Kids = append(div.Kids, anchor)

	if caption := node.Child("caption"); caption != nil {
		captionPara := element("p", textNode(strings.TrimSpace(caption.FlatText())))
		div.Kids = append(div.Kids, captionPara)
	}

	return div
}
