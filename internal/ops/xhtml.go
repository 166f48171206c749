package ops

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"

	"github.com/openaccess-epub/oaepub/internal/jats"
	"github.com/samber/oops"
)

const xhtmlDoctype = `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd">`

// newDocument builds the shared XHTML shell: html/head with title, the
// article stylesheet link, and an empty body returned for content.
func newDocument(title string) (*jats.Node, *jats.Node) {
	titleNode := &jats.Node{Name: "title", Kids: []*jats.Node{{Text: title}}}

	link := &jats.Node{Name: "link"}
	link.SetAttr("rel", "stylesheet")
	link.SetAttr("href", "css/article.css")
	link.SetAttr("type", "text/css")

	meta := &jats.Node{Name: "meta"}
	meta.SetAttr("http-equiv", "Content-Type")
	meta.SetAttr("content", "application/xhtml+xml")
	meta.SetAttr("charset", "utf-8")

	head := &jats.Node{Name: "head", Kids: []*jats.Node{titleNode, link, meta}}
	body := &jats.Node{Name: "body"}

	html := &jats.Node{Name: "html", Kids: []*jats.Node{head, body}}
	html.SetAttr("xmlns", "http://www.w3.org/1999/xhtml")
	html.SetAttr("xml:lang", "en-US")

	return html, body
}

// writeDocument serializes an XHTML tree into the OPS directory.
func writeDocument(dir, name string, html *jats.Node) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(xhtmlDoctype)
	buf.WriteByte('\n')
	renderNode(&buf, html)
	buf.WriteByte('\n')

	path := filepath.Join(dir, "OPS", name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return oops.
			Code("CONTENT_WRITE_ERROR").
			With("path", path).
			Wrapf(err, "writing OPS document")
	}

	return nil
}

func renderNode(buf *bytes.Buffer, node *jats.Node) {
	if node.IsText() {
		escape(buf, node.Text)
		return
	}

	buf.WriteByte('<')
	buf.WriteString(node.Name)

	for _, attr := range node.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(attrName(attr.Name))
		buf.WriteString(`="`)
		escape(buf, attr.Value)
		buf.WriteByte('"')
	}

	if len(node.Kids) == 0 {
		buf.WriteString("/>")
		return
	}

	buf.WriteByte('>')
	for _, kid := range node.Kids {
		renderNode(buf, kid)
	}

	buf.WriteString("</")
	buf.WriteString(node.Name)
	buf.WriteByte('>')
}

func attrName(name xml.Name) string {
	// xml:lang and friends come back with the namespace expanded; fold the
	// known ones back to their prefixed form.
	switch name.Space {
	case "xml", "http://www.w3.org/XML/1998/namespace":
		return "xml:" + name.Local
	default:
		return name.Local
	}
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(buf *bytes.Buffer, text string) {
	_, _ = textEscaper.WriteString(buf, text)
}

// textNode wraps a string for tree building.
func textNode(text string) *jats.Node {
	return &jats.Node{Text: text}
}

func element(name string, kids ...*jats.Node) *jats.Node {
	return &jats.Node{Name: name, Kids: kids}
}

// imageFileName maps a figure's xlink:href to the file name it is cached
// and packaged under. Publisher hrefs are often DOI-style resource names
// rather than URLs; those keep their full identity with the separators
// folded to underscores.
func imageFileName(href string) string {
	base := strings.TrimSpace(href)
	base = strings.TrimPrefix(base, "info:doi/")

	if strings.Contains(base, "://") {
		if idx := strings.LastIndex(base, "/"); idx >= 0 {
			base = base[idx+1:]
		}
	} else {
		base = strings.ReplaceAll(base, "/", "_")
		base = strings.ReplaceAll(base, ":", "_")
	}

	if !isImageExt(filepath.Ext(base)) {
		base += ".png"
	}

	return base
}

func isImageExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".tif", ".tiff":
		return true
	default:
		return false
	}
}
