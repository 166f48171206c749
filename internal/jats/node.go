package jats

import (
	"encoding/xml"
	"strings"
)

// Node is a generic element tree for the parts of a JATS document that keep
// mixed content, such as <body>, <back>, and <abstract>. Text runs are nodes
// with an empty Name.
type Node struct {
	Name  string
	Attrs []xml.Attr
	Text  string
	Kids  []*Node
}

func (n *Node) IsText() bool {
	return n != nil && n.Name == ""
}

func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}

	for _, attr := range n.Attrs {
		if attr.Name.Local == name {
			return attr.Value
		}
	}

	return ""
}

func (n *Node) SetAttr(name, value string) {
	for i, attr := range n.Attrs {
		if attr.Name.Local == name {
			n.Attrs[i].Value = value
			return
		}
	}

	n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// FindAll returns every descendant element with the given name, in document
// order.
func (n *Node) FindAll(name string) []*Node {
	if n == nil {
		return nil
	}

	var found []*Node
	for _, kid := range n.Kids {
		if kid.Name == name {
			found = append(found, kid)
		}

		found = append(found, kid.FindAll(name)...)
	}

	return found
}

// Find returns the first descendant element with the given name.
func (n *Node) Find(name string) *Node {
	if n == nil {
		return nil
	}

	for _, kid := range n.Kids {
		if kid.Name == name {
			return kid
		}

		if match := kid.Find(name); match != nil {
			return match
		}
	}

	return nil
}

// Child returns the first direct child element with the given name.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}

	for _, kid := range n.Kids {
		if kid.Name == name {
			return kid
		}
	}

	return nil
}

// Children returns the direct child elements with the given name.
func (n *Node) Children(name string) []*Node {
	if n == nil {
		return nil
	}

	var kids []*Node
	for _, kid := range n.Kids {
		if kid.Name == name {
			kids = append(kids, kid)
		}
	}

	return kids
}

// FlatText joins every text run under the node, trimming layout whitespace
// introduced by XML formatting.
func (n *Node) FlatText() string {
	if n == nil {
		return ""
	}

	if n.IsText() {
		return n.Text
	}

	var builder strings.Builder
	n.appendText(&builder)

	return strings.TrimSpace(builder.String())
}

func (n *Node) appendText(builder *strings.Builder) {
	for _, kid := range n.Kids {
		if kid.IsText() {
			builder.WriteString(kid.Text)
			continue
		}

		kid.appendText(builder)
	}
}

// UnmarshalXML decodes arbitrary element content preserving the interleaving
// of text and child elements.
func (n *Node) UnmarshalXML(decoder *xml.Decoder, start xml.StartElement) error {
	n.Name = start.Name.Local
	n.Attrs = append([]xml.Attr(nil), start.Attr...)

	for {
		token, err := decoder.Token()
		if err != nil {
			return err
		}

		switch tok := token.(type) {
		case xml.StartElement:
			kid := &Node{}
			if err := kid.UnmarshalXML(decoder, tok); err != nil {
				return err
			}

			n.Kids = append(n.Kids, kid)

		case xml.CharData:
			text := string(tok)
			if strings.TrimSpace(text) == "" {
				continue
			}

			n.Kids = append(n.Kids, &Node{Text: text})

		case xml.EndElement:
			return nil
		}
	}
}
