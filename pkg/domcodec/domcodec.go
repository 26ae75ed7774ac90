// Package domcodec reads parsed go-xmldom documents into bound
// values. It is a read-only bridge: a DOM element is converted into
// the xbind value model and deserialized from there, so everything
// the value backend supports works on DOM input too.
package domcodec

import (
	"fmt"
	"io"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/xbind/xbind/pkg/xbind"
)

// DOM node type codes.
const (
	nodeElement = 1
	nodeText    = 3
	nodeCData   = 4
	nodePI      = 7
	nodeComment = 8
)

// Decode parses one document from r and deserializes its root element
// into target.
func Decode(r io.Reader, target any) error {
	doc, err := xmldom.Decode(r)
	if err != nil {
		return fmt.Errorf("domcodec: %w", err)
	}
	return FromDocument(doc, target)
}

// FromDocument deserializes the document's root element into target.
func FromDocument(doc xmldom.Document, target any) error {
	if doc == nil {
		return fmt.Errorf("domcodec: nil document: %w", xbind.ErrMissingData)
	}
	root := doc.DocumentElement()
	if root == nil {
		return fmt.Errorf("domcodec: no root element: %w", xbind.ErrMissingData)
	}
	v, err := ElementValue(root)
	if err != nil {
		return err
	}
	return xbind.FromValue(v, target)
}

// ElementValue converts one DOM element into the value model.
func ElementValue(el xmldom.Element) (xbind.Element, error) {
	out := xbind.Element{Name: xbind.NameNS(string(el.LocalName()), xbind.Namespace(el.NamespaceURI()))}

	attrs := el.Attributes()
	if attrs != nil {
		for i := uint(0); i < attrs.Length(); i++ {
			attr := attrs.Item(i)
			if attr == nil || isNamespaceDecl(string(attr.NamespaceURI()), string(attr.LocalName())) {
				continue
			}
			out.Attrs = append(out.Attrs, xbind.Attribute{
				Name:  xbind.NameNS(string(attr.LocalName()), attrNamespace(string(attr.NamespaceURI()))),
				Value: string(attr.NodeValue()),
			})
		}
	}

	// ChildNodes carries every child in document order but types them
	// as plain nodes; Children carries the same elements in the same
	// order with the element interface. Walking both keeps mixed
	// content ordered without down-casting.
	elems := el.Children()
	nodes := el.ChildNodes()
	var nextElem uint
	for i := uint(0); i < nodes.Length(); i++ {
		node := nodes.Item(i)
		if node == nil {
			continue
		}
		switch node.NodeType() {
		case nodeElement:
			child := elems.Item(nextElem)
			nextElem++
			if child == nil {
				continue
			}
			cv, err := ElementValue(child)
			if err != nil {
				return out, err
			}
			out.Children = append(out.Children, cv)
		case nodeText:
			out.Children = append(out.Children, xbind.Text(node.NodeValue()))
		case nodeCData:
			out.Children = append(out.Children, xbind.CData(node.NodeValue()))
		case nodePI:
			out.Children = append(out.Children, xbind.PI{
				Target:  string(node.LocalName()),
				Content: string(node.NodeValue()),
			})
		case nodeComment:
			out.Children = append(out.Children, xbind.Comment(node.NodeValue()))
		}
	}
	return out, nil
}

func attrNamespace(ns string) xbind.Namespace {
	// The DOM reports the reserved xml prefix either resolved or raw
	// depending on the document.
	if ns == "xml" {
		return xbind.NamespaceXML
	}
	return xbind.Namespace(ns)
}

// isNamespaceDecl filters xmlns declarations, which the DOM keeps as
// ordinary attributes.
func isNamespaceDecl(ns, local string) bool {
	return ns == string(xbind.NamespaceXMLNS) || ns == "xmlns" || local == "xmlns"
}
