package xmlcodec

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xbind/xbind/pkg/xbind"
)

// Decoder reads XML text into bound values. The whole token stream is
// parsed into the xbind value model up front; deserialization then
// runs against the value tree, which gives variant probing and
// non-consuming match attempts on any input without re-reading it.
//
// CDATA sections surface as text; encoding/xml merges them into
// character data while tokenizing.
type Decoder struct {
	dec *xml.Decoder
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: xml.NewDecoder(r)}
}

// Decode reads one document into target. Targets implementing
// xbind.Deserializable, such as xbind.Document, are handed the full
// top-level sequence including any declaration, comments and
// processing instructions. Every other target receives the document's
// root element.
func (d *Decoder) Decode(target any) error {
	doc, err := d.parse()
	if err != nil {
		return err
	}
	if _, ok := target.(xbind.Deserializable); ok {
		return xbind.FromValue(doc, target)
	}
	root, err := documentRoot(doc)
	if err != nil {
		return err
	}
	return xbind.FromValue(root, target)
}

// parse consumes the token stream into a top-level value sequence.
func (d *Decoder) parse() (xbind.Seq, error) {
	var items xbind.Seq
	for {
		tok, err := d.dec.Token()
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return nil, err
		}
		v, err := d.node(tok)
		if err != nil {
			return nil, err
		}
		if v != nil {
			items = append(items, v)
		}
	}
}

func (d *Decoder) node(tok xml.Token) (xbind.Value, error) {
	switch t := tok.(type) {
	case xml.StartElement:
		return d.element(t)
	case xml.CharData:
		return xbind.Text(t), nil
	case xml.Comment:
		return xbind.Comment(t), nil
	case xml.ProcInst:
		if t.Target == "xml" {
			return parseDecl(string(t.Inst)), nil
		}
		return xbind.PI{Target: t.Target, Content: string(t.Inst)}, nil
	case xml.Directive:
		s := strings.TrimSpace(string(t))
		if rest, ok := strings.CutPrefix(s, "DOCTYPE"); ok {
			return xbind.Doctype(strings.TrimSpace(rest)), nil
		}
		return xbind.Doctype(s), nil
	case xml.EndElement:
		return nil, fmt.Errorf("xmlcodec: unexpected end tag </%s>", t.Name.Local)
	default:
		return nil, nil
	}
}

func (d *Decoder) element(start xml.StartElement) (xbind.Value, error) {
	el := xbind.Element{Name: nameOf(start.Name)}
	for _, a := range start.Attr {
		if isNamespaceDecl(a.Name) {
			continue
		}
		el.Attrs = append(el.Attrs, xbind.Attribute{Name: nameOf(a.Name), Value: a.Value})
	}
	for {
		tok, err := d.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("xmlcodec: unclosed element <%s>", start.Name.Local)
			}
			return nil, err
		}
		if _, done := tok.(xml.EndElement); done {
			return el, nil
		}
		v, err := d.node(tok)
		if err != nil {
			return nil, err
		}
		if v != nil {
			el.Children = append(el.Children, v)
		}
	}
}

// nameOf maps a resolved encoding/xml name into an expanded name. The
// tokenizer leaves the reserved xml prefix unresolved.
func nameOf(n xml.Name) xbind.ExpandedName {
	if n.Space == "xml" {
		return xbind.NameNS(n.Local, xbind.NamespaceXML)
	}
	return xbind.NameNS(n.Local, xbind.Namespace(n.Space))
}

func isNamespaceDecl(n xml.Name) bool {
	if n.Local == "xmlns" && n.Space == "" {
		return true
	}
	return n.Space == "xmlns" || n.Space == string(xbind.NamespaceXMLNS)
}

// documentRoot finds the root element among the top-level items.
func documentRoot(doc xbind.Seq) (xbind.Value, error) {
	for _, item := range doc {
		switch v := item.(type) {
		case xbind.Element:
			return v, nil
		case xbind.Text:
			if !xbind.IsWhitespace(string(v)) {
				return nil, fmt.Errorf("xmlcodec: text outside root element: %w", xbind.ErrUnknownChild)
			}
		case xbind.Decl, xbind.Comment, xbind.PI, xbind.Doctype:
			// Document prolog.
		default:
			return nil, fmt.Errorf("xmlcodec: unexpected %s outside root element: %w", item.Kind(), xbind.ErrUnknownChild)
		}
	}
	return nil, fmt.Errorf("xmlcodec: no root element: %w", xbind.ErrMissingData)
}

// parseDecl pulls the pseudo-attributes out of an XML declaration.
func parseDecl(inst string) xbind.Decl {
	return xbind.Decl{
		Version:    declAttr(inst, "version"),
		Encoding:   declAttr(inst, "encoding"),
		Standalone: declAttr(inst, "standalone"),
	}
}

func declAttr(inst, key string) string {
	rest := inst
	for {
		i := strings.Index(rest, key)
		if i < 0 {
			return ""
		}
		rest = rest[i+len(key):]
		rest = strings.TrimLeft(rest, " \t\r\n")
		if !strings.HasPrefix(rest, "=") {
			continue
		}
		rest = strings.TrimLeft(rest[1:], " \t\r\n")
		if len(rest) < 2 {
			return ""
		}
		quote := rest[0]
		if quote != '"' && quote != '\'' {
			continue
		}
		end := strings.IndexByte(rest[1:], quote)
		if end < 0 {
			return ""
		}
		return rest[1 : 1+end]
	}
}
