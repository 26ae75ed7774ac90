// Package xmlcodec is a text backend for xbind built on encoding/xml
// token streams. The Encoder implements xbind.Serializer and the
// Decoder implements xbind.Deserializer, so any bound type can be
// written to and read from XML text without knowing about this
// package.
package xmlcodec

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/xbind/xbind/pkg/xbind"
)

// prefixBinding is one in-scope prefix declaration. Later bindings in
// a scope shadow earlier ones, inner scopes shadow outer ones.
type prefixBinding struct {
	prefix xbind.Prefix
	ns     xbind.Namespace
}

// Encoder writes serialized values as XML text. It implements
// xbind.Serializer.
//
// CDATA sections are written as escaped character data; encoding/xml
// has no CDATA token, and the two forms are equivalent to a reader.
type Encoder struct {
	enc    *xml.Encoder
	scopes [][]prefixBinding
	gen    int
}

// NewEncoder creates an encoder writing to w. The reserved xml and
// xmlns prefixes are pre-bound.
func NewEncoder(w io.Writer) *Encoder {
	e := &Encoder{enc: xml.NewEncoder(w)}
	e.scopes = append(e.scopes, []prefixBinding{
		{xbind.PrefixXML, xbind.NamespaceXML},
		{xbind.PrefixXMLNS, xbind.NamespaceXMLNS},
	})
	return e
}

// Indent sets the encoder to pretty-print with the given line prefix
// and indentation step.
func (e *Encoder) Indent(prefix, indent string) {
	e.enc.Indent(prefix, indent)
}

// Encode serializes v and flushes the underlying writer.
func (e *Encoder) Encode(v any) error {
	if err := xbind.Serialize(e, v); err != nil {
		return err
	}
	return e.enc.Flush()
}

// Flush writes any buffered output to the underlying writer.
func (e *Encoder) Flush() error {
	return e.enc.Flush()
}

func (e *Encoder) SerializeText(value string) error {
	return e.enc.EncodeToken(xml.CharData(value))
}

func (e *Encoder) SerializeCData(value string) error {
	return e.enc.EncodeToken(xml.CharData(value))
}

func (e *Encoder) SerializeComment(value string) error {
	return e.enc.EncodeToken(xml.Comment(value))
}

func (e *Encoder) SerializeDoctype(value string) error {
	return e.enc.EncodeToken(xml.Directive("DOCTYPE " + value))
}

func (e *Encoder) SerializePI(target, content string) error {
	return e.enc.EncodeToken(xml.ProcInst{Target: target, Inst: []byte(content)})
}

func (e *Encoder) SerializeDecl(version, encoding, standalone string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "version=%q", version)
	if encoding != "" {
		fmt.Fprintf(&b, " encoding=%q", encoding)
	}
	if standalone != "" {
		fmt.Fprintf(&b, " standalone=%q", standalone)
	}
	return e.enc.EncodeToken(xml.ProcInst{Target: "xml", Inst: []byte(b.String())})
}

func (e *Encoder) SerializeNone() error {
	return nil
}

func (e *Encoder) SerializeElement(name xbind.ExpandedName) (xbind.ElementSerializer, error) {
	return &elementEncoder{enc: e, name: name}, nil
}

func (e *Encoder) SerializeSeq() (xbind.SeqSerializer, error) {
	return seqEncoder{enc: e}, nil
}

// seqEncoder writes sequence items straight through; sibling values
// need no framing in text form.
type seqEncoder struct {
	enc *Encoder
}

func (s seqEncoder) SerializeElement(v xbind.Serializable) error {
	return v.SerializeXML(s.enc)
}

func (s seqEncoder) End() error {
	return nil
}

// elementEncoder stages one element. The start tag is held back until
// the attribute list is complete, since namespace declarations made
// while resolving attribute names land on the start tag itself.
type elementEncoder struct {
	enc     *Encoder
	name    xbind.ExpandedName
	policy  xbind.IncludePrefix
	prefix  xbind.Prefix
	scope   []prefixBinding
	start   xml.StartElement
	started bool
}

func (el *elementEncoder) IncludePrefix(policy xbind.IncludePrefix) error {
	if el.started {
		return fmt.Errorf("xmlcodec: prefix policy set after element content")
	}
	el.policy = policy
	return nil
}

func (el *elementEncoder) PreferPrefix(prefix xbind.Prefix) error {
	if el.started {
		return fmt.Errorf("xmlcodec: prefix set after element content")
	}
	el.prefix = prefix
	return nil
}

func (el *elementEncoder) SerializeAttributes() (xbind.ElementAttributesSerializer, error) {
	el.begin()
	return &attrsEncoder{el: el}, nil
}

func (el *elementEncoder) SerializeChildren() (xbind.SeqSerializer, error) {
	el.begin()
	if err := el.open(); err != nil {
		return nil, err
	}
	return &childrenEncoder{el: el}, nil
}

func (el *elementEncoder) End() error {
	el.begin()
	if err := el.open(); err != nil {
		return err
	}
	return el.close()
}

// begin resolves the element's own name, binding a prefix for its
// namespace if needed.
func (el *elementEncoder) begin() {
	if el.started {
		return
	}
	el.started = true
	// qname may bind prefixes, which append xmlns attributes to the
	// pending start tag; only the name is assigned here.
	el.start.Name = xml.Name{Local: el.qname()}
}

func (el *elementEncoder) qname() string {
	ns := el.name.Namespace
	if ns.IsNone() {
		// An inherited default namespace would capture this name;
		// undeclare it.
		if cur, ok := el.resolve(xbind.PrefixDefault); ok && !cur.IsNone() {
			el.bind(xbind.PrefixDefault, xbind.NamespaceNone)
		}
		return el.name.Local
	}
	if el.policy == xbind.IncludePrefixAlways && el.prefix != xbind.PrefixDefault {
		el.bind(el.prefix, ns)
		return string(el.prefix) + ":" + el.name.Local
	}
	if p, ok := el.lookup(ns, true); ok {
		if p == xbind.PrefixDefault {
			return el.name.Local
		}
		return string(p) + ":" + el.name.Local
	}
	if el.prefix != xbind.PrefixDefault {
		el.bind(el.prefix, ns)
		return string(el.prefix) + ":" + el.name.Local
	}
	el.bind(xbind.PrefixDefault, ns)
	return el.name.Local
}

// attrQName resolves an attribute name. Attributes never take the
// default namespace, so a namespaced attribute always gets a non-empty
// prefix, generating one when nothing suitable is in scope.
func (el *elementEncoder) attrQName(name xbind.ExpandedName, preferred xbind.Prefix, policy xbind.IncludePrefix) string {
	ns := name.Namespace
	if ns.IsNone() {
		return name.Local
	}
	if policy == xbind.IncludePrefixAlways && preferred != xbind.PrefixDefault {
		el.bind(preferred, ns)
		return string(preferred) + ":" + name.Local
	}
	if p, ok := el.lookup(ns, false); ok {
		return string(p) + ":" + name.Local
	}
	p := preferred
	if p == xbind.PrefixDefault {
		p = el.generatePrefix()
	}
	el.bind(p, ns)
	return string(p) + ":" + name.Local
}

func (el *elementEncoder) generatePrefix() xbind.Prefix {
	for {
		el.enc.gen++
		p := xbind.Prefix(fmt.Sprintf("ns%d", el.enc.gen))
		if _, taken := el.resolve(p); !taken {
			return p
		}
	}
}

// bind declares a prefix on this element's start tag.
func (el *elementEncoder) bind(prefix xbind.Prefix, ns xbind.Namespace) {
	el.scope = append(el.scope, prefixBinding{prefix, ns})
	attr := xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: string(ns)}
	if prefix != xbind.PrefixDefault {
		attr.Name.Local = "xmlns:" + string(prefix)
	}
	el.start.Attr = append(el.start.Attr, attr)
}

// resolve returns the namespace currently bound to prefix, consulting
// this element's pending bindings first.
func (el *elementEncoder) resolve(prefix xbind.Prefix) (xbind.Namespace, bool) {
	for i := len(el.scope) - 1; i >= 0; i-- {
		if el.scope[i].prefix == prefix {
			return el.scope[i].ns, true
		}
	}
	for s := len(el.enc.scopes) - 1; s >= 0; s-- {
		scope := el.enc.scopes[s]
		for i := len(scope) - 1; i >= 0; i-- {
			if scope[i].prefix == prefix {
				return scope[i].ns, true
			}
		}
	}
	return xbind.NamespaceNone, false
}

// lookup returns an in-scope prefix bound to ns, skipping bindings
// shadowed by inner scopes.
func (el *elementEncoder) lookup(ns xbind.Namespace, allowDefault bool) (xbind.Prefix, bool) {
	try := func(scope []prefixBinding) (xbind.Prefix, bool) {
		for i := len(scope) - 1; i >= 0; i-- {
			b := scope[i]
			if b.ns != ns {
				continue
			}
			if !allowDefault && b.prefix == xbind.PrefixDefault {
				continue
			}
			if cur, ok := el.resolve(b.prefix); ok && cur == ns {
				return b.prefix, true
			}
		}
		return xbind.PrefixDefault, false
	}
	if p, ok := try(el.scope); ok {
		return p, true
	}
	for s := len(el.enc.scopes) - 1; s >= 0; s-- {
		if p, ok := try(el.enc.scopes[s]); ok {
			return p, true
		}
	}
	return xbind.PrefixDefault, false
}

// open writes the buffered start tag and pushes the element's scope.
func (el *elementEncoder) open() error {
	el.enc.scopes = append(el.enc.scopes, el.scope)
	return el.enc.enc.EncodeToken(el.start)
}

func (el *elementEncoder) close() error {
	err := el.enc.enc.EncodeToken(xml.EndElement{Name: el.start.Name})
	el.enc.scopes = el.enc.scopes[:len(el.enc.scopes)-1]
	return err
}

// attrsEncoder collects the element's attributes onto the pending
// start tag.
type attrsEncoder struct {
	el *elementEncoder
}

func (a *attrsEncoder) SerializeAttribute(attr xbind.AttributeSerializable) error {
	return attr.SerializeXMLAttribute(attrWriter{el: a.el})
}

func (a *attrsEncoder) SerializeChildren() (xbind.SeqSerializer, error) {
	if err := a.el.open(); err != nil {
		return nil, err
	}
	return &childrenEncoder{el: a.el}, nil
}

func (a *attrsEncoder) End() error {
	if err := a.el.open(); err != nil {
		return err
	}
	return a.el.close()
}

// attrWriter implements xbind.AttributeSerializer onto one element.
type attrWriter struct {
	el *elementEncoder
}

func (w attrWriter) SerializeAttribute(name xbind.ExpandedName) (xbind.AttributeValueSerializer, error) {
	return &attrValueEncoder{el: w.el, name: name}, nil
}

type attrValueEncoder struct {
	el     *elementEncoder
	name   xbind.ExpandedName
	policy xbind.IncludePrefix
	prefix xbind.Prefix
}

func (v *attrValueEncoder) IncludePrefix(policy xbind.IncludePrefix) error {
	v.policy = policy
	return nil
}

func (v *attrValueEncoder) PreferPrefix(prefix xbind.Prefix) error {
	v.prefix = prefix
	return nil
}

func (v *attrValueEncoder) End(value string) error {
	qname := v.el.attrQName(v.name, v.prefix, v.policy)
	v.el.start.Attr = append(v.el.start.Attr, xml.Attr{
		Name:  xml.Name{Local: qname},
		Value: value,
	})
	return nil
}

// childrenEncoder writes the element's children and closes it.
type childrenEncoder struct {
	el *elementEncoder
}

func (c *childrenEncoder) SerializeElement(v xbind.Serializable) error {
	return v.SerializeXML(c.el.enc)
}

func (c *childrenEncoder) End() error {
	return c.el.close()
}
