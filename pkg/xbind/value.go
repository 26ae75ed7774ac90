package xbind

import (
	"fmt"
	"strings"
)

// Value is the backend-agnostic tree representation. It is a closed
// set: Text, CData, Element, Seq, PI, Decl, Comment, Doctype and
// None. Every variant implements the protocol in both directions, so
// a Value can be captured verbatim inside an otherwise typed struct
// and round-tripped through any backend.
type Value interface {
	Serializable

	// Kind returns the node kind of the value.
	Kind() Kind

	isValue()
}

// Text is character data.
type Text string

// CData is a CDATA section.
type CData string

// Comment is a comment node.
type Comment string

// Doctype is a doctype declaration.
type Doctype string

// PI is a processing instruction.
type PI struct {
	Target  string
	Content string
}

// Decl is an XML declaration.
type Decl struct {
	Version    string
	Encoding   string
	Standalone string
}

// Attribute is one attribute of an Element.
type Attribute struct {
	Name  ExpandedName
	Value string
}

// Element is an element node with its attributes and children.
type Element struct {
	Name     ExpandedName
	Attrs    []Attribute
	Children []Value

	// PreferredPrefix is the prefix to bind for Name's namespace
	// when serializing, if any.
	PreferredPrefix Prefix

	// EnforcePrefix forces PreferredPrefix to be bound even when the
	// namespace is already in scope.
	EnforcePrefix bool
}

// Seq is a sequence of sibling values.
type Seq []Value

// None is the absence of a value.
type None struct{}

// Kind implementations.

func (Text) Kind() Kind    { return KindText }
func (CData) Kind() Kind   { return KindCData }
func (Comment) Kind() Kind { return KindComment }
func (Doctype) Kind() Kind { return KindDoctype }
func (PI) Kind() Kind      { return KindPI }
func (Decl) Kind() Kind    { return KindDecl }
func (Element) Kind() Kind { return KindElement }
func (Seq) Kind() Kind     { return KindSeq }
func (None) Kind() Kind    { return KindNone }

func (Text) isValue()    {}
func (CData) isValue()   {}
func (Comment) isValue() {}
func (Doctype) isValue() {}
func (PI) isValue()      {}
func (Decl) isValue()    {}
func (Element) isValue() {}
func (Seq) isValue()     {}
func (None) isValue()    {}

// NewElement creates an element with the given name and no content.
func NewElement(name ExpandedName) Element {
	return Element{Name: name}
}

// WithAttr returns a copy of the element with one attribute appended.
func (e Element) WithAttr(name ExpandedName, value string) Element {
	attrs := make([]Attribute, len(e.Attrs), len(e.Attrs)+1)
	copy(attrs, e.Attrs)
	e.Attrs = append(attrs, Attribute{Name: name, Value: value})
	return e
}

// WithChildren returns a copy of the element with children appended.
func (e Element) WithChildren(children ...Value) Element {
	cs := make([]Value, len(e.Children), len(e.Children)+len(children))
	copy(cs, e.Children)
	e.Children = append(cs, children...)
	return e
}

// Attr returns the value of the named attribute.
func (e Element) Attr(name ExpandedName) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Equal(name) {
			return a.Value, true
		}
	}
	return "", false
}

// TextContent concatenates all text and CDATA runs in the element's
// children, recursing into child elements.
func (e Element) TextContent() string {
	var b strings.Builder
	textContent(&b, e.Children)
	return b.String()
}

func textContent(b *strings.Builder, children []Value) {
	for _, c := range children {
		switch v := c.(type) {
		case Text:
			b.WriteString(string(v))
		case CData:
			b.WriteString(string(v))
		case Element:
			textContent(b, v.Children)
		case Seq:
			textContent(b, v)
		}
	}
}

// Equal reports deep equality of two values. Text and CDATA are
// distinct kinds and never compare equal to each other.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Text:
		return av == b.(Text)
	case CData:
		return av == b.(CData)
	case Comment:
		return av == b.(Comment)
	case Doctype:
		return av == b.(Doctype)
	case PI:
		return av == b.(PI)
	case Decl:
		return av == b.(Decl)
	case None:
		return true
	case Element:
		bv := b.(Element)
		if !av.Name.Equal(bv.Name) || len(av.Attrs) != len(bv.Attrs) || len(av.Children) != len(bv.Children) {
			return false
		}
		for i := range av.Attrs {
			if av.Attrs[i] != bv.Attrs[i] {
				return false
			}
		}
		for i := range av.Children {
			if !Equal(av.Children[i], bv.Children[i]) {
				return false
			}
		}
		return true
	case Seq:
		bv := b.(Seq)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders a compact debug form of the value. It is not valid
// markup; use a backend to produce real output.
func (e Element) String() string {
	return fmt.Sprintf("<%s attrs=%d children=%d>", e.Name, len(e.Attrs), len(e.Children))
}
