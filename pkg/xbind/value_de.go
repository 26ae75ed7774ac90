package xbind

// NewValueDeserializer returns a Deserializer positioned at v. It is
// the read half of the Value model's backend role.
func NewValueDeserializer(v Value) Deserializer {
	return &valueDeserializer{value: v}
}

// valueDeserializer reads one Value.
type valueDeserializer struct {
	value Value
}

func (d *valueDeserializer) DeserializeAny(v Visitor) error {
	switch val := d.value.(type) {
	case nil, None:
		return v.VisitNone()
	case Text:
		return v.VisitText(string(val))
	case CData:
		return v.VisitCData(string(val))
	case Comment:
		return v.VisitComment(string(val))
	case Doctype:
		return v.VisitDoctype(string(val))
	case PI:
		return v.VisitPI(val.Target, val.Content)
	case Decl:
		return v.VisitDecl(val.Version, val.Encoding, val.Standalone)
	case Element:
		return v.VisitElement(&valueElementAccess{elem: val})
	case Seq:
		return v.VisitSeq(&valueSeqAccess{items: val})
	default:
		return NewUnexpectedKindError(d.value.Kind(), v.Expecting())
	}
}

func (d *valueDeserializer) DeserializeSeq(v Visitor) error {
	switch val := d.value.(type) {
	case nil, None:
		return v.VisitSeq(&valueSeqAccess{})
	case Seq:
		return v.VisitSeq(&valueSeqAccess{items: val})
	default:
		return v.VisitSeq(&valueSeqAccess{items: []Value{d.value}})
	}
}

// valueSeqAccess is a cursor over sibling values. Failed attempts
// rewind the cursor, which is what gives the non-consuming pull
// contract.
type valueSeqAccess struct {
	items []Value
	pos   int
}

func (a *valueSeqAccess) NextElement(target Deserializable) (bool, error) {
	if a.pos >= len(a.items) {
		return false, nil
	}
	save := a.pos
	item := a.items[a.pos]
	a.pos++
	if err := target.DeserializeXML(&valueDeserializer{value: item}); err != nil {
		a.pos = save
		return false, err
	}
	return true, nil
}

func (a *valueSeqAccess) NextElementSeq(target Deserializable) (bool, error) {
	if a.pos >= len(a.items) {
		return false, nil
	}
	save := a.pos
	if err := target.DeserializeXML(&valueItemDeserializer{access: a}); err != nil {
		a.pos = save
		return false, err
	}
	return true, nil
}

// valueItemDeserializer is handed to NextElementSeq targets. Plain
// deserialization takes the one item under the cursor; sequence
// deserialization shares the cursor so the target may consume
// further siblings.
type valueItemDeserializer struct {
	access *valueSeqAccess
}

func (d *valueItemDeserializer) DeserializeAny(v Visitor) error {
	item := d.access.items[d.access.pos]
	d.access.pos++
	return (&valueDeserializer{value: item}).DeserializeAny(v)
}

func (d *valueItemDeserializer) DeserializeSeq(v Visitor) error {
	return v.VisitSeq(d.access)
}

// valueElementAccess is the ElementAccess view of an Element value.
type valueElementAccess struct {
	elem    Element
	attrPos int
}

func (a *valueElementAccess) Name() ExpandedName {
	return a.elem.Name
}

func (a *valueElementAccess) NextAttribute(target Deserializable) (bool, error) {
	if a.attrPos >= len(a.elem.Attrs) {
		return false, nil
	}
	attr := a.elem.Attrs[a.attrPos]
	if err := target.DeserializeXML(&valueAttrDeserializer{attr: attr}); err != nil {
		return false, err
	}
	a.attrPos++
	return true, nil
}

func (a *valueElementAccess) Children() (SeqAccess, error) {
	return &valueSeqAccess{items: a.elem.Children}, nil
}

func (a *valueElementAccess) NamespaceContext() NamespaceContext {
	return reservedNamespaceContext{}
}

// valueAttrDeserializer reads one Attribute.
type valueAttrDeserializer struct {
	attr Attribute
}

func (d *valueAttrDeserializer) DeserializeAny(v Visitor) error {
	return v.VisitAttribute(valueAttrAccess{attr: d.attr})
}

func (d *valueAttrDeserializer) DeserializeSeq(v Visitor) error {
	return d.DeserializeAny(v)
}

// valueAttrAccess is the AttributeAccess view of an Attribute.
type valueAttrAccess struct {
	attr Attribute
}

func (a valueAttrAccess) Name() ExpandedName { return a.attr.Name }
func (a valueAttrAccess) Value() string      { return a.attr.Value }

func (a valueAttrAccess) NamespaceContext() NamespaceContext {
	return reservedNamespaceContext{}
}

// reservedNamespaceContext knows only the prefixes every document has
// in scope. The Value model carries no prefix bindings of its own.
type reservedNamespaceContext struct{}

func (reservedNamespaceContext) ResolvePrefix(prefix Prefix) (Namespace, bool) {
	switch prefix {
	case PrefixXML:
		return NamespaceXML, true
	case PrefixXMLNS:
		return NamespaceXMLNS, true
	default:
		return NamespaceNone, false
	}
}

func (reservedNamespaceContext) LookupPrefix(ns Namespace) (Prefix, bool) {
	switch ns {
	case NamespaceXML:
		return PrefixXML, true
	case NamespaceXMLNS:
		return PrefixXMLNS, true
	default:
		return PrefixDefault, false
	}
}

// CaptureValue reads whatever the deserializer is positioned at into
// a Value, verbatim. It is how schema-less capture fields work.
func CaptureValue(d Deserializer) (Value, error) {
	var v captureVisitor
	if err := d.DeserializeAny(&v); err != nil {
		return nil, err
	}
	if v.out == nil {
		return None{}, nil
	}
	return v.out, nil
}

// captureVisitor accepts every node kind and records it as a Value.
type captureVisitor struct {
	out Value
}

func (v *captureVisitor) Expecting() string { return "any value" }

func (v *captureVisitor) VisitText(value string) error {
	v.out = Text(value)
	return nil
}

func (v *captureVisitor) VisitCData(value string) error {
	v.out = CData(value)
	return nil
}

func (v *captureVisitor) VisitComment(value string) error {
	v.out = Comment(value)
	return nil
}

func (v *captureVisitor) VisitDoctype(value string) error {
	v.out = Doctype(value)
	return nil
}

func (v *captureVisitor) VisitPI(target, content string) error {
	v.out = PI{Target: target, Content: content}
	return nil
}

func (v *captureVisitor) VisitDecl(version, encoding, standalone string) error {
	v.out = Decl{Version: version, Encoding: encoding, Standalone: standalone}
	return nil
}

func (v *captureVisitor) VisitNone() error {
	v.out = None{}
	return nil
}

func (v *captureVisitor) VisitAttribute(access AttributeAccess) error {
	// A standalone attribute has no Value variant of its own and is
	// captured as its text value.
	v.out = Text(access.Value())
	return nil
}

func (v *captureVisitor) VisitElement(access ElementAccess) error {
	elem := Element{Name: access.Name()}
	for {
		var attr Attribute
		ok, err := access.NextAttribute(attrCapture{out: &attr})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		elem.Attrs = append(elem.Attrs, attr)
	}
	children, err := access.Children()
	if err != nil {
		return err
	}
	for {
		var child Value
		ok, err := children.NextElement(valueCapture{out: &child})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		elem.Children = append(elem.Children, child)
	}
	v.out = elem
	return nil
}

func (v *captureVisitor) VisitSeq(access SeqAccess) error {
	var items Seq
	for {
		var item Value
		ok, err := access.NextElement(valueCapture{out: &item})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		items = append(items, item)
	}
	v.out = items
	return nil
}

// Each variant also deserializes itself, by capturing the value at
// the cursor and requiring its own kind.

func captureAs[T Value](d Deserializer, out *T, expecting string) error {
	v, err := CaptureValue(d)
	if err != nil {
		return err
	}
	typed, ok := v.(T)
	if !ok {
		return NewUnexpectedKindError(v.Kind(), expecting)
	}
	*out = typed
	return nil
}

func (t *Text) DeserializeXML(d Deserializer) error {
	return captureAs(d, t, "text")
}

func (c *CData) DeserializeXML(d Deserializer) error {
	return captureAs(d, c, "a CDATA section")
}

func (c *Comment) DeserializeXML(d Deserializer) error {
	return captureAs(d, c, "a comment")
}

func (dt *Doctype) DeserializeXML(d Deserializer) error {
	return captureAs(d, dt, "a doctype")
}

func (p *PI) DeserializeXML(d Deserializer) error {
	return captureAs(d, p, "a processing instruction")
}

func (dc *Decl) DeserializeXML(d Deserializer) error {
	return captureAs(d, dc, "a declaration")
}

func (e *Element) DeserializeXML(d Deserializer) error {
	return captureAs(d, e, "an element")
}

func (n *None) DeserializeXML(d Deserializer) error {
	return captureAs(d, n, "nothing")
}

func (q *Seq) DeserializeXML(d Deserializer) error {
	var v captureVisitor
	if err := d.DeserializeSeq(&v); err != nil {
		return err
	}
	seq, ok := v.out.(Seq)
	if !ok {
		return NewUnexpectedKindError(v.out.Kind(), "a sequence")
	}
	*q = seq
	return nil
}

// valueCapture is the Deserializable adapter for CaptureValue.
type valueCapture struct {
	out *Value
}

func (c valueCapture) DeserializeXML(d Deserializer) error {
	v, err := CaptureValue(d)
	if err != nil {
		return err
	}
	*c.out = v
	return nil
}

// attrCapture records one attribute's name and value.
type attrCapture struct {
	out *Attribute
}

func (c attrCapture) DeserializeXML(d Deserializer) error {
	return d.DeserializeAny(&attrCaptureVisitor{out: c.out})
}

type attrCaptureVisitor struct {
	UnimplementedVisitor
	out *Attribute
}

func (v *attrCaptureVisitor) Expecting() string { return "an attribute" }

func (v *attrCaptureVisitor) VisitAttribute(access AttributeAccess) error {
	*v.out = Attribute{Name: access.Name(), Value: access.Value()}
	return nil
}
