package xbind

// SerializeXML implementations forward each variant to the matching
// Serializer call, so a Value can be written to any backend.

func (t Text) SerializeXML(s Serializer) error {
	return s.SerializeText(string(t))
}

func (c CData) SerializeXML(s Serializer) error {
	return s.SerializeCData(string(c))
}

func (c Comment) SerializeXML(s Serializer) error {
	return s.SerializeComment(string(c))
}

func (d Doctype) SerializeXML(s Serializer) error {
	return s.SerializeDoctype(string(d))
}

func (p PI) SerializeXML(s Serializer) error {
	return s.SerializePI(p.Target, p.Content)
}

func (d Decl) SerializeXML(s Serializer) error {
	return s.SerializeDecl(d.Version, d.Encoding, d.Standalone)
}

func (None) SerializeXML(s Serializer) error {
	return s.SerializeNone()
}

func (e Element) SerializeXML(s Serializer) error {
	es, err := s.SerializeElement(e.Name)
	if err != nil {
		return err
	}
	if !e.PreferredPrefix.IsDefault() {
		if err := es.PreferPrefix(e.PreferredPrefix); err != nil {
			return err
		}
		policy := IncludePrefixPreferred
		if e.EnforcePrefix {
			policy = IncludePrefixAlways
		}
		if err := es.IncludePrefix(policy); err != nil {
			return err
		}
	}
	if len(e.Attrs) == 0 && len(e.Children) == 0 {
		return es.End()
	}
	as, err := es.SerializeAttributes()
	if err != nil {
		return err
	}
	for _, a := range e.Attrs {
		if err := as.SerializeAttribute(a); err != nil {
			return err
		}
	}
	if len(e.Children) == 0 {
		return as.End()
	}
	cs, err := as.SerializeChildren()
	if err != nil {
		return err
	}
	for _, c := range e.Children {
		if err := cs.SerializeElement(c); err != nil {
			return err
		}
	}
	return cs.End()
}

func (q Seq) SerializeXML(s Serializer) error {
	ss, err := s.SerializeSeq()
	if err != nil {
		return err
	}
	for _, v := range q {
		if err := ss.SerializeElement(v); err != nil {
			return err
		}
	}
	return ss.End()
}

// SerializeXMLAttribute writes the attribute through an
// AttributeSerializer.
func (a Attribute) SerializeXMLAttribute(s AttributeSerializer) error {
	vs, err := s.SerializeAttribute(a.Name)
	if err != nil {
		return err
	}
	return vs.End(a.Value)
}

// ToValue captures anything written to a Serializer as a Value. It is
// the write half of the Value model's backend role.
func ToValue(v Serializable) (Value, error) {
	var sink valueSink
	if err := v.SerializeXML(&sink); err != nil {
		return nil, err
	}
	if sink.out == nil {
		return None{}, nil
	}
	return sink.out, nil
}

// valueSink implements Serializer by recording the written value.
type valueSink struct {
	out Value
}

func (s *valueSink) SerializeText(value string) error {
	s.out = Text(value)
	return nil
}

func (s *valueSink) SerializeCData(value string) error {
	s.out = CData(value)
	return nil
}

func (s *valueSink) SerializeComment(value string) error {
	s.out = Comment(value)
	return nil
}

func (s *valueSink) SerializeDoctype(value string) error {
	s.out = Doctype(value)
	return nil
}

func (s *valueSink) SerializePI(target, content string) error {
	s.out = PI{Target: target, Content: content}
	return nil
}

func (s *valueSink) SerializeDecl(version, encoding, standalone string) error {
	s.out = Decl{Version: version, Encoding: encoding, Standalone: standalone}
	return nil
}

func (s *valueSink) SerializeNone() error {
	s.out = None{}
	return nil
}

func (s *valueSink) SerializeElement(name ExpandedName) (ElementSerializer, error) {
	return &valueElementSink{parent: s, elem: Element{Name: name}}, nil
}

func (s *valueSink) SerializeSeq() (SeqSerializer, error) {
	return &valueSeqSink{set: func(v Seq) { s.out = v }}, nil
}

// valueElementSink builds one Element and hands it back to the parent
// sink on End.
type valueElementSink struct {
	parent *valueSink
	elem   Element
}

func (e *valueElementSink) IncludePrefix(policy IncludePrefix) error {
	e.elem.EnforcePrefix = policy == IncludePrefixAlways
	return nil
}

func (e *valueElementSink) PreferPrefix(prefix Prefix) error {
	e.elem.PreferredPrefix = prefix
	return nil
}

func (e *valueElementSink) SerializeAttributes() (ElementAttributesSerializer, error) {
	return &valueAttrsSink{elem: e}, nil
}

func (e *valueElementSink) SerializeChildren() (SeqSerializer, error) {
	return &valueSeqSink{set: func(v Seq) {
		e.elem.Children = v
		e.parent.out = e.elem
	}}, nil
}

func (e *valueElementSink) End() error {
	e.parent.out = e.elem
	return nil
}

// valueAttrsSink collects attributes for a valueElementSink.
type valueAttrsSink struct {
	elem *valueElementSink
}

func (a *valueAttrsSink) SerializeAttribute(attr AttributeSerializable) error {
	return attr.SerializeXMLAttribute(&valueAttrWriter{attrs: &a.elem.elem.Attrs})
}

func (a *valueAttrsSink) SerializeChildren() (SeqSerializer, error) {
	return a.elem.SerializeChildren()
}

func (a *valueAttrsSink) End() error {
	return a.elem.End()
}

// valueAttrWriter implements AttributeSerializer onto an attribute
// slice.
type valueAttrWriter struct {
	attrs *[]Attribute
}

func (w *valueAttrWriter) SerializeAttribute(name ExpandedName) (AttributeValueSerializer, error) {
	return &valueAttrValue{attrs: w.attrs, name: name}, nil
}

type valueAttrValue struct {
	attrs *[]Attribute
	name  ExpandedName
}

func (v *valueAttrValue) IncludePrefix(IncludePrefix) error { return nil }
func (v *valueAttrValue) PreferPrefix(Prefix) error         { return nil }

func (v *valueAttrValue) End(value string) error {
	*v.attrs = append(*v.attrs, Attribute{Name: v.name, Value: value})
	return nil
}

// valueSeqSink collects a sequence of values and delivers it via set.
type valueSeqSink struct {
	items Seq
	set   func(Seq)
}

func (s *valueSeqSink) SerializeElement(v Serializable) error {
	var sub valueSink
	if err := v.SerializeXML(&sub); err != nil {
		return err
	}
	switch item := sub.out.(type) {
	case nil, None:
		// Nothing written.
	case Seq:
		s.items = append(s.items, item...)
	default:
		s.items = append(s.items, item)
	}
	return nil
}

func (s *valueSeqSink) End() error {
	s.set(s.items)
	return nil
}
