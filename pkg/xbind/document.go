package xbind

// Document wraps one root value with the surrounding document
// furniture: an optional XML declaration and any comments, processing
// instructions or doctype before and after the root.
type Document[T any] struct {
	// Decl is the XML declaration, if present.
	Decl *Decl

	// Prolog holds the misc nodes before the root.
	Prolog []Value

	// Root is the document's one root value.
	Root T

	// Epilog holds the misc nodes after the root.
	Epilog []Value
}

// NewDocument wraps root in a document with a standard declaration.
func NewDocument[T any](root T) *Document[T] {
	return &Document[T]{
		Decl: &Decl{Version: "1.0", Encoding: "UTF-8"},
		Root: root,
	}
}

// SerializeXML writes the declaration, prolog, root and epilog as one
// top-level sequence.
func (doc *Document[T]) SerializeXML(s Serializer) error {
	seq, err := s.SerializeSeq()
	if err != nil {
		return err
	}
	if doc.Decl != nil {
		if err := seq.SerializeElement(*doc.Decl); err != nil {
			return err
		}
	}
	for _, misc := range doc.Prolog {
		if err := seq.SerializeElement(misc); err != nil {
			return err
		}
	}
	if err := seq.SerializeElement(serializableFunc(func(inner Serializer) error {
		return Serialize(inner, doc.Root)
	})); err != nil {
		return err
	}
	for _, misc := range doc.Epilog {
		if err := seq.SerializeElement(misc); err != nil {
			return err
		}
	}
	return seq.End()
}

// DeserializeXML reads a whole document: leading declaration and misc
// nodes, the root value, then trailing misc nodes. Anything else left
// after the root is an unknown-child error.
func (doc *Document[T]) DeserializeXML(d Deserializer) error {
	return d.DeserializeSeq(&documentVisitor[T]{doc: doc})
}

type documentVisitor[T any] struct {
	UnimplementedVisitor
	doc *Document[T]
}

func (v *documentVisitor[T]) Expecting() string { return "a document" }

func (v *documentVisitor[T]) VisitSeq(access SeqAccess) error {
	doc := v.doc

	// Prolog: declaration and misc nodes, whitespace tolerated.
	for {
		if skipDocNoise(access) {
			continue
		}
		var decl Decl
		if ok, _ := access.NextElement(&decl); ok {
			doc.Decl = &decl
			continue
		}
		var misc Value
		if ok, _ := access.NextElement(miscCapture{out: &misc}); ok {
			doc.Prolog = append(doc.Prolog, misc)
			continue
		}
		break
	}

	// Root.
	ok, err := access.NextElementSeq(deserializableFunc(func(inner Deserializer) error {
		return Deserialize(inner, &doc.Root)
	}))
	if err != nil {
		return err
	}
	if !ok {
		return ErrMissingData
	}

	// Epilog: misc only.
	for {
		if skipDocNoise(access) {
			continue
		}
		var misc Value
		if ok, _ := access.NextElement(miscCapture{out: &misc}); ok {
			doc.Epilog = append(doc.Epilog, misc)
			continue
		}
		break
	}

	ok, err = access.NextElement(IgnoredAny{})
	if err != nil {
		return err
	}
	if ok {
		return ErrUnknownChild
	}
	return nil
}

func skipDocNoise(access SeqAccess) bool {
	var ws Whitespace
	ok, _ := access.NextElement(&ws)
	return ok
}

// miscCapture matches only comment, processing instruction and
// doctype nodes.
type miscCapture struct {
	out *Value
}

func (c miscCapture) DeserializeXML(d Deserializer) error {
	return d.DeserializeAny(&miscVisitor{out: c.out})
}

type miscVisitor struct {
	UnimplementedVisitor
	out *Value
}

func (v *miscVisitor) Expecting() string { return "a misc node" }

func (v *miscVisitor) VisitComment(value string) error {
	*v.out = Comment(value)
	return nil
}

func (v *miscVisitor) VisitPI(target, content string) error {
	*v.out = PI{Target: target, Content: content}
	return nil
}

func (v *miscVisitor) VisitDoctype(value string) error {
	*v.out = Doctype(value)
	return nil
}
