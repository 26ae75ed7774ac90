package xbind

// Deserializer is a pull-style read source positioned at one value.
type Deserializer interface {
	// DeserializeAny dispatches to whichever visit method matches
	// the value at the current position.
	DeserializeAny(v Visitor) error

	// DeserializeSeq forces sequence interpretation. At the document
	// root the top-level content is implicitly a sequence of
	// siblings even when only one value is present.
	DeserializeSeq(v Visitor) error
}

// Visitor is the double-dispatch target of a Deserializer. One method
// per node kind; implementations embed UnimplementedVisitor and
// override only the kinds they accept.
type Visitor interface {
	// Expecting describes what the visitor accepts, for error
	// messages.
	Expecting() string

	VisitText(value string) error
	VisitCData(value string) error
	VisitElement(access ElementAccess) error
	VisitAttribute(access AttributeAccess) error
	VisitSeq(access SeqAccess) error
	VisitPI(target, content string) error
	VisitDecl(version, encoding, standalone string) error
	VisitComment(value string) error
	VisitDoctype(value string) error
	VisitNone() error
}

// UnimplementedVisitor rejects every node kind with an
// UnexpectedKindError carrying the Desc description. Embed it and
// override the methods for the kinds the visitor accepts.
type UnimplementedVisitor struct {
	// Desc is returned by Expecting and carried in rejection errors.
	Desc string
}

// Expecting returns the visitor's description.
func (u UnimplementedVisitor) Expecting() string { return u.Desc }

func (u UnimplementedVisitor) VisitText(string) error {
	return NewUnexpectedKindError(KindText, u.Desc)
}

func (u UnimplementedVisitor) VisitCData(string) error {
	return NewUnexpectedKindError(KindCData, u.Desc)
}

func (u UnimplementedVisitor) VisitElement(ElementAccess) error {
	return NewUnexpectedKindError(KindElement, u.Desc)
}

func (u UnimplementedVisitor) VisitAttribute(AttributeAccess) error {
	return NewUnexpectedKindError(KindAttribute, u.Desc)
}

func (u UnimplementedVisitor) VisitSeq(SeqAccess) error {
	return NewUnexpectedKindError(KindSeq, u.Desc)
}

func (u UnimplementedVisitor) VisitPI(string, string) error {
	return NewUnexpectedKindError(KindPI, u.Desc)
}

func (u UnimplementedVisitor) VisitDecl(string, string, string) error {
	return NewUnexpectedKindError(KindDecl, u.Desc)
}

func (u UnimplementedVisitor) VisitComment(string) error {
	return NewUnexpectedKindError(KindComment, u.Desc)
}

func (u UnimplementedVisitor) VisitDoctype(string) error {
	return NewUnexpectedKindError(KindDoctype, u.Desc)
}

func (u UnimplementedVisitor) VisitNone() error {
	return NewUnexpectedKindError(KindNone, u.Desc)
}

// SeqAccess pulls sibling values one at a time. The pull contract:
// (true, nil) means the target consumed the next item; (false, nil)
// means the stream is exhausted; a non-nil error means the next item
// exists but did not match, and the item was NOT consumed.
type SeqAccess interface {
	// NextElement deserializes the next item into target.
	NextElement(target Deserializable) (bool, error)

	// NextElementSeq is NextElement but permits the target to
	// consume the item with sequence semantics, pulling further
	// siblings from this access. Used to unwrap one level of root
	// grouping.
	NextElementSeq(target Deserializable) (bool, error)
}

// AttributesAccess pulls the attributes of one element, under the
// same non-consuming-failure contract as SeqAccess. Namespace
// declaration attributes are never surfaced.
type AttributesAccess interface {
	// NextAttribute deserializes the next attribute into target.
	NextAttribute(target Deserializable) (bool, error)
}

// ElementAccess is the view of one element handed to VisitElement.
type ElementAccess interface {
	AttributesAccess

	// Name returns the element's expanded name.
	Name() ExpandedName

	// Children opens the element's child list. May be called at most
	// once.
	Children() (SeqAccess, error)

	// NamespaceContext returns the prefix bindings in scope at this
	// element.
	NamespaceContext() NamespaceContext
}

// AttributeAccess is the view of one attribute handed to
// VisitAttribute.
type AttributeAccess interface {
	// Name returns the attribute's expanded name.
	Name() ExpandedName

	// Value returns the attribute's text value.
	Value() string

	// NamespaceContext returns the prefix bindings in scope at the
	// owning element.
	NamespaceContext() NamespaceContext
}

// NamespaceContext resolves prefixes at a point in the document.
type NamespaceContext interface {
	// ResolvePrefix returns the namespace bound to prefix, if any.
	ResolvePrefix(prefix Prefix) (Namespace, bool)

	// LookupPrefix returns a prefix bound to the namespace, if any.
	LookupPrefix(ns Namespace) (Prefix, bool)
}

// Deserializable is implemented by types that know how to read
// themselves from a Deserializer. Types that do not implement it are
// deserialized through their compiled binding instead.
type Deserializable interface {
	DeserializeXML(d Deserializer) error
}

// GroupDeserializable is implemented by types that assemble
// themselves from contributions pulled out of an enclosing element.
type GroupDeserializable interface {
	// GroupBuilder returns a fresh builder whose Finish populates
	// the receiver.
	GroupBuilder() GroupBuilder
}

// GroupBuilder incrementally assembles a group value. Contribute
// methods report whether they consumed anything; Done methods are
// hints that let the enclosing loop stop offering input early.
type GroupBuilder interface {
	// ContributeAttributes offers the builder the element's
	// remaining attributes. Returns true if at least one was
	// consumed.
	ContributeAttributes(access AttributesAccess) (bool, error)

	// AttributesDone reports that no further attribute can be
	// consumed.
	AttributesDone() bool

	// ContributeElements offers the builder the element's remaining
	// children. Returns true if at least one was consumed.
	ContributeElements(access SeqAccess) (bool, error)

	// ElementsDone reports that no further child can be consumed.
	ElementsDone() bool

	// Finish resolves defaults and writes the assembled value.
	// Missing required sub-fields error here.
	Finish() error
}

// EnsureElementName checks an element's name against the expected
// name and returns a WrongNameError on mismatch.
func EnsureElementName(access ElementAccess, expected ExpandedName) error {
	if actual := access.Name(); !actual.Equal(expected) {
		return NewWrongNameError(actual, expected)
	}
	return nil
}

// EnsureAttributeName checks an attribute's name against the expected
// name and returns a WrongNameError on mismatch.
func EnsureAttributeName(access AttributeAccess, expected ExpandedName) error {
	if actual := access.Name(); !actual.Equal(expected) {
		return NewWrongNameError(actual, expected)
	}
	return nil
}
