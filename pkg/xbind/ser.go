package xbind

// IncludePrefix controls whether a serialized element or attribute
// carries its preferred namespace prefix.
type IncludePrefix uint8

const (
	// IncludePrefixNever writes the name with whatever prefix the
	// backend already has bound for the namespace.
	IncludePrefixNever IncludePrefix = iota

	// IncludePrefixAlways binds and writes the preferred prefix even
	// if the namespace is already reachable another way.
	IncludePrefixAlways

	// IncludePrefixPreferred binds the preferred prefix only when the
	// namespace is not already in scope.
	IncludePrefixPreferred
)

// String returns a human-readable name for the prefix policy.
func (p IncludePrefix) String() string {
	switch p {
	case IncludePrefixNever:
		return "never"
	case IncludePrefixAlways:
		return "always"
	case IncludePrefixPreferred:
		return "preferred"
	default:
		return "unknown"
	}
}

// Serializer is a single-consumption write sink. Exactly one of its
// methods may be called per value; backends are free to reject a
// second call.
type Serializer interface {
	// SerializeText writes character data.
	SerializeText(value string) error

	// SerializeCData writes a CDATA section.
	SerializeCData(value string) error

	// SerializeElement opens an element with the given name and
	// returns a builder for its attributes and children.
	SerializeElement(name ExpandedName) (ElementSerializer, error)

	// SerializeSeq opens a sequence of sibling values.
	SerializeSeq() (SeqSerializer, error)

	// SerializeDecl writes an XML declaration.
	SerializeDecl(version, encoding, standalone string) error

	// SerializePI writes a processing instruction.
	SerializePI(target, content string) error

	// SerializeComment writes a comment.
	SerializeComment(value string) error

	// SerializeDoctype writes a doctype declaration.
	SerializeDoctype(value string) error

	// SerializeNone writes nothing. A None value is still a
	// successful serialization.
	SerializeNone() error
}

// ElementSerializer builds one element. Prefix controls must be set
// before SerializeAttributes or SerializeChildren; End closes the
// element immediately for the empty case.
type ElementSerializer interface {
	// IncludePrefix sets the prefix-inclusion policy for the
	// element's own name.
	IncludePrefix(policy IncludePrefix) error

	// PreferPrefix sets the prefix to bind for the element's
	// namespace, subject to the inclusion policy.
	PreferPrefix(prefix Prefix) error

	// SerializeAttributes transitions to writing attributes.
	SerializeAttributes() (ElementAttributesSerializer, error)

	// SerializeChildren skips attributes and transitions straight to
	// writing children.
	SerializeChildren() (SeqSerializer, error)

	// End closes the element with no attributes and no children.
	End() error
}

// ElementAttributesSerializer accepts the attributes of one element,
// then either transitions into the children or ends the element.
type ElementAttributesSerializer interface {
	// SerializeAttribute writes one attribute.
	SerializeAttribute(a AttributeSerializable) error

	// SerializeChildren finishes the attribute list and transitions
	// to writing children.
	SerializeChildren() (SeqSerializer, error)

	// End closes the element with no children.
	End() error
}

// SeqSerializer accepts repeated sibling values. End finalizes the
// sequence.
type SeqSerializer interface {
	// SerializeElement writes one item of the sequence. Despite the
	// name the item may be any value kind, not only an element.
	SerializeElement(v Serializable) error

	// End finalizes the sequence.
	End() error
}

// AttributeSerializer is the write sink for a standalone attribute.
type AttributeSerializer interface {
	// SerializeAttribute opens an attribute with the given name.
	SerializeAttribute(name ExpandedName) (AttributeValueSerializer, error)
}

// AttributeValueSerializer finishes one attribute.
type AttributeValueSerializer interface {
	// IncludePrefix sets the prefix-inclusion policy for the
	// attribute's name.
	IncludePrefix(policy IncludePrefix) error

	// PreferPrefix sets the prefix to bind for the attribute's
	// namespace.
	PreferPrefix(prefix Prefix) error

	// End writes the attribute with the given value.
	End(value string) error
}

// Serializable is implemented by types that know how to write
// themselves to a Serializer. Types that do not implement it are
// serialized through their compiled binding instead.
type Serializable interface {
	SerializeXML(s Serializer) error
}

// AttributeSerializable is implemented by types that serialize as a
// standalone attribute.
type AttributeSerializable interface {
	SerializeXMLAttribute(s AttributeSerializer) error
}

// GroupSerializable is implemented by types that contribute
// attributes and children to an enclosing element without markup
// identity of their own.
type GroupSerializable interface {
	// SerializeAttributeGroup writes the group's attribute fields.
	SerializeAttributeGroup(s ElementAttributesSerializer) error

	// SerializeChildrenGroup writes the group's child fields.
	SerializeChildrenGroup(s SeqSerializer) error
}
