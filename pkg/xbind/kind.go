package xbind

// Kind identifies the kind of XML construct a node, token or visit
// call refers to.
type Kind uint8

// Node kinds.
const (
	// KindNone represents the absence of a node.
	KindNone Kind = iota

	// KindText is a character data node.
	KindText

	// KindCData is a CDATA section.
	KindCData

	// KindElement is an element.
	KindElement

	// KindAttribute is an attribute.
	KindAttribute

	// KindSeq is a sequence of sibling nodes.
	KindSeq

	// KindPI is a processing instruction.
	KindPI

	// KindDecl is an XML declaration.
	KindDecl

	// KindComment is a comment.
	KindComment

	// KindDoctype is a doctype declaration.
	KindDoctype

	// KindEOF marks the end of the input stream.
	KindEOF
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindText:
		return "text"
	case KindCData:
		return "cdata"
	case KindElement:
		return "element"
	case KindAttribute:
		return "attribute"
	case KindSeq:
		return "sequence"
	case KindPI:
		return "processing instruction"
	case KindDecl:
		return "declaration"
	case KindComment:
		return "comment"
	case KindDoctype:
		return "doctype"
	case KindEOF:
		return "eof"
	default:
		return "unknown"
	}
}

// IsValid returns true if the kind is known.
func (k Kind) IsValid() bool {
	return k <= KindEOF
}
