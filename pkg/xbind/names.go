package xbind

import (
	"fmt"

	"github.com/xbind/xbind/internal/xmlname"
)

// Namespace is an XML namespace URI. The empty namespace means
// "no namespace".
type Namespace string

// Well-known namespaces.
const (
	// NamespaceNone is the absence of a namespace.
	NamespaceNone Namespace = ""

	// NamespaceXML is the reserved xml: namespace.
	NamespaceXML Namespace = "http://www.w3.org/XML/1998/namespace"

	// NamespaceXMLNS is the reserved xmlns: namespace.
	NamespaceXMLNS Namespace = "http://www.w3.org/2000/xmlns/"

	// NamespaceXS is the XML Schema namespace.
	NamespaceXS Namespace = "http://www.w3.org/2001/XMLSchema"

	// NamespaceXSI is the XML Schema instance namespace.
	NamespaceXSI Namespace = "http://www.w3.org/2001/XMLSchema-instance"

	// NamespaceXHTML is the XHTML namespace.
	NamespaceXHTML Namespace = "http://www.w3.org/1999/xhtml"
)

// IsNone returns true if the namespace is the empty namespace.
func (n Namespace) IsNone() bool {
	return n == NamespaceNone
}

// Prefix is an XML namespace prefix. The empty prefix refers to the
// default namespace.
type Prefix string

// Reserved prefixes.
const (
	// PrefixDefault is the default (empty) prefix.
	PrefixDefault Prefix = ""

	// PrefixXML is the reserved xml prefix.
	PrefixXML Prefix = "xml"

	// PrefixXMLNS is the reserved xmlns prefix.
	PrefixXMLNS Prefix = "xmlns"
)

// IsDefault returns true if the prefix is the default prefix.
func (p Prefix) IsDefault() bool {
	return p == PrefixDefault
}

// IsValid returns true if the prefix is empty or a valid NCName.
func (p Prefix) IsValid() bool {
	return p == PrefixDefault || xmlname.IsNCName(string(p))
}

// ExpandedName is the unit of element and attribute identity: a local
// name plus an optional namespace. Two expanded names are equal when
// both the local name and the namespace match exactly.
type ExpandedName struct {
	// Local is the local part of the name. It must be a valid
	// XML name token and is never empty for a usable name.
	Local string

	// Namespace is the namespace URI, or empty for no namespace.
	Namespace Namespace
}

// Name creates an expanded name with no namespace.
func Name(local string) ExpandedName {
	return ExpandedName{Local: local}
}

// NameNS creates an expanded name in the given namespace.
func NameNS(local string, ns Namespace) ExpandedName {
	return ExpandedName{Local: local, Namespace: ns}
}

// IsZero returns true if the name is the zero value.
func (n ExpandedName) IsZero() bool {
	return n.Local == "" && n.Namespace.IsNone()
}

// IsValid returns true if the local part is a valid XML name token.
func (n ExpandedName) IsValid() bool {
	return xmlname.IsNCName(n.Local)
}

// Equal reports whether two expanded names are identical. Namespace
// equality is mandatory; local name comparison is exact-string.
func (n ExpandedName) Equal(other ExpandedName) bool {
	return n.Local == other.Local && n.Namespace == other.Namespace
}

// String renders the name in Clark notation ({namespace}local).
func (n ExpandedName) String() string {
	if n.Namespace.IsNone() {
		return n.Local
	}
	return fmt.Sprintf("{%s}%s", n.Namespace, n.Local)
}
