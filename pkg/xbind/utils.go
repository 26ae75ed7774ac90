package xbind

import (
	"fmt"
	"unicode"
)

// IgnoredAny consumes and discards any single value, element subtrees
// included. Deserializing into it never fails on content.
type IgnoredAny struct{}

func (IgnoredAny) DeserializeXML(d Deserializer) error {
	return d.DeserializeAny(ignoreVisitor{})
}

type ignoreVisitor struct{}

func (ignoreVisitor) Expecting() string                    { return "anything" }
func (ignoreVisitor) VisitText(string) error               { return nil }
func (ignoreVisitor) VisitCData(string) error              { return nil }
func (ignoreVisitor) VisitComment(string) error            { return nil }
func (ignoreVisitor) VisitDoctype(string) error            { return nil }
func (ignoreVisitor) VisitPI(string, string) error         { return nil }
func (ignoreVisitor) VisitDecl(_, _, _ string) error       { return nil }
func (ignoreVisitor) VisitNone() error                     { return nil }
func (ignoreVisitor) VisitAttribute(AttributeAccess) error { return nil }

func (ignoreVisitor) VisitElement(access ElementAccess) error {
	for {
		ok, err := access.NextAttribute(IgnoredAny{})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	children, err := access.Children()
	if err != nil {
		return err
	}
	return ignoreVisitor{}.VisitSeq(children)
}

func (ignoreVisitor) VisitSeq(access SeqAccess) error {
	for {
		ok, err := access.NextElement(IgnoredAny{})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// Whitespace captures a run of whitespace-only character data.
// Deserializing it from anything else fails.
type Whitespace string

func (w *Whitespace) DeserializeXML(d Deserializer) error {
	return d.DeserializeAny(&whitespaceVisitor{out: w})
}

// SerializeXML writes the captured whitespace back out as text.
func (w Whitespace) SerializeXML(s Serializer) error {
	return s.SerializeText(string(w))
}

type whitespaceVisitor struct {
	UnimplementedVisitor
	out *Whitespace
}

func (v *whitespaceVisitor) Expecting() string { return "whitespace" }

func (v *whitespaceVisitor) VisitText(value string) error {
	if !IsWhitespace(value) {
		return fmt.Errorf("%w: non-whitespace text", ErrInvalidString)
	}
	*v.out = Whitespace(value)
	return nil
}

// IsWhitespace reports whether s consists entirely of whitespace. The
// empty string counts as whitespace.
func IsWhitespace(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// deserializableFunc adapts a closure to the Deserializable protocol.
type deserializableFunc func(Deserializer) error

func (f deserializableFunc) DeserializeXML(d Deserializer) error { return f(d) }

// commentProbe matches only a comment, for the ignore-comments skip.
type commentProbe struct{}

func (commentProbe) DeserializeXML(d Deserializer) error {
	return d.DeserializeAny(commentProbeVisitor{})
}

type commentProbeVisitor struct {
	UnimplementedVisitor
}

func (commentProbeVisitor) Expecting() string         { return "a comment" }
func (commentProbeVisitor) VisitComment(string) error { return nil }
