package xbind

import (
	"fmt"
	"strings"

	"github.com/xbind/xbind/internal/xmlname"
)

// TagKey is the struct tag key the binding compiler reads.
const TagKey = "xbind"

// Marker types. A zero-size field of one of these classifies the
// whole struct and carries its root options in the field's tag:
//
//	type Note struct {
//		xbind.ElementBinding `xbind:"name=note,children_order=strict"`
//		To   string          `xbind:"element,name=to"`
//		Body string          `xbind:"element,name=body"`
//	}
//
// A struct without a marker has no markup identity of its own and is
// read and written as the sequence of its children.
type (
	// ElementBinding marks a struct that maps to one element.
	ElementBinding struct{}

	// AttributeBinding marks a struct that maps to one attribute.
	// It must resolve to exactly one value field.
	AttributeBinding struct{}

	// ValueBinding marks a type that maps to bare character data,
	// such as a value enum.
	ValueBinding struct{}

	// GroupBinding marks a struct that contributes its fields to the
	// enclosing element without markup identity of its own.
	GroupBinding struct{}
)

// FieldClass says which markup construct a struct field maps to.
type FieldClass uint8

const (
	// ClassElement wraps the field value in a named child element.
	ClassElement FieldClass = iota

	// ClassValue serializes the field as a bare child, using the
	// field type's own representation.
	ClassValue

	// ClassAttribute serializes the field as an attribute of the
	// enclosing element.
	ClassAttribute

	// ClassGroup delegates to the field type's group binding.
	ClassGroup

	// ClassSkip leaves the field untouched in both directions.
	ClassSkip
)

// String returns the class's annotation spelling.
func (c FieldClass) String() string {
	switch c {
	case ClassValue:
		return "value"
	case ClassAttribute:
		return "attr"
	case ClassGroup:
		return "group"
	case ClassSkip:
		return "-"
	default:
		return "element"
	}
}

// FieldTag is one parsed field annotation.
type FieldTag struct {
	// Class is the field's markup classification.
	Class FieldClass

	// Name overrides the derived local name.
	Name string

	// Namespace is the field's namespace, if any.
	Namespace Namespace

	// Prefix is the preferred serialization prefix.
	Prefix Prefix

	// EnforcePrefix forces the preferred prefix to be bound.
	EnforcePrefix bool

	// Optional permits the field to be absent from input.
	Optional bool

	// Default fills an absent field from its type's Defaulter
	// implementation, or the zero value. Implies Optional.
	Default bool

	// Extendable folds repeated matches into one value.
	Extendable Extendable

	// SkipEmpty suppresses serialization of the zero value.
	SkipEmpty bool
}

// ParseFieldTag parses the value of an xbind field tag. The first
// token is the classification; the rest are options.
func ParseFieldTag(tag string) (FieldTag, error) {
	ft := FieldTag{Class: ClassElement}
	if tag == "" {
		return ft, nil
	}
	tokens := strings.Split(tag, ",")
	switch tokens[0] {
	case "element", "":
		ft.Class = ClassElement
	case "value":
		ft.Class = ClassValue
	case "attr":
		ft.Class = ClassAttribute
	case "group":
		ft.Class = ClassGroup
	case "-":
		ft.Class = ClassSkip
		if len(tokens) > 1 {
			return ft, fmt.Errorf("%w: skipped field takes no options", ErrInvalidBinding)
		}
		return ft, nil
	default:
		return ft, fmt.Errorf("%w: unknown field class %q", ErrInvalidBinding, tokens[0])
	}
	for _, tok := range tokens[1:] {
		key, value, hasValue := strings.Cut(tok, "=")
		var err error
		switch key {
		case "name":
			if !xmlname.IsNCName(value) {
				return ft, fmt.Errorf("%w: invalid name %q", ErrInvalidBinding, value)
			}
			ft.Name = value
		case "ns":
			ft.Namespace = Namespace(value)
		case "prefix":
			ft.Prefix = Prefix(value)
			if !ft.Prefix.IsValid() {
				return ft, fmt.Errorf("%w: invalid prefix %q", ErrInvalidBinding, value)
			}
		case "enforce_prefix":
			ft.EnforcePrefix = true
		case "optional":
			ft.Optional = true
		case "default":
			ft.Default = true
			ft.Optional = true
		case "extendable":
			if !hasValue {
				value = ""
			}
			ft.Extendable, err = ParseExtendable(value)
			if err != nil {
				return ft, err
			}
		case "skipempty":
			ft.SkipEmpty = true
		default:
			return ft, fmt.Errorf("%w: unknown option %q", ErrInvalidBinding, key)
		}
	}
	if err := ft.validate(); err != nil {
		return ft, err
	}
	return ft, nil
}

func (ft FieldTag) validate() error {
	switch ft.Class {
	case ClassValue:
		if ft.Name != "" {
			return fmt.Errorf("%w: value field cannot be named", ErrInvalidBinding)
		}
	case ClassGroup:
		if ft.Name != "" || ft.Prefix != PrefixDefault || ft.Extendable != ExtendNone {
			return fmt.Errorf("%w: group field takes no name, prefix or extendable options", ErrInvalidBinding)
		}
	case ClassAttribute:
		if ft.Extendable != ExtendNone {
			return fmt.Errorf("%w: attribute field cannot be extendable", ErrInvalidBinding)
		}
	}
	if ft.EnforcePrefix && ft.Prefix == PrefixDefault {
		return fmt.Errorf("%w: enforce_prefix requires a prefix", ErrInvalidBinding)
	}
	return nil
}

// RootKind says which markup construct a whole type maps to.
type RootKind uint8

const (
	// RootNone is a type with no marker: structurally a sequence of
	// its element children.
	RootNone RootKind = iota

	// RootElement maps to one named element.
	RootElement

	// RootAttribute maps to one attribute.
	RootAttribute

	// RootValue maps to bare character data.
	RootValue

	// RootGroup aggregates fields into the enclosing element.
	RootGroup
)

// String returns the kind's annotation spelling.
func (k RootKind) String() string {
	switch k {
	case RootElement:
		return "element"
	case RootAttribute:
		return "attribute"
	case RootValue:
		return "value"
	case RootGroup:
		return "group"
	default:
		return "none"
	}
}

// RootTag is one parsed root annotation from a marker field.
type RootTag struct {
	Kind RootKind

	// Name overrides the derived local name.
	Name string

	// Namespace is the root's namespace, if any.
	Namespace Namespace

	// Prefix is the preferred serialization prefix.
	Prefix Prefix

	// EnforcePrefix forces the preferred prefix to be bound.
	EnforcePrefix bool

	// AttributeOrder is the ordering policy for attribute fields.
	AttributeOrder ElementOrder

	// ChildrenOrder is the ordering policy for child fields.
	ChildrenOrder ElementOrder

	// AllowUnknownAttributes is the unknown policy for attributes.
	AllowUnknownAttributes AllowUnknown

	// AllowUnknownChildren is the unknown policy for children.
	AllowUnknownChildren AllowUnknown

	// IgnoreWhitespace controls skipping of whitespace-only text.
	IgnoreWhitespace IgnorePolicy

	// IgnoreComments controls skipping of comments.
	IgnoreComments IgnorePolicy

	// RenameAll is the case rule for derived literals.
	RenameAll RenameRule
}

// ParseRootTag parses the tag of a marker field of the given kind.
func ParseRootTag(kind RootKind, tag string) (RootTag, error) {
	rt := RootTag{Kind: kind}
	if tag == "" {
		return rt, nil
	}
	for _, tok := range strings.Split(tag, ",") {
		key, value, _ := strings.Cut(tok, "=")
		var err error
		switch key {
		case "name":
			if !xmlname.IsNCName(value) {
				return rt, fmt.Errorf("%w: invalid name %q", ErrInvalidBinding, value)
			}
			rt.Name = value
		case "ns":
			rt.Namespace = Namespace(value)
		case "prefix":
			rt.Prefix = Prefix(value)
			if !rt.Prefix.IsValid() {
				return rt, fmt.Errorf("%w: invalid prefix %q", ErrInvalidBinding, value)
			}
		case "enforce_prefix":
			rt.EnforcePrefix = true
		case "attribute_order":
			rt.AttributeOrder, err = ParseElementOrder(value)
		case "children_order":
			rt.ChildrenOrder, err = ParseElementOrder(value)
		case "allow_unknown_attributes":
			rt.AllowUnknownAttributes, err = ParseAllowUnknown(value)
		case "allow_unknown_children":
			rt.AllowUnknownChildren, err = ParseAllowUnknown(value)
		case "ignore_whitespace":
			rt.IgnoreWhitespace, err = ParseIgnorePolicy(value)
		case "ignore_comments":
			rt.IgnoreComments, err = ParseIgnorePolicy(value)
		case "rename_all":
			rt.RenameAll, err = ParseRenameRule(value)
		default:
			err = fmt.Errorf("%w: unknown option %q", ErrInvalidBinding, key)
		}
		if err != nil {
			return rt, err
		}
	}
	if err := rt.validate(); err != nil {
		return rt, err
	}
	return rt, nil
}

func (rt RootTag) validate() error {
	switch rt.Kind {
	case RootValue, RootGroup, RootNone:
		if rt.Name != "" {
			return fmt.Errorf("%w: %s root cannot be named", ErrInvalidBinding, rt.Kind)
		}
	}
	if rt.EnforcePrefix && rt.Prefix == PrefixDefault {
		return fmt.Errorf("%w: enforce_prefix requires a prefix", ErrInvalidBinding)
	}
	if rt.RenameAll != RenamePascal && rt.Kind != RootValue {
		return fmt.Errorf("%w: rename_all applies to value roots", ErrInvalidBinding)
	}
	return nil
}
