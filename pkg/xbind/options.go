package xbind

import (
	"fmt"
	"strings"

	"github.com/xbind/xbind/internal/xmlname"
)

// ElementOrder is the ordering policy for an element's attributes or
// children.
type ElementOrder uint8

const (
	// OrderNone lets any remaining field match at any position.
	OrderNone ElementOrder = iota

	// OrderStrict requires fields to appear in declaration order.
	// Each field gets exactly one matching window; once the input
	// moves past it, the field can only default or fail.
	OrderStrict
)

// String returns the policy's annotation spelling.
func (o ElementOrder) String() string {
	if o == OrderStrict {
		return "strict"
	}
	return "none"
}

// ParseElementOrder parses an ordering policy. "loose" is accepted as
// an alias for "none".
func ParseElementOrder(s string) (ElementOrder, error) {
	switch s {
	case "strict":
		return OrderStrict, nil
	case "none", "loose":
		return OrderNone, nil
	default:
		return OrderNone, fmt.Errorf("%w: unknown order %q", ErrInvalidBinding, s)
	}
}

// AllowUnknown is the policy for input the field list does not match.
type AllowUnknown uint8

const (
	// AllowUnknownAtEnd tolerates unknown content only once every
	// declared field is satisfied.
	AllowUnknownAtEnd AllowUnknown = iota

	// AllowUnknownAny skips unknown content wherever it appears.
	AllowUnknownAny

	// AllowUnknownNone makes any unknown content a hard error.
	AllowUnknownNone
)

// String returns the policy's annotation spelling.
func (a AllowUnknown) String() string {
	switch a {
	case AllowUnknownAny:
		return "any"
	case AllowUnknownNone:
		return "none"
	default:
		return "at_end"
	}
}

// ParseAllowUnknown parses an unknown-content policy.
func ParseAllowUnknown(s string) (AllowUnknown, error) {
	switch s {
	case "any":
		return AllowUnknownAny, nil
	case "at_end":
		return AllowUnknownAtEnd, nil
	case "none":
		return AllowUnknownNone, nil
	default:
		return AllowUnknownAtEnd, fmt.Errorf("%w: unknown policy %q", ErrInvalidBinding, s)
	}
}

// IgnorePolicy controls whether formatting noise (whitespace-only
// text, comments) is skipped before match attempts.
type IgnorePolicy uint8

const (
	// IgnoreAny skips the noise wherever it appears.
	IgnoreAny IgnorePolicy = iota

	// IgnoreNone treats the noise as ordinary content.
	IgnoreNone
)

// String returns the policy's annotation spelling.
func (i IgnorePolicy) String() string {
	if i == IgnoreNone {
		return "none"
	}
	return "any"
}

// ParseIgnorePolicy parses a whitespace or comment ignore policy.
func ParseIgnorePolicy(s string) (IgnorePolicy, error) {
	switch s {
	case "any":
		return IgnoreAny, nil
	case "none":
		return IgnoreNone, nil
	default:
		return IgnoreAny, fmt.Errorf("%w: unknown ignore policy %q", ErrInvalidBinding, s)
	}
}

// Extendable controls whether repeated matching occurrences of a
// field fold into one value instead of erroring on the second match.
type Extendable uint8

const (
	// ExtendNone accepts exactly one occurrence.
	ExtendNone Extendable = iota

	// ExtendSingle folds each further occurrence into the field,
	// one value at a time.
	ExtendSingle

	// ExtendIterator folds further occurrences element-wise, for
	// slice-valued fields.
	ExtendIterator
)

// String returns the policy's annotation spelling.
func (e Extendable) String() string {
	switch e {
	case ExtendSingle:
		return "single"
	case ExtendIterator:
		return "iterator"
	default:
		return "none"
	}
}

// ParseExtendable parses an extendable policy. The bare flag form
// maps to single.
func ParseExtendable(s string) (Extendable, error) {
	switch s {
	case "", "single":
		return ExtendSingle, nil
	case "iterator":
		return ExtendIterator, nil
	case "none":
		return ExtendNone, nil
	default:
		return ExtendNone, fmt.Errorf("%w: unknown extendable policy %q", ErrInvalidBinding, s)
	}
}

// RenameRule is a case rule applied to identifiers to derive their
// markup literal, for value enums and group-wide renames.
type RenameRule uint8

const (
	// RenamePascal leaves an exported Go identifier as-is.
	RenamePascal RenameRule = iota
	RenameLower
	RenameUpper
	RenameCamel
	RenameSnake
	RenameScreamingSnake
	RenameKebab
	RenameScreamingKebab
)

// String returns the rule's annotation spelling.
func (r RenameRule) String() string {
	switch r {
	case RenameLower:
		return "lowercase"
	case RenameUpper:
		return "UPPERCASE"
	case RenameCamel:
		return "camelCase"
	case RenameSnake:
		return "snake_case"
	case RenameScreamingSnake:
		return "SCREAMING_SNAKE_CASE"
	case RenameKebab:
		return "kebab-case"
	case RenameScreamingKebab:
		return "SCREAMING-KEBAB-CASE"
	default:
		return "PascalCase"
	}
}

// ParseRenameRule parses a case rule by its annotation spelling.
func ParseRenameRule(s string) (RenameRule, error) {
	switch s {
	case "PascalCase":
		return RenamePascal, nil
	case "lowercase":
		return RenameLower, nil
	case "UPPERCASE":
		return RenameUpper, nil
	case "camelCase":
		return RenameCamel, nil
	case "snake_case":
		return RenameSnake, nil
	case "SCREAMING_SNAKE_CASE":
		return RenameScreamingSnake, nil
	case "kebab-case":
		return RenameKebab, nil
	case "SCREAMING-KEBAB-CASE":
		return RenameScreamingKebab, nil
	default:
		return RenamePascal, fmt.Errorf("%w: unknown rename rule %q", ErrInvalidBinding, s)
	}
}

// Apply transforms a Go identifier under the rule.
func (r RenameRule) Apply(ident string) string {
	switch r {
	case RenameLower:
		return strings.ToLower(ident)
	case RenameUpper:
		return strings.ToUpper(ident)
	case RenameCamel:
		return xmlname.CamelCase(ident)
	case RenameSnake:
		return xmlname.SnakeCase(ident)
	case RenameScreamingSnake:
		return strings.ToUpper(xmlname.SnakeCase(ident))
	case RenameKebab:
		return xmlname.KebabCase(ident)
	case RenameScreamingKebab:
		return strings.ToUpper(xmlname.KebabCase(ident))
	default:
		return ident
	}
}
