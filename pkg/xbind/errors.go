// Package xbind maps annotated Go values to and from XML through a
// backend-agnostic serializer/deserializer protocol.
package xbind

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
// These can be checked using errors.Is().
var (
	// ErrMissingData indicates the input ended before a value could
	// be deserialized.
	ErrMissingData = errors.New("xbind: missing data")

	// ErrUnknownChild indicates a child node was left unconsumed and
	// the unknown-child policy forbids it.
	ErrUnknownChild = errors.New("xbind: unknown child")

	// ErrUnknownAttribute indicates an attribute was left unconsumed
	// and the unknown-attribute policy forbids it.
	ErrUnknownAttribute = errors.New("xbind: unknown attribute")

	// ErrInvalidString indicates text content could not be parsed
	// into the target value.
	ErrInvalidString = errors.New("xbind: invalid string")

	// ErrWrongName indicates an element or attribute name did not
	// match the expected name.
	ErrWrongName = errors.New("xbind: wrong name")

	// ErrUnexpectedKind indicates a visitor was offered a node kind
	// it cannot accept.
	ErrUnexpectedKind = errors.New("xbind: unexpected node kind")

	// ErrMissingField indicates a required field had no matching
	// input and no default.
	ErrMissingField = errors.New("xbind: missing field")

	// ErrNoPossibleVariant indicates no variant of a choice type
	// matched the input.
	ErrNoPossibleVariant = errors.New("xbind: no possible variant")

	// ErrNotPointer indicates the target for deserialization is not
	// a pointer.
	ErrNotPointer = errors.New("xbind: target must be a pointer")

	// ErrNilPointer indicates the target pointer is nil.
	ErrNilPointer = errors.New("xbind: nil pointer")

	// ErrUnregisteredType indicates an interface type has no
	// registered variants.
	ErrUnregisteredType = errors.New("xbind: unregistered type")

	// ErrDuplicateVariant indicates a variant was registered more
	// than once for the same interface.
	ErrDuplicateVariant = errors.New("xbind: duplicate variant registration")

	// ErrInvalidBinding indicates a struct tag or marker field is
	// malformed or the declared binding is unsatisfiable.
	ErrInvalidBinding = errors.New("xbind: invalid binding")

	// ErrNotSerializable indicates a value has no XML representation.
	ErrNotSerializable = errors.New("xbind: value is not serializable")
)

// WrongNameError reports a name mismatch between the input and the
// binding. It wraps ErrWrongName.
type WrongNameError struct {
	// Actual is the name found in the input.
	Actual ExpandedName

	// Expected is the name the binding declares.
	Expected ExpandedName
}

// Error returns a formatted error message.
func (e *WrongNameError) Error() string {
	return fmt.Sprintf("xbind: wrong name: got %s, expected %s", e.Actual, e.Expected)
}

// Unwrap returns ErrWrongName so errors.Is() matches the sentinel.
func (e *WrongNameError) Unwrap() error {
	return ErrWrongName
}

// NewWrongNameError creates a new WrongNameError.
func NewWrongNameError(actual, expected ExpandedName) *WrongNameError {
	return &WrongNameError{Actual: actual, Expected: expected}
}

// UnexpectedKindError reports that a visitor was offered a node kind
// it does not accept. It wraps ErrUnexpectedKind.
type UnexpectedKindError struct {
	// Kind is the offered node kind.
	Kind Kind

	// Expecting describes what the visitor was expecting, if known.
	Expecting string
}

// Error returns a formatted error message.
func (e *UnexpectedKindError) Error() string {
	if e.Expecting != "" {
		return fmt.Sprintf("xbind: unexpected %s, expecting %s", e.Kind, e.Expecting)
	}
	return fmt.Sprintf("xbind: unexpected %s", e.Kind)
}

// Unwrap returns ErrUnexpectedKind.
func (e *UnexpectedKindError) Unwrap() error {
	return ErrUnexpectedKind
}

// NewUnexpectedKindError creates a new UnexpectedKindError.
func NewUnexpectedKindError(kind Kind, expecting string) *UnexpectedKindError {
	return &UnexpectedKindError{Kind: kind, Expecting: expecting}
}

// MissingFieldError reports a required field with no matching input.
// It wraps ErrMissingField.
type MissingFieldError struct {
	// Field is the Go field name.
	Field string
}

// Error returns a formatted error message.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("xbind: missing field %q", e.Field)
}

// Unwrap returns ErrMissingField.
func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// NewMissingFieldError creates a new MissingFieldError.
func NewMissingFieldError(field string) *MissingFieldError {
	return &MissingFieldError{Field: field}
}

// NoPossibleVariantError reports that none of a choice type's variants
// matched the input. It wraps ErrNoPossibleVariant.
type NoPossibleVariantError struct {
	// Type is the name of the choice type.
	Type string
}

// Error returns a formatted error message.
func (e *NoPossibleVariantError) Error() string {
	return fmt.Sprintf("xbind: no possible variant for %s", e.Type)
}

// Unwrap returns ErrNoPossibleVariant.
func (e *NoPossibleVariantError) Unwrap() error {
	return ErrNoPossibleVariant
}

// NewNoPossibleVariantError creates a new NoPossibleVariantError.
func NewNoPossibleVariantError(typeName string) *NoPossibleVariantError {
	return &NoPossibleVariantError{Type: typeName}
}

// BindingError reports a problem compiling a type's binding from its
// struct tags and marker fields. It wraps ErrInvalidBinding.
type BindingError struct {
	// Type is the name of the type being compiled.
	Type string

	// Field is the field the problem was found on, if applicable.
	Field string

	// Message describes what went wrong.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error returns a formatted error message.
func (e *BindingError) Error() string {
	var prefix string
	if e.Type != "" && e.Field != "" {
		prefix = fmt.Sprintf("%s.%s", e.Type, e.Field)
	} else if e.Type != "" {
		prefix = e.Type
	} else if e.Field != "" {
		prefix = e.Field
	}

	if prefix != "" {
		return fmt.Sprintf("xbind: binding %s: %s", prefix, e.Message)
	}
	return fmt.Sprintf("xbind: binding: %s", e.Message)
}

// Unwrap returns the underlying cause, or ErrInvalidBinding.
func (e *BindingError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrInvalidBinding
}

// Is reports whether the error matches the target.
func (e *BindingError) Is(target error) bool {
	if target == ErrInvalidBinding {
		return true
	}
	return e.Cause != nil && errors.Is(e.Cause, target)
}

// NewBindingError creates a new BindingError.
func NewBindingError(typeName, field, message string, cause error) *BindingError {
	return &BindingError{
		Type:    typeName,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// DeserializeError wraps an error with the type and field path being
// deserialized when it occurred.
type DeserializeError struct {
	// Type is the name of the type being deserialized.
	Type string

	// Field is the field being deserialized, if applicable.
	Field string

	// Cause is the underlying error.
	Cause error
}

// Error returns a formatted error message.
func (e *DeserializeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("xbind: deserialize %s.%s: %v", e.Type, e.Field, e.Cause)
	}
	return fmt.Sprintf("xbind: deserialize %s: %v", e.Type, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *DeserializeError) Unwrap() error {
	return e.Cause
}

// NewDeserializeError creates a new DeserializeError.
func NewDeserializeError(typeName, field string, cause error) *DeserializeError {
	return &DeserializeError{Type: typeName, Field: field, Cause: cause}
}

// SerializeError wraps an error with the type and field path being
// serialized when it occurred.
type SerializeError struct {
	// Type is the name of the type being serialized.
	Type string

	// Field is the field being serialized, if applicable.
	Field string

	// Cause is the underlying error.
	Cause error
}

// Error returns a formatted error message.
func (e *SerializeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("xbind: serialize %s.%s: %v", e.Type, e.Field, e.Cause)
	}
	return fmt.Sprintf("xbind: serialize %s: %v", e.Type, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *SerializeError) Unwrap() error {
	return e.Cause
}

// NewSerializeError creates a new SerializeError.
func NewSerializeError(typeName, field string, cause error) *SerializeError {
	return &SerializeError{Type: typeName, Field: field, Cause: cause}
}

// IsRecoverable reports whether a deserialization error is one a
// variant or fallback probe may recover from by trying another shape.
// Name mismatches, kind mismatches, and exhausted variant sets are
// recoverable; structural errors inside a matched value are not.
func IsRecoverable(err error) bool {
	switch {
	case errors.Is(err, ErrWrongName),
		errors.Is(err, ErrUnexpectedKind),
		errors.Is(err, ErrNoPossibleVariant),
		errors.Is(err, ErrMissingData):
		return true
	default:
		return false
	}
}
