package xbind

import (
	"fmt"
	"reflect"
	"sync"
)

// Defaulter lets a type supply its own fallback value when an
// optional field marked default is absent from input. It is called on
// a fresh zero value.
type Defaulter interface {
	DefaultXML()
}

// ValueVariants is implemented by named string types that map to a
// closed set of character-data literals. The returned identifiers are
// the Go-facing values; the markup literal for each is derived by the
// type's rename rule.
type ValueVariants interface {
	XMLVariants() []string
}

// VariantRenamer optionally overrides the case rule applied to
// variant identifiers. Without it the identifier is the literal.
type VariantRenamer interface {
	XMLVariantRename() RenameRule
}

var (
	markerElementType   = reflect.TypeOf(ElementBinding{})
	markerAttributeType = reflect.TypeOf(AttributeBinding{})
	markerValueType     = reflect.TypeOf(ValueBinding{})
	markerGroupType     = reflect.TypeOf(GroupBinding{})

	valueType          = reflect.TypeOf((*Value)(nil)).Elem()
	attrSerType        = reflect.TypeOf((*AttributeSerializable)(nil)).Elem()
	groupDeserType     = reflect.TypeOf((*GroupDeserializable)(nil)).Elem()
	groupSerType       = reflect.TypeOf((*GroupSerializable)(nil)).Elem()
	valueVariantsType  = reflect.TypeOf((*ValueVariants)(nil)).Elem()
	variantRenamerType = reflect.TypeOf((*VariantRenamer)(nil)).Elem()
)

// binding is the compiled shape of one struct type.
type binding struct {
	typ  reflect.Type
	root RootTag

	// name is the resolved root name, for element and attribute
	// roots.
	name ExpandedName

	// expecting is the description used in rejection errors.
	expecting string

	// attrs are the attribute-consuming fields (attribute and group
	// classes) in declaration order.
	attrs []*fieldBinding

	// children are the child-consuming fields (element, value and
	// group classes) in declaration order.
	children []*fieldBinding

	// value is the single content field of an attribute or value
	// root.
	value *fieldBinding
}

// fieldBinding is the compiled shape of one struct field.
type fieldBinding struct {
	index     int
	fieldName string
	typ       reflect.Type
	tag       FieldTag

	// name is the resolved markup name. Zero for value-class fields
	// and for fields whose type carries its own identity.
	name ExpandedName

	// selfNamed is true when the field's type resolves its own name,
	// so no wrapper is synthesized.
	selfNamed bool

	// perItem is true for slice fields behind a synthesized wrapper:
	// the wrapper applies to each item, and repeated occurrences
	// fold into the slice.
	perItem bool
}

// required reports whether the field must be present in input.
func (f *fieldBinding) required() bool {
	return !f.tag.Optional && f.typ.Kind() != reflect.Pointer && f.typ.Kind() != reflect.Slice
}

var bindingCache sync.Map // reflect.Type -> *binding or *BindingError

// compileBinding compiles and caches the binding of a struct type.
func compileBinding(t reflect.Type) (*binding, error) {
	if cached, ok := bindingCache.Load(t); ok {
		switch v := cached.(type) {
		case *binding:
			return v, nil
		case *BindingError:
			return nil, v
		}
	}
	b, err := compile(t)
	if err != nil {
		var be *BindingError
		if e, ok := err.(*BindingError); ok {
			be = e
		} else {
			be = NewBindingError(t.Name(), "", err.Error(), err)
		}
		bindingCache.Store(t, be)
		return nil, be
	}
	bindingCache.Store(t, b)
	return b, nil
}

// Validate compiles the binding of v's type eagerly, returning any
// annotation problem without deserializing anything. v must be a
// struct or pointer to struct.
func Validate(v any) error {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: not a struct type", ErrInvalidBinding)
	}
	_, err := compileBinding(t)
	return err
}

func compile(t reflect.Type) (*binding, error) {
	if t.Kind() != reflect.Struct {
		return nil, NewBindingError(t.Name(), "", "not a struct", nil)
	}
	b := &binding{typ: t}

	// Locate the marker field first; its options shape everything
	// else.
	markerSeen := false
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		kind, ok := markerKind(f.Type)
		if !ok {
			continue
		}
		if markerSeen {
			return nil, NewBindingError(t.Name(), f.Name, "multiple root markers", nil)
		}
		markerSeen = true
		rt, err := ParseRootTag(kind, f.Tag.Get(TagKey))
		if err != nil {
			return nil, NewBindingError(t.Name(), f.Name, err.Error(), err)
		}
		b.root = rt
	}

	switch b.root.Kind {
	case RootElement, RootAttribute:
		local := b.root.Name
		if local == "" {
			local = t.Name()
		}
		b.name = NameNS(local, b.root.Namespace)
	}
	b.expecting = fmt.Sprintf("struct %s", t.Name())

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if _, ok := markerKind(f.Type); ok {
			continue
		}
		if !f.IsExported() {
			continue
		}
		ft, err := ParseFieldTag(f.Tag.Get(TagKey))
		if err != nil {
			return nil, NewBindingError(t.Name(), f.Name, err.Error(), err)
		}
		if ft.Class == ClassSkip {
			continue
		}
		fb := &fieldBinding{
			index:     i,
			fieldName: f.Name,
			typ:       f.Type,
			tag:       ft,
		}
		if err := resolveFieldName(fb); err != nil {
			return nil, NewBindingError(t.Name(), f.Name, err.Error(), err)
		}
		if ft.Class == ClassElement &&
			f.Type.Kind() == reflect.Slice && f.Type.Elem().Kind() != reflect.Uint8 {
			if !fb.selfNamed {
				fb.perItem = true
			}
			// Repeated children keep their window open so a run
			// interrupted by formatting noise can resume.
			if fb.tag.Extendable == ExtendNone {
				fb.tag.Extendable = ExtendIterator
			}
		}
		switch ft.Class {
		case ClassAttribute:
			b.attrs = append(b.attrs, fb)
		case ClassElement, ClassValue:
			b.children = append(b.children, fb)
		case ClassGroup:
			if err := checkGroupField(fb); err != nil {
				return nil, NewBindingError(t.Name(), f.Name, err.Error(), err)
			}
			b.attrs = append(b.attrs, fb)
			b.children = append(b.children, fb)
		}
	}

	switch b.root.Kind {
	case RootAttribute:
		if len(b.attrs) != 0 || len(b.children) != 1 || b.children[0].tag.Class != ClassValue {
			return nil, NewBindingError(t.Name(), "", "attribute root must have exactly one value field", nil)
		}
		b.value = b.children[0]
		b.children = nil
	case RootValue:
		if len(b.attrs) != 0 || len(b.children) != 1 || b.children[0].tag.Class != ClassValue {
			return nil, NewBindingError(t.Name(), "", "value root must have exactly one value field", nil)
		}
		b.value = b.children[0]
		b.children = nil
	case RootNone, RootGroup:
		if len(b.attrs) > 0 && b.root.Kind == RootNone {
			for _, fb := range b.attrs {
				if fb.tag.Class == ClassAttribute {
					return nil, NewBindingError(t.Name(), fb.fieldName, "attribute field requires an element or group root", nil)
				}
			}
		}
	}
	return b, nil
}

// literalRule reports the root's rename_all case rule when it should
// drive a variant field's literals: the field type carries variants
// but no rule of its own.
func (b *binding) literalRule(t reflect.Type) (RenameRule, bool) {
	if b.root.RenameAll == RenamePascal {
		return RenamePascal, false
	}
	if !t.Implements(valueVariantsType) || t.Implements(variantRenamerType) {
		return RenamePascal, false
	}
	return b.root.RenameAll, true
}

// markerKind maps a marker field type to its root kind.
func markerKind(t reflect.Type) (RootKind, bool) {
	switch t {
	case markerElementType:
		return RootElement, true
	case markerAttributeType:
		return RootAttribute, true
	case markerValueType:
		return RootValue, true
	case markerGroupType:
		return RootGroup, true
	default:
		return RootNone, false
	}
}

// resolveFieldName decides between a synthesized wrapper name and the
// field type's own identity.
func resolveFieldName(fb *fieldBinding) error {
	switch fb.tag.Class {
	case ClassValue, ClassGroup:
		return nil
	}
	if fb.tag.Name != "" {
		fb.name = NameNS(fb.tag.Name, fb.tag.Namespace)
		return nil
	}
	if typeIsSelfNamed(fb.typ, fb.tag.Class) {
		fb.selfNamed = true
		return nil
	}
	fb.name = NameNS(fb.fieldName, fb.tag.Namespace)
	return nil
}

// typeIsSelfNamed reports whether a field type resolves its own
// markup name, making a synthesized wrapper unnecessary. Pointers and
// slices defer to their element type.
func typeIsSelfNamed(t reflect.Type, class FieldClass) bool {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	if t.Kind() == reflect.Interface {
		return true
	}
	if class == ClassAttribute {
		if t.Implements(attrSerType) || reflect.PointerTo(t).Implements(attrSerType) {
			return true
		}
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	kind := structRootKind(t)
	switch class {
	case ClassAttribute:
		return kind == RootAttribute
	default:
		return kind == RootElement
	}
}

// structRootKind scans for a marker field without compiling the whole
// binding, so recursive types terminate.
func structRootKind(t reflect.Type) RootKind {
	for i := 0; i < t.NumField(); i++ {
		if kind, ok := markerKind(t.Field(i).Type); ok {
			return kind
		}
	}
	return RootNone
}

func checkGroupField(fb *fieldBinding) error {
	t := fb.typ
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if reflect.PointerTo(t).Implements(groupDeserType) || t.Implements(groupSerType) {
		return nil
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: group field must be a struct", ErrInvalidBinding)
	}
	switch structRootKind(t) {
	case RootGroup, RootNone:
		return nil
	default:
		return fmt.Errorf("%w: group field type must carry a group binding", ErrInvalidBinding)
	}
}
