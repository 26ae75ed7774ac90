package xbind

import (
	"fmt"
	"reflect"
	"strconv"
)

// Serialize writes v to the serializer. Struct values are driven by
// their compiled binding; types implementing Serializable write
// themselves.
func Serialize(s Serializer, v any) error {
	return serializeValue(s, reflect.ValueOf(v))
}

// SerializeAttr writes an attribute-root value through an
// AttributeSerializer.
func SerializeAttr(s AttributeSerializer, v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Errorf("%w: nil attribute value", ErrNotSerializable)
		}
		rv = rv.Elem()
	}
	attr, err := attributeOf(rv)
	if err != nil {
		return err
	}
	return attr.SerializeXMLAttribute(s)
}

// ValueOf serializes v into a Value tree.
func ValueOf(v any) (Value, error) {
	var sink valueSink
	if err := serializeValue(&sink, reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	if sink.out == nil {
		return None{}, nil
	}
	return sink.out, nil
}

// serializableFunc adapts a closure to the Serializable protocol.
type serializableFunc func(Serializer) error

func (f serializableFunc) SerializeXML(s Serializer) error { return f(s) }

// serializeValue dispatches on the value's type.
func serializeValue(s Serializer, rv reflect.Value) error {
	if !rv.IsValid() {
		return s.SerializeNone()
	}
	t := rv.Type()

	if target, ok := asSerializable(rv); ok {
		return target.SerializeXML(s)
	}
	if t.Implements(valueVariantsType) {
		literal, err := variantLiteral(rv)
		if err != nil {
			return err
		}
		return s.SerializeText(literal)
	}

	switch t.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return s.SerializeNone()
		}
		return serializeValue(s, rv.Elem())
	case reflect.Interface:
		if rv.IsNil() {
			return s.SerializeNone()
		}
		return serializeValue(s, rv.Elem())
	case reflect.Struct:
		return serializeStruct(s, rv)
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return s.SerializeText(string(rv.Bytes()))
		}
		return serializeSlice(s, rv)
	default:
		text, err := formatText(rv)
		if err != nil {
			return err
		}
		return s.SerializeText(text)
	}
}

func asSerializable(rv reflect.Value) (Serializable, bool) {
	if target, ok := rv.Interface().(Serializable); ok {
		return target, true
	}
	if rv.CanAddr() {
		if target, ok := rv.Addr().Interface().(Serializable); ok {
			return target, true
		}
	}
	return nil, false
}

func serializeSlice(s Serializer, rv reflect.Value) error {
	seq, err := s.SerializeSeq()
	if err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i)
		if err := seq.SerializeElement(serializableFunc(func(inner Serializer) error {
			return serializeValue(inner, item)
		})); err != nil {
			return err
		}
	}
	return seq.End()
}

// serializeStruct writes a struct per its root kind. Serialization
// needs no ordering search: fields are written in declaration order,
// which is by construction an order the deserializer accepts.
func serializeStruct(s Serializer, rv reflect.Value) error {
	b, err := compileBinding(rv.Type())
	if err != nil {
		return err
	}
	switch b.root.Kind {
	case RootElement:
		return serializeElementRoot(s, b, rv)
	case RootAttribute:
		return fmt.Errorf("%w: attribute root %s outside an attribute position", ErrNotSerializable, b.typ.Name())
	case RootValue:
		fv := rv.Field(b.value.index)
		if rule, ok := b.literalRule(fv.Type()); ok {
			literal, err := variantLiteralRule(fv, rule)
			if err != nil {
				return err
			}
			return s.SerializeText(literal)
		}
		return serializeValue(s, fv)
	default:
		seq, err := s.SerializeSeq()
		if err != nil {
			return err
		}
		for _, fb := range b.children {
			if err := serializeChildField(seq, fb, rv.Field(fb.index)); err != nil {
				return err
			}
		}
		return seq.End()
	}
}

func serializeElementRoot(s Serializer, b *binding, rv reflect.Value) error {
	es, err := s.SerializeElement(b.name)
	if err != nil {
		return err
	}
	if b.root.Prefix != PrefixDefault {
		if err := es.PreferPrefix(b.root.Prefix); err != nil {
			return err
		}
		policy := IncludePrefixPreferred
		if b.root.EnforcePrefix {
			policy = IncludePrefixAlways
		}
		if err := es.IncludePrefix(policy); err != nil {
			return err
		}
	}
	if len(b.attrs) == 0 && len(b.children) == 0 {
		return es.End()
	}
	as, err := es.SerializeAttributes()
	if err != nil {
		return err
	}
	for _, fb := range b.attrs {
		if err := serializeAttrField(as, fb, rv.Field(fb.index)); err != nil {
			return err
		}
	}
	if len(b.children) == 0 {
		return as.End()
	}
	cs, err := as.SerializeChildren()
	if err != nil {
		return err
	}
	for _, fb := range b.children {
		if err := serializeChildField(cs, fb, rv.Field(fb.index)); err != nil {
			return err
		}
	}
	return cs.End()
}

// serializeChildField writes one element or value field into a
// sequence. Group fields contribute their own child fields in place.
func serializeChildField(seq SeqSerializer, fb *fieldBinding, fv reflect.Value) error {
	if fb.tag.Class == ClassAttribute {
		return nil
	}
	if fb.tag.Class == ClassGroup {
		return serializeGroupChildren(seq, fv)
	}
	if fb.tag.SkipEmpty && isEmptyValue(fv) {
		return nil
	}
	if fv.Kind() == reflect.Pointer && fv.IsNil() {
		return nil
	}
	if fb.perItem {
		for i := 0; i < fv.Len(); i++ {
			item := fv.Index(i)
			if err := seq.SerializeElement(serializableFunc(func(s Serializer) error {
				return serializeWrapped(s, fb, item)
			})); err != nil {
				return err
			}
		}
		return nil
	}
	if fb.tag.Class == ClassElement && !fb.selfNamed {
		return seq.SerializeElement(serializableFunc(func(s Serializer) error {
			return serializeWrapped(s, fb, fv)
		}))
	}
	return seq.SerializeElement(serializableFunc(func(s Serializer) error {
		return serializeValue(s, fv)
	}))
}

// serializeWrapped writes the synthesized wrapper element around a
// field value.
func serializeWrapped(s Serializer, fb *fieldBinding, fv reflect.Value) error {
	es, err := s.SerializeElement(fb.name)
	if err != nil {
		return err
	}
	if fb.tag.Prefix != PrefixDefault {
		if err := es.PreferPrefix(fb.tag.Prefix); err != nil {
			return err
		}
		policy := IncludePrefixPreferred
		if fb.tag.EnforcePrefix {
			policy = IncludePrefixAlways
		}
		if err := es.IncludePrefix(policy); err != nil {
			return err
		}
	}
	cs, err := es.SerializeChildren()
	if err != nil {
		return err
	}
	if err := cs.SerializeElement(serializableFunc(func(inner Serializer) error {
		return serializeValue(inner, fv)
	})); err != nil {
		return err
	}
	return cs.End()
}

// serializeAttrField writes one attribute field. Deferred attributes
// carry their own name; declared attributes wrap the field value
// under the schema's name.
func serializeAttrField(as ElementAttributesSerializer, fb *fieldBinding, fv reflect.Value) error {
	if fb.tag.Class == ClassGroup {
		return serializeGroupAttrs(as, fv)
	}
	if fb.tag.Class != ClassAttribute {
		return nil
	}
	if fb.tag.SkipEmpty && isEmptyValue(fv) {
		return nil
	}
	for fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	if fb.selfNamed {
		if target, ok := fv.Interface().(AttributeSerializable); ok {
			return as.SerializeAttribute(target)
		}
		attr, err := attributeOf(fv)
		if err != nil {
			return err
		}
		return as.SerializeAttribute(attr)
	}
	text, err := formatText(fv)
	if err != nil {
		return err
	}
	return as.SerializeAttribute(Attribute{Name: fb.name, Value: text})
}

// attributeOf renders an attribute-root struct as a concrete
// Attribute.
func attributeOf(rv reflect.Value) (Attribute, error) {
	b, err := compileBinding(rv.Type())
	if err != nil {
		return Attribute{}, err
	}
	if b.root.Kind != RootAttribute {
		return Attribute{}, fmt.Errorf("%w: %s is not an attribute root", ErrNotSerializable, b.typ.Name())
	}
	text, err := formatText(rv.Field(b.value.index))
	if err != nil {
		return Attribute{}, err
	}
	return Attribute{Name: b.name, Value: text}, nil
}

func serializeGroupChildren(seq SeqSerializer, fv reflect.Value) error {
	for fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	if g, ok := fv.Interface().(GroupSerializable); ok {
		return g.SerializeChildrenGroup(seq)
	}
	b, err := compileBinding(fv.Type())
	if err != nil {
		return err
	}
	for _, fb := range b.children {
		if err := serializeChildField(seq, fb, fv.Field(fb.index)); err != nil {
			return err
		}
	}
	return nil
}

func serializeGroupAttrs(as ElementAttributesSerializer, fv reflect.Value) error {
	for fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	if g, ok := fv.Interface().(GroupSerializable); ok {
		return g.SerializeAttributeGroup(as)
	}
	b, err := compileBinding(fv.Type())
	if err != nil {
		return err
	}
	for _, fb := range b.attrs {
		if err := serializeAttrField(as, fb, fv.Field(fb.index)); err != nil {
			return err
		}
	}
	return nil
}

// variantLiteral maps a variant identifier to its markup literal.
func variantLiteral(rv reflect.Value) (string, error) {
	return variantLiteralRule(rv, variantRule(rv.Interface()))
}

func variantLiteralRule(rv reflect.Value, rule RenameRule) (string, error) {
	t := rv.Type()
	if t.Kind() != reflect.String {
		return "", NewBindingError(t.Name(), "", "variant literals require a string kind", nil)
	}
	ident := rv.String()
	for _, candidate := range rv.Interface().(ValueVariants).XMLVariants() {
		if candidate == ident {
			return rule.Apply(ident), nil
		}
	}
	return "", NewNoPossibleVariantError(t.Name())
}

// formatText renders a scalar as character data.
func formatText(rv reflect.Value) (string, error) {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", fmt.Errorf("%w: nil value has no text form", ErrNotSerializable)
		}
		rv = rv.Elem()
	}
	t := rv.Type()
	if t.Implements(valueVariantsType) {
		return variantLiteral(rv)
	}
	switch t.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, t.Bits()), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes()), nil
		}
	}
	return "", fmt.Errorf("%w: %s has no text form", ErrNotSerializable, t)
}
