package xbind

import (
	"fmt"
	"reflect"
	"strconv"
)

// Deserialize reads one value from the deserializer into target,
// which must be a non-nil pointer. Struct targets are driven by their
// compiled binding; types implementing Deserializable read
// themselves.
func Deserialize(d Deserializer, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer {
		return ErrNotPointer
	}
	if rv.IsNil() {
		return ErrNilPointer
	}
	return deserializeValue(d, rv.Elem())
}

// FromValue deserializes a Value tree into target.
func FromValue(v Value, target any) error {
	return Deserialize(NewValueDeserializer(v), target)
}

// deserializeValue dispatches on the target's type.
func deserializeValue(d Deserializer, rv reflect.Value) error {
	t := rv.Type()

	// Custom implementations win over the compiled binding.
	if rv.CanAddr() {
		if target, ok := rv.Addr().Interface().(Deserializable); ok {
			return target.DeserializeXML(d)
		}
	}
	if t == valueType {
		v, err := CaptureValue(d)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(v))
		return nil
	}
	if t.Implements(valueVariantsType) {
		return deserializeVariantLiteral(d, rv)
	}

	switch t.Kind() {
	case reflect.Pointer:
		ptr := reflect.New(t.Elem())
		if err := deserializeValue(d, ptr.Elem()); err != nil {
			return err
		}
		rv.Set(ptr)
		return nil
	case reflect.Interface:
		return deserializeChoice(d, rv)
	case reflect.Struct:
		return deserializeStruct(d, rv)
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return deserializeScalar(d, rv)
		}
		return deserializeSlice(d, rv)
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return deserializeScalar(d, rv)
	default:
		return NewDeserializeError(t.String(), "", fmt.Errorf("%w: unsupported kind %s", ErrInvalidBinding, t.Kind()))
	}
}

// deserializeStruct runs the compiled binding for the root kind.
func deserializeStruct(d Deserializer, rv reflect.Value) error {
	b, err := compileBinding(rv.Type())
	if err != nil {
		return err
	}
	switch b.root.Kind {
	case RootElement:
		return d.DeserializeAny(&elementVisitor{b: b, rv: rv})
	case RootAttribute:
		return d.DeserializeAny(&attrRootVisitor{b: b, rv: rv})
	case RootValue:
		fv := rv.Field(b.value.index)
		if rule, ok := b.literalRule(fv.Type()); ok {
			return deserializeVariantRule(d, fv, rule)
		}
		return deserializeValue(d, fv)
	default:
		// No markup identity: the struct is the sequence of its
		// children.
		return d.DeserializeSeq(&seqRootVisitor{b: b, rv: rv})
	}
}

// elementVisitor accepts one element, checks its name and runs the
// attribute and child loops.
type elementVisitor struct {
	UnimplementedVisitor
	b  *binding
	rv reflect.Value
}

func (v *elementVisitor) Expecting() string { return v.b.expecting }

func (v *elementVisitor) VisitElement(access ElementAccess) error {
	if err := EnsureElementName(access, v.b.name); err != nil {
		return err
	}
	attrs, children, all, err := newStructStates(v.b)
	if err != nil {
		return err
	}
	if err := attrLoop(access, attrs, v.b.root); err != nil {
		return err
	}
	childAccess, err := access.Children()
	if err != nil {
		return err
	}
	if err := childLoop(childAccess, children, v.b.root); err != nil {
		return err
	}
	if err := resolve(all, v.rv); err != nil {
		return wrapResolve(v.b, err)
	}
	return nil
}

// attrRootVisitor accepts one attribute for an attribute-root struct.
type attrRootVisitor struct {
	UnimplementedVisitor
	b  *binding
	rv reflect.Value
}

func (v *attrRootVisitor) Expecting() string { return v.b.expecting }

func (v *attrRootVisitor) VisitAttribute(access AttributeAccess) error {
	if err := EnsureAttributeName(access, v.b.name); err != nil {
		return err
	}
	return setFromText(v.rv.Field(v.b.value.index), access.Value())
}

// seqRootVisitor runs the child loop for a struct with no markup
// identity of its own.
type seqRootVisitor struct {
	UnimplementedVisitor
	b  *binding
	rv reflect.Value
}

func (v *seqRootVisitor) Expecting() string { return v.b.expecting }

func (v *seqRootVisitor) VisitSeq(access SeqAccess) error {
	_, children, all, err := newStructStates(v.b)
	if err != nil {
		return err
	}
	if err := childLoop(access, children, v.b.root); err != nil {
		return err
	}
	if err := resolve(all, v.rv); err != nil {
		return wrapResolve(v.b, err)
	}
	return nil
}

func wrapResolve(b *binding, err error) error {
	if _, ok := err.(*DeserializeError); ok {
		return err
	}
	return NewDeserializeError(b.typ.Name(), "", err)
}

// deserializeSlice collects consecutive matching items. A mismatching
// item ends the run without being consumed, so an empty run is a
// successful empty slice.
func deserializeSlice(d Deserializer, rv reflect.Value) error {
	return d.DeserializeSeq(&sliceVisitor{rv: rv})
}

type sliceVisitor struct {
	UnimplementedVisitor
	rv reflect.Value
}

func (v *sliceVisitor) Expecting() string {
	return fmt.Sprintf("a sequence of %s", v.rv.Type().Elem())
}

func (v *sliceVisitor) VisitSeq(access SeqAccess) error {
	elemType := v.rv.Type().Elem()
	out := reflect.MakeSlice(v.rv.Type(), 0, 0)
	for {
		item := reflect.New(elemType).Elem()
		ok, err := access.NextElement(deserializableFunc(func(d Deserializer) error {
			return deserializeValue(d, item)
		}))
		if err != nil {
			if IsRecoverable(err) {
				break
			}
			return err
		}
		if !ok {
			break
		}
		out = reflect.Append(out, item)
	}
	v.rv.Set(out)
	return nil
}

// deserializeScalar reads character data, a CDATA section or an
// attribute value and parses it into a Go scalar.
func deserializeScalar(d Deserializer, rv reflect.Value) error {
	var text string
	if err := d.DeserializeAny(&textVisitor{out: &text, expecting: rv.Type().String()}); err != nil {
		return err
	}
	return setFromText(rv, text)
}

type textVisitor struct {
	UnimplementedVisitor
	out       *string
	expecting string
}

func (v *textVisitor) Expecting() string { return v.expecting }

func (v *textVisitor) VisitText(value string) error {
	*v.out = value
	return nil
}

func (v *textVisitor) VisitCData(value string) error {
	*v.out = value
	return nil
}

func (v *textVisitor) VisitAttribute(access AttributeAccess) error {
	*v.out = access.Value()
	return nil
}

func (v *textVisitor) VisitNone() error {
	return ErrMissingData
}

// setFromText parses character data into a scalar value.
func setFromText(rv reflect.Value, text string) error {
	if rv.CanAddr() {
		if target, ok := rv.Addr().Interface().(Deserializable); ok {
			return target.DeserializeXML(NewValueDeserializer(Text(text)))
		}
	}
	t := rv.Type()
	if t.Implements(valueVariantsType) {
		return setVariantLiteral(rv, text)
	}
	switch t.Kind() {
	case reflect.Pointer:
		ptr := reflect.New(t.Elem())
		if err := setFromText(ptr.Elem(), text); err != nil {
			return err
		}
		rv.Set(ptr)
		return nil
	case reflect.String:
		rv.SetString(text)
		return nil
	case reflect.Bool:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return invalidString(text, t)
		}
		rv.SetBool(v)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(text, 10, t.Bits())
		if err != nil {
			return invalidString(text, t)
		}
		rv.SetInt(v)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(text, 10, t.Bits())
		if err != nil {
			return invalidString(text, t)
		}
		rv.SetUint(v)
		return nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(text, t.Bits())
		if err != nil {
			return invalidString(text, t)
		}
		rv.SetFloat(v)
		return nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			rv.SetBytes([]byte(text))
			return nil
		}
	}
	return invalidString(text, t)
}

func invalidString(text string, t reflect.Type) error {
	return fmt.Errorf("%w: %q is not a valid %s", ErrInvalidString, text, t)
}

// deserializeVariantLiteral reads a character-data literal and maps
// it back to its variant identifier.
func deserializeVariantLiteral(d Deserializer, rv reflect.Value) error {
	return deserializeVariantRule(d, rv, variantRule(rv.Interface()))
}

func deserializeVariantRule(d Deserializer, rv reflect.Value, rule RenameRule) error {
	var text string
	if err := d.DeserializeAny(&textVisitor{out: &text, expecting: rv.Type().String()}); err != nil {
		return err
	}
	return setVariantLiteralRule(rv, text, rule)
}

func setVariantLiteral(rv reflect.Value, text string) error {
	return setVariantLiteralRule(rv, text, variantRule(rv.Interface()))
}

func setVariantLiteralRule(rv reflect.Value, text string, rule RenameRule) error {
	t := rv.Type()
	if t.Kind() != reflect.String {
		return NewBindingError(t.Name(), "", "variant literals require a string kind", nil)
	}
	for _, ident := range rv.Interface().(ValueVariants).XMLVariants() {
		if rule.Apply(ident) == text {
			rv.SetString(ident)
			return nil
		}
	}
	return NewNoPossibleVariantError(t.Name())
}

// variantRule returns the case rule for a variant type, defaulting to
// the identity rule.
func variantRule(v any) RenameRule {
	if r, ok := v.(VariantRenamer); ok {
		return r.XMLVariantRename()
	}
	return RenamePascal
}

// deserializeChoice resolves an interface-typed target against its
// registered variants, in registration order. The value is captured
// once, then each variant is probed against the capture; the first
// clean deserialization wins.
func deserializeChoice(d Deserializer, rv reflect.Value) error {
	t := rv.Type()
	variants := variantsOf(t)
	if len(variants) == 0 {
		return fmt.Errorf("%w: %s", ErrUnregisteredType, t)
	}
	captured, err := CaptureValue(d)
	if err != nil {
		return err
	}
	for _, vt := range variants {
		inst := reflect.New(vt)
		if err := deserializeValue(NewValueDeserializer(captured), inst.Elem()); err != nil {
			if IsRecoverable(err) {
				continue
			}
			return err
		}
		rv.Set(inst.Elem())
		return nil
	}
	return NewNoPossibleVariantError(t.Name())
}
