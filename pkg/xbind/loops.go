package xbind

import (
	"fmt"
	"reflect"
)

// errNoMatch is returned by group contributions when no sub-field
// matched the item under the cursor. It wraps ErrWrongName so probing
// loops treat it as a recoverable mismatch.
var errNoMatch = fmt.Errorf("%w: no group field matched", ErrWrongName)

// fieldState is the per-field build state of one deserialize call.
// Values accumulate in a scratch slot and are written to the target
// struct only at resolve time, so a failed attempt never leaves a
// half-written field behind.
type fieldState struct {
	fb *fieldBinding

	// set is true once at least one occurrence matched.
	set bool

	// closed is true when a later field matched under strict order,
	// ending this field's one matching window.
	closed bool

	// spent is true when an extendable field stopped making
	// progress and should no longer be offered input.
	spent bool

	// val is the scratch slot, of the field's type.
	val reflect.Value

	// group is the nested build state for reflected group fields.
	group *groupState

	// builder is the field's own builder for types implementing
	// GroupDeserializable; tmp holds the value it populates.
	builder GroupBuilder
	tmp     reflect.Value
}

// groupState drives a group field's contributions with the group
// type's own ordering policies.
type groupState struct {
	b        *binding
	attrs    []*fieldState
	children []*fieldState
	all      []*fieldState
}

func newFieldState(fb *fieldBinding) (*fieldState, error) {
	st := &fieldState{fb: fb, val: reflect.New(fb.typ).Elem()}
	if fb.tag.Class != ClassGroup {
		return st, nil
	}
	t := fb.typ
	if reflect.PointerTo(t).Implements(groupDeserType) {
		st.tmp = reflect.New(t)
		st.builder = st.tmp.Interface().(GroupDeserializable).GroupBuilder()
		return st, nil
	}
	gb, err := compileBinding(t)
	if err != nil {
		return nil, err
	}
	attrs, children, all, err := newStructStates(gb)
	if err != nil {
		return nil, err
	}
	st.group = &groupState{b: gb, attrs: attrs, children: children, all: all}
	return st, nil
}

// newStructStates builds the field states for one struct binding.
// Group fields appear in both the attribute and child lists but share
// one state.
func newStructStates(b *binding) (attrs, children, all []*fieldState, err error) {
	byIndex := make(map[int]*fieldState)
	state := func(fb *fieldBinding) (*fieldState, error) {
		if st, ok := byIndex[fb.index]; ok {
			return st, nil
		}
		st, err := newFieldState(fb)
		if err != nil {
			return nil, err
		}
		byIndex[fb.index] = st
		all = append(all, st)
		return st, nil
	}
	for _, fb := range b.attrs {
		st, err := state(fb)
		if err != nil {
			return nil, nil, nil, err
		}
		attrs = append(attrs, st)
	}
	for _, fb := range b.children {
		st, err := state(fb)
		if err != nil {
			return nil, nil, nil, err
		}
		children = append(children, st)
	}
	return attrs, children, all, nil
}

// doneChildren reports whether the field can take no further child
// input.
func (st *fieldState) doneChildren() bool {
	if st.closed || st.spent {
		return true
	}
	if st.builder != nil {
		return st.builder.ElementsDone()
	}
	if st.group != nil {
		return allDone(st.group.children, (*fieldState).doneChildren)
	}
	return st.set && st.fb.tag.Extendable == ExtendNone
}

// doneAttrs reports whether the field can take no further attribute
// input.
func (st *fieldState) doneAttrs() bool {
	if st.closed || st.spent {
		return true
	}
	if st.builder != nil {
		return st.builder.AttributesDone()
	}
	if st.group != nil {
		return allDone(st.group.attrs, (*fieldState).doneAttrs)
	}
	return st.set
}

func allDone(states []*fieldState, done func(*fieldState) bool) bool {
	for _, st := range states {
		if !done(st) {
			return false
		}
	}
	return true
}

// childLoop matches the child field list against a SeqAccess. Both
// ordering policies run the same scan; strict order additionally
// closes the window of every earlier field when a later one matches.
func childLoop(access SeqAccess, states []*fieldState, root RootTag) error {
	for {
		if err := skipNoise(access, root); err != nil {
			return err
		}
		matched, exhausted := false, false
		for i, st := range states {
			if st.doneChildren() {
				continue
			}
			ok, err := attemptChild(access, st)
			if err != nil {
				if !IsRecoverable(err) {
					return err
				}
				continue
			}
			if !ok {
				exhausted = true
				break
			}
			matched = true
			if root.ChildrenOrder == OrderStrict {
				closeBefore(states[:i])
			}
			break
		}
		if matched {
			continue
		}
		if exhausted {
			return nil
		}
		switch root.AllowUnknownChildren {
		case AllowUnknownAny:
			ok, err := access.NextElement(IgnoredAny{})
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		case AllowUnknownAtEnd:
			return nil
		case AllowUnknownNone:
			ok, err := access.NextElement(IgnoredAny{})
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			return ErrUnknownChild
		}
	}
}

// attrLoop is the attribute counterpart of childLoop.
func attrLoop(access AttributesAccess, states []*fieldState, root RootTag) error {
	for {
		matched, exhausted := false, false
		for i, st := range states {
			if st.doneAttrs() {
				continue
			}
			ok, err := attemptAttr(access, st)
			if err != nil {
				if !IsRecoverable(err) {
					return err
				}
				continue
			}
			if !ok {
				exhausted = true
				break
			}
			matched = true
			if root.AttributeOrder == OrderStrict {
				closeBefore(states[:i])
			}
			break
		}
		if matched {
			continue
		}
		if exhausted {
			return nil
		}
		switch root.AllowUnknownAttributes {
		case AllowUnknownAny:
			ok, err := access.NextAttribute(IgnoredAny{})
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		case AllowUnknownAtEnd:
			return nil
		case AllowUnknownNone:
			ok, err := access.NextAttribute(IgnoredAny{})
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			return ErrUnknownAttribute
		}
	}
}

func closeBefore(states []*fieldState) {
	for _, st := range states {
		st.closed = true
	}
}

// skipNoise consumes whitespace text and comments ahead of the
// cursor, per the root's ignore policies. Failed probes do not
// consume.
func skipNoise(access SeqAccess, root RootTag) error {
	for {
		progressed := false
		if root.IgnoreWhitespace == IgnoreAny {
			var ws Whitespace
			if ok, _ := access.NextElement(&ws); ok {
				progressed = true
			}
		}
		if root.IgnoreComments == IgnoreAny {
			if ok, _ := access.NextElement(commentProbe{}); ok {
				progressed = true
			}
		}
		if !progressed {
			return nil
		}
	}
}

// attemptChild offers the item under the cursor to one field.
// Returns (true, nil) on a match, (false, nil) when the stream is
// exhausted, and an error when the item did not match.
func attemptChild(access SeqAccess, st *fieldState) (bool, error) {
	if st.builder != nil {
		consumed, err := st.builder.ContributeElements(access)
		if err != nil {
			return false, err
		}
		if !consumed {
			return false, errNoMatch
		}
		return true, nil
	}
	if st.group != nil {
		return st.group.contributeChildren(access)
	}

	var tmp reflect.Value
	var target Deserializable
	switch {
	case st.fb.perItem:
		// One wrapper element per slice item; occurrences fold.
		item := reflect.New(st.fb.typ.Elem()).Elem()
		tmp = reflect.MakeSlice(st.fb.typ, 0, 1)
		target = wrapperTarget(st.fb.name, item)
		ok, err := access.NextElementSeq(target)
		if err != nil || !ok {
			return ok, err
		}
		st.merge(reflect.Append(tmp, item))
		return true, nil
	case !st.fb.selfNamed && st.fb.tag.Class == ClassElement:
		tmp = reflect.New(st.fb.typ).Elem()
		target = wrapperTarget(st.fb.name, tmp)
	default:
		tmp = reflect.New(st.fb.typ).Elem()
		target = deserializableFunc(func(d Deserializer) error {
			return deserializeValue(d, tmp)
		})
	}
	ok, err := access.NextElementSeq(target)
	if err != nil || !ok {
		return ok, err
	}
	st.merge(tmp)
	return true, nil
}

// attemptAttr offers the attribute under the cursor to one field.
func attemptAttr(access AttributesAccess, st *fieldState) (bool, error) {
	if st.builder != nil {
		consumed, err := st.builder.ContributeAttributes(access)
		if err != nil {
			return false, err
		}
		if !consumed {
			return false, errNoMatch
		}
		return true, nil
	}
	if st.group != nil {
		return st.group.contributeAttrs(access)
	}

	tmp := reflect.New(st.fb.typ).Elem()
	var target Deserializable
	if st.fb.selfNamed {
		target = deserializableFunc(func(d Deserializer) error {
			return deserializeValue(d, tmp)
		})
	} else {
		target = declaredAttrTarget(st.fb.name, tmp)
	}
	ok, err := access.NextAttribute(target)
	if err != nil || !ok {
		return ok, err
	}
	st.merge(tmp)
	return true, nil
}

// contributeChildren runs one match attempt over the group's own
// child fields.
func (g *groupState) contributeChildren(access SeqAccess) (bool, error) {
	for i, st := range g.children {
		if st.doneChildren() {
			continue
		}
		ok, err := attemptChild(access, st)
		if err != nil {
			if !IsRecoverable(err) {
				return false, err
			}
			continue
		}
		if !ok {
			return false, nil
		}
		if g.b.root.ChildrenOrder == OrderStrict {
			closeBefore(g.children[:i])
		}
		return true, nil
	}
	return false, errNoMatch
}

// contributeAttrs runs one match attempt over the group's own
// attribute fields.
func (g *groupState) contributeAttrs(access AttributesAccess) (bool, error) {
	for i, st := range g.attrs {
		if st.doneAttrs() {
			continue
		}
		ok, err := attemptAttr(access, st)
		if err != nil {
			if !IsRecoverable(err) {
				return false, err
			}
			continue
		}
		if !ok {
			return false, nil
		}
		if g.b.root.AttributeOrder == OrderStrict {
			closeBefore(g.attrs[:i])
		}
		return true, nil
	}
	return false, errNoMatch
}

// merge folds a freshly matched occurrence into the accumulated
// value. Non-extendable fields take the first occurrence as-is;
// extendable strings concatenate and extendable slices append. An
// occurrence that adds nothing marks the field spent so scanning
// loops cannot spin on it.
func (st *fieldState) merge(tmp reflect.Value) {
	if !st.set {
		st.val.Set(tmp)
		st.set = true
		if st.fb.tag.Extendable != ExtendNone && isEmptyValue(tmp) {
			st.spent = true
		}
		return
	}
	switch st.val.Kind() {
	case reflect.String:
		if tmp.Len() == 0 {
			st.spent = true
			return
		}
		st.val.SetString(st.val.String() + tmp.String())
	case reflect.Slice:
		if tmp.Len() == 0 {
			st.spent = true
			return
		}
		st.val.Set(reflect.AppendSlice(st.val, tmp))
	default:
		st.val.Set(tmp)
		st.spent = true
	}
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}

// resolve writes every field's final value into the target struct.
// Absent required fields error here; absent optional fields fill from
// their default.
func resolve(states []*fieldState, rv reflect.Value) error {
	for _, st := range states {
		field := rv.Field(st.fb.index)
		if st.builder != nil {
			if err := st.builder.Finish(); err != nil {
				return err
			}
			field.Set(st.tmp.Elem())
			continue
		}
		if st.group != nil {
			if err := resolve(st.group.all, st.val); err != nil {
				return err
			}
			field.Set(st.val)
			continue
		}
		if st.set {
			field.Set(st.val)
			continue
		}
		if st.fb.required() {
			if st.fb.name.IsZero() {
				return ErrMissingData
			}
			return NewMissingFieldError(st.fb.fieldName)
		}
		if st.fb.tag.Default {
			field.Set(defaultValue(st.fb.typ))
		}
	}
	return nil
}

// defaultValue builds a field's fallback value, honoring Defaulter.
func defaultValue(t reflect.Type) reflect.Value {
	ptr := reflect.New(t)
	if d, ok := ptr.Interface().(Defaulter); ok {
		d.DefaultXML()
	}
	return ptr.Elem()
}

// wrapperTarget deserializes a synthesized wrapper element: the name
// is checked, then the inner value is read from the element's
// children with sequence semantics.
func wrapperTarget(name ExpandedName, inner reflect.Value) Deserializable {
	return deserializableFunc(func(d Deserializer) error {
		return d.DeserializeAny(&wrapperVisitor{name: name, inner: inner})
	})
}

type wrapperVisitor struct {
	UnimplementedVisitor
	name  ExpandedName
	inner reflect.Value
}

func (v *wrapperVisitor) Expecting() string {
	return fmt.Sprintf("element %s", v.name)
}

func (v *wrapperVisitor) VisitElement(access ElementAccess) error {
	if err := EnsureElementName(access, v.name); err != nil {
		return err
	}
	children, err := access.Children()
	if err != nil {
		return err
	}
	return deserializeValue(&childrenDeserializer{children: children}, v.inner)
}

// declaredAttrTarget deserializes a schema-named attribute wrapping a
// plain value.
func declaredAttrTarget(name ExpandedName, inner reflect.Value) Deserializable {
	return deserializableFunc(func(d Deserializer) error {
		return d.DeserializeAny(&declaredAttrVisitor{name: name, inner: inner})
	})
}

type declaredAttrVisitor struct {
	UnimplementedVisitor
	name  ExpandedName
	inner reflect.Value
}

func (v *declaredAttrVisitor) Expecting() string {
	return fmt.Sprintf("attribute %s", v.name)
}

func (v *declaredAttrVisitor) VisitAttribute(access AttributeAccess) error {
	if err := EnsureAttributeName(access, v.name); err != nil {
		return err
	}
	return setFromText(v.inner, access.Value())
}

// childrenDeserializer positions a Deserializer over an element's
// child list. Plain deserialization takes the first child; sequence
// deserialization exposes the whole list.
type childrenDeserializer struct {
	children SeqAccess
}

func (d *childrenDeserializer) DeserializeAny(v Visitor) error {
	ok, err := d.children.NextElement(deserializableFunc(func(inner Deserializer) error {
		return inner.DeserializeAny(v)
	}))
	if err != nil {
		return err
	}
	if !ok {
		return v.VisitNone()
	}
	return nil
}

func (d *childrenDeserializer) DeserializeSeq(v Visitor) error {
	return v.VisitSeq(d.children)
}
