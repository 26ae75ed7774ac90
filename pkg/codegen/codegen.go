// Package codegen generates annotated Go types from sample XML
// documents. It infers a schema from one document's shape: repeated
// children become slices, attribute and text values get the
// narrowest scalar type that fits every occurrence.
package codegen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/xbind/xbind/internal/xmlname"
	"github.com/xbind/xbind/pkg/xbind"
	"github.com/xbind/xbind/pkg/xmlcodec"
)

// Options configures generation.
type Options struct {
	// Package is the package name of the generated file.
	Package string

	// RootType overrides the derived name of the root element's type.
	RootType string
}

// DefaultOptions returns the default generation configuration.
func DefaultOptions() Options {
	return Options{Package: "model"}
}

// Generate infers types from one sample document and renders them as
// a formatted Go source file.
func Generate(sample []byte, opts Options) ([]byte, error) {
	if opts.Package == "" {
		opts.Package = "model"
	}
	var root xbind.Value
	if err := xmlcodec.Unmarshal(sample, &root); err != nil {
		return nil, fmt.Errorf("codegen: %w", err)
	}
	el, ok := root.(xbind.Element)
	if !ok {
		return nil, fmt.Errorf("codegen: sample has no root element: %w", xbind.ErrMissingData)
	}

	inf := newInference()
	rootType := inf.typeFor(el, opts.RootType)
	src, err := inf.render(opts.Package, rootType)
	if err != nil {
		return nil, err
	}
	out, err := imports.Process("generated.go", src, nil)
	if err != nil {
		return nil, fmt.Errorf("codegen: formatting generated source: %w", err)
	}
	return out, nil
}

// scalarKind is the inferred type of a text or attribute value,
// ordered from narrowest to widest.
type scalarKind uint8

const (
	kindBool scalarKind = iota
	kindInt
	kindFloat
	kindString
)

func (k scalarKind) goType() string {
	switch k {
	case kindBool:
		return "bool"
	case kindInt:
		return "int"
	case kindFloat:
		return "float64"
	default:
		return "string"
	}
}

// kindOf returns the narrowest kind the text parses as.
func kindOf(text string) scalarKind {
	s := strings.TrimSpace(text)
	if s == "true" || s == "false" {
		return kindBool
	}
	// A leading zero marks a formatted code, not a number.
	if len(s) > 1 && s[0] == '0' && s[1] != '.' {
		return kindString
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return kindInt
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return kindFloat
	}
	return kindString
}

// merge widens a to cover b.
func (k scalarKind) merge(other scalarKind) scalarKind {
	if k == other {
		return k
	}
	if (k == kindInt && other == kindFloat) || (k == kindFloat && other == kindInt) {
		return kindFloat
	}
	if other > k {
		return other
	}
	return k
}

// fieldSpec is one inferred struct field.
type fieldSpec struct {
	goName   string
	name     xbind.ExpandedName
	attr     bool
	kind     scalarKind
	typed    bool
	typeRef  string // nested struct type, empty for scalars
	repeated bool
	optional bool
	seen     int // occurrences within the current element
}

// typeSpec is one inferred struct type.
type typeSpec struct {
	goName   string
	elemName xbind.ExpandedName
	fields   []*fieldSpec
	index    map[string]*fieldSpec
	textKind scalarKind
	hasText  bool
	visits   int
}

type inference struct {
	byElement map[xbind.ExpandedName]*typeSpec
	byGoName  map[string]*typeSpec
	order     []*typeSpec
}

func newInference() *inference {
	return &inference{
		byElement: make(map[xbind.ExpandedName]*typeSpec),
		byGoName:  make(map[string]*typeSpec),
	}
}

// typeFor merges one element occurrence into the type inferred for
// its name, creating the type on first sight.
func (inf *inference) typeFor(el xbind.Element, nameOverride string) string {
	ts, ok := inf.byElement[el.Name]
	if !ok {
		goName := nameOverride
		if goName == "" {
			goName = xmlname.GoName(el.Name.Local)
		}
		for i := 2; inf.byGoName[goName] != nil; i++ {
			goName = fmt.Sprintf("%s%d", xmlname.GoName(el.Name.Local), i)
		}
		ts = &typeSpec{
			goName:   goName,
			elemName: el.Name,
			index:    make(map[string]*fieldSpec),
		}
		inf.byElement[el.Name] = ts
		inf.byGoName[goName] = ts
		inf.order = append(inf.order, ts)
	}
	inf.mergeOccurrence(ts, el)
	return ts.goName
}

func (inf *inference) mergeOccurrence(ts *typeSpec, el xbind.Element) {
	ts.visits++
	for _, f := range ts.fields {
		f.seen = 0
	}

	for _, a := range el.Attrs {
		f := inf.field(ts, a.Name, true)
		f.seen++
		f.kind = mergeSeen(f, kindOf(a.Value))
	}

	var text strings.Builder
	for _, child := range el.Children {
		switch c := child.(type) {
		case xbind.Element:
			f := inf.field(ts, c.Name, false)
			f.seen++
			if f.seen > 1 {
				f.repeated = true
			}
			// A child seen with structure once keeps the struct form.
			if f.typeRef == "" && isScalarElement(c) {
				f.kind = mergeSeen(f, kindOf(c.TextContent()))
			} else {
				f.typeRef = inf.typeFor(c, "")
			}
		case xbind.Text:
			text.WriteString(string(c))
		case xbind.CData:
			text.WriteString(string(c))
		}
	}
	if t := strings.TrimSpace(text.String()); t != "" {
		if ts.hasText {
			ts.textKind = ts.textKind.merge(kindOf(t))
		} else {
			ts.hasText = true
			ts.textKind = kindOf(t)
		}
	}

	// Fields absent from this occurrence are optional.
	if ts.visits > 1 {
		for _, f := range ts.fields {
			if f.seen == 0 {
				f.optional = true
			}
		}
	}
}

func mergeSeen(f *fieldSpec, k scalarKind) scalarKind {
	if !f.typed {
		f.typed = true
		return k
	}
	return f.kind.merge(k)
}

func (inf *inference) field(ts *typeSpec, name xbind.ExpandedName, attr bool) *fieldSpec {
	key := name.String()
	if attr {
		key = "@" + key
	}
	if f, ok := ts.index[key]; ok {
		return f
	}
	goName := xmlname.GoName(name.Local)
	for _, existing := range ts.fields {
		if existing.goName == goName {
			goName = goName + "Attr"
			break
		}
	}
	f := &fieldSpec{goName: goName, name: name, attr: attr, kind: kindBool}
	if ts.visits > 1 {
		// New field on a later occurrence: earlier ones lacked it.
		f.optional = true
	}
	ts.fields = append(ts.fields, f)
	ts.index[key] = f
	return f
}

// isScalarElement reports whether the element carries only character
// data, no attributes and no child elements.
func isScalarElement(el xbind.Element) bool {
	if len(el.Attrs) > 0 {
		return false
	}
	for _, c := range el.Children {
		if c.Kind() == xbind.KindElement {
			return false
		}
	}
	return true
}

// render emits the inferred types, root type first.
func (inf *inference) render(pkg, rootType string) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by xbind gen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	fmt.Fprintf(&b, "import %q\n\n", bindingPkgPath)

	rendered := make(map[string]bool)
	var renderType func(ts *typeSpec)
	renderType = func(ts *typeSpec) {
		if rendered[ts.goName] {
			return
		}
		rendered[ts.goName] = true

		fmt.Fprintf(&b, "type %s struct {\n", ts.goName)
		fmt.Fprintf(&b, "\txbind.ElementBinding `xbind:%q`\n\n", rootTag(ts.elemName))
		for _, f := range ts.fields {
			if !f.attr {
				continue
			}
			fmt.Fprintf(&b, "\t%s %s `xbind:%q`\n", f.goName, f.kind.goType(), fieldTag(f))
		}
		for _, f := range ts.fields {
			if f.attr {
				continue
			}
			typ := f.kind.goType()
			if f.typeRef != "" {
				typ = f.typeRef
			}
			if f.repeated {
				typ = "[]" + typ
			}
			fmt.Fprintf(&b, "\t%s %s `xbind:%q`\n", f.goName, typ, fieldTag(f))
		}
		if ts.hasText {
			fmt.Fprintf(&b, "\tValue %s `xbind:\"value\"`\n", ts.textKind.goType())
		}
		fmt.Fprintf(&b, "}\n\n")

		for _, f := range ts.fields {
			if f.typeRef != "" {
				renderType(inf.byGoName[f.typeRef])
			}
		}
	}

	if root := inf.byGoName[rootType]; root != nil {
		renderType(root)
	}
	for _, ts := range inf.order {
		renderType(ts)
	}
	return b.Bytes(), nil
}

const bindingPkgPath = "github.com/xbind/xbind/pkg/xbind"

func rootTag(name xbind.ExpandedName) string {
	tag := "name=" + name.Local
	if !name.Namespace.IsNone() {
		tag += ",ns=" + string(name.Namespace)
	}
	return tag
}

func fieldTag(f *fieldSpec) string {
	class := "element"
	if f.attr {
		class = "attr"
	}
	tag := class + ",name=" + f.name.Local
	if !f.name.Namespace.IsNone() {
		tag += ",ns=" + string(f.name.Namespace)
	}
	if f.optional && !f.repeated {
		tag += ",optional"
	}
	return tag
}
