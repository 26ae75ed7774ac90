// Package extract statically validates xbind annotations in Go
// source. It loads packages through go/packages and runs the same tag
// and shape checks the runtime binding compiler applies, but reports
// them as positioned diagnostics instead of runtime errors.
package extract

import (
	"fmt"
	"go/token"
	"go/types"
	"reflect"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/xbind/xbind/pkg/xbind"
)

// bindingPkgPath is the import path of the annotation package.
const bindingPkgPath = "github.com/xbind/xbind/pkg/xbind"

// Diagnostic is one binding problem tied to a source position.
type Diagnostic struct {
	// Pos is the position of the offending field or type.
	Pos token.Position

	// Type is the name of the struct type.
	Type string

	// Field is the field the problem was found on, if applicable.
	Field string

	// Message describes the problem.
	Message string
}

// String renders the diagnostic in file:line:col form.
func (d Diagnostic) String() string {
	subject := d.Type
	if d.Field != "" {
		subject = d.Type + "." + d.Field
	}
	return fmt.Sprintf("%s: %s: %s", d.Pos, subject, d.Message)
}

// Options configures a check run.
type Options struct {
	// Dir is the directory to run the package loader from. Empty
	// means the current directory.
	Dir string

	// Tests includes test files in the loaded packages.
	Tests bool
}

// DefaultOptions returns the default check configuration.
func DefaultOptions() Options {
	return Options{}
}

// Check loads the packages matched by patterns and validates every
// struct type that carries xbind annotations. It returns one
// diagnostic per problem; an empty slice means all bindings are well
// formed.
func Check(opts Options, patterns ...string) ([]Diagnostic, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedImports |
			packages.NeedDeps | packages.NeedTypes | packages.NeedSyntax |
			packages.NeedTypesInfo,
		Dir:   opts.Dir,
		Tests: opts.Tests,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	var loadErrs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			loadErrs = append(loadErrs, e.Error())
		}
	}
	if len(loadErrs) > 0 {
		return nil, fmt.Errorf("extract: load failed: %s", strings.Join(loadErrs, "; "))
	}

	var diags []Diagnostic
	for _, pkg := range pkgs {
		diags = append(diags, checkPackage(pkg)...)
	}
	return diags, nil
}

func checkPackage(pkg *packages.Package) []Diagnostic {
	var diags []Diagnostic
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() {
			continue
		}
		st, ok := tn.Type().Underlying().(*types.Struct)
		if !ok {
			continue
		}
		diags = append(diags, checkStruct(pkg.Fset, name, st)...)
	}
	return diags
}

// checkStruct mirrors the runtime binding compiler's shape rules over
// the type-checked form of one struct.
func checkStruct(fset *token.FileSet, typeName string, st *types.Struct) []Diagnostic {
	var diags []Diagnostic
	report := func(pos token.Pos, field, message string) {
		diags = append(diags, Diagnostic{
			Pos:     fset.Position(pos),
			Type:    typeName,
			Field:   field,
			Message: message,
		})
	}

	rootKind := xbind.RootNone
	markers := 0
	annotated := false
	valueFields := 0
	attrFields := 0

	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		tag := reflect.StructTag(st.Tag(i)).Get(xbind.TagKey)
		if tag != "" {
			annotated = true
		}

		if kind, ok := markerKind(field); ok {
			annotated = true
			markers++
			if markers > 1 {
				report(field.Pos(), "", "multiple binding markers")
				continue
			}
			rootKind = kind
			if _, err := xbind.ParseRootTag(kind, tag); err != nil {
				report(field.Pos(), "", trimmed(err))
			}
			continue
		}

		ft, err := xbind.ParseFieldTag(tag)
		if err != nil {
			report(field.Pos(), field.Name(), trimmed(err))
			continue
		}
		if ft.Class == xbind.ClassSkip {
			continue
		}
		if tag != "" && !field.Exported() {
			report(field.Pos(), field.Name(), "annotated field is unexported")
			continue
		}
		switch ft.Class {
		case xbind.ClassValue:
			valueFields++
		case xbind.ClassAttribute:
			attrFields++
		}
	}

	if !annotated {
		return nil
	}

	switch rootKind {
	case xbind.RootAttribute, xbind.RootValue:
		if valueFields != 1 {
			report(st.Field(0).Pos(), "",
				fmt.Sprintf("%s root needs exactly one value field, found %d", rootKind, valueFields))
		}
	case xbind.RootNone:
		if attrFields > 0 {
			report(st.Field(0).Pos(), "", "attribute fields need an enclosing element marker")
		}
	}
	return diags
}

// markerKind recognizes embedded xbind marker fields.
func markerKind(field *types.Var) (xbind.RootKind, bool) {
	if !field.Embedded() {
		return xbind.RootNone, false
	}
	named, ok := field.Type().(*types.Named)
	if !ok {
		return xbind.RootNone, false
	}
	obj := named.Obj()
	if obj.Pkg() == nil || obj.Pkg().Path() != bindingPkgPath {
		return xbind.RootNone, false
	}
	switch obj.Name() {
	case "ElementBinding":
		return xbind.RootElement, true
	case "AttributeBinding":
		return xbind.RootAttribute, true
	case "ValueBinding":
		return xbind.RootValue, true
	case "GroupBinding":
		return xbind.RootGroup, true
	}
	return xbind.RootNone, false
}

// trimmed strips the module prefix from a binding error for display
// next to a position that already establishes context.
func trimmed(err error) string {
	return strings.TrimPrefix(err.Error(), "xbind: ")
}
