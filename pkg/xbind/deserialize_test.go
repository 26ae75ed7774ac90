package xbind

import (
	"errors"
	"reflect"
	"testing"
)

// Test types

type note struct {
	ElementBinding `xbind:"name=note,children_order=strict"`
	To             string `xbind:"element,name=to"`
	From           string `xbind:"element,name=from"`
	Heading        string `xbind:"element,name=heading"`
	Body           string `xbind:"element,name=body"`
}

type atEnd struct {
	ElementBinding `xbind:"name=at_end"`
	B              string `xbind:"element,name=b"`
	D              string `xbind:"element,name=d"`
}

type anyUnknown struct {
	ElementBinding `xbind:"name=any,allow_unknown_children=any"`
	B              string `xbind:"element,name=b"`
	D              string `xbind:"element,name=d"`
}

type noUnknown struct {
	ElementBinding `xbind:"name=none,allow_unknown_children=none"`
	B              string `xbind:"element,name=b"`
}

type extendText struct {
	ElementBinding `xbind:"name=extend"`
	Value          string `xbind:"value,extendable"`
}

type port int

func (p *port) DefaultXML() { *p = 8080 }

type config struct {
	ElementBinding `xbind:"name=config"`
	Host           string `xbind:"element,name=host"`
	Port           port   `xbind:"element,name=port,default"`
	Debug          bool   `xbind:"element,name=debug,optional"`
}

type nsItem struct {
	ElementBinding `xbind:"name=item,ns=http://example.com/a"`
	Label          string `xbind:"value"`
}

type img struct {
	ElementBinding `xbind:"name=img"`
	Src            string `xbind:"attr,name=src"`
	Width          int    `xbind:"attr,name=width,optional"`
}

type meta struct {
	GroupBinding `xbind:""`
	ID           string `xbind:"attr,name=id"`
	Note         string `xbind:"element,name=note"`
}

type page struct {
	ElementBinding `xbind:"name=page"`
	Meta           meta   `xbind:"group"`
	Title          string `xbind:"element,name=title"`
}

type hammerParts struct {
	GroupBinding `xbind:"children_order=strict"`
	Head         string `xbind:"element,name=head"`
	Handle       string `xbind:"element,name=handle"`
}

type hammer struct {
	ElementBinding `xbind:"name=hammer,children_order=strict"`
	Parts          hammerParts `xbind:"group"`
}

type envelope struct {
	ElementBinding `xbind:"name=env"`
	Payload        Value `xbind:"value"`
}

type line struct {
	ElementBinding `xbind:"name=line"`
	Words          []string `xbind:"element,name=w"`
}

type gallery struct {
	ElementBinding `xbind:"name=gallery"`
	Images         []img `xbind:"element"`
}

type strictAttrs struct {
	ElementBinding `xbind:"name=icon,allow_unknown_attributes=none"`
	Src            string `xbind:"attr,name=src"`
}

type level string

func (level) XMLVariants() []string { return []string{"VeryHigh", "Low"} }

type priority struct {
	ValueBinding `xbind:"rename_all=kebab-case"`
	Level        level `xbind:"value"`
}

// EnumValue is a value enum over its variant identifiers.
type EnumValue string

func (EnumValue) XMLVariants() []string { return []string{"Alpha", "Beta", "Gamma"} }

type snakeEnum string

func (snakeEnum) XMLVariants() []string          { return []string{"FooBar", "BazQux"} }
func (snakeEnum) XMLVariantRename() RenameRule   { return RenameSnake }

func textElem(name, content string) Value {
	return Element{Name: Name(name), Children: []Value{Text(content)}}
}

func TestDeserializeElementFields(t *testing.T) {
	input := Element{Name: Name("note"), Children: []Value{
		textElem("to", "Tove"),
		textElem("from", "Jani"),
		textElem("heading", "Reminder"),
		textElem("body", "Don't forget me this weekend!"),
	}}

	var n note
	if err := FromValue(input, &n); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	want := note{To: "Tove", From: "Jani", Heading: "Reminder", Body: "Don't forget me this weekend!"}
	if !reflect.DeepEqual(n, want) {
		t.Errorf("got %+v, want %+v", n, want)
	}
}

func TestDeserializeIgnoresWhitespaceAndComments(t *testing.T) {
	input := Element{Name: Name("note"), Children: []Value{
		Text("\n  "),
		textElem("to", "Tove"),
		Comment(" who from "),
		textElem("from", "Jani"),
		Text("\n  "),
		textElem("heading", "Reminder"),
		textElem("body", "B"),
		Text("\n"),
	}}

	var n note
	if err := FromValue(input, &n); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	if n.To != "Tove" || n.From != "Jani" {
		t.Errorf("unexpected result: %+v", n)
	}
}

func TestStrictOrderViolation(t *testing.T) {
	input := Element{Name: Name("note"), Children: []Value{
		textElem("to", "Tove"),
		textElem("from", "Jani"),
		textElem("body", "B"),
		textElem("heading", "Reminder"),
	}}

	var n note
	err := FromValue(input, &n)
	if err == nil {
		t.Fatal("expected error for out-of-order children")
	}
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("expected missing field error, got %v", err)
	}
}

func TestUnknownAtEndBoundary(t *testing.T) {
	// Unknown content between declared children errors.
	bad := Element{Name: Name("at_end"), Children: []Value{
		textElem("b", "BVal"),
		Element{Name: Name("c")},
		textElem("d", "DVal"),
		Text("Abc"),
	}}
	var a atEnd
	if err := FromValue(bad, &a); err == nil {
		t.Fatal("expected error for unknown content before declared children")
	}

	// Unknown content after all declared children is tolerated.
	good := Element{Name: Name("at_end"), Children: []Value{
		textElem("b", "BVal"),
		textElem("d", "DVal"),
		Text("Abc"),
		Element{Name: Name("c")},
	}}
	a = atEnd{}
	if err := FromValue(good, &a); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	if a.B != "BVal" || a.D != "DVal" {
		t.Errorf("unexpected result: %+v", a)
	}
}

func TestUnknownAnySkipsEverywhere(t *testing.T) {
	input := Element{Name: Name("any"), Children: []Value{
		Element{Name: Name("junk")},
		textElem("b", "BVal"),
		Text("Abc"),
		textElem("d", "DVal"),
	}}
	var a anyUnknown
	if err := FromValue(input, &a); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	if a.B != "BVal" || a.D != "DVal" {
		t.Errorf("unexpected result: %+v", a)
	}
}

func TestUnknownNoneRejects(t *testing.T) {
	input := Element{Name: Name("none"), Children: []Value{
		textElem("b", "BVal"),
		Element{Name: Name("junk")},
	}}
	var n noUnknown
	err := FromValue(input, &n)
	if !errors.Is(err, ErrUnknownChild) {
		t.Errorf("expected unknown child error, got %v", err)
	}
}

func TestExtendableConcatenation(t *testing.T) {
	input := Element{Name: Name("extend"), Children: []Value{
		Text("Asdreboot"),
		CData("More"),
		Text("Text"),
	}}
	var e extendText
	if err := FromValue(input, &e); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	if e.Value != "AsdrebootMoreText" {
		t.Errorf("got %q, want %q", e.Value, "AsdrebootMoreText")
	}
}

func TestDefaulting(t *testing.T) {
	input := Element{Name: Name("config"), Children: []Value{
		textElem("host", "localhost"),
	}}
	var c config
	if err := FromValue(input, &c); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	if c.Port != 8080 {
		t.Errorf("Port = %d, want 8080 from default", c.Port)
	}
	if c.Debug {
		t.Error("Debug should stay false when absent")
	}

	// A required field stays required.
	var missing config
	err := FromValue(Element{Name: Name("config")}, &missing)
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("expected missing field error, got %v", err)
	}
}

func TestWrongNameCarriesBothExpandedNames(t *testing.T) {
	input := Element{
		Name:     NameNS("item", "http://example.com/b"),
		Children: []Value{Text("x")},
	}
	var item nsItem
	err := FromValue(input, &item)
	if err == nil {
		t.Fatal("expected wrong name error")
	}
	var wn *WrongNameError
	if !errors.As(err, &wn) {
		t.Fatalf("expected WrongNameError, got %v", err)
	}
	if wn.Actual.Namespace != "http://example.com/b" {
		t.Errorf("Actual = %v", wn.Actual)
	}
	if wn.Expected.Namespace != "http://example.com/a" || wn.Expected.Local != "item" {
		t.Errorf("Expected = %v", wn.Expected)
	}
}

func TestDeserializeAttributes(t *testing.T) {
	input := Element{
		Name: Name("img"),
		Attrs: []Attribute{
			{Name: Name("width"), Value: "640"},
			{Name: Name("src"), Value: "cat.png"},
		},
	}
	var i img
	if err := FromValue(input, &i); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	if i.Src != "cat.png" || i.Width != 640 {
		t.Errorf("unexpected result: %+v", i)
	}

	// Missing required attribute.
	var bare img
	err := FromValue(Element{Name: Name("img")}, &bare)
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("expected missing field error, got %v", err)
	}
}

func TestGroupContributions(t *testing.T) {
	input := Element{
		Name:  Name("page"),
		Attrs: []Attribute{{Name: Name("id"), Value: "7"}},
		Children: []Value{
			textElem("title", "Home"),
			textElem("note", "draft"),
		},
	}
	var p page
	if err := FromValue(input, &p); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	if p.Meta.ID != "7" || p.Meta.Note != "draft" || p.Title != "Home" {
		t.Errorf("unexpected result: %+v", p)
	}
}

func TestStrictGroupOrder(t *testing.T) {
	ordered := Element{Name: Name("hammer"), Children: []Value{
		textElem("head", "steel"),
		textElem("handle", "oak"),
	}}
	var h hammer
	if err := FromValue(ordered, &h); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	if h.Parts.Head != "steel" || h.Parts.Handle != "oak" {
		t.Errorf("unexpected result: %+v", h)
	}

	swapped := Element{Name: Name("hammer"), Children: []Value{
		textElem("handle", "oak"),
		textElem("head", "steel"),
	}}
	h = hammer{}
	if err := FromValue(swapped, &h); err == nil {
		t.Fatal("expected error for out-of-order group children")
	}
}

func TestValueCaptureField(t *testing.T) {
	payload := Element{Name: Name("anything"), Children: []Value{Text("deep")}}
	input := Element{Name: Name("env"), Children: []Value{payload}}
	var e envelope
	if err := FromValue(input, &e); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	if !Equal(e.Payload, payload) {
		t.Errorf("captured %v, want %v", e.Payload, payload)
	}
}

func TestRepeatedElementsIntoSlice(t *testing.T) {
	input := Element{Name: Name("line"), Children: []Value{
		textElem("w", "lorem"),
		textElem("w", "ipsum"),
		textElem("w", "dolor"),
	}}
	var l line
	if err := FromValue(input, &l); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	want := []string{"lorem", "ipsum", "dolor"}
	if !reflect.DeepEqual(l.Words, want) {
		t.Errorf("got %v, want %v", l.Words, want)
	}
}

func TestRepeatedSelfNamedChildrenSurviveFormatting(t *testing.T) {
	input := Element{Name: Name("gallery"), Children: []Value{
		Text("\n  "),
		Element{Name: Name("img"), Attrs: []Attribute{{Name: Name("src"), Value: "a.png"}}},
		Text("\n  "),
		Element{Name: Name("img"), Attrs: []Attribute{{Name: Name("src"), Value: "b.png"}}},
		Comment(" last one "),
		Element{Name: Name("img"), Attrs: []Attribute{{Name: Name("src"), Value: "c.png"}}},
		Text("\n"),
	}}
	var g gallery
	if err := FromValue(input, &g); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	if len(g.Images) != 3 {
		t.Fatalf("got %d images, want 3", len(g.Images))
	}
	for i, want := range []string{"a.png", "b.png", "c.png"} {
		if g.Images[i].Src != want {
			t.Errorf("Images[%d].Src = %q, want %q", i, g.Images[i].Src, want)
		}
	}
}

func TestUnknownAttributeRejected(t *testing.T) {
	input := Element{Name: Name("icon"), Attrs: []Attribute{
		{Name: Name("src"), Value: "a.png"},
		{Name: Name("junk"), Value: "x"},
	}}
	var i strictAttrs
	err := FromValue(input, &i)
	if !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("expected unknown attribute error, got %v", err)
	}
}

func TestValueEnum(t *testing.T) {
	var e EnumValue
	if err := FromValue(Text("Beta"), &e); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	if e != "Beta" {
		t.Errorf("got %q, want Beta", e)
	}

	err := FromValue(Text("Lmao"), &e)
	if err == nil {
		t.Fatal("expected no possible variant error")
	}
	var npv *NoPossibleVariantError
	if !errors.As(err, &npv) {
		t.Fatalf("expected NoPossibleVariantError, got %v", err)
	}
	if npv.Type != "EnumValue" {
		t.Errorf("Type = %q, want EnumValue", npv.Type)
	}
}

func TestValueEnumRenameRule(t *testing.T) {
	var e snakeEnum
	if err := FromValue(Text("foo_bar"), &e); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	if e != "FooBar" {
		t.Errorf("got %q, want FooBar", e)
	}
}

func TestValueRootRenameAll(t *testing.T) {
	var p priority
	if err := FromValue(Text("very-high"), &p); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	if p.Level != "VeryHigh" {
		t.Errorf("got %q, want VeryHigh", p.Level)
	}

	out, err := ValueOf(priority{Level: "Low"})
	if err != nil {
		t.Fatalf("ValueOf error: %v", err)
	}
	if !Equal(out, Text("low")) {
		t.Errorf("got %v, want Text(low)", out)
	}

	// The identifier spelling is not a valid literal under the rule.
	err = FromValue(Text("VeryHigh"), &p)
	var npv *NoPossibleVariantError
	if !errors.As(err, &npv) {
		t.Fatalf("expected NoPossibleVariantError, got %v", err)
	}
}

func TestDeserializeTargetChecks(t *testing.T) {
	var n note
	if err := Deserialize(NewValueDeserializer(Text("x")), n); !errors.Is(err, ErrNotPointer) {
		t.Errorf("expected not-pointer error, got %v", err)
	}
	var nilPtr *note
	if err := Deserialize(NewValueDeserializer(Text("x")), nilPtr); !errors.Is(err, ErrNilPointer) {
		t.Errorf("expected nil-pointer error, got %v", err)
	}
}

func TestScalarParsing(t *testing.T) {
	tests := []struct {
		name string
		text string
		into func() (any, func() any)
		want any
	}{
		{"int", "42", func() (any, func() any) { var v int; return &v, func() any { return v } }, 42},
		{"bool", "true", func() (any, func() any) { var v bool; return &v, func() any { return v } }, true},
		{"float", "2.5", func() (any, func() any) { var v float64; return &v, func() any { return v } }, 2.5},
		{"string", "hi", func() (any, func() any) { var v string; return &v, func() any { return v } }, "hi"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			target, get := tc.into()
			if err := FromValue(Text(tc.text), target); err != nil {
				t.Fatalf("FromValue error: %v", err)
			}
			if got := get(); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}

	var n int
	if err := FromValue(Text("abc"), &n); !errors.Is(err, ErrInvalidString) {
		t.Errorf("expected invalid string error, got %v", err)
	}
}
