package xbind

import (
	"errors"
	"reflect"
	"testing"
)

type lang struct {
	AttributeBinding `xbind:"name=lang"`
	Code             string `xbind:"value"`
}

type greeting struct {
	ElementBinding `xbind:"name=greeting"`
	Lang           lang   `xbind:"attr"`
	Text           string `xbind:"value"`
}

type prefixed struct {
	ElementBinding `xbind:"name=item,ns=http://example.com/a,prefix=ex,enforce_prefix"`
	Label          string `xbind:"value"`
}

func TestSerializeElementTree(t *testing.T) {
	n := note{To: "Tove", From: "Jani", Heading: "Reminder", Body: "B"}
	got, err := ValueOf(n)
	if err != nil {
		t.Fatalf("ValueOf error: %v", err)
	}
	want := Element{Name: Name("note"), Children: []Value{
		textElem("to", "Tove"),
		textElem("from", "Jani"),
		textElem("heading", "Reminder"),
		textElem("body", "B"),
	}}
	if !Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSerializeAttributesAndDeferred(t *testing.T) {
	g := greeting{Lang: lang{Code: "en"}, Text: "hello"}
	got, err := ValueOf(g)
	if err != nil {
		t.Fatalf("ValueOf error: %v", err)
	}
	want := Element{
		Name:     Name("greeting"),
		Attrs:    []Attribute{{Name: Name("lang"), Value: "en"}},
		Children: []Value{Text("hello")},
	}
	if !Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSerializePreferredPrefix(t *testing.T) {
	got, err := ValueOf(prefixed{Label: "x"})
	if err != nil {
		t.Fatalf("ValueOf error: %v", err)
	}
	elem, ok := got.(Element)
	if !ok {
		t.Fatalf("expected element, got %v", got)
	}
	if elem.PreferredPrefix != "ex" || !elem.EnforcePrefix {
		t.Errorf("prefix controls not carried: %+v", elem)
	}
}

func TestSerializeGroupInPlace(t *testing.T) {
	p := page{Meta: meta{ID: "7", Note: "draft"}, Title: "Home"}
	got, err := ValueOf(p)
	if err != nil {
		t.Fatalf("ValueOf error: %v", err)
	}
	want := Element{
		Name:  Name("page"),
		Attrs: []Attribute{{Name: Name("id"), Value: "7"}},
		Children: []Value{
			textElem("note", "draft"),
			textElem("title", "Home"),
		},
	}
	if !Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSerializePerItemWrappers(t *testing.T) {
	l := line{Words: []string{"lorem", "ipsum"}}
	got, err := ValueOf(l)
	if err != nil {
		t.Fatalf("ValueOf error: %v", err)
	}
	want := Element{Name: Name("line"), Children: []Value{
		textElem("w", "lorem"),
		textElem("w", "ipsum"),
	}}
	if !Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSerializeEnumLiteral(t *testing.T) {
	got, err := ValueOf(EnumValue("Gamma"))
	if err != nil {
		t.Fatalf("ValueOf error: %v", err)
	}
	if !Equal(got, Text("Gamma")) {
		t.Errorf("got %v", got)
	}

	if _, err := ValueOf(EnumValue("Lmao")); !errors.Is(err, ErrNoPossibleVariant) {
		t.Errorf("expected no possible variant error, got %v", err)
	}
}

func TestSerializeAttrStandalone(t *testing.T) {
	var out []Attribute
	w := &valueAttrWriter{attrs: &out}
	if err := SerializeAttr(w, lang{Code: "fi"}); err != nil {
		t.Fatalf("SerializeAttr error: %v", err)
	}
	if len(out) != 1 || out[0].Name.Local != "lang" || out[0].Value != "fi" {
		t.Errorf("got %v", out)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   any
		out  func() any
	}{
		{"note", note{To: "a", From: "b", Heading: "c", Body: "d"}, func() any { return &note{} }},
		{"page", page{Meta: meta{ID: "1", Note: "n"}, Title: "t"}, func() any { return &page{} }},
		{"img", img{Src: "cat.png", Width: 640}, func() any { return &img{} }},
		{"line", line{Words: []string{"x", "y", "z"}}, func() any { return &line{} }},
		{"hammer", hammer{Parts: hammerParts{Head: "steel", Handle: "oak"}}, func() any { return &hammer{} }},
		{"greeting", greeting{Lang: lang{Code: "en"}, Text: "hi"}, func() any { return &greeting{} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := ValueOf(tc.in)
			if err != nil {
				t.Fatalf("ValueOf error: %v", err)
			}
			target := tc.out()
			if err := FromValue(v, target); err != nil {
				t.Fatalf("FromValue error: %v", err)
			}
			got := reflect.ValueOf(target).Elem().Interface()
			if !reflect.DeepEqual(got, tc.in) {
				t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, tc.in)
			}
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := NewDocument(note{To: "a", From: "b", Heading: "c", Body: "d"})
	doc.Prolog = append(doc.Prolog, Comment(" generated "))

	v, err := ToValue(doc)
	if err != nil {
		t.Fatalf("ToValue error: %v", err)
	}

	var back Document[note]
	if err := FromValue(v, &back); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	if back.Decl == nil || back.Decl.Version != "1.0" {
		t.Errorf("Decl = %+v", back.Decl)
	}
	if len(back.Prolog) != 1 || !Equal(back.Prolog[0], Comment(" generated ")) {
		t.Errorf("Prolog = %v", back.Prolog)
	}
	if back.Root != doc.Root {
		t.Errorf("Root = %+v, want %+v", back.Root, doc.Root)
	}
}
