package xbind

import (
	"errors"
	"testing"
)

func TestValueEqual(t *testing.T) {
	el := NewElement(Name("a")).
		WithAttr(Name("id"), "1").
		WithChildren(Text("x"), NewElement(Name("b")))

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"text", Text("x"), Text("x"), true},
		{"text_vs_cdata", Text("x"), CData("x"), false},
		{"none", None{}, None{}, true},
		{"nil_both", nil, nil, true},
		{"nil_one", nil, Text("x"), false},
		{"element", el, el, true},
		{"element_attr_diff", el, NewElement(Name("a")).WithChildren(Text("x"), NewElement(Name("b"))), false},
		{"element_name_ns", NewElement(Name("a")), NewElement(NameNS("a", "urn:x")), false},
		{"seq", Seq{Text("x"), None{}}, Seq{Text("x"), None{}}, true},
		{"seq_len", Seq{Text("x")}, Seq{Text("x"), Text("y")}, false},
		{"pi", PI{Target: "xe", Content: "k"}, PI{Target: "xe", Content: "k"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.want {
				t.Errorf("Equal = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestElementAccessors(t *testing.T) {
	el := NewElement(Name("p")).
		WithAttr(NameNS("lang", NamespaceXML), "en").
		WithChildren(Text("Hello "), NewElement(Name("em")).WithChildren(CData("there")), Text("!"))

	if v, ok := el.Attr(NameNS("lang", NamespaceXML)); !ok || v != "en" {
		t.Errorf("Attr = %q, %v", v, ok)
	}
	if _, ok := el.Attr(Name("lang")); ok {
		t.Error("Attr matched across namespaces")
	}
	if got := el.TextContent(); got != "Hello there!" {
		t.Errorf("TextContent = %q", got)
	}
}

func TestValueRoundTrip(t *testing.T) {
	values := []Value{
		Text("plain"),
		CData("<raw>"),
		Comment("note to self"),
		Doctype("html"),
		PI{Target: "xml-stylesheet", Content: `href="a.css"`},
		Decl{Version: "1.0", Encoding: "UTF-8"},
		None{},
		NewElement(NameNS("root", "urn:x")).
			WithAttr(Name("id"), "r1").
			WithChildren(
				Text("lead"),
				NewElement(Name("inner")).WithChildren(CData("body")),
				Comment("tail"),
			),
		Seq{Text("a"), NewElement(Name("b")), Text("c")},
	}
	for _, v := range values {
		t.Run(v.Kind().String(), func(t *testing.T) {
			captured, err := ToValue(v)
			if err != nil {
				t.Fatalf("ToValue error: %v", err)
			}
			if !Equal(captured, v) {
				t.Errorf("round trip = %#v, want %#v", captured, v)
			}
		})
	}
}

func TestCaptureValue(t *testing.T) {
	orig := NewElement(Name("a")).WithChildren(Text("x"))
	got, err := CaptureValue(NewValueDeserializer(orig))
	if err != nil {
		t.Fatalf("CaptureValue error: %v", err)
	}
	if !Equal(got, orig) {
		t.Errorf("captured %#v, want %#v", got, orig)
	}
}

func TestSeqFlattening(t *testing.T) {
	nested := Seq{Text("a"), Seq{Text("b"), None{}, Seq{Text("c")}}}
	got, err := ToValue(nested)
	if err != nil {
		t.Fatalf("ToValue error: %v", err)
	}
	want := Seq{Text("a"), Text("b"), Text("c")}
	if !Equal(got, want) {
		t.Errorf("flattened = %#v, want %#v", got, want)
	}
}

func TestWhitespace(t *testing.T) {
	var ws Whitespace
	if err := FromValue(Text(" \t\n"), &ws); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	if string(ws) != " \t\n" {
		t.Errorf("ws = %q", ws)
	}
	if err := FromValue(Text("not ws"), &ws); !errors.Is(err, ErrInvalidString) {
		t.Errorf("non-whitespace accepted: %v", err)
	}
	if !IsWhitespace("\r\n  ") || IsWhitespace("a") {
		t.Error("IsWhitespace misclassified")
	}
}

func TestIgnoredAny(t *testing.T) {
	values := []Value{
		Text("anything"),
		NewElement(Name("deep")).
			WithAttr(Name("a"), "1").
			WithChildren(NewElement(Name("deeper")).WithChildren(Text("x"))),
		None{},
		Doctype("html"),
	}
	for _, v := range values {
		var ig IgnoredAny
		if err := FromValue(v, &ig); err != nil {
			t.Errorf("IgnoredAny rejected %v node: %v", v.Kind(), err)
		}
	}
}
