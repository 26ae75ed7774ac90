package xmlname

import "testing"

func TestIsNCName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple", "note", true},
		{"underscore start", "_note", true},
		{"digits inside", "n1", true},
		{"hyphen inside", "at-end", true},
		{"dot inside", "a.b", true},
		{"empty", "", false},
		{"digit start", "1note", false},
		{"hyphen start", "-note", false},
		{"colon", "xs:note", false},
		{"space", "a b", false},
		{"unicode letter", "ærø", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNCName(tt.input); got != tt.want {
				t.Errorf("IsNCName(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsName(t *testing.T) {
	if !IsName("xs:element") {
		t.Error("IsName should accept QName form")
	}
	if IsName("") {
		t.Error("IsName should reject empty string")
	}
}

func TestSplitQName(t *testing.T) {
	tests := []struct {
		input  string
		prefix string
		local  string
	}{
		{"xs:element", "xs", "element"},
		{"element", "", "element"},
		{"a:b:c", "a", "b:c"},
	}

	for _, tt := range tests {
		prefix, local := SplitQName(tt.input)
		if prefix != tt.prefix || local != tt.local {
			t.Errorf("SplitQName(%q) = (%q, %q), want (%q, %q)",
				tt.input, prefix, local, tt.prefix, tt.local)
		}
	}
}

func TestCaseConversions(t *testing.T) {
	tests := []struct {
		fn   func(string) string
		in   string
		want string
	}{
		{SnakeCase, "SomeValue", "some_value"},
		{SnakeCase, "HTTPCode", "h_t_t_p_code"},
		{KebabCase, "SomeValue", "some-value"},
		{CamelCase, "SomeValue", "someValue"},
		{GoName, "at-end", "AtEnd"},
		{GoName, "note", "Note"},
		{GoName, "xs:schema", "XsSchema"},
		{GoName, "2d", "X2D"},
	}

	for _, tt := range tests {
		if got := tt.fn(tt.in); got != tt.want {
			t.Errorf("case(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
