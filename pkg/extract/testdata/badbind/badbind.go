package badbind

import "github.com/xbind/xbind/pkg/xbind"

// Note is well formed.
type Note struct {
	xbind.ElementBinding `xbind:"name=note,children_order=strict"`

	To   string `xbind:"element,name=to"`
	Body string `xbind:"element,name=body"`
}

// Lang is a well formed attribute root.
type Lang struct {
	xbind.AttributeBinding `xbind:"name=lang"`

	Code string `xbind:"value"`
}

// Conflicted carries two markers.
type Conflicted struct {
	xbind.ElementBinding   `xbind:"name=a"`
	xbind.AttributeBinding `xbind:"name=b"`
}

// BadTag has an unknown option.
type BadTag struct {
	xbind.ElementBinding `xbind:"name=c"`

	X string `xbind:"element,nmae=x"`
}

// WideAttr is an attribute root with too many value fields.
type WideAttr struct {
	xbind.AttributeBinding `xbind:"name=w"`

	A string `xbind:"value"`
	B string `xbind:"value"`
}

// Hidden annotates an unexported field.
type Hidden struct {
	xbind.ElementBinding `xbind:"name=h"`

	secret string `xbind:"element,name=secret"`
}

// Plain has no annotations and is left alone.
type Plain struct {
	A int
	B string
}
