package domcodec

import (
	"strings"
	"testing"

	"github.com/agentflare-ai/go-xmldom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbind/xbind/pkg/xbind"
)

type recipe struct {
	xbind.ElementBinding `xbind:"name=recipe"`

	Name  string   `xbind:"attr,name=name"`
	Steps []string `xbind:"element,name=step"`
}

type nsDoc struct {
	xbind.ElementBinding `xbind:"name=doc,ns=urn:d"`

	ID    string `xbind:"attr,name=id"`
	Title string `xbind:"element,name=title,ns=urn:d"`
}

func TestDecodeElement(t *testing.T) {
	input := `<recipe name="bread">
		<step>mix</step>
		<step>knead</step>
		<step>bake</step>
	</recipe>`

	var r recipe
	require.NoError(t, Decode(strings.NewReader(input), &r))
	assert.Equal(t, "bread", r.Name)
	assert.Equal(t, []string{"mix", "knead", "bake"}, r.Steps)
}

func TestDecodeNamespaced(t *testing.T) {
	input := `<d:doc xmlns:d="urn:d" id="7"><d:title>hi</d:title></d:doc>`

	var d nsDoc
	require.NoError(t, Decode(strings.NewReader(input), &d))
	assert.Equal(t, "7", d.ID)
	assert.Equal(t, "hi", d.Title)
}

func TestElementValueFiltersNamespaceDecls(t *testing.T) {
	input := `<e xmlns:p="urn:p" xmlns="urn:d" p:a="1"></e>`
	doc, err := xmldom.Decode(strings.NewReader(input))
	require.NoError(t, err)

	v, err := ElementValue(doc.DocumentElement())
	require.NoError(t, err)
	require.Len(t, v.Attrs, 1)
	assert.Equal(t, xbind.NameNS("a", "urn:p"), v.Attrs[0].Name)
	assert.Equal(t, "1", v.Attrs[0].Value)
}

func TestElementValueMixedContent(t *testing.T) {
	input := `<p>before<b>bold</b>after</p>`
	doc, err := xmldom.Decode(strings.NewReader(input))
	require.NoError(t, err)

	v, err := ElementValue(doc.DocumentElement())
	require.NoError(t, err)
	require.Len(t, v.Children, 3)
	assert.Equal(t, xbind.Text("before"), v.Children[0])
	b, ok := v.Children[1].(xbind.Element)
	require.True(t, ok)
	assert.Equal(t, xbind.Name("b"), b.Name)
	assert.Equal(t, xbind.Text("after"), v.Children[2])
}

func TestDecodeMissingRoot(t *testing.T) {
	err := FromDocument(nil, &recipe{})
	assert.ErrorIs(t, err, xbind.ErrMissingData)
}

func TestDecodeWrongRoot(t *testing.T) {
	var r recipe
	err := Decode(strings.NewReader(`<other></other>`), &r)
	assert.ErrorIs(t, err, xbind.ErrWrongName)
}
