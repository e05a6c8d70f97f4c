package readability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func TestMapDoc(t *testing.T) {

	s := `<title> Links page </title><p>Links:</p><ul><li><a href="foo">Foo</a><li><a href="/bar/baz">BarBaz</a></ul>`
	doc, err := html.Parse(strings.NewReader(s))
	require.NoError(t, err)

	got := mapDoc(doc)
	require.NotNil(t, got)

	require.NotNil(t, got.html)
	require.NotNil(t, got.body)
	assert.Same(t, got.html, got.root.ChildNodes[0])
	assert.Equal(t, "HEAD", got.html.Children[0].TagName)
	assert.Equal(t, "Links page", strings.TrimSpace(got.html.Children[0].GetTextContent()))

	p := got.body.ChildNodes[0]
	assert.Equal(t, "P", p.TagName)
	assert.Equal(t, "Links:", p.GetTextContent())

	ul := got.body.ChildNodes[1]
	require.Len(t, ul.Children, 2)

	firstA := ul.Children[0].ChildNodes[0]
	assert.Equal(t, "foo", firstA.GetAttribute("href"))
	assert.Equal(t, "Foo", firstA.GetTextContent())

	secondA := ul.Children[1].ChildNodes[0]
	assert.Equal(t, "/bar/baz", secondA.GetAttribute("href"))
	assert.Equal(t, "BarBaz", secondA.GetTextContent())
}

func TestMapDocFragment(t *testing.T) {

	tests := []struct {
		name string
		root *html.Node
		want string
	}{
		{
			name: "bare element gets html and body",
			root: &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div},
			want: "DIV",
		},
		{
			name: "body gets html",
			root: &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body},
			want: "BODY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.root.AppendChild(&html.Node{Type: html.TextNode, Data: "hello"})

			got := mapDoc(tt.root)
			require.NotNil(t, got.html)
			require.NotNil(t, got.body)
			assert.Equal(t, "HTML", got.root.ChildNodes[0].TagName)
			assert.Equal(t, "hello", got.body.GetTextContent())

			if tt.want == "BODY" {
				assert.Equal(t, "BODY", got.body.TagName)
			} else {
				require.Len(t, got.body.Children, 1)
				assert.Equal(t, tt.want, got.body.Children[0].TagName)
			}
		})
	}
}

func TestMapDocSkipsComments(t *testing.T) {

	doc, err := html.Parse(strings.NewReader(`<body><!-- hidden --><p>kept</p></body>`))
	require.NoError(t, err)

	got := mapDoc(doc)
	require.Len(t, got.body.ChildNodes, 1)
	assert.Equal(t, "kept", got.body.GetTextContent())
}

func TestCountElements(t *testing.T) {

	doc, err := html.Parse(strings.NewReader(`<p>a</p><p>b <b>c</b></p>`))
	require.NoError(t, err)

	// html, head, body, two p and one b
	assert.Equal(t, 6, countElements(doc))
}
