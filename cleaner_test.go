package readability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const longText = `This paragraph is long enough to count as real content for the cleaner to keep around.`

func TestMarkDataTables(t *testing.T) {

	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{
			name:   "presentation role",
			source: `<table role="presentation" summary="Prices"><tr><th>a</th></tr></table>`,
		},
		{
			name:   "opted out",
			source: `<table datatable="0"><tr><th>a</th></tr></table>`,
		},
		{
			name:   "summary",
			source: `<table summary="Prices"><tr><td>a</td></tr></table>`,
			want:   true,
		},
		{
			name:   "caption",
			source: `<table><caption>Prices</caption><tr><td>a</td></tr></table>`,
			want:   true,
		},
		{
			name:   "header cells",
			source: `<table><tr><th>a</th></tr></table>`,
			want:   true,
		},
		{
			name:   "nested layout",
			source: `<table><tr><td><table><tr><td>a</td></tr></table></td></tr></table>`,
		},
		{
			name:   "many rows",
			source: `<table>` + strings.Repeat(`<tr><td>a</td></tr>`, 10) + `</table>`,
			want:   true,
		},
		{
			name:   "many columns",
			source: `<table><tr>` + strings.Repeat(`<td>a</td>`, 5) + `</tr></table>`,
			want:   true,
		},
		{
			name:   "small grid",
			source: `<table><tr><td>a</td><td>b</td></tr><tr><td>c</td><td>d</td></tr></table>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParse(t, tt.source)
			p.markDataTables(p.doc.body)

			tables := p.doc.body.GetElementsByTagName("table")
			require.NotEmpty(t, tables)
			assert.Equal(t, tt.want, p.dataTables[tables[0]])
		})
	}
}

func TestCleanConditionally(t *testing.T) {

	tests := []struct {
		name   string
		source string
		tag    string
		kept   bool
	}{
		{
			name:   "plain content",
			source: `<div><p>` + longText + `</p></div>`,
			tag:    "div",
			kept:   true,
		},
		{
			name:   "negative class",
			source: `<div class="sidebar"><p>` + longText + `</p></div>`,
			tag:    "div",
		},
		{
			name:   "high link density",
			source: `<div><p>Short intro text for the list.</p><a href="/one">First related story link</a> <a href="/two">Second related story link</a></div>`,
			tag:    "div",
		},
		{
			name:   "more images than paragraphs",
			source: `<div><p>Caption text that is long enough to pass.</p><img src="a.jpg"><img src="b.jpg"><img src="c.jpg"></div>`,
			tag:    "div",
		},
		{
			name:   "embed with little text",
			source: `<div><p>Watch this short clip about tomato pruning.</p><iframe src="http://ads.example/x"></iframe></div>`,
			tag:    "div",
		},
		{
			name:   "allowed video",
			source: `<div><p>Watch this short clip about tomato pruning.</p><iframe src="https://www.youtube.com/embed/abc"></iframe></div>`,
			tag:    "div",
			kept:   true,
		},
		{
			name:   "layout table",
			source: `<table><tr><td>x</td></tr></table>`,
			tag:    "table",
		},
		{
			name:   "data table",
			source: `<table summary="Prices"><tr><td>x</td></tr></table>`,
			tag:    "table",
			kept:   true,
		},
		{
			name:   "inside a data table",
			source: `<table summary="Prices"><tr><td><div>x</div></td></tr></table>`,
			tag:    "div",
			kept:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParse(t, tt.source)
			p.markDataTables(p.doc.body)
			p.cleanConditionally(p.doc.body, tt.tag)
			assert.Equal(t, tt.kept, len(p.doc.body.GetElementsByTagName(tt.tag)) > 0)
		})
	}

	t.Run("should do nothing without the flag", func(t *testing.T) {
		p := newTestParse(t, `<div class="sidebar"><p>`+longText+`</p></div>`)
		p.removeFlag(flagCleanConditionally)
		p.cleanConditionally(p.doc.body, "div")
		assert.Len(t, p.doc.body.GetElementsByTagName("div"), 1)
	})
}

func TestFixRelativeUris(t *testing.T) {

	p := newTestParse(t, `<p><a href="javascript:void(0)">plain</a> <a href="javascript:go()"><b>bold</b> text</a> <a href="b.html">rel</a> <a href="#top">top</a> <img src="/i.png" srcset="x.png 1x, /y.png 2x"></p>`)
	p.fixRelativeUris(p.doc.body)

	assert.Equal(t,
		`<p>plain <span><b>bold</b> text</span> <a href="http://fakehost/a/b.html">rel</a> <a href="#top">top</a> <img src="http://fakehost/i.png" srcset="http://fakehost/a/x.png 1x, http://fakehost/y.png 2x"></p>`,
		p.doc.body.GetInnerHTML())
}
