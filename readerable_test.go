package readability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"
)

func TestIsProbablyReaderable(t *testing.T) {

	const long = `<p>This paragraph is long enough to count, with a few commas, some words, and enough characters to matter once all of them are added together, more than once.</p>`

	tests := []struct {
		name   string
		source string
		opts   []Option
		want   bool
	}{
		{
			name:   "article page",
			source: readTestPage(t),
			want:   true,
		},
		{
			name:   "short page",
			source: `<p>Too short.</p>`,
		},
		{
			name:   "lower thresholds",
			source: `<p>Too short, really.</p>`,
			opts:   []Option{MinContentLength(5), MinScore(1)},
			want:   true,
		},
		{
			name:   "hidden paragraphs",
			source: strings.Repeat(strings.Replace(long, "<p>", `<p style="display:none">`, 1), 10),
		},
		{
			name:   "unlikely paragraphs",
			source: strings.Repeat(strings.Replace(long, "<p>", `<p class="sidebar">`, 1), 10),
		},
		{
			name:   "extended unlikely pattern",
			source: strings.Repeat(strings.Replace(long, "<p>", `<p class="teaser">`, 1), 10),
			opts:   []Option{ExtendPattern(UnlikelyCandidates, "teaser")},
		},
		{
			name:   "paragraphs in list items",
			source: "<ul>" + strings.Repeat("<li>"+long+"</li>", 10) + "</ul>",
		},
		{
			name:   "divs with line breaks",
			source: strings.Repeat(`<div>`+strings.Repeat("Some sentences without paragraphs, written in a loose way.<br>", 6)+`</div>`, 4),
			want:   true,
		},
		{
			name:   "custom visibility",
			source: strings.Repeat(long, 10),
			opts:   []Option{VisibilityChecker(func(*html.Node) bool { return false })},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProbablyReaderable(tt.source, tt.opts...))
		})
	}
}

func TestIsNodeVisible(t *testing.T) {

	tests := []struct {
		markup string
		want   bool
	}{
		{`<p>x</p>`, true},
		{`<p style="display: none">x</p>`, false},
		{`<p style="color: red; visibility:hidden;">x</p>`, false},
		{`<p style="display: block">x</p>`, true},
		{`<p hidden>x</p>`, false},
		{`<p aria-hidden="true">x</p>`, false},
		{`<p aria-hidden="true" class="fallback-image">x</p>`, true},
	}

	for _, tt := range tests {
		t.Run(tt.markup, func(t *testing.T) {
			doc, err := html.Parse(strings.NewReader(tt.markup))
			assert.NoError(t, err)
			p := querySelectorAll(doc, "p")[0]
			assert.Equal(t, tt.want, isNodeVisible(p))
		})
	}
}
