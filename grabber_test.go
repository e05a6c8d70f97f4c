package readability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefineTopCandidate(t *testing.T) {

	const source = `<div id="wrap"><div id="a"></div><div id="b"></div><div id="c"></div><div id="d"></div></div>`

	t.Run("should widen to an ancestor shared by close runners-up", func(t *testing.T) {
		p := newTestParse(t, source)
		var wrap, a = elementByID(t, p.doc.root, "wrap"), elementByID(t, p.doc.root, "a")
		var topCandidates = []*Node{a}
		p.scores[a] = 100
		for _, id := range []string{"b", "c", "d"} {
			n := elementByID(t, p.doc.root, id)
			p.scores[n] = 80
			topCandidates = append(topCandidates, n)
		}

		assert.Same(t, wrap, p.refineTopCandidate(a, topCandidates))
		assert.Equal(t, 5.0, p.scores[wrap])
	})

	t.Run("should not widen with too few runners-up", func(t *testing.T) {
		p := newTestParse(t, source)
		var a = elementByID(t, p.doc.root, "a")
		var topCandidates = []*Node{a}
		p.scores[a] = 100
		for _, id := range []string{"b", "c"} {
			n := elementByID(t, p.doc.root, id)
			p.scores[n] = 80
			topCandidates = append(topCandidates, n)
		}

		assert.Same(t, a, p.refineTopCandidate(a, topCandidates))
	})

	t.Run("should climb to a better scored parent", func(t *testing.T) {
		p := newTestParse(t, source)
		var wrap, a = elementByID(t, p.doc.root, "wrap"), elementByID(t, p.doc.root, "a")
		p.scores[a] = 100
		p.scores[wrap] = 120

		assert.Same(t, wrap, p.refineTopCandidate(a, []*Node{a}))
	})

	t.Run("should use the parent of an only child", func(t *testing.T) {
		p := newTestParse(t, `<div id="outer"><div id="inner"></div></div>`)
		var outer, inner = elementByID(t, p.doc.root, "outer"), elementByID(t, p.doc.root, "inner")
		p.scores[inner] = 50

		assert.Same(t, outer, p.refineTopCandidate(inner, []*Node{inner}))
	})
}

func TestGatherSiblings(t *testing.T) {

	var long = strings.Repeat("word ", 20)
	var source = `<div id="parent">` +
		`<div id="top" class="story"></div>` +
		`<div id="same" class="story"></div>` +
		`<div id="other"></div>` +
		`<p id="long">` + long + `</p>` +
		`<p id="linky"><a href="/x">` + long + `</a> ok.</p>` +
		`<p id="sentence">Short sentence.</p>` +
		`<p id="fragment">no sentence end</p>` +
		`<span id="span">scored inline</span>` +
		`</div>`

	p := newTestParse(t, source)
	var ids = []string{"top", "same", "other", "long", "linky", "sentence", "fragment", "span"}
	var nodes = make(map[string]*Node)
	for _, id := range ids {
		nodes[id] = elementByID(t, p.doc.root, id)
	}
	p.scores[nodes["top"]] = 100
	p.scores[nodes["same"]] = 5
	p.scores[nodes["other"]] = 5
	p.scores[nodes["span"]] = 30

	var content = p.gatherSiblings(nodes["top"])

	var got []string
	for _, child := range content.Children {
		got = append(got, child.GetId())
	}
	assert.Equal(t, []string{"top", "same", "long", "sentence", "span"}, got)
	assert.Equal(t, "DIV", nodes["span"].TagName)

	var parent = elementByID(t, p.doc.root, "parent")
	var left []string
	for _, child := range parent.Children {
		left = append(left, child.GetId())
	}
	assert.Equal(t, []string{"other", "linky", "fragment"}, left)
}

func TestCheckByline(t *testing.T) {

	tests := []struct {
		name       string
		source     string
		wantByline string
		wantAuthor string
	}{
		{
			name:       "nested author link",
			source:     `<div id="target" class="byline">By <a rel="author" href="/jane">Jane Doe</a></div>`,
			wantByline: "By Jane Doe",
			wantAuthor: "Jane Doe",
		},
		{
			name:       "rel author",
			source:     `<a id="target" rel="author" href="/jane"> Jane Doe </a>`,
			wantByline: "Jane Doe",
			wantAuthor: "Jane Doe",
		},
		{
			name:       "itemprop author",
			source:     `<span id="target" itemprop="author">Jane Doe</span>`,
			wantByline: "Jane Doe",
			wantAuthor: "Jane Doe",
		},
		{
			name:   "too long",
			source: `<div id="target" class="byline">` + strings.Repeat("x", 100) + `</div>`,
		},
		{
			name:   "unrelated",
			source: `<div id="target" class="intro">Jane Doe</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParse(t, tt.source)
			n := elementByID(t, p.doc.root, "target")

			assert.Equal(t, tt.wantByline != "", p.checkByline(n, n.GetClassName()+" "+n.GetId()))
			assert.Equal(t, tt.wantByline, p.articleByline)
			assert.Equal(t, tt.wantAuthor, p.articleAuthor)
		})
	}

	t.Run("should keep the first byline", func(t *testing.T) {
		p := newTestParse(t, `<div id="first" class="byline">Jane Doe</div><div id="second" class="byline">John Roe</div>`)
		first, second := elementByID(t, p.doc.root, "first"), elementByID(t, p.doc.root, "second")

		assert.True(t, p.checkByline(first, "byline first"))
		assert.False(t, p.checkByline(second, "byline second"))
		assert.Equal(t, "Jane Doe", p.articleByline)
	})
}
