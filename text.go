package readability

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

var extraNewlines = regexp.MustCompile(`\n{3,}`)

// Blocks separated from their surroundings by an empty line.
var paragraphBlocks = map[string]bool{
	"P": true, "H1": true, "H2": true, "H3": true, "H4": true, "H5": true, "H6": true,
	"BLOCKQUOTE": true, "PRE": true, "UL": true, "OL": true, "DL": true,
	"TABLE": true, "FIGURE": true, "HR": true,
}

// Blocks starting on their own line.
var lineBlocks = map[string]bool{
	"DIV": true, "SECTION": true, "ARTICLE": true, "HEADER": true, "FOOTER": true,
	"ASIDE": true, "NAV": true, "LI": true, "DT": true, "DD": true, "TR": true,
	"FIGCAPTION": true, "CAPTION": true, "MAIN": true, "ADDRESS": true,
}

type textWriter struct {
	sb      strings.Builder
	pending int
}

func (w *textWriter) newlines(n int) {
	w.pending = max(w.pending, n)
}

func (w *textWriter) write(s string) {
	s = multipleWhitespaces.ReplaceAllString(s, " ")
	if s == "" || (s == " " && w.pending > 0) {
		return
	}
	if w.pending > 0 {
		if w.sb.Len() > 0 {
			w.sb.WriteString(strings.Repeat("\n", w.pending))
		}
		w.pending = 0
		s = strings.TrimLeft(s, " ")
	}
	w.sb.WriteString(s)
}

func (w *textWriter) walk(n *Node) {
	if n.NodeType == TextNode {
		w.write(n.Data)
		return
	}

	switch {
	case n.TagName == "BR":
		w.pending = min(w.pending+1, 2)
		return
	case paragraphBlocks[n.TagName]:
		w.newlines(2)
		defer w.newlines(2)
	case lineBlocks[n.TagName]:
		w.newlines(1)
		defer w.newlines(1)
	}

	for _, child := range n.ChildNodes {
		w.walk(child)
	}
}

// PlainText renders the text of n, keeping paragraphs apart by an empty line
// and line-level blocks on their own line. Whitespace runs collapse to a
// single space.
func PlainText(n *Node) string {
	var w textWriter
	for _, child := range n.ChildNodes {
		w.walk(child)
	}

	lines := strings.Split(w.sb.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text := extraNewlines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text)
}

// MarkdownConverter returns a text converter rendering the content as
// Markdown, tables included. It falls back to PlainText when the content
// cannot be converted.
func MarkdownConverter() func(*Node) string {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return func(n *Node) string {
		md, err := conv.ConvertString(n.GetInnerHTML())
		if err != nil {
			return PlainText(n)
		}
		return strings.TrimSpace(md)
	}
}

// SanitizingSerializer returns a serializer stripping the content of
// anything unsafe for user-generated content. Identifiers and classes are
// kept.
func SanitizingSerializer() func(*Node) string {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id", "class").Globally()
	return func(n *Node) string {
		return policy.Sanitize(n.GetInnerHTML())
	}
}
