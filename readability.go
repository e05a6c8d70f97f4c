/*
 * Copyright (c) 2010 Arc90 Inc
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
 * This code is heavily based on Arc90's readability.js (1.7.1) script
 * available at: http://code.google.com/p/arc90labs-readability
 */

package readability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/net/html"
)

var (
	// Element tags to score by default.
	defaultTagsToScore = []string{"SECTION", "H2", "H3", "H4", "H5", "H6", "P", "TD", "PRE"}

	unlikelyRoles = []string{"menu", "menubar", "complementary", "navigation", "alert", "alertdialog", "dialog"}

	divToPElems = []string{"BLOCKQUOTE", "DL", "DIV", "IMG", "OL", "P", "PRE", "TABLE", "UL"}

	alterToDivExceptions = []string{"DIV", "ARTICLE", "SECTION", "P"}

	presentationalAttributes = []string{"align", "background", "bgcolor", "border", "cellpadding", "cellspacing", "frame", "hspace", "rules", "style", "valign", "vspace"}

	deprecatedSizeAttributeElems = []string{"TABLE", "TH", "TD", "HR", "PRE"}

	// The commented out elements qualify as phrasing content but tend to be
	// removed by readability when put into paragraphs, so we ignore them here.
	phrasingElems = []string{
		// "CANVAS", "IFRAME", "SVG", "VIDEO",
		"ABBR", "AUDIO", "B", "BDO", "BR", "BUTTON", "CITE", "CODE", "DATA",
		"DATALIST", "DFN", "EM", "EMBED", "I", "IMG", "INPUT", "KBD", "LABEL",
		"MARK", "MATH", "METER", "NOSCRIPT", "OBJECT", "OUTPUT", "PROGRESS", "Q",
		"RUBY", "SAMP", "SCRIPT", "SELECT", "SMALL", "SPAN", "STRONG", "SUB",
		"SUP", "TEXTAREA", "TIME", "VAR", "WBR"}

	// ids set by readability itself
	idsToPreserve = []string{"readability-content", "readability-page-1"}
)

// Reader extracts articles from HTML documents. It is immutable once built
// and may be shared by concurrent callers: every parse owns its own state.
type Reader struct {
	opts     *Options
	patterns *Patterns
}

// New builds a Reader. It fails only when a pattern edit does not compile
// or an option is out of range.
func New(opts ...Option) (*Reader, error) {
	options := defaultOpts()
	for _, opt := range opts {
		opt(options)
	}

	if options.nTopCandidates < 1 {
		return nil, fmt.Errorf("top candidates must be at least 1, got %d", options.nTopCandidates)
	}
	if options.maxElemsToParse < 0 {
		return nil, fmt.Errorf("max elements to parse must not be negative, got %d", options.maxElemsToParse)
	}

	var patterns = defaultPatterns
	if len(options.patternEdits) > 0 || options.allowedVideoRegex != nil {
		var err error
		patterns, err = compilePatterns(options.patternEdits)
		if err != nil {
			return nil, err
		}
		if options.allowedVideoRegex != nil {
			patterns.rgx[Videos] = options.allowedVideoRegex
		}
	}

	for _, class := range baselineClassesToPreserve {
		if !slices.Contains(options.classesToPreserve, class) {
			options.classesToPreserve = append(options.classesToPreserve, class)
		}
	}

	return &Reader{
		opts:     options,
		patterns: patterns,
	}, nil
}

// Parse parses htmlSource and extracts its article. pageURL is used to
// resolve relative links and as a last resort for the publication date.
func (r *Reader) Parse(htmlSource, pageURL string) *Article {
	doc, err := html.Parse(strings.NewReader(htmlSource))
	if err != nil {
		return r.failed(pageURL, fmt.Errorf("parse document: %w", err))
	}
	return r.ParseDocument(doc, pageURL, "")
}

// ParseURL fetches pageURL with the configured Fetcher and parses it.
// A failed fetch yields an unreadable, incomplete Article.
func (r *Reader) ParseURL(ctx context.Context, pageURL string) *Article {
	fetcher := r.opts.fetcher
	if fetcher == nil {
		fetcher = NewHTTPFetcher()
	}

	fetched, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return r.failed(pageURL, err)
	}

	doc, err := html.Parse(bytes.NewReader(fetched.HTML))
	if err != nil {
		return r.failed(pageURL, fmt.Errorf("parse document: %w", err))
	}
	return r.ParseDocument(doc, anyOf(fetched.URL, pageURL), fetched.Language)
}

// ParseDocument extracts the article of an already parsed document. doc is
// left untouched. langHint, when not empty, wins over the languages
// declared by the page.
//
// Workflow:
//  1. Read metadata from the pristine tree.
//  2. Build readability's DOM tree.
//  3. Prep the document by removing script tags, css, etc.
//  4. Grab the article content from the current dom tree.
//  5. Read peacefully.
func (r *Reader) ParseDocument(doc *html.Node, pageURL, langHint string) *Article {
	start := time.Now()

	p := r.newParse()
	article, err := p.run(doc, pageURL, langHint)
	if err != nil {
		var sizeErr *SizeLimitError
		if errors.As(err, &sizeErr) {
			p.log.Debug("aborting parse", "err", err)
		}
		return r.failed(pageURL, err)
	}

	r.opts.metrics.observeParse(article, time.Since(start))
	return article
}

func (r *Reader) failed(pageURL string, err error) *Article {
	a := &Article{
		URI:    pageURL,
		Errors: []error{err},
	}
	a.init(nil, r.opts)
	r.opts.metrics.observeParse(a, 0)
	return a
}

// parse holds the state of a single extraction. It is never reused.
type parse struct {
	opts     *Options
	patterns *Patterns
	log      *slog.Logger
	metrics  *Metrics

	doc     *document
	baseURI string
	flags   int

	// scores and dataTables are reset on every grab attempt
	scores     map[*Node]float64
	dataTables map[*Node]bool

	articleTitle  string
	articleByline string
	articleAuthor string
	articleDir    string
}

func (r *Reader) newParse() *parse {
	return &parse{
		opts:     r.opts,
		patterns: r.patterns,
		log:      r.opts.logger,
		metrics:  r.opts.metrics,
		// Start with all flags set
		flags: flagStripUnlikelys | flagWeightClasses | flagCleanConditionally,
	}
}

func (p *parse) run(doc *html.Node, pageURL, langHint string) (*Article, error) {
	// Avoid parsing too large documents, as per configuration option
	if p.opts.maxElemsToParse > 0 {
		if numTags := countElements(doc); numTags > p.opts.maxElemsToParse {
			return nil, &SizeLimitError{Found: numTags, Max: p.opts.maxElemsToParse}
		}
	}

	p.baseURI = documentBaseURI(doc, pageURL)
	meta := p.extractMetadata(doc, pageURL, langHint)

	article := &Article{
		URI:           pageURL,
		Title:         meta.Title,
		Byline:        meta.Byline,
		Author:        meta.Author,
		Excerpt:       meta.Excerpt,
		SiteName:      meta.SiteName,
		Language:      meta.Language,
		PublishedTime: meta.PublishedTime,
		FeaturedImage: meta.FeaturedImage,
		AlternateURIs: meta.AlternateURIs,
	}

	if !p.opts.continueIfNotReadable && !isProbablyReaderable(doc, p.opts, p.patterns) {
		p.log.Debug("document does not look readerable", "uri", pageURL)
		article.init(nil, p.opts)
		return article, nil
	}

	p.doc = mapDoc(doc)

	// Unwrap image from noscript
	p.unwrapNoscriptImages(p.doc.root)
	// Remove script tags from the document.
	p.removeScripts(p.doc.root)
	p.prepDocument()

	p.articleTitle = meta.Title

	var articleContent = p.grabArticle()
	if articleContent == nil {
		p.log.Debug("no readable content found", "uri", pageURL)
		article.init(nil, p.opts)
		return article, nil
	}

	for _, hook := range p.opts.preProcess {
		hook(articleContent)
	}
	p.postProcessContent(articleContent)
	for _, hook := range p.opts.postProcess {
		hook(articleContent)
	}

	p.log.Debug("grabbed", "innerHTML", articleContent.GetInnerHTML())

	// If we haven't found an excerpt in the article's metadata, use the article's
	// first paragraph as the excerpt. This is used for displaying a preview of
	// the article's content.
	if article.Excerpt == "" {
		if paragraphs := articleContent.GetElementsByTagName("p"); len(paragraphs) > 0 {
			article.Excerpt = strings.TrimSpace(paragraphs[0].GetTextContent())
		}
	}

	article.Byline = anyOf(article.Byline, p.articleByline)
	article.Author = anyOf(article.Author, p.articleAuthor)
	article.Dir = p.articleDir
	article.init(articleContent, p.opts)

	if p.opts.languageDetector != nil {
		lang, err := p.opts.languageDetector(article.TextContent(), article.Language)
		if err != nil {
			p.log.Debug("cannot detect language", "err", err)
		} else {
			article.Language = lang
		}
	}

	return article, nil
}

// Iterates over a NodeList, calls `filterFn` for each node and removes node
// if function returned `true`.
// If function is not passed, removes all the nodes in node list.
func (p *parse) removeNodes(nodeList []*Node, filterFn func(n *Node) bool) {
	for i := len(nodeList) - 1; i >= 0; i-- {
		node := nodeList[i]
		if node.ParentNode != nil && (filterFn == nil || filterFn(node)) {
			p.detach(node)
		}
	}
}

func (p *parse) detach(n *Node) {
	if n.ParentNode == nil {
		return
	}
	if _, err := n.ParentNode.RemoveChild(n); err != nil {
		p.log.Error("cannot remove child", slog.String("err", err.Error()))
	}
}

// Iterates over a NodeList, and calls setNodeTag for each node.
func (p *parse) replaceNodeTags(nodeList []*Node, newTagName string) {
	for _, node := range nodeList {
		p.setNodeTag(node, newTagName)
	}
}

func (p *parse) setNodeTag(n *Node, tag string) *Node {
	n.LocalName = strings.ToLower(tag)
	n.TagName = strings.ToUpper(tag)
	return n
}

// Iterate over a NodeList, return true if any of the provided iterate
// function calls returns true, false otherwise.
func someNode(nodeList []*Node, fn func(n *Node) bool) bool {
	return slices.ContainsFunc(nodeList, fn)
}

// Iterate over a NodeList, return true if all of the provided iterate
// function calls return true, false otherwise.
func everyNode(nodeList []*Node, fn func(n *Node) bool) bool {
	for _, node := range nodeList {
		if !fn(node) {
			return false
		}
	}
	return true
}

func (p *parse) getAllNodesWithTag(n *Node, tagNames ...string) []*Node {
	if len(tagNames) == 1 {
		return n.GetElementsByTagName(tagNames[0])
	}
	var upper = make([]string, len(tagNames))
	for i, tag := range tagNames {
		upper[i] = strings.ToUpper(tag)
	}
	var nodes []*Node
	for _, el := range n.GetElementsByTagName("*") {
		if slices.Contains(upper, el.TagName) {
			nodes = append(nodes, el)
		}
	}
	return nodes
}

// Finds the next node, starting from the given node, and ignoring
// whitespace in between. If the given node is an element, the same node is
// returned.
func (p *parse) nextNode(n *Node) *Node {
	var next = n
	for next != nil &&
		next.NodeType != ElementNode &&
		whitespace.MatchString(next.GetTextContent()) {
		next = next.NextSibling
	}
	return next
}

func (p *parse) removeAndGetNext(n *Node) *Node {
	var nextNode = p.getNextNode(n, true)
	p.detach(n)
	return nextNode
}

// Traverse the DOM from node to node, starting at the node passed in.
// Pass true for the second parameter to indicate this node itself
// (and its kids) are going away, and we want the next node over.
// Calling this in a loop will traverse the DOM depth-first.
func (p *parse) getNextNode(n *Node, ignoreSelfAndKids bool) *Node {
	// First check for kids if those aren't being ignored
	if !ignoreSelfAndKids && n.FirstElementChild() != nil {
		return n.FirstElementChild()
	}
	// Then for siblings...
	if n.NextElementSibling != nil {
		return n.NextElementSibling
	}
	// And finally, move up the parent chain *and* find a sibling
	// (because this is depth-first traversal, we will have already
	// seen the parent nodes themselves).
	n = n.ParentNode
	for n != nil && n.NextElementSibling == nil {
		n = n.ParentNode
	}
	if n != nil {
		return n.NextElementSibling
	}
	return nil
}

func (p *parse) getNodeAncestors(n *Node, maxDepth int) []*Node {
	var i, ancestors = 0, []*Node{}
	for n.ParentNode != nil {
		ancestors = append(ancestors, n.ParentNode)
		if i++; i == maxDepth {
			break
		}
		n = n.ParentNode
	}
	return ancestors
}

// Check if a given node has one of its ancestor tag name matching the
// provided one.
func (p *parse) hasAncestorTag(n *Node, tagName string, maxDepth int, filterFn func(*Node) bool) bool {
	tagName = strings.ToUpper(tagName)
	var depth = 0
	for n.ParentNode != nil {
		if maxDepth > 0 && depth > maxDepth {
			return false
		}
		if n.ParentNode.TagName == tagName && (filterFn == nil || filterFn(n.ParentNode)) {
			return true
		}
		n = n.ParentNode
		depth++
	}
	return false
}

// Check if this node has only whitespace and a single element with given tag
// Returns false if the DIV node contains non-empty text nodes
// or if it contains no element with given tag or more than 1 element.
func (p *parse) hasSingleTagInsideElement(element *Node, tag string) bool {
	// There should be exactly 1 element child with given tag
	if len(element.Children) != 1 || element.Children[0].TagName != tag {
		return false
	}

	// And there should be no text nodes with real content
	return !someNode(element.ChildNodes, func(n *Node) bool {
		return n.NodeType == TextNode && hasContent.MatchString(n.Data)
	})
}

func (p *parse) isElementWithoutContent(n *Node) bool {
	return n.NodeType == ElementNode &&
		strings.TrimSpace(n.GetTextContent()) == "" &&
		(len(n.Children) == 0 ||
			len(n.Children) == len(n.GetElementsByTagName("br"))+len(n.GetElementsByTagName("hr")))
}

// Determine whether element has any children block level elements.
func (p *parse) hasChildBlockElement(element *Node) bool {
	return someNode(element.ChildNodes, func(n *Node) bool {
		return slices.Contains(divToPElems, n.TagName) || p.hasChildBlockElement(n)
	})
}

// Determine if a node qualifies as phrasing content.
// see: https://developer.mozilla.org/en-US/docs/Web/Guide/HTML/Content_categories#Phrasing_content
func (p *parse) isPhrasingContent(n *Node) bool {
	return n.NodeType == TextNode || slices.Contains(phrasingElems, n.TagName) ||
		((n.TagName == "A" || n.TagName == "DEL" || n.TagName == "INS") &&
			everyNode(n.ChildNodes, p.isPhrasingContent))
}

func (p *parse) isWhitespace(n *Node) bool {
	return (n.NodeType == TextNode && strings.TrimSpace(n.Data) == "") ||
		(n.NodeType == ElementNode && n.TagName == "BR")
}

// Get the inner text of a node.
// This also strips out any excess whitespace to be found ('normalizeSpaces').
func (p *parse) getInnerText(e *Node, normalizeSpaces bool) string {
	var textContent = strings.TrimSpace(e.GetTextContent())
	if normalizeSpaces {
		return normalize.ReplaceAllString(textContent, " ")
	}
	return textContent
}

// Get the number of times a string s appears in the node e.
func (p *parse) getCharCount(e *Node, s string) int {
	return strings.Count(p.getInnerText(e, true), s)
}

// Get the density of links as a percentage of the content
// This is the amount of text that is inside a link divided by the total text in the node.
func (p *parse) getLinkDensity(element *Node) float64 {
	var textLength = runeCount(p.getInnerText(element, true))
	if textLength == 0 {
		return 0
	}

	var linkLength = 0.0
	for _, linkNode := range element.GetElementsByTagName("a") {
		var href = linkNode.GetAttribute("href")
		var coefficient = 1.0
		if href != "" && hashUrl.MatchString(href) {
			coefficient = 0.3
		}
		linkLength += float64(runeCount(p.getInnerText(linkNode, true))) * coefficient
	}

	return linkLength / float64(textLength)
}

// Compares second text to first one
// 1 = same text, 0 = completely different text.
// Works the way that it splits both texts into words and then finds words that are unique in second text
// the result is given by the lower length of unique parts.
func textSimilarity(textA, textB string) float64 {
	var tokensA = nonEmpty(tokenize.Split(strings.ToLower(textA), -1))
	var tokensB = nonEmpty(tokenize.Split(strings.ToLower(textB), -1))
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}
	var uniqTokensB []string
	for _, t := range tokensB {
		if !slices.Contains(tokensA, t) {
			uniqTokensB = append(uniqTokensB, t)
		}
	}
	var distanceB = float64(len(strings.Join(uniqTokensB, " "))) / float64(len(strings.Join(tokensB, " ")))
	return 1 - distanceB
}

func nonEmpty(tokens []string) []string {
	return slices.DeleteFunc(tokens, func(s string) bool { return s == "" })
}

func runeCount(s string) int {
	return len([]rune(s))
}

func (p *parse) flagIsActive(flag int) bool {
	return p.flags&flag > 0
}

func (p *parse) removeFlag(flag int) {
	p.flags = p.flags &^ flag
}

func isProbablyVisible(n *Node) bool {
	// Have to null-check node.style and node.className.indexOf to deal with SVG and MathML nodes.
	return !strings.EqualFold(n.getStyle("display"), "none") &&
		!strings.EqualFold(n.getStyle("visibility"), "hidden") &&
		!n.HasAttribute("hidden") &&
		(!n.HasAttribute("aria-hidden") || n.GetAttribute("aria-hidden") != "true" ||
			strings.Contains(n.GetClassName(), "fallback-image"))
}
