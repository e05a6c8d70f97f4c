/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this file,
 * You can obtain one at http://mozilla.org/MPL/2.0/. */

/**
 * This is a relatively lightweight DOM that the extraction pipeline mutates
 * in place. It is far from a complete DOM implementation; however, it
 * contains the minimal set of functionality necessary for the scorer and
 * the cleaner.
 *
 * Quirks to be aware of:
 *
 *   1) Only element and text nodes are kept. Comments, doctypes and
 *      processing instructions are dropped when a tree is mapped from
 *      golang.org/x/net/html.
 *
 *   2) Live NodeLists are not supported. GetElementsByTagName() and
 *      ChildNodes return plain slices. If you want these lists to be updated
 *      when nodes are removed or added to the document, you must take care to
 *      manually update them yourself.
 */

package readability

import (
	"errors"
	"slices"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// See https://developer.mozilla.org/en-US/docs/Web/API/Node/nodeType
type NodeType uint

const (
	ElementNode  NodeType = 1
	TextNode     NodeType = 3
	DocumentNode NodeType = 9
)

var errNodeNotFound = errors.New("node not found")

var textEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
)

var attrEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// Elements that can be self-closing
var voidElems = map[string]bool{
	"area":    true,
	"base":    true,
	"br":      true,
	"col":     true,
	"command": true,
	"embed":   true,
	"hr":      true,
	"img":     true,
	"input":   true,
	"link":    true,
	"meta":    true,
	"param":   true,
	"source":  true,
	"track":   true,
	"wbr":     true,
}

// Attribute is a single name/value pair of an element.
type Attribute struct {
	Name  string
	Value string
}

// Node is an element, text or document node of the working tree.
type Node struct {
	NodeType NodeType
	// LocalName is the lower-cased tag name, TagName the upper-cased one.
	LocalName string
	TagName   string
	// Data holds the (unescaped) text of a text node.
	Data       string
	Attributes []*Attribute
	// relations
	ParentNode             *Node
	NextSibling            *Node
	PreviousSibling        *Node
	NextElementSibling     *Node
	PreviousElementSibling *Node
	ChildNodes             []*Node
	Children               []*Node
}

func newElement(tag string) *Node {
	// We're explicitly a non-namespace aware tree, we just pretend it's all HTML.
	if i := strings.LastIndex(tag, ":"); i != -1 {
		tag = tag[i+1:]
	}
	return &Node{
		NodeType:  ElementNode,
		LocalName: strings.ToLower(tag),
		TagName:   strings.ToUpper(tag),
	}
}

func newText(data string) *Node {
	return &Node{
		NodeType: TextNode,
		Data:     data,
	}
}

func newDocumentNode() *Node {
	return &Node{NodeType: DocumentNode}
}

func (n *Node) FirstChild() *Node {
	if len(n.ChildNodes) == 0 {
		return nil
	}
	return n.ChildNodes[0]
}

func (n *Node) LastChild() *Node {
	if len(n.ChildNodes) == 0 {
		return nil
	}
	return n.ChildNodes[len(n.ChildNodes)-1]
}

func (n *Node) FirstElementChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

func (n *Node) LastElementChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

// AppendChild moves child to the end of n's children, detaching it from its
// current parent first.
func (n *Node) AppendChild(child *Node) {
	if child.ParentNode != nil {
		_, _ = child.ParentNode.RemoveChild(child)
	}

	last := n.LastChild()
	if last != nil {
		last.NextSibling = child
	}
	child.PreviousSibling = last

	if child.NodeType == ElementNode {
		child.PreviousElementSibling = n.LastElementChild()
		n.Children = append(n.Children, child)
		if child.PreviousElementSibling != nil {
			child.PreviousElementSibling.NextElementSibling = child
		}
	}

	n.ChildNodes = append(n.ChildNodes, child)
	child.ParentNode = n
}

// RemoveChild detaches child from n.
func (n *Node) RemoveChild(child *Node) (*Node, error) {
	childIndex := indexOf(child, n.ChildNodes)
	if childIndex == -1 {
		return nil, errNodeNotFound
	}

	child.ParentNode = nil
	prev := child.PreviousSibling
	next := child.NextSibling
	if prev != nil {
		prev.NextSibling = next
	}
	if next != nil {
		next.PreviousSibling = prev
	}

	if child.NodeType == ElementNode {
		prev = child.PreviousElementSibling
		next = child.NextElementSibling
		if prev != nil {
			prev.NextElementSibling = next
		}
		if next != nil {
			next.PreviousElementSibling = prev
		}
		n.Children = remove(indexOf(child, n.Children), n.Children)
	}

	child.PreviousSibling, child.NextSibling = nil, nil
	child.PreviousElementSibling, child.NextElementSibling = nil, nil

	n.ChildNodes = remove(childIndex, n.ChildNodes)
	return child, nil
}

// ReplaceChild puts newNode in place of oldNode and returns oldNode, or nil
// when oldNode is not a child of n.
func (n *Node) ReplaceChild(newNode, oldNode *Node) *Node {
	if newNode == oldNode {
		return oldNode
	}
	if indexOf(oldNode, n.ChildNodes) == -1 {
		return nil
	}
	// This will take care of updating the new node if it was somewhere else before:
	if newNode.ParentNode != nil {
		_, _ = newNode.ParentNode.RemoveChild(newNode)
	}
	childIndex := indexOf(oldNode, n.ChildNodes)
	n.ChildNodes[childIndex] = newNode

	newNode.NextSibling = oldNode.NextSibling
	newNode.PreviousSibling = oldNode.PreviousSibling
	if newNode.NextSibling != nil {
		newNode.NextSibling.PreviousSibling = newNode
	}
	if newNode.PreviousSibling != nil {
		newNode.PreviousSibling.NextSibling = newNode
	}
	newNode.ParentNode = n

	if oldNode.NodeType == ElementNode {
		n.Children = remove(indexOf(oldNode, n.Children), n.Children)
	}
	if newNode.NodeType == ElementNode {
		var at = 0
		for i := childIndex - 1; i >= 0; i-- {
			if n.ChildNodes[i].NodeType == ElementNode {
				at = indexOf(n.ChildNodes[i], n.Children) + 1
				break
			}
		}
		n.Children = slices.Insert(n.Children, at, newNode)
	}
	n.relinkElementSiblings()

	oldNode.ParentNode = nil
	oldNode.PreviousSibling, oldNode.NextSibling = nil, nil
	oldNode.PreviousElementSibling, oldNode.NextElementSibling = nil, nil
	return oldNode
}

func (n *Node) relinkElementSiblings() {
	for i, c := range n.Children {
		c.PreviousElementSibling, c.NextElementSibling = nil, nil
		if i > 0 {
			c.PreviousElementSibling = n.Children[i-1]
		}
		if i < len(n.Children)-1 {
			c.NextElementSibling = n.Children[i+1]
		}
	}
}

// GetElementsByTagName returns the descendants of n with the given tag, in
// document order. "*" matches every element.
func (n *Node) GetElementsByTagName(tag string) []*Node {
	tag = strings.ToUpper(tag)
	var allTags = tag == "*"
	var elems []*Node

	var getElems func(from *Node)
	getElems = func(from *Node) {
		for _, child := range from.Children {
			if allTags || child.TagName == tag {
				elems = append(elems, child)
			}
			getElems(child)
		}
	}
	getElems(n)
	return elems
}

// QuerySelectorAll returns the descendants of n matching a CSS selector
// group, in document order.
func (n *Node) QuerySelectorAll(query string) ([]*Node, error) {
	sel, err := cascadia.ParseGroup(query)
	if err != nil {
		return nil, err
	}
	mirror, back := n.toHTML()
	var matched []*Node
	for _, m := range cascadia.QueryAll(mirror, sel) {
		if node := back[m]; node != nil && node != n {
			matched = append(matched, node)
		}
	}
	return matched, nil
}

// toHTML builds a read-only x/net/html mirror of the subtree rooted at n,
// along with a map back to the original nodes.
func (n *Node) toHTML() (*html.Node, map[*html.Node]*Node) {
	back := make(map[*html.Node]*Node)
	var build func(*Node) *html.Node
	build = func(from *Node) *html.Node {
		var to *html.Node
		switch from.NodeType {
		case ElementNode:
			to = &html.Node{Type: html.ElementNode, Data: from.LocalName, DataAtom: atom.Lookup([]byte(from.LocalName))}
			for _, a := range from.Attributes {
				to.Attr = append(to.Attr, html.Attribute{Key: a.Name, Val: a.Value})
			}
		case TextNode:
			to = &html.Node{Type: html.TextNode, Data: from.Data}
		default:
			to = &html.Node{Type: html.DocumentNode}
		}
		back[to] = from
		for _, c := range from.ChildNodes {
			to.AppendChild(build(c))
		}
		return to
	}
	return build(n), back
}

// Clone returns a deep copy of n, detached from any parent.
func (n *Node) Clone() *Node {
	c := &Node{
		NodeType:  n.NodeType,
		LocalName: n.LocalName,
		TagName:   n.TagName,
		Data:      n.Data,
	}
	for _, a := range n.Attributes {
		c.Attributes = append(c.Attributes, &Attribute{Name: a.Name, Value: a.Value})
	}
	for _, child := range n.ChildNodes {
		c.AppendChild(child.Clone())
	}
	return c
}

func (n *Node) GetAttribute(name string) string {
	for i := len(n.Attributes) - 1; i >= 0; i-- {
		if n.Attributes[i].Name == name {
			return n.Attributes[i].Value
		}
	}
	return ""
}

func (n *Node) SetAttribute(name, value string) {
	for _, attr := range n.Attributes {
		if attr.Name == name {
			attr.Value = value
			return
		}
	}
	n.Attributes = append(n.Attributes, &Attribute{Name: name, Value: value})
}

func (n *Node) RemoveAttribute(name string) {
	for idx, attr := range n.Attributes {
		if attr.Name == name {
			n.Attributes = remove(idx, n.Attributes)
			return
		}
	}
}

func (n *Node) HasAttribute(name string) bool {
	return slices.ContainsFunc(n.Attributes, func(a *Attribute) bool {
		return a.Name == name
	})
}

func (n *Node) GetClassName() string {
	return n.GetAttribute("class")
}

func (n *Node) SetClassName(str string) {
	n.SetAttribute("class", str)
}

func (n *Node) GetId() string {
	return n.GetAttribute("id")
}

func (n *Node) SetId(str string) {
	n.SetAttribute("id", str)
}

// getStyle reads a single CSS declaration from the inline style attribute.
func (n *Node) getStyle(cssName string) string {
	var attr = n.GetAttribute("style")
	if attr == "" {
		return ""
	}
	for _, decl := range strings.Split(attr, ";") {
		name, value, found := strings.Cut(decl, ":")
		if found && strings.EqualFold(strings.TrimSpace(name), cssName) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func (n *Node) GetTextContent() string {
	if n.NodeType == TextNode {
		return n.Data
	}
	var sb strings.Builder
	var getText func(*Node)
	getText = func(from *Node) {
		for _, child := range from.ChildNodes {
			if child.NodeType == TextNode {
				sb.WriteString(child.Data)
			} else {
				getText(child)
			}
		}
	}
	getText(n)
	return sb.String()
}

// SetTextContent replaces every child of n with a single text node.
func (n *Node) SetTextContent(text string) {
	if n.NodeType == TextNode {
		n.Data = text
		return
	}
	for n.FirstChild() != nil {
		_, _ = n.RemoveChild(n.FirstChild())
	}
	n.AppendChild(newText(text))
}

func (n *Node) GetInnerHTML() string {
	if n.NodeType == TextNode {
		return textEscaper.Replace(n.Data)
	}
	var sb strings.Builder
	for _, child := range n.ChildNodes {
		child.render(&sb)
	}
	return sb.String()
}

func (n *Node) GetOuterHTML() string {
	var sb strings.Builder
	n.render(&sb)
	return sb.String()
}

func (n *Node) render(sb *strings.Builder) {
	switch n.NodeType {
	case TextNode:
		sb.WriteString(textEscaper.Replace(n.Data))
	case ElementNode:
		sb.WriteString("<" + n.LocalName)
		for _, attr := range n.Attributes {
			sb.WriteString(" " + attr.Name + `="` + attrEscaper.Replace(attr.Value) + `"`)
		}
		sb.WriteString(">")
		if voidElems[n.LocalName] {
			return
		}
		for _, child := range n.ChildNodes {
			child.render(sb)
		}
		sb.WriteString("</" + n.LocalName + ">")
	default:
		for _, child := range n.ChildNodes {
			child.render(sb)
		}
	}
}

// SetInnerHTML parses markup as a fragment in the context of n and replaces
// n's children with the result.
func (n *Node) SetInnerHTML(markup string) error {
	if n.NodeType == TextNode {
		n.Data = markup
		return nil
	}
	tag := n.LocalName
	if tag == "" {
		tag = "div"
	}
	context := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return err
	}
	for n.FirstChild() != nil {
		_, _ = n.RemoveChild(n.FirstChild())
	}
	for _, c := range nodes {
		if mapped := mapTree(c); mapped != nil {
			n.AppendChild(mapped)
		}
	}
	return nil
}
