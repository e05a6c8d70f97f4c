package readability

import (
	"golang.org/x/net/html"
)

// document is the working copy of a parsed page.
type document struct {
	root *Node
	html *Node
	body *Node
}

func mapDoc(doc *html.Node) *document {

	ret := &document{
		root: newDocumentNode(),
	}

	var f func(*html.Node, *Node)
	f = func(from *html.Node, to *Node) {

		for c := from.FirstChild; c != nil; c = c.NextSibling {

			mapped := mapNode(c)
			if mapped == nil {
				continue
			}
			to.AppendChild(mapped)

			// set doc elements
			if mapped.NodeType == ElementNode {
				switch mapped.LocalName {
				case "body":
					ret.body = mapped
				case "html":
					ret.html = mapped
				}
			}
			f(c, mapped)
		}
	}

	if doc.Type == html.DocumentNode {
		f(doc, ret.root)
		return ret
	}

	// A bare element: give it the html/body scaffolding the grabber expects.
	mapped := mapTree(doc)
	switch {
	case mapped == nil:
	case mapped.TagName == "HTML":
		ret.root.AppendChild(mapped)
		ret.html = mapped
		if bodies := mapped.GetElementsByTagName("body"); len(bodies) > 0 {
			ret.body = bodies[0]
		}
	case mapped.TagName == "BODY":
		ret.html = newElement("html")
		ret.root.AppendChild(ret.html)
		ret.html.AppendChild(mapped)
		ret.body = mapped
	default:
		ret.html = newElement("html")
		ret.body = newElement("body")
		ret.root.AppendChild(ret.html)
		ret.html.AppendChild(ret.body)
		ret.body.AppendChild(mapped)
	}
	return ret
}

// mapTree maps a whole subtree. Returns nil for nodes that are not kept.
func mapTree(from *html.Node) *Node {
	to := mapNode(from)
	if to == nil {
		return nil
	}
	for c := from.FirstChild; c != nil; c = c.NextSibling {
		if mapped := mapTree(c); mapped != nil {
			to.AppendChild(mapped)
		}
	}
	return to
}

func mapNode(from *html.Node) *Node {

	switch from.Type {

	case html.ElementNode:
		to := newElement(from.Data)
		for _, a := range from.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			to.SetAttribute(key, a.Val)
		}
		return to

	case html.TextNode:
		return newText(from.Data)
	}

	return nil
}

// countElements returns the number of element nodes under n.
func countElements(n *html.Node) int {
	var count int
	if n.Type == html.ElementNode {
		count++
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += countElements(c)
	}
	return count
}
