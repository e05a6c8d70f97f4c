package readability

import (
	"slices"
	"strings"
)

// Prepare the HTML document for readability to scrape it.
// This includes things like stripping CSS and handling terrible markup.
func (p *parse) prepDocument() {
	var doc = p.doc.root
	// Remove all style tags in head
	p.removeNodes(p.getAllNodesWithTag(doc, "style"), nil)

	if p.doc.body != nil {
		p.replaceBrs(p.doc.body)
	}

	p.replaceNodeTags(p.getAllNodesWithTag(doc, "font"), "SPAN")
}

// Removes script tags from the document.
func (p *parse) removeScripts(doc *Node) {
	p.removeNodes(p.getAllNodesWithTag(doc, "script", "noscript"), nil)
}

// Replaces 2 or more successive <br> elements with a single <p>.
// Whitespace between <br> elements are ignored. For example:
//
//	<div>foo<br>bar<br> <br><br>abc</div>
//
// will become:
//
//	<div>foo<br>bar<p>abc</p></div>
func (p *parse) replaceBrs(n *Node) {

	for _, br := range p.getAllNodesWithTag(n, "br") {
		if br.ParentNode == nil {
			continue
		}
		var next = br.NextSibling

		// Whether 2 or more <br> elements have been found and replaced with a
		// <p> block.
		var replaced = false

		// If we find a <br> chain, remove the <br>s until we hit another node
		// or non-whitespace. This leaves behind the first <br> in the chain
		// (which will be replaced with a <p> later).
		for next = p.nextNode(next); next != nil && next.TagName == "BR"; next = p.nextNode(next) {
			replaced = true
			var brSibling = next.NextSibling
			p.detach(next)
			next = brSibling
		}

		// If we removed a <br> chain, replace the remaining <br> with a <p>. Add
		// all sibling nodes as children of the <p> until we hit another <br>
		// chain.
		if replaced {
			var para = newElement("p")
			br.ParentNode.ReplaceChild(para, br)

			next = para.NextSibling
			for next != nil {
				// If we've hit another <br><br>, we're done adding children to this <p>.
				if next.TagName == "BR" {
					var nextElem = p.nextNode(next.NextSibling)
					if nextElem != nil && nextElem.TagName == "BR" {
						break
					}
				}

				if !p.isPhrasingContent(next) {
					break
				}

				// Otherwise, make this node a child of the new <p>.
				var sibling = next.NextSibling
				para.AppendChild(next)
				next = sibling
			}

			for para.LastChild() != nil && p.isWhitespace(para.LastChild()) {
				p.detach(para.LastChild())
			}

			if para.ParentNode.TagName == "P" {
				p.setNodeTag(para.ParentNode, "DIV")
			}
		}
	}
}

// Check if node is image, or if node contains exactly only one image
// whether as a direct child or as its descendants.
func (p *parse) isSingleImage(n *Node) bool {
	if n.TagName == "IMG" {
		return true
	}

	if len(n.Children) != 1 || strings.TrimSpace(n.GetTextContent()) != "" {
		return false
	}
	return p.isSingleImage(n.Children[0])
}

// Find all <noscript> that are located after <img> nodes, and which contain only one
// <img> element. Replace the first image with the image from inside the <noscript> tag,
// and remove the <noscript> tag. This improves the quality of the images we use on
// some sites (e.g. Medium).
func (p *parse) unwrapNoscriptImages(doc *Node) {
	// Find img without source or attributes that might contains image, and remove it.
	// This is done to prevent a placeholder img is replaced by img from noscript in next step.
	for _, img := range doc.GetElementsByTagName("img") {
		containsImg := slices.ContainsFunc(img.Attributes, func(attr *Attribute) bool {
			switch attr.Name {
			case "src", "srcset", "data-src", "data-srcset":
				return true
			}
			return imgExtensions.MatchString(attr.Value)
		})

		if !containsImg {
			p.detach(img)
		}
	}

	// Next find noscript and try to extract its image
	for _, noscript := range doc.GetElementsByTagName("noscript") {
		if noscript.ParentNode == nil {
			continue
		}
		// With scripting enabled the parser keeps noscript content as raw text.
		var markup string
		if slices.ContainsFunc(noscript.ChildNodes, func(c *Node) bool { return c.NodeType == ElementNode }) {
			markup = noscript.GetInnerHTML()
		} else {
			markup = noscript.GetTextContent()
		}

		// Parse content of noscript and make sure it only contains image
		var div = newElement("div")
		if err := div.SetInnerHTML(markup); err != nil {
			p.log.Debug("cannot parse noscript content", "err", err)
			continue
		}
		if !p.isSingleImage(div) {
			continue
		}

		// If noscript has previous sibling and it only contains image,
		// replace it with noscript content. However we also keep old
		// attributes that might contains image.
		var prevElement = noscript.PreviousElementSibling
		if prevElement != nil && p.isSingleImage(prevElement) {
			var prevImg = prevElement
			if prevImg.TagName != "IMG" {
				prevImg = prevElement.GetElementsByTagName("img")[0]
			}

			var newImg = div.GetElementsByTagName("img")[0]
			for _, attr := range prevImg.Attributes {
				if attr.Value == "" {
					continue
				}

				if attr.Name == "src" || attr.Name == "srcset" || imgExtensions.MatchString(attr.Value) {
					if newImg.GetAttribute(attr.Name) == attr.Value {
						continue
					}

					var attrName = attr.Name
					if newImg.HasAttribute(attrName) {
						attrName = "data-old-" + attrName
					}
					newImg.SetAttribute(attrName, attr.Value)
				}
			}

			noscript.ParentNode.ReplaceChild(div.FirstElementChild(), prevElement)
			p.detach(noscript)
		}
	}
}
