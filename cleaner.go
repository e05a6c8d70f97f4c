package readability

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Prepare the article node for display. Clean out any inline styles,
// iframes, forms, strip extraneous <p> tags, etc.
func (p *parse) prepArticle(articleContent *Node) {
	p.cleanStyles(articleContent)

	// Check for data tables before we continue, to avoid removing items in
	// those tables, which will often be isolated even though they're
	// visually linked to other content-ful elements (text, images, etc.).
	p.markDataTables(articleContent)

	p.fixLazyImages(articleContent)

	// Clean out junk from the article content
	p.cleanConditionally(articleContent, "form")
	p.cleanConditionally(articleContent, "fieldset")
	p.clean(articleContent, "object")
	p.clean(articleContent, "embed")
	p.clean(articleContent, "h1")
	p.clean(articleContent, "footer")
	p.clean(articleContent, "link")
	p.clean(articleContent, "aside")

	// Clean out elements that have "share" in their id/class combinations from final top candidates,
	// which means we don't remove the top candidates even they have "share".
	var shareElements = p.patterns.Get(ShareElements)
	for _, topCandidate := range slices.Clone(articleContent.Children) {
		p.cleanMatchedNodes(topCandidate, func(_ *Node, matchString string) bool {
			return shareElements.MatchString(matchString)
		})
	}

	// If there is only one h2 and its text content substantially equals article title,
	// they are probably using it as a header and not a subheader,
	// so remove it since we already extract the title separately.
	if h2 := articleContent.GetElementsByTagName("h2"); len(h2) == 1 && p.articleTitle != "" {
		var heading = h2[0].GetTextContent()
		var titleLength = float64(runeCount(p.articleTitle))
		var lengthSimilarRate = (float64(runeCount(heading)) - titleLength) / titleLength
		if math.Abs(lengthSimilarRate) < 0.5 {
			var titlesMatch bool
			if lengthSimilarRate > 0 {
				titlesMatch = strings.Contains(heading, p.articleTitle)
			} else {
				titlesMatch = strings.Contains(p.articleTitle, heading)
			}
			if titlesMatch {
				p.clean(articleContent, "h2")
			}
		}
	}

	p.clean(articleContent, "iframe")
	p.clean(articleContent, "input")
	p.clean(articleContent, "textarea")
	p.clean(articleContent, "select")
	p.clean(articleContent, "button")
	p.cleanHeaders(articleContent)

	// Do these last as the previous stuff may have removed junk
	// that will affect these
	p.cleanConditionally(articleContent, "table")
	p.cleanConditionally(articleContent, "ul")
	p.cleanConditionally(articleContent, "div")

	// Remove extra paragraphs
	p.removeNodes(articleContent.GetElementsByTagName("p"), func(paragraph *Node) bool {
		// At this point, nasty iframes have been removed, only remain embedded video ones.
		var totalCount = len(p.getAllNodesWithTag(paragraph, "img", "embed", "object", "iframe"))
		return totalCount == 0 && p.getInnerText(paragraph, false) == ""
	})

	for _, br := range articleContent.GetElementsByTagName("br") {
		var next = p.nextNode(br.NextSibling)
		if next != nil && next.TagName == "P" {
			p.detach(br)
		}
	}

	// Remove single-cell tables
	for _, table := range articleContent.GetElementsByTagName("table") {
		if table.ParentNode == nil {
			continue
		}
		var tbody = table
		if p.hasSingleTagInsideElement(table, "TBODY") {
			tbody = table.FirstElementChild()
		}
		if p.hasSingleTagInsideElement(tbody, "TR") {
			var row = tbody.FirstElementChild()
			if p.hasSingleTagInsideElement(row, "TD") {
				var cell = row.FirstElementChild()
				var tag = "DIV"
				if everyNode(cell.ChildNodes, p.isPhrasingContent) {
					tag = "P"
				}
				cell = p.setNodeTag(cell, tag)
				table.ParentNode.ReplaceChild(cell, table)
			}
		}
	}
}

// Remove the style attribute on every e and under.
func (p *parse) cleanStyles(e *Node) {
	if e == nil || e.TagName == "SVG" {
		return
	}

	// Remove `style` and deprecated presentational attributes
	for _, attr := range presentationalAttributes {
		e.RemoveAttribute(attr)
	}

	if slices.Contains(deprecatedSizeAttributeElems, e.TagName) {
		e.RemoveAttribute("width")
		e.RemoveAttribute("height")
	}

	for cur := e.FirstElementChild(); cur != nil; cur = cur.NextElementSibling {
		p.cleanStyles(cur)
	}
}

// Clean a node of all elements of type "tag".
// (Unless it's a youtube/vimeo video. People love movies.)
func (p *parse) clean(e *Node, tag string) {
	var isEmbed = tag == "object" || tag == "embed" || tag == "iframe"

	p.removeNodes(e.GetElementsByTagName(tag), func(element *Node) bool {
		// Allow youtube and vimeo videos through as people usually want to see those.
		return !isEmbed || !p.isAllowedVideo(element)
	})
}

// isAllowedVideo reports whether any attribute of an embed, or the inner
// HTML of an <object>, matches the video allow-list.
func (p *parse) isAllowedVideo(element *Node) bool {
	var videos = p.patterns.Get(Videos)
	for _, attr := range element.Attributes {
		if videos.MatchString(attr.Value) {
			return true
		}
	}
	// For embed with <object> tag, check inner HTML as well.
	return element.TagName == "OBJECT" && videos.MatchString(element.GetInnerHTML())
}

// Return how many rows and columns this table has.
func (p *parse) getRowAndColumnCount(table *Node) (int, int) {
	var rows, columns = 0, 0
	for _, tr := range table.GetElementsByTagName("tr") {
		rowspan, _ := strconv.Atoi(tr.GetAttribute("rowspan"))
		rows += max(rowspan, 1)

		// Now look for column-related info
		var columnsInThisRow = 0
		for _, cell := range tr.GetElementsByTagName("td") {
			colspan, _ := strconv.Atoi(cell.GetAttribute("colspan"))
			columnsInThisRow += max(colspan, 1)
		}
		columns = max(columns, columnsInThisRow)
	}
	return rows, columns
}

// Look for 'data' (as opposed to 'layout') tables, for which we use
// similar checks as
// https://searchfox.org/mozilla-central/rev/f82d5c549f046cb64ce5602bfd894b7ae807c8f8/accessible/generic/TableAccessible.cpp#19
func (p *parse) markDataTables(root *Node) {
	for _, table := range root.GetElementsByTagName("table") {
		if table.GetAttribute("role") == "presentation" {
			p.dataTables[table] = false
			continue
		}
		if table.GetAttribute("datatable") == "0" {
			p.dataTables[table] = false
			continue
		}
		if table.GetAttribute("summary") != "" {
			p.dataTables[table] = true
			continue
		}
		if captions := table.GetElementsByTagName("caption"); len(captions) > 0 && len(captions[0].ChildNodes) > 0 {
			p.dataTables[table] = true
			continue
		}

		// If the table has a descendant with any of these tags, consider a data table:
		if len(p.getAllNodesWithTag(table, "col", "colgroup", "tfoot", "thead", "th")) > 0 {
			p.log.Debug("Data table because found data-y descendant")
			p.dataTables[table] = true
			continue
		}

		// Nested tables indicate a layout table:
		if len(table.GetElementsByTagName("table")) > 0 {
			p.dataTables[table] = false
			continue
		}

		var rows, columns = p.getRowAndColumnCount(table)
		if rows >= 10 || columns > 4 {
			p.dataTables[table] = true
			continue
		}
		// Now just go by size entirely:
		p.dataTables[table] = rows*columns > 10
	}
}

// convert images and figures that have properties like data-src into images that can be loaded without JS
func (p *parse) fixLazyImages(root *Node) {
	for _, elem := range p.getAllNodesWithTag(root, "img", "picture", "figure") {
		// In some sites (e.g. Kotaku), they put 1px square image as base64 data uri in the src attribute.
		// So, here we check if the data uri is too short, just might as well remove it.
		var src = elem.GetAttribute("src")
		if parts := b64DataUrl.FindStringSubmatch(src); parts != nil {
			// Make sure it's not SVG, because SVG can have a meaningful image in under 133 bytes.
			if parts[1] == "image/svg+xml" {
				continue
			}

			// Make sure this element has other attributes which contains image.
			// If it doesn't, then this src is important and shouldn't be removed.
			var srcCouldBeRemoved = slices.ContainsFunc(elem.Attributes, func(attr *Attribute) bool {
				return attr.Name != "src" && imgExtensions.MatchString(attr.Value)
			})

			// Here we assume if image is less than 100 bytes (or 133B after encoded to base64)
			// it will be too small, therefore it might be placeholder image.
			if srcCouldBeRemoved {
				var b64starts = base64Starts.FindStringIndex(strings.ToLower(src))[0] + 7
				if len(src)-b64starts < 133 {
					elem.RemoveAttribute("src")
				}
			}
		}

		// also check for "null" to work around https://github.com/jsdom/jsdom/issues/2580
		src = elem.GetAttribute("src")
		var srcset = elem.GetAttribute("srcset")
		if (src != "" || (srcset != "" && srcset != "null")) && !strings.Contains(strings.ToLower(elem.GetClassName()), "lazy") {
			continue
		}

		for _, attr := range slices.Clone(elem.Attributes) {
			if attr.Name == "src" || attr.Name == "srcset" || attr.Name == "alt" {
				continue
			}
			var copyTo string
			if imgExtensionsWithSpacesAndNum.MatchString(attr.Value) {
				copyTo = "srcset"
			} else if imgExtensionsAmongText.MatchString(attr.Value) {
				copyTo = "src"
			}
			if copyTo == "" {
				continue
			}

			// if this is an img or picture, set the attribute directly
			if elem.TagName == "IMG" || elem.TagName == "PICTURE" {
				elem.SetAttribute(copyTo, attr.Value)
			} else if elem.TagName == "FIGURE" && len(p.getAllNodesWithTag(elem, "img", "picture")) == 0 {
				// if the item is a <figure> that does not contain an image or picture, create one and place it inside the figure
				// see the nytimes-3 testcase for an example
				var img = newElement("img")
				img.SetAttribute(copyTo, attr.Value)
				elem.AppendChild(img)
			}
		}
	}
}

// Clean an element of all tags of type "tag" if they look fishy.
// "Fishy" is an algorithm based on content length, classnames, link density, number of images & embeds, etc.
func (p *parse) cleanConditionally(e *Node, tag string) {
	if !p.flagIsActive(flagCleanConditionally) {
		return
	}

	var isDataTable = func(t *Node) bool {
		return p.dataTables[t]
	}
	var isList = tag == "ul" || tag == "ol"

	// Gather counts for other typical elements embedded within.
	// Traverse backwards so we can remove nodes at the same time
	// without effecting the traversal.
	p.removeNodes(e.GetElementsByTagName(tag), func(n *Node) bool {
		// First check if this node IS data table, in which case don't remove it.
		if tag == "table" && isDataTable(n) {
			return false
		}

		// Next check if we're inside a data table, in which case don't remove it as well.
		if p.hasAncestorTag(n, "table", -1, isDataTable) {
			return false
		}

		if p.hasAncestorTag(n, "code", 3, nil) {
			return false
		}

		var weight = p.getClassWeight(n)
		if weight < 0 {
			p.log.Debug("Cleaning conditionally", "tag", n.TagName, "weight", weight)
			return true
		}

		if p.getCharCount(n, ",") >= 10 {
			return false
		}

		// If there are not very many commas, and the number of
		// non-paragraph elements is more than paragraphs or other
		// ominous signs, remove the element.
		var para = len(n.GetElementsByTagName("p"))
		var img = len(n.GetElementsByTagName("img"))
		var li = len(n.GetElementsByTagName("li")) - 100
		var input = len(n.GetElementsByTagName("input"))

		var embedCount = 0
		for _, embed := range p.getAllNodesWithTag(n, "object", "embed", "iframe") {
			// If this embed has attribute that matches video regex, don't delete it.
			if p.isAllowedVideo(embed) {
				return false
			}
			embedCount++
		}

		var linkDensity = p.getLinkDensity(n)
		var contentLength = runeCount(p.getInnerText(n, true))
		var inFigure = p.hasAncestorTag(n, "figure", 3, nil)

		var haveToRemove = (img > 1 && float64(para)/float64(img) < 0.5 && !inFigure) ||
			(!isList && li > para) ||
			(input > int(math.Floor(float64(para)/3.0))) ||
			(!isList && contentLength < 25 && (img == 0 || img > 2) && !inFigure) ||
			(!isList && weight < 25 && linkDensity > 0.2) ||
			(weight >= 25 && linkDensity > 0.5) ||
			((embedCount == 1 && contentLength < 75) || embedCount > 1)

		// Allow simple lists of images to remain in pages
		if isList && haveToRemove {
			for _, child := range n.Children {
				// Don't filter in lists with li's that contain more than one child
				if len(child.Children) > 1 {
					return haveToRemove
				}
			}
			// Only allow the list to remain if every li contains an image
			if img == len(n.GetElementsByTagName("li")) {
				return false
			}
		}
		if haveToRemove {
			p.log.Debug("Cleaning conditionally", "tag", n.TagName, "matchString", n.GetClassName()+" "+n.GetId())
		}
		return haveToRemove
	})
}

// Clean out elements that match the specified conditions
func (p *parse) cleanMatchedNodes(e *Node, filter func(*Node, string) bool) {
	var endOfSearchMarkerNode = p.getNextNode(e, true)
	var next = p.getNextNode(e, false)
	for next != nil && next != endOfSearchMarkerNode {
		if filter(next, next.GetClassName()+" "+next.GetId()) {
			next = p.removeAndGetNext(next)
		} else {
			next = p.getNextNode(next, false)
		}
	}
}

// Clean out spurious headers from an Element.
func (p *parse) cleanHeaders(n *Node) {
	p.removeNodes(p.getAllNodesWithTag(n, "h1", "h2"), func(header *Node) bool {
		var shouldRemove = p.getClassWeight(header) < 0
		if shouldRemove {
			p.log.Debug("Removing header with low class weight", "text", p.getInnerText(header, true))
		}
		return shouldRemove
	})
}

// Run any post-process modifications to article content as necessary.
func (p *parse) postProcessContent(articleContent *Node) {
	// Readability cannot open relative uris so we convert them to absolute uris.
	p.fixRelativeUris(articleContent)

	p.simplifyNestedElements(articleContent)

	p.cleanIDs(articleContent)

	if !p.opts.keepClasses {
		// Remove classes.
		p.cleanClasses(articleContent)
	}
}

// Converts each <a> and <img> uri in the given element to an absolute URI,
// ignoring #ref URIs.
func (p *parse) fixRelativeUris(articleContent *Node) {
	var toAbsoluteURI = func(uri string) string {
		return ToAbsolute(p.baseURI, uri)
	}

	for _, link := range articleContent.GetElementsByTagName("a") {
		var href = link.GetAttribute("href")
		if href == "" || link.ParentNode == nil {
			continue
		}

		// Remove links with javascript: URIs, since
		// they won't work after scripts have been removed from the page.
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(href)), "javascript:") {
			// if the link only contains simple text content, it can be converted to a text node
			if len(link.ChildNodes) == 1 && link.ChildNodes[0].NodeType == TextNode {
				link.ParentNode.ReplaceChild(newText(link.GetTextContent()), link)
			} else {
				// if the link has multiple children, they should all be preserved
				var container = newElement("span")
				for link.FirstChild() != nil {
					container.AppendChild(link.FirstChild())
				}
				link.ParentNode.ReplaceChild(container, link)
			}
			continue
		}

		if strings.Contains(href, ",%20") {
			var hrefs []string
			for _, part := range strings.Split(href, ",%20") {
				hrefs = append(hrefs, toAbsoluteURI(part))
			}
			link.SetAttribute("href", strings.Join(hrefs, ",%20"))
		} else {
			link.SetAttribute("href", toAbsoluteURI(href))
		}
	}

	for _, media := range p.getAllNodesWithTag(articleContent, "img", "picture", "figure", "video", "audio", "source") {
		if src := media.GetAttribute("src"); src != "" {
			media.SetAttribute("src", toAbsoluteURI(src))
		}
		if poster := media.GetAttribute("poster"); poster != "" {
			media.SetAttribute("poster", toAbsoluteURI(poster))
		}
		if srcset := media.GetAttribute("srcset"); srcset != "" {
			media.SetAttribute("srcset", p.absoluteSrcset(srcset))
		}
	}
}

// absoluteSrcset resolves every candidate URL of a srcset, leaving the
// descriptors and separators as they are.
func (p *parse) absoluteSrcset(srcset string) string {
	var sb strings.Builder
	var last int
	for _, m := range srcsetUrl.FindAllStringSubmatchIndex(srcset, -1) {
		sb.WriteString(srcset[last:m[2]])
		sb.WriteString(ToAbsolute(p.baseURI, srcset[m[2]:m[3]]))
		last = m[3]
	}
	sb.WriteString(srcset[last:])
	return sb.String()
}

func (p *parse) simplifyNestedElements(articleContent *Node) {
	var node = articleContent
	for node != nil {
		if node.ParentNode != nil && (node.TagName == "DIV" || node.TagName == "SECTION") && !strings.HasPrefix(node.GetId(), "readability") {
			if p.isElementWithoutContent(node) {
				node = p.removeAndGetNext(node)
				continue
			} else if p.hasSingleTagInsideElement(node, "DIV") || p.hasSingleTagInsideElement(node, "SECTION") {
				var child = node.Children[0]
				for _, attr := range node.Attributes {
					child.SetAttribute(attr.Name, attr.Value)
				}
				node.ParentNode.ReplaceChild(child, node)
				node = child
				continue
			}
		}
		node = p.getNextNode(node, false)
	}
}

// Removes the id="" attribute from every element in the given subtree,
// except the ones readability sets itself.
func (p *parse) cleanIDs(n *Node) {
	if id := n.GetId(); id != "" && !slices.Contains(idsToPreserve, id) {
		n.RemoveAttribute("id")
	}
	for child := n.FirstElementChild(); child != nil; child = child.NextElementSibling {
		p.cleanIDs(child)
	}
}

// Removes the class="" attribute from every element in the given
// subtree, except those that match the classesToPreserve list.
func (p *parse) cleanClasses(n *Node) {
	var className string
	if class := strings.TrimSpace(n.GetClassName()); class != "" {
		var kept []string
		for _, c := range multipleWhitespaces.Split(class, -1) {
			if slices.Contains(p.opts.classesToPreserve, c) {
				kept = append(kept, c)
			}
		}
		className = strings.Join(kept, " ")
	}

	if className != "" {
		n.SetClassName(className)
	} else {
		n.RemoveAttribute("class")
	}

	for child := n.FirstElementChild(); child != nil; child = child.NextElementSibling {
		p.cleanClasses(child)
	}
}
