package readability

import (
	"math"
	"slices"
	"strings"
)

// minimumTopCandidates is how many close runners-up must share an ancestor
// before the grabber widens the selection to it.
const minimumTopCandidates = 3

// Using a variety of metrics (content score, classname, element types), find the content that is
// most likely to be the stuff a user wants to read. Then return it wrapped up in a div.
func (p *parse) grabArticle() *Node {
	p.log.Debug("**** grabArticle ****")

	// We can't grab an article if we don't have a page!
	var page = p.doc.body
	if page == nil {
		p.log.Debug("No body found in document. Abort.")
		return nil
	}

	var pageCache = snapshotChildren(page)

	for attempt := 1; ; attempt++ {
		p.log.Debug("Starting grabArticle loop", "attempt", attempt, "flags", p.flags)
		p.metrics.observeAttempt()
		p.scores = make(map[*Node]float64)
		p.dataTables = make(map[*Node]bool)

		var elementsToScore = p.prepNodes()
		var candidates = p.scoreElements(elementsToScore)
		var topCandidates = p.pickTopCandidates(candidates)

		var topCandidate *Node
		if len(topCandidates) > 0 {
			topCandidate = topCandidates[0]
		}
		var neededToCreateTopCandidate bool
		var parentOfTopCandidate *Node

		// If we still have no top candidate, just use the body as a last resort.
		// We also have to copy the body node so it is something we can modify.
		if topCandidate == nil || topCandidate.TagName == "BODY" {
			// Move all of the page's children into topCandidate
			topCandidate = newElement("DIV")
			neededToCreateTopCandidate = true
			// Move everything (not just elements, also text nodes etc.) into the container
			// so we even include text directly in the body:
			for page.FirstChild() != nil {
				topCandidate.AppendChild(page.FirstChild())
			}

			page.AppendChild(topCandidate)

			p.initializeNode(topCandidate)
		} else {
			topCandidate = p.refineTopCandidate(topCandidate, topCandidates)
		}

		// Now that we have the top candidate, look through its siblings for content
		// that might also be related. Things like preambles, content split by ads
		// that we removed, etc.
		// Keep potential top candidate's parent node to try to get text direction of it later.
		parentOfTopCandidate = topCandidate.ParentNode
		var articleContent = p.gatherSiblings(topCandidate)

		p.log.Debug("Article content pre-prep", "innerHTML", articleContent.GetInnerHTML())
		// So we have all of the content that we need. Now we clean it up for presentation.
		p.prepArticle(articleContent)
		p.log.Debug("Article content post-prep", "innerHTML", articleContent.GetInnerHTML())

		if neededToCreateTopCandidate {
			// We already created a fake div thing, and there wouldn't have been any siblings left
			// for the previous loop, so there's no point trying to create a new div, and then
			// move all the children over. Just assign IDs and class names here. No need to append
			// because that already happened anyway.
			topCandidate.SetId("readability-page-1")
			topCandidate.SetClassName("page")
		} else {
			var div = newElement("DIV")
			div.SetId("readability-page-1")
			div.SetClassName("page")
			for articleContent.FirstChild() != nil {
				div.AppendChild(articleContent.FirstChild())
			}
			articleContent.AppendChild(div)
		}

		// Now that we've gone through the full algorithm, check to see if
		// we got any meaningful content. If we didn't, we may need to re-run
		// grabArticle with different flags set. This gives us a higher likelihood of
		// finding the content, and the sieve approach gives us a higher likelihood of
		// finding the -right- content.
		var textLength = runeCount(p.getInnerText(articleContent, true))
		if textLength < p.opts.wordThreshold {
			p.log.Debug("Article content too short", "length", textLength, "threshold", p.opts.wordThreshold)
			restoreChildren(page, pageCache)

			switch {
			case p.flagIsActive(flagStripUnlikelys):
				p.removeFlag(flagStripUnlikelys)
			case p.flagIsActive(flagWeightClasses):
				p.removeFlag(flagWeightClasses)
			case p.flagIsActive(flagCleanConditionally):
				p.removeFlag(flagCleanConditionally)
			default:
				// No luck after removing flags
				return nil
			}
			continue
		}

		// Find out text direction from ancestors of final top candidate.
		if parentOfTopCandidate != nil {
			var ancestors = []*Node{parentOfTopCandidate, topCandidate}
			ancestors = append(ancestors, p.getNodeAncestors(parentOfTopCandidate, 0)...)
			someNode(ancestors, func(ancestor *Node) bool {
				if ancestor.NodeType != ElementNode {
					return false
				}
				if dir := ancestor.GetAttribute("dir"); dir != "" {
					p.articleDir = dir
					return true
				}
				return false
			})
		}
		return articleContent
	}
}

// prepNodes walks the document: trash nodes that look cruddy (like ones with the
// class name "comment", etc), and turn divs into P tags where they have been
// used inappropriately (as in, where they contain no other block level elements.)
// It returns the elements worth scoring.
func (p *parse) prepNodes() []*Node {
	var elementsToScore []*Node
	var stripUnlikelyCandidates = p.flagIsActive(flagStripUnlikelys)
	var shouldRemoveTitleHeader = true

	var n = p.doc.html
	if n == nil {
		n = p.doc.root.FirstElementChild()
	}

	for n != nil {
		var matchString = n.GetClassName() + " " + n.GetId()

		if !isProbablyVisible(n) {
			p.log.Debug("Removing hidden node", "matchString", matchString)
			n = p.removeAndGetNext(n)
			continue
		}

		// User is not able to see elements applied with both "aria-modal = true" and "role = dialog"
		if n.GetAttribute("aria-modal") == "true" && n.GetAttribute("role") == "dialog" {
			n = p.removeAndGetNext(n)
			continue
		}

		// Check to see if this node is a byline, and remove it if it is.
		if p.checkByline(n, matchString) {
			n = p.removeAndGetNext(n)
			continue
		}

		if shouldRemoveTitleHeader && p.headerDuplicatesTitle(n) {
			p.log.Debug("Removing header", "textContent", strings.TrimSpace(n.GetTextContent()), "articleTitle", p.articleTitle)
			shouldRemoveTitleHeader = false
			n = p.removeAndGetNext(n)
			continue
		}

		// Remove unlikely candidates
		if stripUnlikelyCandidates {
			if p.patterns.Get(UnlikelyCandidates).MatchString(matchString) &&
				!p.patterns.Get(MaybeCandidate).MatchString(matchString) &&
				!p.hasAncestorTag(n, "table", 3, nil) &&
				!p.hasAncestorTag(n, "code", 3, nil) &&
				n.TagName != "BODY" &&
				n.TagName != "A" {
				p.log.Debug("Removing unlikely candidate", "matchString", matchString)
				n = p.removeAndGetNext(n)
				continue
			}

			if slices.Contains(unlikelyRoles, n.GetAttribute("role")) {
				p.log.Debug("Removing content", "role", n.GetAttribute("role"), "matchString", matchString)
				n = p.removeAndGetNext(n)
				continue
			}
		}

		// Remove DIV, SECTION, and HEADER nodes without any content(e.g. text, image, video, or iframe).
		switch n.TagName {
		case "DIV", "SECTION", "HEADER", "H1", "H2", "H3", "H4", "H5", "H6":
			if p.isElementWithoutContent(n) {
				n = p.removeAndGetNext(n)
				continue
			}
		}

		if slices.Contains(defaultTagsToScore, n.TagName) {
			elementsToScore = append(elementsToScore, n)
		}

		// Turn all divs that don't have children block level elements into p's
		if n.TagName == "DIV" {
			// Sites like http://mobile.slate.com encloses each paragraph with a DIV
			// element. DIVs with only a P element inside and no text content can be
			// safely converted into plain P elements to avoid confusing the scoring
			// algorithm with DIVs with are, in practice, paragraphs.
			if p.hasSingleTagInsideElement(n, "P") {
				var newNode = n.Children[0]
				n.ParentNode.ReplaceChild(newNode, n)
				n = newNode
				elementsToScore = append(elementsToScore, n)
			} else if !p.hasChildBlockElement(n) {
				n = p.setNodeTag(n, "P")
				elementsToScore = append(elementsToScore, n)
			} else {
				p.wrapTextChildren(n)
			}
		}
		n = p.getNextNode(n, false)
	}
	return elementsToScore
}

// wrapTextChildren puts every non-blank text child of div into its own
// inline paragraph.
func (p *parse) wrapTextChildren(div *Node) {
	for _, childNode := range slices.Clone(div.ChildNodes) {
		if childNode.NodeType != TextNode || strings.TrimSpace(childNode.Data) == "" {
			continue
		}
		var para = newElement("p")
		para.SetAttribute("style", "display: inline;")
		para.SetClassName("readability-styled")
		div.ReplaceChild(para, childNode)
		para.AppendChild(childNode)
	}
}

// scoreElements assigns a score to every paragraph-like element based on how
// content-y it looks, then adds it to its ancestors. A score is determined by
// things like number of commas and length. It returns the touched ancestors.
func (p *parse) scoreElements(elementsToScore []*Node) []*Node {
	var candidates []*Node
	for _, elementToScore := range elementsToScore {
		if elementToScore.ParentNode == nil {
			continue
		}

		// If this paragraph is less than 25 characters, don't even count it.
		var innerText = p.getInnerText(elementToScore, true)
		if runeCount(innerText) < 25 {
			continue
		}

		// Exclude nodes with no ancestor.
		var ancestors = p.getNodeAncestors(elementToScore, 3)
		if len(ancestors) == 0 {
			continue
		}

		// Add a point for the paragraph itself as a base.
		var contentScore = 1.0

		// Add points for any commas within this paragraph.
		contentScore += float64(len(commas.Split(innerText, -1)))

		// For every 100 characters in this paragraph, add another point. Up to 3 points.
		contentScore += math.Min(math.Floor(float64(runeCount(innerText))/100), 3)

		for level, ancestor := range ancestors {
			if ancestor.NodeType != ElementNode || ancestor.ParentNode == nil || ancestor.ParentNode.NodeType != ElementNode {
				continue
			}

			if _, scored := p.scores[ancestor]; !scored {
				p.initializeNode(ancestor)
				candidates = append(candidates, ancestor)
			}

			// Node score divider:
			// - parent:             1 (no division)
			// - grandparent:        2
			// - great grandparent+: ancestor level * 3
			var scoreDivider int
			switch level {
			case 0:
				scoreDivider = 1
			case 1:
				scoreDivider = 2
			default:
				scoreDivider = level * 3
			}
			p.scores[ancestor] += contentScore / float64(scoreDivider)
		}
	}
	return candidates
}

// pickTopCandidates scales every candidate's score by its link density and
// keeps the best ones, best first.
func (p *parse) pickTopCandidates(candidates []*Node) []*Node {
	var topCandidates []*Node
	for _, candidate := range candidates {
		// Scale the final candidates score based on link density. Good content
		// should have a relatively small link density (5% or less) and be mostly
		// unaffected by this operation.
		var candidateScore = p.scores[candidate] * (1 - p.getLinkDensity(candidate))
		p.scores[candidate] = candidateScore

		p.log.Debug("Candidate", "tag", candidate.TagName, "matchString", candidate.GetClassName()+" "+candidate.GetId(), "score", candidateScore)

		for t := 0; t < p.opts.nTopCandidates; t++ {
			if t >= len(topCandidates) || candidateScore > p.scores[topCandidates[t]] {
				topCandidates = slices.Insert(topCandidates, t, candidate)
				if len(topCandidates) > p.opts.nTopCandidates {
					topCandidates = topCandidates[:p.opts.nTopCandidates]
				}
				break
			}
		}
	}
	return topCandidates
}

// refineTopCandidate widens, lifts and collapses the best candidate.
func (p *parse) refineTopCandidate(topCandidate *Node, topCandidates []*Node) *Node {
	// Find a better top candidate node if it contains (at least three) nodes which belong to `topCandidates` array
	// and whose scores are quite closed with current `topCandidate` node.
	var alternativeCandidateAncestors [][]*Node
	for _, alternative := range topCandidates[1:] {
		if p.scores[topCandidate] > 0 && p.scores[alternative]/p.scores[topCandidate] >= 0.75 {
			alternativeCandidateAncestors = append(alternativeCandidateAncestors, p.getNodeAncestors(alternative, 0))
		}
	}
	if len(alternativeCandidateAncestors) >= minimumTopCandidates {
		var parentOfTopCandidate = topCandidate.ParentNode
		for parentOfTopCandidate != nil && parentOfTopCandidate.TagName != "BODY" {
			var listsContainingThisAncestor = 0
			for _, ancestors := range alternativeCandidateAncestors {
				if listsContainingThisAncestor >= minimumTopCandidates {
					break
				}
				if slices.Contains(ancestors, parentOfTopCandidate) {
					listsContainingThisAncestor++
				}
			}
			if listsContainingThisAncestor >= minimumTopCandidates {
				topCandidate = parentOfTopCandidate
				break
			}
			parentOfTopCandidate = parentOfTopCandidate.ParentNode
		}
	}
	if _, scored := p.scores[topCandidate]; !scored {
		p.initializeNode(topCandidate)
	}

	// Because of our bonus system, parents of candidates might have scores
	// themselves. They get half of the node. There won't be nodes with higher
	// scores than our topCandidate, but if we see the score going *up* in the first
	// few steps up the tree, that's a decent sign that there might be more content
	// lurking in other places that we want to unify in. The sibling stuff
	// below does some of that - but only if we've looked high enough up the DOM
	// tree.
	var parentOfTopCandidate = topCandidate.ParentNode
	var lastScore = p.scores[topCandidate]
	// The scores shouldn't get too low.
	var scoreThreshold = lastScore / 3
	for parentOfTopCandidate != nil && parentOfTopCandidate.TagName != "BODY" {
		parentScore, scored := p.scores[parentOfTopCandidate]
		if !scored {
			parentOfTopCandidate = parentOfTopCandidate.ParentNode
			continue
		}
		if parentScore < scoreThreshold {
			break
		}
		if parentScore > lastScore {
			// Alright! We found a better parent to use.
			topCandidate = parentOfTopCandidate
			break
		}
		lastScore = parentScore
		parentOfTopCandidate = parentOfTopCandidate.ParentNode
	}

	// If the top candidate is the only child, use parent instead. This will help sibling
	// joining logic when adjacent content is actually located in parent's sibling node.
	parentOfTopCandidate = topCandidate.ParentNode
	for parentOfTopCandidate != nil && parentOfTopCandidate.TagName != "BODY" && len(parentOfTopCandidate.Children) == 1 {
		topCandidate = parentOfTopCandidate
		parentOfTopCandidate = topCandidate.ParentNode
	}
	if _, scored := p.scores[topCandidate]; !scored {
		p.initializeNode(topCandidate)
	}
	return topCandidate
}

// gatherSiblings moves the top candidate and its related siblings into a
// new container.
func (p *parse) gatherSiblings(topCandidate *Node) *Node {
	var articleContent = newElement("DIV")
	var parentOfTopCandidate = topCandidate.ParentNode
	if parentOfTopCandidate == nil {
		articleContent.AppendChild(topCandidate)
		return articleContent
	}

	var topScore = p.scores[topCandidate]
	var siblingScoreThreshold = math.Max(10, topScore*0.2)
	var siblings = parentOfTopCandidate.Children
	for s := 0; s < len(siblings); s++ {
		var sibling = siblings[s]
		var shouldAppend = false

		if sibling == topCandidate {
			shouldAppend = true
		} else {
			var contentBonus = 0.0
			// Give a bonus if sibling nodes and top candidates have the example same classname
			if sibling.GetClassName() == topCandidate.GetClassName() && topCandidate.GetClassName() != "" {
				contentBonus += topScore * 0.2
			}

			if siblingScore, scored := p.scores[sibling]; scored && siblingScore+contentBonus >= siblingScoreThreshold {
				shouldAppend = true
			} else if sibling.TagName == "P" {
				var linkDensity = p.getLinkDensity(sibling)
				var nodeContent = p.getInnerText(sibling, true)
				var nodeLength = runeCount(nodeContent)

				if nodeLength > 80 && linkDensity < 0.25 {
					shouldAppend = true
				} else if nodeLength > 0 && nodeLength < 80 && linkDensity == 0 && dotSpaceOrDollar.MatchString(nodeContent) {
					shouldAppend = true
				}
			}
		}

		if shouldAppend {
			p.log.Debug("Appending node", "tag", sibling.TagName, "matchString", sibling.GetClassName()+" "+sibling.GetId())
			if !slices.Contains(alterToDivExceptions, sibling.TagName) {
				// We have a node that isn't a common block level element, like a form or td tag.
				// Turn it into a div so it doesn't get filtered out later by accident.
				p.log.Debug("Altering sibling", "tag", sibling.TagName)
				p.setNodeTag(sibling, "DIV")
			}

			articleContent.AppendChild(sibling)
			// Fetch children again: sibling is no longer among them, so
			// we must revisit this index.
			siblings = parentOfTopCandidate.Children
			s--
		}
	}
	return articleContent
}

// Initialize a node's score. Also checks the className/id for special names
// to add to its score.
func (p *parse) initializeNode(n *Node) {
	var score float64

	switch n.TagName {
	case "DIV":
		score += 5

	case "PRE", "TD", "BLOCKQUOTE":
		score += 3

	case "ADDRESS", "OL", "UL", "DL", "DD", "DT", "LI", "FORM":
		score -= 3

	case "H1", "H2", "H3", "H4", "H5", "H6", "TH":
		score -= 5
	}

	p.scores[n] = score + p.getClassWeight(n)
}

// Get an elements class/id weight. Uses regular expressions to tell if this
// element looks good or bad.
func (p *parse) getClassWeight(e *Node) float64 {
	if !p.flagIsActive(flagWeightClasses) {
		return 0
	}

	var weight = 0.0
	var negative = p.patterns.Get(Negative)
	var positive = p.patterns.Get(Positive)

	// Look for a special classname
	if className := e.GetClassName(); className != "" {
		if negative.MatchString(className) {
			weight -= 25
		}
		if positive.MatchString(className) {
			weight += 25
		}
	}

	// Look for a special ID
	if id := e.GetId(); id != "" {
		if negative.MatchString(id) {
			weight -= 25
		}
		if positive.MatchString(id) {
			weight += 25
		}
	}

	return weight
}

func (p *parse) checkByline(n *Node, matchString string) bool {
	if p.articleByline != "" {
		return false
	}

	var rel = n.GetAttribute("rel")
	var itemprop = n.GetAttribute("itemprop")
	var text = n.GetTextContent()

	if (rel == "author" || strings.Contains(itemprop, "author") || p.patterns.Get(Byline).MatchString(matchString)) && isValidByline(text) {
		p.articleByline = strings.TrimSpace(text)
		p.articleAuthor = p.articleByline
		// A nested rel=author usually holds the bare name.
		if authors, err := n.QuerySelectorAll(`[rel="author"]`); err == nil && len(authors) > 0 {
			if name := strings.TrimSpace(authors[0].GetTextContent()); name != "" {
				p.articleAuthor = name
			}
		}
		return true
	}

	return false
}

// Check whether the input string could be a byline: its trimmed length
// must be between 1 and 99 chars.
func isValidByline(possibleByline string) bool {
	bylineLen := runeCount(strings.TrimSpace(possibleByline))
	return bylineLen > 0 && bylineLen < 100
}

// Check if this node is an H1 or H2 element whose content is mostly
// the same as the article title.
func (p *parse) headerDuplicatesTitle(n *Node) bool {
	if n.TagName != "H1" && n.TagName != "H2" {
		return false
	}
	var heading = p.getInnerText(n, false)
	return textSimilarity(p.articleTitle, heading) > 0.75
}

func snapshotChildren(n *Node) []*Node {
	var snapshot = make([]*Node, 0, len(n.ChildNodes))
	for _, c := range n.ChildNodes {
		snapshot = append(snapshot, c.Clone())
	}
	return snapshot
}

func restoreChildren(n *Node, snapshot []*Node) {
	for n.FirstChild() != nil {
		_, _ = n.RemoveChild(n.FirstChild())
	}
	for _, c := range snapshot {
		n.AppendChild(c.Clone())
	}
}
