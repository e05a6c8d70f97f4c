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
	"math"
	"strings"

	"golang.org/x/net/html"
)

func isNodeVisible(node *html.Node) bool {
	// Have to null-check node.style and node.className.indexOf to deal with SVG and MathML nodes.
	style := attr(node, "style")
	return !displayNone.MatchString(style) &&
		!visibilityHidden.MatchString(style) &&
		!hasAttr(node, "hidden") &&
		(!hasAttr(node, "aria-hidden") || attr(node, "aria-hidden") != "true" || strings.Contains(attr(node, "class"), "fallback-image"))
}

// IsProbablyReaderable decides whether or not the document is reader-able without parsing the whole thing.
// Options:
//   - MinContentLength (default 140), the minimum node content length used to decide if the document is readerable
//   - MinScore (default 20), the minimum cumulated 'score' used to determine if the document is readerable
//   - VisibilityChecker (default isNodeVisible), the function used to determine if a node is visible
//   - ExtendPattern/ReplacePattern, applied to the unlikely-candidate patterns
func IsProbablyReaderable(htmlSource string, opts ...Option) bool {
	doc, err := html.Parse(strings.NewReader(htmlSource))
	if err != nil {
		return false
	}

	var options = defaultOpts()
	for _, opt := range opts {
		opt(options)
	}

	var patterns = defaultPatterns
	if len(options.patternEdits) > 0 {
		patterns, err = compilePatterns(options.patternEdits)
		if err != nil {
			options.logger.Debug("cannot compile patterns", "err", err)
			return false
		}
	}

	return isProbablyReaderable(doc, options, patterns)
}

func isProbablyReaderable(doc *html.Node, options *Options, patterns *Patterns) bool {
	var nodes = querySelectorAll(doc, "p, pre, article")

	// Get <div> nodes which have <br> node(s) and append them into the `nodes` variable.
	// Some articles' DOM structures might look like
	// <div>
	//   Sentences<br>
	//   <br>
	//   Sentences<br>
	// </div>
	var seen = make(map[*html.Node]bool)
	for _, br := range querySelectorAll(doc, "div > br") {
		if !seen[br.Parent] {
			seen[br.Parent] = true
			nodes = append(nodes, br.Parent)
		}
	}

	var unlikely = patterns.Get(UnlikelyCandidates)
	var maybe = patterns.Get(MaybeCandidate)

	var score = 0.0
	for _, n := range nodes {
		if !options.visibilityChecker(n) {
			continue
		}

		var matchString = attr(n, "class") + " " + attr(n, "id")
		if unlikely.MatchString(matchString) && !maybe.MatchString(matchString) {
			continue
		}

		if matches(n, "li p") {
			continue
		}

		var textContentLength = len([]rune(strings.TrimSpace(textContent(n))))
		if textContentLength < options.minContentLength {
			continue
		}

		score += math.Sqrt(float64(textContentLength - options.minContentLength))
		if score > options.minScore {
			return true
		}
	}
	return false
}
