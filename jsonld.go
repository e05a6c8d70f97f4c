package readability

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type jsonLD struct {
	title         string
	author        string
	excerpt       string
	siteName      string
	datePublished string
}

// Try to extract metadata from JSON-LD object.
// For now, only Schema.org objects of type Article or its subtypes are supported.
func (p *parse) getJSONLD(gq *goquery.Document) *jsonLD {
	var meta *jsonLD

	gq.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		// Strip CDATA markers if present
		var content = cdata.ReplaceAllString(s.Text(), "")
		var parsed map[string]any
		if err := json.Unmarshal([]byte(content), &parsed); err != nil {
			p.log.Debug("cannot unmarshal JSON-LD element content", "err", err)
			return true
		}

		ctx, _ := parsed["@context"].(string)
		if !schemaUrl.MatchString(ctx) {
			return true
		}

		if _, typeFound := parsed["@type"]; !typeFound {
			if graph, isArray := parsed["@graph"].([]any); isArray {
				for _, el := range graph {
					if elMap, ok := el.(map[string]any); ok && isArticleType(elMap["@type"]) {
						parsed = elMap
						break
					}
				}
			}
		}

		if !isArticleType(parsed["@type"]) {
			return true
		}

		meta = &jsonLD{}
		name, nameIsStr := parsed["name"].(string)
		headline, headlineIsStr := parsed["headline"].(string)

		if nameIsStr && headlineIsStr && name != headline {
			// we have both name and headline element in the JSON-LD. They should both be the same but some websites like aktualne.cz
			// put their own name into "name" and the article title to "headline" which confuses Readability. So we try to check if either
			// "name" or "headline" closely matches the html title, and if so, use that one. If not, then we use "name" by default.
			var title = titleFromDocument(gq)
			var nameMatches = textSimilarity(name, title) > 0.75
			var headlineMatches = textSimilarity(headline, title) > 0.75

			if headlineMatches && !nameMatches {
				meta.title = strings.TrimSpace(headline)
			} else {
				meta.title = strings.TrimSpace(name)
			}
		} else if nameIsStr {
			meta.title = strings.TrimSpace(name)
		} else if headlineIsStr {
			meta.title = strings.TrimSpace(headline)
		}

		meta.author = jsonLDAuthor(parsed["author"])

		if descr, ok := parsed["description"].(string); ok {
			meta.excerpt = strings.TrimSpace(descr)
		}
		if publisher, ok := parsed["publisher"].(map[string]any); ok {
			if publisherName, ok := publisher["name"].(string); ok {
				meta.siteName = strings.TrimSpace(publisherName)
			}
		}
		if datePublished, ok := parsed["datePublished"].(string); ok {
			meta.datePublished = strings.TrimSpace(datePublished)
		}
		return false
	})

	return meta
}

func isArticleType(t any) bool {
	switch v := t.(type) {
	case string:
		return jsonLdArticleTypes.MatchString(v)
	case []any:
		for _, el := range v {
			if s, ok := el.(string); ok && jsonLdArticleTypes.MatchString(s) {
				return true
			}
		}
	}
	return false
}

// jsonLDAuthor returns the name of a single author object, or the names of
// an array of authors joined with ", " in document order.
func jsonLDAuthor(author any) string {
	switch v := author.(type) {
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return strings.TrimSpace(name)
		}
	case []any:
		var names []string
		for _, a := range v {
			obj, ok := a.(map[string]any)
			if !ok {
				continue
			}
			if name, ok := obj["name"].(string); ok && strings.TrimSpace(name) != "" {
				names = append(names, strings.TrimSpace(name))
			}
		}
		return strings.Join(names, ", ")
	case string:
		return strings.TrimSpace(v)
	}
	return ""
}
