package readability

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	nethtml "golang.org/x/net/html"
)

// Metadata describes a page independently of its extracted content.
type Metadata struct {
	Title         string
	Byline        string
	Author        string
	Excerpt       string
	SiteName      string
	Language      string
	PublishedTime *time.Time
	FeaturedImage string
	// AlternateURIs maps a language tag to the URI of a translation.
	AlternateURIs map[string]string
}

// extractMetadata reads <meta>, <link>, <time>, JSON-LD and the page URI of
// the untouched document.
func (p *parse) extractMetadata(doc *nethtml.Node, pageURL, langHint string) *Metadata {
	gq := goquery.NewDocumentFromNode(doc)

	var values = make(map[string]string)
	var metaAuthor string

	gq.Find("meta").Each(func(_ int, s *goquery.Selection) {
		var elementName = s.AttrOr("name", "")
		var elementProperty = s.AttrOr("property", "")
		var itemprop = s.AttrOr("itemprop", "")
		var content = strings.TrimSpace(s.AttrOr("content", ""))
		if content == "" {
			return
		}

		if strings.EqualFold(elementName, "author") ||
			strings.EqualFold(elementProperty, "author") ||
			strings.EqualFold(itemprop, "author") {
			if metaAuthor == "" {
				metaAuthor = content
			}
			return
		}

		var matched bool
		// property is a space-separated list of values
		for _, token := range strings.Fields(elementProperty) {
			if propertyPattern.MatchString(token) {
				matched = true
				store(values, metaKey(token), content)
			}
		}

		if !matched && elementName != "" && namePattern.MatchString(elementName) {
			matched = true
			store(values, metaKey(elementName), content)
		}

		if !matched && itemprop != "" && itempropPattern.MatchString(itemprop) {
			store(values, "datepublished", content)
		}
	})

	var jsonld = &jsonLD{}
	if !p.opts.disableJSONLD {
		if parsed := p.getJSONLD(gq); parsed != nil {
			jsonld = parsed
		}
	}

	meta := &Metadata{}

	meta.Excerpt = anyOf(
		values["description"],
		values["dc:description"],
		values["dcterm:description"],
		values["og:description"],
		values["weibo:article:description"],
		values["weibo:webpage:description"],
		values["twitter:description"],
		jsonld.excerpt)

	meta.SiteName = anyOf(
		values["og:site_name"],
		jsonld.siteName)

	meta.Title = anyOf(
		values["dc:title"],
		values["dcterm:title"],
		values["og:title"],
		values["weibo:article:title"],
		values["weibo:webpage:title"],
		values["twitter:title"],
		values["title"],
		jsonld.title)
	if meta.Title == "" {
		meta.Title = titleFromDocument(gq)
	}

	meta.Author = anyOf(
		metaAuthor,
		values["dc:creator"],
		values["dcterm:creator"],
		values["article:author"])
	if jsonld.author != "" {
		meta.Author = jsonld.author
	}
	meta.Byline = anyOf(metaAuthor, meta.Author)

	meta.FeaturedImage = anyOf(
		values["og:image"],
		values["twitter:image"],
		values["weibo:article:image"],
		values["weibo:webpage:image"])

	meta.Language = p.documentLanguage(gq, langHint)
	meta.PublishedTime = publicationDate(gq, values, jsonld.datePublished, pageURL)
	meta.AlternateURIs = alternateURIs(gq, p.baseURI)

	// in many sites the meta value is escaped with HTML entities,
	// so here we need to unescape it
	meta.Title = html.UnescapeString(meta.Title)
	meta.Byline = html.UnescapeString(meta.Byline)
	meta.Author = html.UnescapeString(meta.Author)
	meta.Excerpt = html.UnescapeString(meta.Excerpt)
	meta.SiteName = html.UnescapeString(meta.SiteName)
	if meta.FeaturedImage != "" {
		meta.FeaturedImage = ToAbsolute(p.baseURI, html.UnescapeString(meta.FeaturedImage))
	}

	meta.Title = CleanTitle(meta.Title, meta.SiteName)
	return meta
}

// metaKey converts to lowercase, removes any whitespace, and converts dots
// to colons so keys can be matched below.
func metaKey(s string) string {
	s = singleWhitespace.ReplaceAllString(strings.ToLower(s), "")
	return strings.ReplaceAll(s, ".", ":")
}

// store keeps the first value seen for a key.
func store(values map[string]string, key, value string) {
	if _, found := values[key]; !found {
		values[key] = value
	}
}

func (p *parse) documentLanguage(gq *goquery.Document, hint string) string {
	if hint = strings.TrimSpace(hint); hint != "" {
		return hint
	}
	htmlElem := gq.Find("html").First()
	if lang := strings.TrimSpace(htmlElem.AttrOr("lang", "")); lang != "" {
		return lang
	}
	if lang := strings.TrimSpace(htmlElem.AttrOr("xml:lang", "")); lang != "" {
		return lang
	}

	var lang string
	gq.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(s.AttrOr("http-equiv", ""), "content-language") {
			lang = strings.TrimSpace(s.AttrOr("content", ""))
		}
		return lang == ""
	})
	if lang != "" {
		return lang
	}

	// <meta name="lang" value="..."> is not valid HTML, but it is used in the wild.
	gq.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(s.AttrOr("name", ""), "lang") {
			lang = strings.TrimSpace(anyOf(s.AttrOr("value", ""), s.AttrOr("content", "")))
		}
		return lang == ""
	})
	return lang
}

var publishedTimeKeys = []string{
	"article:published_time",
	"date",
	"datepublished",
	"weibo:article:create_at",
	"weibo:webpage:create_at",
}

func publicationDate(gq *goquery.Document, values map[string]string, jsonldDate, pageURL string) *time.Time {
	for _, key := range publishedTimeKeys {
		if t, ok := parseDate(values[key]); ok {
			return &t
		}
	}

	if t, ok := parseDate(jsonldDate); ok {
		return &t
	}

	var published *time.Time
	gq.Find("time[pubdate], time[itemprop=datePublished], time[itemprop=datepublished]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t, ok := parseDate(s.AttrOr("datetime", "")); ok {
			published = &t
			return false
		}
		return true
	})
	if published != nil {
		return published
	}

	return dateFromURL(pageURL)
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(html.UnescapeString(s))
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// dateFromURL looks for /YYYY/MM[/DD] in the path of uri. An invalid day
// falls back to the first of the month, an invalid month yields nil.
func dateFromURL(uri string) *time.Time {
	u, err := url.Parse(uri)
	if err != nil {
		return nil
	}
	m := urlDate.FindStringSubmatch(u.Path)
	if m == nil {
		return nil
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return nil
	}
	day := 1
	if m[3] != "" {
		if d, err := strconv.Atoi(m[3]); err == nil && d >= 1 && d <= daysIn(time.Month(month), year) {
			day = d
		}
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func alternateURIs(gq *goquery.Document, base string) map[string]string {
	uris := make(map[string]string)
	gq.Find("link[rel~=alternate]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		lang := strings.TrimSpace(s.AttrOr("hreflang", ""))
		if href == "" || lang == "" || strings.EqualFold(lang, "x-default") {
			return
		}
		uris[lang] = ToAbsolute(base, href)
	})
	return uris
}

// CleanTitle removes a trailing site name, along with the separator in
// front of it, and collapses runs of whitespace.
func CleanTitle(title, siteName string) string {
	if siteName = strings.TrimSpace(siteName); siteName != "" {
		suffix := regexp.MustCompile(`(?i)\s*[\|\-\\\/>»]\s*` + regexp.QuoteMeta(siteName) + `\s*$`)
		title = suffix.ReplaceAllString(title, "")
	}
	return normalize.ReplaceAllString(title, " ")
}

// documentBaseURI resolves the first <base href> against the page URI.
func documentBaseURI(doc *nethtml.Node, pageURL string) string {
	bases := querySelectorAll(doc, "base[href]")
	if len(bases) == 0 {
		return pageURL
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		// just fall back to the page URI
		return pageURL
	}
	ref, err := url.Parse(strings.TrimSpace(attr(bases[0], "href")))
	if err != nil {
		return pageURL
	}
	return base.ResolveReference(ref).String()
}
