package readability

import (
	"fmt"
	"regexp"
)

// Category names a user-adjustable class of regular expressions.
type Category int

const (
	// UnlikelyCandidates matches class/id combinations of boilerplate nodes.
	UnlikelyCandidates Category = iota
	// MaybeCandidate rescues nodes otherwise matched by UnlikelyCandidates.
	MaybeCandidate
	Positive
	Negative
	Byline
	// Videos is the allow-list of embeds kept by the cleaner.
	Videos
	ShareElements
	numCategories
)

var categoryNames = [numCategories]string{
	"unlikely-candidates",
	"maybe-candidate",
	"positive",
	"negative",
	"byline",
	"videos",
	"share-elements",
}

func (c Category) String() string {
	if c < 0 || c >= numCategories {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

var defaultPatternSources = [numCategories]string{
	UnlikelyCandidates: `(?i)-ad-|ai2html|banner|breadcrumbs|combx|comment|community|cover-wrap|disqus|extra|footer|gdpr|header|legends|menu|related|remark|replies|rss|shoutbox|sidebar|skyscraper|social|sponsor|supplemental|ad-break|agegate|pagination|pager|popup|yom-remote`,
	MaybeCandidate:     `(?i)and|article|body|column|content|main|shadow`,
	Positive:           `(?i)article|body|content|entry|hentry|h-entry|main|page|pagination|post|text|blog|story`,
	Negative:           `(?i)-ad-|hidden|^hid$| hid$| hid |^hid |banner|combx|comment|com-|contact|foot|footer|footnote|gdpr|masthead|media|meta|outbrain|promo|related|scroll|share|shoutbox|sidebar|skyscraper|sponsor|shopping|tags|tool|widget`,
	Byline:             `(?i)byline|author|dateline|writtenby|p-author`,
	Videos:             `(?i)\/\/(www\.)?((dailymotion|youtube|youtube-nocookie|player\.vimeo|v\.qq)\.com|(archive|upload\.wikimedia)\.org|player\.twitch\.tv)`,
	ShareElements:      `(?i)(\b|_)(share|sharedaddy)(\b|_)`,
}

// Patterns is an immutable set of compiled regular expressions, one per
// Category. Each Reader owns its own set.
type Patterns struct {
	rgx [numCategories]*regexp.Regexp
}

func (p *Patterns) Get(c Category) *regexp.Regexp {
	return p.rgx[c]
}

type patternEdit struct {
	category Category
	expr     string
	replace  bool
}

// compilePatterns applies edits on top of the defaults, in order.
func compilePatterns(edits []patternEdit) (*Patterns, error) {
	sources := defaultPatternSources
	for _, e := range edits {
		if e.category < 0 || e.category >= numCategories {
			return nil, fmt.Errorf("unknown pattern category %d", int(e.category))
		}
		if e.replace {
			sources[e.category] = e.expr
		} else {
			sources[e.category] += "|" + e.expr
		}
	}

	p := &Patterns{}
	for c, src := range sources {
		rgx, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("compile %s pattern: %w", Category(c), err)
		}
		p.rgx[c] = rgx
	}
	return p, nil
}

var defaultPatterns = func() *Patterns {
	p, err := compilePatterns(nil)
	if err != nil {
		panic(err)
	}
	return p
}()

// Fixed regular expressions used by the pipeline.
// Defined up here so we don't instantiate them repeatedly in loops.
var (
	normalize  = regexp.MustCompile(`\s{2,}`)
	tokenize   = regexp.MustCompile(`\W+`)
	whitespace = regexp.MustCompile(`^\s*$`)
	hasContent = regexp.MustCompile(`\S$`)
	hashUrl    = regexp.MustCompile(`^#.+`)
	srcsetUrl  = regexp.MustCompile(`(\S+)(\s+[\d.]+[xw])?(\s*(?:,|$))`)
	b64DataUrl = regexp.MustCompile(`(?i)^data:\s*([^\s;,]+)\s*;\s*base64\s*,`)
	// commas as used in Latin, Sindhi, Chinese and various other scripts.
	// see: https://en.wikipedia.org/wiki/Comma#Comma_variants
	commas = regexp.MustCompile(`\x{002C}|\x{060C}|\x{FE50}|\x{FE10}|\x{FE11}|\x{2E41}|\x{2E34}|\x{2E32}|\x{FF0C}`)
	// See: https://schema.org/Article
	jsonLdArticleTypes  = regexp.MustCompile(`^(?:Article|AdvertiserContentArticle|NewsArticle|AnalysisNewsArticle|AskPublicNewsArticle|BackgroundNewsArticle|OpinionNewsArticle|ReportageNewsArticle|ReviewNewsArticle|Report|SatiricalArticle|ScholarlyArticle|MedicalScholarlyArticle|SocialMediaPosting|BlogPosting|LiveBlogPosting|DiscussionForumPosting|TechArticle|APIReference)$`)
	titleFinalPart      = regexp.MustCompile(` [\|\-\\\/>»] `)
	titleSeparators     = regexp.MustCompile(` [\\\/>»] `)
	titleLastPart       = regexp.MustCompile(`(?i)(.*)[\|\-\\\/>»] .*`)
	titleFirstPart      = regexp.MustCompile(`(?i)[^\|\-\\\/>»]*[\|\-\\\/>»](.*)`)
	multipleWhitespaces = regexp.MustCompile(`\s+`)
	singleWhitespace    = regexp.MustCompile(`\s`)
	separators          = regexp.MustCompile(`[\|\-\\\/>»]+`)
	dotSpaceOrDollar    = regexp.MustCompile(`\.( |$)`)
	cdata               = regexp.MustCompile(`^\s*<!\[CDATA\[|\]\]>\s*$`)
	schemaUrl           = regexp.MustCompile(`^https?\:\/\/schema\.org\/?$`)
	// property is a space-separated list of values
	propertyPattern = regexp.MustCompile(`(?i)^\s*(dc|dcterm|og|twitter|article)\s*:\s*(author|creator|description|title|site_name|image|published_time)\s*$`)
	// name is a single value
	namePattern      = regexp.MustCompile(`(?i)^\s*(?:(dc|dcterm|og|twitter|article|weibo:(article|webpage))\s*[\.:]\s*)?(author|creator|description|title|site_name|image|date|create_at|published_time)\s*$`)
	itempropPattern  = regexp.MustCompile(`(?i)^\s*datePublished\s*$`)
	urlDate          = regexp.MustCompile(`/(\d{4})/(\d{1,2})(?:/(\d{1,2}))?(?:/|$)`)
	displayNone      = regexp.MustCompile(`(?i)(^|;)\s*display\s*:\s*none\s*(;|$)`)
	visibilityHidden = regexp.MustCompile(`(?i)(^|;)\s*visibility\s*:\s*hidden\s*(;|$)`)

	imgExtensions                 = regexp.MustCompile(`\.(jpg|jpeg|png|webp)`)
	base64Starts                  = regexp.MustCompile(`base64\s*`)
	imgExtensionsWithSpacesAndNum = regexp.MustCompile(`\.(jpg|jpeg|png|webp)\s+\d`)
	imgExtensionsAmongText        = regexp.MustCompile(`^\s*\S+\.(jpg|jpeg|png|webp)\S*\s*$`)
)
