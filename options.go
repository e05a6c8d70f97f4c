package readability

import (
	"io"
	"log/slog"
	"regexp"

	"golang.org/x/net/html"
)

const (
	flagStripUnlikelys     = 0x1
	flagWeightClasses      = 0x2
	flagCleanConditionally = 0x4

	// Max number of nodes supported by this parser. Default: 0 (no limit)
	defaultMaxElemsToParse = 0
	// The number of top candidates to consider when analysing how
	// tight the competition is among candidates.
	defaultNTopCandidates = 5
	// The default number of chars an article must have in order to return a result
	defaultWordThreshold = 500
)

// These are the classes that readability sets itself.
var baselineClassesToPreserve = []string{"page", "readability-styled"}

// LanguageDetector identifies the language of text. current is the language
// resolved from the page metadata, possibly empty.
type LanguageDetector func(text, current string) (string, error)

type Options struct {
	maxElemsToParse       int
	nTopCandidates        int
	wordThreshold         int
	classesToPreserve     []string
	keepClasses           bool
	logger                *slog.Logger
	continueIfNotReadable bool
	preProcess            []func(*Node)
	postProcess           []func(*Node)
	patternEdits          []patternEdit
	allowedVideoRegex     *regexp.Regexp
	serializer            func(*Node) string
	textConverter         func(*Node) string
	languageDetector      LanguageDetector
	disableJSONLD         bool
	fetcher               Fetcher
	imageFetcher          ImageFetcher
	metrics               *Metrics
	minContentLength      int
	minScore              float64
	visibilityChecker     func(*html.Node) bool
}

type Option func(*Options)

func defaultOpts() *Options {
	return &Options{
		maxElemsToParse:       defaultMaxElemsToParse,
		nTopCandidates:        defaultNTopCandidates,
		wordThreshold:         defaultWordThreshold,
		classesToPreserve:     append([]string(nil), baselineClassesToPreserve...),
		logger:                slog.New(slog.NewTextHandler(io.Discard, nil)),
		continueIfNotReadable: true,
		serializer: func(n *Node) string {
			return n.GetInnerHTML()
		},
		textConverter:     PlainText,
		minScore:          20,
		minContentLength:  140,
		visibilityChecker: isNodeVisible,
	}
}

func MaxElemsToParse(n int) Option {
	return func(o *Options) {
		o.maxElemsToParse = n
	}
}

func NTopCandidates(n int) Option {
	return func(o *Options) {
		o.nTopCandidates = n
	}
}

// WordThreshold is the minimum length, in characters, of the text an
// extraction attempt must yield to be accepted.
func WordThreshold(n int) Option {
	return func(o *Options) {
		o.wordThreshold = n
	}
}

// ClassesToPreserve adds class names kept on the content. The baseline
// classes are always kept.
func ClassesToPreserve(classes ...string) Option {
	return func(o *Options) {
		o.classesToPreserve = append(o.classesToPreserve, classes...)
	}
}

func KeepClasses(b bool) Option {
	return func(o *Options) {
		o.keepClasses = b
	}
}

// Logger sets the sink of the debug trace.
func Logger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// ContinueIfNotReadable controls whether extraction is attempted on pages
// the readerable pre-check rejects. Default: true.
func ContinueIfNotReadable(b bool) Option {
	return func(o *Options) {
		o.continueIfNotReadable = b
	}
}

// PreProcess registers a hook run on the content element right after it is
// selected, before links are absolutized and classes stripped.
func PreProcess(f func(*Node)) Option {
	return func(o *Options) {
		o.preProcess = append(o.preProcess, f)
	}
}

// PostProcess registers a hook run on the content element after every
// built-in cleanup step.
func PostProcess(f func(*Node)) Option {
	return func(o *Options) {
		o.postProcess = append(o.postProcess, f)
	}
}

// ExtendPattern appends an alternation term to a pattern category.
func ExtendPattern(c Category, term string) Option {
	return func(o *Options) {
		o.patternEdits = append(o.patternEdits, patternEdit{category: c, expr: term})
	}
}

// ReplacePattern swaps the expression of a pattern category.
func ReplacePattern(c Category, expr string) Option {
	return func(o *Options) {
		o.patternEdits = append(o.patternEdits, patternEdit{category: c, expr: expr, replace: true})
	}
}

// AllowedVideoRegex overrides the Videos category with a compiled expression.
func AllowedVideoRegex(rgx *regexp.Regexp) Option {
	return func(o *Options) {
		o.allowedVideoRegex = rgx
	}
}

func Serializer(f func(*Node) string) Option {
	return func(o *Options) {
		o.serializer = f
	}
}

// TextConverter sets the function producing Article.TextContent.
func TextConverter(f func(*Node) string) Option {
	return func(o *Options) {
		o.textConverter = f
	}
}

func WithLanguageDetector(f LanguageDetector) Option {
	return func(o *Options) {
		o.languageDetector = f
	}
}

func DisableJSONLD(b bool) Option {
	return func(o *Options) {
		o.disableJSONLD = b
	}
}

func WithFetcher(f Fetcher) Option {
	return func(o *Options) {
		o.fetcher = f
	}
}

func WithImageFetcher(f ImageFetcher) Option {
	return func(o *Options) {
		o.imageFetcher = f
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.metrics = m
	}
}

func MinContentLength(n int) Option {
	return func(o *Options) {
		o.minContentLength = n
	}
}

func MinScore(score float64) Option {
	return func(o *Options) {
		o.minScore = score
	}
}

func VisibilityChecker(f func(*html.Node) bool) Option {
	return func(o *Options) {
		o.visibilityChecker = f
	}
}
