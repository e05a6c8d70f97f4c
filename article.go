package readability

import (
	"encoding/json"
	"errors"
	"maps"
	"math"
	"slices"
	"sync"
	"time"
)

// Article is the result of a parse. Its exported fields are not meant to be
// changed; derived values are computed on first use.
type Article struct {
	URI    string `json:"uri"`
	Title  string `json:"title"`
	Byline string `json:"byline,omitempty"`
	Author string `json:"author,omitempty"`
	Dir    string `json:"dir,omitempty"`

	// Content is the serialized article content.
	Content string `json:"content,omitempty"`

	Excerpt       string            `json:"excerpt,omitempty"`
	Language      string            `json:"language,omitempty"`
	SiteName      string            `json:"siteName,omitempty"`
	PublishedTime *time.Time        `json:"publishedTime,omitempty"`
	FeaturedImage string            `json:"featuredImage,omitempty"`
	AlternateURIs map[string]string `json:"alternateURIs,omitempty"`

	// IsReadable reports whether content was extracted.
	IsReadable bool `json:"isReadable"`
	// Completed reports whether the parse recorded no error.
	Completed bool    `json:"completed"`
	Errors    []error `json:"-"`

	content *Node
	opts    *Options
	text    *lazyText
	images  *lazyImages
}

type lazyText struct {
	once sync.Once
	text string
}

type lazyImages struct {
	mu     sync.Mutex
	done   bool
	images []Image
}

func (a *Article) init(content *Node, opts *Options) {
	a.content = content
	a.opts = opts
	a.text = &lazyText{}
	a.images = &lazyImages{}
	a.IsReadable = content != nil
	a.Completed = len(a.Errors) == 0
	if content != nil {
		a.Content = opts.serializer(content)
	}
}

// TextContent returns the text of the content, as rendered by the
// configured text converter.
func (a *Article) TextContent() string {
	if a.content == nil {
		return ""
	}
	a.text.once.Do(func() {
		a.text.text = a.opts.textConverter(a.content)
	})
	return a.text.text
}

// Length is the length of TextContent in characters.
func (a *Article) Length() int {
	return runeCount(a.TextContent())
}

// TimeToRead estimates the reading time of the text content, based on the
// article language.
func (a *Article) TimeToRead() time.Duration {
	return ReadingTime(a.Length(), a.Language)
}

// Err returns the recorded errors joined, ErrUnreadable when the parse
// completed without content, or nil.
func (a *Article) Err() error {
	if len(a.Errors) > 0 {
		return errors.Join(a.Errors...)
	}
	if !a.IsReadable {
		return ErrUnreadable
	}
	return nil
}

// withContent returns a copy of a carrying content instead of a's.
func (a *Article) withContent(content *Node) *Article {
	b := &Article{
		URI:           a.URI,
		Title:         a.Title,
		Byline:        a.Byline,
		Author:        a.Author,
		Dir:           a.Dir,
		Excerpt:       a.Excerpt,
		Language:      a.Language,
		SiteName:      a.SiteName,
		PublishedTime: a.PublishedTime,
		FeaturedImage: a.FeaturedImage,
		AlternateURIs: maps.Clone(a.AlternateURIs),
		Errors:        slices.Clone(a.Errors),
	}
	b.init(content, a.opts)
	return b
}

func (a *Article) MarshalJSON() ([]byte, error) {
	type article Article

	var errs []string
	for _, err := range a.Errors {
		errs = append(errs, err.Error())
	}

	return json.Marshal(struct {
		*article
		TextContent    string   `json:"textContent,omitempty"`
		Length         int      `json:"length"`
		ReadingMinutes int      `json:"readingMinutes"`
		Errors         []string `json:"errors,omitempty"`
	}{
		article:        (*article)(a),
		TextContent:    a.TextContent(),
		Length:         a.Length(),
		ReadingMinutes: int(math.Ceil(a.TimeToRead().Minutes())),
		Errors:         errs,
	})
}
