package readability

import (
	"errors"
	"fmt"
)

// ErrUnreadable is returned by Article.Err when no content could be
// extracted. It is never recorded in Article.Errors.
var ErrUnreadable = errors.New("no readable content found")

// FetchError reports a document or image fetch that did not succeed.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SizeLimitError aborts a parse whose document has more elements than
// allowed by MaxElemsToParse.
type SizeLimitError struct {
	Found int
	Max   int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("aborting parsing document: %d elements found, but the maximum is %d", e.Found, e.Max)
}
