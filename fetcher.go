package readability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	// DefaultFetchTimeout is the default timeout for HTTP requests.
	DefaultFetchTimeout = 10 * time.Second
	// DefaultUserAgent is sent when no other is configured.
	DefaultUserAgent = "Mozilla/5.0 (compatible; go-readerview/1.0)"

	maxDocumentSize = 32 << 20
	maxImageSize    = 16 << 20

	defaultImageRate  = 8
	defaultImageBurst = 4
)

// FetchedDocument is a downloaded page.
type FetchedDocument struct {
	// URL is the final URL, after redirects.
	URL string
	// HTML is the body, converted to UTF-8.
	HTML []byte
	// Language is the first tag of the Content-Language header, if any.
	Language string
}

// Fetcher retrieves the page to parse.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedDocument, error)
}

// ImageFetcher retrieves images of an article.
type ImageFetcher interface {
	// Size returns the size of the image in bytes.
	Size(ctx context.Context, url string) (int64, error)
	// Fetch returns the image bytes and their media type.
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// Ensure the HTTP fetchers implement the collaborator interfaces at compile time.
var (
	_ Fetcher      = (*HTTPFetcher)(nil)
	_ ImageFetcher = (*HTTPImageFetcher)(nil)
)

type httpClient struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	limiter   *rate.Limiter
}

// HTTPOption configures an HTTP fetcher.
type HTTPOption func(*httpClient)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *httpClient) {
		c.timeout = d
	}
}

func WithUserAgent(ua string) HTTPOption {
	return func(c *httpClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the client used for requests. Its timeout is
// left untouched.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *httpClient) {
		c.client = client
	}
}

// WithRateLimit allows at most rps requests per second, with bursts of
// burst requests. A non-positive rps disables the limit.
func WithRateLimit(rps float64, burst int) HTTPOption {
	return func(c *httpClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

func newHTTPClient(defaults []HTTPOption, opts []HTTPOption) *httpClient {
	c := &httpClient{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range append(defaults, opts...) {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{
			Timeout: c.timeout,
		}
	}
	return c
}

func (c *httpClient) do(ctx context.Context, method, url string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{URL: url, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	return resp, nil
}

// HTTPFetcher downloads pages with a single GET request.
type HTTPFetcher struct {
	http *httpClient
}

func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	return &HTTPFetcher{http: newHTTPClient(nil, opts)}
}

// Fetch retrieves the page at url, decoding its body to UTF-8 according to
// the declared charset.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*FetchedDocument, error) {
	resp, err := f.http.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxDocumentSize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("decode body: %w", err)}
	}

	bs, err := io.ReadAll(body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	var finalURL = url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &FetchedDocument{
		URL:      finalURL,
		HTML:     bs,
		Language: contentLanguage(resp.Header.Get("Content-Language")),
	}, nil
}

// contentLanguage returns the first language of a Content-Language header.
func contentLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	return strings.TrimSpace(first)
}

// HTTPImageFetcher downloads images, throttled by a token bucket.
type HTTPImageFetcher struct {
	http *httpClient
}

func NewHTTPImageFetcher(opts ...HTTPOption) *HTTPImageFetcher {
	return &HTTPImageFetcher{
		http: newHTTPClient([]HTTPOption{WithRateLimit(defaultImageRate, defaultImageBurst)}, opts),
	}
}

// Size asks for the Content-Length with a HEAD request and falls back to
// downloading the image when the server does not tell.
func (f *HTTPImageFetcher) Size(ctx context.Context, url string) (int64, error) {
	resp, err := f.http.do(ctx, http.MethodHead, url)
	if err == nil {
		resp.Body.Close()
		if resp.ContentLength > 0 {
			return resp.ContentLength, nil
		}
	}

	resp, err = f.http.do(ctx, http.MethodGet, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return 0, &FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	return n, nil
}

// Fetch downloads the image at url. The media type comes from the
// Content-Type header, or is sniffed from the bytes when missing.
func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := f.http.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, "", &FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
