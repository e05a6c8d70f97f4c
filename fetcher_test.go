package readability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestHTTPFetcher(t *testing.T) {

	mux := http.NewServeMux()
	mux.HandleFunc("/latin1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Header().Set("Content-Language", "de-DE, en")
		_, _ = w.Write([]byte("<html><body><p>caf\xe9</p></body></html>"))
	})
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>" + r.UserAgent() + "</p>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	t.Run("should decode the charset", func(t *testing.T) {
		doc, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL+"/latin1")
		require.NoError(t, err)
		assert.Contains(t, string(doc.HTML), "café")
		assert.Equal(t, "de-DE", doc.Language)
		assert.Equal(t, srv.URL+"/latin1", doc.URL)
	})

	t.Run("should follow redirects", func(t *testing.T) {
		doc, err := NewHTTPFetcher(WithUserAgent("test-agent")).Fetch(context.Background(), srv.URL+"/old")
		require.NoError(t, err)
		assert.Equal(t, srv.URL+"/new", doc.URL)
		assert.Contains(t, string(doc.HTML), "test-agent")
	})

	t.Run("should send the default user agent", func(t *testing.T) {
		doc, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL+"/new")
		require.NoError(t, err)
		assert.Contains(t, string(doc.HTML), DefaultUserAgent)
	})

	t.Run("should report HTTP errors", func(t *testing.T) {
		_, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL+"/missing")

		var fetchErr *FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
		assert.Equal(t, srv.URL+"/missing", fetchErr.URL)
		assert.Contains(t, err.Error(), "HTTP 404")
	})

	t.Run("should report transport errors", func(t *testing.T) {
		_, err := NewHTTPFetcher(WithTimeout(time.Second)).Fetch(context.Background(), "http://127.0.0.1:1/")

		var fetchErr *FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Zero(t, fetchErr.StatusCode)
	})
}

func TestHTTPImageFetcher(t *testing.T) {

	mux := http.NewServeMux()
	mux.HandleFunc("/head.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1234")
		if r.Method == http.MethodGet {
			_, _ = w.Write(make([]byte, 1234))
		}
	})
	mux.HandleFunc("/nohead.png", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_, _ = w.Write(make([]byte, 42))
	})
	mux.HandleFunc("/sniff", func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write(pngHeader)
	})
	mux.HandleFunc("/typed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/webp")
		_, _ = w.Write([]byte("RIFF"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var fetcher = NewHTTPImageFetcher(WithRateLimit(0, 0))

	t.Run("should read the size from a HEAD request", func(t *testing.T) {
		size, err := fetcher.Size(context.Background(), srv.URL+"/head.png")
		require.NoError(t, err)
		assert.Equal(t, int64(1234), size)
	})

	t.Run("should fall back to downloading", func(t *testing.T) {
		size, err := fetcher.Size(context.Background(), srv.URL+"/nohead.png")
		require.NoError(t, err)
		assert.Equal(t, int64(42), size)
	})

	t.Run("should sniff the content type", func(t *testing.T) {
		data, contentType, err := fetcher.Fetch(context.Background(), srv.URL+"/sniff")
		require.NoError(t, err)
		assert.Equal(t, pngHeader, data)
		assert.Equal(t, "image/png", contentType)
	})

	t.Run("should prefer the declared content type", func(t *testing.T) {
		_, contentType, err := fetcher.Fetch(context.Background(), srv.URL+"/typed")
		require.NoError(t, err)
		assert.Equal(t, "image/webp", contentType)
	})

	t.Run("should report missing images", func(t *testing.T) {
		_, _, err := fetcher.Fetch(context.Background(), srv.URL+"/missing.png")
		assert.Error(t, err)
	})

	t.Run("should respect the rate limit", func(t *testing.T) {
		var limited = NewHTTPImageFetcher(WithRateLimit(0.001, 1))
		_, _, err := limited.Fetch(context.Background(), srv.URL+"/typed")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, _, err = limited.Fetch(ctx, srv.URL+"/typed")

		var fetchErr *FetchError
		assert.True(t, errors.As(err, &fetchErr))
	})
}

func TestContentLanguage(t *testing.T) {
	assert.Equal(t, "", contentLanguage(""))
	assert.Equal(t, "en", contentLanguage(" en "))
	assert.Equal(t, "fr-CA", contentLanguage("fr-CA, en;q=0.5"))
}

func TestParseURL(t *testing.T) {

	var source = readTestPage(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/garden/tomatoes.html" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Language", "en-US")
		_, _ = w.Write([]byte(source))
	}))
	defer srv.Close()

	t.Run("should parse the fetched page", func(t *testing.T) {
		var article = newReader(t, WithFetcher(NewHTTPFetcher())).ParseURL(context.Background(), srv.URL+"/garden/tomatoes.html")

		require.True(t, article.IsReadable)
		assert.Equal(t, "en-US", article.Language)
		assert.Contains(t, article.Content, `href="`+srv.URL+`/tips/containers"`)
	})

	t.Run("should record fetch errors", func(t *testing.T) {
		var article = newReader(t).ParseURL(context.Background(), srv.URL+"/missing")

		assert.False(t, article.IsReadable)
		assert.False(t, article.Completed)
		var fetchErr *FetchError
		assert.True(t, errors.As(article.Err(), &fetchErr))
		assert.True(t, strings.HasSuffix(article.URI, "/missing"))
	})
}
