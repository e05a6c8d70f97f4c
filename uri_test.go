package readability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToAbsolute(t *testing.T) {

	const base = "http://fakehost/some/dir/page.html"

	tests := []struct {
		name string
		base string
		ref  string
		want string
	}{
		{"relative path", base, "foo.html", "http://fakehost/some/dir/foo.html"},
		{"dot relative path", base, "./foo.html", "http://fakehost/some/dir/foo.html"},
		{"root relative path", base, "/foo.html", "http://fakehost/foo.html"},
		{"scheme relative", base, "//cdn.example.com/a.png", "http://cdn.example.com/a.png"},
		{"absolute", base, "https://other.example.com/x", "https://other.example.com/x"},
		{"fragment", base, "#section", "#section"},
		{"data uri", base, "data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
		{"empty ref", base, "  ", "http://fakehost/some/dir/"},
		{"keeps port", "http://fakehost:8080/a/b", "c", "http://fakehost:8080/a/c"},
		{"schemeless base", "local/dir/page.html", "img.png", "local/dir/img.png"},
		{"empty base", "", "img.png", "img.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToAbsolute(tt.base, tt.ref))
		})
	}
}

func TestPathPrefix(t *testing.T) {
	assert.Equal(t, "http://fakehost/", pathPrefix("http://fakehost"))
	assert.Equal(t, "http://fakehost/a/", pathPrefix("http://fakehost/a/b?q=1#frag"))
}
