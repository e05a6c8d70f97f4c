package readability

import (
	"net/url"
	"strings"
)

// ToAbsolute resolves ref against base. It never fails: malformed input
// degrades to string concatenation with base's path prefix.
func ToAbsolute(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return pathPrefix(base)
	}
	if strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "data:") {
		return ref
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}

	b, err := url.Parse(base)
	if err != nil || b.Scheme == "" {
		if strings.HasPrefix(ref, "./") {
			ref = ref[2:]
		}
		return pathPrefix(base) + ref
	}

	switch {
	case strings.HasPrefix(ref, "//"):
		return b.Scheme + ":" + ref
	case strings.HasPrefix(ref, "/"):
		return b.Scheme + "://" + b.Host + ref
	case strings.HasPrefix(ref, "./"):
		return pathPrefix(base) + ref[2:]
	}
	return pathPrefix(base) + ref
}

// pathPrefix returns scheme://host[:port]/path-up-to-last-slash of uri.
func pathPrefix(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" {
		if i := strings.LastIndex(uri, "/"); i != -1 {
			return uri[:i+1]
		}
		return uri
	}
	dir := u.EscapedPath()
	if i := strings.LastIndex(dir, "/"); i != -1 {
		dir = dir[:i+1]
	} else {
		dir = "/"
	}
	return u.Scheme + "://" + u.Host + dir
}
