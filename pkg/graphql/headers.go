package graphql

import (
	"net/http"
)

// Headers is a set of HTTP headers in one of the supported shapes: HeaderMap, HeaderPairs or HTTPHeader.
type Headers interface {
	toHTTPHeader() http.Header
}

// HeaderMap is a plain mapping of a header name to a value.
type HeaderMap map[string]string

// HeaderPairs is an ordered sequence of [name, value] pairs, the last pair wins on a name collision.
type HeaderPairs [][2]string

// HTTPHeader is the native header collection, multiple values of a header are kept.
type HTTPHeader http.Header

func (h HeaderMap) toHTTPHeader() http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		out.Set(k, v)
	}
	return out
}

func (h HeaderPairs) toHTTPHeader() http.Header {
	out := make(http.Header, len(h))
	for _, pair := range h {
		out.Set(pair[0], pair[1])
	}
	return out
}

func (h HTTPHeader) toHTTPHeader() http.Header {
	out := make(http.Header, len(h))
	for k, values := range h {
		for _, v := range values {
			out.Add(k, v)
		}
	}
	return out
}

// ResolveHeaders merges all sources to a new http.Header.
// Header names are case-insensitive, a later source overrides all values of the same header from an earlier source.
// Nil sources are skipped.
func ResolveHeaders(sources ...Headers) http.Header {
	out := make(http.Header)
	for _, source := range sources {
		if source == nil {
			continue
		}
		for k, values := range source.toHTTPHeader() {
			out.Del(k)
			for _, v := range values {
				out.Add(k, v)
			}
		}
	}
	return out
}
