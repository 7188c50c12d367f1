package graphql_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/keboola/go-graphql-client/pkg/graphql"
)

func TestResolveHeaders(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.Header{}, ResolveHeaders())
	assert.Equal(t, http.Header{}, ResolveHeaders(nil, HeaderMap(nil)))

	// All shapes
	assert.Equal(t, http.Header{"X-A": []string{"1"}}, ResolveHeaders(HeaderMap{"x-a": "1"}))
	assert.Equal(t, http.Header{"X-A": []string{"2"}, "X-B": []string{"3"}}, ResolveHeaders(HeaderPairs{{"x-a", "1"}, {"X-A", "2"}, {"x-b", "3"}}))
	assert.Equal(t, http.Header{"X-A": []string{"1", "2"}}, ResolveHeaders(HTTPHeader{"X-A": []string{"1", "2"}}))

	// Later source wins, case-insensitive
	assert.Equal(
		t,
		http.Header{"Authorization": []string{"Bearer 2"}, "X-Default": []string{"d"}, "X-Call": []string{"c"}},
		ResolveHeaders(
			HeaderMap{"authorization": "Bearer 1", "x-default": "d"},
			HTTPHeader{"Authorization": []string{"Bearer 2"}},
			HeaderPairs{{"x-call", "c"}},
		),
	)
}

func TestResolveHeaders_SourceNotModified(t *testing.T) {
	t.Parallel()

	source := HTTPHeader{"X-A": []string{"1"}}
	out := ResolveHeaders(source)
	out.Set("X-A", "2")
	assert.Equal(t, HTTPHeader{"X-A": []string{"1"}}, source)
}
