package trace_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/keboola/go-utils/pkg/wildcards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keboola/go-graphql-client/pkg/client"
	"github.com/keboola/go-graphql-client/pkg/client/trace"
	"github.com/keboola/go-graphql-client/pkg/graphql"
	"github.com/keboola/go-graphql-client/pkg/request"
)

func TestOperationOf(t *testing.T) {
	t.Parallel()

	c, _ := client.NewMockedClient()

	// No body
	_, ok := trace.OperationOf(request.NewHTTPRequest(c).WithPost("https://example.com/graphql"))
	assert.False(t, ok)

	// GraphQL body
	op, ok := trace.OperationOf(request.NewHTTPRequest(c).WithJSONBody(graphql.NewRequestBody(`mutation Save { save }`, nil)))
	require.True(t, ok)
	assert.Equal(t, trace.Operation{Type: "mutation", Name: "Save", Document: `mutation Save { save }`}, op)
	assert.Equal(t, "mutation Save", op.String())

	assert.Equal(t, "query (anonymous)", trace.Operation{Type: "query"}.String())
	assert.Equal(t, "invalid document", trace.Operation{}.String())
}

func TestLogTracer_Operation(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", `https://example.com/graphql`, httpmock.NewStringResponder(http.StatusOK, `{"data":{"user":null}}`))

	var logs strings.Builder
	c := client.New().WithTransport(transport).AndTrace(trace.LogTracer(&logs))

	_, _, err := request.NewHTTPRequest(c).
		WithPost("https://example.com/graphql").
		WithJSONBody(graphql.NewRequestBody(`query GetUser { user { id } }`, nil)).
		Send(context.Background())
	require.NoError(t, err)

	expected := `
HTTP_REQUEST[0001] START POST "https://example.com/graphql" | query GetUser
HTTP_REQUEST[0001] DONE  POST "https://example.com/graphql" | 200 | %s
HTTP_REQUEST[0001] BODY  POST "https://example.com/graphql" | %s
`
	wildcards.Assert(t, strings.TrimLeft(expected, "\n"), logs.String())
}

func TestDumpTracer_Document(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", `https://example.com/graphql`, httpmock.NewStringResponder(http.StatusOK, `{"data":{"ok":true}}`))

	var logs strings.Builder
	c := client.New().WithTransport(transport).AndTrace(trace.DumpTracer(&logs))

	_, _, err := request.NewHTTPRequest(c).
		WithPost("https://example.com/graphql").
		WithJSONBody(graphql.NewRequestBody("query GetOk {\n  ok\n}", nil)).
		Send(context.Background())
	require.NoError(t, err)

	expected := `
>>>>>> HTTP DUMP | query GetOk
POST /graphql HTTP/1.1
%A
{"query":"query GetOk {\n  ok\n}"}
------ DOCUMENT
query GetOk {
  ok
}
------
%A
`
	wildcards.Assert(t, strings.TrimLeft(expected, "\n"), logs.String())
}
