package trace_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/keboola/go-utils/pkg/wildcards"
	"github.com/stretchr/testify/assert"

	"github.com/keboola/go-graphql-client/pkg/client"
	"github.com/keboola/go-graphql-client/pkg/client/trace"
	"github.com/keboola/go-graphql-client/pkg/request"
)

func TestDumpTracer(t *testing.T) {
	t.Parallel()

	// Mocked response
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", `https://example.com/graphql`, httpmock.ResponderFromMultipleResponses([]*http.Response{
		{StatusCode: http.StatusServiceUnavailable},
		{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(`{"data":{"ok":true}}`))},
	}))

	// Logs for trace testing
	var logs strings.Builder

	// Create client
	ctx := context.Background()
	c := client.New().
		WithTransport(transport).
		WithRetry(client.TestingRetry()).
		AndTrace(trace.DumpTracer(&logs))

	// Expected trace
	expected := `
>>>>>> HTTP DUMP
POST /graphql HTTP/1.1
Host: example.com
%A
{"query":"{ ok }"}
------
HTTP/0.0 503 Service Unavailable
Content-Length: 0
<<<<<< HTTP DUMP END

>>>>>> HTTP RETRY | ATTEMPT: 1 | DELAY: 1ms |  POST /graphql 503 | ERROR: <nil>

>>>>>> HTTP DUMP
%A
------
HTTP/0.0 200 OK
Content-Length: 0
------
{"data":{"ok":true}}
<<<<<< HTTP DUMP END

>>>>>> HTTP REQUEST PROCESSED |  POST /graphql 200 | ERROR: <nil> | HEADERS AT: %s | DONE AT: %s
`

	// Test
	str := ""
	_, result, err := request.NewHTTPRequest(c).
		WithPost("https://example.com/graphql").
		WithJSONBody(map[string]any{"query": "{ ok }"}).
		WithResult(&str).
		Send(ctx)
	assert.NoError(t, err)
	assert.Equal(t, `{"data":{"ok":true}}`, *result.(*string))
	wildcards.Assert(t, strings.TrimLeft(expected, "\n"), logs.String())
}
