package client

import (
	"os"

	"github.com/jarcoal/httpmock"

	"github.com/keboola/go-graphql-client/pkg/client/trace"
	"github.com/keboola/go-graphql-client/pkg/request"
)

// NewTestClient creates the Client for tests.
//
// If the TEST_HTTP_CLIENT_VERBOSE environment variable is set to "true",
// then all HTTP requests and responses are dumped to stdout.
//
// Output may contain unmasked tokens, do not use it in production.
func NewTestClient() Client {
	c := New()
	if os.Getenv("TEST_HTTP_CLIENT_VERBOSE") == "true" { //nolint:forbidigo
		c = c.AndTrace(trace.DumpTracer(os.Stdout))
	}
	return c
}

// NewMockedClient creates the Client with mocked HTTP transport.
func NewMockedClient() (Client, *httpmock.MockTransport) {
	mockTransport := httpmock.NewMockTransport()
	return NewTestClient().WithTransport(mockTransport), mockTransport
}

// MockedResponse is a shortcut for a mocked JSON GraphQL response, the data are encoded as JSON.
func MockedResponse(status int, body any) httpmock.Responder {
	return httpmock.NewJsonResponderOrPanic(status, body)
}

var _ request.Sender = Client{}
