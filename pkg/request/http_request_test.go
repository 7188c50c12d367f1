package request_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keboola/go-graphql-client/pkg/client"
	"github.com/keboola/go-graphql-client/pkg/request"
)

func TestHttpRequest_Immutability(t *testing.T) {
	t.Parallel()
	var a, b request.HTTPRequest
	c := client.New()
	a = request.NewHTTPRequest(c)

	// WithPost
	a = a.WithPost("/graphql1")
	b = a.WithPost("/graphql2")
	assert.Equal(t, http.MethodPost, a.Method())
	assert.Equal(t, "/graphql1", a.URL().String())
	assert.Equal(t, http.MethodPost, b.Method())
	assert.Equal(t, "/graphql2", b.URL().String())

	// AndHeader
	a = a.AndHeader("X-Foo", "1")
	b = a.AndHeader("X-Foo", "2")
	assert.Equal(t, "1", a.RequestHeader().Get("X-Foo"))
	assert.Equal(t, "2", b.RequestHeader().Get("X-Foo"))

	// WithHeader
	header := http.Header{"X-Bar": []string{"bar"}}
	b = a.WithHeader(header)
	header.Set("X-Bar", "changed")
	assert.Equal(t, "1", a.RequestHeader().Get("X-Foo"))
	assert.Equal(t, "", b.RequestHeader().Get("X-Foo"))
	assert.Equal(t, "bar", b.RequestHeader().Get("X-Bar"))

	// WithJSONBody
	a = a.WithJSONBody(map[string]any{"query": "{ a }"})
	b = a.WithBody("{ b }")
	assert.Equal(t, map[string]any{"query": "{ a }"}, a.RequestBody())
	assert.Equal(t, "application/json", a.RequestHeader().Get("Content-Type"))
	assert.Equal(t, "{ b }", b.RequestBody())

	// WithResult
	var r1, r2 []byte
	a = a.WithResult(&r1)
	b = a.WithResult(&r2)
	assert.Same(t, &r1, a.ResultDef())
	assert.Same(t, &r2, b.ResultDef())
}

func TestHttpRequest_ResultMustBePointer(t *testing.T) {
	t.Parallel()
	assert.PanicsWithError(t, "result must be defined by a pointer", func() {
		request.NewHTTPRequest(client.New()).WithResult("value")
	})
}

func TestHttpRequest_Listeners(t *testing.T) {
	t.Parallel()
	c, transport := client.NewMockedClient()
	transport.RegisterResponder("POST", "https://example.com/graphql", httpmock.NewStringResponder(200, "OK"))

	var calls []string
	base := request.NewHTTPRequest(c).WithPost("https://example.com/graphql")
	req := base.
		WithOnComplete(func(ctx context.Context, response request.HTTPResponse, err error) error {
			calls = append(calls, "complete")
			return err
		}).
		WithOnSuccess(func(ctx context.Context, response request.HTTPResponse) error {
			calls = append(calls, "success")
			return errors.New("listener error")
		}).
		WithOnError(func(ctx context.Context, response request.HTTPResponse, err error) error {
			calls = append(calls, "error")
			return err
		})

	res, _, err := req.Send(context.Background())
	require.Error(t, err)
	assert.Equal(t, "listener error", err.Error())
	assert.Equal(t, []string{"complete", "success", "error"}, calls)
	assert.Equal(t, http.StatusOK, res.StatusCode())
	assert.True(t, res.IsSuccess())
	assert.False(t, res.IsError())

	// The base request has no listeners
	calls = nil
	assert.NoError(t, base.SendOrErr(context.Background()))
	assert.Empty(t, calls)
}

func TestHttpRequest_CanceledContext(t *testing.T) {
	t.Parallel()
	c, transport := client.NewMockedClient()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := request.NewHTTPRequest(c).WithPost("https://example.com/graphql").Send(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, transport.GetTotalCallCount())
}
