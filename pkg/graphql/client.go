package graphql

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/keboola/go-graphql-client/pkg/client"
	"github.com/keboola/go-graphql-client/pkg/request"
)

// RequestMiddleware receives the outgoing request, the returned request is sent instead.
// If nil is returned, the original request is sent.
type RequestMiddleware func(ctx context.Context, req request.HTTPRequest) request.HTTPRequest

// ResponseMiddleware observes the received response, before it is classified.
// It is not called if the request failed on the transport level.
type ResponseMiddleware func(ctx context.Context, res request.HTTPResponse)

// defaultSender is shared by all clients created without the WithSender option,
// so the stateless functions reuse pooled connections.
var defaultSender = sync.OnceValue(func() request.Sender {
	return client.New()
})

// Option for the New function.
type Option func(c *Client)

// WithHeaders sets default headers sent with each request.
func WithHeaders(headers Headers) Option {
	return func(c *Client) {
		c.header = ResolveHeaders(headers)
	}
}

// WithSender replaces the default HTTP transport.
func WithSender(sender request.Sender) Option {
	return func(c *Client) {
		c.sender = sender
	}
}

// WithRequestMiddleware sets a function to modify each outgoing request.
func WithRequestMiddleware(fn RequestMiddleware) Option {
	return func(c *Client) {
		c.requestMiddleware = fn
	}
}

// WithResponseMiddleware sets a function to observe each received response.
func WithResponseMiddleware(fn ResponseMiddleware) Option {
	return func(c *Client) {
		c.responseMiddleware = fn
	}
}

// WithSubscriptionProtocol sets the default protocol for Client.Subscribe.
func WithSubscriptionProtocol(protocol SubscriptionProtocol) Option {
	return func(c *Client) {
		c.protocol = protocol
	}
}

// Client sends GraphQL operations to an endpoint.
//
// Default headers can be modified by SetHeaders and SetHeader, it is safe for concurrent use.
// Each operation uses a copy of the default headers taken when the operation starts.
type Client struct {
	url                string
	sender             request.Sender
	requestMiddleware  RequestMiddleware
	responseMiddleware ResponseMiddleware
	protocol           SubscriptionProtocol

	lock   sync.RWMutex
	header http.Header
}

// New creates a Client for the endpoint URL.
// If no sender is specified by the WithSender option, a shared client.New() sender is used.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{url: endpoint, header: make(http.Header)}
	for _, o := range opts {
		o(c)
	}
	if c.sender == nil {
		c.sender = defaultSender()
	}
	return c
}

// URL returns the endpoint URL.
func (c *Client) URL() string {
	return c.url
}

// Headers returns a copy of the default headers.
func (c *Client) Headers() http.Header {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.header.Clone()
}

// SetHeaders replaces all default headers.
func (c *Client) SetHeaders(headers Headers) *Client {
	header := ResolveHeaders(headers)
	c.lock.Lock()
	defer c.lock.Unlock()
	c.header = header
	return c
}

// SetHeader sets a default header, an existing value is overwritten.
func (c *Client) SetHeader(key, value string) *Client {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.header == nil {
		c.header = make(http.Header)
	}
	c.header.Set(key, value)
	return c
}

// RawRequest sends the query and returns the whole successful response.
// The headers override the default headers for this call only, the headers can be nil.
//
// A GraphQL error or an unexpected response is returned as the *ClientError,
// a transport error is returned as it is.
func (c *Client) RawRequest(ctx context.Context, query string, variables map[string]any, headers Headers) (*Response, error) {
	if _, err := url.Parse(c.url); err != nil {
		return nil, fmt.Errorf(`endpoint url "%s" is not valid: %w`, c.url, err)
	}

	// Copy the configuration, so the call is not affected by a concurrent modification
	c.lock.RLock()
	header := ResolveHeaders(HeaderMap{"Content-Type": client.ContentTypeApplicationJSON}, HTTPHeader(c.header), headers)
	c.lock.RUnlock()

	// Build request
	var body []byte
	req := request.NewHTTPRequest(c.sender).
		WithPost(c.url).
		WithHeader(header).
		WithBody(NewRequestBody(query, variables)).
		WithResult(&body)
	if c.requestMiddleware != nil {
		if modified := c.requestMiddleware(ctx, req); modified != nil {
			req = modified
		}
	}

	// Send request
	res, result, err := req.Send(ctx)
	if err != nil {
		return nil, err
	}
	if c.responseMiddleware != nil {
		c.responseMiddleware(ctx, res)
	}

	// The result target may be replaced by the request middleware
	if v, ok := result.(*[]byte); ok && v != nil {
		body = *v
	}

	return classify(res.StatusCode(), res.ResponseHeader(), body, Operation{Query: query, Variables: variables})
}

// Request sends the document and returns the "data" field of the successful response.
func (c *Client) Request(ctx context.Context, document Document, variables map[string]any, headers Headers) (RawMessage, error) {
	res, err := c.RawRequest(ctx, ResolveDocument(document), variables, headers)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// NewOperation returns a request.Sendable for the request.WaitGroup or request.RunGroup.
// If the result is not nil, the "data" field is decoded to the result.
// An invalid endpoint URL is reported when the operation is sent.
func (c *Client) NewOperation(document Document, variables map[string]any, headers Headers, result any) request.Sendable {
	if _, err := url.Parse(c.url); err != nil {
		return request.NewReqDefinitionError(fmt.Errorf(`endpoint url "%s" is not valid: %w`, c.url, err))
	}
	return request.SendableFunc(func(ctx context.Context) error {
		data, err := c.Request(ctx, document, variables, headers)
		if err != nil {
			return err
		}
		if result != nil {
			if err := json.Unmarshal(data, result); err != nil {
				return fmt.Errorf("cannot decode GraphQL data: %w", err)
			}
		}
		return nil
	})
}

// Do sends the document and decodes the "data" field to the T type.
func Do[T any](ctx context.Context, c *Client, document Document, variables map[string]any, headers Headers) (T, error) {
	var out T
	data, err := c.Request(ctx, document, variables, headers)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("cannot decode GraphQL data: %w", err)
	}
	return out, nil
}

// RawRequest sends the query to the endpoint, pooled connections of the shared default sender are reused.
func RawRequest(ctx context.Context, endpoint string, query string, variables map[string]any, headers Headers) (*Response, error) {
	return New(endpoint).RawRequest(ctx, query, variables, headers)
}

// Request sends the document to the endpoint, pooled connections of the shared default sender are reused.
func Request(ctx context.Context, endpoint string, document Document, variables map[string]any, headers Headers) (RawMessage, error) {
	return New(endpoint).Request(ctx, document, variables, headers)
}
