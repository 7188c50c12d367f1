// Package client provides the default HTTP transport for the GraphQL client.
//
// Client is a default implementation of the request.Sender interface.
// Client is based on the standard net/http package and contains tracing/telemetry support
// and an optional retry.
// It is easy to implement your custom transport, by implementing the request.Sender interface.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	otelMetric "go.opentelemetry.io/otel/metric"
	otelTrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/keboola/go-graphql-client/pkg/client/decode"
	"github.com/keboola/go-graphql-client/pkg/client/trace"
	"github.com/keboola/go-graphql-client/pkg/client/trace/otel"
	"github.com/keboola/go-graphql-client/pkg/request"
)

const DefaultUserAgent = "keboola-go-graphql-client"

// Client is a default and configurable implementation of the request.Sender interface by Go native http.Client.
// It supports tracing/telemetry and an optional retry.
type Client struct {
	transport      http.RoundTripper
	baseURL        *url.URL
	header         http.Header
	retry          RetryConfig
	traceFactories []trace.Factory
}

// New creates new HTTP Client.
// Clients share the SharedTransport connection pool, until WithTransport is used.
func New() Client {
	c := Client{transport: SharedTransport(), header: make(http.Header), retry: NoRetry()}
	c.header.Set("User-Agent", DefaultUserAgent)
	c.header.Set("Accept-Encoding", "gzip, br")
	return c
}

// WithBaseURL returns a clone of the Client with base url set.
// Relative request URLs are resolved against it.
func (c Client) WithBaseURL(baseURLStr string) Client {
	baseURL, err := url.Parse(baseURLStr)
	if err != nil {
		panic(fmt.Errorf(`base url "%s" is not valid: %w`, baseURLStr, err))
	}
	// Normalize base URL, so c.baseURL.ResolveReference(...) will work
	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/"
	c.baseURL = baseURL
	return c
}

// WithUserAgent returns a clone of the Client with user agent set.
func (c Client) WithUserAgent(v string) Client {
	return c.WithHeader("User-Agent", v)
}

// WithHeader returns a clone of the Client with common header set.
func (c Client) WithHeader(key, value string) Client {
	c.header = c.header.Clone()
	c.header.Set(key, value)
	return c
}

// WithHeaders returns a clone of the Client with common headers set.
func (c Client) WithHeaders(headers map[string]string) Client {
	c.header = c.header.Clone()
	for k, v := range headers {
		c.header.Set(k, v)
	}
	return c
}

// WithTransport returns a clone of the Client with a HTTP transport set.
func (c Client) WithTransport(transport http.RoundTripper) Client {
	if transport == nil {
		panic(fmt.Errorf("transport cannot be nil"))
	}
	c.transport = transport
	return c
}

// WithOAuth2 returns a clone of the Client, the "Authorization" header of each request is set from the token source.
func (c Client) WithOAuth2(source oauth2.TokenSource) Client {
	if source == nil {
		panic(fmt.Errorf("token source cannot be nil"))
	}
	return c.WithTransport(&oauth2.Transport{Source: source, Base: c.transport})
}

// WithRetry returns a clone of the Client with retry config set.
// Retries are disabled by default, see NoRetry.
func (c Client) WithRetry(retry RetryConfig) Client {
	c.retry = retry
	return c
}

// AndTrace returns a clone of the Client with Trace hooks added.
func (c Client) AndTrace(fn trace.Factory) Client {
	c.traceFactories = append(c.traceFactories[:len(c.traceFactories):len(c.traceFactories)], fn)
	return c
}

// WithTelemetry returns a clone of the Client with OpenTelemetry tracing and metrics.
func (c Client) WithTelemetry(tracerProvider otelTrace.TracerProvider, meterProvider otelMetric.MeterProvider, opts ...otel.Option) Client {
	return c.AndTrace(otel.NewTrace(tracerProvider, meterProvider, opts...))
}

// Send method sends HTTP request and returns HTTP response, it implements the request.Sender interface.
//
// The response body is mapped to the request.HTTPRequest.ResultDef(), if it is set.
// A response with an error status code is not an error if the body is mapped,
// the caller is responsible for classification of the response.
func (c Client) Send(ctx context.Context, reqDef request.HTTPRequest) (res *http.Response, result any, err error) {
	// Method cannot be called on an empty value
	if c.transport == nil {
		panic(fmt.Errorf("client value is not initialized"))
	}

	// Init trace
	var clientTrace *trace.ClientTrace
	for _, fn := range c.traceFactories {
		var t *trace.ClientTrace
		ctx, t = fn(ctx, reqDef)
		if t != nil {
			t.Compose(clientTrace)
			clientTrace = t
		}
	}
	if clientTrace != nil {
		ctx = httptrace.WithClientTrace(ctx, &clientTrace.ClientTrace)
		if clientTrace.RequestProcessed != nil {
			defer func() {
				clientTrace.RequestProcessed(result, err)
			}()
		}
	}

	// Convert to absolute url
	reqURL := reqDef.URL()
	if c.baseURL != nil && !reqURL.IsAbs() {
		reqURL.Path = strings.TrimLeft(reqURL.Path, "/")
		reqURL = c.baseURL.ResolveReference(reqURL)
	}

	// Create request
	req, err := http.NewRequestWithContext(ctx, reqDef.Method(), reqURL.String(), nil)
	if err != nil {
		return nil, nil, err
	}

	// Global headers
	for k, values := range c.header {
		for _, v := range values {
			req.Header.Set(k, v)
		}
	}

	// Request headers
	for k, values := range reqDef.RequestHeader() {
		req.Header.Del(k) // clear global values
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	// Body
	if reqDef.RequestBody() != nil {
		// GetBody factory is used for requests when a redirect/retry requires reading the body more than once.
		req.GetBody = func() (io.ReadCloser, error) {
			if body, err := requestBody(reqDef); err == nil {
				return body, nil
			} else {
				return nil, fmt.Errorf(`request %s "%s": cannot prepare request body: %w`, req.Method, req.URL.String(), err)
			}
		}
		req.Body, err = req.GetBody()
		if err != nil {
			return nil, nil, err
		}
	}

	// Setup native client
	nativeClient := http.Client{
		Timeout:   c.retry.TotalRequestTimeout,
		Transport: roundTripper{retry: c.retry, trace: clientTrace, wrapped: c.transport}, // wrapped transport for trace/retry
	}

	// Send request
	startedAt := time.Now()
	res, err = nativeClient.Do(req) //nolint:bodyclose // closed by handleResponseBody

	// Handle send error
	if err != nil {
		return nil, nil, handleSendError(startedAt, c.retry.TotalRequestTimeout, req, err)
	}

	// Process body
	result, err = handleResponseBody(res, reqDef.ResultDef())
	if err != nil {
		return res, nil, fmt.Errorf(`cannot process request %s "%s": %w`, req.Method, req.URL.String(), err)
	}

	// Generic HTTP error, if the body is not mapped
	if result == nil && res.StatusCode > 399 {
		return res, nil, fmt.Errorf(`request %s "%s" failed: %d %s`, req.Method, req.URL.String(), res.StatusCode, http.StatusText(res.StatusCode))
	}

	return res, result, nil
}

func requestBody(r request.HTTPRequest) (io.ReadCloser, error) {
	contentType := r.RequestHeader().Get("Content-Type")
	body := r.RequestBody()
	switch v := body.(type) {
	case string:
		return io.NopCloser(strings.NewReader(v)), nil
	case []byte:
		return io.NopCloser(bytes.NewReader(v)), nil
	case io.ReadSeekCloser:
		// io.ReadSeekCloser stream
		if _, err := v.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return v, nil
	case io.ReadSeeker:
		// io.ReadSeeker stream
		if _, err := v.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return io.NopCloser(v), nil
	}

	_, isMarshaler := body.(jsonMarshaler)
	if body != nil && (isMarshaler || IsJSONContentType(contentType)) {
		// Json body
		c, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf(`cannot encode JSON body: %w`, err)
		}
		return io.NopCloser(bytes.NewReader(c)), nil
	}

	if body != nil {
		return nil, fmt.Errorf(`unexpected body type "%T", content type "%s"`, body, contentType)
	}

	// empty body
	return nil, nil
}

func handleResponseBody(r *http.Response, resultDef any) (result any, err error) {
	defer r.Body.Close()

	if resultDef == nil || r.StatusCode == http.StatusNoContent {
		// Drain the body, so the connection can be reused
		_, _ = io.Copy(io.Discard, r.Body)
		return nil, nil
	}

	// Process content encoding
	body, err := decode.Decode(r.Body, r.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, fmt.Errorf("cannot decode response: %w", err)
	}
	defer body.Close()

	switch v := resultDef.(type) {
	case *[]byte:
		// Load response body as []byte
		bodyBytes, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf(`cannot read response body: %w`, err)
		}
		*v = bodyBytes
		return v, nil
	case *string:
		// Load response body as string
		bodyBytes, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf(`cannot read response body: %w`, err)
		}
		*v = string(bodyBytes)
		return v, nil
	case io.WriteCloser:
		// Stream response to io.WriteCloser
		if _, err := io.Copy(v, body); err != nil {
			return nil, fmt.Errorf(`cannot read response body: %w`, err)
		}
		if err := v.Close(); err != nil {
			return nil, fmt.Errorf(`cannot read response body: %w`, err)
		}
		return v, nil
	case io.Writer:
		// Stream response to io.Writer
		if _, err := io.Copy(v, body); err != nil {
			return nil, fmt.Errorf(`cannot read response body: %w`, err)
		}
		return v, nil
	default:
		// Map JSON response
		if !IsJSONContentType(r.Header.Get("Content-Type")) {
			return nil, fmt.Errorf(`cannot map content type "%s" to %T`, r.Header.Get("Content-Type"), resultDef)
		}
		if err := json.NewDecoder(body).Decode(resultDef); err != nil {
			return nil, fmt.Errorf(`cannot decode JSON result: %w`, err)
		}
		return resultDef, nil
	}
}

func handleSendError(startedAt time.Time, clientTimeout time.Duration, req *http.Request, err error) error {
	// Timeout
	var netErr net.Error
	if deadline, ok := req.Context().Deadline(); ok && errors.Is(err, context.DeadlineExceeded) {
		err = urlError(req, fmt.Errorf("timeout after %s: %w", deadline.Sub(startedAt), context.DeadlineExceeded))
	} else if errors.Is(err, context.Canceled) {
		err = urlError(req, fmt.Errorf("canceled after %s: %w", time.Since(startedAt), context.Canceled))
	} else if errors.As(err, &netErr) && netErr.Timeout() {
		if strings.Contains(err.Error(), "Client.Timeout exceeded") {
			err = urlError(req, fmt.Errorf("timeout after %s: %w", clientTimeout, netErr))
		} else {
			err = urlError(req, fmt.Errorf("timeout after %s: %w", time.Since(startedAt), netErr))
		}
	}

	// Url error
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = &SendError{urlErr: urlErr}
	}

	return err
}

// SendError is returned if the request cannot be sent or no response is received.
// The *url.Error of the net/http client is kept in the chain.
type SendError struct {
	urlErr *url.Error
}

func (e *SendError) Error() string {
	return fmt.Sprintf(`request %s "%s" failed: %s`, strings.ToUpper(e.urlErr.Op), e.urlErr.URL, e.urlErr.Err)
}

func (e *SendError) Unwrap() error {
	return e.urlErr
}

// roundTripper wraps a http.RoundTripper and adds trace and retry functionality.
type roundTripper struct {
	trace   *trace.ClientTrace
	retry   RetryConfig
	wrapped http.RoundTripper
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	state := rt.retry.NewBackoff()
	attempt := 0
	for {
		// Trace request start
		if rt.trace != nil && rt.trace.HTTPRequestStart != nil {
			rt.trace.HTTPRequestStart(req)
		}

		// Send
		res, err := rt.wrapped.RoundTrip(req)

		// Trace request done
		if rt.trace != nil && rt.trace.HTTPRequestDone != nil {
			rt.trace.HTTPRequestDone(res, err)
		}

		// Check if we should retry
		if rt.retry.Condition == nil || attempt >= rt.retry.Count || !rt.retry.Condition(res, err) {
			// No retry
			return res, err
		}

		// Get next delay
		delay := state.NextBackOff()
		if delay == backoff.Stop {
			// Stop
			return res, err
		}

		// Discard the response body before the next attempt
		if res != nil && res.Body != nil {
			_, _ = io.Copy(io.Discard, res.Body)
			_ = res.Body.Close()
		}

		// Trace retry
		attempt++
		if rt.trace != nil && rt.trace.HTTPRequestRetry != nil {
			rt.trace.HTTPRequestRetry(attempt, delay)
		}

		// Rewind body before retry
		if req.GetBody != nil {
			req.Body, err = req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("cannot rewind body: %w", err)
			}
		}

		// Wait
		timer := time.NewTimer(delay)
		select {
		case <-req.Context().Done():
			// context is canceled
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
			// time elapsed, retry
		}
	}
}

func urlError(req *http.Request, err error) *url.Error {
	return &url.Error{Op: req.Method, URL: req.URL.String(), Err: err}
}
