package request

import (
	"context"
	"net/http"
)

// Sender represents an HTTP client, the client.Client is a default implementation using the standard net/http package.
type Sender interface {
	// Send method sends defined request and returns response.
	// Type of the return value "result" must be the same as type of the HTTPRequest.ResultDef(), otherwise panic will occur.
	Send(ctx context.Context, request HTTPRequest) (rawResponse *http.Response, result any, err error)
}

// Sendable is an HTTPRequest or any other unit of work, for example a prepared GraphQL operation.
type Sendable interface {
	SendOrErr(ctx context.Context) error
}

// SendableFunc adapts a function to the Sendable interface.
type SendableFunc func(ctx context.Context) error

func (fn SendableFunc) SendOrErr(ctx context.Context) error {
	return fn(ctx)
}

// ReqDefinitionError can be used as the Sendable interface.
// So the error will be returned when you try to send the request.
// This simplifies usage, the error is checked only once, in one place.
type ReqDefinitionError struct {
	error
}

func NewReqDefinitionError(err error) Sendable {
	return ReqDefinitionError{error: err}
}

func (v ReqDefinitionError) SendOrErr(_ context.Context) error {
	return v
}

func (v ReqDefinitionError) Unwrap() error {
	return v.error
}
