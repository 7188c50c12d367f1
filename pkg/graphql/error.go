package graphql

import (
	"fmt"
	"net/http"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Operation is a GraphQL query with variables, it is attached to the ClientError.
type Operation struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// ErrorResponse is a GraphQL response which is not a success.
type ErrorResponse struct {
	// Status is the HTTP status code.
	Status int `json:"status"`
	// Header contains the HTTP response headers.
	Header http.Header `json:"-"`
	// Errors contains the "errors" field, if any.
	Errors gqlerror.List `json:"errors,omitempty"`
	// Data contains the "data" field, if any.
	Data RawMessage `json:"data,omitempty"`
	// Extensions contains the "extensions" field, if any.
	Extensions map[string]any `json:"extensions,omitempty"`
	// RawError contains the response body, if it is not a JSON object.
	RawError string `json:"error,omitempty"`
}

// ClientError is returned if the GraphQL response is not a success.
// Transport errors are returned unchanged, they are never converted to the ClientError.
type ClientError struct {
	Response ErrorResponse
	Request  Operation
}

func (e *ClientError) Error() string {
	return fmt.Sprintf(`%s, httpCode: "%d"`, e.Message(), e.Response.Status)
}

// Message returns the message of the first GraphQL error, or a generic message with the HTTP status code.
func (e *ClientError) Message() string {
	if len(e.Response.Errors) > 0 && e.Response.Errors[0] != nil && e.Response.Errors[0].Message != "" {
		return e.Response.Errors[0].Message
	}
	return fmt.Sprintf("GraphQL Error (Code: %d)", e.Response.Status)
}

// StatusCode returns the HTTP status code of the response.
func (e *ClientError) StatusCode() int {
	return e.Response.Status
}

// Unwrap returns all GraphQL errors, so errors.As can be used to get a *gqlerror.Error.
func (e *ClientError) Unwrap() []error {
	var out []error
	for _, item := range e.Response.Errors {
		if item != nil {
			out = append(out, item)
		}
	}
	return out
}
