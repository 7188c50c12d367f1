// Package request provides immutable HTTP request definitions, see NewHTTPRequest function.
//
// Requests are sent using the Sender interface.
// The client.Client is a default implementation of the Sender
// interface based on the standard net/http package.
//
// The graphql.Client builds one HTTPRequest per GraphQL operation,
// so the request definition is also the descriptor seen by a request middleware.
//
// RunGroup and WaitGroup are helpers for concurrent requests.
package request
