// Package graphql provides a minimal GraphQL over HTTP client.
//
// An operation is sent as a single HTTP POST request with JSON body {"query": "...", "variables": {...}}.
// The response is successful only if the HTTP status code is 2xx, the body has no "errors" field
// and the "data" field is present and not empty. Any other response is returned as the *ClientError.
//
// The Client stores an endpoint URL and default headers, the stateless functions RawRequest and Request
// create a new Client for each call. HTTP communication is delegated to a request.Sender,
// by default it is the client.Client from the "pkg/client" package.
//
//	c := graphql.New("https://api.example.com/graphql", graphql.WithHeaders(graphql.HeaderMap{"Authorization": "Bearer " + token}))
//	data, err := c.Request(ctx, graphql.Query(`{ viewer { login } }`), nil, nil)
package graphql
