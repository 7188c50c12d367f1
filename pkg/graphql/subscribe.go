package graphql

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// SubscriptionProtocol is a WebSocket sub-protocol for GraphQL subscriptions.
type SubscriptionProtocol string

const (
	// SubscriptionsTransportWS is the legacy Apollo protocol.
	SubscriptionsTransportWS SubscriptionProtocol = "subscriptions-transport-ws"
	// GraphQLWS is the "graphql-ws" protocol.
	GraphQLWS SubscriptionProtocol = "graphql-ws"
)

// ErrInvalidProtocol is returned by Client.Subscribe for an unknown protocol, before any network activity.
var ErrInvalidProtocol = errors.New("invalid subscription protocol")

// ErrProtocolNotImplemented is returned by Client.Subscribe for a known protocol without a handler.
var ErrProtocolNotImplemented = errors.New("subscription protocol is not implemented")

// SubscriptionProtocols returns all known protocols.
func SubscriptionProtocols() []SubscriptionProtocol {
	return []SubscriptionProtocol{SubscriptionsTransportWS, GraphQLWS}
}

// SubscribePayload is the subscription operation.
type SubscribePayload struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

// SubscribeOptions configures a subscription.
type SubscribeOptions struct {
	// Protocol overrides the client default protocol.
	Protocol SubscriptionProtocol
	// OnNext is called for each received result.
	OnNext func(data RawMessage)
	// OnError is called once, if the subscription fails.
	OnError func(err error)
	// OnComplete is called once, if the server completes the subscription.
	OnComplete func()
}

// Subscribe validates the protocol and starts the subscription.
// It returns a function to unsubscribe.
//
// No protocol handler is available yet, so ErrProtocolNotImplemented is returned for each known protocol.
func (c *Client) Subscribe(_ context.Context, _ SubscribePayload, opts SubscribeOptions) (func(), error) {
	protocol := opts.Protocol
	if protocol == "" {
		protocol = c.protocol
	}

	switch protocol {
	case SubscriptionsTransportWS, GraphQLWS:
		return nil, fmt.Errorf(`%w: "%s"`, ErrProtocolNotImplemented, protocol)
	default:
		var expected []string
		for _, p := range SubscriptionProtocols() {
			expected = append(expected, string(p))
		}
		return nil, fmt.Errorf(`%w "%s", expected one of: %s`, ErrInvalidProtocol, protocol, strings.Join(expected, ", "))
	}
}
