package otel

import (
	"strings"

	"go.opentelemetry.io/otel/propagation"
)

type config struct {
	propagators     propagation.TextMapPropagator
	redactedHeaders map[string]struct{}
	recordQuery     bool
}

type Option func(*config)

// WithPropagators sets propagators used to inject the trace context to outgoing requests.
func WithPropagators(v propagation.TextMapPropagator) Option {
	return func(c *config) {
		c.propagators = v
	}
}

// WithRedactedHeaders adds headers whose values are masked in span attributes.
func WithRedactedHeaders(headers ...string) Option {
	return func(c *config) {
		for _, h := range headers {
			c.redactedHeaders[strings.ToLower(h)] = struct{}{}
		}
	}
}

// WithQueryText enables the "graphql.document" span attribute with the full query text.
// Variables are never recorded.
func WithQueryText() Option {
	return func(c *config) {
		c.recordQuery = true
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		// Same as in the otelhttptrace
		redactedHeaders: map[string]struct{}{
			"authorization":       {},
			"www-authenticate":    {},
			"proxy-authenticate":  {},
			"proxy-authorization": {},
			"cookie":              {},
			"set-cookie":          {},
		},
	}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}
