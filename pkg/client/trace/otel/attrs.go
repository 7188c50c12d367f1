package otel

import (
	"context"
	"errors"
	"net"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/keboola/go-graphql-client/pkg/client/trace"
	"github.com/keboola/go-graphql-client/pkg/request"
)

const (
	maskedAttrValue = "****"
)

type attributes struct {
	config config
	// definitionPath for the "resource.name" attribute
	definitionPath string
	// definition attributes for span and metrics
	definition []attribute.KeyValue
	// definitionExtra attributes for span only
	definitionExtra []attribute.KeyValue
	// httpRequest attributes for span and metrics
	httpRequest []attribute.KeyValue
	// httpRequestExtra attributes for span only
	httpRequestExtra []attribute.KeyValue
	// httpResponse attributes for span and metrics
	httpResponse []attribute.KeyValue
	// httpResponseExtra attributes for span only
	httpResponseExtra []attribute.KeyValue
	// httpResponseError attributes for span only
	httpResponseError []attribute.KeyValue
}

func newAttributes(cfg config, reqDef request.HTTPRequest) *attributes {
	out := &attributes{config: cfg}
	reqURL := reqDef.URL()
	out.definitionPath = reqURL.Path

	var resultType string
	if v := reflect.TypeOf(reqDef.ResultDef()); v != nil {
		resultType = v.String()
	}

	// Definition base
	out.definition = []attribute.KeyValue{
		attribute.String("definition.method", reqDef.Method()),
		attribute.String("definition.result.type", resultType),
		attribute.String("definition.url.host", reqURL.Host),
		attribute.String("definition.url.path", reqURL.Path),
	}

	// GraphQL operation
	if op, ok := trace.OperationOf(reqDef); ok {
		out.definition = append(out.definition,
			attribute.String("graphql.operation.type", op.Type),
			attribute.String("graphql.operation.name", op.Name),
		)
		if cfg.recordQuery {
			out.definitionExtra = append(out.definitionExtra, attribute.String("graphql.document", op.Document))
		}
	}

	// Definition headers
	out.definitionExtra = append(out.definitionExtra, headerAttrs(cfg, "definition.header.", reqDef.RequestHeader())...)
	return out
}

func (v *attributes) SetFromRequest(req *http.Request) {
	if req == nil {
		v.httpRequest = nil
		v.httpRequestExtra = nil
		return
	}

	// Base
	v.httpRequest = []attribute.KeyValue{
		attribute.String("http.request.method", req.Method),
		attribute.String("server.address", req.URL.Hostname()),
		attribute.String("url.scheme", req.URL.Scheme),
	}
	if port := req.URL.Port(); port != "" {
		v.httpRequest = append(v.httpRequest, attribute.String("server.port", port))
	}

	// Extra
	v.httpRequestExtra = append([]attribute.KeyValue{attribute.String("url.full", req.URL.String())}, headerAttrs(v.config, "http.request.header.", req.Header)...)
}

func (v *attributes) SetFromResponse(res *http.Response, err error) {
	if res == nil {
		v.httpResponse = nil
		v.httpResponseExtra = nil
	} else {
		v.httpResponse = []attribute.KeyValue{attribute.Int("http.response.status_code", res.StatusCode)}
		v.httpResponseExtra = headerAttrs(v.config, "http.response.header.", res.Header)
	}

	// Error
	var netErr net.Error
	errors.As(err, &netErr)
	v.httpResponseError = []attribute.KeyValue{
		attribute.Bool("http.response.isSuccess", isSuccess(res, err)),
		attribute.Bool("http.response.isRedirection", isRedirection(res)),
		attribute.Bool("http.response.error.has", err != nil),
		attribute.Bool("http.response.error.net", netErr != nil),
		attribute.Bool("http.response.error.timeout", netErr != nil && netErr.Timeout()),
		attribute.Bool("http.response.error.cancelled", errors.Is(err, context.Canceled)),
		attribute.Bool("http.response.error.deadline_exceeded", errors.Is(err, context.DeadlineExceeded)),
	}
}

func headerAttrs(cfg config, prefix string, header http.Header) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for key, values := range header {
		key = strings.ToLower(key)
		value := strings.Join(values, ";")
		if _, found := cfg.redactedHeaders[key]; found {
			value = maskedAttrValue
		}
		attrs = append(attrs, attribute.String(prefix+key, value))
	}
	sort.SliceStable(attrs, func(i, j int) bool {
		return attrs[i].Key < attrs[j].Key
	})
	return attrs
}

// isSuccess reports a response without a transport error and with a status below 400.
// GraphQL errors inside a 200 response body are not inspected.
func isSuccess(res *http.Response, err error) bool {
	return err == nil && res != nil && res.StatusCode < http.StatusBadRequest
}

func isRedirection(res *http.Response) bool {
	return res != nil && res.StatusCode/100 == 3
}
