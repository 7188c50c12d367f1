package graphql

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/keboola/go-graphql-client/pkg/client"
)

// Response is a successful GraphQL response.
type Response struct {
	// Data contains the raw "data" field.
	Data RawMessage
	// Extensions contains the "extensions" field, if any.
	Extensions map[string]any
	// Header contains the HTTP response headers.
	Header http.Header
	// Status is the HTTP status code.
	Status int
}

// Decode maps the "data" field to the target value.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Data, v)
}

// classify converts the HTTP response to the Response or the *ClientError.
func classify(status int, header http.Header, body []byte, op Operation) (*Response, error) {
	fields, isObject := parseResult(header, body)

	// Success
	isSuccess := status >= 200 && status <= 299
	if isSuccess && isObject && !hasErrors(fields["errors"]) && isTruthy(fields["data"]) {
		out := &Response{Data: fields["data"], Header: header, Status: status}
		out.Extensions = parseExtensions(fields["extensions"])
		return out, nil
	}

	// Error
	errResponse := ErrorResponse{Status: status, Header: header}
	if isObject {
		errResponse.Errors = parseErrors(fields["errors"])
		errResponse.Extensions = parseExtensions(fields["extensions"])
		if !isNull(fields["data"]) {
			errResponse.Data = fields["data"]
		}
	} else {
		errResponse.RawError = parseText(header, body)
	}
	return nil, &ClientError{Response: errResponse, Request: op}
}

// parseResult decodes the body as a JSON object, if the content type is JSON.
func parseResult(header http.Header, body []byte) (map[string]RawMessage, bool) {
	if !client.IsJSONContentType(header.Get("Content-Type")) {
		return nil, false
	}
	var fields map[string]RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

// parseText returns the body as a text, a JSON string is unquoted.
func parseText(header http.Header, body []byte) string {
	if client.IsJSONContentType(header.Get("Content-Type")) {
		var str string
		if err := json.Unmarshal(body, &str); err == nil {
			return str
		}
	}
	return string(body)
}

// hasErrors returns false if the "errors" field is absent, an empty list or a falsy value (null, false, 0, "").
func hasErrors(raw RawMessage) bool {
	var items []RawMessage
	if err := json.Unmarshal(raw, &items); err == nil && items != nil {
		return len(items) > 0
	}
	return isTruthy(raw)
}

// isTruthy returns false if the value is absent, null, false, 0 or "".
func isTruthy(raw RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return false
	}
	switch raw[0] {
	case 'f':
		return false
	case '"':
		return len(raw) > 2
	case '{', '[', 't':
		return true
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		return err != nil || f != 0
	}
}

func isNull(raw RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func parseErrors(raw RawMessage) gqlerror.List {
	if !hasErrors(raw) {
		return nil
	}

	// List of errors
	var list gqlerror.List
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	// Single error object
	var item gqlerror.Error
	if err := json.Unmarshal(raw, &item); err == nil && item.Message != "" {
		return gqlerror.List{&item}
	}

	// Unexpected value, for example a string
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return gqlerror.List{{Message: str}}
	}
	return gqlerror.List{{Message: string(raw)}}
}

func parseExtensions(raw RawMessage) map[string]any {
	if isNull(raw) {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
