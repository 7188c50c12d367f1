package graphql

import (
	stdjson "encoding/json"

	jsoniter "github.com/json-iterator/go"
)

// json - replacement of the standard encoding/json library, it is faster for larger responses.
var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

// RawMessage is a raw encoded JSON value, it is the same type as json.RawMessage from the standard library.
type RawMessage = stdjson.RawMessage
