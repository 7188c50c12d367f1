package graphql

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// RequestBody is the JSON body of a GraphQL HTTP request.
//
// The "variables" key is omitted if Variables is nil.
// An empty, but not nil, map is encoded as {}, some servers distinguish absent and empty variables.
type RequestBody struct {
	Query     string
	Variables map[string]any
}

type requestBodyWithoutVariables struct {
	Query string `json:"query"`
}

type requestBodyWithVariables struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func NewRequestBody(query string, variables map[string]any) RequestBody {
	return RequestBody{Query: query, Variables: variables}
}

func (b RequestBody) MarshalJSON() ([]byte, error) {
	if b.Variables == nil {
		return json.Marshal(requestBodyWithoutVariables{Query: b.Query})
	}
	return json.Marshal(requestBodyWithVariables{Query: b.Query, Variables: b.Variables})
}

// Document returns the query text.
func (b RequestBody) Document() string {
	return b.Query
}

// Operation returns type and name of the first operation in the query, for example "query", "GetUser".
// Empty strings are returned if the query cannot be parsed.
func (b RequestBody) Operation() (operationType, operationName string) {
	doc, err := parser.ParseQuery(&ast.Source{Input: b.Query})
	if err != nil || doc == nil || len(doc.Operations) == 0 {
		return "", ""
	}
	op := doc.Operations[0]
	return string(op.Operation), op.Name
}
