package trace

import (
	"github.com/keboola/go-graphql-client/pkg/request"
)

// Operation describes the GraphQL operation carried by a request body.
type Operation struct {
	// Type is "query", "mutation" or "subscription", empty if the document cannot be parsed.
	Type string
	// Name is empty for an anonymous operation.
	Name string
	// Document is the document text, it may contain sensitive literals.
	Document string
}

type operationBody interface {
	Operation() (operationType, operationName string)
}

type documentBody interface {
	Document() string
}

// OperationOf returns the GraphQL operation of the request.
// False is returned if the request body does not describe an operation.
func OperationOf(reqDef request.HTTPRequest) (Operation, bool) {
	body := reqDef.RequestBody()
	op, ok := body.(operationBody)
	if !ok {
		return Operation{}, false
	}
	out := Operation{}
	out.Type, out.Name = op.Operation()
	if doc, ok := body.(documentBody); ok {
		out.Document = doc.Document()
	}
	return out, true
}

// String returns a short label, for example "query GetUser".
func (o Operation) String() string {
	switch {
	case o.Type == "":
		return "invalid document"
	case o.Name == "":
		return o.Type + " (anonymous)"
	default:
		return o.Type + " " + o.Name
	}
}
