package graphql

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

// Document is a GraphQL operation, either the Query text or the ParsedDocument.
type Document interface {
	// String returns the document text sent to the server.
	String() string
	isDocument()
}

// Query is a raw GraphQL document text, it is sent unchanged.
type Query string

func (q Query) String() string {
	return string(q)
}

func (Query) isDocument() {}

// ParsedDocument is a structured GraphQL document, it is printed before sending.
type ParsedDocument struct {
	AST *ast.QueryDocument
}

func NewParsedDocument(doc *ast.QueryDocument) ParsedDocument {
	return ParsedDocument{AST: doc}
}

// Parse parses the query text to the ParsedDocument.
func Parse(query string) (ParsedDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return ParsedDocument{}, fmt.Errorf("cannot parse GraphQL document: %w", err)
	}
	return ParsedDocument{AST: doc}, nil
}

// MustParse is like Parse, but panics on error.
func MustParse(query string) ParsedDocument {
	doc, err := Parse(query)
	if err != nil {
		panic(err)
	}
	return doc
}

func (d ParsedDocument) String() string {
	if d.AST == nil {
		return ""
	}
	var out strings.Builder
	formatter.NewFormatter(&out).FormatQueryDocument(d.AST)
	return out.String()
}

func (ParsedDocument) isDocument() {}

// ResolveDocument converts the document to the text form.
func ResolveDocument(document Document) string {
	if document == nil {
		return ""
	}
	return document.String()
}

// Gql interpolates values between chunks, a missing value is replaced by an empty string.
// It does not parse the result.
//
//	Gql([]string{"query { user(id: ", ") { name } }"}, 123) // query { user(id: 123) { name } }
func Gql(chunks []string, values ...any) Query {
	var out strings.Builder
	for i, chunk := range chunks {
		out.WriteString(chunk)
		if i < len(values) {
			if str, err := cast.ToStringE(values[i]); err == nil {
				out.WriteString(str)
			} else {
				out.WriteString(fmt.Sprint(values[i]))
			}
		}
	}
	return Query(out.String())
}
