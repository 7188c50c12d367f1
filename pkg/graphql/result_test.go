package graphql

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTruthy(t *testing.T) {
	t.Parallel()

	for _, v := range []string{``, `null`, ` null `, `false`, `0`, `-0`, `0.0`, `""`} {
		assert.False(t, isTruthy(RawMessage(v)), v)
	}
	for _, v := range []string{`{}`, `[]`, `true`, `1`, `-1.5`, `"a"`, `{"a":null}`} {
		assert.True(t, isTruthy(RawMessage(v)), v)
	}
}

func TestHasErrors(t *testing.T) {
	t.Parallel()

	assert.False(t, hasErrors(nil))
	assert.False(t, hasErrors(RawMessage(`null`)))
	assert.False(t, hasErrors(RawMessage(`[]`)))
	assert.True(t, hasErrors(RawMessage(`[{"message":"a"}]`)))
	assert.True(t, hasErrors(RawMessage(`"error"`)))
	assert.True(t, hasErrors(RawMessage(`{"message":"a"}`)))

	// Falsy scalars are not errors
	assert.False(t, hasErrors(RawMessage(`false`)))
	assert.False(t, hasErrors(RawMessage(`0`)))
	assert.False(t, hasErrors(RawMessage(`""`)))
	assert.True(t, hasErrors(RawMessage(`true`)))
	assert.True(t, hasErrors(RawMessage(`1`)))
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	assert.Nil(t, parseErrors(nil))
	assert.Nil(t, parseErrors(RawMessage(`false`)))
	assert.Nil(t, parseErrors(RawMessage(`[]`)))

	list := parseErrors(RawMessage(`[{"message":"a","path":["user",0,"id"]}]`))
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].Message)
	assert.Equal(t, "user[0].id", list[0].Path.String())

	list = parseErrors(RawMessage(`{"message":"single"}`))
	require.Len(t, list, 1)
	assert.Equal(t, "single", list[0].Message)

	list = parseErrors(RawMessage(`"text"`))
	require.Len(t, list, 1)
	assert.Equal(t, "text", list[0].Message)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	jsonHeader := http.Header{"Content-Type": []string{"application/json"}}
	op := Operation{Query: "{ ok }"}

	// Success
	res, err := classify(200, jsonHeader, []byte(`{"data":{"ok":true}}`), op)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(res.Data))
	assert.Nil(t, res.Extensions)

	// Falsy "errors" field
	for _, body := range []string{`{"data":{"ok":true},"errors":false}`, `{"data":{"ok":true},"errors":""}`, `{"data":{"ok":true},"errors":0}`} {
		_, err = classify(200, jsonHeader, []byte(body), op)
		assert.NoError(t, err, body)
	}

	// 3xx is not a success
	_, err = classify(304, jsonHeader, []byte(`{"data":{"ok":true}}`), op)
	require.Error(t, err)

	// JSON string body
	_, err = classify(500, jsonHeader, []byte(`"boom"`), op)
	require.Error(t, err)
	assert.Equal(t, "boom", err.(*ClientError).Response.RawError)

	// Empty body
	_, err = classify(204, http.Header{}, nil, op)
	require.Error(t, err)
	assert.Equal(t, "", err.(*ClientError).Response.RawError)
	assert.Equal(t, 204, err.(*ClientError).Response.Status)
}
