package decode

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Gzip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(`{"data":{"ok":true}}`))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := Decode(io.NopCloser(&buf), "gzip")
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"ok":true}}`, string(out))
	assert.NoError(t, r.Close())
}

func TestDecode_Brotli(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := Decode(io.NopCloser(&buf), "BR")
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "plain text", string(out))
}

func TestDecode_Identity(t *testing.T) {
	t.Parallel()

	body := io.NopCloser(bytes.NewReader([]byte("abc")))
	r, err := Decode(body, "")
	require.NoError(t, err)
	assert.Equal(t, body, r)
}

func TestDecode_InvalidGzip(t *testing.T) {
	t.Parallel()

	_, err := Decode(io.NopCloser(bytes.NewReader([]byte("not gzip"))), "gzip")
	assert.ErrorContains(t, err, "cannot decode gzip")
}
