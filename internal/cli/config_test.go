package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint: https://example.com/graphql
token: my-token
user_agent: my-agent
retry: true
headers:
  X-Foo: bar
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Endpoint:  "https://example.com/graphql",
		Token:     "my-token",
		UserAgent: "my-agent",
		Headers:   map[string]string{"X-Foo": "bar"},
		Retry:     true,
	}, cfg)
}

func TestLoadConfig_Empty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read config file")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("unknown: value\n"), 0o600))
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field unknown not found")
}

func TestLoadEnv(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GRAPHQL_ENDPOINT=https://file.example.com\nGRAPHQL_TOKEN=file-token\n"), 0o600))

	lookup := func(key string) (string, bool) {
		if key == EnvToken {
			return "process-token", true
		}
		return "", false
	}

	env, err := LoadEnv(path, lookup)
	require.NoError(t, err)
	assert.Equal(t, "https://file.example.com", env.Get(EnvEndpoint))
	assert.Equal(t, "process-token", env.Get(EnvToken))
	assert.Equal(t, "", env.Get("OTHER"))

	_, err = LoadEnv(filepath.Join(t.TempDir(), "missing.env"), lookup)
	require.Error(t, err)
}

func TestParseHeader(t *testing.T) {
	t.Parallel()

	k, v, err := parseHeader("X-Foo:  bar: baz ")
	require.NoError(t, err)
	assert.Equal(t, "X-Foo", k)
	assert.Equal(t, "bar: baz", v)

	_, _, err = parseHeader("X-Foo")
	assert.Error(t, err)
	_, _, err = parseHeader(": value")
	assert.Error(t, err)
}
