package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvEndpoint = "GRAPHQL_ENDPOINT"
	EnvToken    = "GRAPHQL_TOKEN"
)

// Config is the content of the YAML configuration file.
type Config struct {
	Endpoint  string            `yaml:"endpoint"`
	Token     string            `yaml:"token"`
	UserAgent string            `yaml:"user_agent"`
	Headers   map[string]string `yaml:"headers"`
	Retry     bool              `yaml:"retry"`
}

// LoadConfig reads the YAML configuration file, unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf(`cannot read config file "%s": %w`, path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf(`cannot decode config file "%s": %w`, path, err)
	}
	return cfg, nil
}

// Env resolves environment variables, the process environment takes precedence over the .env file.
type Env struct {
	lookup func(key string) (string, bool)
	file   map[string]string
}

// LoadEnv reads the .env file, if the path is not empty.
func LoadEnv(path string, lookup func(key string) (string, bool)) (Env, error) {
	env := Env{lookup: lookup}
	if path != "" {
		values, err := godotenv.Read(path)
		if err != nil {
			return env, fmt.Errorf(`cannot read env file "%s": %w`, path, err)
		}
		env.file = values
	}
	return env, nil
}

func (e Env) Get(key string) string {
	if e.lookup != nil {
		if v, ok := e.lookup(key); ok {
			return v
		}
	}
	return e.file[key]
}
