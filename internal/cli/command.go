// Package cli implements the gqlreq command, it sends one GraphQL operation and prints the result.
package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/keboola/go-graphql-client/pkg/client"
	"github.com/keboola/go-graphql-client/pkg/client/trace"
	"github.com/keboola/go-graphql-client/pkg/graphql"
)

// Dependencies of the command, replaceable in tests.
type Dependencies struct {
	Transport http.RoundTripper
	LookupEnv func(key string) (string, bool)
}

type flags struct {
	url           string
	query         string
	queryFile     string
	variables     string
	variablesFile string
	headers       []string
	configFile    string
	envFile       string
	userAgent     string
	parse         bool
	retry         bool
	verbose       bool
	dump          bool
}

type output struct {
	Data       graphql.RawMessage `json:"data"`
	Extensions map[string]any     `json:"extensions,omitempty"`
}

// NewCommand creates the root command.
func NewCommand(d Dependencies) *cobra.Command {
	if d.Transport == nil {
		d.Transport = client.DefaultTransport()
	}
	if d.LookupEnv == nil {
		d.LookupEnv = os.LookupEnv
	}

	f := &flags{}
	cmd := &cobra.Command{
		Use:           "gqlreq",
		Short:         "Send a GraphQL operation and print the result",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, d, f)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.url, "url", "u", "", "GraphQL endpoint URL, env "+EnvEndpoint)
	fs.StringVarP(&f.query, "query", "q", "", "GraphQL document")
	fs.StringVar(&f.queryFile, "query-file", "", "path to a file with the GraphQL document")
	fs.StringVar(&f.variables, "variables", "", "variables as a JSON object")
	fs.StringVar(&f.variablesFile, "variables-file", "", "path to a JSON file with variables")
	fs.StringArrayVarP(&f.headers, "header", "H", nil, `request header "Name: value", can be repeated`)
	fs.StringVarP(&f.configFile, "config", "c", "", "path to a YAML config file")
	fs.StringVar(&f.envFile, "env-file", "", "path to a .env file")
	fs.StringVar(&f.userAgent, "user-agent", "", "User-Agent header")
	fs.BoolVar(&f.parse, "parse", false, "parse and format the document before sending")
	fs.BoolVar(&f.retry, "retry", false, "retry network errors and retryable status codes")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log each request step to stderr")
	fs.BoolVar(&f.dump, "dump", false, "dump each request and response to stderr")
	cmd.MarkFlagsMutuallyExclusive("query", "query-file")
	cmd.MarkFlagsMutuallyExclusive("variables", "variables-file")

	return cmd
}

func run(cmd *cobra.Command, d Dependencies, f *flags) error {
	// Configuration sources
	env, err := LoadEnv(f.envFile, d.LookupEnv)
	if err != nil {
		return err
	}
	var cfg Config
	if f.configFile != "" {
		if cfg, err = LoadConfig(f.configFile); err != nil {
			return err
		}
	}

	endpoint := firstNonEmpty(f.url, env.Get(EnvEndpoint), cfg.Endpoint)
	if endpoint == "" {
		return fmt.Errorf(`endpoint is not set, use the --url flag, the %s env or the config file`, EnvEndpoint)
	}

	document, err := loadDocument(f)
	if err != nil {
		return err
	}

	variables, err := loadVariables(f)
	if err != nil {
		return err
	}

	header := make(http.Header)
	for k, v := range cfg.Headers {
		header.Set(k, v)
	}
	for _, raw := range f.headers {
		k, v, err := parseHeader(raw)
		if err != nil {
			return err
		}
		header.Set(k, v)
	}

	// Transport
	sender := client.New().WithTransport(d.Transport)
	if userAgent := firstNonEmpty(f.userAgent, cfg.UserAgent); userAgent != "" {
		sender = sender.WithUserAgent(userAgent)
	}
	if token := firstNonEmpty(env.Get(EnvToken), cfg.Token); token != "" {
		sender = sender.WithOAuth2(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	if f.retry || cfg.Retry {
		sender = sender.WithRetry(client.DefaultRetry())
	}
	if f.verbose {
		sender = sender.AndTrace(trace.LogTracer(cmd.ErrOrStderr()))
	}
	if f.dump {
		sender = sender.AndTrace(trace.DumpTracer(cmd.ErrOrStderr()))
	}

	// Send
	c := graphql.New(endpoint, graphql.WithSender(sender), graphql.WithHeaders(graphql.HTTPHeader(header)))
	res, err := c.RawRequest(cmd.Context(), graphql.ResolveDocument(document), variables, nil)
	if err != nil {
		var clientErr *graphql.ClientError
		if errors.As(err, &clientErr) {
			if writeErr := writeJSON(cmd.OutOrStdout(), clientErr.Response); writeErr != nil {
				return writeErr
			}
			return fmt.Errorf("GraphQL request failed: %s", clientErr.Message())
		}
		return err
	}
	return writeJSON(cmd.OutOrStdout(), output{Data: res.Data, Extensions: res.Extensions})
}

func loadDocument(f *flags) (graphql.Document, error) {
	query := f.query
	if f.queryFile != "" {
		content, err := os.ReadFile(f.queryFile)
		if err != nil {
			return nil, fmt.Errorf(`cannot read query file "%s": %w`, f.queryFile, err)
		}
		query = string(content)
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is not set, use the --query or the --query-file flag")
	}
	if f.parse {
		return graphql.Parse(query)
	}
	return graphql.Query(query), nil
}

func loadVariables(f *flags) (map[string]any, error) {
	raw := []byte(f.variables)
	if f.variablesFile != "" {
		content, err := os.ReadFile(f.variablesFile)
		if err != nil {
			return nil, fmt.Errorf(`cannot read variables file "%s": %w`, f.variablesFile, err)
		}
		raw = content
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var variables map[string]any
	if err := json.Unmarshal(raw, &variables); err != nil {
		return nil, fmt.Errorf("variables must be a JSON object: %w", err)
	}
	return variables, nil
}

func parseHeader(raw string) (string, string, error) {
	k, v, found := strings.Cut(raw, ":")
	k = strings.TrimSpace(k)
	if !found || k == "" {
		return "", "", fmt.Errorf(`invalid header "%s", expected "Name: value"`, raw)
	}
	return k, strings.TrimSpace(v), nil
}

func writeJSON(wr io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(wr, string(out))
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
