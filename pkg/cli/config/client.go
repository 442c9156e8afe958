package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/service/ggrc"
	"github.com/urfave/cli/v3"
)

// Client holds CLI flags for the REST client used by the risk commands
type Client struct {
	baseURL string
	token   string `masq:"secret"`
	timeout time.Duration
}

func (x *Client) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "server",
			Usage:       "Base URL of the grc-risk server",
			Category:    "Client",
			Value:       "http://localhost:8080",
			Sources:     cli.EnvVars("GRC_RISK_SERVER"),
			Destination: &x.baseURL,
		},
		&cli.StringFlag{
			Name:        "token",
			Usage:       "Bearer token sent with every request",
			Category:    "Client",
			Sources:     cli.EnvVars("GRC_RISK_TOKEN"),
			Destination: &x.token,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Request timeout",
			Category:    "Client",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("GRC_RISK_CLIENT_TIMEOUT"),
			Destination: &x.timeout,
		},
	}
}

func (x Client) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("server", x.baseURL),
		slog.Bool("token_set", x.token != ""),
		slog.String("timeout", x.timeout.String()),
	)
}

// Configure builds the REST client
func (x *Client) Configure() (*ggrc.Client, error) {
	cfg := ggrc.DefaultHTTPConfig()
	if x.timeout > 0 {
		cfg.Timeout = x.timeout
	}

	opts := []ggrc.Option{ggrc.WithHTTPClient(ggrc.NewHTTPClient(cfg))}
	if x.token != "" {
		opts = append(opts, ggrc.WithToken(x.token))
	}

	c, err := ggrc.New(x.baseURL, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create client", goerr.V("server", x.baseURL))
	}
	return c, nil
}
