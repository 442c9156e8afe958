package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for the save notifier
type Slack struct {
	botToken  string
	channelID string
	baseURL   string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token",
			Category:    "Slack",
			Sources:     cli.EnvVars("GRC_RISK_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel receiving risk save notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("GRC_RISK_SLACK_CHANNEL_ID"),
			Destination: &x.channelID,
		},
		&cli.StringFlag{
			Name:        "slack-link-base-url",
			Usage:       "Base URL used to link risks in notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("GRC_RISK_SLACK_LINK_BASE_URL"),
			Destination: &x.baseURL,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("bot_token_set", x.botToken != ""),
		slog.String("channel_id", x.channelID),
		slog.String("link_base_url", x.baseURL),
	)
}

// IsEnabled reports whether notifications are configured
func (x *Slack) IsEnabled() bool {
	return x.botToken != "" || x.channelID != ""
}

// Configure returns a notifier, or nil when Slack is not configured
func (x *Slack) Configure() (*slack.Notifier, error) {
	if !x.IsEnabled() {
		return nil, nil
	}
	if x.botToken == "" || x.channelID == "" {
		return nil, goerr.Wrap(ErrInvalidConfig, "both slack-bot-token and slack-channel-id are required")
	}

	var opts []slack.Option
	if x.baseURL != "" {
		opts = append(opts, slack.WithBaseURL(x.baseURL))
	}
	n, err := slack.New(x.botToken, x.channelID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create slack notifier")
	}
	return n, nil
}
