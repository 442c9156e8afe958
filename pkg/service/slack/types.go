package slack

import (
	"context"

	"github.com/slack-go/slack"
)

// Poster posts messages to a channel. *slack.Client satisfies it.
type Poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}
