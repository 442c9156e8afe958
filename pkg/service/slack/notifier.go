package slack

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/utils/async"
	"github.com/secmon-lab/grc-risk/pkg/utils/logging"
	"github.com/slack-go/slack"
)

// maxSectionBytes is the text limit of a section block
const maxSectionBytes = 3000

// Notifier posts a message to a channel whenever a risk is saved
type Notifier struct {
	poster  Poster
	channel string
	baseURL string
}

// Option is a functional option for Notifier configuration
type Option func(*Notifier)

// WithPoster replaces the Slack API client
func WithPoster(p Poster) Option {
	return func(n *Notifier) {
		n.poster = p
	}
}

// WithBaseURL sets the URL risk links in messages are built from
func WithBaseURL(url string) Option {
	return func(n *Notifier) {
		n.baseURL = strings.TrimRight(url, "/")
	}
}

// New creates a Notifier posting to channel with the provided bot token
func New(token, channel string, opts ...Option) (*Notifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channel == "" {
		return nil, goerr.New("Slack channel is required")
	}

	n := &Notifier{
		poster:  slack.New(token),
		channel: channel,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Attach subscribes the notifier to the refresh event of bus
func (n *Notifier) Attach(bus interfaces.EventBus) interfaces.Subscription {
	return bus.Subscribe(model.EventRefreshRelatedDocuments, n.handle)
}

func (n *Notifier) handle(ctx context.Context, ev model.Event) {
	if ev.Risk == nil {
		return
	}
	risk := ev.Risk.Copy()
	op := ev.Operation

	async.Dispatch(ctx, "slack-notify", func(ctx context.Context) error {
		return n.Notify(ctx, op, risk)
	})
}

// Notify posts a message describing the saved risk
func (n *Notifier) Notify(ctx context.Context, op model.Operation, risk *model.Risk) error {
	text, blocks := n.buildMessage(op, risk)

	_, ts, err := n.poster.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post Slack message", goerr.V("channel", n.channel), goerr.V(model.RiskIDKey, risk.ID))
	}

	logging.From(ctx).Debug("posted risk notification", "channel", n.channel, "ts", ts, "risk_id", risk.ID)
	return nil
}

func (n *Notifier) buildMessage(op model.Operation, risk *model.Risk) (string, []slack.Block) {
	verb := "updated"
	if op == model.OperationCreate {
		verb = "created"
	}

	title := risk.Title
	if n.baseURL != "" {
		title = fmt.Sprintf("<%s/api/risks/%d|%s>", n.baseURL, risk.ID, risk.Title)
	}
	text := fmt.Sprintf("Risk %s %s: %s", risk.Slug, verb, risk.Title)

	header := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Risk %s* %s", verb, title), false, false),
		[]*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, "*Code*\n"+risk.Slug, false, false),
			slack.NewTextBlockObject(slack.MarkdownType, "*Status*\n"+risk.Status.String(), false, false),
		},
		nil,
	)
	blocks := []slack.Block{header}

	if desc := strings.TrimSpace(risk.Description); desc != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, truncate(desc, maxSectionBytes), false, false),
			nil, nil,
		))
	}

	if risk.ReferenceURL != "" {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, "Reference: "+risk.ReferenceURL, false, false),
		))
	}

	return text, blocks
}

// truncate cuts s to at most maxBytes without splitting a UTF-8 sequence
func truncate(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	const ellipsis = "..."
	cut := maxBytes - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}
