package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// SlackNotifier delivers notifications to Slack channels mapped per
// notification type. Authority and affected-user notifications posted here
// reach the teams that own the outbound communication, not the external
// recipients themselves.
type SlackNotifier struct {
	api      *slack.Client
	channels map[types.NotificationType]string
	fallback string
}

var _ interfaces.Notifier = &SlackNotifier{}

// Option is a functional option for SlackNotifier configuration
type Option func(*SlackNotifier)

// WithChannel routes a notification type to a specific channel ID
func WithChannel(t types.NotificationType, channelID string) Option {
	return func(n *SlackNotifier) {
		n.channels[t] = channelID
	}
}

// NewSlack creates a Slack-backed notifier. fallbackChannel receives any
// notification type without an explicit mapping.
func NewSlack(token, fallbackChannel string, opts ...Option) (*SlackNotifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if fallbackChannel == "" {
		return nil, goerr.New("Slack fallback channel is required")
	}

	n := &SlackNotifier{
		api:      slack.New(token),
		channels: make(map[types.NotificationType]string),
		fallback: fallbackChannel,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Send posts the rendered notification to the channel mapped for the type
func (n *SlackNotifier) Send(ctx context.Context, channel types.NotificationType, recipients []string, subject, body string) error {
	target, ok := n.channels[channel]
	if !ok {
		target = n.fallback
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, subject, false, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, body, false, false), nil, nil),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("audience: %s | recipients: %d", channel, len(recipients)), false, false)),
	}

	_, _, err := n.api.PostMessageContext(ctx, target,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(subject, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post Slack message",
			goerr.V("channel", target), goerr.V("type", channel))
	}
	return nil
}
