package config

import (
	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/types"
	"github.com/privsec-lab/custodian/pkg/service/notify"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for Slack notification configuration
type Slack struct {
	botToken          string
	fallbackChannel   string
	authorityChannel  string
	individualChannel string
	internalChannel   string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for notification delivery",
			Category:    "Slack",
			Sources:     cli.EnvVars("CUSTODIAN_SLACK_BOT_TOKEN"),
			Destination: &s.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Fallback Slack channel ID for notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("CUSTODIAN_SLACK_CHANNEL"),
			Destination: &s.fallbackChannel,
		},
		&cli.StringFlag{
			Name:        "slack-channel-authority",
			Usage:       "Slack channel ID for authority notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("CUSTODIAN_SLACK_CHANNEL_AUTHORITY"),
			Destination: &s.authorityChannel,
		},
		&cli.StringFlag{
			Name:        "slack-channel-individual",
			Usage:       "Slack channel ID for affected-user notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("CUSTODIAN_SLACK_CHANNEL_INDIVIDUAL"),
			Destination: &s.individualChannel,
		},
		&cli.StringFlag{
			Name:        "slack-channel-internal",
			Usage:       "Slack channel ID for internal alerts",
			Category:    "Slack",
			Sources:     cli.EnvVars("CUSTODIAN_SLACK_CHANNEL_INTERNAL"),
			Destination: &s.internalChannel,
		},
	}
}

// IsConfigured reports whether Slack delivery can be enabled
func (s *Slack) IsConfigured() bool {
	return s.botToken != "" && s.fallbackChannel != ""
}

// Configure builds the Slack notifier, or returns nil when Slack is not
// configured. Without a notifier, notification sends fail as transport
// errors and stay pending.
func (s *Slack) Configure() (interfaces.Notifier, error) {
	if !s.IsConfigured() {
		return nil, nil
	}

	var opts []notify.Option
	if s.authorityChannel != "" {
		opts = append(opts, notify.WithChannel(types.NotificationAuthority, s.authorityChannel))
	}
	if s.individualChannel != "" {
		opts = append(opts, notify.WithChannel(types.NotificationAffectedUsers, s.individualChannel))
	}
	if s.internalChannel != "" {
		opts = append(opts, notify.WithChannel(types.NotificationInternal, s.internalChannel))
	}

	return notify.NewSlack(s.botToken, s.fallbackChannel, opts...)
}
