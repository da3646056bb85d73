package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// SlackNotifier posts milestones to a channel so the wider team sees
// interview progress without watching the terminal.
type SlackNotifier struct {
	api     *slack.Client
	channel string
}

// NewSlackNotifier builds a notifier for the given bot token and channel
// ID.
func NewSlackNotifier(token, channel string) (*SlackNotifier, error) {
	if token == "" {
		return nil, fmt.Errorf("notify: slack token is required")
	}
	if channel == "" {
		return nil, fmt.Errorf("notify: slack channel is required")
	}
	return &SlackNotifier{api: slack.New(token), channel: channel}, nil
}

// Notify posts the formatted event.
func (n *SlackNotifier) Notify(ctx context.Context, evt Event) error {
	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(Format(evt), false),
	)
	if err != nil {
		return fmt.Errorf("post slack message: %w", err)
	}
	return nil
}
