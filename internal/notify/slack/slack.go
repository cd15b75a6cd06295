// Package slack implements the notify.Notifier for Slack via the Web API.
package slack

import (
	"context"
	"fmt"
	"sync"

	slackapi "github.com/slack-go/slack"
	"github.com/zulandar/carscout/internal/notify"
)

// client abstracts the Slack API methods we use, enabling test mocks.
type client interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Notifier posts events to a Slack channel.
type Notifier struct {
	client    client
	channelID string
	mu        sync.Mutex
	closed    bool
}

// Opts holds parameters for creating a Slack Notifier.
type Opts struct {
	BotToken  string
	ChannelID string
	// For testing: inject a mock client instead of the real Slack API.
	Client client
}

// New creates a Slack Notifier.
func New(opts Opts) (*Notifier, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("slack: channel id is required")
	}

	n := &Notifier{channelID: opts.ChannelID}
	if opts.Client != nil {
		n.client = opts.Client
	} else {
		n.client = slackapi.New(opts.BotToken)
	}
	return n, nil
}

// Send delivers one event as an attachment.
func (n *Notifier) Send(ctx context.Context, e notify.Event) error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return fmt.Errorf("slack: notifier closed")
	}
	n.mu.Unlock()

	attachment := slackapi.Attachment{
		Title: e.Title,
		Text:  e.Body,
		Color: notify.SeverityColor(e.Severity),
	}
	for _, f := range e.Fields {
		attachment.Fields = append(attachment.Fields, slackapi.AttachmentField{
			Title: f.Name,
			Value: f.Value,
			Short: true,
		})
	}

	_, _, err := n.client.PostMessageContext(ctx, n.channelID,
		slackapi.MsgOptionAttachments(attachment))
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}

// Close marks the notifier closed. The Web API client holds no connection.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	return nil
}
