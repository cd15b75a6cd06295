// Package discord implements the notify.Notifier for Discord.
package discord

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/zulandar/carscout/internal/notify"
)

// session abstracts the discordgo.Session methods we use, enabling test mocks.
type session interface {
	Open() error
	Close() error
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// realSession wraps *discordgo.Session to implement the session interface.
type realSession struct {
	s *discordgo.Session
}

func (r *realSession) Open() error  { return r.s.Open() }
func (r *realSession) Close() error { return r.s.Close() }
func (r *realSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return r.s.ChannelMessageSendEmbed(channelID, embed, options...)
}

// Notifier posts events to a Discord channel.
type Notifier struct {
	sess      session
	channelID string
	mu        sync.Mutex
	opened    bool
	closed    bool
}

// Opts holds parameters for creating a Discord Notifier.
type Opts struct {
	BotToken  string
	ChannelID string
	// For testing: inject a mock session instead of the real Discord API.
	Session session
}

// New creates a Discord Notifier.
func New(opts Opts) (*Notifier, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("discord: channel id is required")
	}

	n := &Notifier{channelID: opts.ChannelID}
	if opts.Session != nil {
		n.sess = opts.Session
	} else {
		s, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("discord: create session: %w", err)
		}
		n.sess = &realSession{s: s}
	}
	return n, nil
}

// Send delivers one event as an embed.
func (n *Notifier) Send(ctx context.Context, e notify.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("discord: send: %w", err)
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return fmt.Errorf("discord: notifier closed")
	}
	if !n.opened {
		if err := n.sess.Open(); err != nil {
			n.mu.Unlock()
			return fmt.Errorf("discord: open session: %w", err)
		}
		n.opened = true
	}
	n.mu.Unlock()

	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Body,
		Color:       colorInt(notify.SeverityColor(e.Severity)),
	}
	for _, f := range e.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: true,
		})
	}

	if _, err := n.sess.ChannelMessageSendEmbed(n.channelID, embed); err != nil {
		return fmt.Errorf("discord: send embed: %w", err)
	}
	return nil
}

// Close shuts down the underlying session.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	if !n.opened {
		return nil
	}
	if err := n.sess.Close(); err != nil {
		return fmt.Errorf("discord: close: %w", err)
	}
	return nil
}

// colorInt converts a "#rrggbb" hint to the int Discord expects.
func colorInt(hex string) int {
	if len(hex) != 7 || hex[0] != '#' {
		return 0
	}
	v, err := strconv.ParseInt(hex[1:], 16, 32)
	if err != nil {
		return 0
	}
	return int(v)
}
