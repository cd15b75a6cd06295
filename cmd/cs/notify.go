package main

import (
	"github.com/zulandar/carscout/internal/config"
	"github.com/zulandar/carscout/internal/notify"
	"github.com/zulandar/carscout/internal/notify/discord"
	"github.com/zulandar/carscout/internal/notify/slack"
)

// buildNotifier constructs the configured chat notifier, or a no-op when no
// platform is set.
func buildNotifier(cfg *config.Config) (notify.Notifier, error) {
	switch cfg.Notify.Platform {
	case "discord":
		return discord.New(discord.Opts{
			BotToken:  cfg.Notify.BotToken,
			ChannelID: cfg.Notify.ChannelID,
		})
	case "slack":
		return slack.New(slack.Opts{
			BotToken:  cfg.Notify.BotToken,
			ChannelID: cfg.Notify.ChannelID,
		})
	default:
		return notify.Nop{}, nil
	}
}
