package main

import (
	"github.com/zulandar/consuntivo/internal/config"
	"github.com/zulandar/consuntivo/internal/notify"
	"github.com/zulandar/consuntivo/internal/notify/discord"
	"github.com/zulandar/consuntivo/internal/notify/slack"
)

// buildNotifier returns a fanout over every enabled channel. The fanout is
// empty when no channel is configured.
func buildNotifier(cfg config.NotifyConfig) (notify.Fanout, error) {
	var out notify.Fanout
	if cfg.Slack.Enabled() {
		n, err := slack.New(slack.Opts{BotToken: cfg.Slack.BotToken, ChannelID: cfg.Slack.ChannelID})
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if cfg.Discord.Enabled() {
		n, err := discord.New(discord.Opts{BotToken: cfg.Discord.BotToken, ChannelID: cfg.Discord.ChannelID})
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
