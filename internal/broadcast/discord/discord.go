// Package discord posts execution events to a single config-driven
// Discord channel through a global bot.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/runwayhq/runway/internal/broadcast"
	"github.com/runwayhq/runway/internal/config"
)

// session abstracts the discordgo.Session methods we use, enabling
// test mocks.
type session interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Poster posts events as embeds to the configured channel.
type Poster struct {
	sess      session
	channelID string
}

// NewPoster creates a Discord poster from config. The REST client needs
// no gateway connection for plain channel posts.
func NewPoster(cfg config.DiscordConfig) (*Poster, error) {
	if cfg.BotToken == "" || cfg.ChannelID == "" {
		return nil, fmt.Errorf("discord: bot token and channel are required")
	}
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	return &Poster{sess: dg, channelID: cfg.ChannelID}, nil
}

func (p *Poster) Name() string { return "discord" }

func (p *Poster) Post(ctx context.Context, e broadcast.Event) error {
	text := broadcast.Message(e)
	if text == "" {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Description: text,
		Color:       parseHexColor(broadcast.Color(e)),
	}
	_, err := p.sess.ChannelMessageSendEmbed(p.channelID, embed, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: send embed: %w", err)
	}
	return nil
}

// parseHexColor converts a hex color string (e.g. "#36a64f") to an int.
func parseHexColor(hex string) int {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	var color int
	for _, c := range hex {
		color <<= 4
		switch {
		case c >= '0' && c <= '9':
			color |= int(c - '0')
		case c >= 'a' && c <= 'f':
			color |= int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			color |= int(c-'A') + 10
		}
	}
	return color
}
