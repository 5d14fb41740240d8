// Package discord adapts the notification pipeline and the command surface
// to the Discord API via discordgo.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/lgarnier/fleetwatch/app/notify"
)

var _ notify.Platform = (*Client)(nil)

// Client wraps a discordgo session and exposes it as the chat platform the
// dispatcher sends through.
type Client struct {
	session *discordgo.Session
}

func NewClient(token string) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	return &Client{session: session}, nil
}

// Session exposes the underlying session for command wiring.
func (c *Client) Session() *discordgo.Session {
	return c.session
}

// Open connects the websocket gateway.
func (c *Client) Open() error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.session.Close()
}

func (c *Client) SendToChannel(ctx context.Context, channelID, content string, embed *notify.Embed) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Embeds:  []*discordgo.MessageEmbed{toMessageEmbed(embed)},
	})
	if err != nil {
		return fmt.Errorf("failed to send channel message: %w", err)
	}
	return nil
}

func (c *Client) SendDirectMessage(ctx context.Context, userID string, embed *notify.Embed) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	channel, err := c.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}

	if _, err := c.session.ChannelMessageSendEmbed(channel.ID, toMessageEmbed(embed)); err != nil {
		return fmt.Errorf("failed to send direct message: %w", err)
	}
	return nil
}
