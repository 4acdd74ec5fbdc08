// Package slack posts execution events to a workspace's connected Slack
// channel and manages the per-workspace integration: OAuth exchange,
// channel selection and the stored bot token.
package slack

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	slackapi "github.com/slack-go/slack"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/runwayhq/runway/internal/broadcast"
	"github.com/runwayhq/runway/internal/config"
	"github.com/runwayhq/runway/internal/errs"
	"github.com/runwayhq/runway/internal/models"
	"github.com/runwayhq/runway/internal/workspace"
)

// Scopes the bot needs: post to channels, list them, and join the
// selected one so posting works without a manual invite.
var oauthScopes = []string{"chat:write", "channels:read", "channels:join", "groups:read"}

var slackEndpoint = oauth2.Endpoint{
	AuthURL:  "https://slack.com/oauth/v2/authorize",
	TokenURL: "https://slack.com/api/oauth.v2.access",
}

// client abstracts the Slack API methods we use, enabling test mocks.
type client interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
	JoinConversationContext(ctx context.Context, channelID string) (*slackapi.Channel, string, []string, error)
	GetConversationsContext(ctx context.Context, params *slackapi.GetConversationsParameters) ([]slackapi.Channel, string, error)
}

// newClient builds a client from a bot token. Swapped out in tests.
var newClient = func(botToken string) client {
	return slackapi.New(botToken)
}

// OAuth drives the Slack app install flow for a workspace.
type OAuth struct {
	conf *oauth2.Config
}

// NewOAuth builds the OAuth flow from config. RedirectBase is the
// public base URL of this server.
func NewOAuth(cfg config.SlackConfig) *OAuth {
	return &OAuth{conf: &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     slackEndpoint,
		RedirectURL:  cfg.RedirectBase + "/api/slack/callback",
		Scopes:       oauthScopes,
	}}
}

// AuthorizeURL returns the Slack consent URL. State must be an opaque
// value the callback can verify.
func (o *OAuth) AuthorizeURL(state string) string {
	return o.conf.AuthCodeURL(state)
}

// Exchange swaps the callback code for a bot token and team identity.
func (o *OAuth) Exchange(ctx context.Context, code string) (botToken, teamID, teamName string, err error) {
	tok, err := o.conf.Exchange(ctx, code)
	if err != nil {
		return "", "", "", fmt.Errorf("slack: oauth exchange: %w", err)
	}
	if team, ok := tok.Extra("team").(map[string]interface{}); ok {
		teamID, _ = team["id"].(string)
		teamName, _ = team["name"].(string)
	}
	return tok.AccessToken, teamID, teamName, nil
}

// ListChannels returns the channels the bot token can see, for the
// channel picker.
func ListChannels(ctx context.Context, botToken string) ([]slackapi.Channel, error) {
	channels, _, err := newClient(botToken).GetConversationsContext(ctx, &slackapi.GetConversationsParameters{
		Types: []string{"public_channel", "private_channel"},
		Limit: 200,
	})
	if err != nil {
		return nil, fmt.Errorf("slack: list channels: %w", err)
	}
	return channels, nil
}

// SaveOpts holds parameters for connecting a workspace to Slack.
type SaveOpts struct {
	WorkspaceID string
	BotToken    string
	TeamID      string
	ChannelID   string
	ChannelName string
	ActorID     string
}

// Save stores (or replaces) a workspace's Slack integration and joins
// the selected channel so the bot can post. Founder only.
func Save(ctx context.Context, db *gorm.DB, opts SaveOpts) (*models.Integration, error) {
	if err := workspace.RequireRole(db, opts.WorkspaceID, opts.ActorID, models.RoleFounder); err != nil {
		return nil, err
	}
	if opts.BotToken == "" || opts.ChannelID == "" {
		return nil, fmt.Errorf("slack: bot token and channel are required: %w", errs.ErrValidation)
	}

	// Join failures are tolerated: private channels need a manual invite.
	if _, _, _, err := newClient(opts.BotToken).JoinConversationContext(ctx, opts.ChannelID); err != nil {
		log.Printf("slack: join channel %s: %v", opts.ChannelID, err)
	}

	id, err := models.NewID("int")
	if err != nil {
		return nil, err
	}
	integration := models.Integration{
		ID:          id,
		WorkspaceID: opts.WorkspaceID,
		Type:        "slack",
		SlackTeamID: opts.TeamID,
		ChannelID:   opts.ChannelID,
		ChannelName: opts.ChannelName,
		BotToken:    opts.BotToken,
		ConnectedAt: time.Now(),
		CreatedBy:   opts.ActorID,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workspace_id = ? AND type = ?", opts.WorkspaceID, "slack").
			Delete(&models.Integration{}).Error; err != nil {
			return fmt.Errorf("slack: replace integration: %w", err)
		}
		if err := tx.Create(&integration).Error; err != nil {
			return fmt.Errorf("slack: save integration: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &integration, nil
}

// Disconnect removes a workspace's Slack integration. Founder only.
func Disconnect(db *gorm.DB, workspaceID, actorID string) error {
	if err := workspace.RequireRole(db, workspaceID, actorID, models.RoleFounder); err != nil {
		return err
	}
	if err := db.Where("workspace_id = ? AND type = ?", workspaceID, "slack").
		Delete(&models.Integration{}).Error; err != nil {
		return fmt.Errorf("slack: disconnect: %w", err)
	}
	return nil
}

// IntegrationFor returns a workspace's Slack integration, or nil when
// the workspace is not connected.
func IntegrationFor(db *gorm.DB, workspaceID string) (*models.Integration, error) {
	var integration models.Integration
	err := db.Where("workspace_id = ? AND type = ?", workspaceID, "slack").
		First(&integration).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("slack: integration for %s: %w", workspaceID, err)
	}
	return &integration, nil
}

// Poster posts events through the target workspace's integration.
// Workspaces without one are skipped silently.
type Poster struct {
	db *gorm.DB
}

// NewPoster creates a Slack poster over the integrations table.
func NewPoster(db *gorm.DB) *Poster {
	return &Poster{db: db}
}

func (p *Poster) Name() string { return "slack" }

func (p *Poster) Post(ctx context.Context, e broadcast.Event) error {
	integration, err := IntegrationFor(p.db, e.WorkspaceID)
	if err != nil {
		return err
	}
	if integration == nil {
		return nil
	}

	text := broadcast.Message(e)
	if text == "" {
		return nil
	}
	attachment := slackapi.Attachment{
		Text:     text,
		Color:    broadcast.Color(e),
		Fallback: text,
	}

	_, _, err = newClient(integration.BotToken).PostMessageContext(ctx, integration.ChannelID,
		slackapi.MsgOptionAttachments(attachment))
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}
