package models

import "time"

// Integration connects a workspace to an external broadcast channel.
// Slack is the only per-workspace type; the bot token is server-only and
// must never be serialized to API responses.
type Integration struct {
	ID          string `gorm:"primaryKey;size:32"`
	WorkspaceID string `gorm:"size:32;index"`
	Type        string `gorm:"size:16;default:slack"`
	SlackTeamID string `gorm:"size:32"`
	ChannelID   string `gorm:"size:32"`
	ChannelName string `gorm:"size:255"`
	BotToken    string `gorm:"size:255" json:"-"`
	ConnectedAt time.Time
	CreatedBy   string `gorm:"size:32"`
}
