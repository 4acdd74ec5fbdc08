package models

import "time"

// Workspace roles, in decreasing order of write access.
const (
	RoleFounder    = "founder"
	RoleTeamMember = "team_member"
	RoleInvestor   = "investor"
	// RoleNone is returned for users with no membership at all.
	RoleNone = "none"
)

// Workspace stages.
const (
	StageIdea          = "Idea"
	StageMVP           = "MVP"
	StageEarlyTraction = "Early Traction"
)

// Workspace is the top-level tenant: one startup's data lives under it.
type Workspace struct {
	ID        string `gorm:"primaryKey;size:32"`
	Name      string `gorm:"not null"`
	Stage     string `gorm:"size:32;default:Idea"`
	CreatedBy string `gorm:"size:32;index"`
	CreatedAt time.Time

	Members []WorkspaceMember `gorm:"foreignKey:WorkspaceID"`
}

// WorkspaceMember binds a user to a workspace with a role.
type WorkspaceMember struct {
	WorkspaceID string `gorm:"primaryKey;size:32"`
	UserID      string `gorm:"primaryKey;size:32"`
	Role        string `gorm:"size:16;not null"`
	JoinedAt    time.Time
}

// WorkspaceInvite is a one-time join link token. No email delivery;
// the founder shares the link out of band.
type WorkspaceInvite struct {
	ID          string `gorm:"primaryKey;size:32"`
	WorkspaceID string `gorm:"size:32;index"`
	Role        string `gorm:"size:16;not null"`
	Token       string `gorm:"size:64;uniqueIndex"`
	CreatedBy   string `gorm:"size:32"`
	CreatedAt   time.Time
	ExpiresAt   *time.Time
	Used        bool `gorm:"default:false"`
	UsedBy      *string
	UsedAt      *time.Time
}
