package models

import "time"

// Funding sources.
const (
	SourceAngel        = "Angel"
	SourceVC           = "VC"
	SourceGrant        = "Grant"
	SourceAccelerator  = "Accelerator"
	SourceBootstrapped = "Bootstrapped"
)

// Audit log entry types for the funding execution trail.
const (
	AuditFundingCreated       = "FUNDING_CREATED"
	AuditAllocationUpdated    = "ALLOCATION_UPDATED"
	AuditSpendLogged          = "SPEND_LOGGED"
	AuditFundedSprintComplete = "FUNDED_SPRINT_COMPLETED"
)

// FundingRound records capital raised (or committed) for a workspace.
type FundingRound struct {
	ID          string `gorm:"primaryKey;size:32"`
	WorkspaceID string `gorm:"size:32;index"`
	Name        string `gorm:"not null"`
	Amount      int64  `gorm:"not null"` // minor currency units
	Currency    string `gorm:"size:8;default:USD"`
	Source      string `gorm:"size:16;not null"`
	Date        time.Time
	Notes       *string `gorm:"type:text"`
	CreatedBy   string  `gorm:"size:32"`
	CreatedAt   time.Time
}

// FundingAllocation splits a round's amount across funding categories.
type FundingAllocation struct {
	ID              string `gorm:"primaryKey;size:32"`
	WorkspaceID     string `gorm:"size:32;index"`
	FundingRoundID  string `gorm:"size:32;index"`
	Category        string `gorm:"size:16;not null"`
	AllocatedAmount int64  `gorm:"not null"`
	CreatedAt       time.Time
}

// SpendLog records actual spend against a category, optionally linked
// to the round, sprint or milestone it served.
type SpendLog struct {
	ID                string  `gorm:"primaryKey;size:32"`
	WorkspaceID       string  `gorm:"size:32;index"`
	FundingRoundID    *string `gorm:"size:32"`
	Category          string  `gorm:"size:16;not null"`
	Amount            int64   `gorm:"not null"`
	Date              time.Time
	LinkedSprintID    *string `gorm:"size:32"`
	LinkedMilestoneID *string `gorm:"size:32"`
	Note              string  `gorm:"type:text"`
	CreatedBy         string  `gorm:"size:32"`
	CreatedAt         time.Time
}

// AuditLogEntry is an append-only trail of funding mutations.
type AuditLogEntry struct {
	ID          string `gorm:"primaryKey;size:32"`
	WorkspaceID string `gorm:"size:32;index"`
	Type        string `gorm:"size:32;not null"`
	EntityID    string `gorm:"size:32"`
	Summary     string `gorm:"type:text"`
	CreatedBy   string `gorm:"size:32"`
	CreatedAt   time.Time
}
