package models

import "time"

// Milestone statuses.
const (
	MilestonePlanned   = "planned"
	MilestoneActive    = "active"
	MilestoneCompleted = "completed"
)

// Funding categories used on milestones, sprints, allocations and spend logs.
const (
	CategoryEngineering = "Engineering"
	CategoryMarketing   = "Marketing"
	CategoryHiring      = "Hiring"
	CategoryInfra       = "Infra"
	CategoryOps         = "Ops"
	CategoryCustom      = "Custom"
)

// ValidCategory reports whether c is a recognized funding category.
func ValidCategory(c string) bool {
	switch c {
	case CategoryEngineering, CategoryMarketing, CategoryHiring,
		CategoryInfra, CategoryOps, CategoryCustom:
		return true
	}
	return false
}

// Milestone is a strategy-level deliverable broken down into tasks.
type Milestone struct {
	ID                 string   `gorm:"primaryKey;size:32"`
	WorkspaceID        string   `gorm:"size:32;index"`
	Title              string   `gorm:"not null"`
	Description        string   `gorm:"type:text"`
	Status             string   `gorm:"size:16;default:planned"`
	ProgressPercentage int      `gorm:"default:0"`
	TaskIDs            []string `gorm:"serializer:json;type:json"`
	Order              int      `gorm:"column:sort_order;default:0"`
	CreatedAt          time.Time

	// Optional capital-to-execution mapping.
	FundingCategory        *string `gorm:"size:16"`
	EstimatedSpendRangeMin *int64
	EstimatedSpendRangeMax *int64
}
