package models

import "time"

// Validation entry types.
const (
	ValidationInterview  = "interview"
	ValidationSurvey     = "survey"
	ValidationExperiment = "experiment"
)

// Validation origins.
const (
	OriginInternal     = "internal"
	OriginExternalLink = "external_link"
)

// Respondent source types for external-link submissions.
const (
	SourceCustomer          = "customer"
	SourcePotentialCustomer = "potential_customer"
	SourceInvestor          = "investor"
	SourceTeamMember        = "team_member"
	SourceOther             = "other"
)

// ValidationEntry is a piece of qualitative evidence: an interview,
// survey or experiment, logged by the team or submitted anonymously
// through a public validation link. External entries are immutable.
type ValidationEntry struct {
	ID               string  `gorm:"primaryKey;size:32"`
	WorkspaceID      string  `gorm:"size:32;index"`
	SprintID         *string `gorm:"size:32;index"`
	MilestoneID      *string `gorm:"size:32"`
	Type             string  `gorm:"size:16;not null"`
	Summary          string  `gorm:"type:text"`
	QualitativeNotes string  `gorm:"type:text"`
	CreatedBy        *string `gorm:"size:32"` // nil for anonymous external entries
	CreatedAt        time.Time
	Origin           string  `gorm:"size:16;default:internal"`
	SourceType       *string `gorm:"size:24"`
	FeedbackText     *string `gorm:"type:text"`
	ConfidenceScore  *int    // 1–5, external entries only
}
