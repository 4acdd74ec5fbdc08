// Package validation logs qualitative evidence: interviews, surveys and
// experiments recorded by the team, plus anonymous submissions through a
// workspace's public validation link. Entries are immutable once logged.
package validation

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/runwayhq/runway/internal/errs"
	"github.com/runwayhq/runway/internal/models"
	"github.com/runwayhq/runway/internal/workspace"
)

// listCap bounds validation reads per workspace.
const listCap = 100

var validTypes = map[string]bool{
	models.ValidationInterview:  true,
	models.ValidationSurvey:     true,
	models.ValidationExperiment: true,
}

var validSourceTypes = map[string]bool{
	models.SourceCustomer:          true,
	models.SourcePotentialCustomer: true,
	models.SourceInvestor:          true,
	models.SourceTeamMember:        true,
	models.SourceOther:             true,
}

// LogOpts holds parameters for an internal validation entry.
type LogOpts struct {
	WorkspaceID      string
	SprintID         string // optional
	MilestoneID      string // optional
	Type             string
	Summary          string
	QualitativeNotes string
	ActorID          string
}

// ExternalOpts holds parameters for a public, unauthenticated
// submission through a workspace's validation link.
type ExternalOpts struct {
	WorkspaceID     string
	SourceType      string
	FeedbackText    string
	ConfidenceScore int // 1-5; 0 = not given
}

// Log records an internal validation entry. Founders and team members.
func Log(db *gorm.DB, opts LogOpts) (*models.ValidationEntry, error) {
	if err := workspace.RequireRole(db, opts.WorkspaceID, opts.ActorID, models.RoleFounder, models.RoleTeamMember); err != nil {
		return nil, err
	}
	if !validTypes[opts.Type] {
		return nil, fmt.Errorf("validation: unknown type %q: %w", opts.Type, errs.ErrValidation)
	}
	if opts.Summary == "" {
		return nil, fmt.Errorf("validation: summary is required: %w", errs.ErrValidation)
	}

	id, err := models.NewID("val")
	if err != nil {
		return nil, err
	}
	e := models.ValidationEntry{
		ID:               id,
		WorkspaceID:      opts.WorkspaceID,
		Type:             opts.Type,
		Summary:          opts.Summary,
		QualitativeNotes: opts.QualitativeNotes,
		CreatedBy:        &opts.ActorID,
		Origin:           models.OriginInternal,
	}
	if opts.SprintID != "" {
		e.SprintID = &opts.SprintID
	}
	if opts.MilestoneID != "" {
		e.MilestoneID = &opts.MilestoneID
	}

	if err := db.Create(&e).Error; err != nil {
		return nil, fmt.Errorf("validation: log: %w", err)
	}
	return &e, nil
}

// SubmitExternal records an anonymous submission. No authentication: the
// workspace only needs to exist. The entry is typed as an interview with
// the respondent's own words as notes.
func SubmitExternal(db *gorm.DB, opts ExternalOpts) (*models.ValidationEntry, error) {
	if _, err := workspace.Get(db, opts.WorkspaceID); err != nil {
		return nil, err
	}
	if !validSourceTypes[opts.SourceType] {
		return nil, fmt.Errorf("validation: unknown source type %q: %w", opts.SourceType, errs.ErrValidation)
	}
	if opts.FeedbackText == "" {
		return nil, fmt.Errorf("validation: feedback text is required: %w", errs.ErrValidation)
	}
	if opts.ConfidenceScore != 0 && (opts.ConfidenceScore < 1 || opts.ConfidenceScore > 5) {
		return nil, fmt.Errorf("validation: confidence must be 1-5: %w", errs.ErrValidation)
	}

	id, err := models.NewID("val")
	if err != nil {
		return nil, err
	}
	e := models.ValidationEntry{
		ID:           id,
		WorkspaceID:  opts.WorkspaceID,
		Type:         models.ValidationInterview,
		Summary:      fmt.Sprintf("External feedback from %s", opts.SourceType),
		Origin:       models.OriginExternalLink,
		SourceType:   &opts.SourceType,
		FeedbackText: &opts.FeedbackText,
	}
	if opts.ConfidenceScore != 0 {
		e.ConfidenceScore = &opts.ConfidenceScore
	}

	if err := db.Create(&e).Error; err != nil {
		return nil, fmt.Errorf("validation: submit external: %w", err)
	}
	return &e, nil
}

// List returns a workspace's entries newest-first, capped at 100.
func List(db *gorm.DB, workspaceID string) ([]models.ValidationEntry, error) {
	var entries []models.ValidationEntry
	err := db.Where("workspace_id = ?", workspaceID).
		Order("created_at DESC, id DESC").
		Limit(listCap).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("validation: list for %s: %w", workspaceID, err)
	}
	return entries, nil
}
