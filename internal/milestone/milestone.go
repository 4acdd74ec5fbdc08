// Package milestone manages strategy-level deliverables and their
// ordered task breakdown.
package milestone

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/runwayhq/runway/internal/errs"
	"github.com/runwayhq/runway/internal/models"
	"github.com/runwayhq/runway/internal/workspace"
)

var validStatuses = map[string]bool{
	models.MilestonePlanned:   true,
	models.MilestoneActive:    true,
	models.MilestoneCompleted: true,
}

// CreateOpts holds parameters for creating a milestone.
type CreateOpts struct {
	WorkspaceID string
	Title       string
	Description string
	ActorID     string
}

// UpdateOpts holds optional milestone field updates.
type UpdateOpts struct {
	Title              *string
	Description        *string
	Status             *string
	ProgressPercentage *int
	FundingCategory    *string
	SpendRangeMin      *int64
	SpendRangeMax      *int64
}

// Create appends a planned milestone to the workspace's list. Founder only.
func Create(db *gorm.DB, opts CreateOpts) (*models.Milestone, error) {
	if err := workspace.RequireRole(db, opts.WorkspaceID, opts.ActorID, models.RoleFounder); err != nil {
		return nil, err
	}
	if opts.Title == "" {
		return nil, fmt.Errorf("milestone: title is required: %w", errs.ErrValidation)
	}

	id, err := models.NewID("mls")
	if err != nil {
		return nil, err
	}

	m := models.Milestone{
		ID:          id,
		WorkspaceID: opts.WorkspaceID,
		Title:       opts.Title,
		Description: opts.Description,
		Status:      models.MilestonePlanned,
		TaskIDs:     []string{},
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var maxOrder int
		err := tx.Model(&models.Milestone{}).
			Where("workspace_id = ?", opts.WorkspaceID).
			Select("COALESCE(MAX(sort_order), -1)").
			Scan(&maxOrder).Error
		if err != nil {
			return fmt.Errorf("milestone: next order: %w", err)
		}
		m.Order = maxOrder + 1
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("milestone: create: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Get retrieves a milestone by ID.
func Get(db *gorm.DB, id string) (*models.Milestone, error) {
	var m models.Milestone
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("milestone: %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("milestone: get %s: %w", id, err)
	}
	return &m, nil
}

// ListForWorkspace returns a workspace's milestones in list order.
func ListForWorkspace(db *gorm.DB, workspaceID string) ([]models.Milestone, error) {
	var milestones []models.Milestone
	err := db.Where("workspace_id = ?", workspaceID).
		Order("sort_order ASC").
		Find(&milestones).Error
	if err != nil {
		return nil, fmt.Errorf("milestone: list for %s: %w", workspaceID, err)
	}
	return milestones, nil
}

// Update modifies milestone fields. Founder only. The second return
// value reports whether this update moved the milestone into completed,
// so the caller can fire a one-shot notification.
func Update(db *gorm.DB, milestoneID, actorID string, opts UpdateOpts) (*models.Milestone, bool, error) {
	m, err := Get(db, milestoneID)
	if err != nil {
		return nil, false, err
	}
	if err := workspace.RequireRole(db, m.WorkspaceID, actorID, models.RoleFounder); err != nil {
		return nil, false, err
	}

	updates := map[string]interface{}{}
	if opts.Title != nil {
		if *opts.Title == "" {
			return nil, false, fmt.Errorf("milestone: title cannot be empty: %w", errs.ErrValidation)
		}
		updates["title"] = *opts.Title
		m.Title = *opts.Title
	}
	if opts.Description != nil {
		updates["description"] = *opts.Description
		m.Description = *opts.Description
	}
	becameCompleted := false
	if opts.Status != nil {
		if !validStatuses[*opts.Status] {
			return nil, false, fmt.Errorf("milestone: unknown status %q: %w", *opts.Status, errs.ErrValidation)
		}
		becameCompleted = *opts.Status == models.MilestoneCompleted && m.Status != models.MilestoneCompleted
		updates["status"] = *opts.Status
		m.Status = *opts.Status
	}
	if opts.ProgressPercentage != nil {
		if *opts.ProgressPercentage < 0 || *opts.ProgressPercentage > 100 {
			return nil, false, fmt.Errorf("milestone: progress out of range: %w", errs.ErrValidation)
		}
		updates["progress_percentage"] = *opts.ProgressPercentage
		m.ProgressPercentage = *opts.ProgressPercentage
	}
	if opts.FundingCategory != nil {
		if *opts.FundingCategory == "" {
			updates["funding_category"] = nil
			m.FundingCategory = nil
		} else {
			if !models.ValidCategory(*opts.FundingCategory) {
				return nil, false, fmt.Errorf("milestone: unknown funding category %q: %w", *opts.FundingCategory, errs.ErrValidation)
			}
			updates["funding_category"] = *opts.FundingCategory
			m.FundingCategory = opts.FundingCategory
		}
	}
	if opts.SpendRangeMin != nil {
		updates["estimated_spend_range_min"] = *opts.SpendRangeMin
		m.EstimatedSpendRangeMin = opts.SpendRangeMin
	}
	if opts.SpendRangeMax != nil {
		updates["estimated_spend_range_max"] = *opts.SpendRangeMax
		m.EstimatedSpendRangeMax = opts.SpendRangeMax
	}
	if len(updates) == 0 {
		return m, false, nil
	}

	if err := db.Model(&models.Milestone{}).Where("id = ?", milestoneID).Updates(updates).Error; err != nil {
		return nil, false, fmt.Errorf("milestone: update %s: %w", milestoneID, err)
	}
	return m, becameCompleted, nil
}
