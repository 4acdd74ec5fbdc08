// Package workspace provides tenant lifecycle and role resolution.
package workspace

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/runwayhq/runway/internal/errs"
	"github.com/runwayhq/runway/internal/models"
)

// CreateOpts holds parameters for creating a workspace.
type CreateOpts struct {
	Name      string
	Stage     string // Idea, MVP, Early Traction
	FounderID string
}

// UpdateOpts holds optional workspace field updates.
type UpdateOpts struct {
	Name  *string
	Stage *string
}

// validStages are the allowed workspace stages.
var validStages = map[string]bool{
	models.StageIdea:          true,
	models.StageMVP:           true,
	models.StageEarlyTraction: true,
}

// Create creates a workspace with the founder as its first member.
func Create(db *gorm.DB, opts CreateOpts) (*models.Workspace, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("workspace: name is required: %w", errs.ErrValidation)
	}
	if opts.Stage == "" {
		opts.Stage = models.StageIdea
	}
	if !validStages[opts.Stage] {
		return nil, fmt.Errorf("workspace: unknown stage %q: %w", opts.Stage, errs.ErrValidation)
	}
	if opts.FounderID == "" {
		return nil, fmt.Errorf("workspace: founder is required: %w", errs.ErrValidation)
	}

	id, err := models.NewID("ws")
	if err != nil {
		return nil, err
	}

	ws := models.Workspace{
		ID:        id,
		Name:      opts.Name,
		Stage:     opts.Stage,
		CreatedBy: opts.FounderID,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ws).Error; err != nil {
			return fmt.Errorf("workspace: create: %w", err)
		}
		member := models.WorkspaceMember{
			WorkspaceID: ws.ID,
			UserID:      opts.FounderID,
			Role:        models.RoleFounder,
			JoinedAt:    time.Now(),
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("workspace: add founder: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// Get retrieves a workspace with its members preloaded.
func Get(db *gorm.DB, id string) (*models.Workspace, error) {
	var ws models.Workspace
	if err := db.Preload("Members").First(&ws, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("workspace: %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("workspace: get %s: %w", id, err)
	}
	return &ws, nil
}

// ListForUser returns the workspaces the user is a member of, newest first.
func ListForUser(db *gorm.DB, userID string) ([]models.Workspace, error) {
	var out []models.Workspace
	err := db.
		Joins("JOIN workspace_members ON workspace_members.workspace_id = workspaces.id").
		Where("workspace_members.user_id = ?", userID).
		Order("workspaces.created_at DESC").
		Preload("Members").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("workspace: list for user %s: %w", userID, err)
	}
	return out, nil
}

// Update modifies workspace name/stage. Founder only.
func Update(db *gorm.DB, workspaceID, actorID string, opts UpdateOpts) error {
	if err := RequireRole(db, workspaceID, actorID, models.RoleFounder); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if opts.Name != nil {
		if *opts.Name == "" {
			return fmt.Errorf("workspace: name cannot be empty: %w", errs.ErrValidation)
		}
		updates["name"] = *opts.Name
	}
	if opts.Stage != nil {
		if !validStages[*opts.Stage] {
			return fmt.Errorf("workspace: unknown stage %q: %w", *opts.Stage, errs.ErrValidation)
		}
		updates["stage"] = *opts.Stage
	}
	if len(updates) == 0 {
		return nil
	}

	if err := db.Model(&models.Workspace{}).Where("id = ?", workspaceID).Updates(updates).Error; err != nil {
		return fmt.Errorf("workspace: update %s: %w", workspaceID, err)
	}
	return nil
}

// RoleOf resolves a user's role in a workspace. Returns models.RoleNone
// for non-members; the workspace itself is not checked for existence.
func RoleOf(db *gorm.DB, workspaceID, userID string) (string, error) {
	var member models.WorkspaceMember
	err := db.First(&member, "workspace_id = ? AND user_id = ?", workspaceID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RoleNone, nil
	}
	if err != nil {
		return "", fmt.Errorf("workspace: role of %s in %s: %w", userID, workspaceID, err)
	}
	return member.Role, nil
}

// RequireRole verifies the workspace exists and the actor holds one of
// the allowed roles. Non-members and insufficient roles both map to
// errs.ErrUnauthorized.
func RequireRole(db *gorm.DB, workspaceID, actorID string, allowed ...string) error {
	var count int64
	if err := db.Model(&models.Workspace{}).Where("id = ?", workspaceID).Count(&count).Error; err != nil {
		return fmt.Errorf("workspace: check %s: %w", workspaceID, err)
	}
	if count == 0 {
		return fmt.Errorf("workspace: %s: %w", workspaceID, errs.ErrNotFound)
	}

	role, err := RoleOf(db, workspaceID, actorID)
	if err != nil {
		return err
	}
	for _, a := range allowed {
		if role == a {
			return nil
		}
	}
	return fmt.Errorf("workspace: role %s may not perform this operation: %w", role, errs.ErrUnauthorized)
}
