// Package task provides task CRUD and status updates.
package task

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/runwayhq/runway/internal/errs"
	"github.com/runwayhq/runway/internal/models"
	"github.com/runwayhq/runway/internal/workspace"
)

// CreateOpts holds parameters for creating a task.
type CreateOpts struct {
	WorkspaceID string
	MilestoneID string // optional
	SprintID    string // optional; empty = backlog
	Title       string
	OwnerID     string // optional
	ActorID     string
}

// UpdateOpts holds optional task field updates (founder only).
type UpdateOpts struct {
	Title   *string
	OwnerID *string
}

// validStatuses are the allowed task statuses.
var validStatuses = map[string]bool{
	models.TaskTodo:       true,
	models.TaskInProgress: true,
	models.TaskDone:       true,
}

// Create creates a task in "todo". Founders and team members may create
// tasks; a referenced milestone must exist in the same workspace and
// gains the task in its ordered list.
func Create(db *gorm.DB, opts CreateOpts) (*models.Task, error) {
	if opts.Title == "" {
		return nil, fmt.Errorf("task: title is required: %w", errs.ErrValidation)
	}
	if err := workspace.RequireRole(db, opts.WorkspaceID, opts.ActorID, models.RoleFounder, models.RoleTeamMember); err != nil {
		return nil, err
	}

	id, err := models.NewID("task")
	if err != nil {
		return nil, err
	}

	t := models.Task{
		ID:          id,
		WorkspaceID: opts.WorkspaceID,
		Title:       opts.Title,
		Status:      models.TaskTodo,
	}
	if opts.MilestoneID != "" {
		t.MilestoneID = &opts.MilestoneID
	}
	if opts.SprintID != "" {
		t.SprintID = &opts.SprintID
	}
	if opts.OwnerID != "" {
		t.OwnerID = &opts.OwnerID
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if opts.MilestoneID != "" {
			var m models.Milestone
			if err := tx.First(&m, "id = ? AND workspace_id = ?", opts.MilestoneID, opts.WorkspaceID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("task: milestone %s: %w", opts.MilestoneID, errs.ErrNotFound)
				}
				return fmt.Errorf("task: check milestone %s: %w", opts.MilestoneID, err)
			}
			m.TaskIDs = append(m.TaskIDs, id)
			if err := tx.Model(&models.Milestone{}).Where("id = ?", m.ID).
				Update("task_ids", m.TaskIDs).Error; err != nil {
				return fmt.Errorf("task: attach to milestone %s: %w", m.ID, err)
			}
		}
		if err := tx.Create(&t).Error; err != nil {
			return fmt.Errorf("task: create: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Get retrieves a task by ID.
func Get(db *gorm.DB, id string) (*models.Task, error) {
	var t models.Task
	if err := db.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task: %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("task: get %s: %w", id, err)
	}
	return &t, nil
}

// ListForWorkspace returns all tasks in a workspace, most recently
// updated first.
func ListForWorkspace(db *gorm.DB, workspaceID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := db.Where("workspace_id = ?", workspaceID).
		Order("updated_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task: list for workspace %s: %w", workspaceID, err)
	}
	return tasks, nil
}

// ListForSprint returns all tasks assigned to a sprint.
func ListForSprint(db *gorm.DB, sprintID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := db.Where("sprint_id = ?", sprintID).
		Order("updated_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task: list for sprint %s: %w", sprintID, err)
	}
	return tasks, nil
}

// Backlog returns a workspace's unassigned tasks.
func Backlog(db *gorm.DB, workspaceID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := db.Where("workspace_id = ? AND sprint_id IS NULL", workspaceID).
		Order("updated_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task: backlog for %s: %w", workspaceID, err)
	}
	return tasks, nil
}

// UpdateStatus moves a task between todo, in_progress and done.
// Founders and team members may update status; tasks of completed
// sprints are frozen.
func UpdateStatus(db *gorm.DB, taskID, actorID, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("task: unknown status %q: %w", status, errs.ErrValidation)
	}

	t, err := Get(db, taskID)
	if err != nil {
		return err
	}
	if err := workspace.RequireRole(db, t.WorkspaceID, actorID, models.RoleFounder, models.RoleTeamMember); err != nil {
		return err
	}
	if err := requireSprintOpen(db, t); err != nil {
		return err
	}

	if err := db.Model(&models.Task{}).Where("id = ?", taskID).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("task: update status %s: %w", taskID, err)
	}
	return nil
}

// Update modifies title/owner. Founder only; tasks of completed sprints
// are frozen.
func Update(db *gorm.DB, taskID, actorID string, opts UpdateOpts) error {
	t, err := Get(db, taskID)
	if err != nil {
		return err
	}
	if err := workspace.RequireRole(db, t.WorkspaceID, actorID, models.RoleFounder); err != nil {
		return err
	}
	if err := requireSprintOpen(db, t); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if opts.Title != nil {
		if *opts.Title == "" {
			return fmt.Errorf("task: title cannot be empty: %w", errs.ErrValidation)
		}
		updates["title"] = *opts.Title
	}
	if opts.OwnerID != nil {
		if *opts.OwnerID == "" {
			updates["owner_id"] = nil
		} else {
			updates["owner_id"] = *opts.OwnerID
		}
	}
	if len(updates) == 0 {
		return nil
	}

	if err := db.Model(&models.Task{}).Where("id = ?", taskID).Updates(updates).Error; err != nil {
		return fmt.Errorf("task: update %s: %w", taskID, err)
	}
	return nil
}

// requireSprintOpen rejects edits to tasks that belong to a completed
// sprint: the close-time stats are final.
func requireSprintOpen(db *gorm.DB, t *models.Task) error {
	if t.SprintID == nil {
		return nil
	}
	var s models.Sprint
	if err := db.Select("completed").First(&s, "id = ?", *t.SprintID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // dangling reference; treat as backlog
		}
		return fmt.Errorf("task: check sprint %s: %w", *t.SprintID, err)
	}
	if s.Completed {
		return fmt.Errorf("task: sprint %s is closed: %w", *t.SprintID, errs.ErrCompleted)
	}
	return nil
}
