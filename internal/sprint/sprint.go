// Package sprint implements the sprint lifecycle: create, lock
// (commitment), close (completion) and delete, with ledger entries
// appended in the same transaction as each irreversible transition.
package sprint

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/runwayhq/runway/internal/errs"
	"github.com/runwayhq/runway/internal/funding"
	"github.com/runwayhq/runway/internal/ledger"
	"github.com/runwayhq/runway/internal/models"
	"github.com/runwayhq/runway/internal/workspace"
)

// listCap bounds sprint reads per workspace.
const listCap = 50

// CreateOpts holds parameters for creating a sprint.
type CreateOpts struct {
	WorkspaceID   string
	WeekStartDate string // YYYY-MM-DD
	WeekEndDate   string
	Goals         []models.SprintGoal // IDs assigned when empty
	TaskIDs       []string
	ActorID       string

	// Optional capital-to-execution mapping.
	FundingCategory     *string
	EstimatedSpendRange *int64
}

// Create creates an open sprint and points every listed task at it.
// Founder only. All task IDs must exist in the workspace; an unknown ID
// fails the whole operation with nothing applied.
func Create(db *gorm.DB, opts CreateOpts) (*models.Sprint, error) {
	if err := workspace.RequireRole(db, opts.WorkspaceID, opts.ActorID, models.RoleFounder); err != nil {
		return nil, err
	}
	if len(opts.TaskIDs) == 0 {
		return nil, fmt.Errorf("sprint: at least one task is required: %w", errs.ErrValidation)
	}
	if err := validateWindow(opts.WeekStartDate, opts.WeekEndDate); err != nil {
		return nil, err
	}
	if hasDuplicates(opts.TaskIDs) {
		return nil, fmt.Errorf("sprint: duplicate task ids: %w", errs.ErrValidation)
	}
	if opts.FundingCategory != nil && !models.ValidCategory(*opts.FundingCategory) {
		return nil, fmt.Errorf("sprint: unknown funding category %q: %w", *opts.FundingCategory, errs.ErrValidation)
	}

	id, err := models.NewID("spr")
	if err != nil {
		return nil, err
	}
	goals := make([]models.SprintGoal, len(opts.Goals))
	for i, g := range opts.Goals {
		if g.Text == "" {
			return nil, fmt.Errorf("sprint: goal text is required: %w", errs.ErrValidation)
		}
		if g.ID == "" {
			gid, err := models.NewID("goal")
			if err != nil {
				return nil, err
			}
			g.ID = gid
		}
		goals[i] = g
	}

	s := models.Sprint{
		ID:            id,
		WorkspaceID:   opts.WorkspaceID,
		WeekStartDate: opts.WeekStartDate,
		WeekEndDate:   opts.WeekEndDate,
		Goals:         goals,
		TaskIDs:       opts.TaskIDs,
		CreatedBy:     opts.ActorID,

		FundingCategory:     opts.FundingCategory,
		EstimatedSpendRange: opts.EstimatedSpendRange,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Task{}).
			Where("id IN ? AND workspace_id = ?", opts.TaskIDs, opts.WorkspaceID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("sprint: check tasks: %w", err)
		}
		if int(count) != len(opts.TaskIDs) {
			return fmt.Errorf("sprint: %d of %d task ids not found in workspace: %w",
				len(opts.TaskIDs)-int(count), len(opts.TaskIDs), errs.ErrNotFound)
		}
		if err := tx.Create(&s).Error; err != nil {
			return fmt.Errorf("sprint: create: %w", err)
		}
		if err := tx.Model(&models.Task{}).Where("id IN ?", opts.TaskIDs).
			Update("sprint_id", s.ID).Error; err != nil {
			return fmt.Errorf("sprint: assign tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get retrieves a sprint by ID.
func Get(db *gorm.DB, id string) (*models.Sprint, error) {
	var s models.Sprint
	if err := db.First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sprint: %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("sprint: get %s: %w", id, err)
	}
	return &s, nil
}

// ListForWorkspace returns a workspace's sprints newest-first, capped at 50.
func ListForWorkspace(db *gorm.DB, workspaceID string) ([]models.Sprint, error) {
	var sprints []models.Sprint
	err := db.Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Limit(listCap).
		Find(&sprints).Error
	if err != nil {
		return nil, fmt.Errorf("sprint: list for %s: %w", workspaceID, err)
	}
	return sprints, nil
}

// Lock freezes a sprint's committed scope. Founder only; the sprint must
// be open. The conditional update makes the transition exactly-once:
// a concurrent or repeated lock gets ErrAlreadyLocked and appends no
// second commitment entry.
func Lock(db *gorm.DB, sprintID, actorID string) (*models.Sprint, error) {
	s, err := Get(db, sprintID)
	if err != nil {
		return nil, err
	}
	if err := workspace.RequireRole(db, s.WorkspaceID, actorID, models.RoleFounder); err != nil {
		return nil, err
	}
	if s.Completed {
		return nil, fmt.Errorf("sprint: %s: %w", sprintID, errs.ErrCompleted)
	}
	if s.Locked {
		return nil, fmt.Errorf("sprint: %s: %w", sprintID, errs.ErrAlreadyLocked)
	}

	hash := ledger.CommitmentHash(s.ID, goalIDs(s.Goals), s.TaskIDs)
	summary := fmt.Sprintf("Sprint %s committed: %d goals, %d tasks", s.Label(), len(s.Goals), len(s.TaskIDs))

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Sprint{}).
			Where("id = ? AND locked = ? AND completed = ?", sprintID, false, false).
			Update("locked", true)
		if res.Error != nil {
			return fmt.Errorf("sprint: lock %s: %w", sprintID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("sprint: %s: %w", sprintID, errs.ErrAlreadyLocked)
		}
		if _, err := ledger.Append(tx, s.WorkspaceID, s.ID, models.LedgerCommitment, hash, summary); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Locked = true
	return s, nil
}

// Close records a locked sprint's outcome and makes it terminal.
// Founder only; locking is a strict precondition. Stats are computed
// from the tasks currently assigned to the sprint and written exactly
// once, together with the completion ledger entry.
func Close(db *gorm.DB, sprintID, actorID string) (*models.Sprint, error) {
	s, err := Get(db, sprintID)
	if err != nil {
		return nil, err
	}
	if err := workspace.RequireRole(db, s.WorkspaceID, actorID, models.RoleFounder); err != nil {
		return nil, err
	}
	if s.Completed {
		return nil, fmt.Errorf("sprint: %s: %w", sprintID, errs.ErrCompleted)
	}
	if !s.Locked {
		return nil, fmt.Errorf("sprint: %s: %w", sprintID, errs.ErrNotLocked)
	}

	var tasks []models.Task
	if err := db.Where("sprint_id = ?", sprintID).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("sprint: fetch tasks for %s: %w", sprintID, err)
	}

	total := len(tasks)
	completed := 0
	for _, t := range tasks {
		if t.Status == models.TaskDone {
			completed++
		}
	}
	pct := 0
	if total > 0 {
		pct = int(math.Round(100 * float64(completed) / float64(total)))
	}
	blocked := blockedIDs(s.TaskIDs, tasks)
	missed := []string{} // goals are not tracked at task granularity
	now := time.Now()

	hash := ledger.CompletionHash(s.ID, pct, completed, total, blocked, missed)
	summary := fmt.Sprintf("Sprint %s closed: %d/%d tasks done (%d%%), %d blocked",
		s.Label(), completed, total, pct, len(blocked))

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Sprint{}).
			Where("id = ? AND completed = ? AND locked = ?", sprintID, false, true).
			Select("completed", "tasks_completed", "tasks_total", "completion_percentage",
				"blocked_task_ids", "missed_goal_ids", "closed_at").
			Updates(models.Sprint{
				Completed:            true,
				TasksCompleted:       completed,
				TasksTotal:           total,
				CompletionPercentage: pct,
				BlockedTaskIDs:       blocked,
				MissedGoalIDs:        missed,
				ClosedAt:             &now,
			})
		if res.Error != nil {
			return fmt.Errorf("sprint: close %s: %w", sprintID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("sprint: %s: %w", sprintID, errs.ErrCompleted)
		}
		if _, err := ledger.Append(tx, s.WorkspaceID, s.ID, models.LedgerCompletion, hash, summary); err != nil {
			return err
		}
		if s.FundingCategory != nil {
			if err := funding.AppendAudit(tx, s.WorkspaceID, models.AuditFundedSprintComplete,
				s.ID, summary, actorID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Completed = true
	s.TasksCompleted = completed
	s.TasksTotal = total
	s.CompletionPercentage = pct
	s.BlockedTaskIDs = blocked
	s.MissedGoalIDs = missed
	s.ClosedAt = &now
	return s, nil
}

// Delete removes a non-terminal sprint and returns its tasks to the
// backlog. Founder only; completed sprints cannot be deleted. No ledger
// entry is written.
func Delete(db *gorm.DB, sprintID, actorID string) error {
	s, err := Get(db, sprintID)
	if err != nil {
		return err
	}
	if err := workspace.RequireRole(db, s.WorkspaceID, actorID, models.RoleFounder); err != nil {
		return err
	}
	if s.Completed {
		return fmt.Errorf("sprint: %s: %w", sprintID, errs.ErrCompleted)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("sprint_id = ?", sprintID).
			Update("sprint_id", nil).Error; err != nil {
			return fmt.Errorf("sprint: detach tasks of %s: %w", sprintID, err)
		}
		res := tx.Where("id = ? AND completed = ?", sprintID, false).Delete(&models.Sprint{})
		if res.Error != nil {
			return fmt.Errorf("sprint: delete %s: %w", sprintID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("sprint: %s: %w", sprintID, errs.ErrCompleted)
		}
		return nil
	})
}

// BroadcastCounts returns the milestone and validation counts included
// in a sprint_closed chat notification.
func BroadcastCounts(db *gorm.DB, s *models.Sprint) (milestonesDelivered, validationsLogged int, err error) {
	var vCount int64
	if err := db.Model(&models.ValidationEntry{}).
		Where("sprint_id = ?", s.ID).Count(&vCount).Error; err != nil {
		return 0, 0, fmt.Errorf("sprint: count validations for %s: %w", s.ID, err)
	}

	var mCount int64
	err = db.Model(&models.Milestone{}).
		Where("workspace_id = ? AND status = ?", s.WorkspaceID, models.MilestoneCompleted).
		Where("id IN (SELECT DISTINCT milestone_id FROM tasks WHERE sprint_id = ? AND milestone_id IS NOT NULL)", s.ID).
		Count(&mCount).Error
	if err != nil {
		return 0, 0, fmt.Errorf("sprint: count milestones for %s: %w", s.ID, err)
	}
	return int(mCount), int(vCount), nil
}

// goalIDs extracts goal IDs in list order for the commitment hash.
func goalIDs(goals []models.SprintGoal) []string {
	ids := make([]string, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
	}
	return ids
}

// blockedIDs returns the non-done task IDs at close time, in the
// sprint's committed order first, then any later additions by creation
// time.
func blockedIDs(committed []string, tasks []models.Task) []string {
	byID := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	blocked := []string{}
	seen := make(map[string]bool)
	for _, id := range committed {
		t, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		if t.Status != models.TaskDone {
			blocked = append(blocked, id)
		}
	}
	for _, t := range tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		if t.Status != models.TaskDone {
			blocked = append(blocked, t.ID)
		}
	}
	return blocked
}

// hasDuplicates reports whether ids contains a repeated element.
func hasDuplicates(ids []string) bool {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}

// validateWindow checks the sprint's calendar window.
func validateWindow(start, end string) error {
	const layout = "2006-01-02"
	s, err := time.Parse(layout, start)
	if err != nil {
		return fmt.Errorf("sprint: bad start date %q: %w", start, errs.ErrValidation)
	}
	e, err := time.Parse(layout, end)
	if err != nil {
		return fmt.Errorf("sprint: bad end date %q: %w", end, errs.ErrValidation)
	}
	if e.Before(s) {
		return fmt.Errorf("sprint: end date before start date: %w", errs.ErrValidation)
	}
	return nil
}
